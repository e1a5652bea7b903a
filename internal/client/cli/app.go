package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/okazarin/teller/internal/client/auth"
	"github.com/okazarin/teller/internal/client/config"
	"github.com/okazarin/teller/internal/client/gateway"
	"github.com/okazarin/teller/internal/client/models"
	"github.com/okazarin/teller/internal/client/session"
	"github.com/okazarin/teller/internal/client/transactions"
	"github.com/okazarin/teller/internal/logging"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

type App struct {
	config    *config.Config
	log       logging.Logger
	store     session.Store
	gateway   *gateway.Gateway
	auth      *auth.Negotiator
	submitter *transactions.Submitter
	accounts  *transactions.Accounts

	session    *models.Session
	identifier string
	Mode       Mode
	reader     *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	db, err := session.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	log := logging.NewSlogLogger(slog.Default())
	store := session.NewSQLiteStore(db)
	gw := gateway.New(c.ServerBaseURL, c.RequestTimeout, store, log)

	app := &App{
		config:    c,
		log:       log,
		store:     store,
		gateway:   gw,
		auth:      auth.NewNegotiator(gw, store, auth.DefaultChain(), log),
		submitter: transactions.NewSubmitter(gw, log),
		accounts:  transactions.NewAccounts(gw),
		reader:    bufio.NewReader(os.Stdin),
	}

	// A session saved by a previous run survives the restart.
	if sess, err := store.Load(ctx); err == nil && sess != nil {
		app.session = sess
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

// Ping probes the ledger's health endpoint through the gateway.
func (a *App) Ping(ctx context.Context) error {
	return a.gateway.GetJSON(ctx, "/health", nil)
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

// StartOnlineStatusWatcher periodically probes the server and flips the
// online/offline status shown in the prompt. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.Ping(probeCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
