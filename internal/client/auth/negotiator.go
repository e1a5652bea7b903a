// Package auth implements login against the ledger's role-specific
// endpoints as an ordered fallback chain of strategies.
package auth

import (
	"context"
	"errors"

	"github.com/okazarin/teller/internal/client/gateway"
	"github.com/okazarin/teller/internal/client/models"
	"github.com/okazarin/teller/internal/client/session"
	"github.com/okazarin/teller/internal/logging"
)

// ErrAuthenticationFailed renders the same regardless of which roles were
// tried, so the chain does not leak which login routes exist.
var ErrAuthenticationFailed = errors.New("invalid email or password")

// Caller is the slice of the gateway the negotiator needs.
type Caller interface {
	PostJSON(ctx context.Context, path string, body any, out any, opts ...gateway.CallOption) error
}

type Negotiator struct {
	gateway    Caller
	store      session.Store
	strategies []Strategy
	log        logging.Logger

	// last is the strategy that authenticated the current session, kept so
	// a silent re-authentication replays the same route instead of walking
	// the chain again (which could change the role).
	last *Strategy
}

func NewNegotiator(gw Caller, store session.Store, strategies []Strategy, log logging.Logger) *Negotiator {
	return &Negotiator{gateway: gw, store: store, strategies: strategies, log: log}
}

// Authenticate tries the strategies in declared order and returns the
// session from the first endpoint that accepts the credentials.
//
// Only a credentials-class rejection falls through to the next strategy. A
// transport failure or server error aborts the chain with that error: a role
// whose backend is down must not read as "wrong password".
func (n *Negotiator) Authenticate(ctx context.Context, identifier, secret string) (models.Session, error) {
	for i := range n.strategies {
		st := &n.strategies[i]

		sess, err := n.try(ctx, st, identifier, secret)
		if err == nil {
			n.last = st
			if err := n.store.Save(ctx, sess); err != nil {
				return models.Session{}, err
			}
			n.log.Info(ctx, "authenticated", "role", st.Role)
			return sess, nil
		}

		if credentialsRejected(err) {
			n.log.Debug(ctx, "login rejected, trying next role", "role", st.Role)
			continue
		}
		return models.Session{}, err
	}

	return models.Session{}, ErrAuthenticationFailed
}

// Reauthenticate replays only the strategy that produced the current
// session. It exists for flows that hold the secret in memory and need to
// recover from a mid-task session expiry without a login screen.
func (n *Negotiator) Reauthenticate(ctx context.Context, identifier, secret string) (models.Session, error) {
	if n.last == nil {
		return models.Session{}, ErrAuthenticationFailed
	}

	sess, err := n.try(ctx, n.last, identifier, secret)
	if err != nil {
		if credentialsRejected(err) {
			return models.Session{}, ErrAuthenticationFailed
		}
		return models.Session{}, err
	}

	if err := n.store.Save(ctx, sess); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

// Logout destroys the persisted session and forgets the winning strategy.
func (n *Negotiator) Logout(ctx context.Context) error {
	n.last = nil
	return n.store.Clear(ctx)
}

func (n *Negotiator) try(ctx context.Context, st *Strategy, identifier, secret string) (models.Session, error) {
	var resp LoginResponse
	if err := n.gateway.PostJSON(ctx, st.Path, st.BuildRequest(identifier, secret), &resp); err != nil {
		return models.Session{}, err
	}
	return st.Normalize(resp)
}

// credentialsRejected reports whether err means this role's endpoint refused
// the credentials, as opposed to being unreachable or broken.
func credentialsRejected(err error) bool {
	if errors.Is(err, gateway.ErrSessionExpired) {
		// 401/403 straight off a login endpoint: no session existed before
		// the call, so this is a plain credentials rejection.
		return true
	}
	var rf *gateway.RequestFailed
	if errors.As(err, &rf) {
		return rf.Status >= 400 && rf.Status < 500
	}
	return false
}
