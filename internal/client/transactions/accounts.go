package transactions

import (
	"context"

	"github.com/okazarin/teller/internal/client/models"
)

// Reader is the read-side slice of the gateway.
type Reader interface {
	GetJSON(ctx context.Context, path string, out any) error
}

// Accounts exposes the read surface of the caller's account. Reads go
// through the same gateway as mutations, so they carry the bearer
// credential and share the failure taxonomy.
type Accounts struct {
	gateway Reader
}

func NewAccounts(gw Reader) *Accounts {
	return &Accounts{gateway: gw}
}

func (a *Accounts) Balance(ctx context.Context) (*models.Account, error) {
	var account models.Account
	if err := a.gateway.GetJSON(ctx, "/accounts/me", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (a *Accounts) History(ctx context.Context) ([]models.Transaction, error) {
	var history []models.Transaction
	if err := a.gateway.GetJSON(ctx, "/transactions", &history); err != nil {
		return nil, err
	}
	return history, nil
}
