package transactions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okazarin/teller/internal/client/models"
)

type fakeReader struct {
	paths []string
	fill  func(out any)
	err   error
}

func (f *fakeReader) GetJSON(ctx context.Context, path string, out any) error {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return f.err
	}
	if f.fill != nil {
		f.fill(out)
	}
	return nil
}

func TestAccounts_Balance(t *testing.T) {
	fr := &fakeReader{fill: func(out any) {
		*out.(*models.Account) = models.Account{ID: "acc-1", Balance: 500, Currency: "EUR"}
	}}

	account, err := NewAccounts(fr).Balance(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"/accounts/me"}, fr.paths)
	require.Equal(t, int64(500), account.Balance)
}

func TestAccounts_History(t *testing.T) {
	fr := &fakeReader{fill: func(out any) {
		*out.(*[]models.Transaction) = []models.Transaction{{ID: "tx-1"}, {ID: "tx-2"}}
	}}

	history, err := NewAccounts(fr).History(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"/transactions"}, fr.paths)
	require.Len(t, history, 2)
}
