package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/okazarin/teller/internal/client/gateway"
	"github.com/okazarin/teller/internal/client/transactions"
)

func (a *App) Deposit(ctx context.Context) error {
	return a.move(ctx, transactions.Deposit)
}

func (a *App) Withdraw(ctx context.Context) error {
	return a.move(ctx, transactions.Withdraw)
}

func (a *App) Transfer(ctx context.Context) error {
	return a.move(ctx, transactions.Transfer)
}

func (a *App) move(ctx context.Context, kind transactions.Kind) error {
	if !a.isLoggedIn() {
		fmt.Println("Please log in first.")
		return nil
	}

	amountText, err := getSimpleText(a.reader, "Enter amount", os.Stdout)
	if err != nil {
		return err
	}
	amount, err := ParseAmount(amountText)
	if err != nil {
		fmt.Println(err)
		return err
	}

	note, err := getSimpleText(a.reader, "Note (optional)", os.Stdout)
	if err != nil {
		return err
	}

	params := transactions.Params{Amount: amount, Note: note}
	if kind == transactions.Transfer {
		destination, err := getSimpleText(a.reader, "Destination account", os.Stdout)
		if err != nil {
			return err
		}
		params.Destination = destination
	}

	// SubmitRetry generates the idempotency key once and resends with it on
	// transport trouble, so a lost response never double-applies.
	tx, err := a.submitter.SubmitRetry(ctx, kind, params)
	if err != nil {
		return a.renderError(err)
	}

	fmt.Printf("Done: %s %s\n", tx.ID, FormatAmount(tx.Amount))
	return nil
}

func (a *App) Balance(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Please log in first.")
		return nil
	}
	account, err := a.accounts.Balance(ctx)
	if err != nil {
		return a.renderError(err)
	}
	fmt.Printf("Balance: %s %s\n", FormatAmount(account.Balance), account.Currency)
	return nil
}

func (a *App) History(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Please log in first.")
		return nil
	}
	history, err := a.accounts.History(ctx)
	if err != nil {
		return a.renderError(err)
	}
	for _, tx := range history {
		fmt.Printf("%s  %-8s  %10s  %s\n", tx.CreatedAt.Format("2006-01-02 15:04"), tx.Kind, FormatAmount(tx.Amount), tx.Note)
	}
	return nil
}

// renderError maps the typed failures onto user-facing behavior: business
// rejections render inline, session expiry forces a return to the login
// screen, transport errors keep the user's input and suggest a retry.
func (a *App) renderError(err error) error {
	var rejected *transactions.Rejected
	var transport *gateway.TransportError

	switch {
	case errors.Is(err, gateway.ErrSessionExpired):
		a.session = nil
		a.identifier = ""
		fmt.Println("Session expired, please log in again.")
	case errors.As(err, &rejected):
		fmt.Println(rejected.Reason)
	case errors.As(err, &transport):
		fmt.Println("Network problem; nothing was lost, please try again.")
	default:
		fmt.Println(err)
	}
	return err
}
