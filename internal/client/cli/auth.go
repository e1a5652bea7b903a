package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/okazarin/teller/internal/client/auth"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getSecret = GetSecret

// Login prompts for credentials and runs them through the negotiator's role
// chain. On success the session is remembered (it is already persisted by
// the negotiator) along with the identifier, which the PIN-change flow needs
// for silent re-authentication.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getSecret("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer wipeBytes(password)

	sess, err := a.auth.Authenticate(ctx, identifier, string(password))
	if err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			fmt.Println(err)
		} else {
			fmt.Println("Login failed:", err)
		}
		return err
	}

	a.session = &sess
	a.identifier = identifier
	fmt.Printf("Welcome, %s (%s)\n", sess.Identity.DisplayName, sess.Identity.Role)
	return nil
}

// Logout destroys the persisted session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.session = nil
	a.identifier = ""
	return nil
}
