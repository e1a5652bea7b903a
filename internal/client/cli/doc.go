// Package cli provides the interactive teller client.
//
// It wires configuration, the local session database, the HTTP gateway, and
// an interactive REPL. Typical flow: log in (the negotiator walks the role
// chain), then run commands against the ledger service.
//
// Commands:
//   - login / logout
//   - deposit, withdraw, transfer
//   - balance, history
//   - changepin (the guarded three-step PIN flow)
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
