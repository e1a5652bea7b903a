// Package transactions builds and submits the money-moving requests:
// deposit, withdraw, transfer.
package transactions

import (
	"context"
	"errors"

	"github.com/okazarin/teller/internal/client/gateway"
	"github.com/okazarin/teller/internal/client/models"
	"github.com/okazarin/teller/internal/idemx"
	"github.com/okazarin/teller/internal/logging"
)

// Kind selects the operation family.
type Kind string

const (
	Deposit  Kind = "DEPOSIT"
	Withdraw Kind = "WITHDRAW"
	Transfer Kind = "TRANSFER"
)

// Params carries the user's input for one operation. Amount is in minor
// currency units. Destination is only meaningful for transfers.
type Params struct {
	Amount      int64
	Note        string
	Destination string
}

// Rejected is a business rejection: the ledger understood the request and
// declined it (insufficient funds, unknown destination, ...). Not retryable
// without changing input; the UI renders Reason next to the relevant field.
type Rejected struct {
	Reason string
}

func (e *Rejected) Error() string {
	return "transaction rejected: " + e.Reason
}

// Client-side validation errors, raised before any network attempt.
var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrMissingDestination = errors.New("transfer requires a destination account")
	ErrUnknownKind        = errors.New("unknown transaction kind")
)

// Caller is the slice of the gateway the submitter needs.
type Caller interface {
	PostJSON(ctx context.Context, path string, body any, out any, opts ...gateway.CallOption) error
}

type Submitter struct {
	gateway Caller
	log     logging.Logger
}

func NewSubmitter(gw Caller, log logging.Logger) *Submitter {
	return &Submitter{gateway: gw, log: log}
}

// Submit sends one mutation through the gateway. When key is empty, a fresh
// idempotency key is generated with the kind's prefix.
//
// Calling Submit twice with the same key and the same params is safe: the
// ledger applies the operation at most once. Generating two keys for what
// the user meant as one operation is the client bug this layer exists to
// prevent, so callers that resend automatically must pass the key they used
// the first time.
//
// Session expiry propagates untouched; whether to re-authenticate or return
// to the login screen is the caller's decision.
func (s *Submitter) Submit(ctx context.Context, kind Kind, params Params, key string) (*models.Transaction, error) {
	if err := validate(kind, params); err != nil {
		return nil, err
	}
	if key == "" {
		key = idemx.NewKey(prefixFor(kind))
	}

	path, body := request(kind, params)

	var tx models.Transaction
	err := s.gateway.PostJSON(ctx, path, body, &tx, gateway.WithIdempotencyKey(key))
	if err != nil {
		var rf *gateway.RequestFailed
		if errors.As(err, &rf) && rf.Status < 500 {
			return nil, &Rejected{Reason: rf.Message}
		}
		return nil, err
	}

	s.log.Info(ctx, "transaction applied", "kind", kind, "id", tx.ID, "key", key)
	return &tx, nil
}

func validate(kind Kind, params Params) error {
	switch kind {
	case Deposit, Withdraw:
	case Transfer:
		if params.Destination == "" {
			return ErrMissingDestination
		}
	default:
		return ErrUnknownKind
	}
	if params.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func prefixFor(kind Kind) string {
	switch kind {
	case Deposit:
		return idemx.PrefixDeposit
	case Withdraw:
		return idemx.PrefixWithdraw
	case Transfer:
		return idemx.PrefixTransfer
	default:
		return idemx.PrefixGeneric
	}
}

type moveRequest struct {
	Amount int64  `json:"amount"`
	Note   string `json:"note,omitempty"`
}

type transferRequest struct {
	moveRequest
	Destination string `json:"destination"`
}

func request(kind Kind, params Params) (string, any) {
	switch kind {
	case Deposit:
		return "/transactions/deposit", moveRequest{Amount: params.Amount, Note: params.Note}
	case Withdraw:
		return "/transactions/withdraw", moveRequest{Amount: params.Amount, Note: params.Note}
	default:
		return "/transactions/transfer", transferRequest{
			moveRequest: moveRequest{Amount: params.Amount, Note: params.Note},
			Destination: params.Destination,
		}
	}
}
