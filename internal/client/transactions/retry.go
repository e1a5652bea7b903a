package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/okazarin/teller/internal/client/gateway"
	"github.com/okazarin/teller/internal/client/models"
	"github.com/okazarin/teller/internal/idemx"
)

// SubmitRetry submits one logical operation, generating its idempotency key
// once up front and resending with that same key on transient failures.
// A lost response therefore cannot double-apply: the ledger recognizes the
// key and replays its original record.
//
// Only transient failures are resent. Business rejections, session expiry,
// and validation errors return immediately.
func (s *Submitter) SubmitRetry(ctx context.Context, kind Kind, params Params) (*models.Transaction, error) {
	if err := validate(kind, params); err != nil {
		return nil, err
	}

	key := idemx.NewKey(prefixFor(kind))
	backoff := retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))

	var tx *models.Transaction
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		result, err := s.Submit(ctx, kind, params, key)
		if err != nil {
			if transient(err) {
				s.log.Warn(ctx, "resending with same idempotency key", "kind", kind, "key", key, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		tx = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// transient reports errors worth an automatic resend: either no response
// reached the client, or the server failed internally. The shared
// idempotency key makes the resend safe in both cases.
func transient(err error) bool {
	var te *gateway.TransportError
	if errors.As(err, &te) {
		return true
	}
	var rf *gateway.RequestFailed
	return errors.As(err, &rf) && rf.Status >= 500
}
