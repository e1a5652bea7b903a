// Package idemx generates client-side idempotency keys for mutating requests.
//
// A key is generated exactly once per user-initiated operation, sent as the
// Idempotency-Key header, and reused only when that same operation is resent
// after a transport failure. Two distinct operations never share a key.
package idemx

import "github.com/google/uuid"

// Operation-family prefixes. The prefix is cosmetic and exists only so the
// ledger's logs can be correlated by operation kind.
const (
	PrefixDeposit   = "dep"
	PrefixWithdraw  = "wdr"
	PrefixTransfer  = "trf"
	PrefixPinChange = "pin"
	PrefixGeneric   = "tx"
)

// NewKey returns "<prefix>-<random 128-bit id>". The suffix makes collisions
// negligible for the lifetime of a client; no server round-trip is needed.
func NewKey(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
