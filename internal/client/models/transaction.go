package models

import "time"

// Transaction is the ledger's record of an applied operation, echoed back on
// a successful submission. Amount is in minor currency units (cents), so the
// arithmetic stays integral.
type Transaction struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Amount      int64     `json:"amount"`
	Note        string    `json:"note,omitempty"`
	Destination string    `json:"destination,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Account is the read-side view of the caller's own account.
type Account struct {
	ID       string `json:"id"`
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
}
