// Package models defines the client-side domain types: the authenticated
// session and the records echoed back by the ledger service.
package models

// Role identifies which login route authenticated the user.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleClient  Role = "CLIENT"
	RoleATMUser Role = "ATM_USER"
)

// Identity describes the authenticated user as reported by the login
// endpoint that accepted the credentials.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
	Currency    string `json:"currency"`
}

// Session is the bearer credential plus the identity it belongs to.
// Exactly one session is live at a time; it is owned by the session store
// and destroyed on logout or on any authorization rejection.
//
// The credential is excluded from JSON so it cannot leak into rendered
// output or logs.
type Session struct {
	Credential string   `json:"-"`
	Identity   Identity `json:"identity"`
}
