package auth

import (
	"errors"

	"github.com/okazarin/teller/internal/client/models"
)

var errNoToken = errors.New("login response carried no token")

// IdentityPayload is the identity shape a login endpoint may return, either
// nested under "user" or flattened at the top level.
type IdentityPayload struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Role        models.Role `json:"role"`
	Currency    string      `json:"currency"`
}

// LoginResponse covers both response shapes the role endpoints produce:
// {token, user:{...}} or the identity fields alongside the token.
type LoginResponse struct {
	Token string           `json:"token"`
	User  *IdentityPayload `json:"user"`
	IdentityPayload
}

// Strategy describes one authentication route: the endpoint to call, the
// role a success yields, how to shape the request, and how to normalize the
// endpoint's response into a Session. An ordered slice of strategies forms
// the fallback chain.
type Strategy struct {
	Role         models.Role
	Path         string
	BuildRequest func(identifier, secret string) any
	Normalize    func(resp LoginResponse) (models.Session, error)
}

// CredentialsBody is the request shape shared by all current login routes.
func CredentialsBody(identifier, secret string) any {
	return struct {
		Identifier string `json:"identifier"`
		Secret     string `json:"secret"`
	}{Identifier: identifier, Secret: secret}
}

// NormalizeNested reads the identity from the "user" object. The role comes
// from the strategy, not the body: the route that accepted the credentials
// already determines it.
func NormalizeNested(role models.Role) func(LoginResponse) (models.Session, error) {
	return func(resp LoginResponse) (models.Session, error) {
		if resp.Token == "" {
			return models.Session{}, errNoToken
		}
		identity := models.Identity{Role: role}
		if resp.User != nil {
			identity.ID = resp.User.ID
			identity.DisplayName = resp.User.DisplayName
			identity.Currency = resp.User.Currency
		}
		return models.Session{Credential: resp.Token, Identity: identity}, nil
	}
}

// NormalizeFlat reads the identity fields from the top level of the body.
func NormalizeFlat(role models.Role) func(LoginResponse) (models.Session, error) {
	return func(resp LoginResponse) (models.Session, error) {
		if resp.Token == "" {
			return models.Session{}, errNoToken
		}
		return models.Session{
			Credential: resp.Token,
			Identity: models.Identity{
				ID:          resp.ID,
				DisplayName: resp.DisplayName,
				Role:        role,
				Currency:    resp.Currency,
			},
		}, nil
	}
}

// DefaultChain is the role-ordered fallback chain: admin, then client, then
// ATM. New roles are added by appending an entry, not by nesting handlers.
func DefaultChain() []Strategy {
	return []Strategy{
		{
			Role:         models.RoleAdmin,
			Path:         "/auth/admin/login",
			BuildRequest: CredentialsBody,
			Normalize:    NormalizeNested(models.RoleAdmin),
		},
		{
			Role:         models.RoleClient,
			Path:         "/auth/client/login",
			BuildRequest: CredentialsBody,
			Normalize:    NormalizeNested(models.RoleClient),
		},
		{
			Role:         models.RoleATMUser,
			Path:         "/auth/atm/login",
			BuildRequest: CredentialsBody,
			// The ATM endpoint answers with a flat body.
			Normalize: NormalizeFlat(models.RoleATMUser),
		},
	}
}
