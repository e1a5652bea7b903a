package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt reports the bearer token's exp claim when the stored credential
// is a JWT that carries one.
//
// The token is parsed without signature verification: the client cannot
// verify it and does not need to. The value is advisory (status display
// only); the server's 401 remains authoritative.
func ExpiresAt(ctx context.Context, store Store) (time.Time, bool) {
	sess, err := store.Load(ctx)
	if err != nil || sess == nil {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(sess.Credential, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
