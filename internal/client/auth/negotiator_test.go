package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okazarin/teller/internal/client/gateway"
	"github.com/okazarin/teller/internal/client/models"
	"github.com/okazarin/teller/internal/client/session"
	"github.com/okazarin/teller/internal/logging"
)

// fakeCaller implements Caller for unit tests. Each path is bound to a
// scripted outcome; every call is recorded in order.
type fakeCaller struct {
	outcomes map[string]func(out *LoginResponse) error
	calls    []string
}

func (f *fakeCaller) PostJSON(ctx context.Context, path string, body any, out any, opts ...gateway.CallOption) error {
	f.calls = append(f.calls, path)
	outcome, ok := f.outcomes[path]
	if !ok {
		return &gateway.RequestFailed{Status: 404, Message: "no such route"}
	}
	resp, _ := out.(*LoginResponse)
	return outcome(resp)
}

func accept(token string, user IdentityPayload) func(*LoginResponse) error {
	return func(out *LoginResponse) error {
		user := user
		*out = LoginResponse{Token: token, User: &user}
		return nil
	}
}

func rejectCredentials() func(*LoginResponse) error {
	return func(*LoginResponse) error { return gateway.ErrSessionExpired }
}

func newTestNegotiator(fc *fakeCaller) (*Negotiator, *session.MemoryStore) {
	store := session.NewMemoryStore()
	return NewNegotiator(fc, store, DefaultChain(), logging.Discard()), store
}

func TestAuthenticate_StopsAtFirstAcceptingStrategy(t *testing.T) {
	fc := &fakeCaller{outcomes: map[string]func(*LoginResponse) error{
		"/auth/admin/login":  rejectCredentials(),
		"/auth/client/login": accept("tok-1", IdentityPayload{ID: "u1", DisplayName: "Maria", Currency: "EUR"}),
	}}
	n, store := newTestNegotiator(fc)

	sess, err := n.Authenticate(context.Background(), "maria@bank.test", "pw")
	require.NoError(t, err)
	require.Equal(t, models.RoleClient, sess.Identity.Role)
	require.Equal(t, "tok-1", sess.Credential)

	// The ATM strategy must not be consulted once client accepted.
	require.Equal(t, []string{"/auth/admin/login", "/auth/client/login"}, fc.calls)

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, sess, *saved)
}

func TestAuthenticate_RoleComesFromStrategyNotBody(t *testing.T) {
	fc := &fakeCaller{outcomes: map[string]func(*LoginResponse) error{
		"/auth/admin/login": rejectCredentials(),
		"/auth/client/login": func(out *LoginResponse) error {
			// A response body claiming ADMIN must not escalate the role.
			*out = LoginResponse{Token: "tok-1", User: &IdentityPayload{ID: "u1", Role: models.RoleAdmin}}
			return nil
		},
	}}
	n, _ := newTestNegotiator(fc)

	sess, err := n.Authenticate(context.Background(), "maria@bank.test", "pw")
	require.NoError(t, err)
	require.Equal(t, models.RoleClient, sess.Identity.Role)
}

func TestAuthenticate_ExhaustedChainFailsUniformly(t *testing.T) {
	fc := &fakeCaller{outcomes: map[string]func(*LoginResponse) error{
		"/auth/admin/login":  rejectCredentials(),
		"/auth/client/login": rejectCredentials(),
		"/auth/atm/login": func(*LoginResponse) error {
			return &gateway.RequestFailed{Status: 400, Message: "bad pin format"}
		},
	}}
	n, store := newTestNegotiator(fc)

	_, err := n.Authenticate(context.Background(), "who@bank.test", "nope")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
	// The uniform message never names the roles that were tried.
	require.Equal(t, "invalid email or password", err.Error())

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, saved)
}

func TestAuthenticate_TransportFailureAbortsChain(t *testing.T) {
	boom := &gateway.TransportError{Err: context.DeadlineExceeded}
	fc := &fakeCaller{outcomes: map[string]func(*LoginResponse) error{
		"/auth/admin/login": func(*LoginResponse) error { return boom },
	}}
	n, _ := newTestNegotiator(fc)

	_, err := n.Authenticate(context.Background(), "maria@bank.test", "pw")

	var te *gateway.TransportError
	require.ErrorAs(t, err, &te)
	// A role whose backend is down must not be skipped as "wrong password".
	require.Equal(t, []string{"/auth/admin/login"}, fc.calls)
}

func TestAuthenticate_ServerErrorAbortsChain(t *testing.T) {
	fc := &fakeCaller{outcomes: map[string]func(*LoginResponse) error{
		"/auth/admin/login": func(*LoginResponse) error {
			return &gateway.RequestFailed{Status: 502, Message: "bad gateway"}
		},
	}}
	n, _ := newTestNegotiator(fc)

	_, err := n.Authenticate(context.Background(), "maria@bank.test", "pw")

	var rf *gateway.RequestFailed
	require.ErrorAs(t, err, &rf)
	require.Equal(t, 502, rf.Status)
	require.Len(t, fc.calls, 1)
}

func TestReauthenticate_ReplaysOnlyWinningStrategy(t *testing.T) {
	fc := &fakeCaller{outcomes: map[string]func(*LoginResponse) error{
		"/auth/admin/login":  rejectCredentials(),
		"/auth/client/login": accept("tok-1", IdentityPayload{ID: "u1"}),
	}}
	n, store := newTestNegotiator(fc)

	_, err := n.Authenticate(context.Background(), "maria@bank.test", "pw")
	require.NoError(t, err)

	fc.outcomes["/auth/client/login"] = accept("tok-2", IdentityPayload{ID: "u1"})
	fc.calls = nil

	sess, err := n.Reauthenticate(context.Background(), "maria@bank.test", "pw")
	require.NoError(t, err)
	require.Equal(t, "tok-2", sess.Credential)
	require.Equal(t, models.RoleClient, sess.Identity.Role)
	// No chain walk: the admin route is not touched again.
	require.Equal(t, []string{"/auth/client/login"}, fc.calls)

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-2", saved.Credential)
}

func TestReauthenticate_WithoutPriorLoginFails(t *testing.T) {
	n, _ := newTestNegotiator(&fakeCaller{})

	_, err := n.Reauthenticate(context.Background(), "maria@bank.test", "pw")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestLogout_ClearsStoreAndForgetsStrategy(t *testing.T) {
	fc := &fakeCaller{outcomes: map[string]func(*LoginResponse) error{
		"/auth/admin/login": accept("tok-1", IdentityPayload{ID: "root"}),
	}}
	n, store := newTestNegotiator(fc)

	_, err := n.Authenticate(context.Background(), "root@bank.test", "pw")
	require.NoError(t, err)

	require.NoError(t, n.Logout(context.Background()))

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, saved)

	_, err = n.Reauthenticate(context.Background(), "root@bank.test", "pw")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestNormalizeFlat_ReadsTopLevelIdentity(t *testing.T) {
	normalize := NormalizeFlat(models.RoleATMUser)

	sess, err := normalize(LoginResponse{
		Token: "tok-9",
		IdentityPayload: IdentityPayload{
			ID:          "card-77",
			DisplayName: "ATM card 77",
			Currency:    "EUR",
		},
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleATMUser, sess.Identity.Role)
	require.Equal(t, "card-77", sess.Identity.ID)
}

func TestNormalize_MissingTokenIsError(t *testing.T) {
	_, err := NormalizeNested(models.RoleClient)(LoginResponse{})
	require.Error(t, err)

	_, err = NormalizeFlat(models.RoleATMUser)(LoginResponse{})
	require.Error(t, err)
}
