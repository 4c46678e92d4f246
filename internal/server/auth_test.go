package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bloodaid/internal/auth"
	"bloodaid/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPasswordAuth struct {
	MockAuthenticate func(ctx context.Context, email, password string) error
}

func (m *mockPasswordAuth) Authenticate(ctx context.Context, email, password string) error {
	if m.MockAuthenticate != nil {
		return m.MockAuthenticate(ctx, email, password)
	}
	return types.ErrUnauthenticated
}

// stubTokens overrides provider-token verification while keeping the real
// session token signing and parsing.
type stubTokens struct {
	*auth.TokenService
	MockVerifyProviderToken func(ctx context.Context, token string) (string, error)
}

func (s *stubTokens) VerifyProviderToken(ctx context.Context, token string) (string, error) {
	if s.MockVerifyProviderToken != nil {
		return s.MockVerifyProviderToken(ctx, token)
	}
	return s.TokenService.VerifyProviderToken(ctx, token)
}

// rebuild swaps the service for one with different token or password
// collaborators, keeping the same mocks and config.
func (e *testEnv) rebuild(t *testing.T, tokens tokenService, password PasswordAuthenticator) {
	t.Helper()

	svc, err := New(e.svc.config, e.svc.logger, tokens, password, e.checkout,
		e.users, e.requests, e.funds, e.blogs)
	require.NoError(t, err)
	e.svc = svc
}

func issuedToken(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func TestIssueToken(t *testing.T) {
	t.Run("bare email is rejected by default", func(t *testing.T) {
		env := newTestEnv(t)
		env.knownUsers["donor@example.com"] = testUser("donor@example.com", types.RoleDonor)

		rr := env.do(http.MethodPost, "/jwt", "", []byte(`{"email":"donor@example.com"}`))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("bare email works when insecure issue is enabled", func(t *testing.T) {
		env := newTestEnv(t, func(c *types.Config) { c.AllowInsecureTokenIssue = true })
		env.knownUsers["donor@example.com"] = testUser("donor@example.com", types.RoleDonor)

		rr := env.do(http.MethodPost, "/jwt", "", []byte(`{"email":"Donor@Example.com"}`))

		require.Equal(t, http.StatusOK, rr.Code)
		token := issuedToken(t, rr)

		claims, err := env.tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "donor@example.com", claims.Email)
		assert.Equal(t, types.RoleDonor, claims.Role)

		// The token opens the session surface.
		profile := env.do(http.MethodGet, "/users/profile", token, nil)
		assert.Equal(t, http.StatusOK, profile.Code)
	})

	t.Run("insecure issue still requires a registered user", func(t *testing.T) {
		env := newTestEnv(t, func(c *types.Config) { c.AllowInsecureTokenIssue = true })

		rr := env.do(http.MethodPost, "/jwt", "", []byte(`{"email":"nobody@example.com"}`))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("insecure issue requires an email", func(t *testing.T) {
		env := newTestEnv(t, func(c *types.Config) { c.AllowInsecureTokenIssue = true })

		rr := env.do(http.MethodPost, "/jwt", "", []byte(`{}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("password checked with the identity provider", func(t *testing.T) {
		env := newTestEnv(t)
		env.knownUsers["donor@example.com"] = testUser("donor@example.com", types.RoleDonor)

		var gotEmail, gotPassword string
		env.rebuild(t, env.tokens, &mockPasswordAuth{
			MockAuthenticate: func(ctx context.Context, email, password string) error {
				gotEmail, gotPassword = email, password
				return nil
			},
		})

		rr := env.do(http.MethodPost, "/jwt", "", []byte(`{"email":"donor@example.com","password":"hunter2"}`))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "donor@example.com", gotEmail)
		assert.Equal(t, "hunter2", gotPassword)

		claims, err := env.tokens.Verify(issuedToken(t, rr))
		require.NoError(t, err)
		assert.Equal(t, "donor@example.com", claims.Email)
	})

	t.Run("bad password is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		env.knownUsers["donor@example.com"] = testUser("donor@example.com", types.RoleDonor)

		env.rebuild(t, env.tokens, &mockPasswordAuth{})

		rr := env.do(http.MethodPost, "/jwt", "", []byte(`{"email":"donor@example.com","password":"wrong"}`))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("provider identity token maps to a local user", func(t *testing.T) {
		env := newTestEnv(t)
		env.knownUsers["donor@example.com"] = testUser("donor@example.com", types.RoleDonor)

		env.rebuild(t, &stubTokens{
			TokenService: env.tokens,
			MockVerifyProviderToken: func(ctx context.Context, token string) (string, error) {
				assert.Equal(t, "provider-jwt", token)
				return "donor@example.com", nil
			},
		}, nil)

		rr := env.do(http.MethodPost, "/jwt", "", []byte(`{"identityToken":"provider-jwt"}`))

		require.Equal(t, http.StatusOK, rr.Code)
		claims, err := env.tokens.Verify(issuedToken(t, rr))
		require.NoError(t, err)
		assert.Equal(t, "donor@example.com", claims.Email)
	})

	t.Run("rejected identity token yields unauthorized", func(t *testing.T) {
		env := newTestEnv(t)

		rr := env.do(http.MethodPost, "/jwt", "", []byte(`{"identityToken":"garbage"}`))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv(t)

		rr := env.do(http.MethodPost, "/jwt", "", []byte(`{"email":`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		env := newTestEnv(t)

		rr := env.do(http.MethodGet, "/users/profile", "", nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		env := newTestEnv(t)

		rr := env.do(http.MethodGet, "/users/profile", "not-a-jwt", nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token for a deleted user", func(t *testing.T) {
		env := newTestEnv(t)
		user := testUser("gone@example.com", types.RoleDonor)
		token := env.login(t, user)
		delete(env.knownUsers, user.Email)

		rr := env.do(http.MethodGet, "/users/profile", token, nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("role comes from the store, not the token", func(t *testing.T) {
		env := newTestEnv(t)
		user := testUser("promoted@example.com", types.RoleDonor)
		token := env.login(t, user)

		// Donors may not list users.
		assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/users", token, nil).Code)

		// Promotion takes effect on the next request with the same token.
		user.Role = types.RoleAdmin
		assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/users", token, nil).Code)
	})
}
