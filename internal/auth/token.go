package auth

import (
	"context"
	"fmt"
	"time"

	"bloodaid/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const tokenIssuer = "bloodaid"

// Claims are the identity assertions carried by a session token.
type Claims struct {
	Email string
	Name  string
	Role  types.Role
}

// TokenService issues and verifies session tokens. Session tokens are
// HS256-signed with a local key; provider identity tokens are verified
// against the provider's published JWKS.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration

	jwksCache *jwk.Cache
	jwksURL   string
	issuerURL string
}

func NewTokenService(signingKey []byte, ttl time.Duration) *TokenService {
	return &TokenService{
		signingKey: signingKey,
		ttl:        ttl,
	}
}

// WithProviderJWKS enables federated identity-token verification against
// the given issuer's key set.
func (s *TokenService) WithProviderJWKS(cache *jwk.Cache, jwksURL, issuerURL string) *TokenService {
	s.jwksCache = cache
	s.jwksURL = jwksURL
	s.issuerURL = issuerURL
	return s
}

func (s *TokenService) Issue(user *types.User) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		Issuer(tokenIssuer).
		Subject(user.Email).
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Claim("email", user.Email).
		Claim("name", user.Name).
		Claim("role", string(user.Role)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build session token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), s.signingKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return string(signed), nil
}

// Verify parses and validates a session token. Any failure, expiry and
// bad signature included, collapses to ErrUnauthenticated; callers never
// see parser internals.
func (s *TokenService) Verify(raw string) (*Claims, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.HS256(), s.signingKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return nil, types.ErrUnauthenticated
	}

	email, ok := token.Subject()
	if !ok || email == "" {
		return nil, types.ErrUnauthenticated
	}

	claims := &Claims{Email: email}

	var name string
	if err := token.Get("name", &name); err == nil {
		claims.Name = name
	}

	var role string
	if err := token.Get("role", &role); err == nil {
		claims.Role = types.Role(role)
	}

	return claims, nil
}

// VerifyProviderToken validates a provider-issued identity token against
// the configured JWKS and returns the email it asserts.
func (s *TokenService) VerifyProviderToken(ctx context.Context, raw string) (string, error) {
	if s.jwksCache == nil {
		return "", fmt.Errorf("no identity provider configured: %w", types.ErrUnauthenticated)
	}

	set, err := s.jwksCache.Lookup(ctx, s.jwksURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch provider JWKS: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuerURL),
	)
	if err != nil {
		return "", types.ErrUnauthenticated
	}

	var email string
	if err := token.Get("email", &email); err != nil || email == "" {
		// Some pools put the address in the username claim instead.
		if err := token.Get("username", &email); err != nil || email == "" {
			return "", types.ErrUnauthenticated
		}
	}

	return email, nil
}
