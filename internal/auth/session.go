package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// Errors surfaced by session validation. Handlers map these onto HTTP status
// codes: no session → 401, incomplete session and expiry → 403, invalid
// token → 401, provider trouble → 503.
var (
	ErrNoSession           = errors.New("no session presented")
	ErrIncompleteSession   = errors.New("refresh token present without access token")
	ErrTokenExpired        = errors.New("session token expired")
	ErrInvalidToken        = errors.New("invalid session token")
	ErrInvalidClaims       = errors.New("token claims missing required fields")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// expectedAudience is the audience claim the identity provider stamps on
// access tokens issued for this realm.
const expectedAudience = "account"

// jwksRefreshWindow bounds how long a rotated signing key can go unnoticed.
const jwksRefreshWindow = 10 * time.Minute

// Claims is the decoded access-token claim set. Only the fields the
// back-office needs are extracted; everything else in the token is ignored.
type Claims struct {
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	jwt.RegisteredClaims
}

// Identity is the request-scoped user projection derived from validated
// claims. It lives for the duration of a single request.
type Identity struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Identity projects the required profile fields out of the claim set. It
// fails with ErrInvalidClaims if any of them is absent.
func (c *Claims) Identity() (*Identity, error) {
	if c.PreferredUsername == "" || c.Email == "" || c.GivenName == "" || c.FamilyName == "" {
		return nil, ErrInvalidClaims
	}
	return &Identity{
		Username:  c.PreferredUsername,
		Email:     c.Email,
		FirstName: c.GivenName,
		LastName:  c.FamilyName,
	}, nil
}

// SessionValidator validates access tokens against the identity provider's
// published signing keys. Keys are cached with a bounded refresh window and
// swapped atomically on refresh, so concurrent readers never observe a
// partially updated key set.
type SessionValidator struct {
	jwksURL string
	cache   *jwk.Cache

	mu         sync.Mutex
	registered bool
}

// JWKSURL builds the provider's key-set endpoint for a realm.
func JWKSURL(issuer, realm string) string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/certs", issuer, url.PathEscape(realm))
}

// NewSessionValidator creates a validator for the given provider issuer and
// realm. ctx bounds the lifetime of the background JWKS refresher.
func NewSessionValidator(ctx context.Context, issuer, realm string) (*SessionValidator, error) {
	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("create JWKS cache: %w", err)
	}
	return &SessionValidator{
		jwksURL: JWKSURL(issuer, realm),
		cache:   cache,
	}, nil
}

// ValidateSession checks the cookie pair carried by a request. The refresh
// token only signals that a session exists; the access token is what gets
// verified against the provider's signing keys.
func (v *SessionValidator) ValidateSession(ctx context.Context, accessToken, refreshToken string) (*Claims, error) {
	if refreshToken == "" {
		return nil, ErrNoSession
	}
	if accessToken == "" {
		return nil, ErrIncompleteSession
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(accessToken, claims,
		func(token *jwt.Token) (any, error) {
			return v.signingKey(ctx, token)
		},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(expectedAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrProviderUnavailable):
			return nil, err
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ensureRegistered registers the JWKS URL with the cache on first use.
// Registration does not wait for the first fetch, so it only fails on
// structural problems; a provider outage surfaces per call in signingKey
// instead of sticking here. The registered flag latches only on success, so
// a failed attempt is retried by the next request.
func (v *SessionValidator) ensureRegistered(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.registered {
		return nil
	}

	regCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := v.cache.Register(regCtx, v.jwksURL,
		jwk.WithMaxInterval(jwksRefreshWindow),
		jwk.WithWaitReady(false),
	); err != nil {
		return err
	}
	v.registered = true
	return nil
}

// signingKey resolves the verification key matching the token's kid header
// from the cached JWKS.
func (v *SessionValidator) signingKey(ctx context.Context, token *jwt.Token) (any, error) {
	if err := v.ensureRegistered(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	kid, ok := token.Header["kid"].(string)
	if !ok || kid == "" {
		return nil, errors.New("token header missing kid")
	}

	keySet, err := v.cache.Lookup(ctx, v.jwksURL)
	if err != nil {
		// The first fetch may not have completed yet, or it failed while the
		// provider was down. Force a synchronous fetch so recovery is
		// observed on the request that follows it, not a refresh cycle later.
		keySet, err = v.cache.Refresh(ctx, v.jwksURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
	}

	key, found := keySet.LookupKeyID(kid)
	if !found {
		return nil, fmt.Errorf("key id %q not found in JWKS", kid)
	}

	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, fmt.Errorf("export signing key: %w", err)
	}
	return raw, nil
}
