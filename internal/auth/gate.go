package auth

import (
	"context"
	"errors"
	"fmt"
)

// ErrForbidden is returned when a credential was presented but grants no
// access.
var ErrForbidden = errors.New("credential does not grant access")

// HashLister enumerates the stored secret-key hashes the gate verifies
// service credentials against.
type HashLister interface {
	ListSecretKeyHashes(ctx context.Context) ([]string, error)
}

// DecisionKind says which credential scheme admitted the request.
type DecisionKind string

const (
	// KindSession marks a request admitted by a validated end-user session.
	KindSession DecisionKind = "session"
	// KindService marks a request admitted by a service secret key.
	KindService DecisionKind = "service"
)

// Decision is the outcome of a successful authorization check. Claims is only
// populated on the session path.
type Decision struct {
	Kind   DecisionKind
	Claims *Claims
}

// Credentials carries everything a request can present: the session cookie
// pair and the bearer service secret. Extraction from the HTTP request is the
// caller's job.
type Credentials struct {
	AccessToken   string
	RefreshToken  string
	ServiceSecret string
}

// Gate composes the session validator and the secret-key store into the
// access checks the route layer consumes. Checks return typed errors; a
// caller that treats a check as one alternative among several simply inspects
// the error instead of propagating it.
type Gate struct {
	sessions        *SessionValidator
	keys            HashLister
	hasher          *Hasher
	adminSecretHash string
}

// NewGate builds the gate. adminSecret is the single process-wide
// administrative secret; it is hashed once here so verification treats it
// exactly like an issued key. An empty adminSecret disables that candidate.
func NewGate(sessions *SessionValidator, keys HashLister, hasher *Hasher, adminSecret string) (*Gate, error) {
	g := &Gate{sessions: sessions, keys: keys, hasher: hasher}
	if adminSecret != "" {
		hash, err := hasher.Hash(adminSecret)
		if err != nil {
			return nil, fmt.Errorf("hash admin secret: %w", err)
		}
		g.adminSecretHash = hash
	}
	return g, nil
}

// Session validates the cookie pair and returns the decoded claim set.
func (g *Gate) Session(ctx context.Context, accessToken, refreshToken string) (*Claims, error) {
	return g.sessions.ValidateSession(ctx, accessToken, refreshToken)
}

// Service validates a bearer service secret against the administrative
// secret and every issued key hash. The candidate set is capped at eleven
// entries (one admin secret plus at most ten issued keys), so a linear scan
// is both correct and fast enough.
func (g *Gate) Service(ctx context.Context, secret string) error {
	if secret == "" {
		return ErrNoSession
	}

	candidates := make([]string, 0, 11)
	if g.adminSecretHash != "" {
		candidates = append(candidates, g.adminSecretHash)
	}
	hashes, err := g.keys.ListSecretKeyHashes(ctx)
	if err != nil {
		return fmt.Errorf("list secret key hashes: %w", err)
	}
	candidates = append(candidates, hashes...)

	for _, hash := range candidates {
		if g.hasher.Verify(secret, hash) {
			return nil
		}
	}
	return ErrForbidden
}

// Allow admits a request holding either a valid end-user session or a valid
// service secret. Both checks run in their non-raising form: their failures
// are inspected, and only if both miss does the combinator reject with
// ErrForbidden. Infrastructure failures are surfaced as-is so they do not
// masquerade as rejections.
func (g *Gate) Allow(ctx context.Context, creds Credentials) (*Decision, error) {
	claims, sessionErr := g.Session(ctx, creds.AccessToken, creds.RefreshToken)
	if sessionErr == nil {
		return &Decision{Kind: KindSession, Claims: claims}, nil
	}
	if errors.Is(sessionErr, ErrProviderUnavailable) {
		return nil, sessionErr
	}

	serviceErr := g.Service(ctx, creds.ServiceSecret)
	if serviceErr == nil {
		return &Decision{Kind: KindService}, nil
	}
	if !errors.Is(serviceErr, ErrForbidden) && !errors.Is(serviceErr, ErrNoSession) {
		return nil, serviceErr
	}

	return nil, ErrForbidden
}
