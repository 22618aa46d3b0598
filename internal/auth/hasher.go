// Package auth implements the access-control core: secret-key hashing, session
// token validation against the identity provider, and the gate that combines
// both credential schemes.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the hashing cost used unless overridden. bcrypt's own
// default keeps verification slow enough to resist offline brute force while
// staying tolerable for a candidate set capped at eleven hashes.
const DefaultBcryptCost = bcrypt.DefaultCost

// Hasher generates and verifies secret-key material. The cost factor is fixed
// at construction and applies to every hash it produces.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to the default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// Generate produces new secret-key material: a URL-safe plaintext with 256
// bits of entropy, its bcrypt hash, and a display prefix built from the first
// and last three characters ("abc...xyz"). The plaintext is returned exactly
// once; only the hash and prefix are meant to be persisted.
func (h *Hasher) Generate() (plaintext, hash, prefix string, err error) {
	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return "", "", "", fmt.Errorf("generate secret key: %w", err)
	}
	plaintext = base64.RawURLEncoding.EncodeToString(raw)

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", "", "", fmt.Errorf("hash secret key: %w", err)
	}

	prefix = plaintext[:3] + "..." + plaintext[len(plaintext)-3:]
	return plaintext, string(hashed), prefix, nil
}

// Hash returns the bcrypt hash of an externally supplied secret. Used for the
// process-wide administrative secret, which is configured as plaintext.
func (h *Hasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether candidate matches the stored bcrypt hash. A
// malformed hash or a mismatch both yield false; Verify never panics and has
// no side effects.
func (h *Hasher) Verify(candidate, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
