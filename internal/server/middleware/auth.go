package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/tiendify/tiendify/internal/auth"
)

type contextKeyAuth string

// DecisionKey is the context key for the authorization decision.
const DecisionKey contextKeyAuth = "auth_decision"

// Cookie names the session scheme rides on.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// ExtractCredentials pulls every credential a request may carry: the session
// cookie pair and the bearer service secret.
func ExtractCredentials(r *http.Request) auth.Credentials {
	creds := auth.Credentials{}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		creds.AccessToken = c.Value
	}
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		creds.RefreshToken = c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		creds.ServiceSecret = strings.TrimPrefix(h, "Bearer ")
	}
	return creds
}

// RequireSession gates a route on a valid end-user session. The decoded
// claims are attached to the request context.
func RequireSession(gate *auth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds := ExtractCredentials(r)
			claims, err := gate.Session(r.Context(), creds.AccessToken, creds.RefreshToken)
			if err != nil {
				writeAuthError(w, err)
				return
			}
			decision := &auth.Decision{Kind: auth.KindSession, Claims: claims}
			next.ServeHTTP(w, r.WithContext(withDecision(r.Context(), decision)))
		})
	}
}

// RequireAuth gates a route on either a valid end-user session or a valid
// service secret key.
func RequireAuth(gate *auth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := gate.Allow(r.Context(), ExtractCredentials(r))
			if err != nil {
				writeAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withDecision(r.Context(), decision)))
		})
	}
}

func withDecision(ctx context.Context, d *auth.Decision) context.Context {
	return context.WithValue(ctx, DecisionKey, d)
}

// GetDecision extracts the authorization decision from the context. Returns
// nil on unauthenticated routes.
func GetDecision(ctx context.Context) *auth.Decision {
	if d, ok := ctx.Value(DecisionKey).(*auth.Decision); ok {
		return d
	}
	return nil
}

// AuthStatus maps an auth-core error onto its HTTP status code.
func AuthStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrNoSession), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrIncompleteSession),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidClaims):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	status := AuthStatus(err)
	message := "Not authenticated"
	switch status {
	case http.StatusForbidden:
		message = "Forbidden"
	case http.StatusServiceUnavailable:
		message = "Identity provider unavailable"
	case http.StatusInternalServerError:
		message = "Authorization check failed"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Manually construct JSON to avoid an import cycle with the handler package.
	w.Write([]byte(`{"error":{"code":` + strconv.Itoa(status) + `,"message":"` + message + `"}}`))
}
