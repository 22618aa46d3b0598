package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tiendify/tiendify/internal/auth"
)

func TestExtractCredentials(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "access"})
	r.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "refresh"})
	r.Header.Set("Authorization", "Bearer service-secret")

	creds := ExtractCredentials(r)
	if creds.AccessToken != "access" {
		t.Errorf("AccessToken = %q", creds.AccessToken)
	}
	if creds.RefreshToken != "refresh" {
		t.Errorf("RefreshToken = %q", creds.RefreshToken)
	}
	if creds.ServiceSecret != "service-secret" {
		t.Errorf("ServiceSecret = %q", creds.ServiceSecret)
	}
}

func TestExtractCredentialsEmpty(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	creds := ExtractCredentials(r)
	if creds != (auth.Credentials{}) {
		t.Errorf("creds = %+v, want empty", creds)
	}
}

func TestAuthStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{auth.ErrNoSession, http.StatusUnauthorized},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{auth.ErrIncompleteSession, http.StatusForbidden},
		{auth.ErrTokenExpired, http.StatusForbidden},
		{auth.ErrForbidden, http.StatusForbidden},
		{auth.ErrInvalidClaims, http.StatusBadRequest},
		{auth.ErrProviderUnavailable, http.StatusServiceUnavailable},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := AuthStatus(tc.err); got != tc.want {
			t.Errorf("AuthStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}

	// Wrapped errors still map.
	wrapped := errors.Join(errors.New("context"), auth.ErrTokenExpired)
	if got := AuthStatus(wrapped); got != http.StatusForbidden {
		t.Errorf("AuthStatus(wrapped) = %d, want 403", got)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("no request id in context")
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("header = %q, context = %q", rec.Header().Get("X-Request-ID"), seen)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "client-chosen-id")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if seen != "client-chosen-id" {
		t.Errorf("request id = %q, want client-chosen-id", seen)
	}
}
