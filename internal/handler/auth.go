package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tiendify/tiendify/internal/auth"
	"github.com/tiendify/tiendify/internal/idp"
	"github.com/tiendify/tiendify/internal/server/middleware"
	"github.com/tiendify/tiendify/internal/store"
)

// AuthHandler serves the login/logout flow and the current-user endpoint.
type AuthHandler struct {
	idp   *idp.Client
	store *store.Store
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(client *idp.Client, st *store.Store) *AuthHandler {
	return &AuthHandler{idp: client, store: st}
}

// callbackURI derives the browser's return address for the code exchange.
// The caller may pin it explicitly; otherwise it is rebuilt from the Host
// header, with an optional next hop carried through the round trip.
func callbackURI(r *http.Request, explicit, next string) string {
	uri := explicit
	if uri == "" {
		uri = fmt.Sprintf("https://%s/authorize", r.Host)
	}
	if next != "" {
		uri += "?next=" + next
	}
	return uri
}

// Login redirects the browser to the provider's login page.
// GET /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := callbackURI(r, r.URL.Query().Get("redirect_uri"), r.URL.Query().Get("next"))
	http.Redirect(w, r, h.idp.AuthorizationURL(redirectURI), http.StatusTemporaryRedirect)
}

// Authorize exchanges the authorization code for a token pair and sets the
// session cookies.
// POST /auth/authorize
func (h *AuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Authorization code missing")
		return
	}

	validationURI := callbackURI(r, r.URL.Query().Get("validation_uri"), r.URL.Query().Get("next"))

	tokens, err := h.idp.ExchangeCode(r.Context(), code, validationURI)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Token exchange failed: "+err.Error())
		return
	}

	setSessionCookie(w, middleware.AccessTokenCookie, tokens.AccessToken, tokens.ExpiresIn)
	setSessionCookie(w, middleware.RefreshTokenCookie, tokens.RefreshToken, tokens.RefreshExpiresIn)
	writeJSON(w, http.StatusOK, tokens)
}

// Me returns the shop profile behind the validated session.
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	decision := middleware.GetDecision(r.Context())
	if decision == nil || decision.Claims == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	identity, err := decision.Claims.Identity()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid token structure")
		return
	}

	customer, err := h.store.GetCustomerByEmail(r.Context(), identity.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load user: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Logout terminates the provider session and clears the cookie pair.
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	creds := middleware.ExtractCredentials(r)
	if err := h.idp.Logout(r.Context(), creds.RefreshToken); err != nil {
		writeError(w, http.StatusBadRequest, "Logout failed: "+err.Error())
		return
	}

	clearSessionCookie(w, middleware.AccessTokenCookie)
	clearSessionCookie(w, middleware.RefreshTokenCookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User logged out"})
}

// Identity returns the request's session identity without touching the
// store. Used by the gate's derived-identity path and handy for the admin
// panel's header widget.
// GET /auth/identity
func (h *AuthHandler) Identity(w http.ResponseWriter, r *http.Request) {
	decision := middleware.GetDecision(r.Context())
	if decision == nil || decision.Claims == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	identity, err := decision.Claims.Identity()
	if err != nil {
		if errors.Is(err, auth.ErrInvalidClaims) {
			writeError(w, http.StatusBadRequest, "Invalid token structure")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

func setSessionCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
