package server

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"golang.org/x/crypto/bcrypt"

	"github.com/tiendify/tiendify/internal/auth"
	"github.com/tiendify/tiendify/internal/idp"
	"github.com/tiendify/tiendify/internal/model"
	"github.com/tiendify/tiendify/internal/service"
	"github.com/tiendify/tiendify/internal/store"
)

const (
	testKeyID       = "test-signing-key"
	testAdminSecret = "frontend-admin-secret"
)

// testEnv spins up the full server against an in-memory store and a fake
// identity provider publishing a JWKS document.
type testEnv struct {
	t      *testing.T
	ts     *httptest.Server
	store  *store.Store
	signer *rsa.PrivateKey
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate RSA key: %v", err)
	}

	pub, err := jwk.Import(key.Public())
	if err != nil {
		t.Fatalf("import public key: %v", err)
	}
	pub.Set(jwk.KeyIDKey, testKeyID)
	pub.Set(jwk.AlgorithmKey, "RS256")
	set := jwk.NewSet()
	set.AddKey(pub)
	doc, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal JWKS: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/realms/shop/protocol/openid-connect/certs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(doc)
	})
	provider := httptest.NewServer(mux)
	t.Cleanup(provider.Close)

	st, err := store.Open("", "")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	sessions, err := auth.NewSessionValidator(t.Context(), provider.URL, "shop")
	if err != nil {
		t.Fatalf("NewSessionValidator: %v", err)
	}
	hasher := auth.NewHasher(bcrypt.MinCost)
	gate, err := auth.NewGate(sessions, st, hasher, testAdminSecret)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}

	idpClient := idp.New(idp.Config{
		Issuer:   provider.URL,
		Realm:    "shop",
		ClientID: "tiendify-admin",
	})
	keys := service.NewSecretKeys(st, hasher)

	cfg := DefaultConfig()
	cfg.Version = "test"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(cfg, st, gate, idpClient, keys, logger)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testEnv{t: t, ts: ts, store: st, signer: key}
}

// sessionCookies returns a valid access/refresh cookie pair for a logged-in
// admin.
func (e *testEnv) sessionCookies() []*http.Cookie {
	e.t.Helper()

	claims := jwt.MapClaims{
		"preferred_username": "shop-admin",
		"email":              "admin@shop.example",
		"given_name":         "Ada",
		"family_name":        "Admin",
		"aud":                "account",
		"exp":                time.Now().Add(5 * time.Minute).Unix(),
		"iat":                time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	signed, err := token.SignedString(e.signer)
	if err != nil {
		e.t.Fatalf("sign token: %v", err)
	}

	return []*http.Cookie{
		{Name: "access_token", Value: signed},
		{Name: "refresh_token", Value: "test-refresh-token"},
	}
}

type reqOption func(*http.Request)

func withBearer(secret string) reqOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+secret)
	}
}

func withCookies(cookies []*http.Cookie) reqOption {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

// do issues a request against the test server and decodes the JSON response
// into out when out is non-nil.
func (e *testEnv) do(method, path string, body interface{}, out interface{}, opts ...reqOption) int {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, e.ts.URL+path, reader)
	if err != nil {
		e.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := e.ts.Client().Do(req)
	if err != nil {
		e.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			e.t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	if code := env.do(http.MethodGet, "/health", nil, nil); code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", code)
	}
	if code := env.do(http.MethodGet, "/readyz", nil, nil); code != http.StatusOK {
		t.Errorf("GET /readyz = %d, want 200", code)
	}
}

func TestOpenAPIServed(t *testing.T) {
	env := newTestEnv(t)

	var doc struct {
		OpenAPI string                 `json:"openapi"`
		Paths   map[string]interface{} `json:"paths"`
	}
	if code := env.do(http.MethodGet, "/openapi.json", nil, &doc); code != http.StatusOK {
		t.Fatalf("GET /openapi.json = %d, want 200", code)
	}
	if doc.OpenAPI == "" {
		t.Error("openapi version missing")
	}
	for _, p := range []string{"/api/v1/products", "/api/v1/orders", "/api/v1/auth/secret-keys"} {
		if _, ok := doc.Paths[p]; !ok {
			t.Errorf("path %q missing from OpenAPI document", p)
		}
	}
}

func TestShopRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	// Both checks missing and both checks failing reject with Forbidden.
	if code := env.do(http.MethodGet, "/api/v1/products", nil, nil); code != http.StatusForbidden {
		t.Errorf("unauthenticated GET /api/v1/products = %d, want 403", code)
	}
	if code := env.do(http.MethodGet, "/api/v1/orders", nil, nil, withBearer("wrong-secret")); code != http.StatusForbidden {
		t.Errorf("bad-secret GET /api/v1/orders = %d, want 403", code)
	}
}

func TestSecretKeyRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)

	// A service secret is not a session; credential management stays
	// browser-only.
	code := env.do(http.MethodGet, "/api/v1/auth/secret-keys", nil, nil, withBearer(testAdminSecret))
	if code != http.StatusUnauthorized {
		t.Errorf("GET /api/v1/auth/secret-keys with bearer = %d, want 401", code)
	}
}

func TestProductLifecycleWithServiceSecret(t *testing.T) {
	env := newTestEnv(t)
	bearer := withBearer(testAdminSecret)

	var created struct {
		ID       int64 `json:"id"`
		IsHidden bool  `json:"isHidden"`
	}
	code := env.do(http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":        "Desk Lamp",
		"description": "Warm light",
		"price":       1999,
		"stock":       10,
	}, &created, bearer)
	if code != http.StatusCreated {
		t.Fatalf("POST /api/v1/products = %d, want 201", code)
	}
	if created.ID == 0 {
		t.Fatal("created product has no id")
	}

	var list struct {
		Products []model.ProductSummary `json:"products"`
		Total    int64                  `json:"total"`
	}
	if code := env.do(http.MethodGet, "/api/v1/products", nil, &list, bearer); code != http.StatusOK {
		t.Fatalf("GET /api/v1/products = %d, want 200", code)
	}
	if list.Total != 1 || len(list.Products) != 1 {
		t.Fatalf("list = %+v, want one product", list)
	}

	code = env.do(http.MethodPatch, "/api/v1/products/1/visibility",
		map[string]bool{"hidden": true}, nil, bearer)
	if code != http.StatusNoContent {
		t.Fatalf("PATCH visibility = %d, want 204", code)
	}

	var detail struct {
		IsHidden bool `json:"isHidden"`
	}
	if code := env.do(http.MethodGet, "/api/v1/products/1", nil, &detail, bearer); code != http.StatusOK {
		t.Fatalf("GET /api/v1/products/1 = %d, want 200", code)
	}
	if !detail.IsHidden {
		t.Error("product should be hidden after visibility patch")
	}

	if code := env.do(http.MethodDelete, "/api/v1/products/1", nil, nil, bearer); code != http.StatusNoContent {
		t.Fatalf("DELETE /api/v1/products/1 = %d, want 204", code)
	}
	if code := env.do(http.MethodGet, "/api/v1/products/1", nil, nil, bearer); code != http.StatusNotFound {
		t.Errorf("GET deleted product = %d, want 404", code)
	}
}

func TestSessionAuthMe(t *testing.T) {
	env := newTestEnv(t)
	cookies := withCookies(env.sessionCookies())

	// No shop profile exists yet for the session identity.
	if code := env.do(http.MethodGet, "/api/v1/auth/me", nil, nil, cookies); code != http.StatusNotFound {
		t.Fatalf("GET /api/v1/auth/me without profile = %d, want 404", code)
	}

	cust := &model.Customer{Email: "admin@shop.example", FirstName: "Ada", LastName: "Admin"}
	if err := env.store.CreateCustomer(t.Context(), cust); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	var me model.Customer
	if code := env.do(http.MethodGet, "/api/v1/auth/me", nil, &me, cookies); code != http.StatusOK {
		t.Fatalf("GET /api/v1/auth/me = %d, want 200", code)
	}
	if me.Email != "admin@shop.example" {
		t.Errorf("me.Email = %q", me.Email)
	}
}

func TestSecretKeyIssueUseRevoke(t *testing.T) {
	env := newTestEnv(t)
	cookies := withCookies(env.sessionCookies())

	var created struct {
		ID        string `json:"id"`
		SecretKey string `json:"secret_key"`
		Prefix    string `json:"prefix"`
	}
	code := env.do(http.MethodPost, "/api/v1/auth/secret-keys",
		map[string]string{"name": "ci-bot"}, &created, cookies)
	if code != http.StatusCreated {
		t.Fatalf("POST secret-keys = %d, want 201", code)
	}
	if created.SecretKey == "" {
		t.Fatal("plaintext secret missing from create response")
	}

	// The fresh secret authenticates service calls.
	if code := env.do(http.MethodGet, "/api/v1/orders", nil, nil, withBearer(created.SecretKey)); code != http.StatusOK {
		t.Fatalf("GET /api/v1/orders with issued key = %d, want 200", code)
	}

	// Listing shows the prefix but never the secret or hash.
	var keys []map[string]interface{}
	if code := env.do(http.MethodGet, "/api/v1/auth/secret-keys", nil, &keys, cookies); code != http.StatusOK {
		t.Fatalf("GET secret-keys = %d, want 200", code)
	}
	if len(keys) != 1 {
		t.Fatalf("len(keys) = %d, want 1", len(keys))
	}
	if _, leaked := keys[0]["secret_key"]; leaked {
		t.Error("plaintext secret leaked from list endpoint")
	}
	if _, leaked := keys[0]["secret_hash"]; leaked {
		t.Error("secret hash leaked from list endpoint")
	}

	if code := env.do(http.MethodDelete, "/api/v1/auth/secret-keys/"+created.ID, nil, nil, cookies); code != http.StatusOK {
		t.Fatalf("DELETE secret-keys = %d, want 200", code)
	}

	// The revoked secret no longer grants access.
	if code := env.do(http.MethodGet, "/api/v1/orders", nil, nil, withBearer(created.SecretKey)); code != http.StatusForbidden {
		t.Errorf("GET /api/v1/orders with revoked key = %d, want 403", code)
	}
}

func TestSecretKeyQuotaOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	cookies := withCookies(env.sessionCookies())

	for i := 0; i < model.MaxSecretKeys; i++ {
		code := env.do(http.MethodPost, "/api/v1/auth/secret-keys",
			map[string]string{"name": "key"}, nil, cookies)
		if code != http.StatusCreated {
			t.Fatalf("create #%d = %d, want 201", i, code)
		}
	}

	var errResp model.ErrorResponse
	code := env.do(http.MethodPost, "/api/v1/auth/secret-keys",
		map[string]string{"name": "overflow"}, &errResp, cookies)
	if code != http.StatusBadRequest {
		t.Fatalf("create over quota = %d, want 400", code)
	}
	if errResp.Error.Message != "You can only have a maximum of 10 secret keys" {
		t.Errorf("message = %q", errResp.Error.Message)
	}
}

func TestExpiredSessionForbidden(t *testing.T) {
	env := newTestEnv(t)

	claims := jwt.MapClaims{
		"preferred_username": "shop-admin",
		"email":              "admin@shop.example",
		"given_name":         "Ada",
		"family_name":        "Admin",
		"aud":                "account",
		"exp":                time.Now().Add(-time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	signed, err := token.SignedString(env.signer)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	cookies := withCookies([]*http.Cookie{
		{Name: "access_token", Value: signed},
		{Name: "refresh_token", Value: "refresh"},
	})
	if code := env.do(http.MethodGet, "/api/v1/auth/me", nil, nil, cookies); code != http.StatusForbidden {
		t.Errorf("expired session = %d, want 403", code)
	}
}

func TestRefreshWithoutAccessForbidden(t *testing.T) {
	env := newTestEnv(t)

	cookies := withCookies([]*http.Cookie{
		{Name: "refresh_token", Value: "refresh"},
	})
	if code := env.do(http.MethodGet, "/api/v1/auth/me", nil, nil, cookies); code != http.StatusForbidden {
		t.Errorf("refresh-only session = %d, want 403", code)
	}
}
