package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/crypto/bcrypt"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api/middleware"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api/presenter"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/audit"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/catalog"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/config"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/metrics"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/policy"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/security/password"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/security/token"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/service"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/store"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type testEnv struct {
	handler http.Handler
	ops     http.Handler
	codec   *token.Codec
	auditor *audit.InMemoryAuditor
	store   *store.InMemoryPrincipalStore
}

func newTestEnv(t *testing.T, table *policy.Table, rateLimit config.RateLimitConfig) *testEnv {
	t.Helper()

	codec, err := token.NewCodec(testKey)
	if err != nil {
		t.Fatal(err)
	}
	hasher, err := password.NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	principals := store.NewInMemoryPrincipalStore()
	for _, u := range []struct {
		name, pass  string
		authorities []string
	}{
		{"ash", "pikachu", []string{"ROLE_USER"}},
		{"oak", "professor", []string{"ROLE_ADMIN"}},
	} {
		hash, err := hasher.Hash(u.pass)
		if err != nil {
			t.Fatal(err)
		}
		if err := principals.Put(core.Credential{Username: u.name, PasswordHash: hash, Authorities: u.authorities}); err != nil {
			t.Fatal(err)
		}
	}

	if table == nil {
		table = policy.Default()
	}
	auditor := audit.NewInMemoryAuditor(100)
	m := metrics.New()

	srv := NewServer(Options{
		Authenticator:  middleware.NewAuthenticator(codec, principals, m),
		Policy:         table,
		Login:          service.NewLoginService(principals, hasher, codec, time.Hour, auditor, m),
		Catalog:        catalog.Seeded(),
		Auditor:        auditor,
		Metrics:        m,
		LoginRateLimit: rateLimit,
		RequestTimeout: 5 * time.Second,
	})
	return &testEnv{
		handler: srv.Routes(),
		ops:     srv.OpsRoutes(),
		codec:   codec,
		auditor: auditor,
		store:   principals,
	}
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) mustToken(t *testing.T, subject string, issuedAt time.Time, ttl time.Duration) string {
	t.Helper()
	tok, err := e.codec.Encode(subject, issuedAt, ttl)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func assertErrorObject(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, status, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != presenter.ContentTypeJSON {
		t.Errorf("Content-Type = %q, want %q", got, presenter.ContentTypeJSON)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding body %q: %v", rec.Body.String(), err)
	}
	want := map[string]any{"statusCode": float64(status), "message": message}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestLogin_ReachableWithoutToken(t *testing.T) {
	env := newTestEnv(t, nil, config.RateLimitConfig{})

	rec := env.do(t, http.MethodPost, LoginRoute, "", service.LoginRequest{Username: "ash", Password: "pikachu"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp service.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TokenType != "Bearer" || resp.AccessToken == "" {
		t.Errorf("unexpected login response: %+v", resp)
	}

	// the issued token opens protected routes
	rec = env.do(t, http.MethodGet, "/api/pokemon/5", resp.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/pokemon/5 with login token: status = %d", rec.Code)
	}
	var p catalog.Pokemon
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.Name != "pikachu5" {
		t.Errorf("pokemon = %+v", p)
	}
}

func TestLogin_InvalidTokenDoesNotBlockLogin(t *testing.T) {
	env := newTestEnv(t, nil, config.RateLimitConfig{})

	rec := env.do(t, http.MethodPost, LoginRoute, "garbage", service.LoginRequest{Username: "ash", Password: "pikachu"})
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestLogin_Failures(t *testing.T) {
	env := newTestEnv(t, nil, config.RateLimitConfig{})

	for name, req := range map[string]service.LoginRequest{
		"wrong password": {Username: "ash", Password: "raichu"},
		"unknown user":   {Username: "gary", Password: "eevee"},
	} {
		t.Run(name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, LoginRoute, "", req)
			assertErrorObject(t, rec, http.StatusUnauthorized, presenter.MessageUnauthenticated)
		})
	}

	t.Run("malformed payload", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, LoginRoute, "", map[string]string{"user": "ash"})
		assertErrorObject(t, rec, http.StatusBadRequest, "invalid request payload")
	})
}

func TestLogin_RateLimited(t *testing.T) {
	env := newTestEnv(t, nil, config.RateLimitConfig{Requests: 2, Window: time.Minute})

	req := service.LoginRequest{Username: "ash", Password: "raichu"}
	for i := 0; i < 2; i++ {
		if rec := env.do(t, http.MethodPost, LoginRoute, "", req); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i, rec.Code)
		}
	}
	rec := env.do(t, http.MethodPost, LoginRoute, "", req)
	assertErrorObject(t, rec, http.StatusTooManyRequests, "too many login attempts")
}

func TestProtectedRoutes_Unauthenticated(t *testing.T) {
	env := newTestEnv(t, nil, config.RateLimitConfig{})
	now := time.Now()

	otherCodec, err := token.NewCodec([]byte("ffffffffffffffffffffffffffffffff"))
	if err != nil {
		t.Fatal(err)
	}
	forged, err := otherCodec.Encode("ash", now, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	valid := env.mustToken(t, "ash", now, time.Hour)

	tests := []struct {
		name   string
		path   string
		bearer string
	}{
		{name: "no header", path: "/api/pokemon/5"},
		{name: "expired", path: "/api/pokemon/5", bearer: env.mustToken(t, "ash", now.Add(-2*time.Hour), time.Hour)},
		{name: "forged", path: "/api/pokemon/5", bearer: forged},
		{name: "tampered", path: "/api/pokemon/5", bearer: valid[:len(valid)-2] + "xx"},
		{name: "unknown subject", path: "/api/pokemon/5", bearer: env.mustToken(t, "gary", now, time.Hour)},
		{name: "admin", path: "/api/admin/whoami"},
		{name: "unlisted path", path: "/api/trainers"},
		{name: "dot segments", path: "/api/auth/../pokemon/5"},
		{name: "encoded slash into login", path: "/api/pokemon/1/reviews/..%2F..%2F..%2Fauth%2Flogin"},
		{name: "encoded slash out of auth", path: "/api/auth/..%2F..%2Fpokemon%2F5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, tt.bearer, nil)
			assertErrorObject(t, rec, http.StatusUnauthorized, presenter.MessageUnauthenticated)
		})
	}
}

func TestProtectedRoutes_Authenticated(t *testing.T) {
	env := newTestEnv(t, nil, config.RateLimitConfig{})
	tok := env.mustToken(t, "ash", time.Now(), time.Hour)

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "pokemon", path: "/api/pokemon/5", want: http.StatusOK},
		{name: "pokemon list", path: "/api/pokemon/", want: http.StatusOK},
		{name: "pokemon list without slash", path: "/api/pokemon", want: http.StatusOK},
		{name: "reviews", path: "/api/pokemon/5/reviews", want: http.StatusOK},
		{name: "review", path: "/api/pokemon/5/reviews/9", want: http.StatusOK},
		{name: "review of other pokemon", path: "/api/pokemon/5/reviews/1", want: http.StatusNotFound},
		{name: "missing pokemon", path: "/api/pokemon/99", want: http.StatusNotFound},
		{name: "bad id", path: "/api/pokemon/abc", want: http.StatusBadRequest},
		{name: "admin x reaches router", path: "/api/admin/x", want: http.StatusNotFound},
		{name: "whoami", path: "/api/admin/whoami", want: http.StatusOK},
		{name: "unlisted path", path: "/api/trainers", want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, tok, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %q)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestWhoami(t *testing.T) {
	env := newTestEnv(t, nil, config.RateLimitConfig{})
	rec := env.do(t, http.MethodGet, WhoamiRoute, env.mustToken(t, "oak", time.Now(), time.Hour), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got WhoamiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(WhoamiResponse{Username: "oak", Authorities: []string{"ROLE_ADMIN"}}, got); diff != "" {
		t.Errorf("whoami mismatch (-want +got):\n%s", diff)
	}
}

func TestAccessDenied(t *testing.T) {
	table, err := policy.New([]policy.Rule{
		{Pattern: "/api/auth/**", Access: policy.AccessPublic},
		{Pattern: "/api/pokemon/**", Access: policy.AccessAuthenticated},
		{Pattern: "/api/admin/**", Access: policy.AccessAuthenticated, Expr: `"ROLE_ADMIN" in principal.authorities`},
	})
	if err != nil {
		t.Fatal(err)
	}
	env := newTestEnv(t, table, config.RateLimitConfig{})
	now := time.Now()

	rec := env.do(t, http.MethodGet, ListAuditsRoute, env.mustToken(t, "ash", now, time.Hour), nil)
	assertErrorObject(t, rec, http.StatusForbidden, presenter.MessageAccessDenied)

	rec = env.do(t, http.MethodGet, ListAuditsRoute+"?action="+core.AuditActionDenied, env.mustToken(t, "oak", now, time.Hour), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin audit status = %d", rec.Code)
	}
	var entries []core.AuditEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Username != "ash" || entries[0].Status != http.StatusForbidden {
		t.Errorf("unexpected audit entries: %+v", entries)
	}
}

func TestAdminAudit_InvalidLimit(t *testing.T) {
	env := newTestEnv(t, nil, config.RateLimitConfig{})
	rec := env.do(t, http.MethodGet, ListAuditsRoute+"?limit=abc", env.mustToken(t, "oak", time.Now(), time.Hour), nil)
	assertErrorObject(t, rec, http.StatusBadRequest, "invalid limit parameter")
}

func TestCorrelationIDHeader(t *testing.T) {
	env := newTestEnv(t, nil, config.RateLimitConfig{})
	rec := env.do(t, http.MethodGet, "/api/pokemon/5", "", nil)
	if rec.Header().Get(middleware.CorrelationIDHeader) == "" {
		t.Error("denied response is missing the correlation id header")
	}
	if strings.Contains(rec.Body.String(), rec.Header().Get(middleware.CorrelationIDHeader)) {
		t.Error("correlation id must not be part of the error body")
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil, config.RateLimitConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/pokemon/5", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code == http.StatusUnauthorized {
		t.Fatal("preflight request was rejected by the route policy")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("preflight response is missing Access-Control-Allow-Origin")
	}
}

func TestOpsRoutes(t *testing.T) {
	env := newTestEnv(t, nil, config.RateLimitConfig{})

	// trigger a counted decision
	env.do(t, http.MethodGet, "/api/pokemon/5", "", nil)

	for path, want := range map[string]string{
		HealthCheckRoute: "OK",
		AboutRoute:       "PokemonReviewAPI",
		MetricsRoute:     `pokereview_authorization_decisions_total{decision="unauthenticated"} 1`,
	} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.ops.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), want) {
				t.Errorf("body does not contain %q:\n%s", want, rec.Body.String())
			}
		})
	}

	// ops endpoints are not part of the API listener
	rec := env.do(t, http.MethodGet, HealthCheckRoute, "", nil)
	assertErrorObject(t, rec, http.StatusUnauthorized, presenter.MessageUnauthenticated)
}
