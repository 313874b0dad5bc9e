package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hospicloud/internal/domain/entity"
	"hospicloud/internal/infrastructure/identity"
	"hospicloud/internal/testutil"
	"hospicloud/pkg/metrics"

	"github.com/gorilla/mux"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// provisionToken creates an identity with claims and returns its bearer token.
func provisionToken(t *testing.T, p *testutil.FakeProvider, email string, claims identity.Claims) string {
	t.Helper()
	ctx := context.Background()
	uid, err := p.ProvisionIdentity(ctx, email, "secret12", "Test User")
	require.NoError(t, err)
	require.NoError(t, p.SetClaims(ctx, uid, claims))
	token, err := p.SignIn(ctx, email, "secret12")
	require.NoError(t, err)
	return token.AccessToken
}

// echoCurrentUser responds 200 with the caller's role, or 500 when absent.
func echoCurrentUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current, ok := GetCurrentUser(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(current.Role))
	})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	provider := testutil.NewFakeProvider()
	hospitalID := uint(4)
	token := provisionToken(t, provider, "admin@example.com", identity.Claims{UserID: 9, Role: entity.RoleAdmin, HospitalID: &hospitalID})
	h := NewAuthMiddleware(provider, testutil.NewLogger()).Authenticate(echoCurrentUser())

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic " + token, http.StatusUnauthorized},
		{"malformed", "Bearer", http.StatusUnauthorized},
		{"unknown token", "Bearer token-unknown", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(h, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "admin", rec.Body.String())
			}
		})
	}
}

func TestAuthenticateCarriesClaims(t *testing.T) {
	provider := testutil.NewFakeProvider()
	hospitalID := uint(4)
	token := provisionToken(t, provider, "doc@example.com", identity.Claims{UserID: 12, Role: entity.RoleDoctor, HospitalID: &hospitalID})

	var seen *entity.CurrentUser
	h := NewAuthMiddleware(provider, testutil.NewLogger()).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetCurrentUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	serve(h, req)

	require.NotNil(t, seen)
	assert.Equal(t, uint(12), seen.ID)
	assert.Equal(t, entity.RoleDoctor, seen.Role)
	assert.Equal(t, "token-"+seen.UID, token)
	require.NotNil(t, seen.HospitalID)
	assert.Equal(t, uint(4), *seen.HospitalID)
}

type failingProvider struct {
	*testutil.FakeProvider
}

func (failingProvider) VerifyToken(ctx context.Context, token string) (*identity.VerifiedToken, error) {
	return nil, errors.New("connection refused")
}

func TestAuthenticateProviderFailure(t *testing.T) {
	h := NewAuthMiddleware(failingProvider{testutil.NewFakeProvider()}, testutil.NewLogger()).Authenticate(echoCurrentUser())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	assert.Equal(t, http.StatusInternalServerError, serve(h, req).Code)
}

func withCaller(req *http.Request, role entity.Role) *http.Request {
	current := &entity.CurrentUser{ID: 1, Role: role}
	return req.WithContext(context.WithValue(req.Context(), CurrentUserKey, current))
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name   string
		guard  func(http.Handler) http.Handler
		role   entity.Role
		status int
	}{
		{"admin allowed", RequireAdmin, entity.RoleAdmin, http.StatusNoContent},
		{"doctor refused by admin guard", RequireAdmin, entity.RoleDoctor, http.StatusUnauthorized},
		{"doctor allowed", RequireDoctor, entity.RoleDoctor, http.StatusNoContent},
		{"admin refused by doctor guard", RequireDoctor, entity.RoleAdmin, http.StatusUnauthorized},
		{"admin or doctor", RequireAdminOrDoctor, entity.RoleAdmin, http.StatusNoContent},
		{"patient refused", RequireAdminOrDoctor, entity.RolePatient, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withCaller(httptest.NewRequest(http.MethodGet, "/", nil), tt.role)
			assert.Equal(t, tt.status, serve(tt.guard(ok), req).Code)
		})
	}

	t.Run("no caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusUnauthorized, serve(RequireAdmin(ok), req).Code)
	})
}

func TestRateLimiter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := NewRateLimiter(0.001, 2).Handle(ok)

	from := func(addr string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = addr
		return req
	}

	assert.Equal(t, http.StatusOK, serve(h, from("10.0.0.1:5000")).Code)
	assert.Equal(t, http.StatusOK, serve(h, from("10.0.0.1:5001")).Code)

	limited := serve(h, from("10.0.0.1:5002"))
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(h, from("10.0.0.2:5000")).Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := NewRateLimiter(0, 0).Handle(ok)

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		require.Equal(t, http.StatusOK, serve(h, req).Code)
	}
}

func TestRequestLoggerAssignsRequestID(t *testing.T) {
	var seen string
	h := RequestLogger(testutil.NewLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = serve(h, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	h := Recovery(testutil.NewLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := NewCORSMiddleware("").Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := serve(h, httptest.NewRequest(http.MethodOptions, "/api/v1/users", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)

	rec = serve(NewCORSMiddleware("https://app.example.com").Handle(http.NotFoundHandler()), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	m := metrics.NewMetrics("test", "")
	router := mux.NewRouter()
	router.Use(Metrics(m))
	router.HandleFunc("/users/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	serve(router, httptest.NewRequest(http.MethodGet, "/users/1", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/users/2", nil))

	assert.Equal(t, float64(2), promtest.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/users/{id:[0-9]+}", "404")))
}
