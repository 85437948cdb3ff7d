package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"networth/internal/cache"
	"networth/internal/coingecko"
	"networth/internal/db"
	"networth/internal/service"
	"networth/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeCoinGecko serves /coins/list and /simple/price from fixed data
type fakeCoinGecko struct {
	mu         sync.Mutex
	prices     coingecko.Prices
	failPrices bool
	priceCalls int
}

func (f *fakeCoinGecko) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/coins/list":
		_ = json.NewEncoder(w).Encode([]coingecko.Coin{{ID: "bitcoin"}, {ID: "ethereum"}})
	case "/simple/price":
		f.priceCalls++
		if f.failPrices {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(f.prices)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeCoinGecko) setPrices(p coingecko.Prices) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices = p
}

func (f *fakeCoinGecko) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.priceCalls
}

type testServer struct {
	router   *gin.Engine
	provider *fakeCoinGecko
	redis    *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	provider := &fakeCoinGecko{prices: coingecko.Prices{"bitcoin": {"usd": 50000}}}
	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)

	svc := service.New(
		store.New(gdb),
		coingecko.NewClient(srv.URL, "", 5*time.Second),
		cache.NewSymbolCache(rdb, 300*time.Second),
		cache.NewNetWorthCache(rdb, 300*time.Second),
		service.Options{BcryptCost: bcrypt.MinCost},
	)
	router := NewRouter(svc, svc, RouterOptions{
		CORSOrigins: []string{"https://app.example"},
		HealthChecks: map[string]HealthCheck{
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})
	return &testServer{router: router, provider: provider, redis: mr}
}

func (s *testServer) do(t *testing.T, method, path, apiKey string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("api-key", apiKey)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (s *testServer) createUser(t *testing.T, name string) string {
	t.Helper()
	w, body := s.do(t, http.MethodPost, "/users/", "", gin.H{"name": name})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User created", body["message"])
	key, ok := body["api_key"].(string)
	require.True(t, ok)
	return key
}

func TestCreateUser(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "testuser")

	w, body := s.do(t, http.MethodPost, "/users/", "", gin.H{"name": "testuser"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", body["detail"])

	w, _ = s.do(t, http.MethodPost, "/users/", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenameUser(t *testing.T) {
	s := newTestServer(t)
	key := s.createUser(t, "testuser")

	w, body := s.do(t, http.MethodPut, "/users/", key, gin.H{"old_name": "testuser", "new_name": "updated_user"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User name updated successfully", body["message"])
	assert.Equal(t, "updated_user", body["new_name"])

	w, _ = s.do(t, http.MethodGet, "/users/testuser/networth?currency=usd", key, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodGet, "/users/updated_user/networth?currency=usd", key, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRenameUser_NameTooLong(t *testing.T) {
	s := newTestServer(t)
	key := s.createUser(t, "testuser")

	w, body := s.do(t, http.MethodPut, "/users/", key, gin.H{"old_name": "testuser", "new_name": strings.Repeat("n", 101)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request", body["detail"])

	w, _ = s.do(t, http.MethodGet, "/users/testuser/balances", key, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRenameUser_AuthFailures(t *testing.T) {
	s := newTestServer(t)
	key := s.createUser(t, "testuser")

	w, body := s.do(t, http.MethodPut, "/users/", "", gin.H{"old_name": "testuser", "new_name": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "API key is required", body["detail"])

	w, body = s.do(t, http.MethodPut, "/users/", key, gin.H{"new_name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username is required", body["detail"])

	w, body = s.do(t, http.MethodPut, "/users/", "wrong", gin.H{"old_name": "testuser", "new_name": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid username or API key", body["detail"])
}

func TestDeleteUser(t *testing.T) {
	s := newTestServer(t)
	key := s.createUser(t, "testuser")

	w, body := s.do(t, http.MethodDelete, "/users/testuser", key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User deleted successfully", body["message"])

	w, body = s.do(t, http.MethodDelete, "/users/testuser", key, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid username or API key", body["detail"])
}

func TestBalanceUpdateAndNetWorth(t *testing.T) {
	s := newTestServer(t)
	key := s.createUser(t, "alice")

	w, body := s.do(t, http.MethodPost, "/balances/", key, gin.H{"name": "alice", "symbol": "dasdasdsa", "amount": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Symbol not found.", body["detail"])

	w, body = s.do(t, http.MethodPost, "/balances/", key, gin.H{"name": "alice", "symbol": "bitcoin", "amount": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Updated alice's BITCOIN balance", body["message"])
	assert.Equal(t, 2.0, body["balance"])

	w, body = s.do(t, http.MethodGet, "/users/alice/networth?currency=usd", key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100000.0, body["net_worth"])
	assert.Equal(t, "usd", body["currency"])
	assert.Equal(t, map[string]any{
		"BITCOIN": map[string]any{"amount": 2.0, "price_per_unit": 50000.0, "total_value": 100000.0},
	}, body["details"])
	assert.True(t, s.redis.Exists("networth:alice:usd"))

	w, body = s.do(t, http.MethodGet, "/users/alice/balances", key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"BITCOIN": 2.0}, body["balances"])
}

func TestNetWorth_FreshAfterBalanceUpdate(t *testing.T) {
	s := newTestServer(t)
	key := s.createUser(t, "alice")

	w, _ := s.do(t, http.MethodPost, "/balances/", key, gin.H{"name": "alice", "symbol": "bitcoin", "amount": 1})
	require.Equal(t, http.StatusOK, w.Code)
	_, body := s.do(t, http.MethodGet, "/users/alice/networth?currency=usd", key, nil)
	assert.Equal(t, 50000.0, body["net_worth"])

	// Served from cache even though the provider price moved
	s.provider.setPrices(coingecko.Prices{"bitcoin": {"usd": 60000}})
	_, body = s.do(t, http.MethodGet, "/users/alice/networth?currency=usd", key, nil)
	assert.Equal(t, 50000.0, body["net_worth"])
	assert.Equal(t, 1, s.provider.calls())

	w, body = s.do(t, http.MethodPost, "/balances/", key, gin.H{"name": "alice", "symbol": "bitcoin", "amount": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, body["balance"])
	assert.False(t, s.redis.Exists("networth:alice:usd"))

	_, body = s.do(t, http.MethodGet, "/users/alice/networth?currency=usd", key, nil)
	assert.Equal(t, 180000.0, body["net_worth"])
	assert.Equal(t, 2, s.provider.calls())
}

func TestNetWorth_CacheIsolatedBetweenUsers(t *testing.T) {
	s := newTestServer(t)
	owner := s.createUser(t, "alice:x")
	other := s.createUser(t, "alice")

	w, _ := s.do(t, http.MethodPost, "/balances/", owner, gin.H{"name": "alice:x", "symbol": "bitcoin", "amount": 2})
	require.Equal(t, http.StatusOK, w.Code)
	w, body := s.do(t, http.MethodGet, "/users/alice:x/networth?currency=usd", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100000.0, body["net_worth"])
	assert.True(t, s.redis.Exists("networth:alice:x:usd"))

	// Same key as alice:x in usd if the currency could carry a separator
	w, body = s.do(t, http.MethodGet, "/users/alice/networth?currency=x:usd", other, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid currency", body["detail"])
	assert.NotContains(t, body, "details")

	w, body = s.do(t, http.MethodGet, "/users/alice/networth?currency=usd", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, body["net_worth"])
	assert.Equal(t, map[string]any{}, body["details"])

	_, body = s.do(t, http.MethodGet, "/users/alice:x/networth?currency=usd", owner, nil)
	assert.Equal(t, 100000.0, body["net_worth"])
}

func TestNetWorth_NoBalances(t *testing.T) {
	s := newTestServer(t)
	key := s.createUser(t, "alice")

	w, body := s.do(t, http.MethodGet, "/users/alice/networth?currency=eur", key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, body["net_worth"])
	assert.Equal(t, map[string]any{}, body["details"])
	assert.Zero(t, s.provider.calls())
}

func TestNetWorth_Errors(t *testing.T) {
	s := newTestServer(t)
	key := s.createUser(t, "alice")
	w, _ := s.do(t, http.MethodPost, "/balances/", key, gin.H{"name": "alice", "symbol": "bitcoin", "amount": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := s.do(t, http.MethodGet, "/users/alice/networth", key, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Currency is required", body["detail"])

	w, _ = s.do(t, http.MethodGet, "/users/alice/networth?currency=usd", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.provider.mu.Lock()
	s.provider.failPrices = true
	s.provider.mu.Unlock()
	w, body = s.do(t, http.MethodGet, "/users/alice/networth?currency=usd", key, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch prices from CoinGecko", body["detail"])
}

func TestUpdateBalance_AuthFailures(t *testing.T) {
	s := newTestServer(t)
	key := s.createUser(t, "alice")
	other := s.createUser(t, "bob")

	w, _ := s.do(t, http.MethodPost, "/balances/", "", gin.H{"name": "alice", "symbol": "bitcoin", "amount": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, "/balances/", other, gin.H{"name": "alice", "symbol": "bitcoin", "amount": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodPost, "/balances/", key, gin.H{"name": "alice", "symbol": "bitcoin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	s.redis.SetError("server down")
	w, body = s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, body["failed"], "redis")
}

func TestNewErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"wrapped upstream", errors.Wrap(service.ErrUpstream, "status 502"), http.StatusInternalServerError, "Failed to fetch prices from CoinGecko"},
		{"duplicate user", service.ErrUserExists, http.StatusBadRequest, "User already exists"},
		{"missing key", service.ErrMissingAPIKey, http.StatusUnauthorized, "API key is required"},
		{"unexpected", errors.New("disk full"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			newErrorResponse(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.True(t, c.IsAborted())
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantDetail, body.Detail)
		})
	}
}
