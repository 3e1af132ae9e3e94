package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/realtime"
)

const productID = "64b7f0c2a1b2c3d4e5f60718"

// fakeShop 最小的商城 API
type fakeShop struct {
	mu       sync.Mutex
	hits     map[string]int
	logouts  []string
	rejectMe bool
}

func (f *fakeShop) hit(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[key]++
}

func (f *fakeShop) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Unauthorized"})
}

func newShop(t *testing.T) (*fakeShop, *httptest.Server) {
	t.Helper()
	shop := &fakeShop{hits: map[string]int{}}
	user := map[string]any{"id": "64b7f0c2a1b2c3d4e5f60719", "name": "Ada", "email": "ada@example.com", "role": "admin"}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		shop.hit("login")
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"user": user, "accessToken": "acc-1", "refreshToken": "ref-1",
		}})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		shop.hit("me")
		shop.mu.Lock()
		reject := shop.rejectMe
		shop.mu.Unlock()
		if reject || r.Header.Get("Authorization") != "Bearer acc-1" {
			unauthorized(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": user})
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		shop.hit("refresh")
		unauthorized(w)
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		shop.mu.Lock()
		shop.logouts = append(shop.logouts, body["refreshToken"])
		shop.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
	})
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		shop.hit("products")
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": productID, "name": "Classic Tee", "price": 19.5, "rating": 4.5, "reviewCount": 12},
			},
			"pagination": map[string]any{"page": 1, "limit": 20, "total": 1, "totalPages": 1},
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		shop.hit("other " + r.URL.Path)
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Not found"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("SHOPFRONT_API_URL", srv.URL+"/api")
	t.Setenv("SHOPFRONT_STORAGE", "file")
	t.Setenv("SHOPFRONT_STORAGE_DIR", t.TempDir())
	t.Setenv("SHOPFRONT_REALTIME", "none")
	t.Setenv("SHOPFRONT_LOG_LEVEL", "error")
	t.Setenv("SHOPFRONT_CONFIG", "")
	return shop, srv
}

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(args ...string) result {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestUsage(t *testing.T) {
	newShop(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "no command", args: nil, code: 2},
		{name: "unknown command", args: []string{"checkout-now"}, code: 2},
		{name: "help", args: []string{"-h"}, code: 0},
		{name: "bad subcommand flag", args: []string{"products", "-color", "red"}, code: 2},
		{name: "product without id", args: []string{"product"}, code: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(tt.args...)
			assert.Equal(t, tt.code, res.code, res.stderr)
		})
	}
}

func TestLoginMeLogout(t *testing.T) {
	shop, _ := newShop(t)

	res := runCLI("login", "-email", "ada@example.com", "-password", "secret123")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Logged in as Ada")

	// 令牌持久化后，新进程可以恢复会话
	res = runCLI("me")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "ada@example.com")
	assert.Contains(t, res.stdout, "admin")

	res = runCLI("logout")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, []string{"ref-1"}, shop.logouts)

	meCalls := shop.count("me")
	res = runCLI("me")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Not logged in")
	assert.Equal(t, meCalls, shop.count("me"), "no stored tokens, no request")
}

func TestLoginValidationNeverReachesServer(t *testing.T) {
	shop, _ := newShop(t)

	res := runCLI("login", "-email", "not-an-email", "-password", "secret123")
	assert.Equal(t, 1, res.code)
	assert.NotEmpty(t, res.stderr)
	assert.Zero(t, shop.count("login"))
}

func TestRejectedStoredSessionIsCleared(t *testing.T) {
	shop, _ := newShop(t)
	require.Equal(t, 0, runCLI("login", "-email", "ada@example.com", "-password", "secret123").code)

	shop.mu.Lock()
	shop.rejectMe = true
	shop.mu.Unlock()

	res := runCLI("me")
	assert.Equal(t, 1, res.code)
	assert.Equal(t, 1, shop.count("refresh"))

	// 令牌已被清除，不再请求 /auth/me
	meCalls := shop.count("me")
	res = runCLI("me")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Not logged in")
	assert.Equal(t, meCalls, shop.count("me"))
}

func TestProducts(t *testing.T) {
	shop, _ := newShop(t)

	res := runCLI("products", "-search", "tee")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Classic Tee")
	assert.Contains(t, res.stdout, "19.50")
	assert.Contains(t, res.stdout, "page 1/1, 1 products")
	assert.Equal(t, 1, shop.count("products"))
}

func TestProductRejectsMalformedID(t *testing.T) {
	shop, _ := newShop(t)

	res := runCLI("product", "not-an-id")
	assert.Equal(t, 1, res.code)
	assert.NotEmpty(t, res.stderr)
	assert.Zero(t, shop.count("other /api/products/not-an-id"))
}

func TestCompareNeedsTwoProducts(t *testing.T) {
	newShop(t)

	res := runCLI("compare", productID)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "at least two products")
}

func TestCartRequiresLogin(t *testing.T) {
	newShop(t)

	res := runCLI("cart")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Not logged in")
}

func TestTheme(t *testing.T) {
	newShop(t)
	t.Setenv("SHOPFRONT_SYSTEM_THEME", "light")

	steps := []struct {
		args []string
		code int
		want string
	}{
		{args: []string{"theme"}, want: "light"},
		{args: []string{"theme", "toggle"}, want: "dark"},
		{args: []string{"theme"}, want: "dark"},
		{args: []string{"theme", "light"}, want: "light"},
		{args: []string{"theme", "blue"}, code: 2},
	}
	for _, step := range steps {
		res := runCLI(step.args...)
		require.Equal(t, step.code, res.code, res.stderr)
		if step.want != "" {
			assert.Equal(t, step.want+"\n", res.stdout)
		}
	}
}

func TestListenRequiresTransport(t *testing.T) {
	newShop(t)
	require.Equal(t, 0, runCLI("login", "-email", "ada@example.com", "-password", "secret123").code)

	res := runCLI("listen")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "realtime transport is disabled")
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name      string
		connected bool
		want      int
	}{
		{name: "connected", connected: true, want: http.StatusOK},
		{name: "disconnected", connected: false, want: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := realtime.NewLocalSource()
			src.SetConnected(tt.connected)
			health := realtime.NewHealthChecker(src, time.Second)

			rec := httptest.NewRecorder()
			healthHandler(health)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
