package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func setupRateLimit(t *testing.T, limit int) (http.Handler, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	handler := RateLimitMiddleware(client, RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit",
	}, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	return handler, mr
}

func TestRateLimitAllowsWithinLimit(t *testing.T) {
	handler, _ := setupRateLimit(t, 5)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Request %d rejected with %d", i+1, rec.Code)
		}
	}
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	handler, _ := setupRateLimit(t, 2)

	var lastCode int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		lastCode = rec.Code

		if i == 2 {
			if rec.Header().Get("Retry-After") == "" {
				t.Error("Expected Retry-After header on rejection")
			}
			if rec.Header().Get("X-RateLimit-Remaining") != "0" {
				t.Errorf("Expected zero remaining, got %s", rec.Header().Get("X-RateLimit-Remaining"))
			}
		}
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 after exceeding limit, got %d", lastCode)
	}
}

func TestRateLimitIsolatesClients(t *testing.T) {
	handler, _ := setupRateLimit(t, 1)

	first := httptest.NewRequest(http.MethodGet, "/api/products/", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("First client rejected: %d", rec.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/api/products/", nil)
	second.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusOK {
		t.Fatalf("Second client was throttled by the first one: %d", rec.Code)
	}
}

func TestRateLimitFailsOpenWhenRedisDown(t *testing.T) {
	handler, mr := setupRateLimit(t, 1)
	mr.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/products/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected request to pass when Redis is down, got %d", rec.Code)
	}
}
