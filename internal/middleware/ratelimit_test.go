package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware_GeneralAndAuthBuckets(t *testing.T) {
	mw := NewRateLimitMiddleware(100, 1)

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := mw.Handler(nextHandler)

	// General endpoints use the wide bucket.
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest("GET", "/api/users/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "general request %d", i)
	}

	// The login endpoint gets the strict bucket: with a burst of 1 the second
	// immediate request is rejected.
	req1 := httptest.NewRequest("POST", "/api/users/login", nil)
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)
	assert.Equal(t, http.StatusOK, rec1.Code)

	req2 := httptest.NewRequest("POST", "/api/users/login", nil)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.Equal(t, "60", rec2.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_PerClientIsolation(t *testing.T) {
	mw := NewRateLimitMiddleware(100, 1)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	reqA := httptest.NewRequest("POST", "/api/users/login", nil)
	reqA.RemoteAddr = "10.0.0.1:1234"
	recA := httptest.NewRecorder()
	handler.ServeHTTP(recA, reqA)
	assert.Equal(t, http.StatusOK, recA.Code)

	// A different client still has a full bucket.
	reqB := httptest.NewRequest("POST", "/api/users/login", nil)
	reqB.RemoteAddr = "10.0.0.2:1234"
	recB := httptest.NewRecorder()
	handler.ServeHTTP(recB, reqB)
	assert.Equal(t, http.StatusOK, recB.Code)
}

func TestRateLimitMiddleware_DefaultFallbacks(t *testing.T) {
	mw := NewRateLimitMiddleware(-1, 0)
	assert.Equal(t, 100, mw.generalRPM)
	assert.Equal(t, 10, mw.authRPM)
}

func TestRateLimitMiddleware_AuthPathMatching(t *testing.T) {
	mw := NewRateLimitMiddleware(100, 10)

	assert.True(t, mw.isAuthPath("/api/users/login"))
	assert.True(t, mw.isAuthPath("/api/users/register"))
	assert.True(t, mw.isAuthPath("/api/users/forgot-password"))
	assert.True(t, mw.isAuthPath("/api/users/reset-password"))
	assert.False(t, mw.isAuthPath("/api/users/profile"))
	assert.False(t, mw.isAuthPath("/api/users/health"))
}
