package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/DocAssist/internal/config"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/stretchr/testify/assert"
)

func echoTrace(t *testing.T, seen *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*seen = logger_i.TraceID(r.Context())
		w.WriteHeader(http.StatusOK)
	}
}

func TestIsValidBearerToken(t *testing.T) {
	log := logger_i.NewLogger("test")
	assert.True(t, IsValidBearerToken("", "", log), "empty token leaves the API open")
	assert.True(t, IsValidBearerToken("Bearer s3cret", "s3cret", log))
	assert.False(t, IsValidBearerToken("", "s3cret", log))
	assert.False(t, IsValidBearerToken("Basic s3cret", "s3cret", log))
	assert.False(t, IsValidBearerToken("Bearer wrong", "s3cret", log))
}

func TestWrapInjectsTrace(t *testing.T) {
	Init(config.ServerConfig{RateLimit: 100, RateBurst: 100})
	var seen string
	h := Wrap(echoTrace(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	req.Header.Set("X-Trace-Id", "trace-123")
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trace-123", seen)
	assert.Equal(t, "trace-123", rec.Header().Get("X-Trace-Id"))

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/chat", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"), "a trace id is generated when none is sent")
}

func TestWrapRequiresToken(t *testing.T) {
	Init(config.ServerConfig{AdminToken: "s3cret", RateLimit: 100, RateBurst: 100})
	defer Init(config.ServerConfig{RateLimit: 100, RateBurst: 100})

	var seen string
	h := Wrap(echoTrace(t, &seen))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/documents", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, seen, "handler must not run")

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWrapRateLimitsPerIP(t *testing.T) {
	Init(config.ServerConfig{RateLimit: 0.001, RateBurst: 2})
	defer Init(config.ServerConfig{RateLimit: 100, RateBurst: 100})

	var seen string
	h := Wrap(echoTrace(t, &seen))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/chat", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		rec := httptest.NewRecorder()
		h(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodGet, "/chat", nil)
	other.RemoteAddr = "10.0.0.8:5555"
	rec := httptest.NewRecorder()
	h(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code, "buckets are per client IP")
}
