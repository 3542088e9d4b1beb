package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("burst of 2 should pass")
	}
	if rl.Allow("a") {
		t.Fatal("third request in the same instant should be limited")
	}
	if !rl.Allow("b") {
		t.Fatal("clients are limited independently")
	}

	now = now.Add(time.Second)
	if !rl.Allow("a") {
		t.Fatal("a token should refill after one second")
	}

	now = now.Add(11 * time.Minute)
	if n := rl.Sweep(); n != 2 {
		t.Fatalf("swept %d clients, want 2", n)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	h := RateLimitMiddleware(rl)(http.HandlerFunc(okHandler))

	call := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := call("/v1/analyze"); rec.Code != http.StatusNoContent {
		t.Fatalf("first call = %d", rec.Code)
	}
	rec := call("/v1/analyze")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second call = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["error"] == "" {
		t.Fatalf("body = %v, %v", body, err)
	}
	if rec := call("/healthz/live"); rec.Code != http.StatusNoContent {
		t.Fatalf("health must bypass the limiter, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.1:1234"
	if got := ClientIP(req); got != "198.51.100.1" {
		t.Fatalf("ClientIP = %q", got)
	}
	req.Header.Set("X-Forwarded-For", "192.0.2.9, 10.0.0.1")
	if got := ClientIP(req); got != "192.0.2.9" {
		t.Fatalf("ClientIP = %q", got)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 36 || rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("minted id = %q, header = %q", seen, rec.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "trace-42")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "trace-42" {
		t.Fatalf("incoming id not reused: %q", seen)
	}

	req.Header.Set(RequestIDHeader, "bad id\nwith newline")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "bad id\nwith newline" {
		t.Fatal("malformed incoming id must be replaced")
	}
}

func TestHealthHandler(t *testing.T) {
	h := HealthHandler(map[string]HealthChecker{
		"ok":   CheckFunc(func(context.Context) error { return nil }),
		"down": CheckFunc(func(context.Context) error { return errors.New("bucket missing") }),
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	var st HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Status != "unhealthy" || st.Checks["down"].Message != "bucket missing" || st.Checks["ok"].Status != "healthy" {
		t.Fatalf("health = %+v", st)
	}
}

func TestReadinessHidesCheckErrors(t *testing.T) {
	checkers := map[string]HealthChecker{
		"storage": CheckFunc(func(context.Context) error { return errors.New("secret endpoint refused") }),
	}
	rec := httptest.NewRecorder()
	ReadinessHandler(checkers)(rec, httptest.NewRequest(http.MethodGet, "/healthz/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("readiness leaked check error: %s", rec.Body)
	}

	rec = httptest.NewRecorder()
	ReadinessHandler(nil)(rec, httptest.NewRequest(http.MethodGet, "/healthz/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status without checks = %d", rec.Code)
	}
}

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		in, want string
		err      bool
	}{
		{"scan.png", "scan.png", false},
		{"  ../../etc/passwd ", "passwd", false},
		{`C:\Users\me\x-ray.jpg`, "x-ray.jpg", false},
		{"bad\x00name\x07.png", "badname.png", false},
		{"", "", false},
		{"..", "", false},
		{string(make([]byte, 300)) + "a", "a", false},
	}
	for _, tt := range tests {
		got, err := CleanFileName(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("CleanFileName(%q) = %q, %v", tt.in, got, err)
		}
	}

	long := make([]rune, 300)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := CleanFileName(string(long)); err == nil {
		t.Error("overlong names must be rejected")
	}
}

func TestDecodeImage(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     string
		wantMIME string
		err      bool
	}{
		{"plain", "aGVsbG8=", "hello", "", false},
		{"unpadded", "aGVsbG8", "hello", "", false},
		{"data uri", "data:image/png;base64,aGVsbG8=", "hello", "image/png", false},
		{"not base64 uri", "data:image/png,hello", "", "", true},
		{"garbage", "!!!", "", "", true},
		{"empty", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, mime, err := DecodeImage(tt.in)
			if (err != nil) != tt.err {
				t.Fatalf("err = %v", err)
			}
			if string(data) != tt.want || mime != tt.wantMIME {
				t.Fatalf("DecodeImage = %q, %q", data, mime)
			}
		})
	}
}
