package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/bryanwahyu/achalasia-report/internal/logger"
)

const healthTimeout = 5 * time.Second

// HealthChecker is anything the API depends on that can be probed, such as
// the AI provider configuration or the report store.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a plain function to HealthChecker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

type CheckStatus struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration"`
}

// runChecks probes every dependency in parallel under one shared deadline.
func runChecks(ctx context.Context, checkers map[string]HealthChecker) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	st := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckStatus, len(checkers)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()
			start := time.Now()
			err := checker.Check(ctx)
			cs := CheckStatus{Status: "healthy", Duration: time.Since(start).Round(time.Microsecond).String()}
			if err != nil {
				cs.Status = "unhealthy"
				cs.Message = err.Error()
				logger.WithError(err).WithField("check", name).Warn("health check failed")
			}

			mu.Lock()
			defer mu.Unlock()
			st.Checks[name] = cs
			if err != nil {
				st.Status = "unhealthy"
			}
		}(name, checker)
	}
	wg.Wait()
	return st
}

// HealthHandler reports every check with its outcome; 503 when any failed.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := runChecks(r.Context(), checkers)
		code := http.StatusOK
		if st.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(st)
	}
}

// ReadinessHandler runs the same checks but only answers ready or not, so a
// load balancer never sees dependency error text.
func ReadinessHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := runChecks(r.Context(), checkers)
		code, status := http.StatusOK, "ready"
		if st.Status != "healthy" {
			code, status = http.StatusServiceUnavailable, "not_ready"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":    status,
			"timestamp": st.Timestamp,
		})
	}
}

// LivenessHandler answers as long as the process serves requests.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
