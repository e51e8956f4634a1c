package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Names the gateway registers its dependency checks under.
const (
	CheckHistory = "history" // SQL history backend
	CheckRedis   = "redis"   // file reputation cache
	CheckArchive = "minio"   // history report archive
)

const checkTimeout = 2 * time.Second

// HealthChecker pings one backing dependency.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc lets a ping closure (redis, minio) stand in as a HealthChecker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// SQLPing checks the sqlite, mysql or postgres history database.
type SQLPing struct {
	DB *sql.DB
}

func (p *SQLPing) Check(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

// Health is the /health body. Status is "ok", "degraded" when only the
// cache or archive is failing, and "down" when history is unreachable.
type Health struct {
	Service   string                      `json:"service"`
	Status    string                      `json:"status"`
	Timestamp time.Time                   `json:"timestamp"`
	Checks    map[string]DependencyHealth `json:"checks"`
}

type DependencyHealth struct {
	OK        bool   `json:"ok"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// runChecks pings every dependency in parallel, each under checkTimeout.
func runChecks(ctx context.Context, checkers map[string]HealthChecker) map[string]DependencyHealth {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]DependencyHealth, len(checkers))
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			start := time.Now()
			err := checker.Check(cctx)
			dh := DependencyHealth{OK: err == nil, LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				dh.Error = err.Error()
			}
			mu.Lock()
			out[name] = dh
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()
	return out
}

// HealthHandler answers 503 only when history storage fails. A failing
// cache or archive leaves analysis working, so it reports "degraded" with 200.
func HealthHandler(service string, checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := Health{
			Service:   service,
			Status:    "ok",
			Timestamp: time.Now().UTC(),
			Checks:    runChecks(r.Context(), checkers),
		}
		code := http.StatusOK
		for name, dh := range h.Checks {
			if dh.OK {
				continue
			}
			if name == CheckHistory {
				h.Status = "down"
				code = http.StatusServiceUnavailable
				break
			}
			h.Status = "degraded"
		}
		writeHealth(w, code, h)
	}
}

// ReadinessHandler reports ready while the history check (when registered) passes.
func ReadinessHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"status": "ready", "timestamp": time.Now().UTC()}
		code := http.StatusOK
		if c, ok := checkers[CheckHistory]; ok {
			res := runChecks(r.Context(), map[string]HealthChecker{CheckHistory: c})[CheckHistory]
			if !res.OK {
				body["status"] = "not ready"
				body["error"] = res.Error
				code = http.StatusServiceUnavailable
			}
		}
		writeHealth(w, code, body)
	}
}

func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeHealth(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
