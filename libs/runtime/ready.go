package runtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// ReadyCheck is one named dependency checked by /readyz, such as db or redis.
type ReadyCheck struct {
	Name    string
	Check   func(context.Context) error
	Timeout time.Duration
}

const defaultCheckTimeout = 2 * time.Second

// ReadyReport is the /readyz body. Checks maps each dependency name to "ok" or its error.
type ReadyReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// CheckReady runs every check concurrently, each under its own timeout.
func CheckReady(ctx context.Context, checks ...ReadyCheck) ReadyReport {
	report := ReadyReport{Status: "ok", Checks: make(map[string]string, len(checks))}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i, check := range checks {
		if check.Check == nil {
			continue
		}
		name := check.Name
		if name == "" {
			name = "check-" + strconv.Itoa(i)
		}
		timeout := check.Timeout
		if timeout <= 0 {
			timeout = defaultCheckTimeout
		}
		wg.Add(1)
		go func(name string, fn func(context.Context) error, timeout time.Duration) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			result := "ok"
			if err := fn(cctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			report.Checks[name] = result
			if result != "ok" {
				report.Status = "unavailable"
			}
			mu.Unlock()
		}(name, check.Check, timeout)
	}
	wg.Wait()
	return report
}

// NewBaseMuxWithReady serves /healthz (process is up) and /readyz (dependencies reachable).
func NewBaseMuxWithReady(checks ...ReadyCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		report := CheckReady(r.Context(), checks...)
		code := http.StatusOK
		if report.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
	})
	return mux
}
