package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const readyCheckTimeout = 2 * time.Second

// ReadyCheck is one named readiness probe.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// healthReport is the JSON body of /healthz and /readyz.
type healthReport struct {
	Status string            `json:"status"`
	Failed map[string]string `json:"failed,omitempty"`
}

// HealthHandler serves /healthz: 200 {"status":"ok"} while the process runs.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		writeHealth(rw, http.StatusOK, healthReport{Status: "ok"})
	})
}

// ReadyHandler serves /readyz. Every check runs with a short deadline; any
// failure answers 503 with the failing check names and their errors.
func ReadyHandler(checks ...ReadyCheck) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		ctx, cancel := context.WithTimeout(hr.Context(), readyCheckTimeout)
		defer cancel()

		failed := make(map[string]string)

		for _, rc := range checks {
			err := rc.Check(ctx)
			if err != nil {
				failed[rc.Name] = err.Error()
			}
		}

		if len(failed) > 0 {
			writeHealth(rw, http.StatusServiceUnavailable, healthReport{Status: "unavailable", Failed: failed})

			return
		}

		writeHealth(rw, http.StatusOK, healthReport{Status: "ok"})
	})
}

func writeHealth(rw http.ResponseWriter, code int, report healthReport) {
	rw.Header().Set("Content-Type", "application/json")
	rw.Header().Set("Cache-Control", "no-store")
	rw.WriteHeader(code)

	//nolint:errcheck // Headers are already sent.
	_ = json.NewEncoder(rw).Encode(report)
}
