package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/hilthontt/chatrelay/internal/infrastructure/json"
)

var (
	startTime       = time.Now()
	healthy   int32 = 1 // 1: healthy, 0 = unhealthy
)

// Probe checks one downstream dependency, e.g. a database ping.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handler struct {
	probes []Probe
}

func NewHandler(probes ...Probe) *Handler {
	return &Handler{probes: probes}
}

// GetHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API, including uptime and current timestamp
// @Tags         health
// @Produce      json
// @Success      200 {object} healthResponse "Service is healthy"
// @Failure      503 {object} healthResponse "Service is unhealthy"
// @Router       /health [get]
// @Router       /healthz [get]
// @Router       /live [get]
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&healthy) == 0 {
		json.Write(w, http.StatusServiceUnavailable, healthResponse{
			Status:    "unhealthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).Round(time.Second).String(),
		})
		return
	}

	json.Write(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
	})
}

// GetReady godoc
// @Summary      Readiness check
// @Description  Runs every configured dependency probe and reports per-probe results
// @Tags         health
// @Produce      json
// @Success      200 {object} readyResponse "All probes passed"
// @Failure      503 {object} readyResponse "At least one probe failed"
// @Router       /ready [get]
func (h *Handler) GetReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := readyResponse{
		Status: "ready",
		Checks: make(map[string]string, len(h.probes)),
	}

	status := http.StatusOK
	for _, probe := range h.probes {
		if err := probe.Check(ctx); err != nil {
			resp.Status = "not_ready"
			resp.Checks[probe.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[probe.Name] = "ok"
	}

	json.Write(w, status, resp)
}
