package health

// healthResponse reports process liveness
type healthResponse struct {
	Status    string `json:"status" example:"ok" enum:"ok,unhealthy"`  // Health status (ok or unhealthy)
	Timestamp string `json:"timestamp" example:"2024-01-01T12:00:00Z"` // Current server timestamp in RFC3339 format
	Uptime    string `json:"uptime" example:"2h30m45s"`                // Server uptime since start
}

// readyResponse reports per-dependency readiness probe results
type readyResponse struct {
	Status string            `json:"status" example:"ready" enum:"ready,not_ready"`
	Checks map[string]string `json:"checks,omitempty"` // Probe name to "ok" or the error text
}
