package health

import (
	"encoding/json"
	"maps"
)

// Status is the outcome of a single probe.
type Status string

const (
	// StatusOK indicates the dependency is healthy.
	StatusOK Status = "ok"
	// StatusWarning indicates a degraded or non-critical failure.
	StatusWarning Status = "warning"
	// StatusError indicates the dependency failed.
	StatusError Status = "error"
)

// ProbeResult is the immutable outcome of one probe. Extra fields are
// flattened next to status and message when encoded.
type ProbeResult struct {
	Status  Status
	Message string
	extra   map[string]any
}

// NewProbeResult builds a result, copying extra.
func NewProbeResult(status Status, message string, extra map[string]any) ProbeResult {
	r := ProbeResult{Status: status, Message: message}
	if len(extra) > 0 {
		r.extra = maps.Clone(extra)
	}
	return r
}

// Extra returns a copy of the additional fields.
func (r ProbeResult) Extra() map[string]any {
	return maps.Clone(r.extra)
}

// MarshalJSON encodes the result as a flat object.
func (r ProbeResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.extra)+2)
	for k, v := range r.extra {
		out[k] = v
	}
	out["status"] = r.Status
	if r.Message != "" {
		out["message"] = r.Message
	}
	return json.Marshal(out)
}

// ReadyReport is the readiness response.
type ReadyReport struct {
	Status    string                 `json:"status"`
	Checks    map[string]ProbeResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// Ready reports whether the critical dependency passed.
func (r *ReadyReport) Ready() bool {
	return r.Status == ReadyStatusReady
}

// StartupReport is the startup probe response.
type StartupReport struct {
	Status      string `json:"status"`
	AppName     string `json:"app_name"`
	Environment string `json:"environment"`
}

// AppInfo describes the running application.
type AppInfo struct {
	Name        string `json:"name"`
	Environment string `json:"environment"`
	Debug       bool   `json:"debug"`
	Version     string `json:"version"`
}

// Uptime describes how long the process has been serving.
type Uptime struct {
	Source            string `json:"source"`
	SecondsSinceStart int64  `json:"seconds_since_start"`
}

// DetailedReport is the token-gated report response.
type DetailedReport struct {
	App       AppInfo                `json:"app"`
	Checks    map[string]ProbeResult `json:"checks"`
	Uptime    Uptime                 `json:"uptime"`
	Timestamp string                 `json:"timestamp"`
}

// ErrorResponse is the body returned by rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
