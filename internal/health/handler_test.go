package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(agg *Aggregator, reportMiddleware ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	NewHandler(agg, nil).RegisterRoutes(engine.Group("/health"), reportMiddleware...)
	return engine
}

func doRequest(engine http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandler_Live(t *testing.T) {
	d := newTestDeps()
	d.db.pingErr = errors.New("db down")
	engine := newTestRouter(newTestAggregator(d, testSettings()))

	w := doRequest(engine, "/health/live", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Zero(t, d.totalCalls())
}

func TestHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		dbErr      error
		backendErr error
		cacheErr   error
		wantCode   int
		wantStatus string
		wantChecks []string
	}{
		{
			name:       "healthy",
			wantCode:   http.StatusOK,
			wantStatus: "ready",
			wantChecks: []string{"database", "redis", "cache"},
		},
		{
			name:       "database down",
			dbErr:      errors.New("connection refused"),
			backendErr: errors.New("redis down"),
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "error",
			wantChecks: []string{"database"},
		},
		{
			name:       "redis and cache down",
			backendErr: errors.New("redis down"),
			cacheErr:   errors.New("cache down"),
			wantCode:   http.StatusOK,
			wantStatus: "ready",
			wantChecks: []string{"database", "redis", "cache"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			d.db.pingErr = tt.dbErr
			d.backend.pingErr = tt.backendErr
			d.cache.setErr = tt.cacheErr
			engine := newTestRouter(newTestAggregator(d, testSettings()))

			w := doRequest(engine, "/health/ready", nil)

			assert.Equal(t, tt.wantCode, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.wantStatus, body["status"])
			assert.Equal(t, "2024-03-01T12:00:00Z", body["timestamp"])

			checks, ok := body["checks"].(map[string]any)
			require.True(t, ok)
			assert.Len(t, checks, len(tt.wantChecks))
			for _, name := range tt.wantChecks {
				assert.Contains(t, checks, name)
			}
		})
	}
}

func TestHandler_Ready_WarningBody(t *testing.T) {
	d := newTestDeps()
	d.backend.pingErr = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
	engine := newTestRouter(newTestAggregator(d, testSettings()))

	w := doRequest(engine, "/health/ready", nil)

	require.Equal(t, http.StatusOK, w.Code)
	checks := decodeBody(t, w)["checks"].(map[string]any)
	assert.Equal(t, map[string]any{"status": "ok"}, checks["database"])
	assert.Equal(t, map[string]any{
		"status":  "warning",
		"message": "dial tcp 127.0.0.1:6379: connect: connection refused",
	}, checks["redis"])
}

func TestHandler_Startup(t *testing.T) {
	d := newTestDeps()
	d.db.pingErr = errors.New("db down")
	engine := newTestRouter(newTestAggregator(d, testSettings()))

	w := doRequest(engine, "/health/startup", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"starting_up","app_name":"probe-test","environment":"production"}`, w.Body.String())
	assert.Zero(t, d.totalCalls())
}

func TestHandler_Report_Unauthorized(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
	}{
		{name: "no header"},
		{name: "wrong token", header: map[string]string{HeaderHealthToken: "nope"}},
		{name: "empty token", header: map[string]string{HeaderHealthToken: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			engine := newTestRouter(newTestAggregator(d, testSettings()))

			w := doRequest(engine, "/health/report", tt.header)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
			assert.Zero(t, d.totalCalls())
		})
	}
}

func TestHandler_Report_Authorized(t *testing.T) {
	d := newTestDeps()
	d.db.pingErr = errors.New("db down")
	d.disk.usage = DiskUsage{Total: 10 * bytesPerGB, Free: 5 * bytesPerGB / 10}
	engine := newTestRouter(newTestAggregator(d, testSettings()))

	w := doRequest(engine, "/health/report", map[string]string{HeaderHealthToken: "s3cret"})

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, map[string]any{
		"name":        "probe-test",
		"environment": "production",
		"debug":       false,
		"version":     "2.3.4",
	}, body["app"])
	assert.Equal(t, map[string]any{"source": "process", "seconds_since_start": 0.0}, body["uptime"])

	checks := body["checks"].(map[string]any)
	assert.Equal(t, map[string]any{"status": "error", "message": "db down"}, checks["database"])
	assert.Equal(t, map[string]any{"status": "ok"}, checks["redis"])
	assert.Equal(t, map[string]any{"status": "ok"}, checks["cache"])

	disk := checks["disk_space"].(map[string]any)
	assert.Equal(t, "error", disk["status"])
	assert.Equal(t, 10.0, disk["total_gb"])
	assert.Equal(t, 0.5, disk["free_gb"])
	assert.Equal(t, 95.0, disk["used_percent"])
	assert.NotEmpty(t, disk["message"])
}

func TestHandler_Report_Middleware(t *testing.T) {
	d := newTestDeps()
	blocked := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusTooManyRequests)
	}
	engine := newTestRouter(newTestAggregator(d, testSettings()), blocked)

	assert.Equal(t, http.StatusTooManyRequests,
		doRequest(engine, "/health/report", map[string]string{HeaderHealthToken: "s3cret"}).Code)
	assert.Equal(t, http.StatusOK, doRequest(engine, "/health/ready", nil).Code)
	assert.Zero(t, d.disk.calls())
}
