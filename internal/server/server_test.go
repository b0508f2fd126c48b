package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avaprobe/internal/config"
	"github.com/vyrodovalexey/avaprobe/internal/middleware"
)

func TestServer_Addr(t *testing.T) {
	srv := New(&config.ServerConfig{Address: "127.0.0.1", Port: 9099}, nil)
	assert.Equal(t, "127.0.0.1:9099", srv.Addr())
	assert.False(t, srv.IsRunning())
}

func TestServer_HandlerAppliesMiddleware(t *testing.T) {
	srv := New(&config.ServerConfig{}, nil, WithMiddleware(
		middleware.RequestIDWithGenerator(func() string { return "fixed" }),
	))
	srv.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "fixed", w.Header().Get(middleware.HeaderXRequestID))
}

func TestServer_StartStop(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(&config.ServerConfig{
		ReadTimeout:  config.Duration(time.Second),
		WriteTimeout: config.Duration(time.Second),
	}, nil, WithListener(l))
	srv.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	done := make(chan error, 1)
	go func() { done <- srv.Start(context.Background()) }()
	require.Eventually(t, srv.IsRunning, 2*time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, srv.Start(context.Background()), ErrServerRunning)

	resp, err := http.Get("http://" + srv.Addr() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.False(t, srv.IsRunning())
}

func TestServer_StopBeforeStart(t *testing.T) {
	srv := New(nil, nil)
	assert.NoError(t, srv.Stop(context.Background()))
}

func TestServer_StartListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	srv := New(&config.ServerConfig{Address: "127.0.0.1", Port: port}, nil)
	err = srv.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
	assert.False(t, srv.IsRunning())
}
