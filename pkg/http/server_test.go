package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", func(c echo.Context) error { return SuccessResponse(c, "pong") })
	e.GET("/boom", func(c echo.Context) error { panic("boom") })
}

func TestServerLifecycle(t *testing.T) {
	srv := NewServer(pingHandler{},
		WithHost("127.0.0.1"),
		WithPort(0),
		WithMetrics(prometheus.NewRegistry(), time.Second),
	)
	require.NoError(t, srv.Start())
	base := "http://" + srv.Addr()

	resp, err := http.Get(base + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "pong")
	assert.NotEmpty(t, resp.Header.Get(echo.HeaderXRequestID))

	resp, err = http.Get(base + "/boom")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, base+"/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(echo.HeaderXRequestID))

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Contains(t, string(body), "http_requests_total")

	require.NoError(t, srv.Stop(context.Background()))
}

func TestServerStartPortInUse(t *testing.T) {
	first := NewServer(nil, WithHost("127.0.0.1"), WithPort(0))
	require.NoError(t, first.Start())
	defer func() { _ = first.Stop(context.Background()) }()

	_, portStr, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	second := NewServer(nil, WithHost("127.0.0.1"), WithPort(port))
	assert.Error(t, second.Start())
}
