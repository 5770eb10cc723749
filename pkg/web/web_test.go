package web

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xremote/pkg/app"
	"github.com/lk2023060901/xremote/pkg/logger"
	"github.com/lk2023060901/xremote/pkg/prometheus"
	"github.com/lk2023060901/xremote/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSession struct {
	*session.BaseSession
}

func (s *testSession) Write(p []byte) error { return nil }
func (s *testSession) Close() error         { s.MarkClosed(); return nil }

func newTestServer(t *testing.T, cfg *Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Mode = gin.TestMode
	s, err := NewServer(cfg, logger.NewNoop())
	require.NoError(t, err)
	return s
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) Response {
	t.Helper()
	resp := Response{Data: data}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	sessions := session.NewBaseSessionManager()
	sess := &testSession{BaseSession: session.NewBaseSession(&net.TCPAddr{IP: net.IPv4(192, 168, 1, 20), Port: 40000})}
	sessions.Add(sess)

	prom, err := prometheus.New(nil)
	require.NoError(t, err)

	admin := &Admin{
		Sessions: sessions,
		Metrics:  prom.Handler(),
		System:   func() any { return gin.H{"hostname": "box-1"} },
	}
	admin.Register(s.Router())

	t.Run("healthz", func(t *testing.T) {
		w := get(s, "/healthz")
		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w, &map[string]string{})
		assert.Equal(t, CodeOK, resp.Code)
		assert.Equal(t, "ok", (*resp.Data.(*map[string]string))["status"])
	})

	t.Run("version", func(t *testing.T) {
		w := get(s, "/version")
		assert.Equal(t, http.StatusOK, w.Code)
		var info app.Info
		decode(t, w, &info)
		assert.Equal(t, app.GetInfo(), info)
	})

	t.Run("sessions", func(t *testing.T) {
		w := get(s, "/sessions")
		assert.Equal(t, http.StatusOK, w.Code)
		var view sessionsView
		decode(t, w, &view)
		require.Equal(t, 1, view.Count)
		assert.Equal(t, sess.ID(), view.Sessions[0].ID)
		assert.Equal(t, "192.168.1.20:40000", view.Sessions[0].RemoteAddr)
	})

	t.Run("session by id", func(t *testing.T) {
		w := get(s, "/sessions/"+sess.ID())
		assert.Equal(t, http.StatusOK, w.Code)
		var info session.Info
		decode(t, w, &info)
		assert.Equal(t, sess.ID(), info.ID)

		w = get(s, "/sessions/missing")
		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, CodeNotFound, resp.Code)
		assert.Equal(t, session.ErrSessionNotFound.Error(), resp.Message)
	})

	t.Run("metrics", func(t *testing.T) {
		w := get(s, "/metrics")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "go_goroutines")
	})

	t.Run("system", func(t *testing.T) {
		w := get(s, "/system")
		assert.Equal(t, http.StatusOK, w.Code)
		var stats map[string]string
		decode(t, w, &stats)
		assert.Equal(t, "box-1", stats["hostname"])
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(s, "/nope").Code)
	})
}

func TestAdminOptionalRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	admin := &Admin{Health: func() error { return errors.New("tcp listener down") }}
	admin.Register(s.Router())

	w := get(s, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode(t, w, nil)
	assert.Equal(t, CodeUnavailable, resp.Code)
	assert.Equal(t, "tcp listener down", resp.Message)

	assert.Equal(t, http.StatusNotFound, get(s, "/sessions").Code)
	assert.Equal(t, http.StatusNotFound, get(s, "/metrics").Code)
	assert.Equal(t, http.StatusNotFound, get(s, "/system").Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, &Config{RateLimit: RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}})
	(&Admin{}).Register(s.Router())

	assert.Equal(t, http.StatusOK, get(s, "/version").Code)
	w := get(s, "/version")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// 默认跳过健康检查
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(s, "/healthz").Code)
	}
}

func TestRecovery(t *testing.T) {
	s := newTestServer(t, nil)
	s.Router().GET("/boom", func(c *gin.Context) { panic("boom") })

	w := get(s, "/boom")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w, nil)
	assert.Equal(t, CodeInternal, resp.Code)
}

func TestServerLifecycle(t *testing.T) {
	s := newTestServer(t, &Config{Addr: "127.0.0.1:0"})
	(&Admin{}).Register(s.Router())

	require.ErrorIs(t, s.Stop(), ErrServerNotStarted)
	require.NoError(t, s.Start())
	require.ErrorIs(t, s.Start(), ErrServerAlreadyStarted)
	assert.NotEqual(t, "127.0.0.1:0", s.Addr())

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop())
	require.ErrorIs(t, s.Stop(), ErrServerNotStarted)
}

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsEnabled())

	off := false
	merged := &Config{Enabled: &off}
	s, err := NewServer(merged, logger.NewNoop())
	require.NoError(t, err)
	assert.False(t, s.config.IsEnabled())
	assert.Equal(t, "127.0.0.1:6970", s.config.Addr)

	_, err = NewServer(&Config{Addr: "no-port"}, logger.NewNoop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewServer(&Config{Mode: "verbose"}, logger.NewNoop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
