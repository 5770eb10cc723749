package tcp

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/config"
	"github.com/lk2023060901/xremote/pkg/protocol"
	"github.com/lk2023060901/xremote/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/panjf2000/gnet/v2"
	"github.com/stretchr/testify/require"
)

// echoHandler 回显解码后的请求，并记录全部事件
type echoHandler struct {
	mu       sync.Mutex
	opened   int
	closed   int
	requests []*protocol.Request
	errs     []error

	block   chan struct{}
	entered chan struct{}
	panics  bool
	done    chan struct{}
}

func newEchoHandler() *echoHandler {
	return &echoHandler{done: make(chan struct{}, 16)}
}

func (h *echoHandler) OnOpened(s session.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opened++
}

func (h *echoHandler) OnRequest(s session.Session, req *protocol.Request) {
	h.mu.Lock()
	h.requests = append(h.requests, req)
	h.mu.Unlock()

	if h.entered != nil {
		h.entered <- struct{}{}
	}
	if h.block != nil {
		<-h.block
	}
	if h.panics {
		panic("handler exploded")
	}
	body, _ := req.JSON()
	_ = s.Write(body)
}

func (h *echoHandler) OnError(s session.Session, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *echoHandler) OnClosed(s session.Session, err error) {
	h.mu.Lock()
	h.closed++
	h.mu.Unlock()
	h.done <- struct{}{}
}

func (h *echoHandler) waitClosed(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-h.done:
		case <-time.After(3 * time.Second):
			t.Fatalf("waited for %d closes, got %d", n, i)
		}
	}
}

func (h *echoHandler) errList() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.errs...)
}

func (h *echoHandler) requestCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.requests)
}

func startNet(t *testing.T, cfg *ServerConfig, h session.SessionHandler) *NetAcceptor {
	t.Helper()
	cfg.Engine = EngineNet
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:0"
	}
	a, err := NewNetAcceptor(cfg, h)
	require.NoError(t, err)
	require.NoError(t, a.Start())
	t.Cleanup(func() { _ = a.Stop() })
	return a
}

func connectorFor(t *testing.T, addr string) *Connector {
	t.Helper()
	c, err := NewConnector(&ClientConfig{Addr: addr, ReadTimeout: 3 * time.Second})
	require.NoError(t, err)
	return c
}

func sendRaw(t *testing.T, addr string, frame []byte) []byte {
	t.Helper()
	resp, err := connectorFor(t, addr).SendRaw(context.Background(), frame)
	require.NoError(t, err)
	return resp
}

// exchange 发送后半关闭写端，读取到对端关闭为止。
// 服务端拒绝或未读完数据就关闭时可能收到 RST，读错误一律忽略
func exchange(t *testing.T, addr string, frame []byte) []byte {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, _ = conn.Write(frame)
	_ = conn.(*net.TCPConn).CloseWrite()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	data, _ := io.ReadAll(conn)
	return data
}

func TestNetAcceptorEcho(t *testing.T) {
	h := newEchoHandler()
	a := startNet(t, &ServerConfig{}, h)

	req, err := protocol.NewRequest(protocol.ContentTypeOperaGx, protocol.InfoInstant, "open")
	require.NoError(t, err)

	resp, err := connectorFor(t, a.Addr()).Do(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":"open","info":"Instant","content_type":"OperaGx","content_length":4}`, string(resp))

	h.waitClosed(t, 1)
	assert.Equal(t, 1, h.requestCount())
	assert.Equal(t, 0, a.Manager().Count())
}

func TestNetAcceptorFramingErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *ServerConfig
		frame   []byte
		wantErr error
	}{
		{name: "short header", cfg: &ServerConfig{}, frame: []byte{0x01, 0x01}, wantErr: protocol.ErrTruncatedFrame},
		{name: "short payload", cfg: &ServerConfig{}, frame: []byte{0x01, 0x01, 0x05, 'o', 'p'}, wantErr: protocol.ErrTruncatedFrame},
		{name: "invalid utf8", cfg: &ServerConfig{}, frame: []byte{0x01, 0x01, 0x02, 0xff, 0xfe}, wantErr: protocol.ErrInvalidEncoding},
		{name: "too large", cfg: &ServerConfig{MaxFrameSize: 5}, frame: append([]byte{0x02, 0x02, 0x06}, "off;30"...), wantErr: protocol.ErrFrameTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newEchoHandler()
			a := startNet(t, tt.cfg, h)

			assert.Empty(t, exchange(t, a.Addr(), tt.frame))

			h.waitClosed(t, 1)
			errs := h.errList()
			require.Len(t, errs, 1)
			assert.ErrorIs(t, errs[0], tt.wantErr)
			assert.True(t, protocol.IsFramingError(errs[0]))
			assert.Equal(t, 0, h.requestCount())
		})
	}
}

func TestNetAcceptorReadTimeout(t *testing.T) {
	h := newEchoHandler()
	a := startNet(t, &ServerConfig{ReadTimeout: 100 * time.Millisecond}, h)

	conn, err := net.Dial("tcp", a.Addr())
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	data, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Empty(t, data)

	h.waitClosed(t, 1)
	errs := h.errList()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrReadTimeout)
}

func TestNetAcceptorBusy(t *testing.T) {
	h := newEchoHandler()
	h.block = make(chan struct{})
	h.entered = make(chan struct{}, 1)
	a := startNet(t, &ServerConfig{Workers: 1}, h)

	first := make(chan []byte, 1)
	go func() {
		resp, _ := connectorFor(t, a.Addr()).SendRaw(context.Background(), []byte{0x01, 0x01, 0x04, 'o', 'p', 'e', 'n'})
		first <- resp
	}()
	<-h.entered

	assert.Empty(t, exchange(t, a.Addr(), []byte{0x01, 0x01, 0x04, 'o', 'p', 'e', 'n'}))
	h.waitClosed(t, 1)
	require.Len(t, h.errList(), 1)
	assert.ErrorIs(t, h.errList()[0], ErrServerBusy)

	close(h.block)
	assert.NotEmpty(t, <-first)
}

func TestNetAcceptorRateLimited(t *testing.T) {
	h := newEchoHandler()
	a := startNet(t, &ServerConfig{AcceptRate: 0.001, AcceptBurst: 1}, h)

	frame := []byte{0x02, 0x01, 0x03, 'o', 'f', 'f'}
	assert.NotEmpty(t, sendRaw(t, a.Addr(), frame))
	h.waitClosed(t, 1)

	assert.Empty(t, exchange(t, a.Addr(), frame))
	h.waitClosed(t, 1)
	require.Len(t, h.errList(), 1)
	assert.ErrorIs(t, h.errList()[0], ErrRateLimited)
}

func TestNetAcceptorPanicRecovered(t *testing.T) {
	h := newEchoHandler()
	h.panics = true
	a := startNet(t, &ServerConfig{}, h)

	assert.Empty(t, exchange(t, a.Addr(), []byte{0x01, 0x01, 0x04, 'o', 'p', 'e', 'n'}))
	h.waitClosed(t, 1)
	require.Len(t, h.errList(), 1)
	assert.ErrorIs(t, h.errList()[0], ErrHandlerPanic)

	// 监听器仍然可用
	h.panics = false
	assert.NotEmpty(t, sendRaw(t, a.Addr(), []byte{0x01, 0x01, 0x04, 'o', 'p', 'e', 'n'}))
}

func TestNetAcceptorLifecycle(t *testing.T) {
	a, err := NewNetAcceptor(&ServerConfig{Addr: "127.0.0.1:0"}, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, a.Stop(), ErrServerNotStarted)
	require.NoError(t, a.Start())
	assert.ErrorIs(t, a.Start(), ErrServerAlreadyStarted)
	require.NoError(t, a.GracefulStop())
	assert.NoError(t, a.Stop())
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func startGnet(t *testing.T, cfg *ServerConfig, h session.SessionHandler) *Acceptor {
	t.Helper()
	cfg.Addr = freeAddr(t)
	cfg.Engine = EngineGnet
	cfg.TickInterval = 20 * time.Millisecond
	a, err := NewAcceptor(cfg, h)
	require.NoError(t, err)
	require.NoError(t, a.Start())
	t.Cleanup(func() { _ = a.Stop() })
	return a
}

func TestGnetAcceptorEcho(t *testing.T) {
	h := newEchoHandler()
	a := startGnet(t, &ServerConfig{}, h)

	resp := sendRaw(t, a.Addr(), append([]byte{0x02, 0x02, 0x06}, "off;30"...))
	assert.JSONEq(t, `{"payload":"off;30","info":"Delayed","content_type":"OS","content_length":6}`, string(resp))
	h.waitClosed(t, 1)
}

func TestGnetAcceptorFragmentedFrame(t *testing.T) {
	h := newEchoHandler()
	a := startGnet(t, &ServerConfig{}, h)

	conn, err := net.Dial("tcp", a.Addr())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte{0x01, 0x01})
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = conn.Write([]byte{0x04, 'o', 'p'})
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = conn.Write([]byte{'e', 'n'})
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	data, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"payload":"open"`)
}

func TestGnetAcceptorTruncatedAndTimeout(t *testing.T) {
	h := newEchoHandler()
	a := startGnet(t, &ServerConfig{ReadTimeout: 100 * time.Millisecond}, h)

	assert.Empty(t, exchange(t, a.Addr(), []byte{0x01}))
	h.waitClosed(t, 1)

	conn, err := net.Dial("tcp", a.Addr())
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	data, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Empty(t, data)
	h.waitClosed(t, 1)

	errs := h.errList()
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], protocol.ErrTruncatedFrame)
	assert.ErrorIs(t, errs[1], ErrReadTimeout)
}

func TestNewSelectsEngine(t *testing.T) {
	srv, err := New(&ServerConfig{Engine: EngineNet, Addr: "127.0.0.1:0"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &NetAcceptor{}, srv)

	srv, err = New(nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &Acceptor{}, srv)

	_, err = New(&ServerConfig{Engine: "epoll"}, nil)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestServerConfigValidate(t *testing.T) {
	cfg := DefaultServerConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:6969", cfg.Addr)
	assert.Equal(t, 258, cfg.MaxFrame())

	cfg.MaxFrameSize = 64
	assert.Equal(t, 64, cfg.MaxFrame())

	cfg.Addr = "no-port"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	var nilCfg *ServerConfig
	assert.ErrorIs(t, nilCfg.Validate(), ErrInvalidConfig)
}

func TestGnetOptions(t *testing.T) {
	apply := func(a *Acceptor) gnet.Options {
		var o gnet.Options
		for _, opt := range a.gnetOptions() {
			opt(&o)
		}
		return o
	}

	a, err := NewAcceptor(nil, nil)
	require.NoError(t, err)
	o := apply(a)
	assert.True(t, o.Multicore)
	assert.True(t, o.ReuseAddr)
	assert.Equal(t, gnet.TCPNoDelay, o.TCPNoDelay)

	a, err = NewAcceptor(&ServerConfig{
		Multicore:  config.Bool(false),
		ReuseAddr:  config.Bool(false),
		TCPNoDelay: config.Bool(false),
	}, nil)
	require.NoError(t, err)
	o = apply(a)
	assert.False(t, o.Multicore)
	assert.False(t, o.ReuseAddr)
	assert.Equal(t, gnet.TCPDelay, o.TCPNoDelay)
}
