package session

import (
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/xremote/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSession struct {
	*BaseSession
}

func (s *testSession) Write(p []byte) error { return nil }
func (s *testSession) Close() error         { s.MarkClosed(); return nil }

func newTestSession(port int) *testSession {
	return &testSession{BaseSession: NewBaseSession(&net.TCPAddr{IP: net.IPv4(10, 0, 0, 7), Port: port})}
}

func TestBaseSession(t *testing.T) {
	s := newTestSession(51000)

	_, err := uuid.Parse(s.ID())
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7:51000", s.RemoteAddr().String())
	assert.False(t, s.IsClosed())

	fields := logger.ConnContextExtractor(s.Context())
	require.Len(t, fields, 2)
	assert.Equal(t, s.ID(), fields[0].String)

	assert.True(t, s.MarkClosed())
	assert.False(t, s.MarkClosed())
	assert.True(t, s.IsClosed())
	assert.Error(t, s.Context().Err())
}

func TestBaseSessionNilAddr(t *testing.T) {
	s := &testSession{BaseSession: NewBaseSession(nil)}
	assert.Equal(t, "", Snapshot(s).RemoteAddr)
}

func TestSessionManager(t *testing.T) {
	m := NewBaseSessionManager()
	first := newTestSession(1)
	time.Sleep(time.Millisecond)
	second := newTestSession(2)

	m.Add(second)
	m.Add(first)
	assert.Equal(t, 2, m.Count())

	got, ok := m.Get(first.ID())
	require.True(t, ok)
	assert.Same(t, first, got)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID(), list[0].ID)
	assert.Equal(t, "10.0.0.7:2", list[1].RemoteAddr)

	m.Range(func(s Session) bool {
		m.Remove(s.ID())
		return true
	})
	assert.Equal(t, 0, m.Count())

	_, ok = m.Get(first.ID())
	assert.False(t, ok)
}
