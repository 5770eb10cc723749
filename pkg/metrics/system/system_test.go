package system

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c, err := New(10 * time.Millisecond)
	require.NoError(t, err)
	assert.True(t, c.GetStats().UpdatedAt.IsZero())

	require.NoError(t, c.Start())
	require.NoError(t, c.Start())

	first := c.GetStats()
	assert.False(t, first.UpdatedAt.IsZero())
	assert.Positive(t, first.Goroutines)
	if runtime.GOOS == "linux" {
		assert.Positive(t, first.MemoryBytes)
	}

	require.Eventually(t, func() bool {
		return c.GetStats().UpdatedAt.After(first.UpdatedAt)
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, c.Stop())
	require.NoError(t, c.Stop())

	stopped := c.GetStats().UpdatedAt
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, c.GetStats().UpdatedAt)
}

func TestDefaultInterval(t *testing.T) {
	c, err := New(0)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.interval)
}
