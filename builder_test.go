package sockpool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketPoolConfigBuilderDefaults(t *testing.T) {
	config, err := NewSocketPoolConfigBuilder().Build()
	require.NoError(t, err)
	assert.Equal(t, NewSocketPoolConfig(), config)
}

func TestSocketPoolConfigBuilderMethods(t *testing.T) {
	throttling, err := NewThrottlingPolicyFactory(2, 10*time.Second)
	require.NoError(t, err)

	config, err := NewSocketPoolConfigBuilder().
		WithMinPoolSize(40).
		WithMaxPoolSize(50).
		WithConnectionTimeout(time.Second).
		WithReceiveTimeout(2*time.Second).
		WithDeadTimeout(30*time.Second).
		WithQueueTimeout(100*time.Millisecond).
		WithFailurePolicyFactory(throttling).
		WithLinger(true, 5*time.Second).
		WithTCPKeepAlives(false, 60000, 500).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 40, config.MinPoolSize())
	assert.Equal(t, 50, config.MaxPoolSize())
	assert.Equal(t, time.Second, config.ConnectionTimeout())
	assert.Equal(t, 2*time.Second, config.ReceiveTimeout())
	assert.Equal(t, 30*time.Second, config.DeadTimeout())
	assert.Equal(t, 100*time.Millisecond, config.QueueTimeout())
	assert.Same(t, throttling, config.FailurePolicyFactory())
	assert.True(t, config.LingerEnabled())
	assert.Equal(t, 5*time.Second, config.LingerTime())
	assert.False(t, config.EnableTCPKeepAlives())
	assert.Equal(t, uint32(60000), config.TCPKeepAliveTime())
	assert.Equal(t, uint32(500), config.TCPKeepAliveInterval())
	assert.False(t, config.Frozen())
}

func TestSocketPoolConfigBuilderOrderIndependent(t *testing.T) {
	// min is raised above the default max before max is set
	config, err := NewSocketPoolConfigBuilder().
		WithMinPoolSize(25).
		WithMaxPoolSize(25).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 25, config.MinPoolSize())
	assert.Equal(t, 25, config.MaxPoolSize())

	config, err = NewSocketPoolConfigBuilder().
		WithMaxPoolSize(3).
		WithMinPoolSize(1).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 1, config.MinPoolSize())
	assert.Equal(t, 3, config.MaxPoolSize())
}

func TestSocketPoolConfigBuilderRejects(t *testing.T) {
	tests := []struct {
		name    string
		builder *SocketPoolConfigBuilder
		code    string
	}{
		{"min above max", NewSocketPoolConfigBuilder().WithPoolSize(5, 1), "INVALID_ARGUMENT"},
		{"negative min", NewSocketPoolConfigBuilder().WithMinPoolSize(-1), "INVALID_ARGUMENT"},
		{"negative connection timeout", NewSocketPoolConfigBuilder().WithConnectionTimeout(-time.Second), "INVALID_ARGUMENT"},
		{"negative receive timeout", NewSocketPoolConfigBuilder().WithReceiveTimeout(-time.Second), "INVALID_ARGUMENT"},
		{"negative dead timeout", NewSocketPoolConfigBuilder().WithDeadTimeout(-time.Second), "INVALID_ARGUMENT"},
		{"negative queue timeout", NewSocketPoolConfigBuilder().WithQueueTimeout(-time.Second), "INVALID_ARGUMENT"},
		{"negative linger", NewSocketPoolConfigBuilder().WithLinger(true, -time.Second), "INVALID_ARGUMENT"},
		{"nil factory", NewSocketPoolConfigBuilder().WithFailurePolicyFactory(nil), "NULL_ARGUMENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := tt.builder.Build()
			assert.Nil(t, config)
			assertErrorCode(t, err, tt.code)
		})
	}
}

func TestSocketPoolConfigBuilderReuse(t *testing.T) {
	b := NewSocketPoolConfigBuilder().WithPoolSize(1, 2)

	first, err := b.Build()
	require.NoError(t, err)
	first.Freeze()

	second, err := b.WithMaxPoolSize(4).Build()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, first.MaxPoolSize())
	assert.Equal(t, 4, second.MaxPoolSize())
	assert.False(t, second.Frozen())
}
