package sockpool

import "time"

// SocketPoolConfigBuilder assembles a SocketPoolConfig and validates the
// whole set in Build. Unlike the setters on SocketPoolConfig, the order of
// the With calls never matters.
type SocketPoolConfigBuilder struct {
	config SocketPoolConfig
}

// NewSocketPoolConfigBuilder creates a builder starting from the defaults.
func NewSocketPoolConfigBuilder() *SocketPoolConfigBuilder {
	return &SocketPoolConfigBuilder{config: *NewSocketPoolConfig()}
}

// WithMinPoolSize sets the minimum number of sockets per node.
func (b *SocketPoolConfigBuilder) WithMinPoolSize(n int) *SocketPoolConfigBuilder {
	b.config.minPoolSize = n
	return b
}

// WithMaxPoolSize sets the maximum number of sockets per node.
func (b *SocketPoolConfigBuilder) WithMaxPoolSize(n int) *SocketPoolConfigBuilder {
	b.config.maxPoolSize = n
	return b
}

// WithPoolSize sets both pool bounds.
func (b *SocketPoolConfigBuilder) WithPoolSize(minSize, maxSize int) *SocketPoolConfigBuilder {
	b.config.minPoolSize = minSize
	b.config.maxPoolSize = maxSize
	return b
}

// WithConnectionTimeout sets the timeout for establishing a socket.
func (b *SocketPoolConfigBuilder) WithConnectionTimeout(d time.Duration) *SocketPoolConfigBuilder {
	b.config.connectionTimeout = d
	return b
}

// WithReceiveTimeout sets the timeout for receiving a response.
func (b *SocketPoolConfigBuilder) WithReceiveTimeout(d time.Duration) *SocketPoolConfigBuilder {
	b.config.receiveTimeout = d
	return b
}

// WithDeadTimeout sets how long a failed node is considered dead.
func (b *SocketPoolConfigBuilder) WithDeadTimeout(d time.Duration) *SocketPoolConfigBuilder {
	b.config.deadTimeout = d
	return b
}

// WithQueueTimeout sets how long a caller waits for a free socket.
func (b *SocketPoolConfigBuilder) WithQueueTimeout(d time.Duration) *SocketPoolConfigBuilder {
	b.config.queueTimeout = d
	return b
}

// WithFailurePolicyFactory sets the node failure policy factory.
func (b *SocketPoolConfigBuilder) WithFailurePolicyFactory(f NodeFailurePolicyFactory) *SocketPoolConfigBuilder {
	b.config.failurePolicyFactory = f
	return b
}

// WithLinger enables or disables lingering and sets the linger delay.
func (b *SocketPoolConfigBuilder) WithLinger(enabled bool, d time.Duration) *SocketPoolConfigBuilder {
	b.config.lingerEnabled = enabled
	b.config.lingerTime = d
	return b
}

// WithTCPKeepAlives configures TCP keep-alive probes.
// keepAliveTime and interval are in milliseconds.
func (b *SocketPoolConfigBuilder) WithTCPKeepAlives(enabled bool, keepAliveTime, interval uint32) *SocketPoolConfigBuilder {
	b.config.enableTCPKeepAlives = enabled
	b.config.tcpKeepAliveTime = keepAliveTime
	b.config.tcpKeepAliveInterval = interval
	return b
}

// Build validates the collected values and returns a new configuration.
// The builder can be reused afterwards; each call returns a distinct value.
func (b *SocketPoolConfigBuilder) Build() (*SocketPoolConfig, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	return b.config.Clone(), nil
}
