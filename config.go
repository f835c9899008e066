// Package sockpool holds the socket pool configuration of a distributed cache client.
// A SocketPoolConfig carries pool sizing, timeouts, TCP keep-alive and linger
// settings and the node failure policy. Every setter validates its argument and
// leaves the configuration untouched when it rejects a value, so a configuration
// is never observable in an invalid state.
package sockpool

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultMinPoolSize          = 10
	DefaultMaxPoolSize          = 20
	DefaultConnectionTimeout    = 10 * time.Second
	DefaultReceiveTimeout       = 10 * time.Second
	DefaultDeadTimeout          = 2 * time.Second
	DefaultQueueTimeout         = 2500 * time.Millisecond
	DefaultLingerTime           = 10 * time.Second
	DefaultTCPKeepAliveTime     = uint32(2 * 60 * 60 * 1000) // milliseconds
	DefaultTCPKeepAliveInterval = uint32(1000)               // milliseconds
)

// SocketPoolConfig configures the per-node socket pools of a cache client.
// It is built once, adjusted through its setters and then handed to the pool.
// It is not safe for concurrent mutation; call Freeze before sharing it.
type SocketPoolConfig struct {
	// minPoolSize is the number of sockets opened to a node up front
	minPoolSize int

	// maxPoolSize is the upper bound of sockets per node
	maxPoolSize int

	// connectionTimeout bounds establishing a new socket
	connectionTimeout time.Duration

	// receiveTimeout bounds waiting for a response
	receiveTimeout time.Duration

	// deadTimeout is how long a failed node stays dead before it is retried
	deadTimeout time.Duration

	// queueTimeout bounds waiting for a free socket when the pool is exhausted
	queueTimeout time.Duration

	failurePolicyFactory NodeFailurePolicyFactory

	lingerEnabled bool
	lingerTime    time.Duration

	enableTCPKeepAlives bool

	// tcpKeepAliveTime and tcpKeepAliveInterval are opaque millisecond
	// counts handed to the transport
	tcpKeepAliveTime     uint32
	tcpKeepAliveInterval uint32

	frozen bool
}

// NewSocketPoolConfig creates a new SocketPoolConfig with the default values.
func NewSocketPoolConfig() *SocketPoolConfig {
	return &SocketPoolConfig{
		minPoolSize:          DefaultMinPoolSize,
		maxPoolSize:          DefaultMaxPoolSize,
		connectionTimeout:    DefaultConnectionTimeout,
		receiveTimeout:       DefaultReceiveTimeout,
		deadTimeout:          DefaultDeadTimeout,
		queueTimeout:         DefaultQueueTimeout,
		failurePolicyFactory: FailImmediatelyPolicyFactory{},
		lingerEnabled:        false,
		lingerTime:           DefaultLingerTime,
		enableTCPKeepAlives:  true,
		tcpKeepAliveTime:     DefaultTCPKeepAliveTime,
		tcpKeepAliveInterval: DefaultTCPKeepAliveInterval,
	}
}

// MinPoolSize returns the minimum number of sockets per node.
func (c *SocketPoolConfig) MinPoolSize() int {
	return c.minPoolSize
}

// SetMinPoolSize sets the minimum number of sockets per node.
// n must be between 0 and MaxPoolSize.
func (c *SocketPoolConfig) SetMinPoolSize(n int) error {
	if c.frozen {
		return configFrozen("min_pool_size")
	}
	if n < 0 {
		return invalidArgument("min_pool_size", n, "min pool size must be >= 0")
	}
	if n > c.maxPoolSize {
		return invalidArgument("min_pool_size", n, "min pool size must be <= max pool size")
	}
	c.minPoolSize = n
	return nil
}

// MaxPoolSize returns the maximum number of sockets per node.
func (c *SocketPoolConfig) MaxPoolSize() int {
	return c.maxPoolSize
}

// SetMaxPoolSize sets the maximum number of sockets per node.
// n must not be below MinPoolSize; there is no upper limit.
func (c *SocketPoolConfig) SetMaxPoolSize(n int) error {
	if c.frozen {
		return configFrozen("max_pool_size")
	}
	if n < c.minPoolSize {
		return invalidArgument("max_pool_size", n, "max pool size must be >= min pool size")
	}
	c.maxPoolSize = n
	return nil
}

// SetPoolSize sets both pool bounds at once, so a new pair is accepted
// regardless of the current values.
func (c *SocketPoolConfig) SetPoolSize(minSize, maxSize int) error {
	if c.frozen {
		return configFrozen("pool_size")
	}
	if err := validatePoolSize(minSize, maxSize); err != nil {
		return err
	}
	c.minPoolSize = minSize
	c.maxPoolSize = maxSize
	return nil
}

// ConnectionTimeout returns the timeout for establishing a socket.
func (c *SocketPoolConfig) ConnectionTimeout() time.Duration {
	return c.connectionTimeout
}

// SetConnectionTimeout sets the timeout for establishing a socket.
func (c *SocketPoolConfig) SetConnectionTimeout(d time.Duration) error {
	return c.setDuration("connection_timeout", &c.connectionTimeout, d)
}

// ReceiveTimeout returns the timeout for receiving a response.
func (c *SocketPoolConfig) ReceiveTimeout() time.Duration {
	return c.receiveTimeout
}

// SetReceiveTimeout sets the timeout for receiving a response.
func (c *SocketPoolConfig) SetReceiveTimeout(d time.Duration) error {
	return c.setDuration("receive_timeout", &c.receiveTimeout, d)
}

// DeadTimeout returns how long a failed node is considered dead.
func (c *SocketPoolConfig) DeadTimeout() time.Duration {
	return c.deadTimeout
}

// SetDeadTimeout sets how long a failed node is considered dead.
func (c *SocketPoolConfig) SetDeadTimeout(d time.Duration) error {
	return c.setDuration("dead_timeout", &c.deadTimeout, d)
}

// QueueTimeout returns how long a caller waits for a free socket.
func (c *SocketPoolConfig) QueueTimeout() time.Duration {
	return c.queueTimeout
}

// SetQueueTimeout sets how long a caller waits for a free socket.
func (c *SocketPoolConfig) SetQueueTimeout(d time.Duration) error {
	return c.setDuration("queue_timeout", &c.queueTimeout, d)
}

// FailurePolicyFactory returns the factory creating node failure policies.
func (c *SocketPoolConfig) FailurePolicyFactory() NodeFailurePolicyFactory {
	return c.failurePolicyFactory
}

// SetFailurePolicyFactory replaces the node failure policy factory.
// A nil factory is rejected and the current one stays active.
func (c *SocketPoolConfig) SetFailurePolicyFactory(f NodeFailurePolicyFactory) error {
	if c.frozen {
		return configFrozen("failure_policy")
	}
	if isNilFactory(f) {
		return nullArgument("failure_policy")
	}
	c.failurePolicyFactory = f
	return nil
}

// LingerEnabled reports whether closing sockets linger.
func (c *SocketPoolConfig) LingerEnabled() bool {
	return c.lingerEnabled
}

// SetLingerEnabled enables or disables lingering on close.
func (c *SocketPoolConfig) SetLingerEnabled(enabled bool) error {
	if c.frozen {
		return configFrozen("linger_enabled")
	}
	c.lingerEnabled = enabled
	return nil
}

// LingerTime returns the linger delay used when lingering is enabled.
func (c *SocketPoolConfig) LingerTime() time.Duration {
	return c.lingerTime
}

// SetLingerTime sets the linger delay.
func (c *SocketPoolConfig) SetLingerTime(d time.Duration) error {
	return c.setDuration("linger_time", &c.lingerTime, d)
}

// EnableTCPKeepAlives reports whether TCP keep-alive probes are enabled.
func (c *SocketPoolConfig) EnableTCPKeepAlives() bool {
	return c.enableTCPKeepAlives
}

// SetEnableTCPKeepAlives enables or disables TCP keep-alive probes.
func (c *SocketPoolConfig) SetEnableTCPKeepAlives(enabled bool) error {
	if c.frozen {
		return configFrozen("enable_tcp_keep_alives")
	}
	c.enableTCPKeepAlives = enabled
	return nil
}

// TCPKeepAliveTime returns the idle time, in milliseconds, before the first keep-alive probe.
func (c *SocketPoolConfig) TCPKeepAliveTime() uint32 {
	return c.tcpKeepAliveTime
}

// SetTCPKeepAliveTime sets the idle time, in milliseconds, before the first keep-alive probe.
func (c *SocketPoolConfig) SetTCPKeepAliveTime(ms uint32) error {
	if c.frozen {
		return configFrozen("tcp_keep_alive_time")
	}
	c.tcpKeepAliveTime = ms
	return nil
}

// TCPKeepAliveInterval returns the interval, in milliseconds, between keep-alive probes.
func (c *SocketPoolConfig) TCPKeepAliveInterval() uint32 {
	return c.tcpKeepAliveInterval
}

// SetTCPKeepAliveInterval sets the interval, in milliseconds, between keep-alive probes.
func (c *SocketPoolConfig) SetTCPKeepAliveInterval(ms uint32) error {
	if c.frozen {
		return configFrozen("tcp_keep_alive_interval")
	}
	c.tcpKeepAliveInterval = ms
	return nil
}

// TCPKeepAliveTimeDuration returns TCPKeepAliveTime as a time.Duration.
func (c *SocketPoolConfig) TCPKeepAliveTimeDuration() time.Duration {
	return time.Duration(c.tcpKeepAliveTime) * time.Millisecond
}

// TCPKeepAliveIntervalDuration returns TCPKeepAliveInterval as a time.Duration.
func (c *SocketPoolConfig) TCPKeepAliveIntervalDuration() time.Duration {
	return time.Duration(c.tcpKeepAliveInterval) * time.Millisecond
}

// Freeze makes the configuration read-only. It is called by whoever hands
// the configuration to a pool; later setter calls fail with ErrConfigFrozen.
func (c *SocketPoolConfig) Freeze() *SocketPoolConfig {
	if !c.frozen {
		c.frozen = true
		log.WithFields(c.Fields()).Debug("socket pool configuration frozen")
	}
	return c
}

// Frozen reports whether Freeze was called.
func (c *SocketPoolConfig) Frozen() bool {
	return c.frozen
}

// Clone returns an unfrozen copy of the configuration.
// The failure policy factory is shared, not copied.
func (c *SocketPoolConfig) Clone() *SocketPoolConfig {
	clone := *c
	clone.frozen = false
	return &clone
}

// Validate checks every invariant of the configuration.
// A configuration changed only through its setters always validates;
// Validate is used on values assembled by the builder and the loaders.
func (c *SocketPoolConfig) Validate() error {
	if err := validatePoolSize(c.minPoolSize, c.maxPoolSize); err != nil {
		return err
	}

	for _, d := range []struct {
		field string
		value time.Duration
	}{
		{"connection_timeout", c.connectionTimeout},
		{"receive_timeout", c.receiveTimeout},
		{"dead_timeout", c.deadTimeout},
		{"queue_timeout", c.queueTimeout},
		{"linger_time", c.lingerTime},
	} {
		if err := validateDuration(d.field, d.value); err != nil {
			return err
		}
	}

	if isNilFactory(c.failurePolicyFactory) {
		return nullArgument("failure_policy")
	}

	return nil
}

// Fields returns the configuration as logrus fields.
func (c *SocketPoolConfig) Fields() logrus.Fields {
	return logrus.Fields{
		"min_pool_size":           c.minPoolSize,
		"max_pool_size":           c.maxPoolSize,
		"connection_timeout":      c.connectionTimeout,
		"receive_timeout":         c.receiveTimeout,
		"dead_timeout":            c.deadTimeout,
		"queue_timeout":           c.queueTimeout,
		"linger_enabled":          c.lingerEnabled,
		"linger_time":             c.lingerTime,
		"enable_tcp_keep_alives":  c.enableTCPKeepAlives,
		"tcp_keep_alive_time":     c.tcpKeepAliveTime,
		"tcp_keep_alive_interval": c.tcpKeepAliveInterval,
		"failure_policy":          fmt.Sprintf("%T", c.failurePolicyFactory),
	}
}

// setDuration stores d into dst unless the configuration is frozen or d is negative.
func (c *SocketPoolConfig) setDuration(field string, dst *time.Duration, d time.Duration) error {
	if c.frozen {
		return configFrozen(field)
	}
	if err := validateDuration(field, d); err != nil {
		return err
	}
	*dst = d
	return nil
}

func validateDuration(field string, d time.Duration) error {
	if d < 0 {
		return invalidArgument(field, d, field+" must be non-negative")
	}
	return nil
}

func validatePoolSize(minSize, maxSize int) error {
	if minSize < 0 {
		return invalidArgument("min_pool_size", minSize, "min pool size must be >= 0")
	}
	if maxSize < minSize {
		return invalidArgument("max_pool_size", maxSize, "max pool size must be >= min pool size")
	}
	return nil
}
