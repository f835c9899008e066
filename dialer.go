package sockpool

import (
	"math"
	"net"
	"time"

	"github.com/samber/oops"
)

// Dialer returns a net.Dialer honouring ConnectionTimeout and the TCP keep-alive settings.
func (c *SocketPoolConfig) Dialer() *net.Dialer {
	d := &net.Dialer{
		Timeout:         c.connectionTimeout,
		KeepAliveConfig: c.KeepAliveConfig(),
	}
	if !c.enableTCPKeepAlives {
		d.KeepAlive = -1
	}
	return d
}

// KeepAliveConfig translates the keep-alive settings for the net package.
// The probe count is left to the operating system default. A zero
// TCPKeepAliveTime or TCPKeepAliveInterval is passed as zero, which the net
// package replaces with its own default (15s) rather than probing immediately.
func (c *SocketPoolConfig) KeepAliveConfig() net.KeepAliveConfig {
	return net.KeepAliveConfig{
		Enable:   c.enableTCPKeepAlives,
		Idle:     c.TCPKeepAliveTimeDuration(),
		Interval: c.TCPKeepAliveIntervalDuration(),
	}
}

// LingerSeconds returns the value for net.TCPConn.SetLinger:
// -1 when lingering is disabled, otherwise LingerTime in whole seconds.
// The kernel takes the linger time as a 32-bit value, so it is capped at math.MaxInt32.
func (c *SocketPoolConfig) LingerSeconds() int {
	if !c.lingerEnabled {
		return -1
	}
	secs := int64(c.lingerTime / time.Second)
	if secs > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(secs)
}

// ApplySocketOptions applies the linger and keep-alive settings to conn.
func (c *SocketPoolConfig) ApplySocketOptions(conn *net.TCPConn) error {
	if conn == nil {
		return nullArgument("conn")
	}

	if err := conn.SetLinger(c.LingerSeconds()); err != nil {
		return oops.
			Code("SOCKET_OPTION_FAILED").
			In("sockpool").
			With("option", "linger").
			With("remote_addr", nodeString(conn.RemoteAddr())).
			Wrapf(err, "failed to set linger")
	}

	if err := conn.SetKeepAliveConfig(c.KeepAliveConfig()); err != nil {
		return oops.
			Code("SOCKET_OPTION_FAILED").
			In("sockpool").
			With("option", "keep_alive").
			With("remote_addr", nodeString(conn.RemoteAddr())).
			Wrapf(err, "failed to set keep-alive")
	}

	return nil
}
