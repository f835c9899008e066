package sockpool

import (
	"math"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialer(t *testing.T) {
	config := NewSocketPoolConfig()
	require.NoError(t, config.SetConnectionTimeout(3*time.Second))

	d := config.Dialer()
	assert.Equal(t, 3*time.Second, d.Timeout)
	assert.Equal(t, time.Duration(0), d.KeepAlive)
	assert.True(t, d.KeepAliveConfig.Enable)
	assert.Equal(t, 2*time.Hour, d.KeepAliveConfig.Idle)
	assert.Equal(t, time.Second, d.KeepAliveConfig.Interval)

	require.NoError(t, config.SetEnableTCPKeepAlives(false))
	d = config.Dialer()
	assert.Equal(t, time.Duration(-1), d.KeepAlive)
	assert.False(t, d.KeepAliveConfig.Enable)
}

func TestLingerSeconds(t *testing.T) {
	config := NewSocketPoolConfig()
	assert.Equal(t, -1, config.LingerSeconds())

	require.NoError(t, config.SetLingerEnabled(true))
	assert.Equal(t, 10, config.LingerSeconds())

	require.NoError(t, config.SetLingerTime(1500*time.Millisecond))
	assert.Equal(t, 1, config.LingerSeconds())

	require.NoError(t, config.SetLingerTime(0))
	assert.Equal(t, 0, config.LingerSeconds())
}

func TestApplySocketOptions(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- conn
	}()

	config := NewSocketPoolConfig()
	require.NoError(t, config.SetLingerEnabled(true))
	require.NoError(t, config.SetLingerTime(time.Second))
	require.NoError(t, config.SetTCPKeepAliveTime(30000))

	conn, err := config.Dialer().Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	if server, ok := <-accepted; ok {
		defer server.Close()
	}

	tcpConn, ok := conn.(*net.TCPConn)
	require.True(t, ok)
	assert.NoError(t, config.ApplySocketOptions(tcpConn))
}

func TestApplySocketOptionsNilConn(t *testing.T) {
	err := NewSocketPoolConfig().ApplySocketOptions(nil)
	assertErrorCode(t, err, "NULL_ARGUMENT")
}

func TestLingerSecondsCapped(t *testing.T) {
	config := NewSocketPoolConfig()
	require.NoError(t, config.SetLingerEnabled(true))
	require.NoError(t, config.SetLingerTime(1<<62))
	assert.Equal(t, math.MaxInt32, config.LingerSeconds())

	require.NoError(t, config.SetLingerTime(math.MaxInt32*time.Second))
	assert.Equal(t, math.MaxInt32, config.LingerSeconds())
}

func TestKeepAliveConfigZeroValues(t *testing.T) {
	config := NewSocketPoolConfig()
	require.NoError(t, config.SetTCPKeepAliveTime(0))
	require.NoError(t, config.SetTCPKeepAliveInterval(0))

	ka := config.KeepAliveConfig()
	assert.True(t, ka.Enable)
	assert.Equal(t, time.Duration(0), ka.Idle)
	assert.Equal(t, time.Duration(0), ka.Interval)
}

func TestApplySocketOptionsUnconnected(t *testing.T) {
	var err error
	assert.NotPanics(t, func() {
		err = NewSocketPoolConfig().ApplySocketOptions(&net.TCPConn{})
	})
	assertErrorCode(t, err, "SOCKET_OPTION_FAILED")
}
