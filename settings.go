package sockpool

import (
	"time"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const (
	// FailurePolicyFailImmediately selects FailImmediatelyPolicyFactory.
	FailurePolicyFailImmediately = "fail-immediately"
	// FailurePolicyThrottling selects ThrottlingPolicyFactory.
	FailurePolicyThrottling = "throttling"
)

// settingsDocument is the external form of a SocketPoolConfig shared by the
// YAML and JSON loaders. Nil fields keep their default value.
type settingsDocument struct {
	MinPoolSize          *settingInt            `yaml:"min_pool_size"`
	MaxPoolSize          *settingInt            `yaml:"max_pool_size"`
	ConnectionTimeout    *time.Duration         `yaml:"connection_timeout"`
	ReceiveTimeout       *time.Duration         `yaml:"receive_timeout"`
	DeadTimeout          *time.Duration         `yaml:"dead_timeout"`
	QueueTimeout         *time.Duration         `yaml:"queue_timeout"`
	LingerEnabled        *bool                  `yaml:"linger_enabled"`
	LingerTime           *time.Duration         `yaml:"linger_time"`
	EnableTCPKeepAlives  *bool                  `yaml:"enable_tcp_keep_alives"`
	TCPKeepAliveTime     *settingUint32         `yaml:"tcp_keep_alive_time"`
	TCPKeepAliveInterval *settingUint32         `yaml:"tcp_keep_alive_interval"`
	FailurePolicy        *failurePolicyDocument `yaml:"failure_policy"`
}

// settingKeys and failurePolicyKeys list the keys a settings document may contain.
var (
	settingKeys = map[string]bool{
		"min_pool_size":           true,
		"max_pool_size":           true,
		"connection_timeout":      true,
		"receive_timeout":         true,
		"dead_timeout":            true,
		"queue_timeout":           true,
		"linger_enabled":          true,
		"linger_time":             true,
		"enable_tcp_keep_alives":  true,
		"tcp_keep_alive_time":     true,
		"tcp_keep_alive_interval": true,
		"failure_policy":          true,
	}
	failurePolicyKeys = map[string]bool{
		"type":              true,
		"failure_threshold": true,
		"reset_after":       true,
	}
)

// settingInt is an integer setting. Unlike a plain int it refuses YAML
// floats, which yaml.v3 would otherwise truncate.
type settingInt int

func (v *settingInt) UnmarshalYAML(node *yaml.Node) error {
	if err := requireYAMLInt(node); err != nil {
		return err
	}
	var n int
	if err := node.Decode(&n); err != nil {
		return err
	}
	*v = settingInt(n)
	return nil
}

// settingUint32 is an unsigned 32-bit setting, such as a millisecond count.
type settingUint32 uint32

func (v *settingUint32) UnmarshalYAML(node *yaml.Node) error {
	if err := requireYAMLInt(node); err != nil {
		return err
	}
	var n uint32
	if err := node.Decode(&n); err != nil {
		return err
	}
	*v = settingUint32(n)
	return nil
}

func requireYAMLInt(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!int" {
		return oops.
			In("sockpool").
			With("line", node.Line).
			With("value", node.Value).
			Errorf("line %d: expected an integer, got %q", node.Line, node.Value)
	}
	return nil
}

type failurePolicyDocument struct {
	Type             string        `yaml:"type"`
	FailureThreshold settingInt    `yaml:"failure_threshold"`
	ResetAfter       time.Duration `yaml:"reset_after"`
}

// build applies the document on top of the defaults and validates the result.
func (d *settingsDocument) build() (*SocketPoolConfig, error) {
	b := NewSocketPoolConfigBuilder()

	if d.MinPoolSize != nil {
		b.WithMinPoolSize(int(*d.MinPoolSize))
	}
	if d.MaxPoolSize != nil {
		b.WithMaxPoolSize(int(*d.MaxPoolSize))
	}
	if d.ConnectionTimeout != nil {
		b.WithConnectionTimeout(*d.ConnectionTimeout)
	}
	if d.ReceiveTimeout != nil {
		b.WithReceiveTimeout(*d.ReceiveTimeout)
	}
	if d.DeadTimeout != nil {
		b.WithDeadTimeout(*d.DeadTimeout)
	}
	if d.QueueTimeout != nil {
		b.WithQueueTimeout(*d.QueueTimeout)
	}

	lingerEnabled, lingerTime := false, DefaultLingerTime
	if d.LingerEnabled != nil {
		lingerEnabled = *d.LingerEnabled
	}
	if d.LingerTime != nil {
		lingerTime = *d.LingerTime
	}
	b.WithLinger(lingerEnabled, lingerTime)

	keepAlives, keepAliveTime, keepAliveInterval := true, DefaultTCPKeepAliveTime, DefaultTCPKeepAliveInterval
	if d.EnableTCPKeepAlives != nil {
		keepAlives = *d.EnableTCPKeepAlives
	}
	if d.TCPKeepAliveTime != nil {
		keepAliveTime = uint32(*d.TCPKeepAliveTime)
	}
	if d.TCPKeepAliveInterval != nil {
		keepAliveInterval = uint32(*d.TCPKeepAliveInterval)
	}
	b.WithTCPKeepAlives(keepAlives, keepAliveTime, keepAliveInterval)

	if d.FailurePolicy != nil {
		factory, err := d.FailurePolicy.factory()
		if err != nil {
			return nil, err
		}
		b.WithFailurePolicyFactory(factory)
	}

	return b.Build()
}

func (p *failurePolicyDocument) factory() (NodeFailurePolicyFactory, error) {
	switch p.Type {
	case "", FailurePolicyFailImmediately:
		return FailImmediatelyPolicyFactory{}, nil
	case FailurePolicyThrottling:
		return NewThrottlingPolicyFactory(int(p.FailureThreshold), p.ResetAfter)
	default:
		return nil, invalidArgument("failure_policy.type", p.Type, "unknown failure policy type")
	}
}
