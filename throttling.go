package sockpool

import (
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ThrottlingPolicyFactory creates policies that tolerate occasional errors.
// A node is failed once it reports FailureThreshold errors with no gap
// longer than ResetAfter between consecutive errors.
type ThrottlingPolicyFactory struct {
	failureThreshold int
	resetAfter       time.Duration
}

// NewThrottlingPolicyFactory creates a ThrottlingPolicyFactory.
// threshold must be at least 1 and resetAfter must be non-negative.
func NewThrottlingPolicyFactory(threshold int, resetAfter time.Duration) (*ThrottlingPolicyFactory, error) {
	if threshold < 1 {
		return nil, invalidArgument("failure_threshold", threshold, "failure threshold must be >= 1")
	}
	if resetAfter < 0 {
		return nil, invalidArgument("reset_after", resetAfter, "reset interval must be non-negative")
	}

	return &ThrottlingPolicyFactory{
		failureThreshold: threshold,
		resetAfter:       resetAfter,
	}, nil
}

// FailureThreshold returns the number of errors that fail a node.
func (f *ThrottlingPolicyFactory) FailureThreshold() int {
	return f.failureThreshold
}

// ResetAfter returns the quiet period after which the error counter restarts.
func (f *ThrottlingPolicyFactory) ResetAfter() time.Duration {
	return f.resetAfter
}

// Create returns a fresh policy for node.
func (f *ThrottlingPolicyFactory) Create(node net.Addr) NodeFailurePolicy {
	return &throttlingPolicy{
		node:             node,
		failureThreshold: f.failureThreshold,
		resetAfter:       f.resetAfter,
		now:              time.Now,
	}
}

// throttlingPolicy is shared by every goroutine using the node's sockets.
type throttlingPolicy struct {
	mu               sync.Mutex
	node             net.Addr
	failureThreshold int
	resetAfter       time.Duration
	failureCount     int
	lastFailed       time.Time
	now              func() time.Time
}

func (p *throttlingPolicy) ShouldFail() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if !p.lastFailed.IsZero() && now.Sub(p.lastFailed) > p.resetAfter {
		p.failureCount = 0
	}

	p.failureCount++
	p.lastFailed = now

	shouldFail := p.failureCount >= p.failureThreshold
	if shouldFail {
		log.WithFields(logrus.Fields{
			"node":     nodeString(p.node),
			"failures": p.failureCount,
		}).Warn("node failure threshold reached")
		p.failureCount = 0
	}

	return shouldFail
}

func nodeString(node net.Addr) string {
	if node == nil {
		return "<nil>"
	}
	return node.String()
}
