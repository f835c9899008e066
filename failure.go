package sockpool

import "net"

// NodeFailurePolicy decides whether a cache node should be marked dead
// after it reported an error.
type NodeFailurePolicy interface {
	// ShouldFail is called each time the node fails. Returning true marks
	// the node dead for DeadTimeout.
	ShouldFail() bool
}

// NodeFailurePolicyFactory creates a NodeFailurePolicy for each node of the cluster.
type NodeFailurePolicyFactory interface {
	Create(node net.Addr) NodeFailurePolicy
}

// NodeFailurePolicyFactoryFunc adapts an ordinary function to NodeFailurePolicyFactory.
type NodeFailurePolicyFactoryFunc func(node net.Addr) NodeFailurePolicy

// Create calls f(node).
func (f NodeFailurePolicyFactoryFunc) Create(node net.Addr) NodeFailurePolicy {
	return f(node)
}

// FailImmediatelyPolicyFactory creates policies that fail a node on its first error.
// It is the default factory of a new configuration.
type FailImmediatelyPolicyFactory struct{}

// Create returns the shared fail-immediately policy.
func (FailImmediatelyPolicyFactory) Create(node net.Addr) NodeFailurePolicy {
	return failImmediately{}
}

type failImmediately struct{}

func (failImmediately) ShouldFail() bool { return true }

// isNilFactory reports whether f carries no usable factory.
func isNilFactory(f NodeFailurePolicyFactory) bool {
	if f == nil {
		return true
	}
	switch v := f.(type) {
	case NodeFailurePolicyFactoryFunc:
		return v == nil
	case *ThrottlingPolicyFactory:
		return v == nil
	case *FailImmediatelyPolicyFactory:
		return v == nil
	}
	return false
}
