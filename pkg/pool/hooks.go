package pool

import "github.com/scenekit/scenepool/pkg/scene"

// Pooled is the capability hook contract payload components may implement.
// OnAcquire runs on every checkout, after placement but before activation;
// OnReturn runs on every return, before the instance is parked. This is the
// sole contract the pooling core requires from payload authors.
type Pooled interface {
	OnAcquire()
	OnReturn()
}

// Initializer is the one-time-per-instance lifecycle phase, run exactly once
// at construction. It is independent from Pooled: neither phase may assume
// the other has run, and a component may implement either or both.
type Initializer interface {
	InitOnce()
}

// discoverHooks enumerates Pooled components across the instance subtree in
// walk order. Discovery happens once, at construction; the result is cached
// on the instance tag. The order is stable for one instance but need not
// match other instances of the same prototype.
func discoverHooks(root *scene.Node) []Pooled {
	var hooks []Pooled
	root.Walk(func(n *scene.Node) {
		for _, c := range n.Components() {
			if h, ok := c.(Pooled); ok {
				hooks = append(hooks, h)
			}
		}
	})
	return hooks
}

// runInitializers fires InitOnce on every Initializer component in the
// instance subtree.
func runInitializers(root *scene.Node) {
	root.Walk(func(n *scene.Node) {
		for _, c := range n.Components() {
			if init, ok := c.(Initializer); ok {
				init.InitOnce()
			}
		}
	})
}
