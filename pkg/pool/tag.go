package pool

import "github.com/scenekit/scenepool/pkg/scene"

// tag is the pool-ownership metadata attached to every pooled instance at
// construction: a back-reference to the owning pool and the cached
// capability-hook set. It lives in the instance's component list so that
// Release can recover ownership from an arbitrary node.
type tag struct {
	pool  *InstancePool
	hooks []Pooled
}

// tagOf returns the instance's pool tag, or nil for a node that was never
// pooled.
func tagOf(n *scene.Node) *tag {
	if n == nil {
		return nil
	}
	if t, ok := n.FindComponent(func(c any) bool {
		_, ok := c.(*tag)
		return ok
	}).(*tag); ok {
		return t
	}
	return nil
}

// IsPooled reports whether the node carries pool ownership metadata.
func IsPooled(n *scene.Node) bool {
	return tagOf(n) != nil
}
