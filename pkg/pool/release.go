package pool

import "github.com/scenekit/scenepool/pkg/scene"

// Release is the single recommended teardown entry point for any node. If
// the node carries pool ownership metadata its pool takes it back (or
// destroys it, when that pool is already disposed); a node that was never
// pooled is destroyed directly. Pooling is opt-in at construction time but
// transparent at teardown time: call sites never need to know whether a
// node came from a pool.
func Release(engine scene.Engine, node *scene.Node) error {
	if node == nil {
		return nil
	}
	if t := tagOf(node); t != nil {
		return t.pool.Return(node)
	}
	engine.Destroy(node)
	return nil
}
