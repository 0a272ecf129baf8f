// Package pool implements instance pooling for scene entities. It reuses
// expensive-to-create scene nodes instead of repeatedly instantiating and
// destroying them, amortizing construction and teardown cost across many
// acquire/release cycles.
//
// The package provides:
//   - InstancePool: active/reserve bookkeeping for one prototype
//   - Collection: a lazily-populated registry of pools keyed by prototype
//   - Handle: a validity-tracked wrapper issued once per checkout
//   - Release: the single return-or-destroy teardown entry point
//   - Pooled / Initializer: lifecycle capability hooks for payload components
//
// Example usage:
//
//	graph := scene.NewGraph()
//	pools := pool.NewCollection(graph)
//
//	h, err := pools.Acquire(bulletProto, pool.AcquireOptions{
//	    Parent:   muzzle,
//	    Position: scene.Vec3{Z: 1},
//	    Activate: true,
//	})
//	if err != nil {
//	    return err
//	}
//	// ... fly ...
//	_ = h.Return()
//
// Pools, collections and handles are confined to a single goroutine; the
// engine is a synchronous, frame-driven mutation of in-memory state with no
// internal locking.
package pool
