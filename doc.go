// Package scenepool provides an instance pooling engine for scene-entity
// hierarchies. Instead of constructing and destroying scene instances per
// use, pools keep returned instances parked in a reserve and hand them
// back out on the next acquire, skipping construction cost entirely on
// the hot path.
//
// # Architecture
//
// The engine is organized around a few small packages:
//
//   - pkg/scene: the scene-graph collaborator boundary. The Engine
//     interface abstracts instantiate and destroy; Graph is an in-memory
//     reference implementation used by tests and the bench CLI.
//
//   - pkg/pool: the pooling core. InstancePool manages the active set and
//     LIFO reserve for one prototype; Collection routes acquires by
//     prototype and creates pools lazily; Handle tracks instance validity
//     so stale references fail loudly instead of touching recycled state.
//
//   - pkg/cascade: the ancestor-destruction registry. Pooled instances
//     subscribe on acquire, and NotifyAncestorDestroying returns live
//     descendants to their pools before the subtree is destroyed.
//
// Pools are single-goroutine by design: all operations are expected to
// run on the owning simulation or frame loop, so the hot path carries no
// locking.
//
// # Quick Start
//
//	import (
//	    "github.com/scenekit/scenepool/pkg/pool"
//	    "github.com/scenekit/scenepool/pkg/scene"
//	)
//
//	graph := scene.NewGraph()
//	pools := pool.NewCollection(graph)
//	defer pools.Dispose()
//
//	proto := scene.NewNode("bullet")
//	pools.PreWarm(proto, 32)
//
//	h, err := pools.Acquire(proto, pool.AcquireOptions{Activate: true})
//	if err != nil {
//	    // handle error
//	}
//	// ... use h.Get() ...
//	_ = h.Return()
//
// The cmd/scenepool CLI runs frame-driven benchmark simulations against
// the engine and writes JSON reports with pool and process statistics.
package scenepool
