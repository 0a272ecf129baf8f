package pool

import (
	"github.com/scenekit/scenepool/pkg/errors"
	"github.com/scenekit/scenepool/pkg/scene"
	stringpool "github.com/scenekit/scenepool/pkg/strings"
)

// Handle is a short-lived, validity-tracked reference to one checked-out
// instance. A handle is issued once per acquire and becomes invalid exactly
// once: when the instance is returned to its pool, when the pool is
// disposed, or when the instance is destroyed outside the pooling flow.
//
// Validity is an explicit query (IsValid); handles are never compared
// against nil to decide liveness. A handle never owns its instance (the
// pool does) and must not outlive a single acquire/return cycle.
type Handle struct {
	node  *scene.Node
	pool  *InstancePool
	valid bool
}

// IsValid reports whether the handle still references a checked-out
// instance.
func (h *Handle) IsValid() bool {
	return h != nil && h.valid
}

// Node returns the wrapped instance, or an invalid_access error once the
// handle has been invalidated.
func (h *Handle) Node() (*scene.Node, error) {
	if !h.IsValid() {
		return nil, errors.New(errors.ErrorTypeInvalidAccess, "handle is no longer valid")
	}
	return h.node, nil
}

// Get is the tolerant accessor: it returns the wrapped instance, or nil once
// the handle has been invalidated. Call sites that genuinely treat "gone" as
// an ordinary state may prefer this over Node.
func (h *Handle) Get() *scene.Node {
	if !h.IsValid() {
		return nil
	}
	return h.node
}

// Pool returns the pool that issued the handle.
func (h *Handle) Pool() *InstancePool {
	if h == nil {
		return nil
	}
	return h.pool
}

// Return gives the instance back to its pool. Returning through an
// already-invalid handle is a no-op, which makes the handle the safe way to
// express "return if still mine": a stale handle can never return an
// instance that has since been checked out by someone else.
func (h *Handle) Return() error {
	if !h.IsValid() {
		return nil
	}
	return h.pool.Return(h.node)
}

// markInvalid is the one-shot invalidation transition. A second call means a
// double-free-style bug in pool bookkeeping or caller logic and fails
// loudly.
func (h *Handle) markInvalid() {
	if !h.valid {
		panic("scenepool: handle invalidated twice")
	}
	h.valid = false
}

func (h *Handle) String() string {
	if !h.IsValid() {
		return "handle(invalid)"
	}
	return stringpool.Sprintf("handle(%s)", h.node.Name)
}
