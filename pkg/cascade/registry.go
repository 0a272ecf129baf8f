// Package cascade implements the parent-destruction registry: a broadcast
// channel that lets pooled instances escape destruction when an ancestor
// they are attached to is torn down.
//
// Pools subscribe an instance on acquire and unsubscribe it on return (or on
// the instance's own teardown). A caller that is about to destroy a node
// that may have pooled descendants must call NotifyAncestorDestroying first,
// strictly before initiating destruction; broadcasting after destruction has
// begun is a documented misuse the registry cannot recover from.
//
// The registry is an explicitly constructed object, not an ambient global.
// Collaborators receive it by reference, and Reset exists for process
// lifecycle boundaries such as test isolation.
package cascade

import (
	"go.uber.org/zap"

	"github.com/scenekit/scenepool/pkg/scene"
)

// Handler is invoked during a broadcast for a subscribed node that is a
// descendant of the ancestor being destroyed. The handler is expected to
// detach the node (typically by returning it to its pool) before the
// ancestor's destruction proceeds.
type Handler func(node *scene.Node, ancestor *scene.Node)

// Registry tracks instances with active cascade subscriptions. It is not
// safe for concurrent use; like the pools it serves, it assumes a
// single-goroutine, frame-driven caller. Handlers may subscribe and
// unsubscribe other nodes while a broadcast is in progress.
type Registry struct {
	subscriptions map[*scene.Node]Handler
	log           *zap.Logger
}

// NewRegistry creates an empty registry. A nil logger disables logging.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		subscriptions: make(map[*scene.Node]Handler),
		log:           log,
	}
}

// Subscribe registers a handler for the node. Re-subscribing an already
// subscribed node replaces its handler; each instance holds at most one
// subscription.
func (r *Registry) Subscribe(node *scene.Node, h Handler) {
	if node == nil || h == nil {
		return
	}
	r.subscriptions[node] = h
}

// Unsubscribe removes the node's subscription. Unsubscribing a node that is
// not subscribed is a no-op.
func (r *Registry) Unsubscribe(node *scene.Node) {
	delete(r.subscriptions, node)
}

// Subscribed reports whether the node currently holds a subscription.
func (r *Registry) Subscribed(node *scene.Node) bool {
	_, ok := r.subscriptions[node]
	return ok
}

// Len returns the number of active subscriptions.
func (r *Registry) Len() int { return len(r.subscriptions) }

// NotifyAncestorDestroying broadcasts that ancestor is about to be torn
// down. Every subscribed node that is a descendant of ancestor has its
// handler invoked. The broadcast iterates a snapshot of the subscription
// set, so handlers may freely mutate the registry mid-broadcast.
func (r *Registry) NotifyAncestorDestroying(ancestor *scene.Node) {
	if ancestor == nil || len(r.subscriptions) == 0 {
		return
	}
	if ancestor.Destroyed() {
		r.log.Warn("cascade broadcast for already-destroyed ancestor; pooled descendants are lost",
			zap.String("ancestor", ancestor.Name))
		return
	}

	type entry struct {
		node    *scene.Node
		handler Handler
	}
	snapshot := make([]entry, 0, len(r.subscriptions))
	for node, h := range r.subscriptions {
		snapshot = append(snapshot, entry{node: node, handler: h})
	}

	for _, e := range snapshot {
		// A handler earlier in the broadcast may already have detached
		// or unsubscribed this node.
		if _, still := r.subscriptions[e.node]; !still {
			continue
		}
		if !e.node.IsDescendantOf(ancestor) {
			continue
		}
		r.log.Debug("cascading return before ancestor destruction",
			zap.String("node", e.node.Name),
			zap.String("ancestor", ancestor.Name))
		e.handler(e.node, ancestor)
	}
}

// Reset drops every subscription. Intended for runtime restart boundaries
// and test isolation.
func (r *Registry) Reset() {
	r.subscriptions = make(map[*scene.Node]Handler)
}
