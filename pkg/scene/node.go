// Package scene defines the scene-graph boundary the pooling core builds on.
// It provides an in-memory node hierarchy with local transforms, activation
// state and attached components, plus the Engine primitives (instantiate from
// a prototype, destroy) that pools call into. A real rendering backend can
// substitute its own Engine; the reference Graph implementation here is what
// the tests and the bench CLI run against.
package scene

// Vec3 is a local-space position or scale.
type Vec3 struct {
	X, Y, Z float64
}

// Quat is a local-space rotation quaternion.
type Quat struct {
	X, Y, Z, W float64
}

// One returns the unit scale vector.
func One() Vec3 { return Vec3{X: 1, Y: 1, Z: 1} }

// Identity returns the identity rotation.
func Identity() Quat { return Quat{W: 1} }

// Node is a single scene-graph entity. Nodes form a tree via SetParent,
// carry local transform state, an activation flag, and an ordered component
// list. Nodes are not safe for concurrent use; the whole graph is assumed to
// be driven from one goroutine.
type Node struct {
	Name string

	// Local transform, relative to the parent.
	Position Vec3
	Rotation Quat
	Scale    Vec3

	parent   *Node
	children []*Node

	active    bool
	destroyed bool

	components       []any
	destroyListeners []func(*Node)
}

// NewNode creates a detached, active node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: Identity(),
		Scale:    One(),
		active:   true,
	}
}

// Parent returns the node's parent, or nil for a root node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's direct children. The returned slice is shared;
// callers must not mutate it.
func (n *Node) Children() []*Node { return n.children }

// Active reports whether the node itself is flagged active. It does not
// consider ancestors; use ActiveInHierarchy for the effective state.
func (n *Node) Active() bool { return n.active }

// ActiveInHierarchy reports whether the node and all of its ancestors are
// active.
func (n *Node) ActiveInHierarchy() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if !cur.active {
			return false
		}
	}
	return true
}

// SetActive flags the node active or inactive.
func (n *Node) SetActive(v bool) { n.active = v }

// Destroyed reports whether the node has been torn down by an Engine.
// A destroyed node must not be reattached or reused.
func (n *Node) Destroyed() bool { return n.destroyed }

// SetParent detaches the node from its current parent and attaches it under
// p. A nil parent turns the node into a root. Attaching a node under one of
// its own descendants (or under a destroyed node) is a caller bug; SetParent
// silently refuses a self-parent but does not otherwise validate.
func (n *Node) SetParent(p *Node) {
	if p == n {
		return
	}
	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.parent = p
	if p != nil {
		p.children = append(p.children, n)
	}
}

func (n *Node) removeChild(c *Node) {
	for i, child := range n.children {
		if child == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// IsDescendantOf reports whether p appears on the node's ancestor chain.
// A node is not considered a descendant of itself.
func (n *Node) IsDescendantOf(p *Node) bool {
	if p == nil {
		return false
	}
	for cur := n.parent; cur != nil; cur = cur.parent {
		if cur == p {
			return true
		}
	}
	return false
}

// AddComponent appends a component to the node. Component order is stable
// and observable through Components.
func (n *Node) AddComponent(c any) {
	n.components = append(n.components, c)
}

// Components returns the node's components in attachment order. The returned
// slice is shared; callers must not mutate it.
func (n *Node) Components() []any { return n.components }

// FindComponent returns the first component matching the predicate, or nil.
func (n *Node) FindComponent(match func(any) bool) any {
	for _, c := range n.components {
		if match(c) {
			return c
		}
	}
	return nil
}

// OnDestroy registers a listener invoked when the node is destroyed by an
// Engine. Listeners fire before the node is detached from its parent.
func (n *Node) OnDestroy(fn func(*Node)) {
	n.destroyListeners = append(n.destroyListeners, fn)
}

// Walk visits the node and every descendant depth-first, parents before
// children.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, c := range n.children {
		c.Walk(visit)
	}
}
