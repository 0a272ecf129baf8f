package scene

// Engine is the contract the pooling core needs from a scene backend:
// construct an instance tree from a prototype tree, and tear an instance
// down. Implementations are expected to be single-goroutine, like the rest
// of the graph.
type Engine interface {
	// Instantiate deep-clones the prototype subtree and returns the new
	// root. The clone starts detached, with the prototype's transforms and
	// activation flags.
	Instantiate(proto *Node) *Node

	// Destroy tears down the node and its entire subtree. Destroy listeners
	// fire bottom-up before detachment. Destroying an already-destroyed
	// node is a no-op.
	Destroy(n *Node)
}

// Cloner is implemented by components that need a per-instance copy when
// their node is instantiated from a prototype. Components that do not
// implement Cloner are shared by reference between the prototype and every
// instance, which is only sound for immutable components.
type Cloner interface {
	CloneComponent() any
}

// Graph is the reference in-memory Engine.
type Graph struct {
	instantiated int64
	destroyed    int64
}

// NewGraph creates an empty in-memory engine.
func NewGraph() *Graph {
	return &Graph{}
}

// Instantiate implements Engine.
func (g *Graph) Instantiate(proto *Node) *Node {
	if proto == nil {
		return nil
	}
	return g.cloneTree(proto)
}

func (g *Graph) cloneTree(src *Node) *Node {
	g.instantiated++
	dst := &Node{
		Name:     src.Name,
		Position: src.Position,
		Rotation: src.Rotation,
		Scale:    src.Scale,
		active:   src.active,
	}
	for _, comp := range src.components {
		if cl, ok := comp.(Cloner); ok {
			dst.components = append(dst.components, cl.CloneComponent())
		} else {
			dst.components = append(dst.components, comp)
		}
	}
	for _, child := range src.children {
		c := g.cloneTree(child)
		c.parent = dst
		dst.children = append(dst.children, c)
	}
	return dst
}

// Destroy implements Engine.
func (g *Graph) Destroy(n *Node) {
	if n == nil || n.destroyed {
		return
	}
	g.destroyTree(n)
	n.SetParent(nil)
}

// destroyTree fires listeners and marks destroyed bottom-up, children first,
// so a listener on a parent observes its subtree already gone.
func (g *Graph) destroyTree(n *Node) {
	for len(n.children) > 0 {
		g.destroyTree(n.children[len(n.children)-1])
	}
	for _, fn := range n.destroyListeners {
		fn(n)
	}
	n.destroyListeners = nil
	n.destroyed = true
	n.active = false
	if n.parent != nil {
		n.parent.removeChild(n)
		n.parent = nil
	}
	g.destroyed++
}

// Counts returns how many nodes the graph has instantiated and destroyed.
// Useful for leak checks in tests.
func (g *Graph) Counts() (instantiated, destroyed int64) {
	return g.instantiated, g.destroyed
}
