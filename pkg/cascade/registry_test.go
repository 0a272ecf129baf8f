package cascade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/scenekit/scenepool/pkg/scene"
)

func TestSubscribeAndUnsubscribe(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	n := scene.NewNode("n")

	r.Subscribe(n, func(*scene.Node, *scene.Node) {})
	assert.True(t, r.Subscribed(n))
	assert.Equal(t, 1, r.Len())

	r.Unsubscribe(n)
	assert.False(t, r.Subscribed(n))
	assert.Equal(t, 0, r.Len())

	// Unsubscribing again is a no-op.
	r.Unsubscribe(n)
}

func TestSubscribeReplacesHandler(t *testing.T) {
	r := NewRegistry(nil)
	root := scene.NewNode("root")
	n := scene.NewNode("n")
	n.SetParent(root)

	firstCalls, secondCalls := 0, 0
	r.Subscribe(n, func(*scene.Node, *scene.Node) { firstCalls++ })
	r.Subscribe(n, func(*scene.Node, *scene.Node) { secondCalls++ })
	assert.Equal(t, 1, r.Len())

	r.NotifyAncestorDestroying(root)

	assert.Equal(t, 0, firstCalls)
	assert.Equal(t, 1, secondCalls)
}

func TestSubscribeIgnoresNil(t *testing.T) {
	r := NewRegistry(nil)
	r.Subscribe(nil, func(*scene.Node, *scene.Node) {})
	r.Subscribe(scene.NewNode("n"), nil)
	assert.Equal(t, 0, r.Len())
}

func TestNotifyOnlyReachesDescendants(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))

	doomed := scene.NewNode("doomed")
	inside := scene.NewNode("inside")
	inside.SetParent(doomed)
	outside := scene.NewNode("outside")

	var notified []string
	handler := func(n *scene.Node, ancestor *scene.Node) {
		notified = append(notified, n.Name)
		assert.Equal(t, doomed, ancestor)
	}
	r.Subscribe(inside, handler)
	r.Subscribe(outside, handler)
	r.Subscribe(doomed, handler)

	r.NotifyAncestorDestroying(doomed)

	assert.Equal(t, []string{"inside"}, notified,
		"the ancestor itself and unrelated nodes stay untouched")
}

func TestNotifyNestedDescendant(t *testing.T) {
	r := NewRegistry(nil)

	doomed := scene.NewNode("doomed")
	mid := scene.NewNode("mid")
	mid.SetParent(doomed)
	deep := scene.NewNode("deep")
	deep.SetParent(mid)

	calls := 0
	r.Subscribe(deep, func(n *scene.Node, _ *scene.Node) {
		calls++
		// Typical handler behavior: pull the node out of the subtree.
		n.SetParent(nil)
		r.Unsubscribe(n)
	})

	r.NotifyAncestorDestroying(doomed)

	assert.Equal(t, 1, calls)
	assert.Nil(t, deep.Parent())
	assert.False(t, r.Subscribed(deep))
}

func TestNotifySkipsNodesUnsubscribedMidBroadcast(t *testing.T) {
	r := NewRegistry(nil)

	doomed := scene.NewNode("doomed")
	a := scene.NewNode("a")
	b := scene.NewNode("b")
	a.SetParent(doomed)
	b.SetParent(doomed)

	calls := 0
	// Each handler unsubscribes both nodes, so whichever runs first must
	// prevent the other from firing.
	handler := func(*scene.Node, *scene.Node) {
		calls++
		r.Unsubscribe(a)
		r.Unsubscribe(b)
	}
	r.Subscribe(a, handler)
	r.Subscribe(b, handler)

	r.NotifyAncestorDestroying(doomed)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, r.Len())
}

func TestNotifyAllowsSubscribeMidBroadcast(t *testing.T) {
	r := NewRegistry(nil)

	doomed := scene.NewNode("doomed")
	a := scene.NewNode("a")
	a.SetParent(doomed)

	r.Subscribe(a, func(n *scene.Node, _ *scene.Node) {
		n.SetParent(nil)
		r.Unsubscribe(n)
		// Handlers re-subscribing (a re-acquire during teardown) must not
		// break the broadcast.
		r.Subscribe(scene.NewNode("fresh"), func(*scene.Node, *scene.Node) {})
	})

	require.NotPanics(t, func() { r.NotifyAncestorDestroying(doomed) })
	assert.Equal(t, 1, r.Len())
}

func TestNotifyDestroyedAncestorIsRejected(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	g := scene.NewGraph()

	doomed := scene.NewNode("doomed")
	child := scene.NewNode("child")
	child.SetParent(doomed)

	calls := 0
	r.Subscribe(child, func(*scene.Node, *scene.Node) { calls++ })

	g.Destroy(doomed)
	r.NotifyAncestorDestroying(doomed)

	assert.Equal(t, 0, calls, "broadcasting after destruction is too late")
}

func TestNotifyNilAncestor(t *testing.T) {
	r := NewRegistry(nil)
	r.Subscribe(scene.NewNode("n"), func(*scene.Node, *scene.Node) {
		t.Fatal("handler must not fire for a nil ancestor")
	})
	r.NotifyAncestorDestroying(nil)
}

func TestReset(t *testing.T) {
	r := NewRegistry(nil)
	r.Subscribe(scene.NewNode("a"), func(*scene.Node, *scene.Node) {})
	r.Subscribe(scene.NewNode("b"), func(*scene.Node, *scene.Node) {})

	r.Reset()

	assert.Equal(t, 0, r.Len())
}
