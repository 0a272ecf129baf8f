package pool

import (
	"go.uber.org/zap"

	"github.com/scenekit/scenepool/pkg/cascade"
	"github.com/scenekit/scenepool/pkg/errors"
	"github.com/scenekit/scenepool/pkg/metrics"
	"github.com/scenekit/scenepool/pkg/scene"
	stringpool "github.com/scenekit/scenepool/pkg/strings"
)

// InstancePool owns every instance constructed from one prototype. Checked
// out instances live in the active set; parked instances live in the reserve
// stack. Reserve is LIFO so the most recently returned instance, most likely
// still cache-hot, is reused first.
//
// The active and reserve sets are disjoint, every instance in either was
// constructed from this pool's prototype, and an instance belongs to at most
// one pool for its entire existence.
type InstancePool struct {
	engine    scene.Engine
	prototype *scene.Node
	registry  *cascade.Registry
	log       *zap.Logger
	debug     bool

	active   map[*scene.Node]*Handle
	reserve  []*scene.Node
	holdRoot *scene.Node
	disposed bool

	stats struct {
		constructed int64
		reused      int64
		returned    int64
		destroyed   int64
	}
}

// NewInstancePool creates a pool for the given prototype. The prototype
// itself is never handed out; instances are engine clones of it.
func NewInstancePool(engine scene.Engine, prototype *scene.Node, opts ...Option) (*InstancePool, error) {
	if prototype == nil {
		return nil, errors.New(errors.ErrorTypeNullPrototype, "cannot pool a nil prototype")
	}
	o := newOptions(opts)

	holdRoot := scene.NewNode(stringpool.Concat("pool:", prototype.Name))
	holdRoot.SetActive(false)

	p := &InstancePool{
		engine:    engine,
		prototype: prototype,
		registry:  o.registry,
		log:       o.log.With(zap.String("prototype", prototype.Name)),
		debug:     o.debug,
		active:    make(map[*scene.Node]*Handle),
		holdRoot:  holdRoot,
	}
	metrics.PoolsOpen.Inc()
	return p, nil
}

// Prototype returns the prototype the pool is keyed on.
func (p *InstancePool) Prototype() *scene.Node { return p.prototype }

// Disposed reports whether the pool has been disposed.
func (p *InstancePool) Disposed() bool { return p.disposed }

// Acquire checks an instance out of the pool: the reserve top when one is
// parked, a fresh engine instantiation otherwise. Placement runs before the
// OnAcquire hooks, activation after them. The returned handle is the one
// logical checkout for the instance and is invalidated when it comes back.
func (p *InstancePool) Acquire(opts AcquireOptions) (*Handle, error) {
	if p.disposed {
		return nil, errors.New(errors.ErrorTypeDisposed, "acquire on disposed pool").
			WithDetail("prototype", p.prototype.Name)
	}

	timer := metrics.NewTimer("acquire")
	var inst *scene.Node
	source := "reuse"
	if n := len(p.reserve); n > 0 {
		inst = p.reserve[n-1]
		p.reserve = p.reserve[:n-1]
		p.stats.reused++
	} else {
		inst = p.construct()
		source = "construct"
	}

	h := &Handle{node: inst, pool: p, valid: true}
	p.active[inst] = h

	// Placement first, so hooks observe the final hierarchy.
	inst.SetParent(opts.Parent)
	inst.Position = opts.Position
	inst.Rotation = opts.Rotation

	t := tagOf(inst)
	for _, hook := range t.hooks {
		hook.OnAcquire()
	}
	p.registry.Subscribe(inst, p.cascadeReturn)

	// Activation last, so hooks could still configure a not-yet-live
	// instance.
	if opts.Activate {
		inst.SetActive(true)
	}

	metrics.AcquiresTotal.WithLabelValues(p.prototype.Name, source).Inc()
	metrics.ObserveAcquire(p.prototype.Name, timer.Stop())
	p.syncGauges()
	p.log.Debug("instance acquired",
		zap.String("source", source),
		zap.Int("active", len(p.active)),
		zap.Int("reserve", len(p.reserve)))
	return h, nil
}

// Return gives a checked-out instance back to the pool: OnReturn hooks fire
// in the cached discovery order, the instance is parked under the holding
// root with its transform reset to prototype defaults, and its handle is
// invalidated.
//
// Returning an instance that already sits in reserve is an idempotent no-op;
// in a complex teardown several collaborators may race to return the same
// instance and none should be penalized for being second. Returning an
// instance after the pool was disposed destroys it directly, since the pool
// can no longer hold it.
func (p *InstancePool) Return(inst *scene.Node) error {
	if inst == nil {
		return errors.New(errors.ErrorTypeNotActive, "return of nil instance")
	}

	if p.disposed {
		p.destroyInstance(inst)
		metrics.ReturnsTotal.WithLabelValues(p.prototype.Name, "destroyed").Inc()
		return nil
	}

	if p.inReserve(inst) {
		metrics.ReturnsTotal.WithLabelValues(p.prototype.Name, "duplicate").Inc()
		return nil
	}

	t := tagOf(inst)
	if t == nil || t.pool != p {
		err := errors.New(errors.ErrorTypeNotOwned, "instance was not created by this pool").
			WithDetail("prototype", p.prototype.Name).
			WithDetail("instance", inst.Name)
		p.log.Error("return rejected", zap.String("instance", inst.Name), zap.Error(err))
		return err
	}

	h, ok := p.active[inst]
	if !ok {
		err := errors.New(errors.ErrorTypeNotActive, "instance is not checked out").
			WithDetail("prototype", p.prototype.Name).
			WithDetail("instance", inst.Name)
		p.log.Error("return rejected", zap.String("instance", inst.Name), zap.Error(err))
		return err
	}

	if p.debug {
		p.checkHookDrift(inst, t)
	}
	for _, hook := range t.hooks {
		hook.OnReturn()
	}
	p.registry.Unsubscribe(inst)

	p.park(inst)
	delete(p.active, inst)
	p.reserve = append(p.reserve, inst)
	h.markInvalid()

	p.stats.returned++
	metrics.ReturnsTotal.WithLabelValues(p.prototype.Name, "parked").Inc()
	p.syncGauges()
	p.log.Debug("instance returned",
		zap.Int("active", len(p.active)),
		zap.Int("reserve", len(p.reserve)))
	return nil
}

// PreWarm constructs parked instances until reserve plus active cover the
// requested capacity. Pre-warmed instances bypass the OnAcquire hooks; their
// one-time Initializer phase still runs at construction. PreWarm never
// shrinks the reserve.
func (p *InstancePool) PreWarm(capacity int) error {
	if p.disposed {
		return errors.New(errors.ErrorTypeDisposed, "pre-warm on disposed pool").
			WithDetail("prototype", p.prototype.Name)
	}
	for len(p.reserve) < capacity-len(p.active) {
		inst := p.construct()
		p.park(inst)
		p.reserve = append(p.reserve, inst)
	}
	p.syncGauges()
	return nil
}

// Clear destroys every parked instance and empties the reserve. Active
// instances are untouched. Safe to call repeatedly.
func (p *InstancePool) Clear() {
	parked := p.reserve
	p.reserve = nil
	for _, inst := range parked {
		p.destroyInstance(inst)
	}
	p.syncGauges()
}

// Dispose tears the pool down: every active instance is invalidated and
// destroyed, the holding root (and with it the entire reserve) is destroyed,
// and the pool is marked disposed. Idempotent. Later Return calls destroy
// their instance directly instead of erroring.
func (p *InstancePool) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true

	activeSnapshot := p.active
	reserveCount := len(p.reserve)
	p.active = nil
	p.reserve = nil

	for inst, h := range activeSnapshot {
		p.registry.Unsubscribe(inst)
		h.markInvalid()
		p.destroyInstance(inst)
	}

	// Destroying the holding root takes every parked instance with it.
	p.engine.Destroy(p.holdRoot)
	p.stats.destroyed += int64(reserveCount)
	metrics.DestructionsTotal.WithLabelValues(p.prototype.Name).Add(float64(reserveCount))

	metrics.ActiveInstances.WithLabelValues(p.prototype.Name).Set(0)
	metrics.ReserveInstances.WithLabelValues(p.prototype.Name).Set(0)
	metrics.PoolsOpen.Dec()
	p.log.Debug("pool disposed",
		zap.Int("active_destroyed", len(activeSnapshot)),
		zap.Int("reserve_destroyed", reserveCount))
}

// Stats is a point-in-time snapshot of pool state and counters.
type Stats struct {
	Prototype   string
	Active      int
	Reserve     int
	Constructed int64
	Reused      int64
	Returned    int64
	Destroyed   int64
	Disposed    bool
}

// Stats returns the pool's current bookkeeping counters.
func (p *InstancePool) Stats() Stats {
	return Stats{
		Prototype:   p.prototype.Name,
		Active:      len(p.active),
		Reserve:     len(p.reserve),
		Constructed: p.stats.constructed,
		Reused:      p.stats.reused,
		Returned:    p.stats.returned,
		Destroyed:   p.stats.destroyed,
		Disposed:    p.disposed,
	}
}

// construct builds a fresh instance: engine instantiation, hook discovery
// (cached on the tag), the one-time Initializer phase, and the destroy
// listener that keeps bookkeeping honest when an instance is torn down
// outside the pooling flow. Fresh instances start inactive; activation is an
// explicit acquire-time step.
func (p *InstancePool) construct() *scene.Node {
	inst := p.engine.Instantiate(p.prototype)
	inst.SetActive(false)

	t := &tag{pool: p, hooks: discoverHooks(inst)}
	inst.AddComponent(t)
	inst.OnDestroy(p.onInstanceDestroyed)
	runInitializers(inst)

	p.stats.constructed++
	metrics.ConstructionsTotal.WithLabelValues(p.prototype.Name).Inc()
	return inst
}

// park resets an instance to its idle state: deactivated, under the holding
// root, transform back to prototype defaults.
func (p *InstancePool) park(inst *scene.Node) {
	inst.SetActive(false)
	inst.SetParent(p.holdRoot)
	inst.Position = p.prototype.Position
	inst.Rotation = p.prototype.Rotation
	inst.Scale = p.prototype.Scale
}

func (p *InstancePool) inReserve(inst *scene.Node) bool {
	for _, n := range p.reserve {
		if n == inst {
			return true
		}
	}
	return false
}

func (p *InstancePool) removeFromReserve(inst *scene.Node) {
	for i, n := range p.reserve {
		if n == inst {
			p.reserve = append(p.reserve[:i], p.reserve[i+1:]...)
			return
		}
	}
}

// cascadeReturn is the registry handler: an ancestor of this instance is
// about to be destroyed, so pull the instance out of the doomed subtree.
func (p *InstancePool) cascadeReturn(inst *scene.Node, ancestor *scene.Node) {
	metrics.CascadeReturnsTotal.WithLabelValues(p.prototype.Name).Inc()
	if err := p.Return(inst); err != nil {
		p.log.Error("cascade return failed",
			zap.String("instance", inst.Name),
			zap.String("ancestor", ancestor.Name),
			zap.Error(err))
	}
}

// onInstanceDestroyed fires from the scene engine when one of our instances
// is destroyed. For an active instance this is destruction outside the
// pooling flow: drop it from the active set and invalidate its handle so
// the checkout cannot be observed as live. For a parked instance (engine
// user reaching into the holding root) just forget it.
func (p *InstancePool) onInstanceDestroyed(inst *scene.Node) {
	if p.disposed {
		return
	}
	if h, ok := p.active[inst]; ok {
		delete(p.active, inst)
		p.registry.Unsubscribe(inst)
		h.markInvalid()
		p.stats.destroyed++
		metrics.DestructionsTotal.WithLabelValues(p.prototype.Name).Inc()
		p.syncGauges()
		p.log.Debug("active instance destroyed outside pool", zap.String("instance", inst.Name))
		return
	}
	p.removeFromReserve(inst)
	p.syncGauges()
}

func (p *InstancePool) destroyInstance(inst *scene.Node) {
	if inst.Destroyed() {
		return
	}
	p.engine.Destroy(inst)
	p.stats.destroyed++
	metrics.DestructionsTotal.WithLabelValues(p.prototype.Name).Inc()
}

// checkHookDrift re-runs discovery and warns when the hook set no longer
// matches the construction-time cache. Adding or removing capability hooks
// after construction is unsupported; the cached set stays authoritative.
func (p *InstancePool) checkHookDrift(inst *scene.Node, t *tag) {
	current := discoverHooks(inst)
	drifted := len(current) != len(t.hooks)
	if !drifted {
		for i := range current {
			if current[i] != t.hooks[i] {
				drifted = true
				break
			}
		}
	}
	if drifted {
		p.log.Warn("capability hook set changed after construction; late changes are ignored",
			zap.String("instance", inst.Name),
			zap.Int("cached", len(t.hooks)),
			zap.Int("current", len(current)))
	}
}

func (p *InstancePool) syncGauges() {
	metrics.ActiveInstances.WithLabelValues(p.prototype.Name).Set(float64(len(p.active)))
	metrics.ReserveInstances.WithLabelValues(p.prototype.Name).Set(float64(len(p.reserve)))
}
