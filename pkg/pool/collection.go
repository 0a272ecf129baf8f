package pool

import (
	"go.uber.org/zap"

	"github.com/scenekit/scenepool/pkg/cascade"
	"github.com/scenekit/scenepool/pkg/errors"
	"github.com/scenekit/scenepool/pkg/scene"
)

// Collection is a registry of instance pools keyed by prototype identity:
// one pool per distinct prototype reference, created lazily on the first
// acquire or pre-warm. The collection owns every pool it creates and shares
// one engine, one cascade registry and one logger across them.
type Collection struct {
	engine   scene.Engine
	registry *cascade.Registry
	log      *zap.Logger
	debug    bool

	pools    map[*scene.Node]*InstancePool
	disposed bool
}

// NewCollection creates an empty collection bound to the given engine.
func NewCollection(engine scene.Engine, opts ...Option) *Collection {
	o := newOptions(opts)
	return &Collection{
		engine:   engine,
		registry: o.registry,
		log:      o.log,
		debug:    o.debug,
		pools:    make(map[*scene.Node]*InstancePool),
	}
}

// Registry returns the cascade registry shared by the collection's pools.
// Callers broadcast ancestor destruction through it.
func (c *Collection) Registry() *cascade.Registry { return c.registry }

// Acquire checks an instance of the given prototype out of its pool,
// creating the pool on first use.
func (c *Collection) Acquire(prototype *scene.Node, opts AcquireOptions) (*Handle, error) {
	if c.disposed {
		return nil, errors.New(errors.ErrorTypeDisposed, "acquire on disposed collection")
	}
	if prototype == nil {
		err := errors.New(errors.ErrorTypeNullPrototype, "acquire with nil prototype")
		c.log.Warn("acquire yielded no instance", zap.Error(err))
		return nil, err
	}
	p, err := c.pool(prototype)
	if err != nil {
		return nil, err
	}
	return p.Acquire(opts)
}

// PreWarm ensures the prototype's pool covers the given capacity, creating
// the pool on first use.
func (c *Collection) PreWarm(prototype *scene.Node, capacity int) error {
	if c.disposed {
		return errors.New(errors.ErrorTypeDisposed, "pre-warm on disposed collection")
	}
	if prototype == nil {
		return errors.New(errors.ErrorTypeNullPrototype, "pre-warm with nil prototype")
	}
	p, err := c.pool(prototype)
	if err != nil {
		return err
	}
	return p.PreWarm(capacity)
}

// Clear destroys the reserve of the prototype's pool. Clearing a prototype
// that never had a pool is a no-op.
func (c *Collection) Clear(prototype *scene.Node) {
	if p, ok := c.pools[prototype]; ok {
		p.Clear()
	}
}

// ClearAll clears the reserve of every pool in the collection.
func (c *Collection) ClearAll() {
	for _, p := range c.pools {
		p.Clear()
	}
}

// Release is the return-or-destroy path for an arbitrary node: pooled
// instances go back to their owning pool, everything else is destroyed
// directly. See the package-level Release.
func (c *Collection) Release(node *scene.Node) error {
	return Release(c.engine, node)
}

// Pool returns the prototype's pool, or nil when none was created yet.
func (c *Collection) Pool(prototype *scene.Node) *InstancePool {
	return c.pools[prototype]
}

// Stats returns a snapshot per live pool, keyed by prototype name.
func (c *Collection) Stats() []Stats {
	out := make([]Stats, 0, len(c.pools))
	for _, p := range c.pools {
		out = append(out, p.Stats())
	}
	return out
}

// Dispose disposes every pool the collection owns and empties the registry
// of pools. Idempotent.
func (c *Collection) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	for _, p := range c.pools {
		p.Dispose()
	}
	c.pools = make(map[*scene.Node]*InstancePool)
	c.log.Debug("collection disposed")
}

func (c *Collection) pool(prototype *scene.Node) (*InstancePool, error) {
	if p, ok := c.pools[prototype]; ok {
		return p, nil
	}
	p, err := NewInstancePool(c.engine, prototype, c.poolOptions()...)
	if err != nil {
		return nil, err
	}
	c.pools[prototype] = p
	c.log.Debug("pool created", zap.String("prototype", prototype.Name))
	return p, nil
}

func (c *Collection) poolOptions() []Option {
	opts := []Option{WithRegistry(c.registry), WithLogger(c.log)}
	if c.debug {
		opts = append(opts, WithDebugChecks())
	}
	return opts
}
