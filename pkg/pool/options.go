package pool

import (
	"go.uber.org/zap"

	"github.com/scenekit/scenepool/pkg/cascade"
	"github.com/scenekit/scenepool/pkg/scene"
)

// Option configures a pool or collection at construction time.
type Option func(*options)

type options struct {
	registry *cascade.Registry
	log      *zap.Logger
	debug    bool
}

func newOptions(opts []Option) options {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.registry == nil {
		o.registry = cascade.NewRegistry(o.log)
	}
	return o
}

// WithRegistry wires an existing parent-destruction registry. Collaborating
// pools and collections should share one registry so a single broadcast
// reaches all of them. When omitted, a private registry is created.
func WithRegistry(r *cascade.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithLogger sets the logger. When omitted, logging is disabled.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithDebugChecks enables the extra re-validation passes, such as the
// capability-hook drift check on return. Intended for tests and debug
// builds; the contracts hold either way.
func WithDebugChecks() Option {
	return func(o *options) { o.debug = true }
}

// AcquireOptions carries the placement parameters for one checkout. The
// pooling core passes them through to the scene engine: the instance is
// reparented and positioned before capability hooks fire, and activated
// (when Activate is set) after hooks fire, so hooks observe correct
// hierarchy state but can still configure a not-yet-live instance.
type AcquireOptions struct {
	Parent   *scene.Node
	Position scene.Vec3
	Rotation scene.Quat
	Activate bool
}
