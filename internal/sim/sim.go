// Package sim provides the frame-driven spawn/despawn simulation behind the
// bench command. It drives a pool collection the way a game loop would:
// every frame it checks instances out, parents them under a world root,
// returns the ones whose lifetime expired, and periodically tears down a
// populated mount node through the cascade broadcast.
//
// The simulation is deterministic for a given seed, which makes bench runs
// comparable across changes.
package sim

import (
	"context"
	"math/rand"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/scenekit/scenepool/pkg/config"
	"github.com/scenekit/scenepool/pkg/errors"
	"github.com/scenekit/scenepool/pkg/observability"
	"github.com/scenekit/scenepool/pkg/pool"
	"github.com/scenekit/scenepool/pkg/scene"
)

// Runner executes one simulation described by a config.
type Runner struct {
	cfg   *config.Config
	log   *zap.Logger
	graph *scene.Graph
	pools *pool.Collection

	world      *scene.Node
	prototypes []weightedProto
	rng        *rand.Rand
}

type weightedProto struct {
	node   *scene.Node
	weight int
}

// entity is one live checkout with its scheduled return frame.
type entity struct {
	handle *pool.Handle
	dieAt  int
}

// Report summarizes one simulation run.
type Report struct {
	Name             string        `json:"name"`
	Frames           int           `json:"frames"`
	Spawned          int64         `json:"spawned"`
	Returned         int64         `json:"returned"`
	CascadeTeardowns int64         `json:"cascade_teardowns"`
	Duration         time.Duration `json:"duration_ns"`
	SlowestFrame     time.Duration `json:"slowest_frame_ns"`
	OverBudgetFrames int           `json:"over_budget_frames"`
	Pools            []pool.Stats  `json:"pools"`
	NodesCreated     int64         `json:"nodes_created"`
	NodesDestroyed   int64         `json:"nodes_destroyed"`
	Process          *ProcessStats `json:"process,omitempty"`
}

// ProcessStats captures process-level resource usage at the end of a run.
type ProcessStats struct {
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
}

// NewRunner validates the config and builds the world: one prototype tree
// per configured template, a pool collection, and the pre-warm capacities.
func NewRunner(cfg *config.Config, log *zap.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid simulation config")
	}
	if log == nil {
		log = zap.NewNop()
	}

	graph := scene.NewGraph()
	opts := []pool.Option{pool.WithLogger(log)}
	if cfg.Pooling.DebugChecks {
		opts = append(opts, pool.WithDebugChecks())
	}
	pools := pool.NewCollection(graph, opts...)

	r := &Runner{
		cfg:   cfg,
		log:   log.With(zap.String("sim", cfg.Name)),
		graph: graph,
		pools: pools,
		world: scene.NewNode("world"),
		rng:   rand.New(rand.NewSource(cfg.Simulation.Seed)),
	}

	for _, pc := range cfg.Simulation.Prototypes {
		proto := buildPrototype(pc)
		r.prototypes = append(r.prototypes, weightedProto{node: proto, weight: pc.Weight})
		if capacity, ok := cfg.Pooling.PreWarm[pc.Name]; ok {
			if err := pools.PreWarm(proto, capacity); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// Collection exposes the runner's pool collection, mainly for tests.
func (r *Runner) Collection() *pool.Collection { return r.pools }

// Run executes the configured number of frames and returns the report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{Name: r.cfg.Name, Frames: r.cfg.Simulation.Frames}

	err := observability.TraceOp(ctx, "all", "bench_run", func(ctx context.Context) error {
		return r.run(ctx, report)
	})
	if err != nil {
		return nil, err
	}

	report.Pools = r.pools.Stats()
	report.NodesCreated, report.NodesDestroyed = r.graph.Counts()
	report.Process = sampleProcess()
	return report, nil
}

func (r *Runner) run(ctx context.Context, report *Report) error {
	sc := r.cfg.Simulation
	var live []entity
	started := time.Now()

	for frame := 0; frame < sc.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "simulation cancelled")
		}
		frameStart := time.Now()

		// Return everything whose lifetime expired this frame.
		kept := live[:0]
		for _, e := range live {
			if !e.handle.IsValid() {
				// Already went back through a cascade teardown.
				continue
			}
			if e.dieAt > frame {
				kept = append(kept, e)
				continue
			}
			if err := e.handle.Return(); err != nil {
				return err
			}
			report.Returned++
		}
		live = kept

		for i := 0; i < sc.SpawnsPerFrame; i++ {
			proto := r.pickPrototype()
			h, err := r.pools.Acquire(proto, pool.AcquireOptions{
				Parent:   r.world,
				Position: scene.Vec3{X: r.rng.Float64() * 100, Z: r.rng.Float64() * 100},
				Rotation: scene.Identity(),
				Activate: true,
			})
			if err != nil {
				return err
			}
			live = append(live, entity{handle: h, dieAt: frame + 1 + r.rng.Intn(sc.LifetimeFrames)})
			report.Spawned++
		}

		if sc.CascadeEvery > 0 && frame > 0 && frame%sc.CascadeEvery == 0 {
			attached := r.teardownMount(frame, live)
			report.CascadeTeardowns++
			r.log.Debug("mount torn down",
				zap.Int("frame", frame),
				zap.Int("attached", attached))
		}

		frameTime := time.Since(frameStart)
		if frameTime > report.SlowestFrame {
			report.SlowestFrame = frameTime
		}
		if sc.FrameBudget > 0 && frameTime > sc.FrameBudget {
			report.OverBudgetFrames++
		}
	}

	// Drain the remaining checkouts so the report shows a quiesced world.
	for _, e := range live {
		if !e.handle.IsValid() {
			continue
		}
		if err := e.handle.Return(); err != nil {
			return err
		}
		report.Returned++
	}
	report.Duration = time.Since(started)
	return nil
}

// teardownMount reparents a slice of the live entities under a throwaway
// mount, broadcasts the pending destruction, and destroys the mount. The
// broadcast returns every pooled descendant before the subtree dies, which
// is exactly the cascade contract the library asks of callers.
func (r *Runner) teardownMount(frame int, live []entity) int {
	mount := scene.NewNode("mount")
	mount.SetParent(r.world)

	attached := 0
	for _, e := range live {
		if attached >= 8 {
			break
		}
		n := e.handle.Get()
		if n == nil {
			continue
		}
		n.SetParent(mount)
		attached++
	}

	r.pools.Registry().NotifyAncestorDestroying(mount)
	r.graph.Destroy(mount)
	return attached
}

func (r *Runner) pickPrototype() *scene.Node {
	total := 0
	for _, wp := range r.prototypes {
		total += wp.weight
	}
	if total == 0 {
		return r.prototypes[r.rng.Intn(len(r.prototypes))].node
	}
	pick := r.rng.Intn(total)
	for _, wp := range r.prototypes {
		pick -= wp.weight
		if pick < 0 {
			return wp.node
		}
	}
	return r.prototypes[len(r.prototypes)-1].node
}

// Dispose tears the simulation world down.
func (r *Runner) Dispose() {
	r.pools.Dispose()
	r.graph.Destroy(r.world)
}

func buildPrototype(pc config.PrototypeConfig) *scene.Node {
	proto := scene.NewNode(pc.Name)
	for i := 0; i < pc.Children; i++ {
		part := scene.NewNode(pc.Name + "-part")
		part.SetParent(proto)
	}
	// A cloneable lifecycle probe per prototype keeps hook dispatch on the
	// bench path, like real payload components would.
	proto.AddComponent(&LifecycleProbe{})
	return proto
}

// LifecycleProbe is a minimal Pooled component that counts its lifecycle
// callbacks. Each instance gets its own copy via CloneComponent.
type LifecycleProbe struct {
	Inits    int
	Acquires int
	Returns  int
}

// CloneComponent implements scene.Cloner.
func (p *LifecycleProbe) CloneComponent() any { return &LifecycleProbe{} }

// InitOnce implements pool.Initializer.
func (p *LifecycleProbe) InitOnce() { p.Inits++ }

// OnAcquire implements pool.Pooled.
func (p *LifecycleProbe) OnAcquire() { p.Acquires++ }

// OnReturn implements pool.Pooled.
func (p *LifecycleProbe) OnReturn() { p.Returns++ }

func sampleProcess() *ProcessStats {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil
	}
	stats := &ProcessStats{}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		stats.RSSBytes = mem.RSS
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	return stats
}
