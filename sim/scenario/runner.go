package scenario

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/cloth-sim/cloth-sim/sim"
	"github.com/cloth-sim/cloth-sim/sim/trace"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

// Options override scenario settings from the command line.
type Options struct {
	Frames     int              // > 0 overrides frames.count
	Seed       *int64           // overrides frames.seed
	TraceLevel trace.TraceLevel // non-empty overrides world.trace_level
	Workers    int              // > 0 overrides world.workers
}

// Runner drives a sim.World through a scenario, one frame per Step.
type Runner struct {
	spec   *Spec
	frames int

	World      *sim.World
	Transforms *ScriptedTransforms
	Winds      *StaticWinds
	Colliders  *ColliderSet

	handles map[string]sim.TeamHandle
	names   map[sim.TeamID]string
	updates map[string]int
	events  map[int][]EventSpec
	jitter  *rand.Rand
	frame   int
}

// TeamResult is the end state of one team.
type TeamResult struct {
	Name         string  `yaml:"name"`
	TotalUpdates int     `yaml:"total_updates"`
	Time         float64 `yaml:"time"`
	SyncTo       string  `yaml:"sync_to,omitempty"`
	Enabled      bool    `yaml:"enabled"`
	Suspended    bool    `yaml:"suspended"`
	Destroyed    bool    `yaml:"destroyed,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	Frames  int
	Metrics *sim.Metrics
	Trace   *trace.SimulationTrace
	Teams   []TeamResult
}

// NewRunner validates the spec and builds the world with every team created,
// linked and enabled as configured.
func NewRunner(spec *Spec, opts Options) (*Runner, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	cfg := spec.World
	if opts.TraceLevel != "" {
		cfg.TraceLevel = opts.TraceLevel
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	seed := spec.Frames.Seed
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	frames := spec.Frames.Count
	if opts.Frames > 0 {
		frames = opts.Frames
	}

	winds, err := NewStaticWinds(spec.WindZones)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		spec:       spec,
		frames:     frames,
		Transforms: NewScriptedTransforms(),
		Winds:      winds,
		Colliders:  NewColliderSet(),
		handles:    make(map[string]sim.TeamHandle, len(spec.Teams)),
		names:      make(map[sim.TeamID]string, len(spec.Teams)),
		updates:    make(map[string]int, len(spec.Teams)),
		events:     make(map[int][]EventSpec),
		jitter:     NewPartitionedRNG(seed).ForSubsystem(SubsystemFrames),
	}
	r.World, err = sim.NewWorld(cfg, sim.Collaborators{
		Transforms: r.Transforms,
		Winds:      r.Winds,
		Colliders:  r.Colliders,
	})
	if err != nil {
		return nil, err
	}
	for _, e := range spec.Events {
		r.events[e.Frame] = append(r.events[e.Frame], e)
	}

	for _, ts := range spec.Teams {
		if err := r.addTeam(ts); err != nil {
			return nil, fmt.Errorf("team %q: %w", ts.Name, err)
		}
	}
	// Links and enable state once every team exists, so sync_to may point forward.
	for _, ts := range spec.Teams {
		h := r.handles[ts.Name]
		if ts.SyncTo != "" {
			target := r.handles[ts.SyncTo]
			if err := r.World.SetSyncTarget(h, &target); err != nil {
				return nil, fmt.Errorf("team %q: %w", ts.Name, err)
			}
		}
		if ts.Waiting {
			if err := r.World.SetWaitingForPartner(h, true); err != nil {
				return nil, err
			}
		}
		if ts.Enabled == nil || *ts.Enabled {
			if err := r.World.SetEnable(h, true); err != nil {
				return nil, err
			}
		}
	}
	logrus.Infof("scenario ready: %d teams, %d wind zones, %d frames, seed %d",
		len(spec.Teams), len(spec.WindZones), frames, seed)
	return r, nil
}

func (r *Runner) addTeam(ts TeamSpec) error {
	start := ts.Start.Transform()
	points := make([]mgl64.Vec3, 0, len(ts.FixedPoints))
	for _, p := range ts.FixedPoints {
		points = append(points, start.TransformPoint(p))
	}
	params := sim.DefaultParameters()
	if ts.Parameters != nil {
		params = *ts.Parameters
	}

	h, err := r.World.AddTeam(sim.TeamConfig{
		Name:          ts.Name,
		UpdateMode:    ts.UpdateMode,
		Reference:     start,
		FixedPoints:   points,
		ParticleCount: ts.Particles,
		Parameters:    params,
	})
	if err != nil {
		return err
	}
	if ts.TimeScale != nil {
		if err := r.World.SetTimeScale(h, *ts.TimeScale); err != nil {
			return err
		}
	}
	r.Transforms.Set(h.ID(), start, ts.Motion)
	r.handles[ts.Name] = h
	r.names[h.ID()] = ts.Name
	r.updates[ts.Name] = 0
	return nil
}

// Frames is the number of frames Run executes.
func (r *Runner) Frames() int {
	return r.frames
}

// Step applies the events scheduled for the next frame, moves the reference
// transforms and runs the frame.
func (r *Runner) Step() (sim.FrameResult, error) {
	for _, e := range r.events[r.frame] {
		if err := r.apply(e); err != nil {
			return sim.FrameResult{}, fmt.Errorf("frame %d: %s %s: %w", r.frame, e.Action, e.Team, err)
		}
	}

	in := r.frameInput()
	r.Transforms.Advance(in.DeltaTime)
	res, err := r.World.RunFrame(in)
	if err != nil {
		return res, fmt.Errorf("frame %d: %w", r.frame, err)
	}
	for name, h := range r.handles {
		snap, err := r.World.Snapshot(h)
		if err != nil {
			return res, err
		}
		r.updates[name] += snap.UpdateCount
	}
	r.frame++
	return res, nil
}

func (r *Runner) frameInput() sim.FrameInput {
	f := r.spec.Frames
	delta := Jitter(r.jitter, f.Delta, f.Jitter)
	in := sim.FrameInput{
		DeltaTime:         delta,
		FixedDeltaTime:    delta,
		UnscaledDeltaTime: delta,
		GlobalTimeScale:   1,
		SubstepDuration:   f.Substep,
		MaxDeltaTime:      f.MaxDelta,
	}
	if f.FixedDelta != nil {
		in.FixedDeltaTime = *f.FixedDelta
	}
	if f.UnscaledDelta != nil {
		in.UnscaledDeltaTime = *f.UnscaledDelta
	}
	if f.GlobalTimeScale != nil {
		in.GlobalTimeScale = *f.GlobalTimeScale
	}
	if in.SubstepDuration == 0 {
		in.SubstepDuration = DefaultSubstep
	}
	return in
}

func (r *Runner) apply(e EventSpec) error {
	h, ok := r.handles[e.Team]
	if !ok {
		logrus.Warnf("event %s on destroyed team %q ignored", e.Action, e.Team)
		return nil
	}
	logrus.Debugf("frame %d: %s %s", r.frame, e.Action, e.Team)

	switch e.Action {
	case ActionEnable:
		return r.World.SetEnable(h, true)
	case ActionDisable:
		return r.World.SetEnable(h, false)
	case ActionSync:
		target, ok := r.handles[e.Target]
		if !ok {
			logrus.Warnf("sync target %q of team %q no longer exists", e.Target, e.Team)
			return nil
		}
		err := r.World.SetSyncTarget(h, &target)
		if errors.Is(err, sim.ErrSyncCycle) {
			// The world already warned; the previous link stays.
			return nil
		}
		return err
	case ActionUnsync:
		return r.World.SetSyncTarget(h, nil)
	case ActionTimeScale:
		return r.World.SetTimeScale(h, e.Value)
	case ActionResetPose:
		return r.World.ResetPose(h)
	case ActionResetTime:
		return r.World.ResetTime(h)
	case ActionWait:
		return r.World.SetWaitingForPartner(h, true)
	case ActionResume:
		return r.World.SetWaitingForPartner(h, false)
	case ActionTeleport:
		r.Transforms.Teleport(h.ID(), *e.Position)
		return nil
	case ActionDestroy:
		if err := r.World.DestroyTeam(h); err != nil {
			return err
		}
		r.Transforms.Remove(h.ID())
		delete(r.handles, e.Team)
		delete(r.names, h.ID())
		return nil
	}
	return fmt.Errorf("unknown action %q", e.Action)
}

// Run executes the remaining frames. It stops early when ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	for r.frame < r.frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := r.Step(); err != nil {
			return nil, err
		}
	}
	logrus.Infof("scenario finished after %d frames", r.frame)
	return r.Result(), nil
}

// Result reports the current state of every team in scenario order.
func (r *Runner) Result() *Result {
	res := &Result{
		Frames:  r.frame,
		Metrics: r.World.Metrics,
		Trace:   r.World.Trace,
	}
	for _, ts := range r.spec.Teams {
		tr := TeamResult{Name: ts.Name, TotalUpdates: r.updates[ts.Name]}
		h, ok := r.handles[ts.Name]
		if !ok {
			tr.Destroyed = true
			res.Teams = append(res.Teams, tr)
			continue
		}
		snap, err := r.World.Snapshot(h)
		if err != nil {
			continue
		}
		tr.Time = snap.Time
		tr.SyncTo = r.names[snap.SyncTeamID]
		tr.Enabled = snap.Enabled()
		tr.Suspended = snap.Suspended()
		res.Teams = append(res.Teams, tr)
	}
	return res
}

// TeamNames returns the live team names, sorted.
func (r *Runner) TeamNames() []string {
	names := make([]string, 0, len(r.handles))
	for name := range r.handles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handle returns the handle of a live team.
func (r *Runner) Handle(name string) (sim.TeamHandle, bool) {
	h, ok := r.handles[name]
	return h, ok
}
