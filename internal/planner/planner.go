// Package planner runs one full planning cycle per telemetry update:
// build the traffic snapshot, arbitrate lane and reference speed, and
// synthesise the next output trajectory. It owns the only cross-cycle
// mutable state (target lane, reference speed).
package planner

import (
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/highway.planner/internal/behavior"
	"github.com/banshee-data/highway.planner/internal/config"
	"github.com/banshee-data/highway.planner/internal/monitoring"
	"github.com/banshee-data/highway.planner/internal/timeutil"
	"github.com/banshee-data/highway.planner/internal/track"
	"github.com/banshee-data/highway.planner/internal/traffic"
	"github.com/banshee-data/highway.planner/internal/trajectory"
)

// Telemetry is one parsed simulator update. Yaw is in radians, speeds
// in the units noted per field; the wire layer converts before calling
// Cycle.
type Telemetry struct {
	X        float64
	Y        float64
	S        float64
	D        float64
	Yaw      float64 // radians
	SpeedMPH float64

	// Unconsumed tail of the previous cycle's path, plus the Frenet
	// coordinate of its end point.
	PrevX    []float64
	PrevY    []float64
	EndPathS float64

	Vehicles []traffic.Vehicle
}

// CycleRecord summarises one completed planning cycle for persistence.
type CycleRecord struct {
	EgoS        float64
	Lane        int
	RefSpeedMPH float64
	LaneChanged bool
	FrontID     int64 // -1 when the lane ahead is clear
	NumVehicles int
	TailLen     int
	Elapsed     time.Duration
}

// Recorder persists cycle records. Implementations must tolerate being
// called once per telemetry update (50Hz at full queue churn).
type Recorder interface {
	RecordCycle(rec CycleRecord) error
}

// Planner holds the loaded road map, tuning, and cross-cycle state.
// Cycle must be called from a single goroutine; the read-only Status
// accessor is safe to call concurrently with it.
type Planner struct {
	roadMap *track.Map
	params  behavior.Params
	trajCfg trajectory.Config
	rec     Recorder
	clock   timeutil.Clock

	startLane int

	mu     sync.Mutex
	state  behavior.State
	cycles int64
	last   time.Duration
}

// Option configures optional Planner collaborators.
type Option func(*Planner)

// WithRecorder attaches a cycle recorder. Recording failures are
// logged, not fatal: the control loop must keep producing paths.
func WithRecorder(rec Recorder) Option {
	return func(p *Planner) { p.rec = rec }
}

// WithClock substitutes the clock used for cycle timing.
func WithClock(c timeutil.Clock) Option {
	return func(p *Planner) { p.clock = c }
}

// New builds a Planner starting in the middle lane at a standstill.
// Starting the reference speed at zero avoids a jerk spike on the
// first cycles; the arbiter ramps it up one step at a time.
func New(roadMap *track.Map, cfg *config.TuningConfig, opts ...Option) *Planner {
	p := &Planner{
		roadMap:   roadMap,
		params:    behavior.ParamsFromTuning(cfg),
		trajCfg:   trajectory.ConfigFromTuning(cfg),
		clock:     timeutil.RealClock{},
		startLane: cfg.GetLaneCount() / 2,
	}
	p.state = behavior.State{Lane: p.startLane, RefSpeed: 0}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Status is a point-in-time snapshot of the planner's state.
type Status struct {
	Lane        int           `json:"lane"`
	RefSpeedMPH float64       `json:"ref_speed_mph"`
	Cycles      int64         `json:"cycles"`
	LastCycle   time.Duration `json:"last_cycle_ns"`
}

// Status returns the current planner state. Safe for concurrent use.
func (p *Planner) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		Lane:        p.state.Lane,
		RefSpeedMPH: p.state.RefSpeed,
		Cycles:      p.cycles,
		LastCycle:   p.last,
	}
}

// UpdateTuning re-derives behavior and trajectory parameters from a
// tuning config. Takes effect on the next cycle.
func (p *Planner) UpdateTuning(cfg *config.TuningConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params = behavior.ParamsFromTuning(cfg)
	p.trajCfg = trajectory.ConfigFromTuning(cfg)
}

// Reset returns the planner to its initial state (middle lane,
// standstill). Used when the simulator restarts a session.
func (p *Planner) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = behavior.State{Lane: p.startLane, RefSpeed: 0}
}

// Cycle processes one telemetry update and returns the trajectory to
// hand back to the simulator.
func (p *Planner) Cycle(t Telemetry) (trajectory.Path, error) {
	start := p.clock.Now()

	// Project the ego position to the end of the committed path so
	// distances to other (also projected) vehicles stay consistent
	// regardless of how much of the previous path is still queued.
	egoS := t.S
	steps := len(t.PrevX)
	if steps > 0 {
		egoS = t.EndPathS
	}

	p.mu.Lock()
	st := p.state
	params := p.params
	trajCfg := p.trajCfg
	p.mu.Unlock()

	dec := behavior.Decide(&st, egoS, t.Vehicles, steps, params)
	if dec.LaneChanged {
		monitoring.Logf("lane change: lane=%d ref_speed=%.1fmph costs=%v", st.Lane, st.RefSpeed, dec.Costs)
	}

	pose := trajectory.Pose{X: t.X, Y: t.Y, Yaw: t.Yaw, S: egoS}
	path, err := trajectory.Plan(pose, st.Lane, st.RefSpeed, t.PrevX, t.PrevY, p.roadMap, trajCfg)
	if err != nil {
		return trajectory.Path{}, fmt.Errorf("trajectory synthesis: %w", err)
	}

	elapsed := p.clock.Since(start)
	p.mu.Lock()
	p.state = st
	p.cycles++
	p.last = elapsed
	p.mu.Unlock()

	if p.rec != nil {
		rec := CycleRecord{
			EgoS:        egoS,
			Lane:        st.Lane,
			RefSpeedMPH: st.RefSpeed,
			LaneChanged: dec.LaneChanged,
			FrontID:     dec.FrontID,
			NumVehicles: len(t.Vehicles),
			TailLen:     steps,
			Elapsed:     elapsed,
		}
		if err := p.rec.RecordCycle(rec); err != nil {
			monitoring.Logf("failed to record cycle: %v", err)
		}
	}
	return path, nil
}
