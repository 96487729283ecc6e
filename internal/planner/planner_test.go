package planner

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/highway.planner/internal/config"
	"github.com/banshee-data/highway.planner/internal/timeutil"
	"github.com/banshee-data/highway.planner/internal/track"
	"github.com/banshee-data/highway.planner/internal/traffic"
)

// straight road along the x axis: lateral vector points in -y, so a
// lane centre at d sits at y = -d.
func straightMap(t *testing.T) *track.Map {
	t.Helper()
	pts := make([]track.RoadPoint, 31)
	for i := range pts {
		s := float64(i * 10)
		pts[i] = track.RoadPoint{S: s, X: s, Y: 0, DX: 0, DY: -1}
	}
	m, err := track.New(pts, 0)
	if err != nil {
		t.Fatalf("failed to build straight map: %v", err)
	}
	return m
}

// captureRecorder keeps every cycle record for inspection.
type captureRecorder struct {
	records []CycleRecord
}

func (c *captureRecorder) RecordCycle(rec CycleRecord) error {
	c.records = append(c.records, rec)
	return nil
}

func (c *captureRecorder) last(t *testing.T) CycleRecord {
	t.Helper()
	if len(c.records) == 0 {
		t.Fatal("no cycle records captured")
	}
	return c.records[len(c.records)-1]
}

// telemetryAt builds an ego update in the centre of the given lane at
// arc length s, with no committed path.
func telemetryAt(s float64, lane int, speedMPH float64, vehicles []traffic.Vehicle) Telemetry {
	d := 4*float64(lane) + 2
	return Telemetry{
		X:        s,
		Y:        -d,
		S:        s,
		D:        d,
		Yaw:      0,
		SpeedMPH: speedMPH,
		Vehicles: vehicles,
	}
}

// vehicle places a car at arc length s in a lane moving at speed m/s.
func vehicle(id int64, s float64, lane int, speed float64) traffic.Vehicle {
	return traffic.Vehicle{ID: id, X: s, Y: -(4*float64(lane) + 2), VX: speed, S: s, D: 4*float64(lane) + 2}
}

func TestCycleEmptyRoad(t *testing.T) {
	rec := &captureRecorder{}
	pl := New(straightMap(t), config.EmptyTuningConfig(), WithRecorder(rec))

	path, err := pl.Cycle(telemetryAt(50, 1, 0, nil))
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if path.Len() != 50 {
		t.Errorf("path length = %d, want 50", path.Len())
	}

	st := pl.Status()
	if st.Lane != 1 {
		t.Errorf("lane = %d, want 1 (no reason to change)", st.Lane)
	}
	if math.Abs(st.RefSpeedMPH-0.224) > 1e-9 {
		t.Errorf("ref speed = %v, want one step up from standstill", st.RefSpeedMPH)
	}
	if st.Cycles != 1 {
		t.Errorf("cycles = %d, want 1", st.Cycles)
	}

	last := rec.last(t)
	if last.LaneChanged || last.FrontID != -1 || last.NumVehicles != 0 {
		t.Errorf("unexpected record: %+v", last)
	}
}

func TestCycleOvertakesBlocker(t *testing.T) {
	rec := &captureRecorder{}
	pl := New(straightMap(t), config.EmptyTuningConfig(), WithRecorder(rec))

	// Slow car 20m ahead in the ego lane, both neighbours clear.
	blocker := vehicle(7, 70, 1, 10)
	if _, err := pl.Cycle(telemetryAt(50, 1, 40, []traffic.Vehicle{blocker})); err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	st := pl.Status()
	if st.Lane == 1 {
		t.Error("expected a lane change away from the blocker")
	}
	if !rec.last(t).LaneChanged {
		t.Error("record should show the lane change")
	}
}

func TestCycleRearVehicleBlocksChange(t *testing.T) {
	rec := &captureRecorder{}
	pl := New(straightMap(t), config.EmptyTuningConfig(), WithRecorder(rec))

	vehicles := []traffic.Vehicle{
		vehicle(1, 70, 1, 10), // blocker ahead
		vehicle(2, 45, 0, 22), // close behind in left lane
		vehicle(3, 45, 2, 22), // close behind in right lane
	}
	if _, err := pl.Cycle(telemetryAt(50, 1, 40, vehicles)); err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	st := pl.Status()
	if st.Lane != 1 {
		t.Errorf("lane = %d, want 1 (boxed in)", st.Lane)
	}
	last := rec.last(t)
	if last.LaneChanged {
		t.Error("expected no lane change")
	}
	if last.FrontID != 1 {
		t.Errorf("FrontID = %d, want the blocker", last.FrontID)
	}
}

// With a committed path, distances are measured from its end point,
// not the vehicle's current position.
func TestCycleReanchorsToPathEnd(t *testing.T) {
	rec := &captureRecorder{}
	clock := timeutil.NewMockClock(time.Unix(1000, 0))
	pl := New(straightMap(t), config.EmptyTuningConfig(), WithRecorder(rec), WithClock(clock))

	tel := telemetryAt(50, 1, 40, nil)
	tel.PrevX = []float64{59.2, 59.6, 60}
	tel.PrevY = []float64{-6, -6, -6}
	tel.EndPathS = 60

	if _, err := pl.Cycle(tel); err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	want := CycleRecord{
		EgoS:        60, // re-anchored to the end of the committed path
		Lane:        1,
		RefSpeedMPH: 0.224,
		FrontID:     -1,
		TailLen:     3,
	}
	if diff := cmp.Diff(want, rec.last(t)); diff != "" {
		t.Errorf("cycle record mismatch (-want +got):\n%s", diff)
	}
}

func TestCycleElapsedUsesClock(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(1000, 0))
	rec := &captureRecorder{}
	pl := New(straightMap(t), config.EmptyTuningConfig(), WithRecorder(rec), WithClock(clock))

	if _, err := pl.Cycle(telemetryAt(50, 1, 0, nil)); err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	// The mock clock did not move, so the recorded elapsed time is zero.
	if got := rec.last(t).Elapsed; got != 0 {
		t.Errorf("Elapsed = %v, want 0 with a frozen clock", got)
	}
	if pl.Status().LastCycle != 0 {
		t.Errorf("LastCycle = %v, want 0", pl.Status().LastCycle)
	}
}

func TestReset(t *testing.T) {
	pl := New(straightMap(t), config.EmptyTuningConfig())

	for i := 0; i < 10; i++ {
		if _, err := pl.Cycle(telemetryAt(50, 1, 0, nil)); err != nil {
			t.Fatalf("Cycle: %v", err)
		}
	}
	if pl.Status().RefSpeedMPH == 0 {
		t.Fatal("ref speed should have ramped before the reset")
	}

	pl.Reset()
	st := pl.Status()
	if st.Lane != 1 || st.RefSpeedMPH != 0 {
		t.Errorf("after Reset lane = %d ref speed = %v, want middle lane at standstill", st.Lane, st.RefSpeedMPH)
	}
}

func TestUpdateTuning(t *testing.T) {
	pl := New(straightMap(t), config.EmptyTuningConfig())

	// Raise the per-cycle speed step and verify the next cycle uses it.
	step := 1.0
	cfg := config.EmptyTuningConfig()
	cfg.SpeedStepUpMPH = &step
	pl.UpdateTuning(cfg)

	if _, err := pl.Cycle(telemetryAt(50, 1, 0, nil)); err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if got := pl.Status().RefSpeedMPH; math.Abs(got-step) > 1e-9 {
		t.Errorf("ref speed = %v, want %v after tuning update", got, step)
	}
}

// A recorder failure must not fail the cycle.
type failingRecorder struct{}

func (failingRecorder) RecordCycle(CycleRecord) error {
	return errors.New("record failed")
}

func TestCycleSurvivesRecorderFailure(t *testing.T) {
	pl := New(straightMap(t), config.EmptyTuningConfig(), WithRecorder(failingRecorder{}))

	path, err := pl.Cycle(telemetryAt(50, 1, 0, nil))
	if err != nil {
		t.Fatalf("Cycle should not propagate recorder errors: %v", err)
	}
	if path.Len() != 50 {
		t.Errorf("path length = %d, want 50", path.Len())
	}
}
