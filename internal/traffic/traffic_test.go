package traffic

import (
	"math"
	"testing"
)

const laneWidth = 4.0

// laneD returns the lateral offset of a lane centre.
func laneD(lane int) float64 { return laneWidth * (float64(lane) + 0.5) }

func TestVehicleSpeed(t *testing.T) {
	v := Vehicle{VX: 3, VY: 4}
	if got := v.Speed(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Speed() = %v, want 5", got)
	}
}

func TestPredictedS(t *testing.T) {
	v := Vehicle{S: 100, VX: 20, VY: 0}

	tests := []struct {
		name  string
		steps int
		want  float64
	}{
		{"no queued path", 0, 100},
		{"one step", 1, 100 + 0.02*20},
		{"full horizon", 50, 100 + 50*0.02*20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.PredictedS(tt.steps); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("PredictedS(%d) = %v, want %v", tt.steps, got, tt.want)
			}
		})
	}
}

func TestInLane(t *testing.T) {
	tests := []struct {
		name string
		d    float64
		lane int
		want bool
	}{
		{"centre of lane 0", 2, 0, true},
		{"centre of lane 1", 6, 1, true},
		{"centre of lane 2", 10, 2, true},
		{"lane 1 centre not in lane 0", 6, 0, false},
		{"lower boundary excluded", 4, 1, false},
		{"upper boundary excluded", 8, 1, false},
		{"just inside lower boundary", 4.01, 1, true},
		{"just inside upper boundary", 7.99, 1, true},
		{"off the road", -1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Vehicle{D: tt.d}
			if got := v.InLane(tt.lane, laneWidth); got != tt.want {
				t.Errorf("InLane(%d) with d=%v = %v, want %v", tt.lane, tt.d, got, tt.want)
			}
		})
	}
}

func TestClosestInLaneAhead(t *testing.T) {
	const egoS = 100.0
	vehicles := []Vehicle{
		{ID: 1, S: 120, D: laneD(1), VX: 10},           // ahead, in range
		{ID: 2, S: 110, D: laneD(1), VX: 10},           // ahead, nearer
		{ID: 3, S: 95, D: laneD(1), VX: 10},            // behind
		{ID: 4, S: 160, D: laneD(1), VX: 10},           // ahead, out of range
		{ID: 5, S: 105, D: laneD(0), VX: 10},           // wrong lane
		{ID: 6, S: egoS, D: laneD(1), VX: 10},          // exactly at ego: excluded
		{ID: 7, S: egoS + 30, D: laneD(1), VX: 10, VY: 0}, // exactly at bound: excluded
	}

	got, ok := ClosestInLane(egoS, 1, vehicles, 0, 30, laneWidth)
	if !ok {
		t.Fatal("expected a vehicle ahead")
	}
	if got.ID != 2 {
		t.Errorf("nearest ahead = vehicle %d, want 2", got.ID)
	}

	if _, ok := ClosestInLane(egoS, 2, vehicles, 0, 30, laneWidth); ok {
		t.Error("empty lane should report no vehicle")
	}
}

func TestClosestInLaneBehind(t *testing.T) {
	const egoS = 100.0
	vehicles := []Vehicle{
		{ID: 1, S: 95, D: laneD(0)},  // behind, in range
		{ID: 2, S: 98, D: laneD(0)},  // behind, nearer
		{ID: 3, S: 105, D: laneD(0)}, // ahead
		{ID: 4, S: 80, D: laneD(0)},  // behind, out of 10m range
	}

	got, ok := ClosestInLane(egoS, 0, vehicles, 0, -10, laneWidth)
	if !ok {
		t.Fatal("expected a vehicle behind")
	}
	if got.ID != 2 {
		t.Errorf("nearest behind = vehicle %d, want 2", got.ID)
	}
}

// A vehicle behind the ego now but projected past it by the end of the
// queued path must count as ahead, not behind.
func TestClosestInLanePrediction(t *testing.T) {
	const egoS = 100.0
	v := Vehicle{ID: 1, S: 98, D: laneD(1), VX: 25}

	if _, ok := ClosestInLane(egoS, 1, []Vehicle{v}, 0, 30, laneWidth); ok {
		t.Error("vehicle at s=98 with no queued path should not be ahead")
	}

	// 50 steps at 25 m/s moves it 25m forward of its observed position.
	got, ok := ClosestInLane(egoS, 1, []Vehicle{v}, 50, 30, laneWidth)
	if !ok {
		t.Fatal("projected vehicle should be ahead")
	}
	if got.ID != 1 {
		t.Errorf("got vehicle %d, want 1", got.ID)
	}
}
