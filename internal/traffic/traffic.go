// Package traffic holds the per-cycle view of nearby vehicles built
// from the simulator's sensor fusion list. Observations are ephemeral:
// a fresh set is constructed every telemetry cycle and nothing is
// retained across cycles.
package traffic

import "math"

// CycleSeconds is the interval at which the vehicle consumes one
// trajectory point. Vehicle prediction and trajectory spacing must
// agree on this value.
const CycleSeconds = 0.02

// Vehicle is a single sensor fusion observation of another car.
type Vehicle struct {
	ID int64
	X  float64 // world position
	Y  float64
	VX float64 // world-frame velocity, m/s
	VY float64
	S  float64 // Frenet arc length, metres
	D  float64 // Frenet lateral offset, metres
}

// Speed returns the scalar speed in m/s.
func (v Vehicle) Speed() float64 {
	return math.Hypot(v.VX, v.VY)
}

// PredictedS extrapolates the vehicle's arc length forward by the
// given number of planning steps at constant speed. Comparing against
// the ego position at the end of its queued path keeps front/rear
// distances consistent across cycles of varying queue length.
func (v Vehicle) PredictedS(steps int) float64 {
	return v.S + float64(steps)*CycleSeconds*v.Speed()
}

// InLane reports whether the vehicle's lateral offset falls inside the
// band of the given lane (lanes indexed from 0 at d=0, each laneWidth
// metres wide).
func (v Vehicle) InLane(lane int, laneWidth float64) bool {
	center := laneWidth/2 + laneWidth*float64(lane)
	return v.D > center-laneWidth/2 && v.D < center+laneWidth/2
}

// ClosestInLane finds the nearest qualifying vehicle in a lane.
//
// The distance metric is PredictedS(steps) - egoS. A non-negative
// bound keeps vehicles strictly ahead within bound metres and returns
// the nearest (smallest predicted S); a negative bound keeps vehicles
// strictly behind within -bound metres and returns the nearest
// (largest predicted S). The second return value is false when no
// vehicle qualifies — an empty lane is not an error.
func ClosestInLane(egoS float64, lane int, vehicles []Vehicle, steps int, bound, laneWidth float64) (Vehicle, bool) {
	var best Vehicle
	found := false
	for _, v := range vehicles {
		if !v.InLane(lane, laneWidth) {
			continue
		}
		dist := v.PredictedS(steps) - egoS
		if bound >= 0 {
			if dist <= 0 || dist >= bound {
				continue
			}
			if !found || v.PredictedS(steps) < best.PredictedS(steps) {
				best = v
				found = true
			}
		} else {
			if dist >= 0 || dist <= bound {
				continue
			}
			if !found || v.PredictedS(steps) > best.PredictedS(steps) {
				best = v
				found = true
			}
		}
	}
	return best, found
}
