// Package behavior owns the per-cycle lane and speed arbitration: a
// cost is evaluated for each lane from the traffic snapshot, the
// target lane may step to an adjacent lane, and the reference speed is
// nudged by at most one step per cycle.
package behavior

import (
	"github.com/banshee-data/highway.planner/internal/config"
	"github.com/banshee-data/highway.planner/internal/traffic"
)

// laneCount is fixed by the transition rule below, which encodes a
// three-lane highway with a rightward evaluation bias.
const laneCount = 3

// Params holds the arbiter's tunable weights and bounds.
type Params struct {
	RangeAhead       float64 // forward scan range, metres
	RangeBehind      float64 // rear scan range magnitude, metres
	SpeedLimit       float64 // reference speed ceiling, mph
	WeightSpeed      float64 // penalty per mph below the limit a blocker drives
	WeightDistance   float64 // closeness penalty numerator
	WeightStay       float64 // bonus for keeping the current lane
	WeightCollision  float64 // penalty for a rear vehicle in a candidate lane
	SpeedStepUp      float64 // per-cycle speed increase, mph
	SpeedStepDown    float64 // per-cycle speed decrease, mph
	SpeedConversion  float64 // mph per m/s
	FollowGapMargin  float64 // speed slack before closing a gap, m/s
	MinFrontDistance float64 // clamp for the closeness division, metres
	LaneWidth        float64 // lane band width, metres
}

// DefaultParams returns arbiter parameters loaded from the canonical
// tuning defaults file. Panics if the file cannot be found — intended
// for tests and binaries that have already validated config
// availability.
func DefaultParams() Params {
	return ParamsFromTuning(config.MustLoadDefaultConfig())
}

// ParamsFromTuning builds Params from a loaded TuningConfig.
// Use this in production code where the TuningConfig is already loaded.
func ParamsFromTuning(cfg *config.TuningConfig) Params {
	return Params{
		RangeAhead:       cfg.GetRangeAheadMeters(),
		RangeBehind:      cfg.GetRangeAheadMeters() / cfg.GetRearRangeDivisor(),
		SpeedLimit:       cfg.GetSpeedLimitMPH(),
		WeightSpeed:      cfg.GetWeightSpeed(),
		WeightDistance:   cfg.GetWeightDistance(),
		WeightStay:       cfg.GetWeightStay(),
		WeightCollision:  cfg.GetWeightCollision(),
		SpeedStepUp:      cfg.GetSpeedStepUpMPH(),
		SpeedStepDown:    cfg.GetSpeedStepDownMPH(),
		SpeedConversion:  cfg.GetMPHPerMPS(),
		FollowGapMargin:  cfg.GetFollowGapMarginMPS(),
		MinFrontDistance: cfg.GetMinFrontDistanceMeters(),
		LaneWidth:        cfg.GetLaneWidthMeters(),
	}
}

// State is the planner's only cross-cycle mutable state: the target
// lane and the reference speed in mph. It is owned by the control loop
// and mutated in place once per cycle by Decide.
type State struct {
	Lane     int
	RefSpeed float64
}

// Decision summarises one arbitration cycle for logging and recording.
type Decision struct {
	Costs       [laneCount]float64 // final per-lane costs
	LaneChanged bool
	FrontID     int64 // id of the vehicle being followed, -1 if lane clear
	FrontSpeed  float64
}

// Decide evaluates lane costs from the traffic snapshot and updates
// the state in place: at most one adjacent-lane change and at most one
// speed step per cycle. egoS is the ego arc length projected to the
// end of the queued path, steps the queued path length in cycles.
//
// The transition rule is order-sensitive: rightward moves are
// evaluated before leftward ones, each against the possibly
// already-updated lane. Cost ties keep the current lane.
func Decide(st *State, egoS float64, vehicles []traffic.Vehicle, steps int, p Params) Decision {
	var (
		costs [laneCount]float64
		front [laneCount]traffic.Vehicle
		ahead [laneCount]bool
	)

	for lane := 0; lane < laneCount; lane++ {
		front[lane], ahead[lane] = traffic.ClosestInLane(egoS, lane, vehicles, steps, p.RangeAhead, p.LaneWidth)
		if ahead[lane] {
			// Slow blockers cost more than fast ones, near blockers
			// more than far ones.
			costs[lane] += p.WeightSpeed * (p.SpeedLimit - p.SpeedConversion*front[lane].Speed())
			dist := front[lane].PredictedS(steps) - egoS
			if dist < p.MinFrontDistance {
				dist = p.MinFrontDistance
			}
			costs[lane] += p.WeightDistance / dist
		}
	}

	// Hysteresis: discourage lane changes that are not clearly better.
	if st.Lane >= 0 && st.Lane < laneCount {
		costs[st.Lane] -= p.WeightStay
	}

	// A vehicle close behind in another lane rules that lane out.
	for lane := 0; lane < laneCount; lane++ {
		if lane == st.Lane {
			continue
		}
		if _, ok := traffic.ClosestInLane(egoS, lane, vehicles, steps, -p.RangeBehind, p.LaneWidth); ok {
			costs[lane] += p.WeightCollision
		}
	}

	// Lane selection. The order of these checks is part of the
	// behaviour: rightward first, and each condition reads the lane
	// variable as left by the previous check.
	prevLane := st.Lane
	if st.Lane == 0 && costs[1] < costs[0] {
		st.Lane++
	}
	if st.Lane == 1 && costs[2] < costs[1] && costs[2] <= costs[0] {
		st.Lane++
	}
	if st.Lane == 2 && costs[1] < costs[2] {
		st.Lane--
	}
	if st.Lane == 1 && costs[0] < costs[1] && costs[0] < costs[2] {
		st.Lane--
	}

	// Speed control against the front vehicle of the lane we ended up
	// in. One bounded step per cycle keeps acceleration comfortable no
	// matter how large the speed gap is.
	dec := Decision{Costs: costs, LaneChanged: st.Lane != prevLane, FrontID: -1}
	if ahead[st.Lane] {
		target := front[st.Lane].Speed()
		dec.FrontID = front[st.Lane].ID
		dec.FrontSpeed = target
		if st.RefSpeed/p.SpeedConversion > target {
			st.RefSpeed -= p.SpeedStepDown
		} else if st.RefSpeed/p.SpeedConversion < target-p.FollowGapMargin {
			st.RefSpeed += p.SpeedStepUp
		}
	} else if st.RefSpeed < p.SpeedLimit {
		st.RefSpeed += p.SpeedStepUp
	}
	return dec
}
