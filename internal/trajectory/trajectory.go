// Package trajectory synthesises the short-horizon output path: a
// smooth curve is fitted through the tail of the previously committed
// path and a few lane-centred anchor points ahead, then resampled at
// the control cadence so the spacing between points realises the
// reference speed.
package trajectory

import (
	"fmt"
	"math"

	"github.com/banshee-data/highway.planner/internal/config"
	"github.com/banshee-data/highway.planner/internal/track"
)

// Pose is the ego vehicle's current world pose. Yaw is in radians.
type Pose struct {
	X   float64
	Y   float64
	Yaw float64
	S   float64 // Frenet arc length, already re-anchored to the tail end
}

// Path is an ordered sequence of world points, one per control cycle.
type Path struct {
	X []float64
	Y []float64
}

// Len returns the number of points in the path.
func (p Path) Len() int { return len(p.X) }

// Config holds the synthesizer's geometry parameters.
type Config struct {
	Horizon         int     // output path length in points
	AnchorSpacing   float64 // forward anchor spacing, metres
	Lookahead       float64 // resampling lookahead on the local x axis, metres
	LaneWidth       float64 // metres
	SpeedConversion float64 // mph per m/s
	CycleSeconds    float64 // time per output point
	NewCurve        func() Curve
}

// DefaultConfig returns synthesizer parameters loaded from the
// canonical tuning defaults file. Panics if the file cannot be found.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Horizon:         cfg.GetHorizonPoints(),
		AnchorSpacing:   cfg.GetAnchorSpacingMeters(),
		Lookahead:       cfg.GetLookaheadMeters(),
		LaneWidth:       cfg.GetLaneWidthMeters(),
		SpeedConversion: cfg.GetMPHPerMPS(),
		CycleSeconds:    0.02,
		NewCurve:        NewCubicCurve,
	}
}

// Plan builds the next output path.
//
// The unconsumed tail of the previous cycle's path is carried over
// verbatim and the curve is anchored on its last two points, so the
// emitted trajectory never breaks heading or velocity continuity with
// what the vehicle is already executing. refSpeed (mph) sets the
// spacing of the newly appended points.
//
// The returned path has exactly cfg.Horizon points, unless the tail
// already holds at least that many, in which case the tail is returned
// untouched.
func Plan(pose Pose, lane int, refSpeed float64, prevX, prevY []float64, m *track.Map, cfg Config) (Path, error) {
	prevSize := len(prevX)
	if prevSize != len(prevY) {
		return Path{}, fmt.Errorf("previous path mismatch: %d x values, %d y values", prevSize, len(prevY))
	}
	if prevSize >= cfg.Horizon {
		return Path{X: prevX, Y: prevY}, nil
	}

	// Reference frame: the end of the committed path, or the current
	// pose when there is nothing committed yet.
	refX, refY, refYaw := pose.X, pose.Y, pose.Yaw
	var anchorsX, anchorsY []float64
	if prevSize < 2 {
		// Synthesise a tangent pair from the pose so the fit starts
		// out aligned with the current heading.
		anchorsX = append(anchorsX, pose.X-math.Cos(pose.Yaw), pose.X)
		anchorsY = append(anchorsY, pose.Y-math.Sin(pose.Yaw), pose.Y)
	} else {
		refX = prevX[prevSize-1]
		refY = prevY[prevSize-1]
		prevRefX := prevX[prevSize-2]
		prevRefY := prevY[prevSize-2]
		refYaw = math.Atan2(refY-prevRefY, refX-prevRefX)
		anchorsX = append(anchorsX, prevRefX, refX)
		anchorsY = append(anchorsY, prevRefY, refY)
	}

	// Three lane-centred anchors spaced ahead in Frenet coordinates.
	laneCenter := cfg.LaneWidth * (float64(lane) + 0.5)
	for i := 1; i <= 3; i++ {
		x, y, err := m.ToXY(pose.S+float64(i)*cfg.AnchorSpacing, laneCenter)
		if err != nil {
			return Path{}, fmt.Errorf("anchor %d: %w", i, err)
		}
		anchorsX = append(anchorsX, x)
		anchorsY = append(anchorsY, y)
	}

	// Rotate the anchors into the reference frame so the curve is a
	// function of the local forward axis even through sharp turns.
	localX := make([]float64, len(anchorsX))
	localY := make([]float64, len(anchorsY))
	sinYaw, cosYaw := math.Sincos(-refYaw)
	for i := range anchorsX {
		shiftX := anchorsX[i] - refX
		shiftY := anchorsY[i] - refY
		localX[i] = shiftX*cosYaw - shiftY*sinYaw
		localY[i] = shiftX*sinYaw + shiftY*cosYaw
	}

	curve := cfg.NewCurve()
	if err := curve.Fit(localX, localY); err != nil {
		return Path{}, fmt.Errorf("curve fit: %w", err)
	}

	out := Path{
		X: make([]float64, 0, cfg.Horizon),
		Y: make([]float64, 0, cfg.Horizon),
	}
	// Committed points are never recomputed.
	out.X = append(out.X, prevX...)
	out.Y = append(out.Y, prevY...)

	// Split the chord to the lookahead point into steps that realise
	// refSpeed at the control cadence. A zero reference speed yields a
	// zero step, duplicating the reference point: the vehicle holds.
	targetX := cfg.Lookahead
	targetY := curve.Eval(targetX)
	targetDist := math.Hypot(targetX, targetY)
	stepsPerChord := targetDist / (cfg.CycleSeconds * refSpeed / cfg.SpeedConversion)

	sinBack, cosBack := math.Sincos(refYaw)
	xAddOn := 0.0
	for i := 0; i < cfg.Horizon-prevSize; i++ {
		x := xAddOn + targetX/stepsPerChord
		y := curve.Eval(x)
		xAddOn = x

		out.X = append(out.X, x*cosBack-y*sinBack+refX)
		out.Y = append(out.Y, x*sinBack+y*cosBack+refY)
	}
	return out, nil
}
