package track

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// splineHalfWindow controls how many waypoints on each side of the
// query feed the local spline fit.
const splineHalfWindow = 2

// ToXY converts a Frenet coordinate (arc length s, lateral offset d)
// into world coordinates. A local cubic spline is fitted through the
// waypoints surrounding s; near the wrap seam the window blends points
// from both ends of the table by offsetting their arc lengths by MaxS.
func (m *Map) ToXY(s, d float64) (float64, float64, error) {
	s = m.WrapS(s)
	base := m.segmentBefore(s)
	sEval := s
	if m.Periodic() && s < m.points[0].S {
		// Seam segment between the last waypoint and the first one of
		// the next cycle.
		base = len(m.points) - 1
		sEval = s + m.maxS
	}

	n := len(m.points)
	count := 2*splineHalfWindow + 2
	ss := make([]float64, 0, count)
	xs := make([]float64, 0, count)
	ys := make([]float64, 0, count)
	dxs := make([]float64, 0, count)
	dys := make([]float64, 0, count)
	for j := base - splineHalfWindow; j <= base+splineHalfWindow+1; j++ {
		if !m.Periodic() && (j < 0 || j >= n) {
			// Non-periodic subrange: degrade to the points that exist.
			continue
		}
		idx := m.wrapIndex(j)
		cycle := floorDiv(j, n)
		p := m.points[idx]
		ss = append(ss, p.S+float64(cycle)*m.maxS)
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
		dxs = append(dxs, p.DX)
		dys = append(dys, p.DY)
	}

	var cx, cy, cdx, cdy interp.NaturalCubic
	if err := cx.Fit(ss, xs); err != nil {
		return 0, 0, fmt.Errorf("spline fit x(s): %w", err)
	}
	if err := cy.Fit(ss, ys); err != nil {
		return 0, 0, fmt.Errorf("spline fit y(s): %w", err)
	}
	if err := cdx.Fit(ss, dxs); err != nil {
		return 0, 0, fmt.Errorf("spline fit dx(s): %w", err)
	}
	if err := cdy.Fit(ss, dys); err != nil {
		return 0, 0, fmt.Errorf("spline fit dy(s): %w", err)
	}

	x := cx.Predict(sEval)
	y := cy.Predict(sEval)
	dx := cdx.Predict(sEval)
	dy := cdy.Predict(sEval)

	// The interpolated lateral vector drifts slightly off unit length
	// between waypoints; renormalise before applying the offset.
	norm := math.Hypot(dx, dy)
	if norm > 1e-9 {
		dx /= norm
		dy /= norm
	}
	return x + d*dx, y + d*dy, nil
}

// ClosestWaypoint returns the index of the waypoint nearest to (x, y).
func (m *Map) ClosestWaypoint(x, y float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, p := range m.points {
		dist := math.Hypot(p.X-x, p.Y-y)
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

// nextWaypoint returns the index of the first waypoint ahead of
// (x, y) for a vehicle heading theta (radians).
func (m *Map) nextWaypoint(x, y, theta float64) int {
	closest := m.ClosestWaypoint(x, y)
	p := m.points[closest]
	heading := math.Atan2(p.Y-y, p.X-x)
	angle := math.Abs(theta - heading)
	angle = math.Min(2*math.Pi-angle, angle)
	if angle > math.Pi/4 {
		closest++
	}
	return m.wrapIndex(closest)
}

// ToFrenet converts a world pose into the road frame. theta is the
// vehicle heading in radians. The lateral offset is positive toward
// the DX/DY direction of the table.
func (m *Map) ToFrenet(x, y, theta float64) (s, d float64) {
	next := m.nextWaypoint(x, y, theta)
	prev := m.wrapIndex(next - 1)

	np := m.points[next]
	pp := m.points[prev]

	// Project the position onto the segment prev→next.
	vx := np.X - pp.X
	vy := np.Y - pp.Y
	wx := x - pp.X
	wy := y - pp.Y
	segLen2 := vx*vx + vy*vy
	if segLen2 == 0 {
		return pp.S, 0
	}
	t := (wx*vx + wy*vy) / segLen2
	projX := t * vx
	projY := t * vy

	d = math.Hypot(wx-projX, wy-projY)
	// Sign: the lateral axis points to the right of the direction of
	// travel, so a positive cross product (point left of the segment)
	// means negative d.
	if vx*wy-vy*wx > 0 {
		d = -d
	}

	s = pp.S + t*math.Sqrt(segLen2)
	return m.WrapS(s), d
}

// floorDiv is integer division rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
