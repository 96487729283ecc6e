package track

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// RoadPoint is one entry of the centreline waypoint table.
type RoadPoint struct {
	S  float64 // arc length along the centreline, metres
	X  float64 // world position
	Y  float64
	DX float64 // unit vector pointing toward increasing lateral offset
	DY float64
}

// minWaypoints is the smallest table the spline window can work with.
const minWaypoints = 4

// Map is the loaded waypoint table for one closed-loop road.
type Map struct {
	points []RoadPoint
	maxS   float64 // arc length at which s wraps back to zero; 0 means non-periodic
}

// New builds a Map from an ordered waypoint table. maxS is the total
// arc length of the loop; pass 0 for a non-periodic subrange (test
// fixtures, partial maps).
func New(points []RoadPoint, maxS float64) (*Map, error) {
	if len(points) < minWaypoints {
		return nil, fmt.Errorf("waypoint table too small: %d points (need at least %d)", len(points), minWaypoints)
	}
	for i := 1; i < len(points); i++ {
		if points[i].S <= points[i-1].S {
			return nil, fmt.Errorf("waypoint s values must be strictly increasing: s[%d]=%.3f s[%d]=%.3f",
				i-1, points[i-1].S, i, points[i].S)
		}
	}
	if maxS != 0 && maxS <= points[len(points)-1].S {
		return nil, fmt.Errorf("max arc length %.3f must exceed last waypoint s %.3f",
			maxS, points[len(points)-1].S)
	}
	return &Map{points: points, maxS: maxS}, nil
}

// Load reads a whitespace-separated waypoint file with one
// "x y s dx dy" record per line (the simulator's map format).
func Load(path string, maxS float64) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map file: %w", err)
	}
	defer f.Close()

	var points []RoadPoint
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 5 {
			return nil, fmt.Errorf("map line %d: want 5 fields, got %d", line, len(fields))
		}
		vals := make([]float64, 5)
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("map line %d: failed to parse %q: %v", line, field, err)
			}
			vals[i] = v
		}
		points = append(points, RoadPoint{X: vals[0], Y: vals[1], S: vals[2], DX: vals[3], DY: vals[4]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	m, err := New(points, maxS)
	if err != nil {
		return nil, fmt.Errorf("invalid map file %s: %w", path, err)
	}
	return m, nil
}

// Len returns the number of waypoints in the table.
func (m *Map) Len() int { return len(m.points) }

// MaxS returns the arc length at which the road wraps, or 0 for a
// non-periodic map.
func (m *Map) MaxS() float64 { return m.maxS }

// Point returns the i'th waypoint, with i taken modulo the table size.
func (m *Map) Point(i int) RoadPoint { return m.points[m.wrapIndex(i)] }

// Periodic reports whether the map wraps around.
func (m *Map) Periodic() bool { return m.maxS > 0 }

// wrapIndex maps any integer onto a valid table index. For a
// non-periodic map it clamps instead of wrapping.
func (m *Map) wrapIndex(i int) int {
	n := len(m.points)
	if !m.Periodic() {
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// WrapS normalises an arc length into [0, maxS). Non-periodic maps
// return s unchanged.
func (m *Map) WrapS(s float64) float64 {
	if !m.Periodic() {
		return s
	}
	s = math.Mod(s, m.maxS)
	if s < 0 {
		s += m.maxS
	}
	return s
}

// segmentBefore returns the index of the last waypoint whose S does
// not exceed s. When s lies in the seam segment (after the last
// waypoint, before wrap) it returns the last index.
func (m *Map) segmentBefore(s float64) int {
	lo, hi := 0, len(m.points)-1
	if s < m.points[0].S {
		if m.Periodic() {
			return len(m.points) - 1
		}
		return 0
	}
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if m.points[mid].S <= s {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
