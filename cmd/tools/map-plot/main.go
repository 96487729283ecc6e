// map-plot renders a waypoint map to PNG: the centreline plus the lane
// boundary curves, sampled densely through the spline so the seam and
// any kinks in the table are visible at a glance.
package main

import (
	"flag"
	"log"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/highway.planner/internal/config"
	"github.com/banshee-data/highway.planner/internal/track"
)

var (
	mapFile    = flag.String("map", "data/highway_map.csv", "Waypoint file to render")
	configFile = flag.String("config", "", "Tuning config JSON (defaults used when empty)")
	outFile    = flag.String("out", "map.png", "Output PNG file")
	samples    = flag.Int("samples", 2000, "Points sampled along the loop per curve")
)

func main() {
	flag.Parse()

	cfg := config.EmptyTuningConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	roadMap, err := track.Load(*mapFile, cfg.GetMapMaxSMeters())
	if err != nil {
		log.Fatalf("failed to load waypoint map: %v", err)
	}

	p := plot.New()
	p.Title.Text = "Road geometry: " + *mapFile
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	laneWidth := cfg.GetLaneWidthMeters()
	// d=0 is both the centreline and the inner road edge.
	curves := []struct {
		name string
		d    float64
	}{
		{"centreline", 0},
		{"outer edge", laneWidth * float64(cfg.GetLaneCount())},
	}
	for i := 1; i < cfg.GetLaneCount(); i++ {
		curves = append(curves, struct {
			name string
			d    float64
		}{"lane boundary", laneWidth * float64(i)})
	}

	for _, c := range curves {
		pts, err := sampleCurve(roadMap, c.d, *samples)
		if err != nil {
			log.Fatalf("failed to sample %s: %v", c.name, err)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			log.Fatalf("failed to build %s line: %v", c.name, err)
		}
		p.Add(line)
	}

	if err := p.Save(8*vg.Inch, 8*vg.Inch, *outFile); err != nil {
		log.Fatalf("failed to save plot: %v", err)
	}
	log.Printf("wrote %s (%d waypoints, %d samples per curve)", *outFile, roadMap.Len(), *samples)
}

// sampleCurve evaluates the map at a fixed lateral offset, n points
// spread evenly over the loop.
func sampleCurve(m *track.Map, d float64, n int) (plotter.XYs, error) {
	length := m.MaxS()
	if length == 0 {
		length = m.Point(m.Len() - 1).S
	}
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		s := length * float64(i) / float64(n)
		x, y, err := m.ToXY(s, d)
		if err != nil {
			return nil, err
		}
		pts[i].X = x
		pts[i].Y = y
	}
	return pts, nil
}
