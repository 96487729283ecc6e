// plan-viz runs a single planning cycle against a synthetic traffic
// scene and renders the resulting trajectory, the nearby waypoints,
// and the traffic vehicles to an interactive HTML scatter chart.
package main

import (
	"flag"
	"log"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/highway.planner/internal/config"
	"github.com/banshee-data/highway.planner/internal/planner"
	"github.com/banshee-data/highway.planner/internal/track"
	"github.com/banshee-data/highway.planner/internal/traffic"
)

var (
	mapFile    = flag.String("map", "data/highway_map.csv", "Waypoint file")
	configFile = flag.String("config", "", "Tuning config JSON (defaults used when empty)")
	outFile    = flag.String("out", "plan.html", "Output HTML file")
	egoS       = flag.Float64("s", 200, "Ego arc length for the synthetic scene")
	egoSpeed   = flag.Float64("speed", 40, "Ego speed in mph")
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

	laneWidth := cfg.GetLaneWidthMeters()
	midLane := cfg.GetLaneCount() / 2
	egoD := laneWidth * (float64(midLane) + 0.5)
	egoX, egoY, err := roadMap.ToXY(*egoS, egoD)
	if err != nil {
		log.Fatalf("failed to place ego: %v", err)
	}
	_, _, yaw := headingAt(roadMap, *egoS, egoD)

	// A slow vehicle ahead in the ego lane and a free left lane: the
	// arbiter should pick the overtake and the chart shows the swerve.
	vehicles := synthesiseTraffic(roadMap, *egoS, midLane, laneWidth)

	pl := planner.New(roadMap, cfg)
	tel := planner.Telemetry{
		X:        egoX,
		Y:        egoY,
		S:        *egoS,
		D:        egoD,
		Yaw:      yaw,
		SpeedMPH: *egoSpeed,
	}
	// Ramp the reference speed off zero before the cycle of interest.
	for i := 0; i < 50; i++ {
		if _, err := pl.Cycle(tel); err != nil {
			log.Fatalf("warmup cycle failed: %v", err)
		}
	}
	tel.Vehicles = vehicles
	path, err := pl.Cycle(tel)
	if err != nil {
		log.Fatalf("planning cycle failed: %v", err)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Planned trajectory",
			Width:     "900px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Planned trajectory",
			Subtitle: *mapFile,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	scatter.AddSeries("waypoints", waypointData(roadMap, *egoS),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scatter.AddSeries("traffic", vehicleData(vehicles),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	scatter.AddSeries("trajectory", pathData(path.X, path.Y),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	f, err := os.Create(*outFile)
	if err != nil {
		log.Fatalf("failed to create %s: %v", *outFile, err)
	}
	defer f.Close()
	if err := scatter.Render(f); err != nil {
		log.Fatalf("failed to render chart: %v", err)
	}
	log.Printf("wrote %s (%d trajectory points)", *outFile, path.Len())
}

// headingAt estimates the road heading at (s, d) from a short forward
// difference along the curve.
func headingAt(m *track.Map, s, d float64) (x, y, yaw float64) {
	x0, y0, _ := m.ToXY(s, d)
	x1, y1, _ := m.ToXY(s+1, d)
	return x0, y0, math.Atan2(y1-y0, x1-x0)
}

func synthesiseTraffic(m *track.Map, egoS float64, lane int, laneWidth float64) []traffic.Vehicle {
	mk := func(id int64, s float64, l int, speed float64) traffic.Vehicle {
		d := laneWidth * (float64(l) + 0.5)
		x, y, _ := m.ToXY(s, d)
		_, _, yaw := headingAt(m, s, d)
		return traffic.Vehicle{
			ID: id,
			X:  x, Y: y,
			VX: speed * math.Cos(yaw), VY: speed * math.Sin(yaw),
			S: s, D: d,
		}
	}
	return []traffic.Vehicle{
		mk(1, egoS+20, lane, 15),   // slow blocker ahead
		mk(2, egoS-15, lane+1, 20), // right lane occupied behind
		mk(3, egoS+60, lane-1, 22), // left lane clear nearby
	}
}

func waypointData(m *track.Map, egoS float64) []opts.ScatterData {
	var data []opts.ScatterData
	for i := 0; i < m.Len(); i++ {
		p := m.Point(i)
		if p.S < egoS-100 || p.S > egoS+200 {
			continue
		}
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y}})
	}
	return data
}

func vehicleData(vehicles []traffic.Vehicle) []opts.ScatterData {
	data := make([]opts.ScatterData, 0, len(vehicles))
	for _, v := range vehicles {
		data = append(data, opts.ScatterData{Value: []interface{}{v.X, v.Y, v.ID}})
	}
	return data
}

func pathData(xs, ys []float64) []opts.ScatterData {
	data := make([]opts.ScatterData, 0, len(xs))
	for i := range xs {
		data = append(data, opts.ScatterData{Value: []interface{}{xs[i], ys[i]}})
	}
	return data
}
