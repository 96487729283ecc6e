// gen-map writes a synthetic circular waypoint file in the simulator's
// "x y s dx dy" format. Useful for exercising the planner without the
// real highway map: a circle gives every Frenet query a known
// analytical answer.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
)

var (
	outFile   = flag.String("out", "circle_map.csv", "Output waypoint file")
	radius    = flag.Float64("radius", 1105.4, "Centreline radius in metres")
	waypoints = flag.Int("waypoints", 181, "Number of waypoints around the loop")
)

func main() {
	flag.Parse()

	if *radius <= 0 || *waypoints < 4 {
		log.Fatal("radius must be positive and waypoints at least 4")
	}

	f, err := os.Create(*outFile)
	if err != nil {
		log.Fatalf("failed to create %s: %v", *outFile, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	circumference := 2 * math.Pi * *radius
	for i := 0; i < *waypoints; i++ {
		// Counter-clockwise loop. The lateral unit vector (dx, dy)
		// points outward, toward increasing d.
		a := 2 * math.Pi * float64(i) / float64(*waypoints)
		x := *radius * math.Cos(a)
		y := *radius * math.Sin(a)
		s := circumference * float64(i) / float64(*waypoints)
		fmt.Fprintf(w, "%.6f %.6f %.6f %.6f %.6f\n", x, y, s, math.Cos(a), math.Sin(a))
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("failed to write %s: %v", *outFile, err)
	}

	log.Printf("wrote %d waypoints to %s (loop length %.1fm)", *waypoints, *outFile, circumference)
	log.Printf("pass -map %s -config with map_max_s_meters=%.6f to use it", *outFile, circumference)
}
