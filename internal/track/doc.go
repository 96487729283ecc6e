// Package track owns the static road geometry: the centreline waypoint
// table and the conversion between the road-aligned Frenet frame
// (arc length s, lateral offset d) and world coordinates.
//
// The waypoint table is sparse and periodic: arc length wraps back to
// zero at MaxS. All lookups go through the shared cyclic index helpers
// so the seam behaves like any other stretch of road.
//
// The table is immutable after load and safe for concurrent readers.
package track
