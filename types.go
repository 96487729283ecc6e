package main

// Wire types for the simulator's websocket protocol. Field names
// follow the simulator's JSON exactly.

// telemetryPayload is the payload of a "telemetry" event.
type telemetryPayload struct {
	// Ego localisation. Yaw is in degrees, speed in mph.
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	S     float64 `json:"s"`
	D     float64 `json:"d"`
	Yaw   float64 `json:"yaw"`
	Speed float64 `json:"speed"`

	// Portion of the previously sent path the vehicle has not yet
	// consumed, and the Frenet coordinate of its end point.
	PreviousPathX []float64 `json:"previous_path_x"`
	PreviousPathY []float64 `json:"previous_path_y"`
	EndPathS      float64   `json:"end_path_s"`
	EndPathD      float64   `json:"end_path_d"`

	// Sensor fusion rows: [id, x, y, vx, vy, s, d] per vehicle.
	SensorFusion [][]float64 `json:"sensor_fusion"`
}

// controlPayload is the payload of the "control" reply: the next
// trajectory, one point per 20ms of simulation time.
type controlPayload struct {
	NextX []float64 `json:"next_x"`
	NextY []float64 `json:"next_y"`
}
