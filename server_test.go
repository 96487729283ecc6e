package main

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/banshee-data/highway.planner/internal/config"
	"github.com/banshee-data/highway.planner/internal/planner"
	"github.com/banshee-data/highway.planner/internal/track"
)

func testPlanner(t *testing.T) *planner.Planner {
	t.Helper()
	pts := make([]track.RoadPoint, 31)
	for i := range pts {
		s := float64(i * 10)
		pts[i] = track.RoadPoint{S: s, X: s, Y: 0, DX: 0, DY: -1}
	}
	m, err := track.New(pts, 0)
	if err != nil {
		t.Fatalf("failed to build map: %v", err)
	}
	return planner.New(m, config.EmptyTuningConfig())
}

func telemetryFrame(t *testing.T) string {
	t.Helper()
	payload := telemetryPayload{
		X:     50,
		Y:     -6,
		S:     50,
		D:     6,
		Yaw:   0,
		Speed: 0,
		// Empty, not nil: the simulator sends [] and a nil slice would
		// marshal to the "null" the frame decoder treats as manual mode.
		PreviousPathX: []float64{},
		PreviousPathY: []float64{},
		SensorFusion: [][]float64{
			{3, 80, -6, 10, 0, 80, 6},
		},
	}
	body, err := json.Marshal([]any{"telemetry", payload})
	if err != nil {
		t.Fatal(err)
	}
	return eventFramePrefix + string(body)
}

func TestHandleMessageTelemetry(t *testing.T) {
	srv := NewServer(testPlanner(t))

	reply, err := srv.handleMessage(telemetryFrame(t))
	if err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	if reply == nil {
		t.Fatal("telemetry should produce a control reply")
	}

	event, payload, ok, err := decodeEventFrame(string(reply))
	if err != nil || !ok {
		t.Fatalf("reply is not a valid event frame: ok=%v err=%v", ok, err)
	}
	if event != "control" {
		t.Fatalf("reply event = %q, want control", event)
	}
	var cp controlPayload
	if err := json.Unmarshal(payload, &cp); err != nil {
		t.Fatalf("failed to unmarshal control payload: %v", err)
	}
	if len(cp.NextX) != 50 || len(cp.NextY) != 50 {
		t.Errorf("control path lengths = %d/%d, want 50/50", len(cp.NextX), len(cp.NextY))
	}
}

func TestHandleMessageManualAck(t *testing.T) {
	srv := NewServer(testPlanner(t))

	// Event frames that carry no telemetry get the manual-mode ack.
	for _, msg := range []string{"42[null]", `42["manual"]`} {
		reply, err := srv.handleMessage(msg)
		if err != nil {
			t.Fatalf("handleMessage(%q): %v", msg, err)
		}
		if !strings.HasPrefix(string(reply), `42["manual"`) {
			t.Errorf("handleMessage(%q) = %q, want manual ack", msg, reply)
		}
	}

	// Non-event frames get no reply at all.
	for _, msg := range []string{"2", `0{"sid":"x"}`, ""} {
		reply, err := srv.handleMessage(msg)
		if err != nil {
			t.Fatalf("handleMessage(%q): %v", msg, err)
		}
		if reply != nil {
			t.Errorf("handleMessage(%q) = %q, want no reply", msg, reply)
		}
	}
}

func TestParseTelemetry(t *testing.T) {
	payload, err := json.Marshal(telemetryPayload{
		X:   10,
		Y:   -6,
		S:   10,
		D:   6,
		Yaw: 90, // degrees on the wire
		SensorFusion: [][]float64{
			{5, 1, 2, 3, 4, 100, 6},
			{9, 1, 2}, // short row skipped
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	tel, err := parseTelemetry(payload)
	if err != nil {
		t.Fatalf("parseTelemetry: %v", err)
	}

	if math.Abs(tel.Yaw-math.Pi/2) > 1e-12 {
		t.Errorf("yaw = %v rad, want π/2", tel.Yaw)
	}
	if len(tel.Vehicles) != 1 {
		t.Fatalf("got %d vehicles, want 1 (short row skipped)", len(tel.Vehicles))
	}
	v := tel.Vehicles[0]
	if v.ID != 5 || v.S != 100 || v.D != 6 || v.VX != 3 || v.VY != 4 {
		t.Errorf("vehicle = %+v", v)
	}

	if _, err := parseTelemetry([]byte(`{"x": "not a number"}`)); err == nil {
		t.Error("expected error for malformed telemetry")
	}
}
