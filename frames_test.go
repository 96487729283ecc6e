package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecodeEventFrame(t *testing.T) {
	tests := []struct {
		name        string
		msg         string
		wantEvent   string
		wantOK      bool
		wantErr     bool
		wantPayload bool
	}{
		{
			name:        "telemetry event",
			msg:         `42["telemetry",{"x":1.5}]`,
			wantEvent:   "telemetry",
			wantOK:      true,
			wantPayload: true,
		},
		{
			name:      "event without payload",
			msg:       `42["manual"]`,
			wantEvent: "manual",
			wantOK:    true,
		},
		{
			name: "ping frame ignored",
			msg:  "2",
		},
		{
			name: "session setup ignored",
			msg:  `0{"sid":"abc"}`,
		},
		{
			name: "null payload ignored",
			msg:  "42[null]",
		},
		{
			name: "no array body ignored",
			msg:  "42",
		},
		{
			name:    "malformed array",
			msg:     `42["telemetry",]`,
			wantErr: true,
		},
		{
			name:    "non-string event name",
			msg:     `42[17]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, payload, ok, err := decodeEventFrame(tt.msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeEventFrame() error = %v, wantErr %v", err, tt.wantErr)
			}
			if ok != tt.wantOK {
				t.Fatalf("decodeEventFrame() ok = %v, want %v", ok, tt.wantOK)
			}
			if event != tt.wantEvent {
				t.Errorf("event = %q, want %q", event, tt.wantEvent)
			}
			if (payload != nil) != tt.wantPayload {
				t.Errorf("payload presence = %v, want %v", payload != nil, tt.wantPayload)
			}
		})
	}
}

func TestEncodeEventFrame(t *testing.T) {
	frame, err := encodeEventFrame("control", controlPayload{
		NextX: []float64{1, 2},
		NextY: []float64{3, 4},
	})
	if err != nil {
		t.Fatalf("encodeEventFrame: %v", err)
	}

	msg := string(frame)
	if !strings.HasPrefix(msg, eventFramePrefix) {
		t.Fatalf("frame %q missing %q prefix", msg, eventFramePrefix)
	}

	// The body round-trips through the decoder.
	event, payload, ok, err := decodeEventFrame(msg)
	if err != nil || !ok {
		t.Fatalf("decode of encoded frame failed: ok=%v err=%v", ok, err)
	}
	if event != "control" {
		t.Errorf("event = %q, want control", event)
	}
	var cp controlPayload
	if err := json.Unmarshal(payload, &cp); err != nil {
		t.Fatalf("failed to unmarshal control payload: %v", err)
	}
	if len(cp.NextX) != 2 || cp.NextX[0] != 1 || cp.NextY[1] != 4 {
		t.Errorf("payload round trip = %+v", cp)
	}
}
