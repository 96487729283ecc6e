package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The simulator speaks a socket.io-style framing over websocket: an
// event frame starts with "42" (4 = message, 2 = event) followed by a
// JSON array of [eventName, payload].
const eventFramePrefix = "42"

// decodeEventFrame splits an event frame into its event name and raw
// payload. ok is false for frames that are not events (pings, session
// setup) or events carrying no payload; those are not errors.
func decodeEventFrame(msg string) (event string, payload json.RawMessage, ok bool, err error) {
	if !strings.HasPrefix(msg, eventFramePrefix) {
		return "", nil, false, nil
	}
	body := msg[len(eventFramePrefix):]
	start := strings.Index(body, "[")
	end := strings.LastIndex(body, "]")
	if start < 0 || end < start || strings.Contains(body, "null") {
		return "", nil, false, nil
	}

	var parts []json.RawMessage
	if jsonErr := json.Unmarshal([]byte(body[start:end+1]), &parts); jsonErr != nil {
		return "", nil, false, fmt.Errorf("malformed event frame: %v", jsonErr)
	}
	if len(parts) == 0 {
		return "", nil, false, nil
	}
	if jsonErr := json.Unmarshal(parts[0], &event); jsonErr != nil {
		return "", nil, false, fmt.Errorf("malformed event name: %v", jsonErr)
	}
	if len(parts) > 1 {
		payload = parts[1]
	}
	return event, payload, true, nil
}

// encodeEventFrame builds an event frame from an event name and
// payload.
func encodeEventFrame(event string, payload any) ([]byte, error) {
	body, err := json.Marshal([]any{event, payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s frame: %w", event, err)
	}
	return append([]byte(eventFramePrefix), body...), nil
}
