package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/banshee-data/highway.planner/internal/planner"
	"github.com/banshee-data/highway.planner/internal/traffic"
)

// Server accepts the simulator's websocket connection and runs the
// planner once per telemetry event. The simulator is the single
// producer: events on one connection are processed strictly in order.
type Server struct {
	pl       *planner.Planner
	upgrader websocket.Upgrader
}

func NewServer(pl *planner.Planner) *Server {
	return &Server{
		pl: pl,
		upgrader: websocket.Upgrader{
			// The simulator's handshake carries no Origin header.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// simulatorHandler upgrades the connection and services telemetry
// events until the simulator disconnects.
func (s *Server) simulatorHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	log.Printf("simulator connected from %s", r.RemoteAddr)

	// A fresh session starts from a standstill in the middle lane.
	s.pl.Reset()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("simulator read error: %v", err)
			} else {
				log.Printf("simulator disconnected")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		reply, err := s.handleMessage(string(msg))
		if err != nil {
			log.Printf("error handling simulator message: %v", err)
			continue
		}
		if reply == nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
			log.Printf("simulator write error: %v", err)
			return
		}
	}
}

// handleMessage processes one websocket frame and returns the reply
// frame, or nil when no reply is due.
func (s *Server) handleMessage(msg string) ([]byte, error) {
	event, payload, ok, err := decodeEventFrame(msg)
	if err != nil {
		return nil, err
	}
	if !ok || event != "telemetry" || payload == nil {
		if strings.HasPrefix(msg, eventFramePrefix) {
			// The simulator expects a manual-mode ack for event
			// frames that carry no telemetry.
			return encodeEventFrame("manual", struct{}{})
		}
		return nil, nil
	}

	t, err := parseTelemetry(payload)
	if err != nil {
		return nil, err
	}

	path, err := s.pl.Cycle(t)
	if err != nil {
		return nil, err
	}
	return encodeEventFrame("control", controlPayload{NextX: path.X, NextY: path.Y})
}

// parseTelemetry converts a telemetry payload into the planner's input
// form: yaw to radians, sensor fusion rows to vehicle observations.
func parseTelemetry(payload []byte) (planner.Telemetry, error) {
	var tp telemetryPayload
	if err := json.Unmarshal(payload, &tp); err != nil {
		return planner.Telemetry{}, fmt.Errorf("failed to unmarshal telemetry: %v", err)
	}

	vehicles := make([]traffic.Vehicle, 0, len(tp.SensorFusion))
	for _, row := range tp.SensorFusion {
		if len(row) < 7 {
			continue
		}
		vehicles = append(vehicles, traffic.Vehicle{
			ID: int64(row[0]),
			X:  row[1],
			Y:  row[2],
			VX: row[3],
			VY: row[4],
			S:  row[5],
			D:  row[6],
		})
	}

	return planner.Telemetry{
		X:        tp.X,
		Y:        tp.Y,
		S:        tp.S,
		D:        tp.D,
		Yaw:      tp.Yaw * math.Pi / 180,
		SpeedMPH: tp.Speed,
		PrevX:    tp.PreviousPathX,
		PrevY:    tp.PreviousPathY,
		EndPathS: tp.EndPathS,
		Vehicles: vehicles,
	}, nil
}
