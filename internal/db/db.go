// Package db persists planning runs and per-cycle decisions to a local
// sqlite database for later analysis. Recording is best-effort: the
// control loop never blocks on a failed insert.
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/highway.planner/internal/planner"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the sqlite database at path and ensures the
// base schema exists. Use ":memory:" for tests.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id            TEXT PRIMARY KEY,
			version           TEXT,
			map_path          TEXT,
			started_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS cycles (
			cycle_id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT,
			ego_s             DOUBLE,
			lane              INTEGER,
			ref_speed_mph     DOUBLE,
			lane_changed      INTEGER,
			front_id          BIGINT,
			num_vehicles      INTEGER,
			tail_len          INTEGER,
			elapsed_us        BIGINT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// Run is one planning session; it implements planner.Recorder.
type Run struct {
	db *DB
	ID string
}

// StartRun registers a new planning session and returns its recorder.
func (db *DB) StartRun(version, mapPath string) (*Run, error) {
	id := uuid.NewString()
	_, err := db.Exec("INSERT INTO runs (run_id, version, map_path) VALUES (?, ?, ?)", id, version, mapPath)
	if err != nil {
		return nil, fmt.Errorf("failed to register run: %w", err)
	}
	return &Run{db: db, ID: id}, nil
}

// RecordCycle inserts one cycle record.
func (r *Run) RecordCycle(rec planner.CycleRecord) error {
	laneChanged := 0
	if rec.LaneChanged {
		laneChanged = 1
	}
	_, err := r.db.Exec(`
		INSERT INTO cycles (run_id, ego_s, lane, ref_speed_mph, lane_changed, front_id, num_vehicles, tail_len, elapsed_us)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, rec.EgoS, rec.Lane, rec.RefSpeedMPH, laneChanged, rec.FrontID,
		rec.NumVehicles, rec.TailLen, rec.Elapsed.Microseconds())
	if err != nil {
		return fmt.Errorf("failed to record cycle: %w", err)
	}
	return nil
}

// CycleRow is one persisted cycle, shaped for the API.
type CycleRow struct {
	CycleID     int64     `json:"cycle_id"`
	RunID       string    `json:"run_id"`
	EgoS        float64   `json:"ego_s"`
	Lane        int       `json:"lane"`
	RefSpeedMPH float64   `json:"ref_speed_mph"`
	LaneChanged bool      `json:"lane_changed"`
	FrontID     int64     `json:"front_id"`
	NumVehicles int       `json:"num_vehicles"`
	TailLen     int       `json:"tail_len"`
	ElapsedUs   int64     `json:"elapsed_us"`
	Timestamp   time.Time `json:"timestamp"`
}

// RecentCycles returns the most recent cycles for a run, newest first.
// An empty runID returns cycles across all runs.
func (db *DB) RecentCycles(runID string, limit int) ([]CycleRow, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT cycle_id, run_id, ego_s, lane, ref_speed_mph, lane_changed,
		       front_id, num_vehicles, tail_len, elapsed_us, timestamp
		FROM cycles`
	args := []any{}
	if runID != "" {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}
	query += " ORDER BY cycle_id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleRow
	for rows.Next() {
		var c CycleRow
		var laneChanged int
		if err := rows.Scan(&c.CycleID, &c.RunID, &c.EgoS, &c.Lane, &c.RefSpeedMPH,
			&laneChanged, &c.FrontID, &c.NumVehicles, &c.TailLen, &c.ElapsedUs, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		c.LaneChanged = laneChanged != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

// LaneChangeCount returns how many lane changes a run performed.
func (db *DB) LaneChangeCount(runID string) (int, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM cycles WHERE run_id = ? AND lane_changed = 1", runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count lane changes: %w", err)
	}
	return n, nil
}
