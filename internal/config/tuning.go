package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for planner tuning
// parameters. The schema matches the /api/params endpoint so the same
// JSON can be used for both startup configuration and runtime updates.
type TuningConfig struct {
	// Road geometry params
	LaneCount       *int     `json:"lane_count,omitempty"`
	LaneWidthMeters *float64 `json:"lane_width_meters,omitempty"`
	MapMaxSMeters   *float64 `json:"map_max_s_meters,omitempty"`

	// Behavior params
	RangeAheadMeters      *float64 `json:"range_ahead_meters,omitempty"`
	RearRangeDivisor      *float64 `json:"rear_range_divisor,omitempty"`
	SpeedLimitMPH         *float64 `json:"speed_limit_mph,omitempty"`
	WeightSpeed           *float64 `json:"weight_speed,omitempty"`
	WeightDistance        *float64 `json:"weight_distance,omitempty"`
	WeightStay            *float64 `json:"weight_stay,omitempty"`
	WeightCollision       *float64 `json:"weight_collision,omitempty"`
	MPHPerMPS             *float64 `json:"mph_per_mps,omitempty"`
	SpeedStepUpMPH        *float64 `json:"speed_step_up_mph,omitempty"`
	SpeedStepDownMPH      *float64 `json:"speed_step_down_mph,omitempty"`
	FollowGapMarginMPS    *float64 `json:"follow_gap_margin_mps,omitempty"`
	MinFrontDistanceMeter *float64 `json:"min_front_distance_meters,omitempty"`

	// Trajectory params
	HorizonPoints       *int     `json:"horizon_points,omitempty"`
	AnchorSpacingMeters *float64 `json:"anchor_spacing_meters,omitempty"`
	LookaheadMeters     *float64 `json:"lookahead_meters,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under
// the max file size. Fields omitted from the JSON file retain their
// default values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath. It searches for the file in the current directory
// and common parent directories. Panics if the file cannot be loaded,
// intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Merge overlays the non-nil fields of other onto c. Used by the
// params API so partial updates leave unspecified fields untouched.
func (c *TuningConfig) Merge(other *TuningConfig) {
	if other.LaneCount != nil {
		c.LaneCount = other.LaneCount
	}
	if other.LaneWidthMeters != nil {
		c.LaneWidthMeters = other.LaneWidthMeters
	}
	if other.MapMaxSMeters != nil {
		c.MapMaxSMeters = other.MapMaxSMeters
	}
	if other.RangeAheadMeters != nil {
		c.RangeAheadMeters = other.RangeAheadMeters
	}
	if other.RearRangeDivisor != nil {
		c.RearRangeDivisor = other.RearRangeDivisor
	}
	if other.SpeedLimitMPH != nil {
		c.SpeedLimitMPH = other.SpeedLimitMPH
	}
	if other.WeightSpeed != nil {
		c.WeightSpeed = other.WeightSpeed
	}
	if other.WeightDistance != nil {
		c.WeightDistance = other.WeightDistance
	}
	if other.WeightStay != nil {
		c.WeightStay = other.WeightStay
	}
	if other.WeightCollision != nil {
		c.WeightCollision = other.WeightCollision
	}
	if other.MPHPerMPS != nil {
		c.MPHPerMPS = other.MPHPerMPS
	}
	if other.SpeedStepUpMPH != nil {
		c.SpeedStepUpMPH = other.SpeedStepUpMPH
	}
	if other.SpeedStepDownMPH != nil {
		c.SpeedStepDownMPH = other.SpeedStepDownMPH
	}
	if other.FollowGapMarginMPS != nil {
		c.FollowGapMarginMPS = other.FollowGapMarginMPS
	}
	if other.MinFrontDistanceMeter != nil {
		c.MinFrontDistanceMeter = other.MinFrontDistanceMeter
	}
	if other.HorizonPoints != nil {
		c.HorizonPoints = other.HorizonPoints
	}
	if other.AnchorSpacingMeters != nil {
		c.AnchorSpacingMeters = other.AnchorSpacingMeters
	}
	if other.LookaheadMeters != nil {
		c.LookaheadMeters = other.LookaheadMeters
	}
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.LaneCount != nil && *c.LaneCount < 1 {
		return fmt.Errorf("lane_count must be at least 1, got %d", *c.LaneCount)
	}
	if c.LaneWidthMeters != nil && *c.LaneWidthMeters <= 0 {
		return fmt.Errorf("lane_width_meters must be positive, got %f", *c.LaneWidthMeters)
	}
	if c.RangeAheadMeters != nil && *c.RangeAheadMeters <= 0 {
		return fmt.Errorf("range_ahead_meters must be positive, got %f", *c.RangeAheadMeters)
	}
	if c.RearRangeDivisor != nil && *c.RearRangeDivisor <= 0 {
		return fmt.Errorf("rear_range_divisor must be positive, got %f", *c.RearRangeDivisor)
	}
	if c.SpeedLimitMPH != nil && *c.SpeedLimitMPH <= 0 {
		return fmt.Errorf("speed_limit_mph must be positive, got %f", *c.SpeedLimitMPH)
	}
	if c.HorizonPoints != nil && *c.HorizonPoints < 2 {
		return fmt.Errorf("horizon_points must be at least 2, got %d", *c.HorizonPoints)
	}
	if c.AnchorSpacingMeters != nil && *c.AnchorSpacingMeters <= 0 {
		return fmt.Errorf("anchor_spacing_meters must be positive, got %f", *c.AnchorSpacingMeters)
	}
	if c.LookaheadMeters != nil && *c.LookaheadMeters <= 0 {
		return fmt.Errorf("lookahead_meters must be positive, got %f", *c.LookaheadMeters)
	}
	if c.MPHPerMPS != nil && *c.MPHPerMPS <= 0 {
		return fmt.Errorf("mph_per_mps must be positive, got %f", *c.MPHPerMPS)
	}
	if c.MinFrontDistanceMeter != nil && *c.MinFrontDistanceMeter <= 0 {
		return fmt.Errorf("min_front_distance_meters must be positive, got %f", *c.MinFrontDistanceMeter)
	}
	return nil
}

// GetLaneCount returns the lane_count value or the default.
func (c *TuningConfig) GetLaneCount() int {
	if c.LaneCount == nil {
		return 3
	}
	return *c.LaneCount
}

// GetLaneWidthMeters returns the lane_width_meters value or the default.
func (c *TuningConfig) GetLaneWidthMeters() float64 {
	if c.LaneWidthMeters == nil {
		return 4.0
	}
	return *c.LaneWidthMeters
}

// GetMapMaxSMeters returns the map_max_s_meters value or the default.
// The default is the total arc length of the simulator's highway loop.
func (c *TuningConfig) GetMapMaxSMeters() float64 {
	if c.MapMaxSMeters == nil {
		return 6945.554
	}
	return *c.MapMaxSMeters
}

// GetRangeAheadMeters returns the range_ahead_meters value or the default.
func (c *TuningConfig) GetRangeAheadMeters() float64 {
	if c.RangeAheadMeters == nil {
		return 30.0
	}
	return *c.RangeAheadMeters
}

// GetRearRangeDivisor returns the rear_range_divisor value or the default.
// The rear scan range is range_ahead_meters divided by this value.
func (c *TuningConfig) GetRearRangeDivisor() float64 {
	if c.RearRangeDivisor == nil {
		return 3.0
	}
	return *c.RearRangeDivisor
}

// GetSpeedLimitMPH returns the speed_limit_mph value or the default.
func (c *TuningConfig) GetSpeedLimitMPH() float64 {
	if c.SpeedLimitMPH == nil {
		return 49.5
	}
	return *c.SpeedLimitMPH
}

// GetWeightSpeed returns the weight_speed value or the default.
func (c *TuningConfig) GetWeightSpeed() float64 {
	if c.WeightSpeed == nil {
		return 1.0
	}
	return *c.WeightSpeed
}

// GetWeightDistance returns the weight_distance value or the default.
func (c *TuningConfig) GetWeightDistance() float64 {
	if c.WeightDistance == nil {
		return 40.0
	}
	return *c.WeightDistance
}

// GetWeightStay returns the weight_stay value or the default.
func (c *TuningConfig) GetWeightStay() float64 {
	if c.WeightStay == nil {
		return 5.0
	}
	return *c.WeightStay
}

// GetWeightCollision returns the weight_collision value or the default.
func (c *TuningConfig) GetWeightCollision() float64 {
	if c.WeightCollision == nil {
		return 1000.0
	}
	return *c.WeightCollision
}

// GetMPHPerMPS returns the mph_per_mps value or the default. This is
// the factor relating the mph reference speed to the m/s speeds in
// sensor fusion; the cost model uses the rounded 2.24 rather than the
// exact conversion.
func (c *TuningConfig) GetMPHPerMPS() float64 {
	if c.MPHPerMPS == nil {
		return 2.24
	}
	return *c.MPHPerMPS
}

// GetSpeedStepUpMPH returns the speed_step_up_mph value or the default.
func (c *TuningConfig) GetSpeedStepUpMPH() float64 {
	if c.SpeedStepUpMPH == nil {
		return 0.224
	}
	return *c.SpeedStepUpMPH
}

// GetSpeedStepDownMPH returns the speed_step_down_mph value or the default.
func (c *TuningConfig) GetSpeedStepDownMPH() float64 {
	if c.SpeedStepDownMPH == nil {
		return 0.224
	}
	return *c.SpeedStepDownMPH
}

// GetFollowGapMarginMPS returns the follow_gap_margin_mps value or the default.
func (c *TuningConfig) GetFollowGapMarginMPS() float64 {
	if c.FollowGapMarginMPS == nil {
		return 0.5
	}
	return *c.FollowGapMarginMPS
}

// GetMinFrontDistanceMeters returns the min_front_distance_meters value
// or the default. Front distances below this are clamped before the
// closeness cost division.
func (c *TuningConfig) GetMinFrontDistanceMeters() float64 {
	if c.MinFrontDistanceMeter == nil {
		return 0.01
	}
	return *c.MinFrontDistanceMeter
}

// GetHorizonPoints returns the horizon_points value or the default.
func (c *TuningConfig) GetHorizonPoints() int {
	if c.HorizonPoints == nil {
		return 50
	}
	return *c.HorizonPoints
}

// GetAnchorSpacingMeters returns the anchor_spacing_meters value or the default.
func (c *TuningConfig) GetAnchorSpacingMeters() float64 {
	if c.AnchorSpacingMeters == nil {
		return 30.0
	}
	return *c.AnchorSpacingMeters
}

// GetLookaheadMeters returns the lookahead_meters value or the default.
func (c *TuningConfig) GetLookaheadMeters() float64 {
	if c.LookaheadMeters == nil {
		return 30.0
	}
	return *c.LookaheadMeters
}
