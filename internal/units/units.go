// Package units provides shared constants and conversions for speed
// units. The planner's reference speed is tracked in mph (the
// simulator reports ego speed in mph) while sensor fusion velocities
// arrive in m/s.
package units

// MPHPerMPS is the exact miles-per-hour value of one metre per second.
// The behavior layer uses a tunable, rounded factor (2.24) to match
// the reference cost model; this constant is for display conversions.
const MPHPerMPS = 2.2369362920544

// Unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ConvertSpeed converts a speed from meters per second to the target
// units. Unknown units fall back to m/s.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPS:
		return speedMPS
	case MPH:
		return speedMPS * MPHPerMPS
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// ConvertToMPS converts a speed in the given units back to meters per
// second. Unknown units fall back to returning the input.
func ConvertToMPS(speed float64, fromUnits string) float64 {
	switch fromUnits {
	case MPS:
		return speed
	case MPH:
		return speed / MPHPerMPS
	case KMPH, KPH:
		return speed / 3.6
	default:
		return speed
	}
}
