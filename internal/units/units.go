// Package units holds the fixed-factor conversions and duration/pace
// formatting shared by the CSV export and the text reports.
package units

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	MetersPerMile = 1609.344
	FeetPerMeter  = 3.280839895
	MPSToMPH      = 2.2369362920544
)

// MetersToMiles converts meters to statute miles.
func MetersToMiles(m float64) float64 {
	if m == 0 {
		return 0
	}
	return m / MetersPerMile
}

// MetersToFeet converts meters to feet.
func MetersToFeet(m float64) float64 {
	if m == 0 {
		return 0
	}
	return m * FeetPerMeter
}

// MPSToMilesPerHour converts meters/second to miles/hour.
func MPSToMilesPerHour(mps float64) float64 {
	if mps == 0 {
		return 0
	}
	return mps * MPSToMPH
}

// PaceSecondsPerUnit returns duration/distance, or false when either is not positive.
func PaceSecondsPerUnit(distance, duration float64) (float64, bool) {
	if distance <= 0 || duration <= 0 {
		return 0, false
	}
	return duration / distance, true
}

// RoundSeconds rounds to the nearest whole second, halves away from zero.
func RoundSeconds(seconds float64) int {
	return int(math.Round(seconds))
}

// FormatMMSS renders M:SS after rounding to the nearest second. Non-positive
// input renders as "".
func FormatMMSS(seconds float64) string {
	total := RoundSeconds(seconds)
	if total <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatHHMMSS renders HH:MM:SS; non-positive input renders as 00:00:00.
func FormatHHMMSS(seconds int) string {
	if seconds <= 0 {
		return "00:00:00"
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// PaceMMSS renders the per-mile pace for a run, or "" when it is undefined.
func PaceMMSS(distanceMi float64, movingSeconds int) string {
	pace, ok := PaceSecondsPerUnit(distanceMi, float64(movingSeconds))
	if !ok {
		return ""
	}
	return FormatMMSS(pace)
}

// Round renders x with at most places decimals and no trailing zeros.
func Round(x float64, places int32) string {
	return decimal.NewFromFloat(x).Round(places).String()
}

// RoundPositive is Round for x > 0 and "" otherwise, so that "not recorded"
// stays distinguishable from a recorded zero.
func RoundPositive(x float64, places int32) string {
	if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return ""
	}
	return Round(x, places)
}
