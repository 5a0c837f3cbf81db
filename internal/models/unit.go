package models

import (
	"fmt"
	"strings"
)

// Unit is the temperature display unit for a session.
type Unit string

const (
	Fahrenheit Unit = "F"
	Celsius    Unit = "C"
)

// ParseUnit accepts "F", "C" and the spelled-out forms, case-insensitively.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "F", "FAHRENHEIT", "°F":
		return Fahrenheit, nil
	case "C", "CELSIUS", "°C":
		return Celsius, nil
	default:
		return "", fmt.Errorf("unknown unit %q: must be F or C", s)
	}
}

func (u Unit) String() string { return string(u) }

// Symbol returns the degree-qualified form for user-facing messages.
func (u Unit) Symbol() string {
	return "°" + string(u)
}

// Limits is the acceptable cooking range for a unit.
type Limits struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Presets are advisory low/medium/high targets. They pass through the same
// validation as manual input.
type Presets struct {
	Low    float64 `json:"low"`
	Medium float64 `json:"medium"`
	High   float64 `json:"high"`
}

// UnitProfile bundles the unit-dependent constants. The Fahrenheit and
// Celsius ranges are kept as shipped (200-500°F vs 100-300°C) and are
// deliberately not derived from one another.
type UnitProfile struct {
	Limits             Limits
	Presets            Presets
	OverheatThreshold  float64 // degrees above target before the overheat flag trips
	StabilizationBand  float64 // |current-target| band reported as holding at target
	HeatingRatePerTick float64 // simulated rise per tick
	Ambient            float64 // reset temperature on cancel
}

var unitProfiles = map[Unit]UnitProfile{
	Fahrenheit: {
		Limits:             Limits{Min: 200, Max: 500},
		Presets:            Presets{Low: 250, Medium: 350, High: 450},
		OverheatThreshold:  18,
		StabilizationBand:  9,
		HeatingRatePerTick: 12.6,
		Ambient:            77,
	},
	Celsius: {
		Limits:             Limits{Min: 100, Max: 300},
		Presets:            Presets{Low: 120, Medium: 180, High: 240},
		OverheatThreshold:  10,
		StabilizationBand:  5,
		HeatingRatePerTick: 7,
		Ambient:            25,
	},
}

// ProfileFor returns the constants for the given unit. Unknown units fall
// back to Fahrenheit, the shipped default.
func ProfileFor(u Unit) UnitProfile {
	if p, ok := unitProfiles[u]; ok {
		return p
	}
	return unitProfiles[Fahrenheit]
}
