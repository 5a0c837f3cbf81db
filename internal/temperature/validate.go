package temperature

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"pantemp/internal/models"
)

// Validation failure kinds, checked in order; the first match wins.
var (
	ErrEmptyInput   = errors.New("no temperature entered")
	ErrNotANumber   = errors.New("temperature is not a number")
	ErrBelowMinimum = errors.New("temperature below minimum")
	ErrAboveMaximum = errors.New("temperature above maximum")
)

// ValidationError wraps a failure kind with the violated limit so callers
// can format unit-qualified messages.
type ValidationError struct {
	Kind  error
	Limit float64     // the bound that was violated; zero for non-range kinds
	Unit  models.Unit // unit the limit is expressed in
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrBelowMinimum:
		return fmt.Sprintf("temperature must be at least %.0f%s", e.Limit, e.Unit.Symbol())
	case ErrAboveMaximum:
		return fmt.Sprintf("temperature must be at most %.0f%s", e.Limit, e.Unit.Symbol())
	default:
		return e.Kind.Error()
	}
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// Validate parses a raw target entry against the unit's limits and returns
// the unrounded value. Rule order is fixed: empty input, then parse failure,
// then the range bounds.
func Validate(raw string, limits models.Limits, unit models.Unit) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &ValidationError{Kind: ErrEmptyInput, Unit: unit}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Kind: ErrNotANumber, Unit: unit}
	}
	if v < limits.Min {
		return 0, &ValidationError{Kind: ErrBelowMinimum, Limit: limits.Min, Unit: unit}
	}
	if v > limits.Max {
		return 0, &ValidationError{Kind: ErrAboveMaximum, Limit: limits.Max, Unit: unit}
	}
	return v, nil
}
