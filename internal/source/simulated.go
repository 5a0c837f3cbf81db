package source

import (
	"context"
	"time"

	"pantemp/internal/models"
)

const defaultSimPeriod = 1 * time.Second

// Simulated raises the temperature by a fixed per-unit rate each tick.
// It never fails and never plateaus: it keeps climbing past the target so
// the overheat path is exercised.
type Simulated struct {
	period time.Duration
}

// NewSimulated builds the simulation source. A non-positive period falls
// back to the 1s default.
func NewSimulated(period time.Duration) *Simulated {
	if period <= 0 {
		period = defaultSimPeriod
	}
	return &Simulated{period: period}
}

func (s *Simulated) Name() string { return "simulated" }

func (s *Simulated) TickPeriod() time.Duration { return s.period }

func (s *Simulated) NextReading(_ context.Context, current float64, unit models.Unit) (float64, bool) {
	return current + models.ProfileFor(unit).HeatingRatePerTick, true
}
