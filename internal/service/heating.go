package service

import (
	"math"
	"time"

	"pantemp/internal/models"
)

// estimateWarmup is the minimum elapsed heating time before the remaining
// time estimate is considered meaningful.
const estimateWarmup = 3 * time.Second

// progressCeiling caps the overheat-extended progress scale.
const progressCeiling = 120.0

// tickOutcome reports the edges a tick produced, for event/alert fan-out.
type tickOutcome struct {
	ReachedEdge  bool // first crossing of the target this run
	OverheatEdge bool // overheating turned on this tick
	Severe       bool // excess beyond the full extended progress scale
}

// applyReading runs one tick of the session state machine.
// A missing reading (ok=false) freezes the temperature at its last value.
// The reached flag is edge-triggered and sticky; overheating is recomputed
// every tick and toggles freely.
func applyReading(st *models.HeatingSession, reading float64, ok bool, now time.Time) tickOutcome {
	var out tickOutcome

	if ok {
		st.CurrentTemp = reading
	}
	st.UpdatedAt = now.UTC()

	if !st.TargetSet {
		st.Overheating = false
		return out
	}

	if !st.Reached && st.CurrentTemp >= st.TargetTemp {
		st.Reached = true
		st.Phase = models.PhaseTargetReached
		out.ReachedEdge = true
	}

	threshold := models.ProfileFor(st.Unit).OverheatThreshold
	over := st.CurrentTemp > st.TargetTemp+threshold
	if over && !st.Overheating {
		out.OverheatEdge = true
	}
	st.Overheating = over
	if over {
		// Severe once the excess exhausts the extended progress scale.
		out.Severe = st.CurrentTemp-st.TargetTemp >= 2*threshold
	}

	return out
}

// progressPercent maps the session onto a 0-120 scale: 0-100 for the climb
// from the start temperature to the target, with the extension above 100
// available only while overheating.
func progressPercent(st models.HeatingSession) float64 {
	if !st.TargetSet {
		return 0
	}

	if st.Overheating {
		threshold := models.ProfileFor(st.Unit).OverheatThreshold
		excess := (st.CurrentTemp - st.TargetTemp) / threshold * 10
		return math.Min(100+excess, progressCeiling)
	}

	span := st.TargetTemp - st.StartTemp
	if span == 0 {
		// Target equals the start temperature: already there.
		return 100
	}
	raw := (st.CurrentTemp - st.StartTemp) / span * 100
	return math.Min(math.Max(raw, 0), 100)
}

// estimateRemaining projects seconds until the target from the observed
// average rate. Suppressed once the target is reached; reported as
// CALCULATING during the warm-up window and UNKNOWN when the temperature
// is flat or falling.
func estimateRemaining(st models.HeatingSession, now time.Time) (float64, models.EstimateState) {
	if !st.TargetSet || st.Reached || st.StartedAt.IsZero() {
		return 0, models.EstimateNone
	}
	elapsed := now.Sub(st.StartedAt).Seconds()
	if elapsed < estimateWarmup.Seconds() {
		return 0, models.EstimateCalculating
	}
	rate := (st.CurrentTemp - st.StartTemp) / elapsed
	if rate <= 0 {
		return 0, models.EstimateUnknown
	}
	return (st.TargetTemp - st.CurrentTemp) / rate, models.EstimateReady
}
