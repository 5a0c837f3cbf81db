package service

import (
	"math"
	"testing"
	"time"

	"pantemp/internal/models"
)

func heatingRun(unit models.Unit, start, target float64) models.HeatingSession {
	return models.HeatingSession{
		Unit:        unit,
		Phase:       models.PhaseHeating,
		CurrentTemp: start,
		TargetTemp:  target,
		TargetSet:   true,
		StartedAt:   time.Now().Add(-10 * time.Second),
		StartTemp:   start,
	}
}

func TestApplyReading_FreezesOnUnavailable(t *testing.T) {
	st := heatingRun(models.Celsius, 150, 180)
	st.CurrentTemp = 162.5

	out := applyReading(&st, 0, false, time.Now())
	if st.CurrentTemp != 162.5 {
		t.Fatalf("temperature changed on unavailable reading: %v", st.CurrentTemp)
	}
	if out.ReachedEdge || out.OverheatEdge {
		t.Fatalf("unexpected edges: %+v", out)
	}
}

func TestApplyReading_ReachedIsEdgeTriggeredAndSticky(t *testing.T) {
	st := heatingRun(models.Fahrenheit, 77, 360)

	out := applyReading(&st, 360, true, time.Now())
	if !out.ReachedEdge {
		t.Fatal("expected reached edge at first crossing")
	}
	if st.Phase != models.PhaseTargetReached {
		t.Fatalf("phase = %v, want TARGET_REACHED", st.Phase)
	}

	// further ticks above target: no second edge
	out = applyReading(&st, 365, true, time.Now())
	if out.ReachedEdge {
		t.Fatal("reached edge must fire exactly once per run")
	}

	// dropping back below target does not unset the flag
	out = applyReading(&st, 340, true, time.Now())
	if !st.Reached || st.Phase != models.PhaseTargetReached {
		t.Fatal("reached flag must stay set when the temperature drops")
	}
	if out.ReachedEdge {
		t.Fatal("no edge when already reached")
	}
}

func TestApplyReading_OverheatTogglesLive(t *testing.T) {
	// unit=C, target=180, threshold=10: 195 overheats, 189 does not
	st := heatingRun(models.Celsius, 100, 180)

	out := applyReading(&st, 195, true, time.Now())
	if !st.Overheating {
		t.Fatal("expected overheating at 195 with target 180, threshold 10")
	}
	if !out.OverheatEdge {
		t.Fatal("expected overheat edge on first crossing")
	}

	out = applyReading(&st, 189, true, time.Now())
	if st.Overheating {
		t.Fatal("expected overheating cleared at 189")
	}

	// re-entering overheat produces a fresh edge
	out = applyReading(&st, 196, true, time.Now())
	if !out.OverheatEdge {
		t.Fatal("expected a new overheat edge after clearing")
	}
}

func TestApplyReading_SevereBeyondExtendedScale(t *testing.T) {
	st := heatingRun(models.Celsius, 100, 180)

	out := applyReading(&st, 195, true, time.Now())
	if out.Severe {
		t.Fatal("195 is within the extended scale (target+2*threshold = 200)")
	}
	out = applyReading(&st, 200, true, time.Now())
	if !out.Severe {
		t.Fatal("expected severe at target+2*threshold")
	}
}

func TestApplyReading_NoTargetClearsOverheat(t *testing.T) {
	st := models.HeatingSession{Unit: models.Celsius, CurrentTemp: 400, Overheating: true}
	applyReading(&st, 400, true, time.Now())
	if st.Overheating {
		t.Fatal("overheating is meaningless without a target")
	}
}

func TestProgressPercent_SimulatedScenario(t *testing.T) {
	// unit=F, target=360, start=77, +12.6/tick: first reached at tick 23
	st := heatingRun(models.Fahrenheit, 77, 360)

	prev := -1.0
	reachedAt := 0
	for tick := 1; tick <= 30; tick++ {
		reading := 77 + 12.6*float64(tick)
		applyReading(&st, reading, true, time.Now())
		p := progressPercent(st)

		if !st.Reached && p <= prev {
			t.Fatalf("tick %d: progress %v not strictly increasing before target", tick, p)
		}
		if st.Reached && reachedAt == 0 {
			reachedAt = tick
			if p != 100 {
				t.Fatalf("tick %d: progress = %v at first reach, want exactly 100", tick, p)
			}
		}
		prev = p
	}
	if want := int(math.Ceil((360 - 77) / 12.6)); reachedAt != want {
		t.Fatalf("target first reached at tick %d, want %d", reachedAt, want)
	}
	if reachedAt != 23 {
		t.Fatalf("target first reached at tick %d, want 23", reachedAt)
	}
}

func TestProgressPercent_OverheatExtension(t *testing.T) {
	st := heatingRun(models.Celsius, 100, 180)

	// 15 above target with threshold 10: 100 + (15/10)*10 = 115
	applyReadingChecked(t, &st, 195)
	if !st.Overheating {
		t.Fatal("expected overheating at 195")
	}
	if got := progressPercent(st); got != 115 {
		t.Fatalf("progress = %v, want 115", got)
	}

	// capped at 120 regardless of excess
	applyReadingChecked(t, &st, 500)
	if got := progressPercent(st); got != 120 {
		t.Fatalf("progress = %v, want cap 120", got)
	}
}

func TestProgressPercent_ClampsAtHundredWithoutOverheat(t *testing.T) {
	st := heatingRun(models.Celsius, 100, 180)
	applyReadingChecked(t, &st, 185) // above target, below target+threshold
	if st.Overheating {
		t.Fatal("185 must not overheat with threshold 10")
	}
	if got := progressPercent(st); got != 100 {
		t.Fatalf("progress = %v, want clamp at 100", got)
	}
}

func TestProgressPercent_DegenerateZeroRange(t *testing.T) {
	st := heatingRun(models.Celsius, 180, 180)
	if got := progressPercent(st); got != 100 {
		t.Fatalf("progress = %v, want 100 when target equals start", got)
	}
}

func TestProgressPercent_NeverNegative(t *testing.T) {
	st := heatingRun(models.Celsius, 150, 180)
	st.CurrentTemp = 140 // polled reading below the start temperature
	if got := progressPercent(st); got != 0 {
		t.Fatalf("progress = %v, want floor at 0", got)
	}
}

func TestEstimateRemaining(t *testing.T) {
	now := time.Now()

	t.Run("calculating during warm-up", func(t *testing.T) {
		st := heatingRun(models.Celsius, 100, 180)
		st.StartedAt = now.Add(-2 * time.Second)
		if _, state := estimateRemaining(st, now); state != models.EstimateCalculating {
			t.Fatalf("state = %v, want CALCULATING", state)
		}
	})

	t.Run("ready with positive rate", func(t *testing.T) {
		st := heatingRun(models.Celsius, 100, 180)
		st.StartedAt = now.Add(-10 * time.Second)
		st.CurrentTemp = 140 // 4°C/s over 10s → 40°C remaining → 10s
		secs, state := estimateRemaining(st, now)
		if state != models.EstimateReady {
			t.Fatalf("state = %v, want READY", state)
		}
		if math.Abs(secs-10) > 1e-9 {
			t.Fatalf("remaining = %v, want 10", secs)
		}
	})

	t.Run("unknown when rate is flat or negative", func(t *testing.T) {
		st := heatingRun(models.Celsius, 100, 180)
		st.StartedAt = now.Add(-10 * time.Second)
		st.CurrentTemp = 100 // no movement
		if _, state := estimateRemaining(st, now); state != models.EstimateUnknown {
			t.Fatalf("state = %v, want UNKNOWN for flat rate", state)
		}
		st.CurrentTemp = 90 // falling
		if _, state := estimateRemaining(st, now); state != models.EstimateUnknown {
			t.Fatalf("state = %v, want UNKNOWN for negative rate", state)
		}
	})

	t.Run("suppressed once reached", func(t *testing.T) {
		st := heatingRun(models.Celsius, 100, 180)
		st.StartedAt = now.Add(-10 * time.Second)
		st.CurrentTemp = 180
		st.Reached = true
		if _, state := estimateRemaining(st, now); state != models.EstimateNone {
			t.Fatalf("state = %v, want NONE after target reached", state)
		}
	})

	t.Run("none without a run", func(t *testing.T) {
		st := models.HeatingSession{Unit: models.Celsius, CurrentTemp: 25}
		if _, state := estimateRemaining(st, now); state != models.EstimateNone {
			t.Fatalf("state = %v, want NONE when idle", state)
		}
	})
}

func applyReadingChecked(t *testing.T, st *models.HeatingSession, reading float64) tickOutcome {
	t.Helper()
	return applyReading(st, reading, true, time.Now())
}
