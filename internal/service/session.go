package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"pantemp/internal/logger"
	"pantemp/internal/models"
	"pantemp/internal/notify"
	"pantemp/internal/repository"
	"pantemp/internal/scheduler"
	"pantemp/internal/source"
	"pantemp/internal/temperature"
)

// TargetPublisher is the slice of the feed client used to push a new target
// out to the device feed. The feed speaks Celsius.
type TargetPublisher interface {
	Post(ctx context.Context, feedName string, value float64) error
}

// SessionService owns the single heating session and its scheduling loop.
// All state lives behind one mutex; a monotonically increasing epoch marks
// each heating run so a reading that completes after its run was canceled
// is discarded instead of applied.
type SessionService struct {
	mu    sync.Mutex
	st    models.HeatingSession
	epoch uint64
	loop  *scheduler.Handle

	src        source.Source
	publisher  TargetPublisher // nil when the feed is unreachable
	targetFeed string
	prefs      repository.PrefsRepo
	events     repository.EventRepo
	notifier   notify.Notifier
	log        *logger.Logger
	now        func() time.Time
}

// NewSessionService builds the controller and restores the persisted unit
// preference and last target (as the pending input prefill).
func NewSessionService(
	ctx context.Context,
	src source.Source,
	publisher TargetPublisher,
	targetFeed string,
	prefs repository.PrefsRepo,
	events repository.EventRepo,
	notifier notify.Notifier,
	defaultUnit models.Unit,
	log *logger.Logger,
) *SessionService {
	s := &SessionService{
		src:        src,
		publisher:  publisher,
		targetFeed: targetFeed,
		prefs:      prefs,
		events:     events,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
	}

	unit := defaultUnit
	if v, ok, err := prefs.Get(ctx, repository.PrefKeyUnit); err != nil {
		log.Warnw("failed to load unit preference", "err", err)
	} else if ok {
		if u, perr := models.ParseUnit(v); perr == nil {
			unit = u
		}
	}

	s.st = models.HeatingSession{
		Unit:        unit,
		Phase:       models.PhaseIdle,
		CurrentTemp: models.ProfileFor(unit).Ambient,
		UpdatedAt:   s.now().UTC(),
	}

	if v, ok, err := prefs.Get(ctx, repository.PrefKeyTargetTemp); err != nil {
		log.Warnw("failed to load target preference", "err", err)
	} else if ok {
		s.st.PendingInput = v
	}

	return s
}

// Start validates the raw target and begins a heating run. On validation
// failure the session is unchanged except that the rejected text is kept as
// the pending input, so a later unit switch still converts it if numeric.
func (s *SessionService) Start(ctx context.Context, rawTarget string) (models.SessionView, error) {
	s.mu.Lock()
	profile := models.ProfileFor(s.st.Unit)
	target, err := temperature.Validate(rawTarget, profile.Limits, s.st.Unit)
	if err != nil {
		s.st.PendingInput = strings.TrimSpace(rawTarget)
		view := s.viewLocked()
		s.mu.Unlock()
		return view, err
	}

	old := s.detachLoopLocked()
	now := s.now()
	s.st.TargetTemp = target
	s.st.TargetSet = true
	s.st.Reached = false
	s.st.Overheating = false
	s.st.Phase = models.PhaseHeating
	s.st.StartedAt = now
	s.st.StartTemp = s.st.CurrentTemp
	s.st.PendingInput = ""
	s.st.UpdatedAt = now.UTC()
	epoch := s.epoch
	unit := s.st.Unit
	view := s.viewLocked()
	s.mu.Unlock()

	if old != nil {
		old.Stop()
	}

	if perr := s.prefs.Set(ctx, repository.PrefKeyTargetTemp, formatTemp(target)); perr != nil {
		s.log.Warnw("failed to persist target", "err", perr)
	}
	s.publishTarget(ctx, target, unit)
	s.appendEvent(ctx, models.EventStart,
		fmt.Sprintf("heating started toward %s%s", formatTemp(target), unit.Symbol()),
		map[string]any{"target": target, "unit": unit.String(), "source": s.src.Name()})

	s.attachLoop(epoch)
	return view, nil
}

// ChangeTarget stops the run and returns to target entry, pre-filled with
// the prior target. The current temperature is preserved.
func (s *SessionService) ChangeTarget(ctx context.Context) (models.SessionView, error) {
	s.mu.Lock()
	old := s.detachLoopLocked()
	prior := ""
	if s.st.TargetSet {
		prior = formatTemp(s.st.TargetTemp)
	}
	s.st.TargetTemp = 0
	s.st.TargetSet = false
	s.st.Reached = false
	s.st.Overheating = false
	s.st.Phase = models.PhaseIdle
	s.st.StartedAt = time.Time{}
	s.st.StartTemp = 0
	s.st.PendingInput = prior
	s.st.UpdatedAt = s.now().UTC()
	view := s.viewLocked()
	s.mu.Unlock()

	if old != nil {
		old.Stop()
	}

	s.appendEvent(ctx, models.EventChangeTarget, "returned to target entry",
		map[string]any{"prior_target": prior})
	return view, nil
}

// Cancel stops the run and resets the session to ambient idle. The persisted
// target is cleared.
func (s *SessionService) Cancel(ctx context.Context) (models.SessionView, error) {
	s.mu.Lock()
	old := s.detachLoopLocked()
	profile := models.ProfileFor(s.st.Unit)
	s.st.CurrentTemp = profile.Ambient
	s.st.TargetTemp = 0
	s.st.TargetSet = false
	s.st.Reached = false
	s.st.Overheating = false
	s.st.Phase = models.PhaseIdle
	s.st.StartedAt = time.Time{}
	s.st.StartTemp = 0
	s.st.PendingInput = ""
	s.st.UpdatedAt = s.now().UTC()
	view := s.viewLocked()
	s.mu.Unlock()

	if old != nil {
		old.Stop()
	}

	if err := s.prefs.Delete(ctx, repository.PrefKeyTargetTemp); err != nil {
		s.log.Warnw("failed to clear persisted target", "err", err)
	}
	s.appendEvent(ctx, models.EventCancel, "session canceled", nil)
	return view, nil
}

// SwitchUnit converts every stored temperature together under one lock:
// current, target, start, and the pending input when it parses as a number.
// The phase is untouched and the loop keeps running; the simulated rate and
// all unit-dependent constants follow the new unit automatically.
func (s *SessionService) SwitchUnit(ctx context.Context, newUnit models.Unit) (models.SessionView, error) {
	s.mu.Lock()
	oldUnit := s.st.Unit
	if newUnit == oldUnit {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, nil
	}

	s.st.CurrentTemp = temperature.Convert(s.st.CurrentTemp, oldUnit, newUnit)
	if s.st.TargetSet {
		s.st.TargetTemp = temperature.Convert(s.st.TargetTemp, oldUnit, newUnit)
		s.st.StartTemp = temperature.Convert(s.st.StartTemp, oldUnit, newUnit)
	}
	if s.st.PendingInput != "" {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s.st.PendingInput), 64); err == nil {
			s.st.PendingInput = formatTemp(temperature.Convert(v, oldUnit, newUnit))
		}
	}
	s.st.Unit = newUnit
	s.st.UpdatedAt = s.now().UTC()
	view := s.viewLocked()
	s.mu.Unlock()

	if err := s.prefs.Set(ctx, repository.PrefKeyUnit, newUnit.String()); err != nil {
		s.log.Warnw("failed to persist unit", "err", err)
	}
	s.appendEvent(ctx, models.EventUnitSwitched, "display unit switched to "+newUnit.Symbol(),
		map[string]any{"from": oldUnit.String(), "to": newUnit.String()})
	return view, nil
}

// SetInput records unsubmitted target text so unit switches convert it.
func (s *SessionService) SetInput(_ context.Context, raw string) (models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.PendingInput = strings.TrimSpace(raw)
	return s.viewLocked(), nil
}

// State returns the derived view snapshot.
func (s *SessionService) State(_ context.Context) (models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(), nil
}

// Close stops any active loop. Called on shutdown.
func (s *SessionService) Close() {
	s.mu.Lock()
	old := s.detachLoopLocked()
	s.mu.Unlock()
	if old != nil {
		old.Stop()
	}
}

// ---- internals ----

// detachLoopLocked invalidates the current run and hands back the loop so
// the caller can stop it outside the lock (a tick blocked on the lock would
// otherwise deadlock against Stop).
func (s *SessionService) detachLoopLocked() *scheduler.Handle {
	s.epoch++
	old := s.loop
	s.loop = nil
	return old
}

// attachLoop starts the scheduling loop for the given run. If the run was
// superseded before the loop could be registered, the loop is stopped; its
// ticks would have been discarded by the epoch check regardless.
func (s *SessionService) attachLoop(epoch uint64) {
	h := scheduler.Every(s.src.TickPeriod(), func(ctx context.Context) {
		s.tick(ctx, epoch)
	})
	s.mu.Lock()
	if s.epoch == epoch && s.loop == nil {
		s.loop = h
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	h.Stop()
}

// tick runs one scheduling step: read, apply, fan out edges. The source
// read happens outside the lock; a result arriving after the run was
// canceled or retargeted fails the epoch check and is dropped. A unit
// switch during the read does not cancel the run, so the reading is still
// in the snapshot unit and must be converted before it is applied.
func (s *SessionService) tick(ctx context.Context, epoch uint64) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	current, unit := s.st.CurrentTemp, s.st.Unit
	s.mu.Unlock()

	reading, ok := s.src.NextReading(ctx, current, unit)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	if ok && s.st.Unit != unit {
		reading = temperature.Convert(reading, unit, s.st.Unit)
	}
	out := applyReading(&s.st, reading, ok, s.now())
	snap := s.st
	s.mu.Unlock()

	if out.ReachedEdge {
		s.appendEvent(ctx, models.EventTargetReached,
			fmt.Sprintf("target %s%s reached", formatTemp(snap.TargetTemp), snap.Unit.Symbol()),
			map[string]any{"current": snap.CurrentTemp, "target": snap.TargetTemp, "unit": snap.Unit.String()})
		s.notifier.Notify(ctx, notify.Alert{
			Kind:        notify.KindTargetReached,
			Unit:        snap.Unit,
			CurrentTemp: snap.CurrentTemp,
			TargetTemp:  snap.TargetTemp,
			At:          snap.UpdatedAt,
		})
	}
	if out.OverheatEdge {
		s.appendEvent(ctx, models.EventOverheat, "pan overheating",
			map[string]any{"current": snap.CurrentTemp, "target": snap.TargetTemp, "unit": snap.Unit.String(), "severe": out.Severe})
		s.notifier.Notify(ctx, notify.Alert{
			Kind:        notify.KindOverheat,
			Unit:        snap.Unit,
			CurrentTemp: snap.CurrentTemp,
			TargetTemp:  snap.TargetTemp,
			Severe:      out.Severe,
			At:          snap.UpdatedAt,
		})
	}
}

// viewLocked derives the presentation snapshot. Caller holds the lock.
func (s *SessionService) viewLocked() models.SessionView {
	st := s.st
	profile := models.ProfileFor(st.Unit)

	v := models.SessionView{
		Unit:            st.Unit,
		Phase:           st.Phase,
		CurrentTemp:     st.CurrentTemp,
		Overheating:     st.Overheating,
		Holding:         st.Reached && math.Abs(st.CurrentTemp-st.TargetTemp) <= profile.StabilizationBand,
		ProgressPercent: progressPercent(st),
		PendingInput:    st.PendingInput,
		Limits:          profile.Limits,
		Presets:         profile.Presets,
		Source:          s.src.Name(),
		UpdatedAt:       st.UpdatedAt,
	}
	if st.TargetSet {
		t := st.TargetTemp
		v.TargetTemp = &t
	}
	secs, state := estimateRemaining(st, s.now())
	v.EstimateState = state
	if state == models.EstimateReady {
		v.RemainingSeconds = secs
	}
	return v
}

// publishTarget pushes the new target to the device feed in Celsius.
// Best-effort: failures are logged, never fatal.
func (s *SessionService) publishTarget(ctx context.Context, target float64, unit models.Unit) {
	if s.publisher == nil {
		return
	}
	celsius := temperature.Convert(target, unit, models.Celsius)
	if err := s.publisher.Post(ctx, s.targetFeed, celsius); err != nil {
		s.log.Warnw("failed to publish target to feed", "feed", s.targetFeed, "err", err)
	}
}

func (s *SessionService) appendEvent(ctx context.Context, typ, description string, meta map[string]any) {
	ev := models.SessionEvent{
		OccurredAt:  s.now().UTC(),
		Type:        typ,
		Description: description,
	}
	if meta != nil {
		ev.Metadata = meta
	}
	if err := s.events.Append(ctx, ev); err != nil {
		s.log.Warnw("failed to append session event", "type", typ, "err", err)
	}
}

// formatTemp renders a temperature with at most one decimal, no trailing
// zeros ("350", "176.7").
func formatTemp(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
