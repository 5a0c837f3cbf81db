package models

import "time"

// Phase is the derived lifecycle status of a heating session.
type Phase string

const (
	PhaseIdle          Phase = "IDLE"
	PhaseHeating       Phase = "HEATING"
	PhaseTargetReached Phase = "TARGET_REACHED"
)

// EstimateState qualifies the remaining-time estimate.
type EstimateState string

const (
	// EstimateNone: no active heating run, or the target has been reached.
	EstimateNone EstimateState = "NONE"
	// EstimateCalculating: fewer than the warm-up seconds have elapsed.
	EstimateCalculating EstimateState = "CALCULATING"
	// EstimateUnknown: the observed rate is zero or negative.
	EstimateUnknown EstimateState = "UNKNOWN"
	// EstimateReady: RemainingSeconds is meaningful.
	EstimateReady EstimateState = "READY"
)

// HeatingSession is the single mutable session. All temperatures are
// expressed in Unit; a unit switch converts every stored temperature
// together. Owned exclusively by the session controller.
type HeatingSession struct {
	Unit         Unit      `json:"unit"`
	Phase        Phase     `json:"phase"`
	CurrentTemp  float64   `json:"current_temp"`
	TargetTemp   float64   `json:"target_temp,omitempty"`
	TargetSet    bool      `json:"target_set"`
	Reached      bool      `json:"reached"`     // sticky: set on first crossing, cleared only by cancel/retarget
	Overheating  bool      `json:"overheating"` // live: recomputed every tick
	StartedAt    time.Time `json:"started_at,omitempty"`
	StartTemp    float64   `json:"start_temp,omitempty"`
	PendingInput string    `json:"pending_input,omitempty"` // unsubmitted target text, converted on unit switch when numeric
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionView is the derived per-tick snapshot consumed by the presentation
// layer.
type SessionView struct {
	Unit             Unit          `json:"unit"`
	Phase            Phase         `json:"phase"`
	CurrentTemp      float64       `json:"current_temp"`
	TargetTemp       *float64      `json:"target_temp,omitempty"`
	Overheating      bool          `json:"overheating"`
	Holding          bool          `json:"holding"` // reached and within the stabilization band
	ProgressPercent  float64       `json:"progress_percent"`
	EstimateState    EstimateState `json:"estimate_state"`
	RemainingSeconds float64       `json:"remaining_seconds,omitempty"`
	PendingInput     string        `json:"pending_input,omitempty"`
	Limits           Limits        `json:"limits"`
	Presets          Presets       `json:"presets"`
	Source           string        `json:"source"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// SessionEvent is a single log entry.
type SessionEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // START | CHANGE_TARGET | CANCEL | UNIT_SWITCHED | TARGET_REACHED | OVERHEAT
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

// Event types.
const (
	EventStart         = "START"
	EventChangeTarget  = "CHANGE_TARGET"
	EventCancel        = "CANCEL"
	EventUnitSwitched  = "UNIT_SWITCHED"
	EventTargetReached = "TARGET_REACHED"
	EventOverheat      = "OVERHEAT"
)
