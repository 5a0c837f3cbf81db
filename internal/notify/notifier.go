// Package notify fans session alerts out to the configured sinks. The
// target-reached alert fires exactly once per crossing; the edge detection
// lives in the session update, not here.
package notify

import (
	"context"
	"time"

	"pantemp/internal/logger"
	"pantemp/internal/models"
)

// Alert kinds.
const (
	KindTargetReached = "TARGET_REACHED"
	KindOverheat      = "OVERHEAT"
)

// Alert is one notification payload.
type Alert struct {
	Kind        string      `json:"kind"`
	Unit        models.Unit `json:"unit"`
	CurrentTemp float64     `json:"current_temp"`
	TargetTemp  float64     `json:"target_temp"`
	Severe      bool        `json:"severe,omitempty"` // excess beyond the full overheat scale
	At          time.Time   `json:"at"`
}

// Notifier delivers an alert. Delivery is best-effort; failures must never
// disturb the session.
type Notifier interface {
	Notify(ctx context.Context, a Alert)
}

// LogNotifier writes alerts to the application log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, a Alert) {
	n.log.Infow("session alert",
		"kind", a.Kind,
		"current", a.CurrentTemp,
		"target", a.TargetTemp,
		"unit", a.Unit.String(),
		"severe", a.Severe,
	)
}

// Multi fans one alert out to several sinks.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, a Alert) {
	for _, n := range m {
		n.Notify(ctx, a)
	}
}
