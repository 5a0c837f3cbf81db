package service

import (
	"context"

	"pantemp/internal/logger"
	"pantemp/internal/models"
	"pantemp/internal/notify"
	"pantemp/internal/repository"
	"pantemp/internal/source"
)

// Session exposes the user-triggered operations on the heating session.
type Session interface {
	Start(ctx context.Context, rawTarget string) (models.SessionView, error)
	ChangeTarget(ctx context.Context) (models.SessionView, error)
	Cancel(ctx context.Context) (models.SessionView, error)
	SwitchUnit(ctx context.Context, unit models.Unit) (models.SessionView, error)
	SetInput(ctx context.Context, raw string) (models.SessionView, error)
	Close()
}

// Monitoring exposes the read-only derived view.
type Monitoring interface {
	State(ctx context.Context) (models.SessionView, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.SessionEvent, error)
}

// Service aggregates all sub-services.
type Service struct {
	Session
	Monitoring
	EventLog
}

// NewService wires the repository layer, temperature source, and notifier
// into concrete services. One SessionService serves both the Session
// operations and the Monitoring view, since the session state is in-memory
// and exclusively owned by the controller.
func NewService(
	ctx context.Context,
	repos *repository.Repository,
	src source.Source,
	publisher TargetPublisher,
	targetFeed string,
	notifier notify.Notifier,
	defaultUnit models.Unit,
	log *logger.Logger,
) *Service {
	ctl := NewSessionService(ctx, src, publisher, targetFeed, repos.Prefs, repos.Events, notifier, defaultUnit, log)
	return &Service{
		Session:    ctl,
		Monitoring: ctl,
		EventLog:   NewEventLogService(repos.Events),
	}
}
