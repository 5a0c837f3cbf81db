package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"pantemp/internal/models"
	"pantemp/internal/repository"
)

// LogFilter selects session events by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "START", "CHANGE_TARGET", "CANCEL", "UNIT_SWITCHED", "TARGET_REACHED", "OVERHEAT"
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// EventLogService reads the append-only session history.
type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

// List returns events matching the filter, oldest first. Bounds are
// normalized to UTC and the type to upper case before hitting the store.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.SessionEvent, error) {
	from, to := f.From, f.To
	if !from.IsZero() {
		from = from.UTC()
	}
	if !to.IsZero() {
		to = to.UTC()
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	return s.eventRepo.List(ctx, from, to, strings.ToUpper(strings.TrimSpace(f.Type)))
}
