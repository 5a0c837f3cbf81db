package repository_test

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"pantemp/internal/models"
	"pantemp/internal/repository"
)

func newEventMock(t *testing.T) (*repository.EventSQLite, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	return repository.NewEventSQLite(db), mock, func() { _ = db.Close() }
}

// isUUID loosely matches a generated event id.
var isUUID = argFunc(func(v driver.Value) bool {
	s, ok := v.(string)
	return ok && len(s) == 36
})

func TestEventSQLite_Append_FillsIDAndTimestamp(t *testing.T) {
	repo, mock, closeDB := newEventMock(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO session_events")).
		WithArgs(isUUID, sqlmock.AnyArg(), "TARGET_REACHED", "target 360°F reached", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Append(context.Background(), models.SessionEvent{
		Type:        "target_reached ", // normalized to upper-case, trimmed
		Description: "target 360°F reached",
		Metadata:    map[string]any{"current": 360.1},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEventSQLite_List_FiltersByRangeAndType(t *testing.T) {
	repo, mock, closeDB := newEventMock(t)
	defer closeDB()

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	occurred := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("id-1", occurred, "OVERHEAT", "pan overheating", `{"severe":false}`)

	// Bounds are bound as strings in the stored column format so the TEXT
	// comparison lines up with what Append writes.
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, occurred_at, type, message, meta FROM session_events WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC",
	)).
		WithArgs("2026-08-01 00:00:00", "2026-08-31 00:00:00", "OVERHEAT").
		WillReturnRows(rows)

	events, err := repo.List(context.Background(), from, to, "overheat")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.Type != "OVERHEAT" || ev.EventID != "id-1" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	meta, ok := ev.Metadata.(map[string]any)
	if !ok || meta["severe"] != false {
		t.Fatalf("metadata not decoded: %#v", ev.Metadata)
	}
}

func TestEventSQLite_List_NoFilters(t *testing.T) {
	repo, mock, closeDB := newEventMock(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, occurred_at, type, message, meta FROM session_events ORDER BY occurred_at ASC",
	)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}))

	events, err := repo.List(context.Background(), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events = %d, want 0", len(events))
	}
}

func TestEventSQLite_List_KeepsMalformedMetaRaw(t *testing.T) {
	repo, mock, closeDB := newEventMock(t)
	defer closeDB()

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("id-2", time.Now().UTC(), "START", "heating started", `{broken`)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, occurred_at, type, message, meta FROM session_events")).
		WillReturnRows(rows)

	events, err := repo.List(context.Background(), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if events[0].Metadata != `{broken` {
		t.Fatalf("expected raw metadata kept, got %#v", events[0].Metadata)
	}
}
