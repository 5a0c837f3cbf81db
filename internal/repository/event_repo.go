package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"pantemp/internal/models"
)

// timestampLayout is how SQLite TIMESTAMP columns are written.
const timestampLayout = "2006-01-02 15:04:05"

const insertEventSQL = `
	INSERT INTO session_events (id, occurred_at, type, message, meta)
	VALUES (?, ?, ?, ?, ?)
`

const selectEventsSQL = `SELECT id, occurred_at, type, message, meta FROM session_events`

// EventSQLite is the append-only session history in SQLite.
type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

// Append inserts one event, assigning an id and UTC timestamp when the
// caller left them empty. The type is stored trimmed and upper-cased.
func (r *EventSQLite) Append(ctx context.Context, e models.SessionEvent) error {
	id := e.EventID
	if id == "" {
		id = uuid.NewString()
	}
	at := e.OccurredAt.UTC()
	if e.OccurredAt.IsZero() {
		at = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		id,
		at.Format(timestampLayout),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		marshalMeta(e.Metadata),
	)
	return err
}

// List returns events within [from, to] (either bound optional) and/or of
// the given type, oldest first. The bounds are bound as strings in the
// column's own format so the TEXT comparison is exact.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.SessionEvent, error) {
	q := selectEventsSQL
	var conds []string
	var args []any
	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(timestampLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(timestampLayout))
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.SessionEvent, 0, 64)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func scanEvent(rows *sql.Rows) (models.SessionEvent, error) {
	var ev models.SessionEvent
	var meta sql.NullString
	if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &meta); err != nil {
		return models.SessionEvent{}, err
	}
	ev.OccurredAt = ev.OccurredAt.UTC()
	if meta.Valid && meta.String != "" {
		var v any
		if json.Unmarshal([]byte(meta.String), &v) == nil {
			ev.Metadata = v
		} else {
			ev.Metadata = meta.String // malformed rows stay readable
		}
	}
	return ev, nil
}

// marshalMeta renders metadata as a JSON string, or NULL when absent or
// unencodable.
func marshalMeta(meta any) *string {
	if meta == nil {
		return nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
