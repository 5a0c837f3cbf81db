package repository

import (
	"context"
	"database/sql"
	"time"

	"pantemp/internal/models"
	"pantemp/internal/repository/db"
)

// Preference keys. Fixed string names; the values survive across sessions
// and are cleared on cancel.
const (
	PrefKeyUnit       = "unit"
	PrefKeyTargetTemp = "target_temp"
)

// PrefsRepo stores user preferences as key/value strings.
type PrefsRepo interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

// EventRepo is the append-only session event log with filtered access.
type EventRepo interface {
	Append(ctx context.Context, e models.SessionEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.SessionEvent, error)
}

type Repository struct {
	Prefs  PrefsRepo
	Events EventRepo
}

func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		Prefs:  NewPrefsSQLite(sqlDB),
		Events: NewEventSQLite(sqlDB),
	}
}

// InitDB opens the SQLite file and applies the schema.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
