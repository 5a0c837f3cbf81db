package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PrefsSQLite struct {
	db *sql.DB
}

func NewPrefsSQLite(db *sql.DB) *PrefsSQLite {
	return &PrefsSQLite{db: db}
}

const (
	upsertPrefSQL = `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`

	selectPrefSQL = `SELECT value FROM preferences WHERE key=?`

	deletePrefSQL = `DELETE FROM preferences WHERE key=?`
)

// Set writes or replaces a preference value.
func (r *PrefsSQLite) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, upsertPrefSQL, key, value, time.Now().UTC())
	return err
}

// Get returns the stored value and whether it exists.
func (r *PrefsSQLite) Get(ctx context.Context, key string) (string, bool, error) {
	row := r.db.QueryRowContext(ctx, selectPrefSQL, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Delete removes a preference; deleting an absent key is not an error.
func (r *PrefsSQLite) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, deletePrefSQL, key)
	return err
}
