package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SnapshotRepository persists the snapshot beyond process lifetime.
//
// The mirror is write-mostly: every accepted mutation overwrites the
// single stored row (last-writer-wins), and the row is read back once at
// startup so a restarted hub resumes the last known actuator state.
type SnapshotRepository interface {
	// Save overwrites the stored snapshot.
	Save(ctx context.Context, snap Snapshot) error

	// Load returns the stored snapshot, or nil if none has been saved yet.
	Load(ctx context.Context) (*Snapshot, error)
}

// SQLiteSnapshotRepository implements SnapshotRepository using SQLite.
//
// The snapshot lives in a single-row table keyed by a constant id.
type SQLiteSnapshotRepository struct {
	db *sql.DB
}

// NewSQLiteSnapshotRepository creates a new SQLite snapshot repository.
func NewSQLiteSnapshotRepository(db *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{db: db}
}

// Save overwrites the stored snapshot row.
func (r *SQLiteSnapshotRepository) Save(ctx context.Context, snap Snapshot) error {
	var lastUpdated any
	if snap.LastUpdated != nil {
		lastUpdated = snap.LastUpdated.UTC().Format(time.RFC3339)
	}

	actuator := 0
	if snap.ActuatorOn {
		actuator = 1
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshot (id, actuator_on, temperature, humidity, sample_timestamp, sample_datetime, last_updated)
		 VALUES (1, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   actuator_on = excluded.actuator_on,
		   temperature = excluded.temperature,
		   humidity = excluded.humidity,
		   sample_timestamp = excluded.sample_timestamp,
		   sample_datetime = excluded.sample_datetime,
		   last_updated = excluded.last_updated`,
		actuator,
		snap.Temperature,
		snap.Humidity,
		snap.SampleTimestamp,
		snap.SampleDatetime,
		lastUpdated,
	)
	if err != nil {
		return fmt.Errorf("%w: saving snapshot: %w", ErrStorage, err)
	}

	return nil
}

// Load returns the stored snapshot, or nil if the table is empty.
func (r *SQLiteSnapshotRepository) Load(ctx context.Context) (*Snapshot, error) {
	var (
		snap        Snapshot
		actuator    int
		lastUpdated sql.NullString
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT actuator_on, temperature, humidity, sample_timestamp, sample_datetime, last_updated
		 FROM snapshot WHERE id = 1`,
	).Scan(&actuator, &snap.Temperature, &snap.Humidity, &snap.SampleTimestamp, &snap.SampleDatetime, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading snapshot: %w", ErrStorage, err)
	}

	snap.ActuatorOn = actuator != 0

	if lastUpdated.Valid && lastUpdated.String != "" {
		t, parseErr := time.Parse(time.RFC3339, lastUpdated.String)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: parsing last_updated: %w", ErrStorage, parseErr)
		}
		snap.LastUpdated = &t
	}

	return &snap, nil
}
