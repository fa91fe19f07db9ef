package event

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Default and maximum page sizes for history queries.
const (
	defaultLimit = 10
	maxLimit     = 200
)

// Repository defines the interface for event log operations.
type Repository interface {
	Append(ctx context.Context, evt *Event) error
	QueryLatest(ctx context.Context, filter Filter) ([]Event, error)
}

// SQLiteRepository stores events in SQLite.
//
// The events table is append-only: rows are never updated or deleted, and
// the auto-incrementing seq column preserves insertion order for events
// sharing a timestamp.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new event repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Append inserts a new event. The ID, Timestamp, Datetime, and CreatedAt
// fields are generated if empty; the stored timestamp is always stamped
// here rather than trusted from the device.
func (r *SQLiteRepository) Append(ctx context.Context, evt *Event) error {
	if !evt.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, evt.Category)
	}

	now := time.Now().UTC()
	if evt.ID == "" {
		evt.ID = "evt-" + uuid.NewString()[:8]
	}
	if evt.Timestamp == 0 {
		evt.Timestamp = now.Unix()
	}
	if evt.Datetime == "" {
		evt.Datetime = now.Format(time.RFC3339)
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = now
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, category, status, subject, source_device, timestamp, datetime, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.ID, string(evt.Category), evt.Status, evt.Subject, evt.SourceDevice,
		evt.Timestamp, evt.Datetime,
		evt.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: inserting event: %w", ErrStorage, err)
	}

	return nil
}

// QueryLatest returns the most recent events in a category, newest first.
// Events sharing a timestamp are ordered by insertion, later first.
func (r *SQLiteRepository) QueryLatest(ctx context.Context, filter Filter) ([]Event, error) {
	if !filter.Category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, filter.Category)
	}

	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, status, subject, source_device, timestamp, datetime, created_at
		 FROM events
		 WHERE category = ?
		 ORDER BY timestamp DESC, seq DESC
		 LIMIT ?`,
		string(filter.Category), filter.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: querying events: %w", ErrStorage, err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var evt Event
		var category, createdAt string

		if err := rows.Scan(&evt.ID, &category, &evt.Status, &evt.Subject,
			&evt.SourceDevice, &evt.Timestamp, &evt.Datetime, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scanning event: %w", ErrStorage, err)
		}
		evt.Category = Category(category)

		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing event timestamp %q: %w", ErrStorage, createdAt, err)
		}
		evt.CreatedAt = t

		events = append(events, evt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating events: %w", ErrStorage, err)
	}

	return events, nil
}
