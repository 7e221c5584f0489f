package events

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Repository persists calendar events in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const eventColumns = `id, title, description, to_char(date, 'YYYY-MM-DD'), location, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *Repository) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *e)
	}
	return res, rows.Err()
}

// List returns all events, newest date first.
func (r *Repository) List(ctx context.Context) ([]Event, error) {
	return r.queryEvents(ctx, `SELECT `+eventColumns+` FROM school_events ORDER BY date DESC`)
}

// Upcoming returns events on or after fromDate, soonest first, capped at
// limit.
func (r *Repository) Upcoming(ctx context.Context, fromDate string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 5
	}
	return r.queryEvents(ctx, `
		SELECT `+eventColumns+` FROM school_events
		WHERE date >= $1::date
		ORDER BY date ASC
		LIMIT $2
	`, fromDate, limit)
}

// Get returns one event by id, nil if unknown.
func (r *Repository) Get(ctx context.Context, id string) (*Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM school_events WHERE id = $1`, id)
	return scanEvent(row)
}

// Create inserts an event.
func (r *Repository) Create(ctx context.Context, e Event) (Event, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO school_events (id, title, description, date, location)
		VALUES ($1, $2, $3, $4::date, $5)
		RETURNING created_at, updated_at
	`, e.ID, e.Title, e.Description, e.Date, e.Location)
	if err := row.Scan(&e.CreatedAt, &e.UpdatedAt); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Update replaces the mutable fields and returns the fresh row, nil if the
// id is unknown.
func (r *Repository) Update(ctx context.Context, e Event) (*Event, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE school_events
		SET title = $2, description = $3, date = $4::date, location = $5, updated_at = NOW()
		WHERE id = $1
	`, e.ID, e.Title, e.Description, e.Date, e.Location)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.Get(ctx, e.ID)
}

// Delete removes an event.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM school_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
