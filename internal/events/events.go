package events

import (
	"context"
	"errors"
	"time"
)

// Event is one dated calendar announcement.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Date        string    `json:"date"`
	Location    *string   `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

// ErrNotFound is returned for unknown event ids.
var ErrNotFound = errors.New("event not found")

// Store is the persistence boundary for the calendar.
type Store interface {
	List(ctx context.Context) ([]Event, error)
	Upcoming(ctx context.Context, fromDate string, limit int) ([]Event, error)
	Get(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, e Event) (Event, error)
	Update(ctx context.Context, e Event) (*Event, error)
	Delete(ctx context.Context, id string) error
}
