// Package history records launch attempts for later inspection.
package history

import (
	"context"
	"time"
)

// Event is one launch attempt.
type Event struct {
	OccurredAt  time.Time `json:"occurred_at"`
	Query       string    `json:"query"`
	DisplayName string    `json:"display_name"` // empty when nothing matched
	Target      string    `json:"target"`
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
}

// Sink is a destination for history events.
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Recent(ctx context.Context, n int) ([]Event, error)
	Close() error
}
