/*
Package events publishes notifications about finished projections.

EVENTS:
  projection.completed  a run was computed and saved

Publishing is fire-and-forget from the API's point of view: a failed
publish is logged and never fails the request that produced the run.

IMPLEMENTATIONS:
  - RabbitMQPublisher: JSON messages on a durable topic exchange
  - LogPublisher: writes events to the structured log (no broker configured)
  - Recorder: keeps events in memory (tests)
*/
package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/debt-engine/finance"
	"github.com/warp/debt-engine/internal/id"
)

// Routing keys.
const (
	ProjectionCompleted = "projection.completed"
)

// Event is the message body.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`

	RunID          string          `json:"run_id"`
	RunName        string          `json:"run_name"`
	Strategy       string          `json:"strategy"`
	SortOrder      string          `json:"sort_order"`
	NumberOfMonths int             `json:"number_of_months"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	PayoffDate     finance.Month   `json:"payoff_date"`
}

// NewProjectionCompleted builds the event for a saved run.
func NewProjectionCompleted(run finance.Run, at time.Time) Event {
	return Event{
		ID:             id.NewAt(at),
		Type:           ProjectionCompleted,
		OccurredAt:     at.UTC(),
		RunID:          run.ID,
		RunName:        run.Name,
		Strategy:       run.Summary.Strategy,
		SortOrder:      string(run.Summary.SortOrder),
		NumberOfMonths: run.Summary.NumberOfMonths,
		TotalInterest:  run.Summary.TotalInterest,
		PayoffDate:     run.Summary.PayoffDate,
	}
}

// Publisher sends events somewhere.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// =============================================================================
// LOG PUBLISHER
// =============================================================================

// LogPublisher writes events to a zerolog logger.
type LogPublisher struct {
	Logger zerolog.Logger
}

func (p LogPublisher) Publish(_ context.Context, event Event) error {
	p.Logger.Info().
		Str("event", event.Type).
		Str("run_id", event.RunID).
		Int("months", event.NumberOfMonths).
		Str("total_interest", event.TotalInterest.StringFixed(2)).
		Msg("event published")
	return nil
}

// =============================================================================
// RECORDER
// =============================================================================

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
