package analytics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/loykin/folderedit/internal/metrics"
)

// Event is one tracked application event.
type Event struct {
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
	Source     string    `json:"source"`
}

// Sink is a destination for analytics events.
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// Tracker counts events in Prometheus and forwards them to every sink.
// Sink failures are logged and never reach the caller.
type Tracker struct {
	source string
	sinks  []Sink
	logger *slog.Logger
	now    func() time.Time
}

// NewTracker returns a Tracker stamping events with source.
func NewTracker(source string, logger *slog.Logger, sinks ...Sink) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{source: source, sinks: sinks, logger: logger, now: time.Now}
}

func (t *Tracker) Track(ctx context.Context, name string) {
	metrics.IncAppEvent(name)
	e := Event{Name: name, OccurredAt: t.now().UTC(), Source: t.source}
	for _, s := range t.sinks {
		if err := s.Send(ctx, e); err != nil {
			t.logger.Warn("analytics sink failed", "event", name, "error", err)
		}
	}
}

// Close closes every sink that holds resources.
func (t *Tracker) Close() error {
	var errs []error
	for _, s := range t.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
