package domain

import "context"

// EventRepository is the abstraction for the append-only event log the
// engine publishes to. The log is never read back by the engine itself.
type EventRepository interface {
	// AddEvent appends the given event to the log and returns its sequence
	// number. Sequence numbers start from 1 and are strictly increasing.
	AddEvent(ctx context.Context, event Event) (uint64, error)
	// GetEventsAfter returns at most limit events with sequence number greater
	// than seq. A limit of zero means no limit.
	GetEventsAfter(ctx context.Context, seq uint64, limit int) ([]Event, error)
	// GetLatestSeq returns the sequence number of the last appended event.
	GetLatestSeq(ctx context.Context) (uint64, error)
}
