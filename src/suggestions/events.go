package suggestions

import (
	"context"

	"github.com/trenny-dev/suggestbot/src/types"
)

// Events receives lifecycle notifications for the presentation layer.
// Implementations render Discord messages, publish to the event stream, or
// both. Delivery is best effort: the engine logs and swallows errors, they
// never fail the operation that emitted them.
type Events interface {
	SuggestionCreated(ctx context.Context, s types.Suggestion) error
	VotesChanged(ctx context.Context, suggestionID string, tally types.VoteTally) error
	StatusChanged(ctx context.Context, change StatusChange) error
	NotifyAuthor(ctx context.Context, notice AuthorNotice) error
}

// StatusChange describes a completed transition.
type StatusChange struct {
	Suggestion types.Suggestion
	OldStatus  types.Status
	NewStatus  types.Status
	Reason     string
	ActorID    string
}

// AuthorNotice asks the gateway to tell the author about a transition.
// Only emitted for non-anonymous suggestions.
type AuthorNotice struct {
	Suggestion types.Suggestion
	OldStatus  types.Status
	NewStatus  types.Status
	Reason     string
}

// EventFanout delivers each event to every sink, returning the first error
// after all sinks ran.
type EventFanout []Events

func (f EventFanout) SuggestionCreated(ctx context.Context, s types.Suggestion) error {
	var first error
	for _, e := range f {
		if err := e.SuggestionCreated(ctx, s); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f EventFanout) VotesChanged(ctx context.Context, id string, tally types.VoteTally) error {
	var first error
	for _, e := range f {
		if err := e.VotesChanged(ctx, id, tally); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f EventFanout) StatusChanged(ctx context.Context, change StatusChange) error {
	var first error
	for _, e := range f {
		if err := e.StatusChanged(ctx, change); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f EventFanout) NotifyAuthor(ctx context.Context, notice AuthorNotice) error {
	var first error
	for _, e := range f {
		if err := e.NotifyAuthor(ctx, notice); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NopEvents discards everything. Useful for tests and offline tooling.
type NopEvents struct{}

func (NopEvents) SuggestionCreated(context.Context, types.Suggestion) error   { return nil }
func (NopEvents) VotesChanged(context.Context, string, types.VoteTally) error { return nil }
func (NopEvents) StatusChanged(context.Context, StatusChange) error           { return nil }
func (NopEvents) NotifyAuthor(context.Context, AuthorNotice) error            { return nil }
