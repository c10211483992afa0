package suggestions

import (
	"context"
	"log"

	"github.com/trenny-dev/suggestbot/src/metrics"
	"github.com/trenny-dev/suggestbot/src/types"
)

// VoteRequest is a validated, typed vote action. Boundary layers (button
// custom ids, JSON bodies) parse into this before the aggregator runs;
// string splitting never reaches business logic.
type VoteRequest struct {
	SuggestionID string
	VoterUserID  string
	Kind         types.VoteKind
}

// Aggregator applies vote requests and announces tally changes. Toggling is
// never an error: repeating a kind retracts it, a different kind switches.
type Aggregator struct {
	repo   *Repository
	events Events
}

func NewAggregator(repo *Repository, events Events) *Aggregator {
	if events == nil {
		events = NopEvents{}
	}
	return &Aggregator{repo: repo, events: events}
}

// Cast records the vote and returns the fresh tally. ErrNotFound for an
// unknown suggestion, ErrInvalidVote for a bad kind; nothing else short of
// storage failure.
func (a *Aggregator) Cast(ctx context.Context, req VoteRequest) (types.VoteTally, error) {
	tally, err := a.repo.CastVote(ctx, req.SuggestionID, req.VoterUserID, req.Kind)
	if err != nil {
		return types.VoteTally{}, err
	}

	metrics.VotesCast.WithLabelValues(string(req.Kind)).Inc()

	if err := a.events.VotesChanged(ctx, req.SuggestionID, tally); err != nil {
		log.Printf("suggestions: voteChanged event for %s: %v", req.SuggestionID, err)
	}
	return tally, nil
}
