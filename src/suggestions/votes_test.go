package suggestions

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/trenny-dev/suggestbot/src/types"
)

func TestCastVoteToggle(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	s := seedSuggestion(t, repo, "g1", "alice")

	tally, err := repo.CastVote(ctx, s.ID, "bob", types.VoteUp)
	if err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if tally != (types.VoteTally{Up: 1}) {
		t.Fatalf("after first up vote: %+v", tally)
	}

	// Second click of the same button retracts.
	tally, err = repo.CastVote(ctx, s.ID, "bob", types.VoteUp)
	if err != nil {
		t.Fatalf("retract: %v", err)
	}
	if tally != (types.VoteTally{}) {
		t.Fatalf("after retraction: %+v", tally)
	}
}

func TestCastVoteSwitchKeepsOneVote(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	s := seedSuggestion(t, repo, "g1", "alice")

	if _, err := repo.CastVote(ctx, s.ID, "bob", types.VoteUp); err != nil {
		t.Fatalf("up: %v", err)
	}
	tally, err := repo.CastVote(ctx, s.ID, "bob", types.VoteDown)
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if tally != (types.VoteTally{Down: 1}) {
		t.Fatalf("switch should move the vote, got %+v", tally)
	}

	votes, err := repo.VotesFor(ctx, s.ID)
	if err != nil {
		t.Fatalf("votes: %v", err)
	}
	if len(votes) != 1 || votes[0].Kind != types.VoteDown {
		t.Fatalf("want a single down vote row, got %+v", votes)
	}
}

func TestCastVotePersistsTally(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	s := seedSuggestion(t, repo, "g1", "alice")

	for _, v := range []struct {
		voter string
		kind  types.VoteKind
	}{
		{"bob", types.VoteUp},
		{"carol", types.VoteUp},
		{"dave", types.VoteNeutral},
		{"erin", types.VoteDown},
	} {
		if _, err := repo.CastVote(ctx, s.ID, v.voter, v.kind); err != nil {
			t.Fatalf("vote %s: %v", v.voter, err)
		}
	}

	got, err := repo.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Tally() != (types.VoteTally{Up: 2, Neutral: 1, Down: 1}) {
		t.Fatalf("materialized tally wrong: %+v", got.Tally())
	}
}

func TestCastVoteInvalidKind(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	s := seedSuggestion(t, repo, "g1", "alice")

	if _, err := repo.CastVote(context.Background(), s.ID, "bob", "sideways"); err != ErrInvalidVote {
		t.Fatalf("want ErrInvalidVote, got %v", err)
	}
}

func TestCastVoteConcurrentVoters(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	s := seedSuggestion(t, repo, "g1", "alice")

	const voters = 20
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for n := 0; n < voters; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := repo.CastVote(ctx, s.ID, fmt.Sprintf("voter-%d", n), types.VoteUp); err != nil {
				errs <- err
			}
		}(n)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent vote: %v", err)
	}

	got, err := repo.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Tally() != (types.VoteTally{Up: voters}) {
		t.Fatalf("want %d up votes, got %+v", voters, got.Tally())
	}
}

func TestAggregatorEmitsVotesChanged(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	sink := &recordingEvents{}
	agg := NewAggregator(repo, sink)
	s := seedSuggestion(t, repo, "g1", "alice")

	tally, err := agg.Cast(context.Background(), VoteRequest{
		SuggestionID: s.ID, VoterUserID: "bob", Kind: types.VoteUp,
	})
	if err != nil {
		t.Fatalf("cast: %v", err)
	}
	if tally != (types.VoteTally{Up: 1}) {
		t.Fatalf("tally: %+v", tally)
	}
	if len(sink.votes) != 1 || sink.votes[0] != tally {
		t.Fatalf("want one VotesChanged with %+v, got %+v", tally, sink.votes)
	}
}
