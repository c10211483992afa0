package suggestions

import (
	"context"
	"math"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/trenny-dev/suggestbot/src/types"
)

func seedWithStatus(t *testing.T, db *gorm.DB, repo *Repository, guildID, author, category string, status types.Status) types.Suggestion {
	t.Helper()
	s := seedSuggestion(t, repo, guildID, author)
	if err := db.Model(&types.Suggestion{}).Where("id = ?", s.ID).
		Updates(map[string]interface{}{"status": status, "category": category}).Error; err != nil {
		t.Fatalf("seed status: %v", err)
	}
	s.Status = status
	s.Category = category
	return s
}

func TestGuildStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	stats := NewStats(db)
	ctx := context.Background()

	seedWithStatus(t, db, repo, "g1", "alice", "feature", types.StatusPending)
	seedWithStatus(t, db, repo, "g1", "alice", "feature", types.StatusApproved)
	seedWithStatus(t, db, repo, "g1", "bob", "bug", types.StatusApproved)
	seedWithStatus(t, db, repo, "g1", "bob", "bug", types.StatusArchived)
	seedWithStatus(t, db, repo, "g2", "carol", "other", types.StatusPending)

	gs, err := stats.Guild(ctx, "g1", time.Time{})
	if err != nil {
		t.Fatalf("guild stats: %v", err)
	}
	if gs.Total != 4 || gs.Pending != 1 || gs.Approved != 2 || gs.Archived != 1 {
		t.Fatalf("unexpected totals: %+v", gs)
	}
}

func TestUserStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	stats := NewStats(db)
	ctx := context.Background()

	seedWithStatus(t, db, repo, "g1", "alice", "feature", types.StatusApproved)
	seedWithStatus(t, db, repo, "g1", "alice", "feature", types.StatusImplemented)
	seedWithStatus(t, db, repo, "g1", "alice", "bug", types.StatusDenied)
	a4 := seedWithStatus(t, db, repo, "g1", "alice", "bug", types.StatusPending)
	seedWithStatus(t, db, repo, "g1", "bob", "other", types.StatusApproved)

	if _, err := repo.CastVote(ctx, a4.ID, "bob", types.VoteUp); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := repo.CastVote(ctx, a4.ID, "carol", types.VoteDown); err != nil {
		t.Fatalf("vote: %v", err)
	}

	us, err := stats.User(ctx, "g1", "alice")
	if err != nil {
		t.Fatalf("user stats: %v", err)
	}
	if us.Total != 4 || us.Approved != 1 || us.Implemented != 1 {
		t.Fatalf("unexpected counts: %+v", us)
	}
	if math.Abs(us.SuccessRate-0.5) > 1e-9 {
		t.Fatalf("success rate: %f", us.SuccessRate)
	}
	if math.Abs(us.AverageVotes-0.5) > 1e-9 {
		t.Fatalf("average votes: %f", us.AverageVotes)
	}
	if us.ContributionScore != 1*2+1*3 {
		t.Fatalf("contribution score: %d", us.ContributionScore)
	}
	if len(us.TopCategories) != 2 || us.TopCategories[0].Total != 2 {
		t.Fatalf("top categories: %+v", us.TopCategories)
	}
	if len(us.RecentActivity) != 4 {
		t.Fatalf("recent activity: %+v", us.RecentActivity)
	}
}

func TestCategoryStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	stats := NewStats(db)
	ctx := context.Background()

	seedWithStatus(t, db, repo, "g1", "alice", "feature", types.StatusApproved)
	seedWithStatus(t, db, repo, "g1", "bob", "feature", types.StatusDenied)
	seedWithStatus(t, db, repo, "g1", "carol", "bug", types.StatusPending)

	cats, err := stats.Categories(ctx, "g1")
	if err != nil {
		t.Fatalf("category stats: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("want 2 categories, got %+v", cats)
	}
	if cats[0].Name != "feature" || cats[0].Total != 2 {
		t.Fatalf("largest category first: %+v", cats)
	}
	if math.Abs(cats[0].ApprovalRate-0.5) > 1e-9 {
		t.Fatalf("approval rate: %f", cats[0].ApprovalRate)
	}
}

func TestTopContributors(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	stats := NewStats(db)
	ctx := context.Background()

	for n := 0; n < 3; n++ {
		seedWithStatus(t, db, repo, "g1", "alice", "feature", types.StatusApproved)
	}
	seedWithStatus(t, db, repo, "g1", "bob", "bug", types.StatusImplemented)

	top, err := stats.TopContributors(ctx, "g1", 0)
	if err != nil {
		t.Fatalf("top contributors: %v", err)
	}
	if len(top) != 2 || top[0].UserID != "alice" || top[0].Total != 3 || top[0].Approved != 3 {
		t.Fatalf("unexpected leaderboard: %+v", top)
	}
	if top[1].Implemented != 1 {
		t.Fatalf("bob's implemented count: %+v", top[1])
	}
}

func TestTrends(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	stats := NewStats(db)
	ctx := context.Background()

	seedWithStatus(t, db, repo, "g1", "alice", "feature", types.StatusPending)
	seedWithStatus(t, db, repo, "g1", "bob", "feature", types.StatusPending)
	old := seedWithStatus(t, db, repo, "g1", "carol", "bug", types.StatusPending)
	if err := db.Model(&types.Suggestion{}).Where("id = ?", old.ID).
		Update("created_at", time.Now().UTC().Add(-40*24*time.Hour)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	since := time.Now().UTC().Add(-30 * 24 * time.Hour)
	points, err := stats.Trends(ctx, "g1", since)
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if len(points) != 1 || points[0].Category != "feature" || points[0].Count != 2 {
		t.Fatalf("want one bucket of 2 feature suggestions, got %+v", points)
	}

	// Widening the window picks up the backdated bug report too.
	points, err = stats.Trends(ctx, "g1", time.Now().UTC().Add(-60*24*time.Hour))
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("want both buckets in the wide window, got %+v", points)
	}
}
