package suggestions

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trenny-dev/suggestbot/src/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.GuildConfig{}, &types.Suggestion{}, &types.SuggestionVote{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// configureGuild stores a minimal working config and returns it.
func configureGuild(t *testing.T, store *ConfigStore, guildID string, mutate func(*ConfigPatch)) types.GuildConfig {
	t.Helper()
	channel := "chan-" + guildID
	patch := ConfigPatch{SuggestionChannelID: &channel}
	if mutate != nil {
		mutate(&patch)
	}
	cfg, err := store.Set(context.Background(), guildID, patch, "admin")
	if err != nil {
		t.Fatalf("configure guild: %v", err)
	}
	return cfg
}

// recordingEvents captures every emitted event for assertions.
type recordingEvents struct {
	mu       sync.Mutex
	created  []types.Suggestion
	votes    []types.VoteTally
	statuses []StatusChange
	notices  []AuthorNotice
}

func (r *recordingEvents) SuggestionCreated(_ context.Context, s types.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, s)
	return nil
}

func (r *recordingEvents) VotesChanged(_ context.Context, _ string, tally types.VoteTally) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes = append(r.votes, tally)
	return nil
}

func (r *recordingEvents) StatusChanged(_ context.Context, change StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, change)
	return nil
}

func (r *recordingEvents) NotifyAuthor(_ context.Context, notice AuthorNotice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
	return nil
}

// stubRoles answers role checks from a fixed allow set keyed by userID.
type stubRoles map[string]bool

func (s stubRoles) HasRole(_, userID, _ string) bool { return s[userID] }
