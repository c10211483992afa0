package suggestions

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestConfigDefaultsOnAbsence(t *testing.T) {
	store := NewConfigStore(newTestDB(t))

	cfg, err := store.Get(context.Background(), "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.GuildID != "g1" {
		t.Fatalf("guild id: %q", cfg.GuildID)
	}
	if cfg.SuggestionChannelID != "" {
		t.Fatal("unconfigured guild must have no suggestion channel")
	}
	if !cfg.AllowAnonymous || !cfg.DMNotifications {
		t.Fatalf("defaults wrong: %+v", cfg)
	}
	if cfg.CooldownMinutes != 0 || cfg.MaxSuggestionsPerDay != 0 || cfg.AutoArchiveDays != 0 {
		t.Fatalf("limits should default to off: %+v", cfg)
	}

	got := cfg.CategorySet()
	want := []string{"feature", "bug", "improvement", "other"}
	if len(got) != len(want) {
		t.Fatalf("default categories: %v", got)
	}
	for n := range want {
		if got[n] != want[n] {
			t.Fatalf("default categories: %v", got)
		}
	}
}

func TestConfigPartialMerge(t *testing.T) {
	store := NewConfigStore(newTestDB(t))
	ctx := context.Background()

	channel := "chan-1"
	cooldown := 15
	if _, err := store.Set(ctx, "g1", ConfigPatch{
		SuggestionChannelID: &channel,
		CooldownMinutes:     &cooldown,
	}, "admin-1"); err != nil {
		t.Fatalf("first set: %v", err)
	}

	// Second patch touches other fields only.
	color := 0x00FF00
	if _, err := store.Set(ctx, "g1", ConfigPatch{
		EmbedColor: &color,
		Categories: []string{"gameplay", "economy"},
	}, "admin-2"); err != nil {
		t.Fatalf("second set: %v", err)
	}

	cfg, err := store.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.SuggestionChannelID != channel || cfg.CooldownMinutes != cooldown {
		t.Fatalf("earlier fields lost: %+v", cfg)
	}
	if cfg.EmbedColor != color || cfg.Categories != "gameplay,economy" {
		t.Fatalf("later fields not applied: %+v", cfg)
	}
	if cfg.UpdatedBy != "admin-2" || cfg.LastUpdated.IsZero() {
		t.Fatalf("audit fields not stamped: %+v", cfg)
	}
}

func TestConfigFirstWritePersistsFalse(t *testing.T) {
	store := NewConfigStore(newTestDB(t))
	ctx := context.Background()

	// The very first write for a guild inserts the row; explicit false must
	// survive the insert even though the fields default to true.
	off := false
	if _, err := store.Set(ctx, "g1", ConfigPatch{
		AllowAnonymous:  &off,
		DMNotifications: &off,
	}, "admin-1"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg, err := store.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.AllowAnonymous {
		t.Fatal("allow-anonymous=false lost on first write")
	}
	if cfg.DMNotifications {
		t.Fatal("dm-notifications=false lost on first write")
	}
}

func TestConfigValidation(t *testing.T) {
	store := NewConfigStore(newTestDB(t))
	ctx := context.Background()

	set := func(p ConfigPatch) error {
		_, err := store.Set(ctx, "g1", p, "admin")
		return err
	}

	neg := -1
	huge := 1441
	badDays := 9
	long := strings.Repeat("x", 33)

	cases := []struct {
		name  string
		patch ConfigPatch
	}{
		{"negative cooldown", ConfigPatch{CooldownMinutes: &neg}},
		{"cooldown over a day", ConfigPatch{CooldownMinutes: &huge}},
		{"negative daily limit", ConfigPatch{MaxSuggestionsPerDay: &neg}},
		{"odd archive period", ConfigPatch{AutoArchiveDays: &badDays}},
		{"empty category", ConfigPatch{Categories: []string{"ok", " "}}},
		{"overlong category", ConfigPatch{Categories: []string{long}}},
		{"comma in category", ConfigPatch{Categories: []string{"a,b"}}},
	}
	for _, tc := range cases {
		err := set(tc.patch)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: want ErrInvalidConfig, got %v", tc.name, err)
		}
	}

	// Boundary values are fine.
	max := 1440
	days := 14
	if err := set(ConfigPatch{CooldownMinutes: &max, AutoArchiveDays: &days}); err != nil {
		t.Fatalf("boundary values should pass: %v", err)
	}
}

func TestConfigAutoArchivingList(t *testing.T) {
	store := NewConfigStore(newTestDB(t))
	ctx := context.Background()

	days := 7
	configureGuild(t, store, "g1", func(p *ConfigPatch) { p.AutoArchiveDays = &days })
	configureGuild(t, store, "g2", nil)

	cfgs, err := store.AutoArchiving(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cfgs) != 1 || cfgs[0].GuildID != "g1" {
		t.Fatalf("want only g1, got %+v", cfgs)
	}
}
