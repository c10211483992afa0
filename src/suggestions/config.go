package suggestions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/trenny-dev/suggestbot/src/types"
)

const (
	maxCooldownMinutes = 1440
	maxCategoryNameLen = 32
)

var allowedArchiveDays = map[int]bool{0: true, 7: true, 14: true, 30: true}

// ConfigStore persists per-guild settings. A guild without a stored row gets
// an all-defaults config; the unset suggestion channel blocks submission.
type ConfigStore struct {
	db *gorm.DB
}

func NewConfigStore(db *gorm.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// ConfigPatch carries a partial update; nil fields leave the stored value
// unchanged.
type ConfigPatch struct {
	SuggestionChannelID  *string
	EmbedColor           *int
	Categories           []string
	AllowAnonymous       *bool
	ManagerRoleID        *string
	SuggestionRoleID     *string
	CooldownMinutes      *int
	MaxSuggestionsPerDay *int
	AutoArchiveDays      *int
	DMNotifications      *bool
	LogChannelID         *string
	EmbedTemplate        *string
}

func defaultConfig(guildID string) types.GuildConfig {
	return types.GuildConfig{
		GuildID:         guildID,
		AllowAnonymous:  true,
		DMNotifications: true,
	}
}

// Get returns the guild's config, or defaults when none is stored. It fails
// only on storage errors, never on absence.
func (s *ConfigStore) Get(ctx context.Context, guildID string) (types.GuildConfig, error) {
	var cfg types.GuildConfig
	err := s.db.WithContext(ctx).First(&cfg, "guild_id = ?", guildID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return defaultConfig(guildID), nil
	}
	if err != nil {
		return types.GuildConfig{}, storageErr("load guild config", err)
	}
	return cfg, nil
}

// Set merges the patch into the stored config, stamping LastUpdated and
// UpdatedBy. The read-modify-write runs in a transaction so concurrent
// administrator updates do not interleave partial writes.
func (s *ConfigStore) Set(ctx context.Context, guildID string, p ConfigPatch, updatedBy string) (types.GuildConfig, error) {
	if err := validatePatch(p); err != nil {
		return types.GuildConfig{}, err
	}

	var cfg types.GuildConfig
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&cfg, "guild_id = ?", guildID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cfg = defaultConfig(guildID)
		} else if err != nil {
			return err
		}

		applyPatch(&cfg, p)
		cfg.LastUpdated = time.Now().UTC()
		cfg.UpdatedBy = updatedBy
		return tx.Save(&cfg).Error
	})
	if err != nil {
		return types.GuildConfig{}, storageErr("save guild config", err)
	}
	return cfg, nil
}

// AutoArchiving lists configs with auto-archival enabled, for the archiver.
func (s *ConfigStore) AutoArchiving(ctx context.Context) ([]types.GuildConfig, error) {
	var cfgs []types.GuildConfig
	if err := s.db.WithContext(ctx).Where("auto_archive_days > 0").Find(&cfgs).Error; err != nil {
		return nil, storageErr("list auto-archiving configs", err)
	}
	return cfgs, nil
}

func applyPatch(cfg *types.GuildConfig, p ConfigPatch) {
	if p.SuggestionChannelID != nil {
		cfg.SuggestionChannelID = *p.SuggestionChannelID
	}
	if p.EmbedColor != nil {
		cfg.EmbedColor = *p.EmbedColor
	}
	if p.Categories != nil {
		cfg.Categories = strings.Join(p.Categories, ",")
	}
	if p.AllowAnonymous != nil {
		cfg.AllowAnonymous = *p.AllowAnonymous
	}
	if p.ManagerRoleID != nil {
		cfg.ManagerRoleID = *p.ManagerRoleID
	}
	if p.SuggestionRoleID != nil {
		cfg.SuggestionRoleID = *p.SuggestionRoleID
	}
	if p.CooldownMinutes != nil {
		cfg.CooldownMinutes = *p.CooldownMinutes
	}
	if p.MaxSuggestionsPerDay != nil {
		cfg.MaxSuggestionsPerDay = *p.MaxSuggestionsPerDay
	}
	if p.AutoArchiveDays != nil {
		cfg.AutoArchiveDays = *p.AutoArchiveDays
	}
	if p.DMNotifications != nil {
		cfg.DMNotifications = *p.DMNotifications
	}
	if p.LogChannelID != nil {
		cfg.LogChannelID = *p.LogChannelID
	}
	if p.EmbedTemplate != nil {
		cfg.EmbedTemplate = *p.EmbedTemplate
	}
}

func validatePatch(p ConfigPatch) error {
	if p.CooldownMinutes != nil && (*p.CooldownMinutes < 0 || *p.CooldownMinutes > maxCooldownMinutes) {
		return &ConfigError{Reason: fmt.Sprintf("cooldown must be between 0 and %d minutes", maxCooldownMinutes)}
	}
	if p.MaxSuggestionsPerDay != nil && *p.MaxSuggestionsPerDay < 0 {
		return &ConfigError{Reason: "daily suggestion limit cannot be negative"}
	}
	if p.AutoArchiveDays != nil && !allowedArchiveDays[*p.AutoArchiveDays] {
		return &ConfigError{Reason: "auto-archive must be never, 7, 14 or 30 days"}
	}
	for _, c := range p.Categories {
		c = strings.TrimSpace(c)
		if c == "" {
			return &ConfigError{Reason: "category names cannot be empty"}
		}
		if len(c) > maxCategoryNameLen {
			return &ConfigError{Reason: fmt.Sprintf("category names must be %d characters or less", maxCategoryNameLen)}
		}
		if strings.Contains(c, ",") {
			return &ConfigError{Reason: "category names cannot contain commas"}
		}
	}
	return nil
}
