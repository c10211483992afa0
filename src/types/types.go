package types

import (
	"strings"
	"time"
)

// Suggestion lifecycle states.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusApproved    Status = "APPROVED"
	StatusDenied      Status = "DENIED"
	StatusInProgress  Status = "IN_PROGRESS"
	StatusImplemented Status = "IMPLEMENTED"
	StatusOnHold      Status = "ON_HOLD"
	StatusArchived    Status = "ARCHIVED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied, StatusInProgress,
		StatusImplemented, StatusOnHold, StatusArchived:
		return true
	}
	return false
}

// Terminal reports whether no further manager transition is allowed.
func (s Status) Terminal() bool { return s == StatusArchived }

// A voter's stance on a suggestion.
type VoteKind string

const (
	VoteUp      VoteKind = "up"
	VoteNeutral VoteKind = "neutral"
	VoteDown    VoteKind = "down"
)

func (k VoteKind) Valid() bool {
	return k == VoteUp || k == VoteNeutral || k == VoteDown
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Per-guild configuration
type GuildConfig struct {
	GuildID              string `gorm:"primaryKey;size:64"`
	SuggestionChannelID  string `gorm:"size:64"`
	EmbedColor           int    `gorm:"default:0"`
	Categories           string `gorm:"size:512"` // comma separated, empty means defaults
	AllowAnonymous       bool
	ManagerRoleID        string `gorm:"size:64"`
	SuggestionRoleID     string `gorm:"size:64"`
	CooldownMinutes      int    `gorm:"default:0"`
	MaxSuggestionsPerDay int    `gorm:"default:0"` // 0 = unlimited
	AutoArchiveDays      int    `gorm:"default:0"` // 0 = never
	DMNotifications      bool
	LogChannelID         string `gorm:"size:64"`
	EmbedTemplate        string `gorm:"type:text"`
	LastUpdated          time.Time
	UpdatedBy            string `gorm:"size:64"`
}

// CategorySet returns the bounded category list for this guild.
func (g GuildConfig) CategorySet() []string {
	if strings.TrimSpace(g.Categories) == "" {
		return DefaultCategories()
	}
	var out []string
	for _, c := range strings.Split(g.Categories, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return DefaultCategories()
	}
	return out
}

func DefaultCategories() []string {
	return []string{"feature", "bug", "improvement", "other"}
}

// Suggestions
type Suggestion struct {
	ID               string `gorm:"primaryKey;size:8"`
	GuildID          string `gorm:"index;size:64;not null"`
	AuthorUserID     string `gorm:"index:idx_guild_author;size:64;not null"`
	ChannelID        string `gorm:"size:64"`
	MessageID        string `gorm:"size:64"`
	Content          string `gorm:"type:text;not null"`
	Category         string `gorm:"size:32"`
	Priority         Priority `gorm:"size:8"`
	Anonymous        bool   `gorm:"default:false"`
	AttachmentURL    string `gorm:"size:512"`
	Status           Status `gorm:"size:16;index"`
	VotesUp          int    `gorm:"default:0"`
	VotesNeutral     int    `gorm:"default:0"`
	VotesDown        int    `gorm:"default:0"`
	CreatedAt        time.Time `gorm:"index"`
	LastUpdateBy     string `gorm:"size:64"`
	LastUpdateReason string `gorm:"size:512"`
	LastUpdateAt     time.Time
}

func (s Suggestion) Tally() VoteTally {
	return VoteTally{Up: s.VotesUp, Neutral: s.VotesNeutral, Down: s.VotesDown}
}

// One row per active vote; the pair is the primary key so a voter can
// hold at most one stance per suggestion.
type SuggestionVote struct {
	SuggestionID string   `gorm:"primaryKey;size:8"`
	VoterUserID  string   `gorm:"primaryKey;size:64"`
	Kind         VoteKind `gorm:"size:8;not null"`
	CastAt       time.Time
}

// Materialized aggregate over a suggestion's votes.
type VoteTally struct {
	Up      int `json:"up"`
	Neutral int `json:"neutral"`
	Down    int `json:"down"`
}

func (t VoteTally) Total() int { return t.Up + t.Neutral + t.Down }

// Deployment-wide settings (name/value), mirrored into env fallbacks at boot.
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:32;not null"`
	Value string `gorm:"size:256;not null"`
}
