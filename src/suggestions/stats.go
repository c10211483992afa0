package suggestions

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/trenny-dev/suggestbot/src/types"
)

// Stats answers the read-only reporting queries behind /suggestion-stats and
// the dashboard endpoints. It reads the same tables the repository owns but
// never mutates them.
type Stats struct {
	db *gorm.DB
}

func NewStats(db *gorm.DB) *Stats {
	return &Stats{db: db}
}

type GuildStats struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	Approved    int64 `json:"approved"`
	Denied      int64 `json:"denied"`
	Implemented int64 `json:"implemented"`
	Archived    int64 `json:"archived"`
}

type UserStats struct {
	Total             int64           `json:"total"`
	Approved          int64           `json:"approved"`
	Implemented       int64           `json:"implemented"`
	SuccessRate       float64         `json:"successRate"`
	AverageVotes      float64         `json:"averageVotes"`
	ContributionScore int64           `json:"contributionScore"`
	TopCategories     []CategoryCount `json:"topCategories"`
	RecentActivity    []Activity      `json:"recentActivity"`
}

type CategoryCount struct {
	Name         string  `json:"name"`
	Total        int64   `json:"total"`
	ApprovalRate float64 `json:"approvalRate"`
}

type Activity struct {
	SuggestionID string       `json:"suggestionId"`
	Status       types.Status `json:"status"`
	At           time.Time    `json:"at"`
}

type Contributor struct {
	UserID      string `json:"userId"`
	Total       int64  `json:"total"`
	Approved    int64  `json:"approved"`
	Implemented int64  `json:"implemented"`
}

type TrendPoint struct {
	Date     string `json:"date"`
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Guild returns status totals for a guild since the given time (zero time
// means all time).
func (s *Stats) Guild(ctx context.Context, guildID string, since time.Time) (GuildStats, error) {
	q := s.db.WithContext(ctx).Model(&types.Suggestion{}).Where("guild_id = ?", guildID)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}

	type row struct {
		Status types.Status
		Count  int64
	}
	var rows []row
	if err := q.Select("status, count(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return GuildStats{}, storageErr("guild stats", err)
	}

	var out GuildStats
	for _, r := range rows {
		out.Total += r.Count
		switch r.Status {
		case types.StatusPending:
			out.Pending = r.Count
		case types.StatusApproved:
			out.Approved = r.Count
		case types.StatusDenied:
			out.Denied = r.Count
		case types.StatusImplemented:
			out.Implemented = r.Count
		case types.StatusArchived:
			out.Archived = r.Count
		}
	}
	return out, nil
}

// User summarizes one author's track record in a guild. Contribution score
// weighs approvals double and implementations triple.
func (s *Stats) User(ctx context.Context, guildID, userID string) (UserStats, error) {
	var rows []types.Suggestion
	err := s.db.WithContext(ctx).
		Where("guild_id = ? AND author_user_id = ?", guildID, userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return UserStats{}, storageErr("user stats", err)
	}

	var out UserStats
	var voteSum int64
	byCategory := map[string]int64{}
	for _, r := range rows {
		out.Total++
		switch r.Status {
		case types.StatusApproved:
			out.Approved++
		case types.StatusImplemented:
			out.Implemented++
		}
		voteSum += int64(r.Tally().Total())
		byCategory[r.Category]++

		if len(out.RecentActivity) < 5 {
			out.RecentActivity = append(out.RecentActivity, Activity{
				SuggestionID: r.ID, Status: r.Status, At: r.CreatedAt,
			})
		}
	}

	if out.Total > 0 {
		out.SuccessRate = float64(out.Approved+out.Implemented) / float64(out.Total)
		out.AverageVotes = float64(voteSum) / float64(out.Total)
	}
	out.ContributionScore = out.Approved*2 + out.Implemented*3

	for name, n := range byCategory {
		out.TopCategories = append(out.TopCategories, CategoryCount{Name: name, Total: n})
	}
	sort.Slice(out.TopCategories, func(i, j int) bool {
		if out.TopCategories[i].Total != out.TopCategories[j].Total {
			return out.TopCategories[i].Total > out.TopCategories[j].Total
		}
		return out.TopCategories[i].Name < out.TopCategories[j].Name
	})
	return out, nil
}

// Categories breaks a guild's suggestions down by category with the share
// of approved ones.
func (s *Stats) Categories(ctx context.Context, guildID string) ([]CategoryCount, error) {
	type row struct {
		Category string
		Total    int64
		Approved int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&types.Suggestion{}).
		Select("category, count(*) as total, sum(case when status = ? then 1 else 0 end) as approved", types.StatusApproved).
		Where("guild_id = ?", guildID).
		Group("category").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr("category stats", err)
	}

	out := make([]CategoryCount, 0, len(rows))
	for _, r := range rows {
		c := CategoryCount{Name: r.Category, Total: r.Total}
		if r.Total > 0 {
			c.ApprovalRate = float64(r.Approved) / float64(r.Total)
		}
		out = append(out, c)
	}
	return out, nil
}

// TopContributors lists the most prolific authors in a guild.
func (s *Stats) TopContributors(ctx context.Context, guildID string, limit int) ([]Contributor, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []Contributor
	err := s.db.WithContext(ctx).Model(&types.Suggestion{}).
		Select("author_user_id as user_id, count(*) as total, "+
			"sum(case when status = ? then 1 else 0 end) as approved, "+
			"sum(case when status = ? then 1 else 0 end) as implemented",
			types.StatusApproved, types.StatusImplemented).
		Where("guild_id = ?", guildID).
		Group("author_user_id").
		Order("total DESC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, storageErr("top contributors", err)
	}
	return out, nil
}

// Trends buckets submissions since the given time by day and category (zero
// time means the last 30 days).
func (s *Stats) Trends(ctx context.Context, guildID string, since time.Time) ([]TrendPoint, error) {
	if since.IsZero() {
		since = time.Now().UTC().Add(-30 * 24 * time.Hour)
	}
	var out []TrendPoint
	err := s.db.WithContext(ctx).Model(&types.Suggestion{}).
		Select("date(created_at) as date, category, count(*) as count").
		Where("guild_id = ? AND created_at >= ?", guildID, since).
		Group("date(created_at), category").
		Order("date DESC").
		Scan(&out).Error
	if err != nil {
		return nil, storageErr("trends", err)
	}
	return out, nil
}
