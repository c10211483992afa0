package suggestions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/trenny-dev/suggestbot/src/metrics"
	"github.com/trenny-dev/suggestbot/src/types"
)

// RoleChecker answers guild membership questions. Owned by the platform
// layer; the engine only asks whether the author holds the configured role.
type RoleChecker interface {
	HasRole(guildID, userID, roleID string) bool
}

// Engine drives the suggestion lifecycle: the submission pipeline and
// manager status transitions. Archival is its own, time-driven edge.
type Engine struct {
	cfg    *ConfigStore
	repo   *Repository
	mod    *Moderator
	roles  RoleChecker
	events Events
	now    func() time.Time
}

func NewEngine(cfg *ConfigStore, repo *Repository, mod *Moderator, roles RoleChecker, events Events) *Engine {
	if mod == nil {
		mod = NewModerator()
	}
	if events == nil {
		events = NopEvents{}
	}
	return &Engine{
		cfg:    cfg,
		repo:   repo,
		mod:    mod,
		roles:  roles,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type SubmitRequest struct {
	GuildID       string
	AuthorID      string
	Content       string
	Category      string
	Priority      types.Priority
	Anonymous     bool
	AttachmentURL string
}

// Submit runs the full submission pipeline. The checks run in a fixed order
// so the caller sees the most useful refusal first (configuration before a
// rate-limit slot is judged, moderation before the role gate, and so on),
// and every time comparison uses the one snapshot taken at entry.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (types.Suggestion, error) {
	now := e.now()

	cfg, err := e.cfg.Get(ctx, req.GuildID)
	if err != nil {
		return types.Suggestion{}, err
	}
	if cfg.SuggestionChannelID == "" {
		metrics.SubmissionsRejected.WithLabelValues("not_configured").Inc()
		return types.Suggestion{}, ErrNotConfigured
	}

	if cfg.MaxSuggestionsPerDay > 0 {
		n, err := e.repo.CountSince(ctx, req.GuildID, req.AuthorID, now.Add(-24*time.Hour))
		if err != nil {
			return types.Suggestion{}, err
		}
		if n >= int64(cfg.MaxSuggestionsPerDay) {
			metrics.SubmissionsRejected.WithLabelValues("rate_limited").Inc()
			return types.Suggestion{}, ErrRateLimited
		}
	}

	verdict := e.mod.Moderate(req.Content)
	if !verdict.Allowed {
		metrics.SubmissionsRejected.WithLabelValues("content").Inc()
		return types.Suggestion{}, &ContentRejectedError{Reason: verdict.Reason}
	}

	if cfg.SuggestionRoleID != "" {
		if e.roles == nil || !e.roles.HasRole(req.GuildID, req.AuthorID, cfg.SuggestionRoleID) {
			metrics.SubmissionsRejected.WithLabelValues("forbidden").Inc()
			return types.Suggestion{}, ErrForbidden
		}
	}

	if cfg.CooldownMinutes > 0 {
		last, err := e.repo.LastByUser(ctx, req.GuildID, req.AuthorID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return types.Suggestion{}, err
		}
		if err == nil {
			window := time.Duration(cfg.CooldownMinutes) * time.Minute
			if elapsed := now.Sub(last.CreatedAt); elapsed < window {
				metrics.SubmissionsRejected.WithLabelValues("cooldown").Inc()
				return types.Suggestion{}, &CooldownError{Remaining: window - elapsed}
			}
		}
	}

	category, err := resolveCategory(req.Category, cfg)
	if err != nil {
		metrics.SubmissionsRejected.WithLabelValues("category").Inc()
		return types.Suggestion{}, err
	}

	priority := req.Priority
	if priority == "" {
		priority = types.PriorityMedium
	}
	if !priority.Valid() {
		priority = types.PriorityMedium
	}

	anonymous := req.Anonymous && cfg.AllowAnonymous

	s := types.Suggestion{
		GuildID:       req.GuildID,
		AuthorUserID:  req.AuthorID,
		ChannelID:     cfg.SuggestionChannelID,
		Content:       verdict.Normalized,
		Category:      category,
		Priority:      priority,
		Anonymous:     anonymous,
		AttachmentURL: req.AttachmentURL,
		Status:        types.StatusPending,
		CreatedAt:     now,
		LastUpdateAt:  now,
	}
	if _, err := e.repo.Create(ctx, &s); err != nil {
		return types.Suggestion{}, err
	}

	metrics.SuggestionsCreated.Inc()
	if err := e.events.SuggestionCreated(ctx, s); err != nil {
		log.Printf("suggestions: created event for %s: %v", s.ID, err)
	}
	return s, nil
}

// SetStatus applies a manager-issued transition. Any status edge is allowed
// except into or out of ARCHIVED: archival belongs to the scheduler, and
// archived is terminal. The author notice is best effort and never fails
// the update.
func (e *Engine) SetStatus(ctx context.Context, id string, status types.Status, reason, actorID string, notifyAuthor bool) (types.Suggestion, error) {
	if status == types.StatusArchived || !status.Valid() {
		return types.Suggestion{}, ErrInvalidStatus
	}
	if reason == "" {
		reason = "No reason provided"
	}

	updated, old, err := e.repo.UpdateStatus(ctx, id, status, reason, actorID, e.now())
	if err != nil {
		return types.Suggestion{}, err
	}

	metrics.StatusChanges.WithLabelValues(string(status)).Inc()

	change := StatusChange{Suggestion: updated, OldStatus: old, NewStatus: status, Reason: reason, ActorID: actorID}
	if err := e.events.StatusChanged(ctx, change); err != nil {
		log.Printf("suggestions: statusChanged event for %s: %v", id, err)
	}

	if notifyAuthor && !updated.Anonymous {
		notice := AuthorNotice{Suggestion: updated, OldStatus: old, NewStatus: status, Reason: reason}
		if err := e.events.NotifyAuthor(ctx, notice); err != nil {
			log.Printf("suggestions: notifyAuthor event for %s: %v", id, err)
		}
	}
	return updated, nil
}

// Archive sweeps every auto-archiving guild, moving suggestions untouched
// for the configured number of days into the terminal ARCHIVED state.
// Returns how many were archived.
func (e *Engine) Archive(ctx context.Context) (int, error) {
	cfgs, err := e.cfg.AutoArchiving(ctx)
	if err != nil {
		return 0, err
	}

	now := e.now()
	archived := 0
	for _, cfg := range cfgs {
		cutoff := now.Add(-time.Duration(cfg.AutoArchiveDays) * 24 * time.Hour)
		stale, err := e.repo.ListInactive(ctx, cfg.GuildID, cutoff)
		if err != nil {
			return archived, err
		}

		reason := fmt.Sprintf("Auto-archived after %d days of inactivity", cfg.AutoArchiveDays)
		for _, s := range stale {
			updated, old, err := e.repo.UpdateStatus(ctx, s.ID, types.StatusArchived, reason, "system", now)
			if errors.Is(err, ErrArchived) || errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return archived, err
			}
			archived++
			metrics.SuggestionsArchived.Inc()

			change := StatusChange{Suggestion: updated, OldStatus: old, NewStatus: types.StatusArchived, Reason: reason, ActorID: "system"}
			if err := e.events.StatusChanged(ctx, change); err != nil {
				log.Printf("suggestions: statusChanged event for %s: %v", s.ID, err)
			}
		}
	}
	return archived, nil
}

func resolveCategory(requested string, cfg types.GuildConfig) (string, error) {
	set := cfg.CategorySet()
	if requested == "" {
		for _, c := range set {
			if c == "other" {
				return "other", nil
			}
		}
		return set[0], nil
	}
	for _, c := range set {
		if c == requested {
			return requested, nil
		}
	}
	return "", ErrInvalidCategory
}
