package data

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/trenny-dev/suggestbot/src/suggestions"
	"github.com/trenny-dev/suggestbot/src/types"
)

const streamEvents = "suggestbot.events"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// StreamPublisher mirrors lifecycle events onto a Redis stream so external
// consumers (dashboards, relays) can follow along. It satisfies
// suggestions.Events.
type StreamPublisher struct {
	rdb *redis.Client
}

func NewStreamPublisher(rdb *redis.Client) *StreamPublisher {
	return &StreamPublisher{rdb: rdb}
}

func (p *StreamPublisher) publish(ctx context.Context, payload map[string]interface{}) error {
	_, err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents,
		Values: payload,
	}).Result()
	return err
}

func (p *StreamPublisher) SuggestionCreated(ctx context.Context, s types.Suggestion) error {
	return p.publish(ctx, map[string]interface{}{
		"event":      "suggestion.created",
		"id":         s.ID,
		"guild":      s.GuildID,
		"author":     s.AuthorUserID,
		"category":   s.Category,
		"priority":   string(s.Priority),
		"anonymous":  s.Anonymous,
		"status":     string(s.Status),
		"content":    s.Content,
		"attachment": s.AttachmentURL,
		"time":       s.CreatedAt.Unix(),
	})
}

func (p *StreamPublisher) VotesChanged(ctx context.Context, id string, tally types.VoteTally) error {
	return p.publish(ctx, map[string]interface{}{
		"event":   "suggestion.voteChanged",
		"id":      id,
		"up":      tally.Up,
		"neutral": tally.Neutral,
		"down":    tally.Down,
	})
}

func (p *StreamPublisher) StatusChanged(ctx context.Context, change suggestions.StatusChange) error {
	return p.publish(ctx, map[string]interface{}{
		"event":  "suggestion.statusChanged",
		"id":     change.Suggestion.ID,
		"guild":  change.Suggestion.GuildID,
		"old":    string(change.OldStatus),
		"new":    string(change.NewStatus),
		"reason": change.Reason,
		"actor":  change.ActorID,
	})
}

func (p *StreamPublisher) NotifyAuthor(ctx context.Context, notice suggestions.AuthorNotice) error {
	return p.publish(ctx, map[string]interface{}{
		"event":  "suggestion.notifyAuthor",
		"id":     notice.Suggestion.ID,
		"guild":  notice.Suggestion.GuildID,
		"author": notice.Suggestion.AuthorUserID,
		"new":    string(notice.NewStatus),
		"reason": notice.Reason,
	})
}
