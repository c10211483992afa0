package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/trenny-dev/suggestbot/src/suggestions"
	"github.com/trenny-dev/suggestbot/src/types"
)

// Gateway consumes lifecycle events and renders them on Discord: it posts
// the suggestion embed, keeps it edited as votes and statuses change, and
// DMs authors. It records the posted message locator back into the
// repository so later edits can find it.
type Gateway struct {
	session *discordgo.Session
	repo    *suggestions.Repository
	cfg     *suggestions.ConfigStore
}

func NewGateway(session *discordgo.Session, repo *suggestions.Repository, cfg *suggestions.ConfigStore) *Gateway {
	return &Gateway{session: session, repo: repo, cfg: cfg}
}

func (g *Gateway) SuggestionCreated(ctx context.Context, s types.Suggestion) error {
	cfg, err := g.cfg.Get(ctx, s.GuildID)
	if err != nil {
		return err
	}

	name, avatar := g.authorIdentity(s)
	msg, err := g.session.ChannelMessageSendComplex(s.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{SuggestionEmbed(s, cfg, name, avatar)},
		Components: VoteButtons(s.ID),
	})
	if err != nil {
		return fmt.Errorf("post suggestion %s: %w", s.ID, err)
	}

	if err := g.repo.SetMessageRef(ctx, s.ID, msg.ChannelID, msg.ID); err != nil {
		return err
	}

	if s.Priority == types.PriorityHigh && cfg.LogChannelID != "" {
		_, err := g.session.ChannelMessageSend(cfg.LogChannelID,
			fmt.Sprintf("🔔 High priority suggestion received! ID: %s", s.ID))
		if err != nil {
			log.Printf("discord: high priority alert for %s: %v", s.ID, err)
		}
	}
	return nil
}

func (g *Gateway) VotesChanged(ctx context.Context, suggestionID string, _ types.VoteTally) error {
	return g.refreshPost(ctx, suggestionID)
}

func (g *Gateway) StatusChanged(ctx context.Context, change suggestions.StatusChange) error {
	return g.refreshPost(ctx, change.Suggestion.ID)
}

func (g *Gateway) NotifyAuthor(ctx context.Context, notice suggestions.AuthorNotice) error {
	cfg, err := g.cfg.Get(ctx, notice.Suggestion.GuildID)
	if err != nil {
		return err
	}
	if !cfg.DMNotifications {
		return nil
	}

	ch, err := g.session.UserChannelCreate(notice.Suggestion.AuthorUserID)
	if err != nil {
		return fmt.Errorf("open DM with %s: %w", notice.Suggestion.AuthorUserID, err)
	}
	_, err = g.session.ChannelMessageSendEmbed(ch.ID,
		StatusDMEmbed(notice.Suggestion, notice.NewStatus, notice.Reason))
	if err != nil {
		return fmt.Errorf("notify author of %s: %w", notice.Suggestion.ID, err)
	}
	return nil
}

// refreshPost re-renders the channel post from the current record.
func (g *Gateway) refreshPost(ctx context.Context, id string) error {
	s, err := g.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s.MessageID == "" {
		// Posted before the gateway recorded the locator, nothing to edit.
		return nil
	}

	cfg, err := g.cfg.Get(ctx, s.GuildID)
	if err != nil {
		return err
	}

	name, avatar := g.authorIdentity(s)
	embed := SuggestionEmbed(s, cfg, name, avatar)
	_, err = g.session.ChannelMessageEditEmbed(s.ChannelID, s.MessageID, embed)
	if err != nil {
		return fmt.Errorf("edit suggestion post %s: %w", id, err)
	}
	return nil
}

func (g *Gateway) authorIdentity(s types.Suggestion) (name, avatar string) {
	if s.Anonymous {
		return "", ""
	}
	user, err := g.session.User(s.AuthorUserID)
	if err != nil {
		log.Printf("discord: resolve author %s: %v", s.AuthorUserID, err)
		return "", ""
	}
	return user.Username, user.AvatarURL("")
}
