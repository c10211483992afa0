package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/trenny-dev/suggestbot/src/suggestions"
	"github.com/trenny-dev/suggestbot/src/types"
)

func (b *Bot) handleSuggest(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	opts := optionMap(data.Options)

	req := suggestions.SubmitRequest{
		GuildID:  i.GuildID,
		AuthorID: interactionUserID(i),
	}
	if opt, ok := opts["suggestion"]; ok {
		req.Content = opt.StringValue()
	}
	if opt, ok := opts["category"]; ok {
		req.Category = opt.StringValue()
	}
	if opt, ok := opts["priority"]; ok {
		req.Priority = types.Priority(opt.StringValue())
	}
	if opt, ok := opts["anonymous"]; ok {
		req.Anonymous = opt.BoolValue()
	}
	if opt, ok := opts["attachment"]; ok && data.Resolved != nil {
		if att, found := data.Resolved.Attachments[opt.Value.(string)]; found {
			req.AttachmentURL = att.URL
		}
	}

	ctx, cancel := context.WithTimeout(b.ctx, 10*time.Second)
	defer cancel()

	created, err := b.engine.Submit(ctx, req)
	if err != nil {
		respondEphemeral(s, i, submitErrorMessage(err))
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("✅ Your suggestion has been submitted! ID: **%s**", created.ID))
}

func submitErrorMessage(err error) string {
	var content *suggestions.ContentRejectedError
	var cooldown *suggestions.CooldownError

	switch {
	case errors.Is(err, suggestions.ErrNotConfigured):
		return "The suggestion system is not set up on this server yet. Ask an administrator to configure a suggestion channel."
	case errors.Is(err, suggestions.ErrRateLimited):
		return "You have reached the daily suggestion limit. Try again tomorrow."
	case errors.As(err, &content):
		return "Your suggestion was rejected: " + content.Reason
	case errors.Is(err, suggestions.ErrForbidden):
		return "You do not have the role required to make suggestions."
	case errors.As(err, &cooldown):
		mins := (cooldown.SecondsRemaining() + 59) / 60
		return fmt.Sprintf("You are on cooldown. Please wait %d more minute(s) before suggesting again.", mins)
	case errors.Is(err, suggestions.ErrInvalidCategory):
		return "That category does not exist on this server."
	default:
		log.Printf("suggest: %v", err)
		return "Something went wrong while saving your suggestion. Please try again later."
	}
}
