package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/trenny-dev/suggestbot/src/discord"
	"github.com/trenny-dev/suggestbot/src/suggestions"
	"github.com/trenny-dev/suggestbot/src/types"
)

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	kind, id, ok := discord.ParseVoteButton(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, 10*time.Second)
	defer cancel()

	tally, err := b.aggregator.Cast(ctx, suggestions.VoteRequest{
		SuggestionID: id,
		VoterUserID:  interactionUserID(i),
		Kind:         kind,
	})
	if err != nil {
		switch {
		case errors.Is(err, suggestions.ErrNotFound):
			respondEphemeral(s, i, "That suggestion no longer exists.")
		case errors.Is(err, suggestions.ErrArchived):
			respondEphemeral(s, i, "Voting is closed on archived suggestions.")
		default:
			log.Printf("vote: %v", err)
			respondEphemeral(s, i, "Something went wrong while recording your vote.")
		}
		return
	}

	respondEphemeral(s, i, voteReply(kind, tally))
}

func voteReply(kind types.VoteKind, tally types.VoteTally) string {
	return fmt.Sprintf("Vote recorded (%s). Current tally: 👍 %d · 🤔 %d · 👎 %d",
		kind, tally.Up, tally.Neutral, tally.Down)
}
