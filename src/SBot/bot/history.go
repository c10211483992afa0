package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/trenny-dev/suggestbot/src/types"
)

var statusEmoji = map[types.Status]string{
	types.StatusPending:     "🕐",
	types.StatusApproved:    "✅",
	types.StatusDenied:      "❌",
	types.StatusInProgress:  "🔨",
	types.StatusImplemented: "🎉",
	types.StatusOnHold:      "⏸️",
	types.StatusArchived:    "📦",
}

func (b *Bot) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(b.ctx, 10*time.Second)
	defer cancel()

	userID := interactionUserID(i)
	list, err := b.repo.ListByUser(ctx, i.GuildID, userID)
	if err != nil {
		respondEphemeral(s, i, "Could not load your suggestion history.")
		return
	}
	if len(list) == 0 {
		respondEphemeral(s, i, "You have not made any suggestions on this server yet.")
		return
	}

	var sb strings.Builder
	shown := list
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, sug := range shown {
		tally := sug.Tally()
		fmt.Fprintf(&sb, "%s **%s** · %s · 👍 %d 👎 %d\n%s\n\n",
			statusEmoji[sug.Status], sug.ID, sug.Status, tally.Up, tally.Down, truncate(sug.Content, 80))
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Your Suggestions",
		Description: sb.String(),
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d total", len(list))},
	})
}

func (b *Bot) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		respondEphemeral(s, i, "Unknown subcommand.")
		return
	}
	sub := data.Options[0]

	ctx, cancel := context.WithTimeout(b.ctx, 10*time.Second)
	defer cancel()

	switch sub.Name {
	case "server":
		b.serverStats(ctx, s, i)
	case "user":
		target := interactionUserID(i)
		if opts := optionMap(sub.Options); opts["target"] != nil {
			target = opts["target"].UserValue(nil).ID
		}
		b.userStats(ctx, s, i, target)
	case "category":
		b.categoryStats(ctx, s, i)
	default:
		respondEphemeral(s, i, "Unknown subcommand.")
	}
}

func (b *Bot) serverStats(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	gs, err := b.stats.Guild(ctx, i.GuildID, time.Time{})
	if err != nil {
		respondEphemeral(s, i, "Could not load server statistics.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Total:** %d\n", gs.Total)
	fmt.Fprintf(&sb, "%s Pending: %d\n", statusEmoji[types.StatusPending], gs.Pending)
	fmt.Fprintf(&sb, "%s Approved: %d\n", statusEmoji[types.StatusApproved], gs.Approved)
	fmt.Fprintf(&sb, "%s Denied: %d\n", statusEmoji[types.StatusDenied], gs.Denied)
	fmt.Fprintf(&sb, "%s Implemented: %d\n", statusEmoji[types.StatusImplemented], gs.Implemented)
	fmt.Fprintf(&sb, "%s Archived: %d\n", statusEmoji[types.StatusArchived], gs.Archived)

	top, err := b.stats.TopContributors(ctx, i.GuildID, 5)
	if err == nil && len(top) > 0 {
		sb.WriteString("\n**Top contributors**\n")
		for n, c := range top {
			fmt.Fprintf(&sb, "%d. <@%s> — %d suggestion(s), %d approved, %d implemented\n",
				n+1, c.UserID, c.Total, c.Approved, c.Implemented)
		}
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Server Suggestion Statistics",
		Description: sb.String(),
	})
}

func (b *Bot) userStats(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID string) {
	us, err := b.stats.User(ctx, i.GuildID, userID)
	if err != nil {
		respondEphemeral(s, i, "Could not load user statistics.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Suggestions:** %d\n", us.Total)
	fmt.Fprintf(&sb, "**Approved:** %d · **Implemented:** %d\n", us.Approved, us.Implemented)
	fmt.Fprintf(&sb, "**Success rate:** %.0f%%\n", us.SuccessRate*100)
	fmt.Fprintf(&sb, "**Average votes:** %.1f\n", us.AverageVotes)
	fmt.Fprintf(&sb, "**Contribution score:** %d\n", us.ContributionScore)
	if len(us.TopCategories) > 0 {
		names := make([]string, 0, len(us.TopCategories))
		for _, c := range us.TopCategories {
			names = append(names, c.Name)
		}
		fmt.Fprintf(&sb, "**Top categories:** %s\n", strings.Join(names, ", "))
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Suggestion Statistics for <@%s>", userID),
		Description: sb.String(),
	})
}

func (b *Bot) categoryStats(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	cats, err := b.stats.Categories(ctx, i.GuildID)
	if err != nil {
		respondEphemeral(s, i, "Could not load category statistics.")
		return
	}
	if len(cats) == 0 {
		respondEphemeral(s, i, "No suggestions yet.")
		return
	}

	var sb strings.Builder
	for _, c := range cats {
		fmt.Fprintf(&sb, "**%s** — %d suggestion(s), %.0f%% approved\n", c.Name, c.Total, c.ApprovalRate*100)
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Suggestions by Category",
		Description: sb.String(),
	})
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
