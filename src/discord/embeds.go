package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/trenny-dev/suggestbot/src/types"
)

var statusColors = map[types.Status]int{
	types.StatusApproved:    0x2ecc71,
	types.StatusDenied:      0xe74c3c,
	types.StatusInProgress:  0x3498db,
	types.StatusImplemented: 0xf1c40f,
	types.StatusPending:     0x95a5a6,
	types.StatusOnHold:      0xe67e22,
	types.StatusArchived:    0x34495e,
}

var categoryColors = map[string]int{
	"feature":     0x2ecc71,
	"bug":         0xe74c3c,
	"improvement": 0x3498db,
	"other":       0x95a5a6,
}

const fallbackColor = 0x7289da

// EmbedColor picks the post color: explicit guild color, then category
// color for pending posts, then status color.
func EmbedColor(s types.Suggestion, cfg types.GuildConfig) int {
	if s.Status != types.StatusPending {
		if c, ok := statusColors[s.Status]; ok {
			return c
		}
	}
	if cfg.EmbedColor != 0 {
		return cfg.EmbedColor
	}
	if c, ok := categoryColors[s.Category]; ok {
		return c
	}
	return fallbackColor
}

func tallyLine(t types.VoteTally) string {
	return fmt.Sprintf("```\n👍 %d | 🤔 %d | 👎 %d\n```", t.Up, t.Neutral, t.Down)
}

// SuggestionEmbed renders the channel post for a suggestion. authorName and
// authorAvatar are ignored for anonymous submissions.
func SuggestionEmbed(s types.Suggestion, cfg types.GuildConfig, authorName, authorAvatar string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("💡 Suggestion #%s", s.ID),
		Description: s.Content,
		Color:       EmbedColor(s, cfg),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📋 Category", Value: fmt.Sprintf("`%s`", strings.ToUpper(s.Category)), Inline: true},
			{Name: "🎯 Priority", Value: fmt.Sprintf("`%s`", strings.ToUpper(string(s.Priority))), Inline: true},
			{Name: "📊 Status", Value: fmt.Sprintf("`%s`", s.Status), Inline: true},
			{Name: "📈 Statistics", Value: tallyLine(s.Tally())},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "ID: " + s.ID},
		Timestamp: s.CreatedAt.Format(time.RFC3339),
	}

	if s.LastUpdateReason != "" && s.Status != types.StatusPending {
		reason := &discordgo.MessageEmbedField{Name: "💬 Reason", Value: s.LastUpdateReason}
		// Keep statistics last.
		fields := embed.Fields
		embed.Fields = append(fields[:3:3], reason, fields[3])
	}

	if !s.Anonymous && authorName != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: authorName, IconURL: authorAvatar}
	}
	if s.AttachmentURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: s.AttachmentURL}
	}
	return embed
}

// VoteButtons builds the three vote buttons for a suggestion post.
func VoteButtons(id string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					CustomID: "upvote_" + id,
					Label:    "Upvote",
					Emoji:    &discordgo.ComponentEmoji{Name: "👍"},
					Style:    discordgo.PrimaryButton,
				},
				discordgo.Button{
					CustomID: "neutral_" + id,
					Label:    "Neutral",
					Emoji:    &discordgo.ComponentEmoji{Name: "🤔"},
					Style:    discordgo.SecondaryButton,
				},
				discordgo.Button{
					CustomID: "downvote_" + id,
					Label:    "Downvote",
					Emoji:    &discordgo.ComponentEmoji{Name: "👎"},
					Style:    discordgo.PrimaryButton,
				},
			},
		},
	}
}

// StatusDMEmbed renders the author notification for a status change.
func StatusDMEmbed(s types.Suggestion, newStatus types.Status, reason string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Suggestion Status Updated",
		Description: fmt.Sprintf("Your suggestion #%s has been updated!", s.ID),
		Color:       statusColors[newStatus],
		Fields: []*discordgo.MessageEmbedField{
			{Name: "New Status", Value: string(newStatus), Inline: true},
			{Name: "Reason", Value: reason, Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
