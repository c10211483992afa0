// Package discord is the presentation layer: slash command definitions,
// embed rendering, vote button parsing and the event gateway that turns
// lifecycle events into Discord messages.
package discord

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	CommandSuggest = "suggest"
	CommandConfig  = "suggestionconfig"
	CommandManage  = "suggestionmanage"
	CommandHistory = "suggestionhistory"
	CommandStats   = "suggestionstats"
)

var statusChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "✅ Approved", Value: "APPROVED"},
	{Name: "❌ Denied", Value: "DENIED"},
	{Name: "🚧 In Progress", Value: "IN_PROGRESS"},
	{Name: "✨ Implemented", Value: "IMPLEMENTED"},
	{Name: "⏳ Pending", Value: "PENDING"},
	{Name: "⏸️ On Hold", Value: "ON_HOLD"},
}

var manageGuild = int64(discordgo.PermissionManageGuild)
var administrator = int64(discordgo.PermissionAdministrator)

var commandDefinitions = map[string]*discordgo.ApplicationCommand{
	CommandSuggest: {
		Name:        CommandSuggest,
		Description: "Submit a suggestion",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "suggestion",
				Description: "Your suggestion",
				Required:    true,
				MaxLength:   2000,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "category",
				Description: "Suggestion category",
			},
			{
				Type:        discordgo.ApplicationCommandOptionAttachment,
				Name:        "attachment",
				Description: "Add an image or file",
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "anonymous",
				Description: "Submit anonymously",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "priority",
				Description: "Suggestion priority",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Low", Value: "low"},
					{Name: "Medium", Value: "medium"},
					{Name: "High", Value: "high"},
				},
			},
		},
	},
	CommandConfig: {
		Name:                     CommandConfig,
		Description:              "Configure the suggestion system",
		DefaultMemberPermissions: &administrator,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "Suggestion channel",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "color",
				Description: "Embed color HEX",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "categories",
				Description: "Comma-separated categories",
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "anonymous",
				Description: "Allow anonymous suggestions",
			},
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "manager_role",
				Description: "Role that can manage suggestions",
			},
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "suggestion_role",
				Description: "Role required to make suggestions",
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "cooldown",
				Description: "Cooldown between suggestions (minutes)",
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "max_per_day",
				Description: "Maximum suggestions per author per day (0 = unlimited)",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "auto_archive",
				Description: "Auto-archive suggestions after X days",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Never", Value: "never"},
					{Name: "7 days", Value: "7"},
					{Name: "14 days", Value: "14"},
					{Name: "30 days", Value: "30"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "dm_notifications",
				Description: "Send DM notifications for suggestion updates",
			},
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "log_channel",
				Description: "Channel for configuration and alert logs",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "embed_template",
				Description: "Custom embed template (JSON)",
			},
		},
	},
	CommandManage: {
		Name:                     CommandManage,
		Description:              "Manage suggestions",
		DefaultMemberPermissions: &manageGuild,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "status",
				Description: "Update suggestion status",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "id",
						Description: "Suggestion ID",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "status",
						Description: "New status",
						Required:    true,
						Choices:     statusChoices,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "reason",
						Description: "Reason for status change",
					},
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "notify",
						Description: "Notify the suggestion author",
					},
				},
			},
		},
	},
	CommandHistory: {
		Name:        CommandHistory,
		Description: "View your suggestion history",
	},
	CommandStats: {
		Name:        CommandStats,
		Description: "View suggestion statistics",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "server",
				Description: "View server-wide suggestion statistics",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "user",
				Description: "View user suggestion statistics",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "target",
						Description: "User to view stats for",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "category",
				Description: "View statistics by category",
			},
		},
	},
}

var defaultCommandOrder = []string{
	CommandSuggest,
	CommandConfig,
	CommandManage,
	CommandHistory,
	CommandStats,
}

// RegisterSlashCommands registers the requested slash commands for a guild.
// When no command names are provided, all known commands are registered.
func RegisterSlashCommands(s *discordgo.Session, guildID string, names ...string) error {
	if guildID == "" {
		return fmt.Errorf("discord: guildID is required to register slash commands")
	}

	if len(names) == 0 {
		names = defaultCommandOrder
	}

	var failures []string
	for _, name := range names {
		definition, ok := commandDefinitions[name]
		if !ok {
			log.Printf("discord: unknown slash command %q", name)
			continue
		}

		_, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, definition)
		if err != nil {
			if isDuplicateCommandError(err) {
				log.Printf("discord: slash command %q already registered", name)
				continue
			}
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			log.Printf("discord: failed to register command %q: %v", name, err)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("discord: slash command registration errors: %s", strings.Join(failures, "; "))
	}

	return nil
}

// DeleteSlashCommands removes all registered slash commands for a guild.
func DeleteSlashCommands(s *discordgo.Session, guildID string) error {
	if guildID == "" {
		return fmt.Errorf("discord: guildID is required to delete slash commands")
	}

	commands, err := s.ApplicationCommands(s.State.User.ID, guildID)
	if err != nil {
		return err
	}

	for _, cmd := range commands {
		if err := s.ApplicationCommandDelete(s.State.User.ID, guildID, cmd.ID); err != nil {
			return err
		}
	}

	return nil
}

func isDuplicateCommandError(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil {
			msg := strings.ToLower(restErr.Message.Message)
			if strings.Contains(msg, "already exists") {
				return true
			}
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "50035") && strings.Contains(msg, "already exists")
}
