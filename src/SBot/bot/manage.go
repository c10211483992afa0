package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/trenny-dev/suggestbot/src/suggestions"
	"github.com/trenny-dev/suggestbot/src/types"
)

func (b *Bot) handleManage(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 || data.Options[0].Name != "status" {
		respondEphemeral(s, i, "Unknown subcommand.")
		return
	}
	opts := optionMap(data.Options[0].Options)

	if !b.canManage(s, i) {
		respondEphemeral(s, i, "You do not have permission to manage suggestions.")
		return
	}

	id := strings.ToUpper(opts["id"].StringValue())
	status := types.Status(opts["status"].StringValue())
	reason := ""
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}
	notify := notifyOption(opts)

	ctx, cancel := context.WithTimeout(b.ctx, 10*time.Second)
	defer cancel()

	updated, err := b.engine.SetStatus(ctx, id, status, reason, interactionUserID(i), notify)
	if err != nil {
		respondEphemeral(s, i, manageErrorMessage(err))
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("Suggestion **%s** is now **%s**.", updated.ID, updated.Status))
}

// notifyOption reads the notify flag. Authors are notified unless the
// manager opts out.
func notifyOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption) bool {
	if opt, ok := opts["notify"]; ok {
		return opt.BoolValue()
	}
	return true
}

// canManage checks the configured manager role, falling back to the Manage
// Server permission when none is set.
func (b *Bot) canManage(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	cfg, err := b.cfgStore.Get(b.ctx, i.GuildID)
	if err != nil {
		log.Printf("manage: load config: %v", err)
		return false
	}
	if cfg.ManagerRoleID != "" {
		for _, role := range i.Member.Roles {
			if role == cfg.ManagerRoleID {
				return true
			}
		}
		return false
	}
	return i.Member.Permissions&discordgo.PermissionManageGuild != 0
}

func manageErrorMessage(err error) string {
	switch {
	case errors.Is(err, suggestions.ErrNotFound):
		return "No suggestion with that ID exists."
	case errors.Is(err, suggestions.ErrArchived):
		return "That suggestion is archived and can no longer be updated."
	case errors.Is(err, suggestions.ErrInvalidStatus):
		return "That status cannot be applied."
	default:
		log.Printf("manage: %v", err)
		return "Something went wrong while updating the suggestion."
	}
}

func (b *Bot) handleConfigure(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	opts := optionMap(data.Options)

	var patch suggestions.ConfigPatch
	if opt, ok := opts["channel"]; ok {
		id := opt.ChannelValue(nil).ID
		patch.SuggestionChannelID = &id
	}
	if opt, ok := opts["color"]; ok {
		color, err := parseHexColor(opt.StringValue())
		if err != nil {
			respondEphemeral(s, i, "Invalid color. Use a HEX value like #5865F2.")
			return
		}
		patch.EmbedColor = &color
	}
	if opt, ok := opts["categories"]; ok {
		for _, c := range strings.Split(opt.StringValue(), ",") {
			if c = strings.TrimSpace(c); c != "" {
				patch.Categories = append(patch.Categories, c)
			}
		}
	}
	if opt, ok := opts["anonymous"]; ok {
		v := opt.BoolValue()
		patch.AllowAnonymous = &v
	}
	if opt, ok := opts["manager_role"]; ok {
		id := opt.RoleValue(nil, "").ID
		patch.ManagerRoleID = &id
	}
	if opt, ok := opts["suggestion_role"]; ok {
		id := opt.RoleValue(nil, "").ID
		patch.SuggestionRoleID = &id
	}
	if opt, ok := opts["cooldown"]; ok {
		v := int(opt.IntValue())
		patch.CooldownMinutes = &v
	}
	if opt, ok := opts["max_per_day"]; ok {
		v := int(opt.IntValue())
		patch.MaxSuggestionsPerDay = &v
	}
	if opt, ok := opts["auto_archive"]; ok {
		days := 0
		if raw := opt.StringValue(); raw != "never" {
			days, _ = strconv.Atoi(raw)
		}
		patch.AutoArchiveDays = &days
	}
	if opt, ok := opts["dm_notifications"]; ok {
		v := opt.BoolValue()
		patch.DMNotifications = &v
	}
	if opt, ok := opts["log_channel"]; ok {
		id := opt.ChannelValue(nil).ID
		patch.LogChannelID = &id
	}
	if opt, ok := opts["embed_template"]; ok {
		v := opt.StringValue()
		patch.EmbedTemplate = &v
	}

	ctx, cancel := context.WithTimeout(b.ctx, 10*time.Second)
	defer cancel()

	cfg, err := b.cfgStore.Set(ctx, i.GuildID, patch, interactionUserID(i))
	if err != nil {
		var cerr *suggestions.ConfigError
		if errors.As(err, &cerr) {
			respondEphemeral(s, i, "Invalid configuration: "+cerr.Reason)
			return
		}
		log.Printf("configure: %v", err)
		respondEphemeral(s, i, "Something went wrong while saving the configuration.")
		return
	}

	if cfg.LogChannelID != "" {
		_, err := s.ChannelMessageSend(cfg.LogChannelID,
			fmt.Sprintf("⚙️ Suggestion settings updated by <@%s>.", interactionUserID(i)))
		if err != nil {
			log.Printf("configure: log channel: %v", err)
		}
	}

	respondEphemeral(s, i, "Suggestion settings saved.")
}

func parseHexColor(raw string) (int, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(raw) != 6 {
		return 0, fmt.Errorf("expected 6 hex digits")
	}
	v, err := strconv.ParseInt(raw, 16, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
