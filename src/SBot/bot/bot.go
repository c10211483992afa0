package bot

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/trenny-dev/suggestbot/src/data"
	"github.com/trenny-dev/suggestbot/src/discord"
	"github.com/trenny-dev/suggestbot/src/suggestions"
)

type Config struct {
	Token       string
	GuildID     string
	BannedWords []string
	DB          *gorm.DB
	Redis       *redis.Client
}

type Bot struct {
	session    *discordgo.Session
	db         *gorm.DB
	rdb        *redis.Client
	config     Config
	repo       *suggestions.Repository
	cfgStore   *suggestions.ConfigStore
	engine     *suggestions.Engine
	aggregator *suggestions.Aggregator
	stats      *suggestions.Stats
	gateway    *discord.Gateway
	limiter    *suggestions.RateLimiter
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func New(config Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	b := &Bot{
		session: dg,
		db:      config.DB,
		rdb:     config.Redis,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
	}
	b.initializeComponents()
	b.registerHandlers()

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	return b, nil
}

func (b *Bot) initializeComponents() {
	b.repo = suggestions.NewRepository(b.db)
	b.cfgStore = suggestions.NewConfigStore(b.db)
	b.stats = suggestions.NewStats(b.db)
	b.gateway = discord.NewGateway(b.session, b.repo, b.cfgStore)

	// Lifecycle events fan out to the Discord gateway and the Redis stream.
	events := suggestions.EventFanout{b.gateway, data.NewStreamPublisher(b.rdb)}

	mod := suggestions.NewModerator(b.config.BannedWords...)
	roles := discord.RoleChecker{Session: b.session}
	b.engine = suggestions.NewEngine(b.cfgStore, b.repo, mod, roles, events)
	b.aggregator = suggestions.NewAggregator(b.repo, events)

	b.limiter = suggestions.NewRateLimiter(3 * time.Second)
}

func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleInteraction)
}

func (b *Bot) Start() error {
	return b.session.Open()
}

func (b *Bot) Stop() {
	b.cancel()
	b.wg.Wait()
	b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("Discord bot logged in as %s", event.User.Username)

	guilds := []string{b.config.GuildID}
	if b.config.GuildID == "" {
		guilds = guilds[:0]
		for _, g := range event.Guilds {
			guilds = append(guilds, g.ID)
		}
	}
	for _, gid := range guilds {
		if err := discord.RegisterSlashCommands(s, gid); err != nil {
			log.Printf("Failed to register slash commands for %s: %v", gid, err)
		}
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.runArchiver(b.ctx)
	}()

	b.limiter.StartCleanup(b.ctx, 10*time.Minute)
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name

	if !b.limiter.CanUse(interactionUserID(i)) {
		wait := b.limiter.TimeUntilNext(interactionUserID(i))
		respondEphemeral(s, i, "Slow down, try again in "+wait.Round(time.Second).String()+".")
		return
	}

	switch name {
	case discord.CommandSuggest:
		b.handleSuggest(s, i)
	case discord.CommandConfig:
		b.handleConfigure(s, i)
	case discord.CommandManage:
		b.handleManage(s, i)
	case discord.CommandHistory:
		b.handleHistory(s, i)
	case discord.CommandStats:
		b.handleStats(s, i)
	default:
		respondEphemeral(s, i, "Unknown command.")
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("interaction respond: %v", err)
	}
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("interaction respond: %v", err)
	}
}

// optionMap flattens a command's options, including one subcommand level.
func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}
