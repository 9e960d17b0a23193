package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const defaultReportTimeout = 90 * time.Second

// Command definitions
var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "scout",
		Description: "Get an AI scouting report on a Pro Clubs team",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "team",
				Description: "Club name to search for",
				Required:    true,
			},
		},
	},
	{
		Name:        "ask",
		Description: "Ask the AI a question",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "prompt",
				Description: "Your message to the AI",
				Required:    true,
			},
		},
	},
}

// NewDiscordBot creates a new Discord bot with the provided configuration
func NewDiscordBot(config Config, scout Scout, chat Chatter, logger *zap.Logger) (*DiscordBot, error) {
	session, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	return newBot(session, config, scout, chat, logger), nil
}

func newBot(session *discordgo.Session, config Config, scout Scout, chat Chatter, logger *zap.Logger) *DiscordBot {
	if config.ReportTimeout <= 0 {
		config.ReportTimeout = defaultReportTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bot := &DiscordBot{
		Session:           session,
		Config:            config,
		Scout:             scout,
		Chat:              chat,
		Logger:            logger,
		CommandHandlers:   make(map[string]handlerFunc),
		ComponentHandlers: make(map[string]handlerFunc),
	}

	// Set up command handlers
	bot.CommandHandlers["scout"] = bot.handleScoutCommand
	bot.CommandHandlers["ask"] = bot.handleAskCommand
	bot.ComponentHandlers[scoutSelectPrefix] = bot.handleScoutSelect

	return bot
}

// Start starts the Discord bot
func (b *DiscordBot) Start() error {
	// Register interaction handler
	b.Session.AddHandler(b.interactionHandler)

	// Open a websocket connection to Discord
	err := b.Session.Open()
	if err != nil {
		return fmt.Errorf("error opening Discord session: %w", err)
	}

	// Register commands
	registeredCommands, err := b.registerCommands()
	if err != nil {
		return fmt.Errorf("error registering commands: %w", err)
	}
	b.Commands = registeredCommands

	b.Logger.Info("bot is running with slash commands registered",
		zap.String("user", b.Session.State.User.Username),
		zap.Int("commands", len(registeredCommands)),
	)
	return nil
}

// Stop removes the registered commands and closes the session
func (b *DiscordBot) Stop() error {
	b.Logger.Info("removing commands")
	for _, cmd := range b.Commands {
		err := b.Session.ApplicationCommandDelete(b.Session.State.User.ID, b.Config.GuildID, cmd.ID)
		if err != nil {
			b.Logger.Warn("error removing command", zap.String("command", cmd.Name), zap.Error(err))
		}
	}

	return b.Session.Close()
}

// registerCommands registers the defined slash commands
func (b *DiscordBot) registerCommands() ([]*discordgo.ApplicationCommand, error) {
	registeredCommands := make([]*discordgo.ApplicationCommand, len(commands))

	for i, cmd := range commands {
		registered, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, b.Config.GuildID, cmd)
		if err != nil {
			return nil, fmt.Errorf("error creating command '%s': %w", cmd.Name, err)
		}
		registeredCommands[i] = registered
	}

	return registeredCommands, nil
}

// interactionHandler handles Discord interaction events
func (b *DiscordBot) interactionHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.dispatch(s, i)
}

func (b *DiscordBot) dispatch(r responder, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if handler, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			handler(r, i)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		for prefix, handler := range b.ComponentHandlers {
			if strings.HasPrefix(customID, prefix) {
				handler(r, i)
				return
			}
		}
	}
}

// sendError replaces the response with an error embed and drops any components
func (b *DiscordBot) sendError(r responder, i *discordgo.InteractionCreate, title, description string) {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("❌ %s", title),
		Description: description,
		Color:       colorError,
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	if _, err := r.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &[]discordgo.MessageComponent{},
	}); err != nil {
		b.Logger.Warn("error editing error response", zap.Error(err))
	}
}

// reportError logs err and renders it for the user
func (b *DiscordBot) reportError(r responder, i *discordgo.InteractionCreate, err error) {
	title, description, unexpected := describeError(err)
	if unexpected {
		b.Logger.Error("interaction failed", zap.String("user", interactionUserID(i)), zap.Error(err))
	} else {
		b.Logger.Info("interaction ended with user-facing error", zap.String("user", interactionUserID(i)), zap.Error(err))
	}
	b.sendError(r, i, title, description)
}

// deferResponse acknowledges an interaction so the handler can take longer than three seconds
func (b *DiscordBot) deferResponse(r responder, i *discordgo.InteractionCreate, kind discordgo.InteractionResponseType) bool {
	if err := r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{Type: kind}); err != nil {
		b.Logger.Warn("error acknowledging interaction", zap.Error(err))
		return false
	}
	return true
}
