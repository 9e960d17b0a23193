package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hunterjsb/clubscout/internal/club"
	"github.com/hunterjsb/clubscout/internal/scout"
	"github.com/hunterjsb/clubscout/internal/selection"
	"go.uber.org/zap"
)

// DiscordBot represents a Discord bot
type DiscordBot struct {
	Session           *discordgo.Session
	Config            Config
	Scout             Scout
	Chat              Chatter
	Logger            *zap.Logger
	Commands          []*discordgo.ApplicationCommand
	CommandHandlers   map[string]handlerFunc
	ComponentHandlers map[string]handlerFunc // keyed by custom ID prefix
}

// Config holds Discord bot configuration
type Config struct {
	Token         string
	GuildID       string
	ReportTimeout time.Duration
}

// Scout is the club scouting pipeline the bot drives
type Scout interface {
	Search(ctx context.Context, user, query string) (selection.Outcome, error)
	Choose(ctx context.Context, user, searchID string, index int) (club.Candidate, error)
	Report(ctx context.Context, c club.Candidate) (scout.Report, error)
}

// Chatter answers free-form questions
type Chatter interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// responder is the slice of *discordgo.Session the handlers use
type responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type handlerFunc func(r responder, i *discordgo.InteractionCreate)
