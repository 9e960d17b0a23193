package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// handleAskCommand handles the /ask command
func (b *DiscordBot) handleAskCommand(r responder, i *discordgo.InteractionCreate) {
	// Acknowledge the interaction immediately
	if !b.deferResponse(r, i, discordgo.InteractionResponseDeferredChannelMessageWithSource) {
		return
	}

	prompt := stringOption(i.ApplicationCommandData().Options, "prompt")

	ctx, cancel := context.WithTimeout(context.Background(), b.Config.ReportTimeout)
	defer cancel()

	response, err := b.Chat.Chat(ctx, prompt)
	if err != nil {
		b.reportError(r, i, err)
		return
	}

	embeds := askEmbeds(response)
	if _, err := r.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embeds[0]},
	}); err != nil {
		b.Logger.Warn("error editing interaction response", zap.Error(err))
		return
	}
	for _, embed := range embeds[1:] {
		if _, err := r.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{embed},
		}); err != nil {
			b.Logger.Warn("error sending follow-up", zap.Error(err))
			return
		}
	}
}

// askEmbeds creates one embed per chunk of the AI response
func askEmbeds(response string) []*discordgo.MessageEmbed {
	chunks := chunkString(response, embedChunkSize)
	embeds := make([]*discordgo.MessageEmbed, 0, len(chunks))

	for n, chunk := range chunks {
		title := "🤖 AI Response"
		if len(chunks) > 1 {
			title = fmt.Sprintf("🤖 AI Response (Part %d of %d)", n+1, len(chunks))
		}
		embed := &discordgo.MessageEmbed{
			Title:       title,
			Description: chunk,
			Color:       colorReport,
		}
		if n == len(chunks)-1 {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: "Powered by OpenAI"}
			embed.Timestamp = time.Now().Format(time.RFC3339)
		}
		embeds = append(embeds, embed)
	}

	return embeds
}
