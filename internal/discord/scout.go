package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hunterjsb/clubscout/internal/club"
	"github.com/hunterjsb/clubscout/internal/scout"
	"github.com/hunterjsb/clubscout/internal/selection"
	"go.uber.org/zap"
)

const (
	scoutSelectPrefix = "scout:"

	colorReport  = 0x00ff00
	colorChoices = 0x3498db
	colorError   = 0xff0000

	embedChunkSize = 4000
)

// handleScoutCommand handles the /scout command
func (b *DiscordBot) handleScoutCommand(r responder, i *discordgo.InteractionCreate) {
	// Acknowledge the interaction immediately
	if !b.deferResponse(r, i, discordgo.InteractionResponseDeferredChannelMessageWithSource) {
		return
	}

	query := strings.TrimSpace(stringOption(i.ApplicationCommandData().Options, "team"))
	if query == "" {
		b.sendError(r, i, "Missing Team", "Please give a club name to search for.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.Config.ReportTimeout)
	defer cancel()

	out, err := b.Scout.Search(ctx, interactionUserID(i), query)
	if err != nil {
		b.reportError(r, i, err)
		return
	}

	switch out.State {
	case selection.StateResolved:
		b.sendProgress(r, i, out.Candidate)
		b.sendReport(ctx, r, i, out.Candidate)
	case selection.StateAwaitingSelection:
		embeds, components := selectionMessage(out)
		if _, err := r.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Embeds:     &embeds,
			Components: &components,
		}); err != nil {
			b.Logger.Warn("error sending club choices", zap.Error(err))
		}
	default:
		b.reportError(r, i, club.ErrNoMatch)
	}
}

// handleScoutSelect handles a choice from the club select menu
func (b *DiscordBot) handleScoutSelect(r responder, i *discordgo.InteractionCreate) {
	if !b.deferResponse(r, i, discordgo.InteractionResponseDeferredMessageUpdate) {
		return
	}

	data := i.MessageComponentData()
	searchID, index, err := parseSelection(data.CustomID, data.Values)
	if err != nil {
		b.reportError(r, i, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.Config.ReportTimeout)
	defer cancel()

	candidate, err := b.Scout.Choose(ctx, interactionUserID(i), searchID, index)
	if err != nil {
		b.reportError(r, i, err)
		return
	}

	b.sendProgress(r, i, candidate)
	b.sendReport(ctx, r, i, candidate)
}

// sendProgress shows which club is being scouted while the report is generated
func (b *DiscordBot) sendProgress(r responder, i *discordgo.InteractionCreate, c club.Candidate) {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔎 Scouting %s", c.Name),
		Description: "Pulling stats and match history, this can take a moment...",
		Color:       colorChoices,
	}
	if _, err := r.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &[]discordgo.MessageComponent{},
	}); err != nil {
		b.Logger.Warn("error editing interaction response", zap.Error(err))
	}
}

// sendReport generates the report and replaces the response with it.
// Embeds past the first go out as follow-ups to stay under Discord's per-message limit.
func (b *DiscordBot) sendReport(ctx context.Context, r responder, i *discordgo.InteractionCreate, c club.Candidate) {
	report, err := b.Scout.Report(ctx, c)
	if err != nil {
		b.reportError(r, i, err)
		return
	}

	embeds := reportEmbeds(report)
	if _, err := r.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{embeds[0]},
		Components: &[]discordgo.MessageComponent{},
	}); err != nil {
		b.Logger.Warn("error editing interaction response", zap.Error(err))
		return
	}
	for _, embed := range embeds[1:] {
		if _, err := r.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{embed},
		}); err != nil {
			b.Logger.Warn("error sending report follow-up", zap.Error(err))
			return
		}
	}
}

// selectionMessage renders a numbered candidate list and the menu to pick from it
func selectionMessage(out selection.Outcome) ([]*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	var lines []string
	options := make([]discordgo.SelectMenuOption, 0, len(out.Candidates))
	for n, c := range out.Candidates {
		lines = append(lines, fmt.Sprintf("**%d.** %s", n+1, candidateLine(c)))
		options = append(options, discordgo.SelectMenuOption{
			Label:       limitText(fmt.Sprintf("%d. %s", n+1, c.Name), 100),
			Value:       strconv.Itoa(n + 1),
			Description: limitText(candidateDetail(c), 100),
		})
	}

	description := strings.Join(lines, "\n")
	if out.Omitted > 0 {
		description += fmt.Sprintf("\n\n_%d more matches not shown. Try a more specific name._", out.Omitted)
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Multiple clubs match \"%s\"", out.Query),
		Description: description,
		Color:       colorChoices,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Pick a club from the menu below",
		},
	}

	minValues := 1
	menu := discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    scoutSelectPrefix + out.SearchID,
		Placeholder: "Choose a club",
		MinValues:   &minValues,
		MaxValues:   1,
		Options:     options,
	}

	return []*discordgo.MessageEmbed{embed}, []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}},
	}
}

// reportEmbeds splits a report into embeds that fit Discord's description limit
func reportEmbeds(report scout.Report) []*discordgo.MessageEmbed {
	chunks := chunkString(report.Text, embedChunkSize)
	embeds := make([]*discordgo.MessageEmbed, 0, len(chunks))

	for n, chunk := range chunks {
		title := fmt.Sprintf("📋 Scouting Report: %s", report.Candidate.Name)
		if len(chunks) > 1 {
			title = fmt.Sprintf("%s (Part %d of %d)", title, n+1, len(chunks))
		}
		embed := &discordgo.MessageEmbed{
			Title:       title,
			Description: chunk,
			Color:       colorReport,
		}

		// Add footer only to the last embed
		if n == len(chunks)-1 {
			footer := candidateDetail(report.Candidate)
			if len(report.Truncated) > 0 {
				footer += " • partial data: " + strings.Join(report.Truncated, ", ")
			}
			embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
			embed.Timestamp = time.Now().Format(time.RFC3339)
		}

		embeds = append(embeds, embed)
	}

	return embeds
}

// parseSelection reads the search ID and 1-based index from a select menu event
func parseSelection(customID string, values []string) (string, int, error) {
	searchID := strings.TrimPrefix(customID, scoutSelectPrefix)
	if searchID == customID || searchID == "" || len(values) != 1 {
		return "", 0, fmt.Errorf("malformed selection %q %v: %w", customID, values, club.ErrInvalidSelection)
	}
	index, err := strconv.Atoi(values[0])
	if err != nil {
		return "", 0, fmt.Errorf("selection value %q: %w", values[0], club.ErrInvalidSelection)
	}
	return searchID, index, nil
}

func candidateLine(c club.Candidate) string {
	return fmt.Sprintf("%s (%s)", c.Name, candidateDetail(c))
}

func candidateDetail(c club.Candidate) string {
	parts := []string{c.SourceID}
	if c.Platform != "" && c.Platform != c.SourceID {
		parts = append(parts, c.Platform)
	}
	if c.Region != "" {
		parts = append(parts, "region "+c.Region)
	}
	if c.Division != "" {
		parts = append(parts, "div "+c.Division)
	}
	parts = append(parts, "club "+c.ClubID)
	return strings.Join(parts, " • ")
}
