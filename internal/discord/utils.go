package discord

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// SetupCloseHandler runs cleanupFunc on SIGINT or SIGTERM and exits.
// The returned channel is closed once cleanup has finished.
func SetupCloseHandler(logger *zap.Logger, cleanupFunc func() error) <-chan struct{} {
	done := make(chan struct{})
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-c
		logger.Info("shutting down", zap.String("signal", sig.String()))
		if err := cleanupFunc(); err != nil {
			logger.Error("error during cleanup", zap.Error(err))
		}
		close(done)
	}()
	return done
}

// interactionUserID returns the invoking user for guild and DM interactions
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// stringOption returns the named string option, or "" if absent
func stringOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

// limitText cuts s to at most n runes
func limitText(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}

// chunkString splits a string into parts of at most chunkSize runes,
// breaking at line breaks when possible
func chunkString(s string, chunkSize int) []string {
	if len([]rune(s)) <= chunkSize {
		return []string{s}
	}

	var chunks []string

	lines := strings.Split(s, "\n")
	var current []rune

	for _, l := range lines {
		line := []rune(l)
		// If adding this line would exceed the chunk size, start a new chunk
		if len(current)+len(line)+1 > chunkSize {
			if len(current) > 0 {
				chunks = append(chunks, string(current))
				current = nil
			}

			// If the line itself is too long, split it by characters
			for len(line) > chunkSize {
				chunks = append(chunks, string(line[:chunkSize]))
				line = line[chunkSize:]
			}
			current = append(current, line...)
			continue
		}

		if len(current) > 0 {
			current = append(current, '\n')
		}
		current = append(current, line...)
	}

	// Add the last chunk if it's not empty
	if len(current) > 0 {
		chunks = append(chunks, string(current))
	}

	return chunks
}
