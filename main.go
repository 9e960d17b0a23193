// Command clubscout scouts EA Sports FC Pro Clubs teams.
//
// Usage:
//
//	clubscout bot
//	clubscout search "RS Academy"
//	clubscout scout "FC" --pick 2
//	clubscout scout "RS Academy" --prompt-only
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/hunterjsb/clubscout/internal/club"
	"github.com/hunterjsb/clubscout/internal/discord"
	"github.com/hunterjsb/clubscout/internal/selection"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cliUser keys the pending selection for CLI runs
const cliUser = "cli"

var heading = color.New(color.FgCyan, color.Bold)

func main() {
	root := &cobra.Command{
		Use:           "clubscout",
		Short:         "AI scouting reports for Pro Clubs teams",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(botCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(scoutCmd())

	if err := root.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Discord bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			bot, err := discord.NewDiscordBot(discord.Config{
				Token:   a.cfg.Discord.Token,
				GuildID: a.cfg.Discord.GuildID,
			}, a.service, a.llm, a.logger)
			if err != nil {
				return err
			}

			a.logger.Info("starting Discord bot")
			if err := bot.Start(); err != nil {
				return err
			}

			// Set up graceful shutdown
			done := discord.SetupCloseHandler(a.logger, bot.Stop)
			a.logger.Info("bot is now running, press CTRL-C to exit")
			<-done
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <team name>",
		Short: "List the clubs matching a name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			query := strings.Join(args, " ")
			candidates := a.resolver.Resolve(ctx, query)
			if len(candidates) == 0 {
				return fmt.Errorf("%q: %w", query, club.ErrNoMatch)
			}

			out := cmd.OutOrStdout()
			heading.Fprintf(out, "Clubs matching %q\n", query)
			printCandidates(out, candidates)
			return nil
		},
	}
}

func scoutCmd() *cobra.Command {
	var pick int
	var promptOnly bool

	cmd := &cobra.Command{
		Use:   "scout <team name>",
		Short: "Generate a scouting report for a club",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			c, err := pickClub(ctx, a, strings.Join(args, " "), pick, out)
			if err != nil {
				return err
			}

			if promptOnly {
				prompt, err := a.service.Prompt(ctx, c)
				if err != nil {
					return err
				}
				heading.Fprintln(out, "System prompt")
				fmt.Fprintln(out, prompt.System)
				heading.Fprintln(out, "\nUser prompt")
				fmt.Fprintln(out, prompt.User)
				if len(prompt.Truncated) > 0 {
					color.New(color.FgYellow).Fprintf(out, "\nTruncated sections: %s\n", strings.Join(prompt.Truncated, ", "))
				}
				return nil
			}

			report, err := a.service.Report(ctx, c)
			if err != nil {
				return err
			}
			heading.Fprintf(out, "Scouting Report: %s\n", c.Name)
			fmt.Fprintln(out, report.Text)
			if len(report.Truncated) > 0 {
				color.New(color.FgYellow).Fprintf(out, "\nPartial data: %s\n", strings.Join(report.Truncated, ", "))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&pick, "pick", 0, "1-based choice when several clubs match")
	cmd.Flags().BoolVar(&promptOnly, "prompt-only", false, "Print the assembled prompt without calling the AI")
	return cmd
}

// pickClub runs the search through the selection gate, resolving ambiguity with pick
func pickClub(ctx context.Context, a *app, query string, pick int, out io.Writer) (club.Candidate, error) {
	outcome, err := a.service.Search(ctx, cliUser, query)
	if err != nil {
		return club.Candidate{}, err
	}

	switch outcome.State {
	case selection.StateResolved:
		return outcome.Candidate, nil
	case selection.StateAwaitingSelection:
		if pick <= 0 {
			heading.Fprintf(out, "Several clubs match %q\n", query)
			printCandidates(out, outcome.Candidates)
			if outcome.Omitted > 0 {
				fmt.Fprintf(out, "(%d more not shown)\n", outcome.Omitted)
			}
			return club.Candidate{}, fmt.Errorf("rerun with --pick N to choose one")
		}
		a.logger.Debug("choosing club", zap.String("search_id", outcome.SearchID), zap.Int("pick", pick))
		return a.service.Choose(ctx, cliUser, outcome.SearchID, pick)
	default:
		return club.Candidate{}, fmt.Errorf("%q: %w", query, club.ErrNoMatch)
	}
}

func printCandidates(out io.Writer, candidates []club.Candidate) {
	for n, c := range candidates {
		fmt.Fprintf(out, "%2d. %s  club %s\n", n+1, c.Label(), c.ClubID)
	}
}
