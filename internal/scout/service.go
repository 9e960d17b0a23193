package scout

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/hunterjsb/clubscout/internal/club"
	"github.com/hunterjsb/clubscout/internal/selection"
	"go.uber.org/zap"
)

// Summarizer turns a report prompt into prose
type Summarizer interface {
	Summarize(ctx context.Context, prompt club.ReportPrompt) (string, error)
}

// Report is a finished scouting report
type Report struct {
	Candidate club.Candidate
	Text      string
	Truncated []string
}

// Service ties resolution, disambiguation, assembly and summarization together
type Service struct {
	resolver   *Resolver
	gate       *selection.Gate
	assembler  *Assembler
	summarizer Summarizer
	logger     *zap.Logger
}

func NewService(resolver *Resolver, gate *selection.Gate, assembler *Assembler, summarizer Summarizer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resolver:   resolver,
		gate:       gate,
		assembler:  assembler,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Search resolves query for user. The outcome is returned even when it is a no-match,
// alongside club.ErrNoMatch.
func (s *Service) Search(ctx context.Context, user, query string) (selection.Outcome, error) {
	candidates := s.resolver.Resolve(ctx, query)

	out, err := s.gate.Begin(ctx, user, query, candidates)
	if err != nil {
		return selection.Outcome{}, err
	}

	s.logger.Info("club search",
		zap.String("user", user),
		zap.String("query", query),
		zap.Int("candidates", len(candidates)),
		zap.Stringer("state", out.State),
	)

	if out.State == selection.StateNoMatch {
		return out, errors.Wrapf(club.ErrNoMatch, "query %q", query)
	}
	return out, nil
}

// Choose resolves a 1-based menu choice
func (s *Service) Choose(ctx context.Context, user, searchID string, index int) (club.Candidate, error) {
	return s.gate.Select(ctx, user, searchID, index)
}

// Prompt assembles the report prompt without summarizing it
func (s *Service) Prompt(ctx context.Context, c club.Candidate) (club.ReportPrompt, error) {
	return s.assembler.Assemble(ctx, c)
}

// Report assembles and summarizes a report. The summarizer is not called if assembly fails.
func (s *Service) Report(ctx context.Context, c club.Candidate) (Report, error) {
	prompt, err := s.assembler.Assemble(ctx, c)
	if err != nil {
		return Report{}, err
	}
	if len(prompt.Truncated) > 0 {
		s.logger.Info("report sections truncated",
			zap.String("club_id", c.ClubID),
			zap.Strings("sections", prompt.Truncated),
		)
	}

	if s.summarizer == nil {
		return Report{}, errors.Wrap(club.ErrUpstreamUnavailable, "no summarizer configured")
	}
	text, err := s.summarizer.Summarize(ctx, prompt)
	if err != nil {
		return Report{}, fmt.Errorf("summarize %s: %w", c.Name, err)
	}

	return Report{Candidate: c, Text: text, Truncated: prompt.Truncated}, nil
}
