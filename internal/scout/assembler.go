package scout

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/hunterjsb/clubscout/internal/club"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// TruncationMarker ends any section that was cut to its budget
const TruncationMarker = "...[truncated]"

// DefaultSystemPrompt instructs the model how to write the report
const DefaultSystemPrompt = `You are a scouting analyst for EA FC Pro Clubs.
Write a concise scouting report on the club described by the user message, using only the data provided.
Cover overall form, strengths, weaknesses, key players and recent results, then finish with advice for an opponent.
The data sections are JSON. Any section ending in "` + TruncationMarker + `" was cut to fit and is partial.
If a section says (none), that data was unavailable; do not invent it.`

// Limits bounds what goes into a report prompt
type Limits struct {
	MatchTypes    []club.MatchType
	MatchCap      int // per match type
	MemberCap     int
	InfoBudget    int // characters per section
	StatsBudget   int
	MatchesBudget int
}

// DefaultLimits returns the limits used when nothing is configured
func DefaultLimits() Limits {
	return Limits{
		MatchTypes:    []club.MatchType{club.MatchLeague, club.MatchPlayoff, club.MatchFriendly},
		MatchCap:      10,
		MemberCap:     25,
		InfoBudget:    2000,
		StatsBudget:   6000,
		MatchesBudget: 8000,
	}
}

// Assembler fetches club details and composes the bounded report prompt
type Assembler struct {
	sources      map[string]club.Source
	limits       Limits
	systemPrompt string
	logger       *zap.Logger
}

func NewAssembler(sources []club.Source, limits Limits, systemPrompt string, logger *zap.Logger) *Assembler {
	bySource := make(map[string]club.Source, len(sources))
	for _, s := range sources {
		bySource[s.ID()] = s
	}
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{sources: bySource, limits: limits, systemPrompt: systemPrompt, logger: logger}
}

// Gather fetches every detail kind concurrently and applies the record caps.
// It fails with club.ErrInsufficientData when no stats and no matches came back.
func (a *Assembler) Gather(ctx context.Context, c club.Candidate) (*club.Dossier, error) {
	src, ok := a.sources[c.SourceID]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", c.SourceID)
	}

	var wg conc.WaitGroup
	var profile, aggregate, members, career club.Detail
	matches := make([]club.Detail, len(a.limits.MatchTypes))
	wg.Go(func() { profile = src.FetchDetail(ctx, c.ClubID, club.Profile) })
	wg.Go(func() { aggregate = src.FetchDetail(ctx, c.ClubID, club.AggregateStats) })
	wg.Go(func() { members = src.FetchDetail(ctx, c.ClubID, club.MemberStats) })
	wg.Go(func() { career = src.FetchDetail(ctx, c.ClubID, club.MemberCareer) })
	for i, mt := range a.limits.MatchTypes {
		i, mt := i, mt
		wg.Go(func() { matches[i] = src.FetchDetail(ctx, c.ClubID, club.Matches(mt)) })
	}
	wg.Wait()

	d := &club.Dossier{
		Identity:  c,
		Info:      profile.Record,
		Aggregate: aggregate.Record,
		Members:   capMembers(members.Record, a.limits.MemberCap),
		Career:    capMembers(career.Record, a.limits.MemberCap),
		Matches:   make(map[club.MatchType][]club.Blob, len(a.limits.MatchTypes)),
	}
	for i, mt := range a.limits.MatchTypes {
		i, mt := i, mt
		if records := capRecords(matches[i].Records, a.limits.MatchCap); len(records) > 0 {
			d.Matches[mt] = records
		}
	}

	if !d.HasStats() && !d.HasMatches() {
		return nil, errors.Wrapf(club.ErrInsufficientData, "club %s on %s", c.ClubID, c.SourceID)
	}

	a.logger.Debug("dossier gathered",
		zap.String("partition", c.SourceID),
		zap.String("club_id", c.ClubID),
		zap.Bool("info", len(d.Info) > 0),
		zap.Bool("stats", d.HasStats()),
		zap.Int("match_types", len(d.Matches)),
	)
	return d, nil
}

// Assemble gathers the dossier and composes the prompt
func (a *Assembler) Assemble(ctx context.Context, c club.Candidate) (club.ReportPrompt, error) {
	d, err := a.Gather(ctx, c)
	if err != nil {
		return club.ReportPrompt{}, err
	}
	return a.Compose(d)
}

// Compose renders each section within its budget
func (a *Assembler) Compose(d *club.Dossier) (club.ReportPrompt, error) {
	info := map[string]any{"identity": d.Identity}
	if len(d.Info) > 0 {
		info["profile"] = d.Info
	}

	stats := map[string]any{}
	if len(d.Aggregate) > 0 {
		stats["aggregate"] = d.Aggregate
	}
	if len(d.Members) > 0 {
		stats["members"] = d.Members
	}
	if len(d.Career) > 0 {
		stats["career"] = d.Career
	}

	matches := map[string]any{}
	for mt, records := range d.Matches {
		matches[string(mt)] = records
	}

	sections := []struct {
		name   string
		title  string
		value  map[string]any
		budget int
	}{
		{"info", "Club info", info, a.limits.InfoBudget},
		{"stats", "Stats", stats, a.limits.StatsBudget},
		{"matches", "Recent matches", matches, a.limits.MatchesBudget},
	}

	var (
		b         strings.Builder
		truncated []string
	)
	id := d.Identity
	fmt.Fprintf(&b, "Club: %s\nSource: %s, club id %s", id.Name, id.SourceID, id.ClubID)
	if id.Platform != "" {
		fmt.Fprintf(&b, ", platform %s", id.Platform)
	}
	b.WriteString("\n")

	for _, s := range sections {
		text := "(none)"
		if len(s.value) > 0 {
			raw, err := sonic.ConfigStd.Marshal(s.value)
			if err != nil {
				return club.ReportPrompt{}, fmt.Errorf("serialize %s section: %w", s.name, err)
			}
			var cut bool
			text, cut = Truncate(string(raw), s.budget)
			if cut {
				truncated = append(truncated, s.name)
			}
		}
		fmt.Fprintf(&b, "\n### %s\n%s\n", s.title, text)
	}

	return club.ReportPrompt{System: a.systemPrompt, User: b.String(), Truncated: truncated}, nil
}

// Truncate cuts text to exactly budget runes and appends TruncationMarker.
// A budget <= 0 means unlimited.
func Truncate(text string, budget int) (string, bool) {
	if budget <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= budget {
		return text, false
	}
	return string(runes[:budget]) + TruncationMarker, true
}

// capRecords keeps the first n records, which upstream orders most recent first
func capRecords(records []club.Blob, n int) []club.Blob {
	if n > 0 && len(records) > n {
		return records[:n]
	}
	return records
}

// capMembers bounds the member list inside a member stats blob without mutating it.
// A blob holding nothing but an empty member list counts as absent.
func capMembers(rec club.Blob, n int) club.Blob {
	if len(rec) == 0 {
		return nil
	}
	list, ok := rec["members"].([]any)
	if ok && len(list) == 0 && len(rec) == 1 {
		return nil
	}
	if !ok || n <= 0 || len(list) <= n {
		return rec
	}
	out := make(club.Blob, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	out["members"] = list[:n]
	return out
}
