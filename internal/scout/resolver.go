package scout

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/hunterjsb/clubscout/internal/club"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"
)

// DefaultRankLimit is how many ranked candidates Resolve keeps
const DefaultRankLimit = 5

// Resolver searches every source concurrently and merges the results
type Resolver struct {
	sources []club.Source
	rank    bool
	limit   int
	logger  *zap.Logger
}

// ResolverConfig controls ranking. Without ranking, all deduplicated candidates are returned.
type ResolverConfig struct {
	Rank   bool
	Limit  int
	Logger *zap.Logger
}

func NewResolver(sources []club.Source, cfg ResolverConfig) *Resolver {
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultRankLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{sources: sources, rank: cfg.Rank, limit: limit, logger: logger}
}

// Resolve returns the candidates for query in source order, deduplicated by (source, club id).
// An empty query makes no upstream calls.
func (r *Resolver) Resolve(ctx context.Context, query string) []club.Candidate {
	query = strings.TrimSpace(query)
	if query == "" || len(r.sources) == 0 {
		return nil
	}

	// Every source is searched at once; results stay in source order
	searches := iter.Mapper[club.Source, []club.Candidate]{MaxGoroutines: len(r.sources)}
	perSource := searches.Map(r.sources, func(src *club.Source) []club.Candidate {
		return (*src).Search(ctx, query)
	})

	var merged []club.Candidate
	seen := make(map[string]bool)
	for i, found := range perSource {
		r.logger.Debug("source searched",
			zap.String("partition", r.sources[i].ID()),
			zap.String("query", query),
			zap.Int("candidates", len(found)),
		)
		for _, c := range found {
			if seen[c.Key()] {
				continue
			}
			seen[c.Key()] = true
			merged = append(merged, c)
		}
	}

	if r.rank {
		merged = Rank(query, merged, r.limit)
	}
	return merged
}

// Rank orders candidates by Score, keeping encounter order for ties, and keeps the top limit
func Rank(query string, candidates []club.Candidate, limit int) []club.Candidate {
	type scored struct {
		c     club.Candidate
		score float64
	}
	list := make([]scored, len(candidates))
	for i, c := range candidates {
		list[i] = scored{c: c, score: Score(query, c.Name)}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	out := make([]club.Candidate, len(list))
	for i, s := range list {
		out[i] = s.c
	}
	return out
}

// Score rates how well name matches query, from 0 to 1
func Score(query, name string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	n := strings.ToLower(strings.TrimSpace(name))
	if q == "" || n == "" {
		return 0
	}

	switch {
	case n == q:
		return 1.0
	case strings.HasPrefix(n, q):
		return 0.8
	case strings.Contains(n, q):
		return 0.6
	}
	return jaccard(tokens(q), tokens(n)) * 0.5
}

func tokens(s string) map[string]bool {
	out := make(map[string]bool)
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		out[f] = true
	}
	return out
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
