package scout

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/hunterjsb/clubscout/internal/club"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_DedupFirstEncounter(t *testing.T) {
	a := &fakeSource{id: "A", results: []club.Candidate{
		cand("A", "1", "Alpha"),
		cand("A", "2", "Beta"),
		cand("A", "1", "Alpha again"),
	}}
	b := &fakeSource{id: "B", results: []club.Candidate{
		cand("B", "1", "Alpha on B"),
		cand("A", "2", "Beta via B"),
	}}

	r := NewResolver([]club.Source{a, b}, ResolverConfig{})
	got := r.Resolve(context.Background(), "alpha")

	require.Len(t, got, 3)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, "Beta", got[1].Name)
	assert.Equal(t, "Alpha on B", got[2].Name)
}

func TestResolve_EmptyQueryMakesNoCalls(t *testing.T) {
	a := &fakeSource{id: "A", results: []club.Candidate{cand("A", "1", "x")}}
	r := NewResolver([]club.Source{a}, ResolverConfig{Rank: true})

	assert.Empty(t, r.Resolve(context.Background(), ""))
	assert.Empty(t, r.Resolve(context.Background(), "   "))
	assert.Equal(t, int32(0), a.searches.Load())
}

func TestResolve_PartitionOrderNotCompletionOrder(t *testing.T) {
	slow := &fakeSource{id: "A", delay: 30 * time.Millisecond, results: []club.Candidate{cand("A", "1", "Slow FC")}}
	fast := &fakeSource{id: "B", results: []club.Candidate{cand("B", "2", "Fast FC")}}
	empty := &fakeSource{id: "C"}

	r := NewResolver([]club.Source{slow, fast, empty}, ResolverConfig{})
	got := r.Resolve(context.Background(), "FC")

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].SourceID)
	assert.Equal(t, "B", got[1].SourceID)
}

func TestResolve_SearchesAllSourcesAtOnce(t *testing.T) {
	prev := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(prev)

	const delay = 100 * time.Millisecond
	sources := []club.Source{
		&fakeSource{id: "A", delay: delay, results: []club.Candidate{cand("A", "1", "FC A")}},
		&fakeSource{id: "B", delay: delay, results: []club.Candidate{cand("B", "1", "FC B")}},
		&fakeSource{id: "C", delay: delay, results: []club.Candidate{cand("C", "1", "FC C")}},
		&fakeSource{id: "D", delay: delay, results: []club.Candidate{cand("D", "1", "FC D")}},
	}

	r := NewResolver(sources, ResolverConfig{})
	start := time.Now()
	got := r.Resolve(context.Background(), "FC")
	elapsed := time.Since(start)

	assert.Len(t, got, 4)
	assert.Less(t, elapsed, 3*delay, "searches ran one after another")
}

func TestResolve_SingleCandidateScenario(t *testing.T) {
	a := &fakeSource{id: "A", results: []club.Candidate{cand("A", "104358", "RS Academy")}}
	b := &fakeSource{id: "B"}

	r := NewResolver([]club.Source{a, b}, ResolverConfig{Rank: true})
	got := r.Resolve(context.Background(), "RS Academy")

	assert.Equal(t, []club.Candidate{cand("A", "104358", "RS Academy")}, got)
}

func TestResolve_RankingKeepsTopFive(t *testing.T) {
	a := &fakeSource{id: "A", results: []club.Candidate{
		cand("A", "1", "Random Club"),
		cand("A", "2", "United FC"),
		cand("A", "3", "FC"),
		cand("A", "4", "FC Porto Pros"),
		cand("A", "5", "The FC Crew"),
		cand("A", "6", "Athletic FC"),
		cand("A", "7", "fc"),
	}}

	r := NewResolver([]club.Source{a}, ResolverConfig{Rank: true})
	got := r.Resolve(context.Background(), "FC")

	require.Len(t, got, 5)
	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.ClubID
	}
	// exact (3, 7), prefix (4), substring in encounter order (2, 5)
	assert.Equal(t, []string{"3", "7", "4", "2", "5"}, ids)
}

func TestScore(t *testing.T) {
	tests := []struct {
		query, name string
		want        float64
	}{
		{"RS Academy", "rs academy", 1.0},
		{"rs", "RS Academy", 0.8},
		{"academy", "RS Academy", 0.6},
		{"ultra ninjas fc", "Ninjas Ultra", 2.0 / 3.0 * 0.5},
		{"alpha", "beta", 0},
		{"", "beta", 0},
	}
	for _, test := range tests {
		got := Score(test.query, test.name)
		assert.InDelta(t, test.want, got, 1e-9, "Score(%q, %q)", test.query, test.name)
	}
}
