package scout

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/hunterjsb/clubscout/internal/club"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func richSource() *fakeSource {
	members := make([]any, 40)
	for i := range members {
		members[i] = map[string]any{"name": "p" + string(rune('a'+i%26)), "goals": float64(i)}
	}
	return &fakeSource{
		id: "A",
		details: map[string]club.Detail{
			club.Profile.String():                    {Record: club.Blob{"name": "RS Academy", "regionId": float64(1)}},
			club.AggregateStats.String():             {Record: club.Blob{"wins": "40", "losses": "12"}},
			club.MemberStats.String():                {Record: club.Blob{"members": members}},
			club.Matches(club.MatchLeague).String():  {Records: matchRecords(25)},
			club.Matches(club.MatchPlayoff).String(): {Records: matchRecords(3)},
		},
	}
}

func TestGather_FetchesEveryKindAndCaps(t *testing.T) {
	src := richSource()
	limits := DefaultLimits()
	limits.MatchCap = 10
	limits.MemberCap = 25
	a := NewAssembler([]club.Source{src}, limits, "", nil)

	d, err := a.Gather(context.Background(), cand("A", "104358", "RS Academy"))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"104358:profile",
		"104358:aggregate-stats",
		"104358:member-stats",
		"104358:member-career",
		"104358:matches:league",
		"104358:matches:playoff",
		"104358:matches:friendly",
	}, src.fetchedKinds())

	league := d.Matches[club.MatchLeague]
	require.Len(t, league, 10)
	// the most recent ten, in upstream order
	for i, rec := range league {
		assert.Equal(t, float64(1000-i), rec["matchId"])
	}
	assert.Len(t, d.Matches[club.MatchPlayoff], 3)
	assert.NotContains(t, d.Matches, club.MatchFriendly)

	assert.Len(t, d.Members["members"], 25)
	// the source's blob is left untouched
	assert.Len(t, src.details[club.MemberStats.String()].Record["members"], 40)
	assert.Nil(t, d.Career)
}

func TestGather_InsufficientData(t *testing.T) {
	src := &fakeSource{
		id: "A",
		details: map[string]club.Detail{
			club.Profile.String():     {Record: club.Blob{"name": "Ghost FC"}},
			club.MemberStats.String(): {Record: club.Blob{"members": []any{}}},
		},
	}
	a := NewAssembler([]club.Source{src}, DefaultLimits(), "", nil)

	_, err := a.Assemble(context.Background(), cand("A", "1", "Ghost FC"))
	assert.ErrorIs(t, err, club.ErrInsufficientData)
	assert.Equal(t, club.KindInsufficientData, club.Classify(err))
}

func TestGather_MatchesAloneAreEnough(t *testing.T) {
	src := &fakeSource{
		id: "A",
		details: map[string]club.Detail{
			club.Matches(club.MatchFriendly).String(): {Records: matchRecords(2)},
		},
	}
	a := NewAssembler([]club.Source{src}, DefaultLimits(), "", nil)

	_, err := a.Gather(context.Background(), cand("A", "1", "Friendly FC"))
	assert.NoError(t, err)
}

func TestGather_UnknownSource(t *testing.T) {
	a := NewAssembler(nil, DefaultLimits(), "", nil)
	_, err := a.Gather(context.Background(), cand("Z", "1", "x"))
	require.Error(t, err)
	assert.Equal(t, club.KindUnclassified, club.Classify(err))
}

func TestCompose_Sections(t *testing.T) {
	a := NewAssembler([]club.Source{richSource()}, DefaultLimits(), "", nil)

	prompt, err := a.Assemble(context.Background(), club.Candidate{SourceID: "A", ClubID: "104358", Name: "RS Academy", Platform: "common-gen5"})
	require.NoError(t, err)

	assert.Equal(t, DefaultSystemPrompt, prompt.System)
	assert.Contains(t, prompt.User, "Club: RS Academy")
	assert.Contains(t, prompt.User, "club id 104358")
	assert.Contains(t, prompt.User, "platform common-gen5")
	assert.Contains(t, prompt.User, "### Club info")
	assert.Contains(t, prompt.User, `"wins":"40"`)
	assert.Contains(t, prompt.User, "### Recent matches")
	assert.Empty(t, prompt.Truncated)
}

func TestCompose_Deterministic(t *testing.T) {
	a := NewAssembler([]club.Source{richSource()}, DefaultLimits(), "custom system", nil)
	c := cand("A", "104358", "RS Academy")

	first, err := a.Assemble(context.Background(), c)
	require.NoError(t, err)
	second, err := a.Assemble(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, first.User, second.User)
	assert.Equal(t, "custom system", first.System)
}

func TestCompose_TruncatesOverBudgetSections(t *testing.T) {
	limits := DefaultLimits()
	limits.StatsBudget = 50
	limits.MatchesBudget = 80
	a := NewAssembler([]club.Source{richSource()}, limits, "", nil)

	d, err := a.Gather(context.Background(), cand("A", "1", "RS Academy"))
	require.NoError(t, err)
	prompt, err := a.Compose(d)
	require.NoError(t, err)

	assert.Equal(t, []string{"stats", "matches"}, prompt.Truncated)

	statsJSON, err := sonic.ConfigStd.Marshal(map[string]any{"aggregate": d.Aggregate, "members": d.Members})
	require.NoError(t, err)
	want := string([]rune(string(statsJSON))[:50]) + TruncationMarker
	assert.Contains(t, prompt.User, "### Stats\n"+want+"\n")
}

func TestCompose_EmptySectionsSayNone(t *testing.T) {
	a := NewAssembler(nil, DefaultLimits(), "", nil)
	prompt, err := a.Compose(&club.Dossier{
		Identity: cand("A", "1", "Friendly FC"),
		Matches:  map[club.MatchType][]club.Blob{club.MatchFriendly: matchRecords(1)},
	})
	require.NoError(t, err)
	assert.Contains(t, prompt.User, "### Stats\n(none)\n")
}

func TestTruncate(t *testing.T) {
	got, cut := Truncate("abcdef", 6)
	assert.False(t, cut)
	assert.Equal(t, "abcdef", got)

	got, cut = Truncate("abcdef", 4)
	assert.True(t, cut)
	assert.Equal(t, "abcd"+TruncationMarker, got)

	// cuts on runes, never inside a multi-byte character
	got, cut = Truncate("ééééé", 3)
	assert.True(t, cut)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasPrefix(got, "ééé"))
	assert.Equal(t, 3, utf8.RuneCountInString(strings.TrimSuffix(got, TruncationMarker)))

	got, cut = Truncate("abc", 0)
	assert.False(t, cut)
	assert.Equal(t, "abc", got)
}
