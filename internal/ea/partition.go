package ea

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/hunterjsb/clubscout/internal/club"
	"go.uber.org/zap"
)

const defaultMaxResults = 10

// matchTypeParams maps match streams onto EA's matchType query values
var matchTypeParams = map[club.MatchType]string{
	club.MatchLeague:   "leagueMatch",
	club.MatchPlayoff:  "playoffMatch",
	club.MatchFriendly: "friendlyMatch",
}

// Partition is one platform's slice of the EA club namespace
type Partition struct {
	client     *Client
	platform   string
	maxResults int
}

var _ club.Source = (*Partition)(nil)

// NewPartition creates a source for one platform. maxResults bounds match history requests.
func NewPartition(client *Client, platform string, maxResults int) *Partition {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &Partition{client: client, platform: platform, maxResults: maxResults}
}

// Partitions builds one source per platform, preserving order
func Partitions(client *Client, platforms []string, maxResults int) []club.Source {
	out := make([]club.Source, 0, len(platforms))
	for _, p := range platforms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, NewPartition(client, p, maxResults))
	}
	return out
}

func (p *Partition) ID() string {
	return p.platform
}

// Search looks up clubs by name. Failures are logged and yield no candidates.
func (p *Partition) Search(ctx context.Context, query string) []club.Candidate {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	params := url.Values{}
	params.Set("platform", p.platform)
	params.Set("clubName", query)

	payload, err := p.client.getJSON(ctx, "/allTimeLeaderboard/search", params)
	if err != nil {
		p.client.logger.Warn("club search failed, continuing",
			zap.String("partition", p.platform),
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}

	entries := searchEntries(payload)
	out := make([]club.Candidate, 0, len(entries))
	for _, e := range entries {
		if c, ok := e.candidate(p.platform); ok {
			out = append(out, c)
		}
	}
	return out
}

// FetchDetail retrieves one kind of detail for a club. Failures yield an empty Detail.
func (p *Partition) FetchDetail(ctx context.Context, clubID string, kind club.DetailKind) club.Detail {
	path, params, list := p.request(clubID, kind)
	if path == "" {
		return club.Detail{}
	}

	payload, err := p.client.getJSON(ctx, path, params)
	if err != nil {
		p.client.logger.Warn("club detail fetch failed, continuing",
			zap.String("partition", p.platform),
			zap.String("club_id", clubID),
			zap.String("detail", kind.String()),
			zap.Error(err),
		)
		return club.Detail{}
	}

	var d club.Detail
	if list {
		d.Records = normalizeList(payload, clubID)
	} else {
		d.Record = normalizeRecord(payload, clubID)
	}
	if !d.Present() {
		p.client.logger.Debug("club detail empty",
			zap.String("partition", p.platform),
			zap.String("club_id", clubID),
			zap.String("detail", kind.String()),
		)
	}
	return d
}

// request maps a detail kind onto its endpoint. list reports whether the response is a record list.
func (p *Partition) request(clubID string, kind club.DetailKind) (path string, params url.Values, list bool) {
	params = url.Values{}
	params.Set("platform", p.platform)

	switch kind.Kind {
	case club.KindProfile:
		params.Set("clubIds", clubID)
		return "/clubs/info", params, false
	case club.KindAggregateStats:
		params.Set("clubIds", clubID)
		return "/clubs/overallStats", params, false
	case club.KindMemberStats:
		params.Set("clubId", clubID)
		return "/members/stats", params, false
	case club.KindMemberCareer:
		params.Set("clubId", clubID)
		return "/members/career/stats", params, false
	case club.KindMatches:
		mt, ok := matchTypeParams[kind.MatchType]
		if !ok {
			return "", nil, false
		}
		params.Set("matchType", mt)
		params.Set("clubIds", clubID)
		params.Set("maxResultCount", strconv.Itoa(p.maxResults))
		return "/clubs/matches", params, true
	}
	return "", nil, false
}
