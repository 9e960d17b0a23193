package club

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Candidate is an unconfirmed club identity returned by a search.
// Identity is the (SourceID, ClubID) pair; ClubID is only unique within its source.
type Candidate struct {
	SourceID string `json:"sourceId"`
	ClubID   string `json:"clubId"`
	Name     string `json:"name"`
	Region   string `json:"region,omitempty"`
	Division string `json:"division,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// Key returns the composite identity used for deduplication
func (c Candidate) Key() string {
	return c.SourceID + "/" + c.ClubID
}

// Label returns a short human readable description of the candidate
func (c Candidate) Label() string {
	parts := []string{c.SourceID}
	if c.Region != "" {
		parts = append(parts, "region "+c.Region)
	}
	if c.Division != "" {
		parts = append(parts, "div "+c.Division)
	}
	return fmt.Sprintf("%s (%s)", c.Name, strings.Join(parts, ", "))
}

// MatchType tags a match history stream
type MatchType string

const (
	MatchLeague   MatchType = "league"
	MatchPlayoff  MatchType = "playoff"
	MatchFriendly MatchType = "friendly"
)

// ParseMatchTypes converts configuration tags into match types, preserving order.
func ParseMatchTypes(tags []string) ([]MatchType, error) {
	out := make([]MatchType, 0, len(tags))
	seen := make(map[MatchType]bool, len(tags))
	for _, tag := range tags {
		mt := MatchType(strings.ToLower(strings.TrimSpace(tag)))
		switch mt {
		case MatchLeague, MatchPlayoff, MatchFriendly:
		case "":
			continue
		default:
			return nil, fmt.Errorf("unknown match type %q", tag)
		}
		if seen[mt] {
			continue
		}
		seen[mt] = true
		out = append(out, mt)
	}
	return out, nil
}

// Kind enumerates the detail fetches a source supports
type Kind int

const (
	KindProfile Kind = iota
	KindAggregateStats
	KindMemberStats
	KindMemberCareer
	KindMatches
)

// DetailKind selects one detail fetch. MatchType is only meaningful for KindMatches.
type DetailKind struct {
	Kind      Kind
	MatchType MatchType
}

var (
	Profile        = DetailKind{Kind: KindProfile}
	AggregateStats = DetailKind{Kind: KindAggregateStats}
	MemberStats    = DetailKind{Kind: KindMemberStats}
	MemberCareer   = DetailKind{Kind: KindMemberCareer}
)

// Matches returns the detail kind for one match history stream
func Matches(mt MatchType) DetailKind {
	return DetailKind{Kind: KindMatches, MatchType: mt}
}

func (k DetailKind) String() string {
	switch k.Kind {
	case KindProfile:
		return "profile"
	case KindAggregateStats:
		return "aggregate-stats"
	case KindMemberStats:
		return "member-stats"
	case KindMemberCareer:
		return "member-career"
	case KindMatches:
		return "matches:" + string(k.MatchType)
	default:
		return "unknown"
	}
}

// Blob is an opaque provider record decoded into generic JSON values
type Blob = map[string]any

// Detail is the optional result of a detail fetch. The zero value means "no data".
// Record holds single-record kinds; Records holds list kinds such as match history.
type Detail struct {
	Record  Blob
	Records []Blob
}

// Present reports whether the fetch produced anything usable
func (d Detail) Present() bool {
	return len(d.Record) > 0 || len(d.Records) > 0
}

// Source talks to one upstream partition. Implementations absorb remote failures:
// Search returns an empty slice and FetchDetail returns a zero Detail.
type Source interface {
	ID() string
	Search(ctx context.Context, query string) []Candidate
	FetchDetail(ctx context.Context, clubID string, kind DetailKind) Detail
}

// PendingSelection bridges an ambiguous search and the user's eventual choice
type PendingSelection struct {
	SearchID   string      `json:"searchId"`
	User       string      `json:"user"`
	Query      string      `json:"query"`
	Candidates []Candidate `json:"candidates"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Dossier is the enriched payload for exactly one club
type Dossier struct {
	Identity  Candidate
	Info      Blob
	Aggregate Blob
	Members   Blob
	Career    Blob
	Matches   map[MatchType][]Blob
}

// HasStats reports whether any aggregate or per-member data was retrieved
func (d *Dossier) HasStats() bool {
	return len(d.Aggregate) > 0 || len(d.Members) > 0 || len(d.Career) > 0
}

// HasMatches reports whether any match history was retrieved
func (d *Dossier) HasMatches() bool {
	for _, records := range d.Matches {
		if len(records) > 0 {
			return true
		}
	}
	return false
}

// ReportPrompt is the bounded payload sent to the summarizer
type ReportPrompt struct {
	System    string
	User      string
	Truncated []string // names of sections that were cut to budget
}
