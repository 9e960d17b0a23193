package selection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/hunterjsb/clubscout/internal/club"
)

// DefaultLimit is how many candidates a user is asked to choose from
const DefaultLimit = 5

// ErrNoUser is returned when a selection has no user to key it by
var ErrNoUser = errors.New("selection requires a user identity")

// State is where a search landed in the disambiguation flow.
// A single candidate goes straight to StateResolved.
type State int

const (
	StateNoMatch State = iota
	StateResolved
	StateAwaitingSelection
)

func (s State) String() string {
	switch s {
	case StateNoMatch:
		return "no-match"
	case StateResolved:
		return "resolved"
	case StateAwaitingSelection:
		return "awaiting-selection"
	default:
		return "unknown"
	}
}

// Outcome is the gate's verdict on one search
type Outcome struct {
	State State
	Query string

	// Set when State is StateResolved
	Candidate club.Candidate

	// Set when State is StateAwaitingSelection
	SearchID   string
	Candidates []club.Candidate
	Omitted    int // candidates dropped by the limit
}

// Gate decides whether a search resolves immediately or needs the user to choose
type Gate struct {
	mu    sync.Mutex
	store Store
	limit int
	now   func() time.Time
	newID func() string
}

// NewGate creates a gate over store. limit <= 0 uses DefaultLimit.
func NewGate(store Store, limit int) *Gate {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Gate{
		store: store,
		limit: limit,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Begin records the outcome of a new search for user. Any earlier pending
// selection for the same user is superseded, so its menu can no longer resolve.
func (g *Gate) Begin(ctx context.Context, user, query string, candidates []club.Candidate) (Outcome, error) {
	if user == "" {
		return Outcome{}, ErrNoUser
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if len(candidates) < 2 {
		if err := g.store.Delete(ctx, user); err != nil {
			return Outcome{}, fmt.Errorf("clear pending selection: %w", err)
		}
		if len(candidates) == 0 {
			return Outcome{State: StateNoMatch, Query: query}, nil
		}
		return Outcome{State: StateResolved, Query: query, Candidate: candidates[0]}, nil
	}

	shown := candidates
	if len(shown) > g.limit {
		shown = shown[:g.limit]
	}
	shown = append([]club.Candidate(nil), shown...)

	sel := club.PendingSelection{
		SearchID:   g.newID(),
		User:       user,
		Query:      query,
		Candidates: shown,
		CreatedAt:  g.now(),
	}
	if err := g.store.Set(ctx, sel); err != nil {
		return Outcome{}, fmt.Errorf("store pending selection: %w", err)
	}

	return Outcome{
		State:      StateAwaitingSelection,
		Query:      query,
		SearchID:   sel.SearchID,
		Candidates: shown,
		Omitted:    len(candidates) - len(shown),
	}, nil
}

// Select resolves a 1-based choice against the user's pending selection.
// searchID must match the pending entry; an empty searchID skips that check.
// A mismatched searchID leaves the entry alone. Any other outcome consumes it.
func (g *Gate) Select(ctx context.Context, user, searchID string, index int) (club.Candidate, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sel, ok, err := g.store.Get(ctx, user)
	if err != nil {
		return club.Candidate{}, fmt.Errorf("load pending selection: %w", err)
	}
	if !ok {
		return club.Candidate{}, errors.Wrapf(club.ErrInvalidSelection, "no pending selection for user %s", user)
	}
	if searchID != "" && sel.SearchID != searchID {
		return club.Candidate{}, errors.Wrapf(club.ErrInvalidSelection, "search %s superseded by %s", searchID, sel.SearchID)
	}

	if err := g.store.Delete(ctx, user); err != nil {
		return club.Candidate{}, fmt.Errorf("consume pending selection: %w", err)
	}

	if index < 1 || index > len(sel.Candidates) {
		return club.Candidate{}, errors.Wrapf(club.ErrInvalidSelection, "index %d out of range 1..%d", index, len(sel.Candidates))
	}
	return sel.Candidates[index-1], nil
}
