package scout

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hunterjsb/clubscout/internal/club"
	"github.com/stretchr/testify/mock"
)

// fakeSource serves canned search results and details
type fakeSource struct {
	id      string
	results []club.Candidate
	details map[string]club.Detail // key: DetailKind.String()
	delay   time.Duration

	searches atomic.Int32

	mu      sync.Mutex
	fetched []string
}

func (f *fakeSource) ID() string { return f.id }

func (f *fakeSource) Search(ctx context.Context, query string) []club.Candidate {
	f.searches.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil
		}
	}
	return f.results
}

func (f *fakeSource) FetchDetail(_ context.Context, clubID string, kind club.DetailKind) club.Detail {
	f.mu.Lock()
	f.fetched = append(f.fetched, clubID+":"+kind.String())
	f.mu.Unlock()
	return f.details[kind.String()]
}

func (f *fakeSource) fetchedKinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

type mockSummarizer struct {
	mock.Mock
}

func (m *mockSummarizer) Summarize(ctx context.Context, prompt club.ReportPrompt) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func cand(source, id, name string) club.Candidate {
	return club.Candidate{SourceID: source, ClubID: id, Name: name}
}

func matchRecords(n int) []club.Blob {
	out := make([]club.Blob, n)
	for i := range out {
		out[i] = club.Blob{"matchId": float64(1000 - i)}
	}
	return out
}
