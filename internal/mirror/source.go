// Package mirror scrapes a third-party Pro Clubs stats site as a fallback club source.
//
// The site exposes club pages at /club/{platform}/{id}/{slug}. Search results are a
// list of such links; a club page carries its stats in marked-up tables.
package mirror

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hunterjsb/clubscout/internal/club"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	SourceID = "mirror"

	userAgent    = "Mozilla/5.0 (compatible; clubscout/1.0)"
	maxBodyBytes = 4 << 20

	defaultPageTTL = time.Minute
)

var clubHrefRegex = regexp.MustCompile(`/club/([A-Za-z0-9-]+)/(\d+)(?:/([^/?#]*))?`)

// Config configures the mirror source
type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64       // requests per second, 0 means unlimited
	PageTTL    time.Duration // how long a club page is reused across detail fetches
	Logger     *zap.Logger
}

// Source implements club.Source by scraping the mirror's HTML
type Source struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *zap.Logger

	mu      sync.Mutex
	pageTTL time.Duration
	now     func() time.Time
	pages   map[string]*pageEntry // key: club id
}

// pageEntry is one club page download, shared by every detail fetch for that club
type pageEntry struct {
	ready     chan struct{}
	doc       *goquery.Document
	err       error
	fetchedAt time.Time
}

var _ club.Source = (*Source)(nil)

// New creates a mirror source
func New(cfg Config) *Source {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var httpClient http.Client
	if cfg.HTTPClient != nil {
		httpClient = *cfg.HTTPClient
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = cfg.Timeout
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	pageTTL := cfg.PageTTL
	if pageTTL <= 0 {
		pageTTL = defaultPageTTL
	}

	return &Source{
		httpClient: &httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
		pageTTL:    pageTTL,
		now:        time.Now,
		pages:      make(map[string]*pageEntry),
	}
}

func (s *Source) ID() string {
	return SourceID
}

// Search returns at most one candidate, picked from the result page by the matcher ladder
func (s *Source) Search(ctx context.Context, query string) []club.Candidate {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	doc, err := s.fetch(ctx, "/search", url.Values{"q": {query}})
	if err != nil {
		s.logger.Warn("mirror search failed, continuing",
			zap.String("partition", SourceID),
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}

	link, ok := Pick(DefaultLadder, query, ExtractClubs(doc))
	if !ok {
		return nil
	}
	return []club.Candidate{link.Candidate()}
}

// FetchDetail scrapes one kind of detail from the club page.
// Concurrent and repeated fetches for the same club share one download for PageTTL.
func (s *Source) FetchDetail(ctx context.Context, clubID string, kind club.DetailKind) club.Detail {
	if kind.Kind == club.KindMemberCareer {
		// the mirror has no career table
		return club.Detail{}
	}

	doc, err := s.clubPage(ctx, strings.Trim(clubID, "/"))
	if err != nil {
		s.logger.Warn("mirror detail fetch failed, continuing",
			zap.String("partition", SourceID),
			zap.String("club_id", clubID),
			zap.String("detail", kind.String()),
			zap.Error(err),
		)
		return club.Detail{}
	}

	switch kind.Kind {
	case club.KindProfile:
		rec := keyValueTable(doc.Find("table.club-stats").First())
		if name := strings.TrimSpace(doc.Find("h1").First().Text()); name != "" {
			if rec == nil {
				rec = club.Blob{}
			}
			rec["name"] = name
		}
		return club.Detail{Record: rec}
	case club.KindAggregateStats:
		return club.Detail{Record: keyValueTable(doc.Find("table.club-stats").First())}
	case club.KindMemberStats:
		rows := rowTable(doc.Find("table.members").First())
		if len(rows) == 0 {
			return club.Detail{}
		}
		members := make([]any, len(rows))
		for i, r := range rows {
			members[i] = r
		}
		return club.Detail{Record: club.Blob{"members": members}}
	case club.KindMatches:
		sel := doc.Find(fmt.Sprintf(`table.matches[data-type=%q]`, string(kind.MatchType))).First()
		return club.Detail{Records: rowTable(sel)}
	}
	return club.Detail{}
}

// clubPage returns the parsed club page, downloading it only if no fresh or in-flight copy exists
func (s *Source) clubPage(ctx context.Context, clubID string) (*goquery.Document, error) {
	s.mu.Lock()
	page, ok := s.pages[clubID]
	if ok && !page.done() {
		s.mu.Unlock()
		return page.wait(ctx)
	}
	if ok && page.err == nil && s.now().Sub(page.fetchedAt) < s.pageTTL {
		s.mu.Unlock()
		return page.doc, nil
	}
	s.evictStale()
	page = &pageEntry{ready: make(chan struct{})}
	s.pages[clubID] = page
	s.mu.Unlock()

	doc, err := s.fetch(ctx, "/club/"+clubID, nil)

	s.mu.Lock()
	page.doc, page.err, page.fetchedAt = doc, err, s.now()
	if err != nil && s.pages[clubID] == page {
		// failures are shared with waiters but not reused later
		delete(s.pages, clubID)
	}
	s.mu.Unlock()
	close(page.ready)

	return doc, err
}

// evictStale drops finished pages past their TTL. The caller holds s.mu.
func (s *Source) evictStale() {
	now := s.now()
	for id, p := range s.pages {
		if p.done() && now.Sub(p.fetchedAt) >= s.pageTTL {
			delete(s.pages, id)
		}
	}
}

func (p *pageEntry) done() bool {
	select {
	case <-p.ready:
		return true
	default:
		return false
	}
}

func (p *pageEntry) wait(ctx context.Context) (*goquery.Document, error) {
	select {
	case <-p.ready:
		return p.doc, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Source) fetch(ctx context.Context, path string, params url.Values) (*goquery.Document, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("mirror base URL not configured")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := s.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mirror %s returned %d", path, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// keyValueTable reads th/td pairs from each row
func keyValueTable(table *goquery.Selection) club.Blob {
	rec := club.Blob{}
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		key := strings.TrimSpace(tr.Find("th").First().Text())
		if key == "" {
			return
		}
		rec[key] = strings.TrimSpace(tr.Find("td").First().Text())
	})
	if len(rec) == 0 {
		return nil
	}
	return rec
}

// rowTable maps each body row onto the header names
func rowTable(table *goquery.Selection) []club.Blob {
	var headers []string
	table.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(th.Text()))
	})
	if len(headers) == 0 {
		return nil
	}

	var rows []club.Blob
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		row := club.Blob{}
		tr.Find("td").Each(func(i int, td *goquery.Selection) {
			if i < len(headers) && headers[i] != "" {
				row[headers[i]] = strings.TrimSpace(td.Text())
			}
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})
	return rows
}
