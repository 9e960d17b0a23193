package mirror

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/hunterjsb/clubscout/internal/club"
)

// ClubLink is a club reference scraped from a result page
type ClubLink struct {
	Platform string
	ID       string
	Slug     string
	Name     string
}

// Candidate converts the link into a club candidate. ClubID keeps the platform so
// FetchDetail can rebuild the page path.
func (l ClubLink) Candidate() club.Candidate {
	name := l.Name
	if name == "" {
		name = strings.ReplaceAll(l.Slug, "-", " ")
	}
	return club.Candidate{
		SourceID: SourceID,
		ClubID:   l.Platform + "/" + l.ID,
		Name:     name,
		Platform: l.Platform,
	}
}

// ExtractClubs lists club links in document order, skipping repeats of the same club
func ExtractClubs(doc *goquery.Document) []ClubLink {
	var out []ClubLink
	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := clubHrefRegex.FindStringSubmatch(href)
		if m == nil {
			return
		}
		key := m[1] + "/" + m[2]
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, ClubLink{
			Platform: m[1],
			ID:       m[2],
			Slug:     strings.ToLower(m[3]),
			Name:     strings.TrimSpace(a.Text()),
		})
	})
	return out
}

// Slug lowercases s and joins its alphanumeric runs with dashes
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

// Matcher picks a link for the slugged query, reporting whether it found one
type Matcher func(querySlug string, links []ClubLink) (ClubLink, bool)

// DefaultLadder tries the strictest matcher first
var DefaultLadder = []Matcher{ExactSlug, PartialSlug, FirstClub}

// Pick runs the ladder and returns the first match
func Pick(ladder []Matcher, query string, links []ClubLink) (ClubLink, bool) {
	if len(links) == 0 {
		return ClubLink{}, false
	}
	qs := Slug(query)
	for _, m := range ladder {
		if link, ok := m(qs, links); ok {
			return link, true
		}
	}
	return ClubLink{}, false
}

func ExactSlug(qs string, links []ClubLink) (ClubLink, bool) {
	for _, l := range links {
		if l.Slug != "" && l.Slug == qs {
			return l, true
		}
	}
	return ClubLink{}, false
}

// PartialSlug matches when either slug contains the other
func PartialSlug(qs string, links []ClubLink) (ClubLink, bool) {
	if qs == "" {
		return ClubLink{}, false
	}
	for _, l := range links {
		if l.Slug == "" {
			continue
		}
		if strings.Contains(l.Slug, qs) || strings.Contains(qs, l.Slug) {
			return l, true
		}
	}
	return ClubLink{}, false
}

func FirstClub(_ string, links []ClubLink) (ClubLink, bool) {
	if len(links) == 0 {
		return ClubLink{}, false
	}
	return links[0], true
}
