package ea

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hunterjsb/clubscout/internal/club"
)

// recordStrategy tries to pull a single club record out of a decoded payload
type recordStrategy func(payload any, clubID string) (club.Blob, bool)

// recordStrategies is tried in order; the first hit wins
var recordStrategies = []recordStrategy{
	byClubKey,
	firstElement,
	wholeObject,
}

// normalizeRecord extracts the record for clubID, or nil if no strategy applies
func normalizeRecord(payload any, clubID string) club.Blob {
	for _, strategy := range recordStrategies {
		if rec, ok := strategy(payload, clubID); ok {
			return rec
		}
	}
	return nil
}

func byClubKey(payload any, clubID string) (club.Blob, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[clubID]
	if !ok {
		return nil, false
	}
	if rec, ok := v.(map[string]any); ok && len(rec) > 0 {
		return rec, true
	}
	return firstElement(v, clubID)
}

func firstElement(payload any, _ string) (club.Blob, bool) {
	arr, ok := payload.([]any)
	if !ok || len(arr) == 0 {
		return nil, false
	}
	rec, ok := arr[0].(map[string]any)
	if !ok || len(rec) == 0 {
		return nil, false
	}
	return rec, true
}

func wholeObject(payload any, _ string) (club.Blob, bool) {
	m, ok := payload.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, false
	}
	return m, true
}

// normalizeList extracts a list of records. The list is either the payload itself
// or sits under the clubID key.
func normalizeList(payload any, clubID string) []club.Blob {
	switch v := payload.(type) {
	case []any:
		return blobs(v)
	case map[string]any:
		if arr, ok := v[clubID].([]any); ok {
			return blobs(arr)
		}
	}
	return nil
}

func blobs(arr []any) []club.Blob {
	out := make([]club.Blob, 0, len(arr))
	for _, item := range arr {
		if rec, ok := item.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// searchEntries flattens a search payload into (key, entry) pairs.
// Object payloads are keyed by clubId and walked in sorted key order.
func searchEntries(payload any) []searchEntry {
	switch v := payload.(type) {
	case []any:
		out := make([]searchEntry, 0, len(v))
		for _, item := range v {
			if rec, ok := item.(map[string]any); ok {
				out = append(out, searchEntry{record: rec})
			}
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]searchEntry, 0, len(keys))
		for _, k := range keys {
			if rec, ok := v[k].(map[string]any); ok {
				out = append(out, searchEntry{key: k, record: rec})
			}
		}
		return out
	}
	return nil
}

type searchEntry struct {
	key    string
	record club.Blob
}

// candidate converts one search entry, returning false if it lacks an id or name
func (e searchEntry) candidate(platform string) (club.Candidate, bool) {
	info, _ := e.record["clubInfo"].(map[string]any)

	id := firstString(e.record["clubId"], lookup(info, "clubId"))
	if id == "" {
		id = e.key
	}
	name := firstString(e.record["clubName"], e.record["name"], lookup(info, "name"))
	if id == "" || name == "" {
		return club.Candidate{}, false
	}

	return club.Candidate{
		SourceID: platform,
		ClubID:   id,
		Name:     name,
		Region:   firstString(e.record["regionId"], lookup(info, "regionId")),
		Division: firstString(e.record["currentDivision"], e.record["bestDivision"], e.record["division"]),
		Platform: platform,
	}, true
}

func lookup(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

// firstString returns the first value that renders to a non-empty string
func firstString(values ...any) string {
	for _, v := range values {
		if s := scalarString(v); s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}
