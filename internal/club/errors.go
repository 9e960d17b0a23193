package club

import "github.com/cockroachdb/errors"

var (
	ErrNoMatch             = errors.New("no club found")
	ErrInvalidSelection    = errors.New("selection expired or invalid")
	ErrInsufficientData    = errors.New("insufficient club data")
	ErrUpstreamUnavailable = errors.New("summarizer unavailable")
	ErrQuotaExceeded       = errors.New("summarizer quota exceeded")
	ErrContextTooLarge     = errors.New("prompt exceeds model context")
	ErrEmptyResponse       = errors.New("summarizer returned no text")
)

// ErrorKind is the user-facing classification of a pipeline failure
type ErrorKind int

const (
	KindUnclassified ErrorKind = iota
	KindNoMatch
	KindInvalidSelection
	KindInsufficientData
	KindUpstreamUnavailable
	KindQuotaExceeded
	KindContextTooLarge
	KindEmptyResponse
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrNoMatch, KindNoMatch},
	{ErrInvalidSelection, KindInvalidSelection},
	{ErrInsufficientData, KindInsufficientData},
	{ErrUpstreamUnavailable, KindUpstreamUnavailable},
	{ErrQuotaExceeded, KindQuotaExceeded},
	{ErrContextTooLarge, KindContextTooLarge},
	{ErrEmptyResponse, KindEmptyResponse},
}

// Classify maps err onto the error taxonomy. Unknown errors are KindUnclassified.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnclassified
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnclassified
}
