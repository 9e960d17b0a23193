package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hunterjsb/clubscout/internal/club"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "  Strong pressing side.  "}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func newTestClient(t *testing.T, status int, body string) (*Client, *atomic.Value) {
	t.Helper()
	var lastRequest atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		lastRequest.Store(string(raw))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1", MaxTokens: 100, Temperature: 0.5}), &lastRequest
}

func apiError(code, typ, msg string) string {
	return `{"error": {"message": "` + msg + `", "type": "` + typ + `", "code": "` + code + `"}}`
}

func TestSummarize_Success(t *testing.T) {
	c, last := newTestClient(t, http.StatusOK, okBody)

	text, err := c.Summarize(context.Background(), club.ReportPrompt{System: "be brief", User: "club data"})
	require.NoError(t, err)
	assert.Equal(t, "Strong pressing side.", text)

	req := last.Load().(string)
	assert.Contains(t, req, `"role":"system"`)
	assert.Contains(t, req, "be brief")
	assert.Contains(t, req, "club data")
	assert.Contains(t, req, `"model":"gpt-4o-mini"`)
}

func TestChat_Success(t *testing.T) {
	c, last := newTestClient(t, http.StatusOK, okBody)

	text, err := c.Chat(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Strong pressing side.", text)
	assert.NotContains(t, last.Load().(string), `"role":"system"`)
}

func TestSummarize_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   club.ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, apiError("invalid_api_key", "invalid_request_error", "Incorrect API key"), club.KindUpstreamUnavailable},
		{"forbidden", http.StatusForbidden, apiError("", "invalid_request_error", "region not supported"), club.KindUpstreamUnavailable},
		{"rate limited", http.StatusTooManyRequests, apiError("rate_limit_exceeded", "requests", "Rate limit reached"), club.KindQuotaExceeded},
		{"quota", http.StatusTooManyRequests, apiError("insufficient_quota", "insufficient_quota", "You exceeded your current quota"), club.KindQuotaExceeded},
		{"context code", http.StatusBadRequest, apiError("context_length_exceeded", "invalid_request_error", "too long"), club.KindContextTooLarge},
		{"context message", http.StatusBadRequest, apiError("", "invalid_request_error", "This model's maximum context length is 128000 tokens"), club.KindContextTooLarge},
		{"server error", http.StatusBadGateway, "<html>bad gateway</html>", club.KindUpstreamUnavailable},
		{"other bad request", http.StatusBadRequest, apiError("invalid_value", "invalid_request_error", "bad temperature"), club.KindUnclassified},
		{"no choices", http.StatusOK, `{"id": "x", "choices": []}`, club.KindEmptyResponse},
		{"blank content", http.StatusOK, `{"id": "x", "choices": [{"index": 0, "message": {"role": "assistant", "content": "   "}, "finish_reason": "length"}]}`, club.KindEmptyResponse},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, _ := newTestClient(t, test.status, test.body)
			_, err := c.Summarize(context.Background(), club.ReportPrompt{System: "s", User: "u"})
			require.Error(t, err)
			assert.Equal(t, test.want, club.Classify(err), "error: %v", err)
		})
	}
}

func TestSummarize_MissingKey(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Summarize(context.Background(), club.ReportPrompt{User: "u"})
	assert.ErrorIs(t, err, club.ErrUpstreamUnavailable)
	assert.Equal(t, int32(0), calls.Load())
}

func TestClassify_KeepsCause(t *testing.T) {
	c, _ := newTestClient(t, http.StatusTooManyRequests, apiError("insufficient_quota", "insufficient_quota", "quota gone"))
	_, err := c.Chat(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "quota gone"), err.Error())
}
