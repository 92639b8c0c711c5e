package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophcoach/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	path    string
	auth    string
	referer string
	title   string
	body    map[string]any
}

func newProvider(t *testing.T, status int, reply string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		got.referer = r.Header.Get("HTTP-Referer")
		got.title = r.Header.Get("X-Title")
		_ = json.NewDecoder(r.Body).Decode(&got.body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		OpenRouterAPIKey:  "sk-test",
		OpenRouterBaseURL: baseURL,
		CompletionModel:   "moonshotai/kimi-k2:free",
	}
}

func TestComplete_ReturnsFirstChoice(t *testing.T) {
	srv, got := newProvider(t, http.StatusOK,
		`{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":"Take a walk."}},{"index":1,"message":{"role":"assistant","content":"ignored"}}]}`)

	c := NewClient(testConfig(srv.URL))
	out, err := c.Complete(context.Background(), "I feel stuck")
	require.NoError(t, err)

	assert.Equal(t, "Take a walk.", out)
	assert.Equal(t, "/chat/completions", got.path)
	assert.Equal(t, "Bearer sk-test", got.auth)
	assert.Equal(t, "moonshotai/kimi-k2:free", got.body["model"])

	msgs, ok := got.body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	msg := msgs[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "I feel stuck", msg["content"])

	assert.Empty(t, got.referer)
	assert.Empty(t, got.title)
}

func TestComplete_SendsAttributionHeaders(t *testing.T) {
	srv, got := newProvider(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)

	cfg := testConfig(srv.URL)
	cfg.SiteURL = "https://coach.example"
	cfg.SiteName = "Coach"

	_, err := NewClient(cfg).Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "https://coach.example", got.referer)
	assert.Equal(t, "Coach", got.title)
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv, _ := newProvider(t, http.StatusOK, `{"choices":[]}`)

	_, err := NewClient(testConfig(srv.URL)).Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestComplete_ProviderError(t *testing.T) {
	srv, _ := newProvider(t, http.StatusUnauthorized, `{"error":{"message":"bad key","type":"auth"}}`)

	_, err := NewClient(testConfig(srv.URL)).Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")
}

func TestComplete_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(testConfig(srv.URL)).Complete(ctx, "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
