// Package completion talks to an OpenAI-compatible chat-completion provider
// (OpenRouter by default).
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophcoach/internal/server/config"
	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyResponse is returned when the provider answers without choices.
var ErrEmptyResponse = errors.New("completion provider returned no choices")

// Completer turns a single user prompt into the model's reply text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Client struct {
	api   *openai.Client
	model string
}

// NewClient builds a client from the loaded settings. SiteURL and SiteName,
// when set, are sent as OpenRouter attribution headers.
func NewClient(cfg *config.Config) *Client {
	oc := openai.DefaultConfig(cfg.OpenRouterAPIKey)
	oc.BaseURL = cfg.OpenRouterBaseURL
	oc.HTTPClient = &http.Client{
		Transport: &attributionTransport{
			base:     http.DefaultTransport,
			siteURL:  cfg.SiteURL,
			siteName: cfg.SiteName,
		},
	}

	return &Client{
		api:   openai.NewClientWithConfig(oc),
		model: cfg.CompletionModel,
	}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

type attributionTransport struct {
	base     http.RoundTripper
	siteURL  string
	siteName string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.siteURL == "" && t.siteName == "" {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	if t.siteURL != "" {
		req.Header.Set("HTTP-Referer", t.siteURL)
	}
	if t.siteName != "" {
		req.Header.Set("X-Title", t.siteName)
	}
	return t.base.RoundTrip(req)
}
