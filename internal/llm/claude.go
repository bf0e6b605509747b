package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
)

type ClaudeClient struct {
	client     *anthropic.Client
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	opts       Options
}

func NewClaudeClient(apiKey, model, baseURL string, opts Options) *ClaudeClient {
	var clientOpts []anthropic.ClientOption
	if baseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(baseURL))
	} else {
		baseURL = anthropicDefaultBaseURL
	}
	return &ClaudeClient{
		client:     anthropic.NewClient(apiKey, clientOpts...),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		opts:       opts,
	}
}

func (c *ClaudeClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	temperature := c.opts.Temperature
	topP := c.opts.TopP
	// The Anthropic API has no seed parameter; temperature and top-p are
	// the only determinism knobs available here.
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:  anthropic.Model(c.model),
		System: system,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens:   1000,
		Temperature: &temperature,
		TopP:        &topP,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Content) > 0 && resp.Content[0].Text != nil {
		return *resp.Content[0].Text, nil
	}
	return "", fmt.Errorf("no response content")
}

// Available issues a one-item models listing, the cheapest
// side-effect-free call the API documents. Any 2xx means the service is
// reachable and the key is accepted.
func (c *ClaudeClient) Available(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models?limit=1", nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("anthropic models endpoint returned %s", resp.Status)
	}
	return nil
}
