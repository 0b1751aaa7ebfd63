// Package llm talks to Claude Haiku on behalf of the farm oracle.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	defaultAPIURL = "https://api.anthropic.com/v1/messages"
	apiVersion    = "2023-06-01"
	defaultModel  = "claude-haiku-4-5-20251001"

	defaultPerMinute = 20
	maxErrorBody     = 512 // Bytes of an error reply kept in StatusError
)

var (
	// ErrDisabled is returned when no API key was configured.
	ErrDisabled = errors.New("oracle client not configured")
	// ErrRateLimited is returned once the per-minute budget is spent.
	ErrRateLimited = errors.New("oracle budget exhausted")
)

// StatusError is a non-200 reply from the Messages API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("messages API returned %d: %s", e.Code, e.Body)
}

// Client sends oracle prompts to the Anthropic Messages API.
type Client struct {
	apiKey     string
	httpClient *http.Client

	// Endpoint and Model may be overridden before first use.
	Endpoint string
	Model    string

	budget budget
}

// budget caps upstream calls per one-minute window so a busy farm cannot
// run up the bill.
type budget struct {
	mu      sync.Mutex
	limit   int
	used    int
	resetAt time.Time
}

func (b *budget) take(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if now.After(b.resetAt) {
		b.used = 0
		b.resetAt = now.Add(time.Minute)
	}
	if b.used >= b.limit {
		return false
	}
	b.used++
	return true
}

// NewClient returns nil when apiKey is empty; the oracle then stays silent.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		Endpoint:   defaultAPIURL,
		Model:      defaultModel,
		budget:     budget{limit: defaultPerMinute},
	}
}

// SetRateLimit changes how many prophecies may be requested per minute.
func (c *Client) SetRateLimit(perMin int) {
	if c == nil || perMin <= 0 {
		return
	}
	c.budget.mu.Lock()
	c.budget.limit = perMin
	c.budget.mu.Unlock()
}

// Enabled reports whether the client can reach the oracle.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type response struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete asks the model one question under the oracle's system prompt
// and returns the first text block of the reply.
func (c *Client) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if !c.budget.take(time.Now()) {
		return "", fmt.Errorf("%w (%d calls/min)", ErrRateLimited, c.budget.limit)
	}

	body, err := json.Marshal(request{
		Model:     c.Model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("messages API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode reply: %w", err)
	}
	if len(out.Content) == 0 {
		return "", errors.New("reply has no content")
	}

	slog.Debug("oracle call",
		"model", c.Model,
		"input_tokens", out.Usage.InputTokens,
		"output_tokens", out.Usage.OutputTokens,
	)
	return out.Content[0].Text, nil
}
