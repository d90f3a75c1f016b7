// Package inference is the HTTP client for the text-generation
// collaborator. The core only ever asks it one thing (turn a query
// into a date phrase), so the surface is a single Infer call.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hindsightlabs/hindsight/internal/retry"
	"github.com/hindsightlabs/hindsight/internal/utils"
)

// Options configures the inference client.
type Options struct {
	Endpoint    string // completion endpoint URL
	APIKey      string // bearer token, optional
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client calls a text-generation endpoint. Transient failures (network
// errors, 429, 5xx) are marked so the caller's retry policy can
// distinguish them from permanent ones.
type Client struct {
	opts Options
	http *http.Client
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 50
	}
	return &Client{
		opts: opts,
		http: &http.Client{Timeout: opts.Timeout},
	}
}

type generateRequest struct {
	Model       string  `json:"model,omitempty"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Infer sends prompt to the completion endpoint and returns the
// generated text, trimmed.
func (c *Client) Infer(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:       c.opts.Model,
		Prompt:      prompt,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", retry.Transient(fmt.Errorf("inference request failed: %w", err))
	}
	defer utils.Close(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", retry.Transient(fmt.Errorf("failed to read inference response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("inference endpoint returned status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", retry.Transient(err)
		}
		return "", err
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode inference response: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("inference endpoint returned empty text")
	}
	return strings.TrimSpace(out.Text), nil
}

// Retrying decorates a client so transient failures are retried with
// backoff before the caller sees them.
type Retrying struct {
	inner  *Client
	policy retry.Policy
}

func WithRetry(c *Client, p retry.Policy) *Retrying {
	return &Retrying{inner: c, policy: p}
}

func (r *Retrying) Infer(ctx context.Context, prompt string) (string, error) {
	return retry.Do(ctx, r.policy, func() (string, error) {
		return r.inner.Infer(ctx, prompt)
	})
}
