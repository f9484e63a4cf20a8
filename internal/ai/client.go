// Package ai reaches the taxonomy and audit collaborators through an
// OpenAI-compatible chat completions endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/daylog/internal/domain"
)

// Config holds the endpoint settings for the collaborator.
type Config struct {
	BaseURL string // e.g. https://api.openai.com/v1
	APIKey  string
	Model   string
}

// Client calls the collaborator. Both methods return a
// *domain.CollaboratorError on failure. Deadlines come from the caller's
// context.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

// NewClient constructs a Client. A nil httpClient uses http.DefaultClient.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: httpClient, now: time.Now}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Stream         bool            `json:"stream"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Categorize asks the collaborator to label every entry in req.
// Labels for IDs that are not in req are dropped.
func (c *Client) Categorize(ctx context.Context, req domain.CategorizeRequest) (domain.Categorization, error) {
	user, err := categorizeInput(req)
	if err != nil {
		return nil, failure(domain.OpCategorize, domain.OutcomeMalformed, err)
	}

	content, err := c.complete(ctx, domain.OpCategorize, chatRequest{
		Messages: []message{
			{Role: "system", Content: categorizeSystemPrompt},
			{Role: "user", Content: user},
		},
		Temperature:    0.2,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	var raw map[string]string
	if err := json.Unmarshal([]byte(stripFence(content)), &raw); err != nil {
		return nil, failure(domain.OpCategorize, domain.OutcomeMalformed, fmt.Errorf("decode labels: %w", err))
	}

	known := make(map[uuid.UUID]bool, len(req.Entries))
	for _, e := range req.Entries {
		known[e.ID] = true
	}
	out := make(domain.Categorization, len(raw))
	for k, label := range raw {
		id, err := uuid.Parse(k)
		if err != nil || !known[id] {
			continue
		}
		out[id] = strings.TrimSpace(label)
	}
	return out, nil
}

// Audit asks the collaborator to review the user's day and returns its
// answer unmodified.
func (c *Client) Audit(ctx context.Context, req domain.AuditRequest) (string, error) {
	content, err := c.complete(ctx, domain.OpAudit, chatRequest{
		Messages: []message{
			{Role: "system", Content: auditPrompt(req, c.now())},
			{Role: "user", Content: "Audit my day."},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", failure(domain.OpAudit, domain.OutcomeMalformed, errors.New("empty response"))
	}
	return content, nil
}

// complete sends one chat completion and returns the first choice's content.
func (c *Client) complete(ctx context.Context, op string, body chatRequest) (string, error) {
	if c.cfg.APIKey == "" {
		return "", failure(op, domain.OutcomeUnavailable, errors.New("no API key configured"))
	}
	body.Model = c.cfg.Model

	payload, err := json.Marshal(body)
	if err != nil {
		return "", failure(op, domain.OutcomeMalformed, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", failure(op, domain.OutcomeUnavailable, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", failure(op, transportOutcome(ctx, err), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", failure(op, transportOutcome(ctx, err), fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", failure(op, domain.OutcomeUnavailable, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 200)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", failure(op, domain.OutcomeMalformed, fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", failure(op, domain.OutcomeMalformed, errors.New("no choices in response"))
	}
	return parsed.Choices[0].Message.Content, nil
}

func failure(op string, outcome domain.CollaboratorOutcome, err error) error {
	return &domain.CollaboratorError{Op: op, Outcome: outcome, Err: err}
}

// transportOutcome separates deadline expiry from every other transport failure.
func transportOutcome(ctx context.Context, err error) domain.CollaboratorOutcome {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return domain.OutcomeTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return domain.OutcomeTimeout
	}
	return domain.OutcomeUnavailable
}

// stripFence removes a surrounding ```json fence some models add anyway.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
