package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/jonny/stayhub/internal/adapter/outbound/llm/prompt"
	"github.com/jonny/stayhub/internal/domain/model"
	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// Config holds configuration for the Ollama client.
type Config struct {
	BaseURL      string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
	SystemPrompt string
	Temperature  float64
	// Actions maps each action the classifier may pick to a description.
	Actions map[string]string
	// AlwaysConfirm lists actions that need confirmation whatever the model says.
	AlwaysConfirm []string
}

// Client implements outbound.IntentParser using the Ollama chat API.
type Client struct {
	config        Config
	httpClient    *http.Client
	builder       *prompt.Builder
	actions       []prompt.ActionInput
	alwaysConfirm map[string]bool
	logger        *slog.Logger
}

var _ outbound.IntentParser = (*Client)(nil)

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	builder, err := prompt.NewBuilder()
	if err != nil {
		return nil, fmt.Errorf("creating prompt builder: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	names := make([]string, 0, len(cfg.Actions))
	for name := range cfg.Actions {
		names = append(names, name)
	}
	slices.Sort(names)
	actions := make([]prompt.ActionInput, len(names))
	for i, name := range names {
		actions[i] = prompt.ActionInput{Name: name, Description: cfg.Actions[name]}
	}

	confirm := make(map[string]bool, len(cfg.AlwaysConfirm))
	for _, name := range cfg.AlwaysConfirm {
		confirm[strings.ToLower(name)] = true
	}

	return &Client{
		config:        cfg,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		builder:       builder,
		actions:       actions,
		alwaysConfirm: confirm,
		logger:        logger.With("component", "ollama"),
	}, nil
}

// --- Ollama API types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  chatOptions   `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type chatResponse struct {
	Message         chatMessage `json:"message"`
	TotalDuration   int64       `json:"total_duration"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

// llmIntentResult mirrors the JSON the model returns.
type llmIntentResult struct {
	Action         string         `json:"action"`
	Parameters     map[string]any `json:"parameters"`
	RequireConfirm bool           `json:"require_confirm"`
}

// Parse classifies text into an intent. It never fails: empty input, an
// unreachable server or an unparseable answer all yield a zero Intent.
func (c *Client) Parse(ctx context.Context, text string) model.Intent {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Intent{}
	}
	intent, err := c.classify(ctx, text)
	if err != nil {
		c.logger.Warn("intent classification failed", "error", err)
		return model.Intent{}
	}
	return intent
}

func (c *Client) classify(ctx context.Context, text string) (model.Intent, error) {
	promptText, err := c.builder.BuildIntentPrompt(prompt.IntentInput{Actions: c.actions, Message: text})
	if err != nil {
		return model.Intent{}, fmt.Errorf("building intent prompt: %w", err)
	}

	messages := []chatMessage{}
	if c.config.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: c.config.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: promptText})

	raw, err := c.doChat(ctx, messages)
	if err != nil {
		return model.Intent{}, err
	}

	var result llmIntentResult
	if err := parseJSONFromContent(raw, &result); err != nil {
		return model.Intent{}, fmt.Errorf("parsing intent response: %w", err)
	}
	return c.mapIntent(result), nil
}

func (c *Client) mapIntent(r llmIntentResult) model.Intent {
	action := strings.TrimSpace(r.Action)
	if action == "" || strings.EqualFold(action, "none") {
		return model.Intent{}
	}
	params := make(map[string]string, len(r.Parameters))
	for k, v := range r.Parameters {
		switch val := v.(type) {
		case nil:
		case string:
			params[k] = val
		default:
			params[k] = fmt.Sprint(val)
		}
	}
	return model.Intent{
		Action:         action,
		Parameters:     params,
		RequireConfirm: r.RequireConfirm || c.alwaysConfirm[strings.ToLower(action)],
	}
}

// HealthCheck performs GET /api/tags to verify Ollama is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	url := c.config.BaseURL + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// doChat sends a chat request, retrying failed attempts until MaxRetries is
// exhausted or ctx is done.
func (c *Client) doChat(ctx context.Context, messages []chatMessage) (string, error) {
	body := chatRequest{
		Model:    c.config.Model,
		Messages: messages,
		Stream:   false,
		Format:   "json",
		Options:  chatOptions{Temperature: c.config.Temperature},
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	maxRetries := c.config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		raw, err := c.postChat(ctx, encoded)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.logger.Debug("ollama attempt failed", "attempt", attempt+1, "error", err)
	}
	return "", lastErr
}

func (c *Client) postChat(ctx context.Context, body []byte) (string, error) {
	url := c.config.BaseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}
	return chatResp.Message.Content, nil
}

// parseJSONFromContent extracts JSON from content that may be wrapped in
// markdown code fences.
func parseJSONFromContent(content string, dst any) error {
	content = strings.TrimSpace(content)

	if idx := strings.Index(content, "```"); idx != -1 {
		content = content[idx+3:]
		// optional language tag
		if nl := strings.Index(content, "\n"); nl != -1 {
			content = content[nl+1:]
		}
		if end := strings.LastIndex(content, "```"); end != -1 {
			content = content[:end]
		}
		content = strings.TrimSpace(content)
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no JSON object found in LLM response")
	}
	return json.Unmarshal([]byte(content[start:end+1]), dst)
}
