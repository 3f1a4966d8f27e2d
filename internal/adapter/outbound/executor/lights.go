package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// LightsConfig points at a Home Assistant instance.
type LightsConfig struct {
	Endpoint string
	Token    string
	// Entity is switched off when no area is given; "all" targets every light.
	Entity  string
	Timeout time.Duration
}

// Lights implements the lights_off action through the Home Assistant
// light.turn_off service.
type Lights struct {
	cfg    LightsConfig
	client *http.Client
	logger *slog.Logger
}

var _ outbound.ActionExecutor = (*Lights)(nil)

func NewLights(cfg LightsConfig, logger *slog.Logger) *Lights {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Entity == "" {
		cfg.Entity = "all"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Lights{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("action", "lights_off"),
	}
}

func (l *Lights) Name() string { return "lights_off" }

func (l *Lights) Description() string {
	return "Turn off the lights, optionally only in one area. Parameters: area (optional)."
}

// Execute switches lights off. An "area" parameter limits the call to one
// Home Assistant area.
func (l *Lights) Execute(ctx context.Context, params map[string]string) (string, error) {
	body := map[string]string{"entity_id": l.cfg.Entity}
	if area := strings.TrimSpace(params["area"]); area != "" {
		body = map[string]string{"area_id": area}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(l.cfg.Endpoint, "/") + "/api/services/light/turn_off"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if l.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+l.cfg.Token)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling home assistant: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("home assistant returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	// The service call answers with the list of states it changed.
	var changed []json.RawMessage
	if err := json.Unmarshal(respBody, &changed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	l.logger.Info("lights switched off", "entities", len(changed), "area", params["area"])
	return fmt.Sprintf("Lights off (%d entities).", len(changed)), nil
}
