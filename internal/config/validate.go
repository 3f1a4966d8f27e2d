package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks the config for errors and reports all of them at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if cfg.Server.MetricsPort < 0 || cfg.Server.MetricsPort > 65535 {
		errs = append(errs, "server.metricsPort must be between 0 and 65535")
	}
	if cfg.Server.MetricsPort != 0 && cfg.Server.MetricsPort == cfg.Server.Port {
		errs = append(errs, "server.metricsPort must differ from server.port")
	}

	if cfg.Telegram.BotToken == "" {
		errs = append(errs, "telegram.botToken is required")
	}
	switch cfg.Telegram.Mode {
	case TelegramModePolling:
	case TelegramModeWebhook:
		if cfg.Telegram.WebhookSecret == "" {
			errs = append(errs, "telegram.webhookSecret is required when mode is webhook")
		}
	default:
		errs = append(errs, fmt.Sprintf("telegram.mode must be webhook or polling (got %q)", cfg.Telegram.Mode))
	}
	if cfg.Telegram.AllowedSenderID < 0 {
		errs = append(errs, "telegram.allowedSenderID must not be negative")
	}

	if cfg.LLM.Ollama.BaseURL == "" {
		errs = append(errs, "llm.ollama.baseURL is required")
	}
	if cfg.LLM.Ollama.Model == "" {
		errs = append(errs, "llm.ollama.model is required")
	}

	if cfg.Actions.PendingTTL < 0 {
		errs = append(errs, "actions.pendingTTL must not be negative")
	}
	for env, target := range cfg.Actions.Shutdown.Targets {
		if target.Namespace == "" || target.Deployment == "" {
			errs = append(errs, fmt.Sprintf("actions.shutdown.targets.%s needs namespace and deployment", env))
		}
	}
	if cfg.Actions.Lights.Enabled && cfg.Actions.Lights.Endpoint == "" {
		errs = append(errs, "actions.lights.endpoint is required when lights are enabled")
	}
	var seen []string
	for i, c := range cfg.Actions.Commands {
		if c.Name == "" || c.Action == "" {
			errs = append(errs, fmt.Sprintf("actions.commands[%d] needs name and action", i))
			continue
		}
		if slices.Contains(seen, c.Name) {
			errs = append(errs, fmt.Sprintf("actions.commands[%d]: duplicate command %q", i, c.Name))
		}
		seen = append(seen, c.Name)
	}

	if cfg.SMS.Enabled {
		switch cfg.SMS.Auth {
		case "none":
		case "bearer", "hmac":
			if cfg.SMS.Secret == "" {
				errs = append(errs, fmt.Sprintf("sms.secret is required when sms.auth is %s", cfg.SMS.Auth))
			}
		default:
			errs = append(errs, fmt.Sprintf("sms.auth must be none, bearer, or hmac (got %q)", cfg.SMS.Auth))
		}
	}

	if cfg.Slack.Enabled {
		if cfg.Slack.BotToken == "" {
			errs = append(errs, "slack.botToken is required when slack is enabled")
		}
		if cfg.Slack.Channel == "" {
			errs = append(errs, "slack.channel is required when slack is enabled")
		}
	}

	if cfg.Database.SQLite.Path == "" {
		errs = append(errs, "database.sqlite.path is required")
	}

	if !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, cfg.Logging.Level) {
		errs = append(errs, fmt.Sprintf("logging.level must be debug, info, warn, or error (got %q)", cfg.Logging.Level))
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		errs = append(errs, fmt.Sprintf("logging.format must be json or text (got %q)", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
