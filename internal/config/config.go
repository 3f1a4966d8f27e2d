package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	LLM        LLMConfig        `yaml:"llm"`
	Actions    ActionsConfig    `yaml:"actions"`
	Kubernetes KubernetesConfig `yaml:"kubernetes"`
	SMS        SMSConfig        `yaml:"sms"`
	Slack      SlackConfig      `yaml:"slack"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port            int             `yaml:"port"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	MetricsPort     int             `yaml:"metricsPort"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	TrustProxy        bool `yaml:"trustProxy"`
}

// Telegram update delivery modes.
const (
	TelegramModeWebhook = "webhook"
	TelegramModePolling = "polling"
)

type TelegramConfig struct {
	BotToken      string `yaml:"botToken"`
	Mode          string `yaml:"mode"`
	WebhookSecret string `yaml:"webhookSecret"`
	// AllowedSenderID is the only user whose direct messages are handled.
	// Zero allows everyone.
	AllowedSenderID int64  `yaml:"allowedSenderID"`
	NotifyChatID    int64  `yaml:"notifyChatID"`
	APIEndpoint     string `yaml:"apiEndpoint"`
	PollTimeout     int    `yaml:"pollTimeout"`
	Debug           bool   `yaml:"debug"`
}

type LLMConfig struct {
	Ollama OllamaConfig `yaml:"ollama"`
}

type OllamaConfig struct {
	BaseURL      string        `yaml:"baseURL"`
	Model        string        `yaml:"model"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Temperature  float64       `yaml:"temperature"`
}

type ActionsConfig struct {
	// PendingTTL expires unconfirmed actions. Zero keeps them until restart.
	PendingTTL    time.Duration   `yaml:"pendingTTL"`
	SweepSchedule string          `yaml:"sweepSchedule"`
	AlwaysConfirm []string        `yaml:"alwaysConfirm"`
	Shutdown      ShutdownConfig  `yaml:"shutdown"`
	Lights        LightsConfig    `yaml:"lights"`
	Commands      []CommandConfig `yaml:"commands"`
}

type ShutdownConfig struct {
	// Targets maps an environment name to the deployment scaled to zero.
	Targets map[string]ShutdownTargetConfig `yaml:"targets"`
}

type ShutdownTargetConfig struct {
	Namespace  string `yaml:"namespace"`
	Deployment string `yaml:"deployment"`
}

type LightsConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint"`
	Token    string        `yaml:"token"`
	Entity   string        `yaml:"entity"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CommandConfig overrides the built-in slash command table when any are set.
type CommandConfig struct {
	Name           string            `yaml:"name"`
	Action         string            `yaml:"action"`
	Parameters     map[string]string `yaml:"parameters"`
	RequireConfirm bool              `yaml:"requireConfirm"`
	Description    string            `yaml:"description"`
	ArgParam       string            `yaml:"argParam"`
}

type KubernetesConfig struct {
	Enabled           bool     `yaml:"enabled"`
	InCluster         bool     `yaml:"inCluster"`
	Kubeconfig        string   `yaml:"kubeconfig"`
	BlockedNamespaces []string `yaml:"blockedNamespaces"`
}

type SMSConfig struct {
	Enabled bool `yaml:"enabled"`
	// Auth is one of none, bearer or hmac.
	Auth   string `yaml:"auth"`
	Secret string `yaml:"secret"`
}

type SlackConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"botToken"`
	Channel  string `yaml:"channel"`
}

type DatabaseConfig struct {
	SQLite SQLiteConfig `yaml:"sqlite"`
}

type SQLiteConfig struct {
	Path              string `yaml:"path"`
	MaxOpenConns      int    `yaml:"maxOpenConns"`
	PragmaJournalMode string `yaml:"pragmaJournalMode"`
	PragmaBusyTimeout int    `yaml:"pragmaBusyTimeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path over the defaults, expanding ${VAR}
// references, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MetricsPort:     9090,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 120,
			},
		},
		Telegram: TelegramConfig{
			Mode:        TelegramModePolling,
			PollTimeout: 30,
		},
		LLM: LLMConfig{
			Ollama: OllamaConfig{
				BaseURL:     "http://localhost:11434",
				Model:       "llama3:8b",
				Timeout:     60 * time.Second,
				MaxRetries:  2,
				Temperature: 0.1,
			},
		},
		Actions: ActionsConfig{
			SweepSchedule: "@every 1m",
			AlwaysConfirm: []string{"shutdown_server"},
			Lights: LightsConfig{
				Entity:  "all",
				Timeout: 10 * time.Second,
			},
		},
		Kubernetes: KubernetesConfig{
			InCluster:         true,
			BlockedNamespaces: []string{"kube-system", "kube-public", "kube-node-lease"},
		},
		SMS: SMSConfig{
			Auth: "bearer",
		},
		Database: DatabaseConfig{
			SQLite: SQLiteConfig{
				Path:              "/data/stayhub.db",
				MaxOpenConns:      1,
				PragmaJournalMode: "wal",
				PragmaBusyTimeout: 5000,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left as written.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "${" + key + "}"
	})
}
