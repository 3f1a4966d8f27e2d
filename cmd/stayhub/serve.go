package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/jonny/stayhub/internal/adapter/inbound/telegrambot"
	"github.com/jonny/stayhub/internal/adapter/inbound/webhook"
	"github.com/jonny/stayhub/internal/adapter/inbound/webhook/parser"
	"github.com/jonny/stayhub/internal/adapter/outbound/executor"
	"github.com/jonny/stayhub/internal/adapter/outbound/kubernetes"
	"github.com/jonny/stayhub/internal/adapter/outbound/llm/ollama"
	"github.com/jonny/stayhub/internal/adapter/outbound/notification"
	slacknotifier "github.com/jonny/stayhub/internal/adapter/outbound/notification/slack"
	"github.com/jonny/stayhub/internal/adapter/outbound/persistence/sqlite"
	"github.com/jonny/stayhub/internal/adapter/outbound/telegram"
	"github.com/jonny/stayhub/internal/config"
	"github.com/jonny/stayhub/internal/domain/port/outbound"
	"github.com/jonny/stayhub/internal/domain/service"
	"github.com/jonny/stayhub/pkg/health"
	"github.com/jonny/stayhub/pkg/version"
)

// describer is implemented by executors that explain themselves to the
// intent classifier.
type describer interface {
	Description() string
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	checker := health.NewChecker()

	// --- Database ---
	store, err := sqlite.NewStore(sqlite.Config{
		Path:              cfg.Database.SQLite.Path,
		MaxOpenConns:      cfg.Database.SQLite.MaxOpenConns,
		PragmaJournalMode: cfg.Database.SQLite.PragmaJournalMode,
		PragmaBusyTimeout: cfg.Database.SQLite.PragmaBusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening sqlite store: %w", err)
	}
	defer store.Close()
	checker.Register("database", store.Ping)

	auditRepo := sqlite.NewAuditRepo(store)
	guestRepo := sqlite.NewGuestRepo(store)

	// --- Telegram ---
	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:       cfg.Telegram.BotToken,
		APIEndpoint: cfg.Telegram.APIEndpoint,
		Debug:       cfg.Telegram.Debug,
	}, logger)
	if err != nil {
		return err
	}
	sender := telegram.NewSender(bot, logger)

	// --- Notifiers ---
	var targets []notification.Named
	if cfg.Telegram.NotifyChatID != 0 {
		targets = append(targets, notification.Named{Name: "telegram", Notifier: telegram.NewNotifier(sender, cfg.Telegram.NotifyChatID)})
	}
	if cfg.Slack.Enabled {
		targets = append(targets, notification.Named{Name: "slack", Notifier: slacknotifier.NewNotifier(slacknotifier.Config{
			BotToken: cfg.Slack.BotToken,
			Channel:  cfg.Slack.Channel,
		})})
	}
	var notifier outbound.Notifier = notification.NewNoopNotifier(logger)
	if len(targets) > 0 {
		notifier = notification.NewFanout(targets...)
	}

	// --- Actions ---
	executors := []outbound.ActionExecutor{executor.NewAssess(guestRepo)}
	if cfg.Actions.Lights.Enabled {
		executors = append(executors, executor.NewLights(executor.LightsConfig{
			Endpoint: cfg.Actions.Lights.Endpoint,
			Token:    cfg.Actions.Lights.Token,
			Entity:   cfg.Actions.Lights.Entity,
			Timeout:  cfg.Actions.Lights.Timeout,
		}, logger))
	}
	if len(cfg.Actions.Shutdown.Targets) > 0 {
		scaler, err := newScaler(cfg.Kubernetes, checker, logger)
		if err != nil {
			return err
		}
		shutdownTargets := make(map[string]executor.ShutdownTarget, len(cfg.Actions.Shutdown.Targets))
		for env, t := range cfg.Actions.Shutdown.Targets {
			shutdownTargets[env] = executor.ShutdownTarget{Namespace: t.Namespace, Deployment: t.Deployment}
		}
		executors = append(executors, executor.NewShutdown(scaler, shutdownTargets, logger))
	}
	registry := service.NewActionRegistry(logger, executors...)

	descriptions := make(map[string]string, len(executors))
	for _, e := range executors {
		desc := e.Name()
		if d, ok := e.(describer); ok {
			desc = d.Description()
		}
		descriptions[e.Name()] = desc
	}

	// --- LLM ---
	llmClient, err := ollama.NewClient(ollama.Config{
		BaseURL:       cfg.LLM.Ollama.BaseURL,
		Model:         cfg.LLM.Ollama.Model,
		Timeout:       cfg.LLM.Ollama.Timeout,
		MaxRetries:    cfg.LLM.Ollama.MaxRetries,
		SystemPrompt:  cfg.LLM.Ollama.SystemPrompt,
		Temperature:   cfg.LLM.Ollama.Temperature,
		Actions:       descriptions,
		AlwaysConfirm: cfg.Actions.AlwaysConfirm,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating LLM client: %w", err)
	}
	checker.Register("llm", llmClient.HealthCheck)

	// --- Domain services ---
	dispatcher := service.NewDispatcher(service.DispatcherDeps{
		Registry: registry,
		Parser:   llmClient,
		Sender:   sender,
		Notifier: notifier,
		Audits:   auditRepo,
	}, service.DispatcherConfig{
		AllowedSenderID: cfg.Telegram.AllowedSenderID,
		BotUsername:     bot.Self.UserName,
		Commands:        slashCommands(cfg),
	}, logger)
	defer dispatcher.Wait()

	sweeper := service.NewSweeper(dispatcher.Pending(), dispatcher.Locks(), auditRepo,
		cfg.Actions.PendingTTL, cfg.Actions.SweepSchedule, logger)

	router := telegrambot.NewRouter(dispatcher, sender, logger)
	defer router.Wait()

	g, gCtx := errgroup.WithContext(ctx)

	// --- HTTP routes ---
	var routes webhook.Routes
	if cfg.SMS.Enabled {
		relay := service.NewSMSRelay(guestRepo, auditRepo, notifier, logger)
		defer relay.Wait()

		reg := parser.NewRegistry()
		reg.Register(parser.NewAndroidParser())
		reg.Register(parser.NewGenericParser())

		auth, err := webhook.AuthMiddleware(cfg.SMS.Auth, cfg.SMS.Secret)
		if err != nil {
			return fmt.Errorf("sms auth: %w", err)
		}
		routes.SMS = webhook.NewSMSHandler(reg, relay, logger)
		routes.SMSAuth = auth
		logger.Info("sms gateway callbacks enabled", "gateways", reg.Gateways(), "auth", cfg.SMS.Auth)
	}

	switch cfg.Telegram.Mode {
	case config.TelegramModeWebhook:
		routes.Telegram = telegrambot.NewWebhookHandler(gCtx, router, cfg.Telegram.WebhookSecret)
	default:
		poller := telegrambot.NewPoller(bot, router, cfg.Telegram.PollTimeout, logger)
		g.Go(func() error { return poller.Start(gCtx) })
	}

	server := webhook.NewServer(webhook.ServerConfig{
		Port:               cfg.Server.Port,
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		ShutdownTimeout:    cfg.Server.ShutdownTimeout,
		RateLimitPerMinute: cfg.Server.RateLimit.RequestsPerMinute,
		TrustProxy:         cfg.Server.RateLimit.TrustProxy,
	}, routes, logger)
	g.Go(func() error { return server.Start(gCtx) })

	// Health server.
	if cfg.Server.MetricsPort != 0 {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", checker.LivenessHandler())
		mux.HandleFunc("/readyz", checker.ReadinessHandler())
		healthServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
			Handler: mux,
		}
		g.Go(func() error {
			return webhook.Serve(gCtx, healthServer, cfg.Server.ShutdownTimeout, logger.With("component", "health-server"))
		})
	}

	g.Go(func() error { return sweeper.Start(gCtx) })

	logger.Info("stayhub started",
		"version", version.String(),
		"actions", registry.Actions(),
		"telegramMode", cfg.Telegram.Mode,
		"pendingTTL", cfg.Actions.PendingTTL,
	)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	logger.Info("stayhub stopped")
	return nil
}

// newScaler connects to Kubernetes, or returns a scaler that only logs when
// Kubernetes is disabled.
func newScaler(cfg config.KubernetesConfig, checker *health.Checker, logger *slog.Logger) (outbound.DeploymentScaler, error) {
	if !cfg.Enabled {
		logger.Warn("kubernetes disabled; shutdown_server will only log")
		return kubernetes.NewNoopScaler(logger), nil
	}
	clientset, err := kubernetes.NewClientset(cfg.InCluster, cfg.Kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("creating kubernetes clientset: %w", err)
	}
	scaler := kubernetes.NewScaler(clientset, cfg.BlockedNamespaces, logger)
	checker.Register("kubernetes", scaler.HealthCheck)
	return scaler, nil
}
