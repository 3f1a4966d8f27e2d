package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// ShutdownTarget names the deployment that runs an environment's server.
type ShutdownTarget struct {
	Namespace  string
	Deployment string
}

// Shutdown implements the shutdown_server action by scaling the
// environment's deployment to zero replicas.
type Shutdown struct {
	scaler  outbound.DeploymentScaler
	targets map[string]ShutdownTarget
	logger  *slog.Logger
}

var _ outbound.ActionExecutor = (*Shutdown)(nil)

func NewShutdown(scaler outbound.DeploymentScaler, targets map[string]ShutdownTarget, logger *slog.Logger) *Shutdown {
	if logger == nil {
		logger = slog.Default()
	}
	t := make(map[string]ShutdownTarget, len(targets))
	for env, target := range targets {
		t[strings.ToLower(env)] = target
	}
	return &Shutdown{scaler: scaler, targets: t, logger: logger.With("action", "shutdown_server")}
}

func (s *Shutdown) Name() string { return "shutdown_server" }

func (s *Shutdown) Description() string {
	return "Shut down the server for an environment by scaling it to zero. Parameters: environment."
}

func (s *Shutdown) Execute(ctx context.Context, params map[string]string) (string, error) {
	env := strings.TrimSpace(params["environment"])
	if env == "" {
		return "", fmt.Errorf("missing parameter: environment")
	}
	target, ok := s.targets[strings.ToLower(env)]
	if !ok {
		return "", fmt.Errorf("unknown environment %q", env)
	}

	s.logger.Info("shutting down server", "environment", env, "namespace", target.Namespace, "deployment", target.Deployment)
	if err := s.scaler.ScaleDeployment(ctx, target.Namespace, target.Deployment, 0); err != nil {
		return "", fmt.Errorf("shutting down %s: %w", env, err)
	}
	return fmt.Sprintf("Server %s shutdown executed.", env), nil
}
