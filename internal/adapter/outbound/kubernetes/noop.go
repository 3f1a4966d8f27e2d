package kubernetes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// NoopScaler stands in for a cluster during local development. Scaling only
// logs; HealthCheck reports Kubernetes as unavailable.
type NoopScaler struct {
	logger *slog.Logger
}

var _ outbound.DeploymentScaler = (*NoopScaler)(nil)

func NewNoopScaler(logger *slog.Logger) *NoopScaler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopScaler{logger: logger.With("component", "k8s-noop")}
}

func (n *NoopScaler) ScaleDeployment(_ context.Context, namespace, name string, replicas int32) error {
	n.logger.Warn("kubernetes disabled, scale skipped", "namespace", namespace, "deployment", name, "replicas", replicas)
	return nil
}

func (n *NoopScaler) HealthCheck(_ context.Context) error {
	return fmt.Errorf("kubernetes unavailable: running in local dev mode (noop scaler)")
}
