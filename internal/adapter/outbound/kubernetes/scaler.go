package kubernetes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"

	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// Scaler changes deployment replica counts, refusing blocked namespaces.
type Scaler struct {
	clientset kubernetes.Interface
	blockedNS map[string]bool
	logger    *slog.Logger
}

var _ outbound.DeploymentScaler = (*Scaler)(nil)

func NewScaler(clientset kubernetes.Interface, blockedNamespaces []string, logger *slog.Logger) *Scaler {
	if logger == nil {
		logger = slog.Default()
	}
	blocked := make(map[string]bool, len(blockedNamespaces))
	for _, ns := range blockedNamespaces {
		blocked[strings.ToLower(strings.TrimSpace(ns))] = true
	}
	return &Scaler{
		clientset: clientset,
		blockedNS: blocked,
		logger:    logger.With("component", "k8s-scaler"),
	}
}

// IsNamespaceBlocked reports whether namespace may not be touched.
func (s *Scaler) IsNamespaceBlocked(namespace string) bool {
	return s.blockedNS[strings.ToLower(namespace)]
}

// ScaleDeployment sets the replica count via a strategic-merge patch.
func (s *Scaler) ScaleDeployment(ctx context.Context, namespace, name string, replicas int32) error {
	if s.IsNamespaceBlocked(namespace) {
		return fmt.Errorf("scale denied: namespace %s is blocked", namespace)
	}
	if replicas < 0 {
		return fmt.Errorf("invalid replica count %d", replicas)
	}

	patch := map[string]any{
		"spec": map[string]any{
			"replicas": replicas,
		},
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshalling scale patch: %w", err)
	}

	_, err = s.clientset.AppsV1().Deployments(namespace).Patch(
		ctx, name, types.StrategicMergePatchType, data, metav1.PatchOptions{})
	if err != nil {
		return fmt.Errorf("patching deployment %s/%s for scale: %w", namespace, name, err)
	}
	s.logger.Info("deployment scaled", "namespace", namespace, "deployment", name, "replicas", replicas)
	return nil
}

// HealthCheck verifies connectivity to the API server.
func (s *Scaler) HealthCheck(_ context.Context) error {
	if _, err := s.clientset.Discovery().ServerVersion(); err != nil {
		return fmt.Errorf("k8s health check failed: %w", err)
	}
	return nil
}
