package outbound

import "context"

// ActionExecutor is a named side-effecting operation. Execute must not fail
// for "nothing to do"; that belongs in the returned text.
type ActionExecutor interface {
	Name() string
	Execute(ctx context.Context, params map[string]string) (string, error)
}

// DeploymentScaler changes the replica count of a workload.
type DeploymentScaler interface {
	ScaleDeployment(ctx context.Context, namespace, name string, replicas int32) error
}
