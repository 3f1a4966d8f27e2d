package kubernetes

import (
	"context"
	"testing"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
)

func deployment(namespace, name string, replicas int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec:       appsv1.DeploymentSpec{Replicas: &replicas},
	}
}

func testScaler(objs ...runtime.Object) (*Scaler, *fake.Clientset) {
	clientset := fake.NewSimpleClientset(objs...)
	return NewScaler(clientset, []string{"kube-system", " Infra "}, nil), clientset
}

func TestScaleDeployment_ToZero(t *testing.T) {
	s, cs := testScaler(deployment("stayhub", "web", 2))

	if err := s.ScaleDeployment(context.Background(), "stayhub", "web", 0); err != nil {
		t.Fatalf("ScaleDeployment returned error: %v", err)
	}

	got, err := cs.AppsV1().Deployments("stayhub").Get(context.Background(), "web", metav1.GetOptions{})
	if err != nil {
		t.Fatalf("getting deployment: %v", err)
	}
	if got.Spec.Replicas == nil || *got.Spec.Replicas != 0 {
		t.Errorf("expected 0 replicas, got %v", got.Spec.Replicas)
	}
}

func TestScaleDeployment_BlockedNamespace(t *testing.T) {
	s, _ := testScaler(deployment("kube-system", "coredns", 2))

	for _, ns := range []string{"kube-system", "infra", "INFRA"} {
		if err := s.ScaleDeployment(context.Background(), ns, "coredns", 0); err == nil {
			t.Errorf("expected scale in %s to be denied", ns)
		}
	}
}

func TestScaleDeployment_Missing(t *testing.T) {
	s, _ := testScaler()
	if err := s.ScaleDeployment(context.Background(), "stayhub", "ghost", 0); err == nil {
		t.Error("expected error for missing deployment")
	}
}

func TestScaleDeployment_NegativeReplicas(t *testing.T) {
	s, _ := testScaler(deployment("stayhub", "web", 1))
	if err := s.ScaleDeployment(context.Background(), "stayhub", "web", -1); err == nil {
		t.Error("expected error for negative replicas")
	}
}

func TestHealthCheck(t *testing.T) {
	s, _ := testScaler()
	if err := s.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck returned unexpected error: %v", err)
	}
}

func TestNoopScaler(t *testing.T) {
	n := NewNoopScaler(nil)
	if err := n.ScaleDeployment(context.Background(), "stayhub", "web", 0); err != nil {
		t.Errorf("noop scale returned error: %v", err)
	}
	if err := n.HealthCheck(context.Background()); err == nil {
		t.Error("expected noop health check to report unavailability")
	}
}
