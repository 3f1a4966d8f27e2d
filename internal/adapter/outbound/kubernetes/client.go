package kubernetes

import (
	"fmt"
	"time"

	k8s "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

const requestTimeout = 30 * time.Second

// NewClientset returns a clientset for the cluster that runs the booking
// site. Outside the cluster the kubeconfig path wins, then $KUBECONFIG and
// ~/.kube/config.
func NewClientset(inCluster bool, kubeconfigPath string) (k8s.Interface, error) {
	restConfig, err := loadRESTConfig(inCluster, kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("building k8s config: %w", err)
	}
	restConfig.UserAgent = "stayhub"
	restConfig.Timeout = requestTimeout

	clientset, err := k8s.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("creating k8s clientset: %w", err)
	}
	return clientset, nil
}

func loadRESTConfig(inCluster bool, kubeconfigPath string) (*rest.Config, error) {
	if inCluster {
		return rest.InClusterConfig()
	}
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	rules.ExplicitPath = kubeconfigPath
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).ClientConfig()
}
