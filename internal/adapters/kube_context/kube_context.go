package kube_context

import (
	"errors"
	"fmt"

	"kgen/internal/ports"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

var _ ports.KubeContext = (*KubeConfig)(nil)

var errNoCurrentContext = errors.New("kubeconfig has no current context")

// KubeConfig reads the current context from the kubeconfig files selected by the
// usual rules: $KUBECONFIG, then ~/.kube/config.
type KubeConfig struct {
	loadingRules *clientcmd.ClientConfigLoadingRules
}

func ProvideKubeConfig() *KubeConfig {
	return &KubeConfig{loadingRules: clientcmd.NewDefaultClientConfigLoadingRules()}
}

// NewKubeConfigAt reads the kubeconfig at path only.
func NewKubeConfigAt(path string) *KubeConfig {
	return &KubeConfig{loadingRules: &clientcmd.ClientConfigLoadingRules{ExplicitPath: path}}
}

func (k *KubeConfig) load() (*clientcmdapi.Config, error) {
	config, err := k.loadingRules.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	if config.CurrentContext == "" {
		return nil, errNoCurrentContext
	}
	return config, nil
}

func (k *KubeConfig) CurrentContext() (string, error) {
	config, err := k.load()
	if err != nil {
		return "", err
	}
	return config.CurrentContext, nil
}

func (k *KubeConfig) CurrentNamespace() (string, error) {
	config, err := k.load()
	if err != nil {
		return "", err
	}
	current, ok := config.Contexts[config.CurrentContext]
	if !ok {
		return "", fmt.Errorf("current context '%s' is not defined", config.CurrentContext)
	}
	return current.Namespace, nil
}
