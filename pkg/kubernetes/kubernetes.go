package kubernetes

import (
	"fmt"

	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	metricsv1beta1 "k8s.io/metrics/pkg/client/clientset/versioned/typed/metrics/v1beta1"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/version"
)

// Kubernetes bundles the clients built from a single rest.Config.
type Kubernetes struct {
	kubernetes.Interface
	cfg             *rest.Config
	clientCmdConfig clientcmd.ClientConfig
	discoveryClient discovery.CachedDiscoveryInterface
	dynamicClient   dynamic.Interface
	metricsClient   metricsv1beta1.MetricsV1beta1Interface
}

var _ api.KubernetesClient = (*Kubernetes)(nil)

// NewKubernetes creates the typed, dynamic, discovery and metrics clients for restConfig.
func NewKubernetes(restConfig *rest.Config, clientCmdConfig clientcmd.ClientConfig) (*Kubernetes, error) {
	cfg := rest.CopyConfig(restConfig)
	if cfg.UserAgent == "" {
		cfg.UserAgent = version.UserAgent()
	}
	k := &Kubernetes{
		cfg:             cfg,
		clientCmdConfig: clientCmdConfig,
	}
	var err error
	if k.Interface, err = kubernetes.NewForConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}
	discoveryClient, err := discovery.NewDiscoveryClientForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}
	k.discoveryClient = memory.NewMemCacheClient(discoveryClient)
	if k.dynamicClient, err = dynamic.NewForConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}
	if k.metricsClient, err = metricsv1beta1.NewForConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}
	return k, nil
}

// NamespaceOrDefault returns the provided namespace or the namespace of the current kubeconfig context.
func (k *Kubernetes) NamespaceOrDefault(namespace string) string {
	if namespace != "" {
		return namespace
	}
	if k.clientCmdConfig != nil {
		if ns, _, err := k.clientCmdConfig.Namespace(); err == nil && ns != "" {
			return ns
		}
	}
	return "default"
}

func (k *Kubernetes) RESTConfig() *rest.Config {
	return k.cfg
}

func (k *Kubernetes) DiscoveryClient() discovery.DiscoveryInterface {
	return k.discoveryClient
}

func (k *Kubernetes) DynamicClient() dynamic.Interface {
	return k.dynamicClient
}

func (k *Kubernetes) MetricsV1beta1Client() metricsv1beta1.MetricsV1beta1Interface {
	return k.metricsClient
}

// ToRawKubeConfigLoader returns the kubeconfig loader the clients were built from.
func (k *Kubernetes) ToRawKubeConfigLoader() clientcmd.ClientConfig {
	return k.clientCmdConfig
}
