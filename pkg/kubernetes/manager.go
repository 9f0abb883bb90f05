package kubernetes

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
	"k8s.io/klog/v2"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/config"
)

// Manager owns the Kubernetes clients and rebuilds them when the kubeconfig changes.
type Manager struct {
	staticConfig *config.StaticConfig
	inCluster    bool

	mu         sync.RWMutex
	kubernetes *Kubernetes

	closeWatchKubeConfig func() error
}

var (
	ErrorKubeconfigInClusterNotAllowed = errors.New("kubeconfig manager cannot be used in in-cluster deployments")
	ErrorInClusterNotInCluster         = errors.New("in-cluster manager cannot be used outside of a cluster")
)

// NewManager creates a kubeconfig or in-cluster manager depending on the configured strategy.
func NewManager(cfg *config.StaticConfig) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if IsInCluster(cfg) {
		return NewInClusterManager(cfg)
	}
	return NewKubeconfigManager(cfg)
}

func NewKubeconfigManager(cfg *config.StaticConfig) (*Manager, error) {
	if cfg.ClusterProviderStrategy == config.ClusterProviderInCluster {
		return nil, ErrorKubeconfigInClusterNotAllowed
	}
	m := &Manager{staticConfig: cfg}
	if err := m.reloadKubeconfig(); err != nil {
		return nil, err
	}
	return m, nil
}

func NewInClusterManager(cfg *config.StaticConfig) (*Manager, error) {
	if cfg.KubeConfig != "" {
		return nil, fmt.Errorf("kubeconfig file %s cannot be used with the in-cluster deployments: %w", cfg.KubeConfig, ErrorKubeconfigInClusterNotAllowed)
	}

	restConfig, err := InClusterConfig()
	if err != nil || restConfig == nil {
		return nil, fmt.Errorf("%w: %v", ErrorInClusterNotInCluster, err)
	}

	k, err := NewKubernetes(restConfig, clientcmd.NewDefaultClientConfig(*inClusterClientCmdConfig(restConfig), nil))
	if err != nil {
		return nil, err
	}
	return &Manager{staticConfig: cfg, inCluster: true, kubernetes: k}, nil
}

func (m *Manager) clientCmdConfig() clientcmd.ClientConfig {
	pathOptions := clientcmd.NewDefaultPathOptions()
	if m.staticConfig.KubeConfig != "" {
		pathOptions.LoadingRules.ExplicitPath = m.staticConfig.KubeConfig
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		pathOptions.LoadingRules,
		&clientcmd.ConfigOverrides{ClusterInfo: clientcmdapi.Cluster{Server: ""}})
}

func (m *Manager) reloadKubeconfig() error {
	clientCmdConfig := m.clientCmdConfig()
	restConfig, err := clientCmdConfig.ClientConfig()
	if err != nil {
		return fmt.Errorf("failed to create kubernetes rest config from kubeconfig: %w", err)
	}
	k, err := NewKubernetes(restConfig, clientCmdConfig)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.kubernetes = k
	m.mu.Unlock()
	return nil
}

// Kubernetes returns the clients for the current kubeconfig.
func (m *Manager) Kubernetes() api.KubernetesClient {
	return m.current()
}

func (m *Manager) current() *Kubernetes {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.kubernetes
}

// RESTConfig returns the rest.Config of the current clients.
func (m *Manager) RESTConfig() *rest.Config {
	return m.Kubernetes().RESTConfig()
}

// IsInCluster reports whether the manager uses the in-cluster configuration.
func (m *Manager) IsInCluster() bool {
	return m.inCluster
}

// WatchKubeConfig rebuilds the clients whenever one of the kubeconfig files changes
// and then calls onKubeConfigChange.
func (m *Manager) WatchKubeConfig(onKubeConfigChange func() error) {
	if m.inCluster {
		return
	}
	kubeConfigFiles := m.current().ToRawKubeConfigLoader().ConfigAccess().GetLoadingPrecedence()
	if len(kubeConfigFiles) == 0 {
		return
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return
	}
	for _, file := range kubeConfigFiles {
		_ = watcher.Add(file)
	}
	go func() {
		for {
			select {
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				if reloadErr := m.reloadKubeconfig(); reloadErr != nil {
					klog.Warningf("Failed to reload kubeconfig: %v", reloadErr)
					continue
				}
				if onKubeConfigChange != nil {
					_ = onKubeConfigChange()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closeWatchKubeConfig != nil {
		_ = m.closeWatchKubeConfig()
	}
	m.closeWatchKubeConfig = watcher.Close
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closeWatchKubeConfig != nil {
		_ = m.closeWatchKubeConfig()
		m.closeWatchKubeConfig = nil
	}
}
