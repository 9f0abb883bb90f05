package test

import (
	"sync"
	"sync/atomic"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
)

// KubeConfigFake returns a kubeconfig with a single context pointing to server
// with a bearer token and a default namespace.
func KubeConfigFake(server, token, namespace string) *clientcmdapi.Config {
	kubeconfig := clientcmdapi.NewConfig()
	kubeconfig.Clusters["cluster"] = &clientcmdapi.Cluster{Server: server}
	kubeconfig.AuthInfos["user"] = &clientcmdapi.AuthInfo{Token: token}
	kubeconfig.Contexts["context"] = &clientcmdapi.Context{Cluster: "cluster", AuthInfo: "user", Namespace: namespace}
	kubeconfig.CurrentContext = "context"
	return kubeconfig
}

// WriteKubeConfig writes kubeconfig to path.
func WriteKubeConfig(kubeconfig *clientcmdapi.Config, path string) error {
	return clientcmd.WriteToFile(*kubeconfig, path)
}

// StaticProvider serves a fixed client and lets tests trigger kubeconfig changes.
type StaticProvider struct {
	Client api.KubernetesClient
	Closed atomic.Bool

	mu       sync.Mutex
	onChange func() error
}

func (p *StaticProvider) Kubernetes() api.KubernetesClient {
	return p.Client
}

func (p *StaticProvider) WatchKubeConfig(onKubeConfigChange func() error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = onKubeConfigChange
}

// ChangeKubeConfig calls the function registered with WatchKubeConfig, if any.
func (p *StaticProvider) ChangeKubeConfig() error {
	p.mu.Lock()
	onChange := p.onChange
	p.mu.Unlock()
	if onChange == nil {
		return nil
	}
	return onChange()
}

func (p *StaticProvider) Close() {
	p.Closed.Store(true)
}
