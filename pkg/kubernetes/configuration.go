package kubernetes

import (
	"k8s.io/client-go/rest"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/config"
)

const inClusterKubeConfigDefaultContext = "in-cluster"

// InClusterConfig is a variable that holds the function to get the in-cluster config
// Exposed for testing
var InClusterConfig = func() (*rest.Config, error) {
	inClusterConfig, err := rest.InClusterConfig()
	if inClusterConfig != nil {
		inClusterConfig.Host = "https://kubernetes.default.svc"
	}
	return inClusterConfig, err
}

// IsInCluster reports whether the server should use the in-cluster configuration.
func IsInCluster(cfg *config.StaticConfig) bool {
	if cfg != nil {
		switch cfg.ClusterProviderStrategy {
		case config.ClusterProviderInCluster:
			return true
		case config.ClusterProviderKubeConfig:
			return false
		}
		// Even if running in-cluster, if a kubeconfig is provided, we consider it as out-of-cluster
		if cfg.KubeConfig != "" {
			return false
		}
	}
	restConfig, err := InClusterConfig()
	return err == nil && restConfig != nil
}

// inClusterClientCmdConfig builds a kubeconfig equivalent of the in-cluster rest config
// to be used in places where clientcmd.ClientConfig is required.
func inClusterClientCmdConfig(restConfig *rest.Config) *clientcmdapi.Config {
	clientCmdConfig := clientcmdapi.NewConfig()
	clientCmdConfig.Clusters["cluster"] = &clientcmdapi.Cluster{
		Server:                restConfig.Host,
		InsecureSkipTLSVerify: restConfig.Insecure,
	}
	clientCmdConfig.AuthInfos["user"] = &clientcmdapi.AuthInfo{
		Token: restConfig.BearerToken,
	}
	clientCmdConfig.Contexts[inClusterKubeConfigDefaultContext] = &clientcmdapi.Context{
		Cluster:  "cluster",
		AuthInfo: "user",
	}
	clientCmdConfig.CurrentContext = inClusterKubeConfigDefaultContext
	return clientCmdConfig
}
