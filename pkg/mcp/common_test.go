package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/suite"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/opendatahub-io/rhoai-mcp-server/internal/test"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/cache"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/config"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/kubernetes/fakeclient"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/metrics"
	openshiftai "github.com/opendatahub-io/rhoai-mcp-server/pkg/openshift-ai"
)

func dataScienceProject(name string) *corev1.Namespace {
	return &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Labels:      map[string]string{openshiftai.DashboardLabel: "true"},
			Annotations: map[string]string{openshiftai.DisplayNameAnnotation: "Project " + name},
		},
		Status: corev1.NamespaceStatus{Phase: corev1.NamespaceActive},
	}
}

func notebook(namespace, name string, readyReplicas int64) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{Object: map[string]any{
		"spec": map[string]any{"template": map[string]any{"spec": map[string]any{
			"containers": []any{map[string]any{"name": name, "image": "quay.io/modh/odh-pytorch-notebook:v3"}},
		}}},
		"status": map[string]any{"readyReplicas": readyReplicas},
	}}
	obj.SetAPIVersion("kubeflow.org/v1")
	obj.SetKind("Notebook")
	obj.SetNamespace(namespace)
	obj.SetName(name)
	return obj
}

type BaseMcpSuite struct {
	suite.Suite
	*test.McpClient
	mcpServer  *Server
	provider   *test.StaticProvider
	Kubernetes *fakeclient.FakeKubernetesClient
	Cache      *cache.Cache
	Metrics    *metrics.Metrics
	Cfg        *config.StaticConfig
}

func (s *BaseMcpSuite) SetupTest() {
	s.Cfg = config.Default()
	s.Cfg.ListOutput = "json"
	s.Cfg.EnableResponseCaching = true
	s.Kubernetes = fakeclient.NewFakeKubernetesClient(
		fakeclient.WithCredentials("https://api.rhoai.example.com:6443", "sha256~test"),
		fakeclient.WithObjects(
			dataScienceProject("fraud-detection"),
			dataScienceProject("churn"),
			&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "kube-system"}},
		),
		fakeclient.WithCustomResources([]runtime.Object{
			notebook("fraud-detection", "jupyter", 1),
		}...),
		fakeclient.WithListKinds(openshiftai.ListKinds),
	)
	s.provider = &test.StaticProvider{Client: s.Kubernetes}
	var err error
	s.Metrics, err = metrics.New(metrics.Config{TracerName: "test", ServiceName: "test", ServiceVersion: "0.0.0"})
	s.Require().NoError(err, "Expected no error creating metrics")
	s.Cache = cache.New(cache.ConfigProviderFunc(func() cache.Config {
		return cache.Config{Enabled: s.Cfg.EnableResponseCaching, TTL: s.Cfg.CacheTTL()}
	}), cache.WithObserver(s.Metrics))
}

func (s *BaseMcpSuite) TearDownTest() {
	if s.McpClient != nil {
		s.McpClient.Close()
		s.McpClient = nil
	}
	if s.mcpServer != nil {
		_ = s.mcpServer.Shutdown(context.Background())
		s.mcpServer = nil
	}
}

func (s *BaseMcpSuite) InitMcpClient() {
	var err error
	s.mcpServer, err = NewServer(Configuration{StaticConfig: s.Cfg}, s.provider, WithCache(s.Cache), WithMetrics(s.Metrics))
	s.Require().NoError(err, "Expected no error creating MCP server")
	s.McpClient = test.NewInMemoryMcpClient(s.T(), func(ctx context.Context, transport mcp.Transport) error {
		_, err := s.mcpServer.Connect(ctx, transport)
		return err
	})
}

// callTool calls a tool that is expected to succeed and decodes its JSON text content.
func (s *BaseMcpSuite) callTool(name string, args map[string]any) map[string]any {
	result, err := s.CallTool(name, args)
	s.Require().NoError(err, "call to %s failed", name)
	s.Require().False(result.IsError, "call to %s returned an error: %s", name, test.Text(result))
	decoded, err := test.Decode(result)
	s.Require().NoError(err, "call to %s returned invalid JSON: %s", name, test.Text(result))
	return decoded
}
