package fakeclient

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"
	fakediscovery "k8s.io/client-go/discovery/fake"
	"k8s.io/client-go/dynamic"
	fakedynamic "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes"
	fakekubernetes "k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/rest"
	metricsv1beta1api "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	fakemetrics "k8s.io/metrics/pkg/client/clientset/versioned/fake"
	metricsv1beta1 "k8s.io/metrics/pkg/client/clientset/versioned/typed/metrics/v1beta1"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
)

var nodeMetricsResource = metricsv1beta1api.SchemeGroupVersion.WithResource("nodes")

// FakeKubernetesClient implements api.KubernetesClient for testing.
// Typed resources are served by the client-go fake clientset, custom resources by the fake dynamic client.
type FakeKubernetesClient struct {
	kubernetes.Interface
	Clientset  *fakekubernetes.Clientset
	DynClient  *fakedynamic.FakeDynamicClient
	Metrics    *fakemetrics.Clientset
	Config     *rest.Config
	Namespace  string
	DiscClient *fakediscovery.FakeDiscovery
}

var _ api.KubernetesClient = (*FakeKubernetesClient)(nil)

type options struct {
	objects      []runtime.Object
	customObject []runtime.Object
	listKinds    map[schema.GroupVersionResource]string
	nodeMetrics  []*metricsv1beta1api.NodeMetrics
	resources    []*metav1.APIResourceList
	host         string
	bearerToken  string
	namespace    string
}

// Option is a functional option for configuring FakeKubernetesClient
type Option func(*options)

// WithObjects seeds the typed clientset (namespaces, nodes, secrets, PVCs...).
func WithObjects(objects ...runtime.Object) Option {
	return func(o *options) {
		o.objects = append(o.objects, objects...)
	}
}

// WithCustomResources seeds the dynamic client with unstructured objects.
func WithCustomResources(objects ...runtime.Object) Option {
	return func(o *options) {
		o.customObject = append(o.customObject, objects...)
	}
}

// WithListKinds registers the list kinds of the custom resources the dynamic client can list.
func WithListKinds(listKinds map[schema.GroupVersionResource]string) Option {
	return func(o *options) {
		if o.listKinds == nil {
			o.listKinds = make(map[schema.GroupVersionResource]string)
		}
		for gvr, kind := range listKinds {
			o.listKinds[gvr] = kind
		}
	}
}

// WithNodeMetrics seeds the metrics API with node usage.
func WithNodeMetrics(nodeMetrics ...*metricsv1beta1api.NodeMetrics) Option {
	return func(o *options) {
		o.nodeMetrics = append(o.nodeMetrics, nodeMetrics...)
	}
}

// WithAPIResources sets the resources returned by discovery.
func WithAPIResources(resources ...*metav1.APIResourceList) Option {
	return func(o *options) {
		o.resources = append(o.resources, resources...)
	}
}

// WithCredentials sets the API server host and bearer token of the rest.Config.
func WithCredentials(host, bearerToken string) Option {
	return func(o *options) {
		o.host = host
		o.bearerToken = bearerToken
	}
}

// WithNamespace sets the namespace of the current context.
func WithNamespace(namespace string) Option {
	return func(o *options) {
		o.namespace = namespace
	}
}

// NewFakeKubernetesClient creates a fake kubernetes client for testing
func NewFakeKubernetesClient(opts ...Option) *FakeKubernetesClient {
	o := &options{
		host:      "https://127.0.0.1:6443",
		namespace: "default",
	}
	for _, opt := range opts {
		opt(o)
	}
	clientset := fakekubernetes.NewClientset(o.objects...)
	disc := clientset.Discovery().(*fakediscovery.FakeDiscovery)
	disc.Resources = o.resources
	metrics := fakemetrics.NewSimpleClientset()
	for _, nm := range o.nodeMetrics {
		// The fake tracker would guess "nodemetricses" from the kind, the API serves them as "nodes"
		_ = metrics.Tracker().Create(nodeMetricsResource, nm, "")
	}
	return &FakeKubernetesClient{
		Interface:  clientset,
		Clientset:  clientset,
		DynClient:  fakedynamic.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(), o.listKinds, o.customObject...),
		Metrics:    metrics,
		Config:     &rest.Config{Host: o.host, BearerToken: o.bearerToken},
		Namespace:  o.namespace,
		DiscClient: disc,
	}
}

func (f *FakeKubernetesClient) NamespaceOrDefault(namespace string) string {
	if namespace == "" {
		return f.Namespace
	}
	return namespace
}

func (f *FakeKubernetesClient) RESTConfig() *rest.Config {
	return f.Config
}

func (f *FakeKubernetesClient) DiscoveryClient() discovery.DiscoveryInterface {
	return f.DiscClient
}

func (f *FakeKubernetesClient) DynamicClient() dynamic.Interface {
	return f.DynClient
}

func (f *FakeKubernetesClient) MetricsV1beta1Client() metricsv1beta1.MetricsV1beta1Interface {
	return f.Metrics.MetricsV1beta1()
}
