package openshiftai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/cache"
)

const (
	// DashboardLabel marks namespaces and secrets managed through the OpenShift AI dashboard.
	DashboardLabel = "opendatahub.io/dashboard"
	// DisplayNameAnnotation holds the human-friendly name of a resource.
	DisplayNameAnnotation = "openshift.io/display-name"
	// DescriptionAnnotation holds the description of a resource.
	DescriptionAnnotation = "openshift.io/description"

	dashboardSelector = DashboardLabel + "=true"
)

// Client performs OpenShift AI reads and writes against a single cluster identity.
// Reads go through the response cache, keyed by the client scope.
type Client struct {
	kubernetes api.KubernetesClient
	cache      *cache.Cache
	scope      string
}

// NewClient creates an OpenShift AI client. c may be nil, which disables caching.
func NewClient(k api.KubernetesClient, c *cache.Cache) *Client {
	return &Client{
		kubernetes: k,
		cache:      c,
		scope:      Scope(k.RESTConfig()),
	}
}

// String returns the client scope, used as the identity component of cache keys.
func (c *Client) String() string {
	return c.scope
}

// Scope identifies a cluster and credential pair without exposing the credential.
func Scope(cfg *rest.Config) string {
	if cfg == nil {
		return "unknown"
	}
	identity := cfg.BearerToken
	switch {
	case identity != "":
	case cfg.BearerTokenFile != "":
		identity = "file:" + cfg.BearerTokenFile
	case cfg.Username != "":
		identity = "user:" + cfg.Username
	case len(cfg.CertData) > 0:
		identity = "cert:" + string(cfg.CertData)
	case cfg.CertFile != "":
		identity = "certfile:" + cfg.CertFile
	case cfg.Impersonate.UserName != "":
		identity = "as:" + cfg.Impersonate.UserName
	}
	sum := sha256.Sum256([]byte(identity))
	return cfg.Host + "#" + hex.EncodeToString(sum[:])[:12]
}

// Cache returns the response cache used by the client.
func (c *Client) Cache() *cache.Cache {
	return c.cache
}

func (c *Client) resource(gvr schema.GroupVersionResource, namespace string) dynamic.ResourceInterface {
	if namespace == "" {
		return c.kubernetes.DynamicClient().Resource(gvr)
	}
	return c.kubernetes.DynamicClient().Resource(gvr).Namespace(namespace)
}

// listResources lists custom resources through the cache.
// The returned objects are shared with the cache and must not be mutated.
func (c *Client) listResources(ctx context.Context, prefix string, gvr schema.GroupVersionResource, namespace string, opts metav1.ListOptions) ([]unstructured.Unstructured, error) {
	key := cache.NewKey(prefix, c, namespace)
	if opts.LabelSelector != "" {
		key = key.With("selector", opts.LabelSelector)
	}
	return cache.Do(ctx, c.cache, key, func(ctx context.Context) ([]unstructured.Unstructured, error) {
		list, err := c.resource(gvr, namespace).List(ctx, opts)
		if err != nil {
			return nil, err
		}
		return list.Items, nil
	})
}

// getResource gets a custom resource through the cache.
// The returned object is shared with the cache and must not be mutated.
func (c *Client) getResource(ctx context.Context, prefix string, gvr schema.GroupVersionResource, namespace, name string) (*unstructured.Unstructured, error) {
	return cache.Do(ctx, c.cache, cache.NewKey(prefix, c, namespace, name), func(ctx context.Context) (*unstructured.Unstructured, error) {
		return c.resource(gvr, namespace).Get(ctx, name, metav1.GetOptions{})
	})
}

// Resource is implemented by the OpenShift AI views returned by the client.
type Resource interface {
	// Summary returns the minimal view of the resource.
	Summary() Summary
	// Object returns the underlying Kubernetes object, nil when it must not be exposed.
	Object() runtime.Object
}

// Summary is the minimal view of a resource.
type Summary struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
	Status    string `json:"status,omitempty"`
}

func (s Summary) TableHeader() []string {
	return []string{"NAME", "NAMESPACE", "STATUS"}
}

func (s Summary) TableCells() []any {
	return []any{s.Name, s.Namespace, s.Status}
}

func displayName(obj metav1.Object) string {
	if name := obj.GetAnnotations()[DisplayNameAnnotation]; name != "" {
		return name
	}
	return obj.GetName()
}

// conditionStatus returns the status of the condition of the given type in status.conditions.
func conditionStatus(obj map[string]any, conditionType string) (string, string, bool) {
	conditions, found, _ := unstructured.NestedSlice(obj, "status", "conditions")
	if !found {
		return "", "", false
	}
	for _, c := range conditions {
		condition, ok := c.(map[string]any)
		if !ok || condition["type"] != conditionType {
			continue
		}
		status, _ := condition["status"].(string)
		reason, _ := condition["reason"].(string)
		return status, reason, true
	}
	return "", "", false
}

// ignoreNotInstalled turns "resource not served" errors into empty results
// so summaries keep working on clusters without every component.
func ignoreNotInstalled[T any](value T, err error) (T, error) {
	if err != nil && (apierrors.IsNotFound(err) || errors.Is(err, ErrUnavailable)) {
		var zero T
		return zero, nil
	}
	return value, err
}
