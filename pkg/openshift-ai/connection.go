package openshiftai

import (
	"context"
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/cache"
)

const (
	// ConnectionTypeAnnotation is the legacy data connection type annotation (e.g. "s3").
	ConnectionTypeAnnotation = "opendatahub.io/connection-type"
	// ConnectionTypeRefAnnotation references a connection type definition.
	ConnectionTypeRefAnnotation = "opendatahub.io/connection-type-ref"
)

// Connection is a data connection of a project. Secret values are never read into it.
type Connection struct {
	Name        string   `json:"name"`
	Namespace   string   `json:"namespace"`
	DisplayName string   `json:"display_name"`
	Type        string   `json:"type"`
	Keys        []string `json:"keys"`
}

func (c Connection) Summary() Summary {
	return Summary{Name: c.Name, Namespace: c.Namespace, Status: c.Type}
}

// Object returns nil, the underlying secret is never exposed.
func (c Connection) Object() runtime.Object {
	return nil
}

func (c Connection) TableHeader() []string {
	return []string{"NAME", "NAMESPACE", "TYPE", "KEYS"}
}

func (c Connection) TableCells() []any {
	return []any{c.Name, c.Namespace, c.Type, len(c.Keys)}
}

func connectionType(secret *corev1.Secret) (string, bool) {
	if t := secret.Annotations[ConnectionTypeRefAnnotation]; t != "" {
		return t, true
	}
	if t := secret.Annotations[ConnectionTypeAnnotation]; t != "" {
		return t, true
	}
	return "", false
}

func newConnection(secret *corev1.Secret, connectionType string) Connection {
	keys := make([]string, 0, len(secret.Data)+len(secret.StringData))
	for key := range secret.Data {
		keys = append(keys, key)
	}
	for key := range secret.StringData {
		if _, ok := secret.Data[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return Connection{
		Name:        secret.Name,
		Namespace:   secret.Namespace,
		DisplayName: displayName(secret),
		Type:        connectionType,
		Keys:        keys,
	}
}

// ListConnections lists the data connections of a project, sorted by name.
// Only key names are returned, secret values never leave the client.
func (c *Client) ListConnections(ctx context.Context, namespace string) ([]Connection, error) {
	if namespace == "" {
		return nil, InvalidArgumentError("namespace is required")
	}
	// Only the redacted views are cached, secret data is dropped before the cache write
	connections, err := cache.Do(ctx, c.cache, cache.NewKey("connections", c, namespace), func(ctx context.Context) ([]Connection, error) {
		list, err := c.kubernetes.CoreV1().Secrets(namespace).List(ctx, metav1.ListOptions{LabelSelector: dashboardSelector})
		if err != nil {
			return nil, err
		}
		ret := make([]Connection, 0, len(list.Items))
		for i := range list.Items {
			if t, ok := connectionType(&list.Items[i]); ok {
				ret = append(ret, newConnection(&list.Items[i], t))
			}
		}
		sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
		return ret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list connections in %s: %w", namespace, err)
	}
	return append([]Connection(nil), connections...), nil
}
