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

// Storage is a persistent volume claim of a project, usually backing a workbench.
type Storage struct {
	Name         string   `json:"name"`
	Namespace    string   `json:"namespace"`
	DisplayName  string   `json:"display_name"`
	Size         string   `json:"size,omitempty"`
	AccessModes  []string `json:"access_modes,omitempty"`
	StorageClass string   `json:"storage_class,omitempty"`
	Status       string   `json:"status"`

	object *corev1.PersistentVolumeClaim
}

func (s Storage) Summary() Summary {
	return Summary{Name: s.Name, Namespace: s.Namespace, Status: s.Status}
}

func (s Storage) Object() runtime.Object {
	return s.object
}

func (s Storage) TableHeader() []string {
	return []string{"NAME", "NAMESPACE", "STATUS", "SIZE", "STORAGE CLASS"}
}

func (s Storage) TableCells() []any {
	return []any{s.Name, s.Namespace, s.Status, s.Size, s.StorageClass}
}

func newStorage(pvc *corev1.PersistentVolumeClaim) Storage {
	s := Storage{
		Name:        pvc.Name,
		Namespace:   pvc.Namespace,
		DisplayName: displayName(pvc),
		Status:      string(pvc.Status.Phase),
		object:      pvc,
	}
	if size, ok := pvc.Spec.Resources.Requests[corev1.ResourceStorage]; ok {
		s.Size = size.String()
	}
	for _, mode := range pvc.Spec.AccessModes {
		s.AccessModes = append(s.AccessModes, string(mode))
	}
	if pvc.Spec.StorageClassName != nil {
		s.StorageClass = *pvc.Spec.StorageClassName
	}
	return s
}

// ListStorage lists the persistent volume claims of a project, sorted by name.
func (c *Client) ListStorage(ctx context.Context, namespace string) ([]Storage, error) {
	if namespace == "" {
		return nil, InvalidArgumentError("namespace is required")
	}
	pvcs, err := cache.Do(ctx, c.cache, cache.NewKey("storage", c, namespace), func(ctx context.Context) ([]corev1.PersistentVolumeClaim, error) {
		list, err := c.kubernetes.CoreV1().PersistentVolumeClaims(namespace).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return list.Items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list storage in %s: %w", namespace, err)
	}
	storage := make([]Storage, 0, len(pvcs))
	for i := range pvcs {
		storage = append(storage, newStorage(&pvcs[i]))
	}
	sort.Slice(storage, func(i, j int) bool { return storage[i].Name < storage[j].Name })
	return storage, nil
}
