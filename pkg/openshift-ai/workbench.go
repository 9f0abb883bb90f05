package openshiftai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/klog/v2"
)

const (
	// StoppedAnnotation is set on notebooks scaled down by the dashboard.
	StoppedAnnotation        = "kubeflow-resource-stopped"
	imageSelectionAnnotation = "notebooks.opendatahub.io/last-image-selection"

	// workbenchesCachePrefix is shared by workbench lists and gets so writes can invalidate both.
	workbenchesCachePrefix = "workbenches"
)

type WorkbenchStatus string

const (
	WorkbenchRunning  WorkbenchStatus = "Running"
	WorkbenchStopped  WorkbenchStatus = "Stopped"
	WorkbenchStarting WorkbenchStatus = "Starting"
)

// Workbench is a Kubeflow notebook managed by OpenShift AI.
type Workbench struct {
	Name           string          `json:"name"`
	Namespace      string          `json:"namespace"`
	DisplayName    string          `json:"display_name"`
	Status         WorkbenchStatus `json:"status"`
	Image          string          `json:"image,omitempty"`
	ImageSelection string          `json:"image_selection,omitempty"`
	URL            string          `json:"url,omitempty"`
	StoppedAt      string          `json:"stopped_at,omitempty"`
	Created        time.Time       `json:"created"`

	object *unstructured.Unstructured
}

func (w Workbench) Summary() Summary {
	return Summary{Name: w.Name, Namespace: w.Namespace, Status: string(w.Status)}
}

func (w Workbench) Object() runtime.Object {
	return w.object
}

func (w Workbench) TableHeader() []string {
	return []string{"NAME", "NAMESPACE", "STATUS", "IMAGE"}
}

func (w Workbench) TableCells() []any {
	return []any{w.Name, w.Namespace, string(w.Status), w.Image}
}

func newWorkbench(obj *unstructured.Unstructured) Workbench {
	annotations := obj.GetAnnotations()
	w := Workbench{
		Name:           obj.GetName(),
		Namespace:      obj.GetNamespace(),
		DisplayName:    displayName(obj),
		ImageSelection: annotations[imageSelectionAnnotation],
		Created:        obj.GetCreationTimestamp().Time,
		object:         obj,
	}
	if containers, found, _ := unstructured.NestedSlice(obj.Object, "spec", "template", "spec", "containers"); found && len(containers) > 0 {
		if container, ok := containers[0].(map[string]any); ok {
			w.Image, _ = container["image"].(string)
		}
	}
	w.URL, _, _ = unstructured.NestedString(obj.Object, "status", "url")
	readyReplicas, _, _ := unstructured.NestedInt64(obj.Object, "status", "readyReplicas")
	switch stoppedAt, stopped := annotations[StoppedAnnotation]; {
	case stopped:
		w.Status = WorkbenchStopped
		w.StoppedAt = stoppedAt
	case readyReplicas > 0:
		w.Status = WorkbenchRunning
	default:
		w.Status = WorkbenchStarting
	}
	return w
}

// ListWorkbenches lists the workbenches of a project, sorted by name.
func (c *Client) ListWorkbenches(ctx context.Context, namespace string) ([]Workbench, error) {
	if namespace == "" {
		return nil, InvalidArgumentError("namespace is required")
	}
	items, err := c.listResources(ctx, workbenchesCachePrefix, NotebookGVR, namespace, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list workbenches in %s: %w", namespace, err)
	}
	workbenches := make([]Workbench, 0, len(items))
	for i := range items {
		workbenches = append(workbenches, newWorkbench(&items[i]))
	}
	sort.Slice(workbenches, func(i, j int) bool { return workbenches[i].Name < workbenches[j].Name })
	return workbenches, nil
}

// GetWorkbench gets a single workbench.
func (c *Client) GetWorkbench(ctx context.Context, namespace, name string) (*Workbench, error) {
	obj, err := c.getResource(ctx, workbenchesCachePrefix, NotebookGVR, namespace, name)
	if apierrors.IsNotFound(err) {
		return nil, NotFoundError("workbench", namespace, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workbench %s/%s: %w", namespace, name, err)
	}
	w := newWorkbench(obj)
	return &w, nil
}

// StopWorkbench scales a workbench down by setting the stopped annotation.
func (c *Client) StopWorkbench(ctx context.Context, namespace, name string) (*Workbench, error) {
	return c.patchWorkbench(ctx, namespace, name, map[string]any{
		StoppedAnnotation: time.Now().UTC().Format(time.RFC3339),
	})
}

// StartWorkbench scales a workbench up by removing the stopped annotation.
func (c *Client) StartWorkbench(ctx context.Context, namespace, name string) (*Workbench, error) {
	return c.patchWorkbench(ctx, namespace, name, map[string]any{
		StoppedAnnotation: nil,
	})
}

func (c *Client) patchWorkbench(ctx context.Context, namespace, name string, annotations map[string]any) (*Workbench, error) {
	patch, err := json.Marshal(map[string]any{
		"metadata": map[string]any{"annotations": annotations},
	})
	if err != nil {
		return nil, err
	}
	obj, err := c.resource(NotebookGVR, namespace).Patch(ctx, name, types.MergePatchType, patch, metav1.PatchOptions{})
	// Any cached workbench read is stale once a patch was attempted
	if invalidated := c.cache.Invalidate(workbenchesCachePrefix); invalidated > 0 {
		klog.V(3).Infof("Invalidated %d cached workbench responses", invalidated)
	}
	if apierrors.IsNotFound(err) {
		return nil, NotFoundError("workbench", namespace, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update workbench %s/%s: %w", namespace, name, err)
	}
	w := newWorkbench(obj)
	return &w, nil
}
