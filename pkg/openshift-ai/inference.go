package openshiftai

import (
	"context"
	"fmt"
	"sort"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

// InferenceService is a KServe model deployment.
type InferenceService struct {
	Name        string `json:"name"`
	Namespace   string `json:"namespace"`
	DisplayName string `json:"display_name"`
	Ready       bool   `json:"ready"`
	Reason      string `json:"reason,omitempty"`
	URL         string `json:"url,omitempty"`
	Runtime     string `json:"runtime,omitempty"`
	ModelFormat string `json:"model_format,omitempty"`
	StorageURI  string `json:"storage_uri,omitempty"`

	object *unstructured.Unstructured
}

func (s InferenceService) status() string {
	if s.Ready {
		return "Ready"
	}
	return "NotReady"
}

func (s InferenceService) Summary() Summary {
	return Summary{Name: s.Name, Namespace: s.Namespace, Status: s.status()}
}

func (s InferenceService) Object() runtime.Object {
	return s.object
}

func (s InferenceService) TableHeader() []string {
	return []string{"NAME", "NAMESPACE", "STATUS", "RUNTIME", "URL"}
}

func (s InferenceService) TableCells() []any {
	return []any{s.Name, s.Namespace, s.status(), s.Runtime, s.URL}
}

func newInferenceService(obj *unstructured.Unstructured) InferenceService {
	s := InferenceService{
		Name:        obj.GetName(),
		Namespace:   obj.GetNamespace(),
		DisplayName: displayName(obj),
		object:      obj,
	}
	status, reason, _ := conditionStatus(obj.Object, "Ready")
	s.Ready = status == "True"
	if !s.Ready {
		s.Reason = reason
	}
	s.URL, _, _ = unstructured.NestedString(obj.Object, "status", "url")
	s.Runtime, _, _ = unstructured.NestedString(obj.Object, "spec", "predictor", "model", "runtime")
	s.ModelFormat, _, _ = unstructured.NestedString(obj.Object, "spec", "predictor", "model", "modelFormat", "name")
	s.StorageURI, _, _ = unstructured.NestedString(obj.Object, "spec", "predictor", "model", "storageUri")
	return s
}

// ListInferenceServices lists the model deployments of a project, sorted by name.
func (c *Client) ListInferenceServices(ctx context.Context, namespace string) ([]InferenceService, error) {
	if namespace == "" {
		return nil, InvalidArgumentError("namespace is required")
	}
	items, err := c.listResources(ctx, "inference_services", InferenceServiceGVR, namespace, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list inference services in %s: %w", namespace, err)
	}
	services := make([]InferenceService, 0, len(items))
	for i := range items {
		services = append(services, newInferenceService(&items[i]))
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })
	return services, nil
}

// GetInferenceService gets a single model deployment.
func (c *Client) GetInferenceService(ctx context.Context, namespace, name string) (*InferenceService, error) {
	obj, err := c.getResource(ctx, "inference_services", InferenceServiceGVR, namespace, name)
	if apierrors.IsNotFound(err) {
		return nil, NotFoundError("inference service", namespace, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inference service %s/%s: %w", namespace, name, err)
	}
	s := newInferenceService(obj)
	return &s, nil
}
