package openshiftai

import (
	"context"
	"fmt"
	"sort"

	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/klog/v2"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/cache"
)

// Component is an optional OpenShift AI component detected through its API group.
type Component struct {
	Name      string                      `json:"name"`
	Resource  schema.GroupVersionResource `json:"-"`
	Available bool                        `json:"available"`
	APIGroup  string                      `json:"api_group"`
}

// AvailabilityStatus represents the availability status of OpenShift AI components
type AvailabilityStatus struct {
	Available  bool        `json:"available"`
	// OpenShift is true when the cluster serves the OpenShift project API, false for Open Data Hub on plain Kubernetes.
	OpenShift  bool        `json:"openshift"`
	Components []Component `json:"components"`
	Warnings   []string    `json:"warnings,omitempty"`
}

var openShiftProjectGVR = schema.GroupVersionResource{Group: "project.openshift.io", Version: "v1", Resource: "projects"}

var components = map[string]schema.GroupVersionResource{
	"Data Science Cluster": DataScienceClusterGVR,
	"Workbenches":          NotebookGVR,
	"Training":             TrainJobGVR,
	"Pipelines":            DataSciencePipelinesApplicationGVR,
	"Pipeline Runs":        PipelineRunGVR,
	"Model Serving":        InferenceServiceGVR,
}

// CheckAvailability reports which OpenShift AI components are served by the cluster.
// OpenShift AI is considered available when at least workbenches are served.
func (c *Client) CheckAvailability(ctx context.Context) (*AvailabilityStatus, error) {
	return cache.Do(ctx, c.cache, cache.NewKey("availability", c), func(ctx context.Context) (*AvailabilityStatus, error) {
		status := &AvailabilityStatus{
			OpenShift:  c.isServed(openShiftProjectGVR),
			Components: make([]Component, 0, len(components)),
		}
		for name, gvr := range components {
			component := Component{
				Name:      name,
				Resource:  gvr,
				APIGroup:  gvr.GroupVersion().String(),
				Available: c.isServed(gvr),
			}
			if !component.Available {
				status.Warnings = append(status.Warnings, fmt.Sprintf("%s is not available (%s)", name, component.APIGroup))
			}
			if component.Available && gvr == NotebookGVR {
				status.Available = true
			}
			status.Components = append(status.Components, component)
		}
		sort.Slice(status.Components, func(i, j int) bool { return status.Components[i].Name < status.Components[j].Name })
		sort.Strings(status.Warnings)
		if status.Available {
			klog.V(2).InfoS("OpenShift AI is available", "components", len(status.Components)-len(status.Warnings), "openshift", status.OpenShift)
		} else {
			klog.V(2).InfoS("OpenShift AI is not available in this cluster")
		}
		return status, nil
	})
}

func (c *Client) isServed(gvr schema.GroupVersionResource) bool {
	resources, err := c.kubernetes.DiscoveryClient().ServerResourcesForGroupVersion(gvr.GroupVersion().String())
	if err != nil {
		klog.V(3).InfoS("OpenShift AI API group not available", "groupVersion", gvr.GroupVersion().String(), "error", err)
		return false
	}
	for _, r := range resources.APIResources {
		if r.Name == gvr.Resource {
			return true
		}
	}
	return false
}
