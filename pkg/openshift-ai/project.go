package openshiftai

import (
	"context"
	"fmt"
	"sort"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/cache"
)

const requesterAnnotation = "openshift.io/requester"

// Project is an OpenShift AI data science project, a namespace labelled for the dashboard.
type Project struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description,omitempty"`
	Requester   string    `json:"requester,omitempty"`
	Status      string    `json:"status"`
	Created     time.Time `json:"created"`

	object *corev1.Namespace
}

func (p Project) Summary() Summary {
	return Summary{Name: p.Name, Status: p.Status}
}

func (p Project) Object() runtime.Object {
	return p.object
}

func (p Project) TableHeader() []string {
	return []string{"NAME", "DISPLAY NAME", "STATUS", "CREATED"}
}

func (p Project) TableCells() []any {
	return []any{p.Name, p.DisplayName, p.Status, p.Created.Format(time.RFC3339)}
}

func newProject(ns *corev1.Namespace) Project {
	return Project{
		Name:        ns.Name,
		DisplayName: displayName(ns),
		Description: ns.Annotations[DescriptionAnnotation],
		Requester:   ns.Annotations[requesterAnnotation],
		Status:      string(ns.Status.Phase),
		Created:     ns.CreationTimestamp.Time,
		object:      ns,
	}
}

// ListProjects lists the data science projects, sorted by name.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	namespaces, err := cache.Do(ctx, c.cache, cache.NewKey("projects", c), func(ctx context.Context) ([]corev1.Namespace, error) {
		list, err := c.kubernetes.CoreV1().Namespaces().List(ctx, metav1.ListOptions{LabelSelector: dashboardSelector})
		if err != nil {
			return nil, err
		}
		return list.Items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list data science projects: %w", err)
	}
	projects := make([]Project, 0, len(namespaces))
	for i := range namespaces {
		projects = append(projects, newProject(&namespaces[i]))
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

// GetProject gets a data science project. Namespaces without the dashboard label are not projects.
func (c *Client) GetProject(ctx context.Context, name string) (*Project, error) {
	if name == "" {
		return nil, InvalidArgumentError("project name is required")
	}
	ns, err := cache.Do(ctx, c.cache, cache.NewKey("projects", c, name), func(ctx context.Context) (*corev1.Namespace, error) {
		return c.kubernetes.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	})
	if apierrors.IsNotFound(err) {
		return nil, NotFoundError("project", "", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", name, err)
	}
	if ns.Labels[DashboardLabel] != "true" {
		return nil, fmt.Errorf("namespace '%s' is not a data science project: %w", name, ErrNotFound)
	}
	project := newProject(ns)
	return &project, nil
}
