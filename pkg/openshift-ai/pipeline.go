package openshiftai

import (
	"context"
	"fmt"
	"sort"
	"time"

	pipelinev1 "github.com/tektoncd/pipeline/pkg/apis/pipeline/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"knative.dev/pkg/apis"
)

const pipelineLabel = "tekton.dev/pipeline"

// PipelineServer is a DataSciencePipelinesApplication, the pipeline server of a project.
type PipelineServer struct {
	Name          string `json:"name"`
	Namespace     string `json:"namespace"`
	Ready         bool   `json:"ready"`
	Reason        string `json:"reason,omitempty"`
	APIServerURL  string `json:"api_server_url,omitempty"`
	ObjectStorage string `json:"object_storage,omitempty"`
	DSPVersion    string `json:"dsp_version,omitempty"`

	object *unstructured.Unstructured
}

func (p PipelineServer) status() string {
	if p.Ready {
		return "Ready"
	}
	return "NotReady"
}

func (p PipelineServer) Summary() Summary {
	return Summary{Name: p.Name, Namespace: p.Namespace, Status: p.status()}
}

func (p PipelineServer) Object() runtime.Object {
	return p.object
}

func (p PipelineServer) TableHeader() []string {
	return []string{"NAME", "NAMESPACE", "STATUS", "API SERVER"}
}

func (p PipelineServer) TableCells() []any {
	return []any{p.Name, p.Namespace, p.status(), p.APIServerURL}
}

func newPipelineServer(obj *unstructured.Unstructured) PipelineServer {
	p := PipelineServer{
		Name:      obj.GetName(),
		Namespace: obj.GetNamespace(),
		object:    obj,
	}
	status, reason, _ := conditionStatus(obj.Object, "Ready")
	p.Ready = status == "True"
	if !p.Ready {
		p.Reason = reason
	}
	p.APIServerURL, _, _ = unstructured.NestedString(obj.Object, "status", "components", "apiServer", "url")
	p.DSPVersion, _, _ = unstructured.NestedString(obj.Object, "spec", "dspVersion")
	if bucket, found, _ := unstructured.NestedString(obj.Object, "spec", "objectStorage", "externalStorage", "bucket"); found {
		host, _, _ := unstructured.NestedString(obj.Object, "spec", "objectStorage", "externalStorage", "host")
		p.ObjectStorage = fmt.Sprintf("s3://%s (%s)", bucket, host)
	} else if _, found, _ := unstructured.NestedMap(obj.Object, "spec", "objectStorage", "minio"); found {
		p.ObjectStorage = "minio"
	}
	return p
}

// ListPipelineServers lists the pipeline servers of a project.
func (c *Client) ListPipelineServers(ctx context.Context, namespace string) ([]PipelineServer, error) {
	if namespace == "" {
		return nil, InvalidArgumentError("namespace is required")
	}
	items, err := c.listResources(ctx, "pipeline_servers", DataSciencePipelinesApplicationGVR, namespace, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline servers in %s: %w", namespace, unavailableIfNotServed(err, "Pipelines"))
	}
	servers := make([]PipelineServer, 0, len(items))
	for i := range items {
		servers = append(servers, newPipelineServer(&items[i]))
	}
	return servers, nil
}

// GetPipelineServer gets a single pipeline server.
func (c *Client) GetPipelineServer(ctx context.Context, namespace, name string) (*PipelineServer, error) {
	obj, err := c.getResource(ctx, "pipeline_servers", DataSciencePipelinesApplicationGVR, namespace, name)
	if apierrors.IsNotFound(err) {
		return nil, NotFoundError("pipeline server", namespace, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline server %s/%s: %w", namespace, name, err)
	}
	p := newPipelineServer(obj)
	return &p, nil
}

// PipelineRun is a Tekton PipelineRun.
type PipelineRun struct {
	Name           string     `json:"name"`
	Namespace      string     `json:"namespace"`
	Pipeline       string     `json:"pipeline,omitempty"`
	Status         string     `json:"status"`
	Reason         string     `json:"reason,omitempty"`
	Message        string     `json:"message,omitempty"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	CompletionTime *time.Time `json:"completion_time,omitempty"`
	Created        time.Time  `json:"created"`

	object *unstructured.Unstructured
}

func (r PipelineRun) Summary() Summary {
	return Summary{Name: r.Name, Namespace: r.Namespace, Status: r.Status}
}

func (r PipelineRun) Object() runtime.Object {
	return r.object
}

func (r PipelineRun) TableHeader() []string {
	return []string{"NAME", "NAMESPACE", "PIPELINE", "STATUS"}
}

func (r PipelineRun) TableCells() []any {
	return []any{r.Name, r.Namespace, r.Pipeline, r.Status}
}

func newPipelineRun(obj *unstructured.Unstructured) (PipelineRun, error) {
	pr := &pipelinev1.PipelineRun{}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, pr); err != nil {
		return PipelineRun{}, fmt.Errorf("failed to convert pipeline run %s: %w", obj.GetName(), err)
	}
	r := PipelineRun{
		Name:      pr.Name,
		Namespace: pr.Namespace,
		Pipeline:  pr.Labels[pipelineLabel],
		Status:    "Pending",
		Created:   pr.CreationTimestamp.Time,
		object:    obj,
	}
	if pr.Spec.PipelineRef != nil && pr.Spec.PipelineRef.Name != "" {
		r.Pipeline = pr.Spec.PipelineRef.Name
	}
	if succeeded := pr.Status.GetCondition(apis.ConditionSucceeded); succeeded != nil {
		switch succeeded.Status {
		case corev1.ConditionTrue:
			r.Status = "Succeeded"
		case corev1.ConditionFalse:
			r.Status = "Failed"
		default:
			r.Status = "Running"
		}
		r.Reason = succeeded.Reason
		r.Message = succeeded.Message
	}
	if pr.Status.StartTime != nil {
		r.StartTime = &pr.Status.StartTime.Time
	}
	if pr.Status.CompletionTime != nil {
		r.CompletionTime = &pr.Status.CompletionTime.Time
	}
	return r, nil
}

// ListPipelineRuns lists the pipeline runs of a project, newest first.
func (c *Client) ListPipelineRuns(ctx context.Context, namespace string) ([]PipelineRun, error) {
	if namespace == "" {
		return nil, InvalidArgumentError("namespace is required")
	}
	items, err := c.listResources(ctx, "pipeline_runs", PipelineRunGVR, namespace, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline runs in %s: %w", namespace, unavailableIfNotServed(err, "Pipeline Runs"))
	}
	runs := make([]PipelineRun, 0, len(items))
	for i := range items {
		run, err := newPipelineRun(&items[i])
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Created.Equal(runs[j].Created) {
			return runs[i].Name < runs[j].Name
		}
		return runs[i].Created.After(runs[j].Created)
	})
	return runs, nil
}
