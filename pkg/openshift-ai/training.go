package openshiftai

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/klog/v2"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/cache"
)

const (
	// FrameworkLabel identifies the ML framework of a training runtime.
	FrameworkLabel = "trainer.kubeflow.org/framework"

	modelInitializerJob   = "model-initializer"
	datasetInitializerJob = "dataset-initializer"
)

type TrainingJobStatus string

const (
	TrainingJobPending   TrainingJobStatus = "Pending"
	TrainingJobRunning   TrainingJobStatus = "Running"
	TrainingJobSuspended TrainingJobStatus = "Suspended"
	TrainingJobCompleted TrainingJobStatus = "Completed"
	TrainingJobFailed    TrainingJobStatus = "Failed"
)

// TrainingJob is a Kubeflow Trainer TrainJob.
type TrainingJob struct {
	Name      string            `json:"name"`
	Namespace string            `json:"namespace"`
	Status    TrainingJobStatus `json:"status"`
	Reason    string            `json:"reason,omitempty"`
	Runtime   string            `json:"runtime,omitempty"`
	NumNodes  int64             `json:"num_nodes,omitempty"`
	Image     string            `json:"image,omitempty"`
	Created   time.Time         `json:"created"`

	object *unstructured.Unstructured
}

func (j TrainingJob) Summary() Summary {
	return Summary{Name: j.Name, Namespace: j.Namespace, Status: string(j.Status)}
}

func (j TrainingJob) Object() runtime.Object {
	return j.object
}

func (j TrainingJob) TableHeader() []string {
	return []string{"NAME", "NAMESPACE", "STATUS", "RUNTIME", "NODES"}
}

func (j TrainingJob) TableCells() []any {
	return []any{j.Name, j.Namespace, string(j.Status), j.Runtime, j.NumNodes}
}

func newTrainingJob(obj *unstructured.Unstructured) TrainingJob {
	j := TrainingJob{
		Name:      obj.GetName(),
		Namespace: obj.GetNamespace(),
		Created:   obj.GetCreationTimestamp().Time,
		object:    obj,
	}
	j.Runtime, _, _ = unstructured.NestedString(obj.Object, "spec", "runtimeRef", "name")
	j.NumNodes, _, _ = unstructured.NestedInt64(obj.Object, "spec", "trainer", "numNodes")
	j.Image, _, _ = unstructured.NestedString(obj.Object, "spec", "trainer", "image")
	suspended, _, _ := unstructured.NestedBool(obj.Object, "spec", "suspend")
	if status, reason, _ := conditionStatus(obj.Object, "Failed"); status == "True" {
		j.Status, j.Reason = TrainingJobFailed, reason
	} else if status, reason, _ := conditionStatus(obj.Object, "Complete"); status == "True" {
		j.Status, j.Reason = TrainingJobCompleted, reason
	} else if status, _, _ := conditionStatus(obj.Object, "Suspended"); status == "True" || suspended {
		j.Status = TrainingJobSuspended
	} else if _, _, found := conditionStatus(obj.Object, "Created"); found {
		j.Status = TrainingJobRunning
	} else {
		j.Status = TrainingJobPending
	}
	return j
}

// ListTrainingJobs lists the TrainJobs of a namespace, newest first.
func (c *Client) ListTrainingJobs(ctx context.Context, namespace string) ([]TrainingJob, error) {
	if namespace == "" {
		return nil, InvalidArgumentError("namespace is required")
	}
	items, err := c.listResources(ctx, "training_jobs", TrainJobGVR, namespace, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list training jobs in %s: %w", namespace, unavailableIfNotServed(err, "Training"))
	}
	jobs := make([]TrainingJob, 0, len(items))
	for i := range items {
		jobs = append(jobs, newTrainingJob(&items[i]))
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Created.Equal(jobs[j].Created) {
			return jobs[i].Name < jobs[j].Name
		}
		return jobs[i].Created.After(jobs[j].Created)
	})
	return jobs, nil
}

// GetTrainingJob gets a single TrainJob.
func (c *Client) GetTrainingJob(ctx context.Context, namespace, name string) (*TrainingJob, error) {
	obj, err := c.getResource(ctx, "training_jobs", TrainJobGVR, namespace, name)
	if apierrors.IsNotFound(err) {
		return nil, NotFoundError("training job", namespace, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get training job %s/%s: %w", namespace, name, err)
	}
	j := newTrainingJob(obj)
	return &j, nil
}

// TrainingRuntime is a cluster or namespace scoped Kubeflow Trainer runtime.
type TrainingRuntime struct {
	Name                  string  `json:"name"`
	Namespace             *string `json:"namespace"`
	Framework             string  `json:"framework,omitempty"`
	HasModelInitializer   bool    `json:"has_model_initializer"`
	HasDatasetInitializer bool    `json:"has_dataset_initializer"`
	Scope                 string  `json:"scope"`

	object *unstructured.Unstructured
}

func (r TrainingRuntime) Summary() Summary {
	s := Summary{Name: r.Name}
	if r.Namespace != nil {
		s.Namespace = *r.Namespace
	}
	return s
}

func (r TrainingRuntime) Object() runtime.Object {
	return r.object
}

func (r TrainingRuntime) TableHeader() []string {
	return []string{"NAME", "SCOPE", "FRAMEWORK"}
}

func (r TrainingRuntime) TableCells() []any {
	return []any{r.Name, r.Scope, r.Framework}
}

func newTrainingRuntime(obj *unstructured.Unstructured) TrainingRuntime {
	r := TrainingRuntime{
		Name:      obj.GetName(),
		Framework: obj.GetLabels()[FrameworkLabel],
		Scope:     "cluster",
		object:    obj,
	}
	if ns := obj.GetNamespace(); ns != "" {
		r.Namespace = &ns
		r.Scope = "namespace"
	}
	replicatedJobs, _, _ := unstructured.NestedSlice(obj.Object, "spec", "template", "spec", "replicatedJobs")
	for _, rj := range replicatedJobs {
		job, ok := rj.(map[string]any)
		if !ok {
			continue
		}
		switch job["name"] {
		case modelInitializerJob:
			r.HasModelInitializer = true
		case datasetInitializerJob:
			r.HasDatasetInitializer = true
		}
	}
	return r
}

// ListTrainingRuntimes lists the cluster scoped runtimes, followed by the runtimes of namespace if provided.
func (c *Client) ListTrainingRuntimes(ctx context.Context, namespace string) ([]TrainingRuntime, error) {
	items, err := c.listResources(ctx, "training_runtimes", ClusterTrainingRuntimeGVR, "", metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list cluster training runtimes: %w", err)
	}
	if namespace != "" {
		namespaced, err := c.listResources(ctx, "training_runtimes", TrainingRuntimeGVR, namespace, metav1.ListOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to list training runtimes in %s: %w", namespace, err)
		}
		items = append(append([]unstructured.Unstructured{}, items...), namespaced...)
	}
	runtimes := make([]TrainingRuntime, 0, len(items))
	for i := range items {
		runtimes = append(runtimes, newTrainingRuntime(&items[i]))
	}
	return runtimes, nil
}

// GPUResourceNames are the extended resources counted as GPUs.
var GPUResourceNames = []corev1.ResourceName{"nvidia.com/gpu", "amd.com/gpu", "intel.com/gpu"}

const gpuProductLabel = "nvidia.com/gpu.product"

// GPUInfo summarizes the accelerators of the cluster.
type GPUInfo struct {
	Type         string `json:"type"`
	Total        int64  `json:"total"`
	Available    int64  `json:"available"`
	NodesWithGPU int    `json:"nodes_with_gpu"`
}

// NodeResources are the allocatable resources of a single node.
type NodeResources struct {
	Name          string   `json:"name"`
	CPU           float64  `json:"cpu"`
	MemoryGB      float64  `json:"memory_gb"`
	GPUs          int64    `json:"gpus"`
	CPUUsage      *float64 `json:"cpu_usage,omitempty"`
	MemoryUsageGB *float64 `json:"memory_usage_gb,omitempty"`
}

// ClusterResources summarizes the compute capacity available for training.
type ClusterResources struct {
	CPUTotal            float64         `json:"cpu_total"`
	CPUAllocatable      float64         `json:"cpu_allocatable"`
	MemoryTotalGB       float64         `json:"memory_total_gb"`
	MemoryAllocatableGB float64         `json:"memory_allocatable_gb"`
	NodeCount           int             `json:"node_count"`
	HasGPUs             bool            `json:"has_gpus"`
	GPUInfo             *GPUInfo        `json:"gpu_info,omitempty"`
	Nodes               []NodeResources `json:"nodes"`
}

func cores(q resource.Quantity) float64 {
	return float64(q.MilliValue()) / 1000
}

func gigabytes(q resource.Quantity) float64 {
	return float64(q.Value()) / (1024 * 1024 * 1024)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func gpuCount(resources corev1.ResourceList) int64 {
	var total int64
	for _, name := range GPUResourceNames {
		if q, ok := resources[name]; ok {
			total += q.Value()
		}
	}
	return total
}

// GetClusterResources aggregates node capacity, GPU availability and, when the metrics API is served, node usage.
func (c *Client) GetClusterResources(ctx context.Context) (*ClusterResources, error) {
	nodes, err := cache.Do(ctx, c.cache, cache.NewKey("cluster_resources", c, "nodes"), func(ctx context.Context) ([]corev1.Node, error) {
		list, err := c.kubernetes.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return list.Items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	gpuRequests, err := c.gpuRequests(ctx)
	if err != nil {
		return nil, err
	}
	usage := c.nodeUsage(ctx)

	ret := &ClusterResources{NodeCount: len(nodes), Nodes: make([]NodeResources, 0, len(nodes))}
	var memoryTotal, memoryAllocatable float64
	gpu := &GPUInfo{}
	for _, node := range nodes {
		ret.CPUTotal += cores(node.Status.Capacity[corev1.ResourceCPU])
		ret.CPUAllocatable += cores(node.Status.Allocatable[corev1.ResourceCPU])
		memoryTotal += gigabytes(node.Status.Capacity[corev1.ResourceMemory])
		memoryAllocatable += gigabytes(node.Status.Allocatable[corev1.ResourceMemory])
		nodeResources := NodeResources{
			Name:     node.Name,
			CPU:      cores(node.Status.Allocatable[corev1.ResourceCPU]),
			MemoryGB: round1(gigabytes(node.Status.Allocatable[corev1.ResourceMemory])),
			GPUs:     gpuCount(node.Status.Allocatable),
		}
		if nodeUsage, ok := usage[node.Name]; ok {
			cpuUsage := cores(nodeUsage[corev1.ResourceCPU])
			memoryUsage := round1(gigabytes(nodeUsage[corev1.ResourceMemory]))
			nodeResources.CPUUsage = &cpuUsage
			nodeResources.MemoryUsageGB = &memoryUsage
		}
		if nodeResources.GPUs > 0 {
			gpu.Total += nodeResources.GPUs
			gpu.NodesWithGPU++
			if product := node.Labels[gpuProductLabel]; product != "" && gpu.Type == "" {
				gpu.Type = product
			}
		}
		ret.Nodes = append(ret.Nodes, nodeResources)
	}
	ret.MemoryTotalGB = round1(memoryTotal)
	ret.MemoryAllocatableGB = round1(memoryAllocatable)
	if gpu.Total > 0 {
		ret.HasGPUs = true
		gpu.Available = max(gpu.Total-gpuRequests, 0)
		if gpu.Type == "" {
			gpu.Type = "unknown"
		}
		ret.GPUInfo = gpu
	}
	return ret, nil
}

// gpuRequests sums the GPU requests of the pods that are not finished.
func (c *Client) gpuRequests(ctx context.Context) (int64, error) {
	pods, err := cache.Do(ctx, c.cache, cache.NewKey("cluster_resources", c, "pods"), func(ctx context.Context) ([]corev1.Pod, error) {
		list, err := c.kubernetes.CoreV1().Pods("").List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return list.Items, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list pods: %w", err)
	}
	var total int64
	for _, pod := range pods {
		if pod.Status.Phase == corev1.PodSucceeded || pod.Status.Phase == corev1.PodFailed {
			continue
		}
		for _, container := range pod.Spec.Containers {
			total += gpuCount(container.Resources.Requests)
		}
	}
	return total, nil
}

// nodeUsage returns the current node usage, or nothing when the metrics API is unavailable.
func (c *Client) nodeUsage(ctx context.Context) map[string]corev1.ResourceList {
	metrics, err := cache.Do(ctx, c.cache, cache.NewKey("cluster_resources", c, "usage"), func(ctx context.Context) ([]metricsv1beta1.NodeMetrics, error) {
		list, err := c.kubernetes.MetricsV1beta1Client().NodeMetricses().List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return list.Items, nil
	})
	if err != nil {
		klog.V(3).Infof("Node metrics are not available: %v", err)
		return nil
	}
	usage := make(map[string]corev1.ResourceList, len(metrics))
	for _, m := range metrics {
		usage[m.Name] = m.Usage
	}
	return usage
}
