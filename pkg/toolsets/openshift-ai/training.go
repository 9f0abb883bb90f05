package openshiftai

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/mcplog"
)

func initTraining() []api.ServerTool {
	runtimesSchema := listSchema(false)
	runtimesSchema.Properties["namespace"] = &jsonschema.Schema{
		Type:        "string",
		Description: "Also list the training runtimes of this namespace (Optional, only cluster runtimes are listed if not provided)",
	}
	return []api.ServerTool{
		{Tool: api.Tool{
			Name:        "training_jobs_list",
			Description: "List the Kubeflow Trainer training jobs (TrainJobs) of a data science project, newest first",
			InputSchema: listSchema(true),
			Annotations: readOnly("Training Jobs: List"),
		}, Handler: trainingJobsList},
		{Tool: api.Tool{
			Name:        "training_job_get",
			Description: "Get the details and status of a training job",
			InputSchema: getSchema("Name of the training job"),
			Annotations: readOnly("Training Job: Get"),
		}, Handler: trainingJobGet},
		{Tool: api.Tool{
			Name:        "training_runtimes_list",
			Description: "List the training runtimes available to training jobs, the cluster runtimes followed by the runtimes of the namespace if provided",
			InputSchema: runtimesSchema,
			Annotations: readOnly("Training Runtimes: List"),
		}, Handler: trainingRuntimesList},
		{Tool: api.Tool{
			Name:        "cluster_resources_get",
			Description: "Get the compute resources of the cluster available for training: CPU, memory, GPUs and, when available, current node usage",
			InputSchema: &jsonschema.Schema{
				Type: "object",
			},
			Annotations: readOnly("Cluster Resources: Get"),
		}, Handler: clusterResourcesGet},
	}
}

func trainingJobsList(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	namespace, err := api.RequiredString(params, "namespace")
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	args, err := parseListArgs(params)
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	jobs, err := client(params).ListTrainingJobs(params, namespace)
	if err != nil {
		mcplog.HandleK8sError(params, err, "training job listing")
		return api.NewToolCallResult("", fmt.Errorf("failed to list training jobs: %w", err)), nil
	}
	return listResult(params, jobs, args), nil
}

func trainingJobGet(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	namespace, name, err := namespacedName(params)
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	job, err := client(params).GetTrainingJob(params, namespace, name)
	if err != nil {
		mcplog.HandleK8sError(params, err, "training job access")
		return api.NewToolCallResult("", fmt.Errorf("failed to get training job: %w", err)), nil
	}
	return getResult(params, job), nil
}

func trainingRuntimesList(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	args, err := parseListArgs(params)
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	runtimes, err := client(params).ListTrainingRuntimes(params, api.OptionalString(params, "namespace", ""))
	if err != nil {
		mcplog.HandleK8sError(params, err, "training runtime listing")
		return api.NewToolCallResult("", fmt.Errorf("failed to list training runtimes: %w", err)), nil
	}
	return listResult(params, runtimes, args), nil
}

func clusterResourcesGet(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	resources, err := client(params).GetClusterResources(params)
	if err != nil {
		mcplog.HandleK8sError(params, err, "cluster resources access")
		return api.NewToolCallResult("", fmt.Errorf("failed to get cluster resources: %w", err)), nil
	}
	return render(params, resources), nil
}
