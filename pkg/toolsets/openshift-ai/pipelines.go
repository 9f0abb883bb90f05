package openshiftai

import (
	"fmt"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/mcplog"
)

func initPipelines() []api.ServerTool {
	return []api.ServerTool{
		{Tool: api.Tool{
			Name:        "pipeline_servers_list",
			Description: "List the data science pipeline servers (DataSciencePipelinesApplications) of a data science project",
			InputSchema: listSchema(true),
			Annotations: readOnly("Pipeline Servers: List"),
		}, Handler: pipelineServersList},
		{Tool: api.Tool{
			Name:        "pipeline_server_get",
			Description: "Get the details and readiness of a data science pipeline server",
			InputSchema: getSchema("Name of the pipeline server"),
			Annotations: readOnly("Pipeline Server: Get"),
		}, Handler: pipelineServerGet},
		{Tool: api.Tool{
			Name:        "pipeline_runs_list",
			Description: "List the pipeline runs of a data science project with their status, newest first",
			InputSchema: listSchema(true),
			Annotations: readOnly("Pipeline Runs: List"),
		}, Handler: pipelineRunsList},
	}
}

func pipelineServersList(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	namespace, err := api.RequiredString(params, "namespace")
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	args, err := parseListArgs(params)
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	servers, err := client(params).ListPipelineServers(params, namespace)
	if err != nil {
		mcplog.HandleK8sError(params, err, "pipeline server listing")
		return api.NewToolCallResult("", fmt.Errorf("failed to list pipeline servers: %w", err)), nil
	}
	return listResult(params, servers, args), nil
}

func pipelineServerGet(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	namespace, name, err := namespacedName(params)
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	server, err := client(params).GetPipelineServer(params, namespace, name)
	if err != nil {
		mcplog.HandleK8sError(params, err, "pipeline server access")
		return api.NewToolCallResult("", fmt.Errorf("failed to get pipeline server: %w", err)), nil
	}
	return getResult(params, server), nil
}

func pipelineRunsList(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	namespace, err := api.RequiredString(params, "namespace")
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	args, err := parseListArgs(params)
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	runs, err := client(params).ListPipelineRuns(params, namespace)
	if err != nil {
		mcplog.HandleK8sError(params, err, "pipeline run listing")
		return api.NewToolCallResult("", fmt.Errorf("failed to list pipeline runs: %w", err)), nil
	}
	return listResult(params, runs, args), nil
}
