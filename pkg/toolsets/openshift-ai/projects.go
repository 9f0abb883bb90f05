package openshiftai

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/mcplog"
)

func initProjects() []api.ServerTool {
	return []api.ServerTool{
		{Tool: api.Tool{
			Name:        "projects_list",
			Description: "List the OpenShift AI data science projects (namespaces managed by the dashboard) in the current cluster",
			InputSchema: listSchema(false),
			Annotations: readOnly("Projects: List"),
		}, Handler: projectsList},
		{Tool: api.Tool{
			Name:        "project_get",
			Description: "Get the details of an OpenShift AI data science project",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"name":      {Type: "string", Description: "Name of the data science project"},
					"verbosity": verbositySchema(),
				},
				Required: []string{"name"},
			},
			Annotations: readOnly("Project: Get"),
		}, Handler: projectGet},
		{Tool: api.Tool{
			Name: "project_summary",
			Description: "Get an overview of a data science project: workbenches by status, training jobs, pipeline servers and runs, " +
				"storage, connections and deployed models",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"namespace": namespaceSchema(),
				},
				Required: []string{"namespace"},
			},
			Annotations: readOnly("Project: Summary"),
		}, Handler: projectSummary},
	}
}

func projectsList(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	args, err := parseListArgs(params)
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	projects, err := client(params).ListProjects(params)
	if err != nil {
		mcplog.HandleK8sError(params, err, "data science project listing")
		return api.NewToolCallResult("", fmt.Errorf("failed to list data science projects: %w", err)), nil
	}
	return listResult(params, projects, args), nil
}

func projectGet(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	name, err := api.RequiredString(params, "name")
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	project, err := client(params).GetProject(params, name)
	if err != nil {
		mcplog.HandleK8sError(params, err, "data science project access")
		return api.NewToolCallResult("", fmt.Errorf("failed to get data science project %s: %w", name, err)), nil
	}
	return getResult(params, project), nil
}

func projectSummary(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	namespace, err := api.RequiredString(params, "namespace")
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	summary, err := client(params).GetProjectSummary(params, namespace)
	if err != nil {
		mcplog.HandleK8sError(params, err, "data science project summary")
		return api.NewToolCallResult("", fmt.Errorf("failed to summarize data science project %s: %w", namespace, err)), nil
	}
	return render(params, summary), nil
}
