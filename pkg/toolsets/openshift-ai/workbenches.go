package openshiftai

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"k8s.io/utils/ptr"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/mcplog"
	openshiftai "github.com/opendatahub-io/rhoai-mcp-server/pkg/openshift-ai"
)

func initWorkbenches() []api.ServerTool {
	lifecycleSchema := func(action string) *jsonschema.Schema {
		return &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"namespace": namespaceSchema(),
				"name":      {Type: "string", Description: "Name of the workbench to " + action},
			},
			Required: []string{"namespace", "name"},
		}
	}
	return []api.ServerTool{
		{Tool: api.Tool{
			Name:        "workbenches_list",
			Description: "List the workbenches (Jupyter notebooks) of a data science project with their status (Running, Stopped, Starting)",
			InputSchema: listSchema(true),
			Annotations: readOnly("Workbenches: List"),
		}, Handler: workbenchesList},
		{Tool: api.Tool{
			Name:        "workbench_get",
			Description: "Get the details of a workbench (Jupyter notebook) of a data science project",
			InputSchema: getSchema("Name of the workbench"),
			Annotations: readOnly("Workbench: Get"),
		}, Handler: workbenchGet},
		{Tool: api.Tool{
			Name:        "workbench_stop",
			Description: "Stop a running workbench, its pod is scaled down while its storage is preserved",
			InputSchema: lifecycleSchema("stop"),
			Annotations: api.ToolAnnotations{
				Title:           "Workbench: Stop",
				ReadOnlyHint:    ptr.To(false),
				DestructiveHint: ptr.To(true),
				IdempotentHint:  ptr.To(true),
				OpenWorldHint:   ptr.To(true),
			},
		}, Handler: workbenchStop},
		{Tool: api.Tool{
			Name:        "workbench_start",
			Description: "Start a stopped workbench",
			InputSchema: lifecycleSchema("start"),
			Annotations: api.ToolAnnotations{
				Title:           "Workbench: Start",
				ReadOnlyHint:    ptr.To(false),
				DestructiveHint: ptr.To(false),
				IdempotentHint:  ptr.To(true),
				OpenWorldHint:   ptr.To(true),
			},
		}, Handler: workbenchStart},
	}
}

func workbenchesList(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	namespace, err := api.RequiredString(params, "namespace")
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	args, err := parseListArgs(params)
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	workbenches, err := client(params).ListWorkbenches(params, namespace)
	if err != nil {
		mcplog.HandleK8sError(params, err, "workbench listing")
		return api.NewToolCallResult("", fmt.Errorf("failed to list workbenches: %w", err)), nil
	}
	return listResult(params, workbenches, args), nil
}

func workbenchGet(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	namespace, name, err := namespacedName(params)
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	workbench, err := client(params).GetWorkbench(params, namespace, name)
	if err != nil {
		mcplog.HandleK8sError(params, err, "workbench access")
		return api.NewToolCallResult("", fmt.Errorf("failed to get workbench: %w", err)), nil
	}
	return getResult(params, workbench), nil
}

func workbenchStop(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	return workbenchLifecycle(params, "stop", (*openshiftai.Client).StopWorkbench)
}

func workbenchStart(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	return workbenchLifecycle(params, "start", (*openshiftai.Client).StartWorkbench)
}

type workbenchAction func(c *openshiftai.Client, ctx context.Context, namespace, name string) (*openshiftai.Workbench, error)

func workbenchLifecycle(params api.ToolHandlerParams, action string, do workbenchAction) (*api.ToolCallResult, error) {
	namespace, name, err := namespacedName(params)
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	workbench, err := do(client(params), params, namespace, name)
	if err != nil {
		mcplog.HandleK8sError(params, err, "workbench "+action)
		return api.NewToolCallResult("", fmt.Errorf("failed to %s workbench: %w", action, err)), nil
	}
	return render(params, map[string]any{
		"name":      workbench.Name,
		"namespace": workbench.Namespace,
		"status":    workbench.Status,
		"message":   fmt.Sprintf("Workbench '%s' %s requested", workbench.Name, action),
	}), nil
}

func namespacedName(params api.ToolHandlerParams) (string, string, error) {
	namespace, err := api.RequiredString(params, "namespace")
	if err != nil {
		return "", "", err
	}
	name, err := api.RequiredString(params, "name")
	if err != nil {
		return "", "", err
	}
	return namespace, name, nil
}
