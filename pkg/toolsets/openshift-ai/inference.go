package openshiftai

import (
	"fmt"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/mcplog"
)

func initInference() []api.ServerTool {
	return []api.ServerTool{
		{Tool: api.Tool{
			Name:        "inference_services_list",
			Description: "List the deployed models (KServe InferenceServices) of a data science project with their URL and readiness",
			InputSchema: listSchema(true),
			Annotations: readOnly("Inference Services: List"),
		}, Handler: inferenceServicesList},
		{Tool: api.Tool{
			Name:        "inference_service_get",
			Description: "Get the details of a deployed model (KServe InferenceService): runtime, model format, storage and readiness",
			InputSchema: getSchema("Name of the inference service"),
			Annotations: readOnly("Inference Service: Get"),
		}, Handler: inferenceServiceGet},
	}
}

func inferenceServicesList(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	namespace, err := api.RequiredString(params, "namespace")
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	args, err := parseListArgs(params)
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	services, err := client(params).ListInferenceServices(params, namespace)
	if err != nil {
		mcplog.HandleK8sError(params, err, "inference service listing")
		return api.NewToolCallResult("", fmt.Errorf("failed to list inference services: %w", err)), nil
	}
	return listResult(params, services, args), nil
}

func inferenceServiceGet(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	namespace, name, err := namespacedName(params)
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	service, err := client(params).GetInferenceService(params, namespace, name)
	if err != nil {
		mcplog.HandleK8sError(params, err, "inference service access")
		return api.NewToolCallResult("", fmt.Errorf("failed to get inference service: %w", err)), nil
	}
	return getResult(params, service), nil
}
