package openshiftai

import (
	"fmt"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/mcplog"
)

func initStorage() []api.ServerTool {
	return []api.ServerTool{
		{Tool: api.Tool{
			Name:        "storage_list",
			Description: "List the persistent storage (PersistentVolumeClaims) of a data science project with size, access modes and storage class",
			InputSchema: listSchema(true),
			Annotations: readOnly("Storage: List"),
		}, Handler: storageList},
		{Tool: api.Tool{
			Name: "connections_list",
			Description: "List the data connections of a data science project. " +
				"Only the connection type and the names of the keys are returned, secret values are never exposed",
			InputSchema: listSchema(true),
			Annotations: readOnly("Connections: List"),
		}, Handler: connectionsList},
	}
}

func storageList(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	namespace, err := api.RequiredString(params, "namespace")
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	args, err := parseListArgs(params)
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	storage, err := client(params).ListStorage(params, namespace)
	if err != nil {
		mcplog.HandleK8sError(params, err, "storage listing")
		return api.NewToolCallResult("", fmt.Errorf("failed to list storage: %w", err)), nil
	}
	return listResult(params, storage, args), nil
}

func connectionsList(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	namespace, err := api.RequiredString(params, "namespace")
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	args, err := parseListArgs(params)
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	connections, err := client(params).ListConnections(params, namespace)
	if err != nil {
		mcplog.HandleK8sError(params, err, "connection listing")
		return api.NewToolCallResult("", fmt.Errorf("failed to list connections: %w", err)), nil
	}
	return listResult(params, connections, args), nil
}
