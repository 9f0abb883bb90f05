package openshiftai

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/utils/ptr"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	openshiftai "github.com/opendatahub-io/rhoai-mcp-server/pkg/openshift-ai"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/output"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/response"
)

func client(params api.ToolHandlerParams) *openshiftai.Client {
	return openshiftai.NewClient(params.KubernetesClient, params.Cache)
}

func namespaceSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: "Name of the data science project (namespace)",
	}
}

func verbositySchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "string",
		Enum: response.Verbosities,
		Description: "Level of detail of the response: 'minimal' returns names and status, " +
			"'standard' the commonly useful fields, 'full' adds the raw resource (Optional, defaults to the server configuration)",
	}
}

// listSchema returns the input schema of a list tool, with pagination and verbosity properties.
func listSchema(namespaced bool) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"limit": {
				Type:        "integer",
				Description: "Maximum number of items to return (Optional, capped by the server configuration)",
				Minimum:     ptr.To(float64(0)),
			},
			"offset": {
				Type:        "integer",
				Description: "Number of items to skip (Optional, default 0)",
				Minimum:     ptr.To(float64(0)),
			},
			"verbosity": verbositySchema(),
		},
	}
	if namespaced {
		schema.Properties["namespace"] = namespaceSchema()
		schema.Required = []string{"namespace"}
	}
	return schema
}

// getSchema returns the input schema of a tool addressing a single named resource in a project.
func getSchema(nameDescription string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"namespace": namespaceSchema(),
			"name": {
				Type:        "string",
				Description: nameDescription,
			},
			"verbosity": verbositySchema(),
		},
		Required: []string{"namespace", "name"},
	}
}

func readOnly(title string) api.ToolAnnotations {
	return api.ToolAnnotations{
		Title:           title,
		ReadOnlyHint:    ptr.To(true),
		DestructiveHint: ptr.To(false),
		IdempotentHint:  ptr.To(true),
		OpenWorldHint:   ptr.To(true),
	}
}

type listArgs struct {
	offset    int
	limit     *int
	verbosity response.Verbosity
}

func parseListArgs(params api.ToolHandlerParams) (*listArgs, error) {
	limit, err := api.OptionalInt(params, "limit")
	if err != nil {
		return nil, err
	}
	if limit != nil && *limit < 0 {
		return nil, fmt.Errorf("limit must not be negative")
	}
	offset, err := api.OptionalInt(params, "offset")
	if err != nil {
		return nil, err
	}
	ret := &listArgs{
		limit:     params.EffectiveListLimit(limit),
		verbosity: verbosity(params),
	}
	if offset != nil {
		ret.offset = max(*offset, 0)
	}
	return ret, nil
}

func verbosity(params api.ToolHandlerParams) response.Verbosity {
	return response.ParseVerbosity(api.OptionalString(params, "verbosity", params.GetDefaultVerbosity()))
}

// shape renders a resource at the requested verbosity.
func shape(item openshiftai.Resource, verbosity response.Verbosity) (any, error) {
	switch verbosity {
	case response.Minimal:
		return item.Summary(), nil
	case response.Full:
		return fullView(item)
	default:
		return item, nil
	}
}

// fullView merges the resource view with its cleaned raw object.
// Objects are shared with the response cache, so the raw copy is deep-copied before cleaning.
func fullView(item openshiftai.Resource) (map[string]any, error) {
	b, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	ret := map[string]any{}
	if err = json.Unmarshal(b, &ret); err != nil {
		return nil, err
	}
	obj := item.Object()
	if obj == nil {
		return ret, nil
	}
	// generated DeepCopyObject returns nil for typed nil objects
	copied := obj.DeepCopyObject()
	if copied == nil {
		return ret, nil
	}
	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(copied)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", item.Summary().Name, err)
	}
	raw := &unstructured.Unstructured{Object: content}
	output.CleanMetadata(raw)
	ret["raw"] = raw.Object
	return ret, nil
}

func shapeList[T openshiftai.Resource](items []T, args *listArgs) (*response.PaginatedResponse[any], error) {
	page := response.NewPaginatedResponse(items, args.offset, args.limit)
	shaped := make([]any, 0, len(page.Items))
	for _, item := range page.Items {
		view, err := shape(item, args.verbosity)
		if err != nil {
			return nil, err
		}
		shaped = append(shaped, view)
	}
	return &response.PaginatedResponse[any]{
		Items:      shaped,
		Total:      page.Total,
		Offset:     page.Offset,
		Limit:      page.Limit,
		HasMore:    page.HasMore,
		NextOffset: page.NextOffset,
	}, nil
}

func render(params api.ToolHandlerParams, v any) *api.ToolCallResult {
	out := params.ListOutput
	if out == nil {
		out = output.Yaml
	}
	ret, err := out.Print(v)
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to render response: %w", err))
	}
	return api.NewToolCallResult(ret, nil)
}

// listResult shapes and prints the result of a list operation.
func listResult[T openshiftai.Resource](params api.ToolHandlerParams, items []T, args *listArgs) *api.ToolCallResult {
	ret, err := shapeList(items, args)
	if err != nil {
		return api.NewToolCallResult("", err)
	}
	return render(params, ret)
}

// getResult shapes and prints a single resource.
func getResult(params api.ToolHandlerParams, item openshiftai.Resource) *api.ToolCallResult {
	ret, err := shape(item, verbosity(params))
	if err != nil {
		return api.NewToolCallResult("", err)
	}
	return render(params, ret)
}
