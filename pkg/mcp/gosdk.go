package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"k8s.io/utils/ptr"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
)

// ServerToolToGoSdkTool converts an api.ServerTool into a go-sdk tool and its handler.
func ServerToolToGoSdkTool(s *Server, tool api.ServerTool) (*mcp.Tool, mcp.ToolHandler, error) {
	goSdkTool := &mcp.Tool{
		Name:        tool.Tool.Name,
		Title:       tool.Tool.Annotations.Title,
		Description: tool.Tool.Description,
		Annotations: &mcp.ToolAnnotations{
			Title:           tool.Tool.Annotations.Title,
			ReadOnlyHint:    ptr.Deref(tool.Tool.Annotations.ReadOnlyHint, false),
			DestructiveHint: tool.Tool.Annotations.DestructiveHint,
			IdempotentHint:  ptr.Deref(tool.Tool.Annotations.IdempotentHint, false),
			OpenWorldHint:   tool.Tool.Annotations.OpenWorldHint,
		},
	}
	schema := []byte(`{"type":"object"}`)
	if tool.Tool.InputSchema != nil {
		var err error
		if schema, err = json.Marshal(tool.Tool.InputSchema); err != nil {
			return nil, nil, fmt.Errorf("failed to marshal tool input schema for tool %s: %v", tool.Tool.Name, err)
		}
	}
	// Some clients have trouble parsing a schema without properties
	if string(schema) == `{"type":"object"}` {
		schema = []byte(`{"type":"object","properties":{}}`)
	}
	goSdkTool.InputSchema = json.RawMessage(schema)

	goSdkHandler := func(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		toolCallRequest, err := GoSdkToolCallRequestToToolCallRequest(request)
		if err != nil {
			return nil, fmt.Errorf("%v for tool %s", err, tool.Tool.Name)
		}
		configuration := s.currentConfiguration()
		result, err := tool.Handler(api.ToolHandlerParams{
			Context:          ctx,
			ResponseConfig:   configuration.StaticConfig,
			KubernetesClient: s.p.Kubernetes(),
			ToolCallRequest:  toolCallRequest,
			Cache:            s.cache,
			ListOutput:       configuration.ListOutput(),
		})
		if err != nil {
			return nil, err
		}
		return NewStructuredResult(result.Content, result.StructuredContent, result.Error), nil
	}
	return goSdkTool, goSdkHandler, nil
}

// ToolCallRequest is the api.ToolCallRequest view of a go-sdk tool call.
type ToolCallRequest struct {
	Name      string
	arguments map[string]any
}

var _ api.ToolCallRequest = (*ToolCallRequest)(nil)

func GoSdkToolCallRequestToToolCallRequest(request *mcp.CallToolRequest) (*ToolCallRequest, error) {
	if request == nil || request.Params == nil {
		return nil, errors.New("invalid tool call parameters for tool call request")
	}
	return GoSdkToolCallParamsToToolCallRequest(request.Params)
}

func GoSdkToolCallParamsToToolCallRequest(toolCallParams *mcp.CallToolParamsRaw) (*ToolCallRequest, error) {
	arguments := make(map[string]any)
	if len(toolCallParams.Arguments) > 0 {
		if err := json.Unmarshal(toolCallParams.Arguments, &arguments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tool call arguments: %v", err)
		}
	}
	return &ToolCallRequest{
		Name:      toolCallParams.Name,
		arguments: arguments,
	}, nil
}

func (r *ToolCallRequest) GetArguments() map[string]any {
	return r.arguments
}

func NewTextResult(content string, err error) *mcp.CallToolResult {
	return NewStructuredResult(content, nil, err)
}

// NewStructuredResult builds a tool result carrying the text content and, when not nil,
// the structured content. Errors are reported as tool errors without structured content.
func NewStructuredResult(content string, structured any, err error) *mcp.CallToolResult {
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{
					Text: err.Error(),
				},
			},
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: content,
			},
		},
		StructuredContent: structured,
	}
}
