package mcp

import (
	"bytes"
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"k8s.io/klog/v2"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/mcplog"
)

// sessionInjectionMiddleware makes the server session available to tool handlers
// so that they can send MCP log notifications to the client.
func sessionInjectionMiddleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		if session, ok := req.GetSession().(*mcp.ServerSession); ok && session != nil {
			ctx = context.WithValue(ctx, mcplog.MCPSessionContextKey, session)
		}
		return next(ctx, method, req)
	}
}

func toolCallLoggingMiddleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		switch params := req.GetParams().(type) {
		case *mcp.CallToolParamsRaw:
			if toolCallRequest, err := GoSdkToolCallParamsToToolCallRequest(params); err == nil {
				klog.V(5).Infof("mcp tool call: %s(%v)", toolCallRequest.Name, toolCallRequest.GetArguments())
			}
			if req.GetExtra() != nil && req.GetExtra().Header != nil {
				buffer := bytes.NewBuffer(make([]byte, 0))
				if err := req.GetExtra().Header.WriteSubset(buffer, map[string]bool{"Authorization": true, "authorization": true}); err == nil {
					klog.V(7).Infof("mcp tool call headers: %s", buffer)
				}
			}
		}
		return next(ctx, method, req)
	}
}

// metricsMiddleware returns a metrics middleware with access to the server's metrics system
func (s *Server) metricsMiddleware() func(mcp.MethodHandler) mcp.MethodHandler {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			start := time.Now()
			result, err := next(ctx, method, req)
			duration := time.Since(start)

			name := method
			if params, ok := req.GetParams().(*mcp.CallToolParamsRaw); ok && params != nil {
				name = params.Name
			}
			// Tool errors are reported in the result, not as protocol errors
			recorded := err
			if recorded == nil {
				if toolResult, ok := result.(*mcp.CallToolResult); ok && toolResult != nil && toolResult.IsError {
					recorded = toolError{toolResult}
				}
			}
			s.metrics.RecordToolCall(ctx, name, duration, recorded)

			return result, err
		}
	}
}

type toolError struct {
	result *mcp.CallToolResult
}

func (e toolError) Error() string {
	if len(e.result.Content) > 0 {
		if text, ok := e.result.Content[0].(*mcp.TextContent); ok {
			return text.Text
		}
	}
	return "tool call failed"
}
