package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// McpClient is an initialized MCP client session for tests.
type McpClient struct {
	ctx        context.Context
	testServer *httptest.Server
	*mcp.ClientSession

	mu   sync.Mutex
	logs []*mcp.LoggingMessageParams
}

func (m *McpClient) clientOptions() *mcp.ClientOptions {
	return &mcp.ClientOptions{
		LoggingMessageHandler: func(_ context.Context, req *mcp.LoggingMessageRequest) {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.logs = append(m.logs, req.Params)
		},
	}
}

func (m *McpClient) connect(t *testing.T, transport mcp.Transport) {
	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "1.33.7"}, m.clientOptions())
	var err error
	m.ClientSession, err = client.Connect(m.ctx, transport, nil)
	require.NoError(t, err, "Expected no error initializing MCP client")
}

// NewMcpClient starts mcpHttpServer and connects to it with the streamable HTTP transport.
func NewMcpClient(t *testing.T, mcpHttpServer http.Handler) *McpClient {
	require.NotNil(t, mcpHttpServer, "McpHttpServer must be provided")
	ret := &McpClient{ctx: t.Context()}
	ret.testServer = httptest.NewServer(mcpHttpServer)
	ret.connect(t, &mcp.StreamableClientTransport{Endpoint: ret.testServer.URL + "/mcp"})
	return ret
}

// NewInMemoryMcpClient connects to a server through in-memory transports.
// connect must serve the server side of the session.
func NewInMemoryMcpClient(t *testing.T, connect func(ctx context.Context, transport mcp.Transport) error) *McpClient {
	ret := &McpClient{ctx: t.Context()}
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	require.NoError(t, connect(t.Context(), serverTransport), "Expected no error connecting MCP server")
	ret.connect(t, clientTransport)
	return ret
}

func (m *McpClient) Close() {
	if m.ClientSession != nil {
		_ = m.ClientSession.Close()
	}
	if m.testServer != nil {
		m.testServer.Close()
	}
}

// CallTool calls the tool name with args.
func (m *McpClient) CallTool(name string, args map[string]any) (*mcp.CallToolResult, error) {
	return m.ClientSession.CallTool(m.ctx, &mcp.CallToolParams{Name: name, Arguments: args})
}

// ListToolNames returns the names of the tools exposed by the server.
func (m *McpClient) ListToolNames() ([]string, error) {
	result, err := m.ListTools(m.ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	return names, nil
}

// SetLogLevel subscribes the client to the server log notifications at level or above.
func (m *McpClient) SetLogLevel(level string) error {
	return m.SetLoggingLevel(m.ctx, &mcp.SetLoggingLevelParams{Level: mcp.LoggingLevel(level)})
}

// Logs returns the log notifications received so far.
func (m *McpClient) Logs() []*mcp.LoggingMessageParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*mcp.LoggingMessageParams{}, m.logs...)
}

// Text returns the text of the first content of result.
func Text(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	if text, ok := result.Content[0].(*mcp.TextContent); ok {
		return text.Text
	}
	return ""
}

// Decode unmarshals the JSON text content of result into a generic value.
func Decode(result *mcp.CallToolResult) (map[string]any, error) {
	ret := map[string]any{}
	err := json.Unmarshal([]byte(Text(result)), &ret)
	return ret, err
}
