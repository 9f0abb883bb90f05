package mcp

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"slices"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"k8s.io/klog/v2"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/cache"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/config"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/metrics"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/output"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/toolsets"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/version"
)

type Configuration struct {
	*config.StaticConfig
	listOutput output.Output
	toolsets   []api.Toolset
}

func (c *Configuration) Toolsets() []api.Toolset {
	if c.toolsets == nil {
		for _, toolset := range c.StaticConfig.Toolsets {
			if ts := toolsets.ToolsetFromString(toolset); ts != nil {
				c.toolsets = append(c.toolsets, ts)
			}
		}
	}
	return c.toolsets
}

func (c *Configuration) ListOutput() output.Output {
	if c.listOutput == nil {
		c.listOutput = output.FromString(c.StaticConfig.ListOutput)
	}
	return c.listOutput
}

// Provider supplies the Kubernetes clients used by the tool handlers.
type Provider interface {
	// Kubernetes returns the clients for the current cluster configuration.
	Kubernetes() api.KubernetesClient
	// WatchKubeConfig calls onKubeConfigChange after the cluster configuration changed.
	WatchKubeConfig(onKubeConfigChange func() error)
	Close()
}

type ServerOption func(s *Server)

// WithCache sets the response cache shared by the tool handlers.
func WithCache(c *cache.Cache) ServerOption {
	return func(s *Server) {
		s.cache = c
	}
}

// WithMetrics sets the metrics system, otherwise the server creates its own.
func WithMetrics(m *metrics.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

type Server struct {
	configuration *Configuration
	server        *mcp.Server
	p             Provider
	cache         *cache.Cache
	metrics       *metrics.Metrics

	mu           sync.Mutex
	enabledTools []string
}

func NewServer(configuration Configuration, provider Provider, opts ...ServerOption) (*Server, error) {
	s := &Server{
		configuration: &configuration,
		server: mcp.NewServer(
			&mcp.Implementation{
				Name:    version.BinaryName,
				Title:   version.BinaryName,
				Version: version.Version,
			},
			&mcp.ServerOptions{
				Capabilities: &mcp.ServerCapabilities{
					Tools:   &mcp.ToolCapabilities{ListChanged: !configuration.Stateless},
					Logging: &mcp.LoggingCapabilities{},
				},
				Instructions: configuration.ServerInstructions,
			}),
		p: provider,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		metricsInstance, err := metrics.New(metrics.Config{
			TracerName:     version.BinaryName + "/mcp",
			ServiceName:    version.BinaryName,
			ServiceVersion: version.Version,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
		s.metrics = metricsInstance
	}

	s.server.AddReceivingMiddleware(sessionInjectionMiddleware)
	s.server.AddReceivingMiddleware(toolCallLoggingMiddleware)
	s.server.AddReceivingMiddleware(s.metricsMiddleware())
	if err := s.reloadToolsets(); err != nil {
		return nil, err
	}
	s.p.WatchKubeConfig(s.onKubeConfigChange)

	return s, nil
}

// onKubeConfigChange drops every cached response, they were read with the previous identity.
func (s *Server) onKubeConfigChange() error {
	if cleared := s.cache.Clear(); cleared > 0 {
		klog.V(1).Infof("Kubeconfig changed, cleared %d cached responses", cleared)
	}
	return nil
}

func (s *Server) reloadToolsets() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Resolved once so that concurrent tool calls only read the configuration
	_ = s.configuration.ListOutput()
	enabledTools, err := reloadItems(
		s.enabledTools,
		s.collectApplicableTools(),
		func(t api.ServerTool) string { return t.Tool.Name },
		s.server.RemoveTools,
		s.registerTool,
	)
	if err != nil {
		return err
	}
	s.enabledTools = enabledTools
	return nil
}

// reloadItems removes the items that are no longer applicable, registers the current items,
// and returns the updated list of enabled item names.
func reloadItems[T any](
	previous []string,
	items []T,
	getName func(T) string,
	remove func(...string),
	register func(T) error,
) ([]string, error) {
	enabled := make([]string, 0, len(items))
	for _, item := range items {
		enabled = append(enabled, getName(item))
	}

	toRemove := make([]string, 0)
	for _, old := range previous {
		if !slices.Contains(enabled, old) {
			toRemove = append(toRemove, old)
		}
	}
	if len(toRemove) > 0 {
		remove(toRemove...)
	}

	for _, item := range items {
		if err := register(item); err != nil {
			return nil, err
		}
	}

	return enabled, nil
}

// collectApplicableTools returns the tools of the configured toolsets that pass the configuration filters.
func (s *Server) collectApplicableTools() []api.ServerTool {
	filter := ConfigurationFilter(s.configuration.StaticConfig)
	tools := make([]api.ServerTool, 0)
	for _, toolset := range s.configuration.Toolsets() {
		for _, tool := range toolset.GetTools() {
			if filter(tool) {
				tools = append(tools, tool)
			}
		}
	}
	return tools
}

func (s *Server) currentConfiguration() *Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configuration
}

// registerTool converts and registers a tool with the MCP server
func (s *Server) registerTool(tool api.ServerTool) error {
	goSdkTool, goSdkToolHandler, err := ServerToolToGoSdkTool(s, tool)
	if err != nil {
		return fmt.Errorf("failed to convert tool %s: %w", tool.Tool.Name, err)
	}
	s.server.AddTool(goSdkTool, goSdkToolHandler)
	return nil
}

// GetMetrics returns the metrics system for use by the HTTP server.
func (s *Server) GetMetrics() *metrics.Metrics {
	return s.metrics
}

// Cache returns the response cache, nil when the server runs without one.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// Stats is the payload of the stats endpoint.
type Stats struct {
	*metrics.Statistics
	Cache cache.Stats `json:"cache"`
}

// GetStats combines the tool and HTTP statistics with the response cache statistics.
func (s *Server) GetStats() Stats {
	return Stats{
		Statistics: s.metrics.GetStats(),
		Cache:      s.cache.Stats(),
	}
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.LoggingTransport{Transport: &mcp.StdioTransport{}, Writer: os.Stderr})
}

func (s *Server) ServeHTTP() *mcp.StreamableHTTPHandler {
	return mcp.NewStreamableHTTPHandler(func(request *http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{
		// Stateless servers don't send tools/list_changed notifications
		Stateless: s.currentConfiguration().Stateless,
	})
}

// Connect serves a single MCP session over transport.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

func (s *Server) GetEnabledTools() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.enabledTools)
}

// ReloadConfiguration applies a new configuration and updates the registered tools.
// This is intended to be called when configuration file changes are detected.
func (s *Server) ReloadConfiguration(newConfig *config.StaticConfig) error {
	klog.V(1).Info("Reloading MCP server configuration...")

	s.mu.Lock()
	s.configuration = &Configuration{StaticConfig: newConfig}
	s.mu.Unlock()

	if err := s.reloadToolsets(); err != nil {
		return fmt.Errorf("failed to reload toolsets: %w", err)
	}

	klog.V(1).Info("MCP server configuration reloaded successfully")
	return nil
}

func (s *Server) Close() {
	if s.p != nil {
		s.p.Close()
	}
}

// Shutdown gracefully shuts down the server, flushing any pending metrics.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.metrics != nil {
		if err := s.metrics.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown metrics: %w", err)
		}
	}
	s.Close()
	return nil
}
