package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"k8s.io/cli-runtime/pkg/genericiooptions"
	"k8s.io/klog/v2"
	"k8s.io/klog/v2/textlogger"
	"k8s.io/kubectl/pkg/util/i18n"
	"k8s.io/kubectl/pkg/util/templates"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/cache"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/config"
	internalhttp "github.com/opendatahub-io/rhoai-mcp-server/pkg/http"
	internalk8s "github.com/opendatahub-io/rhoai-mcp-server/pkg/kubernetes"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/mcp"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/metrics"
	openshiftai "github.com/opendatahub-io/rhoai-mcp-server/pkg/openshift-ai"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/output"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/toolsets"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/version"
)

var (
	long     = templates.LongDesc(i18n.T("Red Hat OpenShift AI Model Context Protocol (MCP) server"))
	examples = templates.Examples(i18n.T(`
# show this help
rhoai-mcp-server -h

# shows version information
rhoai-mcp-server --version

# start STDIO server
rhoai-mcp-server

# start a streamable HTTP server on port 8080
rhoai-mcp-server --port 8080

# start a read-only server with a 60 second response cache
rhoai-mcp-server --read-only --enable-response-caching --cache-ttl-seconds 60

# start a server with a main config file and a drop-in directory
rhoai-mcp-server --config /etc/rhoai-mcp-server/config.toml --config-dir /etc/rhoai-mcp-server/conf.d
`))
)

const (
	flagVersion               = "version"
	flagLogLevel              = "log-level"
	flagConfig                = "config"
	flagConfigDir             = "config-dir"
	flagPort                  = "port"
	flagKubeconfig            = "kubeconfig"
	flagToolsets              = "toolsets"
	flagListOutput            = "list-output"
	flagReadOnly              = "read-only"
	flagDisableDestructive    = "disable-destructive"
	flagEnabledTools          = "enabled-tools"
	flagDisabledTools         = "disabled-tools"
	flagStateless             = "stateless"
	flagEnableResponseCaching = "enable-response-caching"
	flagCacheTTLSeconds       = "cache-ttl-seconds"
)

type MCPServerOptions struct {
	Version               bool
	LogLevel              int
	Port                  string
	Kubeconfig            string
	Toolsets              []string
	ListOutput            string
	ReadOnly              bool
	DisableDestructive    bool
	EnabledTools          []string
	DisabledTools         []string
	Stateless             bool
	EnableResponseCaching bool
	CacheTTLSeconds       float64

	ConfigPath   string
	ConfigDir    string
	StaticConfig *config.StaticConfig

	// overrides re-applies the explicitly set flags on top of every configuration reload
	overrides func(*config.StaticConfig)

	genericiooptions.IOStreams
}

func NewMCPServerOptions(streams genericiooptions.IOStreams) *MCPServerOptions {
	return &MCPServerOptions{
		IOStreams:    streams,
		StaticConfig: config.Default(),
	}
}

func NewMCPServer(streams genericiooptions.IOStreams) *cobra.Command {
	return newCommand(NewMCPServerOptions(streams))
}

func newCommand(o *MCPServerOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rhoai-mcp-server [command] [options]",
		Short:   "Red Hat OpenShift AI Model Context Protocol (MCP) server",
		Long:    long,
		Example: examples,
		RunE: func(c *cobra.Command, args []string) error {
			if err := o.Complete(c); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			if err := o.Run(c.Context()); err != nil {
				return err
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&o.Version, flagVersion, o.Version, "Print version information and quit")
	cmd.Flags().IntVar(&o.LogLevel, flagLogLevel, o.LogLevel, "Set the log level (from 0 to 9)")
	cmd.Flags().StringVar(&o.ConfigPath, flagConfig, o.ConfigPath, "Path of the config file.")
	cmd.Flags().StringVar(&o.ConfigDir, flagConfigDir, o.ConfigDir, "Path of a drop-in directory with additional .toml config files, merged in lexical order.")
	cmd.Flags().StringVar(&o.Port, flagPort, o.Port, "Start a streamable HTTP server on the specified port (e.g. 8080)")
	cmd.Flags().StringVar(&o.Kubeconfig, flagKubeconfig, o.Kubeconfig, "Path to the kubeconfig file to use for authentication")
	cmd.Flags().StringSliceVar(&o.Toolsets, flagToolsets, o.Toolsets, "Comma-separated list of MCP toolsets to use (available toolsets: "+strings.Join(toolsets.ToolsetNames(), ", ")+"). Defaults to "+strings.Join(o.StaticConfig.Toolsets, ", ")+".")
	cmd.Flags().StringVar(&o.ListOutput, flagListOutput, o.ListOutput, "Output format for resource list operations (one of: "+strings.Join(output.Names, ", ")+"). Defaults to "+o.StaticConfig.ListOutput+".")
	cmd.Flags().BoolVar(&o.ReadOnly, flagReadOnly, o.ReadOnly, "If true, only tools annotated with readOnlyHint=true are exposed")
	cmd.Flags().BoolVar(&o.DisableDestructive, flagDisableDestructive, o.DisableDestructive, "If true, tools annotated with destructiveHint=true are disabled")
	cmd.Flags().StringSliceVar(&o.EnabledTools, flagEnabledTools, o.EnabledTools, "Comma-separated list of tools to expose. When set, every other tool is hidden.")
	cmd.Flags().StringSliceVar(&o.DisabledTools, flagDisabledTools, o.DisabledTools, "Comma-separated list of tools to hide")
	cmd.Flags().BoolVar(&o.Stateless, flagStateless, o.Stateless, "If true, the streamable HTTP transport runs without sessions and tools/list_changed notifications")
	cmd.Flags().BoolVar(&o.EnableResponseCaching, flagEnableResponseCaching, o.EnableResponseCaching, "If true, cluster reads are cached for --cache-ttl-seconds")
	cmd.Flags().Float64Var(&o.CacheTTLSeconds, flagCacheTTLSeconds, o.StaticConfig.CacheTTLSeconds, "Time to live of cached responses in seconds")

	return cmd
}

func (m *MCPServerOptions) Complete(cmd *cobra.Command) error {
	if m.ConfigPath != "" || m.ConfigDir != "" {
		cnf, err := config.Read(m.ConfigPath, m.ConfigDir)
		if err != nil {
			return fmt.Errorf("failed to read and merge config files: %w", err)
		}
		m.StaticConfig = cnf
	}

	m.overrides = m.flagOverrides(cmd)
	m.overrides(m.StaticConfig)

	m.initializeLogging()

	return nil
}

// flagOverrides captures the flags set in the command line, they take precedence over the config files.
func (m *MCPServerOptions) flagOverrides(cmd *cobra.Command) func(*config.StaticConfig) {
	changed := func(name string) bool {
		return cmd.Flag(name).Changed
	}
	return func(cfg *config.StaticConfig) {
		if changed(flagLogLevel) {
			cfg.LogLevel = m.LogLevel
		}
		if changed(flagPort) {
			cfg.Port = m.Port
		}
		if changed(flagKubeconfig) {
			cfg.KubeConfig = m.Kubeconfig
		}
		if changed(flagToolsets) {
			cfg.Toolsets = m.Toolsets
		}
		if changed(flagListOutput) {
			cfg.ListOutput = m.ListOutput
		}
		if changed(flagReadOnly) {
			cfg.ReadOnly = m.ReadOnly
		}
		if changed(flagDisableDestructive) {
			cfg.DisableDestructive = m.DisableDestructive
		}
		if changed(flagEnabledTools) {
			cfg.EnabledTools = m.EnabledTools
		}
		if changed(flagDisabledTools) {
			cfg.DisabledTools = m.DisabledTools
		}
		if changed(flagStateless) {
			cfg.Stateless = m.Stateless
		}
		if changed(flagEnableResponseCaching) {
			cfg.EnableResponseCaching = m.EnableResponseCaching
		}
		if changed(flagCacheTTLSeconds) {
			cfg.CacheTTLSeconds = m.CacheTTLSeconds
		}
	}
}

func (m *MCPServerOptions) initializeLogging() {
	flagSet := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(flagSet)
	if m.StaticConfig.Port == "" {
		// disable klog output for stdio mode
		// this is needed to avoid klog writing to stderr and breaking the protocol
		_ = flagSet.Parse([]string{"-logtostderr=false", "-alsologtostderr=false", "-stderrthreshold=FATAL"})
		return
	}
	loggerOptions := []textlogger.ConfigOption{textlogger.Output(m.Out)}
	if m.StaticConfig.LogLevel >= 0 {
		loggerOptions = append(loggerOptions, textlogger.Verbosity(m.StaticConfig.LogLevel))
		_ = flagSet.Parse([]string{"--v", strconv.Itoa(m.StaticConfig.LogLevel)})
	}
	logger := textlogger.NewLogger(textlogger.NewConfig(loggerOptions...))
	klog.SetLoggerWithOptions(logger)
}

func (m *MCPServerOptions) Validate() error {
	if output.FromString(m.StaticConfig.ListOutput) == nil {
		return fmt.Errorf("invalid output name: %s, valid names are: %s", m.StaticConfig.ListOutput, strings.Join(output.Names, ", "))
	}
	if err := toolsets.Validate(m.StaticConfig.Toolsets); err != nil {
		return err
	}
	return m.StaticConfig.Validate()
}

func (m *MCPServerOptions) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	klog.V(1).Info("Starting rhoai-mcp-server")
	klog.V(1).Infof(" - Config: %s", m.ConfigPath)
	klog.V(1).Infof(" - Config drop-in directory: %s", m.ConfigDir)
	klog.V(1).Infof(" - Toolsets: %s", strings.Join(m.StaticConfig.Toolsets, ", "))
	klog.V(1).Infof(" - ListOutput: %s", m.StaticConfig.ListOutput)
	klog.V(1).Infof(" - Read-only mode: %t", m.StaticConfig.ReadOnly)
	klog.V(1).Infof(" - Disable destructive tools: %t", m.StaticConfig.DisableDestructive)
	klog.V(1).Infof(" - Stateless mode: %t", m.StaticConfig.Stateless)
	klog.V(1).Infof(" - Response caching: %t (ttl %v)", m.StaticConfig.EnableResponseCaching, m.StaticConfig.CacheTTL())

	strategy := m.StaticConfig.ClusterProviderStrategy
	if strategy == "" {
		strategy = "auto-detect (it is recommended to set this explicitly in your Config)"
	}

	klog.V(1).Infof(" - ClusterProviderStrategy: %s", strategy)

	if m.Version {
		_, _ = fmt.Fprintf(m.Out, "%s\n", version.Version)
		return nil
	}

	holder := config.NewHolder(m.StaticConfig, m.ConfigPath, m.ConfigDir, config.WithOverrides(m.overrides))
	defer func() { _ = holder.Close() }()

	metricsInstance, err := metrics.New(metrics.Config{
		TracerName:     version.BinaryName + "/mcp",
		ServiceName:    version.BinaryName,
		ServiceVersion: version.Version,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	responseCache := cache.New(holder, cache.WithObserver(metricsInstance))

	manager, err := internalk8s.NewManager(m.StaticConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize kubernetes clients: %w", err)
	}
	checkAvailability(ctx, openshiftai.NewClient(manager.Kubernetes(), responseCache))

	mcpServer, err := mcp.NewServer(
		mcp.Configuration{StaticConfig: m.StaticConfig},
		manager,
		mcp.WithCache(responseCache),
		mcp.WithMetrics(metricsInstance),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize MCP server: %w", err)
	}
	defer mcpServer.Close()

	if err := holder.Watch(func(cfg *config.StaticConfig) {
		if reloadErr := mcpServer.ReloadConfiguration(cfg); reloadErr != nil {
			klog.Warningf("Failed to apply reloaded configuration: %v", reloadErr)
		}
	}); err != nil {
		klog.Warningf("Configuration changes will not be reloaded: %v", err)
	}

	if m.StaticConfig.Port != "" {
		return internalhttp.Serve(ctx, mcpServer, m.StaticConfig)
	}

	if err := mcpServer.ServeStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// checkAvailability logs which OpenShift AI components the cluster serves.
// The server starts anyway, tools for missing components report their own errors.
func checkAvailability(ctx context.Context, client *openshiftai.Client) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	status, err := client.CheckAvailability(ctx)
	if err != nil {
		klog.Warningf("Unable to detect OpenShift AI components: %v", err)
		return
	}
	klog.V(1).Infof(" - OpenShift cluster: %t", status.OpenShift)
	if !status.Available {
		klog.Warningf("OpenShift AI does not seem to be installed in this cluster, most tools will fail")
	}
	for _, warning := range status.Warnings {
		klog.V(1).Infof(" - %s", warning)
	}
}
