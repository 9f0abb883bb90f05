package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"k8s.io/klog/v2"
)

const (
	ClusterProviderKubeConfig = "kubeconfig"
	ClusterProviderInCluster  = "in-cluster"
)

// StaticConfig is the configuration for the server.
// It allows to configure server specific settings and tools to be enabled or disabled.
type StaticConfig struct {
	LogLevel   int    `toml:"log_level,omitzero"`
	Port       string `toml:"port,omitempty"`
	KubeConfig string `toml:"kubeconfig,omitempty"`
	ListOutput string `toml:"list_output,omitempty"`
	// When true, expose only tools annotated with readOnlyHint=true
	ReadOnly bool `toml:"read_only,omitempty"`
	// When true, disable tools annotated with destructiveHint=true
	DisableDestructive bool     `toml:"disable_destructive,omitempty"`
	Toolsets           []string `toml:"toolsets,omitempty"`
	EnabledTools       []string `toml:"enabled_tools,omitempty"`
	DisabledTools      []string `toml:"disabled_tools,omitempty"`
	// ClusterProviderStrategy is how the server finds the cluster.
	// If set to "kubeconfig", the current context of the kubeconfig is used.
	// If set to "in-cluster", the server will use the in cluster config.
	// Auto-detected when empty.
	ClusterProviderStrategy string `toml:"cluster_provider_strategy,omitempty"`
	// Stateless disables tools/list_changed notifications for the streamable HTTP transport.
	Stateless bool `toml:"stateless,omitempty"`
	// ServerInstructions are sent to clients during initialization.
	ServerInstructions string `toml:"server_instructions,omitempty"`

	// EnableResponseCaching turns on the TTL response cache for cluster read operations.
	EnableResponseCaching bool `toml:"enable_response_caching,omitempty"`
	// CacheTTLSeconds is how long cached responses stay valid (fractional seconds allowed).
	CacheTTLSeconds float64 `toml:"cache_ttl_seconds,omitzero"`

	// DefaultListLimit is applied to list tools called without a limit (0 means unlimited).
	DefaultListLimit int `toml:"default_list_limit,omitzero"`
	// MaxListLimit caps any limit requested by a list tool call.
	MaxListLimit int `toml:"max_list_limit,omitzero"`
	// DefaultVerbosity is used by tools called without a verbosity argument.
	DefaultVerbosity string `toml:"default_verbosity,omitempty"`

	// Internal: the config.toml directory, to help resolve relative file paths
	configDirPath string
}

// CacheTTL returns the configured cache TTL as a duration.
func (c *StaticConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds * float64(time.Second))
}

// EffectiveListLimit resolves the number of items a list tool returns for the requested limit.
// A nil result means no limit.
func (c *StaticConfig) EffectiveListLimit(requested *int) *int {
	if requested != nil {
		limit := *requested
		if c.MaxListLimit > 0 && limit > c.MaxListLimit {
			limit = c.MaxListLimit
		}
		return &limit
	}
	if c.DefaultListLimit > 0 {
		limit := c.DefaultListLimit
		return &limit
	}
	return nil
}

// GetDefaultVerbosity returns the verbosity used by tool calls that don't request one.
func (c *StaticConfig) GetDefaultVerbosity() string {
	return c.DefaultVerbosity
}

// ConfigDirPath returns the directory of the main config file, if any.
func (c *StaticConfig) ConfigDirPath() string {
	return c.configDirPath
}

// Validate checks the values that cannot be enforced by the TOML schema.
func (c *StaticConfig) Validate() error {
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("cache_ttl_seconds must not be negative, got %v", c.CacheTTLSeconds)
	}
	if c.DefaultListLimit < 0 || c.MaxListLimit < 0 {
		return fmt.Errorf("list limits must not be negative")
	}
	switch c.ClusterProviderStrategy {
	case "", ClusterProviderKubeConfig, ClusterProviderInCluster:
	default:
		return fmt.Errorf("invalid cluster_provider_strategy %q, valid values are: %s, %s",
			c.ClusterProviderStrategy, ClusterProviderKubeConfig, ClusterProviderInCluster)
	}
	return nil
}

type ReadConfigOpt func(cfg *StaticConfig)

// WithDirPath returns a ReadConfigOpt that sets the config directory path.
func WithDirPath(path string) ReadConfigOpt {
	return func(cfg *StaticConfig) {
		cfg.configDirPath = path
	}
}

// Read reads the toml file from the OS file system, applies drop-in configs from configDir (if provided),
// and returns the StaticConfig with any opts applied.
func Read(configPath string, configDir string, opts ...ReadConfigOpt) (*StaticConfig, error) {
	return ReadFs(afero.NewOsFs(), configPath, configDir, opts...)
}

// ReadFs is Read over an arbitrary file system.
// Loading order: defaults → main config file → drop-in files (lexically sorted)
func ReadFs(fs afero.Fs, configPath string, configDir string, opts ...ReadConfigOpt) (*StaticConfig, error) {
	cfg := Default()

	var dirPath string
	if configPath != "" {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path to config file: %w", err)
		}
		dirPath = filepath.Dir(absPath)

		klog.V(2).Infof("Loading main config from: %s", configPath)
		if err := mergeConfigFile(fs, cfg, configPath, append(opts, WithDirPath(dirPath))...); err != nil {
			return nil, fmt.Errorf("failed to load main config file %s: %w", configPath, err)
		}
	}

	if configDir != "" {
		if err := loadDropInConfigs(fs, cfg, configDir, append(opts, WithDirPath(dirPath))...); err != nil {
			return nil, fmt.Errorf("failed to load drop-in configs from %s: %w", configDir, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfigFile reads a config file and merges its values into the target config.
// Values present in the file will overwrite existing values in cfg.
// Values not present in the file will remain unchanged in cfg.
func mergeConfigFile(fs afero.Fs, cfg *StaticConfig, filePath string, opts ...ReadConfigOpt) error {
	configData, err := afero.ReadFile(fs, filePath)
	if err != nil {
		return err
	}

	if _, err = toml.NewDecoder(bytes.NewReader(configData)).Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode TOML: %w", err)
	}

	for _, opt := range opts {
		opt(cfg)
	}
	return nil
}

// loadDropInConfigs loads and merges config files from a drop-in directory.
// Files are processed in lexical (alphabetical) order.
// Only files with .toml extension are processed; dotfiles are ignored.
func loadDropInConfigs(fs afero.Fs, cfg *StaticConfig, dropInDir string, opts ...ReadConfigOpt) error {
	info, err := fs.Stat(dropInDir)
	if err != nil {
		if os.IsNotExist(err) {
			klog.V(2).Infof("Drop-in config directory does not exist, skipping: %s", dropInDir)
			return nil
		}
		return fmt.Errorf("failed to stat drop-in directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("drop-in config path is not a directory: %s", dropInDir)
	}

	files, err := getSortedConfigFiles(fs, dropInDir)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		klog.V(2).Infof("No drop-in config files found in: %s", dropInDir)
		return nil
	}

	klog.V(2).Infof("Loading %d drop-in config file(s) from: %s", len(files), dropInDir)

	for _, file := range files {
		klog.V(3).Infof("  - Merging drop-in config: %s", filepath.Base(file))
		if err := mergeConfigFile(fs, cfg, file, opts...); err != nil {
			return fmt.Errorf("failed to merge drop-in config %s: %w", file, err)
		}
	}

	return nil
}

// getSortedConfigFiles returns a sorted list of .toml files in the specified directory.
// Dotfiles (starting with '.') and non-.toml files are ignored.
func getSortedConfigFiles(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		if strings.HasPrefix(name, ".") {
			klog.V(4).Infof("Skipping dotfile: %s", name)
			continue
		}

		if !strings.HasSuffix(name, ".toml") {
			klog.V(4).Infof("Skipping non-.toml file: %s", name)
			continue
		}

		files = append(files, filepath.Join(dir, name))
	}

	sort.Strings(files)

	return files, nil
}

// ReadToml reads the toml data and returns the StaticConfig, with any opts applied
func ReadToml(configData []byte, opts ...ReadConfigOpt) (*StaticConfig, error) {
	config := Default()
	if _, err := toml.NewDecoder(bytes.NewReader(configData)).Decode(config); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
