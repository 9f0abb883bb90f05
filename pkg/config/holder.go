package config

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"k8s.io/klog/v2"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/cache"
)

// Holder keeps the live configuration and reloads it from disk when the
// configuration files change.
type Holder struct {
	current    atomic.Pointer[StaticConfig]
	fs         afero.Fs
	configPath string
	configDir  string
	// overrides are re-applied after every reload (e.g. explicitly set CLI flags)
	overrides func(*StaticConfig)

	mu    sync.Mutex
	close func() error
}

var _ cache.ConfigProvider = (*Holder)(nil)

type HolderOpt func(h *Holder)

// WithFs sets the file system used to re-read the configuration.
func WithFs(fs afero.Fs) HolderOpt {
	return func(h *Holder) {
		h.fs = fs
	}
}

// WithOverrides registers a function applied on top of every (re)loaded configuration.
func WithOverrides(overrides func(*StaticConfig)) HolderOpt {
	return func(h *Holder) {
		h.overrides = overrides
	}
}

// NewHolder creates a Holder serving cfg until the files at configPath / configDir change.
func NewHolder(cfg *StaticConfig, configPath, configDir string, opts ...HolderOpt) *Holder {
	h := &Holder{
		fs:         afero.NewOsFs(),
		configPath: configPath,
		configDir:  configDir,
	}
	for _, opt := range opts {
		opt(h)
	}
	if cfg == nil {
		cfg = Default()
	}
	h.current.Store(cfg)
	return h
}

// Get returns the current configuration. The returned value must be treated as read-only.
func (h *Holder) Get() *StaticConfig {
	return h.current.Load()
}

// Set replaces the current configuration.
func (h *Holder) Set(cfg *StaticConfig) {
	h.current.Store(cfg)
}

// CacheConfig implements cache.ConfigProvider.
func (h *Holder) CacheConfig() cache.Config {
	cfg := h.Get()
	return cache.Config{
		Enabled: cfg.EnableResponseCaching,
		TTL:     cfg.CacheTTL(),
	}
}

// Reload re-reads the configuration files and swaps the current configuration.
// On error, the previous configuration is kept.
func (h *Holder) Reload() (*StaticConfig, error) {
	cfg, err := ReadFs(h.fs, h.configPath, h.configDir)
	if err != nil {
		return nil, err
	}
	if h.overrides != nil {
		h.overrides(cfg)
	}
	h.current.Store(cfg)
	return cfg, nil
}

// Watch reloads the configuration whenever the main config file or the drop-in
// directory changes, then calls onReload with the new configuration.
// Calling Watch again replaces the previous watch.
func (h *Holder) Watch(onReload func(*StaticConfig)) error {
	if h.configPath == "" && h.configDir == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Editors usually replace files, watch the parent directory of the main file
	if h.configPath != "" {
		if absPath, absErr := filepath.Abs(h.configPath); absErr == nil {
			_ = watcher.Add(filepath.Dir(absPath))
		}
	}
	if h.configDir != "" {
		_ = watcher.Add(h.configDir)
	}
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !h.relevant(event) {
					continue
				}
				cfg, reloadErr := h.Reload()
				if reloadErr != nil {
					klog.Warningf("Failed to reload configuration after %s: %v", event, reloadErr)
					continue
				}
				klog.V(1).Infof("Configuration reloaded after %s", event)
				if onReload != nil {
					onReload(cfg)
				}
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				klog.V(2).Infof("Configuration watcher error: %v", watchErr)
			}
		}
	}()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.close != nil {
		_ = h.close()
	}
	h.close = watcher.Close
	return nil
}

func (h *Holder) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if h.configDir != "" && filepath.Dir(name) == filepath.Clean(h.configDir) {
		return filepath.Ext(name) == ".toml"
	}
	if h.configPath != "" {
		absPath, err := filepath.Abs(h.configPath)
		if err != nil {
			return false
		}
		absName, err := filepath.Abs(name)
		return err == nil && absName == absPath
	}
	return false
}

// Close stops watching the configuration files.
func (h *Holder) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.close == nil {
		return nil
	}
	err := h.close()
	h.close = nil
	return err
}
