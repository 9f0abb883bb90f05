package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"
)

type HolderSuite struct {
	BaseConfigSuite
}

func (s *HolderSuite) TestCacheConfig() {
	cfg := Default()
	cfg.EnableResponseCaching = true
	cfg.CacheTTLSeconds = 1.5
	holder := NewHolder(cfg, "", "")
	s.Run("reflects current configuration", func() {
		cacheConfig := holder.CacheConfig()
		s.True(cacheConfig.Enabled)
		s.Equal(1500*time.Millisecond, cacheConfig.TTL)
	})
	s.Run("reflects replaced configuration", func() {
		updated := Default()
		holder.Set(updated)
		s.False(holder.CacheConfig().Enabled)
		s.Same(updated, holder.Get())
	})
}

func (s *HolderSuite) TestNilConfigUsesDefaults() {
	holder := NewHolder(nil, "", "")
	s.Equal(30*time.Second, holder.CacheConfig().TTL)
}

func (s *HolderSuite) TestReload() {
	memFs := afero.NewMemMapFs()
	s.Require().NoError(afero.WriteFile(memFs, "/config.toml", []byte(`enable_response_caching = false`), 0644))
	initial, err := ReadFs(memFs, "/config.toml", "")
	s.Require().NoError(err)
	holder := NewHolder(initial, "/config.toml", "", WithFs(memFs), WithOverrides(func(cfg *StaticConfig) {
		cfg.Port = "8080"
	}))

	s.Require().NoError(afero.WriteFile(memFs, "/config.toml", []byte(`
		enable_response_caching = true
		cache_ttl_seconds = 5.0
	`), 0644))
	reloaded, err := holder.Reload()
	s.Require().NoError(err)
	s.Run("swaps the current configuration", func() {
		s.Same(reloaded, holder.Get())
		s.True(holder.CacheConfig().Enabled)
		s.Equal(5*time.Second, holder.CacheConfig().TTL)
	})
	s.Run("re-applies overrides", func() {
		s.Equal("8080", holder.Get().Port)
	})
	s.Run("keeps previous configuration on error", func() {
		s.Require().NoError(afero.WriteFile(memFs, "/config.toml", []byte(`enable_response_caching = "`), 0644))
		_, err := holder.Reload()
		s.Error(err)
		s.Same(reloaded, holder.Get())
	})
}

func (s *HolderSuite) TestWatch() {
	path := s.writeConfig(`enable_response_caching = false`)
	initial, err := Read(path, "")
	s.Require().NoError(err)
	holder := NewHolder(initial, path, "")
	s.T().Cleanup(func() { _ = holder.Close() })

	reloaded := make(chan *StaticConfig, 10)
	s.Require().NoError(holder.Watch(func(cfg *StaticConfig) {
		reloaded <- cfg
	}))
	s.Require().NoError(os.WriteFile(path, []byte(`enable_response_caching = true`), 0644))

	s.Run("enables caching without restart", func() {
		s.Eventually(func() bool {
			return holder.CacheConfig().Enabled
		}, 5*time.Second, 50*time.Millisecond)
	})
	s.Run("notifies listener", func() {
		select {
		case cfg := <-reloaded:
			s.NotNil(cfg)
		case <-time.After(5 * time.Second):
			s.Fail("expected reload notification")
		}
	})
}

func (s *HolderSuite) TestWatchWithoutFiles() {
	holder := NewHolder(Default(), "", "")
	s.NoError(holder.Watch(nil))
	s.NoError(holder.Close())
}

func TestHolder(t *testing.T) {
	suite.Run(t, new(HolderSuite))
}
