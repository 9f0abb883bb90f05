package mcp

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"k8s.io/utils/ptr"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/config"
)

type ToolFilterSuite struct {
	suite.Suite
}

func tool(name string, readOnly, destructive bool) api.ServerTool {
	return api.ServerTool{Tool: api.Tool{Name: name, Annotations: api.ToolAnnotations{
		ReadOnlyHint:    ptr.To(readOnly),
		DestructiveHint: ptr.To(destructive),
	}}}
}

func (s *ToolFilterSuite) TestCompositeFilter() {
	s.Run("returns true if all filters return true", func() {
		filter := CompositeFilter(
			func(tool api.ServerTool) bool { return true },
			func(tool api.ServerTool) bool { return true },
		)
		s.True(filter(api.ServerTool{Tool: api.Tool{Name: "test"}}))
	})
	s.Run("returns false if any filter returns false", func() {
		filter := CompositeFilter(
			func(tool api.ServerTool) bool { return true },
			func(tool api.ServerTool) bool { return false },
		)
		s.False(filter(api.ServerTool{Tool: api.Tool{Name: "test"}}))
	})
	s.Run("returns true without filters", func() {
		s.True(CompositeFilter()(api.ServerTool{}))
	})
}

func (s *ToolFilterSuite) TestReadOnlyFilter() {
	s.Run("disabled allows every tool", func() {
		s.True(ReadOnlyFilter(false)(tool("workbench_stop", false, true)))
	})
	s.Run("enabled allows read-only tools", func() {
		s.True(ReadOnlyFilter(true)(tool("projects_list", true, false)))
	})
	s.Run("enabled rejects write tools", func() {
		s.False(ReadOnlyFilter(true)(tool("workbench_start", false, false)))
	})
	s.Run("enabled rejects tools without annotation", func() {
		s.False(ReadOnlyFilter(true)(api.ServerTool{Tool: api.Tool{Name: "unannotated"}}))
	})
}

func (s *ToolFilterSuite) TestDestructiveFilter() {
	s.Run("disabled allows destructive tools", func() {
		s.True(DestructiveFilter(false)(tool("workbench_stop", false, true)))
	})
	s.Run("enabled rejects destructive tools", func() {
		s.False(DestructiveFilter(true)(tool("workbench_stop", false, true)))
	})
	s.Run("enabled allows non-destructive write tools", func() {
		s.True(DestructiveFilter(true)(tool("workbench_start", false, false)))
	})
}

func (s *ToolFilterSuite) TestNameFilter() {
	s.Run("nil lists allow every tool", func() {
		s.True(NameFilter(nil, nil)(tool("projects_list", true, false)))
	})
	s.Run("enabled list restricts tools", func() {
		filter := NameFilter([]string{"projects_list"}, nil)
		s.True(filter(tool("projects_list", true, false)))
		s.False(filter(tool("workbenches_list", true, false)))
	})
	s.Run("disabled list wins over enabled list", func() {
		filter := NameFilter([]string{"projects_list"}, []string{"projects_list"})
		s.False(filter(tool("projects_list", true, false)))
	})
}

func (s *ToolFilterSuite) TestConfigurationFilter() {
	cfg := config.Default()
	cfg.ReadOnly = true
	cfg.DisabledTools = []string{"cache_stats"}
	filter := ConfigurationFilter(cfg)
	s.True(filter(tool("projects_list", true, false)))
	s.False(filter(tool("cache_stats", true, false)))
	s.False(filter(tool("cache_clear", false, true)))
}

func TestToolFilter(t *testing.T) {
	suite.Run(t, new(ToolFilterSuite))
}
