package mcp

import (
	"slices"

	"k8s.io/utils/ptr"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/config"
)

// ToolFilter is a function that takes a ServerTool and returns a boolean indicating whether to include the tool
type ToolFilter func(tool api.ServerTool) bool

func CompositeFilter(filters ...ToolFilter) ToolFilter {
	return func(tool api.ServerTool) bool {
		for _, f := range filters {
			if !f(tool) {
				return false
			}
		}

		return true
	}
}

// ReadOnlyFilter excludes the tools that are not annotated with readOnlyHint=true when readOnly is set.
func ReadOnlyFilter(readOnly bool) ToolFilter {
	return func(tool api.ServerTool) bool {
		return !readOnly || ptr.Deref(tool.Tool.Annotations.ReadOnlyHint, false)
	}
}

// DestructiveFilter excludes the tools annotated with destructiveHint=true when disableDestructive is set.
func DestructiveFilter(disableDestructive bool) ToolFilter {
	return func(tool api.ServerTool) bool {
		return !disableDestructive || !ptr.Deref(tool.Tool.Annotations.DestructiveHint, false)
	}
}

// NameFilter applies the enabled_tools allow list and the disabled_tools deny list.
// A nil allow list allows every tool.
func NameFilter(enabled, disabled []string) ToolFilter {
	return func(tool api.ServerTool) bool {
		if enabled != nil && !slices.Contains(enabled, tool.Tool.Name) {
			return false
		}
		return !slices.Contains(disabled, tool.Tool.Name)
	}
}

// ConfigurationFilter combines the filters driven by the static configuration.
func ConfigurationFilter(cfg *config.StaticConfig) ToolFilter {
	return CompositeFilter(
		ReadOnlyFilter(cfg.ReadOnly),
		DestructiveFilter(cfg.DisableDestructive),
		NameFilter(cfg.EnabledTools, cfg.DisabledTools),
	)
}
