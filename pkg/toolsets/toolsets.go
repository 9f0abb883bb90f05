package toolsets

import (
	"fmt"
	"slices"
	"strings"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
)

var toolsets []api.Toolset

// Clear removes all registered toolsets, TESTING PURPOSES ONLY.
func Clear() {
	toolsets = []api.Toolset{}
}

func Register(toolset api.Toolset) {
	toolsets = append(toolsets, toolset)
}

func Toolsets() []api.Toolset {
	return toolsets
}

func ToolsetNames() []string {
	names := make([]string, 0)
	for _, toolset := range Toolsets() {
		names = append(names, toolset.GetName())
	}
	slices.Sort(names)
	return names
}

func ToolsetFromString(name string) api.Toolset {
	for _, toolset := range Toolsets() {
		if toolset.GetName() == name {
			return toolset
		}
	}
	return nil
}

// Validate checks that every name in toolsetNames is a registered toolset.
func Validate(toolsetNames []string) error {
	for _, name := range toolsetNames {
		if ToolsetFromString(name) == nil {
			return fmt.Errorf("invalid toolset name: %s, valid names are: %s", name, strings.Join(ToolsetNames(), ", "))
		}
	}
	return nil
}
