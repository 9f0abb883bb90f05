package main

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/toolsets"

	_ "github.com/opendatahub-io/rhoai-mcp-server/pkg/toolsets/cache"
	_ "github.com/opendatahub-io/rhoai-mcp-server/pkg/toolsets/openshift-ai"
)

func main() {
	// Snyk reports false positive unless we flow the args through filepath.Clean and filepath.Localize in this specific order
	var err error
	localReadmePath := filepath.Clean(os.Args[1])
	localReadmePath, err = filepath.Localize(localReadmePath)
	if err != nil {
		panic(err)
	}
	readme, err := os.ReadFile(localReadmePath)
	if err != nil {
		panic(err)
	}
	toolsetsList := toolsets.Toolsets()
	updated := replaceBetweenMarkers(
		string(readme),
		"<!-- AVAILABLE-TOOLSETS-START -->",
		"<!-- AVAILABLE-TOOLSETS-END -->",
		toolsetsTable(toolsetsList),
	)
	updated = replaceBetweenMarkers(
		updated,
		"<!-- AVAILABLE-TOOLSETS-TOOLS-START -->",
		"<!-- AVAILABLE-TOOLSETS-TOOLS-END -->",
		toolsetsTools(toolsetsList),
	)

	if err := os.WriteFile(localReadmePath, []byte(updated), 0o644); err != nil {
		panic(err)
	}
}

func toolsetsTable(toolsetsList []api.Toolset) string {
	maxNameLen, maxDescLen := len("Toolset"), len("Description")
	for _, toolset := range toolsetsList {
		maxNameLen = max(maxNameLen, len(toolset.GetName()))
		maxDescLen = max(maxDescLen, len(toolset.GetDescription()))
	}
	availableToolsets := strings.Builder{}
	availableToolsets.WriteString(fmt.Sprintf("| %-*s | %-*s |\n", maxNameLen, "Toolset", maxDescLen, "Description"))
	availableToolsets.WriteString(fmt.Sprintf("|-%s-|-%s-|\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxDescLen)))
	for _, toolset := range toolsetsList {
		availableToolsets.WriteString(fmt.Sprintf("| %-*s | %-*s |\n", maxNameLen, toolset.GetName(), maxDescLen, toolset.GetDescription()))
	}
	return availableToolsets.String()
}

func toolsetsTools(toolsetsList []api.Toolset) string {
	toolsetTools := strings.Builder{}
	for _, toolset := range toolsetsList {
		toolsetTools.WriteString("<details>\n\n<summary>" + toolset.GetName() + "</summary>\n\n")
		for _, tool := range toolset.GetTools() {
			toolsetTools.WriteString(fmt.Sprintf("- **%s**%s - %s\n", tool.Tool.Name, hints(tool.Tool.Annotations), tool.Tool.Description))
			if tool.Tool.InputSchema == nil {
				toolsetTools.WriteString("\n")
				continue
			}
			for _, propName := range slices.Sorted(maps.Keys(tool.Tool.InputSchema.Properties)) {
				property := tool.Tool.InputSchema.Properties[propName]
				toolsetTools.WriteString(fmt.Sprintf("  - `%s` (`%s`)", propName, property.Type))
				if slices.Contains(tool.Tool.InputSchema.Required, propName) {
					toolsetTools.WriteString(" **(required)**")
				}
				toolsetTools.WriteString(fmt.Sprintf(" - %s\n", property.Description))
			}
			toolsetTools.WriteString("\n")
		}
		toolsetTools.WriteString("</details>\n\n")
	}
	return toolsetTools.String()
}

func hints(annotations api.ToolAnnotations) string {
	switch {
	case annotations.ReadOnlyHint != nil && *annotations.ReadOnlyHint:
		return ""
	case annotations.DestructiveHint != nil && *annotations.DestructiveHint:
		return " _(destructive)_"
	default:
		return " _(write)_"
	}
}

func replaceBetweenMarkers(content, startMarker, endMarker, replacement string) string {
	startIdx := strings.Index(content, startMarker)
	if startIdx == -1 {
		return content
	}
	endIdx := strings.Index(content, endMarker)
	if endIdx == -1 || endIdx <= startIdx {
		return content
	}
	return content[:startIdx+len(startMarker)] + "\n\n" + replacement + "\n" + content[endIdx:]
}
