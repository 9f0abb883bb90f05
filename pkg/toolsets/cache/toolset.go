package cache

import (
	"slices"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/toolsets"
)

type Toolset struct{}

var _ api.Toolset = (*Toolset)(nil)

func (t *Toolset) GetName() string {
	return "cache"
}

func (t *Toolset) GetDescription() string {
	return "Inspect and manage the response cache of the server"
}

func (t *Toolset) GetTools() []api.ServerTool {
	return slices.Concat(
		initCache(),
	)
}

func init() {
	toolsets.Register(&Toolset{})
}
