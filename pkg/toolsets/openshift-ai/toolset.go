package openshiftai

import (
	"slices"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/toolsets"
)

const (
	ToolsetName        = "rhoai"
	ToolsetDescription = "Red Hat OpenShift AI tools for data science projects, workbenches, training, pipelines, storage, connections and model serving"
)

type Toolset struct{}

var _ api.Toolset = (*Toolset)(nil)

func (t *Toolset) GetName() string {
	return ToolsetName
}

func (t *Toolset) GetDescription() string {
	return ToolsetDescription
}

func (t *Toolset) GetTools() []api.ServerTool {
	return slices.Concat(
		initProjects(),
		initWorkbenches(),
		initTraining(),
		initPipelines(),
		initStorage(),
		initInference(),
	)
}

func init() {
	toolsets.Register(&Toolset{})
}
