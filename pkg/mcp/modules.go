package mcp

import (
	_ "github.com/opendatahub-io/rhoai-mcp-server/pkg/toolsets/cache"
	_ "github.com/opendatahub-io/rhoai-mcp-server/pkg/toolsets/openshift-ai"
)
