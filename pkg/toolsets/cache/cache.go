package cache

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"k8s.io/utils/ptr"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
)

func initCache() []api.ServerTool {
	return []api.ServerTool{
		{Tool: api.Tool{
			Name:        "cache_stats",
			Description: "Get the statistics of the response cache: total, expired and active entries, whether caching is enabled and the TTL in seconds",
			InputSchema: &jsonschema.Schema{
				Type: "object",
			},
			Annotations: api.ToolAnnotations{
				Title:           "Cache: Stats",
				ReadOnlyHint:    ptr.To(true),
				DestructiveHint: ptr.To(false),
				IdempotentHint:  ptr.To(true),
				OpenWorldHint:   ptr.To(false),
			},
		}, Handler: cacheStats},
		{Tool: api.Tool{
			Name:        "cache_clear",
			Description: "Clear the response cache so that subsequent calls read fresh data from the cluster",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"expired_only": {
						Type:        "boolean",
						Description: "Only remove the entries that are already expired (Optional, default false)",
					},
				},
			},
			Annotations: api.ToolAnnotations{
				Title:           "Cache: Clear",
				ReadOnlyHint:    ptr.To(false),
				DestructiveHint: ptr.To(false),
				IdempotentHint:  ptr.To(true),
				OpenWorldHint:   ptr.To(false),
			},
		}, Handler: cacheClear},
		{Tool: api.Tool{
			Name:        "cache_invalidate",
			Description: "Remove the response cache entries whose key contains the provided pattern (e.g. 'workbenches')",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"pattern": {
						Type:        "string",
						Description: "Substring matched against the cache keys, keys start with the operation name (e.g. 'workbenches', 'projects', 'training_jobs')",
					},
				},
				Required: []string{"pattern"},
			},
			Annotations: api.ToolAnnotations{
				Title:           "Cache: Invalidate",
				ReadOnlyHint:    ptr.To(false),
				DestructiveHint: ptr.To(false),
				IdempotentHint:  ptr.To(true),
				OpenWorldHint:   ptr.To(false),
			},
		}, Handler: cacheInvalidate},
	}
}

func cacheStats(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	return api.NewToolCallResultStructured(params.Cache.Stats(), nil), nil
}

type clearResult struct {
	Cleared int    `json:"cleared"`
	Message string `json:"message"`
}

func cacheClear(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	if api.OptionalBool(params, "expired_only", false) {
		cleared := params.Cache.ClearExpired()
		return api.NewToolCallResultStructured(clearResult{
			Cleared: cleared,
			Message: fmt.Sprintf("Cleared %d expired cache entries", cleared),
		}, nil), nil
	}
	cleared := params.Cache.Clear()
	return api.NewToolCallResultStructured(clearResult{
		Cleared: cleared,
		Message: fmt.Sprintf("Cleared %d cache entries", cleared),
	}, nil), nil
}

func cacheInvalidate(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	pattern, err := api.RequiredString(params, "pattern")
	if err != nil {
		return api.NewToolCallResult("", err), nil
	}
	if pattern == "" {
		return api.NewToolCallResult("", fmt.Errorf("pattern must not be empty, use cache_clear to remove every entry")), nil
	}
	cleared := params.Cache.Invalidate(pattern)
	return api.NewToolCallResultStructured(clearResult{
		Cleared: cleared,
		Message: fmt.Sprintf("Invalidated %d cache entries matching '%s'", cleared, pattern),
	}, nil), nil
}
