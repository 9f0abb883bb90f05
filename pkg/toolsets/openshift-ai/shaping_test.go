package openshiftai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/api"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/config"
	openshiftai "github.com/opendatahub-io/rhoai-mcp-server/pkg/openshift-ai"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/output"
	"github.com/opendatahub-io/rhoai-mcp-server/pkg/response"
)

type arguments map[string]any

func (a arguments) GetArguments() map[string]any { return a }

type ShapingSuite struct {
	suite.Suite
	cfg *config.StaticConfig
}

func (s *ShapingSuite) SetupTest() {
	s.cfg = config.Default()
}

func (s *ShapingSuite) params(args arguments) api.ToolHandlerParams {
	return api.ToolHandlerParams{
		Context:         context.Background(),
		ResponseConfig:  s.cfg,
		ToolCallRequest: args,
		ListOutput:      output.Json,
	}
}

func workbenches(names ...string) []openshiftai.Workbench {
	ret := make([]openshiftai.Workbench, 0, len(names))
	for _, name := range names {
		ret = append(ret, openshiftai.Workbench{Name: name, Namespace: "fraud-detection", Status: openshiftai.WorkbenchRunning})
	}
	return ret
}

func (s *ShapingSuite) TestParseListArgs() {
	s.Run("defaults", func() {
		args, err := parseListArgs(s.params(arguments{}))
		s.Require().NoError(err)
		s.Equal(0, args.offset)
		s.Nil(args.limit, "no default limit is configured")
		s.Equal(response.Standard, args.verbosity)
	})
	s.Run("limit is capped by the configured maximum", func() {
		args, err := parseListArgs(s.params(arguments{"limit": float64(500)}))
		s.Require().NoError(err)
		s.Require().NotNil(args.limit)
		s.Equal(100, *args.limit)
	})
	s.Run("default limit applies when no limit is requested", func() {
		s.cfg.DefaultListLimit = 20
		args, err := parseListArgs(s.params(arguments{}))
		s.Require().NoError(err)
		s.Require().NotNil(args.limit)
		s.Equal(20, *args.limit)
	})
	s.Run("negative offset starts at the first item", func() {
		args, err := parseListArgs(s.params(arguments{"offset": float64(-3)}))
		s.Require().NoError(err)
		s.Equal(0, args.offset)
	})
	s.Run("verbosity is case insensitive", func() {
		args, err := parseListArgs(s.params(arguments{"verbosity": "MINIMAL"}))
		s.Require().NoError(err)
		s.Equal(response.Minimal, args.verbosity)
	})
	s.Run("configured default verbosity", func() {
		s.cfg.DefaultVerbosity = "full"
		args, err := parseListArgs(s.params(arguments{}))
		s.Require().NoError(err)
		s.Equal(response.Full, args.verbosity)
	})
	s.Run("negative limit fails", func() {
		_, err := parseListArgs(s.params(arguments{"limit": float64(-1)}))
		s.EqualError(err, "limit must not be negative")
	})
	s.Run("non integer limit fails", func() {
		_, err := parseListArgs(s.params(arguments{"limit": "ten"}))
		s.ErrorContains(err, "limit parameter must be an integer")
	})
}

func (s *ShapingSuite) TestShapeList() {
	items := workbenches("jupyter", "vscode", "rstudio")
	s.Run("paginates and reports the next offset", func() {
		limit := 1
		page, err := shapeList(items, &listArgs{offset: 1, limit: &limit, verbosity: response.Standard})
		s.Require().NoError(err)
		s.Equal(3, page.Total)
		s.Equal(1, page.Offset)
		s.True(page.HasMore)
		s.Require().NotNil(page.NextOffset)
		s.Equal(2, *page.NextOffset)
		s.Require().Len(page.Items, 1)
		s.Equal("vscode", page.Items[0].(openshiftai.Workbench).Name)
	})
	s.Run("last page has no next offset", func() {
		page, err := shapeList(items, &listArgs{offset: 2, verbosity: response.Standard})
		s.Require().NoError(err)
		s.False(page.HasMore)
		s.Nil(page.NextOffset)
		s.Len(page.Items, 1)
	})
	s.Run("offset past the end returns an empty page", func() {
		page, err := shapeList(items, &listArgs{offset: 10, verbosity: response.Standard})
		s.Require().NoError(err)
		s.Empty(page.Items)
		s.Equal(3, page.Total)
		s.False(page.HasMore)
	})
	s.Run("minimal verbosity returns summaries", func() {
		page, err := shapeList(items, &listArgs{verbosity: response.Minimal})
		s.Require().NoError(err)
		s.Require().Len(page.Items, 3)
		s.Equal(openshiftai.Summary{Name: "jupyter", Namespace: "fraud-detection", Status: "Running"}, page.Items[0])
	})
}

func (s *ShapingSuite) TestFullViewWithoutObject() {
	view, err := shape(workbenches("jupyter")[0], response.Full)
	s.Require().NoError(err)
	full, ok := view.(map[string]any)
	s.Require().True(ok, "expected a map, got %T", view)
	s.Equal("jupyter", full["name"])
	s.NotContains(full, "raw")
}

func (s *ShapingSuite) TestRender() {
	s.Run("uses the configured output", func() {
		result := render(s.params(arguments{}), map[string]any{"name": "churn"})
		s.Require().NoError(result.Error)
		s.JSONEq(`{"name":"churn"}`, result.Content)
	})
	s.Run("defaults to yaml", func() {
		params := s.params(arguments{})
		params.ListOutput = nil
		result := render(params, map[string]any{"name": "churn"})
		s.Require().NoError(result.Error)
		s.Equal("name: churn\n", result.Content)
	})
}

func TestShaping(t *testing.T) {
	suite.Run(t, new(ShapingSuite))
}
