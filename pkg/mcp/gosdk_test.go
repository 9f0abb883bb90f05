package mcp

import (
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/suite"
)

type GoSdkSuite struct {
	suite.Suite
}

func (s *GoSdkSuite) TestGoSdkToolCallParamsToToolCallRequest() {
	s.Run("decodes arguments", func() {
		req, err := GoSdkToolCallParamsToToolCallRequest(&mcp.CallToolParamsRaw{
			Name:      "workbenches_list",
			Arguments: json.RawMessage(`{"namespace":"fraud-detection","limit":5}`),
		})
		s.Require().NoError(err)
		s.Equal("workbenches_list", req.Name)
		s.Equal("fraud-detection", req.GetArguments()["namespace"])
		s.Equal(float64(5), req.GetArguments()["limit"])
	})
	s.Run("missing arguments decode to an empty map", func() {
		req, err := GoSdkToolCallParamsToToolCallRequest(&mcp.CallToolParamsRaw{Name: "cache_stats"})
		s.Require().NoError(err)
		s.NotNil(req.GetArguments())
		s.Empty(req.GetArguments())
	})
	s.Run("invalid arguments fail", func() {
		_, err := GoSdkToolCallParamsToToolCallRequest(&mcp.CallToolParamsRaw{
			Name:      "cache_stats",
			Arguments: json.RawMessage(`[1, 2]`),
		})
		s.ErrorContains(err, "failed to unmarshal tool call arguments")
	})
	s.Run("nil request fails", func() {
		_, err := GoSdkToolCallRequestToToolCallRequest(nil)
		s.Error(err)
	})
}

func TestGoSdk(t *testing.T) {
	suite.Run(t, new(GoSdkSuite))
}
