package api

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"k8s.io/utils/ptr"
)

type ToolsetsSuite struct {
	suite.Suite
}

func (s *ToolsetsSuite) TestNewToolCallResult() {
	s.Run("sets content and nil error", func() {
		result := NewToolCallResult("output text", nil)
		s.Equal("output text", result.Content)
		s.Nil(result.Error)
		s.Nil(result.StructuredContent)
	})
	s.Run("sets content and error", func() {
		err := errors.New("something failed")
		result := NewToolCallResult("partial output", err)
		s.Equal("partial output", result.Content)
		s.Equal(err, result.Error)
		s.Nil(result.StructuredContent)
	})
	s.Run("leaves StructuredContent nil", func() {
		result := NewToolCallResult("text", nil)
		s.Nil(result.StructuredContent)
	})
}

func (s *ToolsetsSuite) TestNewToolCallResultStructured() {
	s.Run("serializes structured content into content", func() {
		structured := map[string]any{"projects": []string{"fraud-detection"}}
		result := NewToolCallResultStructured(structured, nil)
		s.JSONEq(`{"projects":["fraud-detection"]}`, result.Content)
		s.Nil(result.Error)
		s.Equal(structured, result.StructuredContent)
	})
	s.Run("allows nil structured content", func() {
		result := NewToolCallResultStructured(nil, nil)
		s.Empty(result.Content)
		s.Nil(result.StructuredContent)
	})
	s.Run("sets error alongside structured content", func() {
		err := errors.New("partial failure")
		result := NewToolCallResultStructured(map[string]any{"key": "value"}, err)
		s.Equal(err, result.Error)
	})
}

func (s *ToolsetsSuite) TestToolAnnotations() {
	s.Run("unset hints are omitted from JSON", func() {
		b, err := json.Marshal(Tool{Name: "projects_list"})
		s.Require().NoError(err)
		s.NotContains(string(b), "readOnlyHint")
	})
	s.Run("set hints are included in JSON", func() {
		b, err := json.Marshal(Tool{Name: "projects_list", Annotations: ToolAnnotations{ReadOnlyHint: ptr.To(true)}})
		s.Require().NoError(err)
		s.Contains(string(b), `"readOnlyHint":true`)
	})
}

func (s *ToolsetsSuite) TestToRawMessage() {
	s.Run("nil returns nil", func() {
		s.Nil(ToRawMessage(nil))
	})
	s.Run("marshals value", func() {
		s.JSONEq(`{"a":1}`, string(ToRawMessage(map[string]int{"a": 1})))
	})
}

func TestToolsets(t *testing.T) {
	suite.Run(t, new(ToolsetsSuite))
}
