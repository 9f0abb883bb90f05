package response

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
	"k8s.io/utils/ptr"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/output"
)

type project struct {
	Name string
}

func (p project) TableHeader() []string {
	return []string{"NAME"}
}

func (p project) TableCells() []any {
	return []any{p.Name}
}

type ResponseSuite struct {
	suite.Suite
}

func (s *ResponseSuite) TestParseVerbosity() {
	s.Equal(Minimal, ParseVerbosity("minimal"))
	s.Equal(Full, ParseVerbosity(" FULL "))
	s.Equal(Standard, ParseVerbosity("standard"))
	s.Equal(Standard, ParseVerbosity(""))
	s.Equal(Standard, ParseVerbosity("verbose"))
}

func (s *ResponseSuite) TestPaginate() {
	items := []int{0, 1, 2, 3, 4}
	s.Run("nil limit returns all items", func() {
		page, total := Paginate(items, 0, nil)
		s.Equal(items, page)
		s.Equal(5, total)
	})
	s.Run("limit restricts page size", func() {
		page, _ := Paginate(items, 1, ptr.To(2))
		s.Equal([]int{1, 2}, page)
	})
	s.Run("limit beyond the end returns remaining items", func() {
		page, _ := Paginate(items, 3, ptr.To(10))
		s.Equal([]int{3, 4}, page)
	})
	s.Run("uncapped limit returns remaining items", func() {
		page, total := Paginate(items, 1, ptr.To(math.MaxInt))
		s.Equal([]int{1, 2, 3, 4}, page)
		s.Equal(5, total)
	})
	s.Run("negative offset is treated as zero", func() {
		page, _ := Paginate(items, -3, ptr.To(1))
		s.Equal([]int{0}, page)
	})
	s.Run("offset beyond total returns empty page", func() {
		page, total := Paginate(items, 10, nil)
		s.Empty(page)
		s.NotNil(page)
		s.Equal(5, total)
	})
}

func (s *ResponseSuite) TestNewPaginatedResponse() {
	items := []project{{"a"}, {"b"}, {"c"}}
	s.Run("first page has more", func() {
		r := NewPaginatedResponse(items, 0, ptr.To(2))
		s.Len(r.Items, 2)
		s.Equal(3, r.Total)
		s.True(r.HasMore)
		s.Require().NotNil(r.NextOffset)
		s.Equal(2, *r.NextOffset)
	})
	s.Run("last page has no more", func() {
		r := NewPaginatedResponse(items, 2, ptr.To(2))
		s.Len(r.Items, 1)
		s.False(r.HasMore)
		s.Nil(r.NextOffset)
	})
	s.Run("uncapped limit returns the rest", func() {
		r := NewPaginatedResponse(items, 1, ptr.To(math.MaxInt))
		s.Len(r.Items, 2)
		s.False(r.HasMore)
	})
	s.Run("prints as table", func() {
		out, err := output.Table.Print(NewPaginatedResponse(items, 0, nil))
		s.Require().NoError(err)
		s.Contains(out, "NAME")
		s.Contains(out, "b")
	})
}

func TestResponse(t *testing.T) {
	suite.Run(t, new(ResponseSuite))
}
