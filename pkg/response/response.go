// Package response shapes tool responses: verbosity levels and pagination of list results.
package response

import (
	"strings"

	"github.com/opendatahub-io/rhoai-mcp-server/pkg/output"
)

// Verbosity controls how much detail a tool response carries.
type Verbosity string

const (
	// Minimal returns names and status only.
	Minimal Verbosity = "minimal"
	// Standard returns the commonly useful fields.
	Standard Verbosity = "standard"
	// Full returns everything, including the raw resource.
	Full Verbosity = "full"
)

// Verbosities lists the accepted values, used for input schemas.
var Verbosities = []any{string(Minimal), string(Standard), string(Full)}

// ParseVerbosity parses a verbosity case-insensitively, unknown values resolve to Standard.
func ParseVerbosity(value string) Verbosity {
	switch Verbosity(strings.ToLower(strings.TrimSpace(value))) {
	case Minimal:
		return Minimal
	case Full:
		return Full
	default:
		return Standard
	}
}

// Paginate returns the page of items starting at offset with at most limit items, and the total.
// A negative offset is treated as 0, a nil limit returns every remaining item.
func Paginate[T any](items []T, offset int, limit *int) ([]T, int) {
	total := len(items)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []T{}, total
	}
	end := total
	if limit != nil && *limit >= 0 && *limit < total-offset {
		end = offset + *limit
	}
	return items[offset:end], total
}

// PaginatedResponse is the envelope returned by list tools.
type PaginatedResponse[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Offset     int  `json:"offset"`
	Limit      *int `json:"limit,omitempty"`
	HasMore    bool `json:"has_more"`
	NextOffset *int `json:"next_offset,omitempty"`
}

// NewPaginatedResponse paginates items and fills in the navigation fields.
func NewPaginatedResponse[T any](items []T, offset int, limit *int) *PaginatedResponse[T] {
	if offset < 0 {
		offset = 0
	}
	page, total := Paginate(items, offset, limit)
	ret := &PaginatedResponse[T]{
		Items:  page,
		Total:  total,
		Offset: offset,
		Limit:  limit,
	}
	if next := offset + len(page); next < total {
		ret.HasMore = true
		ret.NextOffset = &next
	}
	return ret
}

// Row is implemented by list items that can be printed as a table row.
type Row interface {
	TableHeader() []string
	TableCells() []any
}

var _ output.Tabular = (*PaginatedResponse[Row])(nil)

// TableColumns implements output.Tabular when T implements Row.
func (r *PaginatedResponse[T]) TableColumns() []string {
	if len(r.Items) > 0 {
		if row, ok := any(r.Items[0]).(Row); ok {
			return row.TableHeader()
		}
		return []string{"ITEM"}
	}
	var zero T
	if row, ok := any(zero).(Row); ok {
		return row.TableHeader()
	}
	return []string{"ITEM"}
}

// TableRows implements output.Tabular when T implements Row.
func (r *PaginatedResponse[T]) TableRows() [][]any {
	rows := make([][]any, 0, len(r.Items))
	for _, item := range r.Items {
		if row, ok := any(item).(Row); ok {
			rows = append(rows, row.TableCells())
		} else {
			rows = append(rows, []any{item})
		}
	}
	return rows
}
