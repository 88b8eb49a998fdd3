package roster

import "github.com/ysy950803/chatroster/internal/model"

const (
	DefaultPageSize  = 10
	DefaultPageIndex = 1
)

type Query struct {
	Keyword   string `json:"keyword"`
	PageIndex int    `json:"pageIndex"`
	PageSize  int    `json:"pageSize"`
}

func DefaultQuery() Query {
	return Query{
		Keyword:   "",
		PageIndex: DefaultPageIndex,
		PageSize:  DefaultPageSize,
	}
}

// Bounds returns the half-open window [start, end) of the page, unclamped.
func (q Query) Bounds() (start, end int) {
	return (q.PageIndex - 1) * q.PageSize, q.PageIndex * q.PageSize
}

// Paginate slices list like a JS Array.slice: out-of-range windows yield
// whatever remains, possibly nothing.
func Paginate(list []*model.Contact, q Query) []*model.Contact {
	if q.PageSize <= 0 || q.PageIndex-1 > len(list)/q.PageSize {
		return []*model.Contact{}
	}
	start, end := q.Bounds()
	if start < 0 {
		start = 0
	}
	if end > len(list) {
		end = len(list)
	}
	if start >= end {
		return []*model.Contact{}
	}
	return list[start:end]
}
