package controllers

const (
	DefaultPageSize    = 25
	DefaultMaxPageSize = 100
)

// Paging bounds the page size of HTTP request listings. Services list without a limit
// unless they are given one.
type Paging struct {
	PageSize    int
	MaxPageSize int
}

func (p Paging) withDefaults() Paging {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.MaxPageSize < p.PageSize {
		p.MaxPageSize = max(p.PageSize, DefaultMaxPageSize)
	}
	return p
}

// bound fills in the page size when limit is missing and caps it at the maximum.
func (p Paging) bound(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = p.PageSize
	case limit > p.MaxPageSize:
		limit = p.MaxPageSize
	}
	return limit, max(offset, 0)
}
