package listing

import "gorm.io/gorm"

// Offset is a page/page-size window for the admin tables.
type Offset struct {
	Page     int
	PageSize int
}

func NewOffset(page, pageSize int) Offset {
	if page < 1 {
		page = 1
	}
	return Offset{Page: page, PageSize: NormalizeLimit(pageSize)}
}

func (o Offset) Scope() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((o.Page - 1) * o.PageSize).Limit(o.PageSize)
	}
}

// Result is an offset page with the total row count of the filtered set.
type Result[T any] struct {
	Items []T
	Total int64
	Offset
}
