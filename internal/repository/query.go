package repository

import (
	"strings"

	"gorm.io/gorm"
)

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// paginate applies ordering and paging. sortable maps accepted sort keys to columns;
// unknown keys fall back to defaultOrder.
func (q *ListQuery) paginate(db *gorm.DB, sortable map[string]string, defaultOrder string) *gorm.DB {
	if column, ok := sortable[q.SortBy]; ok {
		order := column + " ASC"
		if strings.ToLower(q.SortDir) == "desc" {
			order = column + " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order(defaultOrder)
	}

	if q.PerPage > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		db = db.Offset((page - 1) * q.PerPage).Limit(q.PerPage)
	}
	return db
}
