// Package option provides composable query modifiers for gorm statements.
package option

import (
	"github.com/heysheet/heysheet/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type optionFunc func(*gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// ApplyPagination applies a cursor page to the statement. One extra row is
// fetched so callers can detect whether more pages exist.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		size := page.PageSize
		if size <= 0 {
			size = 50
		}
		if page.PageToken != "" {
			if cursor, err := pagination.DecodeCursor(page.PageToken); err == nil && cursor != nil {
				if cursor.CreatedAt != "" && cursor.ID != "" {
					db = db.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
				}
			}
		}
		return db.Limit(size + 1)
	})
}

// WithOrder appends an ORDER BY clause.
func WithOrder(order string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	})
}
