package db

import (
	"time"

	"gorm.io/gorm"
)

// Paginate applies LIMIT/OFFSET for a 1-based page. A non-positive page size disables it.
func Paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if pageSize <= 0 {
			return tx
		}
		if page < 1 {
			page = 1
		}
		return tx.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// CreatedBetween filters on created_at; zero bounds are ignored.
func CreatedBetween(column string, from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if !from.IsZero() {
			tx = tx.Where(column+" >= ?", from)
		}
		if !to.IsZero() {
			tx = tx.Where(column+" < ?", to)
		}
		return tx
	}
}
