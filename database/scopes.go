package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope is a composable post-query predicate. Feed queries are assembled by
// stacking scopes onto a single base query instead of chaining conditions at
// every call site.
type Scope = func(*gorm.DB) *gorm.DB

// PubliclyVisible keeps only posts an anonymous reader may see at the given
// instant: published, in a published category, pub date not in the future.
// The instant is injected by the caller so the same request evaluates one
// consistent "now".
func PubliclyVisible(now time.Time) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ?", true).
			Where("categories.is_published = ?", true).
			Where("posts.pub_date <= ?", now)
	}
}

// InCategory keeps posts belonging to the given category.
func InCategory(categoryID uuid.UUID) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.category_id = ?", categoryID)
	}
}

// ByAuthor keeps posts written by the given user.
func ByAuthor(authorID uuid.UUID) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ?", authorID)
	}
}

// OrderNewestFirst orders posts by pub date descending.
func OrderNewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("posts.pub_date DESC")
}

// Paginate bounds the query to one page. Pages are 1-based; anything lower is
// treated as the first page.
func Paginate(page, size int) Scope {
	if page < 1 {
		page = 1
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * size).Limit(size)
	}
}
