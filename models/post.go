package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a blog entry. Public visibility requires IsPublished, a published
// category and a pub date in the past; the author always sees their own posts.
type Post struct {
	ID          uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title       string     `json:"title" db:"title" gorm:"type:text;not null"`
	Text        string     `json:"text" db:"text" gorm:"type:text;not null"`
	AuthorID    uuid.UUID  `json:"authorId" db:"author_id" gorm:"type:uuid;not null;index:idx_posts_author_id"`
	Author      *User      `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:ID"`
	CategoryID  uuid.UUID  `json:"categoryId" db:"category_id" gorm:"type:uuid;not null;index:idx_posts_category_id"`
	Category    *Category  `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID"`
	LocationID  *uuid.UUID `json:"locationId,omitempty" db:"location_id" gorm:"type:uuid"`
	Location    *Location  `json:"location,omitempty" gorm:"foreignKey:LocationID;references:ID"`
	PubDate     time.Time  `json:"pubDate" db:"pub_date" gorm:"type:timestamp;not null;index:idx_posts_pub_date"`
	IsPublished bool       `json:"isPublished" db:"is_published" gorm:"not null;default:true"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at" gorm:"type:timestamp;not null"`

	// CommentCount is computed per query as a count over comments; it is
	// never stored.
	CommentCount int64 `json:"commentCount" db:"comment_count" gorm:"->;-:migration"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
