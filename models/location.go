package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Location is an optional place attached to a post. Its publication flag only
// controls whether it appears in the reference list, not post visibility.
type Location struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name        string    `json:"name" db:"name" gorm:"type:text;not null"`
	IsPublished bool      `json:"isPublished" db:"is_published" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at" gorm:"type:timestamp;not null"`
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
