package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. Username is the public identity and is
// immutable after registration.
type User struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Username     string    `json:"username" db:"username" gorm:"type:text;not null;uniqueIndex"`
	Email        string    `json:"email" db:"email" gorm:"type:text;not null"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"type:text;not null"`
	FirstName    string    `json:"firstName,omitempty" db:"first_name" gorm:"type:text"`
	LastName     string    `json:"lastName,omitempty" db:"last_name" gorm:"type:text"`
	Bio          string    `json:"bio,omitempty" db:"bio" gorm:"type:text"`
	IsSuperuser  bool      `json:"isSuperuser" db:"is_superuser" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at" gorm:"type:timestamp;not null"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
