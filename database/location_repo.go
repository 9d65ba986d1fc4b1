package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avasileva/blogicum-backend/models"
)

type LocationRepo struct {
	db *gorm.DB
}

func NewLocationRepo(db *gorm.DB) *LocationRepo {
	return &LocationRepo{db}
}

// FindPublished returns all published locations ordered by name.
func (r *LocationRepo) FindPublished() ([]*models.Location, error) {
	var locations []*models.Location
	err := r.db.Where("is_published = ?", true).Order("name ASC").Find(&locations).Error
	return locations, err
}

// FindByID returns a location by its ID, or nil when no such location exists.
func (r *LocationRepo) FindByID(id uuid.UUID) (*models.Location, error) {
	var location models.Location
	err := r.db.First(&location, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// Add inserts a new location into the database
func (r *LocationRepo) Add(location *models.Location) error {
	return r.db.Create(location).Error
}
