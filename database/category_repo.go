package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avasileva/blogicum-backend/models"
)

type CategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db}
}

// FindPublished returns all published categories ordered by title.
func (r *CategoryRepo) FindPublished() ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.Where("is_published = ?", true).Order("title ASC").Find(&categories).Error
	return categories, err
}

// FindPublishedBySlug returns a published category by slug. An unknown slug
// and an unpublished category both yield nil so callers surface the same
// "not found" either way.
func (r *CategoryRepo) FindPublishedBySlug(slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.First(&category, "slug = ? AND is_published = ?", slug, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindByID returns a category by its ID, or nil when no such category exists.
func (r *CategoryRepo) FindByID(id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Add inserts a new category into the database
func (r *CategoryRepo) Add(category *models.Category) error {
	return r.db.Create(category).Error
}
