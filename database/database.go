package database

import (
	"gorm.io/gorm"

	"github.com/avasileva/blogicum-backend/models"
)

// PageSize is the number of posts per feed page.
const PageSize = 10

type Database struct {
	db           *gorm.DB
	userRepo     *UserRepo
	categoryRepo *CategoryRepo
	locationRepo *LocationRepo
	postRepo     *PostRepo
	commentRepo  *CommentRepo
}

// New initializes a new Database struct with each repository using a shared
// GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:           db,
		userRepo:     NewUserRepo(db),
		categoryRepo: NewCategoryRepo(db),
		locationRepo: NewLocationRepo(db),
		postRepo:     NewPostRepo(db),
		commentRepo:  NewCommentRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) CategoryRepo() *CategoryRepo {
	return d.categoryRepo
}

func (d Database) LocationRepo() *LocationRepo {
	return d.locationRepo
}

func (d Database) PostRepo() *PostRepo {
	return d.postRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

// Migrate creates or updates the schema for all entities.
func (d Database) Migrate() error {
	return d.db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Location{},
		&models.Post{},
		&models.Comment{},
	)
}
