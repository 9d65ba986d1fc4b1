package database

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avasileva/blogicum-backend/models"
)

// commentCountSelect annotates each returned post with a live count of its
// comments. Recomputed on every query, never stored.
const commentCountSelect = "posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db}
}

// findPage runs the shared feed query with the given scopes applied.
func (r *PostRepo) findPage(scopes ...Scope) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.Model(&models.Post{}).
		Select(commentCountSelect).
		Scopes(scopes...).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		Find(&posts).Error
	return posts, err
}

// FeedPage returns one page of the public feed: posts visible to an anonymous
// reader at the given instant, newest first.
func (r *PostRepo) FeedPage(now time.Time, page int) ([]*models.Post, error) {
	return r.findPage(PubliclyVisible(now), OrderNewestFirst, Paginate(page, PageSize))
}

// CategoryFeedPage returns one page of the public feed restricted to a
// category. Callers resolve the category (and check its publication flag)
// before asking for its feed.
func (r *PostRepo) CategoryFeedPage(categoryID uuid.UUID, now time.Time, page int) ([]*models.Post, error) {
	return r.findPage(PubliclyVisible(now), InCategory(categoryID), OrderNewestFirst, Paginate(page, PageSize))
}

// ProfileFeedPage returns one page of a user's posts. With includeHidden set
// (the viewer owns the profile) drafts and future-dated posts are included;
// otherwise only the anonymous-visible subset is returned.
func (r *PostRepo) ProfileFeedPage(authorID uuid.UUID, includeHidden bool, now time.Time, page int) ([]*models.Post, error) {
	scopes := []Scope{ByAuthor(authorID), OrderNewestFirst, Paginate(page, PageSize)}
	if !includeHidden {
		scopes = append([]Scope{PubliclyVisible(now)}, scopes...)
	}
	return r.findPage(scopes...)
}

// FindByID returns a post with its associations and comment count, or nil
// when no such post exists. Visibility is the caller's concern.
func (r *PostRepo) FindByID(id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.Model(&models.Post{}).
		Select(commentCountSelect).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		First(&post, "posts.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Add inserts a new post into the database
func (r *PostRepo) Add(post *models.Post) error {
	return r.db.Create(post).Error
}

// Update updates an existing post in the database
func (r *PostRepo) Update(post *models.Post) error {
	return r.db.Save(post).Error
}

// Delete removes a post and its comments by id.
func (r *PostRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", id).Error
	})
}
