package database

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avasileva/blogicum-backend/models"
)

func openTestDB(t *testing.T) Database {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// A single connection so every query sees the same in-memory database.
	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := New(gormDB)
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db  Database
	now time.Time

	author *models.User
	reader *models.User

	published   *models.Category
	unpublished *models.Category

	visible      *models.Post // published, past pub date
	draft        *models.Post // is_published = false
	future       *models.Post // pub date not reached
	hiddenByCat  *models.Post // category unpublished
	olderVisible *models.Post // published, older pub date
}

func seed(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		db:  openTestDB(t),
		now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	f.author = &models.User{Username: "author", Email: "author@example.com", PasswordHash: "x"}
	f.reader = &models.User{Username: "reader", Email: "reader@example.com", PasswordHash: "x"}
	for _, u := range []*models.User{f.author, f.reader} {
		if err := f.db.UserRepo().Add(u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	f.published = &models.Category{Title: "Travel", Slug: "travel", IsPublished: true}
	f.unpublished = &models.Category{Title: "Secret", Slug: "secret", IsPublished: false}
	for _, c := range []*models.Category{f.published, f.unpublished} {
		if err := f.db.CategoryRepo().Add(c); err != nil {
			t.Fatalf("seed category: %v", err)
		}
	}

	newPost := func(title string, cat *models.Category, pubDate time.Time, isPublished bool) *models.Post {
		p := &models.Post{
			Title:       title,
			Text:        "text",
			AuthorID:    f.author.ID,
			CategoryID:  cat.ID,
			PubDate:     pubDate,
			IsPublished: isPublished,
		}
		if err := f.db.PostRepo().Add(p); err != nil {
			t.Fatalf("seed post %q: %v", title, err)
		}
		return p
	}

	f.visible = newPost("visible", f.published, f.now.Add(-time.Hour), true)
	f.olderVisible = newPost("older", f.published, f.now.Add(-48*time.Hour), true)
	f.draft = newPost("draft", f.published, f.now.Add(-time.Hour), false)
	f.future = newPost("future", f.published, f.now.Add(time.Hour), true)
	f.hiddenByCat = newPost("hidden-category", f.unpublished, f.now.Add(-time.Hour), true)

	return f
}

func postIDs(posts []*models.Post) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(posts))
	for _, p := range posts {
		ids[p.ID] = true
	}
	return ids
}

func TestFeedPageVisibilityAndOrder(t *testing.T) {
	f := seed(t)

	posts, err := f.db.PostRepo().FeedPage(f.now, 1)
	if err != nil {
		t.Fatalf("FeedPage: %v", err)
	}

	if len(posts) != 2 {
		t.Fatalf("feed has %d posts, want 2", len(posts))
	}
	if posts[0].ID != f.visible.ID || posts[1].ID != f.olderVisible.ID {
		t.Errorf("feed not ordered newest first: got %q, %q", posts[0].Title, posts[1].Title)
	}

	ids := postIDs(posts)
	for _, hidden := range []*models.Post{f.draft, f.future, f.hiddenByCat} {
		if ids[hidden.ID] {
			t.Errorf("post %q should not be in the public feed", hidden.Title)
		}
	}

	// Associations come back attached for list rendering.
	if posts[0].Author == nil || posts[0].Author.Username != "author" {
		t.Error("feed post missing author")
	}
	if posts[0].Category == nil || posts[0].Category.Slug != "travel" {
		t.Error("feed post missing category")
	}
}

func TestFeedCommentCountAnnotation(t *testing.T) {
	f := seed(t)

	for i := 0; i < 3; i++ {
		comment := &models.Comment{PostID: f.visible.ID, AuthorID: f.reader.ID, Text: "hi"}
		if err := f.db.CommentRepo().Add(comment); err != nil {
			t.Fatalf("add comment: %v", err)
		}
	}

	posts, err := f.db.PostRepo().FeedPage(f.now, 1)
	if err != nil {
		t.Fatalf("FeedPage: %v", err)
	}
	counts := make(map[uuid.UUID]int64, len(posts))
	for _, p := range posts {
		counts[p.ID] = p.CommentCount
	}
	if counts[f.visible.ID] != 3 {
		t.Errorf("comment count = %d, want 3", counts[f.visible.ID])
	}
	if counts[f.olderVisible.ID] != 0 {
		t.Errorf("comment count = %d, want 0", counts[f.olderVisible.ID])
	}

	// The annotation is recomputed per query, not cached.
	if err := f.db.CommentRepo().Add(&models.Comment{PostID: f.visible.ID, AuthorID: f.reader.ID, Text: "one more"}); err != nil {
		t.Fatalf("add comment: %v", err)
	}
	post, err := f.db.PostRepo().FindByID(f.visible.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if post.CommentCount != 4 {
		t.Errorf("refetched comment count = %d, want 4", post.CommentCount)
	}
}

func TestCategoryFeedPage(t *testing.T) {
	f := seed(t)

	posts, err := f.db.PostRepo().CategoryFeedPage(f.published.ID, f.now, 1)
	if err != nil {
		t.Fatalf("CategoryFeedPage: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("category feed has %d posts, want 2", len(posts))
	}
	for _, p := range posts {
		if p.CategoryID != f.published.ID {
			t.Errorf("post %q from wrong category", p.Title)
		}
	}
}

func TestFindPublishedBySlug(t *testing.T) {
	f := seed(t)

	category, err := f.db.CategoryRepo().FindPublishedBySlug("travel")
	if err != nil {
		t.Fatalf("FindPublishedBySlug: %v", err)
	}
	if category == nil || category.ID != f.published.ID {
		t.Fatal("published category not found by slug")
	}

	// Unpublished and unknown slugs are both nil: same 404 upstream.
	for _, slug := range []string{"secret", "no-such-slug"} {
		category, err := f.db.CategoryRepo().FindPublishedBySlug(slug)
		if err != nil {
			t.Fatalf("FindPublishedBySlug(%q): %v", slug, err)
		}
		if category != nil {
			t.Errorf("slug %q should resolve to nothing", slug)
		}
	}
}

func TestProfileFeedOwnerSeesSuperset(t *testing.T) {
	f := seed(t)

	ownerPosts, err := f.db.PostRepo().ProfileFeedPage(f.author.ID, true, f.now, 1)
	if err != nil {
		t.Fatalf("owner ProfileFeedPage: %v", err)
	}
	publicPosts, err := f.db.PostRepo().ProfileFeedPage(f.author.ID, false, f.now, 1)
	if err != nil {
		t.Fatalf("public ProfileFeedPage: %v", err)
	}

	if len(ownerPosts) != 5 {
		t.Errorf("owner sees %d posts, want all 5", len(ownerPosts))
	}
	if len(publicPosts) != 2 {
		t.Errorf("public sees %d posts, want 2", len(publicPosts))
	}

	ownerIDs := postIDs(ownerPosts)
	for _, p := range publicPosts {
		if !ownerIDs[p.ID] {
			t.Errorf("public post %q missing from owner view", p.Title)
		}
	}
}

func TestPaginateBoundsFeed(t *testing.T) {
	f := seed(t)

	// Fill past one page of visible posts.
	for i := 0; i < PageSize; i++ {
		p := &models.Post{
			Title:       "extra",
			Text:        "text",
			AuthorID:    f.author.ID,
			CategoryID:  f.published.ID,
			PubDate:     f.now.Add(-time.Duration(i+100) * time.Hour),
			IsPublished: true,
		}
		if err := f.db.PostRepo().Add(p); err != nil {
			t.Fatalf("add post: %v", err)
		}
	}

	first, err := f.db.PostRepo().FeedPage(f.now, 1)
	if err != nil {
		t.Fatalf("FeedPage(1): %v", err)
	}
	if len(first) != PageSize {
		t.Errorf("first page has %d posts, want %d", len(first), PageSize)
	}

	second, err := f.db.PostRepo().FeedPage(f.now, 2)
	if err != nil {
		t.Fatalf("FeedPage(2): %v", err)
	}
	if len(second) != 2 {
		t.Errorf("second page has %d posts, want 2", len(second))
	}

	firstIDs := postIDs(first)
	for _, p := range second {
		if firstIDs[p.ID] {
			t.Error("pages overlap")
		}
	}
}

func TestDeletePostRemovesComments(t *testing.T) {
	f := seed(t)

	comment := &models.Comment{PostID: f.visible.ID, AuthorID: f.reader.ID, Text: "bye"}
	if err := f.db.CommentRepo().Add(comment); err != nil {
		t.Fatalf("add comment: %v", err)
	}

	if err := f.db.PostRepo().Delete(f.visible.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}

	post, err := f.db.PostRepo().FindByID(f.visible.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if post != nil {
		t.Fatal("post still present after delete")
	}

	count, err := f.db.CommentRepo().CountForPost(f.visible.ID)
	if err != nil {
		t.Fatalf("CountForPost: %v", err)
	}
	if count != 0 {
		t.Errorf("orphaned comments left: %d", count)
	}
}
