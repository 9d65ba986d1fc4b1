package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avasileva/blogicum-backend/database"
	"github.com/avasileva/blogicum-backend/models"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) (*chi.Mux, database.Database) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := database.New(gormDB)
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	router := newRouter(db, withConfig(map[string]string{
		"JWT_SECRET": testSecret,
	}))
	return router, db
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seedUser(t *testing.T, db database.Database, username string, superuser bool) (*models.User, string) {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsSuperuser:  superuser,
	}
	if err := db.UserRepo().Add(user); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}

	token, err := signToken([]byte(testSecret), user.ID, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return user, token
}

func seedCategory(t *testing.T, db database.Database, slug string, published bool) *models.Category {
	t.Helper()

	category := &models.Category{Title: slug, Slug: slug, IsPublished: published}
	if err := db.CategoryRepo().Add(category); err != nil {
		t.Fatalf("seed category %s: %v", slug, err)
	}
	return category
}

func seedPost(t *testing.T, db database.Database, author *models.User, category *models.Category, published bool, pubDate time.Time) *models.Post {
	t.Helper()

	post := &models.Post{
		Title:       "a post",
		Text:        "text",
		AuthorID:    author.ID,
		CategoryID:  category.ID,
		PubDate:     pubDate,
		IsPublished: published,
	}
	if err := db.PostRepo().Add(post); err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

func TestSignupLoginAndCreatePost(t *testing.T) {
	router, db := newTestRouter(t)
	category := seedCategory(t, db, "travel", true)

	rec := doRequest(t, router, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "newuser",
		"email":    "newuser@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "newuser",
		"password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var login LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if login.Token == "" {
		t.Fatal("login response has no token")
	}

	rec = doRequest(t, router, http.MethodPost, "/posts", login.Token, map[string]any{
		"title":      "first post",
		"text":       "hello",
		"categoryId": category.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created models.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created post: %v", err)
	}
	if created.Author == nil || created.Author.Username != "newuser" {
		t.Error("created post not attributed to the authenticated user")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "someone",
		"email":    "someone@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "someone",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login with bad password status = %d, want 401", rec.Code)
	}
}

func TestMutationsRequireAuthentication(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/posts", "", map[string]string{"title": "x"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated create status = %d, want 401", rec.Code)
	}
}

func TestHiddenPostDetailIsNotFound(t *testing.T) {
	router, db := newTestRouter(t)
	author, authorToken := seedUser(t, db, "author", false)
	_, otherToken := seedUser(t, db, "other", false)
	category := seedCategory(t, db, "travel", true)
	draft := seedPost(t, db, author, category, false, time.Now().UTC().Add(-time.Hour))

	path := fmt.Sprintf("/posts/%s", draft.ID)

	// Anonymous and unrelated viewers get the same 404 as for a missing id.
	for _, token := range []string{"", otherToken} {
		rec := doRequest(t, router, http.MethodGet, path, token, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("draft detail status = %d, want 404", rec.Code)
		}
	}

	rec := doRequest(t, router, http.MethodGet, path, authorToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("author draft detail status = %d, want 200", rec.Code)
	}
}

func TestUnpublishedCategoryFeedIsNotFound(t *testing.T) {
	router, db := newTestRouter(t)
	author, _ := seedUser(t, db, "author", false)
	hidden := seedCategory(t, db, "secret", false)
	seedPost(t, db, author, hidden, true, time.Now().UTC().Add(-time.Hour))

	rec := doRequest(t, router, http.MethodGet, "/category/secret", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unpublished category feed status = %d, want 404", rec.Code)
	}
}

func TestCommentDeleteByNonAuthorRedirects(t *testing.T) {
	router, db := newTestRouter(t)
	author, _ := seedUser(t, db, "author", false)
	_, otherToken := seedUser(t, db, "other", false)
	category := seedCategory(t, db, "travel", true)
	post := seedPost(t, db, author, category, true, time.Now().UTC().Add(-time.Hour))

	comment := &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "mine"}
	if err := db.CommentRepo().Add(comment); err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	path := fmt.Sprintf("/posts/%s/comments/%s", post.ID, comment.ID)
	rec := doRequest(t, router, http.MethodDelete, path, otherToken, nil)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("non-author delete status = %d, want 303", rec.Code)
	}
	wantLocation := fmt.Sprintf("/posts/%s", post.ID)
	if got := rec.Header().Get("Location"); got != wantLocation {
		t.Errorf("redirect location = %q, want %q", got, wantLocation)
	}

	// The mutation must not have been executed.
	survivor, err := db.CommentRepo().FindByID(comment.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if survivor == nil {
		t.Fatal("comment was deleted despite failed permission check")
	}
}

func TestSuperuserMayDeleteOthersComment(t *testing.T) {
	router, db := newTestRouter(t)
	author, _ := seedUser(t, db, "author", false)
	_, adminToken := seedUser(t, db, "admin", true)
	category := seedCategory(t, db, "travel", true)
	post := seedPost(t, db, author, category, true, time.Now().UTC().Add(-time.Hour))

	comment := &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "mine"}
	if err := db.CommentRepo().Add(comment); err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	path := fmt.Sprintf("/posts/%s/comments/%s", post.ID, comment.ID)
	rec := doRequest(t, router, http.MethodDelete, path, adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("superuser delete status = %d, body %s", rec.Code, rec.Body.String())
	}

	gone, err := db.CommentRepo().FindByID(comment.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if gone != nil {
		t.Fatal("comment still present after superuser delete")
	}
}

func TestPostUpdateByNonAuthorRedirects(t *testing.T) {
	router, db := newTestRouter(t)
	author, _ := seedUser(t, db, "author", false)
	_, otherToken := seedUser(t, db, "other", false)
	category := seedCategory(t, db, "travel", true)
	post := seedPost(t, db, author, category, true, time.Now().UTC().Add(-time.Hour))

	path := fmt.Sprintf("/posts/%s", post.ID)
	rec := doRequest(t, router, http.MethodPut, path, otherToken, map[string]any{
		"title":      "hijacked",
		"text":       "nope",
		"categoryId": category.ID,
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("non-author update status = %d, want 303", rec.Code)
	}

	unchanged, err := db.PostRepo().FindByID(post.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if unchanged.Title != "a post" {
		t.Errorf("post title = %q, mutation was applied", unchanged.Title)
	}
}

func TestProfileOwnerSeesDrafts(t *testing.T) {
	router, db := newTestRouter(t)
	author, authorToken := seedUser(t, db, "author", false)
	category := seedCategory(t, db, "travel", true)
	seedPost(t, db, author, category, true, time.Now().UTC().Add(-time.Hour))
	seedPost(t, db, author, category, false, time.Now().UTC().Add(-time.Hour))

	rec := doRequest(t, router, http.MethodGet, "/profile/author", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous profile status = %d", rec.Code)
	}
	var anonymous Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &anonymous); err != nil {
		t.Fatalf("decode profile: %v", err)
	}

	rec = doRequest(t, router, http.MethodGet, "/profile/author", authorToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner profile status = %d", rec.Code)
	}
	var owner Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &owner); err != nil {
		t.Fatalf("decode profile: %v", err)
	}

	if anonymous.Count != 1 {
		t.Errorf("anonymous sees %d posts, want 1", anonymous.Count)
	}
	if owner.Count != 2 {
		t.Errorf("owner sees %d posts, want 2", owner.Count)
	}
}

func TestInvalidTokenIsRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/posts", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("invalid token status = %d, want 401", rec.Code)
	}

	// No token at all is fine on a read route.
	rec = doRequest(t, router, http.MethodGet, "/posts", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("anonymous feed status = %d, want 200", rec.Code)
	}
}
