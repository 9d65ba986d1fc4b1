package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avasileva/blogicum-backend/database"
	"github.com/avasileva/blogicum-backend/errs"
	"github.com/avasileva/blogicum-backend/models"
	"github.com/avasileva/blogicum-backend/policy"
)

type postHandler struct {
	responder    Responder
	logger       zerolog.Logger
	postRepo     *database.PostRepo
	commentRepo  *database.CommentRepo
	categoryRepo *database.CategoryRepo
	locationRepo *database.LocationRepo
}

func newPostHandler(postRepo *database.PostRepo, commentRepo *database.CommentRepo, categoryRepo *database.CategoryRepo, locationRepo *database.LocationRepo) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Logger()

	return postHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		categoryRepo: categoryRepo,
		locationRepo: locationRepo,
	}
}

// postRequest is the payload for creating or replacing a post.
type postRequest struct {
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	CategoryID  uuid.UUID  `json:"categoryId"`
	LocationID  *uuid.UUID `json:"locationId,omitempty"`
	PubDate     *time.Time `json:"pubDate,omitempty"`
	IsPublished *bool      `json:"isPublished,omitempty"`
}

// PostPage is one page of a feed.
type PostPage struct {
	Posts []*models.Post `json:"posts"`
	Page  int            `json:"page"`
	Count int            `json:"count"`
}

// PostDetail is a single post with its comment thread.
type PostDetail struct {
	Post     *models.Post      `json:"post"`
	Comments []*models.Comment `json:"comments"`
}

// feed returns one page of the public feed: published posts in published
// categories whose pub date has passed, newest first.
func (h postHandler) feed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := parsePage(r)
		now := time.Now().UTC()

		posts, err := h.postRepo.FeedPage(now, page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find posts", "posts", err))
			return
		}

		h.responder.WriteJSON(w, PostPage{Posts: posts, Page: page, Count: len(posts)})
	}
}

// detail returns a single post with its comments. A post the viewer may not
// see is indistinguishable from a missing one: both are 404.
func (h postHandler) detail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, ok := h.fetchPost(w, r)
		if !ok {
			return
		}

		viewer := viewerFromCtx(r.Context())
		if !policy.Visible(viewer, post, time.Now().UTC()) {
			h.responder.WriteError(w, errs.NewNotFoundError("post not found"))
			return
		}

		comments, err := h.commentRepo.FindByPost(post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find comments", "comments", err))
			return
		}

		h.responder.WriteJSON(w, PostDetail{Post: post, Comments: comments})
	}
}

// create adds a new post authored by the requesting user.
func (h postHandler) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := viewerFromCtx(r.Context())

		var req postRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode post request body")
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		if !h.validatePostRequest(w, req) {
			return
		}

		post := models.Post{
			Title:       req.Title,
			Text:        req.Text,
			AuthorID:    actor.ID,
			CategoryID:  req.CategoryID,
			LocationID:  req.LocationID,
			PubDate:     time.Now().UTC(),
			IsPublished: true,
		}
		if req.PubDate != nil {
			post.PubDate = req.PubDate.UTC()
		}
		if req.IsPublished != nil {
			post.IsPublished = *req.IsPublished
		}

		if err := h.postRepo.Add(&post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create post", "post", err))
			return
		}

		// Reload to pick up associations and the comment count annotation
		created, err := h.postRepo.FindByID(post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find created post", "post", err))
			return
		}

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, created)
	}
}

// update replaces a post's content. Only the author or a superuser may do
// so; anyone else is routed back to the post's detail resource without the
// mutation being applied.
func (h postHandler) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, ok := h.fetchPost(w, r)
		if !ok {
			return
		}

		actor := viewerFromCtx(r.Context())
		if !policy.CanMutate(actor, post.AuthorID) {
			h.responder.WriteRedirect(w, policy.RedirectTarget(policy.ResourcePost, post.ID))
			return
		}

		var req postRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode post request body")
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		if !h.validatePostRequest(w, req) {
			return
		}

		post.Title = req.Title
		post.Text = req.Text
		post.CategoryID = req.CategoryID
		post.LocationID = req.LocationID
		if req.PubDate != nil {
			post.PubDate = req.PubDate.UTC()
		}
		if req.IsPublished != nil {
			post.IsPublished = *req.IsPublished
		}

		// Drop loaded associations so Save only writes the post row.
		post.Author, post.Category, post.Location = nil, nil, nil

		if err := h.postRepo.Update(post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update post", "post", err))
			return
		}

		updated, err := h.postRepo.FindByID(post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find updated post", "post", err))
			return
		}

		h.responder.WriteJSON(w, updated)
	}
}

// delete removes a post and its comments, with the same permission gate as
// update.
func (h postHandler) delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, ok := h.fetchPost(w, r)
		if !ok {
			return
		}

		actor := viewerFromCtx(r.Context())
		if !policy.CanMutate(actor, post.AuthorID) {
			h.responder.WriteRedirect(w, policy.RedirectTarget(policy.ResourcePost, post.ID))
			return
		}

		if err := h.postRepo.Delete(post.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete post", "post", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "post deleted successfully",
		})
	}
}

// fetchPost resolves the {postID} URL parameter. On failure the response has
// already been written and ok is false.
func (h postHandler) fetchPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		h.responder.WriteError(w, errs.NewBadRequestError("invalid postID"))
		return nil, false
	}

	post, err := h.postRepo.FindByID(postID)
	if err != nil {
		h.responder.WriteError(w, wrapDatabaseError("find post", "post", err))
		return nil, false
	}
	if post == nil {
		h.responder.WriteError(w, errs.NewNotFoundError("post not found"))
		return nil, false
	}
	return post, true
}

// validatePostRequest checks required fields and referenced records. The
// category must exist and be published; the location, when given, likewise.
func (h postHandler) validatePostRequest(w http.ResponseWriter, req postRequest) bool {
	if req.Title == "" {
		h.responder.WriteError(w, errs.NewMissingRequiredFieldError("title"))
		return false
	}
	if req.Text == "" {
		h.responder.WriteError(w, errs.NewMissingRequiredFieldError("text"))
		return false
	}
	if req.CategoryID == uuid.Nil {
		h.responder.WriteError(w, errs.NewMissingRequiredFieldError("categoryId"))
		return false
	}

	category, err := h.categoryRepo.FindByID(req.CategoryID)
	if err != nil {
		h.responder.WriteError(w, wrapDatabaseError("find category", "category", err))
		return false
	}
	if category == nil || !category.IsPublished {
		h.responder.WriteError(w, errs.NewInvalidFieldError("categoryId", "no such published category"))
		return false
	}

	if req.LocationID != nil {
		location, err := h.locationRepo.FindByID(*req.LocationID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find location", "location", err))
			return false
		}
		if location == nil || !location.IsPublished {
			h.responder.WriteError(w, errs.NewInvalidFieldError("locationId", "no such published location"))
			return false
		}
	}
	return true
}
