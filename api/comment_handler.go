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

type commentHandler struct {
	responder   Responder
	logger      zerolog.Logger
	commentRepo *database.CommentRepo
	postRepo    *database.PostRepo
}

func newCommentHandler(commentRepo *database.CommentRepo, postRepo *database.PostRepo) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

type commentRequest struct {
	Text string `json:"text"`
}

// create adds a comment to a post. The parent post must be visible to the
// actor; a hidden post 404s exactly like a missing one.
func (h commentHandler) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := viewerFromCtx(r.Context())

		postID, err := uuid.Parse(chi.URLParam(r, "postID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid postID"))
			return
		}

		post, err := h.postRepo.FindByID(postID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find post", "post", err))
			return
		}
		if post == nil || !policy.Visible(actor, post, time.Now().UTC()) {
			h.responder.WriteError(w, errs.NewNotFoundError("post not found"))
			return
		}

		var req commentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode comment request body")
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if req.Text == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("text"))
			return
		}

		comment := models.Comment{
			PostID:   post.ID,
			AuthorID: actor.ID,
			Text:     req.Text,
		}
		if err := h.commentRepo.Add(&comment); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create comment", "comment", err))
			return
		}

		created, err := h.commentRepo.FindByID(comment.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find created comment", "comment", err))
			return
		}

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, created)
	}
}

// update edits a comment's text. Non-authors (other than superusers) are
// routed back to the parent post instead of mutating.
func (h commentHandler) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comment, postID, ok := h.fetchComment(w, r)
		if !ok {
			return
		}

		actor := viewerFromCtx(r.Context())
		if !policy.CanMutate(actor, comment.AuthorID) {
			h.responder.WriteRedirect(w, policy.RedirectTarget(policy.ResourceComment, postID))
			return
		}

		var req commentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode comment request body")
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if req.Text == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("text"))
			return
		}

		comment.Text = req.Text
		comment.Author = nil

		if err := h.commentRepo.Update(comment); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update comment", "comment", err))
			return
		}

		updated, err := h.commentRepo.FindByID(comment.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find updated comment", "comment", err))
			return
		}

		h.responder.WriteJSON(w, updated)
	}
}

// delete removes a comment, with the same permission gate as update.
func (h commentHandler) delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comment, postID, ok := h.fetchComment(w, r)
		if !ok {
			return
		}

		actor := viewerFromCtx(r.Context())
		if !policy.CanMutate(actor, comment.AuthorID) {
			h.responder.WriteRedirect(w, policy.RedirectTarget(policy.ResourceComment, postID))
			return
		}

		if err := h.commentRepo.Delete(comment.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete comment", "comment", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "comment deleted successfully",
		})
	}
}

// fetchComment resolves {postID}/{commentID} and checks the comment belongs
// to the post. On failure the response has already been written.
func (h commentHandler) fetchComment(w http.ResponseWriter, r *http.Request) (*models.Comment, uuid.UUID, bool) {
	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		h.responder.WriteError(w, errs.NewBadRequestError("invalid postID"))
		return nil, uuid.Nil, false
	}

	commentID, err := uuid.Parse(chi.URLParam(r, "commentID"))
	if err != nil {
		h.responder.WriteError(w, errs.NewBadRequestError("invalid commentID"))
		return nil, uuid.Nil, false
	}

	comment, err := h.commentRepo.FindByID(commentID)
	if err != nil {
		h.responder.WriteError(w, wrapDatabaseError("find comment", "comment", err))
		return nil, uuid.Nil, false
	}
	if comment == nil || comment.PostID != postID {
		h.responder.WriteError(w, errs.NewNotFoundError("comment not found"))
		return nil, uuid.Nil, false
	}
	return comment, postID, true
}
