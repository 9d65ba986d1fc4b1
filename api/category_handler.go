package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avasileva/blogicum-backend/database"
	"github.com/avasileva/blogicum-backend/errs"
	"github.com/avasileva/blogicum-backend/models"
)

type categoryHandler struct {
	responder    Responder
	logger       zerolog.Logger
	categoryRepo *database.CategoryRepo
	postRepo     *database.PostRepo
}

func newCategoryHandler(categoryRepo *database.CategoryRepo, postRepo *database.PostRepo) categoryHandler {
	logger := log.With().Str("handlerName", "categoryHandler").Logger()

	return categoryHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		categoryRepo: categoryRepo,
		postRepo:     postRepo,
	}
}

// CategoryFeed is one page of a category's posts together with the category
// itself.
type CategoryFeed struct {
	Category *models.Category `json:"category"`
	Posts    []*models.Post   `json:"posts"`
	Page     int              `json:"page"`
	Count    int              `json:"count"`
}

// list returns all published categories.
func (h categoryHandler) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.categoryRepo.FindPublished()
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find categories", "categories", err))
			return
		}

		h.responder.WriteJSON(w, map[string]any{
			"categories": categories,
			"count":      len(categories),
		})
	}
}

// feed returns one page of a category's public feed. An unknown slug and an
// unpublished category both 404, regardless of the posts inside.
func (h categoryHandler) feed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing category slug"))
			return
		}

		category, err := h.categoryRepo.FindPublishedBySlug(slug)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find category", "category", err))
			return
		}
		if category == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("category not found"))
			return
		}

		page := parsePage(r)
		posts, err := h.postRepo.CategoryFeedPage(category.ID, time.Now().UTC(), page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find posts", "posts", err))
			return
		}

		h.responder.WriteJSON(w, CategoryFeed{
			Category: category,
			Posts:    posts,
			Page:     page,
			Count:    len(posts),
		})
	}
}
