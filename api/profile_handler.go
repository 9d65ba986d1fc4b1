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

type profileHandler struct {
	responder Responder
	logger    zerolog.Logger
	userRepo  *database.UserRepo
	postRepo  *database.PostRepo
}

func newProfileHandler(userRepo *database.UserRepo, postRepo *database.PostRepo) profileHandler {
	logger := log.With().Str("handlerName", "profileHandler").Logger()

	return profileHandler{
		responder: NewResponder(logger),
		logger:    logger,
		userRepo:  userRepo,
		postRepo:  postRepo,
	}
}

// Profile is a user together with one page of their posts.
type Profile struct {
	Profile *models.User   `json:"profile"`
	Posts   []*models.Post `json:"posts"`
	Page    int            `json:"page"`
	Count   int            `json:"count"`
}

// profile returns a user's page. The owner sees all of their posts, drafts
// and future-dated ones included; everyone else sees only the publicly
// visible subset.
func (h profileHandler) profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		if username == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing username"))
			return
		}

		user, err := h.userRepo.FindByUsername(username)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find user", "user", err))
			return
		}
		if user == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("user not found"))
			return
		}

		viewer := viewerFromCtx(r.Context())
		includeHidden := viewer != nil && viewer.ID == user.ID

		page := parsePage(r)
		posts, err := h.postRepo.ProfileFeedPage(user.ID, includeHidden, time.Now().UTC(), page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find posts", "posts", err))
			return
		}

		h.responder.WriteJSON(w, Profile{
			Profile: user,
			Posts:   posts,
			Page:    page,
			Count:   len(posts),
		})
	}
}
