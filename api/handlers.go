package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/avasileva/blogicum-backend/database"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, secret []byte, tokenTTL time.Duration) *routeHandlers {
	return &routeHandlers{
		authHandler:     newAuthHandler(database.UserRepo(), secret, tokenTTL),
		postHandler:     newPostHandler(database.PostRepo(), database.CommentRepo(), database.CategoryRepo(), database.LocationRepo()),
		commentHandler:  newCommentHandler(database.CommentRepo(), database.PostRepo()),
		categoryHandler: newCategoryHandler(database.CategoryRepo(), database.PostRepo()),
		locationHandler: newLocationHandler(database.LocationRepo()),
		profileHandler:  newProfileHandler(database.UserRepo(), database.PostRepo()),
		pagesHandler:    newPagesHandler(),
	}
}

// parsePage reads the 1-based ?page= query parameter, defaulting to the
// first page.
func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
