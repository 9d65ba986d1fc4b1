package api

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// pagesHandler serves the static site pages.
type pagesHandler struct {
	responder Responder
}

func newPagesHandler() pagesHandler {
	logger := log.With().Str("handlerName", "pagesHandler").Logger()
	return pagesHandler{responder: NewResponder(logger)}
}

func (h pagesHandler) about() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, map[string]string{
			"page":  "about",
			"title": "About the project",
			"text":  "Blogicum is a small community blog: write posts, sort them into categories, and discuss them in the comments.",
		})
	}
}

func (h pagesHandler) rules() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, map[string]string{
			"page":  "rules",
			"title": "Community rules",
			"text":  "Be kind, stay on topic, and only publish content you have the rights to.",
		})
	}
}
