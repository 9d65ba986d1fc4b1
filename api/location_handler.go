package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avasileva/blogicum-backend/database"
)

type locationHandler struct {
	responder    Responder
	logger       zerolog.Logger
	locationRepo *database.LocationRepo
}

func newLocationHandler(locationRepo *database.LocationRepo) locationHandler {
	logger := log.With().Str("handlerName", "locationHandler").Logger()

	return locationHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		locationRepo: locationRepo,
	}
}

// list returns all published locations.
func (h locationHandler) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locations, err := h.locationRepo.FindPublished()
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find locations", "locations", err))
			return
		}

		h.responder.WriteJSON(w, map[string]any{
			"locations": locations,
			"count":     len(locations),
		})
	}
}
