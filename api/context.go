package api

import (
	"context"

	"github.com/avasileva/blogicum-backend/models"
)

type keyType string

const viewerKey keyType = "viewer"

// ctxWithViewer adds the authenticated user to the context
func ctxWithViewer(ctx context.Context, viewer *models.User) context.Context {
	return context.WithValue(ctx, viewerKey, viewer)
}

// viewerFromCtx retrieves the authenticated user from the context. Returns
// nil for anonymous requests.
func viewerFromCtx(ctx context.Context) *models.User {
	if viewer, ok := ctx.Value(viewerKey).(*models.User); ok {
		return viewer
	}
	return nil
}
