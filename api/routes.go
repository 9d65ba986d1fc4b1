package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes wires all endpoints. Read routes resolve the viewer when a
// token is present but stay open to anonymous requests; write routes require
// an authenticated user.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	// Public routes (viewer optional)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.resolveViewer)

		r.Get("/posts", handlers.postHandler.feed())
		r.Get("/posts/{postID}", handlers.postHandler.detail())
		r.Get("/category/{slug}", handlers.categoryHandler.feed())
		r.Get("/categories", handlers.categoryHandler.list())
		r.Get("/locations", handlers.locationHandler.list())
		r.Get("/profile/{username}", handlers.profileHandler.profile())
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.resolveViewer)
		r.Use(authMiddleware.requireViewer)

		r.Post("/posts", handlers.postHandler.create())
		r.Put("/posts/{postID}", handlers.postHandler.update())
		r.Delete("/posts/{postID}", handlers.postHandler.delete())

		r.Post("/posts/{postID}/comments", handlers.commentHandler.create())
		r.Put("/posts/{postID}/comments/{commentID}", handlers.commentHandler.update())
		r.Delete("/posts/{postID}/comments/{commentID}", handlers.commentHandler.delete())
	})

	// Auth endpoints
	r.Post("/auth/signup", handlers.authHandler.signup())
	r.Post("/auth/login", handlers.authHandler.login())

	// Static pages
	r.Get("/pages/about", handlers.pagesHandler.about())
	r.Get("/pages/rules", handlers.pagesHandler.rules())
}
