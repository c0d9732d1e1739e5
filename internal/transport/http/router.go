package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sociable/internal/handler"
	"sociable/internal/httputil"
	authmw "sociable/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	ProfileHandler *handler.ProfileHandler
	PostHandler    *handler.PostHandler
	CommentHandler *handler.CommentHandler
	MessageHandler *handler.MessageHandler
	JWTSecret      string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Post("/register", cfg.AuthHandler.Register)
	r.Post("/token", cfg.AuthHandler.Token)
	r.Post("/token/refresh", cfg.AuthHandler.Refresh)
	r.Post("/token/verify", cfg.AuthHandler.Verify)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		// Current account
		r.Get("/me", cfg.AuthHandler.Me)
		r.Put("/me", cfg.AuthHandler.UpdateMe)
		r.Patch("/me", cfg.AuthHandler.UpdateMe)
		r.Post("/change-password", cfg.AuthHandler.ChangePassword)
		r.Post("/logout", cfg.AuthHandler.Logout)

		// Profiles and the follow graph
		r.Route("/profiles", func(r chi.Router) {
			r.Post("/", cfg.ProfileHandler.Create)
			r.Get("/", cfg.ProfileHandler.List)
			r.Get("/{id}", cfg.ProfileHandler.Get)
			r.Put("/{id}", cfg.ProfileHandler.Update)
			r.Patch("/{id}", cfg.ProfileHandler.Update)
			r.Delete("/{id}", cfg.ProfileHandler.Delete)
			r.Post("/{id}/upload-image", cfg.ProfileHandler.UploadPhoto)
			r.Post("/{id}/follow", cfg.ProfileHandler.Follow)
			r.Post("/{id}/unfollow", cfg.ProfileHandler.Unfollow)
		})

		// Posts, feed, and likes. /liked registers before /{id} so chi
		// doesn't swallow it as an ID.
		r.Route("/posts", func(r chi.Router) {
			r.Post("/", cfg.PostHandler.Create)
			r.Get("/", cfg.PostHandler.Feed)
			r.Get("/liked", cfg.PostHandler.Liked)
			r.Get("/{id}", cfg.PostHandler.Get)
			r.Put("/{id}", cfg.PostHandler.Update)
			r.Patch("/{id}", cfg.PostHandler.Update)
			r.Delete("/{id}", cfg.PostHandler.Delete)
			r.Post("/{id}/like", cfg.PostHandler.ToggleLike)
		})

		r.Get("/tags", cfg.PostHandler.Tags)

		// Comments
		r.Route("/comments", func(r chi.Router) {
			r.Post("/", cfg.CommentHandler.Create)
			r.Get("/", cfg.CommentHandler.List)
			r.Get("/{id}", cfg.CommentHandler.Get)
			r.Put("/{id}", cfg.CommentHandler.Update)
			r.Patch("/{id}", cfg.CommentHandler.Update)
			r.Delete("/{id}", cfg.CommentHandler.Delete)
			r.Post("/{id}/like", cfg.CommentHandler.ToggleLike)
		})

		// Direct messages
		r.Route("/messages", func(r chi.Router) {
			r.Post("/", cfg.MessageHandler.Send)
			r.Get("/", cfg.MessageHandler.List)
			r.Get("/{id}", cfg.MessageHandler.Get)
		})
	})

	return r
}
