// internal/app/features/prompts/routes.go
package prompts

import (
	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for prompt generation.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireAuth)

	r.Post("/", h.ServeGenerate)

	return r
}
