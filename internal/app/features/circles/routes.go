// internal/app/features/circles/routes.go
package circles

import (
	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the /api/circles surface. Claims are
// loaded by bootstrap middleware; every route here requires them.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireAuth)

	r.Get("/", h.ServeListMessages)
	r.Post("/", h.ServeCreate)
	r.Get("/config", h.ServeConfig)
	r.Get("/members", h.ServeMembers)
	r.Get("/tags", h.ServeTags)
	r.Post("/invitations/accept", h.ServeAcceptInvitation)
	r.Post("/{circleID}/invitations", h.ServeCreateInvitation)

	return r
}
