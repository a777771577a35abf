// internal/app/features/authpkce/routes.go
package authpkce

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the auth endpoints. /me relies on the
// claims middleware installed at the application level.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/login", h.ServeLogin)
	r.Get("/callback", h.ServeCallback)
	r.Post("/token", h.ServeToken)
	r.Get("/me", h.ServeMe)
	r.Post("/logout", h.ServeLogout)

	return r
}
