// internal/app/features/stats/routes.go
package stats

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the stats endpoint. No authentication
// is enforced here; the counts expose nothing circle-specific beyond
// sizes.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeStats)

	return r
}
