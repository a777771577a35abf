// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for push subscription management.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireAuth)

	r.Post("/subscribe", h.ServeSubscribe)
	r.Post("/unsubscribe", h.ServeUnsubscribe)

	return r
}
