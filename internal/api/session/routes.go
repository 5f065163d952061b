package session

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/{id}", h.GetSession)
		r.Delete("/{id}", h.DeleteSession)
		r.Put("/{id}/case", h.SetCase)
		r.Post("/{id}/directions", h.AddDirection)
		r.Delete("/{id}/directions/{direction}", h.RemoveDirection)
		r.Post("/{id}/runs", h.Run)
		r.Delete("/{id}/results", h.ClearResults)
		r.Patch("/{id}/results/{index}", h.UpdateRecord)
		r.Delete("/{id}/results/{index}", h.RemoveRecord)
		r.Get("/{id}/export", h.Export)
		r.Post("/{id}/publish", h.Publish)
	})
	r.Post("/extract", h.Extract)
}
