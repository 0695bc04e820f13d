// routes.go — таблица маршрутов API Memory Timeline.
package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes регистрирует все маршруты API в роутере.
func (h *APIHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)
	r.Get("/metrics", h.GetMetrics)

	r.Get("/timeline", h.GetTimeline)

	r.Route("/memories", func(r chi.Router) {
		r.Post("/", h.CreateMemory)
		r.Get("/{id}", h.GetMemory)
		r.Put("/{id}", h.UpdateMemory)
		r.Delete("/{id}", h.DeleteMemory)
		r.Patch("/{id}/favorite", h.SetFavorite)
	})

	r.Get("/uploads/*", h.GetUpload)
}
