package api

import "github.com/go-chi/chi/v5"

func RegisterRoutes(mux chi.Router, h *Handlers) {
	mux.Get("/healthz", h.Health)
	mux.Get("/version", h.Version)

	mux.Post("/chat", h.Chat)

	mux.Get("/api/history/{sessionID}", h.GetHistory)
	mux.Get("/api/sessions", h.ListSessions)
}
