// Package api exposes the live shoot-day service over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/hotset/internal/constants"
	"github.com/julianstephens/hotset/internal/hotset"
)

// Handler serves the REST surface. Clock is the source of "now" for
// requests that do not carry an at parameter.
type Handler struct {
	svc *hotset.Service
	now func() time.Time
}

func NewHandler(svc *hotset.Service, clock func() time.Time) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{svc: svc, now: clock}
}

// NewRouter wires middleware and routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recovery)

	r.Get("/health", h.health)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.listSessions)
		r.Post("/", h.createSession)
		r.Post("/validate", h.validateTemplate)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.getSnapshot)
			r.Delete("/", h.deleteSession)
			r.Post("/start", h.startDay)
			r.Post("/wrap", h.recordWrap)
			r.Get("/schedule", h.getSchedule)
			r.Get("/variance", h.getVariance)
			r.Get("/summary", h.getSummary)
			r.Get("/suggestions", h.getSuggestions)
			r.Post("/suggestions/{suggestionID}/apply", h.applySuggestion)
			r.Post("/activities", h.insertActivity)
			r.Get("/scenes/{sceneID}/swaps", h.getSwapSuggestions)
			r.Post("/swap", h.swapScenes)
		})
	})

	r.Route("/items/{itemID}", func(r chi.Router) {
		r.Post("/start", h.startItem)
		r.Post("/complete", h.completeItem)
		r.Post("/skip", h.skipItem)
		r.Post("/adjust", h.adjustBlock)
		r.Post("/move", h.moveItem)
		r.Delete("/", h.deleteBlock)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": constants.Version,
	})
}
