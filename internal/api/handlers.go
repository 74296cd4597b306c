package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/hotset/internal/hotset"
	"github.com/julianstephens/hotset/internal/models"
)

// withInstant runs a service call at the request instant and writes its result.
func (h *Handler) withInstant(w http.ResponseWriter, r *http.Request, fn func(now time.Time) (interface{}, error)) {
	now, err := h.instant(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	out, err := fn(now)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.ListSessions(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var tmpl models.SessionTemplate
	if err := decodeJSON(r, &tmpl); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid template: "+err.Error())
		return
	}
	snap, err := h.svc.CreateSession(r.Context(), tmpl)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) validateTemplate(w http.ResponseWriter, r *http.Request) {
	var tmpl models.SessionTemplate
	if err := decodeJSON(r, &tmpl); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid template: "+err.Error())
		return
	}
	result := h.svc.ValidateTemplate(tmpl)
	status := http.StatusOK
	if result.HasErrors() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func (h *Handler) getSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.GetSnapshot(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) startDay(w http.ResponseWriter, r *http.Request) {
	h.withInstant(w, r, func(now time.Time) (interface{}, error) {
		return h.svc.StartDay(r.Context(), chi.URLParam(r, "sessionID"), now)
	})
}

func (h *Handler) recordWrap(w http.ResponseWriter, r *http.Request) {
	h.withInstant(w, r, func(now time.Time) (interface{}, error) {
		return h.svc.RecordWrap(r.Context(), chi.URLParam(r, "sessionID"), now)
	})
}

func (h *Handler) getSchedule(w http.ResponseWriter, r *http.Request) {
	h.withInstant(w, r, func(now time.Time) (interface{}, error) {
		return h.svc.GetProjectedSchedule(r.Context(), chi.URLParam(r, "sessionID"), now)
	})
}

func (h *Handler) getVariance(w http.ResponseWriter, r *http.Request) {
	h.withInstant(w, r, func(now time.Time) (interface{}, error) {
		return h.svc.GetVariance(r.Context(), chi.URLParam(r, "sessionID"), now)
	})
}

func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.GetDaySummary(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) getSuggestions(w http.ResponseWriter, r *http.Request) {
	h.withInstant(w, r, func(now time.Time) (interface{}, error) {
		out, err := h.svc.GetCatchUpSuggestions(r.Context(), chi.URLParam(r, "sessionID"), now)
		if out == nil && err == nil {
			out = []models.Suggestion{}
		}
		return out, err
	})
}

func (h *Handler) applySuggestion(w http.ResponseWriter, r *http.Request) {
	h.withInstant(w, r, func(now time.Time) (interface{}, error) {
		return h.svc.ApplySuggestion(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "suggestionID"), now)
	})
}

func (h *Handler) insertActivity(w http.ResponseWriter, r *http.Request) {
	var spec hotset.ActivitySpec
	if err := decodeJSON(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid activity: "+err.Error())
		return
	}
	h.withInstant(w, r, func(now time.Time) (interface{}, error) {
		return h.svc.InsertActivity(r.Context(), chi.URLParam(r, "sessionID"), spec, now)
	})
}

func (h *Handler) getSwapSuggestions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	out, err := h.svc.GetSwapSuggestions(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "sceneID"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if out == nil {
		out = []models.SwapSuggestion{}
	}
	writeJSON(w, http.StatusOK, out)
}

type swapRequest struct {
	SceneOutID      string `json:"scene_out_id"`
	SceneInID       string `json:"scene_in_id"`
	SourceSessionID string `json:"source_session_id"`
}

func (h *Handler) swapScenes(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid swap: "+err.Error())
		return
	}
	h.withInstant(w, r, func(now time.Time) (interface{}, error) {
		return h.svc.SwapScenes(r.Context(), chi.URLParam(r, "sessionID"), req.SceneOutID, req.SceneInID, req.SourceSessionID, now)
	})
}

func (h *Handler) startItem(w http.ResponseWriter, r *http.Request) {
	h.withInstant(w, r, func(now time.Time) (interface{}, error) {
		return h.svc.StartItem(r.Context(), chi.URLParam(r, "itemID"), now)
	})
}

type completeRequest struct {
	ActualMinutes *int `json:"actual_minutes,omitempty"`
}

func (h *Handler) completeItem(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	h.withInstant(w, r, func(now time.Time) (interface{}, error) {
		return h.svc.CompleteItem(r.Context(), chi.URLParam(r, "itemID"), req.ActualMinutes, now)
	})
}

type skipRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) skipItem(w http.ResponseWriter, r *http.Request) {
	var req skipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	h.withInstant(w, r, func(now time.Time) (interface{}, error) {
		return h.svc.SkipItem(r.Context(), chi.URLParam(r, "itemID"), req.Reason, now)
	})
}

type adjustRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (h *Handler) adjustBlock(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	h.withInstant(w, r, func(now time.Time) (interface{}, error) {
		return h.svc.AdjustBlockTime(r.Context(), chi.URLParam(r, "itemID"), req.Start.UTC(), req.End.UTC(), now)
	})
}

type moveRequest struct {
	AfterID string `json:"after_id"`
}

func (h *Handler) moveItem(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	h.withInstant(w, r, func(now time.Time) (interface{}, error) {
		return h.svc.MoveItem(r.Context(), chi.URLParam(r, "itemID"), req.AfterID, now)
	})
}

func (h *Handler) deleteBlock(w http.ResponseWriter, r *http.Request) {
	h.withInstant(w, r, func(now time.Time) (interface{}, error) {
		return h.svc.DeleteBlock(r.Context(), chi.URLParam(r, "itemID"), now)
	})
}
