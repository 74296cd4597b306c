package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	apperr "github.com/julianstephens/hotset/internal/errors"
	"github.com/julianstephens/hotset/internal/logger"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}

// statusFor maps the error taxonomy onto HTTP status codes. A rolled back
// swap is reported by the status of the side's own failure.
func statusFor(err error) int {
	switch {
	case apperr.IsConflict(err):
		return http.StatusConflict
	case apperr.IsNotFound(err):
		return http.StatusNotFound
	case apperr.IsInvalidState(err), apperr.IsValidation(err):
		return http.StatusUnprocessableEntity
	case apperr.IsCrossDay(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "id", requestID(r), "path", r.URL.Path, "error", err)
		writeError(w, status, apperr.Kind(err), "internal server error")
		return
	}
	writeError(w, status, apperr.Kind(err), err.Error())
}

// decodeJSON reads an optional JSON body. An empty body leaves v unchanged.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// instant is the request's "now": the at query parameter (RFC 3339) when
// given, else the server clock.
func (h *Handler) instant(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("at")
	if raw == "" {
		return h.now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid at parameter %q: want RFC 3339", raw)
	}
	return t.UTC(), nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter %q", key, raw)
	}
	return n, nil
}
