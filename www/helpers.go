package www

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Konlor08/PigOnTime/tracking"
	"github.com/Konlor08/PigOnTime/trip"
)

func (h *Handlers) jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// tripError maps domain sentinels onto HTTP statuses.
func (h *Handlers) tripError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, trip.ErrNotFound):
		h.jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, trip.ErrForbidden):
		h.jsonError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, trip.ErrInvalidState), errors.Is(err, tracking.ErrAlreadyTracking), errors.Is(err, tracking.ErrSessionClosed):
		h.jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, trip.ErrTooEarly):
		h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
