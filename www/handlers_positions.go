package www

import (
	"net/http"
	"time"

	"github.com/Konlor08/PigOnTime/tracking"
)

type positionRequest struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Heading  *float64 `json:"heading,omitempty"`
	SpeedKmh *float64 `json:"speed_kmh,omitempty"`
	At       string   `json:"at,omitempty"`
}

// apiPostPosition runs a reading through the tracking coordinator. The
// driver comes from the session cookie, never from the body, so one
// device cannot report for another truck.
func (h *Handlers) apiPostPosition(w http.ResponseWriter, r *http.Request) {
	ident, _ := h.identity(r)
	var req positionRequest
	if err := decodeBody(r, &req); err != nil {
		h.jsonError(w, "bad request", http.StatusBadRequest)
		return
	}

	reading := tracking.Reading{
		DriverID: ident.UserID,
		Lat:      req.Lat,
		Lng:      req.Lng,
		Heading:  req.Heading,
		SpeedKmh: req.SpeedKmh,
	}
	if req.At != "" {
		if t, err := time.Parse(time.RFC3339, req.At); err == nil {
			reading.At = t.UTC()
		}
	}

	if err := h.engine.Tracker().HandleReading(reading); err != nil {
		h.tripError(w, err)
		return
	}
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiActiveTracking(w http.ResponseWriter, r *http.Request) {
	ident, _ := h.identity(r)
	sessionID, active := h.engine.Tracker().Active(ident.UserID)
	h.jsonOK(w, map[string]any{
		"active":     active,
		"session_id": sessionID,
	})
}
