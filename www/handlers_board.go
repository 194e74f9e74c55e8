package www

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Konlor08/PigOnTime/store"
)

func (h *Handlers) apiBoard(w http.ResponseWriter, r *http.Request) {
	ident, _ := h.identity(r)
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	rows, err := h.engine.Board().Query(ident, from, to)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiTrack(w http.ResponseWriter, r *http.Request) {
	ident, _ := h.identity(r)
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.jsonError(w, "bad session id", http.StatusBadRequest)
		return
	}
	if !h.canViewSession(ident.UserID, ident.Role, sessionID) {
		h.jsonError(w, "forbidden", http.StatusForbidden)
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	track, err := h.engine.DB().ListTrack(sessionID, limit)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, track)
}

func (h *Handlers) apiLatestPosition(w http.ResponseWriter, r *http.Request) {
	ident, _ := h.identity(r)
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.jsonError(w, "bad session id", http.StatusBadRequest)
		return
	}
	if !h.canViewSession(ident.UserID, ident.Role, sessionID) {
		h.jsonError(w, "forbidden", http.StatusForbidden)
		return
	}

	pos, err := h.engine.Live().Latest(sessionID)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if pos == nil {
		h.jsonError(w, "no position yet", http.StatusNotFound)
		return
	}
	h.jsonOK(w, pos)
}

// canViewSession keeps drivers inside their own trips. Supervisors,
// clerks, and managers watch the board, so they may open any session.
func (h *Handlers) canViewSession(userID int64, role string, sessionID int64) bool {
	if role != store.RoleDriver {
		return true
	}
	s, err := h.engine.DB().GetTripSession(sessionID)
	if err != nil {
		return false
	}
	return s.DriverID == userID
}

func (h *Handlers) apiListFarms(w http.ResponseWriter, r *http.Request) {
	farms, err := h.engine.DB().ListFarms()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, farms)
}

func (h *Handlers) apiListFactories(w http.ResponseWriter, r *http.Request) {
	factories, err := h.engine.DB().ListFactories()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, factories)
}
