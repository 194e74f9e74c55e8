package www

import "net/http"

type arriveOriginRequest struct {
	PlanID int64 `json:"plan_id"`
}

type sessionRequest struct {
	SessionID int64 `json:"session_id"`
}

func (h *Handlers) apiArriveOrigin(w http.ResponseWriter, r *http.Request) {
	ident, _ := h.identity(r)
	var req arriveOriginRequest
	if err := decodeBody(r, &req); err != nil || req.PlanID == 0 {
		h.jsonError(w, "plan_id required", http.StatusBadRequest)
		return
	}

	s, err := h.engine.Trips().RecordOriginArrival(ident.UserID, req.PlanID)
	if err != nil {
		h.tripError(w, err)
		return
	}
	h.jsonOK(w, s)
}

func (h *Handlers) apiDepartOrigin(w http.ResponseWriter, r *http.Request) {
	ident, _ := h.identity(r)
	var req sessionRequest
	if err := decodeBody(r, &req); err != nil || req.SessionID == 0 {
		h.jsonError(w, "session_id required", http.StatusBadRequest)
		return
	}

	s, err := h.engine.Trips().RecordOriginDeparture(ident.UserID, req.SessionID)
	if err != nil {
		h.tripError(w, err)
		return
	}
	h.jsonOK(w, s)
}

func (h *Handlers) apiArriveDestination(w http.ResponseWriter, r *http.Request) {
	ident, _ := h.identity(r)
	var req sessionRequest
	if err := decodeBody(r, &req); err != nil || req.SessionID == 0 {
		h.jsonError(w, "session_id required", http.StatusBadRequest)
		return
	}

	s, err := h.engine.Trips().RecordDestinationArrival(ident.UserID, req.SessionID)
	if err != nil {
		h.tripError(w, err)
		return
	}
	h.jsonOK(w, s)
}
