package www

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Konlor08/PigOnTime/engine"
	"github.com/Konlor08/PigOnTime/store"
	"github.com/Konlor08/PigOnTime/trip"
)

type receiptRequest struct {
	PlanID   int64 `json:"plan_id"`
	PigCount int   `json:"pig_count"`
}

// apiConfirmReceipt records the head count a clerk verified at the
// factory gate. The trip must have reached its destination first.
func (h *Handlers) apiConfirmReceipt(w http.ResponseWriter, r *http.Request) {
	ident, _ := h.identity(r)
	var req receiptRequest
	if err := decodeBody(r, &req); err != nil || req.PlanID == 0 {
		h.jsonError(w, "plan_id required", http.StatusBadRequest)
		return
	}
	if req.PigCount < 0 {
		h.jsonError(w, "pig_count must not be negative", http.StatusBadRequest)
		return
	}

	db := h.engine.DB()
	plan, err := db.GetPlan(req.PlanID)
	if errors.Is(err, sql.ErrNoRows) {
		h.jsonError(w, "plan not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if ident.Role == store.RoleFactory && !h.clerkHasSite(ident.UserID, plan.FactorySite) {
		h.jsonError(w, "forbidden", http.StatusForbidden)
		return
	}

	latest, err := db.GetLatestSessionForPlan(plan.ID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && trip.StatusOf(latest) != trip.StatusArrivedDestination) {
		h.jsonError(w, "trip has not arrived at destination", http.StatusConflict)
		return
	}
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	receipt := &store.FactoryReceipt{
		PlanID:      plan.ID,
		ConfirmedBy: &ident.UserID,
		PigCount:    req.PigCount,
	}
	if f, err := db.GetFactoryBySite(plan.FactorySite); err == nil {
		receipt.FactoryID = &f.ID
	}
	if err := db.UpsertReceipt(receipt); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.engine.Events.Emit(engine.Event{Type: engine.EventReceiptConfirmed, Payload: engine.ReceiptConfirmedEvent{
		PlanID: plan.ID, ConfirmedBy: ident.UserID, PigCount: req.PigCount, At: time.Now().UTC(),
	}})

	h.jsonOK(w, receipt)
}

func (h *Handlers) clerkHasSite(userID int64, site string) bool {
	sites, err := h.engine.DB().SitesForUser(userID)
	if err != nil {
		return false
	}
	for _, s := range sites {
		if s == site {
			return true
		}
	}
	return false
}
