package store

import (
	"database/sql"
	"fmt"
	"time"
)

// FactoryReceipt closes out a delivered plan with the clerk's counted head
// of livestock. One receipt per plan; re-confirmation overwrites the count.
type FactoryReceipt struct {
	ID          int64     `json:"id"`
	PlanID      int64     `json:"plan_id"`
	FactoryID   *int64    `json:"factory_id,omitempty"`
	ConfirmedBy *int64    `json:"confirmed_by,omitempty"`
	PigCount    int       `json:"pig_count"`
	ReceivedAt  time.Time `json:"received_at"`
}

// UpsertReceipt records or replaces the receipt for a plan.
func (db *DB) UpsertReceipt(r *FactoryReceipt) error {
	var factoryID, confirmedBy any
	if r.FactoryID != nil {
		factoryID = *r.FactoryID
	}
	if r.ConfirmedBy != nil {
		confirmedBy = *r.ConfirmedBy
	}
	result, err := db.Exec(db.Q(`UPDATE factory_receipts SET factory_id=?, confirmed_by=?, pig_count=?, received_at=? WHERE plan_id=?`),
		factoryID, confirmedBy, r.PigCount, db.fmtTime(time.Now().UTC()), r.PlanID)
	if err != nil {
		return fmt.Errorf("upsert receipt: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 1 {
		return nil
	}
	id, err := db.insertID(db.Q(`INSERT INTO factory_receipts (plan_id, factory_id, confirmed_by, pig_count) VALUES (?, ?, ?, ?)`),
		r.PlanID, factoryID, confirmedBy, r.PigCount)
	if err != nil {
		return fmt.Errorf("upsert receipt insert: %w", err)
	}
	r.ID = id
	return nil
}

func (db *DB) GetReceiptForPlan(planID int64) (*FactoryReceipt, error) {
	var r FactoryReceipt
	var factoryID, confirmedBy sql.NullInt64
	var receivedAt any
	err := db.QueryRow(db.Q(`SELECT id, plan_id, factory_id, confirmed_by, pig_count, received_at FROM factory_receipts WHERE plan_id=?`), planID).
		Scan(&r.ID, &r.PlanID, &factoryID, &confirmedBy, &r.PigCount, &receivedAt)
	if err != nil {
		return nil, err
	}
	if factoryID.Valid {
		r.FactoryID = &factoryID.Int64
	}
	if confirmedBy.Valid {
		r.ConfirmedBy = &confirmedBy.Int64
	}
	r.ReceivedAt = parseTime(receivedAt)
	return &r, nil
}
