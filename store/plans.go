package store

import (
	"database/sql"
	"fmt"
	"time"
)

// DeliveryPlan is a shipment row from the planning feed. Read-only to this
// service except for upserts driven by the feed itself.
type DeliveryPlan struct {
	ID           int64     `json:"id"`
	PlanUID      string    `json:"plan_uid"`
	DeliveryDate string    `json:"delivery_date"` // YYYY-MM-DD
	DeliveryTime string    `json:"delivery_time"` // HH:MM, informative only
	FarmID       *int64    `json:"farm_id,omitempty"`
	FarmName     string    `json:"farm_name"`
	FactorySite  string    `json:"factory_site"`
	Plate        string    `json:"plate"`
	Quantity     int       `json:"quantity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const planSelectCols = `id, plan_uid, delivery_date, delivery_time, farm_id, farm_name, factory_site, plate, quantity, created_at, updated_at`

func scanPlan(row interface{ Scan(...any) error }) (*DeliveryPlan, error) {
	var p DeliveryPlan
	var farmID sql.NullInt64
	var createdAt, updatedAt any
	err := row.Scan(&p.ID, &p.PlanUID, &p.DeliveryDate, &p.DeliveryTime,
		&farmID, &p.FarmName, &p.FactorySite, &p.Plate, &p.Quantity, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if farmID.Valid {
		p.FarmID = &farmID.Int64
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func scanPlans(rows *sql.Rows) ([]*DeliveryPlan, error) {
	var plans []*DeliveryPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// UpsertPlan inserts or refreshes a plan keyed by its feed uid.
func (db *DB) UpsertPlan(p *DeliveryPlan) error {
	var farmID any
	if p.FarmID != nil {
		farmID = *p.FarmID
	}
	result, err := db.Exec(db.Q(`UPDATE delivery_plans SET delivery_date=?, delivery_time=?, farm_id=?, farm_name=?, factory_site=?, plate=?, quantity=?, updated_at=datetime('now','localtime') WHERE plan_uid=?`),
		p.DeliveryDate, p.DeliveryTime, farmID, p.FarmName, p.FactorySite, p.Plate, p.Quantity, p.PlanUID)
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 1 {
		row := db.QueryRow(db.Q(`SELECT id FROM delivery_plans WHERE plan_uid=?`), p.PlanUID)
		return row.Scan(&p.ID)
	}
	id, err := db.insertID(db.Q(`INSERT INTO delivery_plans (plan_uid, delivery_date, delivery_time, farm_id, farm_name, factory_site, plate, quantity) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		p.PlanUID, p.DeliveryDate, p.DeliveryTime, farmID, p.FarmName, p.FactorySite, p.Plate, p.Quantity)
	if err != nil {
		return fmt.Errorf("upsert plan insert: %w", err)
	}
	p.ID = id
	return nil
}

func (db *DB) GetPlan(id int64) (*DeliveryPlan, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM delivery_plans WHERE id=?`, planSelectCols)), id)
	return scanPlan(row)
}

// ListPlansInRange returns plans whose delivery_date falls in [from, to],
// both YYYY-MM-DD inclusive.
func (db *DB) ListPlansInRange(from, to string) ([]*DeliveryPlan, error) {
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM delivery_plans WHERE delivery_date >= ? AND delivery_date <= ? ORDER BY delivery_date, delivery_time`, planSelectCols)),
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlans(rows)
}

// ListPlansForPlates restricts the range query to a set of vehicle plates
// (the driver view: plans for trucks the driver is assigned to).
func (db *DB) ListPlansForPlates(from, to string, plates []string) ([]*DeliveryPlan, error) {
	if len(plates) == 0 {
		return nil, nil
	}
	args := []any{from, to}
	for _, plate := range plates {
		args = append(args, plate)
	}
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM delivery_plans WHERE delivery_date >= ? AND delivery_date <= ? AND plate IN (%s) ORDER BY delivery_date, delivery_time`,
		planSelectCols, placeholders(len(plates)))), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlans(rows)
}

// ListPlansForFarms restricts the range query to a set of farm ids
// (the farm-supervisor view).
func (db *DB) ListPlansForFarms(from, to string, farmIDs []int64) ([]*DeliveryPlan, error) {
	if len(farmIDs) == 0 {
		return nil, nil
	}
	args := []any{from, to}
	for _, id := range farmIDs {
		args = append(args, id)
	}
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM delivery_plans WHERE delivery_date >= ? AND delivery_date <= ? AND farm_id IN (%s) ORDER BY delivery_date, delivery_time`,
		planSelectCols, placeholders(len(farmIDs)))), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlans(rows)
}

// ListPlansForSites restricts the range query to a set of factory sites
// (the receiving-clerk view).
func (db *DB) ListPlansForSites(from, to string, sites []string) ([]*DeliveryPlan, error) {
	if len(sites) == 0 {
		return nil, nil
	}
	args := []any{from, to}
	for _, site := range sites {
		args = append(args, site)
	}
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM delivery_plans WHERE delivery_date >= ? AND delivery_date <= ? AND factory_site IN (%s) ORDER BY delivery_date, delivery_time`,
		planSelectCols, placeholders(len(sites)))), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlans(rows)
}
