package store

import (
	"database/sql"
	"fmt"
	"time"
)

// TripSession is one driver's execution record of one delivery plan.
// Milestone columns are set at most once; a session is active from origin
// arrival until destination arrival and is never deleted.
type TripSession struct {
	ID                   int64      `json:"id"`
	SessionUUID          string     `json:"session_uuid"`
	PlanID               int64      `json:"plan_id"`
	DriverID             int64      `json:"driver_id"`
	TruckID              int64      `json:"truck_id"`
	ArrivedOriginAt      *time.Time `json:"arrived_origin_at,omitempty"`
	DepartedOriginAt     *time.Time `json:"departed_origin_at,omitempty"`
	ArrivedDestinationAt *time.Time `json:"arrived_destination_at,omitempty"`
	Completed            bool       `json:"completed"`
	CreatedAt            time.Time  `json:"created_at"`
}

const sessionSelectCols = `id, session_uuid, plan_id, driver_id, truck_id, arrived_origin_at, departed_origin_at, arrived_destination_at, completed, created_at`

func scanSession(row interface{ Scan(...any) error }) (*TripSession, error) {
	var s TripSession
	var arrivedOrigin, departedOrigin, arrivedDest, createdAt any
	err := row.Scan(&s.ID, &s.SessionUUID, &s.PlanID, &s.DriverID, &s.TruckID,
		&arrivedOrigin, &departedOrigin, &arrivedDest, &s.Completed, &createdAt)
	if err != nil {
		return nil, err
	}
	s.ArrivedOriginAt = parseTimePtr(arrivedOrigin)
	s.DepartedOriginAt = parseTimePtr(departedOrigin)
	s.ArrivedDestinationAt = parseTimePtr(arrivedDest)
	s.CreatedAt = parseTime(createdAt)
	return &s, nil
}

func scanSessions(rows *sql.Rows) ([]*TripSession, error) {
	var sessions []*TripSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CreateTripSession inserts a session with its origin-arrival milestone
// already stamped. The partial unique index on (plan_id, driver_id) for
// non-completed sessions rejects a concurrent duplicate create.
func (db *DB) CreateTripSession(s *TripSession, arrivedOriginAt time.Time) error {
	id, err := db.insertID(db.Q(`INSERT INTO trip_sessions (session_uuid, plan_id, driver_id, truck_id, arrived_origin_at) VALUES (?, ?, ?, ?, ?)`),
		s.SessionUUID, s.PlanID, s.DriverID, s.TruckID, db.fmtTime(arrivedOriginAt))
	if err != nil {
		return fmt.Errorf("create trip session: %w", err)
	}
	s.ID = id
	t := arrivedOriginAt
	s.ArrivedOriginAt = &t
	return nil
}

func (db *DB) GetTripSession(id int64) (*TripSession, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM trip_sessions WHERE id=?`, sessionSelectCols)), id)
	return scanSession(row)
}

// GetActiveSession returns the non-completed session for a plan/driver pair,
// or sql.ErrNoRows when none exists.
func (db *DB) GetActiveSession(planID, driverID int64) (*TripSession, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM trip_sessions WHERE plan_id=? AND driver_id=? AND arrived_destination_at IS NULL ORDER BY created_at DESC, id DESC LIMIT 1`, sessionSelectCols)),
		planID, driverID)
	return scanSession(row)
}

// GetLatestSessionForPlan returns the most recent session for a plan
// across all drivers, or sql.ErrNoRows.
func (db *DB) GetLatestSessionForPlan(planID int64) (*TripSession, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM trip_sessions WHERE plan_id=? ORDER BY created_at DESC, id DESC LIMIT 1`, sessionSelectCols)),
		planID)
	return scanSession(row)
}

// GetLatestSessionForPlanDriver returns the most recent session for a
// plan/driver pair regardless of completion, or sql.ErrNoRows.
func (db *DB) GetLatestSessionForPlanDriver(planID, driverID int64) (*TripSession, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM trip_sessions WHERE plan_id=? AND driver_id=? ORDER BY created_at DESC, id DESC LIMIT 1`, sessionSelectCols)),
		planID, driverID)
	return scanSession(row)
}

// LatestSessionsForPlans returns the most recent session per plan id,
// ties broken by created_at then id. Drivers pass their own id to see only
// their sessions; other viewers pass 0 for all drivers.
func (db *DB) LatestSessionsForPlans(planIDs []int64, driverID int64) (map[int64]*TripSession, error) {
	result := make(map[int64]*TripSession, len(planIDs))
	if len(planIDs) == 0 {
		return result, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM trip_sessions WHERE plan_id IN (%s)`, sessionSelectCols, placeholders(len(planIDs)))
	args := make([]any, 0, len(planIDs)+1)
	for _, id := range planIDs {
		args = append(args, id)
	}
	if driverID != 0 {
		query += ` AND driver_id=?`
		args = append(args, driverID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.Query(db.Q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		if _, seen := result[s.PlanID]; !seen {
			result[s.PlanID] = s
		}
	}
	return result, nil
}

// SetOriginDeparture stamps departed_origin_at under a single-row conditional
// update: the session must have arrived at origin, not yet departed, and not
// be completed. Returns false when the transition was not legal.
func (db *DB) SetOriginDeparture(sessionID int64, at time.Time) (bool, error) {
	result, err := db.Exec(db.Q(`UPDATE trip_sessions SET departed_origin_at=? WHERE id=? AND arrived_origin_at IS NOT NULL AND departed_origin_at IS NULL AND arrived_destination_at IS NULL`),
		db.fmtTime(at), sessionID)
	if err != nil {
		return false, fmt.Errorf("set origin departure: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetDestinationArrival stamps arrived_destination_at and the completed flag
// under the same conditional discipline. Departure is not required: a driver
// may go straight from origin arrival to destination arrival.
func (db *DB) SetDestinationArrival(sessionID int64, at time.Time) (bool, error) {
	result, err := db.Exec(db.Q(`UPDATE trip_sessions SET arrived_destination_at=?, completed=? WHERE id=? AND arrived_origin_at IS NOT NULL AND arrived_destination_at IS NULL`),
		db.fmtTime(at), true, sessionID)
	if err != nil {
		return false, fmt.Errorf("set destination arrival: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	b := make([]byte, 0, n*2-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}
