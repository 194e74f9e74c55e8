package store

import (
	"database/sql"
	"fmt"
	"time"
)

// PositionSample is one accepted location reading tied to a trip session.
// Append-only, ordered by recorded_at.
type PositionSample struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"session_id"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Heading    *float64  `json:"heading,omitempty"`
	SpeedKmh   *float64  `json:"speed_kmh,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

const sampleSelectCols = `id, session_id, lat, lng, heading, speed_kmh, recorded_at`

func scanSample(row interface{ Scan(...any) error }) (*PositionSample, error) {
	var p PositionSample
	var heading, speed sql.NullFloat64
	var recordedAt any
	err := row.Scan(&p.ID, &p.SessionID, &p.Lat, &p.Lng, &heading, &speed, &recordedAt)
	if err != nil {
		return nil, err
	}
	if heading.Valid {
		p.Heading = &heading.Float64
	}
	if speed.Valid {
		p.SpeedKmh = &speed.Float64
	}
	p.RecordedAt = parseTime(recordedAt)
	return &p, nil
}

// InsertPositionSample appends a sample for an active session. The INSERT is
// conditioned on the session having arrived at origin and not yet at the
// destination, so a late reading after completion never lands a row.
// Returns false when the session was not active.
func (db *DB) InsertPositionSample(p *PositionSample) (bool, error) {
	var heading, speed any
	if p.Heading != nil {
		heading = *p.Heading
	}
	if p.SpeedKmh != nil {
		speed = *p.SpeedKmh
	}
	result, err := db.Exec(db.Q(`INSERT INTO position_samples (session_id, lat, lng, heading, speed_kmh, recorded_at)
SELECT id, ?, ?, ?, ?, ? FROM trip_sessions WHERE id=? AND arrived_origin_at IS NOT NULL AND arrived_destination_at IS NULL`),
		p.Lat, p.Lng, heading, speed, db.fmtTime(p.RecordedAt), p.SessionID)
	if err != nil {
		return false, fmt.Errorf("insert position sample: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// LatestPositionForSession returns the sample with the greatest recorded_at,
// or sql.ErrNoRows when the session has none.
func (db *DB) LatestPositionForSession(sessionID int64) (*PositionSample, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM position_samples WHERE session_id=? ORDER BY recorded_at DESC, id DESC LIMIT 1`, sampleSelectCols)),
		sessionID)
	return scanSample(row)
}

// ListTrack returns a session's samples in recorded order for map polylines.
func (db *DB) ListTrack(sessionID int64, limit int) ([]*PositionSample, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM position_samples WHERE session_id=? ORDER BY recorded_at ASC, id ASC LIMIT ?`, sampleSelectCols)),
		sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var samples []*PositionSample
	for rows.Next() {
		p, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, p)
	}
	return samples, rows.Err()
}

// CountSamples reports how many samples a session has accumulated.
func (db *DB) CountSamples(sessionID int64) (int, error) {
	var n int
	err := db.QueryRow(db.Q(`SELECT COUNT(*) FROM position_samples WHERE session_id=?`), sessionID).Scan(&n)
	return n, err
}
