package livepos

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/Konlor08/PigOnTime/store"
)

// Manager provides write-through live position state: SQL holds the
// durable track, Redis holds the newest point per session for fast
// board reads. A nil RedisStore means run without the cache; reads
// then come straight from SQL.
type Manager struct {
	db    *store.DB
	redis *RedisStore
}

func NewManager(db *store.DB, redis *RedisStore) *Manager {
	return &Manager{db: db, redis: redis}
}

// Update caches the newest accepted position for a session. Cache
// failures are logged, never fatal: the durable sample already landed
// in SQL.
func (m *Manager) Update(lp *LivePosition) {
	if m.redis == nil {
		return
	}
	if err := m.redis.SetLatest(context.Background(), lp); err != nil {
		log.Printf("livepos: cache session %d: %v", lp.SessionID, err)
	}
}

// Latest returns the newest position for a session, preferring Redis.
// Returns nil when the session has no positions yet.
func (m *Manager) Latest(sessionID int64) (*LivePosition, error) {
	if m.redis != nil {
		lp, err := m.redis.GetLatest(context.Background(), sessionID)
		if err == nil && lp != nil {
			return lp, nil
		}
		if err != nil {
			log.Printf("livepos: redis read session %d: %v", sessionID, err)
		}
	}
	return m.latestFromSQL(sessionID)
}

// Clear drops the cached position when a session closes.
func (m *Manager) Clear(sessionID int64) {
	if m.redis == nil {
		return
	}
	if err := m.redis.Clear(context.Background(), sessionID); err != nil {
		log.Printf("livepos: clear session %d: %v", sessionID, err)
	}
}

func (m *Manager) latestFromSQL(sessionID int64) (*LivePosition, error) {
	sample, err := m.db.LatestPositionForSession(sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s, err := m.db.GetTripSession(sessionID)
	if err != nil {
		return nil, err
	}
	return &LivePosition{
		SessionID:  sessionID,
		PlanID:     s.PlanID,
		DriverID:   s.DriverID,
		Lat:        sample.Lat,
		Lng:        sample.Lng,
		Heading:    sample.Heading,
		SpeedKmh:   sample.SpeedKmh,
		RecordedAt: sample.RecordedAt,
	}, nil
}
