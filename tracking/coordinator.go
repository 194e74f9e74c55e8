package tracking

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Konlor08/PigOnTime/geo"
	"github.com/Konlor08/PigOnTime/livepos"
	"github.com/Konlor08/PigOnTime/store"
)

var (
	// ErrAlreadyTracking indicates the driver already streams into a
	// different session. A driver runs at most one stream.
	ErrAlreadyTracking = errors.New("driver already tracking another session")

	// ErrSessionClosed indicates the session is completed and cannot
	// accept a stream.
	ErrSessionClosed = errors.New("session closed")
)

// Reading is one raw position report from a driver device.
type Reading struct {
	DriverID int64     `json:"driver_id"`
	Lat      float64   `json:"lat"`
	Lng      float64   `json:"lng"`
	Heading  *float64  `json:"heading,omitempty"`
	SpeedKmh *float64  `json:"speed_kmh,omitempty"`
	At       time.Time `json:"at"`
}

type binding struct {
	sessionID int64
	planID    int64
	last      *geo.Point
}

// Coordinator binds driver position streams to trip sessions and runs
// the movement filter. Each driver has at most one binding; readings
// for unbound drivers are dropped. Accepted samples persist
// asynchronously so a slow database never blocks the ingest path.
type Coordinator struct {
	db            *store.DB
	live          *livepos.Manager
	emitter       EventEmitter
	minMoveMeters float64

	mu       sync.Mutex
	bindings map[int64]*binding

	wg  sync.WaitGroup
	now func() time.Time
}

// NewCoordinator creates a tracking coordinator.
func NewCoordinator(db *store.DB, live *livepos.Manager, emitter EventEmitter, minMoveMeters float64) *Coordinator {
	return &Coordinator{
		db:            db,
		live:          live,
		emitter:       emitter,
		minMoveMeters: minMoveMeters,
		bindings:      make(map[int64]*binding),
		now:           time.Now,
	}
}

// Start binds a driver's stream to a session. Re-starting the same
// session is a no-op; a different open session for the same driver is
// rejected.
func (c *Coordinator) Start(driverID, sessionID int64) error {
	s, err := c.db.GetTripSession(sessionID)
	if err != nil {
		return fmt.Errorf("get session %d: %w", sessionID, err)
	}
	if s.DriverID != driverID {
		return fmt.Errorf("session %d belongs to driver %d", sessionID, s.DriverID)
	}
	if s.Completed || s.ArrivedDestinationAt != nil {
		return fmt.Errorf("session %d: %w", sessionID, ErrSessionClosed)
	}

	c.mu.Lock()
	if b, ok := c.bindings[driverID]; ok {
		c.mu.Unlock()
		if b.sessionID == sessionID {
			return nil
		}
		return fmt.Errorf("driver %d streams session %d: %w", driverID, b.sessionID, ErrAlreadyTracking)
	}
	c.bindings[driverID] = &binding{sessionID: sessionID, planID: s.PlanID}
	c.mu.Unlock()

	c.emitter.EmitTrackingStarted(sessionID, driverID)
	return nil
}

// Stop unbinds a driver's stream. Safe to call when no stream exists.
func (c *Coordinator) Stop(driverID int64) {
	c.mu.Lock()
	b, ok := c.bindings[driverID]
	if ok {
		delete(c.bindings, driverID)
	}
	c.mu.Unlock()
	if !ok {
		return
	}

	c.live.Clear(b.sessionID)
	c.emitter.EmitTrackingStopped(b.sessionID, driverID)
}

// Active returns the session a driver currently streams into.
func (c *Coordinator) Active(driverID int64) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bindings[driverID]
	if !ok {
		return 0, false
	}
	return b.sessionID, true
}

// HandleReading runs one raw reading through validation and the
// movement filter. Corrupt coordinates and readings from unbound
// drivers are dropped without error: GPS units glitch, and devices
// keep reporting briefly after a trip closes.
func (c *Coordinator) HandleReading(r Reading) error {
	pt := geo.Point{Lat: r.Lat, Lng: r.Lng}
	if !pt.Valid() {
		log.Printf("tracking: dropping corrupt reading for driver %d (%f, %f)", r.DriverID, r.Lat, r.Lng)
		return nil
	}

	c.mu.Lock()
	b, ok := c.bindings[r.DriverID]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	if b.last != nil && geo.DistanceKm(*b.last, pt)*1000 < c.minMoveMeters {
		c.mu.Unlock()
		return nil
	}
	last := pt
	b.last = &last
	sessionID, planID := b.sessionID, b.planID
	c.mu.Unlock()

	at := r.At
	if at.IsZero() {
		at = c.now().UTC()
	}

	c.wg.Add(1)
	go c.persist(sessionID, planID, r, pt, at)
	return nil
}

// persist writes one accepted sample. The insert is guarded on the
// session still being open, so a sample racing trip completion lands
// nowhere instead of on a closed trip.
func (c *Coordinator) persist(sessionID, planID int64, r Reading, pt geo.Point, at time.Time) {
	defer c.wg.Done()

	inserted, err := c.db.InsertPositionSample(&store.PositionSample{
		SessionID:  sessionID,
		Lat:        pt.Lat,
		Lng:        pt.Lng,
		Heading:    r.Heading,
		SpeedKmh:   r.SpeedKmh,
		RecordedAt: at,
	})
	if err != nil {
		log.Printf("tracking: persist sample for session %d: %v", sessionID, err)
		return
	}
	if !inserted {
		return
	}

	c.live.Update(&livepos.LivePosition{
		SessionID:  sessionID,
		PlanID:     planID,
		DriverID:   r.DriverID,
		Lat:        pt.Lat,
		Lng:        pt.Lng,
		Heading:    r.Heading,
		SpeedKmh:   r.SpeedKmh,
		RecordedAt: at,
	})
	c.emitter.EmitPositionAccepted(sessionID, planID, r.DriverID, pt, r.SpeedKmh, r.Heading, at)
}

// Flush waits for in-flight sample writes. Called on shutdown.
func (c *Coordinator) Flush() {
	c.wg.Wait()
}
