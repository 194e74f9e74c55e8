package trip

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Konlor08/PigOnTime/store"
)

// Manager handles the trip lifecycle state machine. Milestones only
// move forward: origin arrival, optional origin departure, destination
// arrival. Each stamp is guarded by a conditional update so concurrent
// requests cannot double-stamp a session.
type Manager struct {
	db            *store.DB
	emitter       EventEmitter
	stationID     string
	topic         string
	lookaheadDays int
	now           func() time.Time
}

// NewManager creates a trip manager.
func NewManager(db *store.DB, emitter EventEmitter, stationID, topic string, lookaheadDays int) *Manager {
	return &Manager{
		db:            db,
		emitter:       emitter,
		stationID:     stationID,
		topic:         topic,
		lookaheadDays: lookaheadDays,
		now:           time.Now,
	}
}

// RecordOriginArrival stamps origin arrival for a plan and opens a new
// session. If the driver already has an open session for the plan that
// has not departed yet it is returned unchanged and tracking rebinds,
// so repeated taps are harmless. Once departed the call fails with
// ErrInvalidState.
func (m *Manager) RecordOriginArrival(driverID, planID int64) (*store.TripSession, error) {
	plan, err := m.db.GetPlan(planID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan %d: %w", planID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get plan %d: %w", planID, err)
	}

	if err := m.checkWindow(plan.DeliveryDate); err != nil {
		return nil, err
	}
	if err := m.checkPlate(driverID, plan.Plate); err != nil {
		return nil, err
	}

	if existing, err := m.db.GetActiveSession(planID, driverID); err == nil {
		if existing.DepartedOriginAt != nil {
			return nil, fmt.Errorf("session %d already departed: %w", existing.ID, ErrInvalidState)
		}
		// Re-emit so the position stream rebinds after a logout or restart.
		at := m.now().UTC()
		if existing.ArrivedOriginAt != nil {
			at = *existing.ArrivedOriginAt
		}
		m.emitter.EmitMilestoneRecorded(existing.ID, planID, driverID, MilestoneArrivedOrigin, at)
		return existing, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get active session: %w", err)
	}

	truck, err := m.db.GetTruckByPlate(plan.Plate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("truck %s: %w", plan.Plate, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get truck %s: %w", plan.Plate, err)
	}

	now := m.now().UTC()
	s := &store.TripSession{
		SessionUUID: uuid.New().String(),
		PlanID:      planID,
		DriverID:    driverID,
		TruckID:     truck.ID,
	}
	if err := m.db.CreateTripSession(s, now); err != nil {
		// Lost the race to another request for the same plan+driver.
		if existing, gerr := m.db.GetActiveSession(planID, driverID); gerr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	m.publishMilestone(s, plan, MilestoneArrivedOrigin, now)
	m.emitter.EmitMilestoneRecorded(s.ID, planID, driverID, MilestoneArrivedOrigin, now)

	return m.db.GetTripSession(s.ID)
}

// RecordOriginDeparture stamps origin departure for an open session.
func (m *Manager) RecordOriginDeparture(driverID, sessionID int64) (*store.TripSession, error) {
	s, plan, err := m.loadOpenSession(driverID, sessionID)
	if err != nil {
		return nil, err
	}
	if s.DepartedOriginAt != nil {
		return nil, fmt.Errorf("session %d already departed: %w", sessionID, ErrInvalidState)
	}

	now := m.now().UTC()
	ok, err := m.db.SetOriginDeparture(sessionID, now)
	if err != nil {
		return nil, fmt.Errorf("set origin departure: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("session %d: %w", sessionID, ErrInvalidState)
	}

	m.publishMilestone(s, plan, MilestoneDepartedOrigin, now)
	m.emitter.EmitMilestoneRecorded(s.ID, s.PlanID, driverID, MilestoneDepartedOrigin, now)

	return m.db.GetTripSession(sessionID)
}

// RecordDestinationArrival stamps destination arrival and closes the
// session. Departure is optional: a driver may go straight from origin
// arrival to destination arrival.
func (m *Manager) RecordDestinationArrival(driverID, sessionID int64) (*store.TripSession, error) {
	s, plan, err := m.loadOpenSession(driverID, sessionID)
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	ok, err := m.db.SetDestinationArrival(sessionID, now)
	if err != nil {
		return nil, fmt.Errorf("set destination arrival: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("session %d: %w", sessionID, ErrInvalidState)
	}

	m.publishMilestone(s, plan, MilestoneArrivedDestination, now)
	m.emitter.EmitMilestoneRecorded(s.ID, s.PlanID, driverID, MilestoneArrivedDestination, now)
	m.emitter.EmitTripCompleted(s.ID, s.PlanID, driverID, now)

	return m.db.GetTripSession(sessionID)
}

// loadOpenSession fetches a session, verifies ownership, and rejects
// completed trips. Also re-checks the look-ahead window so a stale
// session cannot be advanced on a plan that slid out of range.
func (m *Manager) loadOpenSession(driverID, sessionID int64) (*store.TripSession, *store.DeliveryPlan, error) {
	s, err := m.db.GetTripSession(sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get session %d: %w", sessionID, err)
	}
	if s.DriverID != driverID {
		return nil, nil, fmt.Errorf("session %d: %w", sessionID, ErrForbidden)
	}
	if s.Completed || s.ArrivedDestinationAt != nil {
		return nil, nil, fmt.Errorf("session %d completed: %w", sessionID, ErrInvalidState)
	}

	plan, err := m.db.GetPlan(s.PlanID)
	if err != nil {
		return nil, nil, fmt.Errorf("get plan %d: %w", s.PlanID, err)
	}
	if err := m.checkWindow(plan.DeliveryDate); err != nil {
		return nil, nil, err
	}
	return s, plan, nil
}

// checkWindow rejects plans dated more than lookaheadDays ahead of
// today. Past dates stay actionable: a late trip still has to finish.
func (m *Manager) checkWindow(deliveryDate string) error {
	d, err := time.Parse("2006-01-02", deliveryDate)
	if err != nil {
		return fmt.Errorf("parse delivery date %q: %w", deliveryDate, err)
	}
	now := m.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.After(today.AddDate(0, 0, m.lookaheadDays)) {
		return fmt.Errorf("delivery date %s: %w", deliveryDate, ErrTooEarly)
	}
	return nil
}

// checkPlate verifies the driver is assigned the plan's truck.
func (m *Manager) checkPlate(driverID int64, plate string) error {
	plates, err := m.db.TruckPlatesForDriver(driverID)
	if err != nil {
		return fmt.Errorf("list plates for driver %d: %w", driverID, err)
	}
	for _, p := range plates {
		if p == plate {
			return nil
		}
	}
	return fmt.Errorf("driver %d not assigned plate %s: %w", driverID, plate, ErrForbidden)
}

func (m *Manager) publishMilestone(s *store.TripSession, plan *store.DeliveryPlan, milestone string, at time.Time) {
	msg := TripEventMessage{
		StationID:   m.stationID,
		SessionUUID: s.SessionUUID,
		PlanUID:     plan.PlanUID,
		Plate:       plan.Plate,
		Milestone:   milestone,
		Timestamp:   at.Format(time.RFC3339),
	}
	payload, _ := json.Marshal(msg)
	if _, err := m.db.EnqueueOutbox(m.topic, payload, "trip_event", m.stationID); err != nil {
		log.Printf("trip: enqueue %s for session %s: %v", milestone, s.SessionUUID, err)
	}
}
