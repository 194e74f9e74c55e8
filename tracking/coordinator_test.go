package tracking

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Konlor08/PigOnTime/config"
	"github.com/Konlor08/PigOnTime/geo"
	"github.com/Konlor08/PigOnTime/livepos"
	"github.com/Konlor08/PigOnTime/store"
)

type mockEmitter struct {
	mu       sync.Mutex
	started  int
	stopped  int
	accepted int
}

func (m *mockEmitter) EmitTrackingStarted(sessionID, driverID int64) {
	m.mu.Lock()
	m.started++
	m.mu.Unlock()
}

func (m *mockEmitter) EmitTrackingStopped(sessionID, driverID int64) {
	m.mu.Lock()
	m.stopped++
	m.mu.Unlock()
}

func (m *mockEmitter) EmitPositionAccepted(sessionID, planID, driverID int64, pt geo.Point, speedKmh, heading *float64, at time.Time) {
	m.mu.Lock()
	m.accepted++
	m.mu.Unlock()
}

func (m *mockEmitter) counts() (started, stopped, accepted int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started, m.stopped, m.accepted
}

type fixture struct {
	db      *store.DB
	coord   *Coordinator
	emitter *mockEmitter
	driver  *store.User
	session *store.TripSession
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := store.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	truck := &store.Truck{Plate: "TRK-200"}
	if err := db.CreateTruck(truck); err != nil {
		t.Fatalf("create truck: %v", err)
	}
	driver := &store.User{Username: "prasit", PasswordHash: "x", Role: store.RoleDriver}
	if err := db.CreateUser(driver); err != nil {
		t.Fatalf("create driver: %v", err)
	}
	plan := &store.DeliveryPlan{
		PlanUID:      "PLAN-T1",
		DeliveryDate: "2026-03-10",
		FarmName:     "Farm B",
		FactorySite:  "F1",
		Plate:        "TRK-200",
		Quantity:     80,
	}
	if err := db.UpsertPlan(plan); err != nil {
		t.Fatalf("upsert plan: %v", err)
	}
	session := &store.TripSession{
		SessionUUID: "s-uuid-1",
		PlanID:      plan.ID,
		DriverID:    driver.ID,
		TruckID:     truck.ID,
	}
	if err := db.CreateTripSession(session, time.Now().UTC()); err != nil {
		t.Fatalf("create session: %v", err)
	}

	emitter := &mockEmitter{}
	coord := NewCoordinator(db, livepos.NewManager(db, nil), emitter, 15)
	return &fixture{db: db, coord: coord, emitter: emitter, driver: driver, session: session}
}

func TestStartAndRestart(t *testing.T) {
	f := newFixture(t)

	if err := f.coord.Start(f.driver.ID, f.session.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if id, ok := f.coord.Active(f.driver.ID); !ok || id != f.session.ID {
		t.Errorf("active = (%d, %v), want (%d, true)", id, ok, f.session.ID)
	}

	// Same session again: no-op, no second started event.
	if err := f.coord.Start(f.driver.ID, f.session.ID); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if started, _, _ := f.emitter.counts(); started != 1 {
		t.Errorf("started events = %d, want 1", started)
	}
}

func TestSecondSessionRejected(t *testing.T) {
	f := newFixture(t)

	plan2 := &store.DeliveryPlan{
		PlanUID:      "PLAN-T2",
		DeliveryDate: "2026-03-11",
		FarmName:     "Farm C",
		FactorySite:  "F1",
		Plate:        "TRK-200",
		Quantity:     60,
	}
	if err := f.db.UpsertPlan(plan2); err != nil {
		t.Fatalf("upsert plan: %v", err)
	}
	s2 := &store.TripSession{
		SessionUUID: "s-uuid-2",
		PlanID:      plan2.ID,
		DriverID:    f.driver.ID,
		TruckID:     f.session.TruckID,
	}
	if err := f.db.CreateTripSession(s2, time.Now().UTC()); err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := f.coord.Start(f.driver.ID, f.session.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.coord.Start(f.driver.ID, s2.ID); !errors.Is(err, ErrAlreadyTracking) {
		t.Errorf("second session: got %v, want ErrAlreadyTracking", err)
	}
}

func TestMovementFilter(t *testing.T) {
	f := newFixture(t)
	if err := f.coord.Start(f.driver.ID, f.session.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// First reading always passes.
	if err := f.coord.HandleReading(Reading{DriverID: f.driver.ID, Lat: 14.0, Lng: 100.5}); err != nil {
		t.Fatalf("first reading: %v", err)
	}
	// ~7.8 m north: below the 15 m threshold, dropped.
	if err := f.coord.HandleReading(Reading{DriverID: f.driver.ID, Lat: 14.00007, Lng: 100.5}); err != nil {
		t.Fatalf("small move: %v", err)
	}
	// ~22 m north of the first sample: accepted.
	if err := f.coord.HandleReading(Reading{DriverID: f.driver.ID, Lat: 14.0002, Lng: 100.5}); err != nil {
		t.Fatalf("large move: %v", err)
	}
	f.coord.Flush()

	n, err := f.db.CountSamples(f.session.ID)
	if err != nil {
		t.Fatalf("count samples: %v", err)
	}
	if n != 2 {
		t.Errorf("persisted samples = %d, want 2", n)
	}
	if _, _, accepted := f.emitter.counts(); accepted != 2 {
		t.Errorf("accepted events = %d, want 2", accepted)
	}
}

func TestCorruptCoordinatesDroppedSilently(t *testing.T) {
	f := newFixture(t)
	if err := f.coord.Start(f.driver.ID, f.session.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Out-of-range latitude is discarded without failing the stream.
	if err := f.coord.HandleReading(Reading{DriverID: f.driver.ID, Lat: 95.0, Lng: 100.5}); err != nil {
		t.Errorf("out-of-range lat: got %v, want nil", err)
	}
	f.coord.Flush()
	if n, _ := f.db.CountSamples(f.session.ID); n != 0 {
		t.Errorf("persisted samples = %d, want 0", n)
	}

	// A sane reading right after still lands.
	if err := f.coord.HandleReading(Reading{DriverID: f.driver.ID, Lat: 14.0, Lng: 100.5}); err != nil {
		t.Fatalf("valid reading: %v", err)
	}
	f.coord.Flush()
	if n, _ := f.db.CountSamples(f.session.ID); n != 1 {
		t.Errorf("persisted samples = %d, want 1", n)
	}
}

func TestUnboundReadingDiscarded(t *testing.T) {
	f := newFixture(t)

	if err := f.coord.HandleReading(Reading{DriverID: f.driver.ID, Lat: 14.0, Lng: 100.5}); err != nil {
		t.Fatalf("unbound reading: %v", err)
	}
	f.coord.Flush()
	if n, _ := f.db.CountSamples(f.session.ID); n != 0 {
		t.Errorf("persisted samples = %d, want 0", n)
	}
}

func TestReadingAfterCompletionDiscarded(t *testing.T) {
	f := newFixture(t)
	if err := f.coord.Start(f.driver.ID, f.session.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	ok, err := f.db.SetDestinationArrival(f.session.ID, time.Now().UTC())
	if err != nil || !ok {
		t.Fatalf("complete session: ok=%v err=%v", ok, err)
	}

	// Binding still exists but the insert guard drops the sample.
	if err := f.coord.HandleReading(Reading{DriverID: f.driver.ID, Lat: 14.0, Lng: 100.5}); err != nil {
		t.Fatalf("late reading: %v", err)
	}
	f.coord.Flush()
	if n, _ := f.db.CountSamples(f.session.ID); n != 0 {
		t.Errorf("persisted samples = %d, want 0", n)
	}
	if _, _, accepted := f.emitter.counts(); accepted != 0 {
		t.Errorf("accepted events = %d, want 0", accepted)
	}
}

func TestStartClosedSession(t *testing.T) {
	f := newFixture(t)
	if ok, err := f.db.SetDestinationArrival(f.session.ID, time.Now().UTC()); err != nil || !ok {
		t.Fatalf("complete session: ok=%v err=%v", ok, err)
	}
	if err := f.coord.Start(f.driver.ID, f.session.ID); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("start closed: got %v, want ErrSessionClosed", err)
	}
}

func TestStop(t *testing.T) {
	f := newFixture(t)
	if err := f.coord.Start(f.driver.ID, f.session.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.coord.Stop(f.driver.ID)
	if _, ok := f.coord.Active(f.driver.ID); ok {
		t.Error("binding should be gone after stop")
	}
	if _, stopped, _ := f.emitter.counts(); stopped != 1 {
		t.Errorf("stopped events = %d, want 1", stopped)
	}

	// Stopping again is harmless.
	f.coord.Stop(f.driver.ID)
	if _, stopped, _ := f.emitter.counts(); stopped != 1 {
		t.Errorf("idempotent stop emitted again: %d", stopped)
	}
}
