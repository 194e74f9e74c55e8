package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Konlor08/PigOnTime/config"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// --- Plan tests ---

func TestPlanUpsert(t *testing.T) {
	db := testDB(t)

	p := &DeliveryPlan{
		PlanUID:      "P-1",
		DeliveryDate: "2026-03-10",
		DeliveryTime: "05:30",
		FarmName:     "Farm A",
		FactorySite:  "F1",
		Plate:        "TRK-1",
		Quantity:     120,
	}
	if err := db.UpsertPlan(p); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("ID should be assigned")
	}

	got, err := db.GetPlan(p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PlanUID != "P-1" || got.Quantity != 120 {
		t.Errorf("got %+v", got)
	}

	// Repeat with the same UID updates, not duplicates.
	p2 := &DeliveryPlan{
		PlanUID:      "P-1",
		DeliveryDate: "2026-03-11",
		FarmName:     "Farm A",
		FactorySite:  "F1",
		Plate:        "TRK-2",
		Quantity:     90,
	}
	if err := db.UpsertPlan(p2); err != nil {
		t.Fatalf("upsert repeat: %v", err)
	}
	if p2.ID != p.ID {
		t.Errorf("repeat upsert created new row: %d != %d", p2.ID, p.ID)
	}
	got, _ = db.GetPlan(p.ID)
	if got.DeliveryDate != "2026-03-11" || got.Plate != "TRK-2" || got.Quantity != 90 {
		t.Errorf("after update: %+v", got)
	}
}

func TestPlanRangeAndScopeQueries(t *testing.T) {
	db := testDB(t)

	farm := &Farm{Plant: "P", Branch: "B", House: "1", Name: "Farm A"}
	if err := db.CreateFarm(farm); err != nil {
		t.Fatalf("create farm: %v", err)
	}

	seed := []*DeliveryPlan{
		{PlanUID: "P-1", DeliveryDate: "2026-03-09", FarmID: &farm.ID, FarmName: "Farm A", FactorySite: "F1", Plate: "TRK-1", Quantity: 10},
		{PlanUID: "P-2", DeliveryDate: "2026-03-10", FarmID: &farm.ID, FarmName: "Farm A", FactorySite: "F2", Plate: "TRK-2", Quantity: 20},
		{PlanUID: "P-3", DeliveryDate: "2026-03-12", FarmName: "Farm B", FactorySite: "F1", Plate: "TRK-1", Quantity: 30},
	}
	for _, p := range seed {
		if err := db.UpsertPlan(p); err != nil {
			t.Fatalf("upsert %s: %v", p.PlanUID, err)
		}
	}

	all, err := db.ListPlansInRange("2026-03-10", "2026-03-12")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("range rows = %d, want 2", len(all))
	}

	byPlate, err := db.ListPlansForPlates("2026-03-01", "2026-03-31", []string{"TRK-1"})
	if err != nil {
		t.Fatalf("plates: %v", err)
	}
	if len(byPlate) != 2 {
		t.Errorf("plate rows = %d, want 2", len(byPlate))
	}

	byFarm, err := db.ListPlansForFarms("2026-03-01", "2026-03-31", []int64{farm.ID})
	if err != nil {
		t.Fatalf("farms: %v", err)
	}
	if len(byFarm) != 2 {
		t.Errorf("farm rows = %d, want 2", len(byFarm))
	}

	bySite, err := db.ListPlansForSites("2026-03-01", "2026-03-31", []string{"F2"})
	if err != nil {
		t.Fatalf("sites: %v", err)
	}
	if len(bySite) != 1 || bySite[0].PlanUID != "P-2" {
		t.Errorf("site rows = %+v", bySite)
	}

	// Empty scope lists return nothing, not everything.
	none, err := db.ListPlansForPlates("2026-03-01", "2026-03-31", nil)
	if err != nil {
		t.Fatalf("empty plates: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("empty scope rows = %d, want 0", len(none))
	}
}

// --- Session tests ---

func seedSession(t *testing.T, db *DB) *TripSession {
	t.Helper()
	truck := &Truck{Plate: "TRK-1"}
	if err := db.CreateTruck(truck); err != nil {
		t.Fatalf("create truck: %v", err)
	}
	driver := &User{Username: "d1", PasswordHash: "x", Role: RoleDriver}
	if err := db.CreateUser(driver); err != nil {
		t.Fatalf("create driver: %v", err)
	}
	plan := &DeliveryPlan{PlanUID: "P-1", DeliveryDate: "2026-03-10", FarmName: "Farm A", FactorySite: "F1", Plate: "TRK-1", Quantity: 10}
	if err := db.UpsertPlan(plan); err != nil {
		t.Fatalf("upsert plan: %v", err)
	}
	s := &TripSession{SessionUUID: "u-1", PlanID: plan.ID, DriverID: driver.ID, TruckID: truck.ID}
	if err := db.CreateTripSession(s, time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func TestSessionMilestoneTransitions(t *testing.T) {
	db := testDB(t)
	s := seedSession(t, db)

	got, err := db.GetTripSession(s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ArrivedOriginAt == nil || got.DepartedOriginAt != nil || got.Completed {
		t.Errorf("fresh session: %+v", got)
	}

	ok, err := db.SetOriginDeparture(s.ID, time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC))
	if err != nil || !ok {
		t.Fatalf("depart: ok=%v err=%v", ok, err)
	}
	// Second departure is rejected by the conditional update.
	ok, err = db.SetOriginDeparture(s.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("repeat depart: %v", err)
	}
	if ok {
		t.Error("second departure should not stamp")
	}

	ok, err = db.SetDestinationArrival(s.ID, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	if err != nil || !ok {
		t.Fatalf("arrive dest: ok=%v err=%v", ok, err)
	}
	got, _ = db.GetTripSession(s.ID)
	if !got.Completed || got.ArrivedDestinationAt == nil {
		t.Errorf("after completion: %+v", got)
	}

	// Completed sessions accept no more stamps.
	if ok, _ := db.SetOriginDeparture(s.ID, time.Now().UTC()); ok {
		t.Error("departure after completion should not stamp")
	}
	if ok, _ := db.SetDestinationArrival(s.ID, time.Now().UTC()); ok {
		t.Error("repeat destination should not stamp")
	}
}

func TestActiveSessionUniquePerPlanDriver(t *testing.T) {
	db := testDB(t)
	s := seedSession(t, db)

	dup := &TripSession{SessionUUID: "u-2", PlanID: s.PlanID, DriverID: s.DriverID, TruckID: s.TruckID}
	if err := db.CreateTripSession(dup, time.Now().UTC()); err == nil {
		t.Fatal("second open session for same plan+driver should fail")
	}

	// After completion a new session is allowed.
	if ok, err := db.SetDestinationArrival(s.ID, time.Now().UTC()); err != nil || !ok {
		t.Fatalf("complete: ok=%v err=%v", ok, err)
	}
	fresh := &TripSession{SessionUUID: "u-3", PlanID: s.PlanID, DriverID: s.DriverID, TruckID: s.TruckID}
	if err := db.CreateTripSession(fresh, time.Now().UTC()); err != nil {
		t.Fatalf("session after completion: %v", err)
	}
}

func TestLatestSessionsForPlans(t *testing.T) {
	db := testDB(t)
	s := seedSession(t, db)

	if ok, err := db.SetDestinationArrival(s.ID, time.Now().UTC()); err != nil || !ok {
		t.Fatalf("complete: ok=%v err=%v", ok, err)
	}
	second := &TripSession{SessionUUID: "u-2", PlanID: s.PlanID, DriverID: s.DriverID, TruckID: s.TruckID}
	if err := db.CreateTripSession(second, time.Now().UTC()); err != nil {
		t.Fatalf("create second: %v", err)
	}

	m, err := db.LatestSessionsForPlans([]int64{s.PlanID}, 0)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	got, ok := m[s.PlanID]
	if !ok || got.ID != second.ID {
		t.Errorf("latest = %+v, want session %d", got, second.ID)
	}

	// Another driver's filter hides the sessions.
	m, err = db.LatestSessionsForPlans([]int64{s.PlanID}, s.DriverID+100)
	if err != nil {
		t.Fatalf("latest other driver: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("foreign driver sees %d sessions", len(m))
	}
}

// --- Position tests ---

func TestPositionInsertGuard(t *testing.T) {
	db := testDB(t)
	s := seedSession(t, db)

	inserted, err := db.InsertPositionSample(&PositionSample{
		SessionID: s.ID, Lat: 14.0, Lng: 100.5, RecordedAt: time.Now().UTC(),
	})
	if err != nil || !inserted {
		t.Fatalf("insert open: inserted=%v err=%v", inserted, err)
	}

	if ok, err := db.SetDestinationArrival(s.ID, time.Now().UTC()); err != nil || !ok {
		t.Fatalf("complete: ok=%v err=%v", ok, err)
	}
	inserted, err = db.InsertPositionSample(&PositionSample{
		SessionID: s.ID, Lat: 14.1, Lng: 100.5, RecordedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("insert closed: %v", err)
	}
	if inserted {
		t.Error("sample on a completed session should be dropped")
	}

	n, err := db.CountSamples(s.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("samples = %d, want 1", n)
	}
}

func TestTrackOrderAndCap(t *testing.T) {
	db := testDB(t)
	s := seedSession(t, db)

	base := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := db.InsertPositionSample(&PositionSample{
			SessionID: s.ID, Lat: 14.0 + float64(i)*0.001, Lng: 100.5,
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	track, err := db.ListTrack(s.ID, 3)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if len(track) != 3 {
		t.Fatalf("track rows = %d, want 3", len(track))
	}
	for i := 1; i < len(track); i++ {
		if track[i].RecordedAt.Before(track[i-1].RecordedAt) {
			t.Error("track should be in recorded order")
		}
	}

	latest, err := db.LatestPositionForSession(s.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Lat != 14.004 {
		t.Errorf("latest lat = %f", latest.Lat)
	}
}

// --- User and scope tests ---

func TestUserScopes(t *testing.T) {
	db := testDB(t)

	u := &User{Username: "sup", PasswordHash: "h", Role: RoleFarmSup}
	if err := db.CreateUser(u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	got, err := db.GetUserByUsername("sup")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if got.ID != u.ID || got.Role != RoleFarmSup {
		t.Errorf("got %+v", got)
	}

	farm := &Farm{Plant: "P", Branch: "B", House: "1", Name: "Farm A"}
	if err := db.CreateFarm(farm); err != nil {
		t.Fatalf("create farm: %v", err)
	}
	if err := db.AssignFarm(u.ID, farm.ID); err != nil {
		t.Fatalf("assign farm: %v", err)
	}
	farms, err := db.FarmIDsForUser(u.ID)
	if err != nil {
		t.Fatalf("farms: %v", err)
	}
	if len(farms) != 1 || farms[0] != farm.ID {
		t.Errorf("farms = %v", farms)
	}

	truck := &Truck{Plate: "TRK-9"}
	if err := db.CreateTruck(truck); err != nil {
		t.Fatalf("create truck: %v", err)
	}
	if err := db.AssignTruck(u.ID, truck.ID); err != nil {
		t.Fatalf("assign truck: %v", err)
	}
	plates, err := db.TruckPlatesForDriver(u.ID)
	if err != nil {
		t.Fatalf("plates: %v", err)
	}
	if len(plates) != 1 || plates[0] != "TRK-9" {
		t.Errorf("plates = %v", plates)
	}

	if err := db.AssignSite(u.ID, "F1"); err != nil {
		t.Fatalf("assign site: %v", err)
	}
	sites, err := db.SitesForUser(u.ID)
	if err != nil {
		t.Fatalf("sites: %v", err)
	}
	if len(sites) != 1 || sites[0] != "F1" {
		t.Errorf("sites = %v", sites)
	}
}

// --- Receipt tests ---

func TestReceiptUpsert(t *testing.T) {
	db := testDB(t)
	s := seedSession(t, db)

	r := &FactoryReceipt{PlanID: s.PlanID, PigCount: 118}
	if err := db.UpsertReceipt(r); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := db.GetReceiptForPlan(s.PlanID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PigCount != 118 {
		t.Errorf("pig count = %d", got.PigCount)
	}

	// Re-confirmation overwrites.
	if err := db.UpsertReceipt(&FactoryReceipt{PlanID: s.PlanID, PigCount: 117}); err != nil {
		t.Fatalf("upsert repeat: %v", err)
	}
	got, _ = db.GetReceiptForPlan(s.PlanID)
	if got.PigCount != 117 || got.ID != r.ID {
		t.Errorf("after overwrite: %+v", got)
	}
}

// --- Outbox tests ---

func TestOutboxLifecycle(t *testing.T) {
	db := testDB(t)

	id, err := db.EnqueueOutbox("trips", []byte(`{"x":1}`), "trip_event", "core")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if id == 0 {
		t.Fatal("outbox id should be assigned")
	}

	pending, err := db.ListPendingOutbox(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 || pending[0].Topic != "trips" {
		t.Fatalf("pending = %+v", pending)
	}

	if err := db.IncrementOutboxRetries(id); err != nil {
		t.Fatalf("retries: %v", err)
	}
	pending, _ = db.ListPendingOutbox(10)
	if pending[0].Retries != 1 {
		t.Errorf("retries = %d, want 1", pending[0].Retries)
	}

	if err := db.AckOutbox(id); err != nil {
		t.Fatalf("ack: %v", err)
	}
	pending, _ = db.ListPendingOutbox(10)
	if len(pending) != 0 {
		t.Errorf("pending after ack = %d", len(pending))
	}
}

func TestGetMissingRowsReturnErrNoRows(t *testing.T) {
	db := testDB(t)

	if _, err := db.GetPlan(42); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("plan: %v", err)
	}
	if _, err := db.GetTripSession(42); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("session: %v", err)
	}
	if _, err := db.GetReceiptForPlan(42); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("receipt: %v", err)
	}
	if _, err := db.GetUserByUsername("missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("user: %v", err)
	}
}
