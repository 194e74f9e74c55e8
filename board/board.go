// Package board assembles the live delivery board: plans in a date
// window joined with their latest trip session, live position, and ETA.
package board

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Konlor08/PigOnTime/geo"
	"github.com/Konlor08/PigOnTime/livepos"
	"github.com/Konlor08/PigOnTime/store"
	"github.com/Konlor08/PigOnTime/trip"
)

// Farm supervisors see a symmetric week around today. Drivers see only
// today forward, clamped by the look-ahead window.
const farmWindowDays = 7

// Identity carries the viewer's scope, resolved by the web layer at
// request time.
type Identity struct {
	UserID int64
	Role   string
}

// Row is one board line: a plan and everything known about its trip.
type Row struct {
	Plan       *store.DeliveryPlan   `json:"plan"`
	Session    *store.TripSession    `json:"session,omitempty"`
	Status     string                `json:"status"`
	Position   *livepos.LivePosition `json:"position,omitempty"`
	ETAMinutes *int                  `json:"eta_minutes,omitempty"`
	Receipt    *store.FactoryReceipt `json:"receipt,omitempty"`
}

// Board answers scoped board queries.
type Board struct {
	db            *store.DB
	live          *livepos.Manager
	lookaheadDays int
	slowCutoffKmh float64
	fallbackKmh   float64
	now           func() time.Time
}

// New creates a board reader.
func New(db *store.DB, live *livepos.Manager, lookaheadDays int, slowCutoffKmh, fallbackKmh float64) *Board {
	return &Board{
		db:            db,
		live:          live,
		lookaheadDays: lookaheadDays,
		slowCutoffKmh: slowCutoffKmh,
		fallbackKmh:   fallbackKmh,
		now:           time.Now,
	}
}

// Query returns board rows visible to the identity within [from, to],
// both formatted YYYY-MM-DD. Empty bounds default to the role's own
// window, and requested bounds are clamped to it. Missing positions or
// factory coordinates degrade the row, never fail the query.
func (b *Board) Query(ident Identity, from, to string) ([]Row, error) {
	from, to = b.clampWindow(ident.Role, from, to)

	plans, err := b.plansFor(ident, from, to)
	if err != nil {
		return nil, err
	}

	planIDs := make([]int64, len(plans))
	for i, p := range plans {
		planIDs[i] = p.ID
	}
	var sessionDriver int64
	if ident.Role == store.RoleDriver {
		sessionDriver = ident.UserID
	}
	sessions, err := b.db.LatestSessionsForPlans(planIDs, sessionDriver)
	if err != nil {
		return nil, fmt.Errorf("sessions for board: %w", err)
	}

	rows := make([]Row, 0, len(plans))
	for _, p := range plans {
		row := Row{Plan: p, Session: sessions[p.ID]}
		row.Status = trip.StatusOf(row.Session)
		b.attachLiveData(&row)
		b.attachReceipt(&row)
		rows = append(rows, row)
	}
	return rows, nil
}

func (b *Board) plansFor(ident Identity, from, to string) ([]*store.DeliveryPlan, error) {
	switch ident.Role {
	case store.RoleDriver:
		plates, err := b.db.TruckPlatesForDriver(ident.UserID)
		if err != nil {
			return nil, fmt.Errorf("plates for driver %d: %w", ident.UserID, err)
		}
		return b.db.ListPlansForPlates(from, to, plates)

	case store.RoleFarmSup:
		farmIDs, err := b.db.FarmIDsForUser(ident.UserID)
		if err != nil {
			return nil, fmt.Errorf("farms for user %d: %w", ident.UserID, err)
		}
		return b.db.ListPlansForFarms(from, to, farmIDs)

	case store.RoleFactory:
		sites, err := b.db.SitesForUser(ident.UserID)
		if err != nil {
			return nil, fmt.Errorf("sites for user %d: %w", ident.UserID, err)
		}
		return b.db.ListPlansForSites(from, to, sites)

	case store.RoleManager:
		return b.db.ListPlansInRange(from, to)
	}
	return nil, fmt.Errorf("unknown role %q", ident.Role)
}

// clampWindow bounds the requested range to what the role may see.
// Drivers get no look-behind.
func (b *Board) clampWindow(role, from, to string) (string, string) {
	now := b.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var min, max time.Time
	switch role {
	case store.RoleDriver:
		min, max = today, today.AddDate(0, 0, b.lookaheadDays)
	case store.RoleFarmSup:
		min, max = today.AddDate(0, 0, -farmWindowDays), today.AddDate(0, 0, farmWindowDays)
	default:
		return orDate(from, today.AddDate(0, 0, -farmWindowDays)), orDate(to, today.AddDate(0, 0, b.lookaheadDays))
	}

	fromT := parseOr(from, min)
	toT := parseOr(to, max)
	if fromT.Before(min) {
		fromT = min
	}
	if toT.After(max) {
		toT = max
	}
	return fromT.Format("2006-01-02"), toT.Format("2006-01-02")
}

func parseOr(s string, fallback time.Time) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fallback
	}
	return t
}

func orDate(s string, fallback time.Time) string {
	if s == "" {
		return fallback.Format("2006-01-02")
	}
	return s
}

// attachLiveData fills position and ETA for open trips.
func (b *Board) attachLiveData(row *Row) {
	s := row.Session
	if s == nil || s.Completed || s.ArrivedDestinationAt != nil {
		return
	}

	pos, err := b.live.Latest(s.ID)
	if err != nil {
		log.Printf("board: position for session %d: %v", s.ID, err)
		return
	}
	if pos == nil {
		return
	}
	row.Position = pos

	factory, err := b.db.GetFactoryBySite(row.Plan.FactorySite)
	if errors.Is(err, sql.ErrNoRows) {
		return
	}
	if err != nil {
		log.Printf("board: factory %s: %v", row.Plan.FactorySite, err)
		return
	}
	if factory.Lat == nil || factory.Lng == nil {
		return
	}

	min, ok := geo.ETAMinutes(
		geo.Point{Lat: pos.Lat, Lng: pos.Lng},
		pos.SpeedKmh,
		geo.Point{Lat: *factory.Lat, Lng: *factory.Lng},
		b.slowCutoffKmh, b.fallbackKmh,
	)
	if ok {
		row.ETAMinutes = &min
	}
}

func (b *Board) attachReceipt(row *Row) {
	r, err := b.db.GetReceiptForPlan(row.Plan.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return
	}
	if err != nil {
		log.Printf("board: receipt for plan %d: %v", row.Plan.ID, err)
		return
	}
	row.Receipt = r
}
