package engine

import (
	"time"

	"github.com/Konlor08/PigOnTime/geo"
)

// EventType classifies events flowing through the bus.
type EventType string

const (
	// EventPositionAccepted fires when a driver position passes the
	// movement filter and becomes the live position for a session.
	EventPositionAccepted EventType = "position_accepted"

	// EventMilestoneRecorded fires when a trip milestone is stamped
	// (origin arrival, origin departure, destination arrival).
	EventMilestoneRecorded EventType = "milestone_recorded"

	// EventTripCompleted fires when a session records destination
	// arrival and the trip closes.
	EventTripCompleted EventType = "trip_completed"

	// EventTrackingStarted fires when a driver's position stream binds
	// to a session.
	EventTrackingStarted EventType = "tracking_started"

	// EventTrackingStopped fires when a driver's position stream
	// unbinds, either explicitly or on trip completion.
	EventTrackingStopped EventType = "tracking_stopped"

	// EventReceiptConfirmed fires when a factory clerk confirms
	// received head count for a plan.
	EventReceiptConfirmed EventType = "receipt_confirmed"

	// EventPlanUpserted fires when a delivery plan is created or
	// updated from the plan feed.
	EventPlanUpserted EventType = "plan_upserted"

	// EventOutboxEnqueued fires when a message is queued for the
	// upstream broker.
	EventOutboxEnqueued EventType = "outbox_enqueued"
)

// Milestone names used in MilestoneRecorded events and outbox messages.
const (
	MilestoneArrivedOrigin      = "arrived_origin"
	MilestoneDepartedOrigin     = "departed_origin"
	MilestoneArrivedDestination = "arrived_destination"
)

// Event is the envelope dispatched on the bus. Payload holds the
// typed event struct matching Type.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   interface{}
}

// PositionAcceptedEvent carries a filtered live position update.
type PositionAcceptedEvent struct {
	SessionID int64
	PlanID    int64
	DriverID  int64
	Point     geo.Point
	SpeedKmh  *float64
	Heading   *float64
	At        time.Time
}

// MilestoneRecordedEvent carries a stamped trip milestone.
type MilestoneRecordedEvent struct {
	SessionID int64
	PlanID    int64
	DriverID  int64
	Milestone string
	At        time.Time
}

// TripCompletedEvent carries a closed trip.
type TripCompletedEvent struct {
	SessionID int64
	PlanID    int64
	DriverID  int64
	At        time.Time
}

// TrackingChangeEvent carries a stream bind or unbind.
type TrackingChangeEvent struct {
	SessionID int64
	DriverID  int64
}

// ReceiptConfirmedEvent carries a factory receipt confirmation.
type ReceiptConfirmedEvent struct {
	PlanID      int64
	ConfirmedBy int64
	PigCount    int
	At          time.Time
}

// PlanUpsertedEvent carries a plan feed change.
type PlanUpsertedEvent struct {
	PlanID  int64
	PlanUID string
}
