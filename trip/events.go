package trip

import "time"

// EventEmitter receives trip lifecycle events. The engine provides an
// implementation that forwards to its event bus.
type EventEmitter interface {
	EmitMilestoneRecorded(sessionID, planID, driverID int64, milestone string, at time.Time)
	EmitTripCompleted(sessionID, planID, driverID int64, at time.Time)
}

// Milestone names as stamped on sessions and published upstream.
const (
	MilestoneArrivedOrigin      = "arrived_origin"
	MilestoneDepartedOrigin     = "departed_origin"
	MilestoneArrivedDestination = "arrived_destination"
)

// TripEventMessage is the outbox payload published when a milestone
// is stamped.
type TripEventMessage struct {
	StationID   string `json:"station_id"`
	SessionUUID string `json:"session_uuid"`
	PlanUID     string `json:"plan_uid"`
	Plate       string `json:"plate"`
	Milestone   string `json:"milestone"`
	Timestamp   string `json:"timestamp"`
}
