package engine

import (
	"time"

	"github.com/Konlor08/PigOnTime/geo"
)

// tripEmitter adapts the engine's EventBus to the trip.EventEmitter interface.
type tripEmitter struct {
	bus *EventBus
}

func (e *tripEmitter) EmitMilestoneRecorded(sessionID, planID, driverID int64, milestone string, at time.Time) {
	e.bus.Emit(Event{Type: EventMilestoneRecorded, Payload: MilestoneRecordedEvent{
		SessionID: sessionID, PlanID: planID, DriverID: driverID, Milestone: milestone, At: at,
	}})
}

func (e *tripEmitter) EmitTripCompleted(sessionID, planID, driverID int64, at time.Time) {
	e.bus.Emit(Event{Type: EventTripCompleted, Payload: TripCompletedEvent{
		SessionID: sessionID, PlanID: planID, DriverID: driverID, At: at,
	}})
}

// trackingEmitter adapts the engine's EventBus to the tracking.EventEmitter interface.
type trackingEmitter struct {
	bus *EventBus
}

func (e *trackingEmitter) EmitTrackingStarted(sessionID, driverID int64) {
	e.bus.Emit(Event{Type: EventTrackingStarted, Payload: TrackingChangeEvent{
		SessionID: sessionID, DriverID: driverID,
	}})
}

func (e *trackingEmitter) EmitTrackingStopped(sessionID, driverID int64) {
	e.bus.Emit(Event{Type: EventTrackingStopped, Payload: TrackingChangeEvent{
		SessionID: sessionID, DriverID: driverID,
	}})
}

func (e *trackingEmitter) EmitPositionAccepted(sessionID, planID, driverID int64, pt geo.Point, speedKmh, heading *float64, at time.Time) {
	e.bus.Emit(Event{Type: EventPositionAccepted, Payload: PositionAcceptedEvent{
		SessionID: sessionID, PlanID: planID, DriverID: driverID,
		Point: pt, SpeedKmh: speedKmh, Heading: heading, At: at,
	}})
}
