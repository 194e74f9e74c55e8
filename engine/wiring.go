package engine

import "log"

// wireEventHandlers sets up the event chain:
// MilestoneRecorded(arrived_origin) → bind the driver's position stream
// TripCompleted → unbind the stream and drop the cached position
func (e *Engine) wireEventHandlers() {
	e.Events.Subscribe(func(evt Event) {
		m := evt.Payload.(MilestoneRecordedEvent)
		e.handleMilestone(m)
	}, EventMilestoneRecorded)

	e.Events.Subscribe(func(evt Event) {
		c := evt.Payload.(TripCompletedEvent)
		e.handleTripCompleted(c)
	}, EventTripCompleted)
}

func (e *Engine) handleMilestone(m MilestoneRecordedEvent) {
	if m.Milestone != MilestoneArrivedOrigin {
		return
	}
	if err := e.tracker.Start(m.DriverID, m.SessionID); err != nil {
		log.Printf("engine: start tracking session %d: %v", m.SessionID, err)
	}
}

func (e *Engine) handleTripCompleted(c TripCompletedEvent) {
	e.tracker.Stop(c.DriverID)
	e.live.Clear(c.SessionID)
}
