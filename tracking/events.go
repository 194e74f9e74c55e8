package tracking

import (
	"time"

	"github.com/Konlor08/PigOnTime/geo"
)

// EventEmitter receives tracking events. The engine provides an
// implementation that forwards to its event bus.
type EventEmitter interface {
	EmitTrackingStarted(sessionID, driverID int64)
	EmitTrackingStopped(sessionID, driverID int64)
	EmitPositionAccepted(sessionID, planID, driverID int64, pt geo.Point, speedKmh, heading *float64, at time.Time)
}
