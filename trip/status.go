package trip

import "github.com/Konlor08/PigOnTime/store"

// Trip status values as shown on boards. Derived from milestone
// timestamps, never stored.
const (
	StatusPending            = "pending"
	StatusArrivedOrigin      = "arrived_origin"
	StatusDepartedOrigin     = "departed_origin"
	StatusArrivedDestination = "arrived_destination"
)

// StatusOf derives the display status for a plan's latest session.
// A nil session means no trip has started.
func StatusOf(s *store.TripSession) string {
	switch {
	case s == nil:
		return StatusPending
	case s.Completed || s.ArrivedDestinationAt != nil:
		return StatusArrivedDestination
	case s.DepartedOriginAt != nil:
		return StatusDepartedOrigin
	case s.ArrivedOriginAt != nil:
		return StatusArrivedOrigin
	}
	return StatusPending
}
