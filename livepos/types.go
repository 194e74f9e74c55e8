package livepos

import "time"

// LivePosition is the newest accepted position for a trip session.
type LivePosition struct {
	SessionID  int64     `json:"session_id"`
	PlanID     int64     `json:"plan_id"`
	DriverID   int64     `json:"driver_id"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Heading    *float64  `json:"heading,omitempty"`
	SpeedKmh   *float64  `json:"speed_kmh,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
