package messaging

// PositionMessage is an inbound driver position report from the
// positions topic. Devices publish these while a trip is tracked.
type PositionMessage struct {
	DriverID int64    `json:"driver_id"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Heading  *float64 `json:"heading,omitempty"`
	SpeedKmh *float64 `json:"speed_kmh,omitempty"`
	At       string   `json:"at,omitempty"` // RFC3339, defaults to receive time
}

// PlanFeedMessage is an inbound delivery plan from the planning system.
// Plans are keyed by PlanUID; repeats update in place.
type PlanFeedMessage struct {
	PlanUID      string `json:"plan_uid"`
	DeliveryDate string `json:"delivery_date"` // YYYY-MM-DD
	DeliveryTime string `json:"delivery_time,omitempty"`
	FarmID       *int64 `json:"farm_id,omitempty"`
	FarmName     string `json:"farm_name"`
	FactorySite  string `json:"factory_site"`
	Plate        string `json:"plate"`
	Quantity     int    `json:"quantity"`
}
