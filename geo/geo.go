// Package geo provides the distance and ETA math used by the live board.
// All functions are pure; callers own validation of business rules.
package geo

import "math"

const earthRadiusKm = 6371

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point is a usable coordinate.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DistanceKm returns the great-circle (haversine) distance between a and b
// in kilometers. NaN inputs propagate as NaN rather than collapsing to zero.
func DistanceKm(a, b Point) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLng/2), 2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// ETAMinutes estimates minutes from cur to dest. The reported speed is used
// only when present and above slowCutoffKmh; a slower reading is treated as
// idle noise and replaced with fallbackKmh. A mildly pessimistic estimate is
// preferred over none, so the result is clamped to at least one minute.
// ok is false when either coordinate is unusable.
func ETAMinutes(cur Point, speedKmh *float64, dest Point, slowCutoffKmh, fallbackKmh float64) (minutes int, ok bool) {
	if !cur.Valid() || !dest.Valid() {
		return 0, false
	}
	speed := fallbackKmh
	if speedKmh != nil && *speedKmh > slowCutoffKmh {
		speed = *speedKmh
	}
	if speed <= 0 {
		return 0, false
	}
	km := DistanceKm(cur, dest)
	if math.IsNaN(km) {
		return 0, false
	}
	min := int(math.Round(km / speed * 60))
	if min < 1 {
		min = 1
	}
	return min, true
}
