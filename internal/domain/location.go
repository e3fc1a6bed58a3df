package domain

import "strconv"

// Coordinate is a WGS-84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Key returns the exact "lat,lng" grouping key for this coordinate.
// No rounding or bucketing: two records cluster together only when their
// resolved coordinates are identical.
func (c Coordinate) Key() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// Location is a physical place owned by the system of record. Lat and Lng are
// either both set or both nil.
type Location struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Street   string   `json:"street,omitempty"`
	City     string   `json:"city,omitempty"`
	State    string   `json:"state,omitempty"`
	Postcode string   `json:"postcode,omitempty"`
	Lat      *float64 `json:"latitude,omitempty"`
	Lng      *float64 `json:"longitude,omitempty"`
}

// Coordinates returns the location's authoritative coordinates, if present.
// A location with only one of the pair set is treated as having none.
func (l Location) Coordinates() (Coordinate, bool) {
	if l.Lat == nil || l.Lng == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *l.Lat, Lng: *l.Lng}, true
}

// Record is one catalog entry (an event, venue, or series) with an optional
// nested location. Records without a location never produce a marker.
type Record struct {
	ID       int64     `json:"id"`
	Kind     string    `json:"kind"` // "event", "venue", or "series"
	Name     string    `json:"name"`
	Location *Location `json:"location,omitempty"`
}

// ResolvedPlace is a best-known real-world position for a location, either
// authoritative (carried by the record) or inferred (geocoded). DisplayName
// is for presentation only and never participates in grouping.
type ResolvedPlace struct {
	Coordinate  Coordinate `json:"coordinate"`
	DisplayName string     `json:"display_name,omitempty"`
}
