package domain

import (
	"context"
	"time"
)

// Lookup resolves a free-text address query through an external geocoding
// service. The second return is false when the service has no candidate for
// the query (or its candidate is unusable); err covers transport and
// non-success responses only.
type Lookup interface {
	Lookup(ctx context.Context, query string) (ResolvedPlace, bool, error)
}

// LocationStore is the system of record for locations. UpdateCoordinates
// writes back a newly discovered coordinate pair and returns the updated
// location. ListMissingCoordinates pages through every location that has an
// address but no coordinates, for batch backfills.
type LocationStore interface {
	UpdateCoordinates(ctx context.Context, locationID int64, c Coordinate) (Location, error)
	ListMissingCoordinates(ctx context.Context) ([]Location, error)
}

// CoordinateDiscovered is the event published when geocoding finds
// coordinates for a location that had none.
type CoordinateDiscovered struct {
	LocationID   int64     `json:"location_id"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	Query        string    `json:"query"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// Announcer publishes coordinate-discovery events for downstream consumers.
type Announcer interface {
	Announce(ctx context.Context, d CoordinateDiscovered) error
}
