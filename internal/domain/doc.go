// Package domain models the catalog records and locations behind the map view.
//
// # Catalog records
//
// The catalog publishes events, venues, and series. Each record may carry a
// nested location supplied by the system of record. Locations fall into two
// groups: those with authoritative coordinates entered by an editor, and
// those with only a street address. The map pipeline resolves the second
// group through an external geocoding lookup.
//
// # Canonical address queries
//
// Geocoding lookups and cache keys both use the canonical address query built
// by [AddressQuery]: the non-empty address fields joined with ", " in a fixed
// order (street, city, state, postcode). The ordering matters: the same
// location must always produce the same string so the geocode cache behaves
// deterministically.
//
// # Coordinates
//
// Coordinates are WGS-84 decimal degrees. A location's latitude and longitude
// are either both present or both absent; [Location.Coordinates] enforces that
// invariant at the read site. Marker grouping compares coordinates by their
// exact "lat,lng" string key, never by distance.
package domain
