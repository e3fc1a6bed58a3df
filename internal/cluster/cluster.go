// Package cluster folds resolved records into map markers. Grouping is by
// exact coordinate equality: two records share a marker only when their
// resolved coordinates are identical, never by distance.
package cluster

import (
	"github.com/geoff-maddock/arcane-city-geo/internal/domain"
)

// Marker is a single map point holding every record in the batch that
// resolved to its coordinate.
type Marker struct {
	Coordinate  domain.Coordinate `json:"coordinate"`
	DisplayName string            `json:"display_name,omitempty"`
	Records     []domain.Record   `json:"records"`
}

// MarkerSet accumulates markers for one batch, keyed by the coordinate's
// exact "lat,lng" string and ordered by first appearance. It is rebuilt from
// scratch for every batch and is not safe for concurrent use.
type MarkerSet struct {
	order []string
	byKey map[string]*Marker
}

// NewMarkerSet creates an empty marker set.
func NewMarkerSet() *MarkerSet {
	return &MarkerSet{byKey: make(map[string]*Marker)}
}

// Add folds one resolved record into the set. Records whose location failed
// to resolve carry a nil place and are dropped: an unresolvable location
// must not block rendering of the rest.
func (s *MarkerSet) Add(rec domain.Record, place *domain.ResolvedPlace) {
	if place == nil {
		return
	}
	key := place.Coordinate.Key()
	m, ok := s.byKey[key]
	if !ok {
		m = &Marker{Coordinate: place.Coordinate, DisplayName: place.DisplayName}
		s.byKey[key] = m
		s.order = append(s.order, key)
	}
	m.Records = append(m.Records, rec)
}

// Len reports the number of distinct markers.
func (s *MarkerSet) Len() int {
	return len(s.order)
}

// Markers returns the current markers in first-appearance order. The slice
// and each marker's record list are copies, so published snapshots stay
// stable while the set keeps growing.
func (s *MarkerSet) Markers() []Marker {
	out := make([]Marker, 0, len(s.order))
	for _, key := range s.order {
		m := s.byKey[key]
		records := make([]domain.Record, len(m.Records))
		copy(records, m.Records)
		out = append(out, Marker{
			Coordinate:  m.Coordinate,
			DisplayName: m.DisplayName,
			Records:     records,
		})
	}
	return out
}

// Build clusters a full batch of (record, place) pairs in one call.
// pairs[i].Place may be nil for records that did not resolve.
func Build(pairs []Pair) []Marker {
	set := NewMarkerSet()
	for _, p := range pairs {
		set.Add(p.Record, p.Place)
	}
	return set.Markers()
}

// Pair is one record with its resolution outcome, nil when unresolved.
type Pair struct {
	Record domain.Record
	Place  *domain.ResolvedPlace
}
