package geocode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/geoff-maddock/arcane-city-geo/internal/domain"
	"github.com/geoff-maddock/arcane-city-geo/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type fakeLookup struct {
	calls int
	place domain.ResolvedPlace
	found bool
	err   error
	lastQ string
}

func (f *fakeLookup) Lookup(_ context.Context, query string) (domain.ResolvedPlace, bool, error) {
	f.calls++
	f.lastQ = query
	return f.place, f.found, f.err
}

type fakeStore struct {
	updates chan domain.CoordinateDiscovered
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{updates: make(chan domain.CoordinateDiscovered, 8)}
}

func (f *fakeStore) UpdateCoordinates(_ context.Context, locationID int64, c domain.Coordinate) (domain.Location, error) {
	f.updates <- domain.CoordinateDiscovered{LocationID: locationID, Lat: c.Lat, Lng: c.Lng}
	if f.err != nil {
		return domain.Location{}, f.err
	}
	return domain.Location{ID: locationID, Lat: &c.Lat, Lng: &c.Lng}, nil
}

func (f *fakeStore) ListMissingCoordinates(_ context.Context) ([]domain.Location, error) {
	return nil, nil
}

type fakeAnnouncer struct {
	events chan domain.CoordinateDiscovered
	err    error
}

func newFakeAnnouncer() *fakeAnnouncer {
	return &fakeAnnouncer{events: make(chan domain.CoordinateDiscovered, 8)}
}

func (f *fakeAnnouncer) Announce(_ context.Context, d domain.CoordinateDiscovered) error {
	f.events <- d
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testResolver(lookup domain.Lookup, cache *Cache, notifier *Notifier, clock clockwork.Clock) *Resolver {
	return NewResolver(lookup, cache, nil, notifier, clock, discardLogger(), observability.NewMetricsForTesting())
}

func ptr(f float64) *float64 { return &f }

// --- tests ---

func TestResolver_ExistingCoordinatesShortCircuit(t *testing.T) {
	lookup := &fakeLookup{}
	cache := NewCache()
	r := testResolver(lookup, cache, nil, nil)

	loc := domain.Location{
		ID:    5,
		Name:  "Mr. Smalls Theatre",
		City:  "Millvale",
		State: "PA",
		Lat:   ptr(40.4795),
		Lng:   ptr(-79.9766),
	}

	place := r.Resolve(context.Background(), loc)
	require.NotNil(t, place)
	assert.Equal(t, domain.Coordinate{Lat: 40.4795, Lng: -79.9766}, place.Coordinate)
	assert.Equal(t, "Millvale, PA", place.DisplayName, "address attached for display")

	assert.Zero(t, lookup.calls, "no external call for pre-geocoded locations")
	assert.Zero(t, cache.Len(), "no cache writes for pre-geocoded locations")
}

func TestResolver_ExistingCoordinatesWithoutAddress(t *testing.T) {
	r := testResolver(&fakeLookup{}, NewCache(), nil, nil)

	place := r.Resolve(context.Background(), domain.Location{
		ID: 6, Name: "Secret Spot", Lat: ptr(40.0), Lng: ptr(-80.0),
	})
	require.NotNil(t, place)
	assert.Equal(t, "Secret Spot", place.DisplayName, "falls back to the display name")
}

func TestResolver_NoUsableAddress(t *testing.T) {
	lookup := &fakeLookup{}
	r := testResolver(lookup, NewCache(), nil, nil)

	place := r.Resolve(context.Background(), domain.Location{ID: 7, Name: "TBA"})
	assert.Nil(t, place)
	assert.Zero(t, lookup.calls)
}

func TestResolver_SuccessfulLookupIsCached(t *testing.T) {
	lookup := &fakeLookup{
		place: domain.ResolvedPlace{
			Coordinate:  domain.Coordinate{Lat: 40.4406, Lng: -79.9959},
			DisplayName: "Pittsburgh, Allegheny County, Pennsylvania",
		},
		found: true,
	}
	cache := NewCache()
	r := testResolver(lookup, cache, nil, nil)
	loc := domain.Location{ID: 1, City: "Pittsburgh", State: "PA"}

	p1 := r.Resolve(context.Background(), loc)
	require.NotNil(t, p1)
	assert.Equal(t, "Pittsburgh, PA", lookup.lastQ)

	p2 := r.Resolve(context.Background(), loc)
	require.NotNil(t, p2)
	assert.Equal(t, *p1, *p2)

	assert.Equal(t, 1, lookup.calls, "second resolve served from cache")
}

func TestResolver_EmptyResultCachedNegative(t *testing.T) {
	lookup := &fakeLookup{found: false}
	cache := NewCache()
	r := testResolver(lookup, cache, nil, nil)
	loc := domain.Location{ID: 2, City: "Nonexistent City"}

	assert.Nil(t, r.Resolve(context.Background(), loc))
	assert.Nil(t, r.Resolve(context.Background(), loc))

	assert.Equal(t, 1, lookup.calls, "negative result must not be re-queried")
	assert.Equal(t, 1, cache.Len())
}

func TestResolver_TransportErrorCachedNegative(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("connection refused")}
	cache := NewCache()
	r := testResolver(lookup, cache, nil, nil)
	loc := domain.Location{ID: 3, Street: "123 Main St", City: "Pittsburgh"}

	assert.Nil(t, r.Resolve(context.Background(), loc))
	assert.Nil(t, r.Resolve(context.Background(), loc))
	assert.Equal(t, 1, lookup.calls)
}

func TestResolver_ClearCacheAllowsRequery(t *testing.T) {
	lookup := &fakeLookup{found: false}
	r := testResolver(lookup, NewCache(), nil, nil)
	loc := domain.Location{ID: 4, City: "Nonexistent City"}

	r.Resolve(context.Background(), loc)
	r.ClearCache()
	r.Resolve(context.Background(), loc)

	assert.Equal(t, 2, lookup.calls, "clear drops negative entries too")
}

func TestResolver_NotifiesOnDiscovery(t *testing.T) {
	lookup := &fakeLookup{
		place: domain.ResolvedPlace{Coordinate: domain.Coordinate{Lat: 40.4406, Lng: -79.9959}},
		found: true,
	}
	store := newFakeStore()
	announcer := newFakeAnnouncer()
	metrics := observability.NewMetricsForTesting()
	notifier := NewNotifier(store, announcer, time.Second, discardLogger(), metrics)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))
	r := NewResolver(lookup, NewCache(), nil, notifier, clock, discardLogger(), metrics)

	place := r.Resolve(context.Background(), domain.Location{ID: 9, City: "Pittsburgh", State: "PA"})
	require.NotNil(t, place)
	notifier.Wait()

	select {
	case upd := <-store.updates:
		assert.Equal(t, int64(9), upd.LocationID)
		assert.Equal(t, 40.4406, upd.Lat)
		assert.Equal(t, -79.9959, upd.Lng)
	default:
		t.Fatal("expected a coordinate write-back")
	}

	select {
	case evt := <-announcer.events:
		assert.Equal(t, int64(9), evt.LocationID)
		assert.Equal(t, "Pittsburgh, PA", evt.Query)
		assert.Equal(t, time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC), evt.DiscoveredAt)
	default:
		t.Fatal("expected a discovery event")
	}
}

func TestResolver_NotifierFailureDoesNotAffectResult(t *testing.T) {
	lookup := &fakeLookup{
		place: domain.ResolvedPlace{Coordinate: domain.Coordinate{Lat: 1, Lng: 2}},
		found: true,
	}
	store := newFakeStore()
	store.err = errors.New("401 unauthorized")
	notifier := NewNotifier(store, nil, time.Second, discardLogger(), observability.NewMetricsForTesting())
	r := testResolver(lookup, NewCache(), notifier, nil)

	place := r.Resolve(context.Background(), domain.Location{ID: 10, City: "Pittsburgh"})
	require.NotNil(t, place, "write-back failure never surfaces")
	notifier.Wait()
}

func TestResolver_CancelledBeforeLookup(t *testing.T) {
	lookup := &fakeLookup{found: true, place: domain.ResolvedPlace{Coordinate: domain.Coordinate{Lat: 1, Lng: 2}}}
	cache := NewCache()
	pacer := NewPacer(time.Minute, clockwork.NewFakeClock())
	r := NewResolver(lookup, cache, pacer, nil, nil, discardLogger(), observability.NewMetricsForTesting())

	// Exhaust the pacer's free first slot.
	require.NoError(t, pacer.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	place := r.Resolve(ctx, domain.Location{ID: 11, City: "Pittsburgh"})
	assert.Nil(t, place)
	assert.Zero(t, lookup.calls, "no external call after cancellation")
	assert.Zero(t, cache.Len(), "cancellation must not poison the cache")
}
