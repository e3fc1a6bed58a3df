package geocode

import (
	"sync"
	"testing"

	"github.com/geoff-maddock/arcane-city-geo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetPut(t *testing.T) {
	c := NewCache()

	_, ok := c.Get("123 Main St, Pittsburgh, PA")
	assert.False(t, ok, "empty cache has no entries")

	want := domain.ResolvedPlace{
		Coordinate:  domain.Coordinate{Lat: 40.4406, Lng: -79.9959},
		DisplayName: "123 Main St, Pittsburgh, Allegheny County, Pennsylvania",
	}
	c.Put("123 Main St, Pittsburgh, PA", want)

	got, ok := c.Get("123 Main St, Pittsburgh, PA")
	require.True(t, ok)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestCache_NegativeEntry(t *testing.T) {
	c := NewCache()
	c.PutNegative("Nonexistent City")

	got, ok := c.Get("Nonexistent City")
	assert.True(t, ok, "negative entries are stored entries, not misses")
	assert.Nil(t, got)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Clear(t *testing.T) {
	c := NewCache()
	c.Put("a", domain.ResolvedPlace{Coordinate: domain.Coordinate{Lat: 1, Lng: 2}})
	c.PutNegative("b")
	require.Equal(t, 2, c.Len())

	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestCache_ReturnedValueIsIsolated(t *testing.T) {
	c := NewCache()
	c.Put("key", domain.ResolvedPlace{Coordinate: domain.Coordinate{Lat: 1, Lng: 2}})

	got, _ := c.Get("key")
	got.Coordinate.Lat = 99

	again, _ := c.Get("key")
	assert.Equal(t, 1.0, again.Coordinate.Lat, "callers must not mutate cached values")
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Put("shared", domain.ResolvedPlace{Coordinate: domain.Coordinate{Lat: 40, Lng: -79}})
				c.Get("shared")
				c.PutNegative("missing")
				c.Get("missing")
			}
		}()
	}
	wg.Wait()

	got, ok := c.Get("shared")
	require.True(t, ok)
	assert.Equal(t, domain.Coordinate{Lat: 40, Lng: -79}, got.Coordinate)
}
