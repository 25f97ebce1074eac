// Package cache memoizes serialized query results.
//
// A Cache is never the source of truth. Implementations swallow their own
// failures: a backend that is down or slow reads as a miss and drops writes,
// so callers simply recompute.
package cache

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// Cache stores opaque byte values under string keys. Values are owned
// copies; implementations must not retain the slice passed to Put.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte)
	// Flush drops every entry written through this cache.
	Flush(ctx context.Context)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (Nop) Put(context.Context, string, []byte)        {}
func (Nop) Flush(context.Context)                      {}

func memoKey(kind string, args ...string) string {
	var b bytes.Buffer
	b.WriteString(kind)
	b.WriteByte(':')
	for i, a := range args {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(a)
	}
	return b.String()
}

// NearestStopsKey rounds coordinates to 5 decimals and the radius to 1.
func NearestStopsKey(lat, lon, radiusKM float64) string {
	return fmt.Sprintf("nearest_stops:%.5f_%.5f_%.1f", lat, lon, radiusKM)
}

// PathKey keys a journey plan by its stop pair and optional reference clock.
func PathKey(from, to, ref string) string { return memoKey("path", from, to, ref) }

// SearchRoutesKey is case-insensitive because the search is.
func SearchRoutesKey(q string) string {
	return memoKey("search_routes", strings.ToLower(strings.TrimSpace(q)))
}

func TripStopsKey(tripID string) string      { return memoKey("trip_stops", tripID) }
func RoutesByStopKey(stopID string) string   { return memoKey("routes_by_stop", stopID) }
func StopCoordinatesKey(stopID string) string { return memoKey("stop_coordinates", stopID) }
func TripShapeKey(tripID string) string      { return memoKey("trip_shape", tripID) }
