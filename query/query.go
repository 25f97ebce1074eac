// Package query holds the relational routines over a gtfs.Dataset: the
// route/trip/stop-time/stop joins and the departure filters. Every function
// is pure and deterministic; none of them cache.
//
// Clock arguments are zero-padded HH:MM:SS strings and are compared as
// strings against the normalized clocks stored in the dataset.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/transit-query/gtfs"
)

// MaxBoardEntries caps DepartureBoard.
const MaxBoardEntries = 10

// TripStop is a stop-time joined with its stop.
type TripStop struct {
	StopID        string  `json:"stop_id"`
	Name          string  `json:"stop_name"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	ArrivalTime   string  `json:"arrival_time"`
	DepartureTime string  `json:"departure_time"`
	Sequence      int     `json:"sequence"`
}

// TripsForRoute returns the route's trips ordered by trip id.
func TripsForRoute(d *gtfs.Dataset, routeID string) []gtfs.Trip {
	ids := d.TripIDsForRoute(routeID)
	out := make([]gtfs.Trip, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.Trips[id])
	}
	return out
}

// StopTimesForTrip returns a copy of the trip's stop-times by ascending
// sequence. Path construction downstream relies on this order.
func StopTimesForTrip(d *gtfs.Dataset, tripID string) []gtfs.StopTime {
	src := d.StopTimesForTrip(tripID)
	out := make([]gtfs.StopTime, len(src))
	copy(out, src)
	return out
}

// RoutesMatchingName matches substr case-insensitively against route long
// names. An empty substr matches nothing.
func RoutesMatchingName(d *gtfs.Dataset, substr string) []gtfs.Route {
	q := strings.ToLower(strings.TrimSpace(substr))
	out := []gtfs.Route{}
	if q == "" {
		return out
	}
	for _, r := range d.Routes {
		if r.LongName != "" && strings.Contains(strings.ToLower(r.LongName), q) {
			out = append(out, r)
		}
	}
	sortRoutes(out)
	return out
}

// StopsForTrip joins the trip's stop-times to their stops in sequence order.
// Stop-times whose stop is not in the dataset are skipped.
func StopsForTrip(d *gtfs.Dataset, tripID string) []TripStop {
	sts := d.StopTimesForTrip(tripID)
	out := make([]TripStop, 0, len(sts))
	for _, st := range sts {
		s, ok := d.Stop(st.StopID)
		if !ok {
			continue
		}
		out = append(out, TripStop{
			StopID:        s.ID,
			Name:          s.Name,
			Lat:           s.Lat,
			Lon:           s.Lon,
			ArrivalTime:   st.Arrival,
			DepartureTime: st.Departure,
			Sequence:      st.Sequence,
		})
	}
	return out
}

// RoutesServingStop walks stop-time -> trip -> route and returns each route
// once, ordered by route id. Unknown trips and routes are skipped.
func RoutesServingStop(d *gtfs.Dataset, stopID string) []gtfs.Route {
	routeIDs := map[string]struct{}{}
	for _, st := range d.StopTimesAtStop(stopID) {
		if t, ok := d.Trip(st.TripID); ok {
			routeIDs[t.RouteID] = struct{}{}
		}
	}
	out := make([]gtfs.Route, 0, len(routeIDs))
	for id := range routeIDs {
		if r, ok := d.Route(id); ok {
			out = append(out, r)
		}
	}
	sortRoutes(out)
	return out
}

// StopCoordinates looks a stop up by id.
func StopCoordinates(d *gtfs.Dataset, stopID string) (gtfs.Stop, bool) {
	return d.Stop(stopID)
}

// NextDepartures returns up to limit stop-times at the stop departing
// strictly after now, earliest first.
func NextDepartures(d *gtfs.Dataset, stopID, now string, limit int) []gtfs.StopTime {
	all := d.StopTimesAtStop(stopID)
	i := sort.Search(len(all), func(i int) bool { return all[i].Departure > now })
	return truncate(all[i:], limit)
}

// DepartureBoard returns stop-times at the stop departing within
// [now, now+windowMinutes], both ends inclusive, earliest first, at most
// MaxBoardEntries. The window end does not wrap at midnight.
func DepartureBoard(d *gtfs.Dataset, stopID, now string, windowMinutes int) ([]gtfs.StopTime, error) {
	end, err := gtfs.AddMinutes(now, windowMinutes)
	if err != nil {
		return nil, err
	}
	all := d.StopTimesAtStop(stopID)
	lo := sort.Search(len(all), func(i int) bool { return all[i].Departure >= now })
	hi := sort.Search(len(all), func(i int) bool { return all[i].Departure > end })
	if hi < lo {
		hi = lo
	}
	return truncate(all[lo:hi], MaxBoardEntries), nil
}

// FrequenciesForTrip returns the headway windows of a frequency-based trip.
func FrequenciesForTrip(d *gtfs.Dataset, tripID string) []gtfs.Frequency {
	src := d.Frequencies[tripID]
	out := make([]gtfs.Frequency, len(src))
	copy(out, src)
	return out
}

// ShapeForTrip returns a copy of the trip's polyline.
func ShapeForTrip(d *gtfs.Dataset, tripID string) []gtfs.ShapePoint {
	src := d.ShapeForTrip(tripID)
	out := make([]gtfs.ShapePoint, len(src))
	copy(out, src)
	return out
}

// ServicesOn lists the services running on day.
func ServicesOn(d *gtfs.Dataset, day time.Time) []string {
	return d.ActiveServices(day)
}

func truncate(sts []gtfs.StopTime, limit int) []gtfs.StopTime {
	if limit >= 0 && len(sts) > limit {
		sts = sts[:limit]
	}
	out := make([]gtfs.StopTime, len(sts))
	copy(out, sts)
	return out
}

func sortRoutes(rs []gtfs.Route) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].ID < rs[j].ID })
}
