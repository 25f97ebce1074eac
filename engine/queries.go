package engine

import (
	"context"
	"math"
	"time"

	"github.com/theoremus-urban-solutions/transit-query/cache"
	"github.com/theoremus-urban-solutions/transit-query/gtfs"
	"github.com/theoremus-urban-solutions/transit-query/planner"
	"github.com/theoremus-urban-solutions/transit-query/query"
)

// MaxNextDepartures caps NextDepartures.
const MaxNextDepartures = 5

// MaxWindowMinutes bounds the departure board window to one service day.
const MaxWindowMinutes = 1440

// NearbyStop is one nearest-stops result.
type NearbyStop struct {
	StopID     string  `json:"stop_id"`
	Name       string  `json:"stop_name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DistanceKM float64 `json:"distance_km"`
}

// RouteSummary is the route projection returned by route searches.
type RouteSummary struct {
	RouteID   string         `json:"route_id"`
	ShortName string         `json:"route_short_name,omitempty"`
	LongName  string         `json:"route_long_name"`
	Type      gtfs.RouteType `json:"route_type"`
}

// StopLocation is a stop's position.
type StopLocation struct {
	StopID string  `json:"stop_id"`
	Name   string  `json:"stop_name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

// Departure is a stop-time enriched with its trip and route.
type Departure struct {
	TripID        string `json:"trip_id"`
	RouteID       string `json:"route_id,omitempty"`
	RouteName     string `json:"route_name,omitempty"`
	Headsign      string `json:"headsign,omitempty"`
	StopID        string `json:"stop_id"`
	ArrivalTime   string `json:"arrival_time"`
	DepartureTime string `json:"departure_time"`
	Sequence      int    `json:"stop_sequence"`
}

// TripShape is a trip's drawn path.
type TripShape struct {
	TripID   string            `json:"trip_id"`
	ShapeID  string            `json:"shape_id,omitempty"`
	LengthKM float64           `json:"length_km"`
	Points   []gtfs.ShapePoint `json:"points"`
}

// TripFrequency is one headway window with its expanded start clocks.
type TripFrequency struct {
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	HeadwaySecs int      `json:"headway_secs"`
	Departures  []string `json:"departures"`
}

type NearestStopsRequest struct {
	Lat      *float64 `param:"lat" validate:"required,latitude"`
	Lon      *float64 `param:"lon" validate:"required,longitude"`
	RadiusKM *float64 `param:"radius" validate:"omitempty,gte=0"`
}

type SearchRoutesRequest struct {
	Query string `param:"q" validate:"required"`
}

type DepartureBoardRequest struct {
	StopID        string `param:"stop_id" validate:"required"`
	WindowMinutes int    `param:"window" validate:"gte=0,lte=1440"`
	// At overrides the wall clock. Empty means now.
	At string `param:"time"`
}

type NextDeparturesRequest struct {
	StopID string `param:"stop_id" validate:"required"`
	At     string `param:"time"`
}

type PlanRequest struct {
	From string `param:"start_stop_id" validate:"required"`
	To   string `param:"end_stop_id" validate:"required,nefield=From"`
	At   string `param:"time"`
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// NearestStops lists stops within the radius of a point, nearest first. A
// nil radius means the configured default; zero matches the point only.
func (e *Engine) NearestStops(ctx context.Context, req NearestStopsRequest) (out []NearbyStop, err error) {
	defer e.track("nearest_stops", time.Now(), &err)
	if err = validateRequest(req); err != nil {
		return nil, err
	}
	radius := e.opts.DefaultRadiusKM
	if req.RadiusKM != nil {
		radius = *req.RadiusKM
	}
	if radius > e.opts.MaxRadiusKM {
		err = &InvalidParameterError{Param: "radius", Reason: "exceeds maximum"}
		return nil, err
	}
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	// Compute on the rounded inputs so a hit and a miss agree.
	lat, lon, radius := round(*req.Lat, 5), round(*req.Lon, 5), round(radius, 1)
	out = memoize(ctx, e, snap, "nearest_stops", cache.NearestStopsKey(lat, lon, radius), func() []NearbyStop {
		matches := snap.stops.Within(lat, lon, radius)
		res := make([]NearbyStop, 0, len(matches))
		for _, m := range matches {
			s, _ := snap.data.Stop(m.StopID)
			res = append(res, NearbyStop{
				StopID:     m.StopID,
				Name:       s.Name,
				Lat:        m.Lat,
				Lon:        m.Lon,
				DistanceKM: round(gtfs.HaversineKM(lat, lon, m.Lat, m.Lon), 3),
			})
		}
		return res
	})
	return out, nil
}

func summarize(rs []gtfs.Route) []RouteSummary {
	out := make([]RouteSummary, 0, len(rs))
	for _, r := range rs {
		out = append(out, RouteSummary{RouteID: r.ID, ShortName: r.ShortName, LongName: r.LongName, Type: r.Type})
	}
	return out
}

// SearchRoutes matches route long names case-insensitively.
func (e *Engine) SearchRoutes(ctx context.Context, req SearchRoutesRequest) (out []RouteSummary, err error) {
	defer e.track("search_routes", time.Now(), &err)
	if err = validateRequest(req); err != nil {
		return nil, err
	}
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	out = memoize(ctx, e, snap, "search_routes", cache.SearchRoutesKey(req.Query), func() []RouteSummary {
		return summarize(query.RoutesMatchingName(snap.data, req.Query))
	})
	return out, nil
}

// TripStops lists a trip's stops in travel order. An unknown trip yields an
// empty list.
func (e *Engine) TripStops(ctx context.Context, tripID string) (out []query.TripStop, err error) {
	defer e.track("trip_stops", time.Now(), &err)
	if err = requireParam("trip_id", tripID); err != nil {
		return nil, err
	}
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	out = memoize(ctx, e, snap, "trip_stops", cache.TripStopsKey(tripID), func() []query.TripStop {
		return query.StopsForTrip(snap.data, tripID)
	})
	return out, nil
}

// RoutesForStop lists every route with a trip calling at the stop.
func (e *Engine) RoutesForStop(ctx context.Context, stopID string) (out []RouteSummary, err error) {
	defer e.track("routes_by_stop", time.Now(), &err)
	if err = requireParam("stop_id", stopID); err != nil {
		return nil, err
	}
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	out = memoize(ctx, e, snap, "routes_by_stop", cache.RoutesByStopKey(stopID), func() []RouteSummary {
		return summarize(query.RoutesServingStop(snap.data, stopID))
	})
	return out, nil
}

// StopCoordinates returns a stop's position or a *NotFoundError.
func (e *Engine) StopCoordinates(ctx context.Context, stopID string) (loc StopLocation, err error) {
	defer e.track("stop_coordinates", time.Now(), &err)
	if err = requireParam("stop_id", stopID); err != nil {
		return StopLocation{}, err
	}
	snap, err := e.snapshot()
	if err != nil {
		return StopLocation{}, err
	}
	found := memoize(ctx, e, snap, "stop_coordinates", cache.StopCoordinatesKey(stopID), func() *StopLocation {
		s, ok := query.StopCoordinates(snap.data, stopID)
		if !ok {
			return nil
		}
		return &StopLocation{StopID: s.ID, Name: s.Name, Lat: s.Lat, Lon: s.Lon}
	})
	if found == nil {
		err = &NotFoundError{Kind: "stop", ID: stopID}
		return StopLocation{}, err
	}
	return *found, nil
}

// DepartureBoard lists up to ten departures in [now, now+window].
// Departures depend on the clock and are never cached.
func (e *Engine) DepartureBoard(_ context.Context, req DepartureBoardRequest) (out []Departure, err error) {
	defer e.track("departure_board", time.Now(), &err)
	if err = validateRequest(req); err != nil {
		return nil, err
	}
	now, err := e.referenceClock("time", req.At)
	if err != nil {
		return nil, err
	}
	window := req.WindowMinutes
	if window == 0 {
		window = e.opts.DefaultWindowMinutes
	}
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	sts, err := query.DepartureBoard(snap.data, req.StopID, now, window)
	if err != nil {
		err = &InvalidParameterError{Param: "time", Reason: err.Error()}
		return nil, err
	}
	return departures(snap.data, sts), nil
}

// NextDepartures lists up to five departures strictly after now.
func (e *Engine) NextDepartures(_ context.Context, req NextDeparturesRequest) (out []Departure, err error) {
	defer e.track("next_departures", time.Now(), &err)
	if err = validateRequest(req); err != nil {
		return nil, err
	}
	now, err := e.referenceClock("time", req.At)
	if err != nil {
		return nil, err
	}
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return departures(snap.data, query.NextDepartures(snap.data, req.StopID, now, MaxNextDepartures)), nil
}

func departures(d *gtfs.Dataset, sts []gtfs.StopTime) []Departure {
	out := make([]Departure, 0, len(sts))
	for _, st := range sts {
		dep := Departure{
			TripID:        st.TripID,
			StopID:        st.StopID,
			ArrivalTime:   st.Arrival,
			DepartureTime: st.Departure,
			Sequence:      st.Sequence,
		}
		if t, ok := d.Trip(st.TripID); ok {
			dep.RouteID = t.RouteID
			dep.Headsign = t.Headsign
			if r, ok := d.Route(t.RouteID); ok {
				dep.RouteName = r.ShortName
				if dep.RouteName == "" {
					dep.RouteName = r.LongName
				}
			}
		}
		out = append(out, dep)
	}
	return out
}

// PlanJourney finds a direct or one-transfer itinerary. A no-path answer is
// a result, not an error.
func (e *Engine) PlanJourney(ctx context.Context, req PlanRequest) (it planner.Itinerary, err error) {
	defer e.track("calculate_path", time.Now(), &err)
	if err = validateRequest(req); err != nil {
		return planner.Itinerary{}, err
	}
	ref := ""
	if req.At != "" {
		if ref, err = gtfs.NormalizeClock(req.At); err != nil {
			err = &InvalidParameterError{Param: "time", Reason: "expected HH:MM:SS"}
			return planner.Itinerary{}, err
		}
	}
	snap, err := e.snapshot()
	if err != nil {
		return planner.Itinerary{}, err
	}
	it = memoize(ctx, e, snap, "calculate_path", cache.PathKey(req.From, req.To, ref), func() planner.Itinerary {
		return planner.Plan(snap.data, req.From, req.To, ref)
	})
	return it, nil
}

// TripShape returns the trip's polyline. A trip without a shape has no
// points; an unknown trip is a *NotFoundError.
func (e *Engine) TripShape(ctx context.Context, tripID string) (shape TripShape, err error) {
	defer e.track("trip_shape", time.Now(), &err)
	if err = requireParam("trip_id", tripID); err != nil {
		return TripShape{}, err
	}
	snap, err := e.snapshot()
	if err != nil {
		return TripShape{}, err
	}
	t, ok := snap.data.Trip(tripID)
	if !ok {
		err = &NotFoundError{Kind: "trip", ID: tripID}
		return TripShape{}, err
	}
	shape = memoize(ctx, e, snap, "trip_shape", cache.TripShapeKey(tripID), func() TripShape {
		pts := query.ShapeForTrip(snap.data, tripID)
		return TripShape{TripID: t.ID, ShapeID: t.ShapeID, LengthKM: round(gtfs.ShapeLengthKM(pts), 3), Points: pts}
	})
	return shape, nil
}

// TripFrequencies expands the headway windows of a frequency-based trip.
func (e *Engine) TripFrequencies(_ context.Context, tripID string) (out []TripFrequency, err error) {
	defer e.track("trip_frequencies", time.Now(), &err)
	if err = requireParam("trip_id", tripID); err != nil {
		return nil, err
	}
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	fs := query.FrequenciesForTrip(snap.data, tripID)
	out = make([]TripFrequency, 0, len(fs))
	for _, f := range fs {
		deps := f.Departures()
		if deps == nil {
			deps = []string{}
		}
		out = append(out, TripFrequency{StartTime: f.StartTime, EndTime: f.EndTime, HeadwaySecs: f.HeadwaySecs, Departures: deps})
	}
	return out, nil
}

// ServiceRunsOn lists the service ids active on a YYYYMMDD date.
func (e *Engine) ServiceRunsOn(_ context.Context, date string) (out []string, err error) {
	defer e.track("services", time.Now(), &err)
	if err = requireParam("date", date); err != nil {
		return nil, err
	}
	day, perr := time.ParseInLocation("20060102", date, e.opts.Location)
	if perr != nil {
		err = &InvalidParameterError{Param: "date", Reason: "expected YYYYMMDD"}
		return nil, err
	}
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return query.ServicesOn(snap.data, day), nil
}
