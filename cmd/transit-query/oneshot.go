package main

import (
	"context"
	"fmt"

	"github.com/theoremus-urban-solutions/transit-query/engine"
)

type queryArgs struct {
	lat, lon         float64
	radius           *float64
	q                string
	stopID, tripID   string
	from, to, at     string
	window           int
	date             string
}

// runQuery answers one query for -mode=query.
func runQuery(ctx context.Context, e *engine.Engine, kind string, a queryArgs) (any, error) {
	switch kind {
	case "nearest_stops":
		return e.NearestStops(ctx, engine.NearestStopsRequest{Lat: &a.lat, Lon: &a.lon, RadiusKM: a.radius})
	case "search_routes":
		return e.SearchRoutes(ctx, engine.SearchRoutesRequest{Query: a.q})
	case "trip_stops":
		return e.TripStops(ctx, a.tripID)
	case "routes_by_stop":
		return e.RoutesForStop(ctx, a.stopID)
	case "stop_coordinates":
		return e.StopCoordinates(ctx, a.stopID)
	case "next_trips":
		return e.NextDepartures(ctx, engine.NextDeparturesRequest{StopID: a.stopID, At: a.at})
	case "departure_board":
		return e.DepartureBoard(ctx, engine.DepartureBoardRequest{StopID: a.stopID, WindowMinutes: a.window, At: a.at})
	case "calculate_path":
		return e.PlanJourney(ctx, engine.PlanRequest{From: a.from, To: a.to, At: a.at})
	case "trip_shape":
		return e.TripShape(ctx, a.tripID)
	case "trip_frequencies":
		return e.TripFrequencies(ctx, a.tripID)
	case "services":
		return e.ServiceRunsOn(ctx, a.date)
	}
	return nil, fmt.Errorf("unknown query kind %q", kind)
}
