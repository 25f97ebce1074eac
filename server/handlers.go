package server

import (
	"net/http"

	"github.com/theoremus-urban-solutions/transit-query/engine"
)

func (s *Server) handleNearestStops(w http.ResponseWriter, r *http.Request) {
	lat, err := optionalFloat(r, "lat")
	if err != nil {
		writeError(w, err)
		return
	}
	lon, err := optionalFloat(r, "lon")
	if err != nil {
		writeError(w, err)
		return
	}
	radius, err := optionalFloat(r, "radius")
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := s.engine.NearestStops(r.Context(), engine.NearestStopsRequest{Lat: lat, Lon: lon, RadiusKM: radius})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearchRoutes(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.SearchRoutes(r.Context(), engine.SearchRoutesRequest{Query: r.URL.Query().Get("q")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNextTrips(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.NextDepartures(r.Context(), engine.NextDeparturesRequest{
		StopID: param(r, "stop_id"),
		At:     param(r, "time"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDepartureBoard(w http.ResponseWriter, r *http.Request) {
	window, err := optionalInt(r, "window")
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := s.engine.DepartureBoard(r.Context(), engine.DepartureBoardRequest{
		StopID:        param(r, "stop_id"),
		WindowMinutes: window,
		At:            param(r, "time"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCalculatePath(w http.ResponseWriter, r *http.Request) {
	it, err := s.engine.PlanJourney(r.Context(), engine.PlanRequest{
		From: param(r, "start_stop_id"),
		To:   param(r, "end_stop_id"),
		At:   param(r, "time"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleStopCoordinates(w http.ResponseWriter, r *http.Request) {
	loc, err := s.engine.StopCoordinates(r.Context(), param(r, "stop_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) handleRoutesByStop(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.RoutesForStop(r.Context(), param(r, "stop_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTripStops(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.TripStops(r.Context(), param(r, "trip_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTripShape(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.TripShape(r.Context(), param(r, "trip_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTripFrequencies(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.TripFrequencies(r.Context(), param(r, "trip_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.ServiceRunsOn(r.Context(), param(r, "date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
