// Package planner finds an itinerary between two stops in two tiers: a
// direct trip first, then a single transfer. It is a first-found heuristic,
// not a shortest-path search. It never walks between stops, never uses more
// than one transfer and does not check whether a trip's service runs on the
// travel date.
package planner

import (
	"sort"

	"github.com/theoremus-urban-solutions/transit-query/gtfs"
)

// Kind tells which tier produced an itinerary.
type Kind string

const (
	Direct      Kind = "direct"
	OneTransfer Kind = "one_transfer"
	NoPath      Kind = "no_path"
)

// Leg is one ride on one trip.
type Leg struct {
	TripID        string `json:"trip_id"`
	RouteID       string `json:"route_id,omitempty"`
	FromStopID    string `json:"from_stop_id"`
	ToStopID      string `json:"to_stop_id"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	FromSequence  int    `json:"from_sequence"`
	ToSequence    int    `json:"to_sequence"`
}

// Itinerary is the planner's answer. NoPath is a valid answer, not an error.
//
// For Direct, TripID, DepartureTime (at the start stop) and ArrivalTime (at
// the end stop) are set. For OneTransfer, TransferStopID, FirstTripID,
// TransferDepartureTime (the first trip's departure at the transfer stop),
// SecondTripID and ArrivalTime are set. Legs describes both cases ride by ride.
type Itinerary struct {
	Kind                  Kind   `json:"kind"`
	TripID                string `json:"trip_id,omitempty"`
	DepartureTime         string `json:"departure_time,omitempty"`
	ArrivalTime           string `json:"arrival_time,omitempty"`
	TransferStopID        string `json:"transfer_stop_id,omitempty"`
	FirstTripID           string `json:"first_trip_id,omitempty"`
	TransferDepartureTime string `json:"transfer_departure_time,omitempty"`
	SecondTripID          string `json:"second_trip_id,omitempty"`
	Legs                  []Leg  `json:"legs,omitempty"`
}

// Plan searches from one stop to another. ref is an optional HH:MM:SS clock;
// when set, boardings at or after ref are tried before earlier ones.
func Plan(d *gtfs.Dataset, from, to, ref string) Itinerary {
	boards := boardings(d, from, ref)
	ends := endVisits(d, to)
	if it, ok := direct(d, boards, ends); ok {
		return it
	}
	feeders := feederVisits(d, ends)
	// Prefer connections that can actually be made, then fall back to the
	// sequence-only rule.
	if it, ok := oneTransfer(d, from, to, boards, ends, feeders, true); ok {
		return it
	}
	if it, ok := oneTransfer(d, from, to, boards, ends, feeders, false); ok {
		return it
	}
	return Itinerary{Kind: NoPath}
}

// boardings lists visits to the start stop in the order they are tried.
func boardings(d *gtfs.Dataset, stopID, ref string) []gtfs.StopTime {
	all := d.StopTimesAtStop(stopID)
	if ref == "" {
		return all
	}
	i := sort.Search(len(all), func(i int) bool { return all[i].Departure >= ref })
	out := make([]gtfs.StopTime, 0, len(all))
	out = append(out, all[i:]...)
	return append(out, all[:i]...)
}

// endVisits groups visits to the end stop by trip, ordered by sequence.
func endVisits(d *gtfs.Dataset, stopID string) map[string][]gtfs.StopTime {
	ends := map[string][]gtfs.StopTime{}
	for _, st := range d.StopTimesAtStop(stopID) {
		ends[st.TripID] = append(ends[st.TripID], st)
	}
	for _, arr := range ends {
		sort.Slice(arr, func(i, j int) bool { return arr[i].Sequence < arr[j].Sequence })
	}
	return ends
}

// firstAfter returns the first visit in visits with a sequence above seq.
func firstAfter(visits []gtfs.StopTime, seq int) (gtfs.StopTime, bool) {
	for _, v := range visits {
		if v.Sequence > seq {
			return v, true
		}
	}
	return gtfs.StopTime{}, false
}

func direct(d *gtfs.Dataset, boards []gtfs.StopTime, ends map[string][]gtfs.StopTime) (Itinerary, bool) {
	for _, b := range boards {
		e, ok := firstAfter(ends[b.TripID], b.Sequence)
		if !ok {
			continue
		}
		return Itinerary{
			Kind:          Direct,
			TripID:        b.TripID,
			DepartureTime: b.Departure,
			ArrivalTime:   e.Arrival,
			Legs:          []Leg{leg(d, b, e)},
		}, true
	}
	return Itinerary{}, false
}

// feederVisits indexes, by stop, every visit of a trip that reaches the end
// stop later in the same trip. These are the places a second leg can start.
func feederVisits(d *gtfs.Dataset, ends map[string][]gtfs.StopTime) map[string][]gtfs.StopTime {
	feeders := map[string][]gtfs.StopTime{}
	for tripID, visits := range ends {
		last := visits[len(visits)-1].Sequence
		for _, st := range d.StopTimesForTrip(tripID) {
			if st.Sequence >= last {
				break
			}
			feeders[st.StopID] = append(feeders[st.StopID], st)
		}
	}
	for _, arr := range feeders {
		sort.Slice(arr, func(i, j int) bool {
			if arr[i].Departure != arr[j].Departure {
				return arr[i].Departure < arr[j].Departure
			}
			if arr[i].TripID != arr[j].TripID {
				return arr[i].TripID < arr[j].TripID
			}
			return arr[i].Sequence < arr[j].Sequence
		})
	}
	return feeders
}

func oneTransfer(d *gtfs.Dataset, from, to string, boards []gtfs.StopTime, ends, feeders map[string][]gtfs.StopTime, timed bool) (Itinerary, bool) {
	for _, b := range boards {
		for _, alight := range d.StopTimesForTrip(b.TripID) {
			if alight.Sequence <= b.Sequence || alight.StopID == from || alight.StopID == to {
				continue
			}
			for _, board2 := range feeders[alight.StopID] {
				if board2.TripID == b.TripID {
					continue
				}
				if timed && board2.Departure < alight.Arrival {
					continue
				}
				e, ok := firstAfter(ends[board2.TripID], board2.Sequence)
				if !ok {
					continue
				}
				return Itinerary{
					Kind:                  OneTransfer,
					DepartureTime:         b.Departure,
					ArrivalTime:           e.Arrival,
					TransferStopID:        alight.StopID,
					FirstTripID:           b.TripID,
					TransferDepartureTime: alight.Departure,
					SecondTripID:          board2.TripID,
					Legs:                  []Leg{leg(d, b, alight), leg(d, board2, e)},
				}, true
			}
		}
	}
	return Itinerary{}, false
}

func leg(d *gtfs.Dataset, board, alight gtfs.StopTime) Leg {
	l := Leg{
		TripID:        board.TripID,
		FromStopID:    board.StopID,
		ToStopID:      alight.StopID,
		DepartureTime: board.Departure,
		ArrivalTime:   alight.Arrival,
		FromSequence:  board.Sequence,
		ToSequence:    alight.Sequence,
	}
	if t, ok := d.Trip(board.TripID); ok {
		l.RouteID = t.RouteID
	}
	return l
}
