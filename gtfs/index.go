package gtfs

import (
	"sort"
	"time"
)

// Dataset is one immutable snapshot of a GTFS feed. The exported maps are
// the owned entity collections; the unexported indexes are derived from
// them and rebuilt after a snapshot is decoded. Nothing may be modified once
// Load or ReadSnapshot has returned, so a Dataset is safe for concurrent
// readers without locking.
type Dataset struct {
	Version  string
	LoadedAt time.Time

	Agencies      map[string]Agency
	Stops         map[string]Stop
	Routes        map[string]Route
	Trips         map[string]Trip
	StopTimes     map[string][]StopTime     // trip_id -> ordered by stop_sequence
	Calendars     map[string]Calendar       // service_id
	CalendarDates map[string][]CalendarDate // service_id -> ordered by date
	Frequencies   map[string][]Frequency    // trip_id -> ordered by start_time
	Shapes        map[string][]ShapePoint   // shape_id -> ordered by sequence

	stopTimesByStop map[string][]StopTime // stop_id -> ordered by departure, trip_id, sequence
	tripsByRoute    map[string][]string   // route_id -> ordered trip ids
}

func newDataset() *Dataset {
	return &Dataset{
		Agencies:      map[string]Agency{},
		Stops:         map[string]Stop{},
		Routes:        map[string]Route{},
		Trips:         map[string]Trip{},
		StopTimes:     map[string][]StopTime{},
		Calendars:     map[string]Calendar{},
		CalendarDates: map[string][]CalendarDate{},
		Frequencies:   map[string][]Frequency{},
		Shapes:        map[string][]ShapePoint{},
	}
}

// finalize sorts the owned collections and builds the derived indexes.
func (d *Dataset) finalize() {
	for _, arr := range d.StopTimes {
		sort.Slice(arr, func(i, j int) bool { return arr[i].Sequence < arr[j].Sequence })
	}
	for _, arr := range d.CalendarDates {
		sort.Slice(arr, func(i, j int) bool { return arr[i].Date < arr[j].Date })
	}
	for _, arr := range d.Frequencies {
		sort.Slice(arr, func(i, j int) bool { return arr[i].StartTime < arr[j].StartTime })
	}
	for _, arr := range d.Shapes {
		sort.Slice(arr, func(i, j int) bool { return arr[i].Sequence < arr[j].Sequence })
	}
	d.buildIndexes()
}

func (d *Dataset) buildIndexes() {
	d.stopTimesByStop = make(map[string][]StopTime, len(d.Stops))
	for _, arr := range d.StopTimes {
		for _, st := range arr {
			d.stopTimesByStop[st.StopID] = append(d.stopTimesByStop[st.StopID], st)
		}
	}
	for _, arr := range d.stopTimesByStop {
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
	d.tripsByRoute = make(map[string][]string, len(d.Routes))
	for id, t := range d.Trips {
		d.tripsByRoute[t.RouteID] = append(d.tripsByRoute[t.RouteID], id)
	}
	for _, ids := range d.tripsByRoute {
		sort.Strings(ids)
	}
}

func (d *Dataset) stopTimeCount() int {
	n := 0
	for _, arr := range d.StopTimes {
		n += len(arr)
	}
	return n
}

// Accessors. Returned slices are shared with the dataset and must not be modified.

func (d *Dataset) Stop(id string) (Stop, bool) {
	s, ok := d.Stops[id]
	return s, ok
}

func (d *Dataset) Route(id string) (Route, bool) {
	r, ok := d.Routes[id]
	return r, ok
}

func (d *Dataset) Trip(id string) (Trip, bool) {
	t, ok := d.Trips[id]
	return t, ok
}

// StopTimesForTrip returns the trip's stop times by ascending stop_sequence.
func (d *Dataset) StopTimesForTrip(tripID string) []StopTime { return d.StopTimes[tripID] }

// StopTimesAtStop returns every visit to the stop by ascending departure time.
func (d *Dataset) StopTimesAtStop(stopID string) []StopTime { return d.stopTimesByStop[stopID] }

// TripIDsForRoute returns the route's trip ids in lexical order.
func (d *Dataset) TripIDsForRoute(routeID string) []string { return d.tripsByRoute[routeID] }

// StopIDs returns every stop id in lexical order.
func (d *Dataset) StopIDs() []string {
	ids := make([]string, 0, len(d.Stops))
	for id := range d.Stops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Counts summarizes the snapshot size.
type Counts struct {
	Agencies  int `json:"agencies"`
	Stops     int `json:"stops"`
	Routes    int `json:"routes"`
	Trips     int `json:"trips"`
	StopTimes int `json:"stop_times"`
	Shapes    int `json:"shapes"`
}

func (d *Dataset) Counts() Counts {
	return Counts{
		Agencies:  len(d.Agencies),
		Stops:     len(d.Stops),
		Routes:    len(d.Routes),
		Trips:     len(d.Trips),
		StopTimes: d.stopTimeCount(),
		Shapes:    len(d.Shapes),
	}
}

// IntegrityIssue is a dangling reference found by CheckIntegrity.
type IntegrityIssue struct {
	File    string `json:"file"`
	ID      string `json:"id"`
	Missing string `json:"missing"`
	Ref     string `json:"ref"`
}

// CheckIntegrity lists references to trips, stops and routes that the feed
// does not define. The query layer tolerates all of them; this is a report,
// not a validation gate.
func (d *Dataset) CheckIntegrity() []IntegrityIssue {
	var issues []IntegrityIssue
	for tripID, arr := range d.StopTimes {
		if _, ok := d.Trips[tripID]; !ok {
			issues = append(issues, IntegrityIssue{File: "stop_times.txt", ID: tripID, Missing: "trip", Ref: tripID})
		}
		for _, st := range arr {
			if _, ok := d.Stops[st.StopID]; !ok {
				issues = append(issues, IntegrityIssue{File: "stop_times.txt", ID: tripID, Missing: "stop", Ref: st.StopID})
			}
		}
	}
	for id, t := range d.Trips {
		if _, ok := d.Routes[t.RouteID]; !ok {
			issues = append(issues, IntegrityIssue{File: "trips.txt", ID: id, Missing: "route", Ref: t.RouteID})
		}
	}
	sort.Slice(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Ref < b.Ref
	})
	return issues
}
