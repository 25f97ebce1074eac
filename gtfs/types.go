package gtfs

// RouteType is the GTFS route_type enum.
type RouteType int

const (
	RouteTypeTram       RouteType = 0
	RouteTypeSubway     RouteType = 1
	RouteTypeRail       RouteType = 2
	RouteTypeBus        RouteType = 3
	RouteTypeFerry      RouteType = 4
	RouteTypeCableTram  RouteType = 5
	RouteTypeAerialLift RouteType = 6
	RouteTypeFunicular  RouteType = 7
	RouteTypeTrolleybus RouteType = 11
	RouteTypeMonorail   RouteType = 12
)

func (t RouteType) String() string {
	switch t {
	case RouteTypeTram:
		return "tram"
	case RouteTypeSubway:
		return "subway"
	case RouteTypeRail:
		return "rail"
	case RouteTypeBus:
		return "bus"
	case RouteTypeFerry:
		return "ferry"
	case RouteTypeCableTram:
		return "cable_tram"
	case RouteTypeAerialLift:
		return "aerial_lift"
	case RouteTypeFunicular:
		return "funicular"
	case RouteTypeTrolleybus:
		return "trolleybus"
	case RouteTypeMonorail:
		return "monorail"
	}
	return "unknown"
}

// ExceptionType is the calendar_dates.txt exception_type enum.
type ExceptionType int

const (
	ServiceAdded   ExceptionType = 1
	ServiceRemoved ExceptionType = 2
)

// Agency is a row of agency.txt.
type Agency struct {
	ID       string `json:"agency_id"`
	Name     string `json:"agency_name"`
	URL      string `json:"agency_url"`
	Timezone string `json:"agency_timezone"`
}

// Stop is a row of stops.txt.
type Stop struct {
	ID   string  `json:"stop_id"`
	Code string  `json:"stop_code,omitempty"`
	Name string  `json:"stop_name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Route is a row of routes.txt.
type Route struct {
	ID        string    `json:"route_id"`
	AgencyID  string    `json:"agency_id,omitempty"`
	ShortName string    `json:"route_short_name"`
	LongName  string    `json:"route_long_name"`
	Type      RouteType `json:"route_type"`
	Color     string    `json:"route_color,omitempty"`
	TextColor string    `json:"route_text_color,omitempty"`
}

// Trip is a row of trips.txt. DirectionID is -1 when the feed leaves it blank.
type Trip struct {
	ID          string `json:"trip_id"`
	RouteID     string `json:"route_id"`
	ServiceID   string `json:"service_id"`
	Headsign    string `json:"trip_headsign,omitempty"`
	DirectionID int    `json:"direction_id"`
	ShapeID     string `json:"shape_id,omitempty"`
}

// StopTime is a row of stop_times.txt. Arrival and Departure are normalized
// HH:MM:SS clocks and may exceed 24:00:00.
type StopTime struct {
	TripID    string `json:"trip_id"`
	StopID    string `json:"stop_id"`
	Arrival   string `json:"arrival_time"`
	Departure string `json:"departure_time"`
	Sequence  int    `json:"stop_sequence"`
}

// Calendar is a row of calendar.txt. Days is indexed by time.Weekday
// (Sunday = 0). Dates are YYYYMMDD.
type Calendar struct {
	ServiceID string  `json:"service_id"`
	Days      [7]bool `json:"days"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

// CalendarDate is a row of calendar_dates.txt.
type CalendarDate struct {
	ServiceID string        `json:"service_id"`
	Date      string        `json:"date"`
	Exception ExceptionType `json:"exception_type"`
}

// Frequency is a row of frequencies.txt.
type Frequency struct {
	TripID      string `json:"trip_id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	HeadwaySecs int    `json:"headway_secs"`
}

// ShapePoint is a row of shapes.txt.
type ShapePoint struct {
	ShapeID  string  `json:"shape_id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Sequence int     `json:"sequence"`
}
