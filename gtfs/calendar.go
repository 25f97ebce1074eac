package gtfs

import (
	"sort"
	"time"
)

// ServiceActive reports whether serviceID runs on the given service day.
// calendar_dates exceptions take precedence over the weekly calendar pattern.
func (d *Dataset) ServiceActive(serviceID string, day time.Time) bool {
	date := day.Format("20060102")
	for _, cd := range d.CalendarDates[serviceID] {
		if cd.Date == date {
			return cd.Exception == ServiceAdded
		}
	}
	c, ok := d.Calendars[serviceID]
	if !ok {
		return false
	}
	if date < c.StartDate || date > c.EndDate {
		return false
	}
	return c.Days[day.Weekday()]
}

// ActiveServices returns the ids of every service running on day, sorted.
func (d *Dataset) ActiveServices(day time.Time) []string {
	candidates := map[string]struct{}{}
	for id := range d.Calendars {
		candidates[id] = struct{}{}
	}
	for id := range d.CalendarDates {
		candidates[id] = struct{}{}
	}
	out := make([]string, 0, len(candidates))
	for id := range candidates {
		if d.ServiceActive(id, day) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Departures expands a headway window into the start clocks of every trip
// it describes, from StartTime up to but excluding EndTime.
func (f Frequency) Departures() []string {
	start, err := ParseClock(f.StartTime)
	if err != nil || f.HeadwaySecs <= 0 {
		return nil
	}
	end, err := ParseClock(f.EndTime)
	if err != nil {
		return nil
	}
	var out []string
	for t := start; t < end; t += f.HeadwaySecs {
		out = append(out, FormatClock(t))
	}
	return out
}
