package gtfs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/theoremus-urban-solutions/transit-query/gtfs"
	"github.com/theoremus-urban-solutions/transit-query/internal/testfeed"
)

func day(s string) time.Time {
	t, err := time.Parse("20060102", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestServiceActive(t *testing.T) {
	d := testfeed.Network().Load(t)

	tests := []struct {
		name    string
		service string
		date    string
		want    bool
	}{
		{name: "weekday service on a monday", service: "WK", date: "20261012", want: true},
		{name: "weekday service on a saturday", service: "WK", date: "20261017", want: false},
		{name: "weekend service on a saturday", service: "WE", date: "20261017", want: true},
		{name: "removed by exception", service: "WK", date: "20261225", want: false},
		{name: "added by exception", service: "WE", date: "20261225", want: true},
		{name: "before start date", service: "WK", date: "20251229", want: false},
		{name: "after end date", service: "WK", date: "20270104", want: false},
		{name: "unknown service", service: "NOPE", date: "20261012", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.ServiceActive(tt.service, day(tt.date)))
		})
	}
}

func TestActiveServices(t *testing.T) {
	d := testfeed.Network().Load(t)

	assert.Equal(t, []string{"WK"}, d.ActiveServices(day("20261012")))
	assert.Equal(t, []string{"WE"}, d.ActiveServices(day("20261225")))
	assert.Empty(t, testfeed.Minimal().Load(t).ActiveServices(day("20261012")))
}

func TestFrequencyDepartures(t *testing.T) {
	f := gtfs.Frequency{StartTime: "06:00:00", EndTime: "07:00:00", HeadwaySecs: 1200}
	assert.Equal(t, []string{"06:00:00", "06:20:00", "06:40:00"}, f.Departures())

	f.HeadwaySecs = 0
	assert.Nil(t, f.Departures())
}
