// Package testfeed builds small GTFS feeds in memory for tests.
package testfeed

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-query/gtfs"
)

// Feed maps a file name such as "stops.txt" to its CSV body.
type Feed map[string]string

// With returns a copy of f with file replaced by body.
func (f Feed) With(file, body string) Feed {
	out := make(Feed, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[file] = body
	return out
}

// Without returns a copy of f without file.
func (f Feed) Without(file string) Feed {
	out := make(Feed, len(f))
	for k, v := range f {
		if k != file {
			out[k] = v
		}
	}
	return out
}

func (f Feed) FS() fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, body := range f {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return fsys
}

// Load parses the feed and fails the test on error.
func (f Feed) Load(t testing.TB) *gtfs.Dataset {
	t.Helper()
	d, err := gtfs.Load(context.Background(), f.FS())
	require.NoError(t, err)
	return d
}

// WriteDir writes the feed into a fresh temporary directory.
func (f Feed) WriteDir(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range f {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

// Zip returns the feed as a zip archive.
func (f Feed) Zip(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range f {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// Minimal is two stops 0.01 degrees apart served by one trip:
// T1 leaves S1 at 08:00:00 and reaches S2 at 08:10:00.
func Minimal() Feed {
	return Feed{
		"stops.txt": `stop_id,stop_name,stop_lat,stop_lon
S1,First Street,0,0
S2,Second Street,0,0.01
`,
		"routes.txt": `route_id,route_short_name,route_long_name,route_type
R1,1,Central Line,3
`,
		"trips.txt": `route_id,service_id,trip_id,trip_headsign,direction_id
R1,WK,T1,Second Street,0
`,
		"stop_times.txt": `trip_id,arrival_time,departure_time,stop_id,stop_sequence
T1,08:00:00,08:00:00,S1,1
T1,08:10:00,08:10:00,S2,2
`,
	}
}

// Network is a small city network with every optional file present.
//
//	T1 (R1, WK): A 08:00 -> B 08:10 -> C 08:20        shape SH1
//	T2 (R2, WK): C 08:25 -> D 08:35 -> E 08:45
//	T3 (R2, WE): C 07:00 -> D 07:10 -> E 07:20
//	T4 (R3, WK): E 09:00 -> D 09:10 -> GHOST 09:20    every 20 min 06:00-07:00
//	T5 (RX, WK): no stop times, unknown route
//
// Stop X is served by nothing. GHOST and RX are dangling references.
func Network() Feed {
	return Feed{
		"agency.txt": `agency_id,agency_name,agency_url,agency_timezone
AG1,Metro Transit,https://metro.example,Africa/Nairobi
`,
		"stops.txt": `stop_id,stop_code,stop_name,stop_lat,stop_lon
A,100,Alpha,0,0
B,101,Bravo,0,0.01
C,102,Charlie,0,0.02
D,103,Delta,0.01,0.02
E,104,Echo,0.02,0.02
X,199,Xray,0.5,0.5
`,
		"routes.txt": `route_id,agency_id,route_short_name,route_long_name,route_type,route_color
R1,AG1,1,Central Line,3,FF0000
R2,AG1,2,Harbour Express,3,00FF00
R3,AG1,T,River Tram,0,0000FF
`,
		"trips.txt": `route_id,service_id,trip_id,trip_headsign,direction_id,shape_id
R1,WK,T1,Charlie,0,SH1
R2,WK,T2,Echo,0,
R2,WE,T3,Echo,0,
R3,WK,T4,Delta,1,
RX,WK,T5,Nowhere,,
`,
		"stop_times.txt": `trip_id,arrival_time,departure_time,stop_id,stop_sequence
T1,08:00:00,08:00:00,A,1
T1,08:10:00,08:10:00,B,2
T1,08:20:00,08:20:00,C,3
T2,08:25:00,08:25:00,C,1
T2,08:35:00,08:35:00,D,2
T2,08:45:00,08:45:00,E,3
T3,7:00:00,7:00:00,C,1
T3,7:10:00,7:10:00,D,2
T3,7:20:00,7:20:00,E,3
T4,09:00:00,09:00:00,E,1
T4,09:10:00,,D,2
T4,09:20:00,09:20:00,GHOST,3
`,
		"calendar.txt": `service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date
WK,1,1,1,1,1,0,0,20260101,20261231
WE,0,0,0,0,0,1,1,20260101,20261231
`,
		"calendar_dates.txt": `service_id,date,exception_type
WK,20261225,2
WE,20261225,1
`,
		"frequencies.txt": `trip_id,start_time,end_time,headway_secs
T4,06:00:00,07:00:00,1200
`,
		"shapes.txt": `shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence
SH1,0,0.02,3
SH1,0,0,1
SH1,0,0.01,2
`,
	}
}
