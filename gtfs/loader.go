package gtfs

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LoadError reports why a feed could not be loaded. Line is 1-based and
// counts the header row; it is zero for file-level failures.
type LoadError struct {
	File   string
	Line   int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString(e.File)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " (%s)", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *LoadError) Unwrap() error { return e.Err }

var (
	errMissingColumn = errors.New("missing required column")
	errDuplicateKey  = errors.New("duplicate key")
)

type tableSpec struct {
	file     string
	required bool
	columns  []string
	consume  func(l *loader, r *row) error
}

var tableSpecs = []tableSpec{
	{file: "agency.txt", columns: []string{"agency_name"}, consume: (*loader).consumeAgency},
	{file: "stops.txt", required: true, columns: []string{"stop_id", "stop_name", "stop_lat", "stop_lon"}, consume: (*loader).consumeStop},
	{file: "routes.txt", required: true, columns: []string{"route_id", "route_type"}, consume: (*loader).consumeRoute},
	{file: "trips.txt", required: true, columns: []string{"route_id", "service_id", "trip_id"}, consume: (*loader).consumeTrip},
	{file: "stop_times.txt", required: true, columns: []string{"trip_id", "stop_id", "stop_sequence", "arrival_time", "departure_time"}, consume: (*loader).consumeStopTime},
	{file: "calendar.txt", columns: []string{"service_id", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday", "start_date", "end_date"}, consume: (*loader).consumeCalendar},
	{file: "calendar_dates.txt", columns: []string{"service_id", "date", "exception_type"}, consume: (*loader).consumeCalendarDate},
	{file: "frequencies.txt", columns: []string{"trip_id", "start_time", "end_time", "headway_secs"}, consume: (*loader).consumeFrequency},
	{file: "shapes.txt", columns: []string{"shape_id", "shape_pt_lat", "shape_pt_lon", "shape_pt_sequence"}, consume: (*loader).consumeShapePoint},
}

type loader struct {
	d            *Dataset
	seenStopSeq  map[string]map[int]struct{}
	seenShapeSeq map[string]map[int]struct{}
	seenExcept   map[string]map[string]struct{}
}

// Load parses a GTFS feed from fsys. stops, routes, trips and stop_times are
// required; agency, calendar, calendar_dates, frequencies and shapes are read
// when present. Any malformed row fails the whole load with a *LoadError.
func Load(ctx context.Context, fsys fs.FS) (*Dataset, error) {
	start := time.Now()
	l := &loader{
		d:            newDataset(),
		seenStopSeq:  map[string]map[int]struct{}{},
		seenShapeSeq: map[string]map[int]struct{}{},
		seenExcept:   map[string]map[string]struct{}{},
	}
	for _, spec := range tableSpecs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := l.readTable(fsys, spec); err != nil {
			return nil, err
		}
	}
	l.d.finalize()
	l.d.Version = uuid.NewString()
	l.d.LoadedAt = time.Now().UTC()
	log.Printf("gtfs: loaded %d stops, %d routes, %d trips, %d stop times in %s",
		len(l.d.Stops), len(l.d.Routes), len(l.d.Trips), l.d.stopTimeCount(), time.Since(start).Round(time.Millisecond))
	return l.d, nil
}

// LoadDir loads an unpacked feed directory.
func LoadDir(ctx context.Context, dir string) (*Dataset, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{File: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{File: dir, Err: errors.New("not a directory")}
	}
	return Load(ctx, os.DirFS(dir))
}

// LoadZip loads a zipped feed from a local path.
func LoadZip(ctx context.Context, path string) (*Dataset, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &LoadError{File: path, Err: err}
	}
	defer zr.Close()
	return Load(ctx, &zr.Reader)
}

// LoadZipBytes loads a zipped feed held in memory, e.g. one fetched over HTTP.
func LoadZipBytes(ctx context.Context, data []byte) (*Dataset, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &LoadError{File: "feed.zip", Err: err}
	}
	return Load(ctx, zr)
}

// LoadPath picks LoadDir or LoadZip based on what path points at.
func LoadPath(ctx context.Context, path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{File: path, Err: err}
	}
	if info.IsDir() {
		return LoadDir(ctx, path)
	}
	return LoadZip(ctx, path)
}

func (l *loader) readTable(fsys fs.FS, spec tableSpec) error {
	f, err := fsys.Open(spec.file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !spec.required {
			return nil
		}
		return &LoadError{File: spec.file, Err: err}
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	head, err := cr.Read()
	if err == io.EOF {
		return &LoadError{File: spec.file, Err: errors.New("empty file")}
	}
	if err != nil {
		return &LoadError{File: spec.file, Line: 1, Err: err}
	}
	r := &row{file: spec.file, cols: make(map[string]int, len(head))}
	for i, h := range head {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		r.cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range spec.columns {
		if _, ok := r.cols[col]; !ok {
			return &LoadError{File: spec.file, Line: 1, Column: col, Err: errMissingColumn}
		}
	}
	r.line = 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		r.line++
		if err != nil {
			return &LoadError{File: spec.file, Line: r.line, Err: err}
		}
		r.rec = rec
		if err := spec.consume(l, r); err != nil {
			return err
		}
	}
}

// row gives typed access to the current record by column name.
type row struct {
	file string
	line int
	cols map[string]int
	rec  []string
}

func (r *row) str(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r *row) fail(col string, err error) error {
	return &LoadError{File: r.file, Line: r.line, Column: col, Err: err}
}

func (r *row) required(col string) (string, error) {
	v := r.str(col)
	if v == "" {
		return "", r.fail(col, errors.New("empty value"))
	}
	return v, nil
}

func (r *row) float(col string) (float64, error) {
	v, err := r.required(col)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, r.fail(col, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, r.fail(col, fmt.Errorf("non-finite value %q", v))
	}
	return f, nil
}

func (r *row) int(col string) (int, error) {
	v, err := r.required(col)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, r.fail(col, err)
	}
	return n, nil
}

func (r *row) flag(col string) (bool, error) {
	switch r.str(col) {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, r.fail(col, fmt.Errorf("expected 0 or 1, got %q", r.str(col)))
}

func (r *row) date(col string) (string, error) {
	v, err := r.required(col)
	if err != nil {
		return "", err
	}
	if _, err := time.Parse("20060102", v); err != nil {
		return "", r.fail(col, fmt.Errorf("expected YYYYMMDD, got %q", v))
	}
	return v, nil
}

func (r *row) clock(col string) (string, error) {
	v, err := r.required(col)
	if err != nil {
		return "", err
	}
	c, err := NormalizeClock(v)
	if err != nil {
		return "", r.fail(col, err)
	}
	return c, nil
}

func (l *loader) consumeAgency(r *row) error {
	a := Agency{
		ID:       r.str("agency_id"),
		Name:     r.str("agency_name"),
		URL:      r.str("agency_url"),
		Timezone: r.str("agency_timezone"),
	}
	if _, dup := l.d.Agencies[a.ID]; dup {
		return r.fail("agency_id", fmt.Errorf("%w %q", errDuplicateKey, a.ID))
	}
	l.d.Agencies[a.ID] = a
	return nil
}

func (l *loader) consumeStop(r *row) error {
	id, err := r.required("stop_id")
	if err != nil {
		return err
	}
	if _, dup := l.d.Stops[id]; dup {
		return r.fail("stop_id", fmt.Errorf("%w %q", errDuplicateKey, id))
	}
	lat, err := r.float("stop_lat")
	if err != nil {
		return err
	}
	lon, err := r.float("stop_lon")
	if err != nil {
		return err
	}
	if lat < -90 || lat > 90 {
		return r.fail("stop_lat", fmt.Errorf("latitude %v out of range", lat))
	}
	if lon < -180 || lon > 180 {
		return r.fail("stop_lon", fmt.Errorf("longitude %v out of range", lon))
	}
	l.d.Stops[id] = Stop{ID: id, Code: r.str("stop_code"), Name: r.str("stop_name"), Lat: lat, Lon: lon}
	return nil
}

func (l *loader) consumeRoute(r *row) error {
	id, err := r.required("route_id")
	if err != nil {
		return err
	}
	if _, dup := l.d.Routes[id]; dup {
		return r.fail("route_id", fmt.Errorf("%w %q", errDuplicateKey, id))
	}
	typ, err := r.int("route_type")
	if err != nil {
		return err
	}
	l.d.Routes[id] = Route{
		ID:        id,
		AgencyID:  r.str("agency_id"),
		ShortName: r.str("route_short_name"),
		LongName:  r.str("route_long_name"),
		Type:      RouteType(typ),
		Color:     r.str("route_color"),
		TextColor: r.str("route_text_color"),
	}
	return nil
}

func (l *loader) consumeTrip(r *row) error {
	id, err := r.required("trip_id")
	if err != nil {
		return err
	}
	if _, dup := l.d.Trips[id]; dup {
		return r.fail("trip_id", fmt.Errorf("%w %q", errDuplicateKey, id))
	}
	routeID, err := r.required("route_id")
	if err != nil {
		return err
	}
	serviceID, err := r.required("service_id")
	if err != nil {
		return err
	}
	dir := -1
	switch v := r.str("direction_id"); v {
	case "":
	case "0", "1":
		dir = int(v[0] - '0')
	default:
		return r.fail("direction_id", fmt.Errorf("expected 0 or 1, got %q", v))
	}
	l.d.Trips[id] = Trip{
		ID:          id,
		RouteID:     routeID,
		ServiceID:   serviceID,
		Headsign:    r.str("trip_headsign"),
		DirectionID: dir,
		ShapeID:     r.str("shape_id"),
	}
	return nil
}

func (l *loader) consumeStopTime(r *row) error {
	tripID, err := r.required("trip_id")
	if err != nil {
		return err
	}
	stopID, err := r.required("stop_id")
	if err != nil {
		return err
	}
	seq, err := r.int("stop_sequence")
	if err != nil {
		return err
	}
	if seq < 0 {
		return r.fail("stop_sequence", fmt.Errorf("negative sequence %d", seq))
	}
	seen := l.seenStopSeq[tripID]
	if seen == nil {
		seen = map[int]struct{}{}
		l.seenStopSeq[tripID] = seen
	}
	if _, dup := seen[seq]; dup {
		return r.fail("stop_sequence", fmt.Errorf("%w (%s, %d)", errDuplicateKey, tripID, seq))
	}
	seen[seq] = struct{}{}

	// Non-timepoint rows may carry only one of the two clocks.
	arrRaw, depRaw := r.str("arrival_time"), r.str("departure_time")
	switch {
	case arrRaw == "" && depRaw == "":
		return r.fail("departure_time", errors.New("arrival_time and departure_time both empty"))
	case arrRaw == "":
		arrRaw = depRaw
	case depRaw == "":
		depRaw = arrRaw
	}
	arr, err := NormalizeClock(arrRaw)
	if err != nil {
		return r.fail("arrival_time", err)
	}
	dep, err := NormalizeClock(depRaw)
	if err != nil {
		return r.fail("departure_time", err)
	}
	if dep < arr {
		return r.fail("departure_time", fmt.Errorf("departure %s before arrival %s", dep, arr))
	}
	l.d.StopTimes[tripID] = append(l.d.StopTimes[tripID], StopTime{
		TripID:    tripID,
		StopID:    stopID,
		Arrival:   arr,
		Departure: dep,
		Sequence:  seq,
	})
	return nil
}

var weekdayColumns = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

func (l *loader) consumeCalendar(r *row) error {
	id, err := r.required("service_id")
	if err != nil {
		return err
	}
	if _, dup := l.d.Calendars[id]; dup {
		return r.fail("service_id", fmt.Errorf("%w %q", errDuplicateKey, id))
	}
	c := Calendar{ServiceID: id}
	for i, col := range weekdayColumns {
		if c.Days[i], err = r.flag(col); err != nil {
			return err
		}
	}
	if c.StartDate, err = r.date("start_date"); err != nil {
		return err
	}
	if c.EndDate, err = r.date("end_date"); err != nil {
		return err
	}
	l.d.Calendars[id] = c
	return nil
}

func (l *loader) consumeCalendarDate(r *row) error {
	id, err := r.required("service_id")
	if err != nil {
		return err
	}
	date, err := r.date("date")
	if err != nil {
		return err
	}
	exc, err := r.int("exception_type")
	if err != nil {
		return err
	}
	if ExceptionType(exc) != ServiceAdded && ExceptionType(exc) != ServiceRemoved {
		return r.fail("exception_type", fmt.Errorf("expected 1 or 2, got %d", exc))
	}
	seen := l.seenExcept[id]
	if seen == nil {
		seen = map[string]struct{}{}
		l.seenExcept[id] = seen
	}
	if _, dup := seen[date]; dup {
		return r.fail("date", fmt.Errorf("%w (%s, %s)", errDuplicateKey, id, date))
	}
	seen[date] = struct{}{}
	l.d.CalendarDates[id] = append(l.d.CalendarDates[id], CalendarDate{ServiceID: id, Date: date, Exception: ExceptionType(exc)})
	return nil
}

func (l *loader) consumeFrequency(r *row) error {
	tripID, err := r.required("trip_id")
	if err != nil {
		return err
	}
	start, err := r.clock("start_time")
	if err != nil {
		return err
	}
	end, err := r.clock("end_time")
	if err != nil {
		return err
	}
	headway, err := r.int("headway_secs")
	if err != nil {
		return err
	}
	if headway <= 0 {
		return r.fail("headway_secs", fmt.Errorf("headway must be positive, got %d", headway))
	}
	l.d.Frequencies[tripID] = append(l.d.Frequencies[tripID], Frequency{
		TripID:      tripID,
		StartTime:   start,
		EndTime:     end,
		HeadwaySecs: headway,
	})
	return nil
}

func (l *loader) consumeShapePoint(r *row) error {
	id, err := r.required("shape_id")
	if err != nil {
		return err
	}
	lat, err := r.float("shape_pt_lat")
	if err != nil {
		return err
	}
	lon, err := r.float("shape_pt_lon")
	if err != nil {
		return err
	}
	seq, err := r.int("shape_pt_sequence")
	if err != nil {
		return err
	}
	seen := l.seenShapeSeq[id]
	if seen == nil {
		seen = map[int]struct{}{}
		l.seenShapeSeq[id] = seen
	}
	if _, dup := seen[seq]; dup {
		return r.fail("shape_pt_sequence", fmt.Errorf("%w (%s, %d)", errDuplicateKey, id, seq))
	}
	seen[seq] = struct{}{}
	l.d.Shapes[id] = append(l.d.Shapes[id], ShapePoint{ShapeID: id, Lat: lat, Lon: lon, Sequence: seq})
	return nil
}
