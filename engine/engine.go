// Package engine is the query facade: one method per supported query kind.
//
// Each method validates its parameters, takes the current snapshot once,
// consults the result cache and computes on a miss. A reload builds a
// complete new snapshot (dataset plus spatial index) off to the side and
// publishes it with a single pointer swap, so a query never sees a mix of
// two datasets.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theoremus-urban-solutions/transit-query/cache"
	"github.com/theoremus-urban-solutions/transit-query/gtfs"
	"github.com/theoremus-urban-solutions/transit-query/spatial"
)

// Options configures an Engine. Zero fields take defaults.
type Options struct {
	Cache   cache.Cache
	Metrics *Metrics
	// Now and Location give the wall clock used when a departure query
	// does not carry its own reference time.
	Now      func() time.Time
	Location *time.Location

	DefaultRadiusKM      float64
	MaxRadiusKM          float64
	DefaultWindowMinutes int
}

// Loader produces a fresh dataset for Reload.
type Loader func(ctx context.Context) (*gtfs.Dataset, error)

type snapshot struct {
	data  *gtfs.Dataset
	stops *spatial.Index
}

// Engine answers transit queries against the current snapshot.
type Engine struct {
	opts     Options
	cache    cache.Cache
	metrics  *Metrics
	current  atomic.Pointer[snapshot]
	reloadMu sync.Mutex
}

func New(opts Options) *Engine {
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.DefaultRadiusKM <= 0 {
		opts.DefaultRadiusKM = 1.0
	}
	if opts.MaxRadiusKM < opts.DefaultRadiusKM {
		opts.MaxRadiusKM = 50.0
	}
	if opts.DefaultWindowMinutes <= 0 {
		opts.DefaultWindowMinutes = 30
	}
	return &Engine{opts: opts, cache: opts.Cache, metrics: opts.Metrics}
}

// Reload loads a new dataset and publishes it. On failure the previous
// snapshot keeps serving. Reloads are serialized; queries are never blocked.
func (e *Engine) Reload(ctx context.Context, load Loader) error {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()

	d, err := load(ctx)
	if err != nil {
		e.metrics.reloads.WithLabelValues("error").Inc()
		log.Printf("engine: reload failed, keeping previous dataset: %v", err)
		return fmt.Errorf("reload: %w", err)
	}
	e.publish(ctx, d)
	e.metrics.reloads.WithLabelValues("ok").Inc()
	return nil
}

// Publish swaps in an already loaded dataset.
func (e *Engine) Publish(ctx context.Context, d *gtfs.Dataset) {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()
	e.publish(ctx, d)
}

func (e *Engine) publish(ctx context.Context, d *gtfs.Dataset) {
	if issues := d.CheckIntegrity(); len(issues) > 0 {
		log.Printf("engine: dataset %s has %d dangling references, first: %s %s -> missing %s %s",
			d.Version, len(issues), issues[0].File, issues[0].ID, issues[0].Missing, issues[0].Ref)
	}
	snap := &snapshot{data: d, stops: spatial.Build(d)}
	prev := e.current.Swap(snap)
	// Entries computed from the previous snapshot may name trips or stops
	// that no longer exist.
	e.cache.Flush(ctx)
	e.metrics.observeDataset(d)
	if prev != nil {
		log.Printf("engine: replaced dataset %s with %s", prev.data.Version, d.Version)
	} else {
		log.Printf("engine: serving dataset %s", d.Version)
	}
}

func (e *Engine) snapshot() (*snapshot, error) {
	s := e.current.Load()
	if s == nil {
		return nil, ErrNoDataset
	}
	return s, nil
}

// Status describes the serving snapshot.
type Status struct {
	Loaded   bool        `json:"loaded"`
	Version  string      `json:"version,omitempty"`
	LoadedAt time.Time   `json:"loaded_at,omitempty"`
	Counts   gtfs.Counts `json:"counts"`
}

func (e *Engine) Status() Status {
	s := e.current.Load()
	if s == nil {
		return Status{}
	}
	return Status{Loaded: true, Version: s.data.Version, LoadedAt: s.data.LoadedAt, Counts: s.data.Counts()}
}

// track records latency and outcome for one query. It is deferred with a
// pointer to the named error result.
func (e *Engine) track(kind string, start time.Time, err *error) {
	e.metrics.latency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	e.metrics.queries.WithLabelValues(kind, outcome(*err)).Inc()
}

// memoize returns the cached value for key or computes, stores and returns
// it. Keys are scoped to the snapshot version so a missed flush can never
// serve results from an older dataset.
func memoize[T any](ctx context.Context, e *Engine, snap *snapshot, kind, key string, compute func() T) T {
	key = snap.data.Version + "|" + key
	if b, ok := e.cache.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			e.metrics.cacheLookups.WithLabelValues(kind, "hit").Inc()
			return v
		}
	}
	e.metrics.cacheLookups.WithLabelValues(kind, "miss").Inc()
	v := compute()
	// A reload that finished while computing has already flushed; storing
	// now would leave an entry no later query can reach.
	if e.current.Load() != snap {
		return v
	}
	if b, err := json.Marshal(v); err == nil {
		e.cache.Put(ctx, key, b)
	}
	return v
}

// clockNow renders the current wall clock in the configured zone.
func (e *Engine) clockNow() string {
	t := e.opts.Now().In(e.opts.Location)
	return gtfs.FormatClock(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// referenceClock normalizes an optional caller-supplied clock, falling back
// to the wall clock when it is empty.
func (e *Engine) referenceClock(param, v string) (string, error) {
	if v == "" {
		return e.clockNow(), nil
	}
	c, err := gtfs.NormalizeClock(v)
	if err != nil {
		return "", &InvalidParameterError{Param: param, Reason: "expected HH:MM:SS"}
	}
	return c, nil
}
