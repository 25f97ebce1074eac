package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/theoremus-urban-solutions/transit-query/cache"
	"github.com/theoremus-urban-solutions/transit-query/config"
	"github.com/theoremus-urban-solutions/transit-query/engine"
	"github.com/theoremus-urban-solutions/transit-query/gtfs"
	"github.com/theoremus-urban-solutions/transit-query/internal"
	"github.com/theoremus-urban-solutions/transit-query/server"
)

func main() {
	configPath := flag.String("config", "", "config file (default: config.yml)")
	mode := flag.String("mode", "serve", "serve|query|snapshot")
	feedName := flag.String("feed", "", "feed name from config.feeds[]")
	kind := flag.String("query", "nearest_stops", "query kind for -mode=query")
	lat := flag.Float64("lat", 0, "latitude")
	lon := flag.Float64("lon", 0, "longitude")
	radius := flag.Float64("radius", 0, "search radius in km (default: query.defaultRadiusKM)")
	q := flag.String("q", "", "route name substring")
	stopID := flag.String("stop", "", "stop_id")
	tripID := flag.String("trip", "", "trip_id")
	from := flag.String("from", "", "start stop_id")
	to := flag.String("to", "", "end stop_id")
	at := flag.String("time", "", "reference clock HH:MM:SS")
	window := flag.Int("window", 0, "departure board window in minutes")
	date := flag.String("date", "", "service date YYYYMMDD")
	flag.Parse()

	var radiusArg *float64
	flag.Visit(func(fl *flag.Flag) {
		if fl.Name == "radius" {
			radiusArg = radius
		}
	})

	internal.InitLogging("transit-query")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	feed, err := cfg.SelectFeed(*feedName)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	f := newFetcher()
	ctx := context.Background()

	switch *mode {
	case "snapshot":
		if feed.SnapshotPath == "" {
			log.Fatalf("feed %s has no snapshotPath", feed.Name)
		}
		d, err := f.load(ctx, feed)
		if err != nil {
			log.Fatalf("load: %v", err)
		}
		c := d.Counts()
		log.Printf("wrote %s: %d stops, %d trips, %d stop_times", feed.SnapshotPath, c.Stops, c.Trips, c.StopTimes)
	case "query":
		e := engine.New(engineOptions(cfg, cache.Nop{}, nil))
		if err := e.Reload(ctx, func(ctx context.Context) (*gtfs.Dataset, error) { return f.loadInitial(ctx, feed) }); err != nil {
			log.Fatalf("load: %v", err)
		}
		out, err := runQuery(ctx, e, *kind, queryArgs{
			lat: *lat, lon: *lon, radius: radiusArg, q: *q, stopID: *stopID, tripID: *tripID,
			from: *from, to: *to, at: *at, window: *window, date: *date,
		})
		if err != nil {
			log.Fatalf("%s: %v", *kind, err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	case "serve":
		serve(ctx, cfg, feed, f)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func engineOptions(cfg *config.AppConfig, c cache.Cache, m *engine.Metrics) engine.Options {
	loc := time.Local
	if cfg.Query.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Query.Timezone); err == nil {
			loc = l
		}
	}
	return engine.Options{
		Cache:                c,
		Metrics:              m,
		Location:             loc,
		DefaultRadiusKM:      cfg.Query.DefaultRadiusKM,
		MaxRadiusKM:          cfg.Query.MaxRadiusKM,
		DefaultWindowMinutes: cfg.Query.DefaultWindowMinutes,
	}
}

func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, func()) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	switch cfg.Backend {
	case "none":
		return cache.Nop{}, func() {}
	case "redis":
		r := cache.NewRedis(cache.RedisOptions{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  time.Duration(cfg.Redis.TimeoutMS) * time.Millisecond,
			Cooldown: time.Duration(cfg.Redis.CooldownMS) * time.Millisecond,
			TTL:      ttl,
		})
		if err := r.Ping(ctx); err == nil {
			log.Printf("cache: redis at %s:%d", cfg.Redis.Host, cfg.Redis.Port)
		}
		return r, func() { _ = r.Close() }
	}
	return cache.NewMemory(ttl), func() {}
}

func serve(ctx context.Context, cfg *config.AppConfig, feed config.FeedConfig, f *fetcher) {
	c, closeCache := newCache(ctx, cfg.Cache)
	defer closeCache()

	e := engine.New(engineOptions(cfg, c, engine.NewMetrics(prometheus.DefaultRegisterer)))
	reload := func(ctx context.Context) error {
		return e.Reload(ctx, func(ctx context.Context) (*gtfs.Dataset, error) { return f.load(ctx, feed) })
	}

	srv := server.New(e, server.Options{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Reload:         reload,
	})
	srv.Start()

	// Serve /api/health (503) while the first load runs.
	go func() {
		if err := e.Reload(ctx, func(ctx context.Context) (*gtfs.Dataset, error) { return f.loadInitial(ctx, feed) }); err != nil {
			log.Printf("initial load failed: %v", err)
		}
	}()

	var tick <-chan time.Time
	if feed.RefreshMinutes > 0 {
		t := time.NewTicker(time.Duration(feed.RefreshMinutes) * time.Minute)
		defer t.Stop()
		tick = t.C
	}
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-tick:
			_ = reload(ctx)
		case <-hup:
			log.Printf("SIGHUP received, reloading feed %s", feed.Name)
			_ = reload(ctx)
		case <-sigs:
			log.Printf("shutdown signal received")
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := srv.Shutdown(sctx); err != nil {
				log.Printf("%v", err)
			}
			cancel()
			return
		}
	}
}
