package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/theoremus-urban-solutions/transit-query/gtfs"
)

// Metrics are the engine's Prometheus collectors.
type Metrics struct {
	queries      *prometheus.CounterVec
	latency      *prometheus.SummaryVec
	cacheLookups *prometheus.CounterVec
	reloads      *prometheus.CounterVec
	entities     *prometheus.GaugeVec
	lastReload   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_queries_total",
			Help: "Queries served, by kind and outcome",
		}, []string{"kind", "outcome"}),
		latency: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       "transit_query_duration_seconds",
			Help:       "Time spent answering queries, by kind",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"kind"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_cache_lookups_total",
			Help: "Result cache lookups, by kind and result",
		}, []string{"kind", "result"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_dataset_reloads_total",
			Help: "Dataset reload attempts, by status",
		}, []string{"status"}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "transit_dataset_entities",
			Help: "Entities in the serving dataset",
		}, []string{"entity"}),
		lastReload: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_dataset_loaded_timestamp_seconds",
			Help: "Unix time the serving dataset was loaded",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.queries, m.latency, m.cacheLookups, m.reloads, m.entities, m.lastReload)
	}
	return m
}

func (m *Metrics) observeDataset(d *gtfs.Dataset) {
	c := d.Counts()
	m.entities.WithLabelValues("stops").Set(float64(c.Stops))
	m.entities.WithLabelValues("routes").Set(float64(c.Routes))
	m.entities.WithLabelValues("trips").Set(float64(c.Trips))
	m.entities.WithLabelValues("stop_times").Set(float64(c.StopTimes))
	m.entities.WithLabelValues("shapes").Set(float64(c.Shapes))
	m.lastReload.Set(float64(d.LoadedAt.Unix()))
}

func outcome(err error) string {
	switch err.(type) {
	case nil:
		return "ok"
	case *InvalidParameterError:
		return "invalid"
	case *NotFoundError:
		return "not_found"
	}
	return "error"
}
