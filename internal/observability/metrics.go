package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics содержит счетчики Prometheus для конвейера консолидации и маршрутизации
type Metrics struct {
	SignalsIngested  prometheus.Counter
	IncidentsCreated prometheus.Counter
	IncidentsMerged  prometheus.Counter
	RouteRequests    prometheus.Counter
	RoutesEmpty      prometheus.Counter
	TelemetryDropped prometheus.Counter
	IngestErrors     *prometheus.CounterVec // label: source={noaa,usgs}
	ActiveIncidents  prometheus.Gauge
}

// NewMetrics создает и регистрирует метрики в реестре Prometheus по умолчанию
func NewMetrics() *Metrics {
	m := &Metrics{
		SignalsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_routing",
			Name:      "signals_ingested_total",
			Help:      "Total raw signals accepted for consolidation.",
		}),
		IncidentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_routing",
			Name:      "incidents_created_total",
			Help:      "Total new incidents inserted (no near-duplicate found).",
		}),
		IncidentsMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_routing",
			Name:      "incidents_merged_total",
			Help:      "Total merge operations absorbing near-duplicate reports.",
		}),
		RouteRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_routing",
			Name:      "route_requests_total",
			Help:      "Total safest-route selections performed.",
		}),
		RoutesEmpty: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_routing",
			Name:      "routes_empty_total",
			Help:      "Total route requests for which the provider returned no candidates.",
		}),
		TelemetryDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_routing",
			Name:      "telemetry_dropped_total",
			Help:      "Total decision events that failed to publish (best-effort sink).",
		}),
		IngestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_routing",
			Name:      "ingest_errors_total",
			Help:      "Feed ingestion failures by source.",
		}, []string{"source"}),
		ActiveIncidents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disaster_routing",
			Name:      "active_incidents",
			Help:      "Active (non-dismissed) incidents observed by the last route evaluation.",
		}),
	}

	prometheus.MustRegister(
		m.SignalsIngested,
		m.IncidentsCreated,
		m.IncidentsMerged,
		m.RouteRequests,
		m.RoutesEmpty,
		m.TelemetryDropped,
		m.IngestErrors,
		m.ActiveIncidents,
	)
	return m
}
