package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Assessments      *prometheus.CounterVec
	ProviderErrors   *prometheus.CounterVec
	RequestSeconds   *prometheus.HistogramVec
	IncidentsLoaded  prometheus.Gauge
	IncidentsSkipped prometheus.Gauge
	IncidentReloads  prometheus.Counter
	ActiveWorkers    prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Assessments: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "searisk_assessments_total",
			Help: "Total number of route risk assessments.",
		}, []string{"status"}),
		ProviderErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "searisk_provider_errors_total",
			Help: "Total number of errors received from external provider APIs.",
		}, []string{"provider"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "searisk_provider_request_duration_seconds",
			Help:    "Duration of requests to external provider APIs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		IncidentsLoaded: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "searisk_incidents_loaded",
			Help: "Number of incident records in the active index.",
		}),
		IncidentsSkipped: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "searisk_incidents_skipped",
			Help: "Number of malformed incident rows skipped during the last load.",
		}),
		IncidentReloads: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "searisk_incident_reloads_total",
			Help: "Total number of incident dataset reload requests.",
		}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "searisk_active_workers",
			Help: "Current number of active workers evaluating alternative routes.",
		}),
	}
}
