package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ChecksTotal            *prometheus.CounterVec
	CheckSeconds           *prometheus.HistogramVec
	BuildingsEvaluated     *prometheus.HistogramVec
	ProviderRequests       *prometheus.CounterVec
	ProviderRequestSeconds *prometheus.HistogramVec
	ProviderResolutions    *prometheus.CounterVec
	CacheLookups           *prometheus.CounterVec
	DirectoryBuildings     prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		ChecksTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geofence_checks_total",
			Help: "Total number of geofence checks by evaluation mode.",
		}, []string{"mode"}),
		CheckSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geofence_check_duration_seconds",
			Help:    "Duration of geofence checks.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		BuildingsEvaluated: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geofence_buildings_evaluated",
			Help:    "Number of candidate buildings evaluated per check.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}, []string{"mode"}),
		ProviderRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "spatial_provider_requests_total",
			Help: "Total number of requests to the spatial feature service by strategy and status.",
		}, []string{"strategy", "status"}),
		ProviderRequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spatial_provider_request_duration_seconds",
			Help:    "Duration of requests to the spatial feature service.",
			Buckets: prometheus.DefBuckets,
		}, []string{"strategy"}),
		ProviderResolutions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "spatial_provider_resolutions_total",
			Help: "Nearby-building resolutions by the strategy that produced them.",
		}, []string{"strategy"}),
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "spatial_cache_lookups_total",
			Help: "Discovery cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		DirectoryBuildings: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "directory_buildings",
			Help: "Current number of predefined buildings in the directory.",
		}),
	}
}
