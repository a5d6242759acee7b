// Package metrics holds the Prometheus collectors shared by the catalog services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetches_total",
			Help: "Catalog snapshot fetches by result.",
		},
		[]string{"result"},
	)

	CatalogFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_fetch_duration_seconds",
		Help:    "Duration of catalog snapshot fetches in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	StaleSnapshotsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_stale_snapshots_discarded_total",
		Help: "Snapshots dropped because a newer fetch had already been delivered.",
	})

	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_uploads_total",
			Help: "Upload coordinator runs by kind, source and result.",
		},
		[]string{"kind", "source", "result"},
	)

	ThumbnailsDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_thumbnail_degraded_total",
		Help: "Uploads that continued without a thumbnail after the thumbnail write failed.",
	})

	Deletes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_deletes_total",
			Help: "Delete operations by result.",
		},
		[]string{"result"},
	)

	Edits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_edits_total",
			Help: "Edit operations by result.",
		},
		[]string{"result"},
	)

	OrphanedObjects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_orphaned_objects_total",
			Help: "Objects left in storage without a catalog row.",
		},
		[]string{"reason"},
	)

	ChangefeedDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "changefeed_dropped_events_total",
		Help: "Change events dropped because a subscriber buffer was full.",
	})

	Inquiries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiries_total",
			Help: "Purchase inquiries by result.",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
