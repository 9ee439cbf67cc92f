// Package metrics provides Prometheus instrumentation for scans and imports.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scan results used as label values
const (
	ScanSuccess      = "success"
	ScanInvalidURL   = "invalid_url"
	ScanInaccessible = "inaccessible"
	ScanError        = "error"
)

// Import item results used as label values
const (
	ItemPlaced = "placed"
	ItemFailed = "failed"
)

// Metrics groups the collectors of one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	scansTotal       *prometheus.CounterVec
	scanDuration     prometheus.Histogram
	imagesFound      prometheus.Histogram
	importItemsTotal *prometheus.CounterVec
	importDuration   *prometheus.HistogramVec
	bytesDownloaded  prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivecanvas_scans_total",
				Help: "Total number of folder scans by result",
			},
			[]string{"result"},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "drivecanvas_scan_duration_seconds",
				Help:    "Folder scan duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		imagesFound: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "drivecanvas_scan_images_found",
				Help:    "Number of matching images found per successful scan",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),
		importItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivecanvas_import_items_total",
				Help: "Total number of import items by variant and result",
			},
			[]string{"variant", "result"},
		),
		importDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "drivecanvas_import_duration_seconds",
				Help:    "Import batch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"variant"},
		),
		bytesDownloaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "drivecanvas_content_bytes_downloaded_total",
				Help: "Total bytes of image content downloaded",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.scansTotal,
			m.scanDuration,
			m.imagesFound,
			m.importItemsTotal,
			m.importDuration,
			m.bytesDownloaded,
		)
	}
	return m
}

// ObserveScan records a finished scan
func (m *Metrics) ObserveScan(result string, found int, duration time.Duration) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(result).Inc()
	m.scanDuration.Observe(duration.Seconds())
	if result == ScanSuccess {
		m.imagesFound.Observe(float64(found))
	}
}

// ObserveImportItem records the outcome of one import item
func (m *Metrics) ObserveImportItem(variant, result string, bytes int) {
	if m == nil {
		return
	}
	m.importItemsTotal.WithLabelValues(variant, result).Inc()
	if bytes > 0 {
		m.bytesDownloaded.Add(float64(bytes))
	}
}

// ObserveImport records a finished import batch
func (m *Metrics) ObserveImport(variant string, duration time.Duration) {
	if m == nil {
		return
	}
	m.importDuration.WithLabelValues(variant).Observe(duration.Seconds())
}

// Handler returns an HTTP handler exposing the gathered metrics
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
