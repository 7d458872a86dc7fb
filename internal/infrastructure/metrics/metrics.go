package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the relay's Prometheus collectors. All methods are nil-safe
// so wiring metrics stays optional.
type Metrics struct {
	registry *prometheus.Registry

	activeConnections prometheus.Gauge
	eventsRelayed     *prometheus.CounterVec
	deliveriesDropped prometheus.Counter
	uploadsTotal      prometheus.Counter
	uploadBytes       prometheus.Counter
	downloadsTotal    prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "chatrelay",
			Name:      "active_connections",
			Help:      "Number of live websocket connections.",
		}),
		eventsRelayed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatrelay",
			Name:      "events_relayed_total",
			Help:      "Inbound events processed by the relay, by type.",
		}, []string{"type"}),
		deliveriesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatrelay",
			Name:      "deliveries_dropped_total",
			Help:      "Fan-out deliveries dropped because a client buffer was full.",
		}),
		uploadsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatrelay",
			Name:      "uploads_total",
			Help:      "Files accepted by the upload relay.",
		}),
		uploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatrelay",
			Name:      "upload_bytes_total",
			Help:      "Bytes written to the blob store.",
		}),
		downloadsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatrelay",
			Name:      "downloads_total",
			Help:      "Files served by the download relay.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ConnOpened() {
	if m == nil {
		return
	}
	m.activeConnections.Inc()
}

func (m *Metrics) ConnClosed() {
	if m == nil {
		return
	}
	m.activeConnections.Dec()
}

func (m *Metrics) EventRelayed(eventType string) {
	if m == nil {
		return
	}
	m.eventsRelayed.WithLabelValues(eventType).Inc()
}

func (m *Metrics) DeliveryDropped() {
	if m == nil {
		return
	}
	m.deliveriesDropped.Inc()
}

func (m *Metrics) UploadAccepted(bytes int64) {
	if m == nil {
		return
	}
	m.uploadsTotal.Inc()
	m.uploadBytes.Add(float64(bytes))
}

func (m *Metrics) DownloadServed() {
	if m == nil {
		return
	}
	m.downloadsTotal.Inc()
}
