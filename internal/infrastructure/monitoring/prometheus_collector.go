package monitoring

import (
	"peercall/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector exports relay activity as Prometheus metrics. It is the
// production MetricsSink; tests use ports.NopMetrics instead.
type PrometheusCollector struct {
	connectionsTotal prometheus.Gauge
	roomsActive      prometheus.Gauge

	messagesRelayed *prometheus.CounterVec
	relayFanout     *prometheus.HistogramVec
	joinsRejected   *prometheus.CounterVec
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		connectionsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "peercall_connections_total",
			Help: "Number of live signaling connections",
		}),

		roomsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "peercall_rooms_active_total",
			Help: "Number of rooms with at least one member",
		}),

		messagesRelayed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "peercall_messages_relayed_total",
			Help: "Messages relayed between room peers, by message type",
		}, []string{"type"}),

		relayFanout: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "peercall_relay_fanout",
			Help:    "Number of recipients per relayed message",
			Buckets: []float64{0, 1, 2},
		}, []string{"type"}),

		joinsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "peercall_joins_rejected_total",
			Help: "Join attempts rejected, by reason",
		}, []string{"reason"}),
	}
}

var _ ports.MetricsSink = (*PrometheusCollector)(nil)

func (p *PrometheusCollector) ConnectionOpened() {
	p.connectionsTotal.Inc()
}

func (p *PrometheusCollector) ConnectionClosed() {
	p.connectionsTotal.Dec()
}

func (p *PrometheusCollector) RoomCreated() {
	p.roomsActive.Inc()
}

func (p *PrometheusCollector) RoomDeleted() {
	p.roomsActive.Dec()
}

func (p *PrometheusCollector) MessageRelayed(kind string, targets int) {
	p.messagesRelayed.WithLabelValues(kind).Inc()
	p.relayFanout.WithLabelValues(kind).Observe(float64(targets))
}

func (p *PrometheusCollector) JoinRejected(reason string) {
	p.joinsRejected.WithLabelValues(reason).Inc()
}
