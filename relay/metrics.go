package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	dropMarker = "marker"
	dropSelf   = "self"
	dropSource = "source"
)

// Metrics counts what the relay does with each datagram. A nil *Metrics is
// valid and counts nothing.
type Metrics struct {
	Received   prometheus.Counter
	Dropped    *prometheus.CounterVec
	Sent       *prometheus.CounterVec
	SendErrors *prometheus.CounterVec
}

// NewMetrics creates the relay counters and registers them with reg, if reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Received: f.NewCounter(prometheus.CounterOpts{
			Namespace: "mdns_relay",
			Name:      "received_total",
			Help:      "Datagrams read by the receiver.",
		}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mdns_relay",
			Name:      "dropped_total",
			Help:      "Datagrams the announcer refused to repeat, by reason.",
		}, []string{"reason"}),
		Sent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mdns_relay",
			Name:      "sent_total",
			Help:      "Datagrams repeated, by egress interface.",
		}, []string{"interface"}),
		SendErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mdns_relay",
			Name:      "send_errors_total",
			Help:      "Failed repeats, by egress interface.",
		}, []string{"interface"}),
	}
}

func (m *Metrics) received() {
	if m != nil {
		m.Received.Inc()
	}
}

func (m *Metrics) dropped(reason string) {
	if m != nil {
		m.Dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) sent(iface string) {
	if m != nil {
		m.Sent.WithLabelValues(iface).Inc()
	}
}

func (m *Metrics) sendFailed(iface string) {
	if m != nil {
		m.SendErrors.WithLabelValues(iface).Inc()
	}
}
