package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions  prometheus.Gauge
	SessionEvents   *prometheus.CounterVec
	WSMessages      *prometheus.CounterVec
	Turns           *prometheus.CounterVec
	ToolDispatches  *prometheus.CounterVec
	ToolRounds      prometheus.Histogram
	RemindersFired  prometheus.Counter
	EndpointLatency prometheus.Histogram
}

// NewMetrics registers all instruments on the given registerer. Pass
// prometheus.DefaultRegisterer in the service and a fresh
// prometheus.NewRegistry() in tests so packages can build metrics
// independently without duplicate-registration panics.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of active chat sessions.",
		}),
		SessionEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session events by type.",
		}, []string{"event"}),
		WSMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed conversational turns by outcome.",
		}, []string{"outcome"}),
		ToolDispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_dispatches_total",
			Help:      "Tool handler dispatches by tool and status.",
		}, []string{"tool", "status"}),
		ToolRounds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_rounds_per_turn",
			Help:      "Tool-calling rounds needed per turn.",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 8},
		}),
		RemindersFired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_fired_total",
			Help:      "Background reminders that reached their delay and fired.",
		}),
		EndpointLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "endpoint_latency_ms",
			Help:      "Model endpoint round-trip latency in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000},
		}),
	}
}

func (m *Metrics) ObserveSessionEvent(event string) {
	m.SessionEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

func (m *Metrics) ObserveTurn(outcome string) {
	m.Turns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveToolDispatch(tool, status string) {
	m.ToolDispatches.WithLabelValues(tool, status).Inc()
}

func (m *Metrics) ObserveToolRounds(rounds int) {
	m.ToolRounds.Observe(float64(rounds))
}

func (m *Metrics) ObserveEndpointLatency(d time.Duration) {
	m.EndpointLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
