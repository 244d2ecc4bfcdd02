package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewMetricsIndependentRegistries(t *testing.T) {
	// Same namespace twice must not collide as long as each caller
	// brings its own registry.
	first := NewMetrics("nexus", prometheus.NewRegistry())
	second := NewMetrics("nexus", prometheus.NewRegistry())

	first.ObserveTurn("done")
	second.ObserveTurn("done")
}

func TestMetricsObservationsAreGatherable(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("nexus", reg)

	m.ActiveSessions.Inc()
	m.ObserveSessionEvent("created")
	m.ObserveWSMessage("in", "user_text")
	m.ObserveTurn("done")
	m.ObserveToolDispatch("web_search", "ok")
	m.ObserveToolRounds(2)
	m.RemindersFired.Inc()
	m.ObserveEndpointLatency(1500 * time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	got := make(map[string]bool, len(families))
	for _, mf := range families {
		got[mf.GetName()] = true
	}
	for _, name := range []string{
		"nexus_active_sessions",
		"nexus_session_events_total",
		"nexus_ws_messages_total",
		"nexus_turns_total",
		"nexus_tool_dispatches_total",
		"nexus_tool_rounds_per_turn",
		"nexus_reminders_fired_total",
		"nexus_endpoint_latency_ms",
	} {
		if !got[name] {
			t.Fatalf("metric %q missing after observations, gathered %v", name, got)
		}
	}
}
