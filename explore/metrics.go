package explore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds the exploration counters of one registry.
type Metrics struct {
	discovered prometheus.Counter
	expanded   prometheus.Counter
	satisfying prometheus.Counter
	witnesses  prometheus.Counter
	pruned     *prometheus.CounterVec
	queueDepth prometheus.Gauge
	lowerBound prometheus.Gauge
	runs       *prometheus.CounterVec
	duration   *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers the exploration metrics on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		discovered: f.NewCounter(prometheus.CounterOpts{
			Namespace: "wayfarer",
			Subsystem: "explore",
			Name:      "states_discovered_total",
			Help:      "States added to the visited table",
		}),
		expanded: f.NewCounter(prometheus.CounterOpts{
			Namespace: "wayfarer",
			Subsystem: "explore",
			Name:      "states_expanded_total",
			Help:      "States whose successors were generated",
		}),
		satisfying: f.NewCounter(prometheus.CounterOpts{
			Namespace: "wayfarer",
			Subsystem: "explore",
			Name:      "satisfying_states_total",
			Help:      "Dequeued states inside the target region",
		}),
		witnesses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "wayfarer",
			Subsystem: "explore",
			Name:      "witnesses_total",
			Help:      "Witness traces emitted",
		}),
		pruned: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wayfarer",
			Subsystem: "explore",
			Name:      "successors_pruned_total",
			Help:      "Successors dropped before discovery",
		}, []string{"reason"}),
		queueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "wayfarer",
			Subsystem: "explore",
			Name:      "queue_depth",
			Help:      "States waiting in the priority queue",
		}),
		lowerBound: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "wayfarer",
			Subsystem: "explore",
			Name:      "probability_lower_bound",
			Help:      "Sum of witness probabilities of the last run",
		}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wayfarer",
			Subsystem: "explore",
			Name:      "runs_total",
			Help:      "Explorations started",
		}, []string{"mode"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wayfarer",
			Subsystem: "explore",
			Name:      "duration_seconds",
			Help:      "Wall time of one exploration",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"mode"}),
		gatherer: reg,
	}
}

// Table renders the gathered metrics as a markdown table.
func (m *Metrics) Table() (string, error) {
	families, err := m.gatherer.Gather()
	if err != nil {
		return "", fmt.Errorf("gather metrics: %w", err)
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	var sb strings.Builder
	sb.WriteString("| Metric | Type | Value | Description |\n")
	sb.WriteString("|--------|------|-------|-------------|\n")
	for _, mf := range families {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			mf.GetName(), strings.ToLower(mf.GetType().String()), familyValue(mf), mf.GetHelp())
	}
	return sb.String(), nil
}

// familyValue sums a family across its label sets. Histograms report
// their observation count.
func familyValue(mf *dto.MetricFamily) string {
	var total float64
	for _, m := range mf.GetMetric() {
		switch mf.GetType() {
		case dto.MetricType_COUNTER:
			total += m.GetCounter().GetValue()
		case dto.MetricType_GAUGE:
			total += m.GetGauge().GetValue()
		case dto.MetricType_HISTOGRAM:
			total += float64(m.GetHistogram().GetSampleCount())
		}
	}
	return fmt.Sprintf("%.6g", total)
}
