package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	agentDuration *prom.HistogramVec
	outcomes      *prom.CounterVec
	fileStatus    *prom.CounterVec
	cacheLookups  *prom.CounterVec
	runDuration   prom.Histogram
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		agentDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "autotag",
			Name:      "agent_call_duration_seconds",
			Help:      "Duration of text-generation calls",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"result"}),
		outcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "autotag",
			Name:      "generator_outcomes_total",
			Help:      "Tag generator outcomes",
		}, []string{"outcome"}),
		fileStatus: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "autotag",
			Name:      "files_total",
			Help:      "Processed content files by status",
		}, []string{"status"}),
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "autotag",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result",
		}, []string{"result"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "autotag",
			Name:      "run_duration_seconds",
			Help:      "Duration of a full tagging run",
			Buckets:   prom.DefBuckets,
		}),
	}
	reg.MustRegister(pr.agentDuration, pr.outcomes, pr.fileStatus, pr.cacheLookups, pr.runDuration)
	return pr
}

func (p *PrometheusRecorder) ObserveAgentCall(d time.Duration, success bool) {
	if p == nil {
		return
	}
	p.agentDuration.WithLabelValues(resultLabel(success)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncOutcome(outcome string) {
	if p == nil {
		return
	}
	p.outcomes.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncFileStatus(status string) {
	if p == nil {
		return
	}
	p.fileStatus.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) IncCacheLookup(hit bool) {
	if p == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cacheLookups.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}
