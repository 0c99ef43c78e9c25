package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector exports search progress as Prometheus metrics while
// keeping an in-memory summary for Complete.
type PrometheusCollector struct {
	Collector

	iterations  prometheus.Counter
	expansions  prometheus.Counter
	evaluations prometheus.Counter
	failures    prometheus.Counter
	scores      prometheus.Histogram
	budget      prometheus.Gauge
}

// NewPrometheusCollector registers the search metrics on reg. Pass
// prometheus.DefaultRegisterer to expose them through promhttp.Handler.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)
	return &PrometheusCollector{
		Collector: NewCollector(),
		iterations: factory.NewCounter(prometheus.CounterOpts{
			Name: "reasoning_search_iterations_total",
			Help: "Search iterations run, failed ones included",
		}),
		expansions: factory.NewCounter(prometheus.CounterOpts{
			Name: "reasoning_search_expansions_total",
			Help: "Nodes added to the search tree",
		}),
		evaluations: factory.NewCounter(prometheus.CounterOpts{
			Name: "reasoning_search_evaluations_total",
			Help: "Verifier evaluations backpropagated through the tree",
		}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "reasoning_search_failures_total",
			Help: "Iterations aborted by a policy or verifier failure",
		}),
		scores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "reasoning_search_score",
			Help:    "Verifier scores of finished traces",
			Buckets: prometheus.LinearBuckets(-10, 2, 11), // judge scale -10..10
		}),
		budget: factory.NewGauge(prometheus.GaugeOpts{
			Name: "reasoning_search_iteration_budget",
			Help: "Iteration budget of the current search",
		}),
	}
}

func (p *PrometheusCollector) Start(iterations, maxDepth, maxChildren int) {
	p.Collector.Start(iterations, maxDepth, maxChildren)
	p.budget.Set(float64(iterations))
}

func (p *PrometheusCollector) AddIteration() {
	p.Collector.AddIteration()
	p.iterations.Inc()
}

func (p *PrometheusCollector) AddExpansion() {
	p.Collector.AddExpansion()
	p.expansions.Inc()
}

func (p *PrometheusCollector) AddEvaluation(score float64) {
	p.Collector.AddEvaluation(score)
	p.evaluations.Inc()
	p.scores.Observe(score)
}

func (p *PrometheusCollector) AddFailure() {
	p.Collector.AddFailure()
	p.failures.Inc()
}
