package metrics

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Iterations  int
	MaxDepth    int
	MaxChildren int
	Duration    time.Duration
	Completed   int // Iterations run, failed ones included
	Expansions  int
	Evaluations int
	Failures    int
	ScoreSum    float64
	BestScore   float64
}

// MeanScore is the average verifier score over all evaluations, 0 without any.
func (m SearchMetric) MeanScore() float64 {
	if m.Evaluations == 0 {
		return 0
	}
	return m.ScoreSum / float64(m.Evaluations)
}

type Collector interface {
	Start(iterations, maxDepth, maxChildren int)
	AddIteration()
	AddExpansion()
	AddEvaluation(score float64)
	AddFailure()
	Complete() SearchMetric
}

type collector struct {
	iterations  int
	maxDepth    int
	maxChildren int
	startTime   time.Time
	completed   atomic.Int32
	expansions  atomic.Int32
	evaluations atomic.Int32
	failures    atomic.Int32

	mu        sync.Mutex
	scoreSum  float64
	bestScore float64
}

func NewCollector() Collector {
	return &collector{bestScore: math.Inf(-1)}
}

func (m *collector) Start(iterations, maxDepth, maxChildren int) {
	m.startTime = time.Now()
	m.iterations = iterations
	m.maxDepth = maxDepth
	m.maxChildren = maxChildren
}

func (m *collector) AddIteration() {
	m.completed.Add(1)
}

func (m *collector) AddExpansion() {
	m.expansions.Add(1)
}

func (m *collector) AddEvaluation(score float64) {
	m.evaluations.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoreSum += score
	m.bestScore = max(m.bestScore, score)
}

func (m *collector) AddFailure() {
	m.failures.Add(1)
}

func (m *collector) Complete() SearchMetric {
	m.mu.Lock()
	scoreSum, bestScore := m.scoreSum, m.bestScore
	m.mu.Unlock()

	if math.IsInf(bestScore, -1) {
		bestScore = 0
	}

	return SearchMetric{
		Iterations:  m.iterations,
		MaxDepth:    m.maxDepth,
		MaxChildren: m.maxChildren,
		Duration:    time.Since(m.startTime),
		Completed:   int(m.completed.Load()),
		Expansions:  int(m.expansions.Load()),
		Evaluations: int(m.evaluations.Load()),
		Failures:    int(m.failures.Load()),
		ScoreSum:    scoreSum,
		BestScore:   bestScore,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(iterations, maxDepth, maxChildren int) {}
func (m *dummyCollector) AddIteration()                               {}
func (m *dummyCollector) AddExpansion()                               {}
func (m *dummyCollector) AddEvaluation(score float64)                 {}
func (m *dummyCollector) AddFailure()                                 {}
func (m *dummyCollector) Complete() SearchMetric                      { return SearchMetric{} }
