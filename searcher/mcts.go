package searcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reasoning/metrics"
	"time"

	"github.com/rs/zerolog/log"
)

type Option func(m *MCTS)

// IterationEvent describes what one iteration of the search did.
type IterationEvent struct {
	Iteration int
	Cursor    NodeID // Node the iteration started from
	Expanded  NodeID // New child, NoParent when the node was not expanded
	Selected  NodeID // Child chosen by UCB1, NoParent when the iteration failed first
	Done      bool
	Evaluated bool
	Score     float64
	Err       error
}

type MCTS struct {
	policy          Policy
	verifier        Verifier
	iterations      int
	maxDepth        int
	maxChildren     int
	exploration     float64
	continueOnError bool
	metrics         metrics.Collector
	observer        func(tree *Tree, event IterationEvent)
	metric          metrics.SearchMetric
}

// WithMaxDepth overrides the default depth cap of iterations/8.
func WithMaxDepth(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.maxDepth = depth
		}
	}
}

func WithMaxChildren(children int) Option {
	return func(m *MCTS) {
		if children > 0 {
			m.maxChildren = children
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 && !math.IsInf(c, 0) {
			m.exploration = c
		}
	}
}

// WithContinueOnError makes a failed policy or verifier call skip the
// iteration instead of ending the search.
func WithContinueOnError(enabled bool) Option {
	return func(m *MCTS) {
		m.continueOnError = enabled
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(m *MCTS) {
		if collector != nil {
			m.metrics = collector
		}
	}
}

// WithObserver registers a callback invoked after every iteration, failed ones
// included. The tree must not be modified by the callback.
func WithObserver(observer func(tree *Tree, event IterationEvent)) Option {
	return func(m *MCTS) {
		m.observer = observer
	}
}

func NewMCTS(policy Policy, verifier Verifier, iterations int, options ...Option) *MCTS {
	if policy == nil || verifier == nil {
		panic("Must specify a policy and a verifier")
	}
	if iterations <= 0 {
		panic("Must specify a positive number of search iterations")
	}

	m := &MCTS{ // Default values
		policy:      policy,
		verifier:    verifier,
		iterations:  iterations,
		maxDepth:    iterations / DepthDivisor,
		maxChildren: DefaultMaxChildren,
		exploration: DefaultExploration,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// RunSearch builds a search with the given options and runs it on question.
func RunSearch(ctx context.Context, question string, policy Policy, verifier Verifier, iterations int, options ...Option) (*Tree, error) {
	return NewMCTS(policy, verifier, iterations, options...).Search(ctx, question)
}

func (m *MCTS) Iterations() int      { return m.iterations }
func (m *MCTS) MaxDepth() int        { return m.maxDepth }
func (m *MCTS) MaxChildren() int     { return m.maxChildren }
func (m *MCTS) Exploration() float64 { return m.exploration }

// Metric returns the metrics of the last search, valid once Search returned.
func (m *MCTS) Metric() metrics.SearchMetric {
	return m.metric
}

// Search runs the iteration budget on a fresh tree. The tree is returned even
// when the search fails, holding everything built up to the failure.
func (m *MCTS) Search(ctx context.Context, question string) (*Tree, error) {
	tree := NewTree(question)
	root := tree.Root().ID()

	m.metrics.Start(m.iterations, m.maxDepth, m.maxChildren)
	defer func() { m.metric = m.metrics.Complete() }()

	log.Info().
		Str("run", tree.RunID().String()).
		Int("iterations", m.iterations).
		Int("max_depth", m.maxDepth).
		Int("max_children", m.maxChildren).
		Msgf("starting search for question %q", question)
	start := time.Now()

	cursor := root
	for i := 0; i < m.iterations; i++ {
		if err := ctx.Err(); err != nil {
			return tree, fmt.Errorf("search interrupted before iteration %d: %w", i, err)
		}

		event, err := m.iterate(ctx, tree, cursor)
		event.Iteration = i
		m.metrics.AddIteration()

		if err != nil {
			event.Err = err
			m.metrics.AddFailure()
			m.notify(tree, event)
			if !m.continueOnError || !isExternalFailure(err) || ctx.Err() != nil {
				return tree, fmt.Errorf("iteration %d: %w", i, err)
			}
			log.Warn().Err(err).Int("iteration", i).Msg("skipping failed iteration")
			cursor = root
			continue
		}

		m.notify(tree, event)
		if event.Evaluated {
			cursor = root
		} else {
			cursor = event.Selected
		}
	}

	rootNode := tree.Root()
	log.Info().
		Str("run", tree.RunID().String()).
		Int("nodes", tree.Size()).
		Int("evaluations", rootNode.Visits()).
		Float64("mean_score", rootNode.Mean()).
		Dur("elapsed", time.Since(start)).
		Msg("completed search")

	return tree, nil
}

// iterate runs one step of the cursor state machine: expansion gate,
// completion check, selection and, for finished paths, scoring.
func (m *MCTS) iterate(ctx context.Context, tree *Tree, cursor NodeID) (IterationEvent, error) {
	event := IterationEvent{
		Cursor:   cursor,
		Expanded: NoParent,
		Selected: NoParent,
	}
	node := tree.Node(cursor)

	var done bool
	if node.NumChildren() < m.maxChildren { // Expandable node
		step, final, err := m.policy.NextStep(ctx, tree.Question(), node.Steps())
		if err != nil {
			return event, fmt.Errorf("%w: %w", ErrPolicy, err)
		}
		event.Expanded = tree.Expand(cursor, step)
		m.metrics.AddExpansion()
		done = final
	} else if node.NumChildren() == 0 && node.Depth() > 0 {
		// Dead-end leaf that was never expanded
		done = true
	}

	selected, err := tree.SelectChild(cursor, m.exploration)
	if err != nil {
		return event, err
	}
	event.Selected = selected
	event.Done = done

	child := tree.Node(selected)
	log.Debug().
		Int("cursor", int(cursor)).
		Int("selected", int(selected)).
		Int("depth", child.Depth()).
		Bool("expanded", event.Expanded != NoParent).
		Bool("done", done).
		Msg("iteration")

	if !done && child.Depth() < m.maxDepth {
		return event, nil
	}

	score, err := m.verifier.Score(ctx, tree.Question(), child.Steps())
	if err != nil {
		return event, fmt.Errorf("%w: %w", ErrVerifier, err)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return event, fmt.Errorf("%w: score %v is not a finite number", ErrVerifier, score)
	}

	tree.Backpropagate(selected, score)
	m.metrics.AddEvaluation(score)
	event.Evaluated = true
	event.Score = score

	log.Info().
		Int("node", int(selected)).
		Int("depth", child.Depth()).
		Float64("score", score).
		Msg("scored reasoning trace")

	return event, nil
}

func (m *MCTS) notify(tree *Tree, event IterationEvent) {
	if m.observer != nil {
		m.observer(tree, event)
	}
}

func isExternalFailure(err error) bool {
	return errors.Is(err, ErrPolicy) || errors.Is(err, ErrVerifier)
}
