package searcher

import (
	"context"
	"errors"
	"math"
)

// Hyperparameters for MCTS

const DefaultMaxChildren = 3

// Iterations per unit of max depth when no depth is configured
const DepthDivisor = 8

var DefaultExploration = math.Sqrt2

var (
	ErrNoChildren = errors.New("node has no children")
	ErrPolicy     = errors.New("policy call failed")
	ErrVerifier   = errors.New("verifier call failed")
)

// Policy proposes the next reasoning step for a question given the steps so far.
// final reports that the trace is complete and should not be expanded further.
type Policy interface {
	NextStep(ctx context.Context, question string, steps []string) (step string, final bool, err error)
}

// Verifier scores a finished reasoning trace. Higher is better.
type Verifier interface {
	Score(ctx context.Context, question string, steps []string) (float64, error)
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(ctx context.Context, question string, steps []string) (string, bool, error)

func (f PolicyFunc) NextStep(ctx context.Context, question string, steps []string) (string, bool, error) {
	return f(ctx, question, steps)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, question string, steps []string) (float64, error)

func (f VerifierFunc) Score(ctx context.Context, question string, steps []string) (float64, error) {
	return f(ctx, question, steps)
}
