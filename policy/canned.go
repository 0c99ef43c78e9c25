package policy

import (
	"context"

	"golang.org/x/exp/rand"
)

// Canned draws steps from a fixed list. It stands in for a model in dry runs.
type Canned struct {
	steps []string
	rng   *rand.Rand
}

func NewCanned(seed uint64, steps ...string) *Canned {
	if len(steps) == 0 {
		panic("canned policy needs at least one step")
	}
	return &Canned{
		steps: steps,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (c *Canned) NextStep(ctx context.Context, question string, steps []string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	step := c.steps[c.rng.Intn(len(c.steps))]
	return step, IsFinal(step), nil
}
