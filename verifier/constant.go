package verifier

import "context"

// Constant gives every trace the same score.
type Constant float64

func (c Constant) Score(ctx context.Context, question string, steps []string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return float64(c), nil
}
