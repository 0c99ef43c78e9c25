package searcher

import "math"

type ucb struct {
	c     float64
	lnSum float64
}

// newUCB precomputes ln of the summed child visits. Callers must return any
// unvisited child before building one, so totalVisits is always positive here.
func newUCB(c float64, totalVisits int) ucb {
	if totalVisits <= 0 {
		panic("cannot compute UCB1: children have no visits")
	}
	return ucb{c: c, lnSum: math.Log(float64(totalVisits))}
}

// UCB1 = Q/N + c*sqrt(ln(total)/N)
func (u ucb) evaluate(rewards float64, visits int) float64 {
	if visits == 0 {
		panic("cannot compute UCB1: 0 visits")
	}
	n := float64(visits)
	return rewards/n + u.c*math.Sqrt(u.lnSum/n)
}
