package bingo

import (
	"github.com/benbjohnson/immutable"
)

// HallOfFame is a bounded, fitness-ordered archive of the best equations
// seen during a search. Offered equations are copied in, so later mutation
// of the originals cannot disturb the archive.
type HallOfFame struct {
	size int
	best *immutable.SortedMap // fitness -> *AGraph
}

// NewHallOfFame returns an archive holding at most size equations.
func NewHallOfFame(size int) *HallOfFame {
	assert(size > 0, "hall of fame size %d", size)
	return &HallOfFame{
		size: size,
		best: immutable.NewSortedMap(&float64Comparer{}),
	}
}

// Offer records a copy of g if its fitness ranks within the archive.
// Returns true if the equation was admitted. Equations without a valid
// fitness, or tied with an already archived fitness, are rejected.
func (h *HallOfFame) Offer(g *AGraph) bool {
	if !g.IsFitnessSet() {
		return false
	}
	fitness := g.Fitness()
	if _, ok := h.best.Get(fitness); ok {
		return false
	}

	best := h.best.Set(fitness, g.Copy())
	if best.Len() > h.size {
		itr := best.Iterator()
		itr.Last()
		worst, _ := itr.Prev()
		best = best.Delete(worst)
		if worst.(float64) == fitness {
			return false
		}
	}
	h.best = best
	return true
}

// Len returns the number of archived equations.
func (h *HallOfFame) Len() int {
	return h.best.Len()
}

// Best returns the archived equation with the lowest fitness, or nil if
// the archive is empty.
func (h *HallOfFame) Best() *AGraph {
	if h.best.Len() == 0 {
		return nil
	}
	itr := h.best.Iterator()
	_, v := itr.Next()
	return v.(*AGraph)
}

// Equations returns the archived equations in ascending fitness order.
func (h *HallOfFame) Equations() []*AGraph {
	equations := make([]*AGraph, 0, h.best.Len())
	itr := h.best.Iterator()
	for {
		k, v := itr.Next()
		if k == nil {
			return equations
		}
		equations = append(equations, v.(*AGraph))
	}
}

// float64Comparer compares two float64 keys. Implements immutable.Comparer.
type float64Comparer struct{}

// Compare returns -1 if a is less than b, returns 1 if a is greater than b,
// and returns 0 if a is equal to b. Panic if a or b is not a float64.
func (c *float64Comparer) Compare(a, b interface{}) int {
	if i, j := a.(float64), b.(float64); i < j {
		return -1
	} else if i > j {
		return 1
	}
	return 0
}
