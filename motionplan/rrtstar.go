package motionplan

import (
	"math"
	"math/rand"

	"github.com/edaniels/golog"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pallet-robotics/kinecore/referenceframe"
)

// RRTStarPlanner grows a single rapidly-exploring random tree from a start configuration towards
// a goal, rewiring edges as it goes so that the tree converges towards the cost-optimal
// connection (Karaman & Frazzoli's RRT*). The Go shape (logger + randseed
// threaded through the planner, options struct with construction-time defaults) follows
// AdamMagaluk-rdk/motionplan/motionPlanner.go's planner type.
type RRTStarPlanner struct {
	limits      []referenceframe.Limit
	opts        *RRTStarOptions
	checkConfig ConfigChecker
	logger      golog.Logger
	randseed    *rand.Rand
}

// NewRRTStarPlanner builds a planner over the given joint limits. checkConfig reports whether a
// single configuration is collision-free; a nil checkConfig treats every configuration as free.
func NewRRTStarPlanner(limits []referenceframe.Limit, opts *RRTStarOptions, checkConfig ConfigChecker, randseed *rand.Rand, logger golog.Logger) *RRTStarPlanner {
	if opts == nil {
		opts = DefaultRRTStarOptions()
	}
	if checkConfig == nil {
		checkConfig = func([]referenceframe.Input) (bool, error) { return true, nil }
	}
	if randseed == nil {
		randseed = rand.New(rand.NewSource(1))
	}
	return &RRTStarPlanner{limits: limits, opts: opts, checkConfig: checkConfig, randseed: randseed, logger: logger}
}

// Plan grows the tree from start towards goal and returns the cost-optimal path found within
// MaxIter iterations, or nil if no goal connection was ever recorded.
func (p *RRTStarPlanner) Plan(start, goal []referenceframe.Input) ([][]referenceframe.Input, error) {
	d := len(p.limits)
	startQ := toFloats(start)
	goalQ := toFloats(goal)

	t := newTree(startQ, p.limits)
	samplers := make([]distuv.Uniform, d)
	for i, l := range p.limits {
		lo, hi := l.Min, l.Max
		if l.IsContinuous() {
			// Continuous joints carry +/-Inf bounds (Limit.IsContinuous); sample the wrapped
			// range instead of the raw, unbounded limit.
			lo, hi = -math.Pi, math.Pi
		}
		samplers[i] = distuv.Uniform{Min: lo, Max: hi, Src: p.randseed}
	}

	bestGoalIdx := -1
	bestGoalCost := math.Inf(1)

	for iter := 0; iter < p.opts.MaxIter; iter++ {
		qRand := goalQ
		if p.randseed.Float64() >= p.opts.Epsilon {
			qRand = make([]float64, d)
			for i := range qRand {
				qRand[i] = samplers[i].Rand()
			}
		}

		nearIdx := t.nearest(qRand)
		qNear := t.nodes[nearIdx].q
		qNew := p.steer(qNear, qRand)

		free, err := p.checkSegment(qNear, qNew)
		if err != nil {
			return nil, err
		}
		if !free {
			continue
		}

		n := len(t.nodes)
		r := math.Min(p.opts.GammaRRTStar*math.Pow(math.Log(float64(n+1))/float64(n+1), 1.0/float64(d)), p.opts.DeltaDistance)
		nearSet := t.near(qNew, r)

		parentIdx := nearIdx
		parentCost := t.nodes[nearIdx].cost + distance(qNear, qNew, p.limits)
		for _, vi := range nearSet {
			v := t.nodes[vi]
			cost := v.cost + distance(v.q, qNew, p.limits)
			if cost >= parentCost {
				continue
			}
			if free, err := p.checkSegment(v.q, qNew); err != nil {
				return nil, err
			} else if free {
				parentIdx, parentCost = vi, cost
			}
		}

		newIdx := t.add(node{q: qNew, parent: parentIdx, cost: parentCost})

		for _, vi := range nearSet {
			if vi == parentIdx {
				continue
			}
			v := t.nodes[vi]
			cost := parentCost + distance(qNew, v.q, p.limits)
			if cost >= v.cost {
				continue
			}
			free, err := p.checkSegment(qNew, v.q)
			if err != nil {
				return nil, err
			}
			if free {
				t.nodes[vi].parent = newIdx
				t.nodes[vi].cost = cost
			}
		}

		if distance(qNew, goalQ, p.limits) <= p.opts.DeltaDistance {
			free, err := p.checkSegment(qNew, goalQ)
			if err != nil {
				return nil, err
			}
			if free {
				goalCost := parentCost + distance(qNew, goalQ, p.limits)
				if goalCost < bestGoalCost {
					bestGoalCost = goalCost
					bestGoalIdx = t.add(node{q: goalQ, parent: newIdx, cost: goalCost})
				}
			}
		}

		if p.logger != nil && iter%200 == 0 {
			p.logger.Debugf("rrt* iteration %d, tree size %d, best goal cost %g", iter, len(t.nodes), bestGoalCost)
		}
	}

	if bestGoalIdx == -1 {
		if p.logger != nil {
			p.logger.Debugf("rrt* exhausted %d iterations with no goal connection", p.opts.MaxIter)
		}
		return nil, nil
	}

	raw := t.path(bestGoalIdx)
	if p.opts.StepsOut > 1 {
		raw = resample(raw, p.opts.StepsOut, p.limits)
	}
	path := make([][]referenceframe.Input, len(raw))
	for i, q := range raw {
		path[i] = referenceframe.FloatsToInputs(q)
	}
	return path, nil
}

// steer returns the point delta away from qNear towards qRand, clamped per-joint to limits.
func (p *RRTStarPlanner) steer(qNear, qRand []float64) []float64 {
	d := distance(qNear, qRand, p.limits)
	out := make([]float64, len(qNear))
	if d <= p.opts.DeltaDistance || d == 0 {
		copy(out, qRand)
	} else {
		scale := p.opts.DeltaDistance / d
		for i := range qNear {
			out[i] = qNear[i] + (qRand[i]-qNear[i])*scale
		}
	}
	for i, l := range p.limits {
		if out[i] < l.Min {
			out[i] = l.Min
		}
		if out[i] > l.Max {
			out[i] = l.Max
		}
	}
	return out
}

// checkSegment discretizes [a,b] at a resolution no coarser than DeltaDistance and tests every
// sample for collision.
func (p *RRTStarPlanner) checkSegment(a, b []float64) (bool, error) {
	steps := int(math.Ceil(distance(a, b, p.limits) / p.opts.DeltaDistance))
	if steps < 1 {
		steps = 1
	}
	for s := 0; s <= steps; s++ {
		by := float64(s) / float64(steps)
		q := make([]float64, len(a))
		for i := range a {
			q[i] = a[i] + (b[i]-a[i])*by
		}
		free, err := p.checkConfig(referenceframe.FloatsToInputs(q))
		if err != nil {
			return false, err
		}
		if !free {
			return false, nil
		}
	}
	return true, nil
}

func toFloats(inputs []referenceframe.Input) []float64 {
	return referenceframe.InputsToFloats(inputs)
}

// resample interpolates a root-to-goal configuration sequence into exactly n uniformly spaced
// configurations by walking the piecewise-linear path by cumulative arclength.
func resample(path [][]float64, n int, limits []referenceframe.Limit) [][]float64 {
	if len(path) < 2 {
		return path
	}
	cum := make([]float64, len(path))
	for i := 1; i < len(path); i++ {
		cum[i] = cum[i-1] + distance(path[i-1], path[i], limits)
	}
	total := cum[len(cum)-1]
	out := make([][]float64, n)
	for s := 0; s < n; s++ {
		target := total * float64(s) / float64(n-1)
		seg := 0
		for seg < len(cum)-2 && cum[seg+1] < target {
			seg++
		}
		segLen := cum[seg+1] - cum[seg]
		by := 0.0
		if segLen > 0 {
			by = (target - cum[seg]) / segLen
		}
		q := make([]float64, len(path[seg]))
		for i := range q {
			q[i] = path[seg][i] + (path[seg+1][i]-path[seg][i])*by
		}
		out[s] = q
	}
	return out
}
