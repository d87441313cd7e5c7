package motionplan

import (
	"math"

	"github.com/pallet-robotics/kinecore/referenceframe"
)

// node is a tree vertex: a joint configuration, the index of its parent in the owning tree's
// node slice (-1 for the root), and its cost-to-come from the root. Mirrors the
// node/basicNode split in daoran-rdk's cBiRRT.go, collapsed into a single struct since this
// planner carries no constraint/corner bookkeeping.
type node struct {
	q      []float64
	parent int
	cost   float64
}

// distance is the Euclidean distance between two joint configurations, wrapping any
// continuous-joint column to its shortest angular difference first (Limit.IsContinuous) so that,
// e.g., a joint near +pi and one near -pi read as close rather than nearly 2*pi apart. limits may
// be nil or shorter than a/b, in which case the remaining columns are treated as non-continuous.
func distance(a, b []float64, limits []referenceframe.Limit) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		if i < len(limits) && limits[i].IsContinuous() {
			d = referenceframe.WrapContinuous(d)
		}
		sum += d * d
	}
	return math.Sqrt(sum)
}

// tree is the growing RRT* search structure, rooted at index 0.
type tree struct {
	nodes  []node
	limits []referenceframe.Limit
}

func newTree(root []float64, limits []referenceframe.Limit) *tree {
	return &tree{nodes: []node{{q: root, parent: -1, cost: 0}}, limits: limits}
}

func (t *tree) add(n node) int {
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

// nearest returns the index of the tree node closest to q by Euclidean distance.
func (t *tree) nearest(q []float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, n := range t.nodes {
		if d := distance(n.q, q, t.limits); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// near returns the indices of every tree node within radius r of q.
func (t *tree) near(q []float64, r float64) []int {
	var out []int
	for i, n := range t.nodes {
		if distance(n.q, q, t.limits) <= r {
			out = append(out, i)
		}
	}
	return out
}

// path backtracks parent pointers from goalIdx to the root, returning configurations in
// root-to-goal order.
func (t *tree) path(goalIdx int) [][]float64 {
	var rev [][]float64
	for i := goalIdx; i != -1; i = t.nodes[i].parent {
		rev = append(rev, t.nodes[i].q)
	}
	path := make([][]float64, len(rev))
	for i, q := range rev {
		path[len(rev)-1-i] = q
	}
	return path
}
