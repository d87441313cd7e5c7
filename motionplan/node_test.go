package motionplan

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/pallet-robotics/kinecore/referenceframe"
)

func TestDistanceWrapsContinuousJoints(t *testing.T) {
	continuous := []referenceframe.Limit{{Min: math.Inf(-1), Max: math.Inf(1)}}
	revolute := []referenceframe.Limit{{Min: -math.Pi, Max: math.Pi}}

	// A continuous joint near +pi and one near -pi are a short hop apart, not nearly 2*pi apart.
	a := []float64{math.Pi - 0.1}
	b := []float64{-math.Pi + 0.1}
	test.That(t, distance(a, b, continuous), test.ShouldAlmostEqual, 0.2, 1e-9)
	test.That(t, distance(a, b, revolute), test.ShouldAlmostEqual, 2*math.Pi-0.2, 1e-9)

	// nil/short limits leave every column unwrapped.
	test.That(t, distance(a, b, nil), test.ShouldAlmostEqual, 2*math.Pi-0.2, 1e-9)
}

func TestTreeNearestWrapsContinuousJoints(t *testing.T) {
	limits := []referenceframe.Limit{{Min: math.Inf(-1), Max: math.Inf(1)}}
	tr := newTree([]float64{math.Pi - 0.05}, limits)
	tr.add(node{q: []float64{0}, parent: 0, cost: 1})

	idx := tr.nearest([]float64{-math.Pi + 0.05})
	test.That(t, idx, test.ShouldEqual, 0)
}
