package motionplan

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/pallet-robotics/kinecore/referenceframe"
	"github.com/pallet-robotics/kinecore/spatialmath"
)

// twoLinkPlanarArm builds the same minimal 2-revolute-joint planar arm used in the ik package's
// tests: world -> joint1 (z) -> link1 (1m along x) -> joint2 (z) -> eef (1m along x).
func twoLinkPlanarArm(t *testing.T) *referenceframe.Model {
	t.Helper()
	limit := &referenceframe.Limit{Min: -math.Pi, Max: math.Pi}
	links := []referenceframe.Link{
		{Name: "base"},
		{Name: "link1", Offset: spatialmath.NewPoseFromPoint(r3.Vector{X: 1})},
		{Name: "eef", Offset: spatialmath.NewPoseFromPoint(r3.Vector{X: 1})},
	}
	joints := []referenceframe.Joint{
		{Name: "joint1", Parent: "base", Child: "link1", Axis: r3.Vector{Z: 1}, Origin: spatialmath.NewZeroPose(), Kind: referenceframe.JointRevolute, Limit: limit},
		{Name: "joint2", Parent: "link1", Child: "eef", Axis: r3.Vector{Z: 1}, Origin: spatialmath.NewZeroPose(), Kind: referenceframe.JointRevolute, Limit: limit},
	}
	tree, err := referenceframe.NewKinematicTree("planar2", links, joints, "base")
	test.That(t, err, test.ShouldBeNil)
	model, err := referenceframe.NewModel(tree, "eef")
	test.That(t, err, test.ShouldBeNil)
	return model
}

func TestRRTStarFindsPath(t *testing.T) {
	model := twoLinkPlanarArm(t)
	opts := DefaultRRTStarOptions()
	opts.MaxIter = 500

	planner := NewRRTStarPlanner(model.DoF(), opts, nil, rand.New(rand.NewSource(42)), nil)
	start := []referenceframe.Input{{Value: 0}, {Value: 0}}
	goal := []referenceframe.Input{{Value: 0.6}, {Value: -0.8}}

	path, err := planner.Plan(start, goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path, test.ShouldNotBeNil)
	test.That(t, len(path), test.ShouldBeGreaterThanOrEqualTo, 2)

	last := path[len(path)-1]
	test.That(t, last[0].Value, test.ShouldAlmostEqual, goal[0].Value, 1e-6)
	test.That(t, last[1].Value, test.ShouldAlmostEqual, goal[1].Value, 1e-6)
}

func TestRRTStarNoPathWhenBlocked(t *testing.T) {
	model := twoLinkPlanarArm(t)
	opts := DefaultRRTStarOptions()
	opts.MaxIter = 200

	alwaysBlocked := func([]referenceframe.Input) (bool, error) { return false, nil }
	planner := NewRRTStarPlanner(model.DoF(), opts, alwaysBlocked, rand.New(rand.NewSource(1)), nil)
	start := []referenceframe.Input{{Value: 0}, {Value: 0}}
	goal := []referenceframe.Input{{Value: 1}, {Value: 1}}

	path, err := planner.Plan(start, goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path, test.ShouldBeNil)
}

func TestSmoothPathPreservesEndpoints(t *testing.T) {
	alwaysFree := func([]referenceframe.Input) (bool, error) { return true, nil }
	path := [][]referenceframe.Input{
		{{Value: 0}, {Value: 0}},
		{{Value: 0.2}, {Value: 0.1}},
		{{Value: 0.4}, {Value: 0.2}},
		{{Value: 0.6}, {Value: 0.3}},
		{{Value: 0.8}, {Value: 0.4}},
	}
	smoothed := SmoothPath(path, alwaysFree, 50, rand.New(rand.NewSource(7)), nil)
	test.That(t, smoothed[0], test.ShouldResemble, path[0])
	test.That(t, smoothed[len(smoothed)-1], test.ShouldResemble, path[len(path)-1])
}
