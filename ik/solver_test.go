package ik

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/pallet-robotics/kinecore/referenceframe"
	"github.com/pallet-robotics/kinecore/spatialmath"
)

// twoLinkPlanarArm builds a minimal 2-revolute-joint planar arm for exercising the solvers:
// world -> joint1 (z-axis) -> link1 (1m along x) -> joint2 (z-axis) -> eef (1m along x).
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

func TestJacobianConsistency(t *testing.T) {
	model := twoLinkPlanarArm(t)
	q := []referenceframe.Input{{Value: 0.3}, {Value: -0.6}}
	j, _, err := Jacobian(model, q)
	test.That(t, err, test.ShouldBeNil)

	const eps = 1e-6
	for k := range q {
		perturbed := append([]referenceframe.Input(nil), q...)
		perturbed[k].Value += eps
		_, plus, err := Jacobian(model, perturbed)
		test.That(t, err, test.ShouldBeNil)
		_, base, err := Jacobian(model, q)
		test.That(t, err, test.ShouldBeNil)

		numeric := plus.Point().Sub(base.Point()).Mul(1 / eps)
		test.That(t, numeric.X, test.ShouldAlmostEqual, j.At(0, k), 1e-3)
		test.That(t, numeric.Y, test.ShouldAlmostEqual, j.At(1, k), 1e-3)
		test.That(t, numeric.Z, test.ShouldAlmostEqual, j.At(2, k), 1e-3)
	}
}

func TestSolveNRConverges(t *testing.T) {
	model := twoLinkPlanarArm(t)
	target, err := model.Transform([]referenceframe.Input{{Value: 0.4}, {Value: 0.9}})
	test.That(t, err, test.ShouldBeNil)

	result, err := Solve(model, []referenceframe.Input{{Value: 0}, {Value: 0}}, target, NewtonRaphson, 1000, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Converged, test.ShouldBeTrue)

	got, err := model.Transform(result.Q)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.AlmostEqual(target, got, 1e-4), test.ShouldBeTrue)
}

func TestSolveLMConverges(t *testing.T) {
	model := twoLinkPlanarArm(t)
	target, err := model.Transform([]referenceframe.Input{{Value: -0.5}, {Value: 1.1}})
	test.That(t, err, test.ShouldBeNil)

	result, err := Solve(model, []referenceframe.Input{{Value: 0}, {Value: 0}}, target, LevenbergMarquardt, 1000, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Converged, test.ShouldBeTrue)

	got, err := model.Transform(result.Q)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.AlmostEqual(target, got, 1e-4), test.ShouldBeTrue)
}
