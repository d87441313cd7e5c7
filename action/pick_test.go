package action

import (
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/pallet-robotics/kinecore/ik"
	"github.com/pallet-robotics/kinecore/spatialmath"
)

func antipodalCubeMesh() *fakeMesh {
	return &fakeMesh{
		min: r3.Vector{X: -0.01, Y: -0.01, Z: -0.01},
		max: r3.Vector{X: 0.01, Y: 0.01, Z: 0.01},
		points: []SurfacePoint{
			{Point: r3.Vector{X: -0.01}, Normal: r3.Vector{X: -1}},
			{Point: r3.Vector{X: 0.01}, Normal: r3.Vector{X: 1}},
		},
	}
}

func TestGetContactPointsAcceptsAntipodalPair(t *testing.T) {
	sc := newTestScene(t)
	pick := NewPickAction(sc, nil, rand.New(rand.NewSource(1)), nil)

	objPose := spatialmath.NewPoseFromPoint(r3.Vector{X: 2})
	pairs := pick.GetContactPoints(antipodalCubeMesh(), objPose)
	test.That(t, len(pairs), test.ShouldEqual, 1)
	test.That(t, pairs[0].P1.X, test.ShouldAlmostEqual, 1.99, 1e-9)
	test.That(t, pairs[0].P2.X, test.ShouldAlmostEqual, 2.01, 1e-9)
}

func TestGetGraspPosesForOnlyGripperNoObstacles(t *testing.T) {
	sc := newTestScene(t)
	pick := NewPickAction(sc, nil, rand.New(rand.NewSource(1)), nil)

	box, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 0.01, Y: 0.01, Z: 0.01}, "cube")
	test.That(t, err, test.ShouldBeNil)
	objPose := spatialmath.NewPoseFromPoint(r3.Vector{X: 2})
	test.That(t, sc.AddObject("cube", box, objPose, ""), test.ShouldBeNil)

	candidates, err := pick.GetGraspPosesForOnlyGripper(antipodalCubeMesh(), objPose, "cube")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(candidates), test.ShouldBeGreaterThan, 0)
}

func TestGetGraspPosesFullPipeline(t *testing.T) {
	sc := newTestScene(t)
	opts := DefaultPickOptions()
	opts.NDirections = 2
	pick := NewPickAction(sc, opts, rand.New(rand.NewSource(1)), nil)

	box, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 0.01, Y: 0.01, Z: 0.01}, "cube")
	test.That(t, err, test.ShouldBeNil)
	objPose := spatialmath.NewPoseFromPoint(r3.Vector{X: 2})
	test.That(t, sc.AddObject("cube", box, objPose, ""), test.ShouldBeNil)

	candidates, err := pick.GetGraspPoses(antipodalCubeMesh(), objPose, "cube", ik.LevenbergMarquardt, 1000)
	test.That(t, err, test.ShouldBeNil)
	// A planar 2-joint arm cannot reach every 6-DOF grasp orientation, so this only checks that
	// whatever survives level-2 filtering carries a solved configuration.
	for _, c := range candidates {
		test.That(t, c.Q, test.ShouldNotBeNil)
	}
}
