package action

import (
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/pallet-robotics/kinecore/ik"
	"github.com/pallet-robotics/kinecore/spatialmath"
)

func supportTableMesh() *fakeMesh {
	return &fakeMesh{
		min: r3.Vector{X: -0.5, Y: -0.5, Z: -0.05},
		max: r3.Vector{X: 0.5, Y: 0.5, Z: 0.05},
		points: []SurfacePoint{
			{Point: r3.Vector{Z: 0.05}, Normal: r3.Vector{Z: 1}},
		},
	}
}

func heldCubeMesh() *fakeMesh {
	return &fakeMesh{
		min: r3.Vector{X: -0.01, Y: -0.01, Z: -0.01},
		max: r3.Vector{X: 0.01, Y: 0.01, Z: 0.01},
		points: []SurfacePoint{
			{Point: r3.Vector{Z: -0.01}, Normal: r3.Vector{Z: -1}},
		},
	}
}

func TestGetPossibleActionsLevel1RequiresAttachment(t *testing.T) {
	sc := newTestScene(t)
	place := NewPlaceAction(sc, nil, rand.New(rand.NewSource(1)), nil)

	supportPose := spatialmath.NewPoseFromPoint(r3.Vector{X: 2})
	heldPose := spatialmath.NewPoseFromPoint(r3.Vector{X: 2, Z: 0.06})

	_, err := place.GetPossibleActionsLevel1(supportTableMesh(), supportPose, heldCubeMesh(), heldPose, "cube")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGetPossibleActionsLevel1FindsCandidates(t *testing.T) {
	sc := newTestScene(t)

	table, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 0.5, Y: 0.5, Z: 0.05}, "table")
	test.That(t, err, test.ShouldBeNil)
	supportPose := spatialmath.NewPoseFromPoint(r3.Vector{X: 2})
	test.That(t, sc.AddObject("table", table, supportPose, ""), test.ShouldBeNil)

	cube, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 0.01, Y: 0.01, Z: 0.01}, "cube")
	test.That(t, err, test.ShouldBeNil)
	// The cube hangs 0.1 below the palm's centre, so at release the palm clears the table top.
	heldPose := spatialmath.NewPoseFromPoint(r3.Vector{X: 2, Z: -0.1})
	test.That(t, sc.AddObject("cube", cube, heldPose, ""), test.ShouldBeNil)
	test.That(t, sc.AttachObjectOnGripper("cube"), test.ShouldBeNil)

	place := NewPlaceAction(sc, nil, rand.New(rand.NewSource(1)), nil)
	candidates, err := place.GetPossibleActionsLevel1(supportTableMesh(), supportPose, heldCubeMesh(), heldPose, "cube")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(candidates), test.ShouldBeGreaterThan, 0)
	for _, c := range candidates {
		test.That(t, c.NewObjectPose, test.ShouldNotBeNil)
	}
}

func TestGetPossibleTransitionsFullPipeline(t *testing.T) {
	sc := newTestScene(t)

	table, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 0.5, Y: 0.5, Z: 0.05}, "table")
	test.That(t, err, test.ShouldBeNil)
	supportPose := spatialmath.NewPoseFromPoint(r3.Vector{X: 2})
	test.That(t, sc.AddObject("table", table, supportPose, ""), test.ShouldBeNil)

	cube, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 0.01, Y: 0.01, Z: 0.01}, "cube")
	test.That(t, err, test.ShouldBeNil)
	heldPose := spatialmath.NewPoseFromPoint(r3.Vector{X: 2})
	test.That(t, sc.AddObject("cube", cube, heldPose, ""), test.ShouldBeNil)
	test.That(t, sc.AttachObjectOnGripper("cube"), test.ShouldBeNil)

	place := NewPlaceAction(sc, nil, rand.New(rand.NewSource(1)), nil)
	candidates, err := place.GetPossibleTransitions(supportTableMesh(), supportPose, heldCubeMesh(), heldPose, "cube", ik.LevenbergMarquardt, 1000)
	test.That(t, err, test.ShouldBeNil)
	// A planar 2-joint arm cannot reach every 6-DOF release pose, so this only checks that
	// whatever survives level-2 filtering carries three solved configurations.
	for _, c := range candidates {
		test.That(t, c.Q[1], test.ShouldNotBeNil)
	}
}
