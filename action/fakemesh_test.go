package action

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/pallet-robotics/kinecore/referenceframe"
	"github.com/pallet-robotics/kinecore/scene"
	"github.com/pallet-robotics/kinecore/spatialmath"
)

// fakeMesh returns a fixed set of surface points regardless of n/weight/rnd, standing in for a
// real parsed mesh (which the core never loads itself, per SPEC_FULL.md's mesh-loading
// boundary) with deterministic geometry for test purposes.
type fakeMesh struct {
	min, max r3.Vector
	points   []SurfacePoint
}

func (f *fakeMesh) Bounds() (r3.Vector, r3.Vector) { return f.min, f.max }

func (f *fakeMesh) SampleSurfaceWeighted(n int, weight func(point, normal r3.Vector) float64, rnd *rand.Rand) []SurfacePoint {
	return f.points
}

// planarArmWithGripper builds a 2-revolute-joint planar arm whose eef link carries a small box
// standing in for a gripper palm, shared by this package's tests.
func planarArmWithGripper(t *testing.T) *referenceframe.Model {
	t.Helper()
	limit := &referenceframe.Limit{Min: -math.Pi, Max: math.Pi}
	palm, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 0.05, Y: 0.05, Z: 0.05}, "palm")
	test.That(t, err, test.ShouldBeNil)
	links := []referenceframe.Link{
		{Name: "base"},
		{Name: "link1", Offset: spatialmath.NewPoseFromPoint(r3.Vector{X: 1})},
		{Name: "eef", Offset: spatialmath.NewPoseFromPoint(r3.Vector{X: 1}), Geometry: palm},
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

func newTestScene(t *testing.T) *scene.Manager {
	t.Helper()
	model := planarArmWithGripper(t)
	q := []referenceframe.Input{{Value: 0}, {Value: 0}}
	gripper := scene.NewGripper("gripper", []string{"eef"}, 0.1, 0.1, r3.Vector{Z: 0.02})
	mgr, err := scene.NewManager(model, q, gripper, nil)
	test.That(t, err, test.ShouldBeNil)
	return mgr
}
