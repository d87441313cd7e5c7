package scene

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/pallet-robotics/kinecore/ik"
	"github.com/pallet-robotics/kinecore/referenceframe"
	"github.com/pallet-robotics/kinecore/spatialmath"
)

// planarArmWithGripper builds a 2-revolute-joint planar arm whose eef link carries a small box
// geometry, standing in for a gripper's palm.
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

func TestAttachDetachRoundTrip(t *testing.T) {
	model := planarArmWithGripper(t)
	q := []referenceframe.Input{{Value: 0}, {Value: 0}}
	gripper := NewGripper("gripper", []string{"eef"}, 0.1, 0.1, r3.Vector{Z: 0.02})
	mgr, err := NewManager(model, q, gripper, nil)
	test.That(t, err, test.ShouldBeNil)

	box, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 0.02, Y: 0.02, Z: 0.02}, "cube")
	test.That(t, err, test.ShouldBeNil)
	objPose := spatialmath.NewPoseFromPoint(r3.Vector{X: 2})
	test.That(t, mgr.AddObject("cube", box, objPose, "red"), test.ShouldBeNil)

	test.That(t, mgr.AttachObjectOnGripper("cube"), test.ShouldBeNil)
	ls, ok := mgr.LogicalState("cube")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ls.Held, test.ShouldBeTrue)
	gls, ok := mgr.LogicalState("gripper")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, gls.Holding, test.ShouldEqual, "cube")

	// double attach must fail without disturbing state
	test.That(t, mgr.AttachObjectOnGripper("cube"), test.ShouldEqual, ErrAlreadyHolding)

	test.That(t, mgr.DetachObjectFromGripper(), test.ShouldBeNil)
	ls, _ = mgr.LogicalState("cube")
	test.That(t, ls.Held, test.ShouldBeFalse)
	gls, _ = mgr.LogicalState("gripper")
	test.That(t, gls.Holding, test.ShouldEqual, "")

	test.That(t, mgr.DetachObjectFromGripper(), test.ShouldEqual, ErrNotAttached)
}

func TestSetRobotEEFPoseConverges(t *testing.T) {
	model := planarArmWithGripper(t)
	q := []referenceframe.Input{{Value: 0.1}, {Value: 0.1}}
	mgr, err := NewManager(model, q, nil, nil)
	test.That(t, err, test.ShouldBeNil)

	target, err := model.Transform([]referenceframe.Input{{Value: 0.4}, {Value: -0.2}})
	test.That(t, err, test.ShouldBeNil)

	err = mgr.SetRobotEEFPose(target, ik.LevenbergMarquardt, 1000)
	test.That(t, err, test.ShouldBeNil)

	got, err := model.Transform(mgr.Configuration())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.AlmostEqual(target, got, 1e-3), test.ShouldBeTrue)
}

func TestUpdateLogicalStatesDetectsOn(t *testing.T) {
	model := planarArmWithGripper(t)
	q := []referenceframe.Input{{Value: 0}, {Value: 0}}
	mgr, err := NewManager(model, q, nil, nil)
	test.That(t, err, test.ShouldBeNil)

	table, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 0.5, Y: 0.5, Z: 0.05}, "table")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mgr.AddObject("table", table, spatialmath.NewPoseFromPoint(r3.Vector{Z: 0}), ""), test.ShouldBeNil)

	cube, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 0.05, Y: 0.05, Z: 0.05}, "cube")
	test.That(t, err, test.ShouldBeNil)
	// table top face is at z=0.05; cube half-height 0.05 means its center should sit at z=0.10
	test.That(t, mgr.AddObject("cube", cube, spatialmath.NewPoseFromPoint(r3.Vector{Z: 0.10}), ""), test.ShouldBeNil)

	mgr.UpdateLogicalStates()
	ls, ok := mgr.LogicalState("cube")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ls.On, test.ShouldEqual, "table")
}

func TestLoadWorldStateRegistersObstacles(t *testing.T) {
	model := planarArmWithGripper(t)
	q := []referenceframe.Input{{Value: 0}, {Value: 0}}
	mgr, err := NewManager(model, q, nil, nil)
	test.That(t, err, test.ShouldBeNil)

	// A box placed right on top of the eef's palm at q=0 so loading it turns RobotCollisionAt true.
	eefPose, err := model.Transform(q)
	test.That(t, err, test.ShouldBeNil)
	block, err := spatialmath.NewBox(eefPose, r3.Vector{X: 0.1, Y: 0.1, Z: 0.1}, "block")
	test.That(t, err, test.ShouldBeNil)
	ws, err := referenceframe.NewWorldState([]*referenceframe.GeometriesInFrame{
		referenceframe.NewGeometriesInFrame(referenceframe.World, []spatialmath.Geometry{block}),
	})
	test.That(t, err, test.ShouldBeNil)

	colliding, err := mgr.RobotCollisionAt(q)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colliding, test.ShouldBeFalse)

	test.That(t, mgr.LoadWorldState(ws), test.ShouldBeNil)
	obj, ok := mgr.Object("block")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, obj.Pose.Point().X, test.ShouldAlmostEqual, eefPose.Point().X, 1e-9)

	colliding, err = mgr.RobotCollisionAt(q)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colliding, test.ShouldBeTrue)
}

func TestCopySceneManagerIsIndependent(t *testing.T) {
	model := planarArmWithGripper(t)
	q := []referenceframe.Input{{Value: 0}, {Value: 0}}
	mgr, err := NewManager(model, q, nil, nil)
	test.That(t, err, test.ShouldBeNil)

	box, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 0.1, Y: 0.1, Z: 0.1}, "cube")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mgr.AddObject("cube", box, spatialmath.NewPoseFromPoint(r3.Vector{X: 1}), ""), test.ShouldBeNil)

	cp := CopySceneManager(mgr)
	cp.LogicalState("cube")
	obj, _ := cp.Object("cube")
	obj.Pose = spatialmath.NewPoseFromPoint(r3.Vector{X: 5})

	original, _ := mgr.Object("cube")
	test.That(t, original.Pose.Point().X, test.ShouldEqual, 1.0)
}
