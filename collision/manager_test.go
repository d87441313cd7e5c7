package collision

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/pallet-robotics/kinecore/spatialmath"
)

func TestAddObjectDuplicate(t *testing.T) {
	m := NewManager()
	box, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 1, Y: 1, Z: 1}, "box")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.AddObject("box", box), test.ShouldBeNil)
	test.That(t, m.AddObject("box", box), test.ShouldEqual, ErrDuplicateName)
}

func TestSetTransformUnknown(t *testing.T) {
	m := NewManager()
	err := m.SetTransform("missing", spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldEqual, ErrUnknownName)
}

func TestInCollisionInternal(t *testing.T) {
	m := NewManager()
	a, err := spatialmath.NewSphere(spatialmath.NewZeroPose(), 1, "a")
	test.That(t, err, test.ShouldBeNil)
	b, err := spatialmath.NewSphere(spatialmath.NewPoseFromPoint(r3.Vector{X: 1.5}), 1, "b")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.AddObject("a", a), test.ShouldBeNil)
	test.That(t, m.AddObject("b", b), test.ShouldBeNil)

	colliding, pairs, _, err := m.InCollisionInternal(true)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colliding, test.ShouldBeTrue)
	test.That(t, len(pairs), test.ShouldEqual, 1)
	test.That(t, pairs[0], test.ShouldResemble, Pair{A: "a", B: "b"})
}

func TestFilterContactNamesSuppressesAdjacency(t *testing.T) {
	m := NewManager()
	a, err := spatialmath.NewSphere(spatialmath.NewZeroPose(), 1, "link1")
	test.That(t, err, test.ShouldBeNil)
	b, err := spatialmath.NewSphere(spatialmath.NewPoseFromPoint(r3.Vector{X: 1.5}), 1, "link2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.AddObject("link1", a), test.ShouldBeNil)
	test.That(t, m.AddObject("link2", b), test.ShouldBeNil)

	err = m.FilterContactNames([]Pair{{A: "link1", B: "link2"}}, m.Geometries())
	test.That(t, err, test.ShouldBeNil)

	colliding, _, _, err := m.InCollisionInternal(false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colliding, test.ShouldBeFalse)
}

func TestInCollisionOtherNoAdjacency(t *testing.T) {
	robot := NewManager()
	scene := NewManager()
	a, err := spatialmath.NewSphere(spatialmath.NewZeroPose(), 1, "arm")
	test.That(t, err, test.ShouldBeNil)
	b, err := spatialmath.NewSphere(spatialmath.NewPoseFromPoint(r3.Vector{X: 0.5}), 1, "obstacle")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, robot.AddObject("arm", a), test.ShouldBeNil)
	test.That(t, scene.AddObject("obstacle", b), test.ShouldBeNil)

	colliding, pairs, _, err := robot.InCollisionOther(scene, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colliding, test.ShouldBeTrue)
	test.That(t, pairs[0], test.ShouldResemble, Pair{A: "arm", B: "obstacle"})
}
