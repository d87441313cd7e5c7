package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestOrientationRoundTrip(t *testing.T) {
	ov := &OrientationVector{Theta: math.Pi / 3, OX: 0, OY: 0, OZ: 1}
	q := ov.Quaternion()
	back := QuatToOV(q)
	test.That(t, back.OZ, test.ShouldAlmostEqual, ov.OZ, 0.001)
	test.That(t, wrapToPi(back.Theta), test.ShouldAlmostEqual, wrapToPi(ov.Theta), 0.001)
}

func TestComposeIdentity(t *testing.T) {
	p := NewPoseFromAxisAngle(r3.Vector{X: 1, Y: 2, Z: 3}, r3.Vector{Z: 1}, math.Pi/2)
	composed := Compose(NewZeroPose(), p)
	test.That(t, AlmostEqual(p, composed, 1e-9), test.ShouldBeTrue)
}

func TestPoseDeltaZeroAtSelf(t *testing.T) {
	p := NewPoseFromAxisAngle(r3.Vector{X: 1, Y: -1, Z: 0.5}, r3.Vector{X: 0, Y: 1, Z: 0}, 1.1)
	posErr, rotErr := PoseDelta(p, p)
	test.That(t, posErr.Norm(), test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, rotErr.Norm(), test.ShouldAlmostEqual, 0, 1e-9)
}

func TestBoxVsSphere(t *testing.T) {
	box, err := NewBox(NewZeroPose(), r3.Vector{X: 1, Y: 1, Z: 1}, "box")
	test.That(t, err, test.ShouldBeNil)
	farSphere, err := NewSphere(NewPoseFromPoint(r3.Vector{X: 5}), 0.5, "far")
	test.That(t, err, test.ShouldBeNil)
	col, err := box.CollidesWith(farSphere)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, col, test.ShouldBeFalse)

	touchingSphere, err := NewSphere(NewPoseFromPoint(r3.Vector{X: 1.4}), 0.5, "touching")
	test.That(t, err, test.ShouldBeNil)
	col, err = box.CollidesWith(touchingSphere)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, col, test.ShouldBeTrue)
}

func TestBoxVsBoxSymmetric(t *testing.T) {
	a, _ := NewBox(NewZeroPose(), r3.Vector{X: 1, Y: 1, Z: 1}, "a")
	b, _ := NewBox(NewPoseFromPoint(r3.Vector{X: 2}), r3.Vector{X: 1, Y: 1, Z: 1}, "b")
	colAB, err := a.CollidesWith(b)
	test.That(t, err, test.ShouldBeNil)
	colBA, err := b.CollidesWith(a)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colAB, test.ShouldEqual, colBA)
	test.That(t, colAB, test.ShouldBeTrue)
}
