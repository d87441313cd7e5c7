package action

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestAngleBetweenOpposite(t *testing.T) {
	angle := angleBetween(r3.Vector{X: 1}, r3.Vector{X: -1})
	test.That(t, angle, test.ShouldAlmostEqual, math.Pi, 1e-9)
}

func TestAngleBetweenSame(t *testing.T) {
	angle := angleBetween(r3.Vector{X: 1}, r3.Vector{X: 1})
	test.That(t, angle, test.ShouldAlmostEqual, 0, 1e-9)
}

func TestRotateAroundAxisFullTurn(t *testing.T) {
	v := r3.Vector{X: 1}
	rotated := rotateAroundAxis(v, r3.Vector{Z: 1}, 2*math.Pi)
	test.That(t, rotated.X, test.ShouldAlmostEqual, v.X, 1e-9)
	test.That(t, rotated.Y, test.ShouldAlmostEqual, v.Y, 1e-9)
}

func TestContactFramesOrthonormal(t *testing.T) {
	poses := contactFrames(r3.Vector{X: -0.02}, r3.Vector{X: 0.02}, 4)
	test.That(t, len(poses), test.ShouldEqual, 4)
	for _, p := range poses {
		test.That(t, p.Point().X, test.ShouldAlmostEqual, 0, 1e-9)
		rm := p.Orientation().RotationMatrix()
		x := r3.Vector{X: rm.At(0, 0), Y: rm.At(1, 0), Z: rm.At(2, 0)}
		y := r3.Vector{X: rm.At(0, 1), Y: rm.At(1, 1), Z: rm.At(2, 1)}
		test.That(t, x.Dot(y), test.ShouldAlmostEqual, 0, 1e-9)
		test.That(t, y.Norm(), test.ShouldAlmostEqual, 1, 1e-9)
	}
}
