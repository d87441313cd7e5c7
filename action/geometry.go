package action

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/pallet-robotics/kinecore/spatialmath"
)

func angleBetween(a, b r3.Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return math.Pi
	}
	cos := a.Dot(b) / (na * nb)
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// rotateAroundAxis rotates v about unit axis by theta radians, via Rodrigues' formula.
func rotateAroundAxis(v, axis r3.Vector, theta float64) r3.Vector {
	cos, sin := math.Cos(theta), math.Sin(theta)
	return v.Mul(cos).Add(axis.Cross(v).Mul(sin)).Add(axis.Mul(axis.Dot(v) * (1 - cos)))
}

// perpendicularTo returns an arbitrary unit vector perpendicular to the unit vector axis.
func perpendicularTo(axis r3.Vector) r3.Vector {
	seed := r3.Vector{X: 1}
	if math.Abs(axis.Dot(seed)) > 0.9 {
		seed = r3.Vector{Y: 1}
	}
	return seed.Sub(axis.Mul(axis.Dot(seed))).Normalize()
}

// contactFrames builds nDirections candidate TCP-frame poses for the contact line between p1 and
// p2: the y-axis runs along the contact line, the z-axis sweeps uniformly around it, x = y×z, and
// the origin is the pair's midpoint.
func contactFrames(p1, p2 r3.Vector, nDirections int) []spatialmath.Pose {
	mid := p1.Add(p2).Mul(0.5)
	y := p2.Sub(p1).Normalize()
	z0 := perpendicularTo(y)

	poses := make([]spatialmath.Pose, nDirections)
	for k := 0; k < nDirections; k++ {
		theta := 2 * math.Pi * float64(k) / float64(nDirections)
		z := rotateAroundAxis(z0, y, theta)
		x := y.Cross(z)
		rm := spatialmath.NewRotationMatrixFromColumns(x, y, z)
		poses[k] = spatialmath.NewPoseFromOrientation(mid, rm)
	}
	return poses
}
