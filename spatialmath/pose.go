package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a rigid transform: a translation plus an orientation. Everything downstream
// (FK, Jacobians, IK targets, collision transforms) is expressed in terms of Pose so that the
// underlying representation (here a translation plus an Orientation, with the 4x4 homogeneous
// matrix built on demand) can change without touching callers.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
	// Matrix returns the 4x4 homogeneous matrix H with H[:3,:3] the rotation and H[:3,3] the
	// translation.
	Matrix() mgl64.Mat4
}

type pose struct {
	point       r3.Vector
	orientation Orientation
}

func (p *pose) Point() r3.Vector       { return p.point }
func (p *pose) Orientation() Orientation {
	if p.orientation == nil {
		return NewZeroOrientation()
	}
	return p.orientation
}

// Matrix builds the homogeneous transform on demand from the rotation matrix and translation.
func (p *pose) Matrix() mgl64.Mat4 {
	rm := p.Orientation().RotationMatrix()
	var m mgl64.Mat4
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			// mgl64.Mat4 is column-major: m[col*4+row].
			m[c*4+r] = rm.At(r, c)
		}
	}
	m[12] = p.point.X
	m[13] = p.point.Y
	m[14] = p.point.Z
	m[15] = 1
	return m
}

// NewZeroPose returns the identity transform.
func NewZeroPose() Pose {
	return &pose{point: r3.Vector{}, orientation: NewZeroOrientation()}
}

// NewPoseFromOrientation builds a pose from a translation and an orientation.
func NewPoseFromOrientation(point r3.Vector, o Orientation) Pose {
	if o == nil {
		o = NewZeroOrientation()
	}
	return &pose{point: point, orientation: o}
}

// NewPoseFromPoint builds a pose with no rotation.
func NewPoseFromPoint(point r3.Vector) Pose {
	return &pose{point: point, orientation: NewZeroOrientation()}
}

// NewPoseFromAxisAngle builds a pose from a translation, a unit rotation axis, and an angle in
// radians about that axis.
func NewPoseFromAxisAngle(point, axis r3.Vector, angle float64) Pose {
	return &pose{point: point, orientation: &R4AA{Theta: angle, RX: axis.X, RY: axis.Y, RZ: axis.Z}}
}

// NewPoseFromMatrix builds a pose from a 4x4 homogeneous matrix, extracting translation and
// rotation independently.
func NewPoseFromMatrix(m mgl64.Mat4) Pose {
	rm := &RotationMatrix{}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			rm.rows[r][c] = m[c*4+r]
		}
	}
	return &pose{
		point:       r3.Vector{X: m[12], Y: m[13], Z: m[14]},
		orientation: rm,
	}
}

// Compose returns the pose representing "apply a, then apply b", i.e. a*b in homogeneous matrix
// terms: a point p in b's frame maps to a.Matrix() * b.Matrix() * p in a's parent's frame.
func Compose(a, b Pose) Pose {
	return NewPoseFromMatrix(a.Matrix().Mul4(b.Matrix()))
}

// Invert returns the inverse transform of p.
func Invert(p Pose) Pose {
	return NewPoseFromMatrix(p.Matrix().Inv())
}

// PoseDelta returns the 6-vector pose error (translation, then axis-angle rotation vector)
// taking `from` to `to`: position error is to.Point()-from.Point(), rotation error is the
// axis-angle vector of to.Rotation * from.Rotation^T. Rotation error is zeroed out when the
// relative rotation is within floatEpsilon of identity, matching the "near-identity yields zero
// rotational error" rule.
func PoseDelta(from, to Pose) (posErr r3.Vector, rotErr r3.Vector) {
	posErr = to.Point().Sub(from.Point())

	relQ := quat.Mul(to.Orientation().Quaternion(), quat.Conj(from.Orientation().Quaternion()))
	aa := QuatToR4AA(relQ)
	if 1-math.Cos(aa.Theta/2) < floatEpsilon {
		return posErr, r3.Vector{}
	}
	rotErr = r3.Vector{X: aa.RX, Y: aa.RY, Z: aa.RZ}.Mul(aa.Theta)
	return posErr, rotErr
}

// PoseError returns a scalar measure of how far apart two poses are: Euclidean distance between
// origins plus the angular distance between orientations (in radians).
func PoseError(a, b Pose) float64 {
	posErr, rotErr := PoseDelta(a, b)
	return posErr.Norm() + rotErr.Norm()
}

// InterpolatePose interpolates translation linearly and orientation via quaternion SLERP, used by
// the Cartesian planner to generate waypoints between a start and goal pose. by=0 returns from,
// by=1 returns to.
func InterpolatePose(from, to Pose, by float64) Pose {
	point := from.Point().Add(to.Point().Sub(from.Point()).Mul(by))
	q := slerp(from.Orientation().Quaternion(), to.Orientation().Quaternion(), by)
	return &pose{point: point, orientation: QuatToOV(q)}
}

// slerp performs spherical linear interpolation between two unit quaternions, taking the
// shorter arc (negating q1 if the dot product is negative).
func slerp(q0, q1 quat.Number, t float64) quat.Number {
	dot := q0.Real*q1.Real + q0.Imag*q1.Imag + q0.Jmag*q1.Jmag + q0.Kmag*q1.Kmag
	if dot < 0 {
		q1 = quat.Number{Real: -q1.Real, Imag: -q1.Imag, Jmag: -q1.Jmag, Kmag: -q1.Kmag}
		dot = -dot
	}
	const sinEpsilon = 1e-6
	if dot > 1-sinEpsilon {
		// nearly parallel: fall back to linear interpolation and renormalize.
		lerp := quat.Number{
			Real: q0.Real + (q1.Real-q0.Real)*t,
			Imag: q0.Imag + (q1.Imag-q0.Imag)*t,
			Jmag: q0.Jmag + (q1.Jmag-q0.Jmag)*t,
			Kmag: q0.Kmag + (q1.Kmag-q0.Kmag)*t,
		}
		n := quatNorm(lerp)
		if n == 0 {
			return quat.Number{Real: 1}
		}
		return quat.Number{Real: lerp.Real / n, Imag: lerp.Imag / n, Jmag: lerp.Jmag / n, Kmag: lerp.Kmag / n}
	}
	theta0 := math.Acos(dot)
	theta := theta0 * t
	sinTheta0 := math.Sin(theta0)
	s0 := math.Cos(theta) - dot*math.Sin(theta)/sinTheta0
	s1 := math.Sin(theta) / sinTheta0
	return quat.Number{
		Real: s0*q0.Real + s1*q1.Real,
		Imag: s0*q0.Imag + s1*q1.Imag,
		Jmag: s0*q0.Jmag + s1*q1.Jmag,
		Kmag: s0*q0.Kmag + s1*q1.Kmag,
	}
}

// AlmostEqual reports whether two poses are within epsilon of one another: the norms of the
// position error and of the rotation error are each at most epsilon.
func AlmostEqual(a, b Pose, epsilon float64) bool {
	posErr, rotErr := PoseDelta(a, b)
	return posErr.Norm() <= epsilon && rotErr.Norm() <= epsilon
}
