package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Orientation is something that can be converted to any of the representations of orientation
// (orientation vector, axis-angle, Euler angles, rotation matrix, quaternion) that this package
// knows how to reason about. Every implementation must round-trip through quat.Number within
// poseAlmostEqualEpsilon.
type Orientation interface {
	OrientationVectorRadians() *OrientationVector
	AxisAngles() *R4AA
	RotationMatrix() *RotationMatrix
	EulerAngles() *EulerAngles
	Quaternion() quat.Number
}

// NewZeroOrientation returns an orientation representing no rotation.
func NewZeroOrientation() Orientation {
	return NewOrientationVector()
}

// R4AA is an axis-angle representation of a rotation: Theta is the rotation about the unit
// vector (RX, RY, RZ).
type R4AA struct {
	Theta float64
	RX    float64
	RY    float64
	RZ    float64
}

// NewR4AA returns the zero-rotation axis-angle, pointing along +Z.
func NewR4AA() *R4AA {
	return &R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
}

// ToQuat converts an axis-angle to a quaternion.
func (r4 *R4AA) ToQuat() quat.Number {
	if r4.RX == 0 && r4.RY == 0 && r4.RZ == 0 {
		return quat.Number{Real: 1}
	}
	norm := math.Sqrt(r4.RX*r4.RX + r4.RY*r4.RY + r4.RZ*r4.RZ)
	s := math.Sin(r4.Theta / 2)
	return quat.Number{
		Real: math.Cos(r4.Theta / 2),
		Imag: s * r4.RX / norm,
		Jmag: s * r4.RY / norm,
		Kmag: s * r4.RZ / norm,
	}
}

func (r4 *R4AA) OrientationVectorRadians() *OrientationVector { return QuatToOV(r4.ToQuat()) }
func (r4 *R4AA) AxisAngles() *R4AA                            { return r4 }
func (r4 *R4AA) RotationMatrix() *RotationMatrix              { return QuatToRotationMatrix(r4.ToQuat()) }
func (r4 *R4AA) EulerAngles() *EulerAngles                    { return QuatToEulerAngles(r4.ToQuat()) }
func (r4 *R4AA) Quaternion() quat.Number                      { return r4.ToQuat() }

// RotationMatrix is a row-major 3x3 rotation matrix.
type RotationMatrix struct {
	rows [3][3]float64
}

// At returns the matrix element at (row, col).
func (rm *RotationMatrix) At(row, col int) float64 { return rm.rows[row][col] }

// NewRotationMatrixFromColumns builds a rotation matrix whose columns are x, y, z, used by grasp
// and placement sampling to build a frame from an explicit axis triple (contact-line y-axis,
// swept approach z-axis, x = y cross z) rather than from an angle representation.
func NewRotationMatrixFromColumns(x, y, z r3.Vector) *RotationMatrix {
	return &RotationMatrix{rows: [3][3]float64{
		{x.X, y.X, z.X},
		{x.Y, y.Y, z.Y},
		{x.Z, y.Z, z.Z},
	}}
}

// RotateVector applies rm to v, without any translation: used to carry a joint axis from its own
// local frame into world frame for Jacobian construction.
func (rm *RotationMatrix) RotateVector(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: rm.rows[0][0]*v.X + rm.rows[0][1]*v.Y + rm.rows[0][2]*v.Z,
		Y: rm.rows[1][0]*v.X + rm.rows[1][1]*v.Y + rm.rows[1][2]*v.Z,
		Z: rm.rows[2][0]*v.X + rm.rows[2][1]*v.Y + rm.rows[2][2]*v.Z,
	}
}

func (rm *RotationMatrix) OrientationVectorRadians() *OrientationVector {
	return QuatToOV(rm.Quaternion())
}
func (rm *RotationMatrix) AxisAngles() *R4AA               { return QuatToR4AA(rm.Quaternion()) }
func (rm *RotationMatrix) RotationMatrix() *RotationMatrix { return rm }
func (rm *RotationMatrix) EulerAngles() *EulerAngles       { return QuatToEulerAngles(rm.Quaternion()) }

// Quaternion converts the rotation matrix to a quaternion using the standard trace method.
func (rm *RotationMatrix) Quaternion() quat.Number {
	m := rm.rows
	tr := m[0][0] + m[1][1] + m[2][2]
	var q quat.Number
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1.0) * 2
		q.Real = 0.25 * s
		q.Imag = (m[2][1] - m[1][2]) / s
		q.Jmag = (m[0][2] - m[2][0]) / s
		q.Kmag = (m[1][0] - m[0][1]) / s
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := math.Sqrt(1.0+m[0][0]-m[1][1]-m[2][2]) * 2
		q.Real = (m[2][1] - m[1][2]) / s
		q.Imag = 0.25 * s
		q.Jmag = (m[0][1] + m[1][0]) / s
		q.Kmag = (m[0][2] + m[2][0]) / s
	case m[1][1] > m[2][2]:
		s := math.Sqrt(1.0+m[1][1]-m[0][0]-m[2][2]) * 2
		q.Real = (m[0][2] - m[2][0]) / s
		q.Imag = (m[0][1] + m[1][0]) / s
		q.Jmag = 0.25 * s
		q.Kmag = (m[1][2] + m[2][1]) / s
	default:
		s := math.Sqrt(1.0+m[2][2]-m[0][0]-m[1][1]) * 2
		q.Real = (m[1][0] - m[0][1]) / s
		q.Imag = (m[0][2] + m[2][0]) / s
		q.Jmag = (m[1][2] + m[2][1]) / s
		q.Kmag = 0.25 * s
	}
	return q
}

// QuatToRotationMatrix converts a quaternion to a row-major rotation matrix.
func QuatToRotationMatrix(q quat.Number) *RotationMatrix {
	n := quatNorm(q)
	if n == 0 {
		return &RotationMatrix{rows: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
	}
	w, x, y, z := q.Real/n, q.Imag/n, q.Jmag/n, q.Kmag/n
	rm := &RotationMatrix{}
	rm.rows[0] = [3]float64{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)}
	rm.rows[1] = [3]float64{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)}
	rm.rows[2] = [3]float64{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)}
	return rm
}

// QuatToR4AA converts a quaternion to an axis-angle representation.
func QuatToR4AA(q quat.Number) *R4AA {
	n := quatNorm(q)
	if n == 0 {
		return NewR4AA()
	}
	w := q.Real / n
	w = math.Max(-1, math.Min(1, w))
	theta := 2 * math.Acos(w)
	s := math.Sqrt(1 - w*w)
	if s < floatEpsilon {
		return &R4AA{Theta: theta, RX: 0, RY: 0, RZ: 1}
	}
	return &R4AA{Theta: theta, RX: q.Imag / n / s, RY: q.Jmag / n / s, RZ: q.Kmag / n / s}
}

// EulerAngles are intrinsic roll-pitch-yaw (XYZ) Euler angles, in radians.
type EulerAngles struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

func (e *EulerAngles) OrientationVectorRadians() *OrientationVector { return QuatToOV(e.Quaternion()) }
func (e *EulerAngles) AxisAngles() *R4AA                            { return QuatToR4AA(e.Quaternion()) }
func (e *EulerAngles) RotationMatrix() *RotationMatrix              { return QuatToRotationMatrix(e.Quaternion()) }
func (e *EulerAngles) EulerAngles() *EulerAngles                    { return e }

// Quaternion converts Euler angles to a quaternion via mgl64's XYZ rotation order.
func (e *EulerAngles) Quaternion() quat.Number {
	q := mgl64.AnglesToQuat(e.Roll, e.Pitch, e.Yaw, mgl64.XYZ)
	return quat.Number{Real: q.W, Imag: q.X(), Jmag: q.Y(), Kmag: q.Z()}
}

// QuatToEulerAngles converts a quaternion to intrinsic XYZ Euler angles.
func QuatToEulerAngles(q quat.Number) *EulerAngles {
	rm := QuatToRotationMatrix(q)
	m := rm.rows
	pitch := math.Asin(clamp(m[0][2], -1, 1))
	var roll, yaw float64
	if math.Abs(m[0][2]) < 1-floatEpsilon {
		roll = math.Atan2(-m[1][2], m[2][2])
		yaw = math.Atan2(-m[0][1], m[0][0])
	} else {
		// gimbal lock: roll and yaw trade off, pick roll = 0
		roll = 0
		yaw = math.Atan2(m[1][0], m[1][1])
	}
	return &EulerAngles{Roll: roll, Pitch: pitch, Yaw: yaw}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func quatNorm(q quat.Number) float64 {
	return math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// QuatToOV converts a quaternion directly to an OrientationVector, used as the canonical
// conversion path every other representation routes through.
func QuatToOV(q quat.Number) *OrientationVector {
	n := quatNorm(q)
	if n == 0 {
		return NewOrientationVector()
	}
	w, x, y, z := q.Real/n, q.Imag/n, q.Jmag/n, q.Kmag/n

	// The orientation vector's axis is the image, under the rotation, of the +Z axis.
	ox := 2 * (x*z + w*y)
	oy := 2 * (y*z - w*x)
	oz := 1 - 2*(x*x+y*y)

	// theta is the rotation left about the new z axis once +Z has been carried onto (ox, oy, oz)
	// by the same Z(lon)*Y(lat) rotations Quaternion uses: the z angle of Ry(-lat)*Rz(-lon)*R.
	lat := math.Acos(clamp(oz, -1, 1))
	lon := 0.0
	if 1-math.Abs(oz) > defaultAngleEpsilon {
		lon = math.Atan2(oy, ox)
	}
	rm := QuatToRotationMatrix(quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z})
	c, s := math.Cos(lon), math.Sin(lon)
	theta := math.Atan2(-s*rm.At(0, 0)+c*rm.At(1, 0),
		math.Cos(lat)*(c*rm.At(0, 0)+s*rm.At(1, 0))-math.Sin(lat)*rm.At(2, 0))

	ov := &OrientationVector{Theta: wrapToPi(theta), OX: ox, OY: oy, OZ: oz}
	ov.Normalize()
	return ov
}
