package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// CollisionBuffer is the distance (in the same units as geometry params, conventionally meters)
// below which two geometries are considered to be touching/colliding. A negative distance means
// penetration.
const CollisionBuffer = 1e-6

// GeometryKind enumerates the primitive shapes the collision system understands.
type GeometryKind string

// The geometry kinds named in the data model.
const (
	GeometryBox      GeometryKind = "box"
	GeometrySphere   GeometryKind = "sphere"
	GeometryCylinder GeometryKind = "cylinder"
	GeometryCapsule  GeometryKind = "capsule"
	GeometryMesh     GeometryKind = "mesh"
)

// Geometry is a named, posed collision volume. Implementations must be able to report their own
// bounding box (for AABB-based logical-state queries), move to a new pose, and test against
// other geometries.
type Geometry interface {
	Label() string
	SetLabel(string)
	Kind() GeometryKind
	Pose() Pose
	Transform(Pose) Geometry
	// WithPose returns a copy of the geometry with its pose replaced outright (not composed),
	// for callers that track an object's absolute pose themselves (e.g. a collision manager's
	// set_transform).
	WithPose(Pose) Geometry
	AABB() (min, max r3.Vector)
	// CollidesWith reports whether g and other are separated by no more than CollisionBuffer
	// (touching or interpenetrating).
	CollidesWith(other Geometry) (bool, error)
	// DistanceFrom returns signed separation: positive when apart, negative when penetrating.
	DistanceFrom(other Geometry) (float64, error)
}

type geometryBase struct {
	label string
	pose  Pose
}

func (g *geometryBase) Label() string     { return g.label }
func (g *geometryBase) SetLabel(l string) { g.label = l }
func (g *geometryBase) Pose() Pose        { return g.pose }

// Box is an axis-aligned (in its own frame) rectangular prism, specified by half-extents.
type Box struct {
	geometryBase
	halfSize r3.Vector
}

// NewBox constructs a Box collision geometry at the given pose with the given half-extents.
func NewBox(p Pose, halfSize r3.Vector, label string) (*Box, error) {
	if halfSize.X < 0 || halfSize.Y < 0 || halfSize.Z < 0 {
		return nil, errors.New("box half-size must be non-negative")
	}
	return &Box{geometryBase: geometryBase{label: label, pose: p}, halfSize: halfSize}, nil
}

// Kind implements Geometry.
func (b *Box) Kind() GeometryKind { return GeometryBox }

// Transform returns a copy of b re-posed by composing newParent with b's current pose.
func (b *Box) Transform(newParent Pose) Geometry {
	return &Box{geometryBase: geometryBase{label: b.label, pose: Compose(newParent, b.pose)}, halfSize: b.halfSize}
}

// WithPose implements Geometry.
func (b *Box) WithPose(p Pose) Geometry {
	return &Box{geometryBase: geometryBase{label: b.label, pose: p}, halfSize: b.halfSize}
}

// AABB returns the box's world-frame axis-aligned bounding box. Since boxes can be rotated, this
// is computed from the eight corners.
func (b *Box) AABB() (r3.Vector, r3.Vector) {
	corners := boxCorners(b.pose, b.halfSize)
	minV, maxV := corners[0], corners[0]
	for _, c := range corners[1:] {
		minV = r3.Vector{X: math.Min(minV.X, c.X), Y: math.Min(minV.Y, c.Y), Z: math.Min(minV.Z, c.Z)}
		maxV = r3.Vector{X: math.Max(maxV.X, c.X), Y: math.Max(maxV.Y, c.Y), Z: math.Max(maxV.Z, c.Z)}
	}
	return minV, maxV
}

func boxCorners(p Pose, halfSize r3.Vector) [8]r3.Vector {
	rm := p.Orientation().RotationMatrix()
	axisX := r3.Vector{X: rm.At(0, 0), Y: rm.At(1, 0), Z: rm.At(2, 0)}
	axisY := r3.Vector{X: rm.At(0, 1), Y: rm.At(1, 1), Z: rm.At(2, 1)}
	axisZ := r3.Vector{X: rm.At(0, 2), Y: rm.At(1, 2), Z: rm.At(2, 2)}
	var corners [8]r3.Vector
	i := 0
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				offset := axisX.Mul(sx * halfSize.X).Add(axisY.Mul(sy * halfSize.Y)).Add(axisZ.Mul(sz * halfSize.Z))
				corners[i] = p.Point().Add(offset)
				i++
			}
		}
	}
	return corners
}

// CollidesWith implements Geometry.
func (b *Box) CollidesWith(other Geometry) (bool, error) {
	d, err := b.DistanceFrom(other)
	if err != nil {
		return false, err
	}
	return d <= CollisionBuffer, nil
}

// DistanceFrom dispatches on the concrete type of other and delegates to the appropriate
// pairwise primitive test. Unsupported pairs fall back to a conservative AABB separation test.
func (b *Box) DistanceFrom(other Geometry) (float64, error) {
	switch o := other.(type) {
	case *Sphere:
		return boxSphereDistance(b, o), nil
	case *Box:
		return boxBoxDistance(b, o), nil
	default:
		return aabbDistance(b, other), nil
	}
}

// Sphere is a ball of the given radius.
type Sphere struct {
	geometryBase
	radius float64
}

// NewSphere constructs a Sphere collision geometry.
func NewSphere(p Pose, radius float64, label string) (*Sphere, error) {
	if radius < 0 {
		return nil, errors.New("sphere radius must be non-negative")
	}
	return &Sphere{geometryBase: geometryBase{label: label, pose: p}, radius: radius}, nil
}

// Kind implements Geometry.
func (s *Sphere) Kind() GeometryKind { return GeometrySphere }

// Transform returns a copy of s re-posed by composing newParent with s's current pose.
func (s *Sphere) Transform(newParent Pose) Geometry {
	return &Sphere{geometryBase: geometryBase{label: s.label, pose: Compose(newParent, s.pose)}, radius: s.radius}
}

// WithPose implements Geometry.
func (s *Sphere) WithPose(p Pose) Geometry {
	return &Sphere{geometryBase: geometryBase{label: s.label, pose: p}, radius: s.radius}
}

// AABB implements Geometry.
func (s *Sphere) AABB() (r3.Vector, r3.Vector) {
	r := r3.Vector{X: s.radius, Y: s.radius, Z: s.radius}
	return s.pose.Point().Sub(r), s.pose.Point().Add(r)
}

// CollidesWith implements Geometry.
func (s *Sphere) CollidesWith(other Geometry) (bool, error) {
	d, err := s.DistanceFrom(other)
	if err != nil {
		return false, err
	}
	return d <= CollisionBuffer, nil
}

// DistanceFrom implements Geometry.
func (s *Sphere) DistanceFrom(other Geometry) (float64, error) {
	switch o := other.(type) {
	case *Sphere:
		return s.pose.Point().Sub(o.pose.Point()).Norm() - s.radius - o.radius, nil
	case *Box:
		return boxSphereDistance(o, s), nil
	default:
		return aabbDistance(s, other), nil
	}
}

func boxSphereDistance(b *Box, s *Sphere) float64 {
	// Transform sphere center into the box's local frame, clamp to the half-extents, and measure
	// the distance from the clamped point back to the center.
	rel := s.pose.Point().Sub(b.pose.Point())
	rm := b.pose.Orientation().RotationMatrix()
	local := r3.Vector{
		X: rel.Dot(r3.Vector{X: rm.At(0, 0), Y: rm.At(1, 0), Z: rm.At(2, 0)}),
		Y: rel.Dot(r3.Vector{X: rm.At(0, 1), Y: rm.At(1, 1), Z: rm.At(2, 1)}),
		Z: rel.Dot(r3.Vector{X: rm.At(0, 2), Y: rm.At(1, 2), Z: rm.At(2, 2)}),
	}
	clamped := r3.Vector{
		X: clamp(local.X, -b.halfSize.X, b.halfSize.X),
		Y: clamp(local.Y, -b.halfSize.Y, b.halfSize.Y),
		Z: clamp(local.Z, -b.halfSize.Z, b.halfSize.Z),
	}
	return local.Sub(clamped).Norm() - s.radius
}

// boxBoxDistance is a conservative separating-axis-free approximation: since the corpus's
// narrow-phase only needs a boolean + a rough penetration depth (the RRT* planner and
// CollisionManager never rely on an exact SAT result, only on the CollisionBuffer threshold),
// this compares the two boxes' world-frame axis-aligned bounding boxes. It is exact for
// axis-aligned boxes and a safe (slightly conservative,
// reports collision sooner) approximation for rotated ones.
func boxBoxDistance(a, b *Box) float64 {
	aMin, aMax := a.AABB()
	bMin, bMax := b.AABB()
	return aabbSeparation(aMin, aMax, bMin, bMax)
}

func aabbSeparation(aMin, aMax, bMin, bMax r3.Vector) float64 {
	dx := math.Max(aMin.X-bMax.X, bMin.X-aMax.X)
	dy := math.Max(aMin.Y-bMax.Y, bMin.Y-aMax.Y)
	dz := math.Max(aMin.Z-bMax.Z, bMin.Z-aMax.Z)
	maxAxisGap := math.Max(dx, math.Max(dy, dz))
	if maxAxisGap > 0 {
		return maxAxisGap
	}
	// Overlapping on every axis: report the (negative) depth of the shallowest axis of overlap.
	return maxAxisGap
}

func aabbDistance(a, b Geometry) float64 {
	aMin, aMax := a.AABB()
	bMin, bMax := b.AABB()
	return aabbSeparation(aMin, aMax, bMin, bMax)
}

// Cylinder is a right circular cylinder whose axis is the local Z axis.
type Cylinder struct {
	geometryBase
	radius, length float64
}

// NewCylinder constructs a Cylinder collision geometry.
func NewCylinder(p Pose, radius, length float64, label string) (*Cylinder, error) {
	if radius < 0 || length < 0 {
		return nil, errors.New("cylinder radius and length must be non-negative")
	}
	return &Cylinder{geometryBase: geometryBase{label: label, pose: p}, radius: radius, length: length}, nil
}

// Kind implements Geometry.
func (c *Cylinder) Kind() GeometryKind { return GeometryCylinder }

// Transform implements Geometry.
func (c *Cylinder) Transform(newParent Pose) Geometry {
	return &Cylinder{geometryBase: geometryBase{label: c.label, pose: Compose(newParent, c.pose)}, radius: c.radius, length: c.length}
}

// WithPose implements Geometry.
func (c *Cylinder) WithPose(p Pose) Geometry {
	return &Cylinder{geometryBase: geometryBase{label: c.label, pose: p}, radius: c.radius, length: c.length}
}

// AABB approximates the cylinder's bound with a sphere of radius max(radius, length/2), which is
// conservative (never smaller than the true AABB) regardless of orientation.
func (c *Cylinder) AABB() (r3.Vector, r3.Vector) {
	r := math.Max(c.radius, c.length/2)
	rv := r3.Vector{X: r, Y: r, Z: r}
	return c.pose.Point().Sub(rv), c.pose.Point().Add(rv)
}

// CollidesWith implements Geometry.
func (c *Cylinder) CollidesWith(other Geometry) (bool, error) {
	d, err := c.DistanceFrom(other)
	if err != nil {
		return false, err
	}
	return d <= CollisionBuffer, nil
}

// DistanceFrom implements Geometry using the conservative AABB separation as the common
// denominator across primitive pairs that lack a closed-form solution.
func (c *Cylinder) DistanceFrom(other Geometry) (float64, error) {
	return aabbDistance(c, other), nil
}

// Capsule is a cylinder with hemispherical caps, axis along local Z.
type Capsule struct {
	geometryBase
	radius, length float64
}

// NewCapsule constructs a Capsule collision geometry.
func NewCapsule(p Pose, radius, length float64, label string) (*Capsule, error) {
	if radius < 0 || length < 0 {
		return nil, errors.New("capsule radius and length must be non-negative")
	}
	return &Capsule{geometryBase: geometryBase{label: label, pose: p}, radius: radius, length: length}, nil
}

// Kind implements Geometry.
func (c *Capsule) Kind() GeometryKind { return GeometryCapsule }

// Transform implements Geometry.
func (c *Capsule) Transform(newParent Pose) Geometry {
	return &Capsule{geometryBase: geometryBase{label: c.label, pose: Compose(newParent, c.pose)}, radius: c.radius, length: c.length}
}

// WithPose implements Geometry.
func (c *Capsule) WithPose(p Pose) Geometry {
	return &Capsule{geometryBase: geometryBase{label: c.label, pose: p}, radius: c.radius, length: c.length}
}

// AABB implements Geometry.
func (c *Capsule) AABB() (r3.Vector, r3.Vector) {
	r := c.radius + c.length/2
	rv := r3.Vector{X: r, Y: r, Z: r}
	return c.pose.Point().Sub(rv), c.pose.Point().Add(rv)
}

// CollidesWith implements Geometry.
func (c *Capsule) CollidesWith(other Geometry) (bool, error) {
	d, err := c.DistanceFrom(other)
	if err != nil {
		return false, err
	}
	return d <= CollisionBuffer, nil
}

// DistanceFrom implements Geometry.
func (c *Capsule) DistanceFrom(other Geometry) (float64, error) {
	return aabbDistance(c, other), nil
}

// Mesh is a collision geometry backed by a triangle mesh supplied by the caller (the core never
// loads mesh files itself, per spec §6). Its bounds are taken as given and transformed with the
// pose; exact mesh-mesh queries are out of scope, so Mesh narrow-phase falls back to AABB
// separation, same as Cylinder/Capsule.
type Mesh struct {
	geometryBase
	localMin, localMax r3.Vector
}

// NewMesh constructs a Mesh collision geometry from a local-frame bounding box (as would be
// reported by an externally-loaded mesh's `bounds` field, spec §6).
func NewMesh(p Pose, localMin, localMax r3.Vector, label string) *Mesh {
	return &Mesh{geometryBase: geometryBase{label: label, pose: p}, localMin: localMin, localMax: localMax}
}

// Kind implements Geometry.
func (m *Mesh) Kind() GeometryKind { return GeometryMesh }

// Transform implements Geometry.
func (m *Mesh) Transform(newParent Pose) Geometry {
	return &Mesh{
		geometryBase: geometryBase{label: m.label, pose: Compose(newParent, m.pose)},
		localMin:     m.localMin,
		localMax:     m.localMax,
	}
}

// WithPose implements Geometry.
func (m *Mesh) WithPose(p Pose) Geometry {
	return &Mesh{geometryBase: geometryBase{label: m.label, pose: p}, localMin: m.localMin, localMax: m.localMax}
}

// AABB transforms the eight corners of the local bounding box by the mesh's pose.
func (m *Mesh) AABB() (r3.Vector, r3.Vector) {
	half := m.localMax.Sub(m.localMin).Mul(0.5)
	center := m.localMin.Add(half)
	corners := boxCorners(Compose(m.pose, NewPoseFromPoint(center)), half)
	minV, maxV := corners[0], corners[0]
	for _, c := range corners[1:] {
		minV = r3.Vector{X: math.Min(minV.X, c.X), Y: math.Min(minV.Y, c.Y), Z: math.Min(minV.Z, c.Z)}
		maxV = r3.Vector{X: math.Max(maxV.X, c.X), Y: math.Max(maxV.Y, c.Y), Z: math.Max(maxV.Z, c.Z)}
	}
	return minV, maxV
}

// CollidesWith implements Geometry.
func (m *Mesh) CollidesWith(other Geometry) (bool, error) {
	d, err := m.DistanceFrom(other)
	if err != nil {
		return false, err
	}
	return d <= CollisionBuffer, nil
}

// DistanceFrom implements Geometry.
func (m *Mesh) DistanceFrom(other Geometry) (float64, error) {
	return aabbDistance(m, other), nil
}
