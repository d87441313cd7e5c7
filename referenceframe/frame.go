package referenceframe

import (
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/pallet-robotics/kinecore/spatialmath"
)

// World is the name of the universal root frame every kinematic tree is ultimately rooted at.
const World = "world"

// Frame represents one edge of a kinematic tree: given a (possibly empty) joint-value input, it
// reports the transform from its parent to its child, its degrees of freedom, and the collision
// geometry rigidly attached to its child link. Concrete implementations are staticFrame (a fixed
// joint plus a link offset), rotationalFrame (revolute/continuous), and translationalFrame
// (prismatic).
type Frame interface {
	Name() string
	// DoF returns one Limit per input Transform expects, in order. Zero-length for fixed frames.
	DoF() []Limit
	// Transform returns the parent->child pose for the given inputs. If the inputs violate DoF's
	// limits, Transform still returns the (out-of-bounds) pose alongside an error whose message
	// contains OOBErrString, so that defensive callers (ComputeOOBPosition, IK partial steps) can
	// use the result.
	Transform([]Input) (spatialmath.Pose, error)
	// Geometries returns this frame's collision geometry, expressed in the frame's own local
	// coordinate system (not yet placed at Transform's pose).
	Geometries([]Input) (*GeometriesInFrame, error)
	// Interpolate linearly interpolates between two input vectors valid for this frame.
	Interpolate(from, to []Input, by float64) ([]Input, error)
}

type baseFrame struct {
	name string
}

func (f *baseFrame) Name() string { return f.name }

// staticFrame is a Frame with no degrees of freedom: a fixed joint composed with a link offset.
type staticFrame struct {
	baseFrame
	transform spatialmath.Pose
	geometry  spatialmath.Geometry
}

// NewStaticFrame constructs a zero-DoF Frame representing a fixed transform.
func NewStaticFrame(name string, transform spatialmath.Pose) (Frame, error) {
	if transform == nil {
		return nil, errors.New("pose is not allowed to be nil")
	}
	return &staticFrame{baseFrame: baseFrame{name}, transform: transform}, nil
}

// NewStaticFrameWithGeometry constructs a zero-DoF Frame that also carries collision geometry.
func NewStaticFrameWithGeometry(name string, transform spatialmath.Pose, geometry spatialmath.Geometry) (Frame, error) {
	if transform == nil {
		return nil, errors.New("pose is not allowed to be nil")
	}
	return &staticFrame{baseFrame: baseFrame{name}, transform: transform, geometry: geometry}, nil
}

func (f *staticFrame) DoF() []Limit { return []Limit{} }

func (f *staticFrame) Transform(inputs []Input) (spatialmath.Pose, error) {
	if len(inputs) != 0 {
		return nil, NewIncorrectDoFError(len(inputs), 0)
	}
	return f.transform, nil
}

func (f *staticFrame) Geometries([]Input) (*GeometriesInFrame, error) {
	if f.geometry == nil {
		return NewGeometriesInFrame(f.name, nil), nil
	}
	return NewGeometriesInFrame(f.name, []spatialmath.Geometry{f.geometry}), nil
}

func (f *staticFrame) Interpolate(from, to []Input, by float64) ([]Input, error) {
	if len(from) != 0 || len(to) != 0 {
		return nil, NewIncorrectDoFError(len(from), 0)
	}
	return []Input{}, nil
}

// rotationalFrame is a single revolute or continuous joint rotating about `axis` by the input
// value (radians). A continuous joint carries continuousJointLimit (unbounded, +/-Inf): Transform accepts any value but
// distance/interpolation-sensitive callers should wrap it with WrapContinuous first.
type rotationalFrame struct {
	baseFrame
	axis  spatialmath.R4AA
	limit Limit
}

// NewRotationalFrame constructs a single-DoF revolute Frame rotating about axis.
func NewRotationalFrame(name string, axis spatialmath.R4AA, limit Limit) (Frame, error) {
	return &rotationalFrame{baseFrame: baseFrame{name}, axis: axis, limit: limit}, nil
}

func (f *rotationalFrame) DoF() []Limit { return []Limit{f.limit} }

func (f *rotationalFrame) Transform(inputs []Input) (spatialmath.Pose, error) {
	if len(inputs) != 1 {
		return nil, NewIncorrectDoFError(len(inputs), 1)
	}
	aa := f.axis
	aa.Theta = inputs[0].Value
	pose := spatialmath.NewPoseFromAxisAngle(r3.Vector{}, r3.Vector{X: aa.RX, Y: aa.RY, Z: aa.RZ}, aa.Theta)
	if !f.limit.Contains(inputs[0].Value) {
		return pose, NewOutOfBoundsError(f.name, inputs[0].Value, f.limit)
	}
	return pose, nil
}

func (f *rotationalFrame) Geometries([]Input) (*GeometriesInFrame, error) {
	return NewGeometriesInFrame(f.name, nil), nil
}

func (f *rotationalFrame) Interpolate(from, to []Input, by float64) ([]Input, error) {
	if len(from) != 1 || len(to) != 1 {
		return nil, NewIncorrectDoFError(len(from), 1)
	}
	return InterpolateInputs(from, to, by), nil
}

// translationalFrame is a single prismatic joint sliding along `axis` (a unit vector) by the
// input value.
type translationalFrame struct {
	baseFrame
	axis  r3.Vector
	limit Limit
}

// NewTranslationalFrame constructs a single-DoF prismatic Frame sliding along axis.
func NewTranslationalFrame(name string, axis r3.Vector, limit Limit) (Frame, error) {
	return &translationalFrame{baseFrame: baseFrame{name}, axis: axis.Normalize(), limit: limit}, nil
}

func (f *translationalFrame) DoF() []Limit { return []Limit{f.limit} }

func (f *translationalFrame) Transform(inputs []Input) (spatialmath.Pose, error) {
	if len(inputs) != 1 {
		return nil, NewIncorrectDoFError(len(inputs), 1)
	}
	pose := spatialmath.NewPoseFromPoint(f.axis.Mul(inputs[0].Value))
	if !f.limit.Contains(inputs[0].Value) {
		return pose, NewOutOfBoundsError(f.name, inputs[0].Value, f.limit)
	}
	return pose, nil
}

func (f *translationalFrame) Geometries([]Input) (*GeometriesInFrame, error) {
	return NewGeometriesInFrame(f.name, nil), nil
}

func (f *translationalFrame) Interpolate(from, to []Input, by float64) ([]Input, error) {
	if len(from) != 1 || len(to) != 1 {
		return nil, NewIncorrectDoFError(len(from), 1)
	}
	return InterpolateInputs(from, to, by), nil
}

// ComputeOOBPosition evaluates frame at inputs even if those inputs would violate the frame's
// limits, returning the resulting pose statelessly. Mirrors the teacher's
// referenceframe/model.go helper of the same name.
func ComputeOOBPosition(frame Frame, inputs []Input) (spatialmath.Pose, error) {
	if inputs == nil {
		return nil, errors.New("cannot compute position for nil joints")
	}
	if frame == nil {
		return nil, errors.New("cannot compute position for nil frame")
	}
	pose, err := frame.Transform(inputs)
	if err != nil && !strings.Contains(err.Error(), OOBErrString) {
		return nil, err
	}
	return pose, nil
}
