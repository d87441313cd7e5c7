package referenceframe

import (
	"github.com/golang/geo/r3"
	"go.uber.org/multierr"

	"github.com/pallet-robotics/kinecore/spatialmath"
)

// Chain is a serial concatenation of Frames evaluated left to right, the "ordered list of
// frames" call shape spec §4.1 describes for IK/Jacobian use, as opposed to the tree-recursive
// KinematicTree.ForwardKinematics. Mirrors the teacher's SimpleModel/OrdTransforms concatenation
// in referenceframe/model.go.
type Chain struct {
	name   string
	frames []Frame
	limits []Limit
}

// NewChain builds a Chain from an ordered list of Frames (as returned by
// KinematicTree.Chain).
func NewChain(name string, frames []Frame) *Chain {
	var limits []Limit
	for _, f := range frames {
		limits = append(limits, f.DoF()...)
	}
	return &Chain{name: name, frames: frames, limits: limits}
}

// Name returns the chain's name (conventionally the end-effector link it terminates at).
func (c *Chain) Name() string { return c.name }

// DoF returns one Limit per active joint in the chain, in order.
func (c *Chain) DoF() []Limit { return c.limits }

// Transform composes every frame in the chain in order. If q underflows the chain's DoF (fewer
// values supplied than frames expect), the chain reuses the last available input value(s) for the
// remaining frames rather than failing — a defensive behavior retained from the teacher's
// chain-form FK, which clamps the angle index instead of erroring on underflow, useful when IK
// callers probe with partial input vectors.
func (c *Chain) Transform(q []Input) (spatialmath.Pose, error) {
	var errAll error
	result := spatialmath.NewZeroPose()
	posIdx := 0
	for _, f := range c.frames {
		dof := len(f.DoF())
		input := chainInputSlice(q, posIdx, dof)
		if dof > 0 {
			posIdx += dof
			if posIdx > len(q) {
				posIdx = len(q)
			}
		}
		pose, err := f.Transform(input)
		if pose == nil {
			return nil, err
		}
		multierr.AppendInto(&errAll, err)
		result = spatialmath.Compose(result, pose)
	}
	return result, errAll
}

func chainInputSlice(q []Input, posIdx, dof int) []Input {
	if dof == 0 {
		return []Input{}
	}
	if posIdx+dof <= len(q) {
		return q[posIdx : posIdx+dof]
	}
	start := len(q) - dof
	if start < 0 {
		start = 0
	}
	return q[start:]
}

// Interpolate interpolates each constituent frame's slice of the input vector independently.
func (c *Chain) Interpolate(from, to []Input, by float64) ([]Input, error) {
	interp := make([]Input, 0, len(from))
	posIdx := 0
	for _, f := range c.frames {
		dof := len(f.DoF())
		fromSub := from[posIdx : posIdx+dof]
		toSub := to[posIdx : posIdx+dof]
		posIdx += dof
		sub, err := f.Interpolate(fromSub, toSub, by)
		if err != nil {
			return nil, err
		}
		interp = append(interp, sub...)
	}
	return interp, nil
}

// JacobianColumn carries the per-active-joint geometric data (world-frame axis and origin) the ik
// package needs to assemble a 6xn geometric Jacobian, without exposing the chain's internal frame
// types.
type JacobianColumn struct {
	Name string
	// Axis is the unit joint axis, expressed in world frame at the current configuration.
	Axis r3.Vector
	// Origin is the joint's origin translation, expressed in world frame at the current
	// configuration (for a revolute joint, the pivot point the axis passes through).
	Origin r3.Vector
	// Revolute is true for revolute/continuous joints, false for prismatic.
	Revolute bool
}

// JacobianColumns walks the chain at the given joint inputs, returning one JacobianColumn per
// active joint (in the same order as DoF/Transform expect inputs), plus the resulting
// end-effector pose.
func (c *Chain) JacobianColumns(q []Input) ([]JacobianColumn, spatialmath.Pose, error) {
	var errAll error
	cols := make([]JacobianColumn, 0, len(c.frames))
	trans := spatialmath.NewZeroPose()
	posIdx := 0
	for _, f := range c.frames {
		dof := len(f.DoF())
		input := chainInputSlice(q, posIdx, dof)
		if dof > 0 {
			posIdx += dof
			if posIdx > len(q) {
				posIdx = len(q)
			}
		}

		if jf, ok := f.(*jointFrame); ok && dof > 0 {
			originPose := spatialmath.Compose(trans, jf.origin)
			rm := originPose.Orientation().RotationMatrix()
			switch m := jf.motion.(type) {
			case *rotationalFrame:
				axisLocal := r3.Vector{X: m.axis.RX, Y: m.axis.RY, Z: m.axis.RZ}.Normalize()
				cols = append(cols, JacobianColumn{
					Name:     f.Name(),
					Axis:     rm.RotateVector(axisLocal),
					Origin:   originPose.Point(),
					Revolute: true,
				})
			case *translationalFrame:
				cols = append(cols, JacobianColumn{
					Name:   f.Name(),
					Axis:   rm.RotateVector(m.axis),
					Origin: originPose.Point(),
				})
			}
		}

		pose, err := f.Transform(input)
		if pose == nil {
			return nil, nil, err
		}
		multierr.AppendInto(&errAll, err)
		trans = spatialmath.Compose(trans, pose)
	}
	return cols, trans, errAll
}

// Geometries returns the collision geometry of every frame in the chain, posed at the given
// joint values, each labelled with the owning frame's name.
func (c *Chain) Geometries(q []Input) (*GeometriesInFrame, error) {
	var errAll error
	geoms := make([]spatialmath.Geometry, 0, len(c.frames))
	trans := spatialmath.NewZeroPose()
	posIdx := 0
	for _, f := range c.frames {
		dof := len(f.DoF())
		input := chainInputSlice(q, posIdx, dof)
		if dof > 0 {
			posIdx += dof
			if posIdx > len(q) {
				posIdx = len(q)
			}
		}
		pose, err := f.Transform(input)
		if pose == nil {
			return nil, err
		}
		multierr.AppendInto(&errAll, err)
		trans = spatialmath.Compose(trans, pose)

		gf, err := f.Geometries(input)
		if err != nil {
			multierr.AppendInto(&errAll, err)
			continue
		}
		for _, g := range gf.Geometries() {
			posed := g.Transform(trans)
			posed.SetLabel(f.Name())
			geoms = append(geoms, posed)
		}
	}
	return NewGeometriesInFrame(c.name, geoms), errAll
}
