package referenceframe

import (
	"github.com/pkg/errors"

	"github.com/pallet-robotics/kinecore/spatialmath"
)

// Model is the top-level handle a caller gets back after building a kinematic tree: it names the
// tree, knows its active-joint DoF, and can hand out the serial Chain leading to any named
// end-effector link, the call shape the IK/Jacobian engine consumes. This supersedes the teacher's
// protobuf-aware SimpleModel (referenceframe/model.go): URDF/SVA file parsing and the gRPC
// kinematics wire format are out of scope (SPEC_FULL.md §2), so Model is built directly from
// Link/Joint records via NewKinematicTree rather than from a parsed config file.
type Model struct {
	tree          *KinematicTree
	eefLink       string
	chain         *Chain
	chainDoFNames []string
}

// NewModel builds a Model from a KinematicTree, defaulting its end-effector link to eefLink. A
// bimanual tree (KinematicTree.IsBimanual) requires ModelForArm to select which branch's
// end-effector a given Model should serve; NewModel is for single-chain (non-bimanual) trees.
func NewModel(tree *KinematicTree, eefLink string) (*Model, error) {
	chain, jointNames, err := tree.Chain(eefLink)
	if err != nil {
		return nil, err
	}
	return &Model{tree: tree, eefLink: eefLink, chain: chain, chainDoFNames: jointNames}, nil
}

// ModelForArm builds a Model scoped to one arm of a bimanual tree, identified by that arm's
// end-effector link name.
func ModelForArm(tree *KinematicTree, armEefLink string) (*Model, error) {
	if !tree.IsBimanual() {
		return nil, errors.New("tree is not bimanual; use NewModel directly")
	}
	return NewModel(tree, armEefLink)
}

// Name returns the name of the end-effector link this Model resolves to.
func (m *Model) Name() string { return m.eefLink }

// DoF returns one Limit per active joint feeding this Model's chain, in order.
func (m *Model) DoF() []Limit { return m.chain.DoF() }

// ActiveJointNames returns the active-joint names feeding this Model's chain, in the same order
// DoF/Transform expect values in.
func (m *Model) ActiveJointNames() []string { return m.chainDoFNames }

// Transform computes the end-effector pose for the given joint inputs: the "ordered list of
// frames" call shape, as opposed to ForwardKinematics's tree-recursive one.
func (m *Model) Transform(inputs []Input) (spatialmath.Pose, error) {
	return m.chain.Transform(inputs)
}

// ForwardKinematics computes the pose of every link in the underlying tree, not just this
// Model's end-effector link.
func (m *Model) ForwardKinematics(inputs []Input) (*FKResult, error) {
	return m.tree.ForwardKinematics(inputs)
}

// Interpolate interpolates the given amount between two joint configurations valid for this
// Model's chain.
func (m *Model) Interpolate(from, to []Input, by float64) ([]Input, error) {
	return m.chain.Interpolate(from, to, by)
}

// Geometries returns the posed collision geometry of every frame along this Model's chain.
func (m *Model) Geometries(inputs []Input) (*GeometriesInFrame, error) {
	return m.chain.Geometries(inputs)
}

// JacobianColumns returns the per-active-joint world-frame axis/origin data needed to build the
// geometric Jacobian at the given configuration, plus the resulting end-effector pose.
func (m *Model) JacobianColumns(inputs []Input) ([]JacobianColumn, spatialmath.Pose, error) {
	return m.chain.JacobianColumns(inputs)
}

// GenerateRandomConfiguration produces a joint vector uniformly random within this Model's DoF
// limits.
func (m *Model) GenerateRandomConfiguration(randFloat func() float64) []Input {
	return GenerateRandomConfiguration(m.DoF(), randFloat)
}

// ComputeOOBPosition evaluates this Model's chain at inputs even if they violate joint limits,
// for use by defensive callers (IK partial steps, clamped interpolation probes) that need the
// pose regardless of feasibility.
func (m *Model) ComputeOOBPosition(inputs []Input) (spatialmath.Pose, error) {
	pose, err := m.chain.Transform(inputs)
	if pose == nil {
		return nil, err
	}
	return pose, nil
}
