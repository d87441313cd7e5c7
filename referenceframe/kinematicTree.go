package referenceframe

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/pallet-robotics/kinecore/spatialmath"
)

// continuousJointLimit is the sentinel Limit assigned to continuous joints, which have no true
// bound and instead wrap modulo 2*pi before distance comparisons (Limit.IsContinuous).
var continuousJointLimit = Limit{Min: math.Inf(-1), Max: math.Inf(1)}

// FKResult is an insertion-ordered link_name -> Pose mapping, preserving the DFS traversal order
// of the kinematic tree that produced it (Go maps do not preserve insertion order, so the order
// is tracked alongside the lookup table).
type FKResult struct {
	order []string
	poses map[string]spatialmath.Pose
}

func newFKResult() *FKResult {
	return &FKResult{poses: map[string]spatialmath.Pose{}}
}

func (r *FKResult) set(name string, p spatialmath.Pose) {
	if _, ok := r.poses[name]; !ok {
		r.order = append(r.order, name)
	}
	r.poses[name] = p
}

// Names returns the link names in DFS insertion order.
func (r *FKResult) Names() []string { return r.order }

// Get returns the pose of the named link, and whether it was present.
func (r *FKResult) Get(name string) (spatialmath.Pose, bool) {
	p, ok := r.poses[name]
	return p, ok
}

// Map returns the full name->pose mapping. Order is not preserved by the returned map; use
// Names for traversal order.
func (r *FKResult) Map() map[string]spatialmath.Pose { return r.poses }

// treeNode is one edge of the kinematic tree: a Joint plus the Link it terminates at. The root
// node is special-cased to have a zero Joint and represents the tree's base link.
type treeNode struct {
	joint    Joint
	motion   Frame // axis_motion(q): rotationalFrame, translationalFrame, or a zero-DoF staticFrame for JointFixed
	link     Link
	children []*treeNode
}

// KinematicTree is a tree of frames rooted at a base link, with the ordered list of active
// (non-fixed) joint names that Transform/ForwardKinematics expect inputs for, in DFS order.
type KinematicTree struct {
	name             string
	root             *treeNode
	activeJointNames []string
	limits           []Limit
	nodesByLink      map[string]*treeNode
	bimanual         bool
	visualLinks      []string
}

// Name returns the tree's name.
func (t *KinematicTree) Name() string { return t.name }

// ActiveJointNames returns the non-fixed joint names in DFS order; this is the order
// ForwardKinematics/Jacobian/IK expect input values in.
func (t *KinematicTree) ActiveJointNames() []string { return t.activeJointNames }

// DoF returns one Limit per active joint, in ActiveJointNames order.
func (t *KinematicTree) DoF() []Limit { return t.limits }

// IsBimanual reports whether this tree was recognised as a bimanual model (a root link from
// which two or more independent, multi-joint chains branch directly) at construction time.
func (t *KinematicTree) IsBimanual() bool { return t.bimanual }

// VisualLinks returns the fixed "visual" links hanging directly off a bimanual tree's shared
// torso, so that a renderer (out of scope here) can still place them even though they carry no
// degrees of freedom. Empty for non-bimanual trees.
func (t *KinematicTree) VisualLinks() []string { return t.visualLinks }

// NewKinematicTree builds a KinematicTree from parsed Link/Joint records (as a URDF-like parser,
// out of scope here, would produce) and the name of the root link.
func NewKinematicTree(name string, links []Link, joints []Joint, rootLink string) (*KinematicTree, error) {
	linksByName := make(map[string]Link, len(links))
	for _, l := range links {
		linksByName[l.Name] = l
	}
	root, ok := linksByName[rootLink]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidModel, "root link %q not found", rootLink)
	}

	childJointsByParent := make(map[string][]Joint)
	for _, j := range joints {
		if _, ok := linksByName[j.Parent]; !ok {
			return nil, errors.Wrapf(ErrInvalidModel, "joint %q references unknown parent link %q", j.Name, j.Parent)
		}
		if _, ok := linksByName[j.Child]; !ok {
			return nil, errors.Wrapf(ErrInvalidModel, "joint %q references unknown child link %q", j.Name, j.Child)
		}
		childJointsByParent[j.Parent] = append(childJointsByParent[j.Parent], j)
	}

	t := &KinematicTree{name: name, nodesByLink: map[string]*treeNode{}}
	t.root = &treeNode{link: root}
	t.nodesByLink[root.Name] = t.root

	var build func(parentLink string, node *treeNode) error
	build = func(parentLink string, node *treeNode) error {
		for _, j := range childJointsByParent[parentLink] {
			motion, err := motionFrameForJoint(j)
			if err != nil {
				return err
			}
			child := &treeNode{joint: j, motion: motion, link: linksByName[j.Child]}
			node.children = append(node.children, child)
			t.nodesByLink[j.Child] = child
			if j.Kind != JointFixed {
				t.activeJointNames = append(t.activeJointNames, j.Name)
				if j.Kind == JointContinuous {
					t.limits = append(t.limits, continuousJointLimit)
				} else {
					t.limits = append(t.limits, *j.Limit)
				}
			}
			if err := build(j.Child, child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := build(rootLink, t.root); err != nil {
		return nil, err
	}

	t.bimanual, t.visualLinks = detectBimanual(t.root)
	return t, nil
}

func motionFrameForJoint(j Joint) (Frame, error) {
	switch j.Kind {
	case JointFixed:
		return NewStaticFrame(j.Name, spatialmath.NewZeroPose())
	case JointRevolute:
		if j.Limit == nil {
			return nil, errors.Wrapf(ErrInvalidModel, "revolute joint %q missing limit", j.Name)
		}
		return NewRotationalFrame(j.Name, spatialmath.R4AA{RX: j.Axis.X, RY: j.Axis.Y, RZ: j.Axis.Z}, *j.Limit)
	case JointContinuous:
		return NewRotationalFrame(j.Name, spatialmath.R4AA{RX: j.Axis.X, RY: j.Axis.Y, RZ: j.Axis.Z}, continuousJointLimit)
	case JointPrismatic:
		if j.Limit == nil {
			return nil, errors.Wrapf(ErrInvalidModel, "prismatic joint %q missing limit", j.Name)
		}
		return NewTranslationalFrame(j.Name, j.Axis, *j.Limit)
	default:
		return nil, errors.Wrapf(ErrInvalidModel, "joint %q has unrecognised kind %q", j.Name, j.Kind)
	}
}

// detectBimanual recognises a bimanual model as a root with at least two children, each of which
// roots a chain with more than one active joint, and collects the fixed links hanging directly
// off the root as "visual" links a renderer still needs to place.
func detectBimanual(root *treeNode) (bool, []string) {
	armlikeBranches := 0
	var visual []string
	for _, child := range root.children {
		if child.joint.Kind == JointFixed {
			visual = append(visual, child.link.Name)
			continue
		}
		if countActiveJoints(child) >= 2 {
			armlikeBranches++
		}
	}
	return armlikeBranches >= 2, visual
}

func countActiveJoints(node *treeNode) int {
	n := 0
	if node.joint.Kind != JointFixed && node.joint.Name != "" {
		n++
	}
	for _, c := range node.children {
		n += countActiveJoints(c)
	}
	return n
}

// ForwardKinematics computes the pose of every link in the tree for the given active-joint
// values, in DFS insertion order. Per-joint out-of-bounds inputs do not abort the traversal (they
// are accumulated and returned alongside the result), matching the defensive evaluation style the
// IK solvers rely on.
func (t *KinematicTree) ForwardKinematics(q []Input) (*FKResult, error) {
	if len(q) != len(t.limits) {
		return nil, errors.Wrapf(ErrInvalidModel, "expected %d active joint values, got %d", len(t.limits), len(q))
	}
	result := newFKResult()
	qIdx := 0
	_, err := t.forwardNode(t.root, spatialmath.NewZeroPose(), q, &qIdx, result)
	return result, err
}

func (t *KinematicTree) forwardNode(
	node *treeNode,
	trans spatialmath.Pose,
	q []Input,
	qIdx *int,
	result *FKResult,
) (spatialmath.Pose, error) {
	var errAll error
	transPrime := trans
	if node != t.root {
		dof := len(node.motion.DoF())
		input := q[*qIdx : *qIdx+dof]
		*qIdx += dof
		motionPose, err := node.motion.Transform(input)
		if motionPose == nil {
			return nil, err
		}
		multierr.AppendInto(&errAll, err)
		jointPose := spatialmath.Compose(node.joint.Origin, motionPose)
		transPrime = spatialmath.Compose(trans, jointPose)
	}

	offset := node.link.Offset
	if offset == nil {
		offset = spatialmath.NewZeroPose()
	}
	result.set(node.link.Name, spatialmath.Compose(transPrime, offset))

	for _, child := range node.children {
		_, err := t.forwardNode(child, transPrime, q, qIdx, result)
		multierr.AppendInto(&errAll, err)
	}
	return transPrime, errAll
}

// Chain returns the ordered serial chain of active joints from the tree's root down to eefLink,
// along with the matching active-joint names, for use by the IK/Jacobian engine (spec §4.1's
// "ordered list of frames" call shape). It is an error if eefLink is not present or is not
// reachable by a single unbranching path of joints from the root (branching trees, e.g. bimanual
// robots, must request one arm's end-effector link at a time).
func (t *KinematicTree) Chain(eefLink string) (*Chain, []string, error) {
	node, ok := t.nodesByLink[eefLink]
	if !ok {
		return nil, nil, errors.Wrapf(ErrInvalidModel, "link %q not found", eefLink)
	}
	path, err := t.pathFromRoot(node)
	if err != nil {
		return nil, nil, err
	}
	frames := make([]Frame, 0, len(path)*2)
	jointNames := make([]string, 0, len(path))
	for _, n := range path {
		frames = append(frames, &jointFrame{origin: n.joint.Origin, motion: n.motion})
		if n.joint.Kind != JointFixed {
			jointNames = append(jointNames, n.joint.Name)
		}
		offset := n.link.Offset
		if offset == nil {
			offset = spatialmath.NewZeroPose()
		}
		staticOffset, _ := NewStaticFrameWithGeometry(n.link.Name, offset, n.link.Geometry)
		frames = append(frames, staticOffset)
	}
	return NewChain(eefLink, frames), jointNames, nil
}

func (t *KinematicTree) pathFromRoot(target *treeNode) ([]*treeNode, error) {
	var path []*treeNode
	var find func(node *treeNode, acc []*treeNode) []*treeNode
	find = func(node *treeNode, acc []*treeNode) []*treeNode {
		if node != t.root {
			acc = append(acc, node)
		}
		if node == target {
			return acc
		}
		for _, c := range node.children {
			if found := find(c, acc); found != nil {
				return found
			}
		}
		return nil
	}
	path = find(t.root, nil)
	if path == nil {
		return nil, errors.Wrapf(ErrInvalidModel, "no path from root to %q", target.link.Name)
	}
	return path, nil
}

// jointFrame composes a joint's fixed origin with its own motion(q), so that a Chain built from
// jointFrames reproduces the spec's "origin . axis_motion(q)" rule per edge.
type jointFrame struct {
	origin spatialmath.Pose
	motion Frame
}

func (f *jointFrame) Name() string   { return f.motion.Name() }
func (f *jointFrame) DoF() []Limit   { return f.motion.DoF() }
func (f *jointFrame) Transform(inputs []Input) (spatialmath.Pose, error) {
	motionPose, err := f.motion.Transform(inputs)
	if motionPose == nil {
		return nil, err
	}
	return spatialmath.Compose(f.origin, motionPose), err
}
func (f *jointFrame) Geometries(inputs []Input) (*GeometriesInFrame, error) {
	return f.motion.Geometries(inputs)
}
func (f *jointFrame) Interpolate(from, to []Input, by float64) ([]Input, error) {
	return f.motion.Interpolate(from, to, by)
}
