package scene

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"github.com/pallet-robotics/kinecore/collision"
	"github.com/pallet-robotics/kinecore/ik"
	"github.com/pallet-robotics/kinecore/referenceframe"
	"github.com/pallet-robotics/kinecore/spatialmath"
)

// onEpsilonZ is the vertical tolerance used by UpdateLogicalStates' "on" geometric test.
const onEpsilonZ = 0.002

// Manager is the scene-level coordinator: the robot's current configuration, the movable
// objects in the world, a gripper, logical-state bookkeeping, and the three collision managers
// (robot, objects, gripper) planners and actions consult. Named SceneManager in SPEC_FULL.md;
// kept as Manager here to match the package-is-the-namespace convention collision.Manager
// already set.
type Manager struct {
	model *referenceframe.Model
	q     []referenceframe.Input

	objects map[string]*Object
	logical map[string]*LogicalState

	robotMngr   *collision.Manager
	objMngr     *collision.Manager
	gripperMngr *collision.Manager

	gripper           *Gripper
	gripperLocalGeoms map[string]spatialmath.Geometry

	pickObj, placeObj string

	logger golog.Logger
}

// NewManager builds a scene around model at configuration q, with an optional gripper (nil for a
// robot with no end effector tooling).
func NewManager(model *referenceframe.Model, q []referenceframe.Input, gripper *Gripper, logger golog.Logger) (*Manager, error) {
	m := &Manager{
		model:             model,
		q:                 append([]referenceframe.Input(nil), q...),
		objects:           make(map[string]*Object),
		logical:           make(map[string]*LogicalState),
		objMngr:           collision.NewManager(),
		gripper:           gripper,
		gripperLocalGeoms: make(map[string]spatialmath.Geometry),
		logger:            logger,
	}
	if err := m.syncRobotGeometries(); err != nil {
		return nil, err
	}
	if gripper != nil {
		eef, err := m.model.Transform(m.q)
		if err != nil {
			return nil, err
		}
		gripper.SetPose(eef)
		if err := m.syncGripperGeometries(); err != nil {
			return nil, err
		}
		m.logical[gripper.Name] = &LogicalState{}
	}
	return m, nil
}

// syncRobotGeometries rebuilds the robot collision manager from the model's current-configuration
// geometries.
func (m *Manager) syncRobotGeometries() error {
	gf, err := m.model.Geometries(m.q)
	if err != nil {
		return err
	}
	fresh := collision.NewManager()
	for _, g := range gf.Geometries() {
		if err := fresh.AddObject(g.Label(), g); err != nil {
			return err
		}
	}
	m.robotMngr = fresh
	return nil
}

// syncGripperGeometries captures the gripper's element-link geometries relative to the gripper's
// own frame (so later SetGripperPose calls can re-pose them without re-running FK), then builds
// the gripper collision manager at the gripper's current world pose.
func (m *Manager) syncGripperGeometries() error {
	robotGeoms := m.robotMngr.Geometries()
	for _, name := range m.gripper.ElementLinks {
		g, ok := robotGeoms[name]
		if !ok {
			continue
		}
		local := spatialmath.Compose(spatialmath.Invert(m.gripper.Pose()), g.Pose())
		m.gripperLocalGeoms[name] = g.WithPose(local)
	}
	return m.rebuildGripperManager()
}

func (m *Manager) rebuildGripperManager() error {
	fresh := collision.NewManager()
	for name, local := range m.gripperLocalGeoms {
		world := spatialmath.Compose(m.gripper.Pose(), local.Pose())
		if err := fresh.AddObject(name, local.WithPose(world)); err != nil {
			return err
		}
	}
	if name, held := m.gripper.Attached(); held {
		obj := m.objects[name]
		worldPose := spatialmath.Compose(m.gripper.Pose(), m.gripper.attachment.transformGripperToObj)
		if err := fresh.AddObject(name, obj.Geometry.WithPose(worldPose)); err != nil {
			return err
		}
	}
	m.gripperMngr = fresh
	return nil
}

// AddObject registers a new scene object at pose, colliding against nothing initially.
func (m *Manager) AddObject(name string, geom spatialmath.Geometry, pose spatialmath.Pose, colour string) error {
	if _, exists := m.objects[name]; exists {
		return ErrDuplicateObject
	}
	obj := &Object{Name: name, Geometry: geom, Pose: pose, Colour: colour}
	m.objects[name] = obj
	m.logical[name] = &LogicalState{}
	return m.objMngr.AddObject(name, obj.posedGeometry())
}

// LoadWorldState registers every obstacle carried by ws as a scene object (with an empty logical
// state, Static left false), using each geometry's own label as its object name and its own
// current pose as the object's world pose. This is the obstacle-ingestion path: a caller parses
// (or otherwise builds) a referenceframe.WorldState and hands it to the scene once, rather than
// calling AddObject per obstacle by hand.
func (m *Manager) LoadWorldState(ws *referenceframe.WorldState) error {
	for _, gf := range ws.Obstacles() {
		for _, g := range gf.Geometries() {
			if err := m.AddObject(g.Label(), g, g.Pose(), ""); err != nil {
				return err
			}
		}
	}
	return nil
}

// AttachObjectOnGripper records the rigid transform from the gripper to the named object, moves
// the object's collision representation from the object manager to the gripper manager, and
// flips the held/holding logical-state pair. DetachObjectFromGripper is the inverse of this
// operation.
func (m *Manager) AttachObjectOnGripper(name string) error {
	if m.gripper == nil {
		return ErrNoGripper
	}
	if _, held := m.gripper.Attached(); held {
		return ErrAlreadyHolding
	}
	obj, ok := m.objects[name]
	if !ok {
		return ErrUnknownObject
	}

	transform := spatialmath.Compose(spatialmath.Invert(m.gripper.Pose()), obj.Pose)
	m.gripper.attachment = &attachment{
		objectName:            name,
		pickObjPose:           obj.Pose,
		graspPose:             m.gripper.Pose(),
		transformGripperToObj: transform,
	}

	m.objMngr.RemoveObject(name)
	if err := m.rebuildGripperManager(); err != nil {
		return err
	}

	m.logical[name].Held = true
	m.logical[m.gripper.Name].Holding = name
	return nil
}

// DetachObjectFromGripper reverses AttachObjectOnGripper: the object's pose becomes
// gripper.Pose() composed with the recorded gripper->object transform, and its collision
// representation moves back to the object manager.
func (m *Manager) DetachObjectFromGripper() error {
	if m.gripper == nil {
		return ErrNoGripper
	}
	name, held := m.gripper.Attached()
	if !held {
		return ErrNotAttached
	}

	obj := m.objects[name]
	obj.Pose = spatialmath.Compose(m.gripper.Pose(), m.gripper.attachment.transformGripperToObj)
	m.gripper.attachment = nil

	if err := m.rebuildGripperManager(); err != nil {
		return err
	}
	if err := m.objMngr.AddObject(name, obj.posedGeometry()); err != nil {
		return err
	}

	m.logical[name].Held = false
	m.logical[m.gripper.Name].Holding = ""
	return nil
}

// SetGripperPose relocates the gripper (and, if holding an object, the held object along with
// it) to pose directly, without moving the robot's joints.
func (m *Manager) SetGripperPose(pose spatialmath.Pose) error {
	if m.gripper == nil {
		return ErrNoGripper
	}
	m.gripper.SetPose(pose)
	return m.rebuildGripperManager()
}

// ComputeIK solves for a joint configuration placing the robot's end effector at target, seeded
// from the scene's current configuration.
func (m *Manager) ComputeIK(target spatialmath.Pose, method ik.Method, maxIter int) (*ik.Result, error) {
	return ik.Solve(m.model, m.q, target, method, maxIter, m.logger)
}

// SetRobotEEFPose solves IK for target and, if it converges within tolerance, commits the result
// as the scene's current configuration and resyncs the robot (and, if attached, gripper)
// geometries. Returns ErrIKUnconverged without mutating scene state if IK does not converge.
func (m *Manager) SetRobotEEFPose(target spatialmath.Pose, method ik.Method, maxIter int) error {
	result, err := m.ComputeIK(target, method, maxIter)
	if err != nil {
		return err
	}
	if !result.Converged {
		return ErrIKUnconverged
	}
	m.q = result.Q
	if err := m.syncRobotGeometries(); err != nil {
		return err
	}
	if m.gripper != nil {
		eef, err := m.model.Transform(m.q)
		if err != nil {
			return err
		}
		m.gripper.SetPose(eef)
		return m.rebuildGripperManager()
	}
	return nil
}

// CollideObjsAndGripper tests every object against the gripper's collision geometries.
func (m *Manager) CollideObjsAndGripper(returnData bool) (bool, []collision.Pair, []collision.Contact, error) {
	return m.objMngr.InCollisionOther(m.gripperMngr, returnData)
}

// CollideObjsAndRobot tests every object against the robot's collision geometries.
func (m *Manager) CollideObjsAndRobot(returnData bool) (bool, []collision.Pair, []collision.Contact, error) {
	return m.objMngr.InCollisionOther(m.robotMngr, returnData)
}

// UpdateLogicalStates re-derives every non-static, non-held object's "on" predicate by a
// geometric test: object A is on B when A's AABB bottom face sits within onEpsilonZ of B's AABB
// top face and their XY projections overlap.
func (m *Manager) UpdateLogicalStates() {
	for nameA, a := range m.objects {
		lsA := m.logical[nameA]
		if lsA.Static || lsA.Held {
			continue
		}
		lsA.On = ""
		minA, maxA := a.posedGeometry().AABB()
		for nameB, b := range m.objects {
			if nameA == nameB {
				continue
			}
			minB, maxB := b.posedGeometry().AABB()
			if abs(minA.Z-maxB.Z) <= onEpsilonZ && xyOverlap(minA, maxA, minB, maxB) {
				lsA.On = nameB
				break
			}
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func xyOverlap(minA, maxA, minB, maxB r3.Vector) bool {
	return minA.X <= maxB.X && maxA.X >= minB.X && minA.Y <= maxB.Y && maxA.Y >= minB.Y
}

// CopySceneManager returns an independent deep copy of m, the "deepcopy" hook action generators
// use to produce a tentative next scene without mutating the one planners observed.
func CopySceneManager(m *Manager) *Manager {
	cp := &Manager{
		model:             m.model,
		q:                 append([]referenceframe.Input(nil), m.q...),
		objects:           make(map[string]*Object, len(m.objects)),
		logical:           make(map[string]*LogicalState, len(m.logical)),
		gripperLocalGeoms: make(map[string]spatialmath.Geometry, len(m.gripperLocalGeoms)),
		pickObj:           m.pickObj,
		placeObj:          m.placeObj,
		logger:            m.logger,
	}
	for name, obj := range m.objects {
		cp.objects[name] = obj.clone()
	}
	for name, ls := range m.logical {
		cp.logical[name] = ls.clone()
	}
	for name, g := range m.gripperLocalGeoms {
		cp.gripperLocalGeoms[name] = g
	}
	if m.gripper != nil {
		cp.gripper = m.gripper.clone()
	}
	_ = cp.syncRobotGeometries()
	cp.objMngr = collision.NewManager()
	for name, obj := range cp.objects {
		if ls := cp.logical[name]; ls != nil && ls.Held {
			continue
		}
		_ = cp.objMngr.AddObject(name, obj.posedGeometry())
	}
	if cp.gripper != nil {
		_ = cp.rebuildGripperManager()
	}
	return cp
}

// Gripper returns the scene's gripper, or nil if the robot has no end effector tooling.
func (m *Manager) Gripper() *Gripper { return m.gripper }

// AttachmentTransform returns the rigid gripper->object transform recorded by
// AttachObjectOnGripper, and whether the gripper currently holds anything.
func (m *Manager) AttachmentTransform() (spatialmath.Pose, bool) {
	if m.gripper == nil || m.gripper.attachment == nil {
		return nil, false
	}
	return m.gripper.attachment.transformGripperToObj, true
}

// Configuration returns the scene's current joint vector.
func (m *Manager) Configuration() []referenceframe.Input { return m.q }

// Object returns a registered object by name.
func (m *Manager) Object(name string) (*Object, bool) {
	obj, ok := m.objects[name]
	return obj, ok
}

// LogicalState returns the logical-state record for a named scene member.
func (m *Manager) LogicalState(name string) (*LogicalState, bool) {
	ls, ok := m.logical[name]
	return ls, ok
}

// ObjectsExcept returns a fresh collision manager over every non-held registered object except
// those named, for callers that need to test a hypothetical pose against "the rest of the scene"
// without mutating m's own object manager.
func (m *Manager) ObjectsExcept(names ...string) *collision.Manager {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	fresh := collision.NewManager()
	for name, obj := range m.objects {
		if skip[name] {
			continue
		}
		if ls := m.logical[name]; ls != nil && ls.Held {
			continue
		}
		_ = fresh.AddObject(name, obj.posedGeometry())
	}
	return fresh
}

// GripperCollisionAt reports whether the gripper, hypothetically posed at pose, collides with
// any registered object other than those named in exclude (typically the object a pick action is
// about to grasp). An object the gripper holds is tested along with it, posed by the recorded
// gripper->object transform. Does not mutate scene state.
func (m *Manager) GripperCollisionAt(pose spatialmath.Pose, exclude ...string) (bool, error) {
	if m.gripper == nil {
		return false, ErrNoGripper
	}
	temp := collision.NewManager()
	for name, local := range m.gripperLocalGeoms {
		world := spatialmath.Compose(pose, local.Pose())
		if err := temp.AddObject(name, local.WithPose(world)); err != nil {
			return false, err
		}
	}
	if name, held := m.gripper.Attached(); held {
		obj := m.objects[name]
		worldPose := spatialmath.Compose(pose, m.gripper.attachment.transformGripperToObj)
		if err := temp.AddObject(name, obj.Geometry.WithPose(worldPose)); err != nil {
			return false, err
		}
	}
	colliding, _, _, err := temp.InCollisionOther(m.ObjectsExcept(exclude...), false)
	return colliding, err
}

// RobotCollisionAt reports whether the robot at configuration q collides with any registered
// object other than those named in exclude. Does not mutate scene state.
func (m *Manager) RobotCollisionAt(q []referenceframe.Input, exclude ...string) (bool, error) {
	gf, err := m.model.Geometries(q)
	if err != nil {
		return false, err
	}
	temp := collision.NewManager()
	for _, g := range gf.Geometries() {
		if err := temp.AddObject(g.Label(), g); err != nil {
			return false, err
		}
	}
	colliding, _, _, err := temp.InCollisionOther(m.ObjectsExcept(exclude...), false)
	return colliding, err
}

// EvaluateEEFPose solves IK for target without committing the result to scene state, and (if it
// converged) additionally checks whether the resulting configuration collides with the scene.
// Used by action generators, which must never mutate a scene as a side effect of considering a
// candidate.
func (m *Manager) EvaluateEEFPose(target spatialmath.Pose, method ik.Method, maxIter int, exclude ...string) (q []referenceframe.Input, converged, collisionFree bool, err error) {
	result, err := ik.Solve(m.model, m.q, target, method, maxIter, m.logger)
	if err != nil {
		return nil, false, false, err
	}
	if !result.Converged {
		return nil, false, false, nil
	}
	colliding, err := m.RobotCollisionAt(result.Q, exclude...)
	if err != nil {
		return result.Q, true, false, err
	}
	return result.Q, true, !colliding, nil
}
