package action

import (
	"math/rand"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"github.com/pallet-robotics/kinecore/ik"
	"github.com/pallet-robotics/kinecore/referenceframe"
	"github.com/pallet-robotics/kinecore/scene"
	"github.com/pallet-robotics/kinecore/spatialmath"
)

// ContactPair is an antipodal pair of surface points (world-frame) and their outward normals.
type ContactPair struct {
	P1, P2 r3.Vector
	N1, N2 r3.Vector
}

// PickOptions configures grasp sampling.
type PickOptions struct {
	// NContacts is the target number of antipodal contact pairs to accept.
	NContacts int
	// MaxWidth bounds the distance between a pair's two points (the gripper's maximum opening).
	MaxWidth float64
	// LimitAngle bounds, in radians, the force-closure proxy angle between each contact normal
	// and the line connecting the pair.
	LimitAngle float64
	// NDirections is the number of TCP frames emitted per accepted contact pair, swept evenly
	// around the contact line.
	NDirections int
}

// DefaultPickOptions returns conservative defaults for a small parallel-jaw gripper.
func DefaultPickOptions() *PickOptions {
	return &PickOptions{
		NContacts:   16,
		MaxWidth:    0.08,
		LimitAngle:  0.3,
		NDirections: 8,
	}
}

// Candidate is a single sampled grasp: the contact pair it came from, the TCP and EEF poses
// derived from it, and (once GetGraspPosesForRobot has run) the solved joint configuration.
type Candidate struct {
	Contact ContactPair
	TCPPose spatialmath.Pose
	EEFPose spatialmath.Pose
	Q       []referenceframe.Input
}

// PickAction samples grasp candidates for an object against a scene's gripper and robot.
type PickAction struct {
	sc       *scene.Manager
	opts     *PickOptions
	randseed *rand.Rand
	logger   golog.Logger
}

// NewPickAction builds a PickAction over sc's gripper. randseed defaults to a fixed seed for
// reproducibility when nil.
func NewPickAction(sc *scene.Manager, opts *PickOptions, randseed *rand.Rand, logger golog.Logger) *PickAction {
	if opts == nil {
		opts = DefaultPickOptions()
	}
	if randseed == nil {
		randseed = rand.New(rand.NewSource(1))
	}
	return &PickAction{sc: sc, opts: opts, randseed: randseed, logger: logger}
}

// GetContactPoints samples the object's mesh surface and returns up to NContacts antipodal pairs (p1, p2,
// n1, n2) with ‖p2-p1‖ ≤ MaxWidth and both force-closure-proxy angles within LimitAngle, in
// world frame (objPose composed onto the mesh-local samples).
func (p *PickAction) GetContactPoints(mesh Mesh, objPose spatialmath.Pose) []ContactPair {
	oversample := p.opts.NContacts * 4
	if oversample < 16 {
		oversample = 16
	}
	samples := mesh.SampleSurfaceWeighted(oversample, nil, p.randseed)
	rm := objPose.Orientation().RotationMatrix()

	world := make([]SurfacePoint, len(samples))
	for i, s := range samples {
		world[i] = SurfacePoint{
			Point:  objPose.Point().Add(rm.RotateVector(s.Point)),
			Normal: rm.RotateVector(s.Normal),
		}
	}

	var pairs []ContactPair
	for i := 0; i < len(world) && len(pairs) < p.opts.NContacts; i++ {
		for j := i + 1; j < len(world) && len(pairs) < p.opts.NContacts; j++ {
			p1, n1 := world[i].Point, world[i].Normal
			p2, n2 := world[j].Point, world[j].Normal
			d := p2.Sub(p1)
			if d.Norm() == 0 || d.Norm() > p.opts.MaxWidth {
				continue
			}
			if angleBetween(n1.Mul(-1), d) > p.opts.LimitAngle {
				continue
			}
			if angleBetween(n2.Mul(-1), d.Mul(-1)) > p.opts.LimitAngle {
				continue
			}
			pairs = append(pairs, ContactPair{P1: p1, P2: p2, N1: n1, N2: n2})
		}
	}
	if p.logger != nil {
		p.logger.Debugf("pick action accepted %d/%d candidate contact pairs", len(pairs), p.opts.NContacts)
	}
	return pairs
}

func (p *PickAction) candidatesFromContacts(contacts []ContactPair) []Candidate {
	gripper := p.sc.Gripper()
	var out []Candidate
	for _, c := range contacts {
		for _, tcp := range contactFrames(c.P1, c.P2, p.opts.NDirections) {
			out = append(out, Candidate{Contact: c, TCPPose: tcp, EEFPose: gripper.EEFFromTCP(tcp)})
		}
	}
	return out
}

// GetGraspPosesForOnlyGripper runs level-1 filtering: every candidate TCP/EEF frame generated
// from an accepted contact pair, kept only if the gripper (alone, not yet holding objName) does
// not collide with the rest of the scene at that EEF pose.
func (p *PickAction) GetGraspPosesForOnlyGripper(mesh Mesh, objPose spatialmath.Pose, objName string) ([]Candidate, error) {
	contacts := p.GetContactPoints(mesh, objPose)
	candidates := p.candidatesFromContacts(contacts)

	var filtered []Candidate
	for _, cand := range candidates {
		colliding, err := p.sc.GripperCollisionAt(cand.EEFPose, objName)
		if err != nil {
			return nil, err
		}
		if !colliding {
			filtered = append(filtered, cand)
		}
	}
	if p.logger != nil {
		p.logger.Debugf("pick action level-1 kept %d/%d candidates", len(filtered), len(candidates))
	}
	return filtered, nil
}

// GetGraspPosesForRobot runs level-2 filtering over a level-1-filtered candidate set: each EEF
// pose must be IK-solvable and the resulting full-robot configuration must be collision-free
// against the rest of the scene (objName excluded, since the robot is expected to approach it).
func (p *PickAction) GetGraspPosesForRobot(candidates []Candidate, objName string, method ik.Method, maxIter int) ([]Candidate, error) {
	var out []Candidate
	for _, cand := range candidates {
		q, converged, collisionFree, err := p.sc.EvaluateEEFPose(cand.EEFPose, method, maxIter, objName)
		if err != nil {
			return nil, err
		}
		if converged && collisionFree {
			cand.Q = q
			out = append(out, cand)
		}
	}
	if p.logger != nil {
		p.logger.Debugf("pick action level-2 kept %d/%d candidates", len(out), len(candidates))
	}
	return out, nil
}

// GetGraspPoses runs the full pipeline: contact sampling, level-1 gripper-only filtering, and
// level-2 IK+full-robot filtering.
func (p *PickAction) GetGraspPoses(mesh Mesh, objPose spatialmath.Pose, objName string, method ik.Method, maxIter int) ([]Candidate, error) {
	level1, err := p.GetGraspPosesForOnlyGripper(mesh, objPose, objName)
	if err != nil {
		return nil, err
	}
	return p.GetGraspPosesForRobot(level1, objName, method, maxIter)
}
