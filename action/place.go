package action

import (
	"math/rand"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/pallet-robotics/kinecore/ik"
	"github.com/pallet-robotics/kinecore/referenceframe"
	"github.com/pallet-robotics/kinecore/scene"
	"github.com/pallet-robotics/kinecore/spatialmath"
)

// Placement sampling constants: supportTopFraction and heldBottomFraction scale the mesh's z
// bounds into face thresholds; heldBottomWeight and heldOtherWeight weight held-object samples.
const (
	supportTopFraction  = 0.99
	heldBottomFraction  = 1.02
	heldBottomWeight    = 0.7
	heldOtherWeight     = 0.3
)

// PlaceOptions configures placement sampling.
type PlaceOptions struct {
	NSamplesSupObj  int
	NSamplesHeldObj int
	// ReleaseDistance lifts the release pose off the support surface along z before the object
	// is actually let go.
	ReleaseDistance float64
	// RetreatDistance offsets PRE_RELEASE (locally) and POST_RELEASE (in world frame) from
	// RELEASE along z.
	RetreatDistance float64
}

// DefaultPlaceOptions returns conservative defaults.
func DefaultPlaceOptions() *PlaceOptions {
	return &PlaceOptions{
		NSamplesSupObj:  16,
		NSamplesHeldObj: 16,
		ReleaseDistance: 0.01,
		RetreatDistance: 0.05,
	}
}

// ReleaseSequence is the three gripper poses a place transition visits in order.
type ReleaseSequence struct {
	PreRelease  spatialmath.Pose
	Release     spatialmath.Pose
	PostRelease spatialmath.Pose
}

// PlaceCandidate is a single sampled placement: the new pose the held object would take, the
// gripper release sequence implementing it, and (once level-2 filtering has run) the solved
// joint configurations for all three poses.
type PlaceCandidate struct {
	NewObjectPose spatialmath.Pose
	Release       ReleaseSequence
	Q             [3][]referenceframe.Input
}

// PlaceAction samples placements of a held object onto a support object's surface.
type PlaceAction struct {
	sc       *scene.Manager
	opts     *PlaceOptions
	randseed *rand.Rand
	logger   golog.Logger
}

// NewPlaceAction builds a PlaceAction over sc. randseed defaults to a fixed seed when nil.
func NewPlaceAction(sc *scene.Manager, opts *PlaceOptions, randseed *rand.Rand, logger golog.Logger) *PlaceAction {
	if opts == nil {
		opts = DefaultPlaceOptions()
	}
	if randseed == nil {
		randseed = rand.New(rand.NewSource(1))
	}
	return &PlaceAction{sc: sc, opts: opts, randseed: randseed, logger: logger}
}

// sampleSupportPoints weights samples toward the support object's top face (z >= 0.99*zMax).
func (p *PlaceAction) sampleSupportPoints(mesh Mesh, pose spatialmath.Pose) []SurfacePoint {
	_, localMax := mesh.Bounds()
	threshold := supportTopFraction * localMax.Z
	weight := func(point, _ r3.Vector) float64 {
		if point.Z >= threshold {
			return 1
		}
		return 0
	}
	return worldSamples(mesh, pose, p.opts.NSamplesSupObj, weight, p.randseed)
}

// sampleHeldPoints weights samples toward the held object's bottom face (z <= 1.02*zMin, weight
// 0.7) with a lower weight (0.3) elsewhere.
func (p *PlaceAction) sampleHeldPoints(mesh Mesh, pose spatialmath.Pose) []SurfacePoint {
	localMin, _ := mesh.Bounds()
	threshold := heldBottomFraction * localMin.Z
	weight := func(point, _ r3.Vector) float64 {
		if point.Z <= threshold {
			return heldBottomWeight
		}
		return heldOtherWeight
	}
	return worldSamples(mesh, pose, p.opts.NSamplesHeldObj, weight, p.randseed)
}

func worldSamples(mesh Mesh, pose spatialmath.Pose, n int, weight func(point, normal r3.Vector) float64, rnd *rand.Rand) []SurfacePoint {
	samples := mesh.SampleSurfaceWeighted(n, weight, rnd)
	rm := pose.Orientation().RotationMatrix()
	out := make([]SurfacePoint, len(samples))
	for i, s := range samples {
		out[i] = SurfacePoint{
			Point:  pose.Point().Add(rm.RotateVector(s.Point)),
			Normal: rm.RotateVector(s.Normal),
		}
	}
	return out
}

// GetPossibleActionsLevel1 pairs every sampled support point against every sampled held-object
// point, computing the rigid transform that aligns the held point's normal against the support
// point's outward normal and lands the held point on the support point plus a ReleaseDistance
// lift, then filters by gripper-only collision (the held object is attached during the test).
func (p *PlaceAction) GetPossibleActionsLevel1(
	supportMesh Mesh, supportPose spatialmath.Pose,
	heldMesh Mesh, heldPose spatialmath.Pose, heldObjName string,
) ([]PlaceCandidate, error) {
	transform, hasAttachment := p.sc.AttachmentTransform()
	if !hasAttachment {
		return nil, scene.ErrNotAttached
	}

	supportPoints := p.sampleSupportPoints(supportMesh, supportPose)
	heldPoints := p.sampleHeldPoints(heldMesh, heldPose)

	var candidates []PlaceCandidate
	for _, s := range supportPoints {
		for _, h := range heldPoints {
			newObjPose := placementPose(heldPose, h, s, p.opts.ReleaseDistance)
			release := spatialmath.Compose(newObjPose, spatialmath.Invert(transform))
			seq := releaseSequence(release, p.opts.RetreatDistance)

			colliding, err := p.sc.GripperCollisionAt(seq.Release, heldObjName)
			if err != nil {
				return nil, err
			}
			if colliding {
				continue
			}
			candidates = append(candidates, PlaceCandidate{NewObjectPose: newObjPose, Release: seq})
		}
	}
	if p.logger != nil {
		p.logger.Debugf("place action level-1 kept %d/%d candidates", len(candidates), len(supportPoints)*len(heldPoints))
	}
	return candidates, nil
}

// placementPose computes the held object's new world pose: a rotation aligning the held contact
// normal to the negated support normal, applied about the object's own origin, then a translation
// landing the (rotated) held point on the support point plus a vertical lift.
func placementPose(heldPose spatialmath.Pose, held, support SurfacePoint, liftDistance float64) spatialmath.Pose {
	target := support.Normal.Mul(-1)
	axis := held.Normal.Cross(target)
	if axis.Norm() == 0 {
		axis = perpendicularTo(held.Normal)
	} else {
		axis = axis.Normalize()
	}
	angle := angleBetween(held.Normal, target)
	align := &spatialmath.R4AA{Theta: angle, RX: axis.X, RY: axis.Y, RZ: axis.Z}
	rm := align.RotationMatrix()

	rotatedHeldPoint := heldPose.Point().Add(rm.RotateVector(held.Point.Sub(heldPose.Point())))
	destination := support.Point.Add(r3.Vector{Z: liftDistance})
	translation := destination.Sub(rotatedHeldPoint)

	newOrientation := spatialmath.QuatToOV(quat.Mul(align.Quaternion(), heldPose.Orientation().Quaternion()))
	return spatialmath.NewPoseFromOrientation(heldPose.Point().Add(translation), newOrientation)
}

func releaseSequence(release spatialmath.Pose, retreat float64) ReleaseSequence {
	preRelease := spatialmath.Compose(release, spatialmath.NewPoseFromPoint(r3.Vector{Z: retreat}))
	postRelease := spatialmath.NewPoseFromOrientation(release.Point().Add(r3.Vector{Z: retreat}), release.Orientation())
	return ReleaseSequence{PreRelease: preRelease, Release: release, PostRelease: postRelease}
}

// GetPossibleIKSolveLevel2 runs IK (and full-robot collision checking) on all three release-
// sequence poses for every level-1 candidate, keeping only those where all three solve and are
// collision-free.
func (p *PlaceAction) GetPossibleIKSolveLevel2(candidates []PlaceCandidate, heldObjName string, method ik.Method, maxIter int) ([]PlaceCandidate, error) {
	var out []PlaceCandidate
	for _, cand := range candidates {
		poses := [3]spatialmath.Pose{cand.Release.PreRelease, cand.Release.Release, cand.Release.PostRelease}
		var qs [3][]referenceframe.Input
		ok := true
		for i, pose := range poses {
			q, converged, collisionFree, err := p.sc.EvaluateEEFPose(pose, method, maxIter, heldObjName)
			if err != nil {
				return nil, err
			}
			if !converged || !collisionFree {
				ok = false
				break
			}
			qs[i] = q
		}
		if ok {
			cand.Q = qs
			out = append(out, cand)
		}
	}
	if p.logger != nil {
		p.logger.Debugf("place action level-2 kept %d/%d candidates", len(out), len(candidates))
	}
	return out, nil
}

// GetPossibleTransitions runs the full pipeline: level-1 surface-pair sampling and gripper-only
// filtering, then level-2 IK and full-robot filtering.
func (p *PlaceAction) GetPossibleTransitions(
	supportMesh Mesh, supportPose spatialmath.Pose,
	heldMesh Mesh, heldPose spatialmath.Pose, heldObjName string,
	method ik.Method, maxIter int,
) ([]PlaceCandidate, error) {
	level1, err := p.GetPossibleActionsLevel1(supportMesh, supportPose, heldMesh, heldPose, heldObjName)
	if err != nil {
		return nil, err
	}
	return p.GetPossibleIKSolveLevel2(level1, heldObjName, method, maxIter)
}
