package motionplan

import (
	"github.com/edaniels/golog"

	"github.com/pallet-robotics/kinecore/ik"
	"github.com/pallet-robotics/kinecore/referenceframe"
	"github.com/pallet-robotics/kinecore/spatialmath"
)

// CartesianPlanner interpolates a straight-line Cartesian path between two end-effector poses and
// solves IK at each waypoint.
type CartesianPlanner struct {
	model       *referenceframe.Model
	opts        *CartesianPlannerOptions
	checkConfig ConfigChecker
	logger      golog.Logger
}

// NewCartesianPlanner builds a planner over model. checkConfig is consulted per waypoint when
// opts.CollisionCheck is true; a nil checkConfig is treated as always-free.
func NewCartesianPlanner(model *referenceframe.Model, opts *CartesianPlannerOptions, checkConfig ConfigChecker, logger golog.Logger) *CartesianPlanner {
	if opts == nil {
		opts = DefaultCartesianPlannerOptions()
	}
	if checkConfig == nil {
		checkConfig = func([]referenceframe.Input) (bool, error) { return true, nil }
	}
	return &CartesianPlanner{model: model, opts: opts, checkConfig: checkConfig, logger: logger}
}

// Plan interpolates from p0 to p1 over NSteps waypoints (translation linear, rotation SLERP),
// solving each with Levenberg-Marquardt seeded from the previous waypoint's solution. It returns
// the joint trajectory and the poses actually requested; if any waypoint fails to converge within
// PosThresh, or fails its collision check, it returns (nil, nil, nil).
func (p *CartesianPlanner) Plan(seed []referenceframe.Input, p0, p1 spatialmath.Pose) ([][]referenceframe.Input, []spatialmath.Pose, error) {
	n := p.opts.NSteps
	if n < 2 {
		n = 2
	}
	poses := make([]spatialmath.Pose, n)
	trajectory := make([][]referenceframe.Input, n)
	current := append([]referenceframe.Input(nil), seed...)

	for i := 0; i < n; i++ {
		by := float64(i) / float64(n-1)
		target := spatialmath.InterpolatePose(p0, p1, by)
		poses[i] = target

		result, err := ik.SolveLMDamped(p.model, current, target, p.opts.MaxIter, p.opts.Damping, p.logger)
		if err != nil {
			return nil, nil, err
		}
		// PoseError is IK's combined position+rotation residual, so this gate is slightly
		// stricter than a purely positional tolerance, but it keeps a waypoint from being
		// accepted with its end-effector held at the right point but badly oriented.
		if result.PoseError > p.opts.PosThresh {
			if p.logger != nil {
				p.logger.Debugf("cartesian plan failed at waypoint %d/%d, pose error %g exceeds threshold %g", i, n, result.PoseError, p.opts.PosThresh)
			}
			return nil, nil, nil
		}

		if p.opts.CollisionCheck {
			free, err := p.checkConfig(result.Q)
			if err != nil {
				return nil, nil, err
			}
			if !free {
				if p.logger != nil {
					p.logger.Debugf("cartesian plan failed at waypoint %d/%d: collision", i, n)
				}
				return nil, nil, nil
			}
		}

		trajectory[i] = result.Q
		current = result.Q
	}
	return trajectory, poses, nil
}
