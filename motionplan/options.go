package motionplan

import "github.com/pallet-robotics/kinecore/referenceframe"

// RRTStarOptions configures the RRT* planner. Mirrors the teacher's
// defaults-struct-plus-override construction pattern (newBasicIKOptions in
// c356e2e8_raybjork-rdk-new__motionplan-inverseKinematics.go.go) rather than a stringly-typed
// map[string]interface{}.
type RRTStarOptions struct {
	// DeltaDistance is the steer step: q_new is at most this far from q_near.
	DeltaDistance float64
	// Epsilon is the goal-bias probability: the fraction of samples that are q_goal outright.
	Epsilon float64
	// MaxIter bounds the number of tree-growth iterations.
	MaxIter int
	// GammaRRTStar is the near-radius constant in r = min(gamma*(log(n)/n)^(1/d), delta).
	GammaRRTStar float64
	// StepsOut interpolates the extracted path into this many uniformly spaced configurations.
	// Zero leaves the raw tree-node path (start, intermediate tree nodes, goal) unexpanded.
	StepsOut int
}

// DefaultRRTStarOptions returns conservative defaults suitable for a several-DoF arm with joint
// limits on the order of a few radians.
func DefaultRRTStarOptions() *RRTStarOptions {
	return &RRTStarOptions{
		DeltaDistance: 0.25,
		Epsilon:       0.1,
		MaxIter:       2000,
		GammaRRTStar:  2.5,
		StepsOut:      0,
	}
}

// CartesianPlannerOptions configures the Cartesian-space planner.
type CartesianPlannerOptions struct {
	// NSteps is the number of SLERP/linear-interpolated waypoints between P0 and P1, inclusive
	// of both endpoints.
	NSteps int
	// Damping is the Levenberg-Marquardt damping floor added on top of the per-iteration cost,
	// passed through to ik.SolveLMDamped.
	Damping float64
	// PosThresh is the per-waypoint pose-error tolerance; a waypoint whose solved pose error
	// exceeds this after IK is treated as a failure.
	PosThresh float64
	// CollisionCheck toggles per-waypoint collision testing via the supplied ConfigChecker.
	CollisionCheck bool
	// MaxIter bounds the IK iterations used to solve each waypoint.
	MaxIter int
}

// DefaultCartesianPlannerOptions returns conservative defaults.
func DefaultCartesianPlannerOptions() *CartesianPlannerOptions {
	return &CartesianPlannerOptions{
		NSteps:         20,
		Damping:        0.002,
		PosThresh:      1e-3,
		CollisionCheck: true,
		MaxIter:        1000,
	}
}

// ConfigChecker reports whether a joint configuration is collision-free. Planners accept this as
// a function value rather than depending directly on the collision package, the same way the
// teacher's motionPlanner keeps checkInputs/checkPath generic over the constraint handler.
type ConfigChecker func(q []referenceframe.Input) (bool, error)
