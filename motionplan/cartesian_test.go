package motionplan

import (
	"testing"

	"go.viam.com/test"

	"github.com/pallet-robotics/kinecore/referenceframe"
)

func TestCartesianPlannerReachesGoal(t *testing.T) {
	model := twoLinkPlanarArm(t)
	seed := []referenceframe.Input{{Value: 0.1}, {Value: 0.1}}
	p0, err := model.Transform(seed)
	test.That(t, err, test.ShouldBeNil)
	p1, err := model.Transform([]referenceframe.Input{{Value: 0.5}, {Value: -0.3}})
	test.That(t, err, test.ShouldBeNil)

	opts := DefaultCartesianPlannerOptions()
	opts.CollisionCheck = false
	planner := NewCartesianPlanner(model, opts, nil, nil)

	trajectory, poses, err := planner.Plan(seed, p0, p1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, trajectory, test.ShouldNotBeNil)
	test.That(t, len(trajectory), test.ShouldEqual, opts.NSteps)
	test.That(t, len(poses), test.ShouldEqual, opts.NSteps)

	got, err := model.Transform(trajectory[len(trajectory)-1])
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Point().X, test.ShouldAlmostEqual, p1.Point().X, 1e-3)
	test.That(t, got.Point().Y, test.ShouldAlmostEqual, p1.Point().Y, 1e-3)
}

func TestCartesianPlannerFailsWhenBlocked(t *testing.T) {
	model := twoLinkPlanarArm(t)
	seed := []referenceframe.Input{{Value: 0.1}, {Value: 0.1}}
	p0, err := model.Transform(seed)
	test.That(t, err, test.ShouldBeNil)
	p1, err := model.Transform([]referenceframe.Input{{Value: 0.5}, {Value: -0.3}})
	test.That(t, err, test.ShouldBeNil)

	opts := DefaultCartesianPlannerOptions()
	blocked := func([]referenceframe.Input) (bool, error) { return false, nil }
	planner := NewCartesianPlanner(model, opts, blocked, nil)

	trajectory, poses, err := planner.Plan(seed, p0, p1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, trajectory, test.ShouldBeNil)
	test.That(t, poses, test.ShouldBeNil)
}
