// Command kinedemo wires a small planar arm through the RRT* and Cartesian planners and pick
// grasp sampling, printing the resulting trajectories. It exists to exercise the
// library end to end, not as a production robot driver.
package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pallet-robotics/kinecore/action"
	"github.com/pallet-robotics/kinecore/ik"
	"github.com/pallet-robotics/kinecore/motionplan"
	"github.com/pallet-robotics/kinecore/referenceframe"
	"github.com/pallet-robotics/kinecore/scene"
	"github.com/pallet-robotics/kinecore/spatialmath"
)

var logger = golog.NewDevelopmentLogger("kinedemo")

// threeLinkArm builds a 3-revolute-joint planar arm whose eef link carries a small palm box,
// standing in for a real URDF/SVA-parsed model (out of scope for this core; see referenceframe.Model).
func threeLinkArm() (*referenceframe.Model, error) {
	limit := &referenceframe.Limit{Min: -math.Pi, Max: math.Pi}
	palm, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 0.05, Y: 0.05, Z: 0.05}, "palm")
	if err != nil {
		return nil, err
	}
	links := []referenceframe.Link{
		{Name: "base"},
		{Name: "link1", Offset: spatialmath.NewPoseFromPoint(r3.Vector{X: 0.4})},
		{Name: "link2", Offset: spatialmath.NewPoseFromPoint(r3.Vector{X: 0.4})},
		{Name: "eef", Offset: spatialmath.NewPoseFromPoint(r3.Vector{X: 0.3}), Geometry: palm},
	}
	joints := []referenceframe.Joint{
		{Name: "joint1", Parent: "base", Child: "link1", Axis: r3.Vector{Z: 1}, Origin: spatialmath.NewZeroPose(), Kind: referenceframe.JointRevolute, Limit: limit},
		{Name: "joint2", Parent: "link1", Child: "link2", Axis: r3.Vector{Z: 1}, Origin: spatialmath.NewZeroPose(), Kind: referenceframe.JointRevolute, Limit: limit},
		{Name: "joint3", Parent: "link2", Child: "eef", Axis: r3.Vector{Z: 1}, Origin: spatialmath.NewZeroPose(), Kind: referenceframe.JointRevolute, Limit: limit},
	}
	tree, err := referenceframe.NewKinematicTree("arm3", links, joints, "base")
	if err != nil {
		return nil, err
	}
	return referenceframe.NewModel(tree, "eef")
}

// demoMesh is a tiny stand-in for a parsed object mesh, exposing just enough surface samples to
// drive a PickAction; real mesh ingestion is out of scope for this core (see action.Mesh).
type demoMesh struct {
	min, max r3.Vector
	points   []action.SurfacePoint
}

func (d *demoMesh) Bounds() (r3.Vector, r3.Vector) { return d.min, d.max }

func (d *demoMesh) SampleSurfaceWeighted(n int, weight func(point, normal r3.Vector) float64, rnd *rand.Rand) []action.SurfacePoint {
	return d.points
}

func printTrajectory(title string, path [][]referenceframe.Input) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"step", "joint1", "joint2", "joint3"})
	for i, q := range path {
		row := table.Row{i}
		for _, in := range q {
			row = append(row, fmt.Sprintf("%.3f", in.Value))
		}
		t.AppendRow(row)
	}
	fmt.Println(title)
	t.Render()
	fmt.Println()
}

func runRRTStarDemo(model *referenceframe.Model, sc *scene.Manager) {
	start := []referenceframe.Input{{Value: -1.2}, {Value: 0.6}, {Value: 0}}
	goal := []referenceframe.Input{{Value: 1.2}, {Value: -0.6}, {Value: 0}}

	checkConfig := func(q []referenceframe.Input) (bool, error) {
		colliding, err := sc.RobotCollisionAt(q)
		return !colliding, err
	}

	opts := motionplan.DefaultRRTStarOptions()
	opts.MaxIter = 1500
	planner := motionplan.NewRRTStarPlanner(model.DoF(), opts, checkConfig, rand.New(rand.NewSource(42)), logger)

	path, err := planner.Plan(start, goal)
	if err != nil {
		logger.Errorw("rrt* planning failed", "error", err)
		return
	}
	if path == nil {
		logger.Warn("rrt* found no collision-free path")
		return
	}
	smoothed := motionplan.SmoothPath(path, checkConfig, 50, rand.New(rand.NewSource(43)), logger)
	printTrajectory("RRT* path (raw)", path)
	printTrajectory("RRT* path (smoothed)", smoothed)
}

func runCartesianDemo(model *referenceframe.Model) {
	seed := []referenceframe.Input{{Value: 0}, {Value: 0}, {Value: 0}}
	p0, err := model.Transform(seed)
	if err != nil {
		logger.Errorw("forward kinematics failed", "error", err)
		return
	}
	p1 := spatialmath.Compose(p0, spatialmath.NewPoseFromPoint(r3.Vector{X: -0.2, Y: 0.2}))

	planner := motionplan.NewCartesianPlanner(model, motionplan.DefaultCartesianPlannerOptions(), nil, logger)
	path, poses, err := planner.Plan(seed, p0, p1)
	if err != nil {
		logger.Errorw("cartesian planning failed", "error", err)
		return
	}
	if path == nil {
		logger.Warn("cartesian planner could not reach every waypoint")
		return
	}
	logger.Infof("cartesian plan reached %d waypoints", len(poses))
	printTrajectory("Cartesian path", path)
}

func runPickDemo(sc *scene.Manager) {
	cubeGeom, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 0.02, Y: 0.02, Z: 0.02}, "cube")
	if err != nil {
		logger.Errorw("failed to build cube geometry", "error", err)
		return
	}
	objPose := spatialmath.NewPoseFromPoint(r3.Vector{X: 0.9})
	if err := sc.AddObject("cube", cubeGeom, objPose, "red"); err != nil {
		logger.Errorw("failed to add cube to scene", "error", err)
		return
	}

	mesh := &demoMesh{
		min: r3.Vector{X: -0.01, Y: -0.01, Z: -0.01},
		max: r3.Vector{X: 0.01, Y: 0.01, Z: 0.01},
		points: []action.SurfacePoint{
			{Point: r3.Vector{X: -0.01}, Normal: r3.Vector{X: -1}},
			{Point: r3.Vector{X: 0.01}, Normal: r3.Vector{X: 1}},
		},
	}

	pick := action.NewPickAction(sc, nil, rand.New(rand.NewSource(7)), logger)
	candidates, err := pick.GetGraspPoses(mesh, objPose, "cube", ik.LevenbergMarquardt, 1000)
	if err != nil {
		logger.Errorw("grasp sampling failed", "error", err)
		return
	}
	logger.Infof("pick action found %d reachable, collision-free grasp candidates", len(candidates))
}

func main() {
	model, err := threeLinkArm()
	if err != nil {
		logger.Fatalw("failed to build demo arm", "error", err)
	}

	table, err := spatialmath.NewBox(spatialmath.NewPoseFromPoint(r3.Vector{Y: -0.6}), r3.Vector{X: 0.4, Y: 0.1, Z: 0.3}, "table")
	if err != nil {
		logger.Fatalw("failed to build table obstacle", "error", err)
	}
	worldState, err := referenceframe.NewWorldState([]*referenceframe.GeometriesInFrame{
		referenceframe.NewGeometriesInFrame(referenceframe.World, []spatialmath.Geometry{table}),
	})
	if err != nil {
		logger.Fatalw("failed to build world state", "error", err)
	}

	gripper := scene.NewGripper("gripper", []string{"eef"}, 0.08, 0.08, r3.Vector{Z: 0.02})
	sc, err := scene.NewManager(model, []referenceframe.Input{{}, {}, {}}, gripper, logger)
	if err != nil {
		logger.Fatalw("failed to build scene", "error", err)
	}
	if err := sc.LoadWorldState(worldState); err != nil {
		logger.Fatalw("failed to register world state obstacles", "error", err)
	}
	names := make([]string, 0, len(worldState.ObstacleNames()))
	for name := range worldState.ObstacleNames() {
		names = append(names, name)
	}
	logger.Infof("loaded world state obstacles: %v", names)
	fmt.Println(worldState.String())

	runRRTStarDemo(model, sc)
	runCartesianDemo(model)
	runPickDemo(sc)
}
