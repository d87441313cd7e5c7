package motionplan

import (
	"math/rand"

	"github.com/edaniels/golog"

	"github.com/pallet-robotics/kinecore/referenceframe"
)

// waypointFractions are the candidate interpolation points tried when picking a shortcut
// endpoint within an edge, matching the quarter/half/three-quarter split in
// AdamMagaluk-rdk/motionplan/motionPlanner.go's smoothPath.
var waypointFractions = []float64{0.25, 0.5, 0.75}

// SmoothPath randomly samples pairs of edges in path and, when the straight-line segment between
// them is collision-free, splices it in directly, shortcutting any detours RRT*'s random sampling
// left behind. It only ever shortens or leaves a path unchanged, and is cheap enough to run for a
// fixed iteration budget.
func SmoothPath(path [][]referenceframe.Input, checkConfig ConfigChecker, iterations int, randseed *rand.Rand, logger golog.Logger) [][]referenceframe.Input {
	if len(path) <= 2 {
		return path
	}
	if randseed == nil {
		randseed = rand.New(rand.NewSource(1))
	}
	if checkConfig == nil {
		checkConfig = func([]referenceframe.Input) (bool, error) { return true, nil }
	}

	for iter := 0; iter < iterations; iter++ {
		firstEdge := randseed.Intn(len(path) - 2)
		secondEdge := firstEdge + 1 + randseed.Intn((len(path)-2)-firstEdge)

		wayPoint1 := referenceframe.InterpolateInputs(path[firstEdge], path[firstEdge+1], waypointFractions[randseed.Intn(3)])
		wayPoint2 := referenceframe.InterpolateInputs(path[secondEdge], path[secondEdge+1], waypointFractions[randseed.Intn(3)])

		free, err := segmentFree(wayPoint1, wayPoint2, checkConfig)
		if err != nil || !free {
			continue
		}

		if logger != nil {
			logger.Debugf("smoothing shortcut accepted between nodes %d and %d", firstEdge, secondEdge+1)
		}
		newPath := make([][]referenceframe.Input, 0, len(path))
		newPath = append(newPath, path[:firstEdge+1]...)
		newPath = append(newPath, wayPoint1, wayPoint2)
		newPath = append(newPath, path[secondEdge+1:]...)
		path = newPath
	}
	return path
}

// segmentFree checks six evenly spaced points along [a,b], both endpoints included; a coarser check than the
// planner's own resolution-bounded checkSegment but adequate for a post-process smoothing pass.
func segmentFree(a, b []referenceframe.Input, checkConfig ConfigChecker) (bool, error) {
	const samples = 5
	for s := 0; s <= samples; s++ {
		by := float64(s) / float64(samples)
		q := referenceframe.InterpolateInputs(a, b, by)
		free, err := checkConfig(q)
		if err != nil {
			return false, err
		}
		if !free {
			return false, nil
		}
	}
	return true, nil
}
