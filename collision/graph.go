package collision

import (
	"math"

	"github.com/pallet-robotics/kinecore/spatialmath"
)

// Pair is a canonicalized, unordered pair of geometry names with A < B lexicographically, the
// form every collision report uses so that (a,b) and (b,a) are never both reported.
type Pair struct {
	A, B string
}

func canonicalPair(name1, name2 string) Pair {
	if name1 < name2 {
		return Pair{A: name1, B: name2}
	}
	return Pair{A: name2, B: name1}
}

// Contact reports a colliding (or, when distances are tracked, merely measured) pair and the
// Euclidean distance separating them: negative when penetrating.
type Contact struct {
	Pair             Pair
	PenetrationDepth float64
}

// geometryGraph holds two named geometry sets being compared against each other (the same set,
// for an internal self-check) and the pairwise distances computed between them so far.
type geometryGraph struct {
	x, y      map[string]spatialmath.Geometry
	distances map[Pair]float64
}

func newGeometryGraph(x, y map[string]spatialmath.Geometry) geometryGraph {
	return geometryGraph{x: x, y: y, distances: make(map[Pair]float64)}
}

func (gg *geometryGraph) setDistance(name1, name2 string, distance float64) {
	gg.distances[canonicalPair(name1, name2)] = distance
}

func (gg *geometryGraph) getDistance(name1, name2 string) (float64, bool) {
	d, ok := gg.distances[canonicalPair(name1, name2)]
	return d, ok
}

// collisionGraph computes, and caches, the narrow-phase result between every pair of geometries
// in x and y, excluding pairs found in an ignore set (joint adjacency, always-touching-at-zero
// pairs) which are recorded as permanently non-colliding (distance = +Inf).
type collisionGraph struct {
	geometryGraph
	ignore map[Pair]bool
	// reportDistances selects exhaustive numeric reporting (true) vs. early-exit boolean
	// reporting (false, stops at the first collision found).
	reportDistances bool
}

func newCollisionGraph(x, y map[string]spatialmath.Geometry, ignore map[Pair]bool, reportDistances bool) (*collisionGraph, error) {
	if y == nil {
		y = x
	}
	cg := &collisionGraph{
		geometryGraph:   newGeometryGraph(x, y),
		ignore:          ignore,
		reportDistances: reportDistances,
	}

	for xName, xGeom := range cg.x {
		for yName, yGeom := range cg.y {
			if xName == yName && xGeom == yGeom {
				continue
			}
			pair := canonicalPair(xName, yName)
			if _, already := cg.distances[pair]; already {
				continue
			}
			if cg.ignore[pair] {
				cg.distances[pair] = math.Inf(1)
				continue
			}
			distance, err := cg.checkCollision(xGeom, yGeom)
			if err != nil {
				return nil, err
			}
			cg.setDistance(xName, yName, distance)
			if !reportDistances && distance <= spatialmath.CollisionBuffer {
				return cg, nil
			}
		}
	}
	return cg, nil
}

func (cg *collisionGraph) checkCollision(x, y spatialmath.Geometry) (float64, error) {
	if cg.reportDistances {
		return x.DistanceFrom(y)
	}
	colliding, err := x.CollidesWith(y)
	if err != nil {
		return 0, err
	}
	if colliding {
		return math.Inf(-1), nil
	}
	return math.Inf(1), nil
}

// collisions returns every pair whose recorded distance is within CollisionBuffer.
func (cg *collisionGraph) collisions() []Contact {
	var contacts []Contact
	for pair, distance := range cg.distances {
		if distance <= spatialmath.CollisionBuffer {
			contacts = append(contacts, Contact{Pair: pair, PenetrationDepth: distance})
			if !cg.reportDistances {
				return contacts
			}
		}
	}
	return contacts
}
