// Package action generates pick and place candidate poses over a scene: antipodal grasp sampling
// with a force-closure proxy, and support-surface placement sampling with rotation alignment.
package action

import (
	"math/rand"

	"github.com/golang/geo/r3"
)

// SurfacePoint is a single sampled point on a mesh surface together with its outward normal.
type SurfacePoint struct {
	Point  r3.Vector
	Normal r3.Vector
}

// Mesh is the external collaborator interface the core consumes for surface sampling: meshes are
// provided already parsed (vertices/faces/normals/bounds); the core loads no mesh files itself.
// SampleSurfaceWeighted draws n points from the surface, weighting a
// candidate point by weight(point, normal) when non-nil (placement sampling biases towards
// particular faces; grasp sampling passes nil for uniform sampling).
type Mesh interface {
	Bounds() (min, max r3.Vector)
	SampleSurfaceWeighted(n int, weight func(point, normal r3.Vector) float64, rnd *rand.Rand) []SurfacePoint
}
