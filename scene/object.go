package scene

import "github.com/pallet-robotics/kinecore/spatialmath"

// Object is a movable (or static) named thing in the scene: a collision geometry, its current
// world pose, and a display colour.
type Object struct {
	Name     string
	Geometry spatialmath.Geometry
	Pose     spatialmath.Pose
	Colour   string
}

// posedGeometry returns the object's geometry re-posed at its current Pose, ready for insertion
// into a collision.Manager.
func (o *Object) posedGeometry() spatialmath.Geometry {
	return o.Geometry.WithPose(o.Pose)
}

// clone returns a deep-enough copy for copy_scene semantics: the copy shares the geometry value
// (Transform and WithPose return new values; SetLabel alone changes a geometry in place), so
// only the struct is duplicated.
func (o *Object) clone() *Object {
	cp := *o
	return &cp
}
