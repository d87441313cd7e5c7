package referenceframe

import (
	"github.com/golang/geo/r3"

	"github.com/pallet-robotics/kinecore/spatialmath"
)

// JointKind enumerates the joint kinds the core understands. These mirror the kinds a URDF-like
// parser (out of scope here, see SPEC_FULL.md §0) would report.
type JointKind string

// The joint kinds named in the data model.
const (
	JointFixed      JointKind = "fixed"
	JointRevolute   JointKind = "revolute"
	JointPrismatic  JointKind = "prismatic"
	JointContinuous JointKind = "continuous"
)

// Joint is a parsed joint record: the kind of edge a URDF-like model declares between two links.
type Joint struct {
	Name   string
	Parent string
	Child  string
	// Axis is the unit vector (in the joint's own frame) the joint rotates about or slides along.
	// Ignored for JointFixed.
	Axis r3.Vector
	// Origin is the fixed parent->joint transform, applied before the joint's own motion.
	Origin spatialmath.Pose
	Kind   JointKind
	// Limit is nil for JointFixed and JointContinuous; required for JointRevolute/JointPrismatic.
	Limit *Limit
}

// Link is a parsed link record.
type Link struct {
	Name string
	// Geometry is the collision volume rigidly attached to this link, already constructed by the
	// caller (the core never loads mesh files itself). Nil if the link carries no geometry.
	Geometry spatialmath.Geometry
	// Offset is applied after the incoming joint's motion to place the link's own origin.
	Offset spatialmath.Pose
	Colour string
}
