package scene

import (
	"github.com/golang/geo/r3"

	"github.com/pallet-robotics/kinecore/spatialmath"
)

// attachment records a gripper's grasp of an object: the object's pose at the moment it was
// picked, the gripper pose used to grasp it, and the rigid transform from gripper to object that
// is held constant while attached.
type attachment struct {
	objectName           string
	pickObjPose          spatialmath.Pose
	graspPose            spatialmath.Pose
	transformGripperToObj spatialmath.Pose
}

// Gripper models the end effector's TCP<->EEF geometry and current attachment state. ElementLinks
// names the gripper's own collision links (fingers, palm); MaxWidth/MaxDepth bound a graspable
// object's size; TCPOffset is the vector along the approach (z) axis from EEF to TCP.
type Gripper struct {
	Name         string
	ElementLinks []string
	MaxWidth     float64
	MaxDepth     float64
	TCPOffset    r3.Vector

	pose       spatialmath.Pose
	attachment *attachment
}

// NewGripper builds an empty (unattached) gripper at the identity pose.
func NewGripper(name string, elementLinks []string, maxWidth, maxDepth float64, tcpOffset r3.Vector) *Gripper {
	return &Gripper{
		Name:         name,
		ElementLinks: elementLinks,
		MaxWidth:     maxWidth,
		MaxDepth:     maxDepth,
		TCPOffset:    tcpOffset,
		pose:         spatialmath.NewZeroPose(),
	}
}

// Pose returns the gripper's current EEF-frame pose.
func (g *Gripper) Pose() spatialmath.Pose { return g.pose }

// SetPose replaces the gripper's current pose outright (no composition), mirroring
// spatialmath.Geometry.WithPose's "this is the new absolute pose" semantics.
func (g *Gripper) SetPose(p spatialmath.Pose) { g.pose = p }

// Attached reports whether the gripper currently holds an object, and its name.
func (g *Gripper) Attached() (string, bool) {
	if g.attachment == nil {
		return "", false
	}
	return g.attachment.objectName, true
}

// EEFFromTCP converts a target TCP-frame pose into the corresponding EEF-frame pose:
// t_eef = t_tcp - tcp_offset * z_tcp, using TCPOffset's z component.
func (g *Gripper) EEFFromTCP(tcp spatialmath.Pose) spatialmath.Pose {
	rm := tcp.Orientation().RotationMatrix()
	zTCP := rm.RotateVector(r3.Vector{Z: 1})
	eefPoint := tcp.Point().Sub(zTCP.Mul(g.TCPOffset.Z))
	return spatialmath.NewPoseFromOrientation(eefPoint, tcp.Orientation())
}

func (g *Gripper) clone() *Gripper {
	cp := *g
	if g.attachment != nil {
		a := *g.attachment
		cp.attachment = &a
	}
	return &cp
}
