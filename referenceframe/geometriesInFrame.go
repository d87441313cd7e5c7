package referenceframe

import "github.com/pallet-robotics/kinecore/spatialmath"

// GeometriesInFrame associates a list of collision geometries with the name of the frame they are
// expressed relative to. Mirrors the teacher's referenceframe.GeometriesInFrame, minus the
// protobuf marshaling (out of scope here, see SPEC_FULL.md).
type GeometriesInFrame struct {
	frame      string
	geometries []spatialmath.Geometry
}

// NewGeometriesInFrame constructs a GeometriesInFrame.
func NewGeometriesInFrame(frame string, geometries []spatialmath.Geometry) *GeometriesInFrame {
	return &GeometriesInFrame{frame: frame, geometries: geometries}
}

// Parent returns the name of the frame the geometries are expressed relative to.
func (gf *GeometriesInFrame) Parent() string { return gf.frame }

// Geometries returns the geometries themselves.
func (gf *GeometriesInFrame) Geometries() []spatialmath.Geometry { return gf.geometries }
