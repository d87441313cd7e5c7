package referenceframe

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pallet-robotics/kinecore/spatialmath"
)

const unnamedWorldStateGeometryPrefix = "unnamedWorldStateGeometry_"

// WorldState is a struct to store the data representation of the robot's environment: obstacles
// that planners must avoid, expressed relative to named frames. Adapted from the teacher's
// referenceframe.WorldState, minus the protobuf wire format (out of scope, SPEC_FULL.md §2).
type WorldState struct {
	obstacleNames map[string]bool
	obstacles     []*GeometriesInFrame
}

// NewWorldState instantiates a WorldState with geometries meant to represent obstacles. Every
// geometry must have a unique label within the WorldState; unlabeled geometries are assigned one.
func NewWorldState(obstacles []*GeometriesInFrame) (*WorldState, error) {
	ws := &WorldState{
		obstacleNames: make(map[string]bool),
		obstacles:     make([]*GeometriesInFrame, 0),
	}
	unnamedCount := 0
	for _, gf := range obstacles {
		geometries := gf.Geometries()
		checkedGeometries := make([]spatialmath.Geometry, 0, len(geometries))

		for _, geometry := range geometries {
			name := geometry.Label()
			if name == "" {
				name = unnamedWorldStateGeometryPrefix + strconv.Itoa(unnamedCount)
				geometry.SetLabel(name)
				unnamedCount++
			}
			if _, present := ws.obstacleNames[name]; present {
				return nil, NewDuplicateGeometryNameError(name)
			}
			ws.obstacleNames[name] = true
			checkedGeometries = append(checkedGeometries, geometry)
		}
		ws.obstacles = append(ws.obstacles, NewGeometriesInFrame(gf.Parent(), checkedGeometries))
	}
	return ws, nil
}

// ObstacleNames returns the set of geometry names registered in the WorldState.
func (ws *WorldState) ObstacleNames() map[string]bool {
	if ws == nil {
		return map[string]bool{}
	}
	copied := make(map[string]bool, len(ws.obstacleNames))
	for k, v := range ws.obstacleNames {
		copied[k] = v
	}
	return copied
}

// Obstacles returns the obstacles registered in the WorldState.
func (ws *WorldState) Obstacles() []*GeometriesInFrame {
	if ws == nil {
		return []*GeometriesInFrame{}
	}
	return ws.obstacles
}

// String returns a human-readable table of the geometries in the WorldState.
func (ws *WorldState) String() string {
	if ws == nil {
		return ""
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Geometry Kind", "Parent Frame"})
	for _, geometries := range ws.obstacles {
		for _, geometry := range geometries.Geometries() {
			t.AppendRow([]interface{}{
				geometry.Label(),
				fmt.Sprint(geometry.Kind()),
				geometries.Parent(),
			})
		}
	}
	return t.Render()
}
