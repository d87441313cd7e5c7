package collision

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pallet-robotics/kinecore/spatialmath"
)

// Manager holds a named set of collision geometries and an adjacency filter of pairs that are
// expected to always be close (or touching) and so should not be reported as collisions. Mirrors
// the teacher's geometryGraph/collisionGraph split (erh-rdk/motionplan/collision.go), generalized
// into a standalone manager rather than a planner-internal helper.
type Manager struct {
	geometries map[string]spatialmath.Geometry
	ignore     map[Pair]bool
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{geometries: make(map[string]spatialmath.Geometry), ignore: make(map[Pair]bool)}
}

// AddObject registers a geometry under name. Fails with ErrDuplicateName if name is already
// registered.
func (m *Manager) AddObject(name string, geom spatialmath.Geometry) error {
	if _, exists := m.geometries[name]; exists {
		return ErrDuplicateName
	}
	geom.SetLabel(name)
	m.geometries[name] = geom
	return nil
}

// SetTransform replaces the stored pose of an already-registered geometry. Fails with
// ErrUnknownName if name was never added.
func (m *Manager) SetTransform(name string, pose spatialmath.Pose) error {
	g, ok := m.geometries[name]
	if !ok {
		return ErrUnknownName
	}
	m.geometries[name] = g.WithPose(pose)
	return nil
}

// RemoveObject deregisters a geometry. A no-op if name was never added.
func (m *Manager) RemoveObject(name string) {
	delete(m.geometries, name)
}

// Geometries returns the manager's registered geometries, keyed by name.
func (m *Manager) Geometries() map[string]spatialmath.Geometry {
	return m.geometries
}

// FilterContactNames seeds the manager's adjacency filter from two sources: every joint's
// parent/child link pair (adjacent links are rigidly connected at a shared surface and would
// otherwise always report as touching), and every pair of registered geometries that collides
// when the robot is posed at its zero configuration (treated as a structural default contact,
// not a real collision). zeroConfigGeometries must contain the manager's geometries re-posed at
// q=0; entries absent from the manager are ignored.
func (m *Manager) FilterContactNames(jointPairs []Pair, zeroConfigGeometries map[string]spatialmath.Geometry) error {
	for _, p := range jointPairs {
		m.ignore[canonicalPair(p.A, p.B)] = true
	}

	relevant := make(map[string]spatialmath.Geometry, len(m.geometries))
	for name := range m.geometries {
		if g, ok := zeroConfigGeometries[name]; ok {
			relevant[name] = g
		}
	}
	cg, err := newCollisionGraph(relevant, nil, m.ignore, true)
	if err != nil {
		return err
	}
	for _, contact := range cg.collisions() {
		m.ignore[contact.Pair] = true
	}
	return nil
}

// InCollisionInternal tests the manager's own geometries against each other, excluding adjacency
// pairs recorded by FilterContactNames. returnData selects whether every pairwise distance is
// computed (true) or the check exits at the first collision found (false).
func (m *Manager) InCollisionInternal(returnData bool) (bool, []Pair, []Contact, error) {
	cg, err := newCollisionGraph(m.geometries, nil, m.ignore, returnData)
	if err != nil {
		return false, nil, nil, err
	}
	contacts := cg.collisions()
	if len(contacts) == 0 {
		return false, nil, nil, nil
	}
	pairs := make([]Pair, len(contacts))
	for i, c := range contacts {
		pairs[i] = c.Pair
	}
	return true, pairs, contacts, nil
}

// InCollisionOther tests this manager's geometries against another manager's, with no adjacency
// filtering applied (two independently-tracked managers, e.g. robot vs. scene objects, never
// share an adjacency relationship).
func (m *Manager) InCollisionOther(other *Manager, returnData bool) (bool, []Pair, []Contact, error) {
	cg, err := newCollisionGraph(m.geometries, other.geometries, nil, returnData)
	if err != nil {
		return false, nil, nil, err
	}
	contacts := cg.collisions()
	if len(contacts) == 0 {
		return false, nil, nil, nil
	}
	pairs := make([]Pair, len(contacts))
	for i, c := range contacts {
		pairs[i] = c.Pair
	}
	return true, pairs, contacts, nil
}

// String returns a human-readable table of the manager's registered geometries, grounded on
// WorldState.String()'s go-pretty rendering.
func (m *Manager) String() string {
	if m == nil {
		return ""
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Geometry Kind", "Ignored Pairs"})
	for name, geom := range m.geometries {
		ignored := 0
		for pair := range m.ignore {
			if pair.A == name || pair.B == name {
				ignored++
			}
		}
		t.AppendRow([]interface{}{name, fmt.Sprint(geom.Kind()), ignored})
	}
	return t.Render()
}
