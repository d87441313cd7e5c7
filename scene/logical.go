package scene

// LogicalState tracks the symbolic predicates of a scene member: what
// it's resting on, whether it's held, what (if anything) it's holding, and whether it's exempt
// from physical re-derivation (a static fixture, e.g. a table).
type LogicalState struct {
	// On is the name of the object this one rests on, or "" if none.
	On string
	// Held is true while a gripper has this object attached.
	Held bool
	// Holding is the name of the object a gripper (modeled as a logical-state holder too) is
	// currently holding, or "" if empty-handed.
	Holding string
	// Static exempts an object from UpdateLogicalStates' geometric "on" re-derivation (fixed
	// scene furniture that never moves and is never stacked upon dynamically).
	Static bool
}

func (ls *LogicalState) clone() *LogicalState {
	cp := *ls
	return &cp
}
