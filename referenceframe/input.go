package referenceframe

import "math"

// Input is a single joint value, in radians for revolute/continuous joints or meters for
// prismatic joints. Kept as a struct rather than a bare float64 so that frames can be extended to
// carry per-joint metadata later without changing every call site, matching the teacher's
// convention in referenceframe/model.go.
type Input struct {
	Value float64
}

// FloatsToInputs converts a slice of raw values to a slice of Input.
func FloatsToInputs(floats []float64) []Input {
	inputs := make([]Input, len(floats))
	for i, f := range floats {
		inputs[i] = Input{f}
	}
	return inputs
}

// InputsToFloats converts a slice of Input back to raw values.
func InputsToFloats(inputs []Input) []float64 {
	floats := make([]float64, len(inputs))
	for i, in := range inputs {
		floats[i] = in.Value
	}
	return floats
}

// Limit is the closed interval [Min, Max] a joint's value must lie within. Continuous joints are
// assigned the +/-Inf sentinel (see IsContinuous) and are wrapped modulo 2*pi before distance
// comparisons instead of being bounded.
type Limit struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the limit, inclusive.
func (l Limit) Contains(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// IsContinuous reports whether l is the sentinel limit assigned to continuous joints
// (kinematicTree.go's motionFrameForJoint), which carry no true bound and instead wrap modulo
// 2*pi before distance comparisons.
func (l Limit) IsContinuous() bool {
	return math.IsInf(l.Min, -1) && math.IsInf(l.Max, 1)
}

// InterpolateInputs linearly interpolates between two input vectors of equal length by amount
// `by` in [0, 1].
func InterpolateInputs(from, to []Input, by float64) []Input {
	interp := make([]Input, len(from))
	for i := range from {
		interp[i] = Input{from[i].Value + (to[i].Value-from[i].Value)*by}
	}
	return interp
}

// GenerateRandomConfiguration generates a joint vector that is uniformly random within the given
// limits. Continuous joints (represented with +/-Inf limits) are sampled within [-pi, pi).
func GenerateRandomConfiguration(limits []Limit, randFloat func() float64) []Input {
	cfg := make([]Input, len(limits))
	for i, l := range limits {
		lo, hi := l.Min, l.Max
		if l.IsContinuous() {
			lo, hi = -math.Pi, math.Pi
		}
		cfg[i] = Input{lo + randFloat()*(hi-lo)}
	}
	return cfg
}

// WrapContinuous wraps an angle to (-pi, pi], used for continuous-joint distance comparisons per
// the kinematic-tree invariant that continuous joints wrap modulo 2*pi.
func WrapContinuous(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle <= -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}
