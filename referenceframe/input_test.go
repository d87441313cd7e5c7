package referenceframe

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestWrapContinuousStaysInRange(t *testing.T) {
	test.That(t, WrapContinuous(0), test.ShouldAlmostEqual, 0.0, 1e-9)
	test.That(t, WrapContinuous(math.Pi), test.ShouldAlmostEqual, math.Pi, 1e-9)
	test.That(t, WrapContinuous(3*math.Pi), test.ShouldAlmostEqual, math.Pi, 1e-9)
	test.That(t, WrapContinuous(-3*math.Pi), test.ShouldAlmostEqual, math.Pi, 1e-9)
	test.That(t, WrapContinuous(2*math.Pi+0.1), test.ShouldAlmostEqual, 0.1, 1e-9)
}

func TestLimitIsContinuous(t *testing.T) {
	test.That(t, (Limit{Min: math.Inf(-1), Max: math.Inf(1)}).IsContinuous(), test.ShouldBeTrue)
	test.That(t, (Limit{Min: -math.Pi, Max: math.Pi}).IsContinuous(), test.ShouldBeFalse)
	// A finite but enormous bound is not the continuous-joint sentinel.
	test.That(t, (Limit{Min: -1e308, Max: 1e308}).IsContinuous(), test.ShouldBeFalse)
}

func TestGenerateRandomConfigurationWrapsContinuousJoints(t *testing.T) {
	limits := []Limit{{Min: math.Inf(-1), Max: math.Inf(1)}, {Min: -1, Max: 1}}
	// A deterministic sequence of randFloat() outputs lets this assert exact bounds rather than
	// just "didn't panic".
	calls := []float64{0, 0.5}
	i := 0
	randFloat := func() float64 {
		v := calls[i]
		i++
		return v
	}
	cfg := GenerateRandomConfiguration(limits, randFloat)
	test.That(t, len(cfg), test.ShouldEqual, 2)
	test.That(t, cfg[0].Value, test.ShouldAlmostEqual, -math.Pi, 1e-9)
	test.That(t, cfg[1].Value, test.ShouldAlmostEqual, 0.0, 1e-9)
}
