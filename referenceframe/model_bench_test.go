package referenceframe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/pallet-robotics/kinecore/spatialmath"
)

// buildBenchArm returns an n-revolute-joint serial chain, grounded on
// frame_system_bench_test.go's buildRotationalBenchFS.
func buildBenchArm(n int) (*Model, []Input) {
	limit := &Limit{Min: -math.Pi, Max: math.Pi}
	links := make([]Link, n+1)
	links[0] = Link{Name: "link0"}
	joints := make([]Joint, n)
	for i := 1; i <= n; i++ {
		links[i] = Link{Name: linkName(i), Offset: spatialmath.NewPoseFromPoint(r3.Vector{X: 0.2})}
		joints[i-1] = Joint{
			Name: jointName(i), Parent: linkName(i - 1), Child: linkName(i),
			Axis: r3.Vector{Z: 1}, Origin: spatialmath.NewZeroPose(), Kind: JointRevolute, Limit: limit,
		}
	}
	tree, err := NewKinematicTree("bench", links, joints, "link0")
	if err != nil {
		panic(err)
	}
	model, err := NewModel(tree, linkName(n))
	if err != nil {
		panic(err)
	}
	q := make([]Input, n)
	for i := range q {
		q[i] = Input{Value: 0.3}
	}
	return model, q
}

func linkName(i int) string  { return string(rune('a'+i%26)) + string(rune('0'+i/26%10)) }
func jointName(i int) string { return "j" + linkName(i) }

func BenchmarkTransform(b *testing.B) {
	for _, n := range []int{2, 6, 12} {
		model, q := buildBenchArm(n)
		b.Run(jointCountLabel(n), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = model.Transform(q)
			}
		})
	}
}

func BenchmarkForwardKinematics(b *testing.B) {
	for _, n := range []int{2, 6, 12} {
		model, q := buildBenchArm(n)
		b.Run(jointCountLabel(n), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = model.ForwardKinematics(q)
			}
		})
	}
}

func BenchmarkJacobianColumns(b *testing.B) {
	for _, n := range []int{2, 6, 12} {
		model, q := buildBenchArm(n)
		b.Run(jointCountLabel(n), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _, _ = model.JacobianColumns(q)
			}
		})
	}
}

func jointCountLabel(n int) string {
	switch n {
	case 2:
		return "2_joint"
	case 6:
		return "6_joint"
	default:
		return "12_joint"
	}
}
