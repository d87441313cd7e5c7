// Package ik solves for joint configurations that place an end-effector at a target pose, using
// the geometric Jacobian and two damped iterative solvers (Newton-Raphson and
// Levenberg-Marquardt), matching the split the corpus draws between referenceframe (kinematics)
// and motionplan/ik (solving).
package ik

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pallet-robotics/kinecore/referenceframe"
	"github.com/pallet-robotics/kinecore/spatialmath"
)

// Jacobian computes the 6xn geometric Jacobian of model at the given joint configuration, along
// with the end-effector pose that configuration produces. Column k of the Jacobian is
// [axis_k x (p_eef - p_k); axis_k] for a revolute joint, [axis_k; 0] for a prismatic joint.
func Jacobian(model *referenceframe.Model, q []referenceframe.Input) (*mat.Dense, spatialmath.Pose, error) {
	cols, eef, err := model.JacobianColumns(q)
	if err != nil && eef == nil {
		return nil, nil, err
	}
	n := len(cols)
	j := mat.NewDense(6, n, nil)
	eefPoint := eef.Point()
	for k, c := range cols {
		if c.Revolute {
			r := eefPoint.Sub(c.Origin)
			cross := c.Axis.Cross(r)
			j.Set(0, k, cross.X)
			j.Set(1, k, cross.Y)
			j.Set(2, k, cross.Z)
			j.Set(3, k, c.Axis.X)
			j.Set(4, k, c.Axis.Y)
			j.Set(5, k, c.Axis.Z)
		} else {
			j.Set(0, k, c.Axis.X)
			j.Set(1, k, c.Axis.Y)
			j.Set(2, k, c.Axis.Z)
			j.Set(3, k, 0)
			j.Set(4, k, 0)
			j.Set(5, k, 0)
		}
	}
	return j, eef, err
}

// poseErrorVec returns the 6-vector pose error (position, then axis-angle rotation) taking
// current to target, per spatialmath.PoseDelta.
func poseErrorVec(target, current spatialmath.Pose) *mat.VecDense {
	posErr, rotErr := spatialmath.PoseDelta(current, target)
	return mat.NewVecDense(6, []float64{posErr.X, posErr.Y, posErr.Z, rotErr.X, rotErr.Y, rotErr.Z})
}

// pseudoinverse computes the Moore-Penrose pseudoinverse of m via SVD, the standard
// numerically-stable route gonum offers (as opposed to inverting JtJ directly).
func pseudoinverse(m *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	ok := svd.Factorize(m, mat.SVDThin)
	if !ok {
		return nil, errSVDFactorize
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	sInv := mat.NewDense(len(values), len(values), nil)
	for i, s := range values {
		if s > pseudoinverseTol {
			sInv.Set(i, i, 1/s)
		}
	}

	var vSInv mat.Dense
	vSInv.Mul(&v, sInv)
	var result mat.Dense
	result.Mul(&vSInv, u.T())
	return &result, nil
}

// pseudoinverseTol is the singular-value cutoff below which a singular direction is treated as
// unreachable (zeroed in the pseudoinverse) rather than amplifying noise.
const pseudoinverseTol = 1e-9
