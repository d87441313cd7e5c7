package ik

import (
	"github.com/edaniels/golog"
	"gonum.org/v1/gonum/mat"

	"github.com/pallet-robotics/kinecore/referenceframe"
	"github.com/pallet-robotics/kinecore/spatialmath"
)

// Method selects which iterative solver Solve uses.
type Method int

// The two solvers the kinematic engine supports.
const (
	NewtonRaphson Method = iota
	LevenbergMarquardt
)

// nrLambda, nrEPS, and nrMaxIter are the Newton-Raphson step gain, convergence tolerance, and
// default iteration cap.
const (
	nrLambda  = 0.5
	nrEPS     = 1e-6
	nrMaxIter = 1000
)

// Levenberg-Marquardt weighting and convergence constants. wp/wa weight positional error against
// angular error so that a meter of position miss and a full rotation contribute comparably to the
// cost; lmDamping is added to Ek each iteration per the damped least-squares update rule.
const (
	lmPositionWeight = 1 / 0.3
	lmAngularWeight  = 1 / (2 * 3.141592653589793)
	lmEPS            = 1e-12
	lmDamping        = 0.002
)

// Result is the outcome of an IK solve: the best joint vector reached (always populated) and
// whether it converged within tolerance.
type Result struct {
	Q         []referenceframe.Input
	Converged bool
	Iters     int
	PoseError float64
}

// Solve dispatches to the Newton-Raphson or Levenberg-Marquardt solver. Both solvers always
// return the best joint vector reached; callers distinguish convergence via Result.Converged
// rather than an error, since "ran out of iterations near the goal" is not itself a failure.
func Solve(
	model *referenceframe.Model,
	seed []referenceframe.Input,
	target spatialmath.Pose,
	method Method,
	maxIter int,
	logger golog.Logger,
) (*Result, error) {
	if maxIter <= 0 {
		maxIter = nrMaxIter
	}
	switch method {
	case LevenbergMarquardt:
		return solveLM(model, seed, target, maxIter, lmDamping, logger)
	default:
		return solveNR(model, seed, target, maxIter, logger)
	}
}

// SolveLMDamped runs the Levenberg-Marquardt solver with an explicit damping floor rather than
// the package default, for callers (the Cartesian planner) that expose damping as a tuning knob.
func SolveLMDamped(
	model *referenceframe.Model,
	seed []referenceframe.Input,
	target spatialmath.Pose,
	maxIter int,
	damping float64,
	logger golog.Logger,
) (*Result, error) {
	if maxIter <= 0 {
		maxIter = nrMaxIter
	}
	return solveLM(model, seed, target, maxIter, damping, logger)
}

// solveNR implements spec's undamped Newton-Raphson update: dq = lambda * pinv(J) * e, no
// backtracking, stopping when ||e|| <= EPS or the iteration cap is hit.
func solveNR(
	model *referenceframe.Model,
	seed []referenceframe.Input,
	target spatialmath.Pose,
	maxIter int,
	logger golog.Logger,
) (*Result, error) {
	q := append([]referenceframe.Input(nil), seed...)
	var lastErrNorm float64
	for iter := 0; iter < maxIter; iter++ {
		j, current, err := Jacobian(model, q)
		if current == nil {
			return nil, err
		}
		e := poseErrorVec(target, current)
		lastErrNorm = mat.Norm(e, 2)
		if lastErrNorm <= nrEPS {
			if logger != nil {
				logger.Debugf("ik NR converged after %d iterations, ||e||=%g", iter, lastErrNorm)
			}
			return &Result{Q: q, Converged: true, Iters: iter, PoseError: lastErrNorm}, nil
		}

		jPinv, err := pseudoinverse(j)
		if err != nil {
			return &Result{Q: q, Converged: false, Iters: iter, PoseError: lastErrNorm}, err
		}
		var dq mat.VecDense
		dq.MulVec(jPinv, e)
		dq.ScaleVec(nrLambda, &dq)

		for i := range q {
			q[i].Value += dq.AtVec(i)
		}
	}
	if logger != nil {
		logger.Debugf("ik NR hit max iterations, ||e||=%g", lastErrNorm)
	}
	return &Result{Q: q, Converged: lastErrNorm <= nrEPS, Iters: maxIter, PoseError: lastErrNorm}, nil
}

// solveLM implements spec's damped least-squares iteration with weighted position/angle error,
// accepting a trial step only if it strictly reduces the weighted cost and reverting (then
// terminating) otherwise.
func solveLM(
	model *referenceframe.Model,
	seed []referenceframe.Input,
	target spatialmath.Pose,
	maxIter int,
	damping float64,
	logger golog.Logger,
) (*Result, error) {
	n := len(seed)
	we := mat.NewDiagDense(6, []float64{
		lmPositionWeight, lmPositionWeight, lmPositionWeight,
		lmAngularWeight, lmAngularWeight, lmAngularWeight,
	})
	wn := eye(n)

	q := append([]referenceframe.Input(nil), seed...)
	j, current, err := Jacobian(model, q)
	if current == nil {
		return nil, err
	}
	e := poseErrorVec(target, current)
	ek := weightedCost(we, e)

	for iter := 0; iter < maxIter; iter++ {
		if ek <= lmEPS {
			if logger != nil {
				logger.Debugf("ik LM converged after %d iterations, Ek=%g", iter, ek)
			}
			return &Result{Q: q, Converged: true, Iters: iter, PoseError: mat.Norm(e, 2)}, nil
		}

		lambda := ek + damping
		jh := weightedHessian(j, we, wn, lambda)
		jhPinv, err := pseudoinverse(jh)
		if err != nil {
			return &Result{Q: q, Converged: false, Iters: iter, PoseError: mat.Norm(e, 2)}, err
		}

		var jtWe mat.Dense
		jtWe.Mul(j.T(), we)
		g := mat.NewVecDense(n, nil)
		g.MulVec(&jtWe, e)

		var dq mat.VecDense
		dq.MulVec(jhPinv, g)

		trial := append([]referenceframe.Input(nil), q...)
		for i := range trial {
			trial[i].Value += dq.AtVec(i)
		}

		jTrial, trialPose, err := Jacobian(model, trial)
		if trialPose == nil {
			return &Result{Q: q, Converged: false, Iters: iter, PoseError: mat.Norm(e, 2)}, err
		}
		eTrial := poseErrorVec(target, trialPose)
		ekTrial := weightedCost(we, eTrial)

		if ekTrial < ek {
			q, j, e, ek = trial, jTrial, eTrial, ekTrial
			continue
		}
		if logger != nil {
			logger.Debugf("ik LM trial step did not improve cost (%g -> %g), reverting and terminating", ek, ekTrial)
		}
		return &Result{Q: q, Converged: ek <= lmEPS, Iters: iter, PoseError: mat.Norm(e, 2)}, nil
	}
	if logger != nil {
		logger.Debugf("ik LM hit max iterations, Ek=%g", ek)
	}
	return &Result{Q: q, Converged: ek <= lmEPS, Iters: maxIter, PoseError: mat.Norm(e, 2)}, nil
}

func weightedCost(we *mat.DiagDense, e *mat.VecDense) float64 {
	var weE mat.VecDense
	weE.MulVec(we, e)
	return mat.Dot(e, &weE)
}

// weightedHessian computes Jh = Jt*We*J + lambda*Wn.
func weightedHessian(j *mat.Dense, we *mat.DiagDense, wn *mat.Dense, lambda float64) *mat.Dense {
	var jtWe, jtWeJ mat.Dense
	jtWe.Mul(j.T(), we)
	jtWeJ.Mul(&jtWe, j)

	n, _ := jtWeJ.Dims()
	jh := mat.NewDense(n, n, nil)
	jh.Add(&jtWeJ, scale(wn, lambda))
	return jh
}

func scale(m *mat.Dense, s float64) *mat.Dense {
	var out mat.Dense
	out.Scale(s, m)
	return &out
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
