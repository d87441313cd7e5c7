package ik

import "github.com/pkg/errors"

// Sentinel errors for the ik package, plain globals created with errors.New rather than custom
// types, matching the teacher's errIKSolve-style globals in motionplan/inverseKinematics.go.
var errSVDFactorize = errors.New("ik: singular value decomposition of Jacobian failed")
