// Package dlog recovers discrete logarithms on the curves of package curve:
// given a base point p and a target q = x*p it finds x.
//
// Two solvers are provided. BSGS is the deterministic baby-step giant-step
// algorithm, O(sqrt(n)) in time and memory. Rho is Pollard's rho with a
// three-way additive/doubling walk and tortoise/hare cycle detection,
// expected O(sqrt(n)) time in constant memory. Both satisfy Solver and can be
// fanned out over many targets with LogAll.
package dlog

import (
	"math/big"

	"github.com/pkg/errors"

	"ecdlog/curve"
)

var (
	// ErrLogNotFound is returned when the search space is exhausted, which
	// means the target is not in the subgroup generated by the base point.
	ErrLogNotFound = errors.New("logarithm not found")

	// ErrTableTooLarge is returned by BSGS when the baby-step table would
	// exceed Config.MaxTableMemory.
	ErrTableTooLarge = errors.New("baby-step table exceeds memory cap")

	ErrBadConfig = errors.New("invalid solver configuration")
)

// Result is a recovered logarithm. Steps counts the group operations (BSGS)
// or walk rounds (Rho) spent, for diagnostics only.
type Result struct {
	Log   *big.Int
	Steps uint64
}

// Solver is implemented by BSGS and Rho.
type Solver interface {
	Log(c *curve.Curve, p, q curve.Point) (Result, error)
}

var (
	_ Solver = (*BSGS)(nil)
	_ Solver = (*Rho)(nil)
)

// checkInputs requires both points on the curve and the base point in the
// order-n subgroup, so that every answer lies in [0, n) and round-trips
// through Mult.
func checkInputs(c *curve.Curve, p, q curve.Point) error {
	if !c.IsOnCurve(p) {
		return errors.Wrapf(curve.ErrPointNotOnCurve, "base point %s", p)
	}
	if !c.IsOnCurve(q) {
		return errors.Wrapf(curve.ErrPointNotOnCurve, "target point %s", q)
	}
	if !c.InSubgroup(p) {
		return errors.Wrapf(curve.ErrPointNotInSubgroup, "base point %s, order %s", p, c.N())
	}
	return nil
}

// BabyStepGiantStep solves q = x*p with a BSGS solver using DefaultConfig.
func BabyStepGiantStep(c *curve.Curve, p, q curve.Point) (Result, error) {
	s, err := NewBSGS(DefaultConfig())
	if err != nil {
		return Result{}, err
	}
	return s.Log(c, p, q)
}

// PollardRho solves q = x*p with a Rho solver using DefaultConfig.
func PollardRho(c *curve.Curve, p, q curve.Point) (Result, error) {
	s, err := NewRho(DefaultConfig())
	if err != nil {
		return Result{}, err
	}
	return s.Log(c, p, q)
}
