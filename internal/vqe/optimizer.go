package vqe

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

var ErrUnknownOptimizer = errors.New("unknown optimizer")

// DefaultMaxEvaluations caps energy evaluations when none is set
const DefaultMaxEvaluations = 200

// finite-difference step for gradient-based methods
const gradientStep = 1e-5

// Optimizer names a gonum minimization method
type Optimizer string

const (
	NelderMead Optimizer = "nelder-mead"
	BFGS       Optimizer = "bfgs"
	LBFGS      Optimizer = "lbfgs"
	CG         Optimizer = "cg"
)

// ParseOptimizer accepts the names above, case-insensitively
func ParseOptimizer(s string) (Optimizer, error) {
	switch o := Optimizer(strings.ReplaceAll(strings.ToLower(s), "_", "-")); o {
	case "":
		return NelderMead, nil
	case NelderMead, BFGS, LBFGS, CG:
		return o, nil
	case "neldermead":
		return NelderMead, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOptimizer, s)
}

func (o Optimizer) method() optimize.Method {
	switch o {
	case BFGS:
		return &optimize.BFGS{}
	case LBFGS:
		return &optimize.LBFGS{}
	case CG:
		return &optimize.CG{}
	}
	return &optimize.NelderMead{}
}

func (o Optimizer) needsGradient() bool {
	return o == BFGS || o == LBFGS || o == CG
}

// gradient returns a central-difference gradient of f
func gradient(f func([]float64) float64) func(grad, x []float64) {
	settings := &fd.Settings{Formula: fd.Central, Step: gradientStep}
	return func(grad, x []float64) {
		fd.Gradient(grad, f, x, settings)
	}
}
