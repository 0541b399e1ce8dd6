// Package vqe runs the variational quantum eigensolver on a statevector
// simulator: prepare a trial state, measure the Hamiltonian exactly and
// minimize over the ansatz parameters.
package vqe

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ssangskriti/qiskit-tutorials/internal/qubit"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/optimize"
)

var ErrDimension = errors.New("ansatz and operator disagree on the qubit count")

// VQE minimizes <psi(theta)|Operator|psi(theta)> over the parameters of
// Ansatz, starting from InitialPoint (all zeros when nil)
type VQE struct {
	Operator       *qubit.Operator
	Ansatz         Ansatz
	Optimizer      Optimizer
	MaxEvaluations int
	InitialPoint   []float64
	Logger         *zap.Logger
}

// Result is the lowest energy seen and where it was seen
type Result struct {
	Eigenvalue        float64
	OptimalParameters []float64
	Evaluations       int
	Status            optimize.Status
}

// Energy evaluates the operator on the ansatz state at params
func (v *VQE) Energy(params []float64) float64 {
	return v.Operator.Expectation(v.Ansatz.Prepare(params))
}

// Run performs the optimization. Cancelling ctx stops it between
// evaluations and returns the context error. The budget is checked
// before every optimizer step, so a gradient method may overrun it by
// the 2*NumParameters evaluations of one finite-difference gradient.
// An ansatz without parameters is evaluated once.
func (v *VQE) Run(ctx context.Context) (*Result, error) {
	logger := v.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	np := v.Ansatz.NumParameters()
	x0 := make([]float64, np)
	if v.InitialPoint != nil {
		if len(v.InitialPoint) != np {
			return nil, fmt.Errorf("initial point has %d parameters, ansatz needs %d", len(v.InitialPoint), np)
		}
		copy(x0, v.InitialPoint)
	}
	if got := len(v.Ansatz.Prepare(x0)); got != 1<<uint(v.Operator.NumQubits) {
		return nil, fmt.Errorf("%w: %d amplitudes for %d qubits", ErrDimension, got, v.Operator.NumQubits)
	}
	if np == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := v.Energy(x0)
		logger.Info("ansatz has no parameters", zap.Float64("eigenvalue", e))
		return &Result{Eigenvalue: e, OptimalParameters: x0, Evaluations: 1, Status: optimize.Success}, nil
	}
	maxEval := v.MaxEvaluations
	if maxEval <= 0 {
		maxEval = DefaultMaxEvaluations
	}
	opt := v.Optimizer
	if opt == "" {
		opt = NelderMead
	}

	best := &Result{Eigenvalue: math.Inf(1)}
	evals := 0
	f := func(x []float64) float64 {
		e := v.Energy(x)
		evals++
		if e < best.Eigenvalue {
			best.Eigenvalue = e
			best.OptimalParameters = append(best.OptimalParameters[:0], x...)
		}
		logger.Debug("energy evaluation", zap.Int("evaluation", evals), zap.Float64("energy", e))
		return e
	}
	problem := optimize.Problem{
		Func: f,
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			if evals >= maxEval {
				return optimize.FunctionEvaluationLimit, nil
			}
			return optimize.NotTerminated, nil
		},
	}
	// gradient evaluations go through f and count against the budget
	if opt.needsGradient() {
		problem.Grad = gradient(f)
	}
	settings := &optimize.Settings{FuncEvaluations: maxEval}
	res, err := optimize.Minimize(problem, x0, settings, opt.method())
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil && res == nil {
		return nil, fmt.Errorf("optimizer %s: %w", opt, err)
	}
	if err != nil {
		logger.Warn("optimizer stopped early", zap.String("optimizer", string(opt)), zap.Error(err))
	}
	best.Evaluations = evals
	best.Status = res.Status
	logger.Info("VQE finished",
		zap.String("optimizer", string(opt)),
		zap.Int("evaluations", evals),
		zap.Stringer("status", res.Status),
		zap.Float64("eigenvalue", best.Eigenvalue))
	return best, nil
}
