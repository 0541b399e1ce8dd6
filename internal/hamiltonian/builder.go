// Package hamiltonian turns molecular integrals into a qubit Hamiltonian:
// fermionic operator, freeze, eliminate, encode, taper, chop, always in
// that order.
package hamiltonian

import (
	"fmt"

	"github.com/ssangskriti/qiskit-tutorials/internal/chem"
	"github.com/ssangskriti/qiskit-tutorials/internal/fermion"
	"github.com/ssangskriti/qiskit-tutorials/internal/qubit"
	"go.uber.org/zap"
)

const (
	DefaultThreshold = 1e-8
	DefaultChop      = 1e-10
	integralCutoff   = 1e-12
)

// Builder configures the reduction pipeline. A nil Mapping means parity.
type Builder struct {
	Mapping           qubit.Mapping
	TwoQubitReduction bool
	// Threshold drops mapped terms at or below it
	Threshold float64
	// Chop is the final truncation
	Chop   float64
	Logger *zap.Logger
}

// Result is the reduced qubit Hamiltonian along with what is needed to
// map further operators and states into the same qubit space
type Result struct {
	Operator *qubit.Operator
	// EnergyShift collects the frozen-orbital energy
	EnergyShift     float64
	NumAlpha        int
	NumBeta         int
	NumSpinOrbitals int
	Indices         Indices
	Mapping         qubit.Mapping
	// Reduction is nil when no tapering was applied
	Reduction *qubit.TwoQubitReduction
	threshold float64
	chop      float64
}

// NumQubits is the width of the final operator
func (r *Result) NumQubits() int {
	return r.Operator.NumQubits
}

// NumParticles is the electron count left after freezing
func (r *Result) NumParticles() int {
	return r.NumAlpha + r.NumBeta
}

// Map sends a fermionic operator over the reduced modes through the same
// encoding and tapering as the Hamiltonian
func (r *Result) Map(op *fermion.Operator) (*qubit.Operator, error) {
	q, err := qubit.Map(r.Mapping, op, r.threshold)
	if err != nil {
		return nil, err
	}
	if r.Reduction != nil {
		if q, err = r.Reduction.Taper(q); err != nil {
			return nil, err
		}
	}
	return q.Chop(r.chop), nil
}

// NumberOperators maps the total and the alpha particle number operators
// of the reduced modes. Their values for this problem are NumParticles
// and NumAlpha.
func (r *Result) NumberOperators() (total, alpha *qubit.Operator, err error) {
	total, err = r.Map(fermion.Number(r.NumSpinOrbitals))
	if err != nil {
		return nil, nil, err
	}
	alpha, err = r.Map(fermion.NumberIn(r.NumSpinOrbitals, 0, r.NumSpinOrbitals/2))
	if err != nil {
		return nil, nil, err
	}
	return total, alpha, nil
}

// HartreeFockState is the qubit basis state of the determinant with the
// lowest alpha and beta modes occupied
func (r *Result) HartreeFockState() uint64 {
	half := r.NumSpinOrbitals / 2
	var occ uint64
	for i := 0; i < r.NumAlpha; i++ {
		occ |= 1 << uint(i)
	}
	for i := 0; i < r.NumBeta; i++ {
		occ |= 1 << uint(half+i)
	}
	state := qubit.Encode(r.Mapping, occ, r.NumSpinOrbitals)
	if r.Reduction != nil {
		state = r.Reduction.TaperState(state)
	}
	return state
}

// Build runs the pipeline on data with raw spatial-orbital freeze and
// remove lists
func (b *Builder) Build(data *chem.MolecularData, freeze, remove []int) (*Result, error) {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	mapping := b.Mapping
	if mapping == nil {
		mapping = qubit.Parity{}
	}
	threshold := b.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	chop := b.Chop
	if chop <= 0 {
		chop = DefaultChop
	}

	h1, h2 := data.SpinOrbitalIntegrals()
	ferOp, err := fermion.FromIntegrals(h1, h2, integralCutoff)
	if err != nil {
		return nil, err
	}
	ix, err := NormalizeIndices(freeze, remove, data.NumOrbitals)
	if err != nil {
		return nil, err
	}
	logger.Debug("normalized orbital indices",
		zap.Ints("freeze", ix.Freeze),
		zap.Ints("remove", ix.Remove))

	n := data.NumOrbitals
	na, nb := data.NumAlpha, data.NumBeta
	for _, f := range ix.Freeze {
		spatial, alpha := f%n, f < n
		if (alpha && spatial >= data.NumAlpha) || (!alpha && spatial >= data.NumBeta) {
			logger.Warn("freezing an unoccupied orbital", zap.Int("index", f))
		}
		if alpha {
			na--
		} else {
			nb--
		}
	}
	if na < 0 || nb < 0 {
		return nil, fmt.Errorf("%w: freezing %d spin-orbitals leaves %d alpha and %d beta electrons",
			ErrIndexOutOfRange, len(ix.Freeze), na, nb)
	}
	var shift float64
	if len(ix.Freeze) > 0 {
		ferOp, shift, err = ferOp.Freeze(ix.Freeze)
		if err != nil {
			return nil, fmt.Errorf("freezing: %w", err)
		}
	}
	half := n - len(ix.Freeze)/2
	for _, r := range ix.Remove {
		if (r < half && r < na) || (r >= half && r-half < nb) {
			logger.Warn("eliminating an occupied orbital", zap.Int("index", r))
		}
	}
	if len(ix.Remove) > 0 {
		ferOp, err = ferOp.Eliminate(ix.Remove)
		if err != nil {
			return nil, fmt.Errorf("eliminating: %w", err)
		}
	}
	ferOp = ferOp.Simplify(integralCutoff)
	res := &Result{
		EnergyShift:     shift,
		NumAlpha:        na,
		NumBeta:         nb,
		NumSpinOrbitals: ferOp.Modes,
		Indices:         ix,
		Mapping:         mapping,
		threshold:       threshold,
		chop:            chop,
	}
	qubitOp, err := qubit.Map(mapping, ferOp, threshold)
	if err != nil {
		return nil, err
	}
	if b.TwoQubitReduction {
		if _, ok := mapping.(qubit.Parity); ok {
			res.Reduction, err = qubit.NewTwoQubitReduction(qubitOp.NumQubits, na, nb)
			if err != nil {
				return nil, err
			}
			if qubitOp, err = res.Reduction.Taper(qubitOp); err != nil {
				return nil, err
			}
		} else {
			logger.Warn("two-qubit reduction needs the parity mapping, skipping",
				zap.String("mapping", mapping.Name()))
		}
	}
	res.Operator = qubitOp.Chop(chop)
	logger.Info("built qubit Hamiltonian",
		zap.String("mapping", mapping.Name()),
		zap.Int("spin orbitals", res.NumSpinOrbitals),
		zap.Int("qubits", res.NumQubits()),
		zap.Int("terms", res.Operator.Len()),
		zap.Float64("energy shift", shift))
	return res, nil
}
