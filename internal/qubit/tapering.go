package qubit

import (
	"errors"
	"fmt"
)

var (
	ErrSymmetryBroken = errors.New("operator does not conserve the tapered parities")
	ErrOddQubits      = errors.New("two-qubit reduction needs an even qubit count")
)

// TwoQubitReduction removes the two parity-mapping qubits that store the
// alpha particle parity (NumQubits/2 - 1) and the total particle parity
// (NumQubits - 1), replacing Z on them by their fixed eigenvalues
type TwoQubitReduction struct {
	NumQubits    int
	NumAlpha     int
	NumParticles int
}

func NewTwoQubitReduction(numQubits, numAlpha, numBeta int) (*TwoQubitReduction, error) {
	if numQubits < 2 || numQubits%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrOddQubits, numQubits)
	}
	return &TwoQubitReduction{
		NumQubits:    numQubits,
		NumAlpha:     numAlpha,
		NumParticles: numAlpha + numBeta,
	}, nil
}

func (r *TwoQubitReduction) qubits() (alpha, total int) {
	return r.NumQubits/2 - 1, r.NumQubits - 1
}

func parity(n int) complex128 {
	if n%2 == 0 {
		return 1
	}
	return -1
}

// Taper returns op on NumQubits-2 qubits
func (r *TwoQubitReduction) Taper(op *Operator) (*Operator, error) {
	if op.NumQubits != r.NumQubits {
		return nil, fmt.Errorf("operator has %d qubits, reduction expects %d", op.NumQubits, r.NumQubits)
	}
	qa, qt := r.qubits()
	ba, bt := uint64(1)<<uint(qa), uint64(1)<<uint(qt)
	out := NewOperator(r.NumQubits - 2)
	for p, c := range op.terms {
		if p.X&(ba|bt) != 0 {
			return nil, fmt.Errorf("%w: %s", ErrSymmetryBroken, p.Label(r.NumQubits))
		}
		if p.Z&ba != 0 {
			c *= parity(r.NumAlpha)
		}
		if p.Z&bt != 0 {
			c *= parity(r.NumParticles)
		}
		reduced := Pauli{X: r.squeeze(p.X), Z: r.squeeze(p.Z)}
		out.terms[reduced] += c
	}
	return out, nil
}

// TaperState drops the tapered qubits from a basis state
func (r *TwoQubitReduction) TaperState(k uint64) uint64 {
	return r.squeeze(k)
}

// squeeze removes the two tapered bit positions
func (r *TwoQubitReduction) squeeze(m uint64) uint64 {
	qa, _ := r.qubits()
	low := m & (1<<uint(qa) - 1)
	high := m >> uint(qa+1) & (1<<uint(r.NumQubits-qa-2) - 1)
	return low | high<<uint(qa)
}
