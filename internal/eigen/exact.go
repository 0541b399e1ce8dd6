// Package eigen diagonalizes qubit operators exactly.
package eigen

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/ssangskriti/qiskit-tutorials/internal/qubit"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MaxQubits bounds the dense matrix at 2^14 x 2^14
const MaxQubits = 14

// sectorTol decides whether a basis state carries a symmetry value
const sectorTol = 1e-8

var (
	ErrTooManyQubits = errors.New("too many qubits for exact diagonalization")
	ErrNotHermitian  = errors.New("operator is not Hermitian")
	ErrFactorize     = errors.New("eigendecomposition failed")
	ErrNotDiagonal   = errors.New("symmetry operator is not diagonal")
	ErrEmptySector   = errors.New("no basis state in the symmetry sector")
	ErrSectorMixing  = errors.New("operator does not conserve the symmetry")
)

// Symmetry restricts diagonalization to basis states on which the
// diagonal Operator takes Value, such as a particle number
type Symmetry struct {
	Operator *qubit.Operator
	Value    float64
}

// ExactEigensolver returns the K lowest eigenvalues of a qubit operator.
// K defaults to 1. With Symmetries set only the matching sector is
// diagonalized.
type ExactEigensolver struct {
	K          int
	Symmetries []Symmetry
	Logger     *zap.Logger
}

// Result holds eigenvalues in ascending order and, when requested, the
// ground state
type Result struct {
	Eigenvalues []float64
	GroundState []complex128
}

// Run diagonalizes op
func (e *ExactEigensolver) Run(op *qubit.Operator) (*Result, error) {
	n := op.NumQubits
	if n > MaxQubits {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyQubits, n, MaxQubits)
	}
	states, err := e.sector(n)
	if err != nil {
		return nil, err
	}
	dim := len(states)
	k := e.K
	if k <= 0 {
		k = 1
	}
	if k > dim {
		k = dim
	}
	re, im, err := dense(op, states)
	if err != nil {
		return nil, err
	}
	if err := checkHermitian(re, im, dim); err != nil {
		return nil, err
	}
	var (
		vals []float64
		sub  []complex128
	)
	if isZero(im) {
		sym := mat.NewSymDense(dim, nil)
		for i := 0; i < dim; i++ {
			for j := 0; j <= i; j++ {
				sym.SetSym(i, j, re.At(i, j))
			}
		}
		var eig mat.EigenSym
		if !eig.Factorize(sym, true) {
			return nil, ErrFactorize
		}
		vals = eig.Values(nil)
		var vecs mat.Dense
		eig.VectorsTo(&vecs)
		sub = make([]complex128, dim)
		for i := range sub {
			sub[i] = complex(vecs.At(i, 0), 0)
		}
	} else {
		// [Re -Im; Im Re] has every eigenvalue of H twice
		emb := mat.NewSymDense(2*dim, nil)
		for i := 0; i < dim; i++ {
			for j := 0; j <= i; j++ {
				emb.SetSym(i, j, re.At(i, j))
				emb.SetSym(i+dim, j+dim, re.At(i, j))
			}
			for j := 0; j < dim; j++ {
				emb.SetSym(i+dim, j, im.At(i, j))
			}
		}
		var eig mat.EigenSym
		if !eig.Factorize(emb, true) {
			return nil, ErrFactorize
		}
		all := eig.Values(nil)
		vals = make([]float64, 0, dim)
		for i := 0; i < len(all); i += 2 {
			vals = append(vals, all[i])
		}
		var vecs mat.Dense
		eig.VectorsTo(&vecs)
		col := mat.Col(nil, 0, &vecs)
		norm := math.Hypot(floats.Norm(col[:dim], 2), floats.Norm(col[dim:], 2))
		sub = make([]complex128, dim)
		for i := range sub {
			sub[i] = complex(col[i]/norm, col[i+dim]/norm)
		}
	}
	ground := make([]complex128, 1<<uint(n))
	for i, s := range states {
		ground[s] = sub[i]
	}
	if e.Logger != nil {
		e.Logger.Debug("exact diagonalization",
			zap.Int("qubits", n),
			zap.Int("sector dimension", dim),
			zap.Float64("lowest", vals[0]))
	}
	return &Result{Eigenvalues: vals[:k], GroundState: ground}, nil
}

// sector lists the basis states matching every symmetry, all 2^n of them
// without symmetries
func (e *ExactEigensolver) sector(n int) ([]int, error) {
	for _, s := range e.Symmetries {
		if s.Operator.NumQubits != n {
			return nil, fmt.Errorf("%w: %d qubits, operator has %d", ErrNotDiagonal, s.Operator.NumQubits, n)
		}
		for _, t := range s.Operator.Terms() {
			if t.Pauli.X != 0 {
				return nil, fmt.Errorf("%w: term %s", ErrNotDiagonal, t.Pauli.Label(n))
			}
		}
	}
	var states []int
	for k := 0; k < 1<<uint(n); k++ {
		keep := true
		for _, s := range e.Symmetries {
			if math.Abs(diagonal(s.Operator, uint64(k))-s.Value) > sectorTol {
				keep = false
				break
			}
		}
		if keep {
			states = append(states, k)
		}
	}
	if len(states) == 0 {
		return nil, ErrEmptySector
	}
	return states, nil
}

// diagonal is <k|op|k> for an operator of Z strings
func diagonal(op *qubit.Operator, k uint64) float64 {
	var v complex128
	for _, t := range op.Terms() {
		_, amp := t.Pauli.Apply(k)
		v += t.Coeff * amp
	}
	return real(v)
}

// dense builds the real and imaginary parts of the operator matrix over
// states
func dense(op *qubit.Operator, states []int) (re, im *mat.Dense, err error) {
	dim := len(states)
	pos := make(map[uint64]int, dim)
	for i, s := range states {
		pos[uint64(s)] = i
	}
	re = mat.NewDense(dim, dim, nil)
	im = mat.NewDense(dim, dim, nil)
	for _, t := range op.Terms() {
		for col, s := range states {
			row, amp := t.Pauli.Apply(uint64(s))
			v := t.Coeff * amp
			i, ok := pos[row]
			if !ok {
				if cmplx.Abs(v) > sectorTol {
					return nil, nil, fmt.Errorf("%w: %s", ErrSectorMixing, t.Pauli.Label(op.NumQubits))
				}
				continue
			}
			re.Set(i, col, re.At(i, col)+real(v))
			im.Set(i, col, im.At(i, col)+imag(v))
		}
	}
	return re, im, nil
}

func checkHermitian(re, im *mat.Dense, dim int) error {
	const tol = 1e-10
	for i := 0; i < dim; i++ {
		for j := 0; j <= i; j++ {
			if math.Abs(re.At(i, j)-re.At(j, i)) > tol || math.Abs(im.At(i, j)+im.At(j, i)) > tol {
				return fmt.Errorf("%w: element (%d, %d)", ErrNotHermitian, i, j)
			}
		}
	}
	return nil
}

func isZero(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}
