package vqe

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ssangskriti/qiskit-tutorials/internal/fermion"
	"github.com/ssangskriti/qiskit-tutorials/internal/hamiltonian"
	"github.com/ssangskriti/qiskit-tutorials/internal/qubit"
	"gonum.org/v1/gonum/stat/combin"
)

var (
	ErrUnknownAnsatz    = errors.New("unknown ansatz")
	ErrNotAntiHermitian = errors.New("excitation generator is not anti-Hermitian")
)

// Ansatz prepares a trial state from a parameter vector
type Ansatz interface {
	NumParameters() int
	Prepare(params []float64) Statevector
}

// Excitation lists the occupied then unoccupied spin-orbitals of a single
// (two entries) or double (four entries) excitation
type Excitation []int

func (e Excitation) generator(modes int) *fermion.Operator {
	if len(e) == 2 {
		return fermion.SingleExcitation(modes, e[0], e[1])
	}
	return fermion.DoubleExcitation(modes, e[0], e[1], e[2], e[3])
}

// rotation is exp(i theta w P) for each term of one mapped generator
type rotation struct {
	pauli  qubit.Pauli
	weight float64
}

// UCCSD is the unitary coupled-cluster ansatz with singles and doubles,
// one Trotter step per repetition, applied to the Hartree-Fock state.
// With no excitations it has no parameters and prepares the
// Hartree-Fock state itself.
type UCCSD struct {
	Excitations []Excitation
	Depth       int
	numQubits   int
	initial     uint64
	rotations   [][]rotation
}

// UCCSDOptions restricts the excitations. Active orbitals are spatial
// indices relative to the first occupied and the first unoccupied
// orbital; an empty list means all of them.
type UCCSDOptions struct {
	Depth            int
	ActiveOccupied   []int
	ActiveUnoccupied []int
	// SameSpinDoubles adds alpha-alpha and beta-beta doubles
	SameSpinDoubles bool
}

// NewUCCSD builds the excitations of the reduced problem in res and maps
// their generators through the same encoding and tapering
func NewUCCSD(res *hamiltonian.Result, opts UCCSDOptions) (*UCCSD, error) {
	modes := res.NumSpinOrbitals
	half := modes / 2
	occA, err := active(opts.ActiveOccupied, res.NumAlpha, 0)
	if err != nil {
		return nil, err
	}
	occB, err := active(opts.ActiveOccupied, res.NumBeta, half)
	if err != nil {
		return nil, err
	}
	virA, err := active(opts.ActiveUnoccupied, half-res.NumAlpha, res.NumAlpha)
	if err != nil {
		return nil, err
	}
	virB, err := active(opts.ActiveUnoccupied, half-res.NumBeta, half+res.NumBeta)
	if err != nil {
		return nil, err
	}
	exc := Excitations(occA, virA, occB, virB, opts.SameSpinDoubles)
	u := &UCCSD{
		Excitations: exc,
		Depth:       max(opts.Depth, 1),
		numQubits:   res.NumQubits(),
		initial:     res.HartreeFockState(),
	}
	for _, e := range exc {
		q, err := res.Map(e.generator(modes))
		if err != nil {
			return nil, fmt.Errorf("mapping excitation %v: %w", e, err)
		}
		var rot []rotation
		for _, t := range q.Terms() {
			if math.Abs(real(t.Coeff)) > 1e-10 {
				return nil, fmt.Errorf("%w: %v", ErrNotAntiHermitian, e)
			}
			rot = append(rot, rotation{pauli: t.Pauli, weight: imag(t.Coeff)})
		}
		u.rotations = append(u.rotations, rot)
	}
	return u, nil
}

// Excitations enumerates spin-preserving singles, alpha-beta doubles and
// optionally same-spin doubles
func Excitations(occA, virA, occB, virB []int, sameSpin bool) []Excitation {
	var out []Excitation
	for _, sector := range [][2][]int{{occA, virA}, {occB, virB}} {
		for _, i := range sector[0] {
			for _, a := range sector[1] {
				out = append(out, Excitation{i, a})
			}
		}
	}
	for _, i := range occA {
		for _, a := range virA {
			for _, j := range occB {
				for _, b := range virB {
					out = append(out, Excitation{i, j, a, b})
				}
			}
		}
	}
	if !sameSpin {
		return out
	}
	for _, sector := range [][2][]int{{occA, virA}, {occB, virB}} {
		occ, vir := sector[0], sector[1]
		if len(occ) < 2 || len(vir) < 2 {
			continue
		}
		for _, ij := range combin.Combinations(len(occ), 2) {
			for _, ab := range combin.Combinations(len(vir), 2) {
				out = append(out, Excitation{occ[ij[0]], occ[ij[1]], vir[ab[0]], vir[ab[1]]})
			}
		}
	}
	return out
}

// active maps relative orbital indices onto spin-orbitals offset..offset+n-1
func active(rel []int, n, offset int) ([]int, error) {
	if len(rel) == 0 {
		out := make([]int, n)
		for i := range out {
			out[i] = offset + i
		}
		return out, nil
	}
	out := make([]int, 0, len(rel))
	for _, r := range rel {
		if r < -n || r >= n {
			return nil, fmt.Errorf("%w: active index %d of %d", hamiltonian.ErrIndexOutOfRange, r, n)
		}
		if r < 0 {
			r += n
		}
		out = append(out, offset+r)
	}
	return out, nil
}

func (u *UCCSD) NumParameters() int {
	return u.Depth * len(u.Excitations)
}

func (u *UCCSD) Prepare(params []float64) Statevector {
	s := NewStatevector(u.numQubits, u.initial)
	for d := 0; d < u.Depth; d++ {
		for i, rot := range u.rotations {
			theta := params[d*len(u.rotations)+i]
			if theta == 0 {
				continue
			}
			for _, r := range rot {
				s.ExpPauli(r.pauli, theta*r.weight)
			}
		}
	}
	return s
}

// RY is a hardware-efficient ansatz: a layer of RY rotations followed by
// Depth blocks of a linear CZ chain and another RY layer
type RY struct {
	NumQubits int
	Depth     int
	Initial   uint64
}

func (r *RY) NumParameters() int {
	return r.NumQubits * (r.Depth + 1)
}

func (r *RY) Prepare(params []float64) Statevector {
	s := NewStatevector(r.NumQubits, r.Initial)
	for q := 0; q < r.NumQubits; q++ {
		s.RY(q, params[q])
	}
	for d := 1; d <= r.Depth; d++ {
		for q := 0; q+1 < r.NumQubits; q++ {
			s.CZ(q, q+1)
		}
		for q := 0; q < r.NumQubits; q++ {
			s.RY(q, params[d*r.NumQubits+q])
		}
	}
	return s
}

// NewAnsatz picks an ansatz by name for the problem in res
func NewAnsatz(name string, res *hamiltonian.Result, opts UCCSDOptions) (Ansatz, error) {
	switch strings.ToLower(name) {
	case "", "uccsd":
		u, err := NewUCCSD(res, opts)
		if err != nil {
			return nil, err
		}
		return u, nil
	case "ry":
		return &RY{NumQubits: res.NumQubits(), Depth: max(opts.Depth, 1), Initial: res.HartreeFockState()}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAnsatz, name)
}
