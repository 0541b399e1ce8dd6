// Package fermion implements second-quantized operators over spin-orbital
// modes, built from molecular integrals and reduced by freezing occupied
// modes or eliminating unoccupied ones.
package fermion

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ssangskriti/qiskit-tutorials/internal/chem"
	"gonum.org/v1/gonum/mat"
)

var ErrModeOutOfRange = errors.New("mode out of range")

// Ladder is a creation (Dagger) or annihilation operator on one mode
type Ladder struct {
	Mode   int
	Dagger bool
}

func Create(mode int) Ladder { return Ladder{Mode: mode, Dagger: true} }
func Annihilate(mode int) Ladder { return Ladder{Mode: mode} }

func (l Ladder) String() string {
	if l.Dagger {
		return "+_" + strconv.Itoa(l.Mode)
	}
	return "-_" + strconv.Itoa(l.Mode)
}

// Term is a coefficient times an ordered product of ladder operators.
// A term with no operators is a multiple of the identity.
type Term struct {
	Coeff float64
	Ops   []Ladder
}

func (t Term) key() string {
	parts := make([]string, len(t.Ops))
	for i, op := range t.Ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}

// Operator is a sum of terms over Modes spin-orbitals
type Operator struct {
	Modes int
	Terms []Term
}

func New(modes int) *Operator {
	return &Operator{Modes: modes}
}

// Add appends coeff times the product of ops
func (o *Operator) Add(coeff float64, ops ...Ladder) {
	o.Terms = append(o.Terms, Term{Coeff: coeff, Ops: append([]Ladder(nil), ops...)})
}

// Len is the number of stored terms
func (o *Operator) Len() int {
	return len(o.Terms)
}

// Sub returns o - other
func (o *Operator) Sub(other *Operator) *Operator {
	out := New(max(o.Modes, other.Modes))
	out.Terms = append(out.Terms, o.Terms...)
	for _, t := range other.Terms {
		out.Terms = append(out.Terms, Term{Coeff: -t.Coeff, Ops: t.Ops})
	}
	return out
}

// Adjoint returns the Hermitian conjugate; coefficients are real
func (o *Operator) Adjoint() *Operator {
	out := New(o.Modes)
	for _, t := range o.Terms {
		ops := make([]Ladder, len(t.Ops))
		for i, op := range t.Ops {
			ops[len(ops)-1-i] = Ladder{Mode: op.Mode, Dagger: !op.Dagger}
		}
		out.Terms = append(out.Terms, Term{Coeff: t.Coeff, Ops: ops})
	}
	return out
}

// Simplify merges terms with identical operator strings and drops those
// whose coefficient falls below threshold. The result is sorted by
// operator string.
func (o *Operator) Simplify(threshold float64) *Operator {
	sums := make(map[string]*Term)
	for _, t := range o.Terms {
		k := t.key()
		if s, ok := sums[k]; ok {
			s.Coeff += t.Coeff
			continue
		}
		sums[k] = &Term{Coeff: t.Coeff, Ops: t.Ops}
	}
	keys := make([]string, 0, len(sums))
	for k, t := range sums {
		if math.Abs(t.Coeff) > threshold {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := New(o.Modes)
	for _, k := range keys {
		out.Terms = append(out.Terms, *sums[k])
	}
	return out
}

// FromIntegrals builds
//
//	H = sum_pq h_pq a+_p a_q + 1/2 sum_pqrs (pq|rs) a+_p a+_r a_s a_q
//
// from spin-orbital integrals, skipping entries at or below threshold
func FromIntegrals(h1 *mat.Dense, h2 *chem.Tensor4, threshold float64) (*Operator, error) {
	n, c := h1.Dims()
	if n != c || h2.N != n {
		return nil, fmt.Errorf("integral dimensions %dx%d and %d disagree", n, c, h2.N)
	}
	op := New(n)
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			if v := h1.At(p, q); math.Abs(v) > threshold {
				op.Add(v, Create(p), Annihilate(q))
			}
		}
	}
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			for r := 0; r < n; r++ {
				if r == p {
					continue
				}
				for s := 0; s < n; s++ {
					if s == q {
						continue
					}
					if v := h2.At(p, q, r, s); math.Abs(v) > threshold {
						op.Add(0.5*v, Create(p), Create(r), Annihilate(s), Annihilate(q))
					}
				}
			}
		}
	}
	return op, nil
}

// Freeze projects the operator onto states with modes occupied and
// removes those modes. Terms left without operators are summed into the
// returned energy shift.
func (o *Operator) Freeze(modes []int) (*Operator, float64, error) {
	return o.project(modes, true)
}

// Eliminate projects the operator onto states with modes unoccupied and
// removes those modes. Constants stay in the operator as identity terms.
func (o *Operator) Eliminate(modes []int) (*Operator, error) {
	out, shift, err := o.project(modes, false)
	if err != nil {
		return nil, err
	}
	if shift != 0 {
		out.Terms = append(out.Terms, Term{Coeff: shift})
	}
	return out, nil
}

func (o *Operator) project(modes []int, occupied bool) (*Operator, float64, error) {
	selected := make(map[int]int, len(modes))
	for _, m := range modes {
		if m < 0 || m >= o.Modes {
			return nil, 0, fmt.Errorf("%w: %d of %d", ErrModeOutOfRange, m, o.Modes)
		}
		selected[m] = 0
	}
	// position of each selected mode in its own ordering
	sortedSel := make([]int, 0, len(selected))
	for m := range selected {
		sortedSel = append(sortedSel, m)
	}
	sort.Ints(sortedSel)
	for i, m := range sortedSel {
		selected[m] = i
	}
	var filled uint64
	if occupied {
		filled = 1<<uint(len(sortedSel)) - 1
	}
	out := New(o.Modes - len(sortedSel))
	var shift float64
	for _, t := range o.Terms {
		var block, kept []Ladder
		sign := 1.0
		for _, op := range t.Ops {
			if pos, ok := selected[op.Mode]; ok {
				// moving past every kept operator to its left
				if len(kept)%2 == 1 {
					sign = -sign
				}
				block = append(block, Ladder{Mode: pos, Dagger: op.Dagger})
				continue
			}
			kept = append(kept, Ladder{Mode: renumber(op.Mode, sortedSel), Dagger: op.Dagger})
		}
		value, ok := expectation(block, filled)
		if !ok {
			continue
		}
		// kept operators pass the JW string of the occupied selected modes
		if occupied && len(kept)%2 == 1 && len(sortedSel)%2 == 1 {
			sign = -sign
		}
		coeff := t.Coeff * sign * value
		if len(kept) == 0 {
			shift += coeff
			continue
		}
		out.Terms = append(out.Terms, Term{Coeff: coeff, Ops: kept})
	}
	return out, shift, nil
}

// expectation evaluates <state|ops|state> for an occupation bitmask,
// applying the operators right to left with Jordan-Wigner signs
func expectation(ops []Ladder, state uint64) (float64, bool) {
	cur := state
	value := 1.0
	for i := len(ops) - 1; i >= 0; i-- {
		bit := uint64(1) << uint(ops[i].Mode)
		occ := cur&bit != 0
		if occ == ops[i].Dagger {
			return 0, false
		}
		if popcount(cur&(bit-1))%2 == 1 {
			value = -value
		}
		cur ^= bit
	}
	if cur != state {
		return 0, false
	}
	return value, true
}

func renumber(mode int, removed []int) int {
	shift := sort.SearchInts(removed, mode)
	return mode - shift
}

func popcount(x uint64) int {
	n := 0
	for ; x != 0; x &= x - 1 {
		n++
	}
	return n
}
