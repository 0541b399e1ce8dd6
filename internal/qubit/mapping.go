package qubit

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/ssangskriti/qiskit-tutorials/internal/fermion"
)

var (
	ErrUnknownMapping = errors.New("unknown qubit mapping")
	ErrTooManyModes   = errors.New("too many modes for a Pauli string")
)

// Mapping is a fermion-to-qubit encoding over n modes. Mode j maps to
// a_j = (A + iB)/2 and a+_j = (A - iB)/2 for the Pauli strings A, B
// returned by Majorana.
type Mapping interface {
	Name() string
	Majorana(j, n int) (a, b Pauli)
	// Update lists the qubits other than j whose value flips with the
	// occupation of mode j
	Update(j, n int) []int
}

// MappingByName returns the encoding called name: jordan_wigner, parity
// or bravyi_kitaev
func MappingByName(name string) (Mapping, error) {
	switch strings.ReplaceAll(strings.ToLower(name), "-", "_") {
	case "jordan_wigner", "jw":
		return JordanWigner{}, nil
	case "parity":
		return Parity{}, nil
	case "bravyi_kitaev", "bk":
		return BravyiKitaev{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMapping, name)
}

// JordanWigner stores each occupation number on its own qubit
type JordanWigner struct{}

func (JordanWigner) Name() string { return "jordan_wigner" }

func (JordanWigner) Majorana(j, _ int) (Pauli, Pauli) {
	below := uint64(1)<<uint(j) - 1
	bit := uint64(1) << uint(j)
	return Pauli{X: bit, Z: below}, Pauli{X: bit, Z: below | bit}
}

func (JordanWigner) Update(int, int) []int { return nil }

// Parity stores the parity of modes 0..j on qubit j
type Parity struct{}

func (Parity) Name() string { return "parity" }

func (Parity) Majorana(j, n int) (Pauli, Pauli) {
	bit := uint64(1) << uint(j)
	above := mask(n) &^ (bit<<1 - 1)
	a := Pauli{X: bit | above}
	if j > 0 {
		a.Z = bit >> 1
	}
	return a, Pauli{X: bit | above, Z: bit}
}

func (Parity) Update(j, n int) []int {
	out := make([]int, 0, n-j-1)
	for q := j + 1; q < n; q++ {
		out = append(out, q)
	}
	return out
}

// BravyiKitaev stores partial sums of occupation numbers on a binary
// tree, built on the next power of two and truncated to n
type BravyiKitaev struct{}

func (BravyiKitaev) Name() string { return "bravyi_kitaev" }

func (BravyiKitaev) Majorana(j, n int) (Pauli, Pauli) {
	size := nextPow2(n)
	update := setMask(updateSet(j, size), n)
	parity := setMask(paritySet(j, size), n)
	remainder := parity &^ setMask(flipSet(j, size), n)
	bit := uint64(1) << uint(j)
	return Pauli{X: update | bit, Z: parity}, Pauli{X: update | bit, Z: remainder | bit}
}

func (BravyiKitaev) Update(j, n int) []int {
	var out []int
	for _, q := range updateSet(j, nextPow2(n)) {
		if q < n {
			out = append(out, q)
		}
	}
	return out
}

// updateSet, paritySet and flipSet are the Bravyi-Kitaev index sets of
// mode j in a tree of size n, a power of two
func updateSet(j, n int) []int {
	if n%2 != 0 {
		return nil
	}
	h := n / 2
	if j < h {
		return append([]int{n - 1}, updateSet(j, h)...)
	}
	return shift(updateSet(j-h, h), h)
}

func paritySet(j, n int) []int {
	if n%2 != 0 {
		return nil
	}
	h := n / 2
	if j < h {
		return paritySet(j, h)
	}
	return append(shift(paritySet(j-h, h), h), h-1)
}

func flipSet(j, n int) []int {
	if n%2 != 0 {
		return nil
	}
	h := n / 2
	switch {
	case j < h:
		return flipSet(j, h)
	case j < n-1:
		return shift(flipSet(j-h, h), h)
	}
	return append(shift(flipSet(j-h, h), h), h-1)
}

func shift(s []int, by int) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[i] = v + by
	}
	return out
}

func setMask(s []int, n int) uint64 {
	var m uint64
	for _, q := range s {
		if q < n {
			m |= 1 << uint(q)
		}
	}
	return m
}

func mask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// ladders returns the qubit images of a_j and a+_j for every mode
func ladders(m Mapping, n int) (ann, cre []*Operator) {
	ann = make([]*Operator, n)
	cre = make([]*Operator, n)
	for j := 0; j < n; j++ {
		a, b := m.Majorana(j, n)
		ann[j] = NewOperator(n)
		ann[j].Add(a, 0.5)
		ann[j].Add(b, 0.5i)
		cre[j] = NewOperator(n)
		cre[j].Add(a, 0.5)
		cre[j].Add(b, -0.5i)
	}
	return ann, cre
}

// Map encodes op on qubits with m, dropping terms whose coefficient
// magnitude is at or below threshold
func Map(m Mapping, op *fermion.Operator, threshold float64) (*Operator, error) {
	n := op.Modes
	if n > MaxQubits {
		return nil, fmt.Errorf("%w: %d", ErrTooManyModes, n)
	}
	ann, cre := ladders(m, n)
	out := NewOperator(n)
	for _, t := range op.Terms {
		prod := NewOperator(n)
		prod.Add(Identity, 1)
		for _, l := range t.Ops {
			if l.Mode < 0 || l.Mode >= n {
				return nil, fmt.Errorf("%w: %d of %d", fermion.ErrModeOutOfRange, l.Mode, n)
			}
			if l.Dagger {
				prod = prod.Mul(cre[l.Mode])
			} else {
				prod = prod.Mul(ann[l.Mode])
			}
		}
		out.AddOperator(prod, complex(t.Coeff, 0))
	}
	return out.Chop(threshold), nil
}

// Encode returns the qubit basis state of the occupation bitmask occ
func Encode(m Mapping, occ uint64, n int) uint64 {
	state := occ
	for j := 0; j < n; j++ {
		if occ>>uint(j)&1 == 0 {
			continue
		}
		for _, q := range m.Update(j, n) {
			state ^= 1 << uint(q)
		}
	}
	return state
}
