// Package qubit holds Pauli-string operators, the fermion-to-qubit
// encodings and the particle-number two-qubit reduction.
package qubit

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// MaxQubits is the widest Pauli string a Pauli can hold
const MaxQubits = 64

var ErrBadLabel = errors.New("bad Pauli label")

// Pauli is a tensor product of single-qubit Pauli matrices stored as X
// and Z bit masks: bit q of X and Z set gives Y on qubit q
type Pauli struct {
	X, Z uint64
}

// Identity is the empty Pauli string
var Identity = Pauli{}

func SingleX(q int) Pauli { return Pauli{X: 1 << uint(q)} }
func SingleY(q int) Pauli { return Pauli{X: 1 << uint(q), Z: 1 << uint(q)} }
func SingleZ(q int) Pauli { return Pauli{Z: 1 << uint(q)} }

// code returns 0, 1, 2, 3 for I, X, Y, Z on qubit q
func (p Pauli) code(q int) int {
	x := p.X >> uint(q) & 1
	z := p.Z >> uint(q) & 1
	switch {
	case x == 1 && z == 1:
		return 2
	case x == 1:
		return 1
	case z == 1:
		return 3
	}
	return 0
}

// Mul returns the Pauli string p*q and its phase
func (p Pauli) Mul(q Pauli) (Pauli, complex128) {
	phase := complex(1, 0)
	for m := (p.X | p.Z) & (q.X | q.Z); m != 0; m &= m - 1 {
		i := bits.TrailingZeros64(m)
		a, b := p.code(i), q.code(i)
		if a == b {
			continue
		}
		if (b-a+3)%3 == 1 {
			phase *= 1i
		} else {
			phase *= -1i
		}
	}
	return Pauli{X: p.X ^ q.X, Z: p.Z ^ q.Z}, phase
}

// Commutes reports whether p and q commute
func (p Pauli) Commutes(q Pauli) bool {
	return (bits.OnesCount64(p.X&q.Z)+bits.OnesCount64(p.Z&q.X))%2 == 0
}

// Apply acts with p on the computational basis state k, returning the
// resulting basis state and its amplitude
func (p Pauli) Apply(k uint64) (uint64, complex128) {
	amp := ipow(bits.OnesCount64(p.X & p.Z))
	if bits.OnesCount64(k&p.Z)%2 == 1 {
		amp = -amp
	}
	return k ^ p.X, amp
}

// Weight is the number of non-identity factors
func (p Pauli) Weight() int {
	return bits.OnesCount64(p.X | p.Z)
}

func (p Pauli) IsIdentity() bool {
	return p.X == 0 && p.Z == 0
}

// Label writes p over n qubits with qubit 0 rightmost
func (p Pauli) Label(n int) string {
	var b strings.Builder
	for q := n - 1; q >= 0; q-- {
		b.WriteByte("IXYZ"[p.code(q)])
	}
	return b.String()
}

// ParsePauli reads a label written by Label
func ParsePauli(label string) (Pauli, error) {
	n := len(label)
	if n > MaxQubits {
		return Pauli{}, fmt.Errorf("%w: %d qubits", ErrBadLabel, n)
	}
	var p Pauli
	for i, c := range strings.ToUpper(label) {
		bit := uint64(1) << uint(n-1-i)
		switch c {
		case 'I':
		case 'X':
			p.X |= bit
		case 'Y':
			p.X |= bit
			p.Z |= bit
		case 'Z':
			p.Z |= bit
		default:
			return Pauli{}, fmt.Errorf("%w: %q", ErrBadLabel, label)
		}
	}
	return p, nil
}

func ipow(n int) complex128 {
	switch n % 4 {
	case 1:
		return 1i
	case 2:
		return -1
	case 3:
		return -1i
	}
	return 1
}
