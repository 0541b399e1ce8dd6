package qubit

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strings"
)

// Term is one weighted Pauli string
type Term struct {
	Pauli Pauli
	Coeff complex128
}

// Operator is a weighted sum of Pauli strings over NumQubits qubits
type Operator struct {
	NumQubits int
	terms     map[Pauli]complex128
}

func NewOperator(numQubits int) *Operator {
	return &Operator{NumQubits: numQubits, terms: make(map[Pauli]complex128)}
}

// Add accumulates c*p
func (o *Operator) Add(p Pauli, c complex128) {
	o.terms[p] += c
}

// AddOperator accumulates c*other
func (o *Operator) AddOperator(other *Operator, c complex128) {
	for p, v := range other.terms {
		o.terms[p] += c * v
	}
}

// Mul returns the product o*other
func (o *Operator) Mul(other *Operator) *Operator {
	out := NewOperator(max(o.NumQubits, other.NumQubits))
	for p, a := range o.terms {
		for q, b := range other.terms {
			r, phase := p.Mul(q)
			out.terms[r] += phase * a * b
		}
	}
	return out
}

// Coeff is the coefficient of p, zero when absent
func (o *Operator) Coeff(p Pauli) complex128 {
	return o.terms[p]
}

func (o *Operator) Len() int {
	return len(o.terms)
}

// Chop zeroes real and imaginary parts at or below threshold and drops
// terms that become zero
func (o *Operator) Chop(threshold float64) *Operator {
	out := NewOperator(o.NumQubits)
	for p, c := range o.terms {
		re, im := real(c), imag(c)
		if math.Abs(re) <= threshold {
			re = 0
		}
		if math.Abs(im) <= threshold {
			im = 0
		}
		if re != 0 || im != 0 {
			out.terms[p] = complex(re, im)
		}
	}
	return out
}

// Terms lists the terms ordered by label
func (o *Operator) Terms() []Term {
	out := make([]Term, 0, len(o.terms))
	for p, c := range o.terms {
		out = append(out, Term{Pauli: p, Coeff: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pauli.X != out[j].Pauli.X {
			return out[i].Pauli.X < out[j].Pauli.X
		}
		return out[i].Pauli.Z < out[j].Pauli.Z
	})
	return out
}

// IsReal reports whether every coefficient is real within tol
func (o *Operator) IsReal(tol float64) bool {
	for _, c := range o.terms {
		if math.Abs(imag(c)) > tol {
			return false
		}
	}
	return true
}

// Equal reports whether o and other agree term by term within tol
func (o *Operator) Equal(other *Operator, tol float64) bool {
	if o.NumQubits != other.NumQubits {
		return false
	}
	for p, c := range o.terms {
		if cmplx.Abs(c-other.terms[p]) > tol {
			return false
		}
	}
	for p, c := range other.terms {
		if _, ok := o.terms[p]; !ok && cmplx.Abs(c) > tol {
			return false
		}
	}
	return true
}

// Apply returns o|psi> for a statevector over NumQubits qubits
func (o *Operator) Apply(psi []complex128) []complex128 {
	out := make([]complex128, len(psi))
	for p, c := range o.terms {
		for k, a := range psi {
			if a == 0 {
				continue
			}
			j, amp := p.Apply(uint64(k))
			out[j] += c * amp * a
		}
	}
	return out
}

// Expectation returns the real part of <psi|o|psi>
func (o *Operator) Expectation(psi []complex128) float64 {
	var e complex128
	for k, v := range o.Apply(psi) {
		e += cmplx.Conj(psi[k]) * v
	}
	return real(e)
}

func (o *Operator) String() string {
	var b strings.Builder
	for _, t := range o.Terms() {
		fmt.Fprintf(&b, "%s\t%s\n", t.Pauli.Label(o.NumQubits), formatCoeff(t.Coeff))
	}
	return b.String()
}

func formatCoeff(c complex128) string {
	if imag(c) == 0 {
		return fmt.Sprintf("%.12f", real(c))
	}
	return fmt.Sprintf("(%.12f%+.12fj)", real(c), imag(c))
}
