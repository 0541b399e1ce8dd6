package vqe

import (
	"math"

	"github.com/ssangskriti/qiskit-tutorials/internal/qubit"
)

// Statevector is a little-endian amplitude vector: bit q of the index is
// qubit q
type Statevector []complex128

// NewStatevector returns the basis state |basis> over n qubits
func NewStatevector(n int, basis uint64) Statevector {
	s := make(Statevector, 1<<uint(n))
	s[basis] = 1
	return s
}

// ExpPauli applies exp(i phi P)
func (s Statevector) ExpPauli(p qubit.Pauli, phi float64) {
	c, sn := math.Cos(phi), math.Sin(phi)
	if p.IsIdentity() {
		ph := complex(c, sn)
		for k := range s {
			s[k] *= ph
		}
		return
	}
	out := make(Statevector, len(s))
	for k, a := range s {
		if a == 0 {
			continue
		}
		out[k] += complex(c, 0) * a
		j, amp := p.Apply(uint64(k))
		out[j] += complex(0, sn) * amp * a
	}
	copy(s, out)
}

// RY rotates qubit q by theta about Y
func (s Statevector) RY(q int, theta float64) {
	c, sn := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	bit := 1 << uint(q)
	for k := range s {
		if k&bit != 0 {
			continue
		}
		a0, a1 := s[k], s[k|bit]
		s[k] = c*a0 - sn*a1
		s[k|bit] = sn*a0 + c*a1
	}
}

// CZ flips the sign of amplitudes with qubits a and b both set
func (s Statevector) CZ(a, b int) {
	m := 1<<uint(a) | 1<<uint(b)
	for k := range s {
		if k&m == m {
			s[k] = -s[k]
		}
	}
}

// Norm is the 2-norm
func (s Statevector) Norm() float64 {
	var n float64
	for _, a := range s {
		n += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(n)
}
