package vqe

import (
	"math"
	"testing"

	"github.com/ssangskriti/qiskit-tutorials/internal/qubit"
	"github.com/stretchr/testify/assert"
)

func assertState(t *testing.T, want, got Statevector) {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return
	}
	for i := range want {
		assert.InDelta(t, real(want[i]), real(got[i]), 1e-12, "real part of %d", i)
		assert.InDelta(t, imag(want[i]), imag(got[i]), 1e-12, "imaginary part of %d", i)
	}
}

func TestExpPauli(t *testing.T) {
	s := NewStatevector(1, 0)
	s.ExpPauli(qubit.SingleX(0), math.Pi/2)
	assertState(t, Statevector{0, 1i}, s)

	s = NewStatevector(2, 0b01)
	s.ExpPauli(qubit.SingleZ(0), math.Pi/4)
	r := complex(math.Sqrt2/2, 0)
	assertState(t, Statevector{0, r - r*1i, 0, 0}, s)

	s = NewStatevector(1, 1)
	s.ExpPauli(qubit.Identity, math.Pi)
	assertState(t, Statevector{0, -1}, s)
}

func TestRY(t *testing.T) {
	s := NewStatevector(2, 0)
	s.RY(1, math.Pi)
	assertState(t, Statevector{0, 0, 1, 0}, s)
	s = NewStatevector(1, 0)
	s.RY(0, math.Pi/2)
	r := complex(math.Sqrt2/2, 0)
	assertState(t, Statevector{r, r}, s)
	assert.InDelta(t, 1, s.Norm(), 1e-12)
}

func TestCZ(t *testing.T) {
	s := Statevector{0.5, 0.5, 0.5, 0.5}
	s.CZ(0, 1)
	assertState(t, Statevector{0.5, 0.5, 0.5, -0.5}, s)
}
