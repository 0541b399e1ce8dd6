package qubit

import (
	"testing"

	"github.com/ssangskriti/qiskit-tutorials/internal/fermion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaperNumber(t *testing.T) {
	op, err := Map(Parity{}, fermion.Number(4), 1e-12)
	require.NoError(t, err)
	r, err := NewTwoQubitReduction(4, 1, 1)
	require.NoError(t, err)
	got, err := r.Taper(op)
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumQubits)

	// alpha mode 0 and beta mode 2 occupied
	full := Encode(Parity{}, 0b0101, 4)
	assert.Equal(t, uint64(0b0011), full)
	state := r.TaperState(full)
	assert.Equal(t, uint64(0b01), state)
	psi := make([]complex128, 4)
	psi[state] = 1
	assert.InDelta(t, 2, got.Expectation(psi), 1e-12)
}

func TestTaperSymmetryBroken(t *testing.T) {
	op := fermion.New(4)
	op.Add(1, fermion.Annihilate(0))
	q, err := Map(Parity{}, op, 1e-12)
	require.NoError(t, err)
	r, err := NewTwoQubitReduction(4, 1, 1)
	require.NoError(t, err)
	_, err = r.Taper(q)
	assert.ErrorIs(t, err, ErrSymmetryBroken)
}

func TestSqueeze(t *testing.T) {
	r := &TwoQubitReduction{NumQubits: 6}
	// qubits 2 and 5 go, 0 1 3 4 remain
	assert.Equal(t, uint64(0b1111), r.TaperState(0b011011))
	assert.Equal(t, uint64(0b0100), r.TaperState(0b101100))
}

func TestNewTwoQubitReduction(t *testing.T) {
	_, err := NewTwoQubitReduction(5, 1, 1)
	assert.ErrorIs(t, err, ErrOddQubits)
}
