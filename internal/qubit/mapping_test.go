package qubit

import (
	"fmt"
	"math/cmplx"
	"testing"

	"github.com/ssangskriti/qiskit-tutorials/internal/fermion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mappings = []Mapping{JordanWigner{}, Parity{}, BravyiKitaev{}}

func anticommutator(a, b *Operator) *Operator {
	out := a.Mul(b)
	out.AddOperator(b.Mul(a), 1)
	return out.Chop(1e-12)
}

func TestAnticommutation(t *testing.T) {
	for _, m := range mappings {
		for _, n := range []int{3, 4, 6} {
			t.Run(fmt.Sprintf("%s/%d", m.Name(), n), func(t *testing.T) {
				ann, cre := ladders(m, n)
				for i := 0; i < n; i++ {
					for j := 0; j < n; j++ {
						want := NewOperator(n)
						if i == j {
							want.Add(Identity, 1)
						}
						got := anticommutator(ann[i], cre[j])
						assert.True(t, want.Equal(got, 1e-12), "{a_%d, a+_%d} = %v", i, j, got)
						got = anticommutator(ann[i], ann[j])
						assert.Zero(t, got.Len(), "{a_%d, a_%d} = %v", i, j, got)
					}
				}
			})
		}
	}
}

// creating the occupied modes on the vacuum lands on the encoded state
func TestEncode(t *testing.T) {
	const n = 5
	for _, m := range mappings {
		_, cre := ladders(m, n)
		for occ := uint64(0); occ < 1<<n; occ++ {
			psi := make([]complex128, 1<<n)
			psi[Encode(m, 0, n)] = 1
			for j := n - 1; j >= 0; j-- {
				if occ>>uint(j)&1 == 1 {
					psi = cre[j].Apply(psi)
				}
			}
			want := Encode(m, occ, n)
			assert.InDelta(t, 1, cmplx.Abs(psi[want]), 1e-12, "%s occ %05b", m.Name(), occ)
		}
	}
}

func TestEncodeParity(t *testing.T) {
	assert.Equal(t, uint64(0b0011), Encode(Parity{}, 0b0101, 4))
	assert.Equal(t, uint64(0b0101), Encode(JordanWigner{}, 0b0101, 4))
	// qubit 1 holds modes 0 and 1, qubit 3 holds all four
	assert.Equal(t, uint64(0b1011), Encode(BravyiKitaev{}, 0b0001, 4))
}

func TestMappingByName(t *testing.T) {
	for _, name := range []string{"jordan_wigner", "parity", "bravyi_kitaev"} {
		m, err := MappingByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, m.Name())
	}
	m, err := MappingByName("Bravyi-Kitaev")
	require.NoError(t, err)
	assert.Equal(t, BravyiKitaev{}, m)
	_, err = MappingByName("ternary")
	assert.ErrorIs(t, err, ErrUnknownMapping)
}

func TestMapNumber(t *testing.T) {
	for _, m := range mappings {
		got, err := Map(m, fermion.Number(4), 1e-12)
		require.NoError(t, err)
		// the number operator is diagonal with eigenvalue popcount(occ)
		for occ := uint64(0); occ < 16; occ++ {
			psi := make([]complex128, 16)
			psi[Encode(m, occ, 4)] = 1
			want := float64(popcount(occ))
			assert.InDelta(t, want, got.Expectation(psi), 1e-12, "%s occ %04b", m.Name(), occ)
		}
	}
}

func TestMapDeterministic(t *testing.T) {
	op := fermion.DoubleExcitation(4, 0, 2, 1, 3)
	a, err := Map(Parity{}, op, 1e-12)
	require.NoError(t, err)
	b, err := Map(Parity{}, op, 1e-12)
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, a.Terms(), b.Terms())
}

func TestMapModeRange(t *testing.T) {
	op := fermion.New(2)
	op.Add(1, fermion.Create(2))
	_, err := Map(JordanWigner{}, op, 0)
	assert.ErrorIs(t, err, fermion.ErrModeOutOfRange)
}

func popcount(x uint64) int {
	n := 0
	for ; x != 0; x &= x - 1 {
		n++
	}
	return n
}
