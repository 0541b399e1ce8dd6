package chem

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBoys(t *testing.T) {
	assert.InDelta(t, 1, boys(0, 0), 1e-14)
	assert.InDelta(t, 1.0/3, boys(1, 0), 1e-14)
	// F_0(t) = sqrt(pi/t) erf(sqrt(t)) / 2
	for _, x := range []float64{1e-6, 0.5, 1, 10, 40} {
		want := 0.5 * math.Sqrt(math.Pi/x) * math.Erf(math.Sqrt(x))
		assert.InDelta(t, want, boys(0, x), 1e-10, "t=%g", x)
	}
}

func TestBuildBasis(t *testing.T) {
	tests := []struct {
		geom string
		want int
	}{
		{"H 0 0 0; H 0 0 0.735", 2},
		{"Li 0 0 0; H 0 0 1.6", 6},
		{"O 0 0 0; H 0 0.757 0.587; H 0 -0.757 0.587", 7},
	}
	for _, test := range tests {
		mol, err := NewMolecule(test.geom, Angstrom, "STO-3G", 0, 0)
		require.NoError(t, err)
		basis, err := BuildBasis(mol)
		require.NoError(t, err)
		assert.Len(t, basis, test.want, test.geom)
		s := Overlap(basis)
		for i := range basis {
			assert.InDelta(t, 1, s.At(i, i), 1e-10, "%s: function %d", test.geom, i)
		}
	}
	mol := &Molecule{Atoms: []Atom{{Symbol: "H", Z: 1}}, Basis: "cc-pvdz"}
	_, err := BuildBasis(mol)
	assert.ErrorIs(t, err, ErrUnknownBasis)
	mol = &Molecule{Atoms: []Atom{{Symbol: "Na", Z: 11}}, Basis: "sto3g"}
	_, err = BuildBasis(mol)
	assert.ErrorIs(t, err, ErrUnknownBasis)
}

// H2 at 1.4 bohr, as tabulated by Szabo and Ostlund
func TestH2Integrals(t *testing.T) {
	mol, err := NewMolecule("H 0 0 0; H 0 0 1.4", BohrUnit, "sto3g", 0, 0)
	require.NoError(t, err)
	basis, err := BuildBasis(mol)
	require.NoError(t, err)
	const tol = 1e-4
	s := Overlap(basis)
	assert.InDelta(t, 0.6593, s.At(0, 1), tol)
	kin := Kinetic(basis)
	assert.InDelta(t, 0.7600, kin.At(0, 0), tol)
	assert.InDelta(t, 0.2365, kin.At(0, 1), tol)
	v := Nuclear(basis, mol.Atoms)
	assert.InDelta(t, -1.1204, kin.At(0, 0)+v.At(0, 0), tol)
	assert.InDelta(t, -0.9584, kin.At(0, 1)+v.At(0, 1), tol)

	eri, err := Repulsion(context.Background(), basis)
	require.NoError(t, err)
	assert.InDelta(t, 0.7746, eri.At(0, 0, 0, 0), tol)
	assert.InDelta(t, 0.5697, eri.At(0, 0, 1, 1), tol)
	assert.InDelta(t, 0.4441, eri.At(1, 0, 0, 0), tol)
	assert.InDelta(t, 0.2970, eri.At(1, 0, 1, 0), tol)
	// eightfold symmetry
	assert.Equal(t, eri.At(1, 0, 0, 0), eri.At(0, 0, 0, 1))
	assert.Equal(t, eri.At(1, 0, 0, 0), eri.At(0, 1, 0, 0))
}

func TestPIntegralsSymmetric(t *testing.T) {
	mol, err := NewMolecule("Li 0 0 0; H 0 0 1.6", Angstrom, "sto3g", 0, 0)
	require.NoError(t, err)
	basis, err := BuildBasis(mol)
	require.NoError(t, err)
	s := Overlap(basis)
	// px and py are orthogonal to everything on the z axis but themselves
	for i := range basis {
		if i != 2 {
			assert.InDelta(t, 0, s.At(2, i), 1e-14)
		}
	}
	assert.Greater(t, math.Abs(s.At(4, 5)), 0.1)
}

func TestRepulsionCancelled(t *testing.T) {
	mol, err := NewMolecule("Li 0 0 0; H 0 0 1.6", Angstrom, "sto3g", 0, 0)
	require.NoError(t, err)
	basis, err := BuildBasis(mol)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Repulsion(ctx, basis)
	assert.ErrorIs(t, err, context.Canceled)
}
