package chem

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeometry(t *testing.T) {
	tests := []struct {
		name  string
		geom  string
		unit  Unit
		want  []string
		lastZ float64
	}{
		{"semicolons", "Li 0.0 0.0 0.0; H 0.0 0.0 1.6", Angstrom, []string{"Li", "H"}, 1.6 / Bohr},
		{"newlines", "li 0 0 0\nh 0 0 1.6\n", Angstrom, []string{"Li", "H"}, 1.6 / Bohr},
		{"bohr", "H 0 0 0; H 0 0 1.4", BohrUnit, []string{"H", "H"}, 1.4},
		{"xyz", "2\n\nH 0 0 0\nH 0 0 1.4", BohrUnit, []string{"H", "H"}, 1.4},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			atoms, err := ParseGeometry(test.geom, test.unit)
			require.NoError(t, err)
			var got []string
			for _, a := range atoms {
				got = append(got, a.Symbol)
			}
			assert.Equal(t, test.want, got)
			assert.InDelta(t, test.lastZ, atoms[len(atoms)-1].Coords[2], 1e-12)
		})
	}
}

func TestParseGeometryErrors(t *testing.T) {
	tests := []struct {
		geom string
		want error
	}{
		{"Xx 0 0 0", ErrUnknownElement},
		{"H 0 0", ErrBadGeometry},
		{"H 0 0 zero", ErrBadGeometry},
		{" ; ", ErrBadGeometry},
		{"1\ncomment", ErrBadGeometry},
	}
	for _, test := range tests {
		_, err := ParseGeometry(test.geom, Angstrom)
		if !errors.Is(err, test.want) {
			t.Errorf("%q: got %v, wanted %v", test.geom, err, test.want)
		}
	}
}

func TestReadXYZ(t *testing.T) {
	atoms, err := ReadXYZ("testfiles/geom.xyz")
	require.NoError(t, err)
	require.Len(t, atoms, 3)
	assert.Equal(t, 8, atoms[1].Z)
	assert.InDelta(t, 0.7574590974/Bohr, atoms[0].Coords[1], 1e-12)
}

func TestNumAlphaBeta(t *testing.T) {
	mol, err := NewMolecule("O 0 0 0; H 0 0 1", Angstrom, "sto3g", 0, 1)
	require.NoError(t, err)
	a, b, err := mol.NumAlphaBeta()
	require.NoError(t, err)
	assert.Equal(t, 5, a)
	assert.Equal(t, 4, b)

	_, err = NewMolecule("H 0 0 0; H 0 0 0.735", Angstrom, "sto3g", 0, 1)
	assert.ErrorIs(t, err, ErrSpinMismatch)
	_, err = NewMolecule("H 0 0 0", Angstrom, "sto3g", 1, 0)
	assert.ErrorIs(t, err, ErrSpinMismatch)
}

func TestNuclearRepulsion(t *testing.T) {
	mol, err := NewMolecule("Li 0.0 0.0 0.0; H 0.0 0.0 1.6", Angstrom, "sto3g", 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.99220727047, mol.NuclearRepulsion(), 1e-9)
	assert.Equal(t, 4, mol.NumElectrons())
	if got := h2(t).NuclearRepulsion(); math.Abs(got-1/(0.735/Bohr)) > 1e-12 {
		t.Errorf("got %g for H2", got)
	}
}
