package hamiltonian

import (
	"context"
	"testing"

	"github.com/ssangskriti/qiskit-tutorials/internal/chem"
	"github.com/ssangskriti/qiskit-tutorials/internal/qubit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func scf(t *testing.T, geom string) *chem.MolecularData {
	t.Helper()
	mol, err := chem.NewMolecule(geom, chem.Angstrom, "sto3g", 0, 0)
	require.NoError(t, err)
	data, err := (&chem.SCFDriver{}).Run(context.Background(), mol)
	require.NoError(t, err)
	return data
}

func hfExpectation(res *Result) float64 {
	psi := make([]complex128, 1<<uint(res.NumQubits()))
	psi[res.HartreeFockState()] = 1
	return res.Operator.Expectation(psi)
}

func TestBuildH2(t *testing.T) {
	data := scf(t, "H 0.0 0.0 0.0; H 0.0 0.0 0.735")
	b := &Builder{Mapping: qubit.Parity{}, TwoQubitReduction: true, Logger: zaptest.NewLogger(t)}
	res, err := b.Build(data, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.NumQubits())
	assert.Equal(t, 4, res.NumSpinOrbitals)
	// II, IZ, ZI, ZZ, XX
	assert.Equal(t, 5, res.Operator.Len())
	assert.True(t, res.Operator.IsReal(1e-12))
	assert.Zero(t, res.EnergyShift)
	assert.InDelta(t, -1.116998996754, hfExpectation(res)+data.NuclearRepulsion, 1e-6)
}

func TestBuildLiH(t *testing.T) {
	data := scf(t, "Li 0.0 0.0 0.0; H 0.0 0.0 1.6")
	b := &Builder{Mapping: qubit.Parity{}, TwoQubitReduction: true, Logger: zaptest.NewLogger(t)}
	res, err := b.Build(data, []int{0}, []int{-3, -2})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 6}, res.Indices.Freeze)
	assert.Equal(t, []int{2, 3, 7, 8}, res.Indices.Remove)
	assert.Equal(t, data.NumSpinOrbitals()-len(res.Indices.Freeze)-len(res.Indices.Remove), res.NumSpinOrbitals)
	assert.Equal(t, 6, res.NumSpinOrbitals)
	assert.Equal(t, 4, res.NumQubits())
	assert.Equal(t, 2, res.NumParticles())
	assert.Less(t, res.EnergyShift, -7.0)

	got := hfExpectation(res) + res.EnergyShift + data.NuclearRepulsion
	assert.InDelta(t, -7.861864769808, got, 1e-6)
	assert.InDelta(t, data.HFEnergy, got, 1e-8)
}

func TestBuildMappingsAgree(t *testing.T) {
	data := scf(t, "Li 0.0 0.0 0.0; H 0.0 0.0 1.6")
	for _, m := range []qubit.Mapping{qubit.JordanWigner{}, qubit.Parity{}, qubit.BravyiKitaev{}} {
		t.Run(m.Name(), func(t *testing.T) {
			b := &Builder{Mapping: m}
			res, err := b.Build(data, []int{0}, []int{-3, -2})
			require.NoError(t, err)
			assert.Equal(t, 6, res.NumQubits())
			assert.Nil(t, res.Reduction)
			got := hfExpectation(res) + res.EnergyShift + data.NuclearRepulsion
			assert.InDelta(t, data.HFEnergy, got, 1e-8)
		})
	}
}

func TestBuildReductionNeedsParity(t *testing.T) {
	data := scf(t, "H 0.0 0.0 0.0; H 0.0 0.0 0.735")
	b := &Builder{Mapping: qubit.JordanWigner{}, TwoQubitReduction: true}
	res, err := b.Build(data, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Reduction)
	assert.Equal(t, 4, res.NumQubits())
}

func TestBuildDeterministic(t *testing.T) {
	data := scf(t, "H 0.0 0.0 0.0; H 0.0 0.0 0.735")
	b := &Builder{TwoQubitReduction: true}
	first, err := b.Build(data, nil, nil)
	require.NoError(t, err)
	second, err := b.Build(data, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, first.Operator.String(), second.Operator.String())
}

func TestBuildBadIndices(t *testing.T) {
	data := scf(t, "H 0.0 0.0 0.0; H 0.0 0.0 0.735")
	_, err := (&Builder{}).Build(data, []int{2}, nil)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestBuildOpenShell(t *testing.T) {
	mol, err := chem.NewMolecule("Li 0.0 0.0 0.0", chem.Angstrom, "sto3g", 0, 1)
	require.NoError(t, err)
	data, err := (&chem.SCFDriver{}).Run(context.Background(), mol)
	require.NoError(t, err)
	require.False(t, data.Restricted())
	assert.InDelta(t, -7.315525981, data.HFEnergy, 1e-6)

	tests := []struct {
		name    string
		mapping qubit.Mapping
		reduce  bool
		freeze  []int
		qubits  int
	}{
		{"jordan_wigner", qubit.JordanWigner{}, false, nil, 10},
		{"parity", qubit.Parity{}, false, nil, 10},
		{"parity reduced", qubit.Parity{}, true, nil, 8},
		{"bravyi_kitaev", qubit.BravyiKitaev{}, false, nil, 10},
		{"parity reduced frozen core", qubit.Parity{}, true, []int{0}, 6},
		{"bravyi_kitaev frozen core", qubit.BravyiKitaev{}, false, []int{0}, 8},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := &Builder{Mapping: test.mapping, TwoQubitReduction: test.reduce}
			res, err := b.Build(data, test.freeze, nil)
			require.NoError(t, err)
			assert.Equal(t, test.qubits, res.NumQubits())
			assert.Equal(t, 2-len(test.freeze), res.NumAlpha)
			assert.Equal(t, 1-len(test.freeze), res.NumBeta)
			got := hfExpectation(res) + res.EnergyShift + data.NuclearRepulsion
			assert.InDelta(t, data.HFEnergy, got, 1e-8)

			psi := make([]complex128, 1<<uint(res.NumQubits()))
			psi[res.HartreeFockState()] = 1
			total, alpha, err := res.NumberOperators()
			require.NoError(t, err)
			assert.InDelta(t, float64(res.NumParticles()), total.Expectation(psi), 1e-12)
			assert.InDelta(t, float64(res.NumAlpha), alpha.Expectation(psi), 1e-12)
		})
	}
}
