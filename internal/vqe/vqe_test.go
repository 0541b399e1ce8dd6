package vqe

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ssangskriti/qiskit-tutorials/internal/chem"
	"github.com/ssangskriti/qiskit-tutorials/internal/eigen"
	"github.com/ssangskriti/qiskit-tutorials/internal/hamiltonian"
	"github.com/ssangskriti/qiskit-tutorials/internal/qubit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type problem struct {
	data  *chem.MolecularData
	res   *hamiltonian.Result
	exact float64
	hf    float64
}

func setup(t *testing.T, geom string, freeze, remove []int) problem {
	t.Helper()
	mol, err := chem.NewMolecule(geom, chem.Angstrom, "sto3g", 0, 0)
	require.NoError(t, err)
	data, err := (&chem.SCFDriver{}).Run(context.Background(), mol)
	require.NoError(t, err)
	b := &hamiltonian.Builder{Mapping: qubit.Parity{}, TwoQubitReduction: true}
	res, err := b.Build(data, freeze, remove)
	require.NoError(t, err)
	ex, err := (&eigen.ExactEigensolver{}).Run(res.Operator)
	require.NoError(t, err)
	psi := NewStatevector(res.NumQubits(), res.HartreeFockState())
	return problem{data: data, res: res, exact: ex.Eigenvalues[0], hf: res.Operator.Expectation(psi)}
}

func TestExcitations(t *testing.T) {
	got := Excitations([]int{0}, []int{1, 2}, []int{3}, []int{4, 5}, true)
	want := []Excitation{
		{0, 1}, {0, 2}, {3, 4}, {3, 5},
		{0, 3, 1, 4}, {0, 3, 1, 5}, {0, 3, 2, 4}, {0, 3, 2, 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	got = Excitations([]int{0, 1}, []int{2, 3}, nil, nil, true)
	assert.Len(t, got, 5)
	assert.Equal(t, Excitation{0, 1, 2, 3}, got[4])
	assert.Len(t, Excitations([]int{0, 1}, []int{2, 3}, nil, nil, false), 4)
}

func TestActive(t *testing.T) {
	got, err := active([]int{-1}, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{6}, got)
	got, err = active([]int{}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)
	_, err = active([]int{3}, 3, 0)
	assert.ErrorIs(t, err, hamiltonian.ErrIndexOutOfRange)
}

func TestParseOptimizer(t *testing.T) {
	for in, want := range map[string]Optimizer{
		"":            NelderMead,
		"Nelder_Mead": NelderMead,
		"BFGS":        BFGS,
		"lbfgs":       LBFGS,
		"cg":          CG,
	} {
		got, err := ParseOptimizer(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseOptimizer("cobyla")
	assert.ErrorIs(t, err, ErrUnknownOptimizer)
}

func TestH2(t *testing.T) {
	p := setup(t, "H 0.0 0.0 0.0; H 0.0 0.0 0.735", nil, nil)
	for _, opt := range []Optimizer{NelderMead, BFGS} {
		t.Run(string(opt), func(t *testing.T) {
			ansatz, err := NewUCCSD(p.res, UCCSDOptions{SameSpinDoubles: true})
			require.NoError(t, err)
			assert.Equal(t, 3, ansatz.NumParameters())
			v := &VQE{Operator: p.res.Operator, Ansatz: ansatz, Optimizer: opt, Logger: zaptest.NewLogger(t)}
			res, err := v.Run(context.Background())
			require.NoError(t, err)
			assert.GreaterOrEqual(t, res.Eigenvalue, p.exact-1e-9)
			assert.InDelta(t, p.exact, res.Eigenvalue, 1e-4)
			assert.Len(t, res.OptimalParameters, 3)
			assert.LessOrEqual(t, res.Evaluations, DefaultMaxEvaluations+2*ansatz.NumParameters()+1)
			total := res.Eigenvalue + p.res.EnergyShift + p.data.NuclearRepulsion
			assert.InDelta(t, -1.137306035753, total, 1e-4)
		})
	}
}

func TestLiH(t *testing.T) {
	p := setup(t, "Li 0.0 0.0 0.0; H 0.0 0.0 1.6", []int{0}, []int{-3, -2})
	ansatz, err := NewAnsatz("uccsd", p.res, UCCSDOptions{SameSpinDoubles: true})
	require.NoError(t, err)
	assert.Equal(t, 8, ansatz.NumParameters())
	v := &VQE{Operator: p.res.Operator, Ansatz: ansatz}
	res, err := v.Run(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Eigenvalue, p.exact-1e-9)
	assert.LessOrEqual(t, res.Eigenvalue, p.hf+1e-9)
	total := p.exact + p.res.EnergyShift + p.data.NuclearRepulsion
	assert.InDelta(t, -7.881072044031, total, 1e-5)
}

func TestRYAnsatz(t *testing.T) {
	p := setup(t, "H 0.0 0.0 0.0; H 0.0 0.0 0.735", nil, nil)
	ansatz, err := NewAnsatz("RY", p.res, UCCSDOptions{Depth: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, ansatz.NumParameters())
	// zero angles leave the Hartree-Fock state alone
	assert.InDelta(t, p.hf, p.res.Operator.Expectation(ansatz.Prepare(make([]float64, 6))), 1e-12)
	v := &VQE{Operator: p.res.Operator, Ansatz: ansatz, MaxEvaluations: 100}
	res, err := v.Run(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Eigenvalue, p.exact-1e-9)
	assert.LessOrEqual(t, res.Eigenvalue, p.hf+1e-9)
}

func TestCancel(t *testing.T) {
	p := setup(t, "H 0.0 0.0 0.0; H 0.0 0.0 0.735", nil, nil)
	ansatz, err := NewUCCSD(p.res, UCCSDOptions{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&VQE{Operator: p.res.Operator, Ansatz: ansatz}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunErrors(t *testing.T) {
	p := setup(t, "H 0.0 0.0 0.0; H 0.0 0.0 0.735", nil, nil)
	ansatz, err := NewUCCSD(p.res, UCCSDOptions{})
	require.NoError(t, err)
	_, err = (&VQE{Operator: qubit.NewOperator(3), Ansatz: ansatz}).Run(context.Background())
	assert.ErrorIs(t, err, ErrDimension)
	_, err = (&VQE{Operator: p.res.Operator, Ansatz: ansatz, InitialPoint: []float64{0}}).Run(context.Background())
	assert.Error(t, err)
	_, err = NewAnsatz("hea", p.res, UCCSDOptions{})
	assert.ErrorIs(t, err, ErrUnknownAnsatz)
}

// counting wraps an ansatz and counts state preparations
type counting struct {
	Ansatz
	n int
}

func (c *counting) Prepare(params []float64) Statevector {
	c.n++
	return c.Ansatz.Prepare(params)
}

func TestGradientEvaluationsCounted(t *testing.T) {
	p := setup(t, "H 0.0 0.0 0.0; H 0.0 0.0 0.735", nil, nil)
	for _, opt := range []Optimizer{BFGS, LBFGS, CG} {
		t.Run(string(opt), func(t *testing.T) {
			u, err := NewUCCSD(p.res, UCCSDOptions{SameSpinDoubles: true})
			require.NoError(t, err)
			c := &counting{Ansatz: u}
			v := &VQE{Operator: p.res.Operator, Ansatz: c, Optimizer: opt, MaxEvaluations: 30}
			res, err := v.Run(context.Background())
			require.NoError(t, err)
			// one extra preparation checks the dimension
			assert.Equal(t, c.n-1, res.Evaluations)
			assert.LessOrEqual(t, res.Evaluations, 30+2*u.NumParameters())
		})
	}
}

func TestNoParameters(t *testing.T) {
	mol, err := chem.NewMolecule("H 0.0 0.0 0.0", chem.Angstrom, "sto3g", 0, 1)
	require.NoError(t, err)
	data, err := (&chem.SCFDriver{}).Run(context.Background(), mol)
	require.NoError(t, err)
	b := &hamiltonian.Builder{Mapping: qubit.Parity{}, TwoQubitReduction: true}
	res, err := b.Build(data, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 0, res.NumQubits())
	for _, name := range []string{"uccsd", "ry"} {
		t.Run(name, func(t *testing.T) {
			ansatz, err := NewAnsatz(name, res, UCCSDOptions{})
			require.NoError(t, err)
			assert.Equal(t, 0, ansatz.NumParameters())
			got, err := (&VQE{Operator: res.Operator, Ansatz: ansatz, Optimizer: BFGS}).Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 1, got.Evaluations)
			assert.Empty(t, got.OptimalParameters)
			assert.InDelta(t, -0.466581849557, got.Eigenvalue+res.EnergyShift+data.NuclearRepulsion, 1e-6)
		})
	}
}
