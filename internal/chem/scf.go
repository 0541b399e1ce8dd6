package chem

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrSCFNotConverged = errors.New("SCF did not converge")
	ErrLinearDependent = errors.New("basis is linearly dependent")
)

const (
	defaultMaxIterations = 128
	defaultEnergyTol     = 1e-10
	defaultDIISTol       = 1e-8
	defaultDIISSize      = 8
)

// SCFDriver computes integrals with the built-in Gaussian engine and
// runs a Hartree-Fock calculation: restricted for closed shells,
// unrestricted otherwise. Zero fields take their defaults.
type SCFDriver struct {
	MaxIterations int
	EnergyTol     float64
	DIISTol       float64
	DIISSize      int
	Logger        *zap.Logger
}

// Run implements Driver
func (d *SCFDriver) Run(ctx context.Context, mol *Molecule) (*MolecularData, error) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	na, nb, err := mol.NumAlphaBeta()
	if err != nil {
		return nil, err
	}
	basis, err := BuildBasis(mol)
	if err != nil {
		return nil, err
	}
	if na > len(basis) || nb > len(basis) {
		return nil, fmt.Errorf("%w: %d basis functions for %d electrons", ErrSpinMismatch, len(basis), na+nb)
	}
	s := Overlap(basis)
	var h mat.SymDense
	h.AddSym(Kinetic(basis), Nuclear(basis, mol.Atoms))
	logger.Debug("computing two-electron integrals", zap.Int("basis functions", len(basis)))
	ao, err := Repulsion(ctx, basis)
	if err != nil {
		return nil, fmt.Errorf("two-electron integrals: %w", err)
	}
	res, err := d.iterate(ctx, logger, &h, s, ao, mol.NuclearRepulsion(), na, nb)
	if err != nil {
		return nil, err
	}
	data := &MolecularData{
		NumOrbitals:      len(basis),
		NumAlpha:         na,
		NumBeta:          nb,
		NuclearRepulsion: mol.NuclearRepulsion(),
		HFEnergy:         res.energy,
		OrbitalEnergies:  res.ea,
		MOCoeff:          res.ca,
		H1:               transformOneBody(&h, res.ca),
		ERI:              transformERI(ao, res.ca, res.ca),
	}
	if na != nb {
		data.OrbitalEnergiesB = res.eb
		data.MOCoeffB = res.cb
		data.H1B = transformOneBody(&h, res.cb)
		data.ERIBB = transformERI(ao, res.cb, res.cb)
		data.ERIAB = transformERI(ao, res.ca, res.cb)
	}
	logger.Info("SCF converged",
		zap.Float64("energy", res.energy),
		zap.Int("iterations", res.iterations),
		zap.Bool("restricted", na == nb))
	return data, nil
}

type scfResult struct {
	energy     float64
	ca, cb     *mat.Dense
	ea, eb     []float64
	iterations int
}

func (d *SCFDriver) iterate(ctx context.Context, logger *zap.Logger, h, s *mat.SymDense,
	ao *Tensor4, nuc float64, na, nb int) (*scfResult, error) {
	maxIter := orDefault(d.MaxIterations, defaultMaxIterations)
	energyTol := orDefaultF(d.EnergyTol, defaultEnergyTol)
	diisTol := orDefaultF(d.DIISTol, defaultDIISTol)
	x, err := orthogonalizer(s)
	if err != nil {
		return nil, err
	}
	acc := &diis{size: orDefault(d.DIISSize, defaultDIISSize)}

	// core Hamiltonian guess
	ca, ea := diagonalize(h, x)
	cb, eb := ca, ea
	da, db := density(ca, na), density(cb, nb)
	var eold float64
	for iter := 1; iter <= maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fa, fb := fock(h, ao, da, db)
		energy := scfEnergy(h, da, db, fa, fb) + nuc
		erra, errb := commutator(fa, da, s), commutator(fb, db, s)
		errNorm := math.Max(mat.Norm(erra, math.Inf(1)), mat.Norm(errb, math.Inf(1)))
		logger.Debug("SCF iteration",
			zap.Int("iteration", iter),
			zap.Float64("energy", energy),
			zap.Float64("error", errNorm))
		if iter > 1 && math.Abs(energy-eold) < energyTol && errNorm < diisTol {
			ca, ea = diagonalize(fa, x)
			cb, eb = diagonalize(fb, x)
			return &scfResult{energy: energy, ca: ca, cb: cb, ea: ea, eb: eb, iterations: iter}, nil
		}
		acc.push([]*mat.Dense{fa, fb}, [][]float64{erra.RawMatrix().Data, errb.RawMatrix().Data})
		f := acc.extrapolate()
		ca, ea = diagonalize(f[0], x)
		cb, eb = diagonalize(f[1], x)
		da, db = density(ca, na), density(cb, nb)
		eold = energy
	}
	return nil, fmt.Errorf("%w after %d iterations", ErrSCFNotConverged, maxIter)
}

// orthogonalizer returns S^(-1/2)
func orthogonalizer(s *mat.SymDense) (*mat.Dense, error) {
	var eig mat.EigenSym
	if !eig.Factorize(s, true) {
		return nil, errors.New("overlap diagonalization failed")
	}
	vals := eig.Values(nil)
	var u mat.Dense
	eig.VectorsTo(&u)
	n := len(vals)
	diag := mat.NewDiagDense(n, nil)
	for i, v := range vals {
		if v < 1e-10 {
			return nil, fmt.Errorf("%w: overlap eigenvalue %g", ErrLinearDependent, v)
		}
		diag.SetDiag(i, 1/math.Sqrt(v))
	}
	var tmp, x mat.Dense
	tmp.Mul(&u, diag)
	x.Mul(&tmp, u.T())
	return &x, nil
}

// diagonalize solves F C = S C e through the orthogonalizer x, with the
// orbital energies in ascending order
func diagonalize(f mat.Matrix, x *mat.Dense) (*mat.Dense, []float64) {
	var tmp, fp mat.Dense
	tmp.Mul(f, x)
	fp.Mul(x.T(), &tmp)
	n, _ := fp.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sym.SetSym(i, j, 0.5*(fp.At(i, j)+fp.At(j, i)))
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		panic("chem: Fock diagonalization failed")
	}
	var cp, c mat.Dense
	eig.VectorsTo(&cp)
	c.Mul(x, &cp)
	return &c, eig.Values(nil)
}

// density is C_occ C_occ^T for one spin
func density(c *mat.Dense, nocc int) *mat.Dense {
	n, _ := c.Dims()
	d := mat.NewDense(n, n, nil)
	if nocc == 0 {
		return d
	}
	occ := c.Slice(0, n, 0, nocc)
	d.Mul(occ, occ.T())
	return d
}

func fock(h *mat.SymDense, eri *Tensor4, da, db *mat.Dense) (fa, fb *mat.Dense) {
	n := eri.N
	fa = mat.NewDense(n, n, nil)
	fb = mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var coul, exa, exb float64
			for k := 0; k < n; k++ {
				for l := 0; l < n; l++ {
					coul += (da.At(k, l) + db.At(k, l)) * eri.At(i, j, k, l)
					exch := eri.At(i, k, j, l)
					exa += da.At(k, l) * exch
					exb += db.At(k, l) * exch
				}
			}
			fa.Set(i, j, h.At(i, j)+coul-exa)
			fb.Set(i, j, h.At(i, j)+coul-exb)
		}
	}
	return fa, fb
}

func scfEnergy(h *mat.SymDense, da, db, fa, fb *mat.Dense) float64 {
	n, _ := da.Dims()
	var e float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			e += (da.At(i, j)+db.At(i, j))*h.At(i, j) + da.At(i, j)*fa.At(i, j) + db.At(i, j)*fb.At(i, j)
		}
	}
	return 0.5 * e
}

// commutator is the DIIS error F D S - S D F
func commutator(f, d *mat.Dense, s *mat.SymDense) *mat.Dense {
	var fd, fds, sd, sdf mat.Dense
	fd.Mul(f, d)
	fds.Mul(&fd, s)
	sd.Mul(s, d)
	sdf.Mul(&sd, f)
	fds.Sub(&fds, &sdf)
	return &fds
}

// diis is Pulay's direct inversion in the iterative subspace over a set
// of Fock matrices that share one set of coefficients
type diis struct {
	size  int
	focks [][]*mat.Dense
	errs  [][]float64
}

func (d *diis) push(focks []*mat.Dense, errs [][]float64) {
	var flat []float64
	for _, e := range errs {
		flat = append(flat, e...)
	}
	d.focks = append(d.focks, focks)
	d.errs = append(d.errs, flat)
	if len(d.focks) > d.size {
		d.focks = d.focks[1:]
		d.errs = d.errs[1:]
	}
}

func (d *diis) extrapolate() []*mat.Dense {
	for len(d.focks) > 1 {
		coeffs, ok := d.solve()
		if ok {
			out := make([]*mat.Dense, len(d.focks[0]))
			for s := range out {
				r, c := d.focks[0][s].Dims()
				out[s] = mat.NewDense(r, c, nil)
				for i, w := range coeffs {
					var scaled mat.Dense
					scaled.Scale(w, d.focks[i][s])
					out[s].Add(out[s], &scaled)
				}
			}
			return out
		}
		// drop the oldest vector when B is singular
		d.focks = d.focks[1:]
		d.errs = d.errs[1:]
	}
	return d.focks[len(d.focks)-1]
}

func (d *diis) solve() ([]float64, bool) {
	m := len(d.errs)
	b := mat.NewDense(m+1, m+1, nil)
	for i := 0; i < m; i++ {
		for j := 0; j <= i; j++ {
			var dot float64
			for k, v := range d.errs[i] {
				dot += v * d.errs[j][k]
			}
			b.Set(i, j, dot)
			b.Set(j, i, dot)
		}
		b.Set(i, m, -1)
		b.Set(m, i, -1)
	}
	// scale by the largest diagonal element to keep B well conditioned
	var scale float64
	for i := 0; i < m; i++ {
		scale = math.Max(scale, b.At(i, i))
	}
	if scale > 0 {
		for i := 0; i < m; i++ {
			for j := 0; j < m; j++ {
				b.Set(i, j, b.At(i, j)/scale)
			}
		}
	}
	rhs := mat.NewVecDense(m+1, nil)
	rhs.SetVec(m, -1)
	var x mat.VecDense
	if err := x.SolveVec(b, rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, false
		}
	}
	coeffs := make([]float64, m)
	for i := range coeffs {
		coeffs[i] = x.AtVec(i)
		if math.IsNaN(coeffs[i]) || math.IsInf(coeffs[i], 0) {
			return nil, false
		}
	}
	return coeffs, true
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orDefaultF(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
