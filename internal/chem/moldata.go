package chem

import (
	"gonum.org/v1/gonum/mat"
)

// MolecularData holds everything the Hamiltonian builder needs: integrals
// in the molecular orbital basis, particle and orbital counts and the
// reference energies. The B fields are only set for unrestricted
// calculations; restricted data reuses the alpha fields for both spins.
type MolecularData struct {
	NumOrbitals int
	NumAlpha    int
	NumBeta     int

	NuclearRepulsion float64
	// HFEnergy is the total Hartree-Fock energy, nuclear repulsion included
	HFEnergy float64

	OrbitalEnergies  []float64
	OrbitalEnergiesB []float64
	MOCoeff          *mat.Dense
	MOCoeffB         *mat.Dense

	// H1 holds the one-electron MO integrals h_pq
	H1  *mat.Dense
	H1B *mat.Dense
	// ERI holds the two-electron MO integrals (pq|rs). ERIAB has the
	// alpha pair first.
	ERI   *Tensor4
	ERIBB *Tensor4
	ERIAB *Tensor4
}

// Restricted reports whether both spins share the same orbitals
func (d *MolecularData) Restricted() bool {
	return d.H1B == nil
}

// NumParticles is the total electron count
func (d *MolecularData) NumParticles() int {
	return d.NumAlpha + d.NumBeta
}

// NumSpinOrbitals is twice the spatial orbital count
func (d *MolecularData) NumSpinOrbitals() int {
	return 2 * d.NumOrbitals
}

// SpinIntegrals returns the one-electron integrals, the same-spin
// two-electron integrals and the opposite-spin (alpha first) integrals
// for both spins
func (d *MolecularData) SpinIntegrals() (ha, hb *mat.Dense, aa, bb, ab *Tensor4) {
	if d.Restricted() {
		return d.H1, d.H1, d.ERI, d.ERI, d.ERI
	}
	return d.H1, d.H1B, d.ERI, d.ERIBB, d.ERIAB
}

// DeterminantEnergy is the energy of the aufbau determinant built from
// the integrals alone, nuclear repulsion included. For canonical SCF
// orbitals it equals HFEnergy.
func (d *MolecularData) DeterminantEnergy() float64 {
	ha, hb, aa, bb, ab := d.SpinIntegrals()
	e := d.NuclearRepulsion
	for i := 0; i < d.NumAlpha; i++ {
		e += ha.At(i, i)
		for j := 0; j < d.NumAlpha; j++ {
			e += 0.5 * (aa.At(i, i, j, j) - aa.At(i, j, j, i))
		}
		for j := 0; j < d.NumBeta; j++ {
			e += ab.At(i, i, j, j)
		}
	}
	for i := 0; i < d.NumBeta; i++ {
		e += hb.At(i, i)
		for j := 0; j < d.NumBeta; j++ {
			e += 0.5 * (bb.At(i, i, j, j) - bb.At(i, j, j, i))
		}
	}
	return e
}

// transformOneBody returns C^T h C
func transformOneBody(h mat.Matrix, c *mat.Dense) *mat.Dense {
	var tmp, out mat.Dense
	tmp.Mul(h, c)
	out.Mul(c.T(), &tmp)
	return &out
}

// transformERI moves (μν|λσ) into the MO basis with c1 on the first
// pair and c2 on the second, one index at a time
func transformERI(ao *Tensor4, c1, c2 *mat.Dense) *Tensor4 {
	n := ao.N
	step := func(in *Tensor4, c *mat.Dense, pos int) *Tensor4 {
		out := NewTensor4(n)
		idx := [4]int{}
		for idx[0] = 0; idx[0] < n; idx[0]++ {
			for idx[1] = 0; idx[1] < n; idx[1]++ {
				for idx[2] = 0; idx[2] < n; idx[2]++ {
					for idx[3] = 0; idx[3] < n; idx[3]++ {
						var sum float64
						src := idx
						for m := 0; m < n; m++ {
							src[pos] = m
							sum += c.At(m, idx[pos]) * in.At(src[0], src[1], src[2], src[3])
						}
						out.Set(idx[0], idx[1], idx[2], idx[3], sum)
					}
				}
			}
		}
		return out
	}
	t := step(ao, c1, 0)
	t = step(t, c1, 1)
	t = step(t, c2, 2)
	return step(t, c2, 3)
}

// SpinOrbitalIntegrals expands the integrals over 2n spin-orbitals in
// block order: alpha 0..n-1, beta n..2n-1. Integrals between different
// spins vanish.
func (d *MolecularData) SpinOrbitalIntegrals() (*mat.Dense, *Tensor4) {
	n := d.NumOrbitals
	ha, hb, aa, bb, ab := d.SpinIntegrals()
	h := mat.NewDense(2*n, 2*n, nil)
	eri := NewTensor4(2 * n)
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			h.Set(p, q, ha.At(p, q))
			h.Set(p+n, q+n, hb.At(p, q))
			for r := 0; r < n; r++ {
				for s := 0; s < n; s++ {
					eri.Set(p, q, r, s, aa.At(p, q, r, s))
					eri.Set(p+n, q+n, r+n, s+n, bb.At(p, q, r, s))
					v := ab.At(p, q, r, s)
					eri.Set(p, q, r+n, s+n, v)
					eri.Set(r+n, s+n, p, q, v)
				}
			}
		}
	}
	return h, eri
}
