package chem

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
)

// Tensor4 is a dense four-index tensor, used for two-electron integrals
// in chemists' notation (pq|rs)
type Tensor4 struct {
	N    int
	Data []float64
}

func NewTensor4(n int) *Tensor4 {
	return &Tensor4{N: n, Data: make([]float64, n*n*n*n)}
}

func (t *Tensor4) index(p, q, r, s int) int {
	return ((p*t.N+q)*t.N+r)*t.N + s
}

func (t *Tensor4) At(p, q, r, s int) float64 {
	return t.Data[t.index(p, q, r, s)]
}

func (t *Tensor4) Set(p, q, r, s int, v float64) {
	t.Data[t.index(p, q, r, s)] = v
}

// setSym stores v in all eight permutationally equivalent slots
func (t *Tensor4) setSym(p, q, r, s int, v float64) {
	t.Set(p, q, r, s, v)
	t.Set(q, p, r, s, v)
	t.Set(p, q, s, r, v)
	t.Set(q, p, s, r, v)
	t.Set(r, s, p, q, v)
	t.Set(s, r, p, q, v)
	t.Set(r, s, q, p, v)
	t.Set(s, r, q, p, v)
}

// boys is the Boys function F_n(t)
func boys(n int, t float64) float64 {
	if t < 1e-12 {
		return 1/float64(2*n+1) - t/float64(2*n+3)
	}
	a := float64(n) + 0.5
	return mathext.GammaIncReg(a, t) * math.Gamma(a) / (2 * math.Pow(t, a))
}

// hermiteE is the Hermite expansion coefficient E^{ij}_t for one
// Cartesian direction, with qx the separation of the two centers
func hermiteE(i, j, t int, qx, a, b float64) float64 {
	p := a + b
	q := a * b / p
	switch {
	case t < 0 || t > i+j:
		return 0
	case i == 0 && j == 0 && t == 0:
		return math.Exp(-q * qx * qx)
	case j == 0:
		return hermiteE(i-1, j, t-1, qx, a, b)/(2*p) -
			q*qx/a*hermiteE(i-1, j, t, qx, a, b) +
			float64(t+1)*hermiteE(i-1, j, t+1, qx, a, b)
	default:
		return hermiteE(i, j-1, t-1, qx, a, b)/(2*p) +
			q*qx/b*hermiteE(i, j-1, t, qx, a, b) +
			float64(t+1)*hermiteE(i, j-1, t+1, qx, a, b)
	}
}

// hermiteR is the Coulomb auxiliary integral R^n_{tuv}
func hermiteR(t, u, v, n int, p float64, pc [3]float64, rpc2 float64) float64 {
	var val float64
	switch {
	case t == 0 && u == 0 && v == 0:
		val = math.Pow(-2*p, float64(n)) * boys(n, p*rpc2)
	case t == 0 && u == 0:
		if v > 1 {
			val += float64(v-1) * hermiteR(t, u, v-2, n+1, p, pc, rpc2)
		}
		val += pc[2] * hermiteR(t, u, v-1, n+1, p, pc, rpc2)
	case t == 0:
		if u > 1 {
			val += float64(u-1) * hermiteR(t, u-2, v, n+1, p, pc, rpc2)
		}
		val += pc[1] * hermiteR(t, u-1, v, n+1, p, pc, rpc2)
	default:
		if t > 1 {
			val += float64(t-1) * hermiteR(t-2, u, v, n+1, p, pc, rpc2)
		}
		val += pc[0] * hermiteR(t-1, u, v, n+1, p, pc, rpc2)
	}
	return val
}

func gaussianProduct(a float64, A [3]float64, b float64, B [3]float64) [3]float64 {
	var P [3]float64
	for i := range P {
		P[i] = (a*A[i] + b*B[i]) / (a + b)
	}
	return P
}

func primOverlap(a float64, la [3]int, A [3]float64, b float64, lb [3]int, B [3]float64) float64 {
	s := math.Pow(math.Pi/(a+b), 1.5)
	for d := 0; d < 3; d++ {
		s *= hermiteE(la[d], lb[d], 0, A[d]-B[d], a, b)
	}
	return s
}

func primKinetic(a float64, la [3]int, A [3]float64, b float64, lb [3]int, B [3]float64) float64 {
	L := lb[0] + lb[1] + lb[2]
	term0 := b * float64(2*L+3) * primOverlap(a, la, A, b, lb, B)
	var term1, term2 float64
	for d := 0; d < 3; d++ {
		up := lb
		up[d] += 2
		term1 += primOverlap(a, la, A, b, up, B)
		if lb[d] > 1 {
			down := lb
			down[d] -= 2
			term2 += float64(lb[d]*(lb[d]-1)) * primOverlap(a, la, A, b, down, B)
		}
	}
	return term0 - 2*b*b*term1 - 0.5*term2
}

func primNuclear(a float64, la [3]int, A [3]float64, b float64, lb [3]int, B [3]float64, C [3]float64) float64 {
	p := a + b
	P := gaussianProduct(a, A, b, B)
	pc := [3]float64{P[0] - C[0], P[1] - C[1], P[2] - C[2]}
	rpc2 := pc[0]*pc[0] + pc[1]*pc[1] + pc[2]*pc[2]
	var val float64
	for t := 0; t <= la[0]+lb[0]; t++ {
		ex := hermiteE(la[0], lb[0], t, A[0]-B[0], a, b)
		for u := 0; u <= la[1]+lb[1]; u++ {
			ey := hermiteE(la[1], lb[1], u, A[1]-B[1], a, b)
			for v := 0; v <= la[2]+lb[2]; v++ {
				ez := hermiteE(la[2], lb[2], v, A[2]-B[2], a, b)
				val += ex * ey * ez * hermiteR(t, u, v, 0, p, pc, rpc2)
			}
		}
	}
	return 2 * math.Pi / p * val
}

func primERI(a float64, la [3]int, A [3]float64, b float64, lb [3]int, B [3]float64,
	c float64, lc [3]int, C [3]float64, d float64, ld [3]int, D [3]float64) float64 {
	p := a + b
	q := c + d
	alpha := p * q / (p + q)
	P := gaussianProduct(a, A, b, B)
	Q := gaussianProduct(c, C, d, D)
	pq := [3]float64{P[0] - Q[0], P[1] - Q[1], P[2] - Q[2]}
	rpq2 := pq[0]*pq[0] + pq[1]*pq[1] + pq[2]*pq[2]
	var val float64
	for t := 0; t <= la[0]+lb[0]; t++ {
		e1 := hermiteE(la[0], lb[0], t, A[0]-B[0], a, b)
		for u := 0; u <= la[1]+lb[1]; u++ {
			e2 := hermiteE(la[1], lb[1], u, A[1]-B[1], a, b)
			for v := 0; v <= la[2]+lb[2]; v++ {
				e3 := hermiteE(la[2], lb[2], v, A[2]-B[2], a, b)
				for tau := 0; tau <= lc[0]+ld[0]; tau++ {
					f1 := hermiteE(lc[0], ld[0], tau, C[0]-D[0], c, d)
					for nu := 0; nu <= lc[1]+ld[1]; nu++ {
						f2 := hermiteE(lc[1], ld[1], nu, C[1]-D[1], c, d)
						for phi := 0; phi <= lc[2]+ld[2]; phi++ {
							f3 := hermiteE(lc[2], ld[2], phi, C[2]-D[2], c, d)
							sign := 1.0
							if (tau+nu+phi)%2 == 1 {
								sign = -1
							}
							val += e1 * e2 * e3 * f1 * f2 * f3 * sign *
								hermiteR(t+tau, u+nu, v+phi, 0, alpha, pq, rpq2)
						}
					}
				}
			}
		}
	}
	return 2 * math.Pow(math.Pi, 2.5) / (p * q * math.Sqrt(p+q)) * val
}

// contract sums a primitive integral over the contractions of two
// basis functions
func contract(f, g BasisFunction, prim func(a, b float64) float64) float64 {
	var v float64
	for i, a := range f.Exps {
		for j, b := range g.Exps {
			v += f.Coeffs[i] * g.Coeffs[j] * prim(a, b)
		}
	}
	return v
}

// Overlap returns the AO overlap matrix S
func Overlap(basis []BasisFunction) *mat.SymDense {
	n := len(basis)
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			f, g := basis[i], basis[j]
			s.SetSym(i, j, contract(f, g, func(a, b float64) float64 {
				return primOverlap(a, f.L, f.Center, b, g.L, g.Center)
			}))
		}
	}
	return s
}

// Kinetic returns the AO kinetic energy matrix T
func Kinetic(basis []BasisFunction) *mat.SymDense {
	n := len(basis)
	t := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			f, g := basis[i], basis[j]
			t.SetSym(i, j, contract(f, g, func(a, b float64) float64 {
				return primKinetic(a, f.L, f.Center, b, g.L, g.Center)
			}))
		}
	}
	return t
}

// Nuclear returns the AO nuclear attraction matrix V
func Nuclear(basis []BasisFunction, atoms []Atom) *mat.SymDense {
	n := len(basis)
	v := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			f, g := basis[i], basis[j]
			var sum float64
			for _, atom := range atoms {
				sum -= float64(atom.Z) * contract(f, g, func(a, b float64) float64 {
					return primNuclear(a, f.L, f.Center, b, g.L, g.Center, atom.Coords)
				})
			}
			v.SetSym(i, j, sum)
		}
	}
	return v
}

func eri(f, g, h, k BasisFunction) float64 {
	var v float64
	for i, a := range f.Exps {
		for j, b := range g.Exps {
			for m, c := range h.Exps {
				for n, d := range k.Exps {
					v += f.Coeffs[i] * g.Coeffs[j] * h.Coeffs[m] * k.Coeffs[n] *
						primERI(a, f.L, f.Center, b, g.L, g.Center,
							c, h.L, h.Center, d, k.L, k.Center)
				}
			}
		}
	}
	return v
}

// Repulsion returns the AO electron repulsion integrals (ij|kl). Each
// unique ij pair is evaluated in its own goroutine; distinct canonical
// quartets never share a slot of the tensor.
func Repulsion(ctx context.Context, basis []BasisFunction) (*Tensor4, error) {
	n := len(basis)
	t := NewTensor4(n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			i, j := i, j
			ij := i*(i+1)/2 + j
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				for k := 0; k < n; k++ {
					for l := 0; l <= k; l++ {
						if k*(k+1)/2+l > ij {
							break
						}
						t.setSym(i, j, k, l, eri(basis[i], basis[j], basis[k], basis[l]))
					}
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}
