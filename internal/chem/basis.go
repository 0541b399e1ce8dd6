package chem

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrUnknownBasis = errors.New("unknown basis set")

type shell struct {
	l      int
	exps   []float64
	coeffs []float64
}

var (
	sto3g1s = []float64{0.15432897, 0.53532814, 0.44463454}
	sto3g2s = []float64{-0.09996723, 0.39951283, 0.70011547}
	sto3g2p = []float64{0.15591627, 0.60768372, 0.39195739}
)

func sto3gFirstRow(core, valence []float64) []shell {
	return []shell{
		{0, core, sto3g1s},
		{0, valence, sto3g2s},
		{1, valence, sto3g2p},
	}
}

// sto3g is keyed by atomic number
var sto3g = map[int][]shell{
	1: {{0, []float64{3.42525091, 0.62391373, 0.16885540}, sto3g1s}},
	2: {{0, []float64{6.36242139, 1.15892300, 0.31364979}, sto3g1s}},
	3: sto3gFirstRow([]float64{16.1195750, 2.9362007, 0.7946505},
		[]float64{0.6362897, 0.1478601, 0.0480887}),
	4: sto3gFirstRow([]float64{30.1678710, 5.4951153, 1.4871927},
		[]float64{1.3148331, 0.3055389, 0.0993707}),
	5: sto3gFirstRow([]float64{48.7911130, 8.8873622, 2.4052670},
		[]float64{2.2369561, 0.5198205, 0.1690618}),
	6: sto3gFirstRow([]float64{71.6168370, 13.0450960, 3.5305122},
		[]float64{2.9412494, 0.6834831, 0.2222899}),
	7: sto3gFirstRow([]float64{99.1061690, 18.0523120, 4.8856602},
		[]float64{3.7804559, 0.8784966, 0.2857144}),
	8: sto3gFirstRow([]float64{130.7093200, 23.8088610, 6.4436083},
		[]float64{5.0331513, 1.1695961, 0.3803890}),
	9: sto3gFirstRow([]float64{166.6791300, 30.3608120, 8.2168207},
		[]float64{6.4648032, 1.5022812, 0.4885885}),
	10: sto3gFirstRow([]float64{207.0156100, 37.7081510, 10.2052970},
		[]float64{8.2463151, 1.9162662, 0.6232293}),
}

// BasisFunction is a contracted Cartesian Gaussian. Coeffs already
// include the primitive normalization and the contraction
// renormalization.
type BasisFunction struct {
	Center [3]float64
	L      [3]int
	Exps   []float64
	Coeffs []float64
}

// cartesian components in the order x, y, z for p shells
var cartesian = [][][3]int{
	{{0, 0, 0}},
	{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
}

// BuildBasis returns the basis functions of mol, atom by atom
func BuildBasis(mol *Molecule) ([]BasisFunction, error) {
	name := strings.ToLower(strings.ReplaceAll(mol.Basis, "-", ""))
	if name != "sto3g" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBasis, mol.Basis)
	}
	var basis []BasisFunction
	for _, atom := range mol.Atoms {
		shells, ok := sto3g[atom.Z]
		if !ok {
			return nil, fmt.Errorf("%w: no STO-3G shells for %s", ErrUnknownBasis, atom.Symbol)
		}
		for _, sh := range shells {
			for _, l := range cartesian[sh.l] {
				basis = append(basis, newBasisFunction(atom.Coords, l, sh.exps, sh.coeffs))
			}
		}
	}
	return basis, nil
}

func newBasisFunction(center [3]float64, l [3]int, exps, coeffs []float64) BasisFunction {
	L := l[0] + l[1] + l[2]
	bf := BasisFunction{
		Center: center,
		L:      l,
		Exps:   append([]float64(nil), exps...),
		Coeffs: make([]float64, len(coeffs)),
	}
	for i, a := range exps {
		bf.Coeffs[i] = coeffs[i] * primitiveNorm(a, l)
	}
	// same-center overlap of normalized primitives is
	// (2 sqrt(a b) / (a + b))^(L + 3/2)
	var norm float64
	for i, a := range exps {
		for j, b := range exps {
			norm += coeffs[i] * coeffs[j] * math.Pow(2*math.Sqrt(a*b)/(a+b), float64(L)+1.5)
		}
	}
	norm = 1 / math.Sqrt(norm)
	for i := range bf.Coeffs {
		bf.Coeffs[i] *= norm
	}
	return bf
}

func primitiveNorm(a float64, l [3]int) float64 {
	L := l[0] + l[1] + l[2]
	num := math.Pow(2*a/math.Pi, 0.75) * math.Pow(4*a, float64(L)/2)
	den := math.Sqrt(doubleFactorial(2*l[0]-1) * doubleFactorial(2*l[1]-1) * doubleFactorial(2*l[2]-1))
	return num / den
}

func doubleFactorial(n int) float64 {
	f := 1.0
	for ; n > 1; n -= 2 {
		f *= float64(n)
	}
	return f
}
