package chem

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrBadFCIDump   = errors.New("malformed FCIDUMP")
	ErrUnrestricted = errors.New("FCIDUMP export needs restricted orbitals")
)

var fcidumpKey = regexp.MustCompile(`(?i)\b(NORB|NELEC|MS2)\s*=\s*(-?\d+)`)

const integralCutoff = 1e-12

// WriteFCIDump writes the restricted integrals of d in FCIDUMP format
func WriteFCIDump(w io.Writer, d *MolecularData) error {
	if !d.Restricted() {
		return ErrUnrestricted
	}
	n := d.NumOrbitals
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, " &FCI NORB=%4d,NELEC=%3d,MS2=%d,\n", n, d.NumParticles(), d.NumAlpha-d.NumBeta)
	fmt.Fprint(bw, "  ORBSYM=", strings.Repeat("1,", n), "\n")
	fmt.Fprint(bw, "  ISYM=1,\n &END\n")
	line := func(v float64, i, j, k, l int) {
		fmt.Fprintf(bw, "%23.16E %4d %4d %4d %4d\n", v, i, j, k, l)
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			ij := i*(i+1)/2 + j
			for k := 0; k < n; k++ {
				for l := 0; l <= k; l++ {
					if k*(k+1)/2+l > ij {
						break
					}
					if v := d.ERI.At(i, j, k, l); math.Abs(v) > integralCutoff {
						line(v, i+1, j+1, k+1, l+1)
					}
				}
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			if v := d.H1.At(i, j); math.Abs(v) > integralCutoff {
				line(v, i+1, j+1, 0, 0)
			}
		}
	}
	line(d.NuclearRepulsion, 0, 0, 0, 0)
	return bw.Flush()
}

// ReadFCIDump loads restricted integrals from filename. The
// Hartree-Fock energy is that of the aufbau determinant.
func ReadFCIDump(filename string) (*MolecularData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseFCIDump(f)
}

// ParseFCIDump reads FCIDUMP text from r
func ParseFCIDump(r io.Reader) (*MolecularData, error) {
	scanner := bufio.NewScanner(r)
	var header strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		header.WriteString(line)
		header.WriteString(" ")
		trim := strings.TrimSpace(line)
		if strings.Contains(strings.ToUpper(trim), "&END") || trim == "/" {
			break
		}
	}
	keys := map[string]int{}
	for _, m := range fcidumpKey.FindAllStringSubmatch(header.String(), -1) {
		v, _ := strconv.Atoi(m[2])
		keys[strings.ToUpper(m[1])] = v
	}
	n, ok := keys["NORB"]
	if !ok || n <= 0 {
		return nil, fmt.Errorf("%w: missing NORB", ErrBadFCIDump)
	}
	nelec, ok := keys["NELEC"]
	if !ok || (nelec+keys["MS2"])%2 != 0 {
		return nil, fmt.Errorf("%w: bad NELEC/MS2", ErrBadFCIDump)
	}
	d := &MolecularData{
		NumOrbitals: n,
		NumAlpha:    (nelec + keys["MS2"]) / 2,
		NumBeta:     (nelec - keys["MS2"]) / 2,
		H1:          mat.NewDense(n, n, nil),
		ERI:         NewTensor4(n),
	}
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 5 {
			return nil, fmt.Errorf("%w: %q", ErrBadFCIDump, scanner.Text())
		}
		v, err := strconv.ParseFloat(strings.NewReplacer("D", "E", "d", "e").Replace(fields[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadFCIDump, err)
		}
		var idx [4]int
		for i, s := range fields[1:] {
			idx[i], err = strconv.Atoi(s)
			if err != nil || idx[i] < 0 || idx[i] > n {
				return nil, fmt.Errorf("%w: index %q", ErrBadFCIDump, s)
			}
		}
		i, j, k, l := idx[0]-1, idx[1]-1, idx[2]-1, idx[3]-1
		switch {
		case idx == [4]int{}:
			d.NuclearRepulsion = v
		case idx[1] == 0 && idx[2] == 0 && idx[3] == 0:
			// orbital energy
			continue
		case idx[2] == 0 && idx[3] == 0 && i >= 0 && j >= 0:
			d.H1.Set(i, j, v)
			d.H1.Set(j, i, v)
		case i < 0 || j < 0 || k < 0 || l < 0:
			return nil, fmt.Errorf("%w: indices %v", ErrBadFCIDump, idx)
		default:
			d.ERI.setSym(i, j, k, l, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	d.HFEnergy = d.DeterminantEnergy()
	return d, nil
}
