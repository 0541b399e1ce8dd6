// Package chem provides molecules, the STO-3G basis, Gaussian integrals
// and the Hartree-Fock drivers that turn a geometry into the molecular
// orbital integrals consumed by the Hamiltonian builder.
package chem

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Bohr is the length of one bohr in angstrom
const Bohr = 0.52917721092

var (
	ErrUnknownElement = errors.New("unknown element")
	ErrBadGeometry    = errors.New("malformed geometry")
	ErrSpinMismatch   = errors.New("spin incompatible with electron count")
)

var elements = [...]string{"", "H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar"}

// Unit is the length unit of an input geometry
type Unit int

const (
	Angstrom Unit = iota
	BohrUnit
)

func (u Unit) String() string {
	return [...]string{"angstrom", "bohr"}[u]
}

// ParseUnit accepts angstrom or bohr, case-insensitively
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "angstrom", "ang", "a":
		return Angstrom, nil
	case "bohr", "au", "b":
		return BohrUnit, nil
	}
	return Angstrom, fmt.Errorf("unknown unit %q", s)
}

// Atom is a nucleus with its position in bohr
type Atom struct {
	Symbol string
	Z      int
	Coords [3]float64
}

// AtomicNumber returns the nuclear charge for symbol
func AtomicNumber(symbol string) (int, error) {
	for z, s := range elements {
		if z > 0 && strings.EqualFold(s, symbol) {
			return z, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownElement, symbol)
}

// Molecule is immutable once built
type Molecule struct {
	Atoms  []Atom
	Basis  string
	Charge int
	// Spin is 2S, the number of unpaired electrons
	Spin int
}

// NewMolecule parses geom in unit and attaches the remaining settings
func NewMolecule(geom string, unit Unit, basis string, charge, spin int) (*Molecule, error) {
	atoms, err := ParseGeometry(geom, unit)
	if err != nil {
		return nil, err
	}
	return newMolecule(atoms, basis, charge, spin)
}

// LoadMolecule reads the geometry from an xyz file
func LoadMolecule(filename, basis string, charge, spin int) (*Molecule, error) {
	atoms, err := ReadXYZ(filename)
	if err != nil {
		return nil, err
	}
	return newMolecule(atoms, basis, charge, spin)
}

func newMolecule(atoms []Atom, basis string, charge, spin int) (*Molecule, error) {
	mol := &Molecule{Atoms: atoms, Basis: basis, Charge: charge, Spin: spin}
	if _, _, err := mol.NumAlphaBeta(); err != nil {
		return nil, err
	}
	return mol, nil
}

// ParseGeometry reads atoms from "Symbol x y z" entries separated by
// semicolons or newlines. A leading XYZ count line and its comment line
// are skipped.
func ParseGeometry(geom string, unit Unit) ([]Atom, error) {
	// skip the natoms and comment line of an xyz block
	lines := strings.Split(strings.TrimSpace(geom), "\n")
	if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err == nil {
		if len(lines) < 3 {
			return nil, fmt.Errorf("%w: no atoms", ErrBadGeometry)
		}
		geom = strings.Join(lines[2:], "\n")
	}
	entries := strings.FieldsFunc(geom, func(r rune) bool {
		return r == ';' || r == '\n'
	})
	scale := 1.0
	if unit == Angstrom {
		scale = 1 / Bohr
	}
	atoms := make([]Atom, 0, len(entries))
	for _, entry := range entries {
		fields := strings.Fields(entry)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: %q", ErrBadGeometry, strings.TrimSpace(entry))
		}
		z, err := AtomicNumber(fields[0])
		if err != nil {
			return nil, err
		}
		var atom Atom
		atom.Symbol = elements[z]
		atom.Z = z
		for i, c := range fields[1:] {
			f, err := strconv.ParseFloat(c, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrBadGeometry, c, err)
			}
			atom.Coords[i] = f * scale
		}
		atoms = append(atoms, atom)
	}
	if len(atoms) == 0 {
		return nil, fmt.Errorf("%w: no atoms", ErrBadGeometry)
	}
	return atoms, nil
}

// ReadXYZ reads an xyz file in angstrom
func ReadXYZ(filename string) ([]Atom, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseGeometry(strings.TrimSpace(string(data)), Angstrom)
}

// NumElectrons is the total electron count after the charge
func (m *Molecule) NumElectrons() int {
	n := -m.Charge
	for _, a := range m.Atoms {
		n += a.Z
	}
	return n
}

// NumAlphaBeta splits the electrons by spin
func (m *Molecule) NumAlphaBeta() (alpha, beta int, err error) {
	n := m.NumElectrons()
	if n <= 0 || m.Spin < 0 || m.Spin > n || (n+m.Spin)%2 != 0 {
		return 0, 0, fmt.Errorf("%w: %d electrons, spin %d", ErrSpinMismatch, n, m.Spin)
	}
	return (n + m.Spin) / 2, (n - m.Spin) / 2, nil
}

// NuclearRepulsion in hartree
func (m *Molecule) NuclearRepulsion() float64 {
	var e float64
	for i := range m.Atoms {
		for j := i + 1; j < len(m.Atoms); j++ {
			e += float64(m.Atoms[i].Z*m.Atoms[j].Z) / distance(m.Atoms[i].Coords, m.Atoms[j].Coords)
		}
	}
	return e
}

// GeometryLines formats the atoms in angstrom, one per line, the way
// input files for external programs expect them
func (m *Molecule) GeometryLines() []string {
	lines := make([]string, 0, len(m.Atoms))
	for _, a := range m.Atoms {
		tmp := []string{a.Symbol}
		for _, c := range a.Coords {
			tmp = append(tmp, strconv.FormatFloat(c*Bohr, 'f', 10, 64))
		}
		lines = append(lines, strings.Join(tmp, " "))
	}
	return lines
}

func distance(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
