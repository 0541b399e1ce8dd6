package chem

import (
	"errors"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrEnergyNotFound      = errors.New("energy not found in Molpro output")
	ErrFileNotFound        = errors.New("Molpro output file not found")
	ErrEnergyNotParsed     = errors.New("energy not parsed in Molpro output")
	ErrFileContainsError   = errors.New("Molpro output file contains an error")
	ErrBlankOutput         = errors.New("Molpro output file is blank")
	ErrFinishedButNoEnergy = errors.New("Molpro output finished but no energy found")
)

var (
	molproEnergy     = regexp.MustCompile(`^\s*!(RHF|UHF|RKS|UKS)\s+STATE\s+\S+\s+Energy\s+`)
	molproTerminated = "Molpro calculation terminated"
	brokenFloat      = math.NaN()
)

// Molpro writes Hartree-Fock inputs that dump the MO integrals to a
// FCIDUMP file for FCIDumpDriver
type Molpro struct {
	Basis  string
	Charge int
	Spin   int
	// DumpFile defaults to FCIDUMP
	DumpFile string
}

// MakeHead returns the header of a Molpro input file
func (m Molpro) MakeHead() []string {
	return []string{"memory,1125,m",
		"gthresh,energy=1.d-10,zero=1.d-16,oneint=1.d-16,twoint=1.d-16;",
		"nocompress",
		"geomtyp=xyz",
		"angstrom",
		"geometry={"}
}

// MakeFoot returns the footer of a Molpro input file
func (m Molpro) MakeFoot() []string {
	dump := m.DumpFile
	if dump == "" {
		dump = "FCIDUMP"
	}
	method := "hf"
	if m.Spin != 0 {
		method = "uhf"
	}
	return []string{"}",
		"basis=" + molproBasis(m.Basis),
		"set,charge=" + strconv.Itoa(m.Charge),
		"set,spin=" + strconv.Itoa(m.Spin),
		"{" + method + ",accuracy=16,energy=1.0d-10}",
		"{fci;core,0;dump," + dump + "}"}
}

// MakeIn returns the contents of a Molpro input file for mol
func (m Molpro) MakeIn(mol *Molecule) []string {
	file := make([]string, 0)
	file = append(file, m.MakeHead()...)
	file = append(file, mol.GeometryLines()...)
	file = append(file, m.MakeFoot()...)
	return file
}

// WriteIn uses MakeIn to write a Molpro input file to filename
func (m Molpro) WriteIn(filename string, mol *Molecule) error {
	lines := m.MakeIn(mol)
	return os.WriteFile(filename, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

// ReadOut reads a Molpro output file and returns the Hartree-Fock energy
func (m Molpro) ReadOut(filename string) (result float64, err error) {
	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return brokenFloat, ErrFileNotFound
	} else if err != nil {
		return brokenFloat, err
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// a blank file has a single empty line
	if len(lines) == 1 {
		if strings.Contains(strings.ToUpper(lines[0]), "ERROR") {
			return brokenFloat, ErrFileContainsError
		}
		return brokenFloat, ErrBlankOutput
	}
	err = ErrEnergyNotFound
	result = brokenFloat
	for _, line := range lines {
		if strings.Contains(strings.ToUpper(line), "ERROR") {
			return brokenFloat, ErrFileContainsError
		}
		if molproEnergy.MatchString(line) {
			fields := strings.Fields(line)
			result, err = strconv.ParseFloat(fields[len(fields)-1], 64)
			if err != nil {
				return brokenFloat, ErrEnergyNotParsed
			}
		}
		if strings.Contains(line, molproTerminated) && err != nil {
			err = ErrFinishedButNoEnergy
		}
	}
	return result, err
}

func molproBasis(name string) string {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "sto3g":
		return "sto-3g"
	}
	return name
}
