package chem

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// Driver is an interface for integral providers
type Driver interface {
	Run(ctx context.Context, mol *Molecule) (*MolecularData, error)
}

// Program is an interface for external quantum chemistry programs whose
// input we write and whose output we read back
type Program interface {
	MakeHead() []string
	MakeFoot() []string
	MakeIn(mol *Molecule) []string
	WriteIn(filename string, mol *Molecule) error
	ReadOut(filename string) (float64, error)
}

// referenceTol is the largest accepted gap between the FCIDUMP
// determinant energy and the reference program's Hartree-Fock energy
const referenceTol = 1e-6

// FCIDumpDriver reads integrals written by an external program. The
// molecule passed to Run is ignored; the file carries the electron
// count and spin. When Reference names an output file of Program
// (Molpro by default), its Hartree-Fock energy is compared with the
// energy of the FCIDUMP determinant and a mismatch is logged.
type FCIDumpDriver struct {
	Filename  string
	Reference string
	Program   Program
	Logger    *zap.Logger
}

// Run implements Driver
func (d *FCIDumpDriver) Run(ctx context.Context, _ *Molecule) (*MolecularData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	data, err := ReadFCIDump(d.Filename)
	if err != nil {
		return nil, err
	}
	logger.Info("read FCIDUMP",
		zap.String("file", d.Filename),
		zap.Int("orbitals", data.NumOrbitals),
		zap.Float64("energy", data.HFEnergy))
	if d.Reference == "" {
		return data, nil
	}
	prog := d.Program
	if prog == nil {
		prog = Molpro{}
	}
	ref, err := prog.ReadOut(d.Reference)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.Reference, err)
	}
	if diff := math.Abs(ref - data.HFEnergy); diff > referenceTol {
		logger.Warn("FCIDUMP energy disagrees with the reference output",
			zap.String("reference", d.Reference),
			zap.Float64("fcidump", data.HFEnergy),
			zap.Float64("reference energy", ref),
			zap.Float64("difference", diff))
	} else {
		logger.Debug("FCIDUMP energy matches the reference output",
			zap.String("reference", d.Reference),
			zap.Float64("difference", diff))
	}
	return data, nil
}

// DriverOptions selects and configures a driver
type DriverOptions struct {
	// Name is "scf" (the default) or "fcidump"
	Name          string
	FCIDump       string
	MolproOutput  string
	MaxIterations int
	Logger        *zap.Logger
}

// NewDriver builds the driver named in opts
func NewDriver(opts DriverOptions) (Driver, error) {
	switch strings.ToLower(opts.Name) {
	case "", "scf":
		return &SCFDriver{MaxIterations: opts.MaxIterations, Logger: opts.Logger}, nil
	case "fcidump":
		if opts.FCIDump == "" {
			return nil, fmt.Errorf("fcidump driver needs a file name")
		}
		return &FCIDumpDriver{
			Filename:  opts.FCIDump,
			Reference: opts.MolproOutput,
			Program:   Molpro{},
			Logger:    opts.Logger,
		}, nil
	}
	return nil, fmt.Errorf("unknown driver %q", opts.Name)
}
