// Package config loads run settings from keyword, TOML or YAML input
// files on top of the built-in LiH defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/ssangskriti/qiskit-tutorials/internal/chem"
	"github.com/ssangskriti/qiskit-tutorials/internal/qubit"
	"github.com/ssangskriti/qiskit-tutorials/internal/vqe"
	"gopkg.in/yaml.v3"
)

var (
	ErrBadInput = errors.New("bad input")
	ErrInvalid  = errors.New("invalid configuration")
)

// Config holds every setting of a run
type Config struct {
	Geometry string `toml:"geometry" yaml:"geometry"`
	// GeometryFile is an xyz file in angstrom, used instead of Geometry
	GeometryFile string `toml:"geometry_file" yaml:"geometry_file"`
	Unit         string `toml:"unit" yaml:"unit"`
	Basis        string `toml:"basis" yaml:"basis"`
	Charge       int    `toml:"charge" yaml:"charge"`
	Spin         int    `toml:"spin" yaml:"spin"`

	Driver  string `toml:"driver" yaml:"driver"`
	FCIDump string `toml:"fcidump" yaml:"fcidump"`
	// MolproOutput is checked against the FCIDUMP energy
	MolproOutput string `toml:"molpro_output" yaml:"molpro_output"`
	SCFMaxIter   int    `toml:"scf_maxiter" yaml:"scf_maxiter"`

	Freeze            []int   `toml:"freeze" yaml:"freeze"`
	Remove            []int   `toml:"remove" yaml:"remove"`
	Mapping           string  `toml:"mapping" yaml:"mapping"`
	TwoQubitReduction bool    `toml:"two_qubit_reduction" yaml:"two_qubit_reduction"`
	Threshold         float64 `toml:"threshold" yaml:"threshold"`
	Chop              float64 `toml:"chop" yaml:"chop"`

	Ansatz           string `toml:"ansatz" yaml:"ansatz"`
	Depth            int    `toml:"depth" yaml:"depth"`
	ActiveOccupied   []int  `toml:"active_occupied" yaml:"active_occupied"`
	ActiveUnoccupied []int  `toml:"active_unoccupied" yaml:"active_unoccupied"`
	SameSpinDoubles  bool   `toml:"same_spin_doubles" yaml:"same_spin_doubles"`
	Optimizer        string `toml:"optimizer" yaml:"optimizer"`
	MaxEval          int    `toml:"max_eval" yaml:"max_eval"`
	K                int    `toml:"k" yaml:"k"`
}

// Default is the LiH frozen-core run
func Default() *Config {
	return &Config{
		Geometry:          "Li 0.0 0.0 0.0; H 0.0 0.0 1.6",
		Unit:              "angstrom",
		Basis:             "sto3g",
		Driver:            "scf",
		Freeze:            []int{0},
		Remove:            []int{-3, -2},
		Mapping:           "parity",
		TwoQubitReduction: true,
		Threshold:         1e-8,
		Chop:              1e-10,
		Ansatz:            "uccsd",
		Depth:             1,
		SameSpinDoubles:   true,
		Optimizer:         "nelder-mead",
		MaxEval:           vqe.DefaultMaxEvaluations,
		K:                 1,
	}
}

// Load reads filename over the defaults, choosing the format by
// extension: .toml, .yaml or .yml, anything else is a keyword file. The
// LiH freeze and remove lists only apply to the LiH geometry: a file that
// names its own molecule, or reads an FCIDUMP, starts with empty lists.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	c := Default()
	c.Geometry = ""
	c.Freeze, c.Remove = nil, nil
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		var keymap map[Key]string
		keymap, err = ParseInfile(strings.NewReader(string(data)))
		if err == nil {
			err = c.apply(keymap)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filename, err)
	}
	if c.Geometry == "" && c.GeometryFile == "" && !c.fcidump() {
		d := Default()
		c.Geometry = d.Geometry
		if c.Freeze == nil {
			c.Freeze = d.Freeze
		}
		if c.Remove == nil {
			c.Remove = d.Remove
		}
	}
	return c, nil
}

func (c *Config) fcidump() bool {
	return strings.EqualFold(c.Driver, "fcidump")
}

// Validate checks names and ranges without building anything
func (c *Config) Validate() error {
	fcidump := c.fcidump()
	if !fcidump && c.GeometryFile == "" && strings.TrimSpace(c.Geometry) == "" {
		return fmt.Errorf("%w: empty geometry", ErrInvalid)
	}
	if !fcidump && c.MolproOutput != "" {
		return fmt.Errorf("%w: molpro_output needs the fcidump driver", ErrInvalid)
	}
	if fcidump && c.FCIDump == "" {
		return fmt.Errorf("%w: fcidump driver without a file", ErrInvalid)
	}
	if _, err := chem.ParseUnit(c.Unit); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := qubit.MappingByName(c.Mapping); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := vqe.ParseOptimizer(c.Optimizer); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch strings.ToLower(c.Ansatz) {
	case "", "uccsd", "ry":
	default:
		return fmt.Errorf("%w: %v %q", ErrInvalid, vqe.ErrUnknownAnsatz, c.Ansatz)
	}
	switch {
	case c.Spin < 0:
		return fmt.Errorf("%w: negative spin %d", ErrInvalid, c.Spin)
	case c.Depth < 1:
		return fmt.Errorf("%w: depth %d", ErrInvalid, c.Depth)
	case c.MaxEval < 0:
		return fmt.Errorf("%w: max_eval %d", ErrInvalid, c.MaxEval)
	case c.Threshold < 0 || c.Chop < 0:
		return fmt.Errorf("%w: negative threshold", ErrInvalid)
	case c.K < 1:
		return fmt.Errorf("%w: k %d", ErrInvalid, c.K)
	}
	return nil
}

// UnitValue is the parsed Unit
func (c *Config) UnitValue() chem.Unit {
	u, err := chem.ParseUnit(c.Unit)
	if err != nil {
		return chem.Angstrom
	}
	return u
}
