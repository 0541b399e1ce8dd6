package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/ssangskriti/qiskit-tutorials/internal/chem"
	"github.com/ssangskriti/qiskit-tutorials/internal/config"
	"github.com/ssangskriti/qiskit-tutorials/internal/eigen"
	"github.com/ssangskriti/qiskit-tutorials/internal/hamiltonian"
	"github.com/ssangskriti/qiskit-tutorials/internal/qubit"
	"github.com/ssangskriti/qiskit-tutorials/internal/vqe"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// options holds the command line flags; the rest comes from the input
// file
type options struct {
	input     string
	verbose   bool
	mapping   string
	ansatz    string
	optimizer string
	maxEval   int

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "qvqe",
		Short: "Ground state energies from molecular integrals",
		Long: `qvqe builds the qubit Hamiltonian of a molecule, diagonalizes it
exactly and runs a variational quantum eigensolver on a simulated
statevector.

Without an input file it runs the frozen-core LiH example.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if opts.verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger.With(zap.String("run", uuid.NewString()))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd.OutOrStdout(), c, opts.logger)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.input, "input", "i", "", "input file: keyword, .toml or .yaml")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	root.Flags().StringVar(&opts.mapping, "mapping", "", "override the fermion-to-qubit mapping")
	root.Flags().StringVar(&opts.ansatz, "ansatz", "", "override the ansatz")
	root.Flags().StringVar(&opts.optimizer, "optimizer", "", "override the optimizer")
	root.Flags().IntVar(&opts.maxEval, "max-eval", 0, "override the evaluation budget")

	root.AddCommand(&cobra.Command{
		Use:   "molpro-input FILE",
		Short: "Write a Molpro input that dumps integrals for the configured molecule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.load(cmd)
			if err != nil {
				return err
			}
			mol, err := molecule(c)
			if err != nil {
				return err
			}
			var prog chem.Program = chem.Molpro{Basis: c.Basis, Charge: c.Charge, Spin: c.Spin}
			if err := prog.WriteIn(args[0], mol); err != nil {
				return err
			}
			opts.logger.Info("wrote Molpro input", zap.String("file", args[0]))
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "fcidump FILE",
		Short: "Run the integral driver and write the integrals in FCIDUMP format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.load(cmd)
			if err != nil {
				return err
			}
			data, err := integrals(cmd.Context(), c, opts.logger)
			if err != nil {
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := chem.WriteFCIDump(f, data); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	})
	return root
}

// load reads the input file, or the defaults without one, and applies
// the flags given explicitly on the command line
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	c := config.Default()
	if o.input != "" {
		var err error
		c, err = config.Load(o.input)
		if err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("mapping") {
		c.Mapping = o.mapping
	}
	if flags.Changed("ansatz") {
		c.Ansatz = o.ansatz
	}
	if flags.Changed("optimizer") {
		c.Optimizer = o.optimizer
	}
	if flags.Changed("max-eval") {
		c.MaxEval = o.maxEval
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func molecule(c *config.Config) (*chem.Molecule, error) {
	if c.GeometryFile != "" {
		return chem.LoadMolecule(c.GeometryFile, c.Basis, c.Charge, c.Spin)
	}
	return chem.NewMolecule(c.Geometry, c.UnitValue(), c.Basis, c.Charge, c.Spin)
}

func integrals(ctx context.Context, c *config.Config, logger *zap.Logger) (*chem.MolecularData, error) {
	driver, err := chem.NewDriver(chem.DriverOptions{
		Name:          c.Driver,
		FCIDump:       c.FCIDump,
		MolproOutput:  c.MolproOutput,
		MaxIterations: c.SCFMaxIter,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	var mol *chem.Molecule
	if !strings.EqualFold(c.Driver, "fcidump") {
		mol, err = molecule(c)
		if err != nil {
			return nil, err
		}
	}
	return driver.Run(ctx, mol)
}

func run(ctx context.Context, w io.Writer, c *config.Config, logger *zap.Logger) error {
	data, err := integrals(ctx, c, logger)
	if err != nil {
		return err
	}
	mapping, err := qubit.MappingByName(c.Mapping)
	if err != nil {
		return err
	}
	b := &hamiltonian.Builder{
		Mapping:           mapping,
		TwoQubitReduction: c.TwoQubitReduction,
		Threshold:         c.Threshold,
		Chop:              c.Chop,
		Logger:            logger,
	}
	res, err := b.Build(data, c.Freeze, c.Remove)
	if err != nil {
		return err
	}
	offset := res.EnergyShift + data.NuclearRepulsion

	fmt.Fprintf(w, "HF electronic energy: %.12f\n", data.HFEnergy-data.NuclearRepulsion)
	fmt.Fprintf(w, "HF total energy: %.12f\n", data.HFEnergy)
	fmt.Fprintf(w, "number of particles: %d\n", res.NumParticles())
	fmt.Fprintf(w, "number of spin orbitals: %d\n", res.NumSpinOrbitals)
	fmt.Fprintf(w, "number of qubits: %d\n", res.NumQubits())
	fmt.Fprintf(w, "energy shift: %.12f\n", res.EnergyShift)
	fmt.Fprintf(w, "nuclear repulsion: %.12f\n", data.NuclearRepulsion)
	fmt.Fprintf(w, "Pauli terms (%d):\n%s", res.Operator.Len(), res.Operator)

	number, alpha, err := res.NumberOperators()
	if err != nil {
		return err
	}
	solver := &eigen.ExactEigensolver{
		K: c.K,
		Symmetries: []eigen.Symmetry{
			{Operator: number, Value: float64(res.NumParticles())},
			{Operator: alpha, Value: float64(res.NumAlpha)},
		},
		Logger: logger,
	}
	exact, err := solver.Run(res.Operator)
	switch {
	case errors.Is(err, eigen.ErrTooManyQubits):
		logger.Warn("skipping exact diagonalization", zap.Error(err))
	case err != nil:
		return err
	default:
		for i, e := range exact.Eigenvalues {
			fmt.Fprintf(w, "exact eigenvalue %d: %.12f total: %.12f\n", i, e, e+offset)
		}
	}

	ansatz, err := vqe.NewAnsatz(c.Ansatz, res, vqe.UCCSDOptions{
		Depth:            c.Depth,
		ActiveOccupied:   c.ActiveOccupied,
		ActiveUnoccupied: c.ActiveUnoccupied,
		SameSpinDoubles:  c.SameSpinDoubles,
	})
	if err != nil {
		return err
	}
	opt, err := vqe.ParseOptimizer(c.Optimizer)
	if err != nil {
		return err
	}
	v := &vqe.VQE{
		Operator:       res.Operator,
		Ansatz:         ansatz,
		Optimizer:      opt,
		MaxEvaluations: c.MaxEval,
		Logger:         logger,
	}
	vres, err := v.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "VQE eigenvalue: %.12f total: %.12f\n", vres.Eigenvalue, vres.Eigenvalue+offset)
	fmt.Fprintf(w, "VQE evaluations: %d\n", vres.Evaluations)
	fmt.Fprintf(w, "optimal parameters: %.8f\n", vres.OptimalParameters)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
