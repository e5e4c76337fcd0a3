// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"contactmap/internal/config"
)

// Options holds all CLI flags and arguments.
type Options struct {
	// Input
	Dataset    string
	Sequences  string
	PDBDir     string
	AFDir      string
	ConfigFile string
	EnvFiles   []string

	// Map settings; applied over the config only when given explicitly.
	Threshold  float64
	TargetSize int
	MinPoints  int
	FirstChain bool

	// Performance
	Threads int
	MaxOpen int

	// Output
	OutDir          string
	Upload          string
	Region          string
	NoMatchExitCode int

	// Misc
	Progress bool
	Quiet    bool
	Verbose  bool
	Version  bool

	set map[string]bool
}

// ParseArgs registers and parses all flags, returns an Options struct.
// A single positional argument is taken as the dataset.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool
	installUsage(fs, fs.Name())
	def := config.Default()

	// Input
	fs.StringVar(&opt.Dataset, "dataset", "", "CSV dataset [*]")
	fs.StringVar(&opt.Sequences, "sequences", "", "FASTA of reference sequences keyed by domain id")
	fs.StringVar(&opt.PDBDir, "pdb-dir", "data/pdb", "experimental structure directory")
	fs.StringVar(&opt.AFDir, "af-dir", "data/alphafold", "predicted structure directory")
	fs.StringVar(&opt.ConfigFile, "config", "", "YAML settings file")
	var envs stringSlice
	fs.Var(&envs, "env", ".env file (repeatable)")

	// Maps
	fs.Float64Var(&opt.Threshold, "threshold", def.ContactThreshold, "contact distance threshold")
	fs.IntVar(&opt.TargetSize, "target-size", def.TargetSize, "output map side length")
	fs.IntVar(&opt.MinPoints, "min-points", def.MinPoints, "minimum aligned residues")
	fs.BoolVar(&opt.FirstChain, "first-chain", false, "use only the first chain")

	// Performance
	fs.IntVar(&opt.Threads, "threads", 0, "worker threads (0 = all CPUs)")
	fs.IntVar(&opt.Threads, "t", 0, "worker threads (shorthand)")
	fs.IntVar(&opt.MaxOpen, "max-open", 64, "structure files read at once")

	// Output
	fs.StringVar(&opt.OutDir, "out", "data/features", "output directory")
	fs.StringVar(&opt.OutDir, "o", "data/features", "output directory (shorthand)")
	fs.StringVar(&opt.Upload, "upload", "", "s3://bucket/prefix to copy artifacts to")
	fs.StringVar(&opt.Region, "region", "us-east-1", "AWS region")
	fs.IntVar(&opt.NoMatchExitCode, "no-match-exit-code", 1, "exit code when no record is kept")

	// Misc
	fs.BoolVar(&opt.Progress, "progress", false, "progress bar")
	fs.BoolVar(&opt.Quiet, "quiet", false, "warnings and errors only")
	fs.BoolVar(&opt.Quiet, "q", false, "warnings and errors only (shorthand)")
	fs.BoolVar(&opt.Verbose, "verbose", false, "log every skipped record")
	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand)")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand)")
	fs.BoolVar(&help, "help", false, "show this help message")

	flagArgs, pos := splitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return opt, err
	}
	if help {
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}
	opt.EnvFiles = envs
	opt.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { opt.set[f.Name] = true })

	// Validation
	switch {
	case len(pos) > 1:
		return opt, fmt.Errorf("unexpected arguments: %s", strings.Join(pos[1:], " "))
	case len(pos) == 1 && opt.Dataset != "":
		return opt, errors.New("dataset given both as --dataset and as an argument")
	case len(pos) == 1:
		opt.Dataset = pos[0]
	}
	if opt.Dataset == "" {
		return opt, errors.New("--dataset is required")
	}
	if opt.OutDir == "" {
		return opt, errors.New("--out must not be empty")
	}
	if opt.Threads < 0 {
		return opt, errors.New("--threads must be ≥ 0")
	}
	if opt.MaxOpen < 1 {
		return opt, errors.New("--max-open must be ≥ 1")
	}
	if opt.Threshold <= 0 {
		return opt, errors.New("--threshold must be > 0")
	}
	if opt.TargetSize < 1 {
		return opt, errors.New("--target-size must be ≥ 1")
	}
	if opt.MinPoints < 1 {
		return opt, errors.New("--min-points must be ≥ 1")
	}
	if opt.Quiet && opt.Verbose {
		return opt, errors.New("--quiet conflicts with --verbose")
	}
	if opt.Upload != "" && !strings.HasPrefix(opt.Upload, "s3://") {
		return opt, fmt.Errorf("invalid --upload %q (want s3://bucket/prefix)", opt.Upload)
	}
	return opt, nil
}

// Set reports whether the named flag was given on the command line.
func (o Options) Set(name string) bool { return o.set[name] }

// Overlay applies explicitly given map flags on top of c.
func (o Options) Overlay(c config.Config) config.Config {
	if o.Set("threshold") {
		c.ContactThreshold = o.Threshold
	}
	if o.Set("target-size") {
		c.TargetSize = o.TargetSize
	}
	if o.Set("min-points") {
		c.MinPoints = o.MinPoints
	}
	if o.FirstChain {
		c.Chains = config.ChainsFirst
	}
	return c
}

// stringSlice allows repeatable string flags.
type stringSlice []string

func (s *stringSlice) String() string     { return strings.Join(*s, ",") }
func (s *stringSlice) Set(v string) error { *s = append(*s, v); return nil }
