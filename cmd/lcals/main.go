// Command lcals runs the loop suite and inspects stored timings.
//
// To time the default suite: `go run ./cmd/lcals run --db=lcals.db`
//
// To check kernel results: `go run ./cmd/lcals checksum --final-snapshot=final.npz`
//
// To print a stored run: `go run ./cmd/lcals results --db=lcals.db`
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/ahmedtd/lcals/suite"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&RunCommand{}, "")
	subcommands.Register(&ChecksumCommand{}, "")
	subcommands.Register(&LoopsCommand{}, "")
	subcommands.Register(&ResultsCommand{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

// suiteFlags are shared by the commands that execute the suite.  Zero values
// leave the configuration file untouched.
type suiteFlags struct {
	configFile string

	precision      string
	variants       string
	loops          string
	passes         int
	sampleFraction float64

	initSnapshot   string
	finalSnapshot  string
	snapshotFormat string

	logLevel string
	logJSON  bool

	cpuProfileFile string
}

func (s *suiteFlags) setFlags(f *flag.FlagSet) {
	f.StringVar(&s.configFile, "config", "", "Path to a YAML suite configuration (defaults to the built-in configuration)")

	f.StringVar(&s.precision, "precision", "", "Override the real type: float32 or float64")
	f.StringVar(&s.variants, "variants", "", "Override the comma-separated variant list (raw, forall, asm)")
	f.StringVar(&s.loops, "loops", "", "Override the comma-separated loop list; empty runs every loop")
	f.IntVar(&s.passes, "passes", 0, "Override the number of passes")
	f.Float64Var(&s.sampleFraction, "sample-fraction", 0, "Override the sample count scale factor")

	f.StringVar(&s.initSnapshot, "init-snapshot", "", "Load loop inputs from this workspace snapshot")
	f.StringVar(&s.finalSnapshot, "final-snapshot", "", "Write the final workspace to this snapshot")
	f.StringVar(&s.snapshotFormat, "snapshot-format", suite.FormatNPZ, "Snapshot format: npz or safetensors")

	f.StringVar(&s.logLevel, "log-level", "info", "Log level")
	f.BoolVar(&s.logJSON, "log-json", false, "Log in JSON")

	f.StringVar(&s.cpuProfileFile, "cpu-profile", "", "Write a CPU profile")
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *suiteFlags) config() (suite.Config, error) {
	cfg := suite.DefaultConfig()
	if s.configFile != "" {
		var err error
		cfg, err = suite.LoadConfig(s.configFile)
		if err != nil {
			return suite.Config{}, fmt.Errorf("while loading config: %w", err)
		}
	}

	if s.precision != "" {
		cfg.Precision = s.precision
	}
	if s.variants != "" {
		cfg.Variants = splitList(s.variants)
	}
	if s.loops != "" {
		cfg.Loops = splitList(s.loops)
	}
	if s.passes != 0 {
		cfg.Passes = s.passes
	}
	if s.sampleFraction != 0 {
		cfg.SampleFraction = s.sampleFraction
	}

	if err := cfg.Validate(); err != nil {
		return suite.Config{}, fmt.Errorf("while validating config: %w", err)
	}
	return cfg, nil
}

func (s *suiteFlags) logger() (*logrus.Logger, error) {
	return suite.NewLogger(os.Stderr, s.logLevel, s.logJSON)
}

func (s *suiteFlags) options(runID string, log logrus.FieldLogger, sinks ...suite.Sink) suite.Options {
	return suite.Options{
		RunID:          runID,
		Log:            log,
		Sinks:          sinks,
		InitSnapshot:   s.initSnapshot,
		FinalSnapshot:  s.finalSnapshot,
		SnapshotFormat: s.snapshotFormat,
	}
}

// startCPUProfile returns the function that stops the profile.
func (s *suiteFlags) startCPUProfile() (func(), error) {
	if s.cpuProfileFile == "" {
		return func() {}, nil
	}

	f, err := os.Create(s.cpuProfileFile)
	if err != nil {
		return nil, fmt.Errorf("while creating CPU profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("while starting CPU profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

func exitStatus(err error) subcommands.ExitStatus {
	if err != nil {
		logrus.Errorf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
