package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/ahmedtd/lcals/loops"
	"github.com/ahmedtd/lcals/suite"
	"github.com/google/subcommands"
)

type ChecksumCommand struct {
	suiteFlags

	samples int
}

var _ subcommands.Command = (*ChecksumCommand)(nil)

func (*ChecksumCommand) Name() string {
	return "checksum"
}

func (*ChecksumCommand) Synopsis() string {
	return "Run every loop a few samples and print output checksums"
}

func (*ChecksumCommand) Usage() string {
	return `checksum [flags]

Runs the suite in checksum mode, which replaces every configured sample count
with a small fixed count, and prints the checksum of each loop's outputs.
`
}

func (c *ChecksumCommand) SetFlags(f *flag.FlagSet) {
	c.suiteFlags.setFlags(f)
	f.IntVar(&c.samples, "samples", 0, fmt.Sprintf("Samples per loop (defaults to the configured count, normally %d)", loops.DefaultChecksumSamples))
}

func (c *ChecksumCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return exitStatus(c.executeErr(ctx))
}

func (c *ChecksumCommand) executeErr(ctx context.Context) error {
	log, err := c.logger()
	if err != nil {
		return err
	}

	cfg, err := c.config()
	if err != nil {
		return err
	}
	cfg.Checksum.Enabled = true
	if c.samples != 0 {
		cfg.Checksum.Samples = c.samples
	}

	stopProfile, err := c.startCPUProfile()
	if err != nil {
		return err
	}
	defer stopProfile()

	results, err := suite.Run(ctx, cfg, c.options("", log))
	if err != nil {
		return fmt.Errorf("while running suite: %w", err)
	}

	return printChecksums(os.Stdout, results)
}

func printChecksums(w io.Writer, results []suite.Result) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "PASS\tVARIANT\tLOOP\tCLASS\tLENGTH\tSAMPLES\tCHECKSUM")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%v\t%v\t%v\t%d\t%d\t%.17g\n", r.Pass, r.Variant, r.Loop, r.Class, r.Length, r.Samples, r.Checksum)
	}
	return tw.Flush()
}
