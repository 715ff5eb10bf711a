package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ahmedtd/lcals/store"
	"github.com/google/subcommands"
)

type ResultsCommand struct {
	dbFile string
	runID  string
	list   bool
	limit  int
}

var _ subcommands.Command = (*ResultsCommand)(nil)

func (*ResultsCommand) Name() string {
	return "results"
}

func (*ResultsCommand) Synopsis() string {
	return "Print the raw timings of a stored run"
}

func (*ResultsCommand) Usage() string {
	return `results [flags]

Prints every timing of one run, by default the most recent.  With --list,
prints the stored runs instead.
`
}

func (c *ResultsCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dbFile, "db", "lcals.db", "Path to the SQLite results database")
	f.StringVar(&c.runID, "run", "", "Run to print (defaults to the most recent run)")
	f.BoolVar(&c.list, "list", false, "List stored runs")
	f.IntVar(&c.limit, "limit", 20, "Number of runs to list")
}

func (c *ResultsCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return exitStatus(c.executeErr(ctx))
}

func (c *ResultsCommand) executeErr(ctx context.Context) error {
	db, err := store.NewSQLiteStore(c.dbFile)
	if err != nil {
		return fmt.Errorf("while opening results database: %w", err)
	}
	defer db.Close()

	if c.list {
		runs, err := db.ListRuns(ctx, c.limit)
		if err != nil {
			return fmt.Errorf("while listing runs: %w", err)
		}
		return printRuns(os.Stdout, runs)
	}

	runID := c.runID
	if runID == "" {
		runs, err := db.ListRuns(ctx, 1)
		if err != nil {
			return fmt.Errorf("while finding latest run: %w", err)
		}
		if len(runs) == 0 {
			return fmt.Errorf("no runs stored in %s", c.dbFile)
		}
		runID = runs[0].ID
	}

	timings, err := db.ListTimings(ctx, runID)
	if err != nil {
		return fmt.Errorf("while reading timings of run %s: %w", runID, err)
	}
	return printTimings(os.Stdout, timings)
}

func printRuns(w io.Writer, runs []*store.Run) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tPRECISION\tCHECKSUM\tPLATFORM")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", r.ID, r.StartedAt.Format(time.RFC3339), r.Precision, r.ChecksumMode, r.Platform)
	}
	return tw.Flush()
}

func printTimings(w io.Writer, timings []store.Timing) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "PASS\tVARIANT\tLOOP\tCLASS\tLENGTH\tSAMPLES\tELAPSED\tCHECKSUM")
	for _, t := range timings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%v\t%.17g\n",
			t.Pass, t.Variant, t.Loop, t.Class, t.Length, t.Samples, time.Duration(t.ElapsedNS), t.Checksum)
	}
	return tw.Flush()
}
