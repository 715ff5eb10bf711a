package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/ahmedtd/lcals/store"
	"github.com/ahmedtd/lcals/suite"
	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"
)

type RunCommand struct {
	suiteFlags

	dbFile          string
	metricsTextfile string
}

var _ subcommands.Command = (*RunCommand)(nil)

func (*RunCommand) Name() string {
	return "run"
}

func (*RunCommand) Synopsis() string {
	return "Time the configured loops and store the raw timings"
}

func (*RunCommand) Usage() string {
	return `run [flags]

Runs every configured pass, variant and size class, and records one timing
per loop into the results database.
`
}

func (c *RunCommand) SetFlags(f *flag.FlagSet) {
	c.suiteFlags.setFlags(f)
	f.StringVar(&c.dbFile, "db", "lcals.db", "Path to the SQLite results database")
	f.StringVar(&c.metricsTextfile, "metrics-textfile", "", "Write the last timings as a Prometheus textfile")
}

func (c *RunCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return exitStatus(c.executeErr(ctx))
}

func (c *RunCommand) executeErr(ctx context.Context) error {
	log, err := c.logger()
	if err != nil {
		return err
	}

	cfg, err := c.config()
	if err != nil {
		return err
	}

	cfgYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("while marshaling config: %w", err)
	}

	db, err := store.NewSQLiteStore(c.dbFile)
	if err != nil {
		return fmt.Errorf("while opening results database: %w", err)
	}
	defer db.Close()

	run := &store.Run{
		ID:           store.NewRunID(),
		StartedAt:    time.Now().UTC(),
		Precision:    cfg.Precision,
		ChecksumMode: cfg.Checksum.Enabled,
		Platform:     suite.Platform(),
		Config:       string(cfgYAML),
	}
	if err := db.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("while creating run: %w", err)
	}

	log.WithField("run", run.ID).WithField("platform", run.Platform).Info("Starting run")

	stopProfile, err := c.startCPUProfile()
	if err != nil {
		return err
	}
	defer stopProfile()

	metrics := suite.NewMetrics()
	results, err := suite.Run(ctx, cfg, c.options(run.ID, log, store.Sink{Store: db}, metrics))
	if err != nil {
		return fmt.Errorf("while running suite: %w", err)
	}

	if c.metricsTextfile != "" {
		if err := metrics.WriteTextfile(c.metricsTextfile); err != nil {
			return err
		}
	}

	fmt.Printf("run %s: %d timings\n", run.ID, len(results))
	return nil
}
