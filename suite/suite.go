package suite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ahmedtd/lcals/loops"
	"github.com/sirupsen/logrus"
)

// Result is one timed loop measurement.
type Result struct {
	RunID    string
	Pass     int
	Variant  loops.Variant
	Loop     loops.LoopID
	Class    loops.SizeClass
	Length   int
	Samples  int
	Elapsed  time.Duration
	Checksum float64
}

// Sink receives every Result as soon as it is measured.
type Sink interface {
	Record(ctx context.Context, r Result) error
}

// Collector is a Sink that keeps results in memory.
type Collector struct {
	Results []Result
}

func (c *Collector) Record(_ context.Context, r Result) error {
	c.Results = append(c.Results, r)
	return nil
}

type Options struct {
	RunID string

	// Log defaults to a logger that discards everything.
	Log logrus.FieldLogger

	Sinks []Sink

	// InitSnapshot, when set, names a snapshot whose inputs are loaded before
	// every loop in place of the reference pattern.
	InitSnapshot string

	// FinalSnapshot, when set, names a file the workspace is written to once
	// the run completes.
	FinalSnapshot string

	// SnapshotFormat applies to both snapshots.  Defaults to FormatNPZ.
	SnapshotFormat string
}

func (o *Options) logger() logrus.FieldLogger {
	if o.Log != nil {
		return o.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (o *Options) format() string {
	if o.SnapshotFormat == "" {
		return FormatNPZ
	}
	return o.SnapshotFormat
}

// Run executes cfg: every pass runs every configured variant over every size
// class, in that nesting order.  Each measured loop is passed to the sinks and
// returned.
func Run(ctx context.Context, cfg Config, opts Options) ([]Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("while validating config: %w", err)
	}

	switch cfg.Precision {
	case "float32":
		return run[float32](ctx, cfg, opts)
	default:
		return run[float64](ctx, cfg, opts)
	}
}

func run[T loops.Real](ctx context.Context, cfg Config, opts Options) ([]Result, error) {
	log := opts.logger().WithFields(logrus.Fields{
		"run":       opts.RunID,
		"precision": loops.PrecisionName[T](),
	})

	ids, err := cfg.LoopIDs()
	if err != nil {
		return nil, err
	}
	selection, err := cfg.Selection()
	if err != nil {
		return nil, err
	}
	variants, err := cfg.VariantList()
	if err != nil {
		return nil, err
	}

	stats := cfg.Stats()
	for i := range stats {
		if err := stats[i].Validate(); err != nil {
			return nil, fmt.Errorf("while validating loop parameters: %w", err)
		}
	}

	ws := loops.NewWorkspace[T](cfg.MaxLength())
	if err := ws.CheckCapacity(stats); err != nil {
		return nil, err
	}

	var hooks loops.Hooks[T] = ReferenceInit[T]{}
	if opts.InitSnapshot != "" {
		src, err := readSnapshotFile[T](opts.InitSnapshot, opts.format())
		if err != nil {
			return nil, fmt.Errorf("while loading initial snapshot: %w", err)
		}
		if err := src.CheckCapacity(stats); err != nil {
			return nil, fmt.Errorf("initial snapshot: %w", err)
		}
		hooks = &SnapshotInit[T]{Source: src}
	}

	runners := []*loops.Runner[T]{}
	for _, v := range variants {
		catalog, err := loops.NewCatalog[T](v, ids...)
		if err != nil {
			return nil, fmt.Errorf("while building %v catalog: %w", v, err)
		}
		runners = append(runners, &loops.Runner[T]{
			Catalog:   catalog,
			Workspace: ws,
			Config:    cfg.RunConfig(),
			Hooks:     hooks,
		})
	}

	results := []Result{}
	for pass := 0; pass < cfg.Passes; pass++ {
		passStart := time.Now()
		passResults := 0

		for _, runner := range runners {
			for class := loops.SizeClass(0); class < loops.NumSizeClasses; class++ {
				if err := ctx.Err(); err != nil {
					return results, err
				}

				for i := range stats {
					stats[i].Time[class] = -1
				}

				runner.Run(stats, selection, class)

				for i := range stats {
					stat := &stats[i]
					if stat.Time[class] < 0 {
						continue
					}

					r := Result{
						RunID:    opts.RunID,
						Pass:     pass,
						Variant:  runner.Catalog.Variant(),
						Loop:     stat.ID,
						Class:    class,
						Length:   stat.Length[class],
						Samples:  runner.Config.EffectiveSamples(stat, class),
						Elapsed:  stat.Time[class],
						Checksum: stat.Checksum[class],
					}

					log.WithFields(logrus.Fields{
						"loop":     r.Loop,
						"variant":  r.Variant,
						"class":    r.Class,
						"length":   r.Length,
						"samples":  r.Samples,
						"elapsed":  r.Elapsed,
						"checksum": r.Checksum,
					}).Debug("Timed loop")

					for _, sink := range opts.Sinks {
						if err := sink.Record(ctx, r); err != nil {
							return results, fmt.Errorf("while recording %v/%v/%v: %w", r.Variant, r.Loop, r.Class, err)
						}
					}

					results = append(results, r)
					passResults++
				}
			}
		}

		log.WithFields(logrus.Fields{
			"pass":    pass,
			"results": passResults,
			"elapsed": time.Since(passStart),
		}).Info("Finished pass")
	}

	if opts.FinalSnapshot != "" {
		if err := writeSnapshotFile(opts.FinalSnapshot, ws, opts.format()); err != nil {
			return results, fmt.Errorf("while writing final snapshot: %w", err)
		}
		log.WithField("path", opts.FinalSnapshot).Info("Wrote final snapshot")
	}

	return results, nil
}

func readSnapshotFile[T loops.Real](path, format string) (*loops.Workspace[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("while opening snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("while checking snapshot size: %w", err)
	}

	return ReadSnapshot[T](f, info.Size(), format)
}

func writeSnapshotFile[T loops.Real](path string, ws *loops.Workspace[T], format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("while creating snapshot: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return WriteSnapshot(f, ws, format)
}
