package loops

import "time"

// Hooks run per loop around the timed region, both outside of it.
type Hooks[T Real] interface {
	// LoopInit prepares the workspace for k before its slices are resolved.
	LoopInit(k *Kernel[T], ws *Workspace[T], stat *Stat, class SizeClass)

	// LoopFinalize runs after the timer has stopped and the batch result has
	// been observed.
	LoopFinalize(k *Kernel[T], ws *Workspace[T], stat *Stat, class SizeClass)
}

// Runner executes the selected loops of a Catalog one at a time.
type Runner[T Real] struct {
	Catalog   *Catalog[T]
	Workspace *Workspace[T]
	Config    RunConfig

	// Hooks is optional.
	Hooks Hooks[T]
}

// Run makes one pass over stats for class.  stats and selection are indexed by
// LoopID.  A loop is timed when it is selected and registered in the catalog;
// otherwise it is skipped and its stat is left untouched.
func (r *Runner[T]) Run(stats []Stat, selection []bool, class SizeClass) {
	for iloop := range stats {
		if iloop >= len(selection) || !selection[iloop] {
			continue
		}

		k, ok := r.Catalog.Lookup(LoopID(iloop))
		if !ok {
			continue
		}

		stat := &stats[iloop]
		length := stat.Length[class]
		samples := r.Config.EffectiveSamples(stat, class)

		stat.Time[class] = r.time(k, stat, class, length, samples)
	}
}

func (r *Runner[T]) time(k *Kernel[T], stat *Stat, class SizeClass, length, samples int) time.Duration {
	if r.Hooks != nil {
		r.Hooks.LoopInit(k, r.Workspace, stat, class)
	}

	batch := k.Prepare(r.Workspace, length)

	var ltimer Timer
	ltimer.Start()
	batch.Run(samples)
	ltimer.Stop()

	if batch.Observe != nil {
		batch.Observe()
	}

	if r.Hooks != nil {
		r.Hooks.LoopFinalize(k, r.Workspace, stat, class)
	}

	return ltimer.Elapsed()
}
