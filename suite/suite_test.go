package suite

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ahmedtd/lcals/loops"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// smallConfig runs the default variants over short lengths.  extra must not
// repeat the size_classes key.
func smallConfig(t *testing.T, extra string) Config {
	t.Helper()
	yaml := `
size_classes:
  long: {length: 64, samples: 3}
  medium: {length: 16, samples: 5}
  short: {length: 4, samples: 7}
` + extra
	cfg, err := ParseConfig([]byte(yaml))
	if err != nil {
		t.Fatalf("Unexpected error parsing config: %v", err)
	}
	return cfg
}

type resultKey struct {
	Pass    int
	Variant loops.Variant
	Loop    loops.LoopID
	Class   loops.SizeClass
}

func TestRunVisitsEveryPassVariantClassAndLoop(t *testing.T) {
	cfg := smallConfig(t, "passes: 2\n")

	results, err := Run(context.Background(), cfg, Options{RunID: "r1"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := []resultKey{}
	for _, r := range results {
		got = append(got, resultKey{r.Pass, r.Variant, r.Loop, r.Class})
	}

	want := []resultKey{}
	for pass := 0; pass < 2; pass++ {
		for _, v := range []loops.Variant{loops.Raw, loops.Forall} {
			for c := loops.SizeClass(0); c < loops.NumSizeClasses; c++ {
				for id := loops.LoopID(0); id < loops.NumLoops; id++ {
					want = append(want, resultKey{pass, v, id, c})
				}
			}
		}
	}

	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Wrong result order; diff (-got +want)\n%s", diff)
	}

	for _, r := range results {
		if r.RunID != "r1" {
			t.Errorf("Result %+v has run id %q, want r1", r, r.RunID)
		}
		if r.Elapsed < 0 {
			t.Errorf("Result %+v has negative elapsed time", r)
		}
		if diff := cmp.Diff(r.Length, cfg.SizeClasses[r.Class.String()].Length); diff != "" {
			t.Errorf("Wrong length for %+v; diff (-got +want)\n%s", r, diff)
		}
		if diff := cmp.Diff(r.Samples, cfg.Samples(r.Loop, r.Class)); diff != "" {
			t.Errorf("Wrong samples for %+v; diff (-got +want)\n%s", r, diff)
		}
	}
}

func TestRunVariantsProduceSameChecksums(t *testing.T) {
	cfg := smallConfig(t, "")

	results, err := Run(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	byVariant := map[loops.Variant]map[resultKey]float64{}
	for _, r := range results {
		if byVariant[r.Variant] == nil {
			byVariant[r.Variant] = map[resultKey]float64{}
		}
		byVariant[r.Variant][resultKey{Pass: r.Pass, Loop: r.Loop, Class: r.Class}] = r.Checksum
	}

	if diff := cmp.Diff(byVariant[loops.Forall], byVariant[loops.Raw], cmpopts.EquateApprox(1e-12, 0)); diff != "" {
		t.Errorf("Forall checksums differ from raw; diff (-got +want)\n%s", diff)
	}
}

func TestRunChecksumMode(t *testing.T) {
	cfg := smallConfig(t, `
passes: 2
loops: [INIT3, TRAP_INT]
checksum: {enabled: true, samples: 2}
`)

	sink := &Collector{}
	results, err := Run(context.Background(), cfg, Options{Sinks: []Sink{sink}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if diff := cmp.Diff(len(results), 2*2*3*2); diff != "" {
		t.Fatalf("Wrong result count; diff (-got +want)\n%s", diff)
	}
	for _, r := range results {
		if r.Samples != 2 {
			t.Errorf("Result %v/%v/%v ran %d samples, want 2", r.Variant, r.Loop, r.Class, r.Samples)
		}
	}

	if diff := cmp.Diff(sink.Results, results); diff != "" {
		t.Errorf("Sink saw different results; diff (-got +want)\n%s", diff)
	}
}

func TestRunIsRepeatable(t *testing.T) {
	cfg := smallConfig(t, "")

	first, err := Run(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := Run(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if diff := cmp.Diff(second, first, cmpopts.IgnoreFields(Result{}, "Elapsed")); diff != "" {
		t.Errorf("Second run differs; diff (-got +want)\n%s", diff)
	}
}

func TestRunFloat32(t *testing.T) {
	cfg := smallConfig(t, "precision: float32\n")

	results, err := Run(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(len(results), 2*3*4); diff != "" {
		t.Errorf("Wrong result count; diff (-got +want)\n%s", diff)
	}
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	cfg := smallConfig(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Run(ctx, cfg, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want %v", err, context.Canceled)
	}
	if len(results) != 0 {
		t.Errorf("Run returned %d results after cancellation, want 0", len(results))
	}
}

type failingSink struct{}

var errSinkFull = errors.New("sink full")

func (failingSink) Record(context.Context, Result) error {
	return errSinkFull
}

func TestRunReportsSinkErrors(t *testing.T) {
	cfg := smallConfig(t, "")

	_, err := Run(context.Background(), cfg, Options{Sinks: []Sink{failingSink{}}})
	if !errors.Is(err, errSinkFull) {
		t.Errorf("Run error = %v, want %v", err, errSinkFull)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Passes = 0
	if _, err := Run(context.Background(), cfg, Options{}); err == nil {
		t.Errorf("Run with zero passes succeeded, want error")
	}
}

func TestRunFromSnapshot(t *testing.T) {
	cfg := smallConfig(t, "variants: [raw]\nloops: [INIT3]\n")

	src := loops.NewWorkspace[float64](cfg.MaxLength())
	fill(src, 1)
	path := filepath.Join(t.TempDir(), "init.npz")
	if err := writeSnapshotFile(path, src, FormatNPZ); err != nil {
		t.Fatalf("Unexpected error writing snapshot: %v", err)
	}

	results, err := Run(context.Background(), cfg, Options{InitSnapshot: path})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// INIT3 writes -2 to three arrays; the checksum is 3 * -2 * L(L+1)/2.
	got := map[loops.SizeClass]float64{}
	for _, r := range results {
		got[r.Class] = r.Checksum
	}
	want := map[loops.SizeClass]float64{
		loops.Long:   -12480,
		loops.Medium: -816,
		loops.Short:  -60,
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Wrong checksums; diff (-got +want)\n%s", diff)
	}
}

func TestRunRejectsSmallSnapshot(t *testing.T) {
	cfg := smallConfig(t, "")

	path := filepath.Join(t.TempDir(), "init.safetensors")
	if err := writeSnapshotFile(path, loops.NewWorkspace[float64](8), FormatSafeTensors); err != nil {
		t.Fatalf("Unexpected error writing snapshot: %v", err)
	}

	_, err := Run(context.Background(), cfg, Options{InitSnapshot: path, SnapshotFormat: FormatSafeTensors})
	if !errors.Is(err, loops.ErrCapacity) {
		t.Errorf("Run error = %v, want %v", err, loops.ErrCapacity)
	}
}

func TestRunWritesFinalSnapshot(t *testing.T) {
	cfg := smallConfig(t, "")
	path := filepath.Join(t.TempDir(), "final.safetensors")

	if _, err := Run(context.Background(), cfg, Options{FinalSnapshot: path, SnapshotFormat: FormatSafeTensors}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ws, err := readSnapshotFile[float64](path, FormatSafeTensors)
	if err != nil {
		t.Fatalf("Unexpected error reading snapshot: %v", err)
	}
	if diff := cmp.Diff(ws.Capacity(), 64); diff != "" {
		t.Errorf("Wrong snapshot capacity; diff (-got +want)\n%s", diff)
	}
	// The last loop run is TRAP_INT on the short class.
	if diff := cmp.Diff(ws.IndexArray(loops.Index0)[0], 3); diff != "" {
		t.Errorf("Wrong index0[0]; diff (-got +want)\n%s", diff)
	}
}

func TestRunLogs(t *testing.T) {
	cfg := smallConfig(t, "variants: [raw]\n")

	var buf bytes.Buffer
	log, err := NewLogger(&buf, "debug", false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := Run(context.Background(), cfg, Options{Log: log}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	if diff := cmp.Diff(strings.Count(out, "Timed loop"), 3*4); diff != "" {
		t.Errorf("Wrong number of loop log entries; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(strings.Count(out, "Finished pass"), 1); diff != "" {
		t.Errorf("Wrong number of pass log entries; diff (-got +want)\n%s", diff)
	}
	if !strings.Contains(out, "loop=IF_QUAD") {
		t.Errorf("Log output has no loop field:\n%s", out)
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, err := NewLogger(os.Stderr, "chatty", false); err == nil {
		t.Errorf("NewLogger with a bad level succeeded, want error")
	}
}

func TestRunZeroLengths(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
size_classes:
  long: {length: 0, samples: 1}
  medium: {length: 0, samples: 1}
  short: {length: 0, samples: 1}
`))
	if err != nil {
		t.Fatalf("Unexpected error parsing config: %v", err)
	}

	path := filepath.Join(t.TempDir(), "final.safetensors")
	results, err := Run(context.Background(), cfg, Options{FinalSnapshot: path, SnapshotFormat: FormatSafeTensors})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if diff := cmp.Diff(len(results), 2*3*4); diff != "" {
		t.Errorf("Wrong result count; diff (-got +want)\n%s", diff)
	}
	for _, r := range results {
		if r.Length != 0 || r.Elapsed < 0 {
			t.Errorf("Result %+v, want length 0 and a non-negative time", r)
		}
		if r.Loop != loops.TrapInt && r.Checksum != 0 {
			t.Errorf("Result %v/%v/%v has checksum %v over no elements, want 0", r.Variant, r.Loop, r.Class, r.Checksum)
		}
	}

	ws, err := readSnapshotFile[float64](path, FormatSafeTensors)
	if err != nil {
		t.Fatalf("Unexpected error reading snapshot: %v", err)
	}
	if diff := cmp.Diff(ws.Capacity(), 0); diff != "" {
		t.Errorf("Wrong snapshot capacity; diff (-got +want)\n%s", diff)
	}
}
