package suite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ahmedtd/lcals/loops"
	"github.com/google/go-cmp/cmp"
	dto "github.com/prometheus/client_model/go"
)

func gatherFamily(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	families, err := m.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() == name {
			return fam
		}
	}
	t.Fatalf("metric family %q not found", name)
	return nil
}

func labelMap(metric *dto.Metric) map[string]string {
	out := map[string]string{}
	for _, lp := range metric.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func TestMetricsKeepLatestResult(t *testing.T) {
	m := NewMetrics()
	ctx := context.Background()

	results := []Result{
		{Variant: loops.Raw, Loop: loops.Init3, Class: loops.Long, Samples: 10, Elapsed: time.Second, Checksum: 1},
		{Variant: loops.Raw, Loop: loops.Init3, Class: loops.Long, Samples: 20, Elapsed: 500 * time.Millisecond, Checksum: 2},
		{Variant: loops.Forall, Loop: loops.TrapInt, Class: loops.Short, Samples: 3, Elapsed: 2 * time.Second, Checksum: 3},
	}
	for _, r := range results {
		if err := m.Record(ctx, r); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	got := map[string]float64{}
	for _, metric := range gatherFamily(t, m, "lcals_loop_seconds").GetMetric() {
		l := labelMap(metric)
		got[l["variant"]+"/"+l["loop"]+"/"+l["class"]] = metric.GetGauge().GetValue()
	}
	want := map[string]float64{
		"raw/INIT3/long":        0.5,
		"forall/TRAP_INT/short": 2,
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Wrong loop seconds; diff (-got +want)\n%s", diff)
	}

	samples := gatherFamily(t, m, "lcals_loop_samples").GetMetric()
	if diff := cmp.Diff(len(samples), 2); diff != "" {
		t.Errorf("Wrong number of sample series; diff (-got +want)\n%s", diff)
	}

	total := gatherFamily(t, m, "lcals_results_total").GetMetric()[0].GetCounter().GetValue()
	if diff := cmp.Diff(total, 3.0); diff != "" {
		t.Errorf("Wrong results total; diff (-got +want)\n%s", diff)
	}
}

func TestMetricsWriteTextfile(t *testing.T) {
	m := NewMetrics()
	r := Result{Variant: loops.Raw, Loop: loops.IfQuad, Class: loops.Medium, Samples: 4, Elapsed: 250 * time.Millisecond}
	if err := m.Record(context.Background(), r); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "lcals.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Unexpected error reading textfile: %v", err)
	}
	want := `lcals_loop_seconds{class="medium",loop="IF_QUAD",variant="raw"} 0.25`
	if !strings.Contains(string(data), want) {
		t.Errorf("Textfile does not contain %q:\n%s", want, data)
	}
}

func TestPlatform(t *testing.T) {
	p := Platform()
	if p == "" || !strings.Contains(p, "/") {
		t.Errorf("Platform() = %q, want GOOS/GOARCH prefix", p)
	}
}
