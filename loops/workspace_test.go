package loops

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWorkspaceSlicesAreStable(t *testing.T) {
	ws := NewWorkspace[float64](10)
	a := ws.Array(Real2)
	a[3] = 42

	if got := ws.Array(Real2)[3]; got != 42 {
		t.Errorf("Array(Real2)[3] = %v, want 42", got)
	}
	if &ws.Array(Real2)[0] != &a[0] {
		t.Errorf("Array(Real2) returned a different backing array")
	}
	if got := len(ws.IndexArray(Index0)); got != 10 {
		t.Errorf("len(IndexArray(Index0)) = %d, want 10", got)
	}
}

func TestEmptyWorkspaceKeepsOneIndex(t *testing.T) {
	ws := NewWorkspace[float64](0)
	if diff := cmp.Diff(ws.Capacity(), 0); diff != "" {
		t.Errorf("Wrong capacity; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(len(ws.Array(Real0)), 0); diff != "" {
		t.Errorf("Wrong array length; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(ws.IndexArray(Index0), []int{0}); diff != "" {
		t.Errorf("Wrong index array; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(ws.Clone().IndexArray(Index0), []int{0}); diff != "" {
		t.Errorf("Wrong cloned index array; diff (-got +want)\n%s", diff)
	}
}

func TestWorkspaceClone(t *testing.T) {
	ws := NewWorkspace[float32](3)
	setArray(ws, Real0, 1, 2, 3)
	ws.SetScalar(Scalar4, 7)
	ws.IndexArray(Index0)[1] = 9

	c := ws.Clone()
	ws.Array(Real0)[0] = -1
	ws.SetScalar(Scalar4, -1)
	ws.IndexArray(Index0)[1] = -1

	if diff := cmp.Diff(c.Array(Real0), []float32{1, 2, 3}); diff != "" {
		t.Errorf("Clone shares array storage; diff (-got +want)\n%s", diff)
	}
	if got := c.Scalar(Scalar4); got != 7 {
		t.Errorf("clone scalar4 = %v, want 7", got)
	}
	if got := c.IndexArray(Index0)[1]; got != 9 {
		t.Errorf("clone index0[1] = %v, want 9", got)
	}
}

func TestCheckCapacity(t *testing.T) {
	ws := NewWorkspace[float64](100)
	stats := makeStats(int(NumLoops), 100, 1)
	if err := ws.CheckCapacity(stats); err != nil {
		t.Errorf("CheckCapacity: %v", err)
	}

	stats[IfQuad].Length[Short] = 101
	if err := ws.CheckCapacity(stats); !errors.Is(err, ErrCapacity) {
		t.Errorf("CheckCapacity error = %v, want ErrCapacity", err)
	}
}

func TestStatValidate(t *testing.T) {
	s := Stat{ID: Init3, Length: [NumSizeClasses]int{10, 5, 0}, SamplesPerPass: [NumSizeClasses]int{1, 2, 3}}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	s.SamplesPerPass[Medium] = 0
	if err := s.Validate(); err == nil {
		t.Errorf("Validate accepted zero samples per pass")
	}

	s.SamplesPerPass[Medium] = 1
	s.Length[Long] = -1
	if err := s.Validate(); err == nil {
		t.Errorf("Validate accepted a negative length")
	}
}

func TestParseSizeClass(t *testing.T) {
	for c := SizeClass(0); c < NumSizeClasses; c++ {
		got, err := ParseSizeClass(c.String())
		if err != nil || got != c {
			t.Errorf("ParseSizeClass(%q) = %v, %v; want %v", c.String(), got, err, c)
		}
	}
	if _, err := ParseSizeClass("huge"); !errors.Is(err, ErrUnknownSizeClass) {
		t.Errorf("ParseSizeClass(\"huge\") error = %v, want ErrUnknownSizeClass", err)
	}
}
