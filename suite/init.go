package suite

import (
	"github.com/ahmedtd/lcals/loops"
)

// Scalar values loaded before every loop that reads scalars.  In TRAP_INT
// order: xn, x0, xp, y, yp.
var referenceScalars = [loops.NumScalars]float64{1.0, 0.0, 0.5, 0.75, 0.25}

// initData fills v with the reference pattern for array h of loop id.  Every
// value is nonzero; the sign flips on every third element so IF_QUAD sees
// both discriminant signs.
func initData[T loops.Real](v []T, id loops.LoopID, h loops.ArrayHandle) {
	factor := 0.1*float64(int(h)+1) + 0.01*float64(id)
	for j := range v {
		x := factor * (float64(j) + 1.1) / (float64(j) + 1.12345)
		if j%3 == int(h)%3 {
			x = -x
		}
		v[j] = T(x)
	}
}

// ReferenceInit loads the reference input pattern into every input a loop
// declares before the loop runs, and records a checksum of its outputs after.
type ReferenceInit[T loops.Real] struct{}

var _ loops.Hooks[float64] = ReferenceInit[float64]{}

func (ReferenceInit[T]) LoopInit(k *loops.Kernel[T], ws *loops.Workspace[T], stat *loops.Stat, class loops.SizeClass) {
	length := stat.Length[class]
	for _, h := range k.Inputs {
		initData(ws.Array(h)[:length], k.ID, h)
	}
	for _, h := range k.ScalarInputs {
		ws.SetScalar(h, T(referenceScalars[h]))
	}
	for _, h := range k.IndexInputs {
		if idx := ws.IndexArray(h); len(idx) > 0 {
			idx[0] = max(length-1, 0)
		}
	}
}

func (ReferenceInit[T]) LoopFinalize(k *loops.Kernel[T], ws *loops.Workspace[T], stat *loops.Stat, class loops.SizeClass) {
	stat.Checksum[class] = Checksum(k, ws, stat.Length[class])
}

// SnapshotInit restores the declared inputs of each loop from a saved
// workspace before the loop runs.
type SnapshotInit[T loops.Real] struct {
	Source *loops.Workspace[T]
}

var _ loops.Hooks[float64] = (*SnapshotInit[float64])(nil)

func (s *SnapshotInit[T]) LoopInit(k *loops.Kernel[T], ws *loops.Workspace[T], stat *loops.Stat, class loops.SizeClass) {
	length := stat.Length[class]
	for _, h := range k.Inputs {
		copy(ws.Array(h)[:length], s.Source.Array(h))
	}
	for _, h := range k.ScalarInputs {
		ws.SetScalar(h, s.Source.Scalar(h))
	}
	for _, h := range k.IndexInputs {
		copy(ws.IndexArray(h), s.Source.IndexArray(h))
	}
}

func (s *SnapshotInit[T]) LoopFinalize(k *loops.Kernel[T], ws *loops.Workspace[T], stat *loops.Stat, class loops.SizeClass) {
	stat.Checksum[class] = Checksum(k, ws, stat.Length[class])
}

// Checksum is a position-weighted sum over the first length elements of every
// output array k declares, plus its output scalars.
func Checksum[T loops.Real](k *loops.Kernel[T], ws *loops.Workspace[T], length int) float64 {
	var sum float64
	for _, h := range k.Outputs {
		for j, v := range ws.Array(h)[:length] {
			sum += float64(v) * float64(j+1)
		}
	}
	for _, h := range k.ScalarOutputs {
		sum += float64(ws.Scalar(h))
	}
	return sum
}
