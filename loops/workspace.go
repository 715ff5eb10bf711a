package loops

import (
	"errors"
	"fmt"
)

// ErrCapacity is returned when a problem length does not fit the workspace.
var ErrCapacity = errors.New("problem length exceeds workspace capacity")

// ArrayHandle names one of the 1-D real arrays of a Workspace.
type ArrayHandle int

const (
	Real0 ArrayHandle = iota
	Real1
	Real2
	Real3
	Real4
	NumArrays
)

func (h ArrayHandle) String() string {
	return fmt.Sprintf("real%d", int(h))
}

// ScalarHandle names one of the real scalar slots of a Workspace.
type ScalarHandle int

const (
	Scalar0 ScalarHandle = iota
	Scalar1
	Scalar2
	Scalar3
	Scalar4
	NumScalars
)

func (h ScalarHandle) String() string {
	return fmt.Sprintf("scalar%d", int(h))
}

// IndexHandle names one of the 1-D index arrays of a Workspace.
type IndexHandle int

const (
	Index0 IndexHandle = iota
	NumIndexArrays
)

func (h IndexHandle) String() string {
	return fmt.Sprintf("index%d", int(h))
}

// Workspace holds the arrays and scalars the loops read and write.  It is
// allocated once at the largest problem length and never resized, so slices
// handed out by Array and IndexArray stay valid for the whole run.
type Workspace[T Real] struct {
	capacity int

	arrays  [NumArrays][]T
	scalars [NumScalars]T
	indices [NumIndexArrays][]int
}

func NewWorkspace[T Real](capacity int) *Workspace[T] {
	if capacity < 0 {
		panic(fmt.Sprintf("invalid workspace capacity: %d", capacity))
	}
	ws := &Workspace[T]{capacity: capacity}
	for h := range ws.arrays {
		ws.arrays[h] = make([]T, capacity)
	}
	// Index arrays always hold at least one element so loops that read
	// Index0[0] stay in bounds on an empty workspace.
	for h := range ws.indices {
		ws.indices[h] = make([]int, max(capacity, 1))
	}
	return ws
}

func (ws *Workspace[T]) Capacity() int {
	return ws.capacity
}

// Array returns the full-capacity backing slice for h.
func (ws *Workspace[T]) Array(h ArrayHandle) []T {
	return ws.arrays[h]
}

func (ws *Workspace[T]) Scalar(h ScalarHandle) T {
	return ws.scalars[h]
}

func (ws *Workspace[T]) SetScalar(h ScalarHandle, v T) {
	ws.scalars[h] = v
}

// IndexArray returns the backing slice for h.  Its length is the capacity,
// or 1 for an empty workspace.
func (ws *Workspace[T]) IndexArray(h IndexHandle) []int {
	return ws.indices[h]
}

// Clone returns a deep copy of ws.
func (ws *Workspace[T]) Clone() *Workspace[T] {
	out := &Workspace[T]{
		capacity: ws.capacity,
		scalars:  ws.scalars,
	}
	for h := range ws.arrays {
		out.arrays[h] = make([]T, len(ws.arrays[h]))
		copy(out.arrays[h], ws.arrays[h])
	}
	for h := range ws.indices {
		out.indices[h] = make([]int, len(ws.indices[h]))
		copy(out.indices[h], ws.indices[h])
	}
	return out
}

// CheckCapacity reports whether every length configured in stats fits ws.
func (ws *Workspace[T]) CheckCapacity(stats []Stat) error {
	for i := range stats {
		for c := SizeClass(0); c < NumSizeClasses; c++ {
			if stats[i].Length[c] > ws.capacity {
				return fmt.Errorf("%w: %v %v length %d > %d", ErrCapacity, stats[i].ID, c, stats[i].Length[c], ws.capacity)
			}
		}
	}
	return nil
}
