package loops

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUnknownLoop    = errors.New("unknown loop")
	ErrUnknownVariant = errors.New("unknown variant")
)

// LoopID identifies a kernel.  Runners visit loops in LoopID order.
type LoopID int

const (
	Init3 LoopID = iota
	MulAddSub
	IfQuad
	TrapInt
	NumLoops
)

var loopNames = [NumLoops]string{"INIT3", "MULADDSUB", "IF_QUAD", "TRAP_INT"}

func (id LoopID) String() string {
	if id < 0 || id >= NumLoops {
		return fmt.Sprintf("LoopID(%d)", int(id))
	}
	return loopNames[id]
}

func ParseLoopID(s string) (LoopID, error) {
	for id := LoopID(0); id < NumLoops; id++ {
		if strings.EqualFold(s, loopNames[id]) {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownLoop, s)
}

// Variant selects the implementation style of the kernels in a Catalog.
type Variant int

const (
	// Raw kernels are hand-written index loops.
	Raw Variant = iota
	// Forall kernels express the loop body as a closure over the index,
	// driven by forall.
	Forall
	// Asm kernels are generated assembly (amd64, float64 only).
	Asm
	NumVariants
)

var variantNames = [NumVariants]string{"raw", "forall", "asm"}

func (v Variant) String() string {
	if v < 0 || v >= NumVariants {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variantNames[v]
}

func ParseVariant(s string) (Variant, error) {
	for v := Variant(0); v < NumVariants; v++ {
		if strings.EqualFold(s, variantNames[v]) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownVariant, s)
}

// Batch is a kernel bound to workspace slices and a length.
type Batch struct {
	// Run executes the loop body samples times.  It is the only code inside
	// the timed region.
	Run func(samples int)

	// Observe, if set, publishes the batch result to the workspace so the
	// computation cannot be discarded.  It runs after the timer stops.
	Observe func()
}

// Kernel is one catalog entry.
type Kernel[T Real] struct {
	ID LoopID

	// Declared workspace accesses.
	Inputs        []ArrayHandle
	Outputs       []ArrayHandle
	ScalarInputs  []ScalarHandle
	ScalarOutputs []ScalarHandle
	IndexInputs   []IndexHandle

	// Prepare resolves the workspace slices the kernel uses for a run over
	// [0, length).  It is called outside the timed region.
	Prepare func(ws *Workspace[T], length int) Batch
}

// Catalog is the registration table of one variant.  Loops that were not
// enabled, or that the variant does not provide, have no entry.
type Catalog[T Real] struct {
	variant Variant
	kernels [NumLoops]*Kernel[T]
}

// NewCatalog registers the kernels of variant v listed in enabled.  An empty
// enabled list registers every kernel the variant provides.
func NewCatalog[T Real](v Variant, enabled ...LoopID) (*Catalog[T], error) {
	var provided []Kernel[T]
	switch v {
	case Raw:
		provided = rawKernels[T]()
	case Forall:
		provided = forallKernels[T]()
	case Asm:
		provided = asmKernels[T]()
	default:
		return nil, fmt.Errorf("%w %v", ErrUnknownVariant, v)
	}

	for _, id := range enabled {
		if id < 0 || id >= NumLoops {
			return nil, fmt.Errorf("%w %v", ErrUnknownLoop, id)
		}
	}

	c := &Catalog[T]{variant: v}
	for i := range provided {
		k := provided[i]
		if len(enabled) != 0 && !slices.Contains(enabled, k.ID) {
			continue
		}
		c.kernels[k.ID] = &k
	}
	return c, nil
}

func (c *Catalog[T]) Variant() Variant {
	return c.variant
}

// Lookup returns the kernel registered for id.
func (c *Catalog[T]) Lookup(id LoopID) (*Kernel[T], bool) {
	if id < 0 || id >= NumLoops {
		return nil, false
	}
	k := c.kernels[id]
	return k, k != nil
}

// IDs returns the registered loop ids in ascending order.
func (c *Catalog[T]) IDs() []LoopID {
	ids := []LoopID{}
	for id, k := range c.kernels {
		if k != nil {
			ids = append(ids, LoopID(id))
		}
	}
	return ids
}
