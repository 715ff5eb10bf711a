package loops

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownSizeClass is returned by ParseSizeClass.
var ErrUnknownSizeClass = errors.New("unknown size class")

// SizeClass selects the run length and sample count of a loop.
type SizeClass int

const (
	Long SizeClass = iota
	Medium
	Short
	NumSizeClasses
)

var sizeClassNames = [NumSizeClasses]string{"long", "medium", "short"}

func (c SizeClass) String() string {
	if c < 0 || c >= NumSizeClasses {
		return fmt.Sprintf("SizeClass(%d)", int(c))
	}
	return sizeClassNames[c]
}

func ParseSizeClass(s string) (SizeClass, error) {
	for c := SizeClass(0); c < NumSizeClasses; c++ {
		if strings.EqualFold(s, sizeClassNames[c]) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownSizeClass, s)
}

// Stat is the per-loop record a Runner reads its parameters from and writes
// its measurements into.  Every field is indexed by SizeClass.
type Stat struct {
	ID LoopID

	Length         [NumSizeClasses]int
	SamplesPerPass [NumSizeClasses]int

	// Time is written by the Runner, once per pass over a size class.
	Time [NumSizeClasses]time.Duration

	// Checksum is written by the finalize hook, if any.
	Checksum [NumSizeClasses]float64
}

func (s *Stat) Validate() error {
	for c := SizeClass(0); c < NumSizeClasses; c++ {
		if s.Length[c] < 0 {
			return fmt.Errorf("%v: %v length %d is negative", s.ID, c, s.Length[c])
		}
		if s.SamplesPerPass[c] < 1 {
			return fmt.Errorf("%v: %v samples per pass %d is less than 1", s.ID, c, s.SamplesPerPass[c])
		}
	}
	return nil
}

// DefaultChecksumSamples is the abbreviated sample count used in checksum mode.
const DefaultChecksumSamples = 5

// RunConfig is fixed for the duration of a run.
type RunConfig struct {
	// ChecksumMode replaces every configured sample count with
	// ChecksumSamples.
	ChecksumMode    bool
	ChecksumSamples int
}

// EffectiveSamples resolves the number of samples the Runner executes for stat
// in class.
func (c RunConfig) EffectiveSamples(stat *Stat, class SizeClass) int {
	if c.ChecksumMode {
		if c.ChecksumSamples < 1 {
			return DefaultChecksumSamples
		}
		return c.ChecksumSamples
	}
	return stat.SamplesPerPass[class]
}
