package loops

import (
	"math"

	"github.com/chewxy/math32"
)

// Verify bounds check elimination with
//
//	go build -gcflags="-d=ssa/check_bce" ./loops/

// Real is the element type of the workspace arrays and scalars.
type Real interface {
	float32 | float64
}

func sqrt[T Real](x T) T {
	switch v := any(x).(type) {
	case float32:
		return T(math32.Sqrt(v))
	case float64:
		return T(math.Sqrt(v))
	}
	panic("unreachable")
}

// trapIntFunc is the integrand of the TRAP_INT loop.
func trapIntFunc[T Real](x, y, xp, yp T) T {
	// Explicit conversions forbid FMA contraction.
	denom := T((x-xp)*(x-xp)) + T((y-yp)*(y-yp))
	denom = 1.0 / sqrt(denom)
	return denom
}

// PrecisionName returns "float32" or "float64" for T.
func PrecisionName[T Real]() string {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return "float32"
	}
	return "float64"
}
