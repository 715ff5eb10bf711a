package loops

// Workspace slots used by the kernels.
//
//	INIT3, MULADDSUB: out1, out2, out3 = Real0..Real2; in1, in2 = Real3, Real4
//	IF_QUAD:          a, b, c = Real0..Real2; x1, x2 = Real3, Real4
//	TRAP_INT:         xn, x0, xp, y, yp = Scalar0..Scalar4; nx-1 = Index0[0]
var (
	init3Inputs  = []ArrayHandle{Real3, Real4}
	init3Outputs = []ArrayHandle{Real0, Real1, Real2}

	ifQuadInputs  = []ArrayHandle{Real0, Real1, Real2}
	ifQuadOutputs = []ArrayHandle{Real3, Real4}

	trapIntScalars = []ScalarHandle{Scalar0, Scalar1, Scalar2, Scalar3, Scalar4}
)

// trapIntReadback defeats dead-code elimination of the TRAP_INT result.
func trapIntReadback[T Real](val T) T {
	return (val + 0.00123) / (val - 0.00123)
}

func rawKernels[T Real]() []Kernel[T] {
	return []Kernel[T]{
		{
			ID:      Init3,
			Inputs:  init3Inputs,
			Outputs: init3Outputs,
			Prepare: rawInit3[T],
		},
		{
			ID:      MulAddSub,
			Inputs:  init3Inputs,
			Outputs: init3Outputs,
			Prepare: rawMulAddSub[T],
		},
		{
			ID:      IfQuad,
			Inputs:  ifQuadInputs,
			Outputs: ifQuadOutputs,
			Prepare: rawIfQuad[T],
		},
		{
			ID:            TrapInt,
			ScalarInputs:  trapIntScalars,
			ScalarOutputs: []ScalarHandle{Scalar0},
			IndexInputs:   []IndexHandle{Index0},
			Prepare:       rawTrapInt[T],
		},
	}
}

func rawInit3[T Real](ws *Workspace[T], length int) Batch {
	out1 := ws.Array(Real0)[:length]
	out2 := ws.Array(Real1)[:length]
	out3 := ws.Array(Real2)[:length]
	in1 := ws.Array(Real3)[:length]
	in2 := ws.Array(Real4)[:length]

	return Batch{
		Run: func(samples int) {
			for isamp := 0; isamp < samples; isamp++ {
				for i := range out1 {
					v := -in1[i] - in2[i]
					out3[i] = v
					out2[i] = v
					out1[i] = v
				}
			}
		},
	}
}

func rawMulAddSub[T Real](ws *Workspace[T], length int) Batch {
	out1 := ws.Array(Real0)[:length]
	out2 := ws.Array(Real1)[:length]
	out3 := ws.Array(Real2)[:length]
	in1 := ws.Array(Real3)[:length]
	in2 := ws.Array(Real4)[:length]

	return Batch{
		Run: func(samples int) {
			for isamp := 0; isamp < samples; isamp++ {
				for i := range out1 {
					out1[i] = in1[i] * in2[i]
					out2[i] = in1[i] + in2[i]
					out3[i] = in1[i] - in2[i]
				}
			}
		},
	}
}

func rawIfQuad[T Real](ws *Workspace[T], length int) Batch {
	a := ws.Array(Real0)[:length]
	b := ws.Array(Real1)[:length]
	c := ws.Array(Real2)[:length]
	x1 := ws.Array(Real3)[:length]
	x2 := ws.Array(Real4)[:length]

	return Batch{
		Run: func(samples int) {
			for isamp := 0; isamp < samples; isamp++ {
				for i := range x1 {
					s := T(b[i]*b[i]) - T(4.0*a[i]*c[i])
					if s >= 0 {
						s = sqrt(s)
						x2[i] = (-b[i] + s) / (2.0 * a[i])
						x1[i] = (-b[i] - s) / (2.0 * a[i])
					} else {
						x2[i] = 0.0
						x1[i] = 0.0
					}
				}
			}
		},
	}
}

func rawTrapInt[T Real](ws *Workspace[T], length int) Batch {
	xn := ws.Scalar(Scalar0)
	x0 := ws.Scalar(Scalar1)
	xp := ws.Scalar(Scalar2)
	y := ws.Scalar(Scalar3)
	yp := ws.Scalar(Scalar4)

	nx := ws.IndexArray(Index0)[0] + 1

	h := (xn - x0) / T(nx)
	sumx := 0.5 * (trapIntFunc(x0, y, xp, yp) + trapIntFunc(xn, y, xp, yp))

	var val T

	return Batch{
		Run: func(samples int) {
			// sumx carries over from one sample to the next; only the last
			// val is kept.
			for isamp := 0; isamp < samples; isamp++ {
				for i := 0; i < length; i++ {
					x := x0 + T(T(i)*h)
					sumx += trapIntFunc(x, y, xp, yp)
				}
				val = sumx * h
			}
		},
		Observe: func() {
			ws.SetScalar(Scalar0, trapIntReadback(val))
		},
	}
}
