package loops

// forall applies body to every index in [0, length).
func forall(length int, body func(i int)) {
	for i := 0; i < length; i++ {
		body(i)
	}
}

// The Forall variant computes the same values as the Raw variant.  Bodies are
// built in Prepare so that no closure is created inside the timed region.
func forallKernels[T Real]() []Kernel[T] {
	return []Kernel[T]{
		{
			ID:      Init3,
			Inputs:  init3Inputs,
			Outputs: init3Outputs,
			Prepare: forallInit3[T],
		},
		{
			ID:      MulAddSub,
			Inputs:  init3Inputs,
			Outputs: init3Outputs,
			Prepare: forallMulAddSub[T],
		},
		{
			ID:      IfQuad,
			Inputs:  ifQuadInputs,
			Outputs: ifQuadOutputs,
			Prepare: forallIfQuad[T],
		},
		{
			ID:            TrapInt,
			ScalarInputs:  trapIntScalars,
			ScalarOutputs: []ScalarHandle{Scalar0},
			IndexInputs:   []IndexHandle{Index0},
			Prepare:       forallTrapInt[T],
		},
	}
}

func forallInit3[T Real](ws *Workspace[T], length int) Batch {
	out1 := ws.Array(Real0)
	out2 := ws.Array(Real1)
	out3 := ws.Array(Real2)
	in1 := ws.Array(Real3)
	in2 := ws.Array(Real4)

	body := func(i int) {
		v := -in1[i] - in2[i]
		out3[i] = v
		out2[i] = v
		out1[i] = v
	}

	return Batch{
		Run: func(samples int) {
			for isamp := 0; isamp < samples; isamp++ {
				forall(length, body)
			}
		},
	}
}

func forallMulAddSub[T Real](ws *Workspace[T], length int) Batch {
	out1 := ws.Array(Real0)
	out2 := ws.Array(Real1)
	out3 := ws.Array(Real2)
	in1 := ws.Array(Real3)
	in2 := ws.Array(Real4)

	body := func(i int) {
		out1[i] = in1[i] * in2[i]
		out2[i] = in1[i] + in2[i]
		out3[i] = in1[i] - in2[i]
	}

	return Batch{
		Run: func(samples int) {
			for isamp := 0; isamp < samples; isamp++ {
				forall(length, body)
			}
		},
	}
}

func forallIfQuad[T Real](ws *Workspace[T], length int) Batch {
	a := ws.Array(Real0)
	b := ws.Array(Real1)
	c := ws.Array(Real2)
	x1 := ws.Array(Real3)
	x2 := ws.Array(Real4)

	body := func(i int) {
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

	return Batch{
		Run: func(samples int) {
			for isamp := 0; isamp < samples; isamp++ {
				forall(length, body)
			}
		},
	}
}

func forallTrapInt[T Real](ws *Workspace[T], length int) Batch {
	xn := ws.Scalar(Scalar0)
	x0 := ws.Scalar(Scalar1)
	xp := ws.Scalar(Scalar2)
	y := ws.Scalar(Scalar3)
	yp := ws.Scalar(Scalar4)

	nx := ws.IndexArray(Index0)[0] + 1

	h := (xn - x0) / T(nx)
	sumx := 0.5 * (trapIntFunc(x0, y, xp, yp) + trapIntFunc(xn, y, xp, yp))

	var val T

	body := func(i int) {
		x := x0 + T(T(i)*h)
		sumx += trapIntFunc(x, y, xp, yp)
	}

	return Batch{
		Run: func(samples int) {
			for isamp := 0; isamp < samples; isamp++ {
				forall(length, body)
				val = sumx * h
			}
		},
		Observe: func() {
			ws.SetScalar(Scalar0, trapIntReadback(val))
		},
	}
}
