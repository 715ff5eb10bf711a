package loops

//go:generate go run ./asmgen -out kernels_amd64.s -stubs kernels_amd64.go -pkg loops

// asmKernels returns the generated-assembly kernels.  They exist only for
// float64 workspaces.
func asmKernels[T Real]() []Kernel[T] {
	var zero T
	if _, ok := any(zero).(float64); !ok {
		return nil
	}
	return []Kernel[T]{
		{
			ID:      Init3,
			Inputs:  init3Inputs,
			Outputs: init3Outputs,
			Prepare: asmInit3[T],
		},
		{
			ID:      MulAddSub,
			Inputs:  init3Inputs,
			Outputs: init3Outputs,
			Prepare: asmMulAddSub[T],
		},
	}
}

func float64Arrays[T Real](ws *Workspace[T], hs ...ArrayHandle) [][]float64 {
	out := make([][]float64, len(hs))
	for i, h := range hs {
		out[i] = any(ws.Array(h)).([]float64)
	}
	return out
}

func asmInit3[T Real](ws *Workspace[T], length int) Batch {
	a := float64Arrays(ws, Real0, Real1, Real2, Real3, Real4)
	out1, out2, out3, in1, in2 := a[0][:length], a[1][:length], a[2][:length], a[3][:length], a[4][:length]

	return Batch{
		Run: func(samples int) {
			for isamp := 0; isamp < samples; isamp++ {
				init3Asm(out1, out2, out3, in1, in2, length)
			}
		},
	}
}

func asmMulAddSub[T Real](ws *Workspace[T], length int) Batch {
	a := float64Arrays(ws, Real0, Real1, Real2, Real3, Real4)
	out1, out2, out3, in1, in2 := a[0][:length], a[1][:length], a[2][:length], a[3][:length], a[4][:length]

	return Batch{
		Run: func(samples int) {
			for isamp := 0; isamp < samples; isamp++ {
				mulAddSubAsm(out1, out2, out3, in1, in2, length)
			}
		},
	}
}
