// Command asmgen generates the assembly kernels of the asm variant.
//
// Run through go generate in the loops package:
//
//	go run ./asmgen -out kernels_amd64.s -stubs kernels_amd64.go -pkg loops
package main

import (
	. "github.com/mmcloughlin/avo/build"
	. "github.com/mmcloughlin/avo/operand"
	. "github.com/mmcloughlin/avo/reg"
)

const signature = "func(out1 []float64, out2 []float64, out3 []float64, in1 []float64, in2 []float64, n int)"

func main() {
	ConstraintExpr("amd64")

	genInit3()
	genMulAddSub()

	Generate()
}

type kernelArgs struct {
	out1, out2, out3, in1, in2 Register
	n                          Register
}

func loadArgs() kernelArgs {
	return kernelArgs{
		out1: Load(Param("out1").Base(), GP64()),
		out2: Load(Param("out2").Base(), GP64()),
		out3: Load(Param("out3").Base(), GP64()),
		in1:  Load(Param("in1").Base(), GP64()),
		in2:  Load(Param("in2").Base(), GP64()),
		n:    Load(Param("n"), GP64()),
	}
}

func elt(base, i Register) Mem {
	return Mem{Base: base, Index: i, Scale: 8}
}

func genInit3() {
	TEXT("init3Asm", NOSPLIT, signature)
	Doc("init3Asm computes out1[i] = out2[i] = out3[i] = -in1[i] - in2[i] for i in [0, n).")

	args := loadArgs()

	Comment("Sign mask for negating in1")
	maskReg := GP64()
	MOVQ(U64(0x8000000000000000), maskReg)
	mask := XMM()
	MOVQ(maskReg, mask)

	i := GP64()
	XORQ(i, i)

	Label("init3loop")
	CMPQ(i, args.n)
	JGE(LabelRef("init3done"))

	v := XMM()
	MOVSD(elt(args.in1, i), v)
	XORPD(mask, v)
	SUBSD(elt(args.in2, i), v)
	MOVSD(v, elt(args.out3, i))
	MOVSD(v, elt(args.out2, i))
	MOVSD(v, elt(args.out1, i))

	INCQ(i)
	JMP(LabelRef("init3loop"))

	Label("init3done")
	RET()
}

func genMulAddSub() {
	TEXT("mulAddSubAsm", NOSPLIT, signature)
	Doc("mulAddSubAsm computes out1[i] = in1[i]*in2[i], out2[i] = in1[i]+in2[i], out3[i] = in1[i]-in2[i] for i in [0, n).")

	args := loadArgs()

	i := GP64()
	XORQ(i, i)

	Label("muladdsubloop")
	CMPQ(i, args.n)
	JGE(LabelRef("muladdsubdone"))

	x := XMM()
	y := XMM()
	MOVSD(elt(args.in1, i), x)
	MOVSD(elt(args.in2, i), y)

	prod := XMM()
	MOVSD(x, prod)
	MULSD(y, prod)
	MOVSD(prod, elt(args.out1, i))

	sum := XMM()
	MOVSD(x, sum)
	ADDSD(y, sum)
	MOVSD(sum, elt(args.out2, i))

	SUBSD(y, x)
	MOVSD(x, elt(args.out3, i))

	INCQ(i)
	JMP(LabelRef("muladdsubloop"))

	Label("muladdsubdone")
	RET()
}
