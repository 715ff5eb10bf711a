//go:build !amd64

package loops

func asmKernels[T Real]() []Kernel[T] {
	return nil
}
