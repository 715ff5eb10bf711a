package suite

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// Platform describes the machine a run executes on: GOOS/GOARCH followed by
// the SIMD features relevant to the kernels.
func Platform() string {
	features := []string{}
	add := func(name string, ok bool) {
		if ok {
			features = append(features, name)
		}
	}

	switch runtime.GOARCH {
	case "amd64", "386":
		add("sse2", cpu.X86.HasSSE2)
		add("sse4.1", cpu.X86.HasSSE41)
		add("avx", cpu.X86.HasAVX)
		add("avx2", cpu.X86.HasAVX2)
		add("fma", cpu.X86.HasFMA)
		add("avx512f", cpu.X86.HasAVX512F)
	case "arm64":
		add("asimd", cpu.ARM64.HasASIMD)
		add("fphp", cpu.ARM64.HasFPHP)
		add("sve", cpu.ARM64.HasSVE)
	}

	p := runtime.GOOS + "/" + runtime.GOARCH
	if len(features) == 0 {
		return p
	}
	return p + " " + strings.Join(features, ",")
}
