package loops

import (
	"strconv"
	"testing"
)

func BenchmarkLoops(b *testing.B) {
	for id := LoopID(0); id < NumLoops; id++ {
		b.Run("loop="+id.String(), func(b *testing.B) {
			for _, v := range variantsFor(id) {
				b.Run("variant="+v.String(), func(b *testing.B) {
					for _, length := range []int{171, 5001, 44217} {
						b.Run("length="+strconv.Itoa(length), func(b *testing.B) {
							ws := filledWorkspace(length)
							cat, err := NewCatalog[float64](v, id)
							if err != nil {
								b.Fatalf("NewCatalog: %v", err)
							}
							k, _ := cat.Lookup(id)
							batch := k.Prepare(ws, length)
							b.ResetTimer()
							for i := 0; i < b.N; i++ {
								batch.Run(1)
							}
						})
					}
				})
			}
		})
	}
}
