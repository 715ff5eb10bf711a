package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ahmedtd/lcals/loops"
	"github.com/google/subcommands"
)

type LoopsCommand struct {
	precision string
}

var _ subcommands.Command = (*LoopsCommand)(nil)

func (*LoopsCommand) Name() string {
	return "loops"
}

func (*LoopsCommand) Synopsis() string {
	return "List the loops each variant provides"
}

func (*LoopsCommand) Usage() string {
	return `loops [flags]

Prints every loop each variant registers, with the workspace slots it reads
and writes.
`
}

func (c *LoopsCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.precision, "precision", "float64", "Real type: float32 or float64")
}

func (c *LoopsCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return exitStatus(c.executeErr(ctx))
}

func (c *LoopsCommand) executeErr(ctx context.Context) error {
	switch c.precision {
	case "float32":
		return listLoops[float32](os.Stdout)
	case "float64":
		return listLoops[float64](os.Stdout)
	default:
		return fmt.Errorf("invalid precision %q: want float32 or float64", c.precision)
	}
}

func listLoops[T loops.Real](w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIANT\tLOOP\tINPUTS\tOUTPUTS")
	for v := loops.Variant(0); v < loops.NumVariants; v++ {
		catalog, err := loops.NewCatalog[T](v)
		if err != nil {
			return fmt.Errorf("while building %v catalog: %w", v, err)
		}
		for _, id := range catalog.IDs() {
			k, _ := catalog.Lookup(id)
			fmt.Fprintf(tw, "%v\t%v\t%s\t%s\n", v, id, kernelInputs(k), kernelOutputs(k))
		}
	}
	return tw.Flush()
}

func kernelInputs[T loops.Real](k *loops.Kernel[T]) string {
	names := []string{}
	for _, h := range k.Inputs {
		names = append(names, h.String())
	}
	for _, h := range k.ScalarInputs {
		names = append(names, h.String())
	}
	for _, h := range k.IndexInputs {
		names = append(names, h.String())
	}
	return joinNames(names)
}

func kernelOutputs[T loops.Real](k *loops.Kernel[T]) string {
	names := []string{}
	for _, h := range k.Outputs {
		names = append(names, h.String())
	}
	for _, h := range k.ScalarOutputs {
		names = append(names, h.String())
	}
	return joinNames(names)
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}
