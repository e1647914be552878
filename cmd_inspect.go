// cmd_inspect.go - inspect subcommand: dump module structure

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <input.s3m>",
	Short: "Show an S3M module's title, orders, instruments and patterns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(args[0])
	},
}

func inspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	mod, err := ParseS3M(data, logDiag{})
	if err != nil {
		return err
	}

	fmt.Printf("title:    %q\n", mod.Title)
	fmt.Printf("channels: %d  tempo: %d  speed: %d\n", mod.Channels, mod.Tempo, mod.Speed)
	fmt.Printf("orders:   %v\n", mod.Orders)

	fmt.Printf("instruments (%d):\n", len(mod.Instruments))
	for i, inst := range mod.Instruments {
		if inst == nil {
			fmt.Printf("  %2d: (skipped)\n", i+1)
			continue
		}
		loop := "no loop"
		if inst.LoopEnd > inst.LoopBegin {
			loop = fmt.Sprintf("loop %d-%d", inst.LoopBegin, inst.LoopEnd)
		}
		fmt.Printf("  %2d: %-14q %5d bytes, %s, volume %.2f\n",
			i+1, inst.Name, inst.Length, loop, inst.Volume)
	}

	decoded := 0
	for _, p := range mod.Patterns {
		if p != nil {
			decoded++
		}
	}
	fmt.Printf("patterns: %d of %d decoded\n", decoded, len(mod.Patterns))
	return nil
}
