// cmd_convert.go - convert subcommand: render an S3M file to WAV

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var convertSampleRate int

func init() {
	convertCmd.Flags().IntVar(&convertSampleRate, "sample-rate", defaultSampleRate, "output sample rate in Hz")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <input.s3m> [output.wav]",
	Short: "Render an S3M module to a WAV file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := ""
		if len(args) == 2 {
			out = args[1]
		}
		return convert(args[0], out, convertSampleRate)
	},
}

func convert(inPath, outPath string, sampleRate int) error {
	if outPath == "" {
		outPath = strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".wav"
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	mod, err := ParseS3M(data, logDiag{})
	if err != nil {
		return err
	}
	if sampleRate > 0 {
		mod.SampleRate = sampleRate
	}

	pcm := NewRenderer(mod).Render()
	if err := writeWAVFile(outPath, pcm, mod.SampleRate); err != nil {
		return err
	}

	fmt.Printf("wrote %s: %d samples at %d Hz (%s)\n",
		outPath, len(pcm), mod.SampleRate,
		durationText(float64(len(pcm))/float64(mod.SampleRate)))
	return nil
}
