// main.go - s3mtowav command entry point

package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "s3mtowav",
	Short: "Scream Tracker 3 module renderer",
	Long: `Decodes Scream Tracker 3 (S3M) modules and renders them to
unsigned 8-bit mono PCM, as a WAV file, through the audio device, or
over HTTP.`,
	SilenceUsage: true,
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
