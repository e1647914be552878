// cmd_play.go - play subcommand: render and play through the audio device

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var playSampleRate int

func init() {
	playCmd.Flags().IntVar(&playSampleRate, "sample-rate", defaultSampleRate, "playback sample rate in Hz")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <input.s3m>",
	Short: "Render an S3M module and play it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return play(args[0], playSampleRate)
	},
}

func play(path string, sampleRate int) error {
	player := NewS3MPlayer(logDiag{})
	player.SetSampleRate(sampleRate)

	if err := player.Load(path); err != nil {
		return err
	}

	meta := player.Metadata()
	fmt.Printf("playing %q (%s)\n", meta.Title, player.DurationText())

	if err := player.Play(); err != nil {
		return err
	}

	// Only draw the progress line when stdout is a terminal.
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	start := time.Now()
	for player.IsPlaying() {
		if interactive {
			fmt.Printf("\r%6.1fs / %s ", time.Since(start).Seconds(), player.DurationText())
		}
		time.Sleep(100 * time.Millisecond)
	}
	if interactive {
		fmt.Println()
	}

	player.Stop()
	return nil
}
