// music_interfaces.go - Common interfaces for module players

package main

// MusicPlayer is implemented by module players.
// Provides a common interface for playback control.
type MusicPlayer interface {
	// Load loads a module file from the given path
	Load(path string) error
	// LoadData loads module data from a byte slice
	LoadData(data []byte) error
	// Play starts playback of the rendered audio
	Play() error
	// Stop stops playback
	Stop()
	// IsPlaying returns true if currently playing
	IsPlaying() bool
	// DurationSeconds returns the rendered duration in seconds
	DurationSeconds() float64
	// DurationText returns a formatted duration string (e.g., "3:45")
	DurationText() string
}
