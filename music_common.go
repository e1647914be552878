// music_common.go - Shared helpers for module parsing and playback

package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// parsePaddedName extracts a string from a fixed-width name field,
// stripping trailing null padding. S3M name fields are not guaranteed
// to be null-terminated, so embedded bytes are kept as-is.
func parsePaddedName(data []byte) string {
	return strings.TrimRight(string(data), "\x00")
}

// readUint16 reads a little-endian 16-bit value at offset.
func readUint16(data []byte, offset int) uint16 {
	return binary.LittleEndian.Uint16(data[offset : offset+2])
}

// readUint32 reads a little-endian 32-bit value at offset.
func readUint32(data []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(data[offset : offset+4])
}

// MusicMetadata contains common metadata fields for a loaded module.
type MusicMetadata struct {
	Title       string
	Orders      int
	Instruments int
	Patterns    int
	Channels    int
	Duration    float64
}

// durationText formats a duration in seconds as m:ss, or "" when there
// is nothing to play.
func durationText(secs float64) string {
	if secs <= 0 {
		return ""
	}
	mins := int(secs) / 60
	rem := int(math.Round(secs)) % 60
	return fmt.Sprintf("%d:%02d", mins, rem)
}
