// wav_writer.go - WAV container output for rendered PCM

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// encodeWAV writes pcm as a single-channel 8-bit PCM WAV at the given
// sample rate. The wav encoder patches chunk sizes after writing the
// data, so it needs a WriteSeeker rather than a plain Writer.
func encodeWAV(ws io.WriteSeeker, pcm []byte, sampleRate int) error {
	enc := wav.NewEncoder(ws, sampleRate, 8, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 8,
		Data:           make([]int, len(pcm)),
	}
	for i, s := range pcm {
		buf.Data[i] = int(s)
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// writeWAVFile writes pcm into a WAV file at path.
func writeWAVFile(path string, pcm []byte, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeWAV(f, pcm, sampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// wavBuffer is a minimal in-memory io.WriteSeeker so handlers can
// encode a WAV without touching disk.
type wavBuffer struct {
	buf []byte
	off int
}

func (b *wavBuffer) Write(p []byte) (int, error) {
	if need := b.off + len(p); need > len(b.buf) {
		grown := make([]byte, need)
		copy(grown, b.buf)
		b.buf = grown
	}
	copy(b.buf[b.off:], p)
	b.off += len(p)
	return len(p), nil
}

func (b *wavBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.off) + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, fmt.Errorf("wavBuffer: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("wavBuffer: negative seek position %d", abs)
	}
	b.off = int(abs)
	return abs, nil
}

// Bytes returns the encoded container.
func (b *wavBuffer) Bytes() []byte {
	return b.buf
}
