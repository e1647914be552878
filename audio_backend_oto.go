//go:build !headless

// audio_backend_oto.go - OTO v3 audio output implementation

package main

import (
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoPlayer streams rendered unsigned 8-bit mono PCM through oto.
type OtoPlayer struct {
	ctx     *oto.Context
	player  *oto.Player
	pcm     []byte
	pos     int
	started bool
	mutex   sync.Mutex
}

// NewOtoPlayer creates an audio context for unsigned 8-bit mono output
// at the given sample rate.
func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatUnsignedInt8,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &OtoPlayer{ctx: ctx}, nil
}

// SetupPlayer attaches a rendered PCM buffer and creates the device
// player for it.
func (op *OtoPlayer) SetupPlayer(pcm []byte) {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	op.pcm = pcm
	op.pos = 0
	op.player = op.ctx.NewPlayer(op)
}

// Read feeds PCM to the audio device. It reports io.EOF once the
// buffer is drained so the device player stops on its own.
func (op *OtoPlayer) Read(p []byte) (int, error) {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.pos >= len(op.pcm) {
		return 0, io.EOF
	}
	n := copy(p, op.pcm[op.pos:])
	op.pos += n
	return n, nil
}

func (op *OtoPlayer) Start() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if !op.started && op.player != nil {
		op.player.Play()
		op.started = true
	}
}

func (op *OtoPlayer) Stop() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.started && op.player != nil {
		op.player.Pause()
		op.started = false
	}
}

func (op *OtoPlayer) Close() {
	op.Stop()
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.player != nil {
		op.player.Close()
		op.player = nil
	}
}

func (op *OtoPlayer) IsStarted() bool {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.started
}

// Done reports whether the whole buffer has been handed to the device
// and the device has finished playing it.
func (op *OtoPlayer) Done() bool {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.player == nil {
		return true
	}
	return op.pos >= len(op.pcm) && !op.player.IsPlaying()
}
