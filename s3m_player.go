// s3m_player.go - High-level S3M player interface

package main

import (
	"errors"
	"os"
	"sync"
)

// S3MPlayer provides a high-level interface for S3M playback: it owns
// the parsed module, the rendered PCM stream and the output backend.
type S3MPlayer struct {
	module     *Module
	pcm        []byte
	backend    *OtoPlayer
	diag       Diag
	sampleRate int

	mu sync.Mutex
}

// NewS3MPlayer creates a player. diag may be nil to discard parse
// diagnostics.
func NewS3MPlayer(diag Diag) *S3MPlayer {
	if diag == nil {
		diag = nopDiag{}
	}
	return &S3MPlayer{
		diag:       diag,
		sampleRate: defaultSampleRate,
	}
}

// SetSampleRate overrides the output sample rate for subsequent loads.
func (p *S3MPlayer) SetSampleRate(rate int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rate > 0 {
		p.sampleRate = rate
	}
}

// Load loads an S3M file from disk.
func (p *S3MPlayer) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return p.LoadData(data)
}

// LoadData parses S3M data and renders the whole module to PCM.
func (p *S3MPlayer) LoadData(data []byte) error {
	mod, err := ParseS3M(data, p.diag)
	if err != nil {
		return err
	}

	p.mu.Lock()
	mod.SampleRate = p.sampleRate
	p.mu.Unlock()

	pcm := NewRenderer(mod).Render()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.module = mod
	p.pcm = pcm
	return nil
}

// Play starts playback of the rendered PCM through the audio backend.
func (p *S3MPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.module == nil {
		return errors.New("s3m: no module loaded")
	}
	if p.backend == nil {
		backend, err := NewOtoPlayer(p.module.SampleRate)
		if err != nil {
			return err
		}
		p.backend = backend
	}
	p.backend.SetupPlayer(p.pcm)
	p.backend.Start()
	return nil
}

// Stop stops playback.
func (p *S3MPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.backend != nil {
		p.backend.Stop()
	}
}

// IsPlaying returns true while the backend is still draining samples.
func (p *S3MPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.backend != nil && p.backend.IsStarted() && !p.backend.Done()
}

// PCM returns the rendered sample stream.
func (p *S3MPlayer) PCM() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pcm
}

// Module returns the parsed module, or nil when nothing is loaded.
func (p *S3MPlayer) Module() *Module {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.module
}

// DurationSeconds returns the rendered duration in seconds.
func (p *S3MPlayer) DurationSeconds() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.module == nil || p.module.SampleRate == 0 {
		return 0
	}
	return float64(len(p.pcm)) / float64(p.module.SampleRate)
}

// DurationText returns the rendered duration as m:ss.
func (p *S3MPlayer) DurationText() string {
	return durationText(p.DurationSeconds())
}

// Metadata returns common metadata about the loaded module.
func (p *S3MPlayer) Metadata() MusicMetadata {
	duration := p.DurationSeconds()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.module == nil {
		return MusicMetadata{}
	}
	return MusicMetadata{
		Title:       p.module.Title,
		Orders:      len(p.module.Orders),
		Instruments: len(p.module.Instruments),
		Patterns:    len(p.module.Patterns),
		Channels:    p.module.Channels,
		Duration:    duration,
	}
}

var _ MusicPlayer = (*S3MPlayer)(nil)
