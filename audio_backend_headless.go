//go:build headless

// audio_backend_headless.go - No-op audio backend for headless builds

package main

type OtoPlayer struct {
	started bool
	pcm     []byte
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	return &OtoPlayer{}, nil
}

func (op *OtoPlayer) SetupPlayer(pcm []byte) {
	op.pcm = pcm
}

func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	return len(p), nil
}

func (op *OtoPlayer) Start() {
	op.started = true
}

func (op *OtoPlayer) Stop() {
	op.started = false
}

func (op *OtoPlayer) Close() {
	op.started = false
}

func (op *OtoPlayer) IsStarted() bool {
	return op.started
}

func (op *OtoPlayer) Done() bool {
	return true
}
