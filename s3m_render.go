// s3m_render.go - S3M channel-mixing synthesizer

package main

import "math"

// noteBaseFreq holds the equal-tempered base frequencies for octave 4
// (C-4 through B-4) used by S3M note mapping.
var noteBaseFreq = [12]float64{
	261.63, 277.18, 293.66, 311.13, 329.63, 349.23,
	369.99, 392.00, 415.30, 440.00, 466.16, 493.88,
}

// defaultC2Spd is the nominal middle-C sample rate. The format carries
// a per-instrument value but this renderer never parses it, so every
// instrument plays at the default.
const defaultC2Spd = 8363

// noteToFreq converts an S3M note byte (octave in the high nibble,
// semitone in the low nibble) to a playback frequency in Hz. The
// key-off sentinel and out-of-range semitones map to 0.
func noteToFreq(note int, c2spd float64) float64 {
	if note == s3mNoteKeyOff {
		return 0
	}
	octave := note >> 4
	semitone := note & 0x0F
	if semitone >= len(noteBaseFreq) {
		return 0
	}
	freq := noteBaseFreq[semitone] * math.Pow(2, float64(octave-4))
	return freq * c2spd / defaultC2Spd
}

// channelState tracks one mixing channel between rows. The instrument
// reference is shared with the Module and never mutated.
type channelState struct {
	samplePos float64
	increment float64
	volume    float64
	playing   bool
	inst      *Instrument
}

// Renderer walks a Module's order list and mixes its channels into an
// unsigned 8-bit mono PCM stream. Rendering is a single deterministic
// pass; a Renderer holds per-channel state for one module and must not
// be reused for another. The full stream is materialized in memory,
// one byte per rendered sample.
type Renderer struct {
	mod        *Module
	sampleRate int
	channels   []channelState
}

// NewRenderer creates a renderer with fresh channel state for mod.
func NewRenderer(mod *Module) *Renderer {
	return &Renderer{
		mod:        mod,
		sampleRate: mod.SampleRate,
		channels:   make([]channelState, mod.Channels),
	}
}

// Render mixes the whole order list. Orders that reference a missing
// pattern are skipped and consume no time. Rendering itself never
// fails: missing or invalid channel data is silence.
func (r *Renderer) Render() []byte {
	ticksPerRow := r.mod.Speed
	// Integer division at each step, in exactly this order. The
	// reference output was produced with this timing, not with the
	// conventional tracker BPM conversion; do not "fix" it.
	samplesPerTick := r.sampleRate / (r.mod.Tempo * 4 / 60)
	samplesPerRow := ticksPerRow * samplesPerTick

	var out []byte
	for _, order := range r.mod.Orders {
		pattern := r.mod.pattern(int(order))
		if pattern == nil {
			continue
		}
		for row := range pattern.Rows {
			r.triggerRow(&pattern.Rows[row])
			for n := 0; n < samplesPerRow; n++ {
				out = append(out, r.mixSample())
			}
		}
	}
	return out
}

// triggerRow applies a row's note events to the channel states before
// any of the row's samples are mixed. Only events carrying a note
// change channel state: key-off stops the channel, any other note with
// a resolvable instrument retriggers it. Bare volume or effect columns
// are decoded but never applied on their own.
func (r *Renderer) triggerRow(row *Row) {
	for ch, ev := range row {
		if ev == nil || !ev.HasNote {
			continue
		}
		state := &r.channels[ch]

		if ev.Note == s3mNoteKeyOff {
			state.playing = false
			continue
		}

		if ev.Instrument == 0 {
			// No instrument reference, nothing to retrigger.
			continue
		}
		inst := r.mod.instrument(ev.Instrument - 1)
		if inst == nil {
			continue
		}

		state.inst = inst
		state.samplePos = 0
		state.increment = noteToFreq(ev.Note, defaultC2Spd) / float64(r.sampleRate)
		if ev.HasVolume {
			state.volume = float64(ev.Volume) / s3mMaxVolume
		} else {
			state.volume = inst.Volume
		}
		state.playing = true
	}
}

// mixSample sums the contribution of every playing channel for one
// output sample, then quantizes to unsigned 8-bit.
func (r *Renderer) mixSample() byte {
	sum := 0.0
	for ch := range r.channels {
		state := &r.channels[ch]
		if !state.playing || state.inst == nil {
			continue
		}

		inst := state.inst
		pos := int(state.samplePos)
		if pos >= inst.Length {
			span := inst.LoopEnd - inst.LoopBegin
			if span <= 0 {
				state.playing = false
				continue
			}
			pos = inst.LoopBegin + floorMod(pos-inst.LoopEnd, span)
			if pos < 0 || pos >= inst.Length {
				// Malformed loop bounds can wrap to a position still
				// outside the sample; stop the channel rather than
				// read out of bounds.
				state.playing = false
				continue
			}
		}

		sum += (float64(inst.Sample[pos]) - 128) * state.volume
		state.samplePos += state.increment
	}

	v := int(math.Round(sum*128 + 128))
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return byte(v)
}

// floorMod is a floored modulus: the result is in [0, m) for m > 0.
func floorMod(a, m int) int {
	v := a % m
	if v < 0 {
		v += m
	}
	return v
}
