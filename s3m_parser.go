// s3m_parser.go - Scream Tracker 3 (S3M) module parser

package main

import (
	"fmt"
)

const (
	s3mHeaderSize     = 96
	s3mTitleLength    = 28
	s3mOrderOffset    = 96
	s3mRowsPerPattern = 64
	s3mChannels       = 32
	s3mMaxVolume      = 64

	// Instrument type tag for sample-based instruments. Adlib types
	// (2-7) and empty slots are skipped.
	s3mInstrumentSample = 1

	// Note sentinel instructing a channel to stop sounding.
	s3mNoteKeyOff = 254

	defaultSampleRate = 44100
	defaultTempo      = 125
	defaultSpeed      = 6
)

// FormatError reports a fatal structural problem with an S3M buffer:
// the header is missing or one of the top-level tables would read past
// the end of the data. Everything deeper is non-fatal and surfaced
// through the Diag sink instead.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "s3m: " + e.Reason
}

func formatErrorf(format string, args ...any) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// Module is a fully decoded S3M module. It is built once by ParseS3M
// and read-only afterwards; renderers share it without copying.
type Module struct {
	Title string
	Flags uint16

	// Orders is the playback sequence of pattern indices. Entries
	// referencing a missing pattern are skipped at render time.
	Orders []byte

	// Instruments and Patterns are indexed by their original file
	// index. A unit skipped during parsing leaves a nil hole so later
	// indices keep their file positions; events reference instruments
	// by that original index.
	Instruments []*Instrument
	Patterns    []*Pattern

	Channels   int
	Tempo      int // rows/min scaling factor
	Speed      int // ticks per row
	SampleRate int
}

// instrument returns the instrument for a 0-based file index, or nil
// when the index is out of range or the slot was skipped.
func (m *Module) instrument(idx int) *Instrument {
	if idx < 0 || idx >= len(m.Instruments) {
		return nil
	}
	return m.Instruments[idx]
}

// pattern returns the pattern for an order byte, or nil when the index
// is out of range or the pattern was skipped. Order-list markers (254,
// 255) fall out of range naturally.
func (m *Module) pattern(idx int) *Pattern {
	if idx < 0 || idx >= len(m.Patterns) {
		return nil
	}
	return m.Patterns[idx]
}

// Instrument is a sample-based instrument. Sample holds 8-bit PCM in
// unsigned convention: the signed file bytes are remapped with
// (b+128)&0xFF at parse time and re-centered with -128 by the
// renderer, so the round trip is exact.
type Instrument struct {
	Name      string
	Sample    []byte
	Length    int
	LoopBegin int
	LoopEnd   int     // loop disabled when LoopEnd <= LoopBegin
	Volume    float64 // default playback volume, 0.0-1.0
}

// Effect is a tracker effect column: command byte plus parameter.
// Effects are decoded but not interpreted by the renderer.
type Effect struct {
	Command byte
	Param   byte
}

// Event is one channel slot of a pattern row. The Has flags record
// which columns the packed stream actually carried; "absent" and
// "present but zero" are different things and the trigger logic
// depends on the distinction. Instrument is stored as in the file:
// 1-based, with 0 meaning no instrument reference.
type Event struct {
	Note       int
	Instrument int
	Volume     int
	Effect     Effect

	HasNote   bool
	HasVolume bool
	HasEffect bool
}

// Row holds the event slots for all channels of one pattern row.
// A nil slot is an empty channel.
type Row [s3mChannels]*Event

// Pattern is a fixed 64-row grid of channel events.
type Pattern struct {
	Rows [s3mRowsPerPattern]Row
}

// ParseS3M decodes an S3M module from binary data. Fatal structural
// problems return a *FormatError; units that cannot be decoded
// (instruments, patterns, sample data) are skipped with a diagnostic
// on diag and leave a nil slot. diag may be nil to discard warnings.
func ParseS3M(data []byte, diag Diag) (*Module, error) {
	if diag == nil {
		diag = nopDiag{}
	}

	if len(data) < s3mHeaderSize {
		return nil, formatErrorf("buffer too small for header (%d bytes, need %d)", len(data), s3mHeaderSize)
	}

	mod := &Module{
		Title:      parsePaddedName(data[:s3mTitleLength]),
		Channels:   s3mChannels,
		Tempo:      defaultTempo,
		Speed:      defaultSpeed,
		SampleRate: defaultSampleRate,
	}

	numOrders := int(readUint16(data, 28))
	numInstruments := int(readUint16(data, 30))
	numPatterns := int(readUint16(data, 32))
	mod.Flags = readUint16(data, 38)

	orderStart := s3mOrderOffset
	if orderStart+numOrders > len(data) {
		return nil, formatErrorf("order list (%d entries) exceeds buffer", numOrders)
	}
	mod.Orders = make([]byte, numOrders)
	copy(mod.Orders, data[orderStart:orderStart+numOrders])

	instPtrStart := orderStart + numOrders
	patternPtrStart := instPtrStart + 2*numInstruments
	if patternPtrStart > len(data) {
		return nil, formatErrorf("instrument pointer table (%d entries) exceeds buffer", numInstruments)
	}
	if patternPtrStart+2*numPatterns > len(data) {
		return nil, formatErrorf("pattern pointer table (%d entries) exceeds buffer", numPatterns)
	}

	mod.Instruments = make([]*Instrument, numInstruments)
	for i := range mod.Instruments {
		ptr := paragraphToOffset(readUint16(data, instPtrStart+2*i))
		mod.Instruments[i] = parseInstrument(data, i, ptr, diag)
	}

	mod.Patterns = make([]*Pattern, numPatterns)
	for i := range mod.Patterns {
		ptr := paragraphToOffset(readUint16(data, patternPtrStart+2*i))
		mod.Patterns[i] = parsePattern(data, i, ptr, diag)
	}

	return mod, nil
}

// parseInstrument decodes the 24-byte instrument record at ptr:
// a type byte, a 12-byte padded name, then a packed 11-byte tail of
// sample pointer (paragraphs), length, loop bounds and volume.
// Returns nil when the record is unusable; only bad pointers and bad
// sample ranges warn, non-sample instrument types are skipped quietly.
func parseInstrument(data []byte, idx, ptr int, diag Diag) *Instrument {
	if ptr+24 > len(data) {
		diag.Warn(ParseWarning{
			Kind:   WarnInstrumentPointer,
			Index:  idx,
			Offset: ptr,
			Detail: "instrument record exceeds buffer",
		})
		return nil
	}

	if data[ptr] != s3mInstrumentSample {
		return nil
	}

	name := parsePaddedName(data[ptr+1 : ptr+13])
	samplePtr := paragraphToOffset32(readUint32(data, ptr+13))
	sampleLen := int(readUint16(data, ptr+17))
	loopBegin := int(readUint16(data, ptr+19))
	loopEnd := int(readUint16(data, ptr+21))
	volume := int(data[ptr+23])

	if samplePtr+sampleLen > len(data) {
		diag.Warn(ParseWarning{
			Kind:   WarnSampleRange,
			Index:  idx,
			Offset: samplePtr,
			Detail: fmt.Sprintf("sample data for %q (%d bytes) exceeds buffer", name, sampleLen),
		})
		return nil
	}

	// File bytes are signed 8-bit PCM; store them in unsigned
	// convention so the mixer can re-center with a plain -128.
	sample := make([]byte, sampleLen)
	for i, b := range data[samplePtr : samplePtr+sampleLen] {
		sample[i] = b + 128
	}

	return &Instrument{
		Name:      name,
		Sample:    sample,
		Length:    sampleLen,
		LoopBegin: loopBegin,
		LoopEnd:   loopEnd,
		Volume:    float64(volume) / s3mMaxVolume,
	}
}

// parsePattern reads the 16-bit packed length at ptr and decodes the
// packed stream that follows. Returns nil when the pattern data lies
// outside the buffer.
func parsePattern(data []byte, idx, ptr int, diag Diag) *Pattern {
	if ptr+2 > len(data) {
		diag.Warn(ParseWarning{
			Kind:   WarnPatternPointer,
			Index:  idx,
			Offset: ptr,
			Detail: "pattern pointer exceeds buffer",
		})
		return nil
	}

	packedLen := int(readUint16(data, ptr))
	if ptr+2+packedLen > len(data) {
		diag.Warn(ParseWarning{
			Kind:   WarnPatternRange,
			Index:  idx,
			Offset: ptr,
			Detail: fmt.Sprintf("packed pattern data (%d bytes) exceeds buffer", packedLen),
		})
		return nil
	}

	return decodePattern(data[ptr+2:ptr+2+packedLen], idx, diag)
}

// decodePattern unpacks a pattern's packed event stream into the fixed
// 64x32 grid. Each row is a run of "what" bytes: zero ends the row
// early (remaining slots stay empty), otherwise bits 0-4 select the
// channel, bit 5 announces a note+instrument pair, bit 6 a volume byte
// and bit 7 a two-byte effect. A stream that ends mid-event aborts
// decoding at that point: the partial event is discarded, rows already
// decoded are kept, and the remaining rows stay empty.
func decodePattern(packed []byte, idx int, diag Diag) *Pattern {
	pat := &Pattern{}

	i := 0
	for row := 0; row < s3mRowsPerPattern; row++ {
		for i < len(packed) {
			what := packed[i]
			i++
			if what == 0 {
				break
			}

			channel := int(what & 31)
			var ev Event

			if what&32 != 0 {
				if i+2 > len(packed) {
					diag.Warn(truncatedWarning(idx, row, i, "note/instrument"))
					return pat
				}
				ev.Note = int(packed[i])
				ev.Instrument = int(packed[i+1])
				ev.HasNote = true
				i += 2
			}
			if what&64 != 0 {
				if i+1 > len(packed) {
					diag.Warn(truncatedWarning(idx, row, i, "volume"))
					return pat
				}
				ev.Volume = int(packed[i])
				ev.HasVolume = true
				i++
			}
			if what&128 != 0 {
				if i+2 > len(packed) {
					diag.Warn(truncatedWarning(idx, row, i, "effect"))
					return pat
				}
				ev.Effect = Effect{Command: packed[i], Param: packed[i+1]}
				ev.HasEffect = true
				i += 2
			}

			evCopy := ev
			pat.Rows[row][channel] = &evCopy
		}
	}

	return pat
}

func truncatedWarning(idx, row, offset int, field string) ParseWarning {
	return ParseWarning{
		Kind:   WarnPatternTruncated,
		Index:  idx,
		Offset: offset,
		Detail: fmt.Sprintf("%s data truncated at row %d", field, row),
	}
}

// paragraphToOffset converts a 16-byte paragraph address to a byte
// offset.
func paragraphToOffset(para uint16) int {
	return int(para) * 16
}

func paragraphToOffset32(para uint32) int {
	return int(para) * 16
}
