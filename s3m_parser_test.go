// s3m_parser_test.go - Tests for S3M module parsing

package main

import (
	"encoding/binary"
	"errors"
	"testing"
)

// collectDiag gathers warnings for assertions.
type collectDiag struct {
	warnings []ParseWarning
}

func (c *collectDiag) Warn(w ParseWarning) {
	c.warnings = append(c.warnings, w)
}

// testS3MOffsets records where buildTestS3M placed each section so
// tests can corrupt specific fields.
type testS3MOffsets struct {
	instPtr    int // instrument pointer table entry
	patternPtr int // pattern pointer table entry
	inst       int // instrument record
	pattern    int // packed length + stream
	sample     int // sample data
}

func roundUpParagraph(n int) int {
	return (n + 15) &^ 15
}

// buildTestS3M assembles a minimal S3M image: a 96-byte header, the
// order list, one instrument ("square") and one pattern. sample holds
// file-domain signed PCM bytes; the parser remaps them to unsigned.
func buildTestS3M(orders, packed, sample []byte, volume byte, loopBegin, loopEnd int) ([]byte, testS3MOffsets) {
	var off testS3MOffsets
	off.instPtr = s3mHeaderSize + len(orders)
	off.patternPtr = off.instPtr + 2
	off.inst = roundUpParagraph(off.patternPtr + 2)
	off.pattern = roundUpParagraph(off.inst + 24)
	off.sample = roundUpParagraph(off.pattern + 2 + len(packed))

	data := make([]byte, off.sample+len(sample))
	copy(data, "test module")
	binary.LittleEndian.PutUint16(data[28:], uint16(len(orders))) // numOrders
	binary.LittleEndian.PutUint16(data[30:], 1)                   // numInstruments
	binary.LittleEndian.PutUint16(data[32:], 1)                   // numPatterns
	copy(data[s3mHeaderSize:], orders)
	binary.LittleEndian.PutUint16(data[off.instPtr:], uint16(off.inst/16))
	binary.LittleEndian.PutUint16(data[off.patternPtr:], uint16(off.pattern/16))

	inst := data[off.inst:]
	inst[0] = s3mInstrumentSample
	copy(inst[1:13], "square")
	binary.LittleEndian.PutUint32(inst[13:], uint32(off.sample/16)) // sample pointer (paragraphs)
	binary.LittleEndian.PutUint16(inst[17:], uint16(len(sample)))   // sample length
	binary.LittleEndian.PutUint16(inst[19:], uint16(loopBegin))
	binary.LittleEndian.PutUint16(inst[21:], uint16(loopEnd))
	inst[23] = volume

	binary.LittleEndian.PutUint16(data[off.pattern:], uint16(len(packed)))
	copy(data[off.pattern+2:], packed)
	copy(data[off.sample:], sample)

	return data, off
}

func TestParseS3M_HeaderTooSmall(t *testing.T) {
	_, err := ParseS3M(make([]byte, s3mHeaderSize-1), nil)
	if err == nil {
		t.Fatal("expected error for undersized buffer, got nil")
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Errorf("expected *FormatError, got %T (%v)", err, err)
	}
}

func TestParseS3M_TableBounds(t *testing.T) {
	// A bare 96-byte header leaves no room for any table entries.
	testCases := []struct {
		name        string
		orders      uint16
		instruments uint16
		patterns    uint16
	}{
		{"order list overruns", 1, 0, 0},
		{"instrument pointers overrun", 0, 1, 0},
		{"pattern pointers overrun", 0, 0, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := make([]byte, s3mHeaderSize)
			binary.LittleEndian.PutUint16(data[28:], tc.orders)
			binary.LittleEndian.PutUint16(data[30:], tc.instruments)
			binary.LittleEndian.PutUint16(data[32:], tc.patterns)

			_, err := ParseS3M(data, nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Errorf("expected *FormatError, got %T (%v)", err, err)
			}
		})
	}
}

// TestParseS3M_HeaderCounts verifies that a valid header always yields
// exactly the declared number of orders, instrument slots and pattern
// slots, regardless of what the entries point at.
func TestParseS3M_HeaderCounts(t *testing.T) {
	data := make([]byte, s3mHeaderSize+5+2*3+2*2)
	binary.LittleEndian.PutUint16(data[28:], 5)
	binary.LittleEndian.PutUint16(data[30:], 3)
	binary.LittleEndian.PutUint16(data[32:], 2)

	mod, err := ParseS3M(data, nil)
	if err != nil {
		t.Fatalf("ParseS3M failed: %v", err)
	}
	if len(mod.Orders) != 5 {
		t.Errorf("expected 5 orders, got %d", len(mod.Orders))
	}
	if len(mod.Instruments) != 3 {
		t.Errorf("expected 3 instrument slots, got %d", len(mod.Instruments))
	}
	if len(mod.Patterns) != 2 {
		t.Errorf("expected 2 pattern slots, got %d", len(mod.Patterns))
	}
}

func TestParseS3M_TitleTrimsTrailingNulls(t *testing.T) {
	data := make([]byte, s3mHeaderSize)
	copy(data, "HELLO")

	mod, err := ParseS3M(data, nil)
	if err != nil {
		t.Fatalf("ParseS3M failed: %v", err)
	}
	if mod.Title != "HELLO" {
		t.Errorf("expected title %q, got %q", "HELLO", mod.Title)
	}
}

func TestParseS3M_Defaults(t *testing.T) {
	mod, err := ParseS3M(make([]byte, s3mHeaderSize), nil)
	if err != nil {
		t.Fatalf("ParseS3M failed: %v", err)
	}
	if mod.Channels != 32 {
		t.Errorf("expected 32 channels, got %d", mod.Channels)
	}
	if mod.Tempo != 125 || mod.Speed != 6 {
		t.Errorf("expected tempo 125 speed 6, got %d/%d", mod.Tempo, mod.Speed)
	}
	if mod.SampleRate != 44100 {
		t.Errorf("expected sample rate 44100, got %d", mod.SampleRate)
	}
}

func TestParseS3M_InstrumentFields(t *testing.T) {
	sample := []byte{0x00, 0x01, 0x7F, 0x80, 0xFF} // signed file bytes
	data, _ := buildTestS3M([]byte{0}, []byte{0}, sample, 32, 2, 4)

	var diag collectDiag
	mod, err := ParseS3M(data, &diag)
	if err != nil {
		t.Fatalf("ParseS3M failed: %v", err)
	}
	if len(diag.warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", diag.warnings)
	}

	inst := mod.Instruments[0]
	if inst == nil {
		t.Fatal("instrument 0 not parsed")
	}
	if inst.Name != "square" {
		t.Errorf("expected name %q, got %q", "square", inst.Name)
	}
	if inst.Length != len(sample) {
		t.Errorf("expected length %d, got %d", len(sample), inst.Length)
	}
	if inst.LoopBegin != 2 || inst.LoopEnd != 4 {
		t.Errorf("expected loop 2-4, got %d-%d", inst.LoopBegin, inst.LoopEnd)
	}
	if inst.Volume != 0.5 {
		t.Errorf("expected volume 0.5, got %v", inst.Volume)
	}

	// Signed file bytes are stored with +128 (mod 256).
	want := []byte{0x80, 0x81, 0xFF, 0x00, 0x7F}
	for i, w := range want {
		if inst.Sample[i] != w {
			t.Errorf("sample[%d]: expected 0x%02X, got 0x%02X", i, w, inst.Sample[i])
		}
	}
}

// TestParseS3M_SampleRoundTrip checks that storing a signed byte with
// (b+128)&0xFF and re-centering with -128 reconstructs the original
// value for every possible byte.
func TestParseS3M_SampleRoundTrip(t *testing.T) {
	sample := make([]byte, 256)
	for i := range sample {
		sample[i] = byte(i)
	}
	data, _ := buildTestS3M([]byte{0}, []byte{0}, sample, 64, 0, 0)

	mod, err := ParseS3M(data, nil)
	if err != nil {
		t.Fatalf("ParseS3M failed: %v", err)
	}
	inst := mod.Instruments[0]
	if inst == nil {
		t.Fatal("instrument 0 not parsed")
	}
	for i := range sample {
		if got := inst.Sample[i] - 128; got != byte(i) {
			t.Fatalf("round trip failed for byte 0x%02X: stored 0x%02X, recovered 0x%02X",
				i, inst.Sample[i], got)
		}
	}
}

func TestParseS3M_SkipsNonSampleInstrument(t *testing.T) {
	data, off := buildTestS3M([]byte{0}, []byte{0}, []byte{1, 2, 3}, 64, 0, 0)
	data[off.inst] = 2 // adlib melody type

	var diag collectDiag
	mod, err := ParseS3M(data, &diag)
	if err != nil {
		t.Fatalf("ParseS3M failed: %v", err)
	}
	if mod.Instruments[0] != nil {
		t.Error("expected non-sample instrument to be skipped")
	}
	if len(diag.warnings) != 0 {
		t.Errorf("non-sample instruments should skip silently, got %v", diag.warnings)
	}
}

func TestParseS3M_InstrumentPointerOutOfRange(t *testing.T) {
	data, off := buildTestS3M([]byte{0}, []byte{0}, []byte{1, 2, 3}, 64, 0, 0)
	binary.LittleEndian.PutUint16(data[off.instPtr:], 0xFFFF)

	var diag collectDiag
	mod, err := ParseS3M(data, &diag)
	if err != nil {
		t.Fatalf("ParseS3M failed: %v", err)
	}
	if mod.Instruments[0] != nil {
		t.Error("expected instrument with bad pointer to be skipped")
	}
	if len(diag.warnings) != 1 || diag.warnings[0].Kind != WarnInstrumentPointer {
		t.Errorf("expected one instrument pointer warning, got %v", diag.warnings)
	}
}

func TestParseS3M_SampleRangeExceedsBuffer(t *testing.T) {
	data, off := buildTestS3M([]byte{0}, []byte{0}, []byte{1, 2, 3}, 64, 0, 0)
	binary.LittleEndian.PutUint16(data[off.inst+17:], 0xFFFF) // absurd sample length

	var diag collectDiag
	mod, err := ParseS3M(data, &diag)
	if err != nil {
		t.Fatalf("ParseS3M failed: %v", err)
	}
	if mod.Instruments[0] != nil {
		t.Error("expected instrument with bad sample range to be skipped")
	}
	if len(diag.warnings) != 1 || diag.warnings[0].Kind != WarnSampleRange {
		t.Errorf("expected one sample range warning, got %v", diag.warnings)
	}
}

func TestParseS3M_PatternPointerOutOfRange(t *testing.T) {
	data, off := buildTestS3M([]byte{0}, []byte{0}, []byte{1, 2, 3}, 64, 0, 0)
	binary.LittleEndian.PutUint16(data[off.patternPtr:], 0xFFFF)

	var diag collectDiag
	mod, err := ParseS3M(data, &diag)
	if err != nil {
		t.Fatalf("ParseS3M failed: %v", err)
	}
	if mod.Patterns[0] != nil {
		t.Error("expected pattern with bad pointer to be skipped")
	}
	if len(diag.warnings) != 1 || diag.warnings[0].Kind != WarnPatternPointer {
		t.Errorf("expected one pattern pointer warning, got %v", diag.warnings)
	}
}

func TestParseS3M_PatternRangeExceedsBuffer(t *testing.T) {
	data, off := buildTestS3M([]byte{0}, []byte{0}, []byte{1, 2, 3}, 64, 0, 0)
	binary.LittleEndian.PutUint16(data[off.pattern:], 0xFFFF) // absurd packed length

	var diag collectDiag
	mod, err := ParseS3M(data, &diag)
	if err != nil {
		t.Fatalf("ParseS3M failed: %v", err)
	}
	if mod.Patterns[0] != nil {
		t.Error("expected pattern with bad data range to be skipped")
	}
	if len(diag.warnings) != 1 || diag.warnings[0].Kind != WarnPatternRange {
		t.Errorf("expected one pattern range warning, got %v", diag.warnings)
	}
}

// TestDecodePattern_SingleEventRowZero covers the packed stream
// {0x20|channel, note, instrument, 0}: one populated slot on row 0,
// everything else empty.
func TestDecodePattern_SingleEventRowZero(t *testing.T) {
	packed := []byte{
		0x20 | 3,   // note+instrument follow, channel 3
		0x42, 0x01, // note, instrument
		0x00, // end of row
	}

	pat := decodePattern(packed, 0, nopDiag{})

	ev := pat.Rows[0][3]
	if ev == nil {
		t.Fatal("expected event at row 0 channel 3")
	}
	if !ev.HasNote || ev.Note != 0x42 || ev.Instrument != 1 {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.HasVolume || ev.HasEffect {
		t.Errorf("expected absent volume/effect, got %+v", ev)
	}

	for row := range pat.Rows {
		for ch, slot := range pat.Rows[row] {
			if row == 0 && ch == 3 {
				continue
			}
			if slot != nil {
				t.Fatalf("unexpected event at row %d channel %d", row, ch)
			}
		}
	}
}

func TestDecodePattern_AllFields(t *testing.T) {
	packed := []byte{
		0xE0 | 5,   // note+instrument, volume and effect, channel 5
		0x31, 0x02, // note, instrument
		48,         // volume
		0x04, 0x20, // effect command, parameter
		0x00,
	}

	pat := decodePattern(packed, 0, nopDiag{})

	ev := pat.Rows[0][5]
	if ev == nil {
		t.Fatal("expected event at row 0 channel 5")
	}
	if ev.Note != 0x31 || ev.Instrument != 2 {
		t.Errorf("unexpected note/instrument: %+v", ev)
	}
	if !ev.HasVolume || ev.Volume != 48 {
		t.Errorf("unexpected volume: %+v", ev)
	}
	if !ev.HasEffect || ev.Effect.Command != 0x04 || ev.Effect.Param != 0x20 {
		t.Errorf("unexpected effect: %+v", ev)
	}
}

// A "what" byte with no field bits still claims its channel slot; the
// event just has every field absent.
func TestDecodePattern_EmptyEvent(t *testing.T) {
	pat := decodePattern([]byte{0x05, 0x00}, 0, nopDiag{})

	ev := pat.Rows[0][5]
	if ev == nil {
		t.Fatal("expected empty event at row 0 channel 5")
	}
	if ev.HasNote || ev.HasVolume || ev.HasEffect {
		t.Errorf("expected all fields absent, got %+v", ev)
	}
}

func TestDecodePattern_EarlyRowTermination(t *testing.T) {
	packed := []byte{
		0x00,             // row 0 ends immediately
		0x20, 0x30, 0x01, // row 1: channel 0 note event
		0x00,
	}

	pat := decodePattern(packed, 0, nopDiag{})

	for ch, slot := range pat.Rows[0] {
		if slot != nil {
			t.Errorf("row 0 channel %d should be empty", ch)
		}
	}
	if ev := pat.Rows[1][0]; ev == nil || ev.Note != 0x30 {
		t.Errorf("expected note event at row 1 channel 0, got %+v", ev)
	}
}

func TestDecodePattern_TruncatedStream(t *testing.T) {
	testCases := []struct {
		name   string
		packed []byte
	}{
		{"note pair cut short", []byte{0x21, 0x30}},
		{"volume missing", []byte{0x41}},
		{"effect cut short", []byte{0x81, 0x04}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var diag collectDiag
			pat := decodePattern(tc.packed, 0, &diag)
			if pat == nil {
				t.Fatal("truncated pattern should still be returned")
			}
			if len(diag.warnings) != 1 || diag.warnings[0].Kind != WarnPatternTruncated {
				t.Errorf("expected one truncation warning, got %v", diag.warnings)
			}
			for row := range pat.Rows {
				for ch, slot := range pat.Rows[row] {
					if slot != nil {
						t.Fatalf("partial event must be discarded, found slot at row %d channel %d", row, ch)
					}
				}
			}
		})
	}
}

// TestDecodePattern_TruncationKeepsDecodedRows verifies the failure is
// local: rows decoded before the cut survive.
func TestDecodePattern_TruncationKeepsDecodedRows(t *testing.T) {
	packed := []byte{
		0x20, 0x30, 0x01, // row 0: channel 0 note event
		0x00, // end of row 0
		0x41, // row 1: volume announced but missing
	}

	var diag collectDiag
	pat := decodePattern(packed, 0, &diag)

	if ev := pat.Rows[0][0]; ev == nil || ev.Note != 0x30 {
		t.Errorf("row 0 should survive truncation in row 1, got %+v", ev)
	}
	if pat.Rows[1][1] != nil {
		t.Error("truncated row 1 event should be discarded")
	}
	if len(diag.warnings) != 1 || diag.warnings[0].Kind != WarnPatternTruncated {
		t.Errorf("expected one truncation warning, got %v", diag.warnings)
	}
}
