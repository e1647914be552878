// diag.go - Structured diagnostics for non-fatal parse problems

package main

import "log"

// WarnKind classifies a non-fatal parser diagnostic.
type WarnKind int

const (
	// WarnInstrumentPointer - an instrument pointer resolves outside the buffer.
	WarnInstrumentPointer WarnKind = iota
	// WarnSampleRange - an instrument's sample data range exceeds the buffer.
	WarnSampleRange
	// WarnPatternPointer - a pattern pointer resolves outside the buffer.
	WarnPatternPointer
	// WarnPatternRange - a pattern's packed data range exceeds the buffer.
	WarnPatternRange
	// WarnPatternTruncated - a packed pattern stream ended mid-event.
	WarnPatternTruncated
)

func (k WarnKind) String() string {
	switch k {
	case WarnInstrumentPointer:
		return "instrument pointer"
	case WarnSampleRange:
		return "sample range"
	case WarnPatternPointer:
		return "pattern pointer"
	case WarnPatternRange:
		return "pattern range"
	case WarnPatternTruncated:
		return "pattern truncated"
	default:
		return "unknown"
	}
}

// ParseWarning describes one skipped or truncated unit. Index is the
// instrument or pattern index in the file, Offset the byte offset the
// problem was detected at.
type ParseWarning struct {
	Kind   WarnKind
	Index  int
	Offset int
	Detail string
}

// Diag receives non-fatal parser diagnostics. The parser stays a pure
// function of its input; callers decide whether warnings go to a log,
// a collector, or nowhere.
type Diag interface {
	Warn(w ParseWarning)
}

// nopDiag discards all warnings.
type nopDiag struct{}

func (nopDiag) Warn(ParseWarning) {}

// logDiag writes warnings to the standard logger.
type logDiag struct{}

func (logDiag) Warn(w ParseWarning) {
	log.Printf("s3m: %s %d at offset %d: %s", w.Kind, w.Index, w.Offset, w.Detail)
}
