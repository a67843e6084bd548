package main

import "fmt"

// Severity of a diagnostic record
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "info"
}

// DiagnosticKind identifies what a diagnostic is about
type DiagnosticKind string

const (
	DiagMissingTrack        DiagnosticKind = "missing-track"
	DiagInvalidBeatNote     DiagnosticKind = "invalid-beat-note"
	DiagSimultaneousNote    DiagnosticKind = "simultaneous-note"
	DiagUnmatchedNoteOff    DiagnosticKind = "unmatched-note-off"
	DiagUnmatchedNoteOn     DiagnosticKind = "unmatched-note-on"
	DiagZeroLengthNote      DiagnosticKind = "zero-length-note"
	DiagNoteSkipped         DiagnosticKind = "note-skipped"
	DiagPhraseStartAdjusted DiagnosticKind = "phrase-start-adjusted"
	DiagPhraseExtended      DiagnosticKind = "phrase-extended"
	DiagPhrasesMerged       DiagnosticKind = "phrases-merged"
	DiagPhraseOverlap       DiagnosticKind = "phrase-overlap"
	DiagMarkerReplaced      DiagnosticKind = "marker-replaced"
	DiagDefaultLabel        DiagnosticKind = "default-label"
	DiagNegativeDelta       DiagnosticKind = "negative-delta"
)

// Diagnostic is a single record produced while transforming one file
type Diagnostic struct {
	Severity Severity
	Kind     DiagnosticKind
	Tick     uint32
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] tick %d: %s", d.Severity, d.Kind, d.Tick, d.Message)
}

// Diagnostics collects records in the order they were produced. A nil
// *Diagnostics discards everything, so helpers can be called without one.
type Diagnostics struct {
	Records []Diagnostic
}

func (d *Diagnostics) add(severity Severity, kind DiagnosticKind, tick uint32, format string, args ...any) {
	if d == nil {
		return
	}
	d.Records = append(d.Records, Diagnostic{
		Severity: severity,
		Kind:     kind,
		Tick:     tick,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnf records a warning
func (d *Diagnostics) Warnf(kind DiagnosticKind, tick uint32, format string, args ...any) {
	d.add(SeverityWarning, kind, tick, format, args...)
}

// Infof records an informational note
func (d *Diagnostics) Infof(kind DiagnosticKind, tick uint32, format string, args ...any) {
	d.add(SeverityInfo, kind, tick, format, args...)
}

// Count returns how many records of the given kind were collected
func (d *Diagnostics) Count(kind DiagnosticKind) int {
	if d == nil {
		return 0
	}
	n := 0
	for _, r := range d.Records {
		if r.Kind == kind {
			n++
		}
	}
	return n
}

// Warnings returns only the warning records
func (d *Diagnostics) Warnings() []Diagnostic {
	if d == nil {
		return nil
	}
	var warnings []Diagnostic
	for _, r := range d.Records {
		if r.Severity == SeverityWarning {
			warnings = append(warnings, r)
		}
	}
	return warnings
}
