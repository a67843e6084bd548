package main

import (
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// SyllableClass is the duration band of a vocal note
type SyllableClass int

const (
	Short SyllableClass = iota
	Medium
	Long
)

func (c SyllableClass) String() string {
	switch c {
	case Short:
		return "short"
	case Medium:
		return "medium"
	case Long:
		return "long"
	}
	return "unknown"
}

// VocalNote represents a single sung note paired from a note on/off
type VocalNote struct {
	Key      uint8  // MIDI note number after the pitch shift
	Velocity uint8  // Velocity of the note on
	Start    uint32 // Absolute start in ticks
	End      uint32 // Absolute end in ticks
	Duration uint32 // End - Start, always above 0
	Class    SyllableClass
}

// vocalEvent is a note on or off from the vocals track, already shifted
type vocalEvent struct {
	Time     uint32
	Key      uint8
	Velocity uint8
	On       bool
}

// classifyDuration maps a note length onto its syllable class. The medium
// band is empty with the reference thresholds but still exists.
func classifyDuration(duration uint32, cfg *Config) SyllableClass {
	switch {
	case duration <= cfg.ShortThreshold:
		return Short
	case duration >= cfg.LongThreshold:
		return Long
	default:
		return Medium
	}
}

// noteInfo decodes a note message. A note on with velocity 0 counts as an off.
func noteInfo(msg smf.Message) (key, vel uint8, on, ok bool) {
	var ch uint8
	if msg.GetNoteOn(&ch, &key, &vel) {
		return key, vel, vel > 0, true
	}
	if msg.GetNoteOff(&ch, &key, &vel) {
		return key, vel, false, true
	}
	return 0, 0, false, false
}

// vocalEventsInWindow keeps the note events inside the configured pitch window
// and moves them to their output key
func vocalEventsInWindow(events []MidiEvent, cfg *Config) []vocalEvent {
	var vocalEvents []vocalEvent
	for _, event := range events {
		key, vel, on, ok := noteInfo(event.Message)
		if !ok || !cfg.inPitchWindow(key) {
			continue
		}
		vocalEvents = append(vocalEvents, vocalEvent{
			Time:     event.Time,
			Key:      cfg.shiftPitch(key),
			Velocity: vel,
			On:       on,
		})
	}
	return vocalEvents
}

// pairNotes matches every off with the oldest open on of the same key. The
// events slice is never modified, open notes are tracked as indices into it.
// Unmatched halves are reported and dropped.
func pairNotes(events []vocalEvent, cfg *Config, diag *Diagnostics) []VocalNote {
	var notes []VocalNote
	open := make(map[uint8][]int)

	for i, event := range events {
		if event.On {
			open[event.Key] = append(open[event.Key], i)
			continue
		}

		pending := open[event.Key]
		if len(pending) == 0 {
			diag.Warnf(DiagUnmatchedNoteOff, event.Time, "note off for key %d without matching note on", event.Key)
			continue
		}

		start := events[pending[0]]
		open[event.Key] = pending[1:]

		if event.Time <= start.Time {
			diag.Warnf(DiagZeroLengthNote, event.Time, "note %d has no length", event.Key)
			continue
		}

		duration := event.Time - start.Time
		notes = append(notes, VocalNote{
			Key:      event.Key,
			Velocity: start.Velocity,
			Start:    start.Time,
			End:      event.Time,
			Duration: duration,
			Class:    classifyDuration(duration, cfg),
		})
	}

	keys := maps.Keys(open)
	slices.Sort(keys)
	for _, key := range keys {
		for _, idx := range open[key] {
			diag.Warnf(DiagUnmatchedNoteOn, events[idx].Time, "note on for key %d has no matching note off", key)
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Start < notes[j].Start
	})

	return notes
}

// notesWithin returns the notes lying completely inside the phrase, in start order
func notesWithin(notes []VocalNote, phrase Phrase) []VocalNote {
	var contained []VocalNote
	for _, note := range notes {
		if phrase.Contains(note) {
			contained = append(contained, note)
		}
	}
	return contained
}
