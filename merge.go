package main

import (
	"bytes"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MidiEvent represents a MIDI event with absolute timing
type MidiEvent struct {
	Time    uint32
	Message smf.Message
}

// eventKind orders events that share a tick: a note ends before the next one
// starts, and lyrics follow the note they belong to
type eventKind int

const (
	kindNoteOff eventKind = iota
	kindNoteOn
	kindText
	kindOther
)

// outputEvent is one event of the rebuilt vocals track
type outputEvent struct {
	Time    uint32
	Kind    eventKind
	Message smf.Message
}

// vocalsTrackParts is everything the rebuilt vocals track is made of
type vocalsTrackParts struct {
	Name     string
	Retained []MidiEvent // source events kept, pitch already shifted
	Phrases  []Phrase
	Labels   LabelMap
}

// absoluteEvents converts a track to absolute tick timing
func absoluteEvents(track smf.Track) []MidiEvent {
	events := make([]MidiEvent, 0, len(track))
	var currentTime uint32
	for _, event := range track {
		currentTime += event.Delta
		events = append(events, MidiEvent{Time: currentTime, Message: event.Message})
	}
	return events
}

func kindOf(msg smf.Message) eventKind {
	if _, _, on, ok := noteInfo(msg); ok {
		if on {
			return kindNoteOn
		}
		return kindNoteOff
	}
	var text string
	if msg.GetMetaText(&text) {
		return kindText
	}
	return kindOther
}

func isEndOfTrack(msg smf.Message) bool {
	return bytes.Equal(msg, smf.EOT)
}

// isLyricSyllable reports whether a meta event carries lyric text that the
// rewrite replaces. Bracketed text events are animation markers and stay.
func isLyricSyllable(msg smf.Message) bool {
	var lyric, text string
	if msg.GetMetaLyric(&lyric) {
		return true
	}
	if msg.GetMetaText(&text) {
		return len(text) == 0 || text[0] != '['
	}
	return false
}

// shiftNote returns the note message moved to its output key
func shiftNote(msg smf.Message, cfg *Config) smf.Message {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		return smf.Message(midi.NoteOn(ch, cfg.shiftPitch(key), vel))
	case msg.GetNoteOff(&ch, &key, &vel):
		return smf.Message(midi.NoteOffVelocity(ch, cfg.shiftPitch(key), vel))
	}
	return msg
}

// retainedEvents picks the source events that survive into the rebuilt
// track. Window notes are shifted; notes outside the window (old phrase
// markers included), the track name, the end of track and old lyric
// syllables are dropped.
func retainedEvents(events []MidiEvent, cfg *Config) []MidiEvent {
	var retained []MidiEvent
	for _, event := range events {
		msg := event.Message

		if key, _, _, ok := noteInfo(msg); ok {
			if cfg.inPitchWindow(key) {
				retained = append(retained, MidiEvent{Time: event.Time, Message: shiftNote(msg, cfg)})
			}
			continue
		}

		var name string
		if msg.GetMetaTrackName(&name) || isEndOfTrack(msg) || isLyricSyllable(msg) {
			continue
		}

		retained = append(retained, event)
	}
	return retained
}

// mergeVocalEvents puts retained events, labels and phrase markers into one
// stream ordered by tick, then by kind. Events with the same tick and kind
// keep their insertion order.
func mergeVocalEvents(parts vocalsTrackParts, cfg *Config) []outputEvent {
	var events []outputEvent

	for _, event := range parts.Retained {
		events = append(events, outputEvent{Time: event.Time, Kind: kindOf(event.Message), Message: event.Message})
	}

	for _, tick := range parts.Labels.Ticks() {
		events = append(events, outputEvent{
			Time:    tick,
			Kind:    kindText,
			Message: smf.Message(smf.MetaText(parts.Labels[tick])),
		})
	}

	for _, phrase := range parts.Phrases {
		events = append(events,
			outputEvent{
				Time:    phrase.Start,
				Kind:    kindNoteOn,
				Message: smf.Message(midi.NoteOn(0, cfg.PhraseMarkerKey, cfg.PhraseMarkerVelocity)),
			},
			outputEvent{
				Time:    phrase.End,
				Kind:    kindNoteOff,
				Message: smf.Message(midi.NoteOff(0, cfg.PhraseMarkerKey)),
			},
		)
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Time == events[j].Time {
			return events[i].Kind < events[j].Kind
		}
		return events[i].Time < events[j].Time
	})

	return events
}

// encodeTrack converts ordered absolute events to a track with relative
// deltas, opened by the track name and closed by end of track. An event
// earlier than its predecessor gets a zero delta and a warning.
func encodeTrack(name string, events []outputEvent, diag *Diagnostics) smf.Track {
	track := smf.Track{}

	trackNameMsg := smf.Message(smf.MetaTrackSequenceName(name))
	track = append(track, smf.Event{Delta: 0, Message: trackNameMsg})

	var lastTime uint32
	for _, event := range events {
		var delta uint32
		if event.Time < lastTime {
			diag.Warnf(DiagNegativeDelta, event.Time, "event before previous tick %d, using delta 0", lastTime)
		} else {
			delta = event.Time - lastTime
			lastTime = event.Time
		}
		track = append(track, smf.Event{Delta: delta, Message: event.Message})
	}

	// Add end of track
	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})
	return track
}

// buildVocalsTrack assembles the rewritten vocals track
func buildVocalsTrack(parts vocalsTrackParts, cfg *Config, diag *Diagnostics) smf.Track {
	return encodeTrack(parts.Name, mergeVocalEvents(parts, cfg), diag)
}
