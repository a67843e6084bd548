package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestClassifyDuration(t *testing.T) {
	cfg := DefaultConfig()

	assert := assert.New(t)
	assert.Equal(Short, classifyDuration(1, cfg))
	assert.Equal(Short, classifyDuration(119, cfg))
	assert.Equal(Long, classifyDuration(120, cfg))
	assert.Equal(Long, classifyDuration(2000, cfg))

	cfg.ShortThreshold = 100
	cfg.LongThreshold = 200
	assert.Equal(Medium, classifyDuration(150, cfg))
	assert.Equal("medium", Medium.String())
}

func TestNoteInfo(t *testing.T) {
	key, vel, on, ok := noteInfo(smf.Message(midi.NoteOn(2, 96, 90)))
	assert.True(t, ok)
	assert.True(t, on)
	assert.Equal(t, uint8(96), key)
	assert.Equal(t, uint8(90), vel)

	// velocity 0 note on is an off
	_, _, on, ok = noteInfo(smf.Message(midi.NoteOn(0, 96, 0)))
	assert.True(t, ok)
	assert.False(t, on)

	_, _, on, ok = noteInfo(smf.Message(midi.NoteOff(0, 96)))
	assert.True(t, ok)
	assert.False(t, on)

	_, _, _, ok = noteInfo(smf.Message(smf.MetaText("la")))
	assert.False(t, ok)
}

func TestVocalEventsInWindow(t *testing.T) {
	events := []MidiEvent{
		noteOnAt(0, 96, 100),
		noteOnAt(0, 101, 100),
		noteOnAt(10, 98, 0),
		textAt(10, "la"),
		noteOffAt(20, 95),
	}

	vocalEvents := vocalEventsInWindow(events, DefaultConfig())
	require.Len(t, vocalEvents, 2)
	assert.Equal(t, vocalEvent{Time: 0, Key: 78, Velocity: 100, On: true}, vocalEvents[0])
	assert.Equal(t, vocalEvent{Time: 10, Key: 80, Velocity: 0, On: false}, vocalEvents[1])
}

func TestPairNotesFIFO(t *testing.T) {
	events := []vocalEvent{
		{Time: 0, Key: 78, Velocity: 100, On: true},
		{Time: 10, Key: 78, Velocity: 90, On: true},
		{Time: 100, Key: 78},
		{Time: 150, Key: 78},
	}

	diag := &Diagnostics{}
	notes := pairNotes(events, DefaultConfig(), diag)

	assert.Empty(t, diag.Records)
	assert.Equal(t, []VocalNote{
		{Key: 78, Velocity: 100, Start: 0, End: 100, Duration: 100, Class: Short},
		{Key: 78, Velocity: 90, Start: 10, End: 150, Duration: 140, Class: Long},
	}, notes)
}

func TestPairNotesSortsByStart(t *testing.T) {
	events := []vocalEvent{
		{Time: 0, Key: 80, On: true},
		{Time: 50, Key: 78, On: true},
		{Time: 60, Key: 78},
		{Time: 500, Key: 80},
	}

	notes := pairNotes(events, DefaultConfig(), nil)
	require.Len(t, notes, 2)
	assert.Equal(t, uint32(0), notes[0].Start)
	assert.Equal(t, uint32(50), notes[1].Start)
}

func TestPairNotesUnmatched(t *testing.T) {
	events := []vocalEvent{
		{Time: 5, Key: 79},
		{Time: 50, Key: 80, On: true},
		{Time: 50, Key: 80},
		{Time: 60, Key: 82, On: true},
		{Time: 70, Key: 78, On: true},
	}

	diag := &Diagnostics{}
	notes := pairNotes(events, DefaultConfig(), diag)

	assert.Empty(t, notes)
	assert.Equal(t, 1, diag.Count(DiagUnmatchedNoteOff))
	assert.Equal(t, 1, diag.Count(DiagZeroLengthNote))
	assert.Equal(t, 2, diag.Count(DiagUnmatchedNoteOn))
	assert.Len(t, diag.Warnings(), 4)

	// leftover notes are reported in key order
	last := diag.Records[len(diag.Records)-1]
	assert.Equal(t, uint32(60), last.Tick)
}

func TestNotesWithin(t *testing.T) {
	notes := []VocalNote{
		{Start: 0, End: 100},
		{Start: 100, End: 200},
		{Start: 150, End: 250},
	}

	contained := notesWithin(notes, Phrase{Start: 0, End: 200})
	assert.Equal(t, notes[:2], contained)
}
