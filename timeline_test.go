package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBeatNotes(t *testing.T) {
	track := buildTrack("BEAT",
		noteOnAt(960, 13, 100),
		noteOnAt(0, 12, 100),
		noteOnAt(0, 12, 0), // off written as a zero velocity on
		noteOnAt(480, 40, 100),
		noteOnAt(1920, 12, 100),
	)

	diag := &Diagnostics{}
	beats := extractBeatNotes(track, 12, diag)

	assert.Equal(t, []BeatNote{
		{Time: 0, IsDownbeat: true},
		{Time: 960, IsDownbeat: false},
		{Time: 1920, IsDownbeat: true},
	}, beats)
	assert.Equal(t, 1, diag.Count(DiagInvalidBeatNote))
	assert.Empty(t, diag.Warnings())
}

func TestFindTrack(t *testing.T) {
	data := buildMidiBytes(t,
		buildTrack("conductor"),
		buildTrack("beat"),
		buildTrack("PART VOCALS"),
		buildTrack("HARM1 PART VOCALS"),
	)
	smfData, err := readMidi(data)
	require.NoError(t, err)

	assert.Equal(t, 1, findTrack(smfData, "BEAT"))
	assert.Equal(t, 2, findTrack(smfData, "part vocals"))
	assert.Equal(t, -1, findTrack(smfData, "PART DRUMS"))
}

func TestExtractDownbeats(t *testing.T) {
	data := buildMidiBytes(t, buildBeatTrack(0, 1920, 3840))
	smfData, err := readMidi(data)
	require.NoError(t, err)

	downbeats, err := ExtractDownbeats(smfData, DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1920, 3840}, downbeats)

	cfg := DefaultConfig()
	cfg.BeatTrack = "TEMPO MAP"
	diag := &Diagnostics{}
	_, err = ExtractDownbeats(smfData, cfg, diag)
	assert.ErrorIs(t, err, ErrTooFewDownbeats)
	assert.Equal(t, 1, diag.Count(DiagMissingTrack))
}
