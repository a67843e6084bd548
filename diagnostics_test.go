package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnostics(t *testing.T) {
	diag := &Diagnostics{}
	diag.Infof(DiagPhraseExtended, 100, "absorbed %d note(s)", 2)
	diag.Warnf(DiagUnmatchedNoteOff, 250, "key %d", 78)
	diag.Warnf(DiagUnmatchedNoteOff, 300, "key %d", 79)

	assert := assert.New(t)
	assert.Len(diag.Records, 3)
	assert.Equal(2, diag.Count(DiagUnmatchedNoteOff))
	assert.Equal(0, diag.Count(DiagNegativeDelta))
	assert.Len(diag.Warnings(), 2)
	assert.Equal("info [phrase-extended] tick 100: absorbed 2 note(s)", diag.Records[0].String())
	assert.Equal("warning [unmatched-note-off] tick 250: key 78", diag.Records[1].String())
}

func TestNilDiagnostics(t *testing.T) {
	var diag *Diagnostics
	diag.Warnf(DiagMissingTrack, 0, "ignored")
	diag.Infof(DiagMissingTrack, 0, "ignored")

	assert.Equal(t, 0, diag.Count(DiagMissingTrack))
	assert.Nil(t, diag.Warnings())
}
