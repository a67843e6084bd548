package main

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrVocalsTrackNotFound means there is no track to rewrite
var ErrVocalsTrackNotFound = errors.New("vocals track not found")

// RewriteResult describes one rewritten vocals track
type RewriteResult struct {
	VocalsTrack  int // index of the vocals track in the file, -1 if missing
	Downbeats    []uint32
	Notes        []VocalNote
	Phrases      []Phrase
	Labels       LabelMap
	RemovedNotes int       // notes dropped for starting with another note
	Track        smf.Track // the rebuilt vocals track
	Diagnostics  *Diagnostics
}

// RewriteVocals builds a new vocals track with generated phrases and lyrics.
// smfData is not modified. Diagnostics are returned even when it fails.
func RewriteVocals(smfData *smf.SMF, cfg *Config, words WordSource) (*RewriteResult, error) {
	diag := &Diagnostics{}
	result := &RewriteResult{VocalsTrack: -1, Diagnostics: diag}

	downbeats, err := ExtractDownbeats(smfData, cfg, diag)
	if err != nil {
		return result, err
	}
	result.Downbeats = downbeats

	idx := findTrack(smfData, cfg.VocalsTrack)
	if idx < 0 {
		diag.Warnf(DiagMissingTrack, 0, "track %q not found", cfg.VocalsTrack)
		return result, ErrVocalsTrackNotFound
	}
	result.VocalsTrack = idx

	vocalTrack := smfData.Tracks[idx]
	events, removed := removeSimultaneousNotes(absoluteEvents(vocalTrack), cfg, diag)
	result.RemovedNotes = removed

	notes := pairNotes(vocalEventsInWindow(events, cfg), cfg, diag)
	result.Notes = notes

	phrases, err := segmentPhrases(downbeats, notes, cfg, diag)
	if err != nil {
		return result, fmt.Errorf("failed to build phrases: %w", err)
	}
	for _, pair := range overlappingPhrases(phrases) {
		diag.Warnf(DiagPhraseOverlap, phrases[pair[1]].Start, "phrase %s overlaps %s", phrases[pair[1]], phrases[pair[0]])
	}
	result.Phrases = phrases

	labels := assignLabels(phrases, notes, words, cfg, diag)
	result.Labels = labels

	name := getTrackName(vocalTrack)
	if name == "" {
		name = cfg.VocalsTrack
	}

	result.Track = buildVocalsTrack(vocalsTrackParts{
		Name:     name,
		Retained: retainedEvents(events, cfg),
		Phrases:  phrases,
		Labels:   labels,
	}, cfg, diag)

	return result, nil
}
