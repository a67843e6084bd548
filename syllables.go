package main

import (
	"sort"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// LabelMap holds the lyric text for each labeled tick
type LabelMap map[uint32]string

// Ticks returns the labeled ticks in ascending order
func (m LabelMap) Ticks() []uint32 {
	ticks := maps.Keys(m)
	slices.Sort(ticks)
	return ticks
}

// setIfEmpty writes a label unless the tick already has one
func (m LabelMap) setIfEmpty(tick uint32, label string) bool {
	if _, exists := m[tick]; exists {
		return false
	}
	m[tick] = label
	return true
}

// firstAtOrAfter returns the first labeled tick not before tick
func firstAtOrAfter(ticks []uint32, tick uint32) (uint32, bool) {
	idx := sort.Search(len(ticks), func(i int) bool { return ticks[i] >= tick })
	if idx == len(ticks) {
		return 0, false
	}
	return ticks[idx], true
}

// assignLabels gives every note inside a phrase a syllable. Short and medium
// notes always start a new word. Long notes alternate between a new word and
// the continuation marker, and a silence longer than GapThreshold starts the
// alternation over with a word. Two repair passes follow: no phrase may open
// on the continuation marker, and no contained note may stay unlabeled.
//
// Words are drawn from the source in phrase order, then note order, then
// repair order.
func assignLabels(phrases []Phrase, notes []VocalNote, words WordSource, cfg *Config, diag *Diagnostics) LabelMap {
	labels := make(LabelMap)
	marker := cfg.ContinuationMarker

	for _, phrase := range phrases {
		expectWord := true
		var lastEnd uint32
		haveLast := false

		for _, note := range notesWithin(notes, phrase) {
			if haveLast && tickGap(lastEnd, note.Start) > int64(cfg.GapThreshold) {
				expectWord = true
			}

			switch note.Class {
			case Long:
				if expectWord {
					if _, exists := labels[note.Start]; !exists {
						labels[note.Start] = words.NextWord()
					}
				} else {
					labels.setIfEmpty(note.Start, marker)
				}
				expectWord = !expectWord
			default:
				if _, exists := labels[note.Start]; !exists {
					labels[note.Start] = words.NextWord()
				}
			}

			lastEnd = note.End
			haveLast = true
		}
	}

	// a phrase never opens mid sustain
	ticks := labels.Ticks()
	for _, phrase := range phrases {
		tick, ok := firstAtOrAfter(ticks, phrase.Start)
		if ok && labels[tick] == marker {
			labels[tick] = words.NextWord()
			diag.Infof(DiagMarkerReplaced, tick, "phrase %s started with %q", phrase, marker)
		}
	}

	labelUncoveredNotes(labels, phrases, notes, words, cfg, diag)

	return labels
}

// labelUncoveredNotes gives every contained note that still has no label a
// default one: the continuation marker for long notes, a word otherwise.
// After the main pass of assignLabels this finds nothing, it only matters for
// label maps built some other way.
func labelUncoveredNotes(labels LabelMap, phrases []Phrase, notes []VocalNote, words WordSource, cfg *Config, diag *Diagnostics) {
	for _, phrase := range phrases {
		for _, note := range notesWithin(notes, phrase) {
			if _, exists := labels[note.Start]; exists {
				continue
			}
			label := cfg.ContinuationMarker
			if note.Class != Long {
				label = words.NextWord()
			}
			labels[note.Start] = label
			diag.Infof(DiagDefaultLabel, note.Start, "assigned %q to unlabeled %s note", label, note.Class)
		}
	}
}
