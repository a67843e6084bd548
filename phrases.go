package main

import (
	"fmt"
	"sort"
)

// Phrase is a span of the vocals track shown as one lyric line
type Phrase struct {
	Start uint32 // Absolute start in ticks
	End   uint32 // Absolute end in ticks, always after Start
}

// Length returns the phrase length in ticks
func (p Phrase) Length() uint32 {
	return p.End - p.Start
}

// Contains reports whether the note lies completely inside the phrase
func (p Phrase) Contains(note VocalNote) bool {
	return note.Start >= p.Start && note.End <= p.End
}

func (p Phrase) String() string {
	return fmt.Sprintf("%d-%d", p.Start, p.End)
}

// tickGap returns to - from, negative when to comes first
func tickGap(from, to uint32) int64 {
	return int64(to) - int64(from)
}

// segmentPhrases builds phrases from downbeat windows. Notes are visited
// once, in start order, by a cursor shared by every window. Each window only
// starts once the previous phrase has ended, collects the notes starting
// inside it and, when the result is shorter than MinPhraseLength, pulls in
// following notes that continue without a gap. Notes left after the last
// window are grouped by gap into trailing phrases.
func segmentPhrases(beats []uint32, notes []VocalNote, cfg *Config, diag *Diagnostics) ([]Phrase, error) {
	if len(beats) < 2 {
		return nil, ErrTooFewDownbeats
	}

	var phrases []Phrase
	cursor := 0
	var previousEnd uint32
	havePrevious := false

	for i := 0; i+1 < len(beats); i++ {
		windowStart, windowEnd := beats[i], beats[i+1]

		if havePrevious && windowStart < previousEnd {
			diag.Infof(DiagPhraseStartAdjusted, windowStart, "window moved to %d to follow the previous phrase", previousEnd)
			windowStart = previousEnd
		}

		collected := 0
		var start, end uint32

		for cursor < len(notes) && notes[cursor].Start < windowEnd {
			note := notes[cursor]
			cursor++

			if note.Start < windowStart {
				if havePrevious && phrases[len(phrases)-1].Contains(note) {
					diag.Infof(DiagNoteSkipped, note.Start, "note already inside phrase %s", phrases[len(phrases)-1])
				} else {
					diag.Warnf(DiagNoteSkipped, note.Start, "note starts before window %d-%d and belongs to no phrase", windowStart, windowEnd)
				}
				continue
			}

			if collected == 0 {
				start, end = note.Start, note.End
			} else {
				start = min(start, note.Start)
				end = max(end, note.End)
			}
			collected++
		}

		if collected == 0 {
			continue
		}

		// best effort: the phrase is kept even if it stays short
		if end-start < cfg.MinPhraseLength {
			absorbed := 0
			for cursor < len(notes) && end-start < cfg.MinPhraseLength {
				next := notes[cursor]
				if tickGap(end, next.Start) > int64(cfg.PhraseGapThreshold) {
					break
				}
				end = max(end, next.End)
				cursor++
				absorbed++
			}
			if absorbed > 0 {
				diag.Infof(DiagPhraseExtended, start, "absorbed %d note(s), phrase now ends at %d", absorbed, end)
			}
		}

		phrases = append(phrases, Phrase{Start: start, End: end})
		previousEnd = end
		havePrevious = true
	}

	var trailing Phrase
	haveTrailing := false
	for ; cursor < len(notes); cursor++ {
		note := notes[cursor]
		if haveTrailing && tickGap(trailing.End, note.Start) <= int64(cfg.PhraseGapThreshold) {
			trailing.End = max(trailing.End, note.End)
			continue
		}
		if haveTrailing {
			phrases = append(phrases, trailing)
		}
		trailing = Phrase{Start: note.Start, End: note.End}
		haveTrailing = true
	}
	if haveTrailing {
		phrases = append(phrases, trailing)
	}

	return finalizePhrases(phrases, cfg, diag), nil
}

// finalizePhrases sorts phrases, drops exact duplicates and, unless disabled,
// merges phrases that overlap so every phrase ends before the next one starts
func finalizePhrases(phrases []Phrase, cfg *Config, diag *Diagnostics) []Phrase {
	sort.Slice(phrases, func(i, j int) bool {
		if phrases[i].Start == phrases[j].Start {
			return phrases[i].End < phrases[j].End
		}
		return phrases[i].Start < phrases[j].Start
	})

	result := make([]Phrase, 0, len(phrases))
	for _, phrase := range phrases {
		if len(result) == 0 {
			result = append(result, phrase)
			continue
		}

		last := &result[len(result)-1]
		if *last == phrase {
			continue
		}

		if cfg.MergeOverlappingPhrases && phrase.Start < last.End {
			diag.Warnf(DiagPhrasesMerged, phrase.Start, "phrase %s overlaps %s, merging", phrase, *last)
			last.End = max(last.End, phrase.End)
			continue
		}

		result = append(result, phrase)
	}

	return result
}

// overlappingPhrases returns the index pairs of adjacent phrases that overlap
func overlappingPhrases(phrases []Phrase) [][2]int {
	var pairs [][2]int
	for i := 0; i+1 < len(phrases); i++ {
		if phrases[i].End > phrases[i+1].Start {
			pairs = append(pairs, [2]int{i, i + 1})
		}
	}
	return pairs
}
