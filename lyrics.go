package main

import (
	"sort"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"
)

// parseRockBandLyrics joins Rock Band lyric syllables into readable text.
//
// Formatting rules handled:
// - Multi-syllable words: "Hel- lo" → "Hello"
// - Slide notes (multiple notes per syllable): "Yeah +" → "Yeah"
// - Non-pitched markers: "All#" or "All^" → "All"
// - Range dividers: "word%" → "word"
func parseRockBandLyrics(rawLyrics []string) string {
	var result []string
	var currentWord strings.Builder

	for _, lyric := range rawLyrics {
		if lyric == "" {
			continue
		}

		// Skip if it's just a "+" (syllable continuation marker)
		if lyric == "+" {
			continue
		}

		// Clean up the lyric text
		cleaned := lyric

		// Remove non-pitched markers (#, ^) and range dividers (%)
		cleaned = strings.TrimSuffix(cleaned, "#")
		cleaned = strings.TrimSuffix(cleaned, "^")
		cleaned = strings.TrimSuffix(cleaned, "%")

		// Handle actual hyphens (= becomes -)
		cleaned = strings.ReplaceAll(cleaned, "=", "-")

		// Check if this syllable continues with "+"
		isSlideNote := strings.HasSuffix(cleaned, "+")
		if isSlideNote {
			cleaned = strings.TrimSuffix(cleaned, "+")
			cleaned = strings.TrimSpace(cleaned)
		}

		// Check if this is a syllable continuation (starts with hyphen after cleaning markers)
		isSyllableContinuation := strings.HasSuffix(cleaned, "-")
		if isSyllableContinuation {
			cleaned = strings.TrimSuffix(cleaned, "-")
			cleaned = strings.TrimSpace(cleaned)
		}

		// Add to current word
		currentWord.WriteString(cleaned)

		// If this syllable doesn't continue to next (no trailing hyphen), complete the word
		if !isSyllableContinuation && !isSlideNote {
			word := currentWord.String()
			if word != "" {
				result = append(result, word)
			}
			currentWord.Reset()
		}
	}

	// Handle any remaining word
	if currentWord.Len() > 0 {
		word := currentWord.String()
		if word != "" {
			result = append(result, word)
		}
	}

	return strings.Join(result, " ")
}

// LyricEvent is one lyric syllable with its absolute time
type LyricEvent struct {
	Time  uint32 // Absolute time in ticks
	Lyric string // Raw lyric text, Rock Band formatting preserved
}

// PhraseLyrics is the readable text sung during one phrase
type PhraseLyrics struct {
	Phrase Phrase
	Text   string
}

// extractLyricsWithTiming collects lyric and non-bracketed text events of a
// track with their absolute times
func extractLyricsWithTiming(track smf.Track) []LyricEvent {
	var lyricEvents []LyricEvent

	var currentTime uint32
	for _, event := range track {
		currentTime += event.Delta
		msg := event.Message

		var lyric, text string
		if msg.GetMetaLyric(&lyric) {
			lyricEvents = append(lyricEvents, LyricEvent{Time: currentTime, Lyric: lyric})
		} else if msg.GetMetaText(&text) {
			// Skip bracketed animation markers
			if len(text) > 0 && text[0] != '[' {
				lyricEvents = append(lyricEvents, LyricEvent{Time: currentTime, Lyric: text})
			}
		}
	}

	return lyricEvents
}

// extractPhrases reads the phrase marker notes back out of a track
func extractPhrases(track smf.Track, markerKey uint8) []Phrase {
	var phrases []Phrase
	var open []uint32

	for _, event := range absoluteEvents(track) {
		key, _, on, ok := noteInfo(event.Message)
		if !ok || key != markerKey {
			continue
		}
		if on {
			open = append(open, event.Time)
			continue
		}
		if len(open) == 0 {
			continue
		}
		phrases = append(phrases, Phrase{Start: open[0], End: event.Time})
		open = open[1:]
	}

	sort.SliceStable(phrases, func(i, j int) bool {
		return phrases[i].Start < phrases[j].Start
	})
	return phrases
}

// groupLyricsByPhrase merges the lyrics of each phrase into readable text.
// Phrases without lyrics are left out, lyrics outside every phrase are
// ignored.
func groupLyricsByPhrase(lyricEvents []LyricEvent, phrases []Phrase) []PhraseLyrics {
	var result []PhraseLyrics

	for _, phrase := range phrases {
		var rawLyrics []string
		for _, event := range lyricEvents {
			if event.Time >= phrase.Start && event.Time < phrase.End && event.Lyric != "" {
				rawLyrics = append(rawLyrics, event.Lyric)
			}
		}

		if text := parseRockBandLyrics(rawLyrics); text != "" {
			result = append(result, PhraseLyrics{Phrase: phrase, Text: text})
		}
	}

	return result
}

// trackLyrics returns the lyrics of a rewritten vocals track, grouped by its
// phrase markers
func trackLyrics(track smf.Track, cfg *Config) []PhraseLyrics {
	return groupLyricsByPhrase(extractLyricsWithTiming(track), extractPhrases(track, cfg.PhraseMarkerKey))
}
