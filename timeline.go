package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrTooFewDownbeats means the BEAT track can't seed any phrase window
var ErrTooFewDownbeats = errors.New("fewer than 2 downbeats found")

// BeatNote represents a beat event from the BEAT track
type BeatNote struct {
	Time       uint32 // Absolute time in ticks
	IsDownbeat bool   // True if this is a downbeat, false for other beats
}

// getTrackName returns the track name meta event, falling back to the first
// text event for tracks that label themselves that way
func getTrackName(track smf.Track) string {
	for _, event := range track {
		msg := event.Message

		var trackName string
		if msg.GetMetaTrackName(&trackName) {
			return trackName
		}

		var text string
		if msg.GetMetaText(&text) {
			return text
		}
	}
	return ""
}

// findTrack returns the index of the first track whose name contains name,
// ignoring case, or -1
func findTrack(smfData *smf.SMF, name string) int {
	needle := strings.ToUpper(name)
	for i, track := range smfData.Tracks {
		if strings.Contains(strings.ToUpper(getTrackName(track)), needle) {
			return i
		}
	}
	return -1
}

// ExtractDownbeats finds the beat track and returns its downbeat ticks in
// ascending order. At least two are needed to form a phrase window.
func ExtractDownbeats(smfData *smf.SMF, cfg *Config, diag *Diagnostics) ([]uint32, error) {
	idx := findTrack(smfData, cfg.BeatTrack)
	if idx < 0 {
		diag.Warnf(DiagMissingTrack, 0, "track %q not found", cfg.BeatTrack)
		return nil, fmt.Errorf("%s track not found: %w", cfg.BeatTrack, ErrTooFewDownbeats)
	}

	beatNotes := extractBeatNotes(smfData.Tracks[idx], cfg.DownbeatKey, diag)

	var downbeats []uint32
	for _, beat := range beatNotes {
		if beat.IsDownbeat {
			downbeats = append(downbeats, beat.Time)
		}
	}

	if len(downbeats) < 2 {
		return nil, fmt.Errorf("%d downbeat(s) in %s track: %w", len(downbeats), cfg.BeatTrack, ErrTooFewDownbeats)
	}

	return downbeats, nil
}

// extractBeatNotes extracts beat events from the BEAT track. The downbeat key
// marks a measure start, the key above it any other beat.
func extractBeatNotes(beatTrack smf.Track, downbeatKey uint8, diag *Diagnostics) []BeatNote {
	var beatNotes []BeatNote
	var currentTime uint32

	for _, event := range beatTrack {
		currentTime += event.Delta

		msg := event.Message
		var ch, key, vel uint8

		if msg.GetNoteOn(&ch, &key, &vel) {
			// noteoff events encoded as note on with velocity 0
			if vel == 0 {
				continue
			}

			var isDownbeat bool
			switch key {
			case downbeatKey:
				isDownbeat = true
			case downbeatKey + 1:
				isDownbeat = false
			default:
				diag.Infof(DiagInvalidBeatNote, currentTime, "ignoring key %d on beat track", key)
				continue
			}

			beatNotes = append(beatNotes, BeatNote{
				Time:       currentTime,
				IsDownbeat: isDownbeat,
			})
		}
	}

	// Sort by time to ensure proper order
	sort.SliceStable(beatNotes, func(i, j int) bool {
		return beatNotes[i].Time < beatNotes[j].Time
	})

	return beatNotes
}
