package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lazylip.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert := assert.New(t)
	assert.Equal("BEAT", cfg.BeatTrack)
	assert.Equal("PART VOCALS", cfg.VocalsTrack)
	assert.Equal(uint8(12), cfg.DownbeatKey)
	assert.Equal(uint32(1200), cfg.MinPhraseLength)
	assert.Equal(uint32(119), cfg.ShortThreshold)
	assert.Equal(uint32(120), cfg.LongThreshold)
	assert.Equal(uint32(20), cfg.GapThreshold)
	assert.Equal(uint32(0), cfg.PhraseGapThreshold)
	assert.Equal("+", cfg.ContinuationMarker)
	assert.True(cfg.MergeOverlappingPhrases)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
vocals_track: " HARM1 "
min_phrase_length: 960
merge_overlapping_phrases: false
lexicon: [" la ", "", "da"]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal("HARM1", cfg.VocalsTrack)
	assert.Equal(uint32(960), cfg.MinPhraseLength)
	assert.False(cfg.MergeOverlappingPhrases)
	assert.Equal([]string{"la", "da"}, cfg.Lexicon)

	// untouched fields keep their defaults
	assert.Equal("BEAT", cfg.BeatTrack)
	assert.Equal(uint32(119), cfg.ShortThreshold)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"thresholds", "short_threshold: 200\n", "short_threshold"},
		{"pitch window", "pitch_low: 101\n", "pitch_low"},
		{"shift out of range", "pitch_shift: -100\n", "pitch_shift"},
		{"empty track", "beat_track: \"  \"\n", "beat_track"},
		{"marker in lexicon", "lexicon: [\"la\", \"+\"]\n", "continuation marker"},
		{"marker velocity", "phrase_marker_velocity: 0\n", "phrase_marker_velocity"},
		{"bad yaml", "min_phrase_length: [1\n", "error parsing config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPitchWindow(t *testing.T) {
	cfg := DefaultConfig()

	assert := assert.New(t)
	assert.False(cfg.inPitchWindow(95))
	assert.True(cfg.inPitchWindow(96))
	assert.True(cfg.inPitchWindow(100))
	assert.False(cfg.inPitchWindow(101))

	assert.Equal(uint8(78), cfg.shiftPitch(96))
	assert.Equal(uint8(82), cfg.shiftPitch(100))
}
