package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reference values used when no config file overrides them
const (
	defaultBeatTrack       = "BEAT"
	defaultVocalsTrack     = "PART VOCALS"
	defaultDownbeatKey     = 12  // C-1 on the BEAT track
	defaultPitchLow        = 96  // lowest vocal note kept (C6)
	defaultPitchHigh       = 100 // highest vocal note kept (E6)
	defaultPitchShift      = -18
	defaultPhraseMarkerKey = 105
	defaultMarkerVelocity  = 127

	defaultMinPhraseLength    = 1200 // ticks
	defaultShortThreshold     = 119  // duration <= this is a short syllable
	defaultLongThreshold      = 120  // duration >= this is a long syllable
	defaultGapThreshold       = 20   // silence that resets word/marker alternation
	defaultPhraseGapThreshold = 0    // max gap for a note to join the running phrase

	defaultContinuationMarker = "+"
)

// Config holds every tunable of the vocals rewrite. The zero value is not
// usable, start from DefaultConfig.
type Config struct {
	// Track lookup, matched case-insensitively as a substring of the track name
	BeatTrack   string `yaml:"beat_track"`
	VocalsTrack string `yaml:"vocals_track"`

	DownbeatKey uint8 `yaml:"downbeat_key"`

	// Vocal notes outside [PitchLow, PitchHigh] are dropped from the rewritten track
	PitchLow   uint8 `yaml:"pitch_low"`
	PitchHigh  uint8 `yaml:"pitch_high"`
	PitchShift int   `yaml:"pitch_shift"`

	PhraseMarkerKey      uint8 `yaml:"phrase_marker_key"`
	PhraseMarkerVelocity uint8 `yaml:"phrase_marker_velocity"`

	MinPhraseLength    uint32 `yaml:"min_phrase_length"`
	ShortThreshold     uint32 `yaml:"short_threshold"`
	LongThreshold      uint32 `yaml:"long_threshold"`
	GapThreshold       uint32 `yaml:"gap_threshold"`
	PhraseGapThreshold uint32 `yaml:"phrase_gap_threshold"`

	ContinuationMarker string `yaml:"continuation_marker"`

	// MergeOverlappingPhrases unions phrases that overlap after segmentation.
	// When false the segmenter output is kept as is.
	MergeOverlappingPhrases bool `yaml:"merge_overlapping_phrases"`

	// Lexicon replaces the built in placeholder syllables when not empty
	Lexicon []string `yaml:"lexicon"`
}

// DefaultConfig returns the reference configuration
func DefaultConfig() *Config {
	return &Config{
		BeatTrack:               defaultBeatTrack,
		VocalsTrack:             defaultVocalsTrack,
		DownbeatKey:             defaultDownbeatKey,
		PitchLow:                defaultPitchLow,
		PitchHigh:               defaultPitchHigh,
		PitchShift:              defaultPitchShift,
		PhraseMarkerKey:         defaultPhraseMarkerKey,
		PhraseMarkerVelocity:    defaultMarkerVelocity,
		MinPhraseLength:         defaultMinPhraseLength,
		ShortThreshold:          defaultShortThreshold,
		LongThreshold:           defaultLongThreshold,
		GapThreshold:            defaultGapThreshold,
		PhraseGapThreshold:      defaultPhraseGapThreshold,
		ContinuationMarker:      defaultContinuationMarker,
		MergeOverlappingPhrases: true,
	}
}

// LoadConfig reads a YAML config file on top of the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}

	// fields missing from the file keep their default value
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config %s: %w", path, err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.BeatTrack = strings.TrimSpace(c.BeatTrack)
	c.VocalsTrack = strings.TrimSpace(c.VocalsTrack)

	lexicon := c.Lexicon[:0]
	for _, word := range c.Lexicon {
		word = strings.TrimSpace(word)
		if word != "" {
			lexicon = append(lexicon, word)
		}
	}
	c.Lexicon = lexicon
}

// Validate checks the invariants the pipeline depends on
func (c *Config) Validate() error {
	if c.BeatTrack == "" {
		return fmt.Errorf("beat_track must not be empty")
	}
	if c.VocalsTrack == "" {
		return fmt.Errorf("vocals_track must not be empty")
	}
	if c.ShortThreshold >= c.LongThreshold {
		return fmt.Errorf("short_threshold (%d) must be less than long_threshold (%d)", c.ShortThreshold, c.LongThreshold)
	}
	if c.PitchLow > c.PitchHigh {
		return fmt.Errorf("pitch_low (%d) is above pitch_high (%d)", c.PitchLow, c.PitchHigh)
	}
	if c.PitchHigh > 127 || c.DownbeatKey > 127 || c.PhraseMarkerKey > 127 || c.PhraseMarkerVelocity > 127 {
		return fmt.Errorf("MIDI keys and velocities must be in 0-127")
	}
	if c.PhraseMarkerVelocity == 0 {
		return fmt.Errorf("phrase_marker_velocity must be above 0")
	}
	if low, high := int(c.PitchLow)+c.PitchShift, int(c.PitchHigh)+c.PitchShift; low < 0 || high > 127 {
		return fmt.Errorf("pitch_shift %d moves the window %d-%d outside 0-127", c.PitchShift, c.PitchLow, c.PitchHigh)
	}
	if c.ContinuationMarker == "" {
		return fmt.Errorf("continuation_marker must not be empty")
	}
	for _, word := range c.Lexicon {
		if word == c.ContinuationMarker {
			return fmt.Errorf("lexicon must not contain the continuation marker %q", word)
		}
	}
	return nil
}

// inPitchWindow reports whether a source key belongs to the vocal melody
func (c *Config) inPitchWindow(key uint8) bool {
	return key >= c.PitchLow && key <= c.PitchHigh
}

// shiftPitch moves a source key into the output range. Validate guarantees
// the result stays a valid MIDI key for keys inside the window.
func (c *Config) shiftPitch(key uint8) uint8 {
	return uint8(int(key) + c.PitchShift)
}
