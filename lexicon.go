package main

import (
	"math/rand/v2"
	"time"
)

// mouthShapes are placeholder syllables chosen to drive the singer's lip
// animation. They carry no meaning. A shape listed twice is drawn twice as
// often.
var mouthShapes = []string{
	// vowels
	"aa", "ee", "oo", "ai", "au", "ea", "oa", "ou", "ei", "ie", "ui", "ae",
	"eu", "oe", "uo", "ay", "oy",

	// consonant + vowel
	"la", "ma", "ba", "pa", "fa", "sa", "da", "ka", "na", "ga", "ha", "ja",
	"cha", "sha", "tha", "ra", "ta", "za", "wa", "ya",

	// clusters + vowel
	"blu", "plu", "dra", "klo", "kra", "tra", "sha", "sla", "twi", "glu",
	"cli", "pro", "fro", "pri", "cru", "qua", "bro", "gro",

	// nasals
	"mm", "nn", "ng", "mn", "gn", "an", "in", "un", "on",

	// plosives
	"pa", "ba", "da", "ta", "ka", "ga", "pla", "bra", "dra", "cla", "kra",
	"gra", "tra", "qua",

	// fricatives
	"fa", "va", "za", "sa", "sha", "tha", "cha", "ja", "sha", "za", "tha",
	"swa",

	// diphthongs
	"ou", "oi", "ae", "au", "eu", "oe", "ai", "ay", "oy", "aw", "ew", "ow",
	"iu",

	// open lip shapes
	"moo", "boo", "wow", "yaw", "woo", "bah", "maw", "yaw", "loh", "lah", "wah",

	// bare clusters
	"bl", "br", "tr", "kr", "fr", "pl", "dr", "cl", "gl", "sl", "pr", "gr",
	"st", "sp",

	// soft
	"lo", "me", "ba", "fa", "ho", "wo", "ye", "ra", "le", "mo", "po", "so",
}

// WordSource hands out placeholder syllables. Calls are made in a fixed order
// so a seeded source gives reproducible output.
type WordSource interface {
	NextWord() string
}

// lexiconSource draws uniformly from a word list
type lexiconSource struct {
	words []string
	rng   *rand.Rand
}

// NewWordSource returns a source drawing from words, or from the built in
// lexicon when words is empty. A zero seed picks a time based seed.
func NewWordSource(words []string, seed uint64) WordSource {
	if len(words) == 0 {
		words = mouthShapes
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lexiconSource{
		words: words,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *lexiconSource) NextWord() string {
	return s.words[s.rng.IntN(len(s.words))]
}
