package phoneme

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/go-piper-tts/internal/text"
)

// symbolsToStrip are removed from a word before dictionary lookup, in
// addition to the sentence terminators.
const symbolsToStrip = "^_,;()"

// G2P produces ARPAbet-style phoneme tokens for words absent from the
// dictionary. An error fails the whole synthesis request; a nil token
// slice means the word could not be phonemized and degrades to
// pass-through.
type G2P interface {
	Phonemes(ctx context.Context, word string) ([]string, error)
}

// Phonemizer resolves words to phoneme token sequences, preferring the
// dictionary and falling back to neural G2P.
type Phonemizer struct {
	dict *Dictionary
	g2p  G2P
}

// NewPhonemizer creates a Phonemizer. g2p may be nil for dictionary-only
// operation; unknown words then degrade to pass-through tokens.
func NewPhonemizer(dict *Dictionary, g2p G2P) *Phonemizer {
	return &Phonemizer{dict: dict, g2p: g2p}
}

// CleanWord strips the ignorable symbols and sentence terminators from a
// word, leaving the content used as the lookup key.
func CleanWord(word string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(symbolsToStrip, r) || strings.ContainsRune(text.Terminators, r) {
			return -1
		}

		return r
	}, word)
}

// Word returns the phoneme tokens for one word.
//
// Pure punctuation words (empty after cleaning) are returned unchanged as
// a single token so surprising input stays audible instead of being
// dropped. Dictionary hits return the dictionary's tokens exactly. Misses
// go through G2P; a G2P result with no tokens degrades to the cleaned word
// as a single pass-through token.
func (p *Phonemizer) Word(ctx context.Context, word string) ([]string, error) {
	cleaned := CleanWord(word)
	if cleaned == "" {
		return []string{word}, nil
	}

	if tokens, ok := p.dict.Lookup(cleaned); ok {
		return tokens, nil
	}

	if p.g2p != nil {
		tokens, err := p.g2p.Phonemes(ctx, cleaned)
		if err != nil {
			return nil, fmt.Errorf("g2p %q: %w", cleaned, err)
		}

		if len(tokens) > 0 {
			return tokens, nil
		}
	}

	return []string{cleaned}, nil
}
