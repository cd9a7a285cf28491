// Package text provides input normalization and sentence/word segmentation
// for the synthesis pipeline.
package text

import "strings"

// Terminators are the characters that end a sentence. The terminator is
// retained as part of the emitted sentence.
const Terminators = ".!?;"

// Normalize prepares raw input text for segmentation.
// It normalizes line endings to \n and trims surrounding whitespace.
// Empty input is allowed and yields an empty string.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	return strings.TrimSpace(s)
}

// SplitSentences splits text into sentences at terminal punctuation,
// keeping the terminator attached to its sentence. Segments that are empty
// after trimming are dropped. A trailing segment without a terminator is
// kept as a final sentence.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0

	for i, r := range text {
		if strings.ContainsRune(Terminators, r) {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}

	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}

	return sentences
}

// SplitWords splits a sentence into whitespace-delimited words.
// Zero-length words cannot occur; a sentence yielding no words is the
// caller's cue to drop it.
func SplitWords(sentence string) []string {
	return strings.Fields(sentence)
}
