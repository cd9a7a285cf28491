package phoneme

import "strings"

// Markers of the formatted phoneme string grammar. The vocoder was trained
// on exactly this layout; changing any of them silently degrades output.
const (
	StartMarker    = "^"
	EndMarker      = "$"
	Separator      = "_"
	TerminalMarker = "."
)

// FormatMode selects between the two formatted-string grammars that the
// vocoder distinguishes. The grammars differ only in boundary-marker
// placement, so mixing them produces no error, just degraded audio —
// callers must bind one mode per path and keep it fixed.
type FormatMode int

const (
	// ModeSentence renders the whole document as one string: per sentence
	// the word renderings are joined by single spaces and closed with the
	// terminal marker, sentences are joined by single spaces, and the
	// result is expanded to separator-per-character form behind a single
	// start marker.
	ModeSentence FormatMode = iota
	// ModeWord wraps each sentence separately: start marker, the
	// sentence's characters joined by the separator, then a trailing
	// separator and end marker.
	ModeWord
)

// Format assembles the formatted phoneme string for the given per-sentence
// word renderings. An empty input yields an empty string (no markers).
func Format(sentences [][]string, mode FormatMode) string {
	if len(sentences) == 0 {
		return ""
	}

	switch mode {
	case ModeWord:
		parts := make([]string, 0, len(sentences))
		for _, words := range sentences {
			parts = append(parts, formatWordMode(words))
		}

		return strings.Join(parts, " ")
	default:
		return formatSentenceMode(sentences)
	}
}

func formatSentenceMode(sentences [][]string) string {
	parts := make([]string, 0, len(sentences))
	for _, words := range sentences {
		parts = append(parts, strings.Join(words, " ")+TerminalMarker)
	}

	// Collapse whitespace runs so consecutive spaces never produce more
	// than one separator-delimited space character.
	joined := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")

	return StartMarker + expand(joined)
}

func formatWordMode(words []string) string {
	trimmed := strings.Join(strings.Fields(strings.Join(words, " ")), " ")

	return StartMarker + expand(trimmed) + Separator + EndMarker
}

// expand joins every character of s with the separator. No separator
// follows the start marker and none trails the final character.
func expand(s string) string {
	runes := []rune(s)
	chars := make([]string, len(runes))
	for i, r := range runes {
		chars[i] = string(r)
	}

	return strings.Join(chars, Separator)
}
