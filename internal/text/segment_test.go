package text

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  hello world.  ", "hello world."},
		{"normalizes CRLF", "one.\r\ntwo.", "one.\ntwo."},
		{"normalizes bare CR", "one.\rtwo.", "one.\ntwo."},
		{"empty input stays empty", "", ""},
		{"whitespace-only becomes empty", "  \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			"splits on period keeping terminator",
			"harrison had blonde hair. are we sure?",
			[]string{"harrison had blonde hair.", "are we sure?"},
		},
		{
			"splits on all terminators",
			"one. two! three? four;",
			[]string{"one.", "two!", "three?", "four;"},
		},
		{
			"keeps trailing segment without terminator",
			"first. second without end",
			[]string{"first.", "second without end"},
		},
		{
			"drops empty segments between terminators",
			"a.. b.",
			[]string{"a.", ".", "b."},
		},
		{"empty input yields none", "", nil},
		{"whitespace yields none", "   ", nil},
		{"single sentence", "hello world.", []string{"hello world."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitWords(t *testing.T) {
	got := SplitWords("  harrison   had\tblonde hair.  ")
	want := []string{"harrison", "had", "blonde", "hair."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitWords = %q; want %q", got, want)
	}

	if words := SplitWords("   "); len(words) != 0 {
		t.Errorf("SplitWords on blanks = %q; want none", words)
	}
}
