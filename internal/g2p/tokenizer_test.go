package g2p

import (
	"reflect"
	"testing"
)

func TestVocabTokenizerEncode(t *testing.T) {
	tok := NewVocabTokenizer(newTestVocab(t))

	tests := []struct {
		name string
		word string
		want []int64
	}{
		{
			"character-level encode wrapped in sequence markers",
			"had",
			[]int64{0, 6, 4, 5, 2},
		},
		{
			"uppercase input is lowercased",
			"HAD",
			[]int64{0, 6, 4, 5, 2},
		},
		{
			"longest match wins over single characters",
			"shad",
			[]int64{0, 9, 4, 5, 2}, // "sh" as one token
		},
		{
			"unknown runes encode as unk",
			"hxd",
			[]int64{0, 6, 3, 5, 2},
		},
		{"empty word yields nil", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Encode(tt.word)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Encode(%q) = %v; want %v", tt.word, got, tt.want)
			}
		})
	}
}
