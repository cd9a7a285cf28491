package g2p

import "strings"

// Tokenizer encodes a word into sub-word ids for the G2P encoder.
type Tokenizer interface {
	Encode(word string) []int64
}

// VocabTokenizer encodes by greedy longest-match against the model
// vocabulary. The shipped G2P model is character-level, so most matches
// are single runes; longest-match keeps multi-character vocabulary entries
// working without a separate merges table.
type VocabTokenizer struct {
	vocab       *Vocab
	maxTokenLen int
}

// NewVocabTokenizer creates a tokenizer over vocab.
func NewVocabTokenizer(vocab *Vocab) *VocabTokenizer {
	maxLen := 1
	for tok := range vocab.tokenToID {
		if isReserved(tok) {
			continue
		}
		if n := len([]rune(tok)); n > maxLen {
			maxLen = n
		}
	}

	return &VocabTokenizer{vocab: vocab, maxTokenLen: maxLen}
}

// Encode lowercases the word, matches it greedily against the vocabulary,
// and wraps the result as [<s> ... </s>] for the encoder. Runes with no
// vocabulary entry encode as <unk>. A word with no runes returns nil.
func (t *VocabTokenizer) Encode(word string) []int64 {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(runes)+2)
	ids = append(ids, t.vocab.startID)

	for i := 0; i < len(runes); {
		matched := false
		maxEnd := min(i+t.maxTokenLen, len(runes))
		for end := maxEnd; end > i; end-- {
			if id, ok := t.vocab.ID(string(runes[i:end])); ok {
				ids = append(ids, id)
				i = end
				matched = true
				break
			}
		}

		if !matched {
			ids = append(ids, t.vocab.unkID)
			i++
		}
	}

	ids = append(ids, t.vocab.eosID)

	return ids
}

func isReserved(tok string) bool {
	switch tok {
	case tokenStart, tokenPad, tokenEOS, tokenUnknown:
		return true
	default:
		return false
	}
}
