// Package g2p drives the neural grapheme-to-phoneme model: a BART-style
// encoder/decoder pair executed through ONNX Runtime with greedy
// autoregressive decoding.
package g2p

import (
	"encoding/json"
	"fmt"
	"os"
)

// Reserved vocabulary tokens. BOS and EOS of a decode session are both
// the </s> token in this model family; <s> only appears as a control
// token inside emitted sequences.
const (
	tokenStart   = "<s>"
	tokenPad     = "<pad>"
	tokenEOS     = "</s>"
	tokenUnknown = "<unk>"
)

// Vocab holds the token↔id tables of the G2P model. Immutable after load.
type Vocab struct {
	tokenToID map[string]int64
	idToToken map[int64]string

	startID int64
	padID   int64
	eosID   int64
	unkID   int64
}

// LoadVocab reads a BART-style vocab.json (token → id).
func LoadVocab(path string) (*Vocab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocab: %w", err)
	}

	var tokenToID map[string]int64
	if err := json.Unmarshal(data, &tokenToID); err != nil {
		return nil, fmt.Errorf("decode vocab %s: %w", path, err)
	}

	return NewVocab(tokenToID)
}

// NewVocab builds a Vocab from a token → id table. The four reserved
// tokens must be present.
func NewVocab(tokenToID map[string]int64) (*Vocab, error) {
	v := &Vocab{
		tokenToID: make(map[string]int64, len(tokenToID)),
		idToToken: make(map[int64]string, len(tokenToID)),
	}
	for tok, id := range tokenToID {
		v.tokenToID[tok] = id
		v.idToToken[id] = tok
	}

	for _, required := range []struct {
		token string
		dst   *int64
	}{
		{tokenStart, &v.startID},
		{tokenPad, &v.padID},
		{tokenEOS, &v.eosID},
		{tokenUnknown, &v.unkID},
	} {
		id, ok := v.tokenToID[required.token]
		if !ok {
			return nil, fmt.Errorf("vocab is missing reserved token %q", required.token)
		}
		*required.dst = id
	}

	return v, nil
}

// Token returns the string for id.
func (v *Vocab) Token(id int64) (string, bool) {
	tok, ok := v.idToToken[id]

	return tok, ok
}

// ID returns the id for tok.
func (v *Vocab) ID(tok string) (int64, bool) {
	id, ok := v.tokenToID[tok]

	return id, ok
}

// BOS returns the decode-session seed id (identical to EOS).
func (v *Vocab) BOS() int64 { return v.eosID }

// EOS returns the end-of-sequence id.
func (v *Vocab) EOS() int64 { return v.eosID }

// IsControl reports whether id is one of the control ids excluded from
// content output: <s>, <pad>, </s>.
func (v *Vocab) IsControl(id int64) bool {
	return id == v.startID || id == v.padID || id == v.eosID
}

// Len returns the vocabulary size.
func (v *Vocab) Len() int {
	return len(v.tokenToID)
}
