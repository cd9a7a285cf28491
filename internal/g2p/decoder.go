package g2p

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/go-piper-tts/internal/onnx"
)

// MaxDecodeSteps caps the autoregressive loop. A decode that never emits
// EOS always terminates at this step count.
const MaxDecodeSteps = 50

// Graph input/output names of the encoder and decoder ONNX exports.
const (
	encoderInputIDs      = "input_ids"
	encoderAttentionMask = "attention_mask"
	encoderHiddenState   = "last_hidden_state"

	decoderInputIDs            = "input_ids"
	decoderEncoderHiddenStates = "encoder_hidden_states"
	decoderEncoderMask         = "encoder_attention_mask"
	decoderLogits              = "logits"
)

// Decoder phonemizes unknown words with the neural G2P model. The two
// graphs are driven one in-flight call at a time; concurrent callers are
// serialized internally.
type Decoder struct {
	mu      sync.Mutex
	encoder onnx.Graph
	decoder onnx.Graph
	vocab   *Vocab
	tok     Tokenizer
}

// NewDecoder creates a Decoder over the encoder and decoder graphs.
func NewDecoder(encoder, decoder onnx.Graph, vocab *Vocab, tok Tokenizer) *Decoder {
	return &Decoder{
		encoder: encoder,
		decoder: decoder,
		vocab:   vocab,
		tok:     tok,
	}
}

// session holds the per-word decode state: the immutable encoder outputs
// and the growing id sequence. The encoder is run exactly once per word;
// every step reuses its hidden states.
type session struct {
	hidden  *onnx.Tensor
	mask    *onnx.Tensor
	ids     []int64 // full emitted sequence, seeded with BOS
	content []int64 // emitted ids minus control tokens
}

// Phonemes returns the phoneme tokens for word. A nil slice with nil error
// means the word produced no content tokens; the caller decides how to
// degrade. Any graph failure fails the word's decode entirely.
func (d *Decoder) Phonemes(ctx context.Context, word string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	inputIDs := d.tok.Encode(word)
	if len(inputIDs) == 0 {
		return nil, nil
	}

	sess, err := d.startSession(ctx, inputIDs)
	if err != nil {
		return nil, err
	}

	for step := 0; step < MaxDecodeSteps; step++ {
		next, err := d.step(ctx, sess)
		if err != nil {
			return nil, fmt.Errorf("decode step %d: %w", step, err)
		}

		if next == d.vocab.EOS() {
			break
		}

		sess.ids = append(sess.ids, next)
		if !d.vocab.IsControl(next) {
			sess.content = append(sess.content, next)
		}
	}

	tokens := make([]string, 0, len(sess.content))
	for _, id := range sess.content {
		tok, ok := d.vocab.Token(id)
		if !ok {
			// Ids outside the vocabulary carry no symbol; skip them the
			// same way the vectorizer skips unknown characters.
			continue
		}
		tokens = append(tokens, tok)
	}

	slog.Debug("g2p decode", "word", word, "steps", len(sess.ids), "tokens", len(tokens))

	if len(tokens) == 0 {
		return nil, nil
	}

	return tokens, nil
}

// startSession runs the encoder once and seeds the decode state with BOS.
func (d *Decoder) startSession(ctx context.Context, inputIDs []int64) (*session, error) {
	seqLen := int64(len(inputIDs))

	idsTensor, err := onnx.NewTensor(inputIDs, []int64{1, seqLen})
	if err != nil {
		return nil, fmt.Errorf("encoder input ids: %w", err)
	}

	maskData := make([]int64, seqLen)
	for i := range maskData {
		maskData[i] = 1
	}
	maskTensor, err := onnx.NewTensor(maskData, []int64{1, seqLen})
	if err != nil {
		return nil, fmt.Errorf("encoder attention mask: %w", err)
	}

	outputs, err := d.encoder.Run(ctx, map[string]*onnx.Tensor{
		encoderInputIDs:      idsTensor,
		encoderAttentionMask: maskTensor,
	})
	if err != nil {
		return nil, fmt.Errorf("g2p encoder: %w", err)
	}

	hidden, err := onnx.Output(outputs, d.encoder.Name(), encoderHiddenState)
	if err != nil {
		return nil, err
	}

	return &session{
		hidden: hidden,
		mask:   maskTensor,
		ids:    []int64{d.vocab.BOS()},
	}, nil
}

// step runs the decoder over the current sequence and greedily selects the
// next id from the final position's logits. Ties resolve to the lowest id.
func (d *Decoder) step(ctx context.Context, sess *session) (int64, error) {
	idsTensor, err := onnx.NewTensor(sess.ids, []int64{1, int64(len(sess.ids))})
	if err != nil {
		return 0, fmt.Errorf("decoder input ids: %w", err)
	}

	outputs, err := d.decoder.Run(ctx, map[string]*onnx.Tensor{
		decoderInputIDs:            idsTensor,
		decoderEncoderHiddenStates: sess.hidden,
		decoderEncoderMask:         sess.mask,
	})
	if err != nil {
		return 0, fmt.Errorf("g2p decoder: %w", err)
	}

	logits, err := onnx.Output(outputs, d.decoder.Name(), decoderLogits)
	if err != nil {
		return 0, err
	}

	return lastPositionArgmax(logits, len(sess.ids))
}

// lastPositionArgmax extracts the logits of the final sequence position
// from a [1, S, V] tensor and returns the index of their maximum.
func lastPositionArgmax(logits *onnx.Tensor, seqLen int) (int64, error) {
	shape := logits.Shape()
	if len(shape) != 3 {
		return 0, fmt.Errorf("logits rank %d, want 3", len(shape))
	}
	if shape[0] != 1 || int(shape[1]) != seqLen {
		return 0, fmt.Errorf("logits shape %v, want [1 %d V]", shape, seqLen)
	}

	vocabSize := int(shape[2])
	if vocabSize < 1 {
		return 0, fmt.Errorf("logits shape %v has empty vocab dimension", shape)
	}

	data, err := onnx.ExtractFloat32(logits)
	if err != nil {
		return 0, err
	}

	last := data[(seqLen-1)*vocabSize:]
	best := 0
	for i := 1; i < vocabSize; i++ {
		if last[i] > last[best] {
			best = i
		}
	}

	return int64(best), nil
}
