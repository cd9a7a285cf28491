package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/go-piper-tts/internal/onnx"
)

// Vocoder graph input/output names.
const (
	inputIDs     = "input"
	inputLengths = "input_lengths"
	inputScales  = "scales"
	outputAudio  = "output"
)

// ErrNoPhonemeIDs is returned when synthesis is attempted with an empty
// id sequence.
var ErrNoPhonemeIDs = errors.New("no phoneme ids to synthesize")

// Synthesizer invokes the vocoder graph. Single-shot: one Run per call,
// no retry, deterministic given fixed input and config.
type Synthesizer struct {
	graph onnx.Graph
	cfg   *Config
}

// NewSynthesizer creates a Synthesizer over the vocoder graph.
func NewSynthesizer(graph onnx.Graph, cfg *Config) *Synthesizer {
	return &Synthesizer{graph: graph, cfg: cfg}
}

// Synthesize runs the vocoder over the phoneme id sequence and returns the
// float waveform and its tensor shape.
func (s *Synthesizer) Synthesize(ctx context.Context, ids []int64) ([]float32, []int64, error) {
	if len(ids) == 0 {
		return nil, nil, ErrNoPhonemeIDs
	}

	idsTensor, err := onnx.NewTensor(ids, []int64{1, int64(len(ids))})
	if err != nil {
		return nil, nil, fmt.Errorf("phoneme ids tensor: %w", err)
	}

	lenTensor, err := onnx.NewTensor([]int64{int64(len(ids))}, []int64{1})
	if err != nil {
		return nil, nil, fmt.Errorf("input lengths tensor: %w", err)
	}

	scales := []float32{
		s.cfg.Inference.NoiseScale,
		s.cfg.Inference.LengthScale,
		s.cfg.Inference.NoiseW,
	}
	scalesTensor, err := onnx.NewTensor(scales, []int64{3})
	if err != nil {
		return nil, nil, fmt.Errorf("scales tensor: %w", err)
	}

	outputs, err := s.graph.Run(ctx, map[string]*onnx.Tensor{
		inputIDs:     idsTensor,
		inputLengths: lenTensor,
		inputScales:  scalesTensor,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("vocoder: %w", err)
	}

	waveform, err := onnx.Output(outputs, s.graph.Name(), outputAudio)
	if err != nil {
		return nil, nil, err
	}

	samples, err := onnx.ExtractFloat32(waveform)
	if err != nil {
		return nil, nil, fmt.Errorf("vocoder output: %w", err)
	}

	shape := waveform.Shape()
	slog.Debug("vocoder inference", "ids", len(ids), "samples", len(samples), "shape", shape)

	return samples, shape, nil
}
