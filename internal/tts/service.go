// Package tts composes the synthesis pipeline: segmentation,
// phonemization, symbol mapping, formatting, vectorization, vocoder
// inference.
package tts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/example/go-piper-tts/internal/config"
	"github.com/example/go-piper-tts/internal/g2p"
	"github.com/example/go-piper-tts/internal/onnx"
	"github.com/example/go-piper-tts/internal/phoneme"
	textpkg "github.com/example/go-piper-tts/internal/text"
	"github.com/example/go-piper-tts/internal/voice"
)

// Result is the output of one synthesis request.
type Result struct {
	Samples    []float32
	Shape      []int64
	SampleRate int
	Formatted  string
}

// Service owns the loaded lookup tables and model sessions. Tables are
// immutable after construction; sessions are driven one call at a time.
type Service struct {
	phonemizer  *phoneme.Phonemizer
	mapper      *phoneme.ArpabetMap
	voiceCfg    *voice.Config
	synth       *voice.Synthesizer
	concurrency int
	runners     []*onnx.Runner
}

// New loads all tables and model sessions from the configuration.
// Any missing or malformed resource fails construction; nothing is
// synthesized on a partially loaded service.
func New(cfg config.Config) (*Service, error) {
	dict, err := phoneme.LoadDictionary(cfg.Paths.Dictionary)
	if err != nil {
		return nil, err
	}

	mapper, err := phoneme.LoadArpabetMap(cfg.Paths.ArpabetMap)
	if err != nil {
		return nil, err
	}

	vocab, err := g2p.LoadVocab(cfg.Paths.G2PVocab)
	if err != nil {
		return nil, err
	}

	voiceCfg, err := voice.LoadConfig(cfg.Paths.VoiceConfig)
	if err != nil {
		return nil, err
	}

	info, err := onnx.DetectRuntime(cfg.Runtime)
	if err != nil {
		return nil, err
	}

	runnerCfg := onnx.RunnerConfig{
		LibraryPath: info.LibraryPath,
		APIVersion:  cfg.Runtime.APIVersion,
	}

	s := &Service{
		mapper:      mapper,
		voiceCfg:    voiceCfg,
		concurrency: max(cfg.Synth.Concurrency, 1),
	}

	graphs := []struct {
		name string
		path string
	}{
		{"g2p_encoder", cfg.Paths.G2PEncoder},
		{"g2p_decoder", cfg.Paths.G2PDecoder},
		{"vocoder", cfg.Paths.VoiceModel},
	}
	loaded := make(map[string]*onnx.Runner, len(graphs))
	for _, g := range graphs {
		runner, err := onnx.NewRunner(g.name, g.path, runnerCfg)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.runners = append(s.runners, runner)
		loaded[g.name] = runner
	}

	decoder := g2p.NewDecoder(loaded["g2p_encoder"], loaded["g2p_decoder"], vocab, g2p.NewVocabTokenizer(vocab))
	s.phonemizer = phoneme.NewPhonemizer(dict, decoder)
	s.synth = voice.NewSynthesizer(loaded["vocoder"], voiceCfg)

	slog.Info(
		"tts service ready",
		"dictionary_entries", dict.Len(),
		"arpabet_mappings", mapper.Len(),
		"g2p_vocab", vocab.Len(),
		"sample_rate", voiceCfg.Audio.SampleRate,
		"ort_library", info.LibraryPath,
	)

	return s, nil
}

// NewFromParts assembles a service from prebuilt components.
func NewFromParts(p *phoneme.Phonemizer, mapper *phoneme.ArpabetMap, voiceCfg *voice.Config, vocoder onnx.Graph, concurrency int) *Service {
	return &Service{
		phonemizer:  p,
		mapper:      mapper,
		voiceCfg:    voiceCfg,
		synth:       voice.NewSynthesizer(vocoder, voiceCfg),
		concurrency: max(concurrency, 1),
	}
}

// Close releases the model sessions. Safe on a partially constructed
// service.
func (s *Service) Close() {
	for _, r := range s.runners {
		r.Close()
	}
	s.runners = nil
}

// SampleRate returns the voice model's output sample rate.
func (s *Service) SampleRate() int {
	return s.voiceCfg.Audio.SampleRate
}

// Phonemize converts text to the formatted phoneme string without running
// the vocoder. Empty or whitespace-only text yields an empty string.
func (s *Service) Phonemize(ctx context.Context, text string, mode phoneme.FormatMode) (string, error) {
	normalized := textpkg.Normalize(strings.ToLower(text))

	var sentences [][]string
	for _, sentence := range textpkg.SplitSentences(normalized) {
		words := textpkg.SplitWords(sentence)
		if len(words) == 0 {
			continue
		}

		renderings, err := s.renderWords(ctx, words)
		if err != nil {
			return "", err
		}

		sentences = append(sentences, renderings)
	}

	return phoneme.Format(sentences, mode), nil
}

// Synthesize runs the full pipeline and returns the waveform. Empty input
// produces an empty formatted string and no audio, without error.
func (s *Service) Synthesize(ctx context.Context, text string) (Result, error) {
	start := time.Now()

	formatted, err := s.Phonemize(ctx, text, phoneme.ModeSentence)
	if err != nil {
		return Result{}, err
	}

	slog.Debug("phonemization complete", "formatted_len", len(formatted), "elapsed", time.Since(start))

	result := Result{
		SampleRate: s.voiceCfg.Audio.SampleRate,
		Formatted:  formatted,
	}
	if formatted == "" {
		return result, nil
	}

	ids := s.voiceCfg.PhonemeIDs(formatted)

	inferStart := time.Now()
	samples, shape, err := s.synth.Synthesize(ctx, ids)
	if err != nil {
		return Result{}, fmt.Errorf("synthesize: %w", err)
	}

	result.Samples = samples
	result.Shape = shape

	slog.Info(
		"synthesis complete",
		"phoneme_ids", len(ids),
		"samples", len(samples),
		"inference_elapsed", time.Since(inferStart),
		"total_elapsed", time.Since(start),
	)

	return result, nil
}

// renderWords phonemizes and symbol-maps the words of one sentence.
// With concurrency > 1 the words are processed in parallel; results keep
// their input positions, so the formatted string is identical to the
// sequential path.
func (s *Service) renderWords(ctx context.Context, words []string) ([]string, error) {
	renderings := make([]string, len(words))

	if s.concurrency > 1 {
		errs := make([]error, len(words))
		it := iter.Iterator[string]{MaxGoroutines: s.concurrency}
		it.ForEachIdx(words, func(i int, w *string) {
			tokens, err := s.phonemizer.Word(ctx, *w)
			if err != nil {
				errs[i] = err
				return
			}

			renderings[i] = s.mapper.MapTokens(tokens)
		})

		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}

		return renderings, nil
	}

	for i, w := range words {
		tokens, err := s.phonemizer.Word(ctx, w)
		if err != nil {
			return nil, err
		}

		renderings[i] = s.mapper.MapTokens(tokens)
	}

	return renderings, nil
}
