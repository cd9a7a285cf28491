package tts

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/example/go-piper-tts/internal/onnx"
	"github.com/example/go-piper-tts/internal/phoneme"
	"github.com/example/go-piper-tts/internal/voice"
)

const testDict = `HAD  HH AE1 D
BLONDE  B L AA1 N D
HAIR  HH EH1 R
`

const testMapping = `AA, ɑ
AE, æ
AH, ʌ
B, b
D, d
EH, ɛ
HH, h
IH, ɪ
L, l
N, n
R, ɹ
S, s
`

// fakeG2P is safe for concurrent use; the service may phonemize words in
// parallel.
type fakeG2P struct {
	mu     sync.Mutex
	tokens map[string][]string
	err    error
	calls  []string
}

func (f *fakeG2P) Phonemes(_ context.Context, word string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, word)
	if f.err != nil {
		return nil, f.err
	}

	return f.tokens[word], nil
}

type fakeVocoder struct {
	mu     sync.Mutex
	inputs map[string]*onnx.Tensor
	calls  int
}

func (f *fakeVocoder) Name() string { return "vocoder" }

func (f *fakeVocoder) Run(_ context.Context, inputs map[string]*onnx.Tensor) (map[string]*onnx.Tensor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.inputs = inputs

	ids, err := onnx.ExtractInt64(inputs["input"])
	if err != nil {
		return nil, err
	}

	// One fake frame of audio per phoneme id.
	samples := make([]float32, len(ids)*4)
	waveform, err := onnx.NewTensor(samples, []int64{1, 1, int64(len(samples))})
	if err != nil {
		return nil, err
	}

	return map[string]*onnx.Tensor{"output": waveform}, nil
}

func testVoiceConfig() *voice.Config {
	idMap := make(map[string][]int64)
	for i, ch := range []string{
		"^", "$", "_", " ", ".", ",", "!",
		"h", "æ", "d", "b", "l", "ɑ", "n", "ɛ", "ɹ", "ɪ", "s", "ʌ",
		phoneme.PrimaryStress, phoneme.SecondaryStress,
	} {
		idMap[ch] = []int64{int64(i + 1)}
	}

	return &voice.Config{
		Audio:        voice.AudioConfig{SampleRate: 22050},
		Inference:    voice.InferenceConfig{NoiseScale: 0.667, LengthScale: 1.0, NoiseW: 0.8},
		PhonemeIDMap: idMap,
	}
}

func newTestService(t *testing.T, g2p phoneme.G2P, vocoder onnx.Graph, concurrency int) *Service {
	t.Helper()

	dict, err := phoneme.ParseDictionary(strings.NewReader(testDict))
	if err != nil {
		t.Fatalf("ParseDictionary: %v", err)
	}

	mapper, err := phoneme.ParseArpabetMap(strings.NewReader(testMapping))
	if err != nil {
		t.Fatalf("ParseArpabetMap: %v", err)
	}

	return NewFromParts(phoneme.NewPhonemizer(dict, g2p), mapper, testVoiceConfig(), vocoder, concurrency)
}

func TestSynthesizeEndToEnd(t *testing.T) {
	g2p := &fakeG2P{tokens: map[string][]string{
		"harrison": {"HH", "EH1", "R", "IH0", "S", "AH0", "N"},
	}}
	vocoder := &fakeVocoder{}
	svc := newTestService(t, g2p, vocoder, 1)

	res, err := svc.Synthesize(context.Background(), "Harrison had blonde hair.")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	// Only the out-of-dictionary word routes through G2P.
	if want := []string{"harrison"}; !reflect.DeepEqual(g2p.calls, want) {
		t.Errorf("G2P calls = %v; want %v", g2p.calls, want)
	}

	if !strings.HasPrefix(res.Formatted, phoneme.StartMarker) {
		t.Errorf("formatted %q does not start with %q", res.Formatted, phoneme.StartMarker)
	}
	if !strings.HasSuffix(res.Formatted, phoneme.TerminalMarker) {
		t.Errorf("formatted %q does not end with %q", res.Formatted, phoneme.TerminalMarker)
	}

	// Dictionary words render through the symbol mapper.
	if !strings.Contains(res.Formatted, "h_"+phoneme.PrimaryStress+"_æ_d") {
		t.Errorf("formatted %q missing mapped rendering of 'had'", res.Formatted)
	}

	// The vocoder received exactly the vectorized formatted string.
	wantIDs := testVoiceConfig().PhonemeIDs(res.Formatted)
	gotIDs, err := onnx.ExtractInt64(vocoder.inputs["input"])
	if err != nil {
		t.Fatalf("vocoder input: %v", err)
	}
	if !reflect.DeepEqual(gotIDs, wantIDs) {
		t.Errorf("vocoder ids = %v; want %v", gotIDs, wantIDs)
	}

	if res.SampleRate != 22050 {
		t.Errorf("SampleRate = %d; want 22050", res.SampleRate)
	}
	if len(res.Samples) != len(wantIDs)*4 {
		t.Errorf("samples = %d; want %d", len(res.Samples), len(wantIDs)*4)
	}
}

func TestSynthesizeEmptyInput(t *testing.T) {
	vocoder := &fakeVocoder{}
	svc := newTestService(t, &fakeG2P{}, vocoder, 1)

	res, err := svc.Synthesize(context.Background(), "")
	if err != nil {
		t.Fatalf("Synthesize(\"\"): %v", err)
	}

	if res.Formatted != "" {
		t.Errorf("Formatted = %q; want empty", res.Formatted)
	}
	if len(res.Samples) != 0 {
		t.Errorf("Samples = %d; want none", len(res.Samples))
	}
	if vocoder.calls != 0 {
		t.Error("vocoder invoked for empty input")
	}
}

func TestSynthesizePunctuationWordVerbatim(t *testing.T) {
	svc := newTestService(t, &fakeG2P{}, &fakeVocoder{}, 1)

	// "," survives cleaning as a pure punctuation word and must appear
	// verbatim in the formatted string.
	res, err := svc.Synthesize(context.Background(), "had , hair.")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if !strings.Contains(res.Formatted, "_,_") {
		t.Errorf("formatted %q missing verbatim punctuation word", res.Formatted)
	}
}

func TestPhonemizeBangWordVerbatim(t *testing.T) {
	svc := newTestService(t, &fakeG2P{}, &fakeVocoder{}, 1)

	formatted, err := svc.Phonemize(context.Background(), "!!", phoneme.ModeSentence)
	if err != nil {
		t.Fatalf("Phonemize: %v", err)
	}

	if !strings.Contains(formatted, "!") {
		t.Errorf("formatted %q dropped the punctuation input", formatted)
	}
	if !strings.HasPrefix(formatted, phoneme.StartMarker) {
		t.Errorf("formatted %q does not start with %q", formatted, phoneme.StartMarker)
	}
}

func TestSynthesizeG2PErrorAborts(t *testing.T) {
	cause := errors.New("decode failed")
	vocoder := &fakeVocoder{}
	svc := newTestService(t, &fakeG2P{err: cause}, vocoder, 1)

	_, err := svc.Synthesize(context.Background(), "harrison had hair.")
	if !errors.Is(err, cause) {
		t.Fatalf("error = %v; want wrapped %v", err, cause)
	}

	if vocoder.calls != 0 {
		t.Error("vocoder invoked after phonemization failure")
	}
}

func TestPhonemizeConcurrentMatchesSequential(t *testing.T) {
	text := "harrison had blonde hair. blonde hair had harrison."
	g2pTokens := map[string][]string{"harrison": {"HH", "EH1", "R"}}

	seq := newTestService(t, &fakeG2P{tokens: g2pTokens}, &fakeVocoder{}, 1)
	par := newTestService(t, &fakeG2P{tokens: g2pTokens}, &fakeVocoder{}, 4)

	want, err := seq.Phonemize(context.Background(), text, phoneme.ModeSentence)
	if err != nil {
		t.Fatalf("sequential Phonemize: %v", err)
	}

	got, err := par.Phonemize(context.Background(), text, phoneme.ModeSentence)
	if err != nil {
		t.Fatalf("parallel Phonemize: %v", err)
	}

	if got != want {
		t.Errorf("parallel formatted %q != sequential %q", got, want)
	}
}

func TestPhonemizeWordMode(t *testing.T) {
	svc := newTestService(t, &fakeG2P{}, &fakeVocoder{}, 1)

	formatted, err := svc.Phonemize(context.Background(), "had hair.", phoneme.ModeWord)
	if err != nil {
		t.Fatalf("Phonemize: %v", err)
	}

	if !strings.HasSuffix(formatted, phoneme.Separator+phoneme.EndMarker) {
		t.Errorf("formatted %q does not end with separator+end marker", formatted)
	}
}
