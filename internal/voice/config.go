// Package voice loads the vocoder model configuration and drives vocoder
// inference: formatted phoneme string → ids → float waveform.
package voice

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the voice model's JSON configuration.
type Config struct {
	Audio        AudioConfig       `json:"audio"`
	Inference    InferenceConfig   `json:"inference"`
	PhonemeIDMap map[string][]int64 `json:"phoneme_id_map"`
	Language     LanguageConfig    `json:"language"`
}

type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Quality    string `json:"quality"`
}

// InferenceConfig holds the three control scalars passed to the vocoder.
type InferenceConfig struct {
	NoiseScale  float32 `json:"noise_scale"`
	LengthScale float32 `json:"length_scale"`
	NoiseW      float32 `json:"noise_w"`
}

type LanguageConfig struct {
	Code           string `json:"code"`
	Family         string `json:"family"`
	Region         string `json:"region"`
	NameNative     string `json:"name_native"`
	NameEnglish    string `json:"name_english"`
	CountryEnglish string `json:"country_english"`
}

// LoadConfig reads and validates the voice model configuration.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voice config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode voice config %s: %w", path, err)
	}

	if cfg.Audio.SampleRate < 1 {
		return nil, fmt.Errorf("voice config %s: invalid sample rate %d", path, cfg.Audio.SampleRate)
	}

	if len(cfg.PhonemeIDMap) == 0 {
		return nil, fmt.Errorf("voice config %s: empty phoneme_id_map", path)
	}

	return &cfg, nil
}

// PhonemeIDs vectorizes the formatted phoneme string: each character maps
// to its id list, in string order. Characters absent from the map are
// silently skipped — the grammar tolerates unknown symbols by contract.
func (c *Config) PhonemeIDs(formatted string) []int64 {
	var ids []int64
	for _, r := range formatted {
		ids = append(ids, c.PhonemeIDMap[string(r)]...)
	}

	return ids
}
