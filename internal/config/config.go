package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Paths    PathsConfig   `mapstructure:"paths"`
	Runtime  RuntimeConfig `mapstructure:"runtime"`
	Synth    SynthConfig   `mapstructure:"synth"`
}

type PathsConfig struct {
	VoiceModel  string `mapstructure:"voice_model"`
	VoiceConfig string `mapstructure:"voice_config"`
	G2PEncoder  string `mapstructure:"g2p_encoder"`
	G2PDecoder  string `mapstructure:"g2p_decoder"`
	G2PVocab    string `mapstructure:"g2p_vocab"`
	Dictionary  string `mapstructure:"dictionary"`
	ArpabetMap  string `mapstructure:"arpabet_map"`
}

type RuntimeConfig struct {
	ORTLibraryPath string `mapstructure:"ort_library_path"`
	ORTVersion     string `mapstructure:"ort_version"`
	APIVersion     uint32 `mapstructure:"api_version"`
}

type SynthConfig struct {
	// Clamp limits samples to [-1, 1] before the int16 conversion.
	// The default conversion truncates without clamping and wraps on
	// overflow; clamping is opt-in.
	Clamp bool `mapstructure:"clamp"`
	// Concurrency > 1 phonemizes the words of a sentence in parallel.
	// Results are reassembled in input order.
	Concurrency int `mapstructure:"concurrency"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Paths: PathsConfig{
			VoiceModel:  "models/en_US-norman-medium.onnx",
			VoiceConfig: "models/en_US-norman-medium.onnx.json",
			G2PEncoder:  "models/g2p/encoder_model.onnx",
			G2PDecoder:  "models/g2p/decoder_model.onnx",
			G2PVocab:    "models/g2p/vocab.json",
			Dictionary:  "models/g2p/cmudict.dict",
			ArpabetMap:  "arpabet-mapping.txt",
		},
		Runtime: RuntimeConfig{
			ORTLibraryPath: "",
			ORTVersion:     "",
			APIVersion:     0,
		},
		Synth: SynthConfig{
			Clamp:       false,
			Concurrency: 1,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("paths-voice-model", defaults.Paths.VoiceModel, "Path to voice ONNX model")
	fs.String("paths-voice-config", defaults.Paths.VoiceConfig, "Path to voice model JSON config")
	fs.String("paths-g2p-encoder", defaults.Paths.G2PEncoder, "Path to G2P encoder ONNX model")
	fs.String("paths-g2p-decoder", defaults.Paths.G2PDecoder, "Path to G2P decoder ONNX model")
	fs.String("paths-g2p-vocab", defaults.Paths.G2PVocab, "Path to G2P vocab.json")
	fs.String("paths-dictionary", defaults.Paths.Dictionary, "Path to CMU pronunciation dictionary")
	fs.String("paths-arpabet-map", defaults.Paths.ArpabetMap, "Path to ARPAbet-to-IPA mapping file")
	fs.String("runtime-ort-library-path", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library")
	fs.String("ort-lib", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library (alias for --runtime-ort-library-path)")
	fs.String("runtime-ort-version", defaults.Runtime.ORTVersion, "Expected ONNX Runtime version")
	fs.Uint32("runtime-api-version", defaults.Runtime.APIVersion, "ORT C API version (0 = library default)")
	fs.Bool("synth-clamp", defaults.Synth.Clamp, "Clamp samples to [-1,1] before 16-bit conversion")
	fs.Int("synth-concurrency", defaults.Synth.Concurrency, "Parallel word phonemization degree")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("PIPERTTS")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("runtime.ort_library_path", "PIPERTTS_ORT_LIB", "ORT_LIBRARY_PATH"); err != nil {
		return Config{}, fmt.Errorf("bind ort env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("pipertts")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("paths.voice_model", c.Paths.VoiceModel)
	v.SetDefault("paths.voice_config", c.Paths.VoiceConfig)
	v.SetDefault("paths.g2p_encoder", c.Paths.G2PEncoder)
	v.SetDefault("paths.g2p_decoder", c.Paths.G2PDecoder)
	v.SetDefault("paths.g2p_vocab", c.Paths.G2PVocab)
	v.SetDefault("paths.dictionary", c.Paths.Dictionary)
	v.SetDefault("paths.arpabet_map", c.Paths.ArpabetMap)
	v.SetDefault("runtime.ort_library_path", c.Runtime.ORTLibraryPath)
	v.SetDefault("runtime.ort_version", c.Runtime.ORTVersion)
	v.SetDefault("runtime.api_version", c.Runtime.APIVersion)
	v.SetDefault("synth.clamp", c.Synth.Clamp)
	v.SetDefault("synth.concurrency", c.Synth.Concurrency)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("log_level", "log-level")
	v.RegisterAlias("paths.voice_model", "paths-voice-model")
	v.RegisterAlias("paths.voice_config", "paths-voice-config")
	v.RegisterAlias("paths.g2p_encoder", "paths-g2p-encoder")
	v.RegisterAlias("paths.g2p_decoder", "paths-g2p-decoder")
	v.RegisterAlias("paths.g2p_vocab", "paths-g2p-vocab")
	v.RegisterAlias("paths.dictionary", "paths-dictionary")
	v.RegisterAlias("paths.arpabet_map", "paths-arpabet-map")
	v.RegisterAlias("runtime.ort_library_path", "runtime-ort-library-path")
	v.RegisterAlias("runtime.ort_library_path", "ort-lib")
	v.RegisterAlias("runtime.ort_version", "runtime-ort-version")
	v.RegisterAlias("runtime.api_version", "runtime-api-version")
	v.RegisterAlias("synth.clamp", "synth-clamp")
	v.RegisterAlias("synth.concurrency", "synth-concurrency")
}
