package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/example/go-piper-tts/internal/config"
	"github.com/example/go-piper-tts/internal/doctor"
	"github.com/example/go-piper-tts/internal/g2p"
	"github.com/example/go-piper-tts/internal/onnx"
	"github.com/example/go-piper-tts/internal/phoneme"
	"github.com/example/go-piper-tts/internal/voice"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run local runtime and model checks",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			result := doctor.Run(doctorConfig(cfg), os.Stdout)

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(os.Stdout, "doctor checks passed")

			return nil
		},
	}

	return cmd
}

// doctorConfig binds the doctor probes to the configured resource paths.
func doctorConfig(cfg config.Config) doctor.Config {
	return doctor.Config{
		ORTLibrary: func() (string, error) {
			info, err := onnx.DetectRuntime(cfg.Runtime)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s (%s)", info.LibraryPath, info.Version), nil
		},
		ModelFiles: []string{
			cfg.Paths.VoiceModel,
			cfg.Paths.VoiceConfig,
			cfg.Paths.G2PEncoder,
			cfg.Paths.G2PDecoder,
			cfg.Paths.G2PVocab,
			cfg.Paths.Dictionary,
			cfg.Paths.ArpabetMap,
		},
		Checks: []doctor.Check{
			{Name: "dictionary", Probe: func() (string, error) {
				dict, err := phoneme.LoadDictionary(cfg.Paths.Dictionary)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%d entries", dict.Len()), nil
			}},
			{Name: "arpabet mapping", Probe: func() (string, error) {
				mapper, err := phoneme.LoadArpabetMap(cfg.Paths.ArpabetMap)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%d symbols", mapper.Len()), nil
			}},
			{Name: "g2p vocab", Probe: func() (string, error) {
				vocab, err := g2p.LoadVocab(cfg.Paths.G2PVocab)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%d tokens", vocab.Len()), nil
			}},
			{Name: "voice config", Probe: func() (string, error) {
				vc, err := voice.LoadConfig(cfg.Paths.VoiceConfig)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%d Hz, %d phoneme ids", vc.Audio.SampleRate, len(vc.PhonemeIDMap)), nil
			}},
		},
	}
}
