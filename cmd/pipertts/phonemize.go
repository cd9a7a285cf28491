package main

import (
	"fmt"
	"os"

	"github.com/example/go-piper-tts/internal/phoneme"
	"github.com/example/go-piper-tts/internal/tts"
	"github.com/spf13/cobra"
)

func newPhonemizeCmd() *cobra.Command {
	var text string
	var mode string

	cmd := &cobra.Command{
		Use:   "phonemize",
		Short: "Convert text to the formatted phoneme string without synthesizing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			formatMode, err := parseFormatMode(mode)
			if err != nil {
				return err
			}

			inputText, err := readSynthText(text, os.Stdin)
			if err != nil {
				return err
			}

			svc, err := tts.New(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			formatted, err := svc.Phonemize(cmd.Context(), inputText, formatMode)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatted)

			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to phonemize (if empty, read from stdin)")
	cmd.Flags().StringVar(&mode, "mode", "sentence", "Formatting mode (sentence|word)")

	return cmd
}

func parseFormatMode(s string) (phoneme.FormatMode, error) {
	switch s {
	case "", "sentence":
		return phoneme.ModeSentence, nil
	case "word":
		return phoneme.ModeWord, nil
	default:
		return phoneme.ModeSentence, fmt.Errorf("unknown mode %q (want sentence or word)", s)
	}
}
