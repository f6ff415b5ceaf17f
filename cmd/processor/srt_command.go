package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"verbatim/internal/captions"
)

func newSRTCommand() *cobra.Command {
	var output, section string

	cmd := &cobra.Command{
		Use:   "srt <transcript.txt>",
		Short: "Encode a transcript as SRT captions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch section {
			case "", "original", "translation":
			default:
				return fmt.Errorf("unknown section %q: use original or translation", section)
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}
			text := captions.Section(string(raw), section)
			if strings.TrimSpace(text) == "" {
				if section == "" {
					return fmt.Errorf("transcript %s is empty", args[0])
				}
				return fmt.Errorf("transcript has no %s section", section)
			}

			srt := captions.FromTranscript(text)
			if output == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), srt)
				return err
			}
			return writeOutput(output, srt)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write captions to this path instead of stdout")
	cmd.Flags().StringVar(&section, "section", "", "Caption only the original or translation section")
	return cmd
}
