package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"verbatim/internal/ffmpeg"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract the audio track of a video as 16 kHz mono WAV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readMedia(args[0])
			if err != nil {
				return err
			}
			p, err := ctx.newPipeline()
			if err != nil {
				return err
			}
			defer p.engine.Close()

			wav, err := p.extractor.ExtractAudio(cmd.Context(), f)
			if err != nil {
				return err
			}
			if output == "" {
				output = filepath.Join(filepath.Dir(args[0]), ffmpeg.WAVName(f.Name))
			}
			if err := writeOutput(output, string(wav.Data)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %s of audio to %s (ffmpeg %s)\n",
				humanize.IBytes(uint64(len(wav.Data))), output, strings.TrimSpace(p.engine.Version()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "WAV output path (default: next to the input)")
	return cmd
}
