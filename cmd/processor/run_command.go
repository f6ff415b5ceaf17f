package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"verbatim/internal/captions"
	"verbatim/models"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var lang, emotion, srtPath, scriptPath string

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Transcribe a file, optionally translating it and writing captions and a voice-over script",
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

			orch := p.orch
			if err := orch.SetTargetLanguage(lang); err != nil {
				return err
			}
			if emotion != "" {
				if err := orch.SetEmotion(models.Emotion(emotion)); err != nil {
					return err
				}
			}
			if _, err := orch.Select(f); err != nil {
				return err
			}

			if err := orch.Submit(cmd.Context()); err != nil {
				return failure("transcription", orch.Snapshot().Error, err)
			}
			snap := orch.Snapshot()
			fmt.Fprintln(cmd.OutOrStdout(), snap.Transcript)

			if srtPath != "" {
				if err := writeOutput(srtPath, captions.FromTranscript(snap.Transcript)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Captions written to %s\n", srtPath)
			}

			if scriptPath != "" {
				if err := orch.GenerateVoiceover(cmd.Context()); err != nil {
					return failure("voice-over", orch.Snapshot().Error, err)
				}
				vo := orch.Snapshot().Voiceover
				if vo == nil {
					return errors.New("voice-over finished without a script")
				}
				if err := writeOutput(scriptPath, vo.Text); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Voice-over script (%s) written to %s\n", vo.Emotion, scriptPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Translate the transcript into this language")
	cmd.Flags().StringVar(&emotion, "emotion", "", "Voice-over emotion (neutral, happy, sad, excited, serious, friendly, dramatic, calm)")
	cmd.Flags().StringVar(&srtPath, "srt", "", "Write SRT captions to this path")
	cmd.Flags().StringVar(&scriptPath, "script", "", "Generate a voice-over script and write it to this path")
	return cmd
}

// failure prefers the message the session shows to users.
func failure(step, message string, err error) error {
	if message == "" {
		return fmt.Errorf("%s failed: %w", step, err)
	}
	return fmt.Errorf("%s failed: %s", step, message)
}
