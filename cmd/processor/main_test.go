package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verbatim/models"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func fakeFunctions(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/functions/v1/transcribe", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		lang := r.FormValue("targetLanguage")
		text := "First line of the talk.\nSecond line."
		if lang != "" {
			text = "--- ORIGINAL TRANSCRIPTION ---\nHola.\n--- TRANSLATION (" + lang + ") ---\nHello."
		}
		_ = json.NewEncoder(w).Encode(models.TranscribeResponse{
			Success: true, Transcription: text, FileName: header.Filename, FileSize: header.Size,
		})
	})
	mux.HandleFunc("/functions/v1/generate-voiceover", func(w http.ResponseWriter, r *http.Request) {
		var req models.VoiceoverRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(models.VoiceoverResponse{
			Success: true, OriginalText: req.Text, VoiceoverScript: "[" + req.Emotion + "/" + req.Language + "] " + req.Text,
			Emotion: req.Emotion, Language: req.Language,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunWritesTranscriptCaptionsAndScript(t *testing.T) {
	srv := fakeFunctions(t)
	t.Setenv("VERBATIM_FUNCTIONS_URL", srv.URL)
	dir := t.TempDir()
	input := filepath.Join(dir, "talk.mp3")
	require.NoError(t, os.WriteFile(input, []byte("ID3fake"), 0o644))
	srtPath := filepath.Join(dir, "out", "talk.srt")
	scriptPath := filepath.Join(dir, "out", "script.txt")

	stdout, _, err := execute(t, "run", input,
		"--config", filepath.Join(dir, "none.toml"),
		"--srt", srtPath, "--script", scriptPath, "--emotion", "calm")
	require.NoError(t, err)
	assert.Equal(t, "First line of the talk.\nSecond line.\n", stdout)

	srt, err := os.ReadFile(srtPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(srt), "1\n00:00:00,000 --> 00:00:03,000\nFirst line of the talk.\n"), string(srt))

	script, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	assert.Equal(t, "[calm/English] First line of the talk.\nSecond line.", string(script))
}

func TestRunWithTranslationScriptsTranslatedSection(t *testing.T) {
	srv := fakeFunctions(t)
	t.Setenv("VERBATIM_FUNCTIONS_URL", srv.URL)
	dir := t.TempDir()
	input := filepath.Join(dir, "charla.wav")
	require.NoError(t, os.WriteFile(input, []byte("RIFFfake"), 0o644))
	scriptPath := filepath.Join(dir, "script.txt")

	_, _, err := execute(t, "run", input, "--config", filepath.Join(dir, "none.toml"), "--lang", "German", "--script", scriptPath)
	require.NoError(t, err)

	script, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	assert.Equal(t, "[neutral/German] Hello.", string(script))
}

func TestRunRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "none.toml")

	_, _, err := execute(t, "run", filepath.Join(dir, "missing.mp3"), "--config", cfg)
	assert.Error(t, err)

	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("plain text"), 0o644))
	_, _, err = execute(t, "run", notes, "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unsupported file type")

	audio := filepath.Join(dir, "a.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("ID3"), 0o644))
	_, _, err = execute(t, "run", audio, "--config", cfg, "--lang", "Elvish")
	assert.Error(t, err)
}

func TestSRTCommand(t *testing.T) {
	dir := t.TempDir()
	transcript := filepath.Join(dir, "t.txt")
	require.NoError(t, os.WriteFile(transcript, []byte("--- ORIGINAL TRANSCRIPTION ---\nBonjour.\n--- TRANSLATION (English) ---\nHello.\n"), 0o644))

	stdout, _, err := execute(t, "srt", transcript, "--section", "translation")
	require.NoError(t, err)
	assert.Equal(t, "1\n00:00:00,000 --> 00:00:03,000\nHello.\n", stdout)

	out := filepath.Join(dir, "captions.srt")
	_, _, err = execute(t, "srt", transcript, "--section", "original", "-o", out)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "1\n00:00:00,000 --> 00:00:03,000\nBonjour.\n", string(data))

	_, _, err = execute(t, "srt", transcript, "--section", "summary")
	assert.Error(t, err)
}
