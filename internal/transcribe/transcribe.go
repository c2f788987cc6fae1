// Package transcribe turns uploaded videos into text by running an external
// transcription script.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/factchecker/factlens/internal/config"
	"github.com/factchecker/factlens/internal/models"
	"github.com/rs/zerolog/log"
)

// Transcriber runs `<command> <script> <video path>` and reads a JSON object
// with either a "transcript" or an "error" field from its stdout.
type Transcriber struct {
	command       string
	script        string
	uploadDir     string
	transcriptDir string
}

// Result is the outcome of ingesting one upload.
type Result struct {
	Transcript string
	// File is the transcript file name relative to the transcript directory.
	File string
}

type scriptOutput struct {
	Transcript string `json:"transcript"`
	Error      string `json:"error"`
}

// New creates a transcriber and makes sure its working directories exist.
func New(cfg config.TranscriptionConfig) (*Transcriber, error) {
	for _, dir := range []string{cfg.UploadDir, cfg.TranscriptDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return &Transcriber{
		command:       cfg.Command,
		script:        cfg.Script,
		uploadDir:     cfg.UploadDir,
		transcriptDir: cfg.TranscriptDir,
	}, nil
}

// Transcribe runs the script on a video file and returns its transcript.
func (t *Transcriber) Transcribe(ctx context.Context, videoPath string) (string, error) {
	var args []string
	if t.script != "" {
		args = append(args, t.script)
	}
	args = append(args, videoPath)

	cmd := exec.CommandContext(ctx, t.command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if stderr.Len() > 0 {
		log.Warn().Str("stderr", strings.TrimSpace(stderr.String())).Msg("Transcription script wrote to stderr")
	}

	var out scriptOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		if runErr != nil {
			return "", fmt.Errorf("%w: %w", models.ErrTranscriptionFailed, runErr)
		}
		return "", fmt.Errorf("%w: invalid script output: %w", models.ErrTranscriptionFailed, err)
	}

	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", models.ErrTranscriptionFailed, out.Error)
	}

	return out.Transcript, nil
}

// Ingest stores the upload in a temporary file, transcribes it, removes the
// temporary file and writes the transcript to <transcript dir>/<name>.txt.
func (t *Transcriber) Ingest(ctx context.Context, video io.Reader, originalName string) (*Result, error) {
	name := filepath.Base(originalName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return nil, fmt.Errorf("%w: invalid file name %q", models.ErrValidation, originalName)
	}

	tmp, err := os.CreateTemp(t.uploadDir, "upload-*"+filepath.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Error().Err(err).Str("path", tmp.Name()).Msg("Failed to remove upload")
		}
	}()

	if _, err := io.Copy(tmp, video); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	transcript, err := t.Transcribe(ctx, tmp.Name())
	if err != nil {
		return nil, err
	}

	file := name + ".txt"
	if err := os.WriteFile(filepath.Join(t.transcriptDir, file), []byte(transcript), 0644); err != nil {
		return nil, fmt.Errorf("failed to save transcript: %w", err)
	}

	log.Info().Str("file", file).Int("length", len(transcript)).Msg("Transcript saved")
	return &Result{Transcript: transcript, File: file}, nil
}
