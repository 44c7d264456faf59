package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/forPelevin/ytone/internal/types"
)

type Adapter struct {
	bin      string
	modelDir string
}

func New(binPath, modelDir string) *Adapter {
	return &Adapter{bin: binPath, modelDir: modelDir}
}

// Transcribe runs whisper.cpp on the given WAV file and parses its JSON
// output. The model file is resolved from the configured directory by size,
// e.g. ggml-base.bin.
func (a *Adapter) Transcribe(ctx context.Context, audioPath string, opts types.TranscribeOptions) (types.Transcript, error) {
	model := filepath.Join(a.modelDir, fmt.Sprintf("ggml-%s.bin", opts.Model))
	outPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	args := []string{
		"-m", model,
		"-f", audioPath,
		"-oj",
		"-of", outPrefix,
	}
	if opts.Language != "" {
		args = append(args, "-l", opts.Language)
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jsonPath := outPrefix + ".json"
	jb, err := os.ReadFile(jsonPath)
	if err != nil {
		return types.Transcript{}, err
	}
	_ = os.Remove(jsonPath)

	return parseOutput(jb)
}

// parseOutput maps whisper.cpp's JSON (millisecond offsets) onto a transcript
// with second-based segments.
func parseOutput(b []byte) (types.Transcript, error) {
	var raw struct {
		Result struct {
			Language string `json:"language"`
		} `json:"result"`
		Transcription []struct {
			Offsets struct {
				From int64 `json:"from"`
				To   int64 `json:"to"`
			} `json:"offsets"`
			Text string `json:"text"`
		} `json:"transcription"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return types.Transcript{}, fmt.Errorf("parse whisper.cpp output: %w", err)
	}

	tr := types.Transcript{Language: raw.Result.Language}
	parts := make([]string, 0, len(raw.Transcription))
	for _, s := range raw.Transcription {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		tr.Segments = append(tr.Segments, types.Segment{
			Start: float64(s.Offsets.From) / 1000,
			End:   float64(s.Offsets.To) / 1000,
			Text:  text,
		})
		parts = append(parts, text)
	}
	tr.Text = strings.Join(parts, " ")
	return tr, nil
}
