package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/ytone/internal/ports"
	"github.com/forPelevin/ytone/internal/types"
)

type Adapter struct {
	bin string
}

func New(binPath string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath}
}

// Fetch downloads the best audio track and converts it to mono 16 kHz WAV at
// destPath. Stdout is scanned line by line for progress updates; everything is
// also kept for the error message when the tool fails.
func (a *Adapter) Fetch(ctx context.Context, ref types.VideoReference, destPath string, progress ports.ProgressFunc) (types.AudioAsset, error) {
	args := []string{
		"-f", "bestaudio",
		"-x",
		"--audio-format", "wav",
		"--postprocessor-args", "ffmpeg:-ac 1 -ar 16000",
		"--no-playlist",
		"--no-warnings",
		"--newline",
		"-o", outputTemplate(destPath),
		ref.URL,
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)

	var out bytes.Buffer
	cmd.Stderr = &out
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return types.AudioAsset{}, err
	}
	if err := cmd.Start(); err != nil {
		return types.AudioAsset{}, fmt.Errorf("yt-dlp start: %w", err)
	}

	sc := bufio.NewScanner(stdout)
	for sc.Scan() {
		line := sc.Text()
		out.WriteString(line)
		out.WriteByte('\n')
		if progress != nil {
			if p, ok := parseProgress(line); ok {
				progress(p)
			}
		}
	}
	if err := cmd.Wait(); err != nil {
		return types.AudioAsset{}, fmt.Errorf("yt-dlp download: %w\n%s", err, out.String())
	}

	fi, err := os.Stat(destPath)
	if err != nil {
		return types.AudioAsset{}, fmt.Errorf("yt-dlp finished but %s is missing: %w", destPath, err)
	}
	return types.AudioAsset{Path: destPath, VideoID: ref.ID, SizeBytes: fi.Size()}, nil
}

// Probe fetches video metadata via --dump-json without downloading media.
func (a *Adapter) Probe(ctx context.Context, ref types.VideoReference) (types.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, a.bin,
		"--dump-json",
		"--skip-download",
		"--no-playlist",
		"--no-warnings",
		ref.URL,
	)
	b, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return types.VideoInfo{}, fmt.Errorf("yt-dlp probe: %w\n%s", err, string(ee.Stderr))
		}
		return types.VideoInfo{}, fmt.Errorf("yt-dlp probe: %w", err)
	}
	return parseInfoJSON(b)
}

// outputTemplate turns the final destination path into a yt-dlp output
// template so the WAV postprocessor lands on exactly destPath.
func outputTemplate(destPath string) string {
	return strings.TrimSuffix(destPath, filepath.Ext(destPath)) + ".%(ext)s"
}

var progressRE = regexp.MustCompile(`^\[download\]\s+([0-9.]+)%`)

func parseProgress(line string) (float64, bool) {
	m := progressRE.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, false
	}
	p, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return p, true
}

func parseInfoJSON(b []byte) (types.VideoInfo, error) {
	var raw struct {
		Title     string  `json:"title"`
		Uploader  string  `json:"uploader"`
		Duration  float64 `json:"duration"`
		ViewCount int64   `json:"view_count"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return types.VideoInfo{}, fmt.Errorf("parse yt-dlp metadata: %w", err)
	}
	return types.VideoInfo{
		Title:    raw.Title,
		Uploader: raw.Uploader,
		Duration: time.Duration(raw.Duration * float64(time.Second)),
		Views:    raw.ViewCount,
	}, nil
}
