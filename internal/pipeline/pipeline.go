package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/forPelevin/ytone/internal/domain/emotion"
	"github.com/forPelevin/ytone/internal/domain/youtube"
	"github.com/forPelevin/ytone/internal/logging"
	"github.com/forPelevin/ytone/internal/ports"
	"github.com/forPelevin/ytone/internal/ports/adapters/chartpng"
	"github.com/forPelevin/ytone/internal/ports/adapters/openaiwhisper"
	"github.com/forPelevin/ytone/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/ytone/internal/ports/adapters/ytdlp"
	"github.com/forPelevin/ytone/internal/types"
	"github.com/forPelevin/ytone/internal/usecase"
)

const (
	EngineWhisperCPP = "whispercpp"
	EngineOpenAI     = "openai"
)

type Config struct {
	URL     string
	Analyze bool

	// WorkDir holds the temporary audio download. OutputDir gets the
	// transcripts/ and analysis/ subdirectories.
	WorkDir   string
	OutputDir string

	Engine   string
	Model    types.ModelSize
	Language string

	YtdlpPath       string
	WhisperBin      string
	WhisperModelDir string
	OpenAIAPIKey    string

	FetchRetries     int
	FetchBackoffBase time.Duration

	Tuning emotion.Config

	Logger *logrus.Logger
}

func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("url is empty")
	}
	if !c.Model.Valid() {
		return fmt.Errorf("unknown model size %q (valid: tiny, base, small, medium, large)", string(c.Model))
	}
	switch c.Engine {
	case EngineWhisperCPP, EngineOpenAI:
	default:
		return fmt.Errorf("unknown transcription engine %q (valid: whispercpp, openai)", c.Engine)
	}
	if c.Engine == EngineOpenAI && c.OpenAIAPIKey == "" {
		return errors.New("openai engine needs an api key (set OPENAI_API_KEY)")
	}
	if c.FetchRetries < 1 {
		return fmt.Errorf("fetch retries must be >= 1, got %d", c.FetchRetries)
	}
	if c.FetchBackoffBase < 0 {
		return fmt.Errorf("fetch backoff must not be negative, got %s", c.FetchBackoffBase)
	}
	if c.Tuning.WindowSeconds <= 0 {
		return fmt.Errorf("window seconds must be > 0, got %v", c.Tuning.WindowSeconds)
	}
	if c.Tuning.MinTailSeconds <= 0 || c.Tuning.MinTailSeconds > c.Tuning.WindowSeconds {
		return fmt.Errorf("min window seconds must be in (0, %v], got %v", c.Tuning.WindowSeconds, c.Tuning.MinTailSeconds)
	}
	th := c.Tuning.Thresholds
	if !(th.PitchLowHz < th.PitchMedHz && th.PitchMedHz < th.PitchHighHz) {
		return fmt.Errorf("pitch thresholds must be ordered low < med < high, got %v/%v/%v", th.PitchLowHz, th.PitchMedHz, th.PitchHighHz)
	}
	if !(th.EnergySilence < th.EnergyLow && th.EnergyLow < th.EnergyMed && th.EnergyMed < th.EnergyHigh) {
		return fmt.Errorf("energy thresholds must be ordered silence < low < med < high, got %v/%v/%v/%v", th.EnergySilence, th.EnergyLow, th.EnergyMed, th.EnergyHigh)
	}
	return nil
}

// Run processes one video: parse the URL, wire the adapters and hand off to
// the usecase. The returned result carries everything the CLI needs for its
// summary.
func Run(ctx context.Context, cfg Config) (usecase.Result, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	log := logger.WithField("run_id", uuid.NewString())

	ref, err := youtube.Parse(cfg.URL)
	if err != nil {
		return usecase.Result{}, err
	}
	log.WithFields(logrus.Fields{"url": ref.URL, "video_id": ref.ID}).Info("starting run")

	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = "."
	}
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = "outputs"
	}
	transcriptDir := filepath.Join(outputDir, "transcripts")
	analysisDir := filepath.Join(outputDir, "analysis")
	for _, d := range []string{workDir, transcriptDir, analysisDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return usecase.Result{}, &types.IOError{Op: "create dir", Path: d, Err: err}
		}
	}

	fetcher := ytdlp.New(cfg.YtdlpPath)
	var asr ports.Transcriber
	if cfg.Engine == EngineOpenAI {
		asr = openaiwhisper.New(cfg.OpenAIAPIKey)
	} else {
		asr = whispercpp.New(cfg.WhisperBin, cfg.WhisperModelDir)
	}

	uc := usecase.New(usecase.Deps{
		Fetcher: fetcher,
		ASR:     asr,
		Chart:   chartpng.New(),
		Log:     log,
	})

	res, err := uc.Run(ctx, usecase.Input{
		Ref:           ref,
		Analyze:       cfg.Analyze,
		WorkDir:       workDir,
		TranscriptDir: transcriptDir,
		AnalysisDir:   analysisDir,
		Model:         cfg.Model,
		Language:      cfg.Language,
		Retries:       cfg.FetchRetries,
		BackoffBase:   cfg.FetchBackoffBase,
		Tuning:        cfg.Tuning,
	})
	if err != nil {
		return usecase.Result{}, err
	}

	fields := logrus.Fields{
		"video_id":   res.VideoID,
		"words":      res.WordCount,
		"transcript": res.TranscriptPath,
	}
	if res.Analyzed {
		fields["overall_mood"] = res.Report.OverallMood
		fields["report"] = res.ReportPath
		fields["chart"] = res.ChartPath
	}
	log.WithFields(fields).Info("run complete")
	return res, nil
}

// staleAudioRE matches the working files this tool writes, an 11 character
// video id followed by a unix timestamp. Anything else in the directory is
// left alone.
var staleAudioRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}_\d+\.wav$`)

// SweepStaleAudio removes leftover downloads older than maxAge from dir.
// Crashes and kills can strand temp audio; this runs once at startup.
func SweepStaleAudio(dir string, maxAge time.Duration, logger *logrus.Logger) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		if e.IsDir() || !staleAudioRE.MatchString(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			logger.WithError(err).Warnf("could not remove stale audio %s", path)
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Infof("removed %d stale audio file(s) from %s", removed, dir)
	}
	return removed
}

// ensure adapters implement ports
var _ ports.AudioFetcher = (*ytdlp.Adapter)(nil)
var _ ports.Transcriber = (*whispercpp.Adapter)(nil)
var _ ports.Transcriber = (*openaiwhisper.Adapter)(nil)
var _ ports.ChartRenderer = (*chartpng.Adapter)(nil)
