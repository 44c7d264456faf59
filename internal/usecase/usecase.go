package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/forPelevin/ytone/internal/audiofile"
	"github.com/forPelevin/ytone/internal/domain/emotion"
	"github.com/forPelevin/ytone/internal/logging"
	"github.com/forPelevin/ytone/internal/ports"
	"github.com/forPelevin/ytone/internal/types"
)

// Deps are the run collaborators. Log and Sleep get safe defaults in New.
type Deps struct {
	Fetcher ports.AudioFetcher
	ASR     ports.Transcriber
	Chart   ports.ChartRenderer
	Log     *logrus.Entry
	Sleep   func(time.Duration)
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = logrus.NewEntry(logging.Discard())
	}
	if d.Sleep == nil {
		d.Sleep = time.Sleep
	}
	return Usecase{d: d}
}

type Input struct {
	Ref     types.VideoReference
	Analyze bool

	WorkDir       string
	TranscriptDir string
	AnalysisDir   string

	Model    types.ModelSize
	Language string

	Retries     int
	BackoffBase time.Duration

	Tuning emotion.Config
}

// StageTiming records how long one stage of the run took.
type StageTiming struct {
	Stage   string
	Elapsed time.Duration
}

type Result struct {
	VideoID   string
	Info      types.VideoInfo
	InfoKnown bool

	TranscriptPath string
	WordCount      int
	CharCount      int
	Language       string

	Analyzed   bool
	Report     types.EmotionReport
	ReportPath string
	ChartPath  string

	Timings []StageTiming
}

// Run takes one video through download, transcription and, when requested,
// emotion analysis. The downloaded audio is temporary and is removed before
// Run returns, whether it succeeds or not.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	res := Result{VideoID: in.Ref.ID}
	log := u.d.Log.WithField("video_id", in.Ref.ID)

	if info, err := u.d.Fetcher.Probe(ctx, in.Ref); err != nil {
		log.WithError(err).Debug("metadata probe failed, continuing without it")
	} else {
		res.Info, res.InfoKnown = info, true
		log.WithFields(logrus.Fields{
			"title":    info.Title,
			"uploader": info.Uploader,
			"duration": info.Duration,
		}).Info("video found")
	}

	audioPath := filepath.Join(in.WorkDir, fmt.Sprintf("%s_%d.wav", in.Ref.ID, time.Now().Unix()))

	start := time.Now()
	asset, err := u.fetchWithRetry(ctx, log, in, audioPath)
	if err != nil {
		return Result{}, err
	}
	defer u.cleanup(log, asset.Path)
	res.Timings = append(res.Timings, StageTiming{Stage: "download", Elapsed: time.Since(start)})
	log.WithFields(logrus.Fields{
		"path":       asset.Path,
		"size_bytes": asset.SizeBytes,
	}).Info("audio downloaded")

	start = time.Now()
	log.WithFields(logrus.Fields{
		"model":  in.Model,
		"params": in.Model.Params(),
	}).Info("transcribing")
	tr, err := u.d.ASR.Transcribe(ctx, asset.Path, types.TranscribeOptions{Model: in.Model, Language: in.Language})
	if err != nil {
		return Result{}, &types.TranscriptionError{Model: in.Model, Err: err}
	}
	res.Timings = append(res.Timings, StageTiming{Stage: "transcription", Elapsed: time.Since(start)})

	res.WordCount = len(strings.Fields(tr.Text))
	res.CharCount = utf8.RuneCountInString(tr.Text)
	res.Language = tr.Language

	stamp := time.Now().Format("20060102_150405")
	res.TranscriptPath = filepath.Join(in.TranscriptDir, fmt.Sprintf("transcript_%s_%s.txt", in.Ref.ID, stamp))
	if err := os.WriteFile(res.TranscriptPath, []byte(tr.Text+"\n"), 0o644); err != nil {
		return Result{}, &types.IOError{Op: "write transcript", Path: res.TranscriptPath, Err: err}
	}
	log.WithFields(logrus.Fields{
		"path":       res.TranscriptPath,
		"words":      res.WordCount,
		"chars":      res.CharCount,
		"size_bytes": len(tr.Text) + 1,
	}).Info("transcript saved")

	if !in.Analyze {
		return res, nil
	}

	start = time.Now()
	clip, err := audiofile.ReadWAV(asset.Path)
	if err != nil {
		return Result{}, &types.IOError{Op: "read audio", Path: asset.Path, Err: err}
	}
	report, err := emotion.Analyze(clip.Samples, clip.SampleRate, res.WordCount, in.Tuning)
	if err != nil {
		return Result{}, err
	}
	res.Report, res.Analyzed = report, true
	res.Timings = append(res.Timings, StageTiming{Stage: "analysis", Elapsed: time.Since(start)})
	log.WithFields(logrus.Fields{
		"overall_mood": report.OverallMood,
		"confidence":   fmt.Sprintf("%.2f", report.ConfidenceScore),
		"windows":      len(report.Windows),
	}).Info("emotion analysis complete")

	res.ReportPath = filepath.Join(in.AnalysisDir, fmt.Sprintf("emotion_report_%s.json", stamp))
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return Result{}, &types.IOError{Op: "encode report", Path: res.ReportPath, Err: err}
	}
	if err := os.WriteFile(res.ReportPath, append(b, '\n'), 0o644); err != nil {
		return Result{}, &types.IOError{Op: "write report", Path: res.ReportPath, Err: err}
	}

	start = time.Now()
	res.ChartPath = filepath.Join(in.AnalysisDir, fmt.Sprintf("emotion_analysis_%s.png", stamp))
	if err := u.d.Chart.Render(report, res.ChartPath); err != nil {
		return Result{}, &types.IOError{Op: "render chart", Path: res.ChartPath, Err: err}
	}
	res.Timings = append(res.Timings, StageTiming{Stage: "chart", Elapsed: time.Since(start)})
	log.WithFields(logrus.Fields{
		"report": res.ReportPath,
		"chart":  res.ChartPath,
	}).Info("analysis artifacts saved")

	return res, nil
}

// fetchWithRetry runs the download with linear backoff: attempt n waits
// n*BackoffBase before the next try. A leftover partial file is removed
// after every failed attempt.
func (u Usecase) fetchWithRetry(ctx context.Context, log *logrus.Entry, in Input, destPath string) (types.AudioAsset, error) {
	retries := in.Retries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		asset, err := u.d.Fetcher.Fetch(ctx, in.Ref, destPath, progressLogger(log))
		if err == nil {
			return asset, nil
		}
		lastErr = err
		_ = os.Remove(destPath)
		if attempt < retries {
			wait := time.Duration(attempt) * in.BackoffBase
			log.WithError(err).Warnf("download attempt %d/%d failed, retrying in %s", attempt, retries, wait)
			u.d.Sleep(wait)
		}
	}
	return types.AudioAsset{}, &types.FetchError{VideoID: in.Ref.ID, Attempts: retries, Err: lastErr}
}

// progressLogger reports download progress in 25% steps so a slow download
// does not flood the log.
func progressLogger(log *logrus.Entry) ports.ProgressFunc {
	next := 0.0
	return func(percent float64) {
		if percent < next {
			return
		}
		log.Infof("downloading: %.0f%%", percent)
		for next <= percent {
			next += 25
		}
	}
}

func (u Usecase) cleanup(log *logrus.Entry, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warnf("could not remove temp audio %s", path)
		return
	}
	log.WithField("path", path).Debug("temp audio removed")
}
