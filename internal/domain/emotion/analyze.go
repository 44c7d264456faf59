package emotion

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/forPelevin/ytone/internal/types"
)

// Analyze slices normalized mono samples into fixed windows, classifies each
// one and aggregates the result into a report. wordCount comes from the
// transcript and feeds the speaking-rate estimate.
func Analyze(samples []float64, sampleRate int, wordCount int, cfg Config) (types.EmotionReport, error) {
	if sampleRate <= 0 {
		return types.EmotionReport{}, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if cfg.WindowSeconds <= 0 {
		return types.EmotionReport{}, fmt.Errorf("window seconds must be positive, got %v", cfg.WindowSeconds)
	}

	duration := float64(len(samples)) / float64(sampleRate)
	windowLen := int(cfg.WindowSeconds * float64(sampleRate))
	if len(samples) < windowLen {
		return types.EmotionReport{}, &types.InsufficientAudioError{
			Seconds:        duration,
			MinimumSeconds: cfg.WindowSeconds,
		}
	}
	tailLen := int(cfg.MinTailSeconds * float64(sampleRate))

	spans := partition(len(samples), windowLen, tailLen)
	windows := make([]types.EmotionWindow, len(spans))
	for i, sp := range spans {
		f := extractFeatures(samples[sp.start:sp.end], sampleRate)
		windows[i] = types.EmotionWindow{
			StartSeconds: float64(sp.start) / float64(sampleRate),
			EndSeconds:   float64(sp.end) / float64(sampleRate),
			Label:        Classify(cfg.Thresholds, f),
			Features:     f,
		}
	}

	return buildReport(windows, duration, wordCount, cfg.Thresholds), nil
}

type span struct {
	start int
	end   int
}

// partition covers [0, n) with consecutive windowLen slices. A trailing
// remainder is kept as its own window when it reaches minTailLen and merged
// into the previous window otherwise. Callers guarantee n >= windowLen.
func partition(n, windowLen, minTailLen int) []span {
	spans := make([]span, 0, n/windowLen+1)
	for s := 0; s+windowLen <= n; s += windowLen {
		spans = append(spans, span{start: s, end: s + windowLen})
	}
	tail := n - len(spans)*windowLen
	if tail > 0 {
		if tail >= minTailLen {
			spans = append(spans, span{start: n - tail, end: n})
		} else {
			spans[len(spans)-1].end = n
		}
	}
	return spans
}

func buildReport(windows []types.EmotionWindow, durationSeconds float64, wordCount int, th Thresholds) types.EmotionReport {
	counts := make(map[types.Emotion]int, len(windows))
	var seen []types.Emotion
	pitches := make([]float64, len(windows))
	energies := make([]float64, len(windows))
	paused := 0
	for i, w := range windows {
		if counts[w.Label] == 0 {
			seen = append(seen, w.Label)
		}
		counts[w.Label]++
		pitches[i] = w.Features.AvgPitchHz
		energies[i] = w.Features.AvgEnergy
		if w.Features.AvgEnergy < th.EnergySilence {
			paused++
		}
	}

	// Plurality vote; iterating labels in first-seen order with a strict
	// comparison breaks ties toward the earliest-occurring label.
	overall := seen[0]
	best := counts[overall]
	for _, l := range seen[1:] {
		if counts[l] > best {
			overall, best = l, counts[l]
		}
	}

	total := len(windows)
	avgPitch, _ := stats.Mean(pitches)
	avgEnergy, _ := stats.Mean(energies)
	pitchVar, _ := stats.StandardDeviation(pitches)
	volVar, _ := stats.StandardDeviation(energies)

	wpm := 0.0
	if durationSeconds > 0 {
		wpm = float64(wordCount) / (durationSeconds / 60.0)
	}

	dist := make(map[types.Emotion]types.DistributionEntry, len(counts))
	for l, c := range counts {
		dist[l] = types.DistributionEntry{
			Percentage:   100 * float64(c) / float64(total),
			SegmentCount: c,
		}
	}

	timeline := make([]types.TimelineEntry, len(windows))
	for i, w := range windows {
		timeline[i] = types.TimelineEntry{
			StartSeconds: w.StartSeconds,
			EndSeconds:   w.EndSeconds,
			Label:        w.Label,
		}
	}

	return types.EmotionReport{
		OverallMood:     overall,
		ConfidenceScore: float64(best) / float64(total),
		ToneAnalysis: types.ToneAnalysis{
			AvgPitchHz:      avgPitch,
			AvgEnergy:       avgEnergy,
			SpeakingRateWPM: wpm,
			PauseFrequency:  float64(paused) / float64(total),
		},
		SpeechPatterns: types.SpeechPatterns{
			DurationSeconds:   durationSeconds,
			VolumeVariability: volVar,
			PitchVariability:  pitchVar,
		},
		Distribution: dist,
		Timeline:     timeline,
		Windows:      windows,
	}
}
