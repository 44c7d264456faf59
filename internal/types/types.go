package types

import (
	"fmt"
	"strings"
	"time"
)

// VideoReference is a validated YouTube target. Immutable once parsed.
type VideoReference struct {
	ID  string
	URL string
}

// VideoInfo is the metadata probe result, shown to the user before download.
type VideoInfo struct {
	Title    string
	Uploader string
	Duration time.Duration
	Views    int64
}

// AudioAsset is a downloaded audio file owned by a single run and removed
// during cleanup.
type AudioAsset struct {
	Path      string
	VideoID   string
	SizeBytes int64
}

type Transcript struct {
	Text     string
	Language string
	Segments []Segment
}

type Segment struct {
	Start float64
	End   float64
	Text  string
}

type ModelSize string

const (
	ModelTiny   ModelSize = "tiny"
	ModelBase   ModelSize = "base"
	ModelSmall  ModelSize = "small"
	ModelMedium ModelSize = "medium"
	ModelLarge  ModelSize = "large"
)

// ModelSizes lists the accepted sizes from fastest to most accurate.
func ModelSizes() []ModelSize {
	return []ModelSize{ModelTiny, ModelBase, ModelSmall, ModelMedium, ModelLarge}
}

func ParseModelSize(s string) (ModelSize, error) {
	m := ModelSize(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown model size %q (valid: tiny, base, small, medium, large)", s)
	}
	return m, nil
}

func (m ModelSize) Valid() bool {
	switch m {
	case ModelTiny, ModelBase, ModelSmall, ModelMedium, ModelLarge:
		return true
	}
	return false
}

// Params reports the approximate parameter count of the matching Whisper
// checkpoint.
func (m ModelSize) Params() string {
	switch m {
	case ModelTiny:
		return "39M"
	case ModelBase:
		return "74M"
	case ModelSmall:
		return "244M"
	case ModelMedium:
		return "769M"
	case ModelLarge:
		return "1550M"
	}
	return "unknown"
}

type TranscribeOptions struct {
	Model    ModelSize
	Language string
}

type Emotion string

const (
	EmotionHappy   Emotion = "happy"
	EmotionSad     Emotion = "sad"
	EmotionAngry   Emotion = "angry"
	EmotionNeutral Emotion = "neutral"
	EmotionExcited Emotion = "excited"
	EmotionCalm    Emotion = "calm"
)

// WindowFeatures are the scalar acoustic features of one analysis window.
type WindowFeatures struct {
	AvgPitchHz       float64
	AvgEnergy        float64
	ZeroCrossingRate float64
}

// EmotionWindow is a classified time slice of the audio.
type EmotionWindow struct {
	StartSeconds float64
	EndSeconds   float64
	Label        Emotion
	Features     WindowFeatures
}

// EmotionReport is the analysis result. The JSON shape below is the persisted
// report format; Windows carries the full per-window detail for rendering and
// is not serialized.
type EmotionReport struct {
	OverallMood     Emotion                       `json:"overall_mood"`
	ConfidenceScore float64                       `json:"confidence_score"`
	ToneAnalysis    ToneAnalysis                  `json:"tone_analysis"`
	SpeechPatterns  SpeechPatterns                `json:"speech_patterns"`
	Distribution    map[Emotion]DistributionEntry `json:"emotion_distribution"`
	Timeline        []TimelineEntry               `json:"timeline"`

	Windows []EmotionWindow `json:"-"`
}

type ToneAnalysis struct {
	AvgPitchHz      float64 `json:"avg_pitch_hz"`
	AvgEnergy       float64 `json:"avg_energy"`
	SpeakingRateWPM float64 `json:"speaking_rate_wpm"`
	PauseFrequency  float64 `json:"pause_frequency"`
}

type SpeechPatterns struct {
	DurationSeconds   float64 `json:"duration_seconds"`
	VolumeVariability float64 `json:"volume_variability"`
	PitchVariability  float64 `json:"pitch_variability"`
}

type DistributionEntry struct {
	Percentage   float64 `json:"percentage"`
	SegmentCount int     `json:"segment_count"`
}

type TimelineEntry struct {
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Label        Emotion `json:"label"`
}
