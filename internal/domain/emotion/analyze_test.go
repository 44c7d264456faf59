package emotion

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/forPelevin/ytone/internal/types"
)

func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestPartition_Boundaries(t *testing.T) {
	win := 5 * testSampleRate
	floor := 1 * testSampleRate

	tests := []struct {
		name    string
		seconds float64
		want    []span
	}{
		{
			name:    "exact multiple",
			seconds: 10,
			want:    []span{{0, 5 * testSampleRate}, {5 * testSampleRate, 10 * testSampleRate}},
		},
		{
			name:    "tail above floor kept",
			seconds: 12,
			want: []span{
				{0, 5 * testSampleRate},
				{5 * testSampleRate, 10 * testSampleRate},
				{10 * testSampleRate, 12 * testSampleRate},
			},
		},
		{
			name:    "tail below floor merged backward",
			seconds: 10.5,
			want: []span{
				{0, 5 * testSampleRate},
				{5 * testSampleRate, int(10.5 * testSampleRate)},
			},
		},
		{
			name:    "single window",
			seconds: 5,
			want:    []span{{0, 5 * testSampleRate}},
		},
		{
			name:    "single window absorbs short tail",
			seconds: 5.5,
			want:    []span{{0, int(5.5 * testSampleRate)}},
		},
		{
			name:    "tail exactly at floor kept",
			seconds: 6,
			want:    []span{{0, 5 * testSampleRate}, {5 * testSampleRate, 6 * testSampleRate}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := int(tt.seconds * testSampleRate)
			got := partition(n, win, floor)
			if len(got) != len(tt.want) {
				t.Fatalf("partition(%v s) = %d windows, want %d", tt.seconds, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("window %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPartition_CoversWithoutGaps(t *testing.T) {
	win := 5 * testSampleRate
	floor := 1 * testSampleRate

	for _, seconds := range []float64{5, 6.2, 10, 10.5, 12, 33.3, 61} {
		n := int(seconds * testSampleRate)
		spans := partition(n, win, floor)
		if spans[0].start != 0 {
			t.Fatalf("%v s: first window starts at %d", seconds, spans[0].start)
		}
		if spans[len(spans)-1].end != n {
			t.Fatalf("%v s: last window ends at %d, want %d", seconds, spans[len(spans)-1].end, n)
		}
		for i := 1; i < len(spans); i++ {
			if spans[i].start != spans[i-1].end {
				t.Fatalf("%v s: gap or overlap between window %d and %d", seconds, i-1, i)
			}
		}
	}
}

func TestAnalyze_TooShort(t *testing.T) {
	_, err := Analyze(sine(200, 0.2, 3), testSampleRate, 5, DefaultConfig())
	if err == nil {
		t.Fatal("expected an error for a 3s clip with 5s windows")
	}
	var iae *types.InsufficientAudioError
	if !errors.As(err, &iae) {
		t.Fatalf("expected InsufficientAudioError, got %T: %v", err, err)
	}
	if iae.Seconds != 3 || iae.MinimumSeconds != 5 {
		t.Fatalf("unexpected error detail: %+v", iae)
	}
}

func TestAnalyze_EndToEnd(t *testing.T) {
	// Two loud high-pitched windows and one silent one.
	samples := concat(
		sine(300, 0.3, 5),
		sine(300, 0.3, 5),
		silence(5),
	)

	rep, err := Analyze(samples, testSampleRate, 30, DefaultConfig())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if rep.OverallMood != types.EmotionExcited {
		t.Fatalf("overall mood = %s, want excited", rep.OverallMood)
	}
	if math.Abs(rep.ConfidenceScore-2.0/3.0) > 1e-9 {
		t.Fatalf("confidence = %v, want 2/3", rep.ConfidenceScore)
	}
	if len(rep.Timeline) != 3 {
		t.Fatalf("timeline has %d entries, want 3", len(rep.Timeline))
	}
	if rep.Timeline[2].Label != types.EmotionSad {
		t.Fatalf("silent window labeled %s, want sad", rep.Timeline[2].Label)
	}
	if rep.Timeline[0].StartSeconds != 0 || rep.Timeline[2].EndSeconds != 15 {
		t.Fatalf("timeline bounds wrong: %+v", rep.Timeline)
	}

	// 30 words over 15 seconds.
	if math.Abs(rep.ToneAnalysis.SpeakingRateWPM-120) > 1e-9 {
		t.Fatalf("wpm = %v, want 120", rep.ToneAnalysis.SpeakingRateWPM)
	}
	if math.Abs(rep.ToneAnalysis.PauseFrequency-1.0/3.0) > 1e-9 {
		t.Fatalf("pause frequency = %v, want 1/3", rep.ToneAnalysis.PauseFrequency)
	}
	if rep.SpeechPatterns.DurationSeconds != 15 {
		t.Fatalf("duration = %v, want 15", rep.SpeechPatterns.DurationSeconds)
	}
	if rep.SpeechPatterns.VolumeVariability <= 0 {
		t.Fatalf("expected non-zero volume variability, got %v", rep.SpeechPatterns.VolumeVariability)
	}

	dist := rep.Distribution
	if dist[types.EmotionExcited].SegmentCount != 2 || dist[types.EmotionSad].SegmentCount != 1 {
		t.Fatalf("unexpected distribution: %+v", dist)
	}
	var pctTotal float64
	for _, d := range dist {
		pctTotal += d.Percentage
	}
	if math.Abs(pctTotal-100) > 1e-9 {
		t.Fatalf("distribution percentages sum to %v", pctTotal)
	}
}

func TestAnalyze_TieBreaksToEarliestLabel(t *testing.T) {
	// One happy window, one sad window: a 1-1 tie goes to the label seen first.
	samples := concat(
		sine(180, 0.12, 5),
		silence(5),
	)

	rep, err := Analyze(samples, testSampleRate, 10, DefaultConfig())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if rep.Timeline[0].Label != types.EmotionHappy || rep.Timeline[1].Label != types.EmotionSad {
		t.Fatalf("fixture labels off: %+v", rep.Timeline)
	}
	if rep.OverallMood != types.EmotionHappy {
		t.Fatalf("overall mood = %s, want happy (earliest in a tie)", rep.OverallMood)
	}
	if rep.ConfidenceScore != 0.5 {
		t.Fatalf("confidence = %v, want 0.5", rep.ConfidenceScore)
	}
}

func TestAnalyze_SingleWindowConfidenceIsOne(t *testing.T) {
	rep, err := Analyze(sine(150, 0.05, 5), testSampleRate, 12, DefaultConfig())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if rep.ConfidenceScore != 1.0 {
		t.Fatalf("confidence = %v, want 1.0", rep.ConfidenceScore)
	}
	if len(rep.Windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(rep.Windows))
	}
}

func TestReport_JSONRoundTrip(t *testing.T) {
	samples := concat(sine(300, 0.3, 5), silence(5), sine(180, 0.12, 5))
	rep, err := Analyze(samples, testSampleRate, 20, DefaultConfig())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	b, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back types.EmotionReport
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.OverallMood != rep.OverallMood {
		t.Fatalf("overall mood changed across round trip: %s vs %s", back.OverallMood, rep.OverallMood)
	}
	if math.Abs(back.ConfidenceScore-rep.ConfidenceScore) > 1e-9 {
		t.Fatalf("confidence changed across round trip: %v vs %v", back.ConfidenceScore, rep.ConfidenceScore)
	}
	if len(back.Timeline) != len(rep.Timeline) {
		t.Fatalf("timeline length changed across round trip: %d vs %d", len(back.Timeline), len(rep.Timeline))
	}
	if len(back.Windows) != 0 {
		t.Fatalf("windows should not be serialized, got %d", len(back.Windows))
	}
}
