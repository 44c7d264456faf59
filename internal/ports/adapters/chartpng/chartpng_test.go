package chartpng

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forPelevin/ytone/internal/types"
)

func testReport() types.EmotionReport {
	windows := []types.EmotionWindow{
		{
			StartSeconds: 0, EndSeconds: 5, Label: types.EmotionExcited,
			Features: types.WindowFeatures{AvgPitchHz: 260, AvgEnergy: 0.14, ZeroCrossingRate: 0.03},
		},
		{
			StartSeconds: 5, EndSeconds: 10, Label: types.EmotionExcited,
			Features: types.WindowFeatures{AvgPitchHz: 250, AvgEnergy: 0.12, ZeroCrossingRate: 0.03},
		},
		{
			StartSeconds: 10, EndSeconds: 12, Label: types.EmotionSad,
			Features: types.WindowFeatures{AvgPitchHz: 0, AvgEnergy: 0.002, ZeroCrossingRate: 0.001},
		},
	}
	timeline := make([]types.TimelineEntry, len(windows))
	for i, w := range windows {
		timeline[i] = types.TimelineEntry{StartSeconds: w.StartSeconds, EndSeconds: w.EndSeconds, Label: w.Label}
	}
	return types.EmotionReport{
		OverallMood:     types.EmotionExcited,
		ConfidenceScore: 2.0 / 3.0,
		Distribution: map[types.Emotion]types.DistributionEntry{
			types.EmotionExcited: {Percentage: 66.7, SegmentCount: 2},
			types.EmotionSad:     {Percentage: 33.3, SegmentCount: 1},
		},
		Timeline: timeline,
		Windows:  windows,
	}
}

func TestRender_WritesDecodablePNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "emotion_analysis.png")

	err := New().Render(testReport(), out)
	require.NoError(t, err)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, []byte("\x89PNG\r\n\x1a\n")), "missing png signature")

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	require.Equal(t, gridCols*panelWidth, img.Bounds().Dx())
	require.Equal(t, 2*panelHeight, img.Bounds().Dy())
}

func TestRender_SingleWindowReport(t *testing.T) {
	rep := testReport()
	rep.Windows = rep.Windows[:1]
	rep.Timeline = rep.Timeline[:1]
	rep.Distribution = map[types.Emotion]types.DistributionEntry{
		types.EmotionExcited: {Percentage: 100, SegmentCount: 1},
	}
	rep.ConfidenceScore = 1

	out := filepath.Join(t.TempDir(), "single.png")
	require.NoError(t, New().Render(rep, out))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
}

func TestRender_BadPath(t *testing.T) {
	err := New().Render(testReport(), filepath.Join(t.TempDir(), "missing", "nested", "x.png"))
	require.Error(t, err)
}
