package ports

import (
	"context"

	"github.com/forPelevin/ytone/internal/types"
)

// ProgressFunc receives download progress in percent, 0 to 100.
type ProgressFunc func(percent float64)

type AudioFetcher interface {
	// Fetch downloads the audio track to destPath. progress may be nil.
	Fetch(ctx context.Context, ref types.VideoReference, destPath string, progress ProgressFunc) (types.AudioAsset, error)
	// Probe looks up video metadata without downloading.
	Probe(ctx context.Context, ref types.VideoReference) (types.VideoInfo, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, opts types.TranscribeOptions) (types.Transcript, error)
}

type ChartRenderer interface {
	Render(report types.EmotionReport, outPath string) error
}
