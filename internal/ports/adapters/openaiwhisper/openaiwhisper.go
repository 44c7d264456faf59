package openaiwhisper

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/forPelevin/ytone/internal/types"
)

type Adapter struct {
	client *openai.Client
}

func New(apiKey string) *Adapter {
	return &Adapter{client: openai.NewClient(apiKey)}
}

// Transcribe sends the audio file to the hosted Whisper API. The model size
// option is accepted but not applied: the endpoint serves a single model. The
// language hint is passed through.
func (a *Adapter) Transcribe(ctx context.Context, audioPath string, opts types.TranscribeOptions) (types.Transcript, error) {
	resp, err := a.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Language: opts.Language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return types.Transcript{}, fmt.Errorf("openai transcription: %w", err)
	}
	return mapResponse(resp), nil
}

func mapResponse(resp openai.AudioResponse) types.Transcript {
	tr := types.Transcript{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
	}
	for _, s := range resp.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		tr.Segments = append(tr.Segments, types.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  text,
		})
	}
	return tr
}
