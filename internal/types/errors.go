package types

import "fmt"

// InvalidURLError reports input that does not look like a YouTube video link.
// Non-retryable.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid youtube url: %q", e.URL)
}

// FetchError is the terminal download failure after all attempts.
type FetchError struct {
	VideoID  string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("download failed for %s after %d attempts: %v", e.VideoID, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// TranscriptionError wraps a speech-model failure. Not retried; larger models
// commonly fail to load on small machines, so the message points at a smaller
// one.
type TranscriptionError struct {
	Model ModelSize
	Err   error
}

func (e *TranscriptionError) Error() string {
	msg := fmt.Sprintf("transcription failed (model %s): %v", e.Model, e.Err)
	if e.Model != ModelTiny {
		msg += "; a smaller model may help (try --model tiny)"
	}
	return msg
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// InsufficientAudioError means the clip is shorter than one analysis window.
type InsufficientAudioError struct {
	Seconds        float64
	MinimumSeconds float64
}

func (e *InsufficientAudioError) Error() string {
	return fmt.Sprintf("audio too short for analysis: %.1fs, need at least %.1fs", e.Seconds, e.MinimumSeconds)
}

// IOError wraps a filesystem failure while persisting run artifacts.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
