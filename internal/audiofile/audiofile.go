package audiofile

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// Clip holds decoded audio as mono samples normalized to [-1, 1].
type Clip struct {
	Samples    []float64
	SampleRate int
}

func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	sec := float64(len(c.Samples)) / float64(c.SampleRate)
	return time.Duration(sec * float64(time.Second))
}

// ReadWAV decodes a PCM WAV file. Multi-channel audio is downmixed by
// averaging channels.
func ReadWAV(path string) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return Clip{}, fmt.Errorf("%s is not a valid wav file", path)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels <= 0 {
		return Clip{}, fmt.Errorf("decode %s: missing format info", path)
	}

	bits := int(d.BitDepth)
	if bits <= 0 {
		bits = 16
	}
	scale := float64(int64(1) << (bits - 1))

	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var s float64
		for c := 0; c < ch; c++ {
			s += float64(buf.Data[i*ch+c])
		}
		out[i] = s / float64(ch) / scale
	}

	return Clip{Samples: out, SampleRate: buf.Format.SampleRate}, nil
}
