package emotion

import (
	"math"

	"github.com/forPelevin/ytone/internal/types"
)

const (
	frameSize = 2048
	hopSize   = 512

	pitchMinHz = 50.0
	pitchMaxHz = 500.0

	// A frame counts toward the pitch average only when it is loud enough to
	// be voiced and its best autocorrelation peak is convincing.
	voicedRMSMin  = 0.01
	voicedCorrMin = 0.3
)

func extractFeatures(window []float64, sampleRate int) types.WindowFeatures {
	return types.WindowFeatures{
		AvgPitchHz:       averagePitch(window, sampleRate),
		AvgEnergy:        meanFrameRMS(window),
		ZeroCrossingRate: zeroCrossingRate(window),
	}
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var s float64
	for _, v := range x {
		s += v * v
	}
	return math.Sqrt(s / float64(len(x)))
}

func meanFrameRMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	n := 0
	for start := 0; start < len(x); start += hopSize {
		end := start + frameSize
		if end > len(x) {
			end = len(x)
		}
		sum += rms(x[start:end])
		n++
		if end == len(x) {
			break
		}
	}
	return sum / float64(n)
}

func zeroCrossingRate(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	c := 0
	for i := 1; i < len(x); i++ {
		if (x[i-1] >= 0) != (x[i] >= 0) {
			c++
		}
	}
	return float64(c) / float64(len(x)-1)
}

// averagePitch estimates the fundamental frequency per frame and averages the
// voiced frames. Windows with no voiced frame report 0, which the rule table
// treats like any other pitch value.
func averagePitch(x []float64, sampleRate int) float64 {
	var sum float64
	voiced := 0
	for start := 0; start+frameSize <= len(x); start += hopSize {
		frame := x[start : start+frameSize]
		if rms(frame) < voicedRMSMin {
			continue
		}
		if p := estimatePitch(frame, sampleRate); p > 0 {
			sum += p
			voiced++
		}
	}
	if voiced == 0 {
		return 0
	}
	return sum / float64(voiced)
}

// estimatePitch finds the first convincing peak of the normalized
// autocorrelation within the 50..500 Hz lag range. Taking the first local
// maximum keeps harmonics at longer lags from halving the estimate.
func estimatePitch(frame []float64, sampleRate int) float64 {
	n := len(frame)
	minLag := int(float64(sampleRate) / pitchMaxHz)
	maxLag := int(float64(sampleRate) / pitchMinHz)
	if maxLag > n-1 {
		maxLag = n - 1
	}
	if minLag < 1 {
		minLag = 1
	}
	if minLag >= maxLag {
		return 0
	}

	cum := make([]float64, n+1)
	for i, v := range frame {
		cum[i+1] = cum[i] + v*v
	}
	if cum[n] == 0 {
		return 0
	}

	r := make([]float64, maxLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		var c float64
		m := n - lag
		for i := 0; i < m; i++ {
			c += frame[i] * frame[i+lag]
		}
		denom := math.Sqrt(cum[m] * (cum[n] - cum[lag]))
		if denom == 0 {
			continue
		}
		r[lag] = c / denom
	}

	for lag := minLag + 1; lag < maxLag; lag++ {
		if r[lag] >= voicedCorrMin && r[lag] >= r[lag-1] && r[lag] >= r[lag+1] {
			return float64(sampleRate) / float64(lag)
		}
	}
	return 0
}
