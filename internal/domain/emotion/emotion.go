package emotion

import "github.com/forPelevin/ytone/internal/types"

// Calibrated once against conversational speech at 16 kHz. Surfaced through
// configuration so they can be tuned without a rebuild.
const (
	DefaultWindowSeconds  = 5.0
	DefaultMinTailSeconds = 1.0

	DefaultPitchLowHz  = 120.0
	DefaultPitchMedHz  = 160.0
	DefaultPitchHighHz = 220.0

	DefaultEnergyLow     = 0.03
	DefaultEnergyMed     = 0.06
	DefaultEnergyHigh    = 0.10
	DefaultEnergySilence = 0.01
)

// Thresholds are the fixed numeric boundaries of the rule table.
type Thresholds struct {
	PitchLowHz  float64
	PitchMedHz  float64
	PitchHighHz float64

	EnergyLow     float64
	EnergyMed     float64
	EnergyHigh    float64
	EnergySilence float64
}

// Config tunes the analysis pass. Windows are WindowSeconds wide; a trailing
// remainder shorter than MinTailSeconds is merged into the previous window.
type Config struct {
	WindowSeconds  float64
	MinTailSeconds float64
	Thresholds     Thresholds
}

func DefaultConfig() Config {
	return Config{
		WindowSeconds:  DefaultWindowSeconds,
		MinTailSeconds: DefaultMinTailSeconds,
		Thresholds: Thresholds{
			PitchLowHz:    DefaultPitchLowHz,
			PitchMedHz:    DefaultPitchMedHz,
			PitchHighHz:   DefaultPitchHighHz,
			EnergyLow:     DefaultEnergyLow,
			EnergyMed:     DefaultEnergyMed,
			EnergyHigh:    DefaultEnergyHigh,
			EnergySilence: DefaultEnergySilence,
		},
	}
}

type rule struct {
	label types.Emotion
	match func(t Thresholds, f types.WindowFeatures) bool
}

// Order is significant: the first matching rule wins. A window that clears
// both the excited and happy thresholds is excited.
var rules = []rule{
	{types.EmotionExcited, func(t Thresholds, f types.WindowFeatures) bool {
		return f.AvgEnergy > t.EnergyHigh && f.AvgPitchHz > t.PitchHighHz
	}},
	{types.EmotionHappy, func(t Thresholds, f types.WindowFeatures) bool {
		return f.AvgPitchHz > t.PitchMedHz && f.AvgEnergy > t.EnergyMed
	}},
	{types.EmotionAngry, func(t Thresholds, f types.WindowFeatures) bool {
		return f.AvgEnergy > t.EnergyHigh && f.AvgPitchHz < t.PitchLowHz
	}},
	{types.EmotionSad, func(t Thresholds, f types.WindowFeatures) bool {
		return f.AvgPitchHz < t.PitchLowHz && f.AvgEnergy < t.EnergyLow
	}},
	{types.EmotionCalm, func(t Thresholds, f types.WindowFeatures) bool {
		return f.AvgEnergy < t.EnergyLow && f.AvgPitchHz >= t.PitchLowHz && f.AvgPitchHz <= t.PitchHighHz
	}},
}

// Classify maps window features to a single label via the rule table.
func Classify(t Thresholds, f types.WindowFeatures) types.Emotion {
	for _, r := range rules {
		if r.match(t, f) {
			return r.label
		}
	}
	return types.EmotionNeutral
}
