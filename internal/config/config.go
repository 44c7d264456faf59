package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/forPelevin/ytone/internal/domain/emotion"
)

// Config is the merged result of defaults, an optional ytone.yaml and
// YTONE_* environment variables. Command-line flags are layered on top by
// the caller.
type Config struct {
	WorkDir   string `mapstructure:"work_dir"`
	OutputDir string `mapstructure:"output_dir"`
	LogDir    string `mapstructure:"log_dir"`
	LogLevel  string `mapstructure:"log_level"`

	Engine   string `mapstructure:"engine"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`

	YtdlpPath       string `mapstructure:"ytdlp_path"`
	WhisperBin      string `mapstructure:"whisper_bin"`
	WhisperModelDir string `mapstructure:"whisper_model_dir"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key"`

	FetchRetries int           `mapstructure:"fetch_retries"`
	FetchBackoff time.Duration `mapstructure:"fetch_backoff"`

	WindowSeconds    float64 `mapstructure:"window_seconds"`
	MinWindowSeconds float64 `mapstructure:"min_window_seconds"`

	PitchLowHz  float64 `mapstructure:"pitch_low_hz"`
	PitchMedHz  float64 `mapstructure:"pitch_med_hz"`
	PitchHighHz float64 `mapstructure:"pitch_high_hz"`

	EnergyLow     float64 `mapstructure:"energy_low"`
	EnergyMed     float64 `mapstructure:"energy_med"`
	EnergyHigh    float64 `mapstructure:"energy_high"`
	EnergySilence float64 `mapstructure:"energy_silence"`

	StaleAudioMaxAge time.Duration `mapstructure:"stale_audio_max_age"`
}

// Load reads configuration. With an explicit path the file must exist; with
// an empty path a ytone.yaml in the current directory is picked up when
// present and silently skipped otherwise.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("work_dir", ".")
	v.SetDefault("output_dir", "outputs")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_level", "info")

	v.SetDefault("engine", "whispercpp")
	v.SetDefault("model", "base")
	v.SetDefault("language", "")

	v.SetDefault("ytdlp_path", "yt-dlp")
	v.SetDefault("whisper_bin", "whisper-cli")
	v.SetDefault("whisper_model_dir", ".cache/models")
	v.SetDefault("openai_api_key", "")

	v.SetDefault("fetch_retries", 3)
	v.SetDefault("fetch_backoff", "3s")

	v.SetDefault("window_seconds", emotion.DefaultWindowSeconds)
	v.SetDefault("min_window_seconds", emotion.DefaultMinTailSeconds)

	v.SetDefault("pitch_low_hz", emotion.DefaultPitchLowHz)
	v.SetDefault("pitch_med_hz", emotion.DefaultPitchMedHz)
	v.SetDefault("pitch_high_hz", emotion.DefaultPitchHighHz)

	v.SetDefault("energy_low", emotion.DefaultEnergyLow)
	v.SetDefault("energy_med", emotion.DefaultEnergyMed)
	v.SetDefault("energy_high", emotion.DefaultEnergyHigh)
	v.SetDefault("energy_silence", emotion.DefaultEnergySilence)

	v.SetDefault("stale_audio_max_age", "24h")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("ytone")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("YTONE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Tuning maps the flat config keys onto the analyzer configuration.
func (c Config) Tuning() emotion.Config {
	return emotion.Config{
		WindowSeconds:  c.WindowSeconds,
		MinTailSeconds: c.MinWindowSeconds,
		Thresholds: emotion.Thresholds{
			PitchLowHz:    c.PitchLowHz,
			PitchMedHz:    c.PitchMedHz,
			PitchHighHz:   c.PitchHighHz,
			EnergyLow:     c.EnergyLow,
			EnergyMed:     c.EnergyMed,
			EnergyHigh:    c.EnergyHigh,
			EnergySilence: c.EnergySilence,
		},
	}
}
