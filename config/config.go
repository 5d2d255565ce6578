package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/thaispeech/autotag/audio"
)

// Audio holds waveform loading and frame analysis parameters.
type Audio struct {
	SampleRate   int     `mapstructure:"sample_rate"`
	FrameLength  int     `mapstructure:"frame_length"`
	HopLength    int     `mapstructure:"hop_length"`
	SilenceTopDB float64 `mapstructure:"silence_top_db"`
	MinPauseSec  float64 `mapstructure:"min_pause_sec"`
}

// ASR points at the transcription service. An empty URL disables
// transcription entirely.
type ASR struct {
	URL            string `mapstructure:"url"`
	Language       string `mapstructure:"language"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Text holds the linguistic analysis knobs. CodeSwitchPct is the
// minimum non-Thai character fraction (percent) that counts as
// code-switching; LexiconPath optionally replaces the built-in
// domain keyword lists.
type Text struct {
	CodeSwitchPct float64 `mapstructure:"code_switch_pct"`
	LexiconPath   string  `mapstructure:"lexicon_path"`
}

type Paths struct {
	Input  string `mapstructure:"input"`
	Output string `mapstructure:"output"`
}

type Batch struct {
	Pattern string `mapstructure:"pattern"`
}

type Root struct {
	LogLevel   string           `mapstructure:"log_level"`
	Audio      Audio            `mapstructure:"audio"`
	ASR        ASR              `mapstructure:"asr"`
	Text       Text             `mapstructure:"text"`
	Paths      Paths            `mapstructure:"paths"`
	Batch      Batch            `mapstructure:"batch"`
	Thresholds audio.Thresholds `mapstructure:"thresholds"`
	Overwrite  bool             `mapstructure:"overwrite"`
}

// Load reads configuration from the given file (or autotag.yaml in
// the working directory when path is empty), applies AUTOTAG_*
// environment overrides and fills everything else from defaults.
func Load(path string) (*Root, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("autotag")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("config")
	}

	v.SetEnvPrefix("AUTOTAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("audio.sample_rate", 16000)
	v.SetDefault("audio.frame_length", 2048)
	v.SetDefault("audio.hop_length", 512)
	v.SetDefault("audio.silence_top_db", 30.0)
	v.SetDefault("audio.min_pause_sec", 0.1)

	v.SetDefault("asr.url", "")
	v.SetDefault("asr.language", "th")
	v.SetDefault("asr.timeout_seconds", 600)

	v.SetDefault("text.code_switch_pct", 5.0)
	v.SetDefault("text.lexicon_path", "")

	v.SetDefault("paths.input", "data")
	v.SetDefault("paths.output", "metadata")
	v.SetDefault("batch.pattern", "*.mp3")
	v.SetDefault("overwrite", false)

	t := audio.DefaultThresholds()
	v.SetDefault("thresholds.snr_low_noise", t.SNRLowNoise)
	v.SetDefault("thresholds.snr_medium_noise", t.SNRMediumNoise)
	v.SetDefault("thresholds.distorted_flatness", t.DistortedFlatness)
	v.SetDefault("thresholds.distorted_snr", t.DistortedSNR)
	v.SetDefault("thresholds.muffled_snr", t.MuffledSNR)
	v.SetDefault("thresholds.muffled_mfcc_std", t.MuffledMFCCStd)
	v.SetDefault("thresholds.read_max_pause_rate", t.ReadMaxPauseRate)
	v.SetDefault("thresholds.read_max_energy_variation", t.ReadMaxEnergyVariation)
	v.SetDefault("thresholds.read_max_avg_pause", t.ReadMaxAvgPause)
}

func (a ASR) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}
