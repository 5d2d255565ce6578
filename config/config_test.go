package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("Audio.SampleRate = %d, want 16000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.FrameLength != 2048 || cfg.Audio.HopLength != 512 {
		t.Errorf("frame params = %d/%d, want 2048/512", cfg.Audio.FrameLength, cfg.Audio.HopLength)
	}
	if cfg.Audio.SilenceTopDB != 30.0 {
		t.Errorf("Audio.SilenceTopDB = %v, want 30.0", cfg.Audio.SilenceTopDB)
	}
	if cfg.ASR.Language != "th" {
		t.Errorf("ASR.Language = %q, want th", cfg.ASR.Language)
	}
	if cfg.ASR.Timeout() != 600*time.Second {
		t.Errorf("ASR.Timeout() = %v, want 10m", cfg.ASR.Timeout())
	}
	if cfg.Text.CodeSwitchPct != 5.0 {
		t.Errorf("Text.CodeSwitchPct = %v, want 5.0", cfg.Text.CodeSwitchPct)
	}
	if cfg.Batch.Pattern != "*.mp3" {
		t.Errorf("Batch.Pattern = %q, want *.mp3", cfg.Batch.Pattern)
	}
	if cfg.Overwrite {
		t.Error("Overwrite defaults to true, want false")
	}
	if cfg.Thresholds.SNRLowNoise != 25.0 || cfg.Thresholds.SNRMediumNoise != 15.0 {
		t.Errorf("threshold defaults = %+v", cfg.Thresholds)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("AUTOTAG_AUDIO_SAMPLE_RATE", "22050")
	t.Setenv("AUTOTAG_ASR_URL", "http://localhost:9000")
	t.Setenv("AUTOTAG_THRESHOLDS_SNR_LOW_NOISE", "30")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Audio.SampleRate != 22050 {
		t.Errorf("Audio.SampleRate = %d, want env override 22050", cfg.Audio.SampleRate)
	}
	if cfg.ASR.URL != "http://localhost:9000" {
		t.Errorf("ASR.URL = %q, want env override", cfg.ASR.URL)
	}
	if cfg.Thresholds.SNRLowNoise != 30.0 {
		t.Errorf("Thresholds.SNRLowNoise = %v, want env override 30", cfg.Thresholds.SNRLowNoise)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autotag.yaml")
	content := `
log_level: debug
audio:
  sample_rate: 8000
asr:
  url: http://asr.internal:8080
  timeout_seconds: 120
paths:
  input: /srv/audio
  output: /srv/metadata
thresholds:
  snr_low_noise: 20
overwrite: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Audio.SampleRate != 8000 {
		t.Errorf("Audio.SampleRate = %d, want 8000", cfg.Audio.SampleRate)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Audio.FrameLength != 2048 {
		t.Errorf("Audio.FrameLength = %d, want default 2048", cfg.Audio.FrameLength)
	}
	if cfg.ASR.Timeout() != 2*time.Minute {
		t.Errorf("ASR.Timeout() = %v, want 2m", cfg.ASR.Timeout())
	}
	if cfg.Paths.Input != "/srv/audio" || cfg.Paths.Output != "/srv/metadata" {
		t.Errorf("paths = %+v", cfg.Paths)
	}
	if cfg.Thresholds.SNRLowNoise != 20.0 {
		t.Errorf("Thresholds.SNRLowNoise = %v, want 20", cfg.Thresholds.SNRLowNoise)
	}
	if cfg.Thresholds.SNRMediumNoise != 15.0 {
		t.Errorf("Thresholds.SNRMediumNoise = %v, want default 15", cfg.Thresholds.SNRMediumNoise)
	}
	if !cfg.Overwrite {
		t.Error("Overwrite = false, want true from file")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of explicitly named missing file succeeded")
	}
}
