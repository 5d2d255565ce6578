package orchestrator

import (
	"testing"
	"time"

	"github.com/thaispeech/autotag/audio"
	"github.com/thaispeech/autotag/clients"
	"github.com/thaispeech/autotag/thai"
)

func testFileInfo() FileInfo {
	return FileInfo{
		Filename:      "sample.mp3",
		FilePath:      "/data/sample.mp3",
		ProcessedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		FileSizeBytes: 123456,
	}
}

func testFeatures() audio.FeatureSet {
	return audio.FeatureSet{
		SNRDB:            28.5,
		SpectralCentroid: 1500,
		SpectralRolloff:  3200,
		ZeroCrossingRate: 0.08,
		MFCCStd:          22,
		SpectralFlatness: 0.12,
		VoiceActivityPct: 88,
		PauseCount:       3,
		AvgPauseDuration: 0.25,
		EnergyVariation:  0.03,
		Duration:         42.5,
	}
}

func testLabels() audio.QualityLabels {
	return audio.QualityLabels{
		NoiseLevel:    audio.NoiseLow,
		SpeechClarity: audio.ClarityClear,
		SpeakingStyle: audio.StyleRead,
	}
}

func TestAssembleFullRecord(t *testing.T) {
	a := NewAssembler("th")
	w := &audio.Waveform{Samples: make([]float64, 16000), Rate: 16000}
	tr := &clients.Transcription{Text: "ผมไปตลาดเมื่อเช้านี้", Language: "th"}
	ling := thai.NewAnalyzer(5.0, thai.DefaultLexicon()).Analyze(tr.Text)

	rec := a.Assemble(testFileInfo(), w, testFeatures(), testLabels(), tr, ling)

	if rec.AudioProperties.SampleRate != 16000 || rec.AudioProperties.DurationSeconds != 42.5 {
		t.Errorf("audio properties = %+v", rec.AudioProperties)
	}
	if rec.AutomatedTags.NoiseLevel != audio.NoiseLow || rec.AutomatedTags.SNRDB != 28.5 {
		t.Errorf("automated tags = %+v", rec.AutomatedTags)
	}
	if rec.Text != ling.NormalizedText {
		t.Errorf("Text = %q, want normalized transcript", rec.Text)
	}
	if !rec.TranscriptionMetadata.Available {
		t.Error("transcription not marked available")
	}
	if rec.TranscriptionMetadata.LanguageDetected != "th" {
		t.Errorf("LanguageDetected = %q, want th", rec.TranscriptionMetadata.LanguageDetected)
	}
	if rec.LinguisticAnalysis.CodeSwitching != thai.NoCodeSwitching {
		t.Errorf("CodeSwitching = %q", rec.LinguisticAnalysis.CodeSwitching)
	}
	if !rec.AnnotationStatus.AutomatedComplete || rec.AnnotationStatus.HumanReviewComplete {
		t.Errorf("annotation status = %+v", rec.AnnotationStatus)
	}
	if len(rec.Notes) != 0 {
		t.Errorf("Notes = %v, want none for clean long transcript", rec.Notes)
	}
}

func TestAssembleConfidencePolicy(t *testing.T) {
	a := NewAssembler("th")
	w := &audio.Waveform{Rate: 16000}
	rec := a.Assemble(testFileInfo(), w, testFeatures(), testLabels(), nil, nil)

	if rec.AutomatedTags.NoiseLevelConfidence != "high" {
		t.Errorf("noise confidence = %q, want high", rec.AutomatedTags.NoiseLevelConfidence)
	}
	if rec.AutomatedTags.SpeechClarityConfidence != "medium" {
		t.Errorf("clarity confidence = %q, want medium", rec.AutomatedTags.SpeechClarityConfidence)
	}
	if rec.AutomatedTags.SpeakingStyleConfidence != "low" {
		t.Errorf("style confidence = %q, want low", rec.AutomatedTags.SpeakingStyleConfidence)
	}
	if rec.LinguisticAnalysis.VocabularyConfidence != "low" {
		t.Errorf("vocabulary confidence = %q, want low", rec.LinguisticAnalysis.VocabularyConfidence)
	}
}

func TestAssembleAlwaysFlagsManualReview(t *testing.T) {
	a := NewAssembler("th")
	w := &audio.Waveform{Rate: 16000}
	rec := a.Assemble(testFileInfo(), w, testFeatures(), testLabels(), nil, nil)

	mr := rec.ManualReviewRequired
	for name, v := range map[string]string{
		"speaker_gender":              mr.SpeakerGender,
		"dialect":                     mr.Dialect,
		"speaking_style_confirmation": mr.SpeakingStyleConfirmation,
		"vocabulary_type_confirm":     mr.VocabularyTypeConfirm,
		"code_switching_confirmation": mr.CodeSwitchingConfirmation,
	} {
		if v != "required" {
			t.Errorf("%s = %q, want required", name, v)
		}
	}
}

func TestAssembleTranscriptAbsent(t *testing.T) {
	a := NewAssembler("th")
	w := &audio.Waveform{Rate: 16000}
	rec := a.Assemble(testFileInfo(), w, testFeatures(), testLabels(), nil, nil)

	if rec.Text != "" {
		t.Errorf("Text = %q, want empty", rec.Text)
	}
	if rec.TranscriptionMetadata.Available {
		t.Error("transcription marked available without a transcript")
	}
	if rec.TranscriptionMetadata.LanguageDetected != "th" {
		t.Errorf("LanguageDetected = %q, want default th", rec.TranscriptionMetadata.LanguageDetected)
	}
	if rec.LinguisticAnalysis.CodeSwitching != "unknown" {
		t.Errorf("CodeSwitching = %q, want unknown", rec.LinguisticAnalysis.CodeSwitching)
	}
	if rec.ManualAnnotations == nil || rec.Notes == nil {
		t.Error("mutable blocks must be non-nil for the annotation GUI")
	}
}

func TestAssembleNotes(t *testing.T) {
	a := NewAssembler("th")
	w := &audio.Waveform{Rate: 16000}

	t.Run("low snr", func(t *testing.T) {
		fs := testFeatures()
		fs.SNRDB = 12.0
		rec := a.Assemble(testFileInfo(), w, fs, testLabels(), nil, nil)
		if len(rec.Notes) != 1 || rec.Notes[0] != lowSNRNote {
			t.Errorf("Notes = %v, want low SNR note", rec.Notes)
		}
	})

	t.Run("short transcript", func(t *testing.T) {
		tr := &clients.Transcription{Text: "ครับ", Language: "th"}
		rec := a.Assemble(testFileInfo(), w, testFeatures(), testLabels(), tr, nil)
		if len(rec.Notes) != 1 || rec.Notes[0] != shortTranscriptNote {
			t.Errorf("Notes = %v, want short transcript note", rec.Notes)
		}
	})

	t.Run("both", func(t *testing.T) {
		fs := testFeatures()
		fs.SNRDB = 10.0
		tr := &clients.Transcription{Text: "ครับ", Language: "th"}
		rec := a.Assemble(testFileInfo(), w, fs, testLabels(), tr, nil)
		if len(rec.Notes) != 2 {
			t.Errorf("Notes = %v, want both notes", rec.Notes)
		}
	})

	t.Run("boundary snr not noted", func(t *testing.T) {
		fs := testFeatures()
		fs.SNRDB = 15.0
		rec := a.Assemble(testFileInfo(), w, fs, testLabels(), nil, nil)
		if len(rec.Notes) != 0 {
			t.Errorf("Notes = %v, want none at exactly 15 dB", rec.Notes)
		}
	})
}
