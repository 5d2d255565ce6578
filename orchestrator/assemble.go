package orchestrator

import (
	"unicode/utf8"

	"github.com/thaispeech/autotag/audio"
	"github.com/thaispeech/autotag/clients"
	"github.com/thaispeech/autotag/thai"
)

// Fixed confidence policy: automated speaking-style and linguistic
// labels are the least trusted signals, the SNR-based noise level the
// most.
const (
	confidenceHigh   = "high"
	confidenceMedium = "medium"
	confidenceLow    = "low"

	reviewRequired = "required"
)

const (
	lowSNRNoteDB         = 15.0
	shortTranscriptRunes = 10

	lowSNRNote          = "Low SNR detected - audio quality may affect transcription"
	shortTranscriptNote = "Very short transcription - check for silence or audio issues"
)

// Assembler merges loader, feature, classification and linguistic
// outputs into one MetadataRecord. DefaultLanguage fills
// language_detected when transcription is absent.
type Assembler struct {
	DefaultLanguage string
}

func NewAssembler(defaultLanguage string) *Assembler {
	if defaultLanguage == "" {
		defaultLanguage = "th"
	}
	return &Assembler{DefaultLanguage: defaultLanguage}
}

// Assemble is a pure merge: it never touches disk and never mutates
// its inputs. tr and ling may be nil (transcription disabled or
// failed).
func (a *Assembler) Assemble(
	info FileInfo,
	w *audio.Waveform,
	fs audio.FeatureSet,
	labels audio.QualityLabels,
	tr *clients.Transcription,
	ling *thai.Analysis,
) *MetadataRecord {
	rec := &MetadataRecord{
		FileInfo: info,
		AudioProperties: AudioProperties{
			DurationSeconds: fs.Duration,
			SampleRate:      w.Rate,
		},
		AutomatedTags: AutomatedTags{
			NoiseLevel:              labels.NoiseLevel,
			NoiseLevelConfidence:    confidenceHigh,
			SNRDB:                   fs.SNRDB,
			SpeechClarity:           labels.SpeechClarity,
			SpeechClarityConfidence: confidenceMedium,
			SpeakingStyleSuggested:  labels.SpeakingStyle,
			SpeakingStyleConfidence: confidenceLow,
			VoiceActivityPercentage: fs.VoiceActivityPct,
		},
		AcousticFeatures: AcousticFeatures{
			SpectralCentroid: fs.SpectralCentroid,
			SpectralRolloff:  fs.SpectralRolloff,
			ZeroCrossingRate: fs.ZeroCrossingRate,
			MFCCStd:          fs.MFCCStd,
			SpectralFlatness: fs.SpectralFlatness,
		},
		SpeakingStyleFeatures: SpeakingStyleFeatures{
			PauseCount:       fs.PauseCount,
			AvgPauseDuration: fs.AvgPauseDuration,
			SpeechPercentage: fs.VoiceActivityPct,
			EnergyVariation:  fs.EnergyVariation,
			TotalDuration:    fs.Duration,
		},
		TranscriptionMetadata: TranscriptionMetadata{
			Available:        tr != nil,
			LanguageDetected: a.DefaultLanguage,
		},
		LinguisticAnalysis: LinguisticAnalysis{
			CodeSwitching:           "unknown",
			VocabularyTypeSuggested: thai.GeneralVocab,
			VocabularyConfidence:    confidenceLow,
		},
		ManualReviewRequired: ManualReviewRequired{
			SpeakerGender:             reviewRequired,
			Dialect:                   reviewRequired,
			SpeakingStyleConfirmation: reviewRequired,
			VocabularyTypeConfirm:     reviewRequired,
			CodeSwitchingConfirmation: reviewRequired,
		},
		ManualAnnotations: map[string]any{},
		AnnotationStatus: AnnotationStatus{
			AutomatedComplete:   true,
			HumanReviewComplete: false,
		},
		Notes: []string{},
	}

	if tr != nil {
		rec.Text = tr.Text
		if tr.Language != "" {
			rec.TranscriptionMetadata.LanguageDetected = tr.Language
		}
	}
	if ling != nil {
		rec.Text = ling.NormalizedText
		rec.TranscriptionMetadata.NormalizationApplied = ling.NormalizationApplied
		rec.TranscriptionMetadata.NormalizationNotes = ling.NormalizationNotes
		rec.LinguisticAnalysis.CodeSwitching = ling.CodeSwitching
		rec.LinguisticAnalysis.VocabularyTypeSuggested = ling.VocabularyType
	}

	if fs.SNRDB < lowSNRNoteDB {
		rec.Notes = append(rec.Notes, lowSNRNote)
	}
	if tr != nil && utf8.RuneCountInString(tr.Text) < shortTranscriptRunes {
		rec.Notes = append(rec.Notes, shortTranscriptNote)
	}
	return rec
}
