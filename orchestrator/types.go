package orchestrator

import "time"

// MetadataRecord is the per-file work product. Field order here
// defines the JSON key order of persisted records, which must stay
// stable for diffability. The annotation GUI mutates only
// manual_annotations, notes and annotation_status; this core only
// ever produces the initial record.
type MetadataRecord struct {
	FileInfo              FileInfo              `json:"file_info"`
	AudioProperties       AudioProperties       `json:"audio_properties"`
	AutomatedTags         AutomatedTags         `json:"automated_tags"`
	AcousticFeatures      AcousticFeatures      `json:"acoustic_features"`
	SpeakingStyleFeatures SpeakingStyleFeatures `json:"speaking_style_features"`
	Text                  string                `json:"text"`
	TranscriptionMetadata TranscriptionMetadata `json:"transcription_metadata"`
	LinguisticAnalysis    LinguisticAnalysis    `json:"linguistic_analysis"`
	ManualReviewRequired  ManualReviewRequired  `json:"manual_review_required"`
	ManualAnnotations     map[string]any        `json:"manual_annotations"`
	AnnotationStatus      AnnotationStatus      `json:"annotation_status"`
	Notes                 []string              `json:"notes"`
}

type FileInfo struct {
	Filename      string    `json:"filename"`
	FilePath      string    `json:"file_path"`
	ProcessedAt   time.Time `json:"processed_at"`
	FileSizeBytes int64     `json:"file_size_bytes"`
}

type AudioProperties struct {
	DurationSeconds float64 `json:"duration_seconds"`
	SampleRate      int     `json:"sample_rate"`
}

type AutomatedTags struct {
	NoiseLevel              string  `json:"noise_level"`
	NoiseLevelConfidence    string  `json:"noise_level_confidence"`
	SNRDB                   float64 `json:"snr_db"`
	SpeechClarity           string  `json:"speech_clarity"`
	SpeechClarityConfidence string  `json:"speech_clarity_confidence"`
	SpeakingStyleSuggested  string  `json:"speaking_style_suggested"`
	SpeakingStyleConfidence string  `json:"speaking_style_confidence"`
	VoiceActivityPercentage float64 `json:"voice_activity_percentage"`
}

type AcousticFeatures struct {
	SpectralCentroid float64 `json:"spectral_centroid"`
	SpectralRolloff  float64 `json:"spectral_rolloff"`
	ZeroCrossingRate float64 `json:"zero_crossing_rate"`
	MFCCStd          float64 `json:"mfcc_std"`
	SpectralFlatness float64 `json:"spectral_flatness"`
}

type SpeakingStyleFeatures struct {
	PauseCount       int     `json:"pause_count"`
	AvgPauseDuration float64 `json:"avg_pause_duration"`
	SpeechPercentage float64 `json:"speech_percentage"`
	EnergyVariation  float64 `json:"energy_variation"`
	TotalDuration    float64 `json:"total_duration"`
}

type TranscriptionMetadata struct {
	Available            bool   `json:"available"`
	NormalizationApplied bool   `json:"normalization_applied"`
	NormalizationNotes   string `json:"normalization_notes"`
	LanguageDetected     string `json:"language_detected"`
}

type LinguisticAnalysis struct {
	CodeSwitching           string `json:"code_switching"`
	VocabularyTypeSuggested string `json:"vocabulary_type_suggested"`
	VocabularyConfidence    string `json:"vocabulary_confidence"`
}

// ManualReviewRequired lists the judgements that always need a human
// regardless of automated confidence.
type ManualReviewRequired struct {
	SpeakerGender             string `json:"speaker_gender"`
	Dialect                   string `json:"dialect"`
	SpeakingStyleConfirmation string `json:"speaking_style_confirmation"`
	VocabularyTypeConfirm     string `json:"vocabulary_type_confirmation"`
	CodeSwitchingConfirmation string `json:"code_switching_confirmation"`
}

// AnnotationStatus is mutated only by the annotation GUI after the
// automated pass.
type AnnotationStatus struct {
	AutomatedComplete   bool    `json:"automated_complete"`
	HumanReviewComplete bool    `json:"human_review_complete"`
	HumanAnnotator      *string `json:"human_annotator"`
	ReviewDate          *string `json:"review_date"`
}

// BatchReport summarizes one ProcessDirectory run.
type BatchReport struct {
	RunID     string        `json:"run_id"`
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Failures  []FileFailure `json:"failures,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
	AvgPer    time.Duration `json:"avg_per_file"`
}

type FileFailure struct {
	File    string `json:"file"`
	Message string `json:"message"`
}
