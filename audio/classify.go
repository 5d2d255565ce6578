package audio

// Categorical labels produced by the classifier. These values appear
// verbatim in persisted metadata, so they must stay stable.
const (
	NoiseLow    = "low_noise"
	NoiseMedium = "medium_noise"
	NoiseHigh   = "high_noise"

	ClarityClear     = "clear_speech"
	ClarityMuffled   = "muffled_speech"
	ClarityDistorted = "distorted_speech"

	StyleRead        = "read_speech"
	StyleSpontaneous = "spontaneous_speech"
	// StyleConversational is never emitted by the automated
	// classifier; it requires multi-speaker detection and exists in
	// the vocabulary for human reviewers only.
	StyleConversational = "conversational"
)

// Thresholds is the single table of heuristic constants the
// classifier runs on. Injecting it keeps tests and alternative
// language pairs away from the classification logic.
type Thresholds struct {
	SNRLowNoise       float64 `mapstructure:"snr_low_noise" yaml:"snr_low_noise"`
	SNRMediumNoise    float64 `mapstructure:"snr_medium_noise" yaml:"snr_medium_noise"`
	DistortedFlatness float64 `mapstructure:"distorted_flatness" yaml:"distorted_flatness"`
	DistortedSNR      float64 `mapstructure:"distorted_snr" yaml:"distorted_snr"`
	MuffledSNR        float64 `mapstructure:"muffled_snr" yaml:"muffled_snr"`
	MuffledMFCCStd    float64 `mapstructure:"muffled_mfcc_std" yaml:"muffled_mfcc_std"`

	ReadMaxPauseRate       float64 `mapstructure:"read_max_pause_rate" yaml:"read_max_pause_rate"`
	ReadMaxEnergyVariation float64 `mapstructure:"read_max_energy_variation" yaml:"read_max_energy_variation"`
	ReadMaxAvgPause        float64 `mapstructure:"read_max_avg_pause" yaml:"read_max_avg_pause"`
}

// DefaultThresholds returns the table tuned for typical 16 kHz speech
// recordings.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SNRLowNoise:       25.0,
		SNRMediumNoise:    15.0,
		DistortedFlatness: 0.5,
		DistortedSNR:      10.0,
		MuffledSNR:        20.0,
		MuffledMFCCStd:    10.0,

		ReadMaxPauseRate:       5.0,
		ReadMaxEnergyVariation: 0.05,
		ReadMaxAvgPause:        0.5,
	}
}

// QualityLabels bundles the three independent categorical judgements
// derived from one FeatureSet.
type QualityLabels struct {
	NoiseLevel    string
	SpeechClarity string
	SpeakingStyle string
}

// Classifier maps feature sets to labels. Pure functions, no state
// beyond the threshold table.
type Classifier struct {
	T Thresholds
}

func NewClassifier(t Thresholds) *Classifier { return &Classifier{T: t} }

func (c *Classifier) Classify(fs FeatureSet) QualityLabels {
	return QualityLabels{
		NoiseLevel:    c.NoiseLevel(fs.SNRDB),
		SpeechClarity: c.SpeechClarity(fs),
		SpeakingStyle: c.SpeakingStyle(fs),
	}
}

// NoiseLevel buckets an SNR estimate. Exactly SNRMediumNoise dB is
// medium, not low: the boundary belongs to the lower class.
func (c *Classifier) NoiseLevel(snrDB float64) string {
	switch {
	case snrDB > c.T.SNRLowNoise:
		return NoiseLow
	case snrDB >= c.T.SNRMediumNoise:
		return NoiseMedium
	default:
		return NoiseHigh
	}
}

// SpeechClarity judges distortion before muffling; a flat spectrum or
// very low SNR overrides everything else.
func (c *Classifier) SpeechClarity(fs FeatureSet) string {
	if fs.SpectralFlatness > c.T.DistortedFlatness || fs.SNRDB < c.T.DistortedSNR {
		return ClarityDistorted
	}
	if fs.SNRDB < c.T.MuffledSNR && fs.MFCCStd < c.T.MuffledMFCCStd {
		return ClarityMuffled
	}
	return ClarityClear
}

// SpeakingStyle separates read speech (few short pauses, steady
// energy) from spontaneous speech. Ambiguous recordings default to
// spontaneous; conversational is never inferred here.
func (c *Classifier) SpeakingStyle(fs FeatureSet) string {
	minutes := fs.Duration / 60.0
	var pauseRate float64
	if minutes > 0 {
		pauseRate = float64(fs.PauseCount) / minutes
	}

	if pauseRate < c.T.ReadMaxPauseRate &&
		fs.EnergyVariation < c.T.ReadMaxEnergyVariation &&
		fs.AvgPauseDuration < c.T.ReadMaxAvgPause {
		return StyleRead
	}
	return StyleSpontaneous
}
