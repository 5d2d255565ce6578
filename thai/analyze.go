// Package thai derives linguistic labels from ASR transcripts:
// code-switching detection, vocabulary domain classification and
// best-effort text normalization. Everything here works on text only
// and is independent of the audio pipeline.
package thai

import (
	"strings"
	"unicode"
)

// Label values persisted into metadata records.
const (
	CodeSwitching   = "code_switching"
	NoCodeSwitching = "no_code_switching"

	GeneralVocab   = "general_vocab"
	BusinessVocab  = "business_vocab"
	MedicalVocab   = "medical_vocab"
	TechnicalVocab = "technical_vocab"
	MixedVocab     = "mixed_vocab"
)

// Thai script block boundaries (U+0E00..U+0E7F).
const (
	thaiRangeLo = '\u0e00'
	thaiRangeHi = '\u0e7f'
)

// domainWinThreshold is the match count at which a single domain wins
// outright; domainMixThreshold is the per-domain count at which two
// or more domains together classify as mixed vocabulary.
const (
	domainWinThreshold = 3
	domainMixThreshold = 2
)

// Analysis is the full linguistic judgement for one transcript.
type Analysis struct {
	CodeSwitching        string
	VocabularyType       string
	NormalizedText       string
	NormalizationApplied bool
	NormalizationNotes   string
}

// Analyzer classifies transcripts. CodeSwitchPct is the minimum
// non-Thai character percentage treated as genuine code-switching
// rather than transcription noise.
type Analyzer struct {
	CodeSwitchPct float64
	Lexicon       Lexicon
}

func NewAnalyzer(codeSwitchPct float64, lex Lexicon) *Analyzer {
	if codeSwitchPct <= 0 {
		codeSwitchPct = 5.0
	}
	return &Analyzer{CodeSwitchPct: codeSwitchPct, Lexicon: lex}
}

// Analyze runs all text heuristics over one transcript.
func (a *Analyzer) Analyze(text string) *Analysis {
	normalized, applied := Normalize(text)
	return &Analysis{
		CodeSwitching:        a.DetectCodeSwitching(text),
		VocabularyType:       a.VocabularyType(text),
		NormalizedText:       normalized,
		NormalizationApplied: applied,
		NormalizationNotes:   NormalizationNotes(text, normalized),
	}
}

// DetectCodeSwitching compares Thai script characters against Latin
// letters. A single embedded foreign word flips the label once its
// characters exceed the configured percentage of all alphabetic
// characters.
func (a *Analyzer) DetectCodeSwitching(text string) string {
	var thaiCount, latinCount int
	for _, r := range text {
		switch {
		case r >= thaiRangeLo && r <= thaiRangeHi:
			thaiCount++
		case isLatinLetter(r):
			latinCount++
		}
	}
	total := thaiCount + latinCount
	if total == 0 {
		return NoCodeSwitching
	}
	if float64(latinCount)/float64(total)*100.0 < a.CodeSwitchPct {
		return NoCodeSwitching
	}
	return CodeSwitching
}

func isLatinLetter(r rune) bool {
	lower := unicode.ToLower(r)
	return lower >= 'a' && lower <= 'z'
}

// VocabularyType counts case-folded keyword occurrences per domain.
// A domain with at least domainWinThreshold matches wins, ties broken
// medical > technical > business; otherwise two domains at
// domainMixThreshold each make mixed vocabulary.
func (a *Analyzer) VocabularyType(text string) string {
	if text == "" {
		return GeneralVocab
	}
	lower := strings.ToLower(text)

	business := countKeywords(lower, a.Lexicon.Business)
	medical := countKeywords(lower, a.Lexicon.Medical)
	technical := countKeywords(lower, a.Lexicon.Technical)

	max := business
	if medical > max {
		max = medical
	}
	if technical > max {
		max = technical
	}

	if max >= domainWinThreshold {
		switch {
		case medical == max:
			return MedicalVocab
		case technical == max:
			return TechnicalVocab
		default:
			return BusinessVocab
		}
	}

	present := 0
	for _, n := range []int{business, medical, technical} {
		if n >= domainMixThreshold {
			present++
		}
	}
	if present >= 2 {
		return MixedVocab
	}
	return GeneralVocab
}

func countKeywords(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}
