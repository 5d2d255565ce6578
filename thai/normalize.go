package thai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes a transcript: Unicode NFC composition,
// zero-width character removal and whitespace collapsing. It never
// fails; the worst case is returning the input unchanged. The second
// result reports whether anything changed.
func Normalize(text string) (string, bool) {
	if text == "" {
		return text, false
	}

	out := norm.NFC.String(text)
	out = strings.Map(dropZeroWidth, out)
	out = strings.Join(strings.Fields(out), " ")
	return out, out != text
}

func dropZeroWidth(r rune) rune {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\ufeff':
		return -1
	}
	return r
}

// NormalizationNotes describes what normalization changed, in terms a
// human reviewer can verify against the original transcript.
func NormalizationNotes(original, normalized string) string {
	if original == normalized {
		return "No changes made - text is already in standard form"
	}

	var notes []string
	origLen := utf8.RuneCountInString(original)
	normLen := utf8.RuneCountInString(normalized)
	if origLen != normLen {
		notes = append(notes, fmt.Sprintf("Length changed: %d -> %d characters", origLen, normLen))
	}
	if strings.ContainsAny(original, "0123456789๐๑๒๓๔๕๖๗๘๙") {
		notes = append(notes, "Numbers may have been normalized")
	}
	if strings.Contains(original, "  ") || strings.ContainsAny(original, "\n\t") {
		notes = append(notes, "Whitespace standardized")
	}
	if strings.ContainsRune(original, '\u200b') {
		notes = append(notes, "Zero-width spaces removed")
	}
	if len(notes) == 0 {
		notes = append(notes, "Minor character standardization applied")
	}
	return strings.Join(notes, "; ")
}
