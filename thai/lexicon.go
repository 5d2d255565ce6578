package thai

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon holds the domain keyword lists used for vocabulary
// classification. Matching is case-folded substring matching, so
// keywords should be lowercase.
type Lexicon struct {
	Business  []string `yaml:"business"`
	Medical   []string `yaml:"medical"`
	Technical []string `yaml:"technical"`
}

// DefaultLexicon returns the built-in Thai/English keyword lists.
// These are deliberately partial; domain-specific deployments can
// replace them via LoadLexicon.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Business: []string{
			"roi", "stakeholder", "revenue", "profit", "ผลกำไร", "รายได้",
			"ธุรกิจ", "การตลาด", "ลงทุน", "หุ้น", "บริษัท", "กำไร",
		},
		Medical: []string{
			"patient", "doctor", "hospital", "ผู้ป่วย", "แพทย์", "โรงพยาบาล",
			"อาการ", "การรักษา", "โรค", "ยา", "การวินิจฉัย", "myocardial",
		},
		Technical: []string{
			"database", "server", "code", "algorithm", "deploy", "api",
			"โปรแกรม", "ระบบ", "เซิร์ฟเวอร์", "คอมพิวเตอร์", "software", "hardware",
		},
	}
}

// LoadLexicon reads keyword lists from a YAML file. Empty lists fall
// back to the built-in defaults so a partial file stays usable.
func LoadLexicon(path string) (Lexicon, error) {
	def := DefaultLexicon()
	data, err := os.ReadFile(path)
	if err != nil {
		return def, fmt.Errorf("read lexicon: %w", err)
	}
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return def, fmt.Errorf("parse lexicon: %w", err)
	}
	if len(lex.Business) == 0 {
		lex.Business = def.Business
	}
	if len(lex.Medical) == 0 {
		lex.Medical = def.Medical
	}
	if len(lex.Technical) == 0 {
		lex.Technical = def.Technical
	}
	return lex, nil
}
