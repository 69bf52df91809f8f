package valueobjects

import (
	"strings"
	"unicode/utf16"

	"voidstate/domain/config"
	pkgerrors "voidstate/pkg/errors"
)

// Validation codes carried by rejected thoughts
const (
	CodeThoughtTooBrief = "THOUGHT_TOO_BRIEF"
	CodeThoughtTooLong  = "THOUGHT_TOO_LONG"
)

// Thought is a validated, trimmed piece of user text.
type Thought struct {
	text string
}

// NewThoughtWithConfig trims raw and checks its length against the
// configured bounds (both inclusive). A nil cfg uses the defaults. Length is measured in UTF-16 code
// units, the way browsers measure text, so a character outside the Basic
// Multilingual Plane counts twice.
func NewThoughtWithConfig(raw string, cfg *config.DomainConfig) (Thought, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	text := strings.TrimSpace(raw)
	length := TextLength(text)

	if length < cfg.MinThoughtLength {
		return Thought{}, pkgerrors.NewValidationError("thought too brief").
			WithCode(CodeThoughtTooBrief).
			WithDetails(map[string]interface{}{"length": length, "min": cfg.MinThoughtLength})
	}
	if length > cfg.MaxThoughtLength {
		return Thought{}, pkgerrors.NewValidationError("thought too long").
			WithCode(CodeThoughtTooLong).
			WithDetails(map[string]interface{}{"length": length, "max": cfg.MaxThoughtLength})
	}

	return Thought{text: text}, nil
}

// TextLength returns the length of s in UTF-16 code units
func TextLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// Text returns the trimmed text
func (t Thought) Text() string {
	return t.text
}

// Len returns the length in UTF-16 code units
func (t Thought) Len() int {
	return TextLength(t.text)
}

// Words returns the whitespace-separated words of the thought
func (t Thought) Words() []string {
	return strings.Fields(t.text)
}

// String implements fmt.Stringer
func (t Thought) String() string {
	return t.text
}
