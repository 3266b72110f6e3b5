package tokenizer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Tokenizer extracts word tokens from raw text and drops reserved words.
// Matching is case-sensitive and performs no stemming or folding.
type Tokenizer struct {
	tokenPattern *regexp.Regexp
	reserved     map[string]struct{}
}

// New creates a tokenizer that filters the given reserved words.
func New(reserved []string) *Tokenizer {
	m := make(map[string]struct{}, len(reserved))
	for _, w := range reserved {
		if w == "" {
			continue
		}
		m[w] = struct{}{}
	}
	return &Tokenizer{
		tokenPattern: regexp.MustCompile(`[A-Za-z0-9_]+`),
		reserved:     m,
	}
}

// FromConfig builds a tokenizer from a preset name plus extra words.
func FromConfig(preset string, extra []string) (*Tokenizer, error) {
	words, err := Preset(preset)
	if err != nil {
		return nil, err
	}
	return New(append(words, extra...)), nil
}

// Tokenize returns every non-reserved word in text, in order of appearance.
func (t *Tokenizer) Tokenize(text string) []string {
	raw := t.tokenPattern.FindAllString(text, -1)
	if len(raw) == 0 {
		return []string{}
	}
	out := raw[:0]
	for _, tok := range raw {
		if _, ok := t.reserved[tok]; ok {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// IsReserved reports whether word is filtered by this tokenizer.
func (t *Tokenizer) IsReserved(word string) bool {
	_, ok := t.reserved[word]
	return ok
}

// Reserved returns the filtered words in sorted order.
func (t *Tokenizer) Reserved() []string {
	out := make([]string, 0, len(t.reserved))
	for w := range t.reserved {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Preset names accepted by Preset.
const (
	PresetPython  = "python"
	PresetPython3 = "python3"
	PresetGo      = "go"
	PresetNone    = "none"
)

// Preset returns a copy of a named reserved-word list.
// An empty name selects the python list, which is the Python 2 keyword set
// and so still filters print and exec.
func Preset(name string) ([]string, error) {
	var words []string
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PresetPython, "":
		words = pythonKeywords
	case PresetPython3:
		words = python3Keywords
	case PresetGo:
		words = goKeywords
	case PresetNone:
		return []string{}, nil
	default:
		return nil, fmt.Errorf("unknown reserved word preset %q", name)
	}
	return append([]string(nil), words...), nil
}

var pythonKeywords = []string{
	"and", "as", "assert", "break", "class", "continue", "def", "del", "elif", "else", "except", "exec", "finally", "for", "from", "global", "if", "import", "in", "is", "lambda", "not", "or", "pass", "print", "raise", "return", "try", "while", "with", "yield",
}

var python3Keywords = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await", "break", "class", "continue", "def", "del", "elif", "else", "except", "finally", "for", "from", "global", "if", "import", "in", "is", "lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try", "while", "with", "yield",
}

var goKeywords = []string{
	"break", "case", "chan", "const", "continue", "default", "defer", "else", "fallthrough", "for", "func", "go", "goto", "if", "import", "interface", "map", "package", "range", "return", "select", "struct", "switch", "type", "var",
}
