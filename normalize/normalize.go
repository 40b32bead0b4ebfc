// Package normalize canonicalizes free-form text so that keyword lists only need to be
// authored once: case folding, removal of diacritics, and an optional rune
// transliteration table (for example Latin look-alikes mapped onto Cyrillic).
package normalize

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ErrInvalidTable = errors.New("invalid transliteration table")

// Normalizer is safe for concurrent use.
type Normalizer struct {
	table map[rune]rune
}

// Default has no transliteration table.
var Default = &Normalizer{}

// New validates the table and returns a Normalizer. Keys and values must be single
// characters; both are folded and stripped of marks first. A value may not also appear
// as a key, otherwise normalizing twice would give a different result.
func New(table map[string]string) (*Normalizer, error) {
	n := &Normalizer{table: make(map[rune]rune, len(table))}
	for from, to := range table {
		f, err := singleRune(from)
		if err != nil {
			return nil, err
		}
		t, err := singleRune(to)
		if err != nil {
			return nil, err
		}
		if f != t {
			n.table[f] = t
		}
	}
	for from, to := range n.table {
		if _, ok := n.table[to]; ok {
			return nil, fmt.Errorf("%w: %q maps to %q which is itself mapped", ErrInvalidTable, from, to)
		}
	}
	return n, nil
}

func singleRune(s string) (rune, error) {
	b := base(s)
	if utf8.RuneCountInString(b) != 1 {
		return 0, fmt.Errorf("%w: %q is not a single character", ErrInvalidTable, s)
	}
	r, _ := utf8.DecodeRuneInString(b)
	return r, nil
}

// Normalize returns the canonical form of text. It never fails and is idempotent.
func (n *Normalizer) Normalize(text string) string {
	out := base(text)
	if len(n.table) == 0 {
		return out
	}
	return strings.Map(func(r rune) rune {
		if t, ok := n.table[r]; ok {
			return t
		}
		return r
	}, out)
}

func base(text string) string {
	// transformers carry state, so the chain is built per call
	chain := transform.Chain(cases.Fold(), norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(chain, text)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		return strings.ToLower(text)
	}
	return out
}
