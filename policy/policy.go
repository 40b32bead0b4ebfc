// Package policy decides whether an ad body may be published as is, must be blocked, or
// needs a human look. Evaluation is a pure function of the body and the configured word
// lists.
package policy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/theConCreator/OnyxShopbot/normalize"
)

// VerdictKind is the decision of the engine.
type VerdictKind int

const (
	Allow VerdictKind = iota
	Block
	NeedsReview
)

func (k VerdictKind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Block:
		return "block"
	case NeedsReview:
		return "needs-review"
	default:
		return "unknown"
	}
}

const (
	ReasonLength           = "length"
	ReasonForbiddenTerm    = "forbidden-term"
	ReasonIllegalCharacter = "illegal-character"
	ReasonMissingKeyword   = "missing-keyword"
)

// Verdict is returned by Evaluate. Groups holds the tags of the required-term groups that
// matched, ordered by where they first occur in the body.
type Verdict struct {
	Kind   VerdictKind
	Reason string
	Groups []string
}

// MissingKeywordAction selects what happens to a body that matches no required group.
type MissingKeywordAction string

const (
	ActionReview MissingKeywordAction = "review"
	ActionBlock  MissingKeywordAction = "block"
)

// Group is a set of synonymous terms. Tag names the group in captions.
type Group struct {
	Tag   string
	Terms []string
}

type Rules struct {
	ForbiddenTerms []string
	RequiredGroups []Group
	// MaxLength is measured in characters of the raw body.
	MaxLength int
	// AllowedCharacters, when not empty, lists every character a raw body may contain.
	// Whitespace is always allowed.
	AllowedCharacters string
	MissingKeyword    MissingKeywordAction
}

// Engine is immutable after New and safe for concurrent use.
type Engine struct {
	norm      *normalize.Normalizer
	forbidden []string
	groups    []Group
	maxLength int
	allowed   map[rune]struct{}
	missing   MissingKeywordAction
}

func New(rules Rules, norm *normalize.Normalizer) (*Engine, error) {
	if norm == nil {
		norm = normalize.Default
	}
	if rules.MaxLength <= 0 {
		return nil, fmt.Errorf("max length must be positive (got %d)", rules.MaxLength)
	}

	e := &Engine{
		norm:      norm,
		forbidden: normalizeTerms(norm, rules.ForbiddenTerms),
		maxLength: rules.MaxLength,
	}

	switch rules.MissingKeyword {
	case ActionReview, ActionBlock:
		e.missing = rules.MissingKeyword
	case "":
		e.missing = ActionReview
	default:
		return nil, fmt.Errorf("unknown missing keyword action %q", rules.MissingKeyword)
	}

	for _, g := range rules.RequiredGroups {
		if g.Tag == "" {
			return nil, errors.New("required group without tag")
		}
		terms := normalizeTerms(norm, g.Terms)
		if len(terms) == 0 {
			return nil, fmt.Errorf("required group %q has no terms", g.Tag)
		}
		e.groups = append(e.groups, Group{Tag: g.Tag, Terms: terms})
	}

	if rules.AllowedCharacters != "" {
		e.allowed = make(map[rune]struct{})
		for _, r := range rules.AllowedCharacters {
			e.allowed[r] = struct{}{}
		}
	}
	return e, nil
}

func normalizeTerms(norm *normalize.Normalizer, terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(norm.Normalize(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Evaluate runs the rules in order: length, forbidden terms, allowed characters, required
// keywords. A forbidden term blocks even when required keywords are present.
func (e *Engine) Evaluate(body string) Verdict {
	if utf8.RuneCountInString(body) > e.maxLength {
		return Verdict{Kind: Block, Reason: ReasonLength}
	}

	text := e.norm.Normalize(body)

	// substring match on purpose: terms also hit inside longer words
	for _, term := range e.forbidden {
		if strings.Contains(text, term) {
			return Verdict{Kind: Block, Reason: ReasonForbiddenTerm}
		}
	}

	if e.allowed != nil {
		for _, r := range body {
			if unicode.IsSpace(r) {
				continue
			}
			if _, ok := e.allowed[r]; !ok {
				return Verdict{Kind: Block, Reason: ReasonIllegalCharacter}
			}
		}
	}

	groups := e.MatchGroups(text)
	if len(groups) == 0 {
		if e.missing == ActionBlock {
			return Verdict{Kind: Block, Reason: ReasonMissingKeyword}
		}
		return Verdict{Kind: NeedsReview, Reason: ReasonMissingKeyword}
	}
	return Verdict{Kind: Allow, Groups: groups}
}

// MatchGroups returns the tags of the groups with a term inside the already normalized
// text, ordered by first occurrence. Ties keep configuration order.
func (e *Engine) MatchGroups(text string) []string {
	type hit struct {
		tag   string
		pos   int
		order int
	}
	var hits []hit
	seen := make(map[string]bool)
	for i, g := range e.groups {
		pos := -1
		for _, term := range g.Terms {
			if idx := strings.Index(text, term); idx >= 0 && (pos < 0 || idx < pos) {
				pos = idx
			}
		}
		if pos < 0 || seen[g.Tag] {
			continue
		}
		seen[g.Tag] = true
		hits = append(hits, hit{tag: g.Tag, pos: pos, order: i})
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].pos != hits[b].pos {
			return hits[a].pos < hits[b].pos
		}
		return hits[a].order < hits[b].order
	})

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.tag)
	}
	return out
}
