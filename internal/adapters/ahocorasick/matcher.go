// Package ahocorasick provides multi-pattern string matching using an Aho-Corasick automaton.
// It wraps the petar-dambovaliev/aho-corasick library for O(n + m + z) matching and
// serves as the in-memory reference the store-backed automaton is verified against.
package ahocorasick

import (
	"errors"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/corey/ackeys/internal/ports"
)

// ErrEmptyKeyword is returned by Build for an empty pattern, which would match
// at every position.
var ErrEmptyKeyword = errors.New("empty keyword")

// Matcher implements ports.PatternMatcher on a static automaton.
// Build() compiles an automaton; Match() returns matching keywords.
type Matcher struct {
	automaton aho.AhoCorasick
	keywords  []string
	built     bool
}

// NewMatcher builds a matcher over keywords.
func NewMatcher(keywords []string) (*Matcher, error) {
	m := &Matcher{}
	if err := m.Build(keywords); err != nil {
		return nil, err
	}
	return m, nil
}

// Build compiles the Aho-Corasick automaton from the given keywords.
func (m *Matcher) Build(keywords []string) error {
	for _, k := range keywords {
		if k == "" {
			return ErrEmptyKeyword
		}
	}
	m.keywords = make([]string, len(keywords))
	copy(m.keywords, keywords)

	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		MatchKind: aho.StandardMatch, // overlapping iteration requires it
		DFA:       true,
	})
	m.automaton = builder.Build(m.keywords)
	m.built = true
	return nil
}

// Occurrence is a keyword match with byte offsets, End exclusive.
type Occurrence struct {
	Keyword string
	Start   int
	End     int
}

// Scan returns every occurrence of every keyword in content, overlapping
// matches included, in the order the automaton reports them.
func (m *Matcher) Scan(content string) []Occurrence {
	if !m.built || len(m.keywords) == 0 {
		return nil
	}
	iter := m.automaton.IterOverlapping(content)
	var out []Occurrence
	for next := iter.Next(); next != nil; next = iter.Next() {
		hit := *next
		out = append(out, Occurrence{
			Keyword: m.keywords[hit.Pattern()],
			Start:   hit.Start(),
			End:     hit.End(),
		})
	}
	return out
}

// Match returns all keywords found in content.
func (m *Matcher) Match(content string) []string {
	occ := m.Scan(content)
	if len(occ) == 0 {
		return nil
	}

	// Deduplicate by keyword
	seen := make(map[string]bool, len(occ))
	var result []string
	for _, o := range occ {
		if !seen[o.Keyword] {
			seen[o.Keyword] = true
			result = append(result, o.Keyword)
		}
	}
	return result
}

// Count returns how many times each keyword occurs in content.
func (m *Matcher) Count(content string) map[string]int {
	counts := make(map[string]int)
	for _, o := range m.Scan(content) {
		counts[o.Keyword]++
	}
	return counts
}

// Rebuild replaces the automaton with a new set of keywords.
func (m *Matcher) Rebuild(keywords []string) error {
	return m.Build(keywords)
}

// PatternCount returns the number of patterns in the automaton.
func (m *Matcher) PatternCount() int {
	return len(m.keywords)
}

var _ ports.PatternMatcher = (*Matcher)(nil)
