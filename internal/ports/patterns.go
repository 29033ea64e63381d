package ports

// PatternMatcher finds keywords in content using a static, fully built
// Aho-Corasick automaton. A single pass over the content finds all matching
// keywords simultaneously. It has none of the incremental machinery of the
// store-backed engine, which makes it a reference to check that engine against.
//
// The matcher must be rebuilt when the keyword set changes.
type PatternMatcher interface {
	// Match returns every distinct keyword occurring in content, in order of
	// first occurrence. Returns nil if nothing matches. Content is matched
	// as-is (caller normalizes case).
	Match(content string) []string

	// Rebuild replaces the entire keyword set and reconstructs the automaton.
	// Previous keywords are discarded. Returns an error if the keyword set is
	// invalid (e.g., empty keyword string).
	Rebuild(keywords []string) error
}
