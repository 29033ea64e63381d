package automaton

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/corey/ackeys/internal/ports"
)

// Problem is one inconsistency found by Verify.
type Problem struct {
	Kind    string `json:"kind" yaml:"kind"`
	Subject string `json:"subject" yaml:"subject"`
	Detail  string `json:"detail" yaml:"detail"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s %q: %s", p.Kind, p.Subject, p.Detail)
}

// Problem kinds.
const (
	ProblemOrphan  = "orphan"  // node whose parent is not a node
	ProblemSuffix  = "suffix"  // prefix and suffix index disagree
	ProblemKeyword = "keyword" // registered keyword that is not a node
	ProblemOutput  = "output"  // stored output set differs from the derived one
	ProblemFind    = "find"    // scan result differs from the reference matcher
)

// Report is the result of Verify.
type Report struct {
	Keywords int       `json:"keywords" yaml:"keywords"`
	Nodes    int       `json:"nodes" yaml:"nodes"`
	Texts    int       `json:"texts" yaml:"texts"`
	Problems []Problem `json:"problems" yaml:"problems"`
}

// OK reports whether no problem was found.
func (r *Report) OK() bool { return len(r.Problems) == 0 }

func (r *Report) add(kind, subject, format string, args ...any) {
	r.Problems = append(r.Problems, Problem{Kind: kind, Subject: subject, Detail: fmt.Sprintf(format, args...)})
}

// Verify checks the stored automaton for structural consistency and, when a
// reference matcher is given, compares the keywords found in each text
// against it. Store errors abort the check; inconsistencies are reported.
func (e *Engine) Verify(ctx context.Context, ref ports.PatternMatcher, texts ...string) (*Report, error) {
	snap, err := e.Dump(ctx)
	if err != nil {
		return nil, err
	}
	r := &Report{Keywords: len(snap.Keywords), Nodes: len(snap.Nodes), Texts: len(texts)}

	nodes := make(map[string]bool, len(snap.Nodes))
	for _, n := range snap.Nodes {
		nodes[n] = true
	}
	keywords := make(map[string]bool, len(snap.Keywords))
	for _, k := range snap.Keywords {
		keywords[k] = true
	}

	if !nodes[""] {
		r.add(ProblemOrphan, "", "root is missing")
	}
	suffixes := make(map[string]bool, len(snap.Suffixes))
	for _, s := range snap.Suffixes {
		suffixes[s] = true
		if !nodes[reverse(s)] {
			r.add(ProblemSuffix, reverse(s), "in suffix index but not a node")
		}
	}
	for _, n := range snap.Nodes {
		if n == "" {
			continue
		}
		if !nodes[parent(n)] {
			r.add(ProblemOrphan, n, "parent %q is not a node", parent(n))
		}
		if !suffixes[reverse(n)] {
			r.add(ProblemSuffix, n, "node missing from suffix index")
		}
		want := derivedOutput(n, keywords)
		if got := snap.Outputs[n]; !slices.Equal(got, want) {
			r.add(ProblemOutput, n, "stored %v, want %v", got, want)
		}
	}
	for _, k := range snap.Keywords {
		if !nodes[k] {
			r.add(ProblemKeyword, k, "registered but not a node")
		}
	}

	if ref == nil || len(texts) == 0 {
		return r, nil
	}
	if err := ref.Rebuild(snap.Keywords); err != nil {
		return nil, fmt.Errorf("build reference matcher: %w", err)
	}
	for _, text := range texts {
		found, err := e.Find(ctx, text)
		if err != nil {
			return nil, err
		}
		got := distinct(found)
		want := distinct(ref.Match(text))
		if !slices.Equal(got, want) {
			r.add(ProblemFind, text, "found %v, reference found %v", got, want)
		}
	}
	return r, nil
}

// derivedOutput lists the keywords that are suffixes of node.
func derivedOutput(node string, keywords map[string]bool) []string {
	var out []string
	for i := range node {
		if keywords[node[i:]] {
			out = append(out, node[i:])
		}
	}
	sort.Strings(out)
	return out
}

func distinct(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
