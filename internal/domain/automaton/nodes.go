package automaton

import (
	"context"
	"sort"
	"strings"

	"github.com/corey/ackeys/internal/ports"
)

func hasPrefix(s, p string) bool { return strings.HasPrefix(s, p) }

func (e *Engine) isNode(ctx context.Context, s string) (bool, error) {
	return e.store.ZExists(ctx, e.keys.prefix(), s)
}

func (e *Engine) isKeyword(ctx context.Context, s string) (bool, error) {
	return e.store.SIsMember(ctx, e.keys.keywords(), s)
}

// neighborAfter returns the prefix index entry ranked right after s.
// present is false when s itself is not a node.
func (e *Engine) neighborAfter(ctx context.Context, s string) (next string, hasNext, present bool, err error) {
	got, err := ports.Seek(ctx, e.store, e.keys.prefix(), s, 2)
	if err != nil {
		return "", false, false, err
	}
	if len(got) == 0 || got[0] != s {
		return "", false, false, nil
	}
	if len(got) < 2 {
		return "", false, true, nil
	}
	return got[1], true, true, nil
}

// scan visits, in index order, every entry of coll that starts with p,
// provided p itself is an entry. Entries are read in pages of e.batch.
// The callback must not modify coll.
func (e *Engine) scan(ctx context.Context, coll, p string, fn func(string) error) error {
	from := p
	first := true
	for {
		page, err := ports.Seek(ctx, e.store, coll, from, e.batch)
		if err != nil {
			return err
		}
		if first {
			if len(page) == 0 || page[0] != p {
				return nil
			}
			first = false
		}
		for _, s := range page {
			if !strings.HasPrefix(s, p) {
				return nil
			}
			if err := fn(s); err != nil {
				return err
			}
		}
		if len(page) < e.batch {
			return nil
		}
		// Smallest string ordered after the last entry seen.
		from = page[len(page)-1] + "\x00"
	}
}

// fail returns the longest proper suffix of s that is a node, or the root.
func (e *Engine) fail(ctx context.Context, s string) (string, error) {
	for i := range s {
		if i == 0 {
			continue
		}
		ok, err := e.isNode(ctx, s[i:])
		if err != nil {
			return "", err
		}
		if ok {
			return s[i:], nil
		}
	}
	return "", nil
}

func (e *Engine) sortedMembers(ctx context.Context, coll string) ([]string, error) {
	members, err := e.store.SMembers(ctx, coll)
	if err != nil {
		return nil, err
	}
	sort.Strings(members)
	return members, nil
}
