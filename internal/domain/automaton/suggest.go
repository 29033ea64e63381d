package automaton

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

var errLimit = errors.New("limit reached")

// Suggest returns every registered keyword starting with prefix, in ascending
// order. The prefix is case-folded but not trimmed; an empty prefix lists all
// keywords.
func (e *Engine) Suggest(ctx context.Context, prefix string) ([]string, error) {
	return e.SuggestN(ctx, prefix, 0)
}

// SuggestN is Suggest returning at most limit keywords. A limit of zero or
// less means no limit.
func (e *Engine) SuggestN(ctx context.Context, prefix string, limit int) ([]string, error) {
	if !utf8.ValidString(prefix) {
		return nil, fmt.Errorf("%w: prefix is not valid UTF-8", ErrInvalidInput)
	}
	p := fold(prefix)

	var out []string
	err := e.scan(ctx, e.keys.prefix(), p, func(node string) error {
		kw, err := e.isKeyword(ctx, node)
		if err != nil {
			return err
		}
		if !kw {
			return nil
		}
		out = append(out, node)
		if limit > 0 && len(out) >= limit {
			return errLimit
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimit) {
		return nil, err
	}
	return out, nil
}
