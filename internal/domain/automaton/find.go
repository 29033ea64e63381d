package automaton

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// Match is one keyword occurrence. Start and End are rune offsets into the
// scanned text, End exclusive.
type Match struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Start   int    `json:"start" yaml:"start"`
	End     int    `json:"end" yaml:"end"`
}

// FindOption adjusts a scan.
type FindOption func(*findConfig)

type findConfig struct {
	fold bool
}

// FoldText case-folds the text before scanning, the same way keywords are
// folded when added. Offsets then refer to the folded text.
func FoldText() FindOption {
	return func(c *findConfig) { c.fold = true }
}

// Find scans text and returns every keyword occurrence in scan order. A
// keyword occurring n times is returned n times. Text is matched as given
// unless FoldText is passed.
func (e *Engine) Find(ctx context.Context, text string, opts ...FindOption) ([]string, error) {
	matches, err := e.FindMatches(ctx, text, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Keyword
	}
	return out, nil
}

// FindMatches is Find with positions. Keywords recognized at the same position
// are ordered lexicographically.
func (e *Engine) FindMatches(ctx context.Context, text string, opts ...FindOption) ([]Match, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", ErrInvalidInput)
	}
	var cfg findConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.fold {
		text = fold(text)
	}

	var matches []Match
	emit := func(state string, end int) error {
		outs, err := e.sortedMembers(ctx, e.keys.output(state))
		if err != nil {
			return err
		}
		for _, k := range outs {
			matches = append(matches, Match{Keyword: k, Start: end - utf8.RuneCountInString(k), End: end})
		}
		return nil
	}

	state := ""
	pos := 0
	for _, c := range text {
		next, err := e.step(ctx, state, c)
		if err != nil {
			return nil, err
		}
		if err := emit(state, pos); err != nil {
			return nil, err
		}
		state = next
		pos++
	}
	if err := emit(state, pos); err != nil {
		return nil, err
	}
	return matches, nil
}

// step is the goto function: extend state by c, or fall back once through the
// failure link and then to the failure of whatever that spells.
func (e *Engine) step(ctx context.Context, state string, c rune) (string, error) {
	next := state + string(c)
	ok, err := e.isNode(ctx, next)
	if err != nil || ok {
		return next, err
	}
	f, err := e.fail(ctx, state)
	if err != nil {
		return "", err
	}
	next = f + string(c)
	ok, err = e.isNode(ctx, next)
	if err != nil || ok {
		return next, err
	}
	return e.fail(ctx, next)
}
