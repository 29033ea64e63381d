package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/corey/ackeys/internal/domain/automaton"
	"github.com/corey/ackeys/internal/ports"
)

// ParseKeywords reads one keyword per line. Blank lines and lines starting
// with # are skipped. Keywords are normalized and deduplicated, first
// occurrence wins.
func ParseKeywords(r io.Reader) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		k, err := automaton.Normalize(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, scanner.Err()
}

// ReadKeywordFile parses the keyword file at path.
func ReadKeywordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	keywords, err := ParseKeywords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return keywords, nil
}

// Load adds every keyword, calling progress after each one, and returns the
// registry size afterwards. progress may be nil.
func (a *App) Load(ctx context.Context, keywords []string, progress func(done int)) (int, error) {
	n, err := a.Engine.Info(ctx)
	if err != nil {
		return 0, err
	}
	count := n.Keywords
	for i, k := range keywords {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if count, err = a.Engine.Add(ctx, k); err != nil {
			return count, fmt.Errorf("add %q: %w", k, err)
		}
		if progress != nil {
			progress(i + 1)
		}
	}
	return count, nil
}

// SyncResult describes one Sync.
type SyncResult struct {
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
	Keywords int      `json:"keywords"`
}

// Sync makes the registered keywords equal to want, removing first.
func (a *App) Sync(ctx context.Context, want []string) (SyncResult, error) {
	current, err := a.Engine.Keywords(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	normalized := make([]string, 0, len(want))
	wanted := make(map[string]bool, len(want))
	for _, k := range want {
		k, err := automaton.Normalize(k)
		if err != nil {
			return SyncResult{}, err
		}
		normalized = append(normalized, k)
		wanted[k] = true
	}
	have := make(map[string]bool, len(current))
	for _, k := range current {
		have[k] = true
	}

	var res SyncResult
	res.Keywords = len(current)
	for _, k := range current {
		if wanted[k] {
			continue
		}
		if res.Keywords, err = a.Engine.Remove(ctx, k); err != nil {
			return res, fmt.Errorf("remove %q: %w", k, err)
		}
		res.Removed = append(res.Removed, k)
	}
	for _, k := range normalized {
		if have[k] {
			continue
		}
		have[k] = true
		if res.Keywords, err = a.Engine.Add(ctx, k); err != nil {
			return res, fmt.Errorf("add %q: %w", k, err)
		}
		res.Added = append(res.Added, k)
	}
	return res, nil
}

// SyncFile syncs the registry to the keyword file at path.
func (a *App) SyncFile(ctx context.Context, path string) (SyncResult, error) {
	keywords, err := ReadKeywordFile(path)
	if err != nil {
		return SyncResult{}, err
	}
	return a.Sync(ctx, keywords)
}

// Watch syncs the registry to the keyword file at path now and again after
// every change, until ctx is done. onSync receives each outcome and may be
// nil. A missing file is skipped rather than treated as an empty list, so
// deleting it mid-save never wipes the registry.
func (a *App) Watch(ctx context.Context, path string, w ports.Watcher, onSync func(SyncResult, error)) error {
	trigger := make(chan struct{}, 1)
	poke := func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	}

	if err := w.Watch(path, func(string) { poke() }); err != nil {
		w.Stop()
		return err
	}
	defer w.Stop()

	poke()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			res, err := a.SyncFile(ctx, path)
			if errors.Is(err, fs.ErrNotExist) {
				a.Log.Warn("keyword file missing, skipping sync", "path", path)
				continue
			}
			if err != nil {
				a.Log.Error("sync failed", "path", path, "err", err)
			} else {
				a.Log.Info("synced", "path", path, "added", len(res.Added), "removed", len(res.Removed), "keywords", res.Keywords)
			}
			if onSync != nil {
				onSync(res, err)
			}
		}
	}
}
