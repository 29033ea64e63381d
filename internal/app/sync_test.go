package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/ackeys/internal/adapters/fsnotify"
	"github.com/corey/ackeys/internal/config"
	"github.com/corey/ackeys/internal/domain/automaton"
)

func TestParseKeywords(t *testing.T) {
	in := `# greetings
he
  She

hers
HE
# trailing comment
`
	got, err := ParseKeywords(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"he", "she", "hers"}, got)
}

func TestParseKeywords_InvalidLine(t *testing.T) {
	_, err := ParseKeywords(strings.NewReader("ok\nbad \xff\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, automaton.ErrInvalidInput)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadKeywordFile_Missing(t *testing.T) {
	_, err := ReadKeywordFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApp_Load(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, config.BackendMemory)

	var calls []int
	n, err := a.Load(ctx, []string{"he", "she", "he"}, func(done int) {
		calls = append(calls, done)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{1, 2, 3}, calls)

	n, err = a.Load(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "empty load reports the current size")
}

func TestApp_Sync(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, config.BackendMemory)
	_, err := a.Load(ctx, []string{"he", "she", "his"}, nil)
	require.NoError(t, err)

	res, err := a.Sync(ctx, []string{"she", "hers", "HE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"his"}, res.Removed)
	assert.Equal(t, []string{"hers"}, res.Added)
	assert.Equal(t, 3, res.Keywords)

	kws, err := a.Engine.Keywords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"he", "hers", "she"}, kws)

	report, err := a.Engine.Verify(ctx, nil)
	require.NoError(t, err)
	assert.True(t, report.OK(), "%v", report.Problems)

	// Already in sync: nothing to do.
	res, err = a.Sync(ctx, []string{"he", "hers", "she"})
	require.NoError(t, err)
	assert.Empty(t, res.Added)
	assert.Empty(t, res.Removed)
	assert.Equal(t, 3, res.Keywords)
}

func TestApp_Sync_InvalidKeyword(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, config.BackendMemory)
	_, err := a.Load(ctx, []string{"he"}, nil)
	require.NoError(t, err)

	_, err = a.Sync(ctx, []string{"she", "  ", "hers"})
	assert.ErrorIs(t, err, automaton.ErrInvalidInput)

	kws, err := a.Engine.Keywords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"he"}, kws, "a rejected list changes nothing")
}

func TestApp_Sync_FoldsDuplicates(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, config.BackendMemory)

	res, err := a.Sync(ctx, []string{"He", " he ", "SHE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"he", "she"}, res.Added)
	assert.Equal(t, 2, res.Keywords)
}

func TestApp_Watch(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "keywords.txt")
	require.NoError(t, os.WriteFile(file, []byte("he\nshe\n"), 0644))

	a := newTestApp(t, config.BackendMemory)
	w, err := fsnotify.NewWatcher(20 * time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan SyncResult, 10)
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, file, w, func(res SyncResult, err error) {
			if err == nil {
				results <- res
			}
		})
	}()

	// Initial sync.
	select {
	case res := <-results:
		assert.ElementsMatch(t, []string{"he", "she"}, res.Added)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial sync")
	}

	require.NoError(t, os.WriteFile(file, []byte("she\nhers\n"), 0644))
	select {
	case res := <-results:
		assert.Equal(t, []string{"he"}, res.Removed)
		assert.Equal(t, []string{"hers"}, res.Added)
	case <-time.After(2 * time.Second):
		t.Fatal("no sync after change")
	}

	found, err := a.Engine.Find(context.Background(), "ushers")
	require.NoError(t, err)
	assert.Equal(t, []string{"she", "hers"}, found)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}
