package bbolt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/corey/ackeys/internal/adapters/storetest"
	"github.com/corey/ackeys/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

// =============================================================================
// bbolt Store Adapter: sets and ordered indexes as nested buckets
// Expectation: conformance with ports.Store, durable across restarts,
// lock contention surfaces as ErrUnavailable instead of hanging.
// =============================================================================

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewStore(path, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ports.Store {
		s, _ := newTestStore(t)
		return s
	})
}

func TestStore_StateSurvivesRestart(t *testing.T) {
	// Write sets and an ordered index, close, reopen. Everything committed
	// before Close is still there, in order.
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "restart.db")

	store1, err := NewStore(path, time.Second)
	require.NoError(t, err)
	_, err = store1.SAdd(ctx, "ac:keyword", "he", "she")
	require.NoError(t, err)
	for _, m := range []string{"", "h", "he", "s", "sh", "she"} {
		require.NoError(t, store1.ZAdd(ctx, "ac:prefix", m))
	}
	require.NoError(t, store1.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	store2, err := NewStore(path, time.Second)
	require.NoError(t, err)
	defer store2.Close()

	members, err := store2.SMembers(ctx, "ac:keyword")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"he", "she"}, members)

	all, err := store2.ZRange(ctx, "ac:prefix", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "h", "he", "s", "sh", "she"}, all)
}

func TestStore_EmptiedCollectionIsDropped(t *testing.T) {
	// Redis deletes a key when its last member goes; bbolt must match so
	// removed automaton state leaves nothing behind.
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.SAdd(ctx, "ac:output:he", "he")
	require.NoError(t, err)
	_, err = store.SRem(ctx, "ac:output:he", "he")
	require.NoError(t, err)

	err = store.db.View(func(tx *bolt.Tx) error {
		assert.Nil(t, tx.Bucket(bucketSets).Bucket([]byte("ac:output:he")))
		return nil
	})
	require.NoError(t, err)
}

func TestStore_ConcurrentReads(t *testing.T) {
	// bbolt supports concurrent readers, single writer.
	ctx := context.Background()
	store, _ := newTestStore(t)
	for i := 0; i < 50; i++ {
		require.NoError(t, store.ZAdd(ctx, "idx", fmt.Sprintf("k%02d", i)))
	}

	var wg sync.WaitGroup
	errs := make(chan error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rank, ok, err := store.ZRank(ctx, "idx", fmt.Sprintf("k%02d", i*5))
			if err != nil {
				errs <- err
				return
			}
			if !ok || rank != i*5 {
				errs <- fmt.Errorf("rank of k%02d = %d, %v", i*5, rank, ok)
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent read error: %v", err)
	}
}

func TestStore_SizeAndPath(t *testing.T) {
	store, path := newTestStore(t)
	assert.Equal(t, path, store.Path())
	size, err := store.Size()
	require.NoError(t, err)
	assert.Greater(t, size, int64(0))
}

func TestStore_ClosedIsUnavailable(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "closed.db"), time.Second)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.SCard(ctx, "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrUnavailable), "got %v", err)
}

// =============================================================================
// Lock contention tests: verify the timeout prevents hangs
// =============================================================================

func TestStore_OpenTimeout_DoesNotHang(t *testing.T) {
	// When another process/goroutine holds the bbolt exclusive lock,
	// a second open should time out, not hang forever.
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	store1, err := NewStore(path, time.Second)
	require.NoError(t, err)
	defer store1.Close()

	start := time.Now()
	store2, err := NewStore(path, 200*time.Millisecond)
	elapsed := time.Since(start)

	require.Error(t, err, "second open should fail with lock timeout")
	assert.Nil(t, store2, "store should be nil on timeout")
	assert.True(t, errors.Is(err, ports.ErrUnavailable), "lock timeout is an unavailable store")
	assert.Less(t, elapsed, 3*time.Second, "should complete within 3s, not hang")
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond, "should wait for the configured timeout")
}

func TestStore_OpenTimeout_ErrorMessage(t *testing.T) {
	// The error message should be useful for diagnosis, wrapped with context.
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	store1, err := NewStore(path, time.Second)
	require.NoError(t, err)
	defer store1.Close()

	_, err = NewStore(path, 100*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bbolt open")
	assert.Contains(t, err.Error(), "timeout")
}

func TestStore_OpenAfterClose_Succeeds(t *testing.T) {
	// After the lock holder closes, a new open should succeed immediately.
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "released.db")

	store1, err := NewStore(path, time.Second)
	require.NoError(t, err)
	require.NoError(t, store1.ZAdd(ctx, "idx", "a"))
	store1.Close()

	start := time.Now()
	store2, err := NewStore(path, time.Second)
	elapsed := time.Since(start)

	require.NoError(t, err, "open after close should succeed")
	require.NotNil(t, store2)
	defer store2.Close()
	assert.Less(t, elapsed, 500*time.Millisecond, "should open instantly after lock released")

	ok, err := store2.ZExists(ctx, "idx", "a")
	require.NoError(t, err)
	assert.True(t, ok)
}
