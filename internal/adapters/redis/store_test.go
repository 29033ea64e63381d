package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/corey/ackeys/internal/adapters/storetest"
	"github.com/corey/ackeys/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Redis Store Adapter: SET / ZSET over go-redis, exercised against miniredis
// Expectation: conformance with ports.Store; a dead server is ErrUnavailable.
// =============================================================================

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewStore(context.Background(), Options{Addr: mr.Addr(), DialTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ports.Store {
		s, _ := newTestStore(t)
		return s
	})
}

func TestStore_OrderedMembersShareOneScore(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	require.NoError(t, s.ZAdd(ctx, "ac:prefix", "he"))
	got, err := mr.ZScore("ac:prefix", "he")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestStore_NegativeRankIsOutOfRange(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.ZAdd(ctx, "idx", "a"))
	_, ok, err := s.ZAt(ctx, "idx", -1)
	require.NoError(t, err)
	assert.False(t, ok, "must not wrap around like a raw ZRANGE -1 -1")
}

func TestNewStore_UnreachableIsUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewStore(ctx, Options{Addr: addr, DialTimeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrUnavailable), "got %v", err)
}

func TestStore_ServerGoneIsUnavailable(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)
	mr.Close()

	_, err := s.SCard(ctx, "ac:keyword")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrUnavailable), "got %v", err)

	var ue *ports.UnavailableError
	require.True(t, errors.As(err, &ue))
	assert.NotNil(t, errors.Unwrap(err), "driver error is kept")
}
