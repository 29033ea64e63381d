// Package storetest is a conformance suite for ports.Store implementations.
// Every adapter runs it from its own tests:
//
//	func TestConformance(t *testing.T) {
//		storetest.Run(t, func(t *testing.T) ports.Store { return newTestStore(t) })
//	}
package storetest

import (
	"context"
	"testing"

	"github.com/corey/ackeys/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store. The suite closes nothing; register
// cleanup with t.Cleanup inside the factory.
type Factory func(t *testing.T) ports.Store

// Run executes the whole suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("SetAddRemoveIdempotent", func(t *testing.T) { testSetAddRemove(t, newStore(t)) })
	t.Run("SetMembersAndCard", func(t *testing.T) { testSetMembers(t, newStore(t)) })
	t.Run("SetEmptyMember", func(t *testing.T) { testSetEmptyMember(t, newStore(t)) })
	t.Run("OrderedLexicographic", func(t *testing.T) { testOrdered(t, newStore(t)) })
	t.Run("OrderedIdempotent", func(t *testing.T) { testOrderedIdempotent(t, newStore(t)) })
	t.Run("OrderedRangeClamp", func(t *testing.T) { testOrderedRange(t, newStore(t)) })
	t.Run("OrderedUnicode", func(t *testing.T) { testOrderedUnicode(t, newStore(t)) })
	t.Run("Seek", func(t *testing.T) { testSeek(t, newStore(t)) })
	t.Run("SeekWithoutLexSeeker", func(t *testing.T) { testSeekFallback(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("CollectionsIsolated", func(t *testing.T) { testIsolation(t, newStore(t)) })
}

func testSetAddRemove(t *testing.T, s ports.Store) {
	ctx := context.Background()

	n, err := s.SAdd(ctx, "kw", "he", "she")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.SAdd(ctx, "kw", "he")
	require.NoError(t, err)
	assert.Equal(t, 0, n, "re-adding a member is a no-op")

	ok, err := s.SIsMember(ctx, "kw", "he")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err = s.SRem(ctx, "kw", "he", "absent")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.SRem(ctx, "kw", "he")
	require.NoError(t, err)
	assert.Equal(t, 0, n, "removing an absent member is a no-op")

	ok, err = s.SIsMember(ctx, "kw", "he")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err = s.SRem(ctx, "never-created", "x")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func testSetMembers(t *testing.T, s ports.Store) {
	ctx := context.Background()

	members, err := s.SMembers(ctx, "out")
	require.NoError(t, err)
	assert.Empty(t, members)

	card, err := s.SCard(ctx, "out")
	require.NoError(t, err)
	assert.Equal(t, 0, card)

	_, err = s.SAdd(ctx, "out", "her", "he", "hers")
	require.NoError(t, err)

	members, err = s.SMembers(ctx, "out")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"her", "he", "hers"}, members)

	card, err = s.SCard(ctx, "out")
	require.NoError(t, err)
	assert.Equal(t, 3, card)

	_, err = s.SRem(ctx, "out", "her", "he", "hers")
	require.NoError(t, err)
	card, err = s.SCard(ctx, "out")
	require.NoError(t, err)
	assert.Equal(t, 0, card, "an emptied set reads as absent")
}

func testSetEmptyMember(t *testing.T, s ports.Store) {
	ctx := context.Background()

	// The trie root is the empty string and appears in back-reference sets.
	_, err := s.SAdd(ctx, "refs", "")
	require.NoError(t, err)
	ok, err := s.SIsMember(ctx, "refs", "")
	require.NoError(t, err)
	assert.True(t, ok)
	members, err := s.SMembers(ctx, "refs")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, members)
}

func testOrdered(t *testing.T, s ports.Store) {
	ctx := context.Background()

	for _, m := range []string{"hers", "", "he", "h", "s", "she", "her", "hi", "his"} {
		require.NoError(t, s.ZAdd(ctx, "prefix", m))
	}

	all, err := s.ZRange(ctx, "prefix", 0, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "h", "he", "her", "hers", "hi", "his", "s", "she"}, all)

	rank, ok, err := s.ZRank(ctx, "prefix", "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, rank, "root sorts first")

	rank, ok, err = s.ZRank(ctx, "prefix", "hi")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, rank)

	_, ok, err = s.ZRank(ctx, "prefix", "hx")
	require.NoError(t, err)
	assert.False(t, ok)

	m, ok, err := s.ZAt(ctx, "prefix", 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "her", m)

	_, ok, err = s.ZAt(ctx, "prefix", 9)
	require.NoError(t, err)
	assert.False(t, ok, "rank past the end")

	_, ok, err = s.ZAt(ctx, "prefix", -1)
	require.NoError(t, err)
	assert.False(t, ok, "negative rank")

	exists, err := s.ZExists(ctx, "prefix", "she")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.ZExists(ctx, "prefix", "sh")
	require.NoError(t, err)
	assert.False(t, exists)

	card, err := s.ZCard(ctx, "prefix")
	require.NoError(t, err)
	assert.Equal(t, 9, card)
}

func testOrderedIdempotent(t *testing.T, s ports.Store) {
	ctx := context.Background()

	require.NoError(t, s.ZAdd(ctx, "idx", "a"))
	require.NoError(t, s.ZAdd(ctx, "idx", "a"))
	card, err := s.ZCard(ctx, "idx")
	require.NoError(t, err)
	assert.Equal(t, 1, card)

	require.NoError(t, s.ZRem(ctx, "idx", "zzz"))
	require.NoError(t, s.ZRem(ctx, "idx", "a"))
	require.NoError(t, s.ZRem(ctx, "idx", "a"))
	card, err = s.ZCard(ctx, "idx")
	require.NoError(t, err)
	assert.Equal(t, 0, card)

	require.NoError(t, s.ZRem(ctx, "never-created", "x"))
}

func testOrderedRange(t *testing.T, s ports.Store) {
	ctx := context.Background()

	for _, m := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.ZAdd(ctx, "idx", m))
	}

	got, err := s.ZRange(ctx, "idx", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, got)

	got, err = s.ZRange(ctx, "idx", 2, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, got, "stop is clamped")

	got, err = s.ZRange(ctx, "idx", 3, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, got)

	got, err = s.ZRange(ctx, "idx", 4, 10)
	require.NoError(t, err)
	assert.Empty(t, got, "start past the end")

	got, err = s.ZRange(ctx, "idx", 2, 1)
	require.NoError(t, err)
	assert.Empty(t, got, "inverted range")

	got, err = s.ZRange(ctx, "missing", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testOrderedUnicode(t *testing.T, s ports.Store) {
	ctx := context.Background()

	// Byte order of UTF-8 equals code point order: ASCII, then é (U+00E9),
	// then 中 (U+4E2D).
	for _, m := range []string{"中文", "é", "z", "ée", "中"} {
		require.NoError(t, s.ZAdd(ctx, "idx", m))
	}
	got, err := s.ZRange(ctx, "idx", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "é", "ée", "中", "中文"}, got)
}

func testSeek(t *testing.T, s ports.Store) {
	ctx := context.Background()
	for _, m := range []string{"", "a", "ab", "abc", "b", "ba"} {
		require.NoError(t, s.ZAdd(ctx, "idx", m))
	}

	got, err := ports.Seek(ctx, s, "idx", "ab", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "abc"}, got, "seek from a present member")

	got, err = ports.Seek(ctx, s, "idx", "abd", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "ba"}, got, "seek from an absent member lands on the successor")

	got, err = ports.Seek(ctx, s, "idx", "c", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ports.Seek(ctx, s, "idx", "", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "a", "ab"}, got)

	got, err = ports.Seek(ctx, s, "idx", "a", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// rankOnly hides any LexSeeker so ports.Seek takes the rank path.
type rankOnly struct{ ports.OrderedIndex }

func testSeekFallback(t *testing.T, s ports.Store) {
	ctx := context.Background()
	for _, m := range []string{"", "a", "ab", "abc", "b", "ba"} {
		require.NoError(t, s.ZAdd(ctx, "idx", m))
	}
	idx := rankOnly{s}

	got, err := ports.Seek(ctx, idx, "idx", "ab", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "abc"}, got)

	got, err = ports.Seek(ctx, idx, "idx", "abd", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "ba"}, got)

	got, err = ports.Seek(ctx, idx, "idx", "0", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)

	got, err = ports.Seek(ctx, idx, "idx", "zz", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testDelete(t *testing.T, s ports.Store) {
	ctx := context.Background()

	_, err := s.SAdd(ctx, "set", "x")
	require.NoError(t, err)
	require.NoError(t, s.ZAdd(ctx, "idx", "y"))

	require.NoError(t, s.Delete(ctx, "set", "idx", "missing"))

	card, err := s.SCard(ctx, "set")
	require.NoError(t, err)
	assert.Equal(t, 0, card)
	card, err = s.ZCard(ctx, "idx")
	require.NoError(t, err)
	assert.Equal(t, 0, card)

	// Collections can be recreated after deletion.
	_, err = s.SAdd(ctx, "set", "z")
	require.NoError(t, err)
	ok, err := s.SIsMember(ctx, "set", "z")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx))
}

func testIsolation(t *testing.T, s ports.Store) {
	ctx := context.Background()

	_, err := s.SAdd(ctx, "one:keyword", "a")
	require.NoError(t, err)
	_, err = s.SAdd(ctx, "two:keyword", "b")
	require.NoError(t, err)
	require.NoError(t, s.ZAdd(ctx, "one:prefix", "a"))

	ok, err := s.SIsMember(ctx, "two:keyword", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	card, err := s.ZCard(ctx, "two:prefix")
	require.NoError(t, err)
	assert.Equal(t, 0, card)

	require.NoError(t, s.Delete(ctx, "one:keyword"))
	ok, err = s.SIsMember(ctx, "two:keyword", "b")
	require.NoError(t, err)
	assert.True(t, ok, "deleting one collection leaves others alone")
}
