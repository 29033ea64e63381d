package automaton

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/corey/ackeys/internal/adapters/ahocorasick"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tchap/go-patricia/v2/patricia"
)

// =============================================================================
// Randomized properties checked against independent in-memory references
// Expectation: scans agree with a static automaton built from scratch, prefix
// listings agree with a patricia trie, add followed by remove changes nothing.
// =============================================================================

// A small alphabet makes shared prefixes and suffixes, the interesting cases,
// very likely.
const alphabet = "abc"

func randomWord(rng *rand.Rand, maxLen int) string {
	n := 1 + rng.Intn(maxLen)
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[rng.Intn(len(alphabet))])
	}
	return b.String()
}

func randomKeywords(rng *rand.Rand, n, maxLen int) []string {
	seen := make(map[string]bool)
	var out []string
	for len(out) < n {
		w := randomWord(rng, maxLen)
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

func countOf(found []string) map[string]int {
	counts := make(map[string]int)
	for _, k := range found {
		counts[k]++
	}
	return counts
}

func TestProperty_FindMatchesReference(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 25; round++ {
		e, _ := newTestEngine(t, WithScanBatch(1+rng.Intn(8)))
		keywords := randomKeywords(rng, 1+rng.Intn(12), 4)
		addAll(t, e, keywords...)

		ref, err := ahocorasick.NewMatcher(keywords)
		require.NoError(t, err)

		for i := 0; i < 10; i++ {
			text := randomWord(rng, 30)

			got, err := e.FindMatches(ctx, text)
			require.NoError(t, err)

			var want []Match
			for _, o := range ref.Scan(text) {
				// ASCII text: byte offsets are rune offsets.
				want = append(want, Match{Keyword: o.Keyword, Start: o.Start, End: o.End})
			}
			assert.ElementsMatch(t, want, got, "keywords %v text %q", keywords, text)
		}
	}
}

func TestProperty_AddRemoveInverse(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(11))

	for round := 0; round < 40; round++ {
		e, _ := newTestEngine(t)
		keywords := randomKeywords(rng, 1+rng.Intn(10), 5)
		addAll(t, e, keywords[1:]...)
		k := keywords[0]

		before, err := e.Dump(ctx)
		require.NoError(t, err)

		_, err = e.Add(ctx, k)
		require.NoError(t, err)
		_, err = e.Remove(ctx, k)
		require.NoError(t, err)

		after, err := e.Dump(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after, "keywords %v, added and removed %q", keywords[1:], k)
	}
}

func TestProperty_FindAfterRemoval(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(13))

	for round := 0; round < 25; round++ {
		e, _ := newTestEngine(t)
		keywords := randomKeywords(rng, 2+rng.Intn(10), 4)
		addAll(t, e, keywords...)

		// Remove a random half, in random order.
		rng.Shuffle(len(keywords), func(i, j int) { keywords[i], keywords[j] = keywords[j], keywords[i] })
		removed, kept := keywords[:len(keywords)/2], keywords[len(keywords)/2:]
		for _, k := range removed {
			_, err := e.Remove(ctx, k)
			require.NoError(t, err)
		}

		ref, err := ahocorasick.NewMatcher(kept)
		require.NoError(t, err)

		for i := 0; i < 10; i++ {
			text := randomWord(rng, 30)
			found, err := e.Find(ctx, text)
			require.NoError(t, err)
			for _, k := range removed {
				assert.NotContains(t, found, k)
			}
			assert.Equal(t, ref.Count(text), countOf(found), "kept %v removed %v text %q", kept, removed, text)
		}

		report, err := e.Verify(ctx, ref, "abcabcabc", "aaabbbccc")
		require.NoError(t, err)
		assert.True(t, report.OK(), "%v", report.Problems)
	}
}

func TestProperty_SuggestMatchesTrie(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(17))

	for round := 0; round < 20; round++ {
		e, _ := newTestEngine(t, WithScanBatch(1+rng.Intn(4)))
		keywords := randomKeywords(rng, 1+rng.Intn(15), 5)
		addAll(t, e, keywords...)

		trie := patricia.NewTrie()
		for _, k := range keywords {
			trie.Insert(patricia.Prefix(k), true)
		}

		prefixes := []string{""}
		for i := 0; i < 10; i++ {
			prefixes = append(prefixes, randomWord(rng, 3))
		}
		for _, p := range prefixes {
			var want []string
			err := trie.VisitSubtree(patricia.Prefix(p), func(prefix patricia.Prefix, _ patricia.Item) error {
				want = append(want, string(prefix))
				return nil
			})
			require.NoError(t, err)
			sort.Strings(want)

			got, err := e.Suggest(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, want, got, "keywords %v prefix %q", keywords, p)
		}
	}
}

func TestProperty_VerifyAfterChurn(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(19))
	e, _ := newTestEngine(t, WithScanBatch(3))

	for i := 0; i < 200; i++ {
		k := randomWord(rng, 4)
		var err error
		if rng.Intn(3) == 0 {
			_, err = e.Remove(ctx, k)
		} else {
			_, err = e.Add(ctx, k)
		}
		require.NoError(t, err)
	}

	report, err := e.Verify(ctx, &ahocorasick.Matcher{}, "abcabcaabbcc", "cbacbacba")
	require.NoError(t, err)
	assert.True(t, report.OK(), "%v", report.Problems)
	assert.Equal(t, 2, report.Texts)
}
