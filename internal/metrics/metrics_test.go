package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/ackeys/internal/adapters/memory"
	"github.com/corey/ackeys/internal/adapters/storetest"
	"github.com/corey/ackeys/internal/domain/automaton"
	"github.com/corey/ackeys/internal/ports"
)

func newInstrumented(t *testing.T) (*Store, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	inner := memory.NewStore()
	s, err := Instrument(inner, reg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, reg
}

func TestConformance(t *testing.T) {
	// The decorator must not change store semantics.
	storetest.Run(t, func(t *testing.T) ports.Store {
		s, _ := newInstrumented(t)
		return s
	})
}

func TestStore_CountsCalls(t *testing.T) {
	ctx := context.Background()
	s, _ := newInstrumented(t)

	_, err := s.SAdd(ctx, "k", "a", "b")
	require.NoError(t, err)
	_, err = s.SAdd(ctx, "k", "c")
	require.NoError(t, err)
	_, err = s.ZSeek(ctx, "idx", "", 10)
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.ops.WithLabelValues("sadd", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.ops.WithLabelValues("zseek", "ok")))
	assert.Equal(t, 2, testutil.CollectAndCount(s.ops))
}

// brokenStore fails every SCard as unreachable.
type brokenStore struct{ ports.Store }

func (brokenStore) SCard(context.Context, string) (int, error) {
	return 0, ports.Unavailable("scard", errors.New("connection refused"))
}

func TestStore_ClassifiesErrors(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	s, err := Instrument(brokenStore{memory.NewStore()}, reg)
	require.NoError(t, err)

	_, err = s.SCard(ctx, "k")
	require.ErrorIs(t, err, ports.ErrUnavailable)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.ops.WithLabelValues("scard", "unavailable")))
}

func TestInstrument_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := Instrument(memory.NewStore(), reg)
	require.NoError(t, err)
	_, err = Instrument(memory.NewStore(), reg)
	assert.Error(t, err)
}

func TestAutomatonCollector(t *testing.T) {
	ctx := context.Background()
	s, reg := newInstrumented(t)
	e, err := automaton.New(ctx, s, automaton.WithName("test"))
	require.NoError(t, err)
	for _, k := range []string{"he", "she", "his", "hers"} {
		_, err := e.Add(ctx, k)
		require.NoError(t, err)
	}

	c := NewAutomatonCollector(e, nil)
	require.NoError(t, reg.Register(c))

	expected := `
# HELP ackeys_keywords Registered keywords per automaton instance
# TYPE ackeys_keywords gauge
ackeys_keywords{name="test"} 4
# HELP ackeys_nodes Trie nodes per automaton instance, root included
# TYPE ackeys_nodes gauge
ackeys_nodes{name="test"} 10
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected)))
}

func TestSamples(t *testing.T) {
	ctx := context.Background()
	s, reg := newInstrumented(t)
	e, err := automaton.New(ctx, s)
	require.NoError(t, err)
	_, err = e.Add(ctx, "he")
	require.NoError(t, err)
	require.NoError(t, reg.Register(NewAutomatonCollector(e, nil)))

	samples, err := Samples(reg)
	require.NoError(t, err)

	byKey := make(map[string]float64)
	for _, sm := range samples {
		byKey[sm.String()[:strings.LastIndex(sm.String(), " ")]] = sm.Value
	}
	assert.Equal(t, 1.0, byKey[`ackeys_keywords{name="ackeys"}`])
	assert.Equal(t, 3.0, byKey[`ackeys_nodes{name="ackeys"}`])
	assert.Greater(t, byKey[`ackeys_store_ops_total{op="zadd",result="ok"}`], 0.0)
	assert.Greater(t, byKey[`ackeys_store_op_duration_seconds_count{op="zadd"}`], 0.0)
}
