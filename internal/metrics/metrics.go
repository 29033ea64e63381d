// Package metrics instruments store access and exposes automaton size as
// Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/corey/ackeys/internal/domain/automaton"
	"github.com/corey/ackeys/internal/ports"
)

var (
	keywordsDesc = prometheus.NewDesc(
		"ackeys_keywords",
		"Registered keywords per automaton instance",
		[]string{"name"},
		nil,
	)
	nodesDesc = prometheus.NewDesc(
		"ackeys_nodes",
		"Trie nodes per automaton instance, root included",
		[]string{"name"},
		nil,
	)
)

// InfoSource reports automaton size.
type InfoSource interface {
	Info(ctx context.Context) (automaton.Info, error)
}

// AutomatonCollector is a custom Prometheus collector that reads automaton
// size from the store on each scrape.
type AutomatonCollector struct {
	source InfoSource
	log    *log.Logger
}

// NewAutomatonCollector returns a collector over source. Scrape failures are
// logged to logger and produce no samples.
func NewAutomatonCollector(source InfoSource, logger *log.Logger) *AutomatonCollector {
	return &AutomatonCollector{source: source, log: logger}
}

// Describe sends the metric descriptors to the channel.
func (c *AutomatonCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- keywordsDesc
	ch <- nodesDesc
}

// Collect queries the store for the automaton size and emits it as gauges.
func (c *AutomatonCollector) Collect(ch chan<- prometheus.Metric) {
	info, err := c.source.Info(context.Background())
	if err != nil {
		if c.log != nil {
			c.log.Error("failed to collect automaton metrics", "err", err)
		}
		return
	}
	ch <- prometheus.MustNewConstMetric(keywordsDesc, prometheus.GaugeValue, float64(info.Keywords), info.Name)
	ch <- prometheus.MustNewConstMetric(nodesDesc, prometheus.GaugeValue, float64(info.Nodes), info.Name)
}

// Store wraps a ports.Store and counts and times every call.
type Store struct {
	inner    ports.Store
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// Instrument wraps inner and registers its collectors with reg.
func Instrument(inner ports.Store, reg prometheus.Registerer) (*Store, error) {
	s := &Store{
		inner: inner,
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ackeys_store_ops_total",
			Help: "Store calls by operation and result",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ackeys_store_op_duration_seconds",
			Help:    "Store call latency by operation",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{s.ops, s.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register store metrics: %w", err)
		}
	}
	return s, nil
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ports.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

// track starts timing op. The returned func records the call's outcome.
func (s *Store) track(op string) func(error) {
	start := time.Now()
	return func(err error) {
		s.ops.WithLabelValues(op, result(err)).Inc()
		s.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

// Unwrap returns the instrumented store.
func (s *Store) Unwrap() ports.Store { return s.inner }

func (s *Store) SAdd(ctx context.Context, coll string, members ...string) (int, error) {
	done := s.track("sadd")
	n, err := s.inner.SAdd(ctx, coll, members...)
	done(err)
	return n, err
}

func (s *Store) SRem(ctx context.Context, coll string, members ...string) (int, error) {
	done := s.track("srem")
	n, err := s.inner.SRem(ctx, coll, members...)
	done(err)
	return n, err
}

func (s *Store) SIsMember(ctx context.Context, coll, member string) (bool, error) {
	done := s.track("sismember")
	ok, err := s.inner.SIsMember(ctx, coll, member)
	done(err)
	return ok, err
}

func (s *Store) SMembers(ctx context.Context, coll string) ([]string, error) {
	done := s.track("smembers")
	members, err := s.inner.SMembers(ctx, coll)
	done(err)
	return members, err
}

func (s *Store) SCard(ctx context.Context, coll string) (int, error) {
	done := s.track("scard")
	n, err := s.inner.SCard(ctx, coll)
	done(err)
	return n, err
}

func (s *Store) ZAdd(ctx context.Context, coll, member string) error {
	done := s.track("zadd")
	err := s.inner.ZAdd(ctx, coll, member)
	done(err)
	return err
}

func (s *Store) ZRem(ctx context.Context, coll, member string) error {
	done := s.track("zrem")
	err := s.inner.ZRem(ctx, coll, member)
	done(err)
	return err
}

func (s *Store) ZExists(ctx context.Context, coll, member string) (bool, error) {
	done := s.track("zexists")
	ok, err := s.inner.ZExists(ctx, coll, member)
	done(err)
	return ok, err
}

func (s *Store) ZRank(ctx context.Context, coll, member string) (int, bool, error) {
	done := s.track("zrank")
	rank, ok, err := s.inner.ZRank(ctx, coll, member)
	done(err)
	return rank, ok, err
}

func (s *Store) ZAt(ctx context.Context, coll string, rank int) (string, bool, error) {
	done := s.track("zat")
	member, ok, err := s.inner.ZAt(ctx, coll, rank)
	done(err)
	return member, ok, err
}

func (s *Store) ZRange(ctx context.Context, coll string, start, stop int) ([]string, error) {
	done := s.track("zrange")
	members, err := s.inner.ZRange(ctx, coll, start, stop)
	done(err)
	return members, err
}

// ZSeek keeps the inner store's seek path, native or rank-based, and times
// it as one call.
func (s *Store) ZSeek(ctx context.Context, coll, from string, limit int) ([]string, error) {
	done := s.track("zseek")
	members, err := ports.Seek(ctx, s.inner, coll, from, limit)
	done(err)
	return members, err
}

func (s *Store) ZCard(ctx context.Context, coll string) (int, error) {
	done := s.track("zcard")
	n, err := s.inner.ZCard(ctx, coll)
	done(err)
	return n, err
}

func (s *Store) Delete(ctx context.Context, colls ...string) error {
	done := s.track("delete")
	err := s.inner.Delete(ctx, colls...)
	done(err)
	return err
}

func (s *Store) Close() error {
	return s.inner.Close()
}

var (
	_ ports.Store     = (*Store)(nil)
	_ ports.LexSeeker = (*Store)(nil)
)

// Sample is one gathered metric value, flattened for display.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

func (s Sample) String() string {
	if s.Labels == "" {
		return fmt.Sprintf("%s %g", s.Name, s.Value)
	}
	return fmt.Sprintf("%s{%s} %g", s.Name, s.Labels, s.Value)
}

// Samples gathers counters and gauges from g, sorted by name and labels.
// Histograms contribute their sample count as <name>_count.
func Samples(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, f := range families {
		for _, m := range f.GetMetric() {
			sample := Sample{Name: f.GetName(), Labels: labels(m.GetLabel())}
			switch f.GetType() {
			case dto.MetricType_COUNTER:
				sample.Value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				sample.Value = m.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				sample.Name += "_count"
				sample.Value = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}
			out = append(out, sample)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}

func labels(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	return strings.Join(parts, ",")
}
