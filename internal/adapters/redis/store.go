// Package redis implements ports.Store on a Redis server: sets are Redis SETs,
// ordered indexes are sorted sets whose members all carry score 1.0, so Redis
// orders them lexicographically and ZRANK/ZRANGE/ZRANGEBYLEX are O(log n).
// Collection names are used as Redis keys verbatim.
package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/corey/ackeys/internal/ports"
	goredis "github.com/redis/go-redis/v9"
)

// score is the one ordering key every ordered member shares.
const score = 1.0

// Options configures the connection.
type Options struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// Store implements ports.Store backed by Redis.
type Store struct {
	client *goredis.Client
}

// NewStore connects to Redis and pings it. A failed ping is ErrUnavailable.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, wrap("ping", fmt.Errorf("redis %s: %w", opts.Addr, err))
	}
	return &Store{client: client}, nil
}

// NewStoreFromClient wraps an existing client without pinging it.
func NewStoreFromClient(client *goredis.Client) *Store {
	return &Store{client: client}
}

// Close closes the client connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

// wrap classifies go-redis errors. Network failures, timeouts and a closed
// client mean the store cannot be reached; Redis-level replies are returned
// as is.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.EOF),
		errors.Is(err, goredis.ErrClosed):
		return ports.Unavailable("redis "+op, err)
	}
	return fmt.Errorf("redis %s: %w", op, err)
}

func toAny(members []string) []interface{} {
	out := make([]interface{}, len(members))
	for i, m := range members {
		out[i] = m
	}
	return out
}

// SAdd adds members to a set.
func (s *Store) SAdd(ctx context.Context, coll string, members ...string) (int, error) {
	if len(members) == 0 {
		return 0, nil
	}
	n, err := s.client.SAdd(ctx, coll, toAny(members)...).Result()
	return int(n), wrap("sadd", err)
}

// SRem removes members from a set.
func (s *Store) SRem(ctx context.Context, coll string, members ...string) (int, error) {
	if len(members) == 0 {
		return 0, nil
	}
	n, err := s.client.SRem(ctx, coll, toAny(members)...).Result()
	return int(n), wrap("srem", err)
}

// SIsMember reports set membership.
func (s *Store) SIsMember(ctx context.Context, coll, member string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, coll, member).Result()
	return ok, wrap("sismember", err)
}

// SMembers returns all set members.
func (s *Store) SMembers(ctx context.Context, coll string) ([]string, error) {
	members, err := s.client.SMembers(ctx, coll).Result()
	return members, wrap("smembers", err)
}

// SCard returns the set size.
func (s *Store) SCard(ctx context.Context, coll string) (int, error) {
	n, err := s.client.SCard(ctx, coll).Result()
	return int(n), wrap("scard", err)
}

// ZAdd inserts member with the shared score.
func (s *Store) ZAdd(ctx context.Context, coll, member string) error {
	return wrap("zadd", s.client.ZAdd(ctx, coll, goredis.Z{Score: score, Member: member}).Err())
}

// ZRem removes member.
func (s *Store) ZRem(ctx context.Context, coll, member string) error {
	return wrap("zrem", s.client.ZRem(ctx, coll, member).Err())
}

// ZExists checks ZSCORE, which is nil for absent members.
func (s *Store) ZExists(ctx context.Context, coll, member string) (bool, error) {
	err := s.client.ZScore(ctx, coll, member).Err()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, wrap("zscore", err)
	}
	return true, nil
}

// ZRank returns member's rank.
func (s *Store) ZRank(ctx context.Context, coll, member string) (int, bool, error) {
	rank, err := s.client.ZRank(ctx, coll, member).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrap("zrank", err)
	}
	return int(rank), true, nil
}

// ZAt fetches the single-element range [rank, rank].
func (s *Store) ZAt(ctx context.Context, coll string, rank int) (string, bool, error) {
	if rank < 0 {
		// Redis would count a negative rank from the end.
		return "", false, nil
	}
	got, err := s.ZRange(ctx, coll, rank, rank)
	if err != nil || len(got) == 0 {
		return "", false, err
	}
	return got[0], true, nil
}

// ZRange returns members with rank in [start, stop].
func (s *Store) ZRange(ctx context.Context, coll string, start, stop int) ([]string, error) {
	if start < 0 {
		start = 0
	}
	if stop < start {
		return nil, nil
	}
	got, err := s.client.ZRange(ctx, coll, int64(start), int64(stop)).Result()
	return got, wrap("zrange", err)
}

// ZSeek uses ZRANGEBYLEX from an inclusive lower bound.
func (s *Store) ZSeek(ctx context.Context, coll, from string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	got, err := s.client.ZRangeByLex(ctx, coll, &goredis.ZRangeBy{
		Min:   "[" + from,
		Max:   "+",
		Count: int64(limit),
	}).Result()
	return got, wrap("zrangebylex", err)
}

// ZCard returns the sorted set size.
func (s *Store) ZCard(ctx context.Context, coll string) (int, error) {
	n, err := s.client.ZCard(ctx, coll).Result()
	return int(n), wrap("zcard", err)
}

// Delete drops keys.
func (s *Store) Delete(ctx context.Context, colls ...string) error {
	if len(colls) == 0 {
		return nil
	}
	return wrap("del", s.client.Del(ctx, colls...).Err())
}

var (
	_ ports.Store     = (*Store)(nil)
	_ ports.LexSeeker = (*Store)(nil)
)
