// Package bbolt implements ports.Store using bbolt (embedded B+ tree).
// Two top-level buckets, "sets" and "ordered", hold one nested bucket per
// collection. Members are bucket keys, so an ordered collection iterates in
// byte-lexicographic order for free and ZSeek is a cursor seek. Rank queries
// walk the cursor from the first key (bbolt keeps no subtree counts), so they
// are linear in the rank; the engine prefers ZSeek where it can.
// Every mutation is its own transaction: a crash mid-call cannot corrupt
// previously committed data.
package bbolt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/corey/ackeys/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketSets    = []byte("sets")
	bucketOrdered = []byte("ordered")
)

// memberTag prefixes every stored member. bbolt rejects empty keys and the
// trie root is the empty string; a constant prefix keeps the order intact.
const memberTag = 'm'

// present is the value stored under every member key.
var present = []byte{1}

// Store implements ports.Store backed by bbolt.
type Store struct {
	db   *bolt.DB
	path string
}

// NewStore opens (or creates) a bbolt database at the given path. timeout
// bounds the wait for the file lock; zero means one second.
func NewStore(path string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, wrap("open", fmt.Errorf("bbolt open %s: %w", path, err))
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSets); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketOrdered)
		return err
	})
	if err != nil {
		db.Close()
		return nil, wrap("init", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Size returns the database file size in bytes.
func (s *Store) Size() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// wrap classifies bbolt errors. A held file lock or a closed database means
// the store cannot be reached; everything else is reported as is.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, bolt.ErrTimeout) || errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return ports.Unavailable("bbolt "+op, err)
	}
	return fmt.Errorf("bbolt %s: %w", op, err)
}

func memberKey(m string) []byte {
	k := make([]byte, 1+len(m))
	k[0] = memberTag
	copy(k[1:], m)
	return k
}

// memberOf copies the member out of a key (bbolt slices are only valid within tx).
func memberOf(k []byte) string {
	return string(k[1:])
}

// collection returns coll's bucket under root, or nil if it doesn't exist.
func collection(tx *bolt.Tx, root []byte, coll string) *bolt.Bucket {
	return tx.Bucket(root).Bucket([]byte(coll))
}

// dropIfEmpty removes coll's bucket once its last member is gone, so an
// emptied collection reads exactly like one that never existed.
func dropIfEmpty(tx *bolt.Tx, root []byte, coll string, b *bolt.Bucket) error {
	if k, _ := b.Cursor().First(); k != nil {
		return nil
	}
	return tx.Bucket(root).DeleteBucket([]byte(coll))
}

func (s *Store) add(op string, root []byte, coll string, members []string) (int, error) {
	added := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		added = 0
		b, err := tx.Bucket(root).CreateBucketIfNotExists([]byte(coll))
		if err != nil {
			return err
		}
		for _, m := range members {
			k := memberKey(m)
			if b.Get(k) != nil {
				continue
			}
			if err := b.Put(k, present); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	return added, wrap(op, err)
}

func (s *Store) remove(op string, root []byte, coll string, members []string) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		removed = 0
		b := collection(tx, root, coll)
		if b == nil {
			return nil
		}
		for _, m := range members {
			k := memberKey(m)
			if b.Get(k) == nil {
				continue
			}
			if err := b.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return dropIfEmpty(tx, root, coll, b)
	})
	return removed, wrap(op, err)
}

func (s *Store) has(op string, root []byte, coll, member string) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := collection(tx, root, coll); b != nil {
			ok = b.Get(memberKey(member)) != nil
		}
		return nil
	})
	return ok, wrap(op, err)
}

func (s *Store) card(op string, root []byte, coll string) (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := collection(tx, root, coll); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, wrap(op, err)
}

// SAdd adds members to a set.
func (s *Store) SAdd(_ context.Context, coll string, members ...string) (int, error) {
	if len(members) == 0 {
		return 0, nil
	}
	return s.add("sadd", bucketSets, coll, members)
}

// SRem removes members from a set.
func (s *Store) SRem(_ context.Context, coll string, members ...string) (int, error) {
	if len(members) == 0 {
		return 0, nil
	}
	return s.remove("srem", bucketSets, coll, members)
}

// SIsMember reports set membership.
func (s *Store) SIsMember(_ context.Context, coll, member string) (bool, error) {
	return s.has("sismember", bucketSets, coll, member)
}

// SMembers returns all set members (in key order, though callers must not rely on it).
func (s *Store) SMembers(_ context.Context, coll string) ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := collection(tx, bucketSets, coll)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			out = append(out, memberOf(k))
			return nil
		})
	})
	return out, wrap("smembers", err)
}

// SCard returns the set size.
func (s *Store) SCard(_ context.Context, coll string) (int, error) {
	return s.card("scard", bucketSets, coll)
}

// ZAdd inserts member into an ordered collection.
func (s *Store) ZAdd(_ context.Context, coll, member string) error {
	_, err := s.add("zadd", bucketOrdered, coll, []string{member})
	return err
}

// ZRem removes member from an ordered collection.
func (s *Store) ZRem(_ context.Context, coll, member string) error {
	_, err := s.remove("zrem", bucketOrdered, coll, []string{member})
	return err
}

// ZExists reports whether member is indexed.
func (s *Store) ZExists(_ context.Context, coll, member string) (bool, error) {
	return s.has("zexists", bucketOrdered, coll, member)
}

// ZRank counts keys before member.
func (s *Store) ZRank(_ context.Context, coll, member string) (int, bool, error) {
	var (
		rank  int
		found bool
	)
	target := memberKey(member)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := collection(tx, bucketOrdered, coll)
		if b == nil || b.Get(target) == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if bytes.Equal(k, target) {
				found = true
				return nil
			}
			rank++
		}
		return nil
	})
	if err != nil || !found {
		return 0, false, wrap("zrank", err)
	}
	return rank, true, nil
}

// ZAt walks the cursor rank steps.
func (s *Store) ZAt(ctx context.Context, coll string, rank int) (string, bool, error) {
	if rank < 0 {
		return "", false, nil
	}
	got, err := s.ZRange(ctx, coll, rank, rank)
	if err != nil || len(got) == 0 {
		return "", false, err
	}
	return got[0], true, nil
}

// ZRange returns members with rank in [start, stop].
func (s *Store) ZRange(_ context.Context, coll string, start, stop int) ([]string, error) {
	if start < 0 {
		start = 0
	}
	if start > stop {
		return nil, nil
	}
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := collection(tx, bucketOrdered, coll)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		i := 0
		for k, _ := c.First(); k != nil && i <= stop; k, _ = c.Next() {
			if i >= start {
				out = append(out, memberOf(k))
			}
			i++
		}
		return nil
	})
	return out, wrap("zrange", err)
}

// ZSeek positions a cursor on from and reads forward.
func (s *Store) ZSeek(_ context.Context, coll, from string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := collection(tx, bucketOrdered, coll)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.Seek(memberKey(from)); k != nil && len(out) < limit; k, _ = c.Next() {
			out = append(out, memberOf(k))
		}
		return nil
	})
	return out, wrap("zseek", err)
}

// ZCard returns the ordered collection size.
func (s *Store) ZCard(_ context.Context, coll string) (int, error) {
	return s.card("zcard", bucketOrdered, coll)
}

// Delete drops collections of either kind.
// Idempotent: deleting a nonexistent collection is not an error.
func (s *Store) Delete(_ context.Context, colls ...string) error {
	if len(colls) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, c := range colls {
			for _, root := range [][]byte{bucketSets, bucketOrdered} {
				if err := tx.Bucket(root).DeleteBucket([]byte(c)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
					return err
				}
			}
		}
		return nil
	})
	return wrap("delete", err)
}

var (
	_ ports.Store     = (*Store)(nil)
	_ ports.LexSeeker = (*Store)(nil)
)
