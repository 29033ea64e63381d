// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import (
	"context"
	"errors"
)

// ErrUnavailable marks a failure to reach the backing store (connection refused,
// timeout, file lock held elsewhere). Adapters wrap driver errors so that
// errors.Is(err, ErrUnavailable) holds and errors.Unwrap yields the driver error.
var ErrUnavailable = errors.New("store unavailable")

// ErrInvalidInput marks input rejected before any store interaction.
var ErrInvalidInput = errors.New("invalid input")

// UnavailableError carries the driver error behind an ErrUnavailable failure.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return e.Op + ": " + ErrUnavailable.Error() + ": " + e.Err.Error()
}

// Unwrap returns the driver error.
func (e *UnavailableError) Unwrap() error { return e.Err }

// Is reports ErrUnavailable as a match.
func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// Unavailable wraps err as an UnavailableError for op. A nil err stays nil.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UnavailableError{Op: op, Err: err}
}

// SetStore holds named, unordered, duplicate-free string collections.
// Every mutation is idempotent: adding a present member or removing an absent
// one is a no-op. A collection with no members is indistinguishable from a
// collection that never existed.
type SetStore interface {
	// SAdd adds members to coll and returns how many were newly added.
	SAdd(ctx context.Context, coll string, members ...string) (int, error)

	// SRem removes members from coll and returns how many were present.
	SRem(ctx context.Context, coll string, members ...string) (int, error)

	// SIsMember reports whether member is in coll.
	SIsMember(ctx context.Context, coll, member string) (bool, error)

	// SMembers returns every member of coll in no particular order.
	SMembers(ctx context.Context, coll string) ([]string, error)

	// SCard returns the number of members in coll.
	SCard(ctx context.Context, coll string) (int, error)
}

// OrderedIndex holds named collections of strings under one shared ordering
// key, so rank order is plain byte-lexicographic order of the members. For
// UTF-8 strings that is also code point order.
type OrderedIndex interface {
	// ZAdd inserts member. Idempotent.
	ZAdd(ctx context.Context, coll, member string) error

	// ZRem removes member. Removing an absent member is a no-op.
	ZRem(ctx context.Context, coll, member string) error

	// ZExists reports whether member is present.
	ZExists(ctx context.Context, coll, member string) (bool, error)

	// ZRank returns the 0-based rank of member. ok is false if absent.
	ZRank(ctx context.Context, coll, member string) (rank int, ok bool, err error)

	// ZAt returns the member at rank. ok is false if rank is out of range.
	ZAt(ctx context.Context, coll string, rank int) (member string, ok bool, err error)

	// ZRange returns members with rank in [start, stop], clamped to the
	// collection bounds. An empty or inverted range yields nil.
	ZRange(ctx context.Context, coll string, start, stop int) ([]string, error)

	// ZCard returns the number of members in coll.
	ZCard(ctx context.Context, coll string) (int, error)
}

// LexSeeker is optionally implemented by an OrderedIndex that can position
// directly on a string without going through ranks (a B+tree cursor seek or
// ZRANGEBYLEX). Seek uses it when present.
type LexSeeker interface {
	// ZSeek returns up to limit members >= from, ascending.
	ZSeek(ctx context.Context, coll, from string, limit int) ([]string, error)
}

// Store is the full external collaborator an automaton instance runs against.
type Store interface {
	SetStore
	OrderedIndex

	// Delete drops whole collections of either kind. Missing ones are skipped.
	Delete(ctx context.Context, colls ...string) error

	// Close releases the connection or file handle.
	Close() error
}

// Seek returns up to limit members of coll that are >= from, ascending.
// It uses LexSeeker when idx implements it; otherwise it locates from by
// ZRank, falling back to a binary search over ZAt when from is absent, and
// reads forward with ZRange.
func Seek(ctx context.Context, idx OrderedIndex, coll, from string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	if s, ok := idx.(LexSeeker); ok {
		return s.ZSeek(ctx, coll, from, limit)
	}

	start, ok, err := idx.ZRank(ctx, coll, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		start, err = lowerBound(ctx, idx, coll, from)
		if err != nil {
			return nil, err
		}
	}
	return idx.ZRange(ctx, coll, start, start+limit-1)
}

// lowerBound returns the rank of the first member >= from.
func lowerBound(ctx context.Context, idx OrderedIndex, coll, from string) (int, error) {
	n, err := idx.ZCard(ctx, coll)
	if err != nil {
		return 0, err
	}
	lo, hi := 0, n
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		m, ok, err := idx.ZAt(ctx, coll, mid)
		if err != nil {
			return 0, err
		}
		if !ok {
			// Shrunk underneath us; everything past here is gone.
			hi = mid
			continue
		}
		if m < from {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}
