// Package memory implements ports.Store in process memory. Sets are Go maps;
// ordered indexes are sorted string slices searched with binary search, so
// rank lookups are O(log n) and inserts are O(n). Nothing survives Close.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/corey/ackeys/internal/ports"
)

// Store implements ports.Store and ports.LexSeeker.
type Store struct {
	mu      sync.RWMutex
	sets    map[string]map[string]struct{}
	ordered map[string][]string
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		sets:    make(map[string]map[string]struct{}),
		ordered: make(map[string][]string),
	}
}

// Close drops all data.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets = make(map[string]map[string]struct{})
	s.ordered = make(map[string][]string)
	return nil
}

// SAdd adds members to coll.
func (s *Store) SAdd(_ context.Context, coll string, members ...string) (int, error) {
	if len(members) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.sets[coll]
	if set == nil {
		set = make(map[string]struct{}, len(members))
		s.sets[coll] = set
	}
	added := 0
	for _, m := range members {
		if _, ok := set[m]; !ok {
			set[m] = struct{}{}
			added++
		}
	}
	return added, nil
}

// SRem removes members from coll. An emptied set is dropped.
func (s *Store) SRem(_ context.Context, coll string, members ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.sets[coll]
	if set == nil {
		return 0, nil
	}
	removed := 0
	for _, m := range members {
		if _, ok := set[m]; ok {
			delete(set, m)
			removed++
		}
	}
	if len(set) == 0 {
		delete(s.sets, coll)
	}
	return removed, nil
}

// SIsMember reports set membership.
func (s *Store) SIsMember(_ context.Context, coll, member string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sets[coll][member]
	return ok, nil
}

// SMembers returns a copy of the set's members.
func (s *Store) SMembers(_ context.Context, coll string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.sets[coll]
	if len(set) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	return out, nil
}

// SCard returns the set size.
func (s *Store) SCard(_ context.Context, coll string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sets[coll]), nil
}

// ZAdd inserts member keeping the slice sorted.
func (s *Store) ZAdd(_ context.Context, coll, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.ordered[coll]
	i := sort.SearchStrings(list, member)
	if i < len(list) && list[i] == member {
		return nil
	}
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = member
	s.ordered[coll] = list
	return nil
}

// ZRem removes member if present. An emptied index is dropped.
func (s *Store) ZRem(_ context.Context, coll, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.ordered[coll]
	i := sort.SearchStrings(list, member)
	if i >= len(list) || list[i] != member {
		return nil
	}
	list = append(list[:i], list[i+1:]...)
	if len(list) == 0 {
		delete(s.ordered, coll)
		return nil
	}
	s.ordered[coll] = list
	return nil
}

// ZExists reports whether member is indexed.
func (s *Store) ZExists(ctx context.Context, coll, member string) (bool, error) {
	_, ok, err := s.ZRank(ctx, coll, member)
	return ok, err
}

// ZRank returns member's position.
func (s *Store) ZRank(_ context.Context, coll, member string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.ordered[coll]
	i := sort.SearchStrings(list, member)
	if i < len(list) && list[i] == member {
		return i, true, nil
	}
	return 0, false, nil
}

// ZAt returns the member at rank.
func (s *Store) ZAt(_ context.Context, coll string, rank int) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.ordered[coll]
	if rank < 0 || rank >= len(list) {
		return "", false, nil
	}
	return list[rank], true, nil
}

// ZRange returns a copy of ranks [start, stop].
func (s *Store) ZRange(_ context.Context, coll string, start, stop int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.ordered[coll]
	if start < 0 {
		start = 0
	}
	if stop >= len(list) {
		stop = len(list) - 1
	}
	if start > stop {
		return nil, nil
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

// ZSeek returns up to limit members >= from.
func (s *Store) ZSeek(_ context.Context, coll, from string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.ordered[coll]
	i := sort.SearchStrings(list, from)
	end := i + limit
	if end > len(list) {
		end = len(list)
	}
	if i >= end {
		return nil, nil
	}
	out := make([]string, end-i)
	copy(out, list[i:end])
	return out, nil
}

// ZCard returns the index size.
func (s *Store) ZCard(_ context.Context, coll string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered[coll]), nil
}

// Delete drops collections of either kind.
func (s *Store) Delete(_ context.Context, colls ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range colls {
		delete(s.sets, c)
		delete(s.ordered, c)
	}
	return nil
}

var (
	_ ports.Store     = (*Store)(nil)
	_ ports.LexSeeker = (*Store)(nil)
)
