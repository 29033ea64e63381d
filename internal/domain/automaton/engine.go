// Package automaton maintains an Aho-Corasick keyword automaton directly in an
// external store. Every trie node, failure relation and output set lives in
// store collections, so the automaton can be mutated one keyword at a time
// and shared by any number of processes reading the same store.
//
// Layout for an instance named N:
//
//	N:keyword          set of registered keywords
//	N:prefix           ordered index of every node string (root "" included)
//	N:suffix           ordered index of every non-root node string, reversed
//	N:output:<node>    set of keywords recognized on reaching <node>
//	N:node:<keyword>   set of nodes whose output contains <keyword>
//
// Failure links are never stored. fail(S) is the longest proper suffix of S
// present in the prefix index and is recomputed on demand.
package automaton

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/corey/ackeys/internal/ports"
)

const (
	// DefaultName namespaces collections when no name is given.
	DefaultName = "ackeys"
	// DefaultScanBatch is how many index entries a prefix scan reads per page.
	DefaultScanBatch = 64
)

// Engine is a store-backed Aho-Corasick automaton. Mutations (Add, Remove,
// Flush) are serialized by a mutex; Find and Suggest never lock and observe
// whatever the store holds at the time.
type Engine struct {
	store ports.Store
	keys  keyspace
	batch int
	log   *log.Logger

	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithName sets the instance name that prefixes every collection. New fails
// with ErrInvalidInput when the name does not pass ValidateName.
func WithName(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.keys = keyspace(name)
		}
	}
}

// WithLogger sets the logger for mutation tracing at debug level.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithScanBatch sets the page size of prefix scans.
func WithScanBatch(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batch = n
		}
	}
}

// New binds an engine to store and ensures the root node exists.
func New(ctx context.Context, store ports.Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		store: store,
		keys:  keyspace(DefaultName),
		batch: DefaultScanBatch,
		log:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := ValidateName(e.Name()); err != nil {
		return nil, err
	}
	if err := e.seedRoot(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Name returns the instance name.
func (e *Engine) Name() string { return string(e.keys) }

func (e *Engine) seedRoot(ctx context.Context) error {
	if err := e.store.ZAdd(ctx, e.keys.prefix(), ""); err != nil {
		return fmt.Errorf("seed root: %w", err)
	}
	return nil
}

// Add inserts keyword into the automaton and returns the number of registered
// keywords afterwards. Adding a keyword twice is harmless.
func (e *Engine) Add(ctx context.Context, keyword string) (int, error) {
	k, err := Normalize(keyword)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.store.SAdd(ctx, e.keys.keywords(), k); err != nil {
		return 0, err
	}

	for _, p := range prefixes(k) {
		exists, err := e.isNode(ctx, p)
		if err != nil {
			return 0, err
		}
		rp := reverse(p)
		switch {
		case !exists:
			if err := e.store.ZAdd(ctx, e.keys.prefix(), p); err != nil {
				return 0, err
			}
			if err := e.store.ZAdd(ctx, e.keys.suffix(), rp); err != nil {
				return 0, err
			}
			e.log.Debug("node created", "node", p)
			if err := e.propagate(ctx, rp); err != nil {
				return 0, err
			}
		default:
			kw, err := e.isKeyword(ctx, p)
			if err != nil {
				return 0, err
			}
			if kw {
				if err := e.propagate(ctx, rp); err != nil {
					return 0, err
				}
			}
		}
	}

	n, err := e.store.SCard(ctx, e.keys.keywords())
	if err != nil {
		return 0, err
	}
	e.log.Debug("keyword added", "keyword", k, "keywords", n)
	return n, nil
}

// Remove deletes keyword from the automaton and returns the number of
// registered keywords afterwards. Removing an unknown keyword is harmless.
//
// Nodes on the keyword's path are pruned from the leaf upwards until one is
// still needed: a registered keyword, or the prefix of another node.
func (e *Engine) Remove(ctx context.Context, keyword string) (int, error) {
	k, err := Normalize(keyword)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.stripOutput(ctx, k); err != nil {
		return 0, err
	}
	if _, err := e.store.SRem(ctx, e.keys.keywords(), k); err != nil {
		return 0, err
	}

	path := prefixes(k)
	for i := len(path) - 1; i >= 0; i-- {
		p := path[i]
		if i != len(path)-1 {
			kw, err := e.isKeyword(ctx, p)
			if err != nil {
				return 0, err
			}
			if kw {
				break
			}
		}
		next, hasNext, present, err := e.neighborAfter(ctx, p)
		if err != nil {
			return 0, err
		}
		if !present || (hasNext && hasPrefix(next, p)) {
			break
		}
		if err := e.pruneNode(ctx, p); err != nil {
			return 0, err
		}
	}

	n, err := e.store.SCard(ctx, e.keys.keywords())
	if err != nil {
		return 0, err
	}
	e.log.Debug("keyword removed", "keyword", k, "keywords", n)
	return n, nil
}

// Flush deletes every collection of this instance and re-seeds the root.
// Other instances sharing the store are untouched.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	keywords, err := e.store.SMembers(ctx, e.keys.keywords())
	if err != nil {
		return err
	}
	colls := make([]string, 0, len(keywords)+3)
	for _, k := range keywords {
		colls = append(colls, e.keys.refs(k))
	}
	err = e.scan(ctx, e.keys.prefix(), "", func(node string) error {
		colls = append(colls, e.keys.output(node))
		return nil
	})
	if err != nil {
		return err
	}
	colls = append(colls, e.keys.prefix(), e.keys.suffix(), e.keys.keywords())

	for len(colls) > 0 {
		n := min(len(colls), e.batch)
		if err := e.store.Delete(ctx, colls[:n]...); err != nil {
			return err
		}
		colls = colls[n:]
	}
	e.log.Debug("flushed", "name", e.Name(), "keywords", len(keywords))
	return e.seedRoot(ctx)
}

// Info reports the size of the automaton.
type Info struct {
	Name     string `json:"name" yaml:"name"`
	Keywords int    `json:"keywords" yaml:"keywords"`
	Nodes    int    `json:"nodes" yaml:"nodes"`
}

// Info counts registered keywords and trie nodes, the root included.
func (e *Engine) Info(ctx context.Context) (Info, error) {
	kw, err := e.store.SCard(ctx, e.keys.keywords())
	if err != nil {
		return Info{}, err
	}
	nodes, err := e.store.ZCard(ctx, e.keys.prefix())
	if err != nil {
		return Info{}, err
	}
	return Info{Name: e.Name(), Keywords: kw, Nodes: nodes}, nil
}

// Keywords returns every registered keyword, sorted.
func (e *Engine) Keywords(ctx context.Context) ([]string, error) {
	return e.sortedMembers(ctx, e.keys.keywords())
}
