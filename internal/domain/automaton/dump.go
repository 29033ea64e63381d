package automaton

import "context"

// Snapshot is the full stored state of one instance, in a form that is stable
// across backends: every list is in index or lexicographic order and empty
// sets are omitted.
type Snapshot struct {
	Name     string              `json:"name" yaml:"name" msgpack:"name"`
	Keywords []string            `json:"keywords" yaml:"keywords" msgpack:"keywords"`
	Nodes    []string            `json:"nodes" yaml:"nodes" msgpack:"nodes"`
	Suffixes []string            `json:"suffixes" yaml:"suffixes" msgpack:"suffixes"`
	Outputs  map[string][]string `json:"outputs" yaml:"outputs" msgpack:"outputs"`
	Refs     map[string][]string `json:"refs" yaml:"refs" msgpack:"refs"`
}

// Dump reads the whole instance. Back-references are read for registered
// keywords only.
func (e *Engine) Dump(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Name:     e.Name(),
		Keywords: []string{},
		Nodes:    []string{},
		Suffixes: []string{},
		Outputs:  map[string][]string{},
		Refs:     map[string][]string{},
	}

	var err error
	if snap.Keywords, err = e.Keywords(ctx); err != nil {
		return nil, err
	}
	if snap.Keywords == nil {
		snap.Keywords = []string{}
	}
	if snap.Nodes, err = e.readAll(ctx, e.keys.prefix()); err != nil {
		return nil, err
	}
	if snap.Suffixes, err = e.readAll(ctx, e.keys.suffix()); err != nil {
		return nil, err
	}

	for _, n := range snap.Nodes {
		outs, err := e.sortedMembers(ctx, e.keys.output(n))
		if err != nil {
			return nil, err
		}
		if len(outs) > 0 {
			snap.Outputs[n] = outs
		}
	}
	for _, k := range snap.Keywords {
		refs, err := e.sortedMembers(ctx, e.keys.refs(k))
		if err != nil {
			return nil, err
		}
		if len(refs) > 0 {
			snap.Refs[k] = refs
		}
	}
	return snap, nil
}

// readAll returns an ordered index in full, reading it in pages.
func (e *Engine) readAll(ctx context.Context, coll string) ([]string, error) {
	all := []string{}
	for start := 0; ; start += e.batch {
		page, err := e.store.ZRange(ctx, coll, start, start+e.batch-1)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < e.batch {
			return all, nil
		}
	}
}
