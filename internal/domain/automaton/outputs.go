package automaton

import "context"

// propagate rebuilds the output set of every node whose string ends with the
// node spelled by the reversed string rq. The suffix index yields those nodes
// shortest first, so a node's failure target is always rebuilt before it.
func (e *Engine) propagate(ctx context.Context, rq string) error {
	return e.scan(ctx, e.keys.suffix(), rq, func(r string) error {
		return e.rebuildOutput(ctx, reverse(r))
	})
}

// rebuildOutput sets output(s) to {s if s is a keyword} plus output(fail(s))
// and records the back-references. Members are only ever added here; stale
// members are removed by stripOutput and pruneNode.
func (e *Engine) rebuildOutput(ctx context.Context, s string) error {
	var outs []string
	kw, err := e.isKeyword(ctx, s)
	if err != nil {
		return err
	}
	if kw {
		outs = append(outs, s)
	}

	f, err := e.fail(ctx, s)
	if err != nil {
		return err
	}
	inherited, err := e.store.SMembers(ctx, e.keys.output(f))
	if err != nil {
		return err
	}
	outs = append(outs, inherited...)
	if len(outs) == 0 {
		return nil
	}

	if _, err := e.store.SAdd(ctx, e.keys.output(s), outs...); err != nil {
		return err
	}
	for _, k := range outs {
		if _, err := e.store.SAdd(ctx, e.keys.refs(k), s); err != nil {
			return err
		}
	}
	return nil
}

// stripOutput removes keyword from every output set holding it and drops its
// back-reference set.
func (e *Engine) stripOutput(ctx context.Context, keyword string) error {
	nodes, err := e.store.SMembers(ctx, e.keys.refs(keyword))
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if _, err := e.store.SRem(ctx, e.keys.output(n), keyword); err != nil {
			return err
		}
	}
	return e.store.Delete(ctx, e.keys.refs(keyword))
}

// pruneNode deletes node s from both indexes. Its output set goes with it, and
// s is dropped from the back-references of the keywords that set held.
func (e *Engine) pruneNode(ctx context.Context, s string) error {
	outs, err := e.store.SMembers(ctx, e.keys.output(s))
	if err != nil {
		return err
	}
	for _, k := range outs {
		if _, err := e.store.SRem(ctx, e.keys.refs(k), s); err != nil {
			return err
		}
	}
	if err := e.store.Delete(ctx, e.keys.output(s)); err != nil {
		return err
	}
	if err := e.store.ZRem(ctx, e.keys.prefix(), s); err != nil {
		return err
	}
	if err := e.store.ZRem(ctx, e.keys.suffix(), reverse(s)); err != nil {
		return err
	}
	e.log.Debug("node pruned", "node", s)
	return nil
}
