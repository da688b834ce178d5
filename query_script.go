package hookscope

import (
	"context"

	"github.com/jward/hookscope/internal/script"
)

// Eval evaluates a Risor expression against the recorded data and returns
// its value. Scripts can call count(name), result(name, seq),
// args(name, seq), hook_value(name, seq, kind, slot), timeline(name, slot)
// and units(); each takes an optional trailing discriminator and returns
// nil on a miss.
func (q *QueryBuilder) Eval(ctx context.Context, src string) (any, error) {
	rt := script.NewRuntime(scriptSource{q: q}, script.WithLogger(q.c.logger))
	return rt.Eval(ctx, src, nil)
}

// scriptSource adapts a QueryBuilder to script.Source.
type scriptSource struct {
	q *QueryBuilder
}

func discSelectors(disc string) []Selector {
	if disc == "" {
		return nil
	}
	return []Selector{Disc(disc)}
}

func (s scriptSource) Count(name, disc string) (int, bool) {
	return s.q.Count(name, discSelectors(disc)...)
}

func (s scriptSource) Result(name string, seq int, disc string) (any, bool) {
	inv, ok := s.q.Invocation(name, seq, discSelectors(disc)...)
	if !ok || !inv.Completed {
		return nil, false
	}
	return inv.Result, true
}

func (s scriptSource) Args(name string, seq int, disc string) ([]any, bool) {
	inv, ok := s.q.Invocation(name, seq, discSelectors(disc)...)
	if !ok {
		return nil, false
	}
	return inv.Args, true
}

func (s scriptSource) HookValue(name string, seq int, kind string, slot int, disc string) (any, bool) {
	e, ok := s.q.Hook(name, seq, HookKind(kind), slot, discSelectors(disc)...)
	if !ok {
		return nil, false
	}
	switch e.Kind {
	case KindState:
		return e.Current()
	case KindReducer:
		return e.State, true
	case KindEffect:
		return e.Deps, true
	}
	return e.Value, true
}

func (s scriptSource) Timeline(name string, slot int, disc string) ([]any, bool) {
	snaps, ok := s.q.Timeline(name, slot, discSelectors(disc)...)
	if !ok {
		return nil, false
	}
	values := make([]any, len(snaps))
	for i, snap := range snaps {
		values[i] = snap.Value
	}
	return values, true
}

func (s scriptSource) Units() []string {
	ids := s.q.Units()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	return names
}
