package hookscope

import (
	"github.com/jward/hookscope/host"
	"github.com/jward/hookscope/internal/ledger"
	"github.com/jward/hookscope/internal/shallow"
	"github.com/jward/hookscope/modules"
)

// MutatorMode tells the adapter how state mutators issued by the host relate
// across generations.
type MutatorMode int

const (
	// StableMutators correlates a state cell with its earlier generations by
	// the identity of the host's mutator handle.
	StableMutators MutatorMode = iota

	// UnstableMutators is for hosts that issue a fresh mutator every
	// generation. Cells are correlated by their call site within the render
	// of one host instance, and the public wrapper is re-targeted to that
	// instance's newest host mutator.
	UnstableMutators
)

func (m MutatorMode) String() string {
	if m == UnstableMutators {
		return "unstable"
	}
	return "stable"
}

// instrumented lists the host exports the adapter replaces.
var instrumented = []string{"UseState", "UseEffect", "UseMemo", "UseRef", "UseReducer", "UseContext"}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithMutatorMode sets how state mutators are correlated.
func WithMutatorMode(mode MutatorMode) AdapterOption {
	return func(a *Adapter) {
		a.mode = mode
	}
}

// Adapter instruments the host's stateful primitives and records every call
// in its Collector.
type Adapter struct {
	c    *Collector
	mode MutatorMode

	// epoch is the collector epoch the trackers belong to.
	epoch       int
	cursors     map[owner]*cursor
	sites       map[site]*ledger.HookEntry
	bySetter    map[*host.Setter]*stateTracker
	bySite      map[site]*stateTracker
	dispatchers map[*host.Dispatcher]*dispatchTracker
}

// NewAdapter creates an Adapter recording into c.
func NewAdapter(c *Collector, opts ...AdapterOption) *Adapter {
	a := &Adapter{c: c}
	for _, opt := range opts {
		opt(a)
	}
	a.clear()
	return a
}

// Mode returns the adapter's mutator mode.
func (a *Adapter) Mode() MutatorMode { return a.mode }

func (a *Adapter) clear() {
	a.epoch = a.c.epoch
	a.cursors = make(map[owner]*cursor)
	a.sites = make(map[site]*ledger.HookEntry)
	a.bySetter = make(map[*host.Setter]*stateTracker)
	a.bySite = make(map[site]*stateTracker)
	a.dispatchers = make(map[*host.Dispatcher]*dispatchTracker)
}

// sync drops trackers from before the collector's last Reset.
func (a *Adapter) sync() {
	if a.epoch != a.c.epoch {
		a.clear()
	}
}

// owner is one host instance executing the body of one unit.
type owner struct {
	unit any
	inst host.Instance
}

// site is a primitive call site: the pos-th call of kind made by an owner
// during one render pass.
type site struct {
	owner
	kind ledger.HookKind
	pos  int
}

// cursor counts an owner's primitive calls during its current pass.
type cursor struct {
	pass  int
	calls map[ledger.HookKind]int
}

// locate returns the call site of the primitive being recorded in s. ok is
// false when the host is not rendering.
func (a *Adapter) locate(s scope, kind ledger.HookKind) (site, bool) {
	inst, pass, ok := host.Rendering()
	if !ok {
		return site{}, false
	}
	o := owner{unit: s.owner(), inst: inst}
	cur, found := a.cursors[o]
	if !found || cur.pass != pass {
		cur = &cursor{pass: pass, calls: make(map[ledger.HookKind]int)}
		a.cursors[o] = cur
	}
	cur.calls[kind]++
	return site{owner: o, kind: kind, pos: cur.calls[kind]}, true
}

// add records a new entry of kind in s. prev is the entry recorded at the
// same call site during the owner's previous pass, nil if there was none.
func (a *Adapter) add(s scope, kind ledger.HookKind) (e, prev *ledger.HookEntry) {
	a.sync()
	at, located := a.locate(s, kind)
	e = s.addHook(kind)
	if located {
		prev = a.sites[at]
		a.sites[at] = e
	}
	return e, prev
}

// Factory returns the transformation for the host primitive module. It
// replaces exactly UseState, UseEffect, UseMemo, UseRef, UseReducer and
// UseContext; every other export passes through.
func (a *Adapter) Factory() modules.Factory {
	return func(ns modules.Namespace) modules.Namespace {
		orig, err := host.Bind(ns)
		if err != nil {
			a.c.logger.Warn("host module left uninstrumented", "error", err)
			return ns
		}
		p := &primitives{a: a, orig: orig}
		replacements := map[string]any{
			"UseState":   host.UseStateFunc(p.useState),
			"UseEffect":  host.UseEffectFunc(p.useEffect),
			"UseMemo":    host.UseMemoFunc(p.useMemo),
			"UseRef":     host.UseRefFunc(p.useRef),
			"UseReducer": host.UseReducerFunc(p.useReducer),
			"UseContext": host.UseContextFunc(p.useContext),
		}
		out := ns.Clone()
		for _, name := range instrumented {
			if out[name].ReadOnly {
				continue
			}
			out[name] = modules.Export{Value: replacements[name]}
		}
		a.c.logger.Debug("instrumented host module", "mode", a.mode.String())
		return out
	}
}

// Hooks returns the instrumented primitives bound to the host module.
func (a *Adapter) Hooks() *host.Hooks {
	h, err := host.Bind(a.Factory()(host.Module()))
	if err != nil {
		panic(err)
	}
	return h
}

// primitives are the instrumented entry points for one host namespace.
type primitives struct {
	a    *Adapter
	orig *host.Hooks
}

func (p *primitives) useState(initial any) (any, *host.Setter) {
	value, setter := p.orig.UseState(initial)
	return value, p.a.trackState(p.a.c.resolve(), value, setter)
}

func (p *primitives) useEffect(action host.Effect, deps []any) {
	// The entry is filled in before the host can commit the action.
	var e *ledger.HookEntry
	p.orig.UseEffect(func() host.Teardown {
		e.Action.Record()
		teardown := action()
		if teardown == nil {
			return nil
		}
		if e.Teardown == nil {
			e.Teardown = &ledger.Handle{}
		}
		h := e.Teardown
		return func() {
			h.Record()
			teardown()
		}
	}, deps)

	e, _ = p.a.add(p.a.c.resolve(), ledger.KindEffect)
	e.Deps = deps
	e.Action = &ledger.Handle{}
}

func (p *primitives) useMemo(compute func() any, deps []any) any {
	computed := false
	value := p.orig.UseMemo(func() any {
		computed = true
		return compute()
	}, deps)

	e, prev := p.a.add(p.a.c.resolve(), ledger.KindMemo)
	e.Deps = deps
	e.Value = value
	e.Computed = computed
	if prev != nil {
		e.Changed = !shallow.Equal(prev.Value, value)
	}
	return value
}

func (p *primitives) useRef(initial any) *host.Ref {
	ref := p.orig.UseRef(initial)

	e, prev := p.a.add(p.a.c.resolve(), ledger.KindRef)
	e.Initial = initial
	e.Value = ref.Current
	if prev != nil {
		e.Changed = !shallow.Equal(prev.Value, e.Value)
	}
	return ref
}

func (p *primitives) useReducer(reducer host.Reducer, initial any) (any, *host.Dispatcher) {
	state, dispatcher := p.orig.UseReducer(reducer, initial)

	e, _ := p.a.add(p.a.c.resolve(), ledger.KindReducer)
	e.State = state
	e.Dispatch = &ledger.Handle{}
	return state, p.a.trackDispatch(e, dispatcher)
}

func (p *primitives) useContext(ctx *host.Context) any {
	value := p.orig.UseContext(ctx)

	e, _ := p.a.add(p.a.c.resolve(), ledger.KindContext)
	e.Source = ctx
	e.Value = value
	return value
}

// stateTracker follows one state cell across generations. It owns the
// public mutator handed to the component and the host mutator it forwards
// to.
type stateTracker struct {
	a      *Adapter
	epoch  int
	key    ledger.TimelineKey
	host   *host.Setter
	public *host.Setter
	entry  *ledger.HookEntry
	gen    int
}

// trackState records a state cell and returns the public mutator for it.
func (a *Adapter) trackState(s scope, value any, setter *host.Setter) *host.Setter {
	a.sync()
	at, located := a.locate(s, ledger.KindState)

	var t *stateTracker
	switch {
	case a.mode == StableMutators:
		t = a.bySetter[setter]
	case located:
		// Another instance of the same unit has its own sites, so its
		// mutator is never taken over.
		t = a.bySite[at]
	}

	if t != nil && !s.correlated() {
		// Unscoped cells have no generations: keep one entry and append
		// rendered values that differ from the last one.
		if last, ok := t.entry.Current(); !ok || !shallow.Equal(last, value) {
			t.entry.Values = append(t.entry.Values, value)
		}
		t.retarget(setter)
		return t.public
	}

	e := s.addHook(ledger.KindState)
	e.Values = []any{value}
	e.Mutator = &ledger.Handle{}

	if t == nil {
		t = &stateTracker{a: a, epoch: a.epoch, key: s.timelineKey(e.Seq)}
		t.public = host.NewSetter(t.set)
		a.c.ledger.Record(t.key, value, s.generation())
		if located {
			a.bySite[at] = t
		}
	}
	t.entry = e
	t.gen = s.generation()
	t.retarget(setter)
	return t.public
}

// retarget points t at the host's current mutator.
func (t *stateTracker) retarget(setter *host.Setter) {
	if t.host != nil && t.host != setter {
		delete(t.a.bySetter, t.host)
	}
	t.host = setter
	t.a.bySetter[setter] = t
}

// set is the public mutator. Every call is recorded on the Mutator handle;
// only values the host will actually store reach the timeline. Updaters are
// wrapped so the value the host resolves is what gets recorded.
func (t *stateTracker) set(v any) {
	if t.epoch != t.a.c.epoch {
		t.host.Set(v)
		return
	}
	t.entry.Mutator.Record(v)
	switch u := v.(type) {
	case host.Updater:
		t.host.Set(t.observe(u))
	case func(any) any:
		t.host.Set(t.observe(u))
	default:
		if last, ok := t.entry.Current(); !ok || !shallow.Equal(last, v) {
			t.record(v)
		}
		t.host.Set(v)
	}
}

func (t *stateTracker) observe(u func(any) any) host.Updater {
	return func(prev any) any {
		next := u(prev)
		if !shallow.Equal(prev, next) {
			t.record(next)
		}
		return next
	}
}

func (t *stateTracker) record(v any) {
	if t.epoch != t.a.c.epoch {
		return
	}
	t.entry.Values = append(t.entry.Values, v)
	t.a.c.ledger.Record(t.key, v, t.gen)
}

// dispatchTracker forwards a public dispatcher to the host's and records
// actions on the latest reducer entry.
type dispatchTracker struct {
	a      *Adapter
	epoch  int
	host   *host.Dispatcher
	public *host.Dispatcher
	entry  *ledger.HookEntry
}

func (a *Adapter) trackDispatch(e *ledger.HookEntry, dispatcher *host.Dispatcher) *host.Dispatcher {
	a.sync()
	t, ok := a.dispatchers[dispatcher]
	if !ok {
		t = &dispatchTracker{a: a, epoch: a.epoch, host: dispatcher}
		t.public = host.NewDispatcher(t.dispatch)
		a.dispatchers[dispatcher] = t
	}
	t.entry = e
	return t.public
}

// dispatch records action and forwards it. A reducer panic reaches the
// caller unchanged.
func (t *dispatchTracker) dispatch(action any) {
	if t.epoch == t.a.c.epoch {
		t.entry.Dispatch.Record(action)
	}
	t.host.Dispatch(action)
}
