// Package host is a small synchronous component runtime with re-entrant
// stateful primitives: state, effect, memo, ref, reducer and context cells.
//
// Components are plain functions of their props. [Mount] renders a component
// tree, commits effects and keeps cell state across re-renders
// (generations). Primitives are package functions dispatched on the
// component currently rendering; calling one outside a render panics.
//
// The primitives are also published as a module namespace ([Module]) so a
// test harness can substitute instrumented versions; [Bind] turns a
// namespace back into a typed [Hooks] table that components call through.
//
// The runtime is single-threaded and not safe for concurrent use.
package host

import (
	"errors"
	"fmt"

	"github.com/jward/hookscope/modules"
)

// ModulePath is the registry path under which the primitive module is
// published.
const ModulePath = "hookscope/host"

// Version is exported read-only from the module namespace.
const Version = "1.0.0"

// ErrBadExport is returned by Bind for a missing or mistyped export.
var ErrBadExport = errors.New("bad host export")

// Component renders props into an output value.
type Component func(props any) any

// Teardown releases what an effect acquired.
type Teardown func()

// Effect runs after a render commits and may return a Teardown.
type Effect func() Teardown

// Reducer computes the next state for an action. It may panic to reject an
// action; the panic reaches the dispatcher's caller.
type Reducer func(state, action any) any

// Updater computes a new state from the previous one.
type Updater func(prev any) any

// Setter is the mutator handle of a state cell.
type Setter struct {
	set func(any)
}

// NewSetter returns a Setter forwarding to set.
func NewSetter(set func(any)) *Setter {
	return &Setter{set: set}
}

// Set replaces the state with v, or with v(prev) when v is an Updater or a
// func(any) any.
func (s *Setter) Set(v any) {
	s.set(v)
}

// Dispatcher is the dispatch handle of a reducer cell.
type Dispatcher struct {
	dispatch func(any)
}

// NewDispatcher returns a Dispatcher forwarding to dispatch.
func NewDispatcher(dispatch func(any)) *Dispatcher {
	return &Dispatcher{dispatch: dispatch}
}

// Dispatch runs the reducer with action.
func (d *Dispatcher) Dispatch(action any) {
	d.dispatch(action)
}

// Ref is a mutable box that survives re-renders.
type Ref struct {
	Current any
}

// Context is a value inherited by descendants through Provide.
type Context struct {
	name string
	def  any
}

// CreateContext creates a context with a default value used when no
// ancestor provides one.
func CreateContext(name string, def any) *Context {
	return &Context{name: name, def: def}
}

// Name returns the context's name.
func (c *Context) Name() string { return c.name }

// Default returns the value used when no provider is found.
func (c *Context) Default() any { return c.def }

func (c *Context) String() string { return "Context(" + c.name + ")" }

// Signatures of the published primitives.
type (
	UseStateFunc      func(initial any) (any, *Setter)
	UseEffectFunc     func(action Effect, deps []any)
	UseMemoFunc       func(compute func() any, deps []any) any
	UseRefFunc        func(initial any) *Ref
	UseReducerFunc    func(reducer Reducer, initial any) (any, *Dispatcher)
	UseContextFunc    func(ctx *Context) any
	ChildFunc         func(key string, component Component, props any) any
	ProvideFunc       func(ctx *Context, value any, render func() any) any
	CreateContextFunc func(name string, def any) *Context
)

// Hooks is the typed view of the primitive module components call through.
type Hooks struct {
	UseState      UseStateFunc
	UseEffect     UseEffectFunc
	UseMemo       UseMemoFunc
	UseRef        UseRefFunc
	UseReducer    UseReducerFunc
	UseContext    UseContextFunc
	Child         ChildFunc
	Provide       ProvideFunc
	CreateContext CreateContextFunc
}

// Module returns the primitive module namespace.
func Module() modules.Namespace {
	return modules.Namespace{
		"UseState":      {Value: UseStateFunc(UseState)},
		"UseEffect":     {Value: UseEffectFunc(UseEffect)},
		"UseMemo":       {Value: UseMemoFunc(UseMemo)},
		"UseRef":        {Value: UseRefFunc(UseRef)},
		"UseReducer":    {Value: UseReducerFunc(UseReducer)},
		"UseContext":    {Value: UseContextFunc(UseContext)},
		"Child":         {Value: ChildFunc(Child)},
		"Provide":       {Value: ProvideFunc(Provide)},
		"CreateContext": {Value: CreateContextFunc(CreateContext)},
		"Version":       {Value: Version, ReadOnly: true},
	}
}

// Direct returns the uninstrumented primitives.
func Direct() *Hooks {
	h, err := Bind(Module())
	if err != nil {
		panic(err)
	}
	return h
}

// Bind builds a Hooks table from a namespace produced from Module.
func Bind(ns modules.Namespace) (*Hooks, error) {
	h := &Hooks{}
	var err error
	bind(ns, "UseState", &h.UseState, &err)
	bind(ns, "UseEffect", &h.UseEffect, &err)
	bind(ns, "UseMemo", &h.UseMemo, &err)
	bind(ns, "UseRef", &h.UseRef, &err)
	bind(ns, "UseReducer", &h.UseReducer, &err)
	bind(ns, "UseContext", &h.UseContext, &err)
	bind(ns, "Child", &h.Child, &err)
	bind(ns, "Provide", &h.Provide, &err)
	bind(ns, "CreateContext", &h.CreateContext, &err)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func bind[F any](ns modules.Namespace, name string, dst *F, errp *error) {
	if *errp != nil {
		return
	}
	v, ok := ns.Value(name)
	if !ok {
		*errp = fmt.Errorf("host: bind %s: missing: %w", name, ErrBadExport)
		return
	}
	fn, ok := v.(F)
	if !ok {
		*errp = fmt.Errorf("host: bind %s: unexpected type %T: %w", name, v, ErrBadExport)
		return
	}
	*dst = fn
}
