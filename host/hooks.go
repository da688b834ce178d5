package host

import (
	"fmt"

	"github.com/jward/hookscope/internal/shallow"
)

func mustCurrent(primitive string) *fiber {
	if current == nil {
		panic(fmt.Sprintf("host: %s called outside of a component render", primitive))
	}
	return current
}

// UseState returns the cell's value and its Setter. initial seeds the cell
// on first render; a func() any initial is called to produce the seed.
func UseState(initial any) (any, *Setter) {
	f := mustCurrent("UseState")
	c, first := f.next()
	if first {
		if init, ok := initial.(func() any); ok {
			initial = init()
		}
		c.value = initial
	}
	if c.setter == nil || f.root.unstable {
		c.setter = NewSetter(func(v any) { f.root.setState(f, c, v) })
	}
	return c.value, c.setter
}

// UseEffect schedules action to run after the render commits. It re-runs
// when deps change; nil deps re-run after every render, empty deps run
// once.
func UseEffect(action Effect, deps []any) {
	f := mustCurrent("UseEffect")
	c, first := f.next()
	if first || deps == nil || !shallow.Deps(c.deps, deps) {
		c.action = action
		c.pending = true
	}
	c.deps = deps
}

// UseMemo returns compute's result, recomputing only when deps change.
func UseMemo(compute func() any, deps []any) any {
	f := mustCurrent("UseMemo")
	c, first := f.next()
	if first || deps == nil || !shallow.Deps(c.deps, deps) {
		c.value = compute()
	}
	c.deps = deps
	return c.value
}

// UseRef returns the same Ref on every render, seeded with initial.
func UseRef(initial any) *Ref {
	f := mustCurrent("UseRef")
	c, first := f.next()
	if first {
		c.ref = &Ref{Current: initial}
	}
	return c.ref
}

// UseReducer returns the reducer cell's state and its Dispatcher. The
// reducer passed on the latest render is the one dispatch applies.
func UseReducer(reducer Reducer, initial any) (any, *Dispatcher) {
	f := mustCurrent("UseReducer")
	c, first := f.next()
	if first {
		c.value = initial
	}
	c.reducer = reducer
	if c.dispatcher == nil || f.root.unstable {
		c.dispatcher = NewDispatcher(func(action any) { f.root.dispatch(f, c, action) })
	}
	return c.value, c.dispatcher
}

// UseContext returns the value of the nearest enclosing Provide for ctx, or
// its default.
func UseContext(ctx *Context) any {
	f := mustCurrent("UseContext")
	return f.root.lookup(ctx)
}

// Child renders component as a child of the current component. The child
// keeps its cells across renders as long as it is rendered under the same
// key; children not rendered in a pass are unmounted.
func Child(key string, component Component, props any) any {
	f := mustCurrent("Child")
	return f.child(key, component).render(props)
}

// Provide makes value visible to UseContext(ctx) for everything rendered
// by render.
func Provide(ctx *Context, value any, render func() any) any {
	r := mustCurrent("Provide").root
	r.providers = append(r.providers, provided{ctx: ctx, value: value})
	defer func() { r.providers = r.providers[:len(r.providers)-1] }()
	return render()
}
