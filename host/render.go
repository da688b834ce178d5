package host

import (
	"fmt"

	"github.com/jward/hookscope/internal/shallow"
)

// maxPasses bounds render passes triggered by updates during render or
// commit.
const maxPasses = 25

type phase int

const (
	idle phase = iota
	rendering
	committing
)

// current is the fiber whose component is executing.
var current *fiber

// Option configures a Root.
type Option func(*Root)

// WithUnstableSetters makes the runtime issue a fresh Setter and Dispatcher
// on every render instead of one per cell.
func WithUnstableSetters() Option {
	return func(r *Root) {
		r.unstable = true
	}
}

// Root is a mounted component tree.
type Root struct {
	fiber     *fiber
	props     any
	output    any
	unstable  bool
	phase     phase
	dirty     bool
	renders   int
	unmounted bool
	providers []provided
}

type provided struct {
	ctx   *Context
	value any
}

// Mount renders component with props and commits its effects.
func Mount(component Component, props any, opts ...Option) *Root {
	r := &Root{props: props}
	for _, opt := range opts {
		opt(r)
	}
	r.fiber = newFiber(r, "root", component)
	r.render()
	return r
}

// Rerender renders the tree again with new props. It is a no-op after
// Unmount.
func (r *Root) Rerender(props any) {
	if r.unmounted {
		return
	}
	r.props = props
	r.render()
}

// Unmount runs every outstanding teardown, children first.
func (r *Root) Unmount() {
	if r.unmounted {
		return
	}
	r.unmounted = true
	r.fiber.unmount()
}

// Output returns what the root component rendered last.
func (r *Root) Output() any { return r.output }

// Renders returns the number of completed render passes.
func (r *Root) Renders() int { return r.renders }

func (r *Root) render() {
	defer func() { r.phase = idle }()
	for pass := 0; ; pass++ {
		if pass >= maxPasses {
			panic(fmt.Sprintf("host: too many re-renders (%d)", maxPasses))
		}
		r.dirty = false
		r.phase = rendering
		r.output = r.fiber.render(r.props)
		r.renders++
		if !r.dirty {
			r.phase = committing
			r.fiber.commit()
		}
		r.phase = idle
		if !r.dirty {
			return
		}
	}
}

// schedule re-renders now when idle, otherwise after the current pass.
func (r *Root) schedule() {
	if r.phase == idle {
		r.render()
		return
	}
	r.dirty = true
}

func (r *Root) setState(f *fiber, c *cell, v any) {
	if f.dead || r.unmounted {
		return
	}
	switch u := v.(type) {
	case Updater:
		v = u(c.value)
	case func(any) any:
		v = u(c.value)
	}
	if shallow.Equal(c.value, v) {
		return
	}
	c.value = v
	r.schedule()
}

func (r *Root) dispatch(f *fiber, c *cell, action any) {
	if f.dead || r.unmounted {
		return
	}
	next := c.reducer(c.value, action)
	if shallow.Equal(c.value, next) {
		return
	}
	c.value = next
	r.schedule()
}

func (r *Root) lookup(ctx *Context) any {
	for i := len(r.providers) - 1; i >= 0; i-- {
		if r.providers[i].ctx == ctx {
			return r.providers[i].value
		}
	}
	return ctx.def
}

// Instance identifies one mounted component instance. The zero Instance
// matches no component.
type Instance struct {
	f *fiber
}

// Rendering reports the instance whose component is executing and how many
// render passes that instance has started, the current one included. ok is
// false outside a render.
func Rendering() (inst Instance, pass int, ok bool) {
	if current == nil {
		return Instance{}, 0, false
	}
	return Instance{f: current}, current.passes, true
}

// cell is the persistent storage of one primitive call site.
type cell struct {
	value      any
	deps       []any
	setter     *Setter
	dispatcher *Dispatcher
	reducer    Reducer
	ref        *Ref
	action     Effect
	pending    bool
	teardown   Teardown
}

type fiber struct {
	root      *Root
	name      string
	component Component
	cells     []*cell
	cursor    int
	passes    int
	mounted   bool
	dead      bool
	children  map[string]*fiber
	order     []string
	seen      map[string]bool
}

func newFiber(r *Root, name string, component Component) *fiber {
	return &fiber{
		root:      r,
		name:      name,
		component: component,
		children:  make(map[string]*fiber),
	}
}

func (f *fiber) render(props any) any {
	prev := current
	current = f
	defer func() { current = prev }()

	f.cursor = 0
	f.passes++
	f.seen = make(map[string]bool)
	out := f.component(props)
	f.mounted = true
	f.prune()
	return out
}

// next returns the cell for the next primitive call and whether it was
// created by this call.
func (f *fiber) next() (*cell, bool) {
	if f.cursor < len(f.cells) {
		c := f.cells[f.cursor]
		f.cursor++
		return c, false
	}
	if f.mounted {
		panic(fmt.Sprintf("host: %s rendered more primitives than during its previous render", f.name))
	}
	c := &cell{}
	f.cells = append(f.cells, c)
	f.cursor++
	return c, true
}

// prune unmounts children that were not rendered in the last pass.
func (f *fiber) prune() {
	kept := f.order[:0]
	for _, key := range f.order {
		if f.seen[key] {
			kept = append(kept, key)
			continue
		}
		f.children[key].unmount()
		delete(f.children, key)
	}
	f.order = kept
}

func (f *fiber) child(key string, component Component) *fiber {
	ch, ok := f.children[key]
	if !ok {
		ch = newFiber(f.root, key, component)
		f.children[key] = ch
		f.order = append(f.order, key)
	}
	ch.component = component
	f.seen[key] = true
	return ch
}

func (f *fiber) commit() {
	for _, key := range f.order {
		f.children[key].commit()
	}
	for _, c := range f.cells {
		if !c.pending {
			continue
		}
		c.pending = false
		if td := c.teardown; td != nil {
			c.teardown = nil
			td()
		}
		c.teardown = c.action()
	}
}

func (f *fiber) unmount() {
	for _, key := range f.order {
		f.children[key].unmount()
	}
	f.dead = true
	for _, c := range f.cells {
		if td := c.teardown; td != nil {
			c.teardown = nil
			td()
		}
	}
}
