package hookscope_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/hookscope"
	"github.com/jward/hookscope/internal/logging"
	"github.com/jward/hookscope/modules"
)

func newCollector(t *testing.T) *hookscope.Collector {
	t.Helper()
	return hookscope.NewCollector(hookscope.WithLogger(logging.NewNop()))
}

func TestWrap_RecursionWritesResultsInReverse(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5, 10} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			c := newCollector(t)

			var depth func(int) int
			depth = hookscope.Wrap(c, "depth", func(n int) int {
				if n > 0 {
					return depth(n-1) + 1
				}
				return 0
			})

			assert.Equal(t, n, depth(n))

			invs, ok := c.Query().Invocations("depth")
			require.True(t, ok)
			require.Len(t, invs, n+1)
			for i, inv := range invs {
				assert.Equal(t, i+1, inv.Seq)
				assert.Equal(t, []any{n - i}, inv.Args)
				assert.Equal(t, n-i, inv.Result, "invocation %d", i)
				assert.True(t, inv.Completed)
			}
		})
	}
}

func TestWrap_TailRecursionReturnsBaseValue(t *testing.T) {
	c := newCollector(t)

	var f func(int) int
	f = hookscope.Wrap(c, "f", func(n int) int {
		if n > 0 {
			return f(n - 1)
		}
		return n
	})
	f(10)

	count, ok := c.Query().Count("f")
	require.True(t, ok)
	assert.Equal(t, 11, count)

	last, ok := c.Query().Invocation("f", 11)
	require.True(t, ok)
	assert.Equal(t, []any{0}, last.Args)
	assert.Equal(t, 0, last.Result)
}

func TestWrap_Results(t *testing.T) {
	c := newCollector(t)
	q := c.Query()

	none := hookscope.Wrap(c, "none", func() {})
	pair := hookscope.Wrap(c, "pair", func(a, b int) (int, error) { return a + b, nil })
	sum := hookscope.Wrap(c, "sum", func(xs ...int) int {
		total := 0
		for _, x := range xs {
			total += x
		}
		return total
	})

	none()
	v, err := pair(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 6, sum(1, 2, 3))

	inv, ok := q.Invocation("none", 1)
	require.True(t, ok)
	assert.Nil(t, inv.Result)
	assert.True(t, inv.Completed)

	inv, ok = q.Invocation("pair", 1)
	require.True(t, ok)
	assert.Equal(t, []any{3, nil}, inv.Result)

	inv, ok = q.Invocation("sum", 1)
	require.True(t, ok)
	assert.Equal(t, []any{[]int{1, 2, 3}}, inv.Args)
	assert.Equal(t, 6, inv.Result)
}

func TestWrap_PanicMarksInvocationAndPropagates(t *testing.T) {
	c := newCollector(t)

	boom := hookscope.Wrap(c, "boom", func() int { panic("boom") })
	ok := hookscope.Wrap(c, "ok", func() int { return 1 })

	assert.PanicsWithValue(t, "boom", func() { boom() })

	inv, found := c.Query().Invocation("boom", 1)
	require.True(t, found)
	assert.True(t, inv.Panicked)
	assert.False(t, inv.Completed)

	// The frame was popped: a later call has no parent.
	ok()
	_, hasParent := c.Query().Parent("ok")
	assert.False(t, hasParent)
}

func TestWrap_Idempotent(t *testing.T) {
	c := newCollector(t)

	once := hookscope.Wrap(c, "f", func() int { return 1 })
	twice := hookscope.Wrap(c, "f", once)
	twice()

	count, ok := c.Query().Count("f")
	require.True(t, ok)
	assert.Equal(t, 1, count, "rewrapping must not record twice")
}

func TestWrap_NonFuncPassesThrough(t *testing.T) {
	c := newCollector(t)

	assert.Equal(t, 42, hookscope.Wrap(c, "n", 42))
	var nilFn func()
	assert.Nil(t, hookscope.Wrap(c, "nil", nilFn))
	assert.Empty(t, c.Query().Units())
}

func TestWrap_NamedFuncTypeIsPreserved(t *testing.T) {
	type handler func(string) string
	c := newCollector(t)

	var h handler = func(s string) string { return s + "!" }
	wrapped := hookscope.Wrap(c, "h", h)

	assert.Equal(t, "hi!", wrapped("hi"))
	assert.IsType(t, handler(nil), wrapped)
}

type item struct{ id string }

func (i item) Discriminator() string { return i.id }

func TestWrap_Discriminators(t *testing.T) {
	c := newCollector(t)
	q := c.Query()

	render := hookscope.Wrap(c, "Item", func(props any) any { return props })
	render(item{id: "a"})
	render(item{id: "a"})
	render(map[string]any{hookscope.DiscriminatorKey: "b"})
	render("plain")

	a, ok := q.Count("Item", hookscope.Disc("a"))
	require.True(t, ok)
	assert.Equal(t, 2, a)

	b, ok := q.Count("Item", hookscope.Disc("b"))
	require.True(t, ok)
	assert.Equal(t, 1, b)

	plain, ok := q.Count("Item")
	require.True(t, ok)
	assert.Equal(t, 1, plain)

	_, ok = q.Count("Item", hookscope.Disc("c"))
	assert.False(t, ok)
}

func TestWrap_DiscriminatorInheritedAndParentRecorded(t *testing.T) {
	c := newCollector(t)
	q := c.Query()

	child := hookscope.Wrap(c, "Child", func(n int) int { return n })
	list := hookscope.Wrap(c, "List", func(props map[string]any) int { return child(1) })
	list(map[string]any{hookscope.DiscriminatorKey: "x"})

	count, ok := q.Count("Child", hookscope.Disc("x"))
	require.True(t, ok)
	assert.Equal(t, 1, count)

	parent, ok := q.Parent("Child", hookscope.Disc("x"))
	require.True(t, ok)
	assert.Equal(t, "List", parent.Name)
	assert.Equal(t, "x", parent.Discriminator)
}

func TestWrap_SameNameDifferentOrigins(t *testing.T) {
	var buf bytes.Buffer
	c := hookscope.NewCollector(hookscope.WithLogger(logging.NewWriter(&buf, slog.LevelWarn)))
	q := c.Query()

	a := hookscope.Wrap(c, "Button", func() int { return 1 }, hookscope.At("ui/a.go"))
	b := hookscope.Wrap(c, "Button", func() int { return 2 }, hookscope.At("ui/b.go"))
	a()
	b()
	b()

	na, ok := q.Count("Button", hookscope.Origin("ui/a.go"))
	require.True(t, ok)
	assert.Equal(t, 1, na)
	nb, ok := q.Count("Button", hookscope.Origin("ui/b.go"))
	require.True(t, ok)
	assert.Equal(t, 2, nb)

	first, ok := q.Count("Button")
	require.True(t, ok)
	assert.Equal(t, 1, first, "undisambiguated lookups resolve to the first registered unit")
	q.Count("Button")

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("ambiguous unit lookup")), "warned once")
	assert.Contains(t, buf.String(), "ui/b.go")

	units := q.Units()
	require.Len(t, units, 2)
	assert.Equal(t, 1, units[0].Sibling)
	assert.Equal(t, 2, units[1].Sibling)
}

type counterWidget struct {
	start int
	state any
}

func (w *counterWidget) Render() any    { return w.start }
func (w *counterWidget) SetState(v any) { w.state = v }

func newCounterWidget(args ...any) any { return &counterWidget{start: args[0].(int)} }
func newPlainWidget(args ...any) any   { return struct{}{} }

func TestWrapClass(t *testing.T) {
	c := newCollector(t)
	q := c.Query()

	cls := hookscope.WrapClass(c, "Counter", &modules.Class{Name: "Counter", New: newCounterWidget})
	assert.Same(t, cls, hookscope.WrapClass(c, "Counter", cls), "idempotent")

	inst := cls.Construct(5)
	w, ok := inst.(*counterWidget)
	require.True(t, ok)

	inv, ok := q.Invocation("Counter", 1)
	require.True(t, ok)
	assert.Same(t, w, inv.Result)
	assert.Equal(t, []any{5}, inv.Args)

	lc, ok := q.Lifecycle("Counter")
	require.True(t, ok)
	assert.Same(t, w, lc.Instance)
	require.NotNil(t, lc.Render)
	assert.Equal(t, 5, lc.Render())
	lc.SetState("on")
	assert.Equal(t, "on", w.state)

	plain := hookscope.WrapClass(c, "Plain", &modules.Class{Name: "Plain", New: newPlainWidget})
	plain.Construct()
	lc, ok = q.Lifecycle("Plain")
	require.True(t, ok)
	assert.Nil(t, lc.Render)
	assert.Nil(t, lc.SetState)

	_, ok = q.Lifecycle("Missing")
	assert.False(t, ok)
}

func TestModuleFactory(t *testing.T) {
	c := newCollector(t)

	table := modules.NewTable()
	table.Define("ui/panel.go", modules.Namespace{
		"Panel":   {Value: func(title string) string { return "<" + title + ">" }},
		"Widget":  {Value: &modules.Class{Name: "Widget", New: newPlainWidget}},
		"Title":   {Value: "panel"},
		"Version": {Value: func() string { return "1" }, ReadOnly: true},
	})
	require.NoError(t, table.Mock("ui/panel.go", c.ModuleFactory("ui/panel.go")))

	ns, err := table.Require("ui/panel.go")
	require.NoError(t, err)

	panel, ok := ns["Panel"].Value.(func(string) string)
	require.True(t, ok)
	assert.Equal(t, "<x>", panel("x"))

	widget, ok := ns["Widget"].Value.(*modules.Class)
	require.True(t, ok)
	widget.Construct()

	assert.Equal(t, "panel", ns["Title"].Value)
	assert.True(t, ns["Version"].ReadOnly)
	ns["Version"].Value.(func() string)()

	q := c.Query()
	count, ok := q.Count("Panel", hookscope.Origin("ui/panel.go"))
	require.True(t, ok)
	assert.Equal(t, 1, count)
	_, ok = q.Count("Widget")
	assert.True(t, ok)
	_, ok = q.Count("Version")
	assert.False(t, ok, "read-only exports are not wrapped")

	// Requiring again after Reset reapplies the factory; calls land in the same unit.
	table.Reset()
	ns, err = table.Require("ui/panel.go")
	require.NoError(t, err)
	ns["Panel"].Value.(func(string) string)("y")
	count, _ = q.Count("Panel")
	assert.Equal(t, 2, count)
}
